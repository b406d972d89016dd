package tilecrate

import (
	"database/sql"
	"fmt"
	"os"
	"sort"

	_ "github.com/mattn/go-sqlite3"
	"github.com/paulmach/orb/maptile"
)

// Archive is an MBTiles file under construction: an SQLite database holding
// a metadata relation and a tiles relation.
type Archive struct {
	db   *sql.DB
	path string
}

// CreateArchive replaces whatever file exists at path with a new, empty
// archive defining the metadata and tiles relations.
func CreateArchive(path string) (*Archive, error) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("remove previous archive: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// The archive is owned by this process alone for its whole lifetime.
	db.SetMaxOpenConns(1)

	if _, err = db.Exec("CREATE TABLE metadata (name TEXT PRIMARY KEY, value TEXT)"); err != nil {
		db.Close()
		return nil, fmt.Errorf("create metadata table: %w", err)
	}

	if _, err = db.Exec("CREATE TABLE tiles (zoom_level INTEGER, tile_column INTEGER, tile_row INTEGER, tile_data BLOB, PRIMARY KEY (zoom_level, tile_column, tile_row))"); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tiles table: %w", err)
	}

	return &Archive{
		db:   db,
		path: path,
	}, nil
}

func (a *Archive) Close() error {
	return a.db.Close()
}

// Path returns the location of the archive file.
func (a *Archive) Path() string {
	return a.path
}

// Size reports the archive file's size on disk.
func (a *Archive) Size() (int64, error) {
	info, err := os.Stat(a.path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// WriteMetadata upserts the given rows in name order.
func (a *Archive) WriteMetadata(pairs map[string]string) error {
	names := make([]string, 0, len(pairs))
	for name := range pairs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if _, err := a.db.Exec("INSERT OR REPLACE INTO metadata (name, value) VALUES (?, ?)", name, pairs[name]); err != nil {
			return fmt.Errorf("write metadata %q: %w", name, err)
		}
	}

	return nil
}

// Metadata returns all metadata rows.
func (a *Archive) Metadata() (map[string]string, error) {
	rows, err := a.db.Query("SELECT name, value FROM metadata")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pairs := make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, err
		}
		pairs[name] = value
	}

	return pairs, rows.Err()
}

// InsertTile upserts one tile under the given coordinates, which are stored
// as-is: callers flip rows to TMS numbering beforehand. Writing coordinates
// that already exist replaces the earlier data.
func (a *Archive) InsertTile(t maptile.Tile, data []byte) error {
	if _, err := a.db.Exec("INSERT OR REPLACE INTO tiles (zoom_level, tile_column, tile_row, tile_data) VALUES (?, ?, ?, ?)", uint32(t.Z), t.X, t.Y, data); err != nil {
		return fmt.Errorf("insert tile %d/%d/%d: %w", t.Z, t.X, t.Y, err)
	}
	return nil
}

// TileData returns the stored bytes for the given archive coordinates, or
// nil if no such tile exists.
func (a *Archive) TileData(zoom, column, row uint32) ([]byte, error) {
	var data []byte
	switch err := a.db.QueryRow("SELECT tile_data FROM tiles WHERE zoom_level = ? AND tile_column = ? AND tile_row = ?", zoom, column, row).Scan(&data); err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
		return data, nil
	default:
		return nil, err
	}
}

// Stats summarizes the tiles relation. MinZoom and MaxZoom are only
// meaningful when Tiles is nonzero.
type Stats struct {
	Tiles   int64
	MinZoom int
	MaxZoom int
}

func (a *Archive) Stats() (Stats, error) {
	var count int64
	var min, max sql.NullInt64
	if err := a.db.QueryRow("SELECT COUNT(*), MIN(zoom_level), MAX(zoom_level) FROM tiles").Scan(&count, &min, &max); err != nil {
		return Stats{}, err
	}

	stats := Stats{Tiles: count}
	if min.Valid {
		stats.MinZoom = int(min.Int64)
		stats.MaxZoom = int(max.Int64)
	}

	return stats, nil
}
