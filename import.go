package tilecrate

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb"

	"github.com/tilecrate/tilecrate/tile"
)

// rasterExts are the tile image types accepted from a map directory.
var rasterExts = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".webp": {},
}

// SkippedFile records one source file the importer could not use.
type SkippedFile struct {
	Path string
	Err  error
}

// ImportResult accumulates one import pass.
type ImportResult struct {
	Tiles   int
	MinZoom int
	MaxZoom int
	Bound   orb.Bound // coverage of the imported tiles; meaningful when Tiles > 0
	Skipped []SkippedFile
}

// Import walks the tile tree rooted at dir and inserts every readable,
// well-addressed raster tile into the archive, flipping rows from XYZ to
// TMS numbering. Unreadable files and malformed paths are logged, recorded
// in the result and skipped; archive write failures abort the import.
func (tc *TileCrate) Import(dir string) (*ImportResult, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	res := &ImportResult{}

	skip := func(path string, err error) {
		tc.logger.Printf("skipping %s: %v", path, err)
		res.Skipped = append(res.Skipped, SkippedFile{Path: path, Err: err})
	}

	if err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			skip(path, err)
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		// Ignore any hidden files or directories, otherwise we end up
		// fighting with things like Spotlight, etc.
		if info.Name()[0] == '.' && path != root {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if !info.Mode().IsRegular() {
			return nil
		}

		if _, ok := rasterExts[strings.ToLower(filepath.Ext(path))]; !ok {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			skip(path, err)
			return nil
		}

		t, err := tile.ParsePath(filepath.ToSlash(rel))
		if err != nil {
			skip(path, err)
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			skip(path, err)
			return nil
		}

		if err := tc.archive.InsertTile(tile.FlipY(t), data); err != nil {
			return err
		}

		if res.Tiles == 0 {
			res.MinZoom, res.MaxZoom = int(t.Z), int(t.Z)
			res.Bound = t.Bound()
		} else {
			if int(t.Z) < res.MinZoom {
				res.MinZoom = int(t.Z)
			}
			if int(t.Z) > res.MaxZoom {
				res.MaxZoom = int(t.Z)
			}
			res.Bound = res.Bound.Union(t.Bound())
		}
		res.Tiles++

		return nil
	}); err != nil {
		return nil, err
	}

	if res.Tiles > 0 {
		tc.logger.Printf("imported %d tiles spanning zoom levels %d-%d", res.Tiles, res.MinZoom, res.MaxZoom)
	}

	return res, nil
}
