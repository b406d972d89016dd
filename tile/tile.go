/*
Package tile implements addressing for directory trees of raster map tiles.

A tile is identified by zoom level, column and row. Source trees number rows
from the top of the pyramid (the XYZ scheme used by most renderers); MBTiles
archives number them from the bottom (the TMS scheme). At a given zoom the
two schemes are related by row' = 2^zoom - row - 1.
*/
package tile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb/maptile"
)

// MaxZoom is the deepest zoom level accepted from a source tree. It is an
// overflow guard for the 2^zoom row arithmetic, well beyond any real
// pyramid.
const MaxZoom = 30

// ParsePath derives a tile address from a slash-separated relative path of
// the form "zoom/column/row.ext". The extension of the final segment is
// ignored. All three segments must be decimal unsigned integers, with zoom
// at most MaxZoom and column and row inside the 2^zoom grid.
func ParsePath(path string) (maptile.Tile, error) {
	segs := strings.Split(path, "/")
	if len(segs) != 3 {
		return maptile.Tile{}, fmt.Errorf("tile: path %q is not zoom/column/row", path)
	}

	z, err := parseCoord(segs[0])
	if err != nil {
		return maptile.Tile{}, fmt.Errorf("tile: bad zoom in %q: %w", path, err)
	}
	if z > MaxZoom {
		return maptile.Tile{}, fmt.Errorf("tile: zoom %d in %q is deeper than %d", z, path, MaxZoom)
	}

	x, err := parseCoord(segs[1])
	if err != nil {
		return maptile.Tile{}, fmt.Errorf("tile: bad column in %q: %w", path, err)
	}

	name := segs[2]
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[:i]
	}
	y, err := parseCoord(name)
	if err != nil {
		return maptile.Tile{}, fmt.Errorf("tile: bad row in %q: %w", path, err)
	}

	if max := uint32(1) << z; x >= max || y >= max {
		return maptile.Tile{}, fmt.Errorf("tile: %d/%d/%d lies outside the zoom %d grid", z, x, y, z)
	}

	return maptile.New(x, y, maptile.Zoom(z)), nil
}

func parseCoord(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

// FlipY converts a tile between XYZ (row 0 at the top) and TMS (row 0 at
// the bottom) numbering. The flip is its own inverse; the column is
// unchanged.
func FlipY(t maptile.Tile) maptile.Tile {
	t.Y = uint32(1)<<t.Z - 1 - t.Y
	return t
}
