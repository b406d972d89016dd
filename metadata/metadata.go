/*
Package metadata implements the tile-set descriptor written to an archive's
metadata table.

A descriptor carries the attributes MBTiles clients read before requesting
any tile: the set's name, whether it is an overlay or a baselayer, a
version, a description, and optionally a short name, its raster format,
coverage bounds, center and attribution. Descriptors load from small YAML
files; a derived default covers runs without one.
*/
package metadata

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"gopkg.in/yaml.v3"

	"github.com/tilecrate/tilecrate/tile"
)

// Tile-set types understood by MBTiles clients.
const (
	TypeOverlay   = "overlay"
	TypeBaselayer = "baselayer"
)

// Tileset describes a tile set as a whole. Every non-empty field becomes
// one row of the archive's metadata table.
type Tileset struct {
	Name        string    `yaml:"name"`
	ShortName   string    `yaml:"shortname"`
	Type        string    `yaml:"type"`
	Version     string    `yaml:"version"`
	Description string    `yaml:"description"`
	Format      string    `yaml:"format"`
	Bounds      []float64 `yaml:"bounds"` // west, south, east, north
	Center      []float64 `yaml:"center"` // longitude, latitude, zoom
	Attribution string    `yaml:"attribution"`
}

// Default returns the descriptor used when no file is given: a versioned
// baselayer named after the archive.
func Default(name string) *Tileset {
	return &Tileset{
		Name:    name,
		Type:    TypeBaselayer,
		Version: "1.0",
	}
}

// Load reads and validates a YAML descriptor file.
func Load(path string) (*Tileset, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("metadata: read descriptor: %w", err)
	}

	var ts Tileset
	if err := yaml.Unmarshal(b, &ts); err != nil {
		return nil, fmt.Errorf("metadata: parse descriptor: %w", err)
	}

	if err := ts.Validate(); err != nil {
		return nil, err
	}

	return &ts, nil
}

// Validate checks the required fields and the shape of the optional ones.
func (t *Tileset) Validate() error {
	if t.Name == "" {
		return errors.New("metadata: name is required")
	}
	switch t.Type {
	case TypeOverlay, TypeBaselayer:
	default:
		return fmt.Errorf("metadata: type %q is neither %q nor %q", t.Type, TypeOverlay, TypeBaselayer)
	}
	if t.Version == "" {
		return errors.New("metadata: version is required")
	}

	if t.Bounds != nil {
		if len(t.Bounds) != 4 {
			return fmt.Errorf("metadata: bounds needs 4 values, got %d", len(t.Bounds))
		}
		west, south, east, north := t.Bounds[0], t.Bounds[1], t.Bounds[2], t.Bounds[3]
		if west < -180 || east > 180 || west >= east {
			return fmt.Errorf("metadata: bounds longitudes %g..%g are not an ordered range", west, east)
		}
		if south < -90 || north > 90 || south >= north {
			return fmt.Errorf("metadata: bounds latitudes %g..%g are not an ordered range", south, north)
		}
	}

	if t.Center != nil {
		if len(t.Center) != 3 {
			return fmt.Errorf("metadata: center needs 3 values, got %d", len(t.Center))
		}
		lon, lat, zoom := t.Center[0], t.Center[1], t.Center[2]
		if lon < -180 || lon > 180 || lat < -90 || lat > 90 {
			return fmt.Errorf("metadata: center %g,%g is not a longitude,latitude pair", lon, lat)
		}
		if zoom != math.Trunc(zoom) || zoom < 0 || zoom > tile.MaxZoom {
			return fmt.Errorf("metadata: center zoom %g is not a zoom level", zoom)
		}
	}

	return nil
}

// Pairs renders the descriptor as metadata rows.
func (t *Tileset) Pairs() map[string]string {
	p := map[string]string{
		"name":        t.Name,
		"type":        t.Type,
		"version":     t.Version,
		"description": t.Description,
	}
	if t.ShortName != "" {
		p["shortname"] = t.ShortName
	}
	if t.Format != "" {
		p["format"] = t.Format
	}
	if len(t.Bounds) == 4 {
		p["bounds"] = joinFloats(t.Bounds)
	}
	if len(t.Center) == 3 {
		p["center"] = joinFloats(t.Center)
	}
	if t.Attribution != "" {
		p["attribution"] = t.Attribution
	}
	return p
}

// BoundsValue renders a computed coverage bound the way the bounds row is
// written: west, south, east, north.
func BoundsValue(b orb.Bound) string {
	return joinFloats([]float64{b.Min.Lon(), b.Min.Lat(), b.Max.Lon(), b.Max.Lat()})
}

func joinFloats(vs []float64) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.Join(parts, ",")
}
