/*
Package tilecrate converts directory trees of raster map tiles into MBTiles
archives.
*/
package tilecrate

import "log"

type TileCrate struct {
	archive *Archive
	logger  *log.Logger
}

func New(archive *Archive, logger *log.Logger) *TileCrate {
	return &TileCrate{
		archive: archive,
		logger:  logger,
	}
}
