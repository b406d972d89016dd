package tilecrate

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
)

// Report writes a summary of the finished archive to w. The source
// directory is included when tiles were imported from one.
func (tc *TileCrate) Report(w io.Writer, source string) error {
	size, err := tc.archive.Size()
	if err != nil {
		return err
	}

	stats, err := tc.archive.Stats()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "archive:  %s\n", tc.archive.Path())
	fmt.Fprintf(w, "size:     %s (%d bytes)\n", humanize.Bytes(uint64(size)), size)
	if source != "" {
		fmt.Fprintf(w, "source:   %s\n", source)
	}
	fmt.Fprintf(w, "tiles:    %d\n", stats.Tiles)
	if stats.Tiles > 0 {
		fmt.Fprintf(w, "zoom:     %d-%d\n", stats.MinZoom, stats.MaxZoom)
	} else {
		fmt.Fprintf(w, "zoom:     none\n")
	}

	return nil
}
