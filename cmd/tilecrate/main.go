package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/tilecrate/tilecrate"
	"github.com/tilecrate/tilecrate/metadata"
	"github.com/urfave/cli/v2"
)

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func main() {
	app := cli.NewApp()

	app.Name = "tilecrate"
	app.Usage = "Convert a directory tree of map tiles into an MBTiles archive"
	app.Version = "1.0.0"

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"TILECRATE_DB"},
			Usage:   "path to output archive",
		},
		&cli.StringFlag{
			Name:  "mapdir",
			Usage: "directory of tiles to import",
		},
		&cli.StringFlag{
			Name:  "metadata",
			Usage: "path to tile-set descriptor",
		},
	}

	app.Action = func(c *cli.Context) error {
		if c.String("db") == "" {
			cli.ShowAppHelpAndExit(c, 1)
		}

		logger := log.New(os.Stderr, "", 0)

		mapdir := c.String("mapdir")
		if mapdir != "" {
			info, err := os.Stat(mapdir)
			if err != nil {
				return cli.NewExitError(err, 1)
			}
			if !info.IsDir() {
				return cli.NewExitError(fmt.Sprintf("%s is not a directory", mapdir), 1)
			}
		}

		var ts *metadata.Tileset
		if file := c.String("metadata"); file != "" {
			loaded, err := metadata.Load(file)
			if err != nil {
				return cli.NewExitError(err, 1)
			}
			ts = loaded
		} else {
			db := c.String("db")
			ts = metadata.Default(strings.TrimSuffix(filepath.Base(db), filepath.Ext(db)))
		}

		archive, err := tilecrate.CreateArchive(c.String("db"))
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		defer archive.Close()

		if err := archive.WriteMetadata(ts.Pairs()); err != nil {
			return cli.NewExitError(err, 1)
		}

		tc := tilecrate.New(archive, logger)

		var skipped int
		if mapdir != "" {
			res, err := tc.Import(mapdir)
			if err != nil {
				return cli.NewExitError(err, 1)
			}

			if len(ts.Bounds) == 0 && res.Tiles > 0 {
				bounds := map[string]string{"bounds": metadata.BoundsValue(res.Bound)}
				if err := archive.WriteMetadata(bounds); err != nil {
					return cli.NewExitError(err, 1)
				}
			}

			skipped = len(res.Skipped)
		}

		if err := tc.Report(os.Stdout, mapdir); err != nil {
			return cli.NewExitError(err, 1)
		}

		if skipped > 0 {
			return cli.NewExitError(fmt.Sprintf("skipped %d files", skipped), 1)
		}

		return nil
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
