package main

import (
	"fmt"
	"log"
	"os"
	"path"
	"time"

	"github.com/carlmjohnson/versioninfo"
	"github.com/iancoleman/strcase"
	"github.com/urfave/cli/v2"

	"github.com/CI-WATER/mapkit/classify"
	"github.com/CI-WATER/mapkit/export"
	"github.com/CI-WATER/mapkit/gpkg"
	"github.com/CI-WATER/mapkit/ramp"
	"github.com/CI-WATER/mapkit/raster"
	"github.com/CI-WATER/mapkit/render"
)

const GPKG string = `gpkg`
const NAME string = `name`
const FORMAT string = `format`
const NODATA string = `nodata`
const SRID string = `srid`
const TIMESTAMP string = `timestamp`
const OUTPUT string = `output`
const TABLE string = `table`
const ATTRIBUTE string = `attribute`
const RAMP string = `ramp`
const METHOD string = `method`
const CLASSES string = `classes`
const ALPHA string = `alpha`
const MODE string = `mode`
const CELLSIZE string = `cellsize`
const RESAMPLE string = `resample`
const MINAREA string = `minarea`
const ANIMATE string = `animate`

//nolint:funlen
func main() {
	app := cli.NewApp()
	app.Name = "mapkit"
	app.Usage = "Render rasters and vector datasets from a GeoPackage to KML and PNG"
	app.Version = versioninfo.Short()

	gpkgFlag := &cli.StringFlag{
		Name:     GPKG,
		Aliases:  []string{"g"},
		Usage:    "GeoPackage file",
		Required: true,
		EnvVars:  []string{strcase.ToScreamingSnake(GPKG)},
	}

	app.Commands = []*cli.Command{
		{
			Name:      "load",
			Usage:     "Load an ASCII raster file into the GeoPackage",
			ArgsUsage: "<raster file>",
			Flags: []cli.Flag{
				gpkgFlag,
				&cli.StringFlag{
					Name:     NAME,
					Aliases:  []string{"n"},
					Usage:    "Name to store the raster under",
					Required: true,
					EnvVars:  []string{strcase.ToScreamingSnake(NAME)},
				},
				&cli.StringFlag{
					Name:    FORMAT,
					Usage:   "Raster file format: grass or arcinfo",
					Value:   "grass",
					EnvVars: []string{strcase.ToScreamingSnake(FORMAT)},
				},
				&cli.Float64Flag{
					Name:    NODATA,
					Usage:   "No-data value (grass format only, arcinfo declares its own)",
					Value:   raster.DefaultNoData,
					EnvVars: []string{strcase.ToScreamingSnake(NODATA)},
				},
				&cli.UintFlag{
					Name:    SRID,
					Usage:   "Spatial reference system ID of the raster coordinates",
					Value:   4326,
					EnvVars: []string{strcase.ToScreamingSnake(SRID)},
				},
				&cli.TimestampFlag{
					Name:    TIMESTAMP,
					Usage:   "Timestamp (RFC3339) making this raster a frame of a time series",
					Layout:  time.RFC3339,
					EnvVars: []string{strcase.ToScreamingSnake(TIMESTAMP)},
				},
			},
			Action: loadAction,
		},
		{
			Name:  "export",
			Usage: "Export a raster or vector table to KML (and PNG)",
			Flags: []cli.Flag{
				gpkgFlag,
				&cli.StringFlag{
					Name:    NAME,
					Aliases: []string{"n"},
					Usage:   "Name of the stored raster to export",
					EnvVars: []string{strcase.ToScreamingSnake(NAME)},
				},
				&cli.StringFlag{
					Name:    TABLE,
					Aliases: []string{"t"},
					Usage:   "Vector table to export (instead of a raster)",
					EnvVars: []string{strcase.ToScreamingSnake(TABLE)},
				},
				&cli.StringFlag{
					Name:    ATTRIBUTE,
					Aliases: []string{"a"},
					Usage:   "Numeric attribute to style the vector table by",
					EnvVars: []string{strcase.ToScreamingSnake(ATTRIBUTE)},
				},
				&cli.StringFlag{
					Name:     OUTPUT,
					Aliases:  []string{"o"},
					Usage:    "Output directory",
					Required: true,
					EnvVars:  []string{strcase.ToScreamingSnake(OUTPUT)},
				},
				&cli.StringFlag{
					Name:    RAMP,
					Usage:   "Color ramp preset ID, see the ramps command",
					Value:   ramp.DefaultPreset,
					EnvVars: []string{strcase.ToScreamingSnake(RAMP)},
				},
				&cli.StringFlag{
					Name:    METHOD,
					Usage:   "Classification method: equalInterval, quantile or uniqueValues",
					Value:   string(classify.EqualInterval),
					EnvVars: []string{strcase.ToScreamingSnake(METHOD)},
				},
				&cli.IntFlag{
					Name:    CLASSES,
					Usage:   "Number of classes",
					Value:   classify.DefaultClassCount,
					EnvVars: []string{strcase.ToScreamingSnake(CLASSES)},
				},
				&cli.Float64Flag{
					Name:    ALPHA,
					Usage:   "Overall opacity, 0.0 to 1.0",
					Value:   1,
					EnvVars: []string{strcase.ToScreamingSnake(ALPHA)},
				},
				&cli.StringFlag{
					Name:    MODE,
					Aliases: []string{"m"},
					Usage:   "Raster output mode: png, grid or clusters",
					Value:   string(export.ModePNG),
					EnvVars: []string{strcase.ToScreamingSnake(MODE)},
				},
				&cli.Float64Flag{
					Name:    CELLSIZE,
					Usage:   "Resample PNG output to this cell size in world units, 0 keeps the native resolution",
					EnvVars: []string{strcase.ToScreamingSnake(CELLSIZE)},
				},
				&cli.StringFlag{
					Name:    RESAMPLE,
					Usage:   "Resampling kernel: nearestNeighbor, bilinear or catmullRom",
					Value:   string(render.NearestNeighbor),
					EnvVars: []string{strcase.ToScreamingSnake(RESAMPLE)},
				},
				&cli.Float64Flag{
					Name:    MINAREA,
					Usage:   "Drop clusters smaller than this area in world units (clusters mode)",
					EnvVars: []string{strcase.ToScreamingSnake(MINAREA)},
				},
				&cli.BoolFlag{
					Name:    ANIMATE,
					Usage:   "Export all timestamped rasters under the name as an animation",
					EnvVars: []string{strcase.ToScreamingSnake(ANIMATE)},
				},
			},
			Action: exportAction,
		},
		{
			Name:   "ramps",
			Usage:  "List the built-in color ramp presets",
			Action: rampsAction,
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

func loadAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one raster file argument")
	}
	file, err := os.Open(c.Args().First())
	if err != nil {
		return err
	}
	defer file.Close()

	var band *raster.Band
	switch c.String(FORMAT) {
	case "grass":
		band, err = raster.ReadGrassASCII(file, c.Float64(NODATA), uint(c.Uint(SRID)))
	case "arcinfo":
		band, err = raster.ReadArcInfoASCII(file, uint(c.Uint(SRID)))
	default:
		return fmt.Errorf("unknown raster format %q", c.String(FORMAT))
	}
	if err != nil {
		return err
	}

	store, err := gpkg.Open(c.String(GPKG))
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.StoreRaster(c.String(NAME), c.Timestamp(TIMESTAMP), band); err != nil {
		return err
	}
	log.Printf("loaded %dx%d raster as %q", band.Width, band.Height, c.String(NAME))
	return nil
}

func exportAction(c *cli.Context) error {
	store, err := gpkg.Open(c.String(GPKG))
	if err != nil {
		return err
	}
	defer store.Close()

	cfg := export.Config{
		Name:           c.String(NAME),
		Ramp:           c.String(RAMP),
		Method:         classify.Method(c.String(METHOD)),
		ClassCount:     c.Int(CLASSES),
		Alpha:          c.Float64(ALPHA),
		Mode:           export.Mode(c.String(MODE)),
		CellSize:       c.Float64(CELLSIZE),
		Resample:       render.Interpolator(c.String(RESAMPLE)),
		MinClusterArea: c.Float64(MINAREA),
	}

	exporter := export.New(store)
	var artifact *export.Artifact
	switch {
	case c.String(TABLE) != "":
		if c.String(ATTRIBUTE) == "" {
			return fmt.Errorf("exporting a table requires an attribute to style by")
		}
		cfg.Name = c.String(TABLE)
		artifact, err = exporter.Dataset(c.String(TABLE), c.String(ATTRIBUTE), cfg)
	case c.Bool(ANIMATE):
		artifact, err = exporter.RasterAnimation(c.String(NAME), cfg)
	default:
		artifact, err = exporter.Raster(c.String(NAME), cfg)
	}
	if err != nil {
		return err
	}
	return writeArtifact(c.String(OUTPUT), artifact)
}

func rampsAction(*cli.Context) error {
	for _, id := range ramp.PresetIDs() {
		fmt.Println(id)
	}
	return nil
}

func writeArtifact(dir string, artifact *export.Artifact) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path.Join(dir, "doc.kml"), artifact.KML, 0o644); err != nil {
		return err
	}
	for name, payload := range artifact.Images {
		if err := os.WriteFile(path.Join(dir, name), payload, 0o644); err != nil {
			return err
		}
	}
	for _, warning := range artifact.Warnings {
		log.Printf("warning: %s", warning)
	}
	log.Printf("wrote %s", path.Join(dir, "doc.kml"))
	return nil
}
