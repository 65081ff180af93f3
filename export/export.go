// Package export orchestrates the full pipeline from stored data to finished
// artifacts: fetch from a Source, summarize and classify, render to KML and
// PNG. An export either yields a complete Artifact or an error, never both.
package export

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"math"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"

	"github.com/CI-WATER/mapkit/classify"
	"github.com/CI-WATER/mapkit/kml"
	"github.com/CI-WATER/mapkit/ramp"
	"github.com/CI-WATER/mapkit/raster"
	"github.com/CI-WATER/mapkit/render"
)

// Phase is a stage of an export run.
type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseFetching    Phase = "fetching"
	PhaseClassifying Phase = "classifying"
	PhaseRendering   Phase = "rendering"
	PhaseDone        Phase = "done"
	PhaseFailed      Phase = "failed"
)

// ExportError reports the phase an export failed in, wrapping the cause.
type ExportError struct {
	Phase Phase
	Err   error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export failed while %s: %v", e.Phase, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// Mode selects the visual form of a raster export.
type Mode string

const (
	// ModePNG renders the raster as a PNG ground overlay.
	ModePNG Mode = "png"
	// ModeGrid renders one polygon per raster cell.
	ModeGrid Mode = "grid"
	// ModeClusters merges contiguous same-class cells into polygons.
	ModeClusters Mode = "clusters"
)

// Config holds the knobs of an export. The zero value is not usable; pass it
// through defaults and validation via Finalize, as the Exporter does.
type Config struct {
	// Name of the output document.
	Name string `default:"mapkit export"`
	// Ramp is the preset ID of the color ramp. Ignored when Stops is set.
	Ramp string `default:"hue"`
	// Stops is an explicit color ramp, overriding Ramp.
	Stops []ramp.Stop
	// Method picks the classification breakpoints.
	Method classify.Method `default:"equalInterval" validate:"oneof=equalInterval quantile uniqueValues"`
	// ClassCount is the number of classes for the interval and quantile methods.
	ClassCount int `default:"10" validate:"gte=2"`
	// Alpha is the overall opacity of the output, 0.0 to 1.0.
	Alpha float64 `default:"1" validate:"gte=0,lte=1"`
	// Mode selects the raster output form.
	Mode Mode `default:"png" validate:"oneof=png grid clusters"`
	// CellSize resamples PNG output to this world cell size. Zero keeps the
	// native resolution.
	CellSize float64 `validate:"gte=0"`
	// Resample is the kernel used when CellSize is set.
	Resample render.Interpolator `default:"nearestNeighbor" validate:"oneof=nearestNeighbor bilinear catmullRom"`
	// MinClusterArea drops clusters smaller than this area in world units.
	MinClusterArea float64 `validate:"gte=0"`
	// MaxPixels caps PNG output size. Zero uses the built-in ceiling.
	MaxPixels int `validate:"gte=0"`
	// Precision is the number of decimals in legend labels.
	Precision int `default:"2" validate:"gte=0"`
}

var validate = validator.New()

// Finalize fills in defaults and validates the result.
func (c *Config) Finalize() error {
	if err := defaults.Set(c); err != nil {
		return err
	}
	return validate.Struct(c)
}

// colorer resolves the configured ramp.
func (c *Config) colorer() (ramp.Colorer, error) {
	if len(c.Stops) > 0 {
		return ramp.New(c.Stops)
	}
	return ramp.Preset(c.Ramp)
}

// Artifact is a finished export: a KML document plus the PNG payloads it
// references by file name, and any per-feature warnings gathered on the way.
type Artifact struct {
	KML      []byte
	Images   map[string][]byte
	Warnings []string
}

// Exporter runs exports against a Source. Methods are safe to call
// concurrently; each call tracks its own phase.
type Exporter struct {
	source Source
}

func New(source Source) *Exporter {
	return &Exporter{source: source}
}

// job tracks the phase of a single export run for error reporting.
type job struct {
	phase Phase
}

func (j *job) enter(p Phase) {
	j.phase = p
}

func (j *job) fail(err error) error {
	failedIn := j.phase
	j.phase = PhaseFailed
	return &ExportError{Phase: failedIn, Err: err}
}

// Raster exports a stored raster band per the config's mode.
func (e *Exporter) Raster(name string, cfg Config) (*Artifact, error) {
	j := &job{phase: PhaseIdle}
	if err := cfg.Finalize(); err != nil {
		return nil, j.fail(err)
	}

	j.enter(PhaseFetching)
	band, err := e.source.RasterBand(name)
	if err != nil {
		return nil, j.fail(err)
	}

	j.enter(PhaseClassifying)
	cls, err := classifyBand(band, &cfg)
	if err != nil {
		return nil, j.fail(err)
	}

	j.enter(PhaseRendering)
	artifact, err := renderRaster(band, cls, &cfg)
	if err != nil {
		return nil, j.fail(err)
	}

	j.enter(PhaseDone)
	return artifact, nil
}

// Dataset exports a vector table styled by one of its numeric attributes.
// Features without a usable value are kept with the no-data style and
// reported in the artifact's warnings.
func (e *Exporter) Dataset(table, attribute string, cfg Config) (*Artifact, error) {
	j := &job{phase: PhaseIdle}
	if err := cfg.Finalize(); err != nil {
		return nil, j.fail(err)
	}

	j.enter(PhaseFetching)
	features, err := e.source.Features(table)
	if err != nil {
		return nil, j.fail(err)
	}

	j.enter(PhaseClassifying)
	colorer, err := cfg.colorer()
	if err != nil {
		return nil, j.fail(err)
	}
	summary, err := classify.Summarize(render.CollectValues(features, attribute))
	if err != nil {
		return nil, j.fail(err)
	}
	cls, err := classify.Generate(colorer, summary, cfg.Method, cfg.ClassCount)
	if err != nil {
		return nil, j.fail(err)
	}

	j.enter(PhaseRendering)
	styled := render.Dataset(features, attribute, cls)
	doc, err := datasetDocument(styled, cls, &cfg)
	if err != nil {
		return nil, j.fail(err)
	}

	j.enter(PhaseDone)
	return &Artifact{KML: doc, Warnings: styled.Warnings}, nil
}

func classifyBand(band *raster.Band, cfg *Config) (*classify.Classification, error) {
	colorer, err := cfg.colorer()
	if err != nil {
		return nil, err
	}
	summary, err := classify.Summarize(band.Samples())
	if err != nil {
		return nil, err
	}
	return classify.Generate(colorer, summary, cfg.Method, cfg.ClassCount)
}

func renderRaster(band *raster.Band, cls *classify.Classification, cfg *Config) (*Artifact, error) {
	doc := kml.NewKML(cfg.Name)
	doc.Document.SetLegend(legend(cls, band.NoData, cfg))

	switch cfg.Mode {
	case ModePNG:
		img, err := overlayImage(band, cls, cfg)
		if err != nil {
			return nil, err
		}
		payload, err := encodePNG(img)
		if err != nil {
			return nil, err
		}
		const href = "raster.png"
		doc.Document.GroundOverlays = []kml.GroundOverlay{{
			Name:      cfg.Name,
			Icon:      &kml.Icon{Href: href},
			LatLonBox: kml.LatLonBoxFromExtent(band.Extent()),
		}}
		body, err := doc.Encode()
		if err != nil {
			return nil, err
		}
		return &Artifact{KML: body, Images: map[string][]byte{href: payload}}, nil
	case ModeGrid:
		doc.Document.Placemarks = classPlacemarks(render.Grid(band, cls), cls, cfg, nil)
	case ModeClusters:
		geometries := render.Clusters(band, cls, render.ClusterOptions{MinArea: cfg.MinClusterArea})
		doc.Document.Placemarks = classPlacemarks(geometries, cls, cfg, nil)
	default:
		return nil, fmt.Errorf("unknown raster export mode %q", cfg.Mode)
	}

	body, err := doc.Encode()
	if err != nil {
		return nil, err
	}
	return &Artifact{KML: body}, nil
}

func overlayImage(band *raster.Band, cls *classify.Classification, cfg *Config) (image.Image, error) {
	img, err := render.Image(band, cls, render.ImageOptions{Alpha: cfg.Alpha, MaxPixels: cfg.MaxPixels})
	if err != nil {
		return nil, err
	}
	if cfg.CellSize <= 0 {
		return img, nil
	}
	width := scaledDimension(band.Transform.CellSizeX, band.Width, cfg.CellSize)
	height := scaledDimension(band.Transform.CellSizeY, band.Height, cfg.CellSize)
	return render.Resample(img, width, height, cfg.Resample)
}

func scaledDimension(cellSize float64, cells int, targetCellSize float64) int {
	scaled := int(math.Round(math.Abs(cellSize) * float64(cells) / targetCellSize))
	if scaled < 1 {
		return 1
	}
	return scaled
}

func legend(cls *classify.Classification, noData float64, cfg *Config) *kml.ColorMap {
	if cls.Method == classify.UniqueValues {
		return kml.ValuesColorMap(cls, noData, cfg.Alpha)
	}
	return kml.IntervalColorMap(cls, noData, cfg.Alpha)
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
