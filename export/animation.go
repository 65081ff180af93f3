package export

import (
	"fmt"
	"strconv"
	"time"

	"github.com/umpc/go-sortedmap"

	"github.com/CI-WATER/mapkit/classify"
	"github.com/CI-WATER/mapkit/kml"
	"github.com/CI-WATER/mapkit/render"
)

// RasterAnimation exports a raster time series as a single animated KML
// document. All frames share one classification computed over the combined
// samples, so a color means the same value in every frame.
func (e *Exporter) RasterAnimation(name string, cfg Config) (*Artifact, error) {
	j := &job{phase: PhaseIdle}
	if err := cfg.Finalize(); err != nil {
		return nil, j.fail(err)
	}

	j.enter(PhaseFetching)
	frames, err := e.source.RasterTimeSeries(name)
	if err != nil {
		return nil, j.fail(err)
	}
	if len(frames) == 0 {
		return nil, j.fail(fmt.Errorf("%w: no timestamped rasters under %q", ErrNotFound, name))
	}
	ordered := chronological(frames)

	j.enter(PhaseClassifying)
	colorer, err := cfg.colorer()
	if err != nil {
		return nil, j.fail(err)
	}
	var samples []float64
	for _, frame := range ordered {
		samples = append(samples, frame.Band.Samples()...)
	}
	summary, err := classify.Summarize(samples)
	if err != nil {
		return nil, j.fail(err)
	}
	cls, err := classify.Generate(colorer, summary, cfg.Method, cfg.ClassCount)
	if err != nil {
		return nil, j.fail(err)
	}

	j.enter(PhaseRendering)
	artifact, err := renderAnimation(ordered, cls, &cfg)
	if err != nil {
		return nil, j.fail(err)
	}

	j.enter(PhaseDone)
	return artifact, nil
}

// chronological sorts frames by timestamp, oldest first.
func chronological(frames []TimedBand) []TimedBand {
	byTime := sortedmap.New(len(frames), func(x, y interface{}) bool {
		return x.(TimedBand).Time.Before(y.(TimedBand).Time)
	})
	for i, frame := range frames {
		byTime.Insert(strconv.Itoa(i), frame)
	}
	ordered := make([]TimedBand, 0, len(frames))
	for _, key := range byTime.Keys() {
		ordered = append(ordered, byTime.Map()[key].(TimedBand))
	}
	return ordered
}

func renderAnimation(frames []TimedBand, cls *classify.Classification, cfg *Config) (*Artifact, error) {
	doc := kml.NewKML(cfg.Name)
	doc.Document.HideChildren()
	doc.Document.SetLegend(legend(cls, frames[0].Band.NoData, cfg))

	var images map[string][]byte
	for i, frame := range frames {
		span := frameSpan(frames, i)
		switch cfg.Mode {
		case ModePNG:
			img, err := overlayImage(frame.Band, cls, cfg)
			if err != nil {
				return nil, err
			}
			payload, err := encodePNG(img)
			if err != nil {
				return nil, err
			}
			href := fmt.Sprintf("raster%d.png", i)
			if images == nil {
				images = map[string][]byte{}
			}
			images[href] = payload
			doc.Document.GroundOverlays = append(doc.Document.GroundOverlays, kml.GroundOverlay{
				Name:      frameName(cfg.Name, frame.Time),
				TimeSpan:  span,
				Icon:      &kml.Icon{Href: href},
				LatLonBox: kml.LatLonBoxFromExtent(frame.Band.Extent()),
			})
		case ModeGrid:
			placemarks := classPlacemarks(render.Grid(frame.Band, cls), cls, cfg, span)
			doc.Document.Placemarks = append(doc.Document.Placemarks, placemarks...)
		case ModeClusters:
			geometries := render.Clusters(frame.Band, cls, render.ClusterOptions{MinArea: cfg.MinClusterArea})
			doc.Document.Placemarks = append(doc.Document.Placemarks, classPlacemarks(geometries, cls, cfg, span)...)
		default:
			return nil, fmt.Errorf("unknown raster export mode %q", cfg.Mode)
		}
	}

	body, err := doc.Encode()
	if err != nil {
		return nil, err
	}
	return &Artifact{KML: body, Images: images}, nil
}

// frameSpan makes frame i visible from its own timestamp until the next
// frame's. The last frame has no end and stays visible.
func frameSpan(frames []TimedBand, i int) *kml.TimeSpan {
	span := &kml.TimeSpan{Begin: frames[i].Time.UTC().Format(time.RFC3339)}
	if i+1 < len(frames) {
		span.End = frames[i+1].Time.UTC().Format(time.RFC3339)
	}
	return span
}

func frameName(base string, t time.Time) string {
	return base + " " + t.UTC().Format(time.RFC3339)
}
