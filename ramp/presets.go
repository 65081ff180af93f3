package ramp

import (
	"embed"
	"encoding/json"
	"fmt"
	"image/color"
	"strconv"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/perimeterx/marshmallow"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

var (
	//go:embed presets/*.json
	embeddedPresetsJSONFS embed.FS

	// built once during init and read-only afterwards,
	// so safe to share between concurrent exports
	presetRegistry *orderedmap.OrderedMap[string, *ColorRamp]
)

// DefaultPreset is used when no ramp is configured.
const DefaultPreset = "hue"

// UnknownPresetError is returned when a preset id is not in the registry.
type UnknownPresetError struct {
	ID string
}

func (e *UnknownPresetError) Error() string {
	return fmt.Sprintf("unknown color ramp preset %q", e.ID)
}

// Definition is the JSON form of a ramp preset.
type Definition struct {
	// Preset identifier, used to look the ramp up in the registry
	ID string `validate:"required" json:"id"`
	// Brief narrative description of the palette, normally available for display to a human
	Description string `json:"description,omitempty"`
	// Stops are unmarshalled by hand so each one gets its defaults applied
	Stops []DefinitionStop `validate:"required,min=2,dive" json:"-"`
}

// DefinitionStop is one control point of a preset: a normalized position and
// a #RRGGBB hex color. Opacity defaults to fully opaque.
type DefinitionStop struct {
	Position float64 `validate:"gte=0,lte=1" json:"position"`
	Color    string  `validate:"required,hexcolor" json:"color"`
	Opacity  float64 `default:"1" validate:"gte=0,lte=1" json:"opacity"`
}

func (d *Definition) UnmarshalJSON(data []byte) error {
	err := defaults.Set(d)
	if err != nil {
		return err
	}
	specials, err := marshmallow.Unmarshal(data, d, marshmallow.WithExcludeKnownFieldsFromMap(true))
	if err != nil {
		return err
	}
	d.Stops, err = stopsFromSpecials(specials)
	if err != nil {
		return err
	}
	validate := validator.New(validator.WithRequiredStructEnabled())
	return validate.Struct(d)
}

func stopsFromSpecials(specials map[string]interface{}) ([]DefinitionStop, error) {
	rawStops, ok := specials["stops"]
	if !ok {
		return nil, nil
	}
	rawStopsList, ok := rawStops.([]interface{})
	if !ok {
		return nil, fmt.Errorf(`"stops" should be a list`)
	}
	stops := make([]DefinitionStop, 0, len(rawStopsList))
	for _, rawStop := range rawStopsList {
		rawStopMap, ok := rawStop.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf(`"stops" should be objects`)
		}
		var stop DefinitionStop
		err := stop.UnmarshalJSONFromMap(rawStopMap)
		if err != nil {
			return nil, err
		}
		stops = append(stops, stop)
	}
	return stops, nil
}

func (s *DefinitionStop) UnmarshalJSONFromMap(data interface{}) error {
	err := defaults.Set(s)
	if err != nil {
		return err
	}
	dataMap, ok := data.(map[string]interface{})
	if !ok {
		return fmt.Errorf(`stop data is not a map but a %T`, data)
	}
	_, err = marshmallow.UnmarshalFromJSONMap(dataMap, s, marshmallow.WithExcludeKnownFieldsFromMap(true))
	return err
}

// Ramp converts the definition into a validated ColorRamp.
func (d *Definition) Ramp() (*ColorRamp, error) {
	stops := make([]Stop, len(d.Stops))
	for i, stop := range d.Stops {
		c, err := parseHexColor(stop.Color)
		if err != nil {
			return nil, &InvalidRampError{Reason: err.Error()}
		}
		c.A = uint8(stop.Opacity*255 + 0.5)
		stops[i] = Stop{Position: stop.Position, Color: c}
	}
	return New(stops)
}

func init() {
	registry, err := loadEmbeddedPresets()
	if err != nil {
		panic(fmt.Errorf("could not load embedded ramp presets: %w", err))
	}
	presetRegistry = registry
}

func loadEmbeddedPresets() (*orderedmap.OrderedMap[string, *ColorRamp], error) {
	entries, err := embeddedPresetsJSONFS.ReadDir("presets")
	if err != nil {
		return nil, err
	}
	registry := orderedmap.New[string, *ColorRamp](orderedmap.WithCapacity[string, *ColorRamp](len(entries)))
	for _, entry := range entries {
		presetJSON, err := embeddedPresetsJSONFS.ReadFile("presets/" + entry.Name())
		if err != nil {
			return nil, err
		}
		var definition Definition
		err = json.Unmarshal(presetJSON, &definition)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", entry.Name(), err)
		}
		colorRamp, err := definition.Ramp()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", entry.Name(), err)
		}
		registry.Set(definition.ID, colorRamp)
	}
	return registry, nil
}

// Preset returns the built-in ramp with the given id.
func Preset(id string) (*ColorRamp, error) {
	colorRamp, ok := presetRegistry.Get(id)
	if !ok {
		return nil, &UnknownPresetError{ID: id}
	}
	return colorRamp, nil
}

// PresetIDs lists the registered preset ids in registry order.
func PresetIDs() []string {
	ids := make([]string, 0, presetRegistry.Len())
	for pair := presetRegistry.Oldest(); pair != nil; pair = pair.Next() {
		ids = append(ids, pair.Key)
	}
	return ids
}

func parseHexColor(s string) (color.NRGBA, error) {
	var c color.NRGBA
	if len(s) != 7 || s[0] != '#' {
		return c, fmt.Errorf("color %q is not in #RRGGBB form", s)
	}
	r, err := strconv.ParseUint(s[1:3], 16, 8)
	if err != nil {
		return c, fmt.Errorf("color %q is not in #RRGGBB form", s)
	}
	g, err := strconv.ParseUint(s[3:5], 16, 8)
	if err != nil {
		return c, fmt.Errorf("color %q is not in #RRGGBB form", s)
	}
	b, err := strconv.ParseUint(s[5:7], 16, 8)
	if err != nil {
		return c, fmt.Errorf("color %q is not in #RRGGBB form", s)
	}
	return color.NRGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 255}, nil
}
