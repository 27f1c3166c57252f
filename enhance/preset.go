// Package enhance maps virtual-soundstage presets to engine audio filter chains.
package enhance

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aether-player/aether/util"
	"github.com/samber/lo"
	"golang.org/x/exp/slices"
)

var (
	// ErrUnknownPreset is returned for a preset name outside the catalog.
	ErrUnknownPreset = errors.New("unknown enhancement preset")
	// ErrUnknownParam is returned for a custom parameter name that does not exist.
	ErrUnknownParam = errors.New("unknown custom parameter")
)

// Preset keys.
const (
	Off      = "off"
	Subtle   = "subtle"
	Natural  = "natural"
	Wide     = "wide"
	Speakers = "speakers"
	Custom   = "custom"
)

// Preset is a named filter chain. The custom preset has no fixed stages.
type Preset struct {
	Key         string
	Name        string
	Description string
	Filters     []string
}

var catalog = map[string]Preset{
	Off: {
		Key:         Off,
		Name:        "Off",
		Description: "Original sound without processing",
	},
	Subtle: {
		Key:         Subtle,
		Name:        "Subtle",
		Description: "Gentle widening of the stereo image",
		Filters: []string{
			"crossfeed=strength=0.5:range=0.7",
			"volume=1.1",
			"extrastereo=m=1.6",
		},
	},
	Natural: {
		Key:         Natural,
		Name:        "Natural",
		Description: "Room acoustics simulation",
		Filters: []string{
			"crossfeed=strength=0.5:range=0.6",
			"volume=1.1",
			"haas=level_in=1.0:level_out=1.0:side_gain=0.8",
			"extrastereo=m=1.5",
		},
	},
	Wide: {
		Key:         Wide,
		Name:        "Wide",
		Description: "Maximum stereo widening",
		Filters: []string{
			"crossfeed=strength=0.7:range=0.4",
			"volume=1.15",
			"haas=level_in=1.0:level_out=1.2:side_gain=1.0",
			"extrastereo=m=2.0",
			"surround=chl_out=stereo:chl_in=stereo:level_in=1.0:level_out=1.1",
		},
	},
	Speakers: {
		Key:         Speakers,
		Name:        "Speakers",
		Description: "As close to real loudspeakers as headphones get",
		Filters: []string{
			"crossfeed=strength=0.8:range=0.3",
			"haas=level_in=1.0:level_out=1.3:side_gain=1.2",
			"extrastereo=m=2.5",
			"surround=chl_out=stereo:chl_in=stereo:level_in=1.0:level_out=1.2",
		},
	},
	Custom: {
		Key:         Custom,
		Name:        "Custom",
		Description: "User-tuned parameters",
	},
}

// order is the catalog from least to most aggressive.
var order = []string{Off, Subtle, Natural, Wide, Speakers, Custom}

// Valid reports whether name is in the catalog.
func Valid(name string) bool {
	_, ok := catalog[name]
	return ok
}

// Names lists every preset key, custom included.
func Names() []string {
	return slices.Clone(order)
}

// Lookup returns the catalog entry for name.
func Lookup(name string) (Preset, error) {
	p, ok := catalog[name]
	if !ok {
		return Preset{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	p.Filters = slices.Clone(p.Filters)
	return p, nil
}

// Named lists the fixed presets, without custom.
func Named() []Preset {
	return lo.FilterMap(order, func(k string, _ int) (Preset, bool) {
		p, _ := Lookup(k)
		return p, k != Custom
	})
}

// Filters returns the ordered stage list of a preset; custom derives it from params.
func Filters(name string, params Params) ([]string, error) {
	if name == Custom {
		return params.Filters(), nil
	}
	p, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	return p.Filters, nil
}

// Chain joins the stages of a preset into the engine's filter string. Empty means no filters.
func Chain(name string, params Params) (string, error) {
	stages, err := Filters(name, params)
	if err != nil {
		return "", err
	}
	return strings.Join(stages, ","), nil
}

// Params are the tunables of the custom preset.
type Params struct {
	CrossfeedStrength     float64 `json:"crossfeed_strength"`
	CrossfeedRange        float64 `json:"crossfeed_range"`
	HaasLevelOut          float64 `json:"haas_level_out"`
	HaasSideGain          float64 `json:"haas_side_gain"`
	ExtrastereoMultiplier float64 `json:"extrastereo_multiplier"`
	SurroundLevelOut      float64 `json:"surround_level_out"`
}

// DefaultParams mirror the natural preset.
func DefaultParams() Params {
	return Params{
		CrossfeedStrength:     0.5,
		CrossfeedRange:        0.6,
		HaasLevelOut:          1.0,
		HaasSideGain:          0.8,
		ExtrastereoMultiplier: 1.5,
		SurroundLevelOut:      1.0,
	}
}

type param struct {
	field    func(*Params) *float64
	min, max float64
}

var params = map[string]param{
	"crossfeed_strength":     {func(p *Params) *float64 { return &p.CrossfeedStrength }, 0, 1},
	"crossfeed_range":        {func(p *Params) *float64 { return &p.CrossfeedRange }, 0, 1},
	"haas_level_out":         {func(p *Params) *float64 { return &p.HaasLevelOut }, 0, 3},
	"haas_side_gain":         {func(p *Params) *float64 { return &p.HaasSideGain }, 0, 3},
	"extrastereo_multiplier": {func(p *Params) *float64 { return &p.ExtrastereoMultiplier }, 0, 3},
	"surround_level_out":     {func(p *Params) *float64 { return &p.SurroundLevelOut }, 0, 3},
}

// ParamNames lists the custom parameter names, sorted.
func ParamNames() []string {
	names := lo.Keys(params)
	slices.Sort(names)
	return names
}

// Set assigns a parameter, clamping it into its range.
func (p *Params) Set(name string, value float64) error {
	spec, ok := params[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}
	*spec.field(p) = util.Clamp(value, spec.min, spec.max)
	return nil
}

// Map returns the parameters keyed by name.
func (p Params) Map() map[string]float64 {
	return lo.MapValues(params, func(spec param, _ string) float64 {
		return *spec.field(&p)
	})
}

// Filters derives the custom stage list.
// Crossfeed loses loudness, so a compensating volume stage follows it when the strength is noticeable.
func (p Params) Filters() []string {
	f := util.FormatFloat
	stages := []string{
		"crossfeed=strength=" + f(p.CrossfeedStrength) + ":range=" + f(p.CrossfeedRange),
	}
	if p.CrossfeedStrength > 0.1 {
		stages = append(stages, "volume="+f(1.0+p.CrossfeedStrength*0.2))
	}
	stages = append(stages,
		"haas=level_in=1.0:level_out="+f(p.HaasLevelOut)+":side_gain="+f(p.HaasSideGain),
		"extrastereo=m="+f(p.ExtrastereoMultiplier),
	)
	if p.SurroundLevelOut > 0 {
		stages = append(stages, "surround=chl_out=stereo:chl_in=stereo:level_in=1.0:level_out="+f(p.SurroundLevelOut))
	}
	return stages
}
