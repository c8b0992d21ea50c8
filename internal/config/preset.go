package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/toastkit/internal/attr"
)

// ErrPresetNotFound is returned when a named preset does not exist.
var ErrPresetNotFound = errors.New("preset not found")

// Preset is a named set of attribute overrides. Unset fields keep the value
// of the attributes the preset is applied to.
type Preset struct {
	Name     string `toml:"name" yaml:"name"`
	Priority *int   `toml:"priority,omitempty" yaml:"priority,omitempty"`
	Position string `toml:"position,omitempty" yaml:"position,omitempty"`

	Width            *SizeSpec `toml:"width,omitempty" yaml:"width,omitempty"`
	Height           *SizeSpec `toml:"height,omitempty" yaml:"height,omitempty"`
	MaxWidth         *SizeSpec `toml:"max_width,omitempty" yaml:"max_width,omitempty"`
	VerticalOffset   *float64  `toml:"vertical_offset,omitempty" yaml:"vertical_offset,omitempty"`
	OverrideSafeArea *bool     `toml:"override_safe_area,omitempty" yaml:"override_safe_area,omitempty"`

	Entrance *AnimationSpec `toml:"entrance,omitempty" yaml:"entrance,omitempty"`
	Exit     *AnimationSpec `toml:"exit,omitempty" yaml:"exit,omitempty"`
	Pop      *PopSpec       `toml:"pop,omitempty" yaml:"pop,omitempty"`

	// Display is the rest time; "0" keeps the entry until dismissed.
	Display   *Duration `toml:"display,omitempty" yaml:"display,omitempty"`
	Tap       string    `toml:"tap,omitempty" yaml:"tap,omitempty"`
	Screen    string    `toml:"screen,omitempty" yaml:"screen,omitempty"`
	DelayExit *Duration `toml:"delay_exit,omitempty" yaml:"delay_exit,omitempty"`

	Scroll        string `toml:"scroll,omitempty" yaml:"scroll,omitempty"`
	Swipeable     *bool  `toml:"swipeable,omitempty" yaml:"swipeable,omitempty"`
	RubberBanding *bool  `toml:"rubber_banding,omitempty" yaml:"rubber_banding,omitempty"`

	Haptic string `toml:"haptic,omitempty" yaml:"haptic,omitempty"`
}

// SizeSpec is a size policy in file form.
type SizeSpec struct {
	Kind     string  `toml:"kind" yaml:"kind"` // offset, ratio, constant, intrinsic, unspecified
	Leading  float64 `toml:"leading,omitempty" yaml:"leading,omitempty"`
	Trailing float64 `toml:"trailing,omitempty" yaml:"trailing,omitempty"`
	Ratio    float64 `toml:"ratio,omitempty" yaml:"ratio,omitempty"`
	Value    float64 `toml:"value,omitempty" yaml:"value,omitempty"`
}

// Policy converts the size spec to a policy.
func (s SizeSpec) Policy() attr.SizePolicy {
	return attr.SizePolicy{
		Kind:     attr.SizeKind(s.Kind),
		Leading:  s.Leading,
		Trailing: s.Trailing,
		Ratio:    s.Ratio,
		Value:    s.Value,
	}
}

// AnimationSpec is an animation in file form. Fade and scale are
// [start, end] pairs.
type AnimationSpec struct {
	Duration  Duration  `toml:"duration" yaml:"duration"`
	Delay     Duration  `toml:"delay,omitempty" yaml:"delay,omitempty"`
	Translate string    `toml:"translate,omitempty" yaml:"translate,omitempty"` // automatic, top, bottom
	Fade      []float64 `toml:"fade,omitempty" yaml:"fade,omitempty"`
	Scale     []float64 `toml:"scale,omitempty" yaml:"scale,omitempty"`
}

// Animation converts the file form to an attr.Animation.
func (s AnimationSpec) Animation() (attr.Animation, error) {
	a := attr.Animation{Duration: s.Duration.Duration(), Delay: s.Delay.Duration()}
	if s.Translate != "" {
		a.Translate = &attr.Translate{From: attr.TranslateFrom(s.Translate)}
	}
	var err error
	if a.Fade, err = rangeOf("fade", s.Fade); err != nil {
		return a, err
	}
	if a.Scale, err = rangeOf("scale", s.Scale); err != nil {
		return a, err
	}
	return a, nil
}

func rangeOf(name string, v []float64) (*attr.Range, error) {
	switch len(v) {
	case 0:
		return nil, nil
	case 2:
		return &attr.Range{Start: v[0], End: v[1]}, nil
	default:
		return nil, fmt.Errorf("%s must be [start, end], got %d values", name, len(v))
	}
}

// PopSpec is a pop behavior in file form.
type PopSpec struct {
	Kind      string        `toml:"kind" yaml:"kind"` // overridden, animated
	Animation AnimationSpec `toml:"animation,omitempty" yaml:"animation,omitempty"`
}

// Apply overlays the preset on a copy of base and validates the result.
func (p *Preset) Apply(base *attr.Attributes) (*attr.Attributes, error) {
	a := *base
	if p.Name != "" {
		a.Name = p.Name
	}
	if p.Priority != nil {
		a.Priority = *p.Priority
	}
	if p.Position != "" {
		a.Position = attr.Position(p.Position)
	}

	pc := &a.PositionConstraints
	if p.Width != nil {
		pc.Width = p.Width.Policy()
	}
	if p.Height != nil {
		pc.Height = p.Height.Policy()
	}
	if p.MaxWidth != nil {
		pc.MaxWidth = p.MaxWidth.Policy()
	}
	if p.VerticalOffset != nil {
		pc.VerticalOffset = *p.VerticalOffset
	}
	if p.OverrideSafeArea != nil {
		pc.SafeArea.Overridden = *p.OverrideSafeArea
	}

	for _, ov := range []struct {
		spec *AnimationSpec
		dst  *attr.Animation
		name string
	}{
		{p.Entrance, &a.EntranceAnimation, "entrance"},
		{p.Exit, &a.ExitAnimation, "exit"},
	} {
		if ov.spec == nil {
			continue
		}
		anim, err := ov.spec.Animation()
		if err != nil {
			return nil, fmt.Errorf("preset %q %s: %w", p.Name, ov.name, err)
		}
		*ov.dst = anim
	}

	if p.Pop != nil {
		anim, err := p.Pop.Animation.Animation()
		if err != nil {
			return nil, fmt.Errorf("preset %q pop: %w", p.Name, err)
		}
		a.PopBehavior = attr.PopBehavior{Kind: attr.PopKind(p.Pop.Kind), Animation: anim}
	}

	if p.Display != nil {
		a.DisplayDuration = p.Display.Duration()
		if a.DisplayDuration <= 0 {
			a.DisplayDuration = attr.Forever
		}
	}
	if p.Tap != "" {
		a.EntryInteraction.Default = attr.Action(p.Tap)
	}
	if p.DelayExit != nil {
		a.EntryInteraction.DelayExit = p.DelayExit.Duration()
	}
	if p.Screen != "" {
		a.ScreenInteraction.Default = attr.Action(p.Screen)
	}
	if p.Scroll != "" {
		a.Scroll.Kind = attr.ScrollKind(p.Scroll)
	}
	if p.Swipeable != nil {
		a.Scroll.Swipeable = *p.Swipeable
	}
	if p.RubberBanding != nil {
		a.Scroll.RubberBanding = *p.RubberBanding
	}
	if p.Haptic != "" {
		a.Haptic = attr.Haptic(p.Haptic)
	}

	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("preset %q: %w", p.Name, err)
	}
	return &a, nil
}

// LoadPreset reads one preset file. The format follows the extension:
// .toml, or .yaml/.yml. The preset name defaults to the file name.
func LoadPreset(path string) (*Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read preset: %w", err)
	}

	var p Preset
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, &p)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &p)
	default:
		return nil, fmt.Errorf("unsupported preset format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse preset %s: %w", filepath.Base(path), err)
	}

	if p.Name == "" {
		p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return &p, nil
}

// LoadPresets reads every preset in dir, keyed by name. A missing directory
// yields no presets.
func LoadPresets(dir string) (map[string]*Preset, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]*Preset{}, nil
		}
		return nil, fmt.Errorf("failed to read preset directory: %w", err)
	}

	presets := make(map[string]*Preset)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".toml", ".yaml", ".yml":
		default:
			continue
		}
		p, err := LoadPreset(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		presets[p.Name] = p
	}
	return presets, nil
}

// PresetNames returns the names in presets, sorted.
func PresetNames(presets map[string]*Preset) []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve applies the named preset to base. An empty name uses the
// configured default preset, and no preset at all returns base unchanged.
func (c *Config) Resolve(presets map[string]*Preset, name string, base *attr.Attributes) (*attr.Attributes, error) {
	if name == "" {
		name = c.Presets.Default
	}
	if name == "" {
		return base, nil
	}
	p, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrPresetNotFound, name)
	}
	return p.Apply(base)
}
