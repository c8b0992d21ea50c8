// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/jmylchreest/toastkit/internal/attr"
)

// Urgency levels from the freedesktop notification spec.
const (
	UrgencyLow      = 0
	UrgencyNormal   = 1
	UrgencyCritical = 2
)

// Config is the toastkit configuration.
// Loaded from ~/.config/toastkit/config.toml
type Config struct {
	Display     DisplayConfig     `toml:"display"`
	Timeouts    TimeoutConfig     `toml:"timeouts"`
	Animation   AnimationConfig   `toml:"animation"`
	Interaction InteractionConfig `toml:"interaction"`
	Haptics     HapticsConfig     `toml:"haptics"`
	Presets     PresetsConfig     `toml:"presets"`
	DnD         DnDConfig         `toml:"dnd"`
}

// DisplayConfig contains entry placement settings.
type DisplayConfig struct {
	Position         string  `toml:"position"`           // "top" or "bottom"
	WidthRatio       float64 `toml:"width_ratio"`        // fraction of the container width
	MaxWidth         int     `toml:"max_width"`          // pixels, 0 = no cap
	Height           int     `toml:"height"`             // pixels, 0 = content height
	VerticalOffset   int     `toml:"vertical_offset"`    // pixels from the anchored edge
	OverrideSafeArea bool    `toml:"override_safe_area"` // extend into exclusive zones
	Monitor          int     `toml:"monitor"`            // 0 = default, 1+ = specific monitor
	Opacity          float64 `toml:"opacity"`            // 0.0-1.0, multiplied into entry alpha by the host
}

// TimeoutConfig contains display durations per urgency level.
// Durations can be specified as "5s", "10s", "1m", etc. or as integer milliseconds.
// A value of "0" or 0 means never expire.
type TimeoutConfig struct {
	Low      Duration `toml:"low"`
	Normal   Duration `toml:"normal"`
	Critical Duration `toml:"critical"`
}

// AnimationConfig contains the entrance, exit and pop transitions.
type AnimationConfig struct {
	Entrance TransitionConfig `toml:"entrance"`
	Exit     TransitionConfig `toml:"exit"`
	Pop      TransitionConfig `toml:"pop"`
	// PopOverride removes replaced entries at once instead of animating them.
	PopOverride bool `toml:"pop_override"`
}

// TransitionConfig describes one transition.
type TransitionConfig struct {
	Kind     string   `toml:"kind"` // "slide", "fade", "scale", "slide-fade", "none"
	Duration Duration `toml:"duration"`
	Delay    Duration `toml:"delay"`
}

// Transition kinds.
const (
	TransitionSlide     = "slide"
	TransitionFade      = "fade"
	TransitionScale     = "scale"
	TransitionSlideFade = "slide-fade"
	TransitionNone      = "none"
)

// ValidTransitions returns all valid transition kinds.
func ValidTransitions() []string {
	return []string{TransitionSlide, TransitionFade, TransitionScale, TransitionSlideFade, TransitionNone}
}

// InteractionConfig contains tap and drag behavior.
type InteractionConfig struct {
	Tap           string   `toml:"tap"`    // "dismiss", "delay-exit", "absorb", "forward"
	Screen        string   `toml:"screen"` // action for taps outside the entry
	DelayExit     Duration `toml:"delay_exit"`
	Swipe         bool     `toml:"swipe"`
	RubberBanding bool     `toml:"rubber_banding"`
	Pullback      Duration `toml:"pullback"`
}

// HapticsConfig contains feedback settings. Sounds override the synthesized
// pulse for a kind.
type HapticsConfig struct {
	Enabled  bool        `toml:"enabled"`
	Volume   int         `toml:"volume"` // 0-100
	Low      string      `toml:"low"`    // haptic kind per urgency
	Normal   string      `toml:"normal"`
	Critical string      `toml:"critical"`
	Sounds   SoundConfig `toml:"sounds"`
}

// SoundConfig contains per-haptic sound file paths.
type SoundConfig struct {
	Success string `toml:"success"`
	Warning string `toml:"warning"`
	Error   string `toml:"error"`
}

// PresetsConfig locates named attribute presets.
type PresetsConfig struct {
	Dir     string `toml:"dir"`     // empty = ~/.config/toastkit/presets
	Default string `toml:"default"` // preset applied when none is named
}

// DnDConfig contains Do Not Disturb settings.
type DnDConfig struct {
	Enabled        bool `toml:"enabled"`
	CriticalBypass bool `toml:"critical_bypass"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Display: DisplayConfig{
			Position:   string(attr.PositionTop),
			WidthRatio: 0.9,
			MaxWidth:   480,
			Opacity:    1.0,
		},
		Timeouts: TimeoutConfig{
			Low:      Duration(5 * time.Second),
			Normal:   Duration(10 * time.Second),
			Critical: Duration(0),
		},
		Animation: AnimationConfig{
			Entrance: TransitionConfig{Kind: TransitionSlide, Duration: Duration(300 * time.Millisecond)},
			Exit:     TransitionConfig{Kind: TransitionFade, Duration: Duration(300 * time.Millisecond)},
			Pop:      TransitionConfig{Kind: TransitionFade, Duration: Duration(200 * time.Millisecond)},
		},
		Interaction: InteractionConfig{
			Tap:           string(attr.ActionDismiss),
			Screen:        string(attr.ActionForward),
			Swipe:         true,
			RubberBanding: true,
			Pullback:      Duration(200 * time.Millisecond),
		},
		Haptics: HapticsConfig{
			Enabled:  true,
			Volume:   80,
			Low:      string(attr.HapticNone),
			Normal:   string(attr.HapticSuccess),
			Critical: string(attr.HapticError),
		},
		DnD: DnDConfig{
			Enabled:        false,
			CriticalBypass: true,
		},
	}
}

// configDir returns $XDG_CONFIG_HOME/toastkit or ~/.config/toastkit.
func configDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "toastkit")
}

// ConfigPath returns the path to the config file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigPath() string {
	dir := configDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.toml")
}

// PresetsDir returns the preset directory for c.
func (c *Config) PresetsDir() string {
	if c.Presets.Dir != "" {
		return expandPath(c.Presets.Dir)
	}
	dir := configDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "presets")
}

// Load loads configuration from path. If path is empty the default config
// path is used. Returns the default config if the file doesn't exist.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults, then overlay with file contents
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to path atomically.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return os.Rename(tmpPath, path)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch attr.Position(c.Display.Position) {
	case attr.PositionTop, attr.PositionBottom:
	default:
		return fmt.Errorf("invalid position %q, must be top or bottom", c.Display.Position)
	}

	if c.Display.WidthRatio <= 0 || c.Display.WidthRatio > 1 {
		return fmt.Errorf("width_ratio must be in (0, 1], got %v", c.Display.WidthRatio)
	}
	if c.Display.MaxWidth < 0 || c.Display.Height < 0 {
		return fmt.Errorf("max_width and height cannot be negative")
	}
	if c.Display.Opacity < 0 || c.Display.Opacity > 1 {
		return fmt.Errorf("opacity must be between 0 and 1, got %v", c.Display.Opacity)
	}

	for name, tr := range map[string]TransitionConfig{
		"entrance": c.Animation.Entrance,
		"exit":     c.Animation.Exit,
		"pop":      c.Animation.Pop,
	} {
		if !contains(ValidTransitions(), tr.Kind) {
			return fmt.Errorf("invalid %s transition %q, must be one of: %v", name, tr.Kind, ValidTransitions())
		}
		if tr.Duration < 0 || tr.Delay < 0 {
			return fmt.Errorf("%s transition timings cannot be negative", name)
		}
	}

	validActions := []string{
		string(attr.ActionDismiss),
		string(attr.ActionDelayExit),
		string(attr.ActionAbsorb),
		string(attr.ActionForward),
	}
	for _, action := range []string{c.Interaction.Tap, c.Interaction.Screen} {
		if !contains(validActions, action) {
			return fmt.Errorf("invalid interaction action %q", action)
		}
	}

	if c.Haptics.Volume < 0 || c.Haptics.Volume > 100 {
		return fmt.Errorf("volume must be between 0 and 100, got %d", c.Haptics.Volume)
	}
	validHaptics := []string{
		string(attr.HapticNone),
		string(attr.HapticSuccess),
		string(attr.HapticWarning),
		string(attr.HapticError),
	}
	for _, h := range []string{c.Haptics.Low, c.Haptics.Normal, c.Haptics.Critical} {
		if !contains(validHaptics, h) {
			return fmt.Errorf("invalid haptic %q", h)
		}
	}

	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// TimeoutForUrgency returns the display duration for urgency.
// A zero timeout maps to attr.Forever.
func (c *Config) TimeoutForUrgency(urgency int) time.Duration {
	var d Duration
	switch urgency {
	case UrgencyLow:
		d = c.Timeouts.Low
	case UrgencyCritical:
		d = c.Timeouts.Critical
	default:
		d = c.Timeouts.Normal
	}
	if d <= 0 {
		return attr.Forever
	}
	return d.Duration()
}

// HapticForUrgency returns the haptic emitted for urgency.
func (c *Config) HapticForUrgency(urgency int) attr.Haptic {
	if !c.Haptics.Enabled {
		return attr.HapticNone
	}
	switch urgency {
	case UrgencyLow:
		return attr.Haptic(c.Haptics.Low)
	case UrgencyCritical:
		return attr.Haptic(c.Haptics.Critical)
	default:
		return attr.Haptic(c.Haptics.Normal)
	}
}

// PriorityForUrgency maps urgency to an entry priority so that critical
// notifications are never replaced by normal ones.
func PriorityForUrgency(urgency int) int {
	switch urgency {
	case UrgencyLow:
		return attr.PriorityNormal - 250
	case UrgencyCritical:
		return attr.PriorityHigh
	default:
		return attr.PriorityNormal
	}
}

// SoundForHaptic returns the sound file configured for h, with ~ expanded.
func (c *Config) SoundForHaptic(h attr.Haptic) string {
	var path string
	switch h {
	case attr.HapticSuccess:
		path = c.Haptics.Sounds.Success
	case attr.HapticWarning:
		path = c.Haptics.Sounds.Warning
	case attr.HapticError:
		path = c.Haptics.Sounds.Error
	}
	return expandPath(path)
}

// Attributes builds presentation attributes for urgency from the config.
func (c *Config) Attributes(urgency int) *attr.Attributes {
	a := attr.Default()
	a.Priority = PriorityForUrgency(urgency)
	a.Position = attr.Position(c.Display.Position)

	pc := &a.PositionConstraints
	pc.Width = attr.Ratio(c.Display.WidthRatio)
	pc.MaxWidth = attr.Unspecified()
	if c.Display.MaxWidth > 0 {
		pc.MaxWidth = attr.Constant(float64(c.Display.MaxWidth))
	}
	pc.Height = attr.Intrinsic()
	if c.Display.Height > 0 {
		pc.Height = attr.Constant(float64(c.Display.Height))
	}
	pc.VerticalOffset = float64(c.Display.VerticalOffset)
	pc.SafeArea.Overridden = c.Display.OverrideSafeArea

	a.EntranceAnimation = c.Animation.Entrance.Animation(true)
	a.ExitAnimation = c.Animation.Exit.Animation(false)
	a.PopBehavior = attr.PopBehavior{Kind: attr.PopAnimated, Animation: c.Animation.Pop.Animation(false)}
	if c.Animation.PopOverride {
		a.PopBehavior = attr.PopBehavior{Kind: attr.PopOverridden}
	}

	a.DisplayDuration = c.TimeoutForUrgency(urgency)
	a.EntryInteraction = attr.Interaction{
		Default:   attr.Action(c.Interaction.Tap),
		DelayExit: c.Interaction.DelayExit.Duration(),
	}
	a.ScreenInteraction = attr.Interaction{Default: attr.Action(c.Interaction.Screen)}
	a.Scroll = attr.Scroll{
		Kind:          attr.ScrollEnabled,
		Swipeable:     c.Interaction.Swipe,
		RubberBanding: c.Interaction.RubberBanding,
		Pullback: attr.Animation{
			Duration:  c.Interaction.Pullback.Duration(),
			Translate: &attr.Translate{From: attr.FromAutomatic},
		},
	}
	a.Haptic = c.HapticForUrgency(urgency)
	return a
}

// Animation converts a transition to an attr.Animation. Entrances run from
// hidden to shown, exits the other way.
func (t TransitionConfig) Animation(entering bool) attr.Animation {
	anim := attr.Animation{Duration: t.Duration.Duration(), Delay: t.Delay.Duration()}
	fade := &attr.Range{Start: 1, End: 0}
	scale := &attr.Range{Start: 1, End: 0.8}
	if entering {
		fade = &attr.Range{Start: 0, End: 1}
		scale = &attr.Range{Start: 0.8, End: 1}
	}

	switch t.Kind {
	case TransitionSlide:
		anim.Translate = &attr.Translate{From: attr.FromAutomatic}
	case TransitionFade:
		anim.Fade = fade
	case TransitionScale:
		anim.Scale = scale
		anim.Fade = fade
	case TransitionSlideFade:
		anim.Translate = &attr.Translate{From: attr.FromAutomatic}
		anim.Fade = fade
	default:
		return attr.None()
	}
	return anim
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
