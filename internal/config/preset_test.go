package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toastkit/internal/attr"
)

const tomlPreset = `
priority = 900
position = "bottom"
display = "6s"
tap = "delay-exit"
delay_exit = "2s"
haptic = "warning"

[width]
kind = "offset"
leading = 16
trailing = 16

[entrance]
duration = "250ms"
translate = "bottom"
scale = [0.9, 1.0]

[pop]
kind = "overridden"
`

const yamlPreset = `
name: sticky
display: 0
swipeable: false
exit:
  duration: 400
  fade: [1, 0]
max_width:
  kind: ratio
  ratio: 0.6
`

func writePresets(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "alert.toml"), []byte(tomlPreset), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "whatever.yaml"), []byte(yamlPreset), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# presets"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0755))
	return dir
}

func TestLoadPresets(t *testing.T) {
	presets, err := LoadPresets(writePresets(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"alert", "sticky"}, PresetNames(presets))
}

func TestLoadPresets_MissingDir(t *testing.T) {
	presets, err := LoadPresets(filepath.Join(t.TempDir(), "none"))
	require.NoError(t, err)
	assert.Empty(t, presets)
}

func TestLoadPreset_UnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preset.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0644))
	_, err := LoadPreset(path)
	assert.Error(t, err)
}

func TestPreset_ApplyTOML(t *testing.T) {
	presets, err := LoadPresets(writePresets(t))
	require.NoError(t, err)

	base := attr.Default()
	a, err := presets["alert"].Apply(base)
	require.NoError(t, err)

	assert.Equal(t, "alert", a.Name)
	assert.Equal(t, 900, a.Priority)
	assert.Equal(t, attr.PositionBottom, a.Position)
	assert.Equal(t, attr.Offset(16, 16), a.PositionConstraints.Width)
	assert.Equal(t, 6*time.Second, a.DisplayDuration)
	assert.Equal(t, attr.ActionDelayExit, a.EntryInteraction.Default)
	assert.Equal(t, 2*time.Second, a.EntryInteraction.DelayExit)
	assert.Equal(t, attr.HapticWarning, a.Haptic)
	assert.Equal(t, attr.FromBottom, a.EntranceAnimation.Translate.From)
	assert.Equal(t, &attr.Range{Start: 0.9, End: 1}, a.EntranceAnimation.Scale)
	assert.Equal(t, 250*time.Millisecond, a.EntranceAnimation.Duration)
	assert.Equal(t, attr.PopOverridden, a.PopBehavior.Kind)

	// base untouched
	assert.Equal(t, attr.PositionTop, base.Position)
	assert.Empty(t, base.Name)
}

func TestPreset_ApplyYAML(t *testing.T) {
	presets, err := LoadPresets(writePresets(t))
	require.NoError(t, err)

	a, err := presets["sticky"].Apply(attr.Default())
	require.NoError(t, err)

	assert.Equal(t, attr.Forever, a.DisplayDuration)
	assert.False(t, a.Scroll.Swipeable)
	assert.Equal(t, 400*time.Millisecond, a.ExitAnimation.Duration, "bare YAML numbers are milliseconds")
	assert.Equal(t, &attr.Range{Start: 1, End: 0}, a.ExitAnimation.Fade)
	assert.Equal(t, attr.Ratio(0.6), a.PositionConstraints.MaxWidth)
}

func TestPreset_ApplyInvalid(t *testing.T) {
	p := &Preset{Name: "bad", Position: "sideways"}
	_, err := p.Apply(attr.Default())
	assert.ErrorIs(t, err, attr.ErrInvalidPosition)

	p = &Preset{Name: "bad", Entrance: &AnimationSpec{Fade: []float64{1}}}
	_, err = p.Apply(attr.Default())
	assert.Error(t, err)
}

func TestConfig_Resolve(t *testing.T) {
	presets, err := LoadPresets(writePresets(t))
	require.NoError(t, err)

	cfg := DefaultConfig()
	base := attr.Default()

	a, err := cfg.Resolve(presets, "", base)
	require.NoError(t, err)
	assert.Same(t, base, a)

	cfg.Presets.Default = "sticky"
	a, err = cfg.Resolve(presets, "", base)
	require.NoError(t, err)
	assert.Equal(t, "sticky", a.Name)

	_, err = cfg.Resolve(presets, "missing", base)
	assert.ErrorIs(t, err, ErrPresetNotFound)
}
