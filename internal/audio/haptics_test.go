package audio

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/generators"
	"github.com/gopxl/beep/v2/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toastkit/internal/attr"
	"github.com/jmylchreest/toastkit/internal/config"
)

type fakeOutput struct {
	inits   []beep.SampleRate
	played  []beep.Streamer
	closed  bool
	initErr error
}

func (o *fakeOutput) Init(sr beep.SampleRate, _ int) error {
	o.inits = append(o.inits, sr)
	return o.initErr
}

func (o *fakeOutput) Play(s beep.Streamer) { o.played = append(o.played, s) }
func (o *fakeOutput) Close()               { o.closed = true }

// samples drains s and returns how many samples it produced.
func samples(s beep.Streamer) int {
	buf := make([][2]float64, 512)
	total := 0
	for {
		n, ok := s.Stream(buf)
		total += n
		if !ok || n == 0 {
			return total
		}
	}
}

func writeWAV(t *testing.T, n int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ding.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	format := beep.Format{SampleRate: 44100, NumChannels: 2, Precision: 2}
	require.NoError(t, wav.Encode(f, beep.Take(n, generators.Silence(-1)), format))
	return path
}

func TestPlayer_PlayPattern(t *testing.T) {
	out := &fakeOutput{}
	p := NewPlayerWithOutput(out, nil)

	require.NoError(t, p.PlayPattern(Patterns[attr.HapticWarning]))
	require.Len(t, out.played, 1)
	assert.Equal(t, []beep.SampleRate{44100}, out.inits)

	sr := beep.SampleRate(44100)
	want := sr.N(80*time.Millisecond) + sr.N(60*time.Millisecond) + sr.N(80*time.Millisecond)
	assert.Equal(t, want, samples(out.played[0]))

	require.NoError(t, p.PlayPattern(nil))
	assert.Len(t, out.played, 1, "empty pattern is silent")
}

func TestPlayer_PlayFileIsCached(t *testing.T) {
	out := &fakeOutput{}
	p := NewPlayerWithOutput(out, nil)
	path := writeWAV(t, 4410)

	require.NoError(t, p.Play(path))
	assert.True(t, p.Cached(path))
	require.NoError(t, p.Play(path))

	require.Len(t, out.played, 2)
	assert.Equal(t, 4410, samples(out.played[1]))

	p.ClearCache()
	assert.False(t, p.Cached(path))

	p.Close()
	assert.True(t, out.closed)
}

func TestPlayer_Errors(t *testing.T) {
	out := &fakeOutput{}
	p := NewPlayerWithOutput(out, nil)

	assert.NoError(t, p.Play(""))
	assert.Error(t, p.Play(filepath.Join(t.TempDir(), "missing.wav")))

	txt := filepath.Join(t.TempDir(), "sound.txt")
	require.NoError(t, os.WriteFile(txt, []byte("x"), 0644))
	assert.Error(t, p.Play(txt))

	failing := NewPlayerWithOutput(&fakeOutput{initErr: errors.New("no device")}, nil)
	assert.Error(t, failing.PlayPattern(Patterns[attr.HapticSuccess]))
}

func TestPlayer_Volume(t *testing.T) {
	p := NewPlayerWithOutput(&fakeOutput{}, nil)
	p.SetVolume(1.5)
	assert.Equal(t, 1.0, p.Volume())
	p.SetVolume(-1)
	assert.Equal(t, 0.0, p.Volume())
}

func TestHaptics_Emit(t *testing.T) {
	out := &fakeOutput{}
	cfg := config.DefaultConfig()
	cfg.Haptics.Volume = 50
	h := NewHaptics(cfg, NewPlayerWithOutput(out, nil), nil)

	h.Emit(attr.HapticNone)
	h.Emit("")
	assert.Empty(t, out.played)

	h.Emit(attr.HapticError)
	require.Len(t, out.played, 1)
	_, isVolume := out.played[0].(*effects.Volume)
	assert.True(t, isVolume, "half volume wraps the stream")

	cfg.Haptics.Enabled = false
	h.Reload(cfg)
	h.Emit(attr.HapticError)
	assert.Len(t, out.played, 1)
}

func TestHaptics_SoundFileOverridesPulse(t *testing.T) {
	out := &fakeOutput{}
	cfg := config.DefaultConfig()
	cfg.Haptics.Sounds.Success = writeWAV(t, 1000)
	cfg.Haptics.Sounds.Warning = filepath.Join(t.TempDir(), "missing.wav")

	h := NewHaptics(cfg, NewPlayerWithOutput(out, nil), nil)

	h.Emit(attr.HapticSuccess)
	require.Len(t, out.played, 1)
	assert.Equal(t, 1000, samples(out.played[0]))

	// missing files fall back to the pulse
	h.Emit(attr.HapticWarning)
	require.Len(t, out.played, 2)
	assert.Greater(t, samples(out.played[1]), 1000)
}

func TestHaptics_ErrorCallback(t *testing.T) {
	cfg := config.DefaultConfig()
	h := NewHaptics(cfg, NewPlayerWithOutput(&fakeOutput{initErr: errors.New("no device")}, nil), nil)

	var got error
	h.SetErrorCallback(func(err error) { got = err })
	h.Emit(attr.HapticSuccess)
	assert.Error(t, got)
}
