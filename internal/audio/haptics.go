package audio

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/toastkit/internal/attr"
	"github.com/jmylchreest/toastkit/internal/config"
)

// Patterns are the synthesized pulses played when no sound file is set.
var Patterns = map[attr.Haptic][]Pulse{
	attr.HapticSuccess: {
		{Freq: 880, On: 60 * time.Millisecond},
	},
	attr.HapticWarning: {
		{Freq: 660, On: 80 * time.Millisecond, Off: 60 * time.Millisecond},
		{Freq: 660, On: 80 * time.Millisecond},
	},
	attr.HapticError: {
		{Freq: 440, On: 100 * time.Millisecond, Off: 50 * time.Millisecond},
		{Freq: 440, On: 100 * time.Millisecond, Off: 50 * time.Millisecond},
		{Freq: 330, On: 160 * time.Millisecond},
	},
}

// Haptics plays feedback for entries as they enter. It satisfies
// presentation.Haptics.
type Haptics struct {
	mu      sync.RWMutex
	logger  *slog.Logger
	player  *Player
	enabled bool
	sounds  map[attr.Haptic]string
	onError func(err error)
}

// NewHaptics creates haptics configured from cfg.
func NewHaptics(cfg *config.Config, player *Player, logger *slog.Logger) *Haptics {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Haptics{logger: logger, player: player}
	h.Reload(cfg)
	return h
}

// SetErrorCallback sets the callback invoked when playback fails.
func (h *Haptics) SetErrorCallback(fn func(err error)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onError = fn
}

// Reload applies cfg. Changed sound files are decoded again.
func (h *Haptics) Reload(cfg *config.Config) {
	sounds := make(map[attr.Haptic]string)
	for _, k := range []attr.Haptic{attr.HapticSuccess, attr.HapticWarning, attr.HapticError} {
		if path := cfg.SoundForHaptic(k); path != "" {
			sounds[k] = path
		}
	}

	h.player.SetVolume(float64(cfg.Haptics.Volume) / 100.0)
	h.player.ClearCache()
	for k, path := range sounds {
		if err := h.player.Preload(path); err != nil {
			h.logger.Warn("haptic sound unavailable, using pulse", "haptic", k, "path", path, "error", err)
			delete(sounds, k)
		}
	}

	h.mu.Lock()
	h.enabled = cfg.Haptics.Enabled
	h.sounds = sounds
	h.mu.Unlock()
}

// Emit implements presentation.Haptics. Sound files are preloaded and the
// speaker mixes asynchronously, so Emit does not block on playback.
func (h *Haptics) Emit(k attr.Haptic) {
	h.mu.RLock()
	enabled, path, onError := h.enabled, h.sounds[k], h.onError
	h.mu.RUnlock()

	if !enabled || k == attr.HapticNone || k == "" {
		return
	}

	var err error
	if path != "" {
		err = h.player.Play(path)
	} else {
		err = h.player.PlayPattern(Patterns[k])
	}
	if err != nil {
		h.logger.Warn("haptic playback failed", "haptic", k, "error", err)
		if onError != nil {
			onError(err)
		}
		return
	}
	h.logger.Debug("haptic emitted", "haptic", k)
}
