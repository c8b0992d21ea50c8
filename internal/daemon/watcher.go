package daemon

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jmylchreest/toastkit/internal/config"
)

// ConfigWatcher watches the config file and the preset directory and
// reloads both after a change settles.
type ConfigWatcher struct {
	mu     sync.Mutex
	logger *slog.Logger

	configPath string
	presetsDir string
	watcher    *fsnotify.Watcher

	debounce time.Duration
	timer    *time.Timer

	onReload func(cfg *config.Config, presets map[string]*config.Preset)
	onError  func(err error)

	done    chan struct{}
	running bool
}

// NewConfigWatcher creates a watcher for configPath. An empty path uses the
// default config location.
func NewConfigWatcher(configPath string, logger *slog.Logger) (*ConfigWatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if configPath == "" {
		configPath = config.ConfigPath()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &ConfigWatcher{
		logger:     logger,
		configPath: configPath,
		watcher:    w,
		debounce:   250 * time.Millisecond,
		done:       make(chan struct{}),
	}, nil
}

// SetDebounce sets how long changes must settle before a reload.
func (w *ConfigWatcher) SetDebounce(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.debounce = d
}

// SetReloadCallback sets the callback invoked with a validated config.
// Callbacks run on a timer goroutine.
func (w *ConfigWatcher) SetReloadCallback(fn func(cfg *config.Config, presets map[string]*config.Preset)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onReload = fn
}

// SetErrorCallback sets the callback invoked when a reload fails; the
// previous config stays in effect.
func (w *ConfigWatcher) SetErrorCallback(fn func(err error)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onError = fn
}

// Start begins watching. The config directory is watched rather than the
// file, since editors replace files on save.
func (w *ConfigWatcher) Start(current *config.Config) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.watcher.Add(filepath.Dir(w.configPath)); err != nil {
		return err
	}
	w.watchPresets(current.PresetsDir())

	go w.watch()
	w.logger.Debug("config watcher started", "path", w.configPath, "presets", w.presetsDir)
	return nil
}

func (w *ConfigWatcher) watchPresets(dir string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if dir == w.presetsDir {
		return
	}
	if w.presetsDir != "" {
		_ = w.watcher.Remove(w.presetsDir)
	}
	w.presetsDir = ""
	if dir == "" {
		return
	}
	if _, err := os.Stat(dir); err != nil {
		return
	}
	if err := w.watcher.Add(dir); err != nil {
		w.logger.Warn("cannot watch preset directory", "dir", dir, "error", err)
		return
	}
	w.presetsDir = dir
}

func (w *ConfigWatcher) watch() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if w.relevant(event.Name) {
				w.logger.Debug("config change detected", "file", event.Name, "op", event.Op.String())
				w.schedule()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", "error", err)

		case <-w.done:
			return
		}
	}
}

func (w *ConfigWatcher) relevant(name string) bool {
	if filepath.Clean(name) == filepath.Clean(w.configPath) {
		return true
	}
	w.mu.Lock()
	dir := w.presetsDir
	w.mu.Unlock()
	if dir == "" || filepath.Dir(name) != filepath.Clean(dir) {
		return false
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".toml", ".yaml", ".yml":
		return true
	}
	return false
}

// schedule arms the reload, replacing any pending one.
func (w *ConfigWatcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *ConfigWatcher) reload() {
	w.mu.Lock()
	onReload, onError := w.onReload, w.onError
	w.mu.Unlock()

	cfg, err := config.Load(w.configPath)
	if err == nil {
		var presets map[string]*config.Preset
		presets, err = config.LoadPresets(cfg.PresetsDir())
		if err == nil {
			w.watchPresets(cfg.PresetsDir())
			w.logger.Info("config reloaded", "path", w.configPath, "presets", len(presets))
			if onReload != nil {
				onReload(cfg, presets)
			}
			return
		}
	}

	w.logger.Warn("config changed but reload failed", "error", err)
	if onError != nil {
		onError(err)
	}
}

// Stop stops watching.
func (w *ConfigWatcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}
	w.running = false
	if w.timer != nil {
		w.timer.Stop()
	}
	close(w.done)
	return w.watcher.Close()
}
