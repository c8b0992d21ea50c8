// Package main is the entry point for the toastd notification daemon.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	"github.com/diamondburned/gotk4/pkg/glib/v2"

	"github.com/jmylchreest/toastkit/internal/audio"
	"github.com/jmylchreest/toastkit/internal/config"
	"github.com/jmylchreest/toastkit/internal/daemon"
	"github.com/jmylchreest/toastkit/internal/dbus"
	"github.com/jmylchreest/toastkit/internal/display"
	"github.com/jmylchreest/toastkit/internal/presentation"
)

const (
	appID   = "io.github.jmylchreest.toastd"
	appName = "toastd"
)

var (
	// Build-time variables
	version = "dev"
)

func main() {
	monitorMode := flag.Bool("monitor", false, "Run in monitor mode (show toasts for notifications handled by another daemon, without claiming the bus name)")
	configPath := flag.String("config", "", "Path to config file (default: ~/.config/toastkit/config.toml)")
	verbose := flag.Bool("v", false, "Enable debug logging")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("toastd version", version)
		os.Exit(0)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	path := *configPath
	if path == "" {
		path = config.ConfigPath()
	}

	os.Exit(run(path, *monitorMode, logger))
}

// run starts the GTK application and returns its exit status.
func run(configPath string, monitorMode bool, logger *slog.Logger) int {
	logger.Info("starting toastd", "version", version, "monitor", monitorMode)

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return 1
	}
	presets, err := config.LoadPresets(cfg.PresetsDir())
	if err != nil {
		logger.Warn("failed to load presets", "error", err)
	}

	app := adw.NewApplication(appID, 0)

	var (
		dbusServer    *dbus.NotificationServer
		busMonitor    *dbus.Monitor
		host          *display.Host
		player        *audio.Player
		configWatcher *daemon.ConfigWatcher
		running       atomic.Bool
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received signal, shutting down", "signal", sig)
			glib.IdleAdd(func() { app.Quit() })
		case <-ctx.Done():
		}
	}()

	app.ConnectActivate(func() {
		if running.Load() {
			logger.Warn("application already running")
			return
		}
		running.Store(true)

		// toastd runs without windows between toasts
		app.Hold()

		host = display.NewHost(&app.Application, cfg, logger)
		if err := host.Start(); err != nil {
			logger.Error("failed to start display host", "error", err)
			app.Quit()
			return
		}

		player = audio.NewPlayer(logger)
		haptics := audio.NewHaptics(cfg, player, logger)

		manager := presentation.NewManager(host, presentation.DelegateFuncs{}, display.Scheduler{},
			presentation.WithLogger(logger),
			presentation.WithHaptics(haptics),
		)
		host.OnContainerChanged(manager.Relayout)

		svc := daemon.NewService(manager, host, cfg, presets,
			daemon.WithPoster(display.Post),
			daemon.WithServiceLogger(logger),
		)

		notifier := daemon.NewInternalNotifier(logger, nil)
		haptics.SetErrorCallback(notifier.NotifyAudioError)

		if monitorMode {
			busMonitor = dbus.NewMonitor(svc.HandleNotify, logger)
			if err := busMonitor.Start(); err != nil {
				logger.Error("failed to start D-Bus monitor", "error", err)
				app.Quit()
				return
			}
			notifier.SetEnabled(false)
		} else {
			dbusServer = dbus.NewNotificationServer(svc, logger)
			dbusServer.SetServerInfo(dbus.ServerInfo{
				Name:        appName,
				Vendor:      "toastkit",
				Version:     version,
				SpecVersion: "1.2",
			})
			svc.SetSignals(dbusServer)
			if err := dbusServer.Start(); err != nil {
				logger.Error("failed to start D-Bus server", "error", err)
				app.Quit()
				return
			}
			notifier.SetNotifyHandler(dbusServer.NotifyInternal)
		}

		configWatcher, err = daemon.NewConfigWatcher(configPath, logger)
		if err != nil {
			logger.Warn("failed to create config watcher", "error", err)
		} else {
			configWatcher.SetReloadCallback(func(newConfig *config.Config, newPresets map[string]*config.Preset) {
				display.Post(func() {
					dndChanged := newConfig.DnD.Enabled != svc.DnD()
					svc.Reload(newConfig, newPresets)
					host.Reload(newConfig)
					haptics.Reload(newConfig)
					if dndChanged {
						notifier.NotifyDnDChanged(newConfig.DnD.Enabled)
					} else {
						notifier.NotifyConfigReloaded()
					}
				})
			})
			configWatcher.SetErrorCallback(notifier.NotifyConfigError)
			if err := configWatcher.Start(cfg); err != nil {
				logger.Warn("failed to start config watcher", "error", err)
			}
		}

		notifier.NotifyStartup(version)
		logger.Info("toastd ready", "dbus_interface", dbus.DBusInterface, "presets", len(presets))
	})

	app.ConnectShutdown(func() {
		logger.Info("application shutting down")
		if configWatcher != nil {
			if err := configWatcher.Stop(); err != nil {
				logger.Warn("error stopping config watcher", "error", err)
			}
		}
		if busMonitor != nil {
			if err := busMonitor.Stop(); err != nil {
				logger.Warn("error stopping monitor", "error", err)
			}
		}
		if dbusServer != nil {
			_ = dbusServer.Stop()
		}
		if player != nil {
			player.Close()
		}
		running.Store(false)
	})

	status := app.Run(os.Args[:1])
	if status != 0 {
		logger.Error("application exited with error", "status", status)
	}
	logger.Info("toastd stopped")
	return status
}
