package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/toastkit/internal/config"
	"github.com/jmylchreest/toastkit/internal/tui"
)

var tuiOpts struct {
	preset  string
	logFile string
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the terminal toast playground",
	Long: `Launch a terminal playground that presents toasts with the same
presentation engine toastd uses. Toasts are drawn as boxes that slide
and fade across the terminal.

Key bindings:
  1/l, 2/n, 3/c   Show a low, normal or critical toast
  p               Switch between top and bottom
  enter/space     Tap the current toast
  s               Tap the screen outside the toast
  ↑/k, ↓/j        Swipe the current toast
  h               Hold (touch) the current toast
  d, D            Dismiss the current toast, dismiss all
  ?               Show help
  q               Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)

	tuiCmd.Flags().StringVar(&tuiOpts.preset, "preset", "",
		"Preset applied to every toast")
	tuiCmd.Flags().StringVar(&tuiOpts.logFile, "log-file", "",
		"Write logs to this file (logs are discarded otherwise)")
}

func runTUI(cmd *cobra.Command, args []string) error {
	// stderr belongs to the terminal UI while it runs
	var out io.Writer = io.Discard
	if tuiOpts.logFile != "" {
		f, err := os.OpenFile(tuiOpts.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		out = f
	}
	level := slog.LevelInfo
	if globalOpts.verbose {
		level = slog.LevelDebug
	}
	tuiLogger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))

	if tuiOpts.preset != "" {
		if _, ok := presets[tuiOpts.preset]; !ok {
			return fmt.Errorf("%w: %q", config.ErrPresetNotFound, tuiOpts.preset)
		}
	}

	sched := tui.NewScheduler()
	defer sched.Stop()

	model := tui.New(cfg, presets, tuiOpts.preset, sched, tuiLogger)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui failed: %w", err)
	}
	return nil
}
