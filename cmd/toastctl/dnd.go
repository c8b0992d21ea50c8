package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var dndOpts struct {
	quiet bool // Suppress output, return exit code only
}

// dndCmd represents the dnd command group.
var dndCmd = &cobra.Command{
	Use:   "dnd",
	Short: "Manage Do Not Disturb mode",
	Long: `Manage Do Not Disturb (DnD) mode for toastd.

When DnD is enabled, toastd stops presenting toasts. Critical notifications
still appear unless dnd.critical_bypass is turned off.

The setting lives in the configuration file, which toastd reloads on change.

Use 'toastctl dnd status' to check the current state.
Use 'toastctl dnd on' to enable DnD mode.
Use 'toastctl dnd off' to disable DnD mode.
Use 'toastctl dnd toggle' to toggle DnD mode.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default to showing status
		return dndStatusRun(cmd, args)
	},
}

// dndOnCmd enables DnD mode.
var dndOnCmd = &cobra.Command{
	Use:   "on",
	Short: "Enable Do Not Disturb mode",
	RunE: func(cmd *cobra.Command, args []string) error {
		return dndSet(cmd.OutOrStdout(), true)
	},
}

// dndOffCmd disables DnD mode.
var dndOffCmd = &cobra.Command{
	Use:   "off",
	Short: "Disable Do Not Disturb mode",
	RunE: func(cmd *cobra.Command, args []string) error {
		return dndSet(cmd.OutOrStdout(), false)
	},
}

// dndToggleCmd toggles DnD mode.
var dndToggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Toggle Do Not Disturb mode",
	RunE: func(cmd *cobra.Command, args []string) error {
		return dndSet(cmd.OutOrStdout(), !cfg.DnD.Enabled)
	},
}

// dndStatusCmd shows DnD status.
var dndStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show Do Not Disturb status",
	RunE:  dndStatusRun,
}

func init() {
	dndCmd.AddCommand(dndOnCmd)
	dndCmd.AddCommand(dndOffCmd)
	dndCmd.AddCommand(dndToggleCmd)
	dndCmd.AddCommand(dndStatusCmd)

	for _, cmd := range []*cobra.Command{dndCmd, dndOnCmd, dndOffCmd, dndToggleCmd, dndStatusCmd} {
		cmd.Flags().BoolVarP(&dndOpts.quiet, "quiet", "q", false,
			"Suppress output, return exit code only (0=off, 1=on)")
	}

	rootCmd.AddCommand(dndCmd)
}

// dndSet writes the DnD state to the configuration file.
func dndSet(w io.Writer, enabled bool) error {
	cfg.DnD.Enabled = enabled
	if err := cfg.Save(configPath()); err != nil {
		if !dndOpts.quiet {
			fmt.Fprintf(os.Stderr, "Failed to save config: %v\n", err)
		}
		return err
	}
	if !dndOpts.quiet {
		fmt.Fprintln(w, dndLine(enabled))
	}
	dndExit(enabled)
	return nil
}

func dndStatusRun(cmd *cobra.Command, args []string) error {
	if !dndOpts.quiet {
		w := cmd.OutOrStdout()
		fmt.Fprintln(w, dndLine(cfg.DnD.Enabled))
		if cfg.DnD.Enabled {
			fmt.Fprintf(w, "  Critical bypass: %t\n", cfg.DnD.CriticalBypass)
		}
		if info, err := os.Stat(configPath()); err == nil {
			fmt.Fprintf(w, "  Last change: %s\n", formatChangeTime(info.ModTime()))
		}
	}
	dndExit(cfg.DnD.Enabled)
	return nil
}

func dndLine(enabled bool) string {
	if enabled {
		return "Do Not Disturb: enabled"
	}
	return "Do Not Disturb: disabled"
}

// dndExit exits with status 1 when DnD is on, so scripts can test it.
func dndExit(enabled bool) {
	if enabled {
		os.Exit(1)
	}
}

// formatChangeTime formats a time for display.
func formatChangeTime(t time.Time) string {
	return fmt.Sprintf("%s (%s)", humanize.Time(t), t.Format("2006-01-02 15:04:05"))
}
