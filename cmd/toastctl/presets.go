package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/toastkit/internal/config"
)

var presetsOpts struct {
	urgency string
}

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List attribute presets",
	Long: `List the attribute presets found in the preset directory.

Presets are TOML or YAML files; each one overrides part of the attributes
a toast is presented with. Notifications select one with the
x-toast-preset hint.`,
	RunE: presetsListRun,
}

var presetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List preset names",
	Args:  cobra.NoArgs,
	RunE:  presetsListRun,
}

var presetsShowCmd = &cobra.Command{
	Use:   "show NAME",
	Short: "Show a preset and the attributes it resolves to",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		urgency, err := parseUrgency(presetsOpts.urgency)
		if err != nil {
			return err
		}
		return showPreset(cmd.OutOrStdout(), cfg, presets, args[0], urgency)
	},
}

func init() {
	presetsCmd.AddCommand(presetsListCmd)
	presetsCmd.AddCommand(presetsShowCmd)

	presetsShowCmd.Flags().StringVar(&presetsOpts.urgency, "urgency", "normal",
		"Urgency whose defaults the preset is applied to")

	rootCmd.AddCommand(presetsCmd)
}

func presetsListRun(cmd *cobra.Command, args []string) error {
	return listPresets(cmd.OutOrStdout(), cfg, presets)
}

func listPresets(w io.Writer, c *config.Config, ps map[string]*config.Preset) error {
	names := config.PresetNames(ps)
	if len(names) == 0 {
		fmt.Fprintf(w, "No presets in %s\n", c.PresetsDir())
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tPOSITION\tDISPLAY\tHAPTIC\tDEFAULT")
	for _, name := range names {
		p := ps[name]
		display := "-"
		if p.Display != nil {
			display = p.Display.Duration().String()
			if p.Display.Duration() <= 0 {
				display = "forever"
			}
		}
		def := ""
		if name == c.Presets.Default {
			def = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", name, orDash(p.Position), display, orDash(p.Haptic), def)
	}
	return tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// resolvedAttributes is the printable part of the attributes a preset
// resolves to.
type resolvedAttributes struct {
	Priority  int    `yaml:"priority"`
	Position  string `yaml:"position"`
	Display   string `yaml:"display"`
	Tap       string `yaml:"tap"`
	Screen    string `yaml:"screen"`
	Swipeable bool   `yaml:"swipeable"`
	Haptic    string `yaml:"haptic"`
	Entrance  string `yaml:"entrance"`
	Exit      string `yaml:"exit"`
}

func showPreset(w io.Writer, c *config.Config, ps map[string]*config.Preset, name string, urgency int) error {
	p, ok := ps[name]
	if !ok {
		return fmt.Errorf("%w: %q", config.ErrPresetNotFound, name)
	}
	a, err := c.Resolve(ps, name, c.Attributes(urgency))
	if err != nil {
		return err
	}

	display := "forever"
	if d := a.DisplayDuration; d > 0 {
		display = d.String()
	}
	out := struct {
		Preset   *config.Preset     `yaml:"preset"`
		Resolved resolvedAttributes `yaml:"resolved"`
	}{
		Preset: p,
		Resolved: resolvedAttributes{
			Priority:  a.Priority,
			Position:  string(a.Position),
			Display:   display,
			Tap:       string(a.EntryInteraction.Default),
			Screen:    string(a.ScreenInteraction.Default),
			Swipeable: a.Scroll.Swipeable,
			Haptic:    string(a.Haptic),
			Entrance:  a.EntranceAnimation.TotalDuration().String(),
			Exit:      a.ExitAnimation.TotalDuration().String(),
		},
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode preset: %w", err)
	}
	return enc.Close()
}
