package cmd

import (
	"encoding/json"
	"strings"

	"github.com/aether-player/aether/enhance"
	"github.com/aether-player/aether/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slices"
)

func init() {
	rootCmd.AddCommand(presetsCmd)
	presetsCmd.Flags().BoolP("json", "j", false, "Format the output as JSON")

	presetsCmd.AddCommand(presetsInfoCmd)
	presetsCmd.AddCommand(presetsExplainCmd)
}

// savedPreset reads the persisted preset without starting anything.
func savedPreset() string {
	return settingsStore().LoadPreset(enhance.Valid, enhance.Off)
}

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List audio enhancement presets",
	Run: func(cmd *cobra.Command, args []string) {
		current := savedPreset()

		if lo.Must(cmd.Flags().GetBool("json")) {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			handleErr(encoder.Encode(map[string]any{
				"current": current,
				"presets": enhance.Named(),
				"custom":  enhance.DefaultParams(),
			}))
			return
		}

		printPresets(cmd.OutOrStdout(), current)
		cmd.Println()
		cmd.Println(style.Faint("custom defaults:"))
		printParams(cmd.OutOrStdout(), enhance.DefaultParams())
	},
}

var presetsInfoCmd = &cobra.Command{
	Use:       "info <preset>",
	Short:     "Show the filter stages of a preset",
	Args:      cobra.ExactArgs(1),
	ValidArgs: enhance.Names(),
	Run: func(cmd *cobra.Command, args []string) {
		name := strings.ToLower(args[0])
		if !enhance.Valid(name) {
			handleErr(errUnknownPreset(name))
		}

		p := lo.Must(enhance.Lookup(name))
		stages := lo.Must(enhance.Filters(name, enhance.DefaultParams()))

		cmd.Printf("%s  %s\n", style.Bold(p.Name), style.Faint(p.Description))
		if len(stages) == 0 {
			cmd.Println(style.Faint("  no filters"))
			return
		}
		for _, stage := range stages {
			effect, _, _ := strings.Cut(stage, "=")
			cmd.Printf("  %s  %s\n", style.Fg(style.AccentColor)(stage), style.Faint(enhance.Explain(effect).Name))
		}
	},
}

var presetsExplainCmd = &cobra.Command{
	Use:       "explain [effect]",
	Short:     "Explain what each filter stage does",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: enhance.Effects(),
	Run: func(cmd *cobra.Command, args []string) {
		effects := enhance.Effects()
		if len(args) == 1 {
			effects = args
		}

		for i, effect := range effects {
			e := enhance.Explain(effect)
			cmd.Println(style.Bold(e.Name))
			cmd.Println(style.Faint(e.Description))
			params := lo.Keys(e.Params)
			slices.Sort(params)
			for _, p := range params {
				cmd.Printf("  %s  %s\n", style.Fg(style.AccentColor)(p), e.Params[p])
			}
			if i < len(effects)-1 {
				cmd.Println()
			}
		}
	},
}
