package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/aether-player/aether/color"
	"github.com/aether-player/aether/config"
	"github.com/aether-player/aether/icon"
	"github.com/aether-player/aether/style"
	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// explainKeyErr adds a "did you mean" hint to unknown key errors.
func explainKeyErr(name string, err error) error {
	if !errors.Is(err, config.ErrUnknownKey) {
		return err
	}
	closest := lo.MinBy(lo.Keys(config.Default), func(a, b string) bool {
		return levenshtein.Distance(name, a) < levenshtein.Distance(name, b)
	})
	return fmt.Errorf("%w %s, did you mean %s?", config.ErrUnknownKey, style.Fg(color.Red)(name), style.Fg(color.Yellow)(closest))
}

func completionConfigKeys(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	keys := lo.Keys(config.Default)
	sort.Strings(keys)
	return keys, cobra.ShellCompDirectiveNoFileComp
}

func lookupField(name string) (config.Field, error) {
	field, ok := config.Default[name]
	if !ok {
		return config.Field{}, explainKeyErr(name, fmt.Errorf("%w: %s", config.ErrUnknownKey, name))
	}
	return field, nil
}

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage engine, library and console settings",
}

func init() {
	configCmd.AddCommand(configInfoCmd)
	configInfoCmd.Flags().BoolP("json", "j", false, "Format the output as JSON")
}

var configInfoCmd = &cobra.Command{
	Use:               "info [key...]",
	Short:             "Describe settings with their current and default values",
	ValidArgsFunction: completionConfigKeys,
	Run: func(cmd *cobra.Command, args []string) {
		fields := lo.Values(config.Default)
		if len(args) > 0 {
			fields = lo.Map(args, func(name string, _ int) config.Field {
				field, err := lookupField(name)
				handleErr(err)
				return field
			})
		}
		sort.Slice(fields, func(i, j int) bool { return fields[i].Key < fields[j].Key })

		if lo.Must(cmd.Flags().GetBool("json")) {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			handleErr(encoder.Encode(lo.ToSlicePtr(fields)))
			return
		}

		out := cmd.OutOrStdout()
		for i, field := range fields {
			if i > 0 {
				_, _ = fmt.Fprintln(out)
			}
			_, _ = fmt.Fprintln(out, field.Pretty())
		}
	},
}

func init() {
	configCmd.AddCommand(configGetCmd)
}

var configGetCmd = &cobra.Command{
	Use:               "get <key>",
	Short:             "Print the current value of a setting",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completionConfigKeys,
	Run: func(cmd *cobra.Command, args []string) {
		_, err := lookupField(args[0])
		handleErr(err)
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), viper.Get(args[0]))
	},
}

func init() {
	configCmd.AddCommand(configSetCmd)
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value...>",
	Short: "Validate and save a setting",
	Long: "Validate and save a setting.\n" +
		"List settings such as engine.audio_priority take every remaining argument.\n" +
		"Engine settings reach a running engine only when it starts again.",
	Args:              cobra.MinimumNArgs(2),
	ValidArgsFunction: completionConfigKeys,
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(setConfig(cmd.OutOrStdout(), args[0], args[1:]))
	},
}

func setConfig(out io.Writer, name string, raw []string) error {
	v, err := config.Parse(name, raw)
	if err != nil {
		return explainKeyErr(name, err)
	}
	if err := config.Set(name, v); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(out, "%s set %s to %s\n",
		style.Fg(color.Green)(icon.Get(icon.Success)),
		style.Fg(color.Purple)(name),
		style.Fg(color.Yellow)(fmt.Sprint(v)),
	)
	if config.NeedsRestart(name) {
		_, _ = fmt.Fprintf(out, "%s takes effect the next time the engine starts\n", style.Faint(name))
	}
	return nil
}

func init() {
	configCmd.AddCommand(configResetCmd)
	configResetCmd.Flags().BoolP("all", "a", false, "Restore every setting")
}

var configResetCmd = &cobra.Command{
	Use:               "reset [key...]",
	Short:             "Restore settings to their defaults",
	ValidArgsFunction: completionConfigKeys,
	Run: func(cmd *cobra.Command, args []string) {
		all := lo.Must(cmd.Flags().GetBool("all"))
		if all == (len(args) > 0) {
			handleErr(errors.New("name the keys to reset or pass --all"))
		}

		for _, name := range args {
			_, err := lookupField(name)
			handleErr(err)
		}
		handleErr(config.Restore(args...))

		if all {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s reset every setting\n", style.Fg(color.Green)(icon.Get(icon.Success)))
			return
		}
		for _, name := range args {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s reset %s to %s\n",
				style.Fg(color.Green)(icon.Get(icon.Success)),
				style.Fg(color.Purple)(name),
				style.Fg(color.Yellow)(fmt.Sprint(config.Default[name].Value)),
			)
		}
	},
}
