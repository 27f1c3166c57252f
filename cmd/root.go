// Package cmd implements the command-line interface for aether.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/aether-player/aether/color"
	"github.com/aether-player/aether/config"
	"github.com/aether-player/aether/constant"
	"github.com/aether-player/aether/icon"
	"github.com/aether-player/aether/key"
	"github.com/aether-player/aether/log"
	"github.com/aether-player/aether/style"
	cc "github.com/ivanpirog/coloredcobra"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.PersistentFlags().StringP("icons", "I", "", "Set the visual icon variant (emoji, plain, squares)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("icons", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return icon.AvailableVariants(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.IconsVariant, rootCmd.PersistentFlags().Lookup("icons")))

	rootCmd.PersistentFlags().StringP("root", "r", "", "Media library root all paths are resolved against")
	lo.Must0(viper.BindPFlag(key.MediaRoot, rootCmd.PersistentFlags().Lookup("root")))

	rootCmd.Flags().StringArrayP("exec", "e", nil, "Run console commands and exit instead of starting the interactive console")
	rootCmd.Flags().Bool("no-check", false, "Skip the engine dependency check")
}

// rootCmd starts the playback console.
var rootCmd = &cobra.Command{
	Use:   constant.Aether,
	Short: "Headless media player driving mpv over its JSON IPC socket",
	Long: style.New().Bold(true).Foreground(color.Purple).Render(constant.Aether) + "\n" +
		style.New().Italic(true).Foreground(color.Cyan).Render("    - Headless media player driving mpv over its JSON IPC socket"),
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		if !lo.Must(cmd.Flags().GetBool("no-check")) {
			CheckDependencies()
		}

		app := newApp()

		scripted := lo.Must(cmd.Flags().GetStringArray("exec"))
		if len(scripted) > 0 {
			c := newConsole(app.controller, config.MediaRoot(), cmd.OutOrStdout())
			for _, line := range scripted {
				if c.run(line) {
					break
				}
			}
			app.shutdown()
			return
		}

		err := app.console(cmd.OutOrStdout())
		app.shutdown()
		handleErr(err)
	},
}

// Execute initializes child command routing and processes the CLI entry point.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", icon.Get(icon.Fail), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}
