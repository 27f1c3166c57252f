package cmd

import (
	"github.com/aether-player/aether/icon"
	"github.com/aether-player/aether/key"
	"github.com/aether-player/aether/player"
	"github.com/aether-player/aether/style"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(devicesCmd)
}

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List ALSA sound cards and the audio device the engine would use",
	Run: func(cmd *cobra.Command, args []string) {
		cards := player.ReadCards()
		if len(cards) == 0 {
			cmd.Println(style.Faint("no sound cards found in " + player.CardsPath))
		}
		for _, c := range cards {
			cmd.Printf("  %s  %s  %s\n", style.Fg(style.AccentColor)(c.Device()), style.Bold(c.ID), style.Faint(c.Description))
		}

		configured := viper.GetString(key.EngineAudioDevice)
		selected := configured
		source := "configured"
		if selected == "" {
			selected = player.SelectAudioDevice(cards, viper.GetStringSlice(key.EngineAudioPriority))
			source = "auto-detected"
		}

		cmd.Println()
		cmd.Printf("%s %s %s\n", icon.Get(icon.Speaker), style.Bold(selected), style.Faint("("+source+")"))
	},
}
