package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/aether-player/aether/constant"
	"github.com/aether-player/aether/icon"
	"github.com/aether-player/aether/key"
	"github.com/aether-player/aether/style"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// dependency is an external program the player drives.
type dependency struct {
	name     string
	binary   string
	required bool
	purpose  string
}

func dependencies() []dependency {
	return []dependency{
		{"engine", viper.GetString(key.EngineBinary), true, "plays audio, video and images"},
		{"probe", viper.GetString(key.EngineProbeBinary), false, "measures durations the engine cannot report"},
	}
}

func installHint(binary string) string {
	switch runtime.GOOS {
	case constant.Darwin:
		return "brew install " + binary
	case constant.Linux:
		if binary == "ffprobe" {
			return "sudo apt install ffmpeg"
		}
		return "sudo apt install " + binary
	case constant.Windows:
		return "scoop install " + binary
	default:
		return ""
	}
}

// CheckDependencies exits when a required program is missing from PATH. Optional ones only warn.
func CheckDependencies() {
	for _, dep := range dependencies() {
		if _, err := exec.LookPath(dep.binary); err != nil {
			printMissingDependency(dep)
			if dep.required {
				os.Exit(1)
			}
		}
	}
}

func printMissingDependency(dep dependency) {
	titleColor := style.WarningColor
	if dep.required {
		titleColor = style.ErrorColor
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(titleColor).
		Padding(1, 2).
		Margin(1, 0)

	title := style.New().Bold(true).Foreground(titleColor).Render(fmt.Sprintf("%s Missing %s", icon.Get(icon.Fail), dep.name))
	body := style.New().Foreground(style.Text).Render(fmt.Sprintf("'%s' was not found in your PATH. It %s.", dep.binary, dep.purpose))

	suggestion := ""
	if hint := installHint(dep.binary); hint != "" {
		suggestion = fmt.Sprintf("\n\nTo install it, try running:\n  %s", style.New().Foreground(style.AccentColor).Bold(true).Render(hint))
	}

	fmt.Println(box.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			title,
			"\n",
			body,
			suggestion,
		),
	))
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report whether the engine and probe programs are available",
	Run: func(cmd *cobra.Command, args []string) {
		lines := lo.Map(dependencies(), func(dep dependency, _ int) string {
			path, err := exec.LookPath(dep.binary)
			if err != nil {
				return fmt.Sprintf("%s %-7s %s", style.Fg(style.ErrorColor)(icon.Get(icon.Fail)), dep.name, style.Faint(dep.binary+" not found"))
			}
			return fmt.Sprintf("%s %-7s %s", style.Fg(style.SuccessColor)(icon.Get(icon.Success)), dep.name, path)
		})
		cmd.Println(style.Box(lipgloss.JoinVertical(lipgloss.Left, lines...)))
	},
}
