package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/aether-player/aether/config"
	"github.com/aether-player/aether/cue"
	"github.com/aether-player/aether/icon"
	"github.com/aether-player/aether/media"
	"github.com/aether-player/aether/style"
	"github.com/aether-player/aether/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(cueCmd)
	cueCmd.Flags().BoolP("json", "j", false, "Format the output as JSON")
}

type albumJSON struct {
	Sheet     string      `json:"sheet"`
	Audio     string      `json:"audio"`
	Title     string      `json:"title"`
	Performer string      `json:"performer"`
	Tracks    []trackJSON `json:"tracks"`
}

type trackJSON struct {
	Number    int     `json:"number"`
	Title     string  `json:"title"`
	Performer string  `json:"performer"`
	File      string  `json:"file"`
	Start     float64 `json:"start"`
	Absolute  float64 `json:"absolute_start"`
}

var cueCmd = &cobra.Command{
	Use:   "cue [folder]",
	Short: "List the CUE albums of a library folder",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		root := config.MediaRoot()
		dir, err := media.Resolve(root, lo.FirstOr(args, ""))
		handleErr(err)

		albums := cue.ScanFolder(dir, newProber())

		if lo.Must(cmd.Flags().GetBool("json")) {
			out := lo.Map(albums, func(a *cue.Info, _ int) albumJSON {
				return albumJSON{
					Sheet:     media.Relative(root, a.Path),
					Audio:     media.Relative(root, a.AudioFile),
					Title:     a.Title(),
					Performer: a.Performer(),
					Tracks: lo.Map(a.Sheet.Tracks, func(t cue.Track, _ int) trackJSON {
						return trackJSON{t.Number, t.Title, t.Performer, t.File, t.RelativeStart, t.AbsoluteStart}
					}),
				}
			})
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			handleErr(encoder.Encode(out))
			return
		}

		if len(albums) == 0 {
			cmd.Println(style.Faint("no CUE albums in " + dir))
			return
		}

		for i, a := range albums {
			cmd.Printf("%s %s %s\n",
				icon.Get(icon.Album),
				style.Bold(a.Title()),
				style.Faint(fmt.Sprintf("by %s, %s", a.Performer(), util.Quantify(len(a.Sheet.Tracks), "track", "tracks"))),
			)
			cmd.Println(style.Faint("  " + filepath.Base(a.AudioFile)))
			for _, t := range a.Sheet.Tracks {
				cmd.Printf("  %s  %s\n", style.Fg(style.TimeColor)(t.Display()), trackLine(t.Number, t.Title, t.Performer))
			}
			if i < len(albums)-1 {
				cmd.Println()
			}
		}
	},
}
