package cue

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aether-player/aether/filesystem"
	"github.com/aether-player/aether/log"
	"github.com/aether-player/aether/media"
	"github.com/aether-player/aether/probe"
	"github.com/aether-player/aether/util"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"golang.org/x/exp/slices"
)

// Info is a sheet whose audio has been located on disk.
type Info struct {
	Path      string
	AudioFile string
	Sheet     *Sheet

	resolved map[string]string
}

// Load parses the sheet at path, resolves its first referenced file and computes absolute times.
// A sheet without tracks or without locatable audio is an error and should be skipped.
func Load(path string, prober probe.Prober) (*Info, error) {
	data, err := filesystem.API().ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParse, path, err)
	}

	sheet, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	first := sheet.Files()[0]
	audio, err := FindAudioFile(path, first)
	if err != nil {
		return nil, fmt.Errorf("%s: %q: %w", path, first, err)
	}

	ComputeAbsoluteTimes(sheet, filepath.Dir(path), prober)

	return &Info{
		Path:      path,
		AudioFile: audio,
		Sheet:     sheet,
		resolved:  map[string]string{first: audio},
	}, nil
}

// Title falls back to the sheet's file stem.
func (i *Info) Title() string {
	if i.Sheet.Title != "" {
		return i.Sheet.Title
	}
	return util.FileStem(i.Path)
}

// Performer falls back to "Unknown Artist".
func (i *Info) Performer() string {
	if i.Sheet.Performer != "" {
		return i.Sheet.Performer
	}
	return "Unknown Artist"
}

func (i *Info) resolve(name string) string {
	if p, ok := i.resolved[name]; ok {
		return p
	}
	p, err := FindAudioFile(i.Path, name)
	if err != nil {
		p = ""
	}
	if i.resolved == nil {
		i.resolved = make(map[string]string)
	}
	i.resolved[name] = p
	return p
}

// Timeline returns the tracks stored in audioPath, in sheet order.
func (i *Info) Timeline(audioPath string) []Track {
	return lo.Filter(i.Sheet.Tracks, func(t Track, _ int) bool {
		return i.resolve(t.File) == audioPath
	})
}

func sheetsIn(dir string) []string {
	entries, err := filesystem.API().ReadDir(dir)
	if err != nil {
		return nil
	}
	sheets := lo.FilterMap(entries, func(e os.FileInfo, _ int) (string, bool) {
		return filepath.Join(dir, e.Name()), !e.IsDir() && media.IsCue(e.Name())
	})
	slices.Sort(sheets)
	return sheets
}

// ScanFolder loads every usable sheet in dir. A broken sheet is logged and skipped.
func ScanFolder(dir string, prober probe.Prober) []*Info {
	var albums []*Info
	for _, path := range sheetsIn(dir) {
		info, err := Load(path, prober)
		if err != nil {
			logSkip(err)
			continue
		}
		albums = append(albums, info)
	}
	return albums
}

// ForAudio finds the sheet next to audioPath that describes it and returns its tracks for that file.
func ForAudio(audioPath string, prober probe.Prober) mo.Option[[]Track] {
	for _, path := range sheetsIn(filepath.Dir(audioPath)) {
		info, err := Load(path, prober)
		if err != nil {
			logSkip(err)
			continue
		}
		if tracks := info.Timeline(audioPath); len(tracks) > 0 {
			log.Infof("cue: %s describes %s with %s", filepath.Base(path), filepath.Base(audioPath),
				util.Quantify(len(tracks), "track", "tracks"))
			return mo.Some(tracks)
		}
	}
	return mo.None[[]Track]()
}

func logSkip(err error) {
	if errors.Is(err, ErrNoTracks) || errors.Is(err, ErrNoAudio) {
		log.Debugf("cue: skipping %s", err)
		return
	}
	log.Warnf("cue: skipping %s", strings.TrimSpace(err.Error()))
}
