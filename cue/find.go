package cue

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/aether-player/aether/filesystem"
	"github.com/aether-player/aether/util"
	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/samber/lo"
)

// AudioExtensions are tried when the referenced file does not exist as written.
var AudioExtensions = []string{".flac", ".wav", ".ape", ".wv", ".mp3", ".m4a", ".ogg"}

func exists(path string) bool {
	info, err := filesystem.API().Stat(path)
	return err == nil && !info.IsDir()
}

// FindAudioFile locates the audio file a sheet refers to, next to the sheet.
// It tries the name as written, then the same stem with a known audio extension,
// then a sibling audio file whose stem contains or is contained in the referenced stem.
func FindAudioFile(cuePath, referenced string) (string, error) {
	if strings.TrimSpace(referenced) == "" {
		return "", ErrNoAudio
	}
	dir := filepath.Dir(cuePath)

	direct := filepath.Join(dir, referenced)
	if exists(direct) {
		return direct, nil
	}

	stem := util.FileStem(referenced)
	for _, ext := range AudioExtensions {
		candidate := filepath.Join(dir, stem+ext)
		if exists(candidate) {
			return candidate, nil
		}
	}

	entries, err := filesystem.API().ReadDir(dir)
	if err != nil {
		return "", ErrNoAudio
	}

	want := strings.ToLower(stem)
	candidates := lo.FilterMap(entries, func(e os.FileInfo, _ int) (string, bool) {
		name := e.Name()
		if e.IsDir() || !lo.Contains(AudioExtensions, strings.ToLower(filepath.Ext(name))) {
			return "", false
		}
		have := strings.ToLower(util.FileStem(name))
		return name, strings.Contains(have, want) || strings.Contains(want, have)
	})
	if len(candidates) == 0 {
		return "", ErrNoAudio
	}

	best := lo.MinBy(candidates, func(a, b string) bool {
		return levenshtein.Distance(want, strings.ToLower(util.FileStem(a))) <
			levenshtein.Distance(want, strings.ToLower(util.FileStem(b)))
	})
	return filepath.Join(dir, best), nil
}
