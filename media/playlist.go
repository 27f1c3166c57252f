package media

import (
	"os"
	"path/filepath"

	"github.com/aether-player/aether/filesystem"
	"github.com/samber/lo"
	"golang.org/x/exp/slices"
)

// Siblings lists the playable files of dir, sorted by name.
func Siblings(dir string) ([]string, error) {
	entries, err := filesystem.API().ReadDir(dir)
	if err != nil {
		return nil, err
	}

	files := lo.FilterMap(entries, func(e os.FileInfo, _ int) (string, bool) {
		if e.IsDir() || !TypeOf(e.Name()).Playable() {
			return "", false
		}
		return filepath.Join(dir, e.Name()), true
	})
	slices.Sort(files)

	return files, nil
}

// Playlist builds the playlist for path from its directory and returns path's index in it.
// When path is not part of the listing it becomes a single-item playlist.
func Playlist(path string) ([]string, int) {
	files, err := Siblings(filepath.Dir(path))
	if err == nil {
		if idx := slices.Index(files, path); idx >= 0 {
			return files, idx
		}
	}

	return []string{path}, 0
}
