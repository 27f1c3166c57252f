// Package settings persists the two user choices that survive restarts: volume and enhancement preset.
//
// Each value lives in its own plain-text file.
package settings

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aether-player/aether/filesystem"
	"github.com/aether-player/aether/log"
	"github.com/aether-player/aether/util"
)

// Store reads and writes the settings files.
type Store struct {
	VolumePath      string
	EnhancementPath string
}

func (s Store) read(path string) (string, bool) {
	data, err := filesystem.API().ReadFile(path)
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(data)), true
}

func (s Store) write(path, value string) error {
	fs := filesystem.API()
	if err := fs.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return err
	}
	return fs.WriteFile(path, []byte(value), 0o644)
}

// LoadVolume returns the saved volume capped at limit, or fallback when nothing valid is saved.
func (s Store) LoadVolume(limit, fallback int) int {
	raw, ok := s.read(s.VolumePath)
	if !ok {
		return util.Clamp(fallback, 0, limit)
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Warnf("settings: ignoring malformed volume %q", raw)
		return util.Clamp(fallback, 0, limit)
	}

	return util.Clamp(v, 0, limit)
}

// SaveVolume persists a user-scale volume.
func (s Store) SaveVolume(v int) error {
	return s.write(s.VolumePath, strconv.Itoa(util.Clamp(v, 0, 100)))
}

// LoadPreset returns the saved preset if valid accepts it, otherwise fallback.
func (s Store) LoadPreset(valid func(string) bool, fallback string) string {
	raw, ok := s.read(s.EnhancementPath)
	if !ok || raw == "" {
		return fallback
	}
	if !valid(raw) {
		log.Warnf("settings: ignoring unknown preset %q", raw)
		return fallback
	}
	return raw
}

// SavePreset persists the preset key.
func (s Store) SavePreset(name string) error {
	return s.write(s.EnhancementPath, name)
}
