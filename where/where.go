// Package where implements a cross-platform resolver for application-specific filesystem paths.
package where

import (
	"os"
	"path/filepath"

	"github.com/aether-player/aether/constant"
	"github.com/aether-player/aether/filesystem"
	"github.com/samber/lo"
)

// EnvConfigPath is the environment variable identifier used to override the default configuration directory.
const EnvConfigPath = "AETHER_CONFIG_PATH"

func ensureDir(path string) string {
	lo.Must0(filesystem.API().MkdirAll(path, os.ModePerm))
	return path
}

// Config resolves the absolute path to the primary application configuration directory.
// The path can be overridden with the AETHER_CONFIG_PATH environment variable.
func Config() string {
	if custom, ok := os.LookupEnv(EnvConfigPath); ok {
		return ensureDir(custom)
	}

	base := lo.Must(os.UserConfigDir())
	return ensureDir(filepath.Join(base, constant.Aether))
}

// Cache resolves the absolute path to the application's persistent cache directory.
func Cache() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = filepath.Join(".", "cache")
	}
	return ensureDir(filepath.Join(base, constant.Aether))
}

// Logs resolves the directory used for diagnostic logs.
func Logs() string {
	return ensureDir(filepath.Join(Config(), "logs"))
}

// State resolves the directory holding persisted user settings (volume, enhancement preset).
func State() string {
	return ensureDir(filepath.Join(Config(), "state"))
}

// Volume is the plain-text file storing the last user volume.
func Volume() string {
	return filepath.Join(State(), "volume.txt")
}

// Enhancement is the plain-text file storing the active audio enhancement preset.
func Enhancement() string {
	return filepath.Join(State(), "audio-enhancement.txt")
}

// Durations is the persistent memo of probed media durations.
func Durations() string {
	return filepath.Join(Cache(), "durations.json")
}

// Temp resolves a volatile directory for transient application artifacts.
func Temp() string {
	return ensureDir(filepath.Join(os.TempDir(), constant.Aether))
}

// Socket is the default IPC endpoint of the playback engine.
func Socket() string {
	return filepath.Join(Temp(), "mpv.sock")
}
