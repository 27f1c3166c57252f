// Package media classifies library files and resolves user-supplied paths against the media root.
package media

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aether-player/aether/constant"
	"github.com/samber/lo"
)

var (
	// ErrPathEscapes is returned when a requested path resolves outside the media root.
	ErrPathEscapes = errors.New("path escapes media root")

	// ErrUnsupported is returned for files the engine cannot play or display.
	ErrUnsupported = errors.New("unsupported media type")
)

// Type is the playback category of a file, decided by its extension.
type Type int

const (
	Other Type = iota
	Audio
	Video
	Image
	Text
)

func (t Type) String() string {
	switch t {
	case Audio:
		return "audio"
	case Video:
		return "video"
	case Image:
		return "image"
	case Text:
		return "text"
	default:
		return "other"
	}
}

// Playable reports whether files of this type take part in playlists.
func (t Type) Playable() bool {
	return t == Audio || t == Video
}

func ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// TypeOf classifies path by its extension, case-insensitively.
func TypeOf(path string) Type {
	e := ext(path)
	switch {
	case lo.Contains(constant.AudioExtensions, e):
		return Audio
	case lo.Contains(constant.VideoExtensions, e):
		return Video
	case lo.Contains(constant.ImageExtensions, e):
		return Image
	case lo.Contains(constant.TextExtensions, e):
		return Text
	default:
		return Other
	}
}

// IsDSD reports whether path belongs to the DSD family, which the engine is slow to measure.
func IsDSD(path string) bool {
	return lo.Contains(constant.DSDExtensions, ext(path))
}

// IsCue reports whether path is a CUE sheet.
func IsCue(path string) bool {
	return ext(path) == constant.CueExtension
}

// Resolve joins a library-relative path onto root and rejects any result outside root.
// A leading slash in sub is treated as the library root, not the filesystem root.
// Nothing is read from disk.
func Resolve(root, sub string) (string, error) {
	root = filepath.Clean(root)
	full := filepath.Join(root, filepath.FromSlash(strings.TrimLeft(sub, `/\`)))

	if !within(root, full) {
		return "", fmt.Errorf("%w: %s", ErrPathEscapes, sub)
	}

	return full, nil
}

// Contain follows symlinks in an already resolved path and rejects targets outside root.
// Paths missing from the host filesystem are left to the caller.
func Contain(root, full string) error {
	target, err := filepath.EvalSymlinks(full)
	if err != nil {
		return nil
	}
	realRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		realRoot = filepath.Clean(root)
	}
	if !within(realRoot, target) {
		return fmt.Errorf("%w: %s", ErrPathEscapes, Relative(root, full))
	}
	return nil
}

func within(root, full string) bool {
	rel, err := filepath.Rel(root, full)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Relative is the inverse of Resolve, producing the library-relative form used in status reports.
func Relative(root, full string) string {
	rel, err := filepath.Rel(filepath.Clean(root), full)
	if err != nil || strings.HasPrefix(rel, "..") {
		return full
	}
	return filepath.ToSlash(rel)
}
