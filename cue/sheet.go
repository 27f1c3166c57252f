// Package cue parses CUE sheets into track timelines and locates the audio they describe.
package cue

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

var (
	// ErrParse means the sheet could not be read or decoded.
	ErrParse = errors.New("unreadable cue sheet")
	// ErrNoTracks means the sheet declares no audio tracks.
	ErrNoTracks = errors.New("cue sheet has no tracks")
	// ErrNoAudio means the audio file referenced by the sheet was not found.
	ErrNoAudio = errors.New("cue audio file not found")
)

// FramesPerSecond is the CD-audio frame rate used by INDEX timestamps.
const FramesPerSecond = 75

// Track is one TRACK entry.
type Track struct {
	Number    int
	Title     string
	Performer string
	File      string
	Index     string

	RelativeStart float64
	AbsoluteStart float64
}

// Display renders the absolute start for humans.
func (t Track) Display() string {
	return FormatTimestamp(t.AbsoluteStart)
}

// Sheet is a parsed CUE file.
type Sheet struct {
	Performer string
	Title     string
	Genre     string
	Date      string
	Comment   string
	Tracks    []Track
}

// Files lists the distinct referenced files in order of first appearance.
func (s *Sheet) Files() []string {
	var files []string
	seen := make(map[string]bool)
	for _, t := range s.Tracks {
		if !seen[t.File] {
			seen[t.File] = true
			files = append(files, t.File)
		}
	}
	return files
}

var (
	rePerformer = regexp.MustCompile(`^PERFORMER\s+"([^"]+)"`)
	reTitle     = regexp.MustCompile(`^TITLE\s+"([^"]+)"`)
	reRem       = regexp.MustCompile(`^REM\s+(GENRE|DATE|COMMENT)\s+"?([^"]+?)"?$`)
	reFile      = regexp.MustCompile(`^FILE\s+"([^"]+)"\s+(\w+)`)
	reTrack     = regexp.MustCompile(`^TRACK\s+(\d+)\s+AUDIO`)
	reIndex     = regexp.MustCompile(`^INDEX\s+01\s+([\d:]+)`)
)

// fallbacks are tried in order after UTF-8.
var fallbacks = []encoding.Encoding{
	charmap.Windows1251,
	charmap.ISO8859_1,
	charmap.Windows1252,
}

// Decode turns raw sheet bytes into text, trying UTF-8 first and single-byte code pages after it.
func Decode(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if utf8.Valid(data) {
		return string(data), nil
	}

	for _, enc := range fallbacks {
		out, err := enc.NewDecoder().Bytes(data)
		if err != nil || bytes.ContainsRune(out, utf8.RuneError) {
			continue
		}
		return string(out), nil
	}

	return "", fmt.Errorf("%w: no matching text encoding", ErrParse)
}

// ParseIndex converts mm:ss:ff into seconds. Malformed values count as zero.
func ParseIndex(index string) float64 {
	parts := strings.Split(index, ":")
	if len(parts) != 3 {
		return 0
	}

	var n [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return 0
		}
		n[i] = v
	}

	return float64(n[0]*60+n[1]) + float64(n[2])/FramesPerSecond
}

// Parse reads a CUE sheet. Track numbers are assigned sequentially, ignoring the numbers in the file.
// Absolute starts equal relative ones until ComputeAbsoluteTimes runs.
func Parse(data []byte) (*Sheet, error) {
	text, err := Decode(data)
	if err != nil {
		return nil, err
	}

	text = strings.NewReplacer("\r\n", "\n", "\r", "\n").Replace(text)

	sheet := &Sheet{}
	var (
		open *Track
		file string
	)

	closeTrack := func() {
		if open == nil {
			return
		}
		open.Number = len(sheet.Tracks) + 1
		open.RelativeStart = ParseIndex(open.Index)
		open.AbsoluteStart = open.RelativeStart
		sheet.Tracks = append(sheet.Tracks, *open)
		open = nil
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if m := rePerformer.FindStringSubmatch(line); m != nil {
			if open != nil {
				open.Performer = m[1]
			} else {
				sheet.Performer = m[1]
			}
		} else if m := reTitle.FindStringSubmatch(line); m != nil {
			if open != nil {
				open.Title = m[1]
			} else {
				sheet.Title = m[1]
			}
		} else if m := reRem.FindStringSubmatch(line); m != nil {
			switch m[1] {
			case "GENRE":
				sheet.Genre = m[2]
			case "DATE":
				sheet.Date = m[2]
			case "COMMENT":
				sheet.Comment = m[2]
			}
		} else if m := reFile.FindStringSubmatch(line); m != nil {
			file = m[1]
		} else if reTrack.MatchString(line) {
			closeTrack()
			open = &Track{File: file}
		} else if m := reIndex.FindStringSubmatch(line); m != nil && open != nil {
			open.Index = m[1]
		}
	}
	closeTrack()

	for i := range sheet.Tracks {
		if sheet.Tracks[i].Performer == "" {
			sheet.Tracks[i].Performer = sheet.Performer
		}
	}

	if len(sheet.Tracks) == 0 {
		return sheet, ErrNoTracks
	}
	return sheet, nil
}
