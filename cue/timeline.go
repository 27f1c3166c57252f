package cue

import (
	"fmt"
	"path/filepath"

	"github.com/aether-player/aether/log"
	"github.com/aether-player/aether/probe"
	"github.com/samber/mo"
)

// ComputeAbsoluteTimes offsets every track by the summed durations of the files before its own.
// Each distinct file is probed once. A file that cannot be probed adds nothing.
func ComputeAbsoluteTimes(sheet *Sheet, dir string, prober probe.Prober) {
	if len(sheet.Tracks) == 0 {
		return
	}

	memo := make(map[string]float64)
	measure := func(name string) float64 {
		if d, ok := memo[name]; ok {
			return d
		}
		var d float64
		if prober != nil {
			v, err := prober.Duration(filepath.Join(dir, name))
			if err != nil {
				log.Warnf("cue: duration of %s: %s", name, err)
			} else {
				d = v
			}
		}
		memo[name] = d
		return d
	}

	offset := 0.0
	current := sheet.Tracks[0].File
	for i := range sheet.Tracks {
		t := &sheet.Tracks[i]
		if t.File != current {
			offset += measure(current)
			current = t.File
		}
		t.AbsoluteStart = offset + t.RelativeStart
	}
}

// FormatTimestamp renders seconds as H:MM:SS from one hour on, MM:SS below.
func FormatTimestamp(seconds float64) string {
	total := int(seconds)
	if total < 0 {
		total = 0
	}
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// Bounds returns the relative [start, end) of track i within its file; the last track ends at fileDuration.
func Bounds(tracks []Track, i int, fileDuration float64) (start, end float64) {
	start = tracks[i].RelativeStart
	if i+1 < len(tracks) {
		return start, tracks[i+1].RelativeStart
	}
	return start, fileDuration
}

// Durations lists each track's length within a file of the given duration.
func Durations(tracks []Track, fileDuration float64) []float64 {
	out := make([]float64, len(tracks))
	for i := range tracks {
		start, end := Bounds(tracks, i, fileDuration)
		out[i] = end - start
	}
	return out
}

// IndexAt returns the index of the track whose interval contains position.
func IndexAt(tracks []Track, position, fileDuration float64) mo.Option[int] {
	for i := range tracks {
		start, end := Bounds(tracks, i, fileDuration)
		if start <= position && position < end {
			return mo.Some(i)
		}
	}
	return mo.None[int]()
}

// IndexOf returns the index of the track with the given number.
func IndexOf(tracks []Track, number int) mo.Option[int] {
	for i, t := range tracks {
		if t.Number == number {
			return mo.Some(i)
		}
	}
	return mo.None[int]()
}
