// Package playback is the authoritative record of what is playing and the transitions between states.
package playback

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aether-player/aether/cue"
	"github.com/samber/mo"
)

var (
	// ErrNotPlaying is returned by operations that need a loaded track.
	ErrNotPlaying = errors.New("nothing is playing")
	// ErrInvalidDirection is returned for a navigation direction other than next or previous.
	ErrInvalidDirection = errors.New("invalid direction")
	// ErrNotFound is returned when the requested media file does not exist.
	ErrNotFound = errors.New("media file not found")
)

// Timing constants of the state machine.
const (
	// RewindThreshold is how far into a track "previous" rewinds instead of changing tracks.
	RewindThreshold = 3.0
	// EndGuard is how close to the end a track counts as finished.
	EndGuard = 0.5
	// TickInterval is the ticker cadence.
	TickInterval = 500 * time.Millisecond
	// MinTickElapsed coalesces ticks that arrive too close together.
	MinTickElapsed = 100 * time.Millisecond

	startSeekSettle = 300 * time.Millisecond
	loadSettle      = 500 * time.Millisecond
	pauseSettle     = 100 * time.Millisecond
)

// Status is the playback state.
type Status int

const (
	Stopped Status = iota
	Playing
	Paused
)

func (s Status) String() string {
	switch s {
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return "stopped"
	}
}

// MarshalText renders the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Direction is a navigation direction.
type Direction int

const (
	Next Direction = iota
	Previous
)

func (d Direction) String() string {
	if d == Previous {
		return "previous"
	}
	return "next"
}

// ParseDirection accepts next/previous and their short forms.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "next", "n":
		return Next, nil
	case "previous", "prev", "p":
		return Previous, nil
	default:
		return Next, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
	}
}

// state is guarded by Controller.mu.
type state struct {
	status        Status
	track         string
	position      float64
	duration      float64
	lowConfidence bool
	volume        int
	playlist      []string
	index         int
	startOffset   mo.Option[float64]
	cueTimeline   []cue.Track
	cueCurrent    mo.Option[int]
	lastSync      time.Time
	endHandled    bool
}

// setPosition is the only way position is written; it restamps the sync anchor with it.
func (s *state) setPosition(pos float64, now time.Time) {
	s.position = pos
	s.lastSync = now
	s.endHandled = false
}

// cueIndex resolves the active sub-track index from the stored number, falling back to position.
func (s *state) cueIndex() mo.Option[int] {
	if len(s.cueTimeline) == 0 {
		return mo.None[int]()
	}
	if n, ok := s.cueCurrent.Get(); ok {
		if i, ok := cue.IndexOf(s.cueTimeline, n).Get(); ok {
			return mo.Some(i)
		}
	}
	return cue.IndexAt(s.cueTimeline, s.position, s.duration)
}

// refreshCue recomputes the active sub-track from position.
func (s *state) refreshCue() {
	if len(s.cueTimeline) == 0 {
		s.cueCurrent = mo.None[int]()
		return
	}
	if i, ok := cue.IndexAt(s.cueTimeline, s.position, s.duration).Get(); ok {
		s.cueCurrent = mo.Some(s.cueTimeline[i].Number)
	} else {
		s.cueCurrent = mo.None[int]()
	}
}

// clearCue drops the CUE context. It runs before any other field is reset.
func (s *state) clearCue() {
	s.cueTimeline = nil
	s.cueCurrent = mo.None[int]()
}

// reset returns to Stopped, keeping volume.
func (s *state) reset() {
	s.clearCue()
	s.status = Stopped
	s.track = ""
	s.position = 0
	s.duration = 0
	s.lowConfidence = false
	s.playlist = nil
	s.index = -1
	s.startOffset = mo.None[float64]()
	s.endHandled = false
}
