package playback

import (
	"github.com/aether-player/aether/cue"
	"github.com/aether-player/aether/media"
	"github.com/aether-player/aether/util"
	"github.com/samber/mo"
)

// SubTrack describes the active CUE sub-track.
type SubTrack struct {
	Number    int     `json:"number"`
	Title     string  `json:"title"`
	Performer string  `json:"performer"`
	Start     float64 `json:"start"`
}

// Snapshot is a read-only view of the playback state.
// With an active sub-track, position and duration are relative to it.
type Snapshot struct {
	Status         Status             `json:"status"`
	Track          string             `json:"track"`
	Position       float64            `json:"position"`
	Duration       float64            `json:"duration"`
	FileDuration   float64            `json:"file_duration"`
	LowConfidence  bool               `json:"low_confidence"`
	Volume         int                `json:"volume"`
	Enhancement    string             `json:"enhancement"`
	StartOffset    mo.Option[float64] `json:"start_offset"`
	PlaylistIndex  int                `json:"playlist_index"`
	PlaylistLength int                `json:"playlist_length"`
	SubTrack       *SubTrack          `json:"sub_track,omitempty"`
}

// Status returns the current state, extrapolating position without modifying it.
func (c *Controller) Status() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.state
	position := s.position
	if s.status == Playing {
		position += c.now().Sub(s.lastSync).Seconds()
	}
	total := s.duration

	snap := Snapshot{
		Status:         s.status,
		Volume:         s.volume,
		LowConfidence:  s.lowConfidence,
		StartOffset:    s.startOffset,
		PlaylistIndex:  s.index,
		PlaylistLength: len(s.playlist),
	}
	if s.track != "" {
		snap.Track = media.Relative(c.root, s.track)
	}
	if c.enhancer != nil {
		snap.Enhancement = c.enhancer.Current()
	}

	index := mo.None[int]()
	if n, ok := s.cueCurrent.Get(); ok {
		index = cue.IndexOf(s.cueTimeline, n)
	}

	if i, ok := index.Get(); ok {
		t := s.cueTimeline[i]
		start, end := cue.Bounds(s.cueTimeline, i, s.duration)
		position -= start
		total = end - start
		snap.SubTrack = &SubTrack{Number: t.Number, Title: t.Title, Performer: t.Performer, Start: t.RelativeStart}
	}

	snap.Position = util.Round1(position)
	snap.Duration = util.Round1(total)
	snap.FileDuration = util.Round1(s.duration)
	return snap
}

// Timeline returns a copy of the attached CUE timeline.
func (c *Controller) Timeline() []cue.Track {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]cue.Track(nil), c.state.cueTimeline...)
}
