package playback

import (
	"fmt"

	"github.com/aether-player/aether/log"
	"github.com/aether-player/aether/media"
	"github.com/samber/mo"
)

// Navigate moves to the next or previous track: CUE sub-tracks when a timeline is attached,
// otherwise the folder playlist.
func (c *Controller) Navigate(d Direction) error {
	if d != Next && d != Previous {
		return fmt.Errorf("%w: %d", ErrInvalidDirection, d)
	}

	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	hasCue := len(c.state.cueTimeline) > 0
	c.mu.Unlock()

	if hasCue {
		return c.navigateCue(d)
	}
	return c.navigatePlaylist(d)
}

func (c *Controller) navigatePlaylist(d Direction) error {
	c.mu.Lock()
	index, count, position := c.state.index, len(c.state.playlist), c.state.position
	c.mu.Unlock()

	if count == 0 {
		return nil
	}

	switch d {
	case Next:
		if index >= count-1 {
			log.Info("playback: end of playlist")
			return nil
		}
		return c.loadIndex(index + 1)
	default:
		if position > RewindThreshold || index == 0 {
			return c.seekTo(0, mo.None[int]())
		}
		return c.loadIndex(index - 1)
	}
}

func (c *Controller) navigateCue(d Direction) error {
	c.mu.Lock()
	tracks := c.state.cueTimeline
	position := c.state.position
	current, known := c.state.cueIndex().Get()
	c.mu.Unlock()

	if !known {
		current = -1
	}

	var target int
	switch d {
	case Next:
		if current >= len(tracks)-1 {
			log.Info("playback: end of album")
			return nil
		}
		target = current + 1
	default:
		if current >= 0 {
			start := tracks[current].RelativeStart
			if position-start > RewindThreshold {
				return c.seekTo(start, mo.Some(tracks[current].Number))
			}
		}
		if current <= 0 {
			log.Info("playback: start of album")
			return nil
		}
		target = current - 1
	}

	t := tracks[target]
	log.Infof("playback: sub-track %d %q at %.2fs", t.Number, t.Title, t.RelativeStart)
	return c.seekTo(t.RelativeStart, mo.Some(t.Number))
}

// seekTo sends an absolute seek and records the position, optionally pinning the CUE sub-track.
func (c *Controller) seekTo(pos float64, sub mo.Option[int]) error {
	if err := c.command("seek", pos, "absolute"); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.setPosition(pos, c.now())
	if sub.IsPresent() {
		c.state.cueCurrent = sub
	}
	return nil
}

// loadIndex plays another playlist entry, restarting the engine if it exited.
// CUE sheets are not attached on playlist moves.
func (c *Controller) loadIndex(i int) error {
	c.mu.Lock()
	if i < 0 || i >= len(c.state.playlist) {
		c.mu.Unlock()
		return nil
	}
	path := c.state.playlist[i]
	c.mu.Unlock()

	if err := c.engine.EnsureRunning(); err != nil {
		return err
	}

	typ := media.TypeOf(path)
	if err := c.load(path, typ); err != nil {
		return err
	}
	c.setTracks(typ)
	res := c.resolveDuration(path)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.clearCue()
	c.state.status = Playing
	c.state.track = path
	c.state.duration = res.Seconds
	c.state.lowConfidence = res.LowConfidence()
	c.state.index = i
	c.state.startOffset = mo.None[float64]()
	c.state.setPosition(0, c.now())

	log.Infof("playback: switched to %s (%.1fs)", media.Relative(c.root, path), res.Seconds)
	return nil
}
