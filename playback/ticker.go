package playback

import (
	"context"
	"time"

	"github.com/aether-player/aether/log"
)

// Tick advances the extrapolated position and handles the end of the file once per crossing.
func (c *Controller) Tick() {
	c.mu.Lock()
	if c.state.status != Playing {
		c.mu.Unlock()
		return
	}

	now := c.now()
	elapsed := now.Sub(c.state.lastSync)
	if elapsed < MinTickElapsed {
		c.mu.Unlock()
		return
	}

	c.state.position += elapsed.Seconds()
	c.state.lastSync = now
	if len(c.state.cueTimeline) > 0 {
		c.state.refreshCue()
	}

	ended := !c.state.endHandled && c.state.position >= c.state.duration-EndGuard
	if ended {
		c.state.endHandled = true
	}
	track := c.state.track
	c.mu.Unlock()

	if ended {
		c.finish(track)
	}
}

// finish runs the end-of-file action: the next playlist entry, or Stopped without engine teardown.
// A next entry that fails to load also leaves the controller Stopped.
func (c *Controller) finish(track string) {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	if c.state.status != Playing || c.state.track != track || !c.state.endHandled {
		c.mu.Unlock()
		return
	}
	next := c.state.index + 1
	hasNext := next < len(c.state.playlist)
	if !hasNext {
		c.state.reset()
	}
	c.mu.Unlock()

	if !hasNext {
		log.Info("playback: end of playlist, stopped")
		return
	}

	if err := c.loadIndex(next); err != nil {
		log.Errorf("playback: auto-advance: %s", err)

		c.mu.Lock()
		c.state.reset()
		c.mu.Unlock()
	}
}

// Run ticks until ctx is done. It does not depend on any client being connected.
func (c *Controller) Run(ctx context.Context) {
	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Tick()
		}
	}
}
