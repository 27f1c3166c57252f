package playback

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aether-player/aether/cue"
	"github.com/aether-player/aether/duration"
	"github.com/aether-player/aether/enhance"
	"github.com/aether-player/aether/filesystem"
	"github.com/aether-player/aether/log"
	"github.com/aether-player/aether/media"
	"github.com/aether-player/aether/player"
	"github.com/aether-player/aether/probe"
	"github.com/aether-player/aether/util"
	"github.com/samber/mo"
)

// Engine is the supervised playback process.
type Engine interface {
	EnsureRunning() error
	Running() bool
	Stop()
	Command(args ...any) (*player.Response, error)
	GetProperty(name string) (mo.Option[any], error)
	SetProperty(name string, value any) error
	ShowImage(path string) error
}

// VolumeStore persists the user volume.
type VolumeStore interface {
	SaveVolume(v int) error
}

// Deps are the collaborators of a Controller.
type Deps struct {
	Engine   Engine
	Probe    probe.Prober
	Enhancer *enhance.Manager
	Settings VolumeStore
	Root     string
	Volume   int
}

// Controller owns the playback state. opMu serializes transitions; mu guards the state record.
// When both are needed opMu is taken first.
type Controller struct {
	engine   Engine
	probe    probe.Prober
	resolver *duration.Resolver
	enhancer *enhance.Manager
	settings VolumeStore
	root     string

	now   func() time.Time
	sleep func(time.Duration)

	opMu  sync.Mutex
	mu    sync.Mutex
	state state
}

type engineDuration struct{ engine Engine }

func (d engineDuration) Duration() (mo.Option[float64], error) {
	return player.FloatProperty(d.engine.GetProperty, "duration")
}

// New returns a stopped controller.
func New(d Deps) *Controller {
	c := &Controller{
		engine:   d.Engine,
		probe:    d.Probe,
		enhancer: d.Enhancer,
		settings: d.Settings,
		root:     d.Root,
		now:      time.Now,
		sleep:    time.Sleep,
	}
	c.resolver = duration.New(engineDuration{d.Engine}, d.Probe)
	c.resolver.Sleep = func(t time.Duration) { c.sleep(t) }
	c.state.reset()
	c.state.volume = util.Clamp(d.Volume, 0, 100)
	return c
}

// StartupVolume is the user volume the engine starts with.
func (c *Controller) StartupVolume() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.volume
}

// FilterChain is the enhancement chain the engine starts with.
func (c *Controller) FilterChain() string {
	if c.enhancer == nil {
		return ""
	}
	return c.enhancer.FilterChain()
}

func (c *Controller) command(args ...any) error {
	_, err := c.engine.Command(args...)
	if err != nil {
		log.Warnf("playback: %v: %s", args, err)
	}
	return err
}

// set writes an engine property. Failures degrade playback and are only logged.
func (c *Controller) set(name string, value any) {
	if err := c.engine.SetProperty(name, value); err != nil {
		log.Warnf("playback: set %s=%v: %s", name, value, err)
	}
}

// setOutput prepares the engine video output for the media type before loading.
func (c *Controller) setOutput(typ media.Type) {
	if typ == media.Video {
		c.set("vo", player.VideoGPU)
		c.set("gpu-context", "drm")
		return
	}
	c.set("vo", player.VideoNull)
}

// setTracks enables or disables video for the loaded file.
func (c *Controller) setTracks(typ media.Type) {
	if typ == media.Video {
		c.set("vid", "auto")
		c.set("fullscreen", true)
		c.set("vo", player.VideoGPU)
		return
	}
	c.set("vid", "no")
}

func (c *Controller) load(path string, typ media.Type) error {
	c.setOutput(typ)
	if err := c.command("loadfile", path, "replace"); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func (c *Controller) resolveDuration(path string) duration.Result {
	c.sleep(loadSettle)
	res, err := c.resolver.Resolve(path)
	if errors.Is(err, duration.ErrUnknown) {
		log.Warnf("playback: %s: duration is a guess", path)
	}
	return res
}

// Play loads path, relative to the media root, and starts playing it, optionally from start seconds.
// Images are shown in the separate viewer and leave the playback state untouched.
func (c *Controller) Play(path string, start mo.Option[float64]) error {
	full, err := media.Resolve(c.root, path)
	if err != nil {
		return err
	}
	if ok, _ := filesystem.API().Exists(full); !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err := media.Contain(c.root, full); err != nil {
		return err
	}

	typ := media.TypeOf(full)
	if typ == media.Image {
		return c.engine.ShowImage(full)
	}
	if !typ.Playable() {
		return fmt.Errorf("%w: %s", media.ErrUnsupported, path)
	}

	c.opMu.Lock()
	defer c.opMu.Unlock()

	if err := c.engine.EnsureRunning(); err != nil {
		return err
	}

	playlist, index := media.Playlist(full)

	if err := c.load(full, typ); err != nil {
		return err
	}

	timeline := cue.ForAudio(full, c.probe).OrEmpty()

	if s, ok := start.Get(); ok {
		c.sleep(startSeekSettle)
		_ = c.command("seek", s, "absolute")
	}

	c.setTracks(typ)
	res := c.resolveDuration(full)

	volume := mo.None[int]()
	if v, err := player.FloatProperty(c.engine.GetProperty, "volume"); err == nil {
		if engineVolume, ok := v.Get(); ok {
			volume = mo.Some(player.UserVolume(engineVolume))
		}
	}

	if paused, err := player.BoolProperty(c.engine.GetProperty, "pause"); err == nil && paused.OrEmpty() {
		c.set("pause", false)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.clearCue()
	c.state.status = Playing
	c.state.track = full
	c.state.duration = res.Seconds
	c.state.lowConfidence = res.LowConfidence()
	c.state.playlist = playlist
	c.state.index = index
	c.state.startOffset = start
	c.state.cueTimeline = timeline
	if v, ok := volume.Get(); ok {
		c.state.volume = v
	}
	c.state.setPosition(start.OrEmpty(), c.now())

	log.WithFields(map[string]any{
		"track":    media.Relative(c.root, full),
		"duration": res.Seconds,
		"source":   res.Source,
		"cue":      len(timeline),
		"index":    index,
	}).Info("playback: playing")

	return nil
}

// TogglePause flips between Playing and Paused, resynchronizing position with the engine on pause.
func (c *Controller) TogglePause() error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	stopped := c.state.status == Stopped
	c.mu.Unlock()

	if stopped {
		return ErrNotPlaying
	}
	if !c.engine.Running() {
		return player.ErrEngineUnavailable
	}

	if err := c.command("cycle", "pause"); err != nil {
		return err
	}

	c.sleep(pauseSettle)
	paused, err := player.BoolProperty(c.engine.GetProperty, "pause")
	if err != nil {
		paused = mo.None[bool]()
	}

	livePos := mo.None[float64]()
	if paused.OrEmpty() {
		livePos, _ = player.FloatProperty(c.engine.GetProperty, "time-pos")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	nowPaused, known := paused.Get()
	if !known {
		nowPaused = c.state.status == Playing
	}

	if nowPaused {
		if pos, ok := livePos.Get(); ok && pos >= 0 {
			c.state.setPosition(pos, now)
		}
		c.state.status = Paused
		c.state.refreshCue()
	} else {
		c.state.lastSync = now
		c.state.status = Playing
	}

	log.Debugf("playback: %s", c.state.status)
	return nil
}

// Stop tears down the engine and resets the state. The CUE context is cleared first.
func (c *Controller) Stop() error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.engine.Stop()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.reset()

	log.Info("playback: stopped")
	return nil
}

// Seek moves to target seconds. With an active CUE sub-track the target is relative to its start.
// The result is clamped to the file and written without waiting for the engine.
func (c *Controller) Seek(target float64) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	if c.state.status == Stopped {
		c.mu.Unlock()
		return ErrNotPlaying
	}
	absolute := target
	if n, ok := c.state.cueCurrent.Get(); ok {
		if i, ok := cue.IndexOf(c.state.cueTimeline, n).Get(); ok {
			absolute = c.state.cueTimeline[i].RelativeStart + target
		}
	}
	absolute = util.Clamp(absolute, 0, c.state.duration)
	c.mu.Unlock()

	if err := c.command("seek", absolute, "absolute"); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.setPosition(absolute, c.now())
	c.state.refreshCue()
	return nil
}

// VolumeResult reports both volume scales.
type VolumeResult struct {
	UserVolume   int `json:"user_volume"`
	EngineVolume int `json:"engine_volume"`
}

// SetVolume sets and persists the user volume. A stopped engine picks it up at its next start.
func (c *Controller) SetVolume(v int) VolumeResult {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	user := util.Clamp(v, 0, 100)
	result := VolumeResult{UserVolume: user, EngineVolume: player.EngineVolume(user)}

	if c.engine.Running() {
		if err := c.engine.SetProperty("volume", result.EngineVolume); err != nil {
			log.Warnf("playback: set volume: %s", err)
		}
	}

	c.mu.Lock()
	c.state.volume = user
	c.mu.Unlock()

	if c.settings != nil {
		if err := c.settings.SaveVolume(user); err != nil {
			log.Warnf("playback: persist volume: %s", err)
		}
	}

	return result
}

// ApplyEnhancement switches the enhancement preset.
func (c *Controller) ApplyEnhancement(name string) error {
	return c.enhancer.Apply(name)
}

// UpdateCustomEnhancement changes custom enhancement parameters.
func (c *Controller) UpdateCustomEnhancement(values map[string]float64) error {
	return c.enhancer.UpdateCustom(values)
}

// CustomEnhancement returns the custom enhancement parameters.
func (c *Controller) CustomEnhancement() enhance.Params {
	return c.enhancer.Custom()
}
