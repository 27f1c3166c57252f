package playback

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aether-player/aether/enhance"
	"github.com/aether-player/aether/filesystem"
	"github.com/aether-player/aether/key"
	"github.com/aether-player/aether/log"
	"github.com/aether-player/aether/media"
	"github.com/aether-player/aether/player"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

const root = "/media"

const albumSheet = `PERFORMER "The Band"
TITLE "First Album"
FILE "album.flac" WAVE
  TRACK 01 AUDIO
    TITLE "Opening"
    INDEX 01 00:00:00
  TRACK 02 AUDIO
    TITLE "Middle"
    INDEX 01 03:30:00
  TRACK 03 AUDIO
    TITLE "Closing"
    INDEX 01 07:12:38
`

type fakeEngine struct {
	mu       sync.Mutex
	running  bool
	startErr error
	failVerb string
	setErr   error
	props    map[string]any
	commands [][]any
	images   []string
	stops    int
}

func (e *fakeEngine) EnsureRunning() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.startErr != nil {
		return e.startErr
	}
	e.running = true
	return nil
}

func (e *fakeEngine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

func (e *fakeEngine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stops++
	e.running = false
}

func (e *fakeEngine) Command(args ...any) (*player.Response, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.commands = append(e.commands, args)

	if !e.running {
		return nil, player.ErrEngineUnavailable
	}
	verb := args[0].(string)
	if verb == e.failVerb {
		return nil, &player.CommandError{Verb: verb, Message: "error running command"}
	}
	switch verb {
	case "cycle":
		paused, _ := e.props["pause"].(bool)
		e.props["pause"] = !paused
	case "seek":
		e.props["time-pos"] = args[1]
	}
	return &player.Response{}, nil
}

func (e *fakeEngine) GetProperty(name string) (mo.Option[any], error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if v, ok := e.props[name]; ok {
		return mo.Some(v), nil
	}
	return mo.None[any](), nil
}

func (e *fakeEngine) SetProperty(name string, value any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.setErr != nil {
		return e.setErr
	}
	e.props[name] = value
	return nil
}

func (e *fakeEngine) exit() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.running = false
}

func (e *fakeEngine) ShowImage(path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.images = append(e.images, path)
	return nil
}

func (e *fakeEngine) verbs(verb string) [][]any {
	e.mu.Lock()
	defer e.mu.Unlock()
	return lo.Filter(e.commands, func(c []any, _ int) bool { return c[0] == verb })
}

func (e *fakeEngine) lastSeek() any {
	seeks := e.verbs("seek")
	if len(seeks) == 0 {
		return nil
	}
	return seeks[len(seeks)-1][1]
}

type memoryVolume struct{ saved []int }

func (m *memoryVolume) SaveVolume(v int) error {
	m.saved = append(m.saved, v)
	return nil
}

type harness struct {
	c      *Controller
	engine *fakeEngine
	store  *memoryVolume
	clock  time.Time
}

func (h *harness) advance(d time.Duration) {
	h.clock = h.clock.Add(d)
}

func (h *harness) tick(d time.Duration) {
	h.advance(d)
	h.c.Tick()
}

func libPath(parts ...string) string {
	return filepath.Join(append([]string{filepath.FromSlash(root)}, parts...)...)
}

func newHarness() *harness {
	filesystem.SetMemMapFs()
	fs := filesystem.API()
	for _, p := range []string{
		"Album/01.flac", "Album/02.flac", "Album/03.flac", "Album/cover.jpg", "Album/notes.txt",
		"Cue/album.flac",
	} {
		lo.Must0(fs.MkdirAll(filepath.Dir(libPath(p)), 0o755))
		lo.Must0(fs.WriteFile(libPath(p), nil, 0o644))
	}
	lo.Must0(fs.WriteFile(libPath("Cue", "album.cue"), []byte(albumSheet), 0o644))

	engine := &fakeEngine{props: map[string]any{"duration": 480.0, "volume": 55.0, "pause": false}}
	store := &memoryVolume{}
	h := &harness{engine: engine, store: store, clock: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}

	h.c = New(Deps{
		Engine:   engine,
		Enhancer: enhance.NewManager(engine, nil, enhance.Off),
		Settings: store,
		Root:     filepath.FromSlash(root),
		Volume:   60,
	})
	h.c.now = func() time.Time { return h.clock }
	h.c.sleep = func(time.Duration) {}
	return h
}

func TestPlay(t *testing.T) {
	Convey("Given a stopped controller", t, func() {
		h := newHarness()

		So(h.c.Status().Status, ShouldEqual, Stopped)
		So(h.c.Status().PlaylistIndex, ShouldEqual, -1)
		So(h.c.StartupVolume(), ShouldEqual, 60)

		Convey("Playing a file builds the folder playlist", func() {
			So(h.c.Play("Album/02.flac", mo.None[float64]()), ShouldBeNil)

			s := h.c.Status()
			So(s.Status, ShouldEqual, Playing)
			So(s.Track, ShouldEqual, "Album/02.flac")
			So(s.PlaylistIndex, ShouldEqual, 1)
			So(s.PlaylistLength, ShouldEqual, 3)
			So(s.Duration, ShouldEqual, 480)
			So(s.Position, ShouldEqual, 0)
			So(s.Volume, ShouldEqual, 42)
			So(s.LowConfidence, ShouldBeFalse)

			load := h.engine.verbs("loadfile")
			So(load, ShouldHaveLength, 1)
			So(load[0], ShouldResemble, []any{"loadfile", libPath("Album", "02.flac"), "replace"})
			So(h.engine.props["vo"], ShouldEqual, player.VideoNull)
			So(h.engine.props["vid"], ShouldEqual, "no")
		})

		Convey("A paused engine is resumed", func() {
			h.engine.props["pause"] = true
			So(h.c.Play("Album/01.flac", mo.None[float64]()), ShouldBeNil)
			So(h.engine.props["pause"], ShouldEqual, false)
		})

		Convey("An unknown duration degrades to the fallback", func() {
			delete(h.engine.props, "duration")
			So(h.c.Play("Album/01.flac", mo.None[float64]()), ShouldBeNil)
			So(h.c.Status().Duration, ShouldEqual, 100)
			So(h.c.Status().LowConfidence, ShouldBeTrue)
		})

		Convey("Paths escaping the media root are rejected", func() {
			err := h.c.Play("../etc/passwd", mo.None[float64]())
			So(errors.Is(err, media.ErrPathEscapes), ShouldBeTrue)
			So(h.engine.commands, ShouldBeEmpty)
		})

		Convey("Missing and unsupported files are rejected", func() {
			So(errors.Is(h.c.Play("Album/04.flac", mo.None[float64]()), ErrNotFound), ShouldBeTrue)
			So(errors.Is(h.c.Play("Album/notes.txt", mo.None[float64]()), media.ErrUnsupported), ShouldBeTrue)
		})

		Convey("Images go to the viewer and leave playback alone", func() {
			So(h.c.Play("Album/cover.jpg", mo.None[float64]()), ShouldBeNil)
			So(h.engine.images, ShouldResemble, []string{libPath("Album", "cover.jpg")})
			So(h.c.Status().Status, ShouldEqual, Stopped)
			So(h.engine.Running(), ShouldBeFalse)
		})

		Convey("An engine that cannot start surfaces EngineUnavailable", func() {
			h.engine.startErr = player.ErrEngineUnavailable
			err := h.c.Play("Album/01.flac", mo.None[float64]())
			So(errors.Is(err, player.ErrEngineUnavailable), ShouldBeTrue)
			So(h.c.Status().Status, ShouldEqual, Stopped)
		})

		Convey("A rejected load is an error", func() {
			h.engine.failVerb = "loadfile"
			err := h.c.Play("Album/01.flac", mo.None[float64]())
			So(errors.Is(err, player.ErrCommandFailed), ShouldBeTrue)
			So(h.c.Status().Status, ShouldEqual, Stopped)
		})

		Convey("Playing a CUE album attaches its timeline", func() {
			So(h.c.Play("Cue/album.flac", mo.Some(210.0)), ShouldBeNil)

			So(h.c.Timeline(), ShouldHaveLength, 3)
			So(h.engine.lastSeek(), ShouldEqual, 210.0)

			s := h.c.Status()
			So(s.Position, ShouldEqual, 210)
			So(s.StartOffset.MustGet(), ShouldEqual, 210.0)
			So(s.SubTrack, ShouldBeNil)

			Convey("And the ticker derives the sub-track", func() {
				h.tick(5 * time.Second)
				s := h.c.Status()
				So(s.SubTrack, ShouldNotBeNil)
				So(s.SubTrack.Number, ShouldEqual, 2)
				So(s.SubTrack.Title, ShouldEqual, "Middle")
				So(s.SubTrack.Performer, ShouldEqual, "The Band")
				So(s.Position, ShouldEqual, 5)
				So(s.Duration, ShouldEqual, 222.5)
				So(s.FileDuration, ShouldEqual, 480)
			})

			Convey("And playing a plain file afterwards drops it", func() {
				So(h.c.Play("Album/01.flac", mo.None[float64]()), ShouldBeNil)
				So(h.c.Timeline(), ShouldBeEmpty)
			})
		})
	})
}

func TestTogglePause(t *testing.T) {
	Convey("Given a controller", t, func() {
		h := newHarness()

		Convey("Pausing while stopped is an error", func() {
			So(errors.Is(h.c.TogglePause(), ErrNotPlaying), ShouldBeTrue)
		})

		Convey("When playing", func() {
			So(h.c.Play("Album/01.flac", mo.None[float64]()), ShouldBeNil)
			h.advance(3 * time.Second)
			h.engine.props["time-pos"] = 2.5

			Convey("Pausing resyncs position from the engine", func() {
				So(h.c.TogglePause(), ShouldBeNil)
				So(h.c.Status().Status, ShouldEqual, Paused)
				So(h.c.Status().Position, ShouldEqual, 2.5)

				Convey("Position does not move while paused", func() {
					h.tick(10 * time.Second)
					So(h.c.Status().Position, ShouldEqual, 2.5)
				})

				Convey("Resuming restamps the anchor", func() {
					h.advance(10 * time.Second)
					So(h.c.TogglePause(), ShouldBeNil)
					So(h.c.Status().Status, ShouldEqual, Playing)
					h.advance(time.Second)
					So(h.c.Status().Position, ShouldEqual, 3.5)
				})
			})

			Convey("A dead engine is reported", func() {
				h.engine.running = false
				So(errors.Is(h.c.TogglePause(), player.ErrEngineUnavailable), ShouldBeTrue)
			})
		})
	})
}

func TestStop(t *testing.T) {
	Convey("Stopping a CUE album", t, func() {
		h := newHarness()
		So(h.c.Play("Cue/album.flac", mo.None[float64]()), ShouldBeNil)
		h.tick(215 * time.Second)
		So(h.c.Status().SubTrack, ShouldNotBeNil)

		So(h.c.Stop(), ShouldBeNil)

		s := h.c.Status()
		So(s.Status, ShouldEqual, Stopped)
		So(s.SubTrack, ShouldBeNil)
		So(s.Track, ShouldBeEmpty)
		So(s.Position, ShouldEqual, 0)
		So(s.Duration, ShouldEqual, 0)
		So(s.PlaylistIndex, ShouldEqual, -1)
		So(s.StartOffset.IsAbsent(), ShouldBeTrue)
		So(h.c.Timeline(), ShouldBeEmpty)
		So(h.engine.stops, ShouldEqual, 1)
		So(s.Volume, ShouldEqual, 42)
	})
}

func TestSeek(t *testing.T) {
	Convey("Given a controller", t, func() {
		h := newHarness()

		Convey("Seeking while stopped is an error", func() {
			So(errors.Is(h.c.Seek(10), ErrNotPlaying), ShouldBeTrue)
		})

		Convey("Plain files seek absolutely, clamped to the file", func() {
			So(h.c.Play("Album/01.flac", mo.None[float64]()), ShouldBeNil)

			So(h.c.Seek(120), ShouldBeNil)
			So(h.engine.lastSeek(), ShouldEqual, 120.0)
			So(h.c.Status().Position, ShouldEqual, 120)

			So(h.c.Seek(-5), ShouldBeNil)
			So(h.engine.lastSeek(), ShouldEqual, 0.0)

			So(h.c.Seek(9999), ShouldBeNil)
			So(h.engine.lastSeek(), ShouldEqual, 480.0)
		})

		Convey("With an active sub-track the target is relative to its start", func() {
			So(h.c.Play("Cue/album.flac", mo.None[float64]()), ShouldBeNil)
			h.tick(215 * time.Second)

			So(h.c.Seek(10), ShouldBeNil)
			So(h.engine.lastSeek(), ShouldEqual, 220.0)
			So(h.c.Status().Position, ShouldEqual, 10)

			So(h.c.Seek(1000), ShouldBeNil)
			So(h.engine.lastSeek(), ShouldEqual, 480.0)
		})

		Convey("A rejected seek leaves position alone", func() {
			So(h.c.Play("Album/01.flac", mo.None[float64]()), ShouldBeNil)
			h.engine.failVerb = "seek"
			So(errors.Is(h.c.Seek(30), player.ErrCommandFailed), ShouldBeTrue)
			So(h.c.Status().Position, ShouldEqual, 0)
		})
	})
}

func TestNavigatePlaylist(t *testing.T) {
	Convey("Given the second track of a folder", t, func() {
		h := newHarness()
		So(h.c.Play("Album/02.flac", mo.None[float64]()), ShouldBeNil)

		Convey("Previous within the threshold moves to the previous track", func() {
			h.tick(2 * time.Second)
			So(h.c.Navigate(Previous), ShouldBeNil)
			So(h.c.Status().PlaylistIndex, ShouldEqual, 0)
			So(h.c.Status().Track, ShouldEqual, "Album/01.flac")
			So(h.c.Status().Position, ShouldEqual, 0)

			Convey("And previous on the first track rewinds", func() {
				So(h.c.Navigate(Previous), ShouldBeNil)
				So(h.c.Status().PlaylistIndex, ShouldEqual, 0)
				So(h.engine.lastSeek(), ShouldEqual, 0.0)
			})
		})

		Convey("Previous past the threshold rewinds in place", func() {
			h.tick(5 * time.Second)
			So(h.c.Navigate(Previous), ShouldBeNil)
			So(h.c.Status().PlaylistIndex, ShouldEqual, 1)
			So(h.c.Status().Position, ShouldEqual, 0)
			So(h.engine.lastSeek(), ShouldEqual, 0.0)
		})

		Convey("Next advances until the last track", func() {
			So(h.c.Navigate(Next), ShouldBeNil)
			So(h.c.Status().PlaylistIndex, ShouldEqual, 2)
			So(h.c.Navigate(Next), ShouldBeNil)
			So(h.c.Status().PlaylistIndex, ShouldEqual, 2)
			So(h.engine.verbs("loadfile"), ShouldHaveLength, 2)
		})

		Convey("Next restarts an engine that exited", func() {
			h.engine.exit()
			So(h.c.Navigate(Next), ShouldBeNil)
			So(h.engine.Running(), ShouldBeTrue)
			So(h.c.Status().PlaylistIndex, ShouldEqual, 2)
			So(h.c.Status().Track, ShouldEqual, "Album/03.flac")
		})

		Convey("Next reports an engine that cannot be restarted", func() {
			h.engine.exit()
			h.engine.startErr = player.ErrEngineUnavailable
			err := h.c.Navigate(Next)
			So(errors.Is(err, player.ErrEngineUnavailable), ShouldBeTrue)
			So(h.c.Status().PlaylistIndex, ShouldEqual, 1)
			So(h.engine.verbs("loadfile"), ShouldHaveLength, 1)
		})

		Convey("Directions are parsed", func() {
			d, err := ParseDirection("prev")
			So(err, ShouldBeNil)
			So(d, ShouldEqual, Previous)
			_, err = ParseDirection("sideways")
			So(errors.Is(err, ErrInvalidDirection), ShouldBeTrue)
		})
	})

	Convey("Navigating while stopped does nothing", t, func() {
		h := newHarness()
		So(h.c.Navigate(Next), ShouldBeNil)
		So(h.engine.commands, ShouldBeEmpty)
	})
}

func TestNavigateCue(t *testing.T) {
	Convey("Given a CUE album five seconds into sub-track 2", t, func() {
		h := newHarness()
		So(h.c.Play("Cue/album.flac", mo.None[float64]()), ShouldBeNil)
		h.tick(215 * time.Second)
		So(h.c.Status().SubTrack.Number, ShouldEqual, 2)

		Convey("Previous rewinds to the sub-track start", func() {
			So(h.c.Navigate(Previous), ShouldBeNil)
			So(h.engine.lastSeek(), ShouldEqual, 210.0)
			So(h.c.Status().SubTrack.Number, ShouldEqual, 2)
			So(h.c.Status().Position, ShouldEqual, 0)

			Convey("And previous again within the threshold goes to sub-track 1", func() {
				h.tick(time.Second)
				So(h.c.Navigate(Previous), ShouldBeNil)
				So(h.engine.lastSeek(), ShouldEqual, 0.0)
				So(h.c.Status().SubTrack.Number, ShouldEqual, 1)

				Convey("And previous at the start of the album does nothing", func() {
					seeks := len(h.engine.verbs("seek"))
					So(h.c.Navigate(Previous), ShouldBeNil)
					So(h.engine.verbs("seek"), ShouldHaveLength, seeks)
				})
			})
		})

		Convey("Next moves to sub-track 3, then stops at the end of the album", func() {
			So(h.c.Navigate(Next), ShouldBeNil)
			So(h.engine.lastSeek(), ShouldAlmostEqual, 432.50667, 1e-4)
			So(h.c.Status().SubTrack.Number, ShouldEqual, 3)

			seeks := len(h.engine.verbs("seek"))
			So(h.c.Navigate(Next), ShouldBeNil)
			So(h.engine.verbs("seek"), ShouldHaveLength, seeks)
			So(h.engine.verbs("loadfile"), ShouldHaveLength, 1)
		})
	})
}

func TestTicker(t *testing.T) {
	Convey("Given a playing controller", t, func() {
		h := newHarness()

		Convey("Ticks closer than the coalescing interval do nothing", func() {
			So(h.c.Play("Album/01.flac", mo.None[float64]()), ShouldBeNil)
			h.tick(50 * time.Millisecond)
			h.c.mu.Lock()
			pos := h.c.state.position
			h.c.mu.Unlock()
			So(pos, ShouldEqual, 0)
		})

		Convey("The last track stops when the guard band is crossed", func() {
			h.engine.props["duration"] = 10.0
			So(h.c.Play("Album/03.flac", mo.None[float64]()), ShouldBeNil)
			So(h.c.Seek(8.6), ShouldBeNil)

			h.tick(500 * time.Millisecond)
			So(h.c.Status().Status, ShouldEqual, Playing)

			h.tick(500 * time.Millisecond)
			So(h.c.Status().Status, ShouldEqual, Stopped)
			So(h.engine.stops, ShouldEqual, 0)
		})

		Convey("Earlier tracks advance to the next one", func() {
			h.engine.props["duration"] = 10.0
			So(h.c.Play("Album/01.flac", mo.None[float64]()), ShouldBeNil)
			So(h.c.Seek(9.6), ShouldBeNil)

			h.tick(500 * time.Millisecond)
			So(h.c.Status().PlaylistIndex, ShouldEqual, 1)
			So(h.c.Status().Position, ShouldEqual, 0)

			h.tick(500 * time.Millisecond)
			So(h.c.Status().PlaylistIndex, ShouldEqual, 1)
			So(h.engine.verbs("loadfile"), ShouldHaveLength, 2)
		})

		Convey("A next track that fails to load stops playback once", func() {
			h.engine.props["duration"] = 10.0
			So(h.c.Play("Album/01.flac", mo.None[float64]()), ShouldBeNil)
			So(h.c.Seek(9.6), ShouldBeNil)
			h.engine.failVerb = "loadfile"

			h.tick(500 * time.Millisecond)
			h.tick(500 * time.Millisecond)
			So(h.engine.verbs("loadfile"), ShouldHaveLength, 2)
			So(h.c.Status().Status, ShouldEqual, Stopped)
			So(h.c.Status().Volume, ShouldEqual, 42)

			Convey("And playing again re-arms the end action", func() {
				h.engine.failVerb = ""
				So(h.c.Play("Album/01.flac", mo.None[float64]()), ShouldBeNil)
				So(h.c.Seek(9.8), ShouldBeNil)
				h.tick(500 * time.Millisecond)
				So(h.engine.verbs("loadfile"), ShouldHaveLength, 4)
				So(h.c.Status().PlaylistIndex, ShouldEqual, 1)
			})
		})

		Convey("Advancing restarts an engine that exited", func() {
			h.engine.props["duration"] = 10.0
			So(h.c.Play("Album/01.flac", mo.None[float64]()), ShouldBeNil)
			So(h.c.Seek(9.6), ShouldBeNil)
			h.engine.exit()

			h.tick(500 * time.Millisecond)
			So(h.engine.Running(), ShouldBeTrue)
			So(h.c.Status().Status, ShouldEqual, Playing)
			So(h.c.Status().PlaylistIndex, ShouldEqual, 1)
		})

		Convey("Advancing with an engine that cannot restart stops instead of running on", func() {
			h.engine.props["duration"] = 10.0
			So(h.c.Play("Album/01.flac", mo.None[float64]()), ShouldBeNil)
			So(h.c.Seek(9.6), ShouldBeNil)
			h.engine.exit()
			h.engine.startErr = player.ErrEngineUnavailable

			h.tick(500 * time.Millisecond)
			So(h.c.Status().Status, ShouldEqual, Stopped)

			h.tick(time.Minute)
			snap := h.c.Status()
			So(snap.Status, ShouldEqual, Stopped)
			So(snap.Position, ShouldEqual, 0)
			So(snap.PlaylistIndex, ShouldEqual, -1)
		})

		Convey("Run stops with its context", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			done := make(chan struct{})
			go func() {
				h.c.Run(ctx)
				close(done)
			}()
			So(func() { <-done }, ShouldNotPanic)
		})
	})
}

func TestVolumeAndEnhancement(t *testing.T) {
	Convey("Given a controller", t, func() {
		h := newHarness()

		Convey("Volume is scaled, pushed and persisted", func() {
			So(h.c.Play("Album/01.flac", mo.None[float64]()), ShouldBeNil)
			res := h.c.SetVolume(42)
			So(res, ShouldResemble, VolumeResult{UserVolume: 42, EngineVolume: 55})
			So(h.engine.props["volume"], ShouldEqual, 55)
			So(h.store.saved, ShouldResemble, []int{42})
			So(h.c.Status().Volume, ShouldEqual, 42)
		})

		Convey("Volume is clamped and recorded without an engine", func() {
			res := h.c.SetVolume(150)
			So(res, ShouldResemble, VolumeResult{UserVolume: 100, EngineVolume: 130})
			So(h.c.StartupVolume(), ShouldEqual, 100)
			_, set := h.engine.props["volume"].(int)
			So(set, ShouldBeFalse)
		})

		Convey("Enhancement presets are applied through the manager", func() {
			So(h.c.ApplyEnhancement(enhance.Wide), ShouldBeNil)
			So(h.c.Status().Enhancement, ShouldEqual, enhance.Wide)
			So(h.c.FilterChain(), ShouldStartWith, "crossfeed=strength=0.7")
			So(errors.Is(h.c.ApplyEnhancement("loud"), enhance.ErrUnknownPreset), ShouldBeTrue)
			So(errors.Is(h.c.UpdateCustomEnhancement(map[string]float64{"bass": 1}), enhance.ErrUnknownParam), ShouldBeTrue)
		})
	})
}

func TestConcurrentControl(t *testing.T) {
	Convey("Given the ticker and every command running at once", t, func() {
		h := newHarness()
		var clockMu sync.Mutex
		h.c.now = func() time.Time {
			clockMu.Lock()
			defer clockMu.Unlock()
			return h.clock
		}
		So(h.c.Play("Album/01.flac", mo.None[float64]()), ShouldBeNil)

		ops := []func(i int){
			func(int) {
				clockMu.Lock()
				h.clock = h.clock.Add(200 * time.Millisecond)
				clockMu.Unlock()
				h.c.Tick()
			},
			func(i int) { _ = h.c.Seek(float64(i % 400)) },
			func(i int) { _ = h.c.Navigate(lo.Ternary(i%2 == 0, Next, Previous)) },
			func(int) { _ = h.c.TogglePause() },
			func(int) { _ = h.c.Status() },
		}

		var wg sync.WaitGroup
		for _, op := range ops {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range 200 {
					op(i)
				}
			}()
		}
		wg.Wait()

		Convey("The state record stays consistent", func() {
			snap := h.c.Status()
			So(snap.Status, ShouldBeIn, []Status{Playing, Paused})
			So(snap.PlaylistIndex, ShouldBeBetweenOrEqual, 0, 2)
			So(snap.PlaylistLength, ShouldEqual, 3)
			So(snap.Position, ShouldBeBetweenOrEqual, 0, snap.Duration)
		})
	})
}

func TestDegradedEngine(t *testing.T) {
	Convey("Given an engine that rejects property writes", t, func() {
		h := newHarness()
		hook := logtest.NewGlobal()
		viper.Set(key.LogsWrite, true)
		So(log.Setup(), ShouldBeNil)

		Reset(func() {
			viper.Set(key.LogsWrite, false)
			_ = log.Setup()
			hook.Reset()
		})

		h.engine.props["pause"] = true
		h.engine.setErr = errors.New("property unavailable")

		Convey("Playback still starts and each failure is logged", func() {
			So(h.c.Play("Album/01.flac", mo.None[float64]()), ShouldBeNil)
			So(h.c.Status().Status, ShouldEqual, Playing)

			warned := func(prefix string) bool {
				return lo.SomeBy(hook.AllEntries(), func(e *logrus.Entry) bool {
					return e.Level == logrus.WarnLevel && strings.Contains(e.Message, prefix)
				})
			}
			So(warned("set vo="), ShouldBeTrue)
			So(warned("set vid=no"), ShouldBeTrue)
			So(warned("set pause=false"), ShouldBeTrue)
		})
	})
}
