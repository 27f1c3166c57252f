package enhance

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

type fakeEngine struct {
	running bool
	fail    error
	pushed  []string
}

func (e *fakeEngine) Running() bool { return e.running }

func (e *fakeEngine) SetProperty(name string, value any) error {
	if e.fail != nil {
		return e.fail
	}
	e.pushed = append(e.pushed, name+"="+value.(string))
	return nil
}

type fakeStore struct{ saved []string }

func (s *fakeStore) SavePreset(name string) error {
	s.saved = append(s.saved, name)
	return nil
}

func TestCatalog(t *testing.T) {
	Convey("Catalog", t, func() {
		Convey("Chains are deterministic for every preset", func() {
			for _, name := range Names() {
				a, err := Chain(name, DefaultParams())
				So(err, ShouldBeNil)
				b, _ := Chain(name, DefaultParams())
				So(a, ShouldEqual, b)
			}
		})

		Convey("Off clears filters", func() {
			chain, err := Chain(Off, DefaultParams())
			So(err, ShouldBeNil)
			So(chain, ShouldBeEmpty)
		})

		Convey("Named presets keep their literal stages", func() {
			chain, _ := Chain(Natural, DefaultParams())
			So(chain, ShouldEqual, "crossfeed=strength=0.5:range=0.6,volume=1.1,haas=level_in=1.0:level_out=1.0:side_gain=0.8,extrastereo=m=1.5")
		})

		Convey("Named excludes custom", func() {
			for _, p := range Named() {
				So(p.Key, ShouldNotEqual, Custom)
			}
			So(Named(), ShouldHaveLength, 5)
		})

		Convey("Unknown presets are rejected", func() {
			_, err := Chain("loud", DefaultParams())
			So(errors.Is(err, ErrUnknownPreset), ShouldBeTrue)
		})

		Convey("Lookup returns a copy", func() {
			p, _ := Lookup(Wide)
			p.Filters[0] = "changed"
			again, _ := Lookup(Wide)
			So(again.Filters[0], ShouldEqual, "crossfeed=strength=0.7:range=0.4")
		})
	})
}

func TestParams(t *testing.T) {
	Convey("Custom parameters", t, func() {
		p := DefaultParams()

		Convey("Defaults derive the natural-like chain with surround", func() {
			So(p.Filters(), ShouldResemble, []string{
				"crossfeed=strength=0.5:range=0.6",
				"volume=1.1",
				"haas=level_in=1.0:level_out=1.0:side_gain=0.8",
				"extrastereo=m=1.5",
				"surround=chl_out=stereo:chl_in=stereo:level_in=1.0:level_out=1.0",
			})
		})

		Convey("Values are clamped, not rejected", func() {
			So(p.Set("crossfeed_strength", 4), ShouldBeNil)
			So(p.Set("crossfeed_range", -1), ShouldBeNil)
			So(p.Set("haas_side_gain", 9), ShouldBeNil)
			So(p.Set("surround_level_out", -2), ShouldBeNil)
			So(p.CrossfeedStrength, ShouldEqual, 1)
			So(p.CrossfeedRange, ShouldEqual, 0)
			So(p.HaasSideGain, ShouldEqual, 3)
			So(p.SurroundLevelOut, ShouldEqual, 0)

			Convey("And the derived chain follows", func() {
				f := p.Filters()
				So(f[0], ShouldEqual, "crossfeed=strength=1.0:range=0.0")
				So(f[1], ShouldEqual, "volume=1.2")
				So(f, ShouldHaveLength, 4)
			})
		})

		Convey("Weak crossfeed needs no volume compensation", func() {
			So(p.Set("crossfeed_strength", 0.1), ShouldBeNil)
			So(p.Filters()[1], ShouldStartWith, "haas=")
		})

		Convey("Unknown names are rejected", func() {
			So(errors.Is(p.Set("bass", 1), ErrUnknownParam), ShouldBeTrue)
		})

		Convey("All six parameters are exposed", func() {
			So(ParamNames(), ShouldHaveLength, 6)
			So(p.Map()["extrastereo_multiplier"], ShouldEqual, 1.5)
		})
	})
}

func TestManager(t *testing.T) {
	Convey("Given a manager", t, func() {
		engine := &fakeEngine{running: true}
		store := &fakeStore{}
		m := NewManager(engine, store, "bogus")

		So(m.Current(), ShouldEqual, Off)

		Convey("Apply persists and pushes", func() {
			So(m.Apply(Wide), ShouldBeNil)
			So(m.Current(), ShouldEqual, Wide)
			So(store.saved, ShouldResemble, []string{Wide})
			So(engine.pushed, ShouldHaveLength, 1)
			So(engine.pushed[0], ShouldStartWith, "af=crossfeed=strength=0.7")
		})

		Convey("Off pushes an empty chain", func() {
			So(m.Apply(Off), ShouldBeNil)
			So(engine.pushed, ShouldResemble, []string{"af="})
		})

		Convey("Apply without an engine still records the choice", func() {
			engine.running = false
			So(m.Apply(Subtle), ShouldBeNil)
			So(m.Current(), ShouldEqual, Subtle)
			So(store.saved, ShouldResemble, []string{Subtle})
			So(engine.pushed, ShouldBeEmpty)
		})

		Convey("A push failure is not an error", func() {
			engine.fail = errors.New("socket gone")
			So(m.Apply(Speakers), ShouldBeNil)
			So(m.Current(), ShouldEqual, Speakers)
		})

		Convey("Unknown presets change nothing", func() {
			So(errors.Is(m.Apply("loud"), ErrUnknownPreset), ShouldBeTrue)
			So(m.Current(), ShouldEqual, Off)
			So(store.saved, ShouldBeEmpty)
		})

		Convey("Updating custom parameters re-applies only when custom is active", func() {
			So(m.UpdateCustom(map[string]float64{"extrastereo_multiplier": 2.5}), ShouldBeNil)
			So(engine.pushed, ShouldBeEmpty)

			So(m.Apply(Custom), ShouldBeNil)
			So(m.UpdateCustom(map[string]float64{"haas_level_out": 5}), ShouldBeNil)
			So(engine.pushed, ShouldHaveLength, 2)
			So(engine.pushed[1], ShouldContainSubstring, "level_out=3.0")
			So(engine.pushed[1], ShouldContainSubstring, "extrastereo=m=2.5")
			So(m.FilterChain(), ShouldEqual, engine.pushed[1][len("af="):])
		})

		Convey("An unknown custom parameter leaves the rest untouched", func() {
			err := m.UpdateCustom(map[string]float64{"crossfeed_range": 0.9, "bogus": 1})
			So(errors.Is(err, ErrUnknownParam), ShouldBeTrue)
			So(m.Custom().CrossfeedRange, ShouldEqual, 0.6)
		})
	})
}

func TestExplain(t *testing.T) {
	Convey("Explain", t, func() {
		for _, e := range Effects() {
			So(Explain(e).Description, ShouldNotBeEmpty)
		}
		So(Explain("reverb").Name, ShouldEqual, "reverb")
	})
}
