package duration

import (
	"errors"
	"testing"
	"time"

	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
)

type scriptedEngine struct {
	values []mo.Option[float64]
	calls  int
}

func (e *scriptedEngine) Duration() (mo.Option[float64], error) {
	defer func() { e.calls++ }()
	if e.calls < len(e.values) {
		return e.values[e.calls], nil
	}
	return mo.None[float64](), nil
}

type fixedProbe struct {
	value float64
	err   error
	calls int
}

func (p *fixedProbe) Duration(string) (float64, error) {
	p.calls++
	return p.value, p.err
}

func TestResolve(t *testing.T) {
	Convey("Given a resolver with a recorded clock", t, func() {
		var slept []time.Duration
		engine := &scriptedEngine{}
		prober := &fixedProbe{value: 312.5}
		r := &Resolver{Engine: engine, Probe: prober, Sleep: func(d time.Duration) { slept = append(slept, d) }}

		Convey("The first positive engine value wins", func() {
			engine.values = []mo.Option[float64]{mo.None[float64](), mo.Some(0.0), mo.Some(245.3)}
			res, err := r.Resolve("/music/a.flac")
			So(err, ShouldBeNil)
			So(res, ShouldResemble, Result{Seconds: 245.3, Source: FromEngine})
			So(engine.calls, ShouldEqual, 3)
			So(prober.calls, ShouldEqual, 0)
		})

		Convey("Non-DSD files poll five times then fall back without probing", func() {
			res, err := r.Resolve("/music/a.flac")
			So(errors.Is(err, ErrUnknown), ShouldBeTrue)
			So(res.Seconds, ShouldEqual, Fallback)
			So(res.LowConfidence(), ShouldBeTrue)
			So(engine.calls, ShouldEqual, 5)
			So(slept, ShouldHaveLength, 4)
			So(slept[0], ShouldEqual, 200*time.Millisecond)
			So(prober.calls, ShouldEqual, 0)
		})

		Convey("DSD files poll ten times then probe", func() {
			res, err := r.Resolve("/music/a.dsf")
			So(err, ShouldBeNil)
			So(res, ShouldResemble, Result{Seconds: 312.5, Source: FromProbe})
			So(engine.calls, ShouldEqual, 10)
			So(slept[0], ShouldEqual, 500*time.Millisecond)
			So(prober.calls, ShouldEqual, 1)
		})

		Convey("A failing probe still degrades to the fallback", func() {
			prober.err = errors.New("boom")
			res, err := r.Resolve("/music/a.dff")
			So(errors.Is(err, ErrUnknown), ShouldBeTrue)
			So(res.Source, ShouldEqual, FromFallback)
		})
	})
}
