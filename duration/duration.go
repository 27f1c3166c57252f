// Package duration determines how long a media file plays, trying the engine first,
// an external probe second and a fixed fallback last.
package duration

import (
	"errors"
	"time"

	"github.com/aether-player/aether/log"
	"github.com/aether-player/aether/media"
	"github.com/aether-player/aether/probe"
	"github.com/samber/mo"
)

// Fallback is used when no strategy produced a duration.
const Fallback = 100.0

// ErrUnknown accompanies the fallback value. It marks the result as low-confidence, not as a failure.
var ErrUnknown = errors.New("duration unknown")

// Source names the strategy that produced a duration.
type Source string

const (
	FromEngine   Source = "engine"
	FromProbe    Source = "probe"
	FromFallback Source = "fallback"
)

// Engine exposes the engine's live duration property.
type Engine interface {
	Duration() (mo.Option[float64], error)
}

// Schedule is a polling budget.
type Schedule struct {
	Attempts int
	Interval time.Duration
}

var (
	// DSDSchedule gives DSD containers time to report a duration.
	DSDSchedule = Schedule{Attempts: 10, Interval: 500 * time.Millisecond}
	// DefaultSchedule is used for every other format.
	DefaultSchedule = Schedule{Attempts: 5, Interval: 200 * time.Millisecond}
)

// Result is a resolved duration.
type Result struct {
	Seconds float64
	Source  Source
}

// LowConfidence reports whether the value is the static fallback.
func (r Result) LowConfidence() bool {
	return r.Source == FromFallback
}

// Resolver runs the strategies in a fixed order.
type Resolver struct {
	Engine Engine
	Probe  probe.Prober
	Sleep  func(time.Duration)
}

// New returns a resolver sleeping on the wall clock.
func New(engine Engine, prober probe.Prober) *Resolver {
	return &Resolver{Engine: engine, Probe: prober, Sleep: time.Sleep}
}

func (r *Resolver) poll(s Schedule) mo.Option[float64] {
	for i := 0; i < s.Attempts; i++ {
		if i > 0 {
			r.Sleep(s.Interval)
		}
		v, err := r.Engine.Duration()
		if err != nil {
			log.Debugf("duration: engine query %d: %s", i+1, err)
			continue
		}
		if d, ok := v.Get(); ok && d > 0 {
			return mo.Some(d)
		}
	}
	return mo.None[float64]()
}

// Resolve returns the duration of the file the engine just loaded from path.
// The fallback result comes together with ErrUnknown.
func (r *Resolver) Resolve(path string) (Result, error) {
	dsd := media.IsDSD(path)

	schedule := DefaultSchedule
	if dsd {
		schedule = DSDSchedule
	}

	if d, ok := r.poll(schedule).Get(); ok {
		return Result{Seconds: d, Source: FromEngine}, nil
	}

	if dsd && r.Probe != nil {
		d, err := r.Probe.Duration(path)
		if err == nil && d > 0 {
			log.Infof("duration: %s probed at %.2fs", path, d)
			return Result{Seconds: d, Source: FromProbe}, nil
		}
		log.Warnf("duration: probe %s: %v", path, err)
	}

	log.Warnf("duration: %s unresolved, using %.1fs", path, Fallback)
	return Result{Seconds: Fallback, Source: FromFallback}, ErrUnknown
}
