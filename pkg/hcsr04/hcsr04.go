package hcsr04

import (
	"time"

	"periph.io/x/periph/conn/gpio"
)

const (
	// Speed of sound in air at room temperature. Not temperature-compensated.
	SpeedOfSoundCMPerSec = 34300.0

	// DefaultMaxRangeCM is the longest echo we accept as a real measurement.
	// The HC-SR04 datasheet claims 4m; beyond that the part returns noise.
	DefaultMaxRangeCM = 400.0

	// DefaultEchoTimeout bounds each of the two echo waits. 50ms covers an
	// ~8m round trip, well past the usable range of the part.
	DefaultEchoTimeout = 50 * time.Millisecond

	triggerSettle = 2 * time.Microsecond
	triggerPulse  = 10 * time.Microsecond
)

// Reading is a single distance measurement. An invalid reading means the
// echo timed out or the computed distance was outside the physical window;
// it is never conflated with a zero distance.
type Reading struct {
	CM    float64
	Valid bool
}

// Invalid returns the reading used for timeouts and out-of-window results.
func Invalid() Reading {
	return Reading{}
}

type Interface interface {
	Measure() Reading
}

// TriggerPin and EchoPin are the two sides of the sensor, kept narrow so
// tests can fake them. periph gpio.PinOut / gpio.PinIn satisfy them.
type TriggerPin interface {
	Out(l gpio.Level) error
}

type EchoPin interface {
	Read() gpio.Level
}

// Clock supplies the measurement timestamps and delays. Swapping it for a
// fake lets tests script an echo pulse without real hardware delay. The
// real clock is time.Now, which is monotonic on Linux.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type realClock struct{}

func (realClock) Now() time.Time        { return time.Now() }
func (realClock) Sleep(d time.Duration) { time.Sleep(d) }

type Sensor struct {
	Trig TriggerPin
	Echo EchoPin

	// Timeout applies separately to the echo-rise wait and the echo-fall
	// wait; each gets a fresh deadline at its own phase boundary.
	Timeout    time.Duration
	MaxRangeCM float64
	Clock      Clock
}

func New(trig TriggerPin, echo EchoPin) *Sensor {
	return &Sensor{
		Trig:       trig,
		Echo:       echo,
		Timeout:    DefaultEchoTimeout,
		MaxRangeCM: DefaultMaxRangeCM,
		Clock:      realClock{},
	}
}

var _ Interface = (*Sensor)(nil)

// Measure fires one ultrasonic ping and times the echo pulse.
func (s *Sensor) Measure() Reading {
	// Make sure the trigger is low and let it settle, in case the previous
	// cycle left it mid-transition.
	if err := s.Trig.Out(gpio.Low); err != nil {
		return Invalid()
	}
	s.Clock.Sleep(triggerSettle)

	if err := s.Trig.Out(gpio.High); err != nil {
		return Invalid()
	}
	s.Clock.Sleep(triggerPulse)
	if err := s.Trig.Out(gpio.Low); err != nil {
		return Invalid()
	}

	// No object in range (or a disconnected sensor) shows up as the echo
	// line never rising; a stuck sensor as it never falling. Both are
	// bounded independently.
	riseAt, ok := s.waitForLevel(gpio.High)
	if !ok {
		return Invalid()
	}
	fallAt, ok := s.waitForLevel(gpio.Low)
	if !ok {
		return Invalid()
	}

	cm := fallAt.Sub(riseAt).Seconds() * SpeedOfSoundCMPerSec / 2
	if cm <= 0 || cm > s.MaxRangeCM {
		return Invalid()
	}
	return Reading{CM: cm, Valid: true}
}

// waitForLevel spins until the echo pin reads level, returning the timestamp
// of the first sample at that level.
func (s *Sensor) waitForLevel(level gpio.Level) (time.Time, bool) {
	deadline := s.Clock.Now().Add(s.Timeout)
	for {
		now := s.Clock.Now()
		if s.Echo.Read() == level {
			return now, true
		}
		if now.After(deadline) {
			return time.Time{}, false
		}
	}
}
