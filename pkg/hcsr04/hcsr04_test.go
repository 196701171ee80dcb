package hcsr04

import (
	"math"
	"testing"
	"time"

	"periph.io/x/periph/conn/gpio"
)

// testClock advances a fixed tick on every Now() so that spin waits make
// progress, and jumps forward on Sleep.
type testClock struct {
	now  time.Duration
	tick time.Duration
}

func (c *testClock) Now() time.Time {
	c.now += c.tick
	return time.Unix(0, 0).Add(c.now)
}

func (c *testClock) Sleep(d time.Duration) {
	c.now += d
}

// scriptedEcho is high during [riseAt, fallAt) on the test clock.
type scriptedEcho struct {
	clock  *testClock
	riseAt time.Duration
	fallAt time.Duration
}

func (e *scriptedEcho) Read() gpio.Level {
	if e.clock.now >= e.riseAt && e.clock.now < e.fallAt {
		return gpio.High
	}
	return gpio.Low
}

type recordingTrig struct {
	levels []gpio.Level
}

func (p *recordingTrig) Out(l gpio.Level) error {
	p.levels = append(p.levels, l)
	return nil
}

const never = time.Hour

func newTestSensor(tick, riseAt, fallAt time.Duration) (*Sensor, *recordingTrig) {
	clock := &testClock{tick: tick}
	trig := &recordingTrig{}
	s := New(trig, &scriptedEcho{clock: clock, riseAt: riseAt, fallAt: fallAt})
	s.Clock = clock
	return s, trig
}

func TestMeasureRoundTrip(t *testing.T) {
	// A 2000us echo pulse is a 34.3cm reading.
	s, trig := newTestSensor(time.Microsecond, 100*time.Microsecond, 2100*time.Microsecond)

	r := s.Measure()
	if !r.Valid {
		t.Fatal("expected a valid reading")
	}
	if math.Abs(r.CM-34.3) > 0.1 {
		t.Errorf("got %.3f cm, expected ~34.3", r.CM)
	}

	want := []gpio.Level{gpio.Low, gpio.High, gpio.Low}
	if len(trig.levels) != len(want) {
		t.Fatalf("trigger saw %v, expected %v", trig.levels, want)
	}
	for i, l := range want {
		if trig.levels[i] != l {
			t.Errorf("trigger write %d was %v, expected %v", i, trig.levels[i], l)
		}
	}
}

func TestMeasureNearLimit(t *testing.T) {
	// ~23300us round trip is just inside the 400cm window.
	s, _ := newTestSensor(time.Microsecond, 100*time.Microsecond, (100+23300)*time.Microsecond)
	r := s.Measure()
	if !r.Valid {
		t.Fatal("expected a valid reading just inside the window")
	}
	if math.Abs(r.CM-399.595) > 0.2 {
		t.Errorf("got %.3f cm, expected ~399.6", r.CM)
	}
}

func TestEchoNeverRises(t *testing.T) {
	s, _ := newTestSensor(10*time.Microsecond, never, never)
	if r := s.Measure(); r.Valid {
		t.Errorf("expected invalid reading on rise timeout, got %.1f cm", r.CM)
	}
}

func TestEchoNeverFalls(t *testing.T) {
	s, _ := newTestSensor(10*time.Microsecond, 100*time.Microsecond, never)
	if r := s.Measure(); r.Valid {
		t.Errorf("expected invalid reading on fall timeout, got %.1f cm", r.CM)
	}
}

func TestRejectsBeyondMaxRange(t *testing.T) {
	// 30000us pulse is ~514cm, past the 400cm window.
	s, _ := newTestSensor(time.Microsecond, 100*time.Microsecond, (100+30000)*time.Microsecond)
	if r := s.Measure(); r.Valid {
		t.Errorf("expected invalid reading beyond max range, got %.1f cm", r.CM)
	}
}

func TestInvalidIsNotZeroDistance(t *testing.T) {
	r := Invalid()
	if r.Valid {
		t.Error("Invalid() must not be valid")
	}
}
