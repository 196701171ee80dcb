package warnled

import (
	"testing"

	"periph.io/x/periph/conn/gpio"

	"github.com/ras-eye-team/ras-eye/go-controller/pkg/hcsr04"
)

type fakePin struct {
	levels []gpio.Level
}

func (p *fakePin) Out(l gpio.Level) error {
	p.levels = append(p.levels, l)
	return nil
}

func TestEvaluateThreshold(t *testing.T) {
	i := New(&fakePin{}, 40)

	expectEvaluate(t, i, hcsr04.Reading{CM: 39.9, Valid: true}, true)
	expectEvaluate(t, i, hcsr04.Reading{CM: 34.3, Valid: true}, true)
	expectEvaluate(t, i, hcsr04.Reading{CM: 40, Valid: true}, false)
	expectEvaluate(t, i, hcsr04.Reading{CM: 40.1, Valid: true}, false)
	expectEvaluate(t, i, hcsr04.Reading{CM: 400, Valid: true}, false)
	expectEvaluate(t, i, hcsr04.Invalid(), false)
	// An invalid reading is never treated as zero distance.
	expectEvaluate(t, i, hcsr04.Reading{CM: 0, Valid: false}, false)
}

func TestApplyDrivesLEDEveryCall(t *testing.T) {
	pin := &fakePin{}
	i := New(pin, 40)

	for _, on := range []bool{true, true, false, false, true} {
		if err := i.Apply(on); err != nil {
			t.Fatal(err)
		}
	}

	want := []gpio.Level{gpio.High, gpio.High, gpio.Low, gpio.Low, gpio.High}
	if len(pin.levels) != len(want) {
		t.Fatalf("LED saw %d writes, expected %d", len(pin.levels), len(want))
	}
	for n, l := range want {
		if pin.levels[n] != l {
			t.Errorf("LED write %d was %v, expected %v", n, pin.levels[n], l)
		}
	}
}

func TestSoundPlaysOncePerExcursion(t *testing.T) {
	sounds := make(chan string, 4)
	i := New(&fakePin{}, 40).WithSound(sounds, "/sounds/warn.wav")

	i.Apply(true)
	i.Apply(true)
	i.Apply(true)
	i.Apply(false)
	i.Apply(true)

	if got := len(sounds); got != 2 {
		t.Errorf("expected 2 queued sounds (one per excursion), got %d", got)
	}
}

func expectEvaluate(t *testing.T, i *Indicator, r hcsr04.Reading, want bool) {
	t.Helper()
	if got := i.Evaluate(r); got != want {
		t.Errorf("Evaluate(%+v) = %v, expected %v", r, got, want)
	}
}
