package warnled

import (
	"time"

	"periph.io/x/periph/conn/gpio"

	"github.com/ras-eye-team/ras-eye/go-controller/pkg/hcsr04"
)

// Pin is the LED output line. periph gpio.PinOut satisfies it.
type Pin interface {
	Out(l gpio.Level) error
}

// Indicator maps distance readings onto a warning LED. The threshold test
// is stateless with no hysteresis band, so a reading oscillating exactly at
// the threshold can chatter the LED; the indicator is advisory, that's
// accepted.
type Indicator struct {
	led         Pin
	thresholdCM float64

	// Optional audible warning, played once per off-to-on transition.
	sounds    chan<- string
	warnSound string
	lastOn    bool
}

func New(led Pin, thresholdCM float64) *Indicator {
	return &Indicator{
		led:         led,
		thresholdCM: thresholdCM,
	}
}

// WithSound queues soundPath on the given channel each time the alert
// asserts. The send is best-effort; a busy player drops the warning.
func (i *Indicator) WithSound(sounds chan<- string, soundPath string) *Indicator {
	i.sounds = sounds
	i.warnSound = soundPath
	return i
}

// Evaluate reports whether the alert should be on: a valid reading strictly
// below the threshold. Invalid readings and readings at or beyond the
// threshold are off.
func (i *Indicator) Evaluate(r hcsr04.Reading) bool {
	return r.Valid && r.CM < i.thresholdCM
}

// Apply drives the LED line. It is called every cycle regardless of whether
// the state changed.
func (i *Indicator) Apply(on bool) error {
	level := gpio.Low
	if on {
		level = gpio.High
	}
	err := i.led.Out(level)

	if on && !i.lastOn && i.sounds != nil {
		select {
		case i.sounds <- i.warnSound:
		case <-time.After(10 * time.Millisecond):
		}
	}
	i.lastOn = on
	return err
}
