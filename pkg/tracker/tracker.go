package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/ras-eye-team/ras-eye/go-controller/pkg/hcsr04"
	"github.com/ras-eye-team/ras-eye/go-controller/pkg/servoaxis"
)

// Centroid is the estimated image coordinate of the tracked face.
type Centroid struct {
	X int
	Y int
}

// TargetSource produces one centroid estimate per cycle. found is false
// when no target is in frame (a normal, frequent condition); an error is an
// unrecoverable acquisition failure and ends the loop.
type TargetSource interface {
	NextTarget() (Centroid, bool, error)
}

type Ranger interface {
	Measure() hcsr04.Reading
}

type ServoOutput interface {
	SetPulseWidth(channel int, us float64) error
}

type Indicator interface {
	Evaluate(r hcsr04.Reading) bool
	Apply(on bool) error
}

type Config struct {
	FrameWidth  int
	FrameHeight int

	PanChannel  int
	TiltChannel int

	// SettleDelay gives the servos time to stop moving before the
	// ultrasonic measurement, but only on cycles that actually moved them.
	SettleDelay time.Duration

	// CyclePause paces the loop.
	CyclePause time.Duration
}

// Loop runs the per-cycle control sequence: centroid acquisition, axis
// updates, command re-assertion, ranging, indicator update, pacing. One
// cycle runs to completion before the next begins; the only state carried
// across cycles is the two axis commands.
type Loop struct {
	cfg       Config
	targets   TargetSource
	pan, tilt *servoaxis.Axis
	servos    ServoOutput
	ranger    Ranger
	indicator Indicator

	// Sleep is swappable so tests can run without real pacing delay.
	Sleep func(d time.Duration)
}

func New(cfg Config, targets TargetSource, pan, tilt *servoaxis.Axis,
	servos ServoOutput, ranger Ranger, indicator Indicator) *Loop {
	return &Loop{
		cfg:       cfg,
		targets:   targets,
		pan:       pan,
		tilt:      tilt,
		servos:    servos,
		ranger:    ranger,
		indicator: indicator,
		Sleep:     time.Sleep,
	}
}

// Run cycles until the frame source ends or ctx is cancelled. Cancellation
// is checked between cycles; a cycle in flight always completes.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := l.cycle(); err != nil {
			return err
		}
	}
}

func (l *Loop) cycle() error {
	target, found, err := l.targets.NextTarget()
	if err != nil {
		return fmt.Errorf("frame acquisition failed: %w", err)
	}

	if found {
		l.pan.Update(target.X - l.cfg.FrameWidth/2)
		l.tilt.Update(target.Y - l.cfg.FrameHeight/2)
	}
	// Re-assert both commands every cycle, moved or not, so the servos hold
	// position against external disturbance.
	if err := l.servos.SetPulseWidth(l.cfg.PanChannel, l.pan.Current()); err != nil {
		fmt.Println("Pan servo write failed:", err)
	}
	if err := l.servos.SetPulseWidth(l.cfg.TiltChannel, l.tilt.Current()); err != nil {
		fmt.Println("Tilt servo write failed:", err)
	}

	if found && l.cfg.SettleDelay > 0 {
		l.Sleep(l.cfg.SettleDelay)
	}

	reading := l.ranger.Measure()
	if err := l.indicator.Apply(l.indicator.Evaluate(reading)); err != nil {
		fmt.Println("Warning LED write failed:", err)
	}
	if reading.Valid {
		fmt.Printf("Distance: %.1f cm\n", reading.CM)
	} else {
		fmt.Println("Distance: out of range / error")
	}

	l.Sleep(l.cfg.CyclePause)
	return nil
}
