package servoaxis

// Config holds the tuning for one physical axis.
type Config struct {
	// Pulse width bounds in microseconds. Commands are clamped to this
	// range on every update, not just at construction.
	MinPulse float64
	MaxPulse float64

	// Gain is the proportional constant applied to the pixel error.
	Gain float64

	// DeadZonePx suppresses corrections for errors at or below this
	// magnitude, so pixel noise near the setpoint doesn't jitter the servo.
	DeadZonePx int

	// Invert flips the correction direction. Which way is right depends on
	// how the servo is mounted relative to the camera.
	Invert bool
}

// Axis tracks the current commanded pulse width for one servo. It is plain
// P control: each update applies gain*error once, bounded only by the
// clamp. No integral or derivative term, no velocity limiting; a large
// error produces a large single-step jump.
type Axis struct {
	cfg     Config
	current float64
}

func New(cfg Config, startPulse float64) *Axis {
	return &Axis{
		cfg:     cfg,
		current: clamp(startPulse, cfg.MinPulse, cfg.MaxPulse),
	}
}

// Current returns the commanded pulse width in microseconds.
func (a *Axis) Current() float64 {
	return a.current
}

// Update applies one proportional correction for the given pixel error and
// returns the new commanded pulse width. Errors inside the dead zone leave
// the command exactly unchanged.
func (a *Axis) Update(errPx int) float64 {
	if abs(errPx) <= a.cfg.DeadZonePx {
		return a.current
	}

	delta := a.cfg.Gain * float64(errPx)
	if a.cfg.Invert {
		a.current += delta
	} else {
		a.current -= delta
	}
	a.current = clamp(a.current, a.cfg.MinPulse, a.cfg.MaxPulse)
	return a.current
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
