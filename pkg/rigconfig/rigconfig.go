package rigconfig

import (
	"fmt"
	"os"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v2"
)

// Config is the rig's whole tuning surface. Every field has a default
// matching the hardware the rig was built with; a YAML file overlays only
// the fields it names.
type Config struct {
	// Camera. UseGrabber moves capture to a background goroutine with a
	// single-slot latest-frame handoff, for cameras that outpace the loop.
	CameraDevice int
	FrameWidth   int
	FrameHeight  int
	CascadePath  string
	UseGrabber   bool

	// Servos (PCA9685 channels and per-axis tuning).
	ServoDevice  string // I2C device file; empty selects the dummy output.
	PanChannel   int
	TiltChannel  int
	MinPulse     float64
	MaxPulse     float64
	StartPulse   float64
	PanGain      float64
	TiltGain     float64
	PanInverted  bool
	TiltInverted bool
	DeadZonePx   int

	// Ultrasonic rangefinder.
	TrigPin           string
	EchoPin           string
	EchoTimeoutMillis int
	MaxRangeCM        float64

	// Warning indicator.
	LEDPin           string
	AlertThresholdCM float64
	WarningSound     string // WAV path; empty disables the audible warning.

	// Loop pacing.
	SettleDelayMillis int
	CyclePauseMillis  int

	// Diagnostics. Empty disables overlay snapshots.
	OverlayDir   string
	OverlayEvery int
}

func Default() Config {
	return Config{
		CameraDevice: 0,
		FrameWidth:   640,
		FrameHeight:  480,
		CascadePath:  "/usr/share/opencv4/haarcascades/haarcascade_frontalface_alt.xml",

		ServoDevice: "/dev/i2c-1",
		PanChannel:  0,
		TiltChannel: 1,
		MinPulse:    1000,
		MaxPulse:    2000,
		StartPulse:  1500,
		PanGain:     0.005,
		TiltGain:    0.005,
		// Pan subtracts gain*error, tilt adds; flips with servo mounting.
		PanInverted:  false,
		TiltInverted: true,
		DeadZonePx:   15,

		TrigPin:           "GPIO23",
		EchoPin:           "GPIO24",
		EchoTimeoutMillis: 50,
		MaxRangeCM:        400,

		LEDPin:           "GPIO27",
		AlertThresholdCM: 40,

		SettleDelayMillis: 50,
		CyclePauseMillis:  100,

		OverlayEvery: 30,
	}
}

// Load returns the defaults overlaid with the YAML file at path, if it
// exists. Problems with the file are logged, not fatal; the rig runs on
// defaults. The config in effect is written back next to the input file
// for inspection.
func Load(path string) Config {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		fmt.Println(err)
	} else {
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			fmt.Println(err)
		}
	}
	fmt.Printf("Using config: %#v\n", cfg)

	out, err := yaml.Marshal(&cfg)
	if err != nil {
		fmt.Println(err)
		return cfg
	}
	inUse := strings.TrimSuffix(path, ".yaml") + "-in-use.yaml"
	if err := os.WriteFile(inUse, out, 0666); err != nil {
		fmt.Println(err)
	}
	return cfg
}

func (c Config) EchoTimeout() time.Duration {
	return time.Duration(c.EchoTimeoutMillis) * time.Millisecond
}

func (c Config) SettleDelay() time.Duration {
	return time.Duration(c.SettleDelayMillis) * time.Millisecond
}

func (c Config) CyclePause() time.Duration {
	return time.Duration(c.CyclePauseMillis) * time.Millisecond
}
