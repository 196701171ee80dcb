package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
	"periph.io/x/periph/host"

	"github.com/ras-eye-team/ras-eye/go-controller/pkg/camera"
	"github.com/ras-eye-team/ras-eye/go-controller/pkg/facefinder"
	"github.com/ras-eye-team/ras-eye/go-controller/pkg/hcsr04"
	"github.com/ras-eye-team/ras-eye/go-controller/pkg/overlay"
	"github.com/ras-eye-team/ras-eye/go-controller/pkg/pca9685"
	"github.com/ras-eye-team/ras-eye/go-controller/pkg/rigconfig"
	"github.com/ras-eye-team/ras-eye/go-controller/pkg/servoaxis"
	"github.com/ras-eye-team/ras-eye/go-controller/pkg/sound"
	"github.com/ras-eye-team/ras-eye/go-controller/pkg/tracker"
	"github.com/ras-eye-team/ras-eye/go-controller/pkg/warnled"
)

const configPath = "/cfg/raseye.yaml"

func main() {
	fmt.Println("---- ras-eye ----")
	if err := run(); err != nil {
		log.Fatalln(err)
	}
}

// run keeps all the startup in one place so that a failure anywhere tears
// down whatever was already initialized via the defers.
func run() error {
	cfg := rigconfig.Load(configPath)

	if _, err := host.Init(); err != nil {
		return fmt.Errorf("GPIO host init failed: %w", err)
	}
	trig, err := outputPin(cfg.TrigPin)
	if err != nil {
		return err
	}
	led, err := outputPin(cfg.LEDPin)
	if err != nil {
		return err
	}
	echo := gpioreg.ByName(cfg.EchoPin)
	if echo == nil {
		return fmt.Errorf("no such pin %q", cfg.EchoPin)
	}
	if err := echo.In(gpio.PullDown, gpio.NoEdge); err != nil {
		return fmt.Errorf("couldn't configure echo pin %q: %w", cfg.EchoPin, err)
	}

	var servos pca9685.Interface
	if cfg.ServoDevice == "" {
		fmt.Println("No servo device configured, using dummy output")
		servos = pca9685.Dummy()
	} else {
		servos, err = pca9685.New(cfg.ServoDevice)
		if err != nil {
			return fmt.Errorf("couldn't open servo driver: %w", err)
		}
		if err := servos.Configure(); err != nil {
			servos.Close()
			return fmt.Errorf("couldn't configure servo driver: %w", err)
		}
	}
	defer servos.Close()

	finder, err := facefinder.New(cfg.CascadePath)
	if err != nil {
		return err
	}
	defer finder.Close()

	cam, err := camera.Open(cfg.CameraDevice, cfg.FrameWidth, cfg.FrameHeight)
	if err != nil {
		return err
	}
	var frames camera.FrameSource = cam
	if cfg.UseGrabber {
		// The grabber takes ownership of the camera and closes it when it
		// stops.
		frames = camera.NewGrabber(cam)
	}
	targets := facefinder.NewCameraSource(frames, finder)
	defer targets.Close()
	if cfg.OverlayDir != "" {
		targets.Snap = overlay.NewWriter(cfg.OverlayDir, cfg.OverlayEvery)
	}

	indicator := warnled.New(led, cfg.AlertThresholdCM)
	if cfg.WarningSound != "" {
		sounds := sound.Init()
		defer close(sounds)
		indicator.WithSound(sounds, cfg.WarningSound)
	}

	sensor := hcsr04.New(trig, echo)
	sensor.Timeout = cfg.EchoTimeout()
	sensor.MaxRangeCM = cfg.MaxRangeCM

	pan := servoaxis.New(servoaxis.Config{
		MinPulse:   cfg.MinPulse,
		MaxPulse:   cfg.MaxPulse,
		Gain:       cfg.PanGain,
		DeadZonePx: cfg.DeadZonePx,
		Invert:     cfg.PanInverted,
	}, cfg.StartPulse)
	tilt := servoaxis.New(servoaxis.Config{
		MinPulse:   cfg.MinPulse,
		MaxPulse:   cfg.MaxPulse,
		Gain:       cfg.TiltGain,
		DeadZonePx: cfg.DeadZonePx,
		Invert:     cfg.TiltInverted,
	}, cfg.StartPulse)

	// Center both axes before the first frame.
	if err := servos.SetPulseWidth(cfg.PanChannel, pan.Current()); err != nil {
		fmt.Println("Pan servo write failed:", err)
	}
	if err := servos.SetPulseWidth(cfg.TiltChannel, tilt.Current()); err != nil {
		fmt.Println("Tilt servo write failed:", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	registerSignalHandlers(cancel)

	loop := tracker.New(tracker.Config{
		FrameWidth:  cfg.FrameWidth,
		FrameHeight: cfg.FrameHeight,
		PanChannel:  cfg.PanChannel,
		TiltChannel: cfg.TiltChannel,
		SettleDelay: cfg.SettleDelay(),
		CyclePause:  cfg.CyclePause(),
	}, targets, pan, tilt, servos, sensor, indicator)

	err = loop.Run(ctx)
	led.Out(gpio.Low)
	if errors.Is(err, context.Canceled) {
		fmt.Println("Shut down cleanly")
		return nil
	}
	return err
}

func outputPin(name string) (gpio.PinIO, error) {
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("no such pin %q", name)
	}
	if err := pin.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("couldn't drive pin %q: %w", name, err)
	}
	return pin, nil
}

func registerSignalHandlers(cancelFunc context.CancelFunc) {
	// Hook Ctrl-C to cause shut down.
	signals := make(chan os.Signal, 2)
	signal.Notify(signals, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		s := <-signals
		log.Println("Signal: ", s)
		cancelFunc()
		time.Sleep(2 * time.Second)
		os.Exit(0)
	}()
}
