package main

// Standalone harness for the ultrasonic sensor and warning LED, for
// checking the wiring without the camera or servos attached.

import (
	"flag"
	"fmt"
	"log"
	"time"

	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
	"periph.io/x/periph/host"

	"github.com/ras-eye-team/ras-eye/go-controller/pkg/hcsr04"
	"github.com/ras-eye-team/ras-eye/go-controller/pkg/warnled"
)

func main() {
	trigName := flag.String("trig", "GPIO23", "trigger pin")
	echoName := flag.String("echo", "GPIO24", "echo pin")
	ledName := flag.String("led", "GPIO27", "warning LED pin")
	threshold := flag.Float64("threshold", 45, "warning distance in cm")
	interval := flag.Duration("interval", 500*time.Millisecond, "measurement interval")
	flag.Parse()

	fmt.Println("---- ultrasonic sensor & LED test ----")
	if _, err := host.Init(); err != nil {
		log.Fatalln("GPIO host init failed:", err)
	}

	trig := mustPin(*trigName)
	echo := mustPin(*echoName)
	led := mustPin(*ledName)
	if err := trig.Out(gpio.Low); err != nil {
		log.Fatalln(err)
	}
	if err := echo.In(gpio.PullDown, gpio.NoEdge); err != nil {
		log.Fatalln(err)
	}
	if err := led.Out(gpio.Low); err != nil {
		log.Fatalln(err)
	}

	sensor := hcsr04.New(trig, echo)
	indicator := warnled.New(led, *threshold)

	for {
		r := sensor.Measure()
		if r.Valid {
			fmt.Printf("Measured distance: %.1f cm\n", r.CM)
		} else {
			fmt.Println("Distance measurement failed")
		}
		on := indicator.Evaluate(r)
		if err := indicator.Apply(on); err != nil {
			fmt.Println("LED write failed:", err)
		}
		fmt.Println("LED state:", onOff(on))

		time.Sleep(*interval)
	}
}

func mustPin(name string) gpio.PinIO {
	pin := gpioreg.ByName(name)
	if pin == nil {
		log.Fatalf("no such pin %q", name)
	}
	return pin
}

func onOff(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}
