package pca9685

import (
	"fmt"
	"time"

	"golang.org/x/exp/io/i2c"
)

const (
	DefaultAddr = 0x40

	RegMode1 = 0x00
	RegMode2 = 0x01

	// Each PWM output has two 16-bit (low byte first) registers.
	// First register is the on time, second is the off time.
	RegLEDBase = 0x06

	RegPreScale = 0xfe // Pre-scaler for PWM frequency.

	// 50Hz servo frame.
	PWMPeriod = 20 * time.Millisecond
	PWMMax    = 4095
)

// Interface is the actuator output for the pan/tilt servos. Commands are
// pulse widths in microseconds; the controller guarantees they are inside
// its own bound range, the driver only guards the device's representable
// range.
type Interface interface {
	Configure() error
	SetPulseWidth(channel int, us float64) error
	Close() error
}

type PCA9685 struct {
	dev *i2c.Device
}

func New(deviceFile string) (Interface, error) {
	dev, err := i2c.Open(&i2c.Devfs{Dev: deviceFile}, DefaultAddr)
	if err != nil {
		return nil, err
	}
	return &PCA9685{
		dev: dev,
	}, nil
}

func (p *PCA9685) Configure() (err error) {
	// Put device to sleep.
	err = p.dev.WriteReg(RegMode1, []byte{0x11})
	if err != nil {
		return
	}
	// Update pre-scaler for 50Hz.
	err = p.dev.WriteReg(RegPreScale, []byte{0x79})
	if err != nil {
		return
	}
	// Trigger a reset.
	err = p.dev.WriteReg(RegMode1, []byte{0x01})
	if err != nil {
		return
	}
	// Required delay after reset.
	time.Sleep(1 * time.Millisecond)
	// Enable.
	err = p.dev.WriteReg(RegMode1, []byte{0x81})
	return
}

func (p *PCA9685) SetPulseWidth(channel int, us float64) error {
	if channel < 0 || channel > 15 {
		fmt.Println("Servo channel out of range:", channel)
		return nil
	}

	periodUS := float64(PWMPeriod / time.Microsecond)
	if us < 0 {
		us = 0
	} else if us > periodUS {
		us = periodUS
	}

	pwmValue := uint16(us / periodUS * PWMMax)
	addr := RegLEDBase + channel*4

	return p.dev.WriteReg(byte(addr), []byte{0, 0, byte(pwmValue & 0xff), byte(pwmValue >> 8)})
}

func (p *PCA9685) Close() error {
	return p.dev.Close()
}

// Dummy returns a no-op output for bench runs without the servo hat.
func Dummy() Interface {
	return &dummyServo{}
}

type dummyServo struct {
}

func (*dummyServo) Configure() error {
	return nil
}

func (*dummyServo) SetPulseWidth(channel int, us float64) error {
	return nil
}

func (*dummyServo) Close() error {
	return nil
}
