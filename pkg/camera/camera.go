package camera

import (
	"errors"
	"fmt"

	"gocv.io/x/gocv"
)

// ErrEndOfStream signals an unrecoverable acquisition failure: the capture
// device stopped producing frames. There is no defined recovery for a dead
// camera, so callers treat it as terminal.
var ErrEndOfStream = errors.New("camera: end of stream")

type FrameSource interface {
	// Next fills dst with the next frame. ErrEndOfStream is terminal.
	Next(dst *gocv.Mat) error
	Close() error
}

type Camera struct {
	cap *gocv.VideoCapture
}

func Open(device, width, height int) (*Camera, error) {
	cap, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("couldn't open camera %d: %w", device, err)
	}
	cap.Set(gocv.VideoCaptureFrameWidth, float64(width))
	cap.Set(gocv.VideoCaptureFrameHeight, float64(height))
	return &Camera{cap: cap}, nil
}

var _ FrameSource = (*Camera)(nil)

func (c *Camera) Next(dst *gocv.Mat) error {
	if ok := c.cap.Read(dst); !ok {
		return ErrEndOfStream
	}
	if dst.Empty() {
		return ErrEndOfStream
	}
	return nil
}

func (c *Camera) Close() error {
	return c.cap.Close()
}
