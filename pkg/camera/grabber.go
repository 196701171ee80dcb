package camera

import (
	"sync"

	"gocv.io/x/gocv"
)

// Grabber decouples frame capture from the control loop for rigs where the
// camera delivers frames faster than the loop consumes them. It keeps a
// single-slot "latest frame" exchange, never a queue: when the consumer is
// behind, the stale frame is dropped and replaced with the newest one.
//
// The capture goroutine owns the underlying source and closes it when it
// stops, either because the source ended or because Close was called.
type Grabber struct {
	frames chan gocv.Mat
	done   chan struct{}
	once   sync.Once
}

func NewGrabber(src FrameSource) *Grabber {
	g := &Grabber{
		frames: make(chan gocv.Mat, 1),
		done:   make(chan struct{}),
	}
	go g.loop(src)
	return g
}

func (g *Grabber) loop(src FrameSource) {
	defer close(g.frames)
	defer src.Close()
	for {
		m := gocv.NewMat()
		if err := src.Next(&m); err != nil {
			m.Close()
			return
		}
		select {
		case <-g.done:
			m.Close()
			return
		default:
		}
		select {
		case g.frames <- m:
			continue
		default:
		}
		// Slot occupied: replace the stale frame with this one.
		select {
		case old := <-g.frames:
			old.Close()
		default:
		}
		select {
		case g.frames <- m:
		default:
			m.Close()
		}
	}
}

var _ FrameSource = (*Grabber)(nil)

// Next blocks for the most recent frame. After the underlying source ends
// or the grabber is closed, it reports ErrEndOfStream.
func (g *Grabber) Next(dst *gocv.Mat) error {
	m, ok := <-g.frames
	if !ok {
		return ErrEndOfStream
	}
	defer m.Close()
	m.CopyTo(dst)
	return nil
}

// Close stops the capture goroutine. A read already in flight on the source
// finishes first; the goroutine exits as soon as that read returns.
func (g *Grabber) Close() error {
	g.once.Do(func() {
		close(g.done)
	})
	// Drop whatever is parked in the slot.
	select {
	case m, ok := <-g.frames:
		if ok {
			m.Close()
		}
	default:
	}
	return nil
}
