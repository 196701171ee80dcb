package overlay

import (
	"fmt"
	"path/filepath"

	"github.com/fogleman/gg"
	"gocv.io/x/gocv"

	"github.com/ras-eye-team/ras-eye/go-controller/pkg/tracker"
)

// Writer saves every Nth frame annotated with the frame-center crosshair
// and the detected face position. Purely diagnostic; failures are logged
// and never stop the loop.
type Writer struct {
	Dir   string
	Every int

	seq int
}

func NewWriter(dir string, every int) *Writer {
	if every < 1 {
		every = 1
	}
	return &Writer{Dir: dir, Every: every}
}

func (w *Writer) Frame(frame gocv.Mat, c tracker.Centroid, found bool) {
	w.seq++
	if w.seq%w.Every != 0 {
		return
	}

	img, err := frame.ToImage()
	if err != nil {
		fmt.Println("Overlay: couldn't convert frame:", err)
		return
	}

	dc := gg.NewContextForImage(img)
	cx := float64(dc.Width()) / 2
	cy := float64(dc.Height()) / 2

	// Frame-center crosshair.
	dc.SetRGB(0, 1, 0)
	dc.SetLineWidth(1)
	dc.DrawLine(cx-12, cy, cx+12, cy)
	dc.DrawLine(cx, cy-12, cx, cy+12)
	dc.Stroke()

	if found {
		dc.SetRGB(1, 0, 0)
		dc.SetLineWidth(2)
		dc.DrawCircle(float64(c.X), float64(c.Y), 8)
		dc.Stroke()
		dc.DrawString(fmt.Sprintf("(%d,%d)", c.X, c.Y), float64(c.X)+12, float64(c.Y))
	}

	path := filepath.Join(w.Dir, fmt.Sprintf("frame-%05d.png", w.seq))
	if err := dc.SavePNG(path); err != nil {
		fmt.Println("Overlay: couldn't save", path, ":", err)
	}
}
