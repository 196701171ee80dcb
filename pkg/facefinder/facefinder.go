package facefinder

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/ras-eye-team/ras-eye/go-controller/pkg/tracker"
)

const DefaultCascadePath = "/usr/share/opencv4/haarcascades/haarcascade_frontalface_alt.xml"

// Finder locates the largest face in a frame with a Haar cascade.
type Finder struct {
	classifier gocv.CascadeClassifier

	// DetectMultiScale parameters; the defaults match a frontal-face
	// cascade on a 640x480 stream.
	ScaleFactor  float64
	MinNeighbors int
	MinSize      image.Point
}

func New(cascadePath string) (*Finder, error) {
	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(cascadePath) {
		classifier.Close()
		return nil, fmt.Errorf("couldn't load face cascade %q", cascadePath)
	}
	return &Finder{
		classifier:   classifier,
		ScaleFactor:  1.1,
		MinNeighbors: 2,
		MinSize:      image.Pt(30, 30),
	}, nil
}

// Locate returns the centroid of the largest detected face. When several
// candidates overlap the same frame, the one with the largest bounding area
// wins.
func (f *Finder) Locate(frame gocv.Mat) (tracker.Centroid, bool) {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray)
	gocv.EqualizeHist(gray, &gray)

	faces := f.classifier.DetectMultiScaleWithParams(
		gray, f.ScaleFactor, f.MinNeighbors, 0, f.MinSize, image.Point{})
	if len(faces) == 0 {
		return tracker.Centroid{}, false
	}

	best := faces[0]
	for _, r := range faces[1:] {
		if r.Dx()*r.Dy() > best.Dx()*best.Dy() {
			best = r
		}
	}
	return tracker.Centroid{
		X: best.Min.X + best.Dx()/2,
		Y: best.Min.Y + best.Dy()/2,
	}, true
}

func (f *Finder) Close() error {
	return f.classifier.Close()
}
