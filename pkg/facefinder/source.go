package facefinder

import (
	"gocv.io/x/gocv"

	"github.com/ras-eye-team/ras-eye/go-controller/pkg/camera"
	"github.com/ras-eye-team/ras-eye/go-controller/pkg/tracker"
)

// Snapshotter receives frames and detection results for diagnostics.
type Snapshotter interface {
	Frame(frame gocv.Mat, c tracker.Centroid, found bool)
}

// CameraSource couples a frame source to the finder so the control loop can
// pull one centroid per cycle without touching image data.
type CameraSource struct {
	src    camera.FrameSource
	finder *Finder
	frame  gocv.Mat

	// Optional diagnostics hook.
	Snap Snapshotter
}

func NewCameraSource(src camera.FrameSource, finder *Finder) *CameraSource {
	return &CameraSource{
		src:    src,
		finder: finder,
		frame:  gocv.NewMat(),
	}
}

var _ tracker.TargetSource = (*CameraSource)(nil)

// NextTarget acquires the next frame and locates the face in it. found is
// false when no face is in frame; an error means the stream has ended.
func (s *CameraSource) NextTarget() (tracker.Centroid, bool, error) {
	if err := s.src.Next(&s.frame); err != nil {
		return tracker.Centroid{}, false, err
	}
	c, found := s.finder.Locate(s.frame)
	if s.Snap != nil {
		s.Snap.Frame(s.frame, c, found)
	}
	return c, found, nil
}

func (s *CameraSource) Close() error {
	s.frame.Close()
	return s.src.Close()
}
