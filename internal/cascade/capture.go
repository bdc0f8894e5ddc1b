package cascade

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/kikiluvv/videoeditor/internal/facesearch"
)

// Capture reads frames from a video file.
type Capture struct {
	vc  *gocv.VideoCapture
	mat gocv.Mat
}

// OpenCapture opens path for frame-by-frame decoding.
func OpenCapture(path string) (*Capture, error) {
	vc, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("failed to open %s: no decodable video", path)
	}
	return &Capture{vc: vc, mat: gocv.NewMat()}, nil
}

// Open matches the frame opener signature used by the pipeline.
func Open(path string) (facesearch.FrameSource, error) {
	return OpenCapture(path)
}

// Read decodes the frame at the current position.
func (c *Capture) Read() (image.Image, bool, error) {
	if ok := c.vc.Read(&c.mat); !ok || c.mat.Empty() {
		return nil, false, nil
	}
	img, err := c.mat.ToImage()
	if err != nil {
		return nil, false, fmt.Errorf("failed to convert frame: %w", err)
	}
	return img, true, nil
}

// Seek moves the read position to a frame index.
func (c *Capture) Seek(frame float64) error {
	c.vc.Set(gocv.VideoCapturePosFrames, frame)
	return nil
}

// Close releases the decoder.
func (c *Capture) Close() error {
	if err := c.mat.Close(); err != nil {
		return err
	}
	return c.vc.Close()
}
