// Package facesearch estimates how a video clip is oriented by looking for
// faces in a sparse sample of its frames under four rotation hypotheses.
package facesearch

import (
	"errors"
	"image"
)

var (
	// ErrInvalidRotation is returned for angles outside 0, 90, 180 and 270.
	ErrInvalidRotation = errors.New("facesearch: rotation must be one of 0, 90, 180, 270")

	// ErrNoFaces is returned when no sampled frame contained a face at any rotation.
	ErrNoFaces = errors.New("facesearch: no faces found in clip")

	// ErrInvalidClipInfo is returned when clip dimensions or frame rate are not positive.
	ErrInvalidClipInfo = errors.New("facesearch: clip width, height and frame rate must be positive")
)

// Default detector parameters. Changing them changes which faces are found.
const (
	DefaultScaleFactor  = 1.2
	DefaultMinNeighbors = 10

	// DefaultConfidence is the number of observations at one rotation after
	// which sampling stops.
	DefaultConfidence = 3
)

// Detector finds face regions in a single-channel image.
type Detector interface {
	DetectFaces(gray *image.Gray, scaleFactor float64, minNeighbors int) ([]image.Rectangle, error)
}

// FrameSource yields decoded frames of a clip.
// Read returns ok == false once no frame remains; that is not an error.
type FrameSource interface {
	Read() (frame image.Image, ok bool, err error)
	Seek(frame float64) error
	Close() error
}

// ClipInfo is the intrinsic metadata of the clip being analysed.
type ClipInfo struct {
	Width  int
	Height int
	FPS    float64
}

// Observation is the averaged face centre found in one frame.
type Observation struct {
	X        int
	Y        int
	Rotation Rotation
}

// Orientation is the estimated face position on a 3x3 grid (1-based) and
// the rotation at which faces were found most often.
type Orientation struct {
	BucketX  int
	BucketY  int
	Rotation Rotation
}
