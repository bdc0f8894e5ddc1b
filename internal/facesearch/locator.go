package facesearch

import (
	"fmt"
	"image"
	"math"

	"github.com/rs/zerolog"
	"golang.org/x/image/draw"
)

// Locator finds the rotation at which a frame shows faces.
type Locator struct {
	logger       zerolog.Logger
	detector     Detector
	scaleFactor  float64
	minNeighbors int
}

// LocatorOption customizes a Locator.
type LocatorOption func(*Locator)

// WithDetectorParams overrides the scale factor and min-neighbors passed to the detector.
func WithDetectorParams(scaleFactor float64, minNeighbors int) LocatorOption {
	return func(l *Locator) {
		if scaleFactor > 1 {
			l.scaleFactor = scaleFactor
		}
		if minNeighbors > 0 {
			l.minNeighbors = minNeighbors
		}
	}
}

// NewLocator creates a locator backed by detector.
func NewLocator(logger zerolog.Logger, detector Detector, opts ...LocatorOption) *Locator {
	l := &Locator{
		logger:       logger.With().Str("component", "face-locator").Logger(),
		detector:     detector,
		scaleFactor:  DefaultScaleFactor,
		minNeighbors: DefaultMinNeighbors,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Locate tries every rotation hypothesis starting at start. It returns nil
// without an error when no rotation produced a face.
func (l *Locator) Locate(frame image.Image, start Rotation) (*Observation, error) {
	seq, err := NewRotationSequence(start)
	if err != nil {
		return nil, err
	}
	return l.LocateSequence(frame, seq)
}

// LocateSequence draws hypotheses from seq until one yields a face. The
// sequence is advanced past every rotation tried.
func (l *Locator) LocateSequence(frame image.Image, seq *RotationSequence) (*Observation, error) {
	for {
		rotation, ok := seq.Next()
		if !ok {
			return nil, nil
		}

		gray := toGray(rotation.Apply(frame))
		faces, err := l.detector.DetectFaces(gray, l.scaleFactor, l.minNeighbors)
		if err != nil {
			return nil, fmt.Errorf("face detection at %d degrees failed: %w", int(rotation), err)
		}
		if len(faces) == 0 {
			continue
		}

		x, y := meanCenter(faces)
		l.logger.Debug().
			Int("faces", len(faces)).
			Int("rotation", int(rotation)).
			Int("x", x).
			Int("y", y).
			Msg("faces located")

		return &Observation{X: x, Y: y, Rotation: rotation}, nil
	}
}

// meanCenter averages the centres of rects. Halves round to even.
func meanCenter(rects []image.Rectangle) (int, int) {
	var sumX, sumY float64
	for _, r := range rects {
		sumX += float64(r.Min.X) + float64(r.Dx())/2
		sumY += float64(r.Min.Y) + float64(r.Dy())/2
	}
	n := float64(len(rects))
	return int(math.RoundToEven(sumX / n)), int(math.RoundToEven(sumY / n))
}

// toGray converts img to single-channel luminance.
func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)
	return gray
}
