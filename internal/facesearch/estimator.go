package facesearch

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"
)

// Estimator samples frames of a clip and derives its Orientation.
type Estimator struct {
	logger     zerolog.Logger
	locator    *Locator
	confidence int
}

// NewEstimator creates an estimator. A confidence below 1 uses DefaultConfidence.
func NewEstimator(logger zerolog.Logger, locator *Locator, confidence int) *Estimator {
	if confidence < 1 {
		confidence = DefaultConfidence
	}
	return &Estimator{
		logger:     logger.With().Str("component", "orientation-estimator").Logger(),
		locator:    locator,
		confidence: confidence,
	}
}

// observations holds per-rotation face centres, indexed like Rotations.
type observations [4][]Observation

func (o *observations) add(obs Observation) int {
	i := obs.Rotation.index()
	o[i] = append(o[i], obs)
	return len(o[i])
}

// majority returns the rotation with the most observations. Ties go to the
// rotation that comes first in Rotations; with no observations it is 0.
func (o *observations) majority() Rotation {
	best, rotation := 0, Rotate0
	for i, list := range o {
		if len(list) > best {
			best = len(list)
			rotation = Rotations[i]
		}
	}
	return rotation
}

// Estimate reads frames from src roughly one second apart until one rotation
// has collected enough observations or the clip ends, then buckets the face
// positions of the winning rotation into a 3x3 grid.
func (e *Estimator) Estimate(ctx context.Context, src FrameSource, info ClipInfo) (Orientation, error) {
	if info.Width <= 0 || info.Height <= 0 {
		return Orientation{}, fmt.Errorf("%w: %dx%d", ErrInvalidClipInfo, info.Width, info.Height)
	}
	// seeks are fps * counter, so a zero rate would rewind to frame 0 forever
	if !(info.FPS > 0) || math.IsInf(info.FPS, 0) {
		return Orientation{}, fmt.Errorf("%w: fps %v", ErrInvalidClipInfo, info.FPS)
	}

	var obs observations
	rotation := Rotate0
	frameCounter := 1
	sampled := 0

	for {
		if err := ctx.Err(); err != nil {
			return Orientation{}, err
		}

		frame, ok, err := src.Read()
		if err != nil {
			return Orientation{}, fmt.Errorf("failed to read frame: %w", err)
		}
		if !ok {
			break
		}
		sampled++

		found, err := e.locator.Locate(frame, rotation)
		if err != nil {
			return Orientation{}, err
		}
		if found != nil {
			rotation = found.Rotation
			if obs.add(*found) >= e.confidence {
				break
			}
		}

		if err := src.Seek(info.FPS * float64(frameCounter)); err != nil {
			return Orientation{}, fmt.Errorf("failed to seek: %w", err)
		}
		frameCounter++
	}

	rotation = obs.majority()
	winners := obs[rotation.index()]

	e.logger.Debug().
		Int("frames_sampled", sampled).
		Int("rotation", int(rotation)).
		Int("observations", len(winners)).
		Msg("sampling complete")

	if len(winners) == 0 {
		return Orientation{}, ErrNoFaces
	}

	bx, by := bucketize(winners, info, rotation)
	return Orientation{BucketX: bx, BucketY: by, Rotation: rotation}, nil
}

// bucketize averages the 3x3 grid cells of positions. The grid is laid over
// the frame as seen after rotation, so 90 and 270 swap width and height.
func bucketize(positions []Observation, info ClipInfo, rotation Rotation) (int, int) {
	w, h := float64(info.Width), float64(info.Height)
	if rotation.SwapsAxes() {
		w, h = h, w
	}
	linesX := [3]float64{w / 3, w * 2 / 3, w}
	linesY := [3]float64{h / 3, h * 2 / 3, h}

	var sumX, sumY int
	for _, p := range positions {
		sumX += bucket(float64(p.X), linesX)
		sumY += bucket(float64(p.Y), linesY)
	}
	n := float64(len(positions))
	return int(math.RoundToEven(float64(sumX) / n)), int(math.RoundToEven(float64(sumY) / n))
}

// bucket returns the 1-based index of the first line >= v, or 0 when v lies
// beyond every line.
func bucket(v float64, lines [3]float64) int {
	for i, line := range lines {
		if v <= line {
			return i + 1
		}
	}
	return 0
}
