package facesearch

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Rotation is a rotation hypothesis in degrees.
type Rotation int

const (
	Rotate0   Rotation = 0
	Rotate90  Rotation = 90
	Rotate180 Rotation = 180
	Rotate270 Rotation = 270
)

// Rotations lists the canonical angles in tally order.
var Rotations = [4]Rotation{Rotate0, Rotate90, Rotate180, Rotate270}

// hypothesisOrder is the order in which rotations are tried. The half turn
// comes last because upside-down footage is the least common.
var hypothesisOrder = [4]Rotation{Rotate0, Rotate90, Rotate270, Rotate180}

// ParseRotation validates an angle in degrees.
func ParseRotation(deg int) (Rotation, error) {
	r := Rotation(deg)
	if r.index() < 0 {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidRotation, deg)
	}
	return r, nil
}

// index returns the position of r in Rotations, or -1.
func (r Rotation) index() int {
	for i, v := range Rotations {
		if v == r {
			return i
		}
	}
	return -1
}

// SwapsAxes reports whether the rotation exchanges width and height.
func (r Rotation) SwapsAxes() bool {
	return r == Rotate90 || r == Rotate270
}

// Apply rotates img by r. 90 turns counter-clockwise and 270 clockwise.
func (r Rotation) Apply(img image.Image) image.Image {
	switch r {
	case Rotate90:
		return imaging.Rotate90(img)
	case Rotate180:
		return imaging.Rotate180(img)
	case Rotate270:
		return imaging.Rotate270(img)
	default:
		return img
	}
}

// RotationSequence yields each rotation hypothesis once, starting from a
// given angle and continuing cyclically through the base order.
type RotationSequence struct {
	order [4]Rotation
	pos   int
}

// NewRotationSequence returns a sequence whose first element is start.
func NewRotationSequence(start Rotation) (*RotationSequence, error) {
	offset := -1
	for i, r := range hypothesisOrder {
		if r == start {
			offset = i
			break
		}
	}
	if offset < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidRotation, int(start))
	}

	s := &RotationSequence{}
	for i := range s.order {
		s.order[i] = hypothesisOrder[(offset+i)%len(hypothesisOrder)]
	}
	return s, nil
}

// Next returns the next hypothesis. ok is false once all four were produced.
func (s *RotationSequence) Next() (r Rotation, ok bool) {
	if s.pos >= len(s.order) {
		return 0, false
	}
	r = s.order[s.pos]
	s.pos++
	return r, true
}
