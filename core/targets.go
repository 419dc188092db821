package core

import (
	"fmt"
)

// TargetPair holds the two simulation state surfaces. One is current (the
// last completed frame), the other is scratch (written next).
type TargetPair struct {
	device Device

	surfaces [2]Surface
	current  int

	width  int
	height int
}

func NewTargetPair(device Device, width, height int) (*TargetPair, error) {
	tp := &TargetPair{device: device}
	if err := tp.Resize(width, height); err != nil {
		return nil, err
	}
	return tp, nil
}

func (tp *TargetPair) Current() Surface {
	return tp.surfaces[tp.current]
}

func (tp *TargetPair) Scratch() Surface {
	return tp.surfaces[1-tp.current]
}

// Swap exchanges the roles of the two surfaces.
func (tp *TargetPair) Swap() {
	tp.current = 1 - tp.current
}

func (tp *TargetPair) Size() (int, int) {
	return tp.width, tp.height
}

// Resize discards both surfaces and allocates new ones. On failure the
// previous surfaces are kept untouched.
func (tp *TargetPair) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("resize to %dx%d: %w", width, height, ErrInvalidSize)
	}

	a, err := tp.device.NewSurface(width, height)
	if err != nil {
		return fmt.Errorf("resize to %dx%d: %w", width, height, err)
	}
	b, err := tp.device.NewSurface(width, height)
	if err != nil {
		tp.device.ReleaseSurface(a)
		return fmt.Errorf("resize to %dx%d: %w", width, height, err)
	}

	tp.Release()

	tp.surfaces = [2]Surface{a, b}
	tp.current = 0
	tp.width = width
	tp.height = height

	return nil
}

func (tp *TargetPair) Release() {
	for i, s := range tp.surfaces {
		if s != nil {
			tp.device.ReleaseSurface(s)
			tp.surfaces[i] = nil
		}
	}
}
