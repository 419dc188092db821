package core

import (
	"errors"
)

var (
	// ErrDeviceLost is returned by a Device when the underlying graphics
	// context is gone. It is fatal for the render core.
	ErrDeviceLost = errors.New("core: graphics device lost")

	// ErrUnsupported is returned when a required capability (surface
	// format, filtering, shader feature) is unavailable. Fatal.
	ErrUnsupported = errors.New("core: required capability unsupported")

	// ErrSustainedFailure is recorded when too many consecutive frames
	// were dropped.
	ErrSustainedFailure = errors.New("core: sustained frame failure")

	// ErrInvalidSize is returned for non-positive or oversized surfaces.
	ErrInvalidSize = errors.New("core: invalid surface size")

	// ErrForeignSurface is returned when a device is handed a surface it
	// did not create.
	ErrForeignSurface = errors.New("core: surface belongs to another device")
)

// IsFatal reports whether err must stop the frame loop.
func IsFatal(err error) bool {
	return errors.Is(err, ErrDeviceLost) ||
		errors.Is(err, ErrUnsupported) ||
		errors.Is(err, ErrSustainedFailure)
}
