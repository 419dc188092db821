package main

import (
	eb "github.com/hajimehoshi/ebiten/v2"
	ebi "github.com/hajimehoshi/ebiten/v2/inpututil"
)

// PointerTracker follows the mouse, or the first active touch, in layout
// pixels.
type PointerTracker struct {
	TouchingBuf []eb.TouchID

	// touch that drives the pointer, valid while touching is true
	touchID  eb.TouchID
	touching bool
}

// Update returns the pointer position, or ok == false when the pointer is
// outside a width x height layout or the window lost focus.
func (pt *PointerTracker) Update(width, height int) (x, y float64, ok bool) {
	pt.TouchingBuf = eb.AppendTouchIDs(pt.TouchingBuf[:0])

	if pt.touching && ebi.IsTouchJustReleased(pt.touchID) {
		pt.touching = false
	}
	if !pt.touching && len(pt.TouchingBuf) > 0 {
		pt.touchID = pt.TouchingBuf[0]
		pt.touching = true
	}

	var px, py int
	if pt.touching {
		px, py = eb.TouchPosition(pt.touchID)
	} else {
		if !eb.IsFocused() {
			return 0, 0, false
		}
		px, py = eb.CursorPosition()
	}

	if px < 0 || py < 0 || px >= width || py >= height {
		return 0, 0, false
	}

	return float64(px), float64(py), true
}

func IsKeyJustPressed(key eb.Key) bool {
	return ebi.IsKeyJustPressed(key)
}

func IsControlPressed() bool {
	return eb.IsKeyPressed(eb.KeyControl) || eb.IsKeyPressed(eb.KeyMeta)
}
