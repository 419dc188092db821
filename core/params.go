package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Simulation constants. One simulation step runs per display tick, so the
// wave constants are per step and assume a fixed tick rate.
const (
	// WaveCourant is c^2 of the explicit 5-point wave scheme. Values above
	// 0.5 diverge on a 2D grid.
	WaveCourant float32 = 0.5
	// WaveDamping scales the next height every step.
	WaveDamping float32 = 0.985

	// PointerRadius is the falloff radius of pointer injection in buffer
	// pixels. Texels at or beyond it receive nothing.
	PointerRadius float32 = 24
	// PointerStrength is the height injected at the pointer center per step.
	PointerStrength float32 = 0.08

	// StateLimit bounds every stored height to [-StateLimit, StateLimit].
	StateLimit float32 = 1
)

// Composite constants.
const (
	// DisplacementScale converts a height gradient into a UV offset.
	DisplacementScale float32 = 0.04
	// ShadeScale lightens (or darkens) the displaced color by height.
	ShadeScale float32 = 0.25
)

// PointerInfluence returns the injection weight for a texel at distance d
// from the pointer: (1 - d/R)^2 inside the radius, 0 outside.
func PointerInfluence(d float32) float32 {
	if d < 0 {
		d = -d
	}
	if d >= PointerRadius {
		return 0
	}
	t := 1 - d/PointerRadius
	return t * t
}

// PointerActive reports whether mouse is not the leave sentinel.
func PointerActive(mouse mgl32.Vec2) bool {
	return mouse[0] != 0 || mouse[1] != 0
}

// NextHeight advances one texel. h and prev are the texel's current and
// previous heights, lap the 5-point laplacian of h and inject the pointer
// weight already multiplied by PointerStrength.
func NextHeight(h, prev, lap, inject float32) float32 {
	next := (2*h - prev + WaveCourant*lap) * WaveDamping
	next += inject
	if next != next { // NaN
		return 0
	}
	return Clamp(next, -StateLimit, StateLimit)
}

// DisplaceUV offsets (u, v) by a height gradient given in simulation space
// (y up) and clamps the result to [0, 1].
func DisplaceUV(u, v, gradX, gradY float32) (float32, float32) {
	u += gradX * DisplacementScale
	v -= gradY * DisplacementScale
	if math.IsNaN(float64(u)) {
		u = 0.5
	}
	if math.IsNaN(float64(v)) {
		v = 0.5
	}
	return Clamp(u, 0, 1), Clamp(v, 0, 1)
}

// Shade lightens a normalized color component by height.
func Shade(c, h float32) float32 {
	return Clamp(c+ShadeScale*h, 0, 1)
}
