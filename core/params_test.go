package core

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestPointerInfluence(t *testing.T) {
	assert.Equal(t, float32(1), PointerInfluence(0))
	assert.InDelta(t, 0.25, PointerInfluence(PointerRadius/2), 1e-6)
	assert.Equal(t, float32(0), PointerInfluence(PointerRadius))
	assert.Equal(t, float32(0), PointerInfluence(PointerRadius*10))
	assert.Equal(t, PointerInfluence(3), PointerInfluence(-3))

	prev := PointerInfluence(0)
	for d := float32(0.5); d <= PointerRadius+1; d += 0.5 {
		cur := PointerInfluence(d)
		assert.LessOrEqual(t, cur, prev, "d = %v", d)
		assert.GreaterOrEqual(t, cur, float32(0))
		prev = cur
	}
}

func TestPointerActive(t *testing.T) {
	assert.False(t, PointerActive(mgl32.Vec2{}))
	assert.True(t, PointerActive(mgl32.Vec2{0, 1}))
	assert.True(t, PointerActive(mgl32.Vec2{3, 0}))
}

func TestNextHeight(t *testing.T) {
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))

	tests := []struct {
		name                 string
		h, prev, lap, inject float32
		want                 float32
	}{
		{name: "rest", want: 0},
		{name: "inertia", h: 0.1, prev: 0.1, want: 0.1 * WaveDamping},
		{name: "injection", inject: PointerStrength, want: PointerStrength},
		{name: "clamped high", h: 1, prev: -1, lap: 4, inject: PointerStrength, want: StateLimit},
		{name: "clamped low", h: -1, prev: 1, lap: -4, want: -StateLimit},
		{name: "nan", h: nan, want: 0},
		{name: "inf", h: inf, want: StateLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextHeight(tt.h, tt.prev, tt.lap, tt.inject)
			assert.InDelta(t, tt.want, got, 1e-6)
		})
	}
}

func TestDisplaceUV(t *testing.T) {
	nan := float32(math.NaN())

	tests := []struct {
		name         string
		u, v, gx, gy float32
		wantU, wantV float32
	}{
		{name: "flat", u: 0.3, v: 0.7, wantU: 0.3, wantV: 0.7},
		{name: "slope", u: 0.5, v: 0.5, gx: 1, gy: 1, wantU: 0.5 + DisplacementScale, wantV: 0.5 - DisplacementScale},
		{name: "huge positive", u: 0.5, v: 0.5, gx: 1e6, gy: -1e6, wantU: 1, wantV: 1},
		{name: "huge negative", u: 0.5, v: 0.5, gx: -1e6, gy: 1e6, wantU: 0, wantV: 0},
		{name: "corner", u: 0, v: 1, gx: -2, gy: -2, wantU: 0, wantV: 1},
		{name: "nan", u: 0.2, v: 0.2, gx: nan, gy: nan, wantU: 0.5, wantV: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, v := DisplaceUV(tt.u, tt.v, tt.gx, tt.gy)
			assert.InDelta(t, tt.wantU, u, 1e-6)
			assert.InDelta(t, tt.wantV, v, 1e-6)
		})
	}
}

func TestShade(t *testing.T) {
	assert.Equal(t, float32(0.5), Shade(0.5, 0))
	assert.InDelta(t, 0.5+ShadeScale, Shade(0.5, 1), 1e-6)
	assert.Equal(t, float32(1), Shade(0.9, 1))
	assert.Equal(t, float32(0), Shade(0.1, -1))
}

func TestDecodeFixed16(t *testing.T) {
	tests := []struct {
		hi, lo uint8
		want   float32
	}{
		{hi: 0x00, lo: 0x00, want: 0},
		{hi: 0x7f, lo: 0xff, want: 1},
		{hi: 0x80, lo: 0x01, want: -1},
		{hi: 0x80, lo: 0x00, want: -1},
		{hi: 0x40, lo: 0x00, want: 16384.0 / 32767},
		{hi: 0xff, lo: 0xff, want: -1.0 / 32767},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, DecodeFixed16(tt.hi, tt.lo), 1e-6, "%#02x %#02x", tt.hi, tt.lo)
	}
}

func TestClampIndex(t *testing.T) {
	assert.Equal(t, 0, ClampIndex(-1, 10))
	assert.Equal(t, 9, ClampIndex(10, 10))
	assert.Equal(t, 4, ClampIndex(4, 10))
}
