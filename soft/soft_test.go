package soft

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"softhorizon/core"
)

func newPair(t *testing.T, d *Device, w, h int) (*Surface, *Surface) {
	t.Helper()

	a, err := d.NewSurface(w, h)
	require.NoError(t, err)
	b, err := d.NewSurface(w, h)
	require.NoError(t, err)

	return a.(*Surface), b.(*Surface)
}

func TestNewSurface(t *testing.T) {
	d := &Device{MaxPixels: 64}

	_, err := d.NewSurface(8, 8)
	assert.NoError(t, err)

	_, err = d.NewSurface(9, 8)
	assert.ErrorIs(t, err, core.ErrInvalidSize)

	_, err = d.NewSurface(0, 8)
	assert.ErrorIs(t, err, core.ErrInvalidSize)
}

func TestSurfaceAtClampsToEdge(t *testing.T) {
	d := New()
	s, _ := newPair(t, d, 3, 2)
	for i := range s.H {
		s.H[i] = float32(i)
	}

	assert.Equal(t, s.At(0, 0), s.At(-1, 0))
	assert.Equal(t, s.At(2, 1), s.At(5, 7))
	assert.Equal(t, float32(4), s.At(1, 1))
}

func TestSimulateStaysBounded(t *testing.T) {
	d := New()
	cur, next := newPair(t, d, 32, 32)

	u := core.Uniforms{
		Mouse:      mgl32.Vec2{16, 16},
		Resolution: mgl32.Vec2{32, 32},
	}

	for step := 0; step < 500; step++ {
		require.NoError(t, d.Simulate(next, cur, u))
		cur, next = next, cur

		for i, h := range cur.H {
			if math.IsNaN(float64(h)) || h > core.StateLimit || h < -core.StateLimit {
				t.Fatalf("step %d: height %d is %v", step, i, h)
			}
		}
	}
}

func TestSimulateKeepsPrevious(t *testing.T) {
	d := New()
	cur, next := newPair(t, d, 4, 4)
	cur.H[5] = 0.5

	require.NoError(t, d.Simulate(next, cur, core.Uniforms{}))

	assert.Equal(t, cur.H, next.P)
	// 2h - p + lap/2, damped
	assert.InDelta(t, (2*0.5-0.5*4*0.5)*core.WaveDamping, next.H[5], 1e-6)
	assert.InDelta(t, 0.5*0.5*core.WaveDamping, next.H[4], 1e-6)
}

func TestSimulateRejectsForeignSurfaces(t *testing.T) {
	a, b := New(), New()
	sa, _ := newPair(t, a, 4, 4)
	sb, _ := newPair(t, b, 4, 4)

	assert.ErrorIs(t, a.Simulate(sa, sb, core.Uniforms{}), core.ErrForeignSurface)

	small, _ := newPair(t, a, 2, 2)
	assert.Error(t, a.Simulate(sa, small, core.Uniforms{}))

	a.ReleaseSurface(small)
	assert.Error(t, a.Simulate(small, sa, core.Uniforms{}))
}

func TestCompositeFlatStateCopiesTexture(t *testing.T) {
	d := New()
	state, _ := newPair(t, d, 4, 4)

	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			src.SetNRGBA(x, y, color.NRGBA{uint8(x * 60), uint8(y * 60), 100, 255})
		}
	}
	tex, err := d.Upload(src)
	require.NoError(t, err)

	canvas := NewCanvas(4, 4)
	require.NoError(t, d.Composite(canvas, state, tex, core.Style{}))

	assert.Equal(t, src.Pix, canvas.Img.Pix)
}

func TestCompositeDegraded(t *testing.T) {
	d := New()
	state, _ := newPair(t, d, 8, 8)
	bg := color.NRGBA{10, 20, 30, 255}

	canvas := NewCanvas(16, 4)
	require.NoError(t, d.Composite(canvas, state, nil, core.Style{ClearColor: bg}))

	for y := 0; y < 4; y++ {
		for x := 0; x < 16; x++ {
			require.Equal(t, bg, canvas.Img.NRGBAAt(x, y))
		}
	}
}

func TestCompositeShadesByHeight(t *testing.T) {
	d := New()
	state, _ := newPair(t, d, 4, 4)
	for i := range state.H {
		state.H[i] = 1
	}
	bg := color.NRGBA{100, 100, 100, 255}

	canvas := NewCanvas(4, 4)
	require.NoError(t, d.Composite(canvas, state, nil, core.Style{ClearColor: bg}))

	want := toByte(core.Shade(100.0/255, 1))
	assert.Equal(t, color.NRGBA{want, want, want, 255}, canvas.Img.NRGBAAt(2, 2))
}

func TestCompositeFlipsRows(t *testing.T) {
	d := New()
	state, _ := newPair(t, d, 2, 2)
	// bottom row raised
	state.H[0], state.H[1] = 1, 1

	canvas := NewCanvas(2, 2)
	require.NoError(t, d.Composite(canvas, state, nil, core.Style{ClearColor: color.NRGBA{0, 0, 0, 255}}))

	assert.NotEqual(t, uint8(0), canvas.Img.NRGBAAt(0, 1).R)
	assert.Equal(t, uint8(0), canvas.Img.NRGBAAt(0, 0).R)
}

func TestUploadEmpty(t *testing.T) {
	_, err := New().Upload(image.NewNRGBA(image.Rectangle{}))
	assert.ErrorIs(t, err, core.ErrInvalidSize)
}

func TestProbe(t *testing.T) {
	d := New()
	s, _ := newPair(t, d, 4, 2)
	s.H[1*4+3] = 0.25

	h, err := d.Probe(s, 3, 1)
	require.NoError(t, err)
	assert.Equal(t, float32(0.25), h)

	_, err = d.Probe(s, 4, 0)
	assert.Error(t, err)
}

func TestSampleBilinear(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{0, 0, 0, 255})
	img.SetNRGBA(1, 0, color.NRGBA{255, 0, 0, 255})

	mid := sampleBilinear(img, 0.5, 0.5)
	assert.InDelta(t, 0.5, mid[0], 1e-6)

	assert.InDelta(t, 0, sampleBilinear(img, 0, 0.5)[0], 1e-6)
	assert.InDelta(t, 1, sampleBilinear(img, 1, 0.5)[0], 1e-6)
}
