// Package soft is a CPU implementation of core.Device. It runs the same
// recurrence and composite as the GPU shaders on float32 grids and writes
// into an *image.NRGBA, so the pipeline can run headless.
package soft

import (
	"fmt"
	"image"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/draw"

	"softhorizon/core"
)

// DefaultMaxPixels bounds a single surface allocation.
const DefaultMaxPixels = 8192 * 8192

// Surface is a simulation state grid. Row 0 is the bottom row.
type Surface struct {
	dev *Device

	width  int
	height int

	// current and previous heights, row-major
	H []float32
	P []float32
}

func (s *Surface) Size() (int, int) {
	return s.width, s.height
}

// At returns the height at (x, y) with the clamp-to-edge boundary policy.
func (s *Surface) At(x, y int) float32 {
	x = core.ClampIndex(x, s.width)
	y = core.ClampIndex(y, s.height)
	return s.H[y*s.width+x]
}

// Canvas is a visible surface.
type Canvas struct {
	Img *image.NRGBA
}

func NewCanvas(width, height int) *Canvas {
	return &Canvas{Img: image.NewNRGBA(image.Rect(0, 0, width, height))}
}

func (c *Canvas) Size() (int, int) {
	b := c.Img.Bounds()
	return b.Dx(), b.Dy()
}

type Texture struct {
	Img *image.NRGBA
}

func (t *Texture) Size() (int, int) {
	b := t.Img.Bounds()
	return b.Dx(), b.Dy()
}

type Device struct {
	MaxPixels int
}

func New() *Device {
	return &Device{MaxPixels: DefaultMaxPixels}
}

func (d *Device) NewSurface(width, height int) (core.Surface, error) {
	if width <= 0 || height <= 0 || width*height > d.MaxPixels {
		return nil, fmt.Errorf("soft surface %dx%d: %w", width, height, core.ErrInvalidSize)
	}
	return &Surface{
		dev:    d,
		width:  width,
		height: height,
		H:      make([]float32, width*height),
		P:      make([]float32, width*height),
	}, nil
}

func (d *Device) ReleaseSurface(s core.Surface) {
	if ss, ok := s.(*Surface); ok {
		ss.H = nil
		ss.P = nil
	}
}

func (d *Device) Upload(img image.Image) (core.Texture, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("soft upload: empty image: %w", core.ErrInvalidSize)
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return &Texture{Img: dst}, nil
}

func (d *Device) ReleaseTexture(t core.Texture) {
	if tt, ok := t.(*Texture); ok {
		tt.Img = nil
	}
}

func (d *Device) surface(s core.Surface) (*Surface, error) {
	ss, ok := s.(*Surface)
	if !ok || ss.dev != d {
		return nil, core.ErrForeignSurface
	}
	if ss.H == nil {
		return nil, fmt.Errorf("soft surface was released")
	}
	return ss, nil
}

func (d *Device) Simulate(dst, prev core.Surface, u core.Uniforms) error {
	out, err := d.surface(dst)
	if err != nil {
		return fmt.Errorf("simulate dst: %w", err)
	}
	in, err := d.surface(prev)
	if err != nil {
		return fmt.Errorf("simulate prev: %w", err)
	}
	if out.width != in.width || out.height != in.height {
		return fmt.Errorf("simulate: dst %dx%d does not match prev %dx%d",
			out.width, out.height, in.width, in.height)
	}

	active := core.PointerActive(u.Mouse)
	w, h := in.width, in.height

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			c := in.H[i]

			lap := in.At(x+1, y) + in.At(x-1, y) + in.At(x, y+1) + in.At(x, y-1) - 4*c

			var inject float32
			if active {
				center := mgl32.Vec2{float32(x) + 0.5, float32(y) + 0.5}
				inject = core.PointerStrength * core.PointerInfluence(center.Sub(u.Mouse).Len())
			}

			out.H[i] = core.NextHeight(c, in.P[i], lap, inject)
			out.P[i] = c
		}
	}

	return nil
}

func (d *Device) Composite(out, sim core.Surface, tex core.Texture, style core.Style) error {
	canvas, ok := out.(*Canvas)
	if !ok {
		return fmt.Errorf("composite out: %w", core.ErrForeignSurface)
	}
	state, err := d.surface(sim)
	if err != nil {
		return fmt.Errorf("composite sim: %w", err)
	}

	var src *image.NRGBA
	if tex != nil {
		t, ok := tex.(*Texture)
		if !ok || t.Img == nil {
			return fmt.Errorf("composite texture: %w", core.ErrForeignSurface)
		}
		src = t.Img
	}

	ow, oh := canvas.Size()
	sw, sh := state.width, state.height
	bg := normalize(style.ClearColor)

	for py := 0; py < oh; py++ {
		for px := 0; px < ow; px++ {
			// output rows run top-down, the simulation bottom-up
			sx := (px * sw) / ow
			sy := sh - 1 - (py*sh)/oh

			hgt := state.At(sx, sy)
			gx := state.At(sx+1, sy) - state.At(sx-1, sy)
			gy := state.At(sx, sy+1) - state.At(sx, sy-1)

			u := (float32(px) + 0.5) / float32(ow)
			v := (float32(py) + 0.5) / float32(oh)
			u, v = core.DisplaceUV(u, v, gx, gy)

			c := bg
			if src != nil {
				c = sampleBilinear(src, u, v)
			}

			canvas.Img.SetNRGBA(px, py, color.NRGBA{
				R: toByte(core.Shade(c[0], hgt)),
				G: toByte(core.Shade(c[1], hgt)),
				B: toByte(core.Shade(c[2], hgt)),
				A: toByte(c[3]),
			})
		}
	}

	return nil
}

func (d *Device) Probe(s core.Surface, x, y int) (float32, error) {
	ss, err := d.surface(s)
	if err != nil {
		return 0, err
	}
	if x < 0 || y < 0 || x >= ss.width || y >= ss.height {
		return 0, fmt.Errorf("probe (%d, %d) outside %dx%d", x, y, ss.width, ss.height)
	}
	return ss.H[y*ss.width+x], nil
}

func normalize(c color.NRGBA) [4]float32 {
	return [4]float32{
		float32(c.R) / 255,
		float32(c.G) / 255,
		float32(c.B) / 255,
		float32(c.A) / 255,
	}
}

func toByte(f float32) uint8 {
	return uint8(core.Clamp(f, 0, 1)*255 + 0.5)
}

// sampleBilinear samples img at normalized (u, v), origin top-left, with
// clamp-to-edge addressing.
func sampleBilinear(img *image.NRGBA, u, v float32) [4]float32 {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	fx := u*float32(w) - 0.5
	fy := v*float32(h) - 0.5

	x0 := int(floor(fx))
	y0 := int(floor(fy))
	tx := fx - float32(x0)
	ty := fy - float32(y0)

	c00 := texel(img, x0, y0)
	c10 := texel(img, x0+1, y0)
	c01 := texel(img, x0, y0+1)
	c11 := texel(img, x0+1, y0+1)

	var out [4]float32
	for i := range out {
		top := core.Lerp(c00[i], c10[i], tx)
		bottom := core.Lerp(c01[i], c11[i], tx)
		out[i] = core.Lerp(top, bottom, ty)
	}
	return out
}

func texel(img *image.NRGBA, x, y int) [4]float32 {
	b := img.Bounds()
	x = core.ClampIndex(x, b.Dx())
	y = core.ClampIndex(y, b.Dy())
	return normalize(img.NRGBAAt(b.Min.X+x, b.Min.Y+y))
}

func floor(f float32) float32 {
	i := float32(int(f))
	if i > f {
		i--
	}
	return i
}
