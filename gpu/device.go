// Package gpu implements core.Device with Ebitengine offscreen images and
// Kage shaders.
//
// Ebitengine images are 8-bit RGBA, so a state surface stores its two
// heights as 16-bit fixed point: R,G hold the current height and B,A the
// previous one (see core.DecodeFixed16). State surfaces are unmanaged so
// they are never placed on a texture atlas and are written with BlendCopy.
package gpu

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	eb "github.com/hajimehoshi/ebiten/v2"

	"softhorizon/assets"
	"softhorizon/core"
)

// MaxSurfaceSize bounds each side of a state surface.
const MaxSurfaceSize = 8192

type Surface struct {
	dev *Device
	img *eb.Image

	width  int
	height int
}

func (s *Surface) Size() (int, int) {
	return s.width, s.height
}

// Screen wraps the image ebiten hands to Draw as a visible surface.
type Screen struct {
	Img *eb.Image
}

func (s Screen) Size() (int, int) {
	b := s.Img.Bounds()
	return b.Dx(), b.Dy()
}

type Texture struct {
	img *eb.Image
}

func (t *Texture) Size() (int, int) {
	b := t.img.Bounds()
	return b.Dx(), b.Dy()
}

type Device struct {
	simShader       *eb.Shader
	compositeShader *eb.Shader

	// texture scaled to the state surface size
	fitted    *eb.Image
	fittedSrc *Texture

	closed bool
}

// New compiles the embedded shaders.
func New() (*Device, error) {
	d := new(Device)
	if err := d.compile(assets.SimulateShader, assets.CompositeShader); err != nil {
		return nil, err
	}
	return d, nil
}

// ReloadShaders compiles the shader sources found in dir and swaps them in.
// The previous shaders stay active when compilation fails.
func (d *Device) ReloadShaders(dir string) error {
	simSrc, err := os.ReadFile(filepath.Join(dir, assets.SimulateShaderFile))
	if err != nil {
		return err
	}
	compositeSrc, err := os.ReadFile(filepath.Join(dir, assets.CompositeShaderFile))
	if err != nil {
		return err
	}
	return d.compile(simSrc, compositeSrc)
}

func (d *Device) compile(simSrc, compositeSrc []byte) error {
	sim, err := eb.NewShader(simSrc)
	if err != nil {
		return fmt.Errorf("simulate shader: %v: %w", err, core.ErrUnsupported)
	}
	composite, err := eb.NewShader(compositeSrc)
	if err != nil {
		sim.Deallocate()
		return fmt.Errorf("composite shader: %v: %w", err, core.ErrUnsupported)
	}

	if d.simShader != nil {
		d.simShader.Deallocate()
	}
	if d.compositeShader != nil {
		d.compositeShader.Deallocate()
	}
	d.simShader = sim
	d.compositeShader = composite

	return nil
}

// Close releases the shaders. Every later pass reports core.ErrDeviceLost.
func (d *Device) Close() {
	if d.closed {
		return
	}
	d.closed = true
	d.simShader.Deallocate()
	d.compositeShader.Deallocate()
	if d.fitted != nil {
		d.fitted.Deallocate()
		d.fitted = nil
	}
}

func (d *Device) NewSurface(width, height int) (core.Surface, error) {
	if d.closed {
		return nil, core.ErrDeviceLost
	}
	if width <= 0 || height <= 0 || width > MaxSurfaceSize || height > MaxSurfaceSize {
		return nil, fmt.Errorf("gpu surface %dx%d: %w", width, height, core.ErrInvalidSize)
	}

	var img *eb.Image
	err := guard("new surface", func() {
		img = eb.NewImageWithOptions(
			image.Rect(0, 0, width, height),
			&eb.NewImageOptions{Unmanaged: true},
		)
	})
	if err != nil {
		return nil, err
	}

	return &Surface{dev: d, img: img, width: width, height: height}, nil
}

func (d *Device) ReleaseSurface(s core.Surface) {
	if ss, ok := s.(*Surface); ok && ss.img != nil {
		ss.img.Deallocate()
		ss.img = nil
	}
}

func (d *Device) Upload(img image.Image) (core.Texture, error) {
	if d.closed {
		return nil, core.ErrDeviceLost
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("gpu upload: empty image: %w", core.ErrInvalidSize)
	}

	var tex *eb.Image
	err := guard("upload", func() {
		tex = eb.NewImageFromImageWithOptions(img, &eb.NewImageFromImageOptions{
			Unmanaged: true,
		})
	})
	if err != nil {
		return nil, err
	}

	return &Texture{img: tex}, nil
}

func (d *Device) ReleaseTexture(t core.Texture) {
	tt, ok := t.(*Texture)
	if !ok || tt.img == nil {
		return
	}
	if d.fittedSrc == tt {
		d.fittedSrc = nil
	}
	tt.img.Deallocate()
	tt.img = nil
}

func (d *Device) surface(s core.Surface) (*Surface, error) {
	if d.closed {
		return nil, core.ErrDeviceLost
	}
	ss, ok := s.(*Surface)
	if !ok || ss.dev != d {
		return nil, core.ErrForeignSurface
	}
	if ss.img == nil {
		return nil, fmt.Errorf("gpu surface was released")
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

	op := &DrawRectShaderOptions{}
	op.Blend = eb.BlendCopy
	op.Images[0] = in.img
	op.Uniforms = SimulateUniforms(u)

	return guard("simulate", func() {
		DrawRectShader(out.img, out.width, out.height, d.simShader, op)
	})
}

func (d *Device) Composite(out, sim core.Surface, tex core.Texture, style core.Style) error {
	if d.closed {
		return core.ErrDeviceLost
	}
	screen, ok := out.(Screen)
	if !ok || screen.Img == nil {
		return fmt.Errorf("composite out: %w", core.ErrForeignSurface)
	}
	state, err := d.surface(sim)
	if err != nil {
		return fmt.Errorf("composite sim: %w", err)
	}

	op := &DrawRectShaderOptions{}
	op.Blend = eb.BlendCopy
	op.Images[0] = state.img
	op.Uniforms = CompositeUniforms(style, tex != nil)

	if tex != nil {
		t, ok := tex.(*Texture)
		if !ok || t.img == nil {
			return fmt.Errorf("composite texture: %w", core.ErrForeignSurface)
		}
		fitted, err := d.fit(t, state.width, state.height)
		if err != nil {
			return err
		}
		op.Images[1] = fitted
	}

	// the screen only differs from the targets when a resize was skipped
	sw, sh := screen.Size()
	op.GeoM.Scale(float64(sw)/float64(state.width), float64(sh)/float64(state.height))

	return guard("composite", func() {
		DrawRectShader(screen.Img, state.width, state.height, d.compositeShader, op)
	})
}

// fit returns the texture scaled to width x height with linear filtering.
// DrawRectShader needs every source image at the rectangle size.
func (d *Device) fit(t *Texture, width, height int) (*eb.Image, error) {
	if d.fitted != nil && d.fittedSrc == t {
		b := d.fitted.Bounds()
		if b.Dx() == width && b.Dy() == height {
			return d.fitted, nil
		}
	}

	err := guard("fit texture", func() {
		if d.fitted == nil || d.fitted.Bounds().Dx() != width || d.fitted.Bounds().Dy() != height {
			if d.fitted != nil {
				d.fitted.Deallocate()
			}
			d.fitted = eb.NewImageWithOptions(
				image.Rect(0, 0, width, height),
				&eb.NewImageOptions{Unmanaged: true},
			)
		}

		tw, th := t.Size()
		op := &DrawImageOptions{}
		op.GeoM.Scale(float64(width)/float64(tw), float64(height)/float64(th))
		op.Blend = eb.BlendCopy
		op.Filter = eb.FilterLinear
		DrawImage(d.fitted, t.img, op)
	})
	if err != nil {
		return nil, err
	}

	d.fittedSrc = t
	return d.fitted, nil
}

func (d *Device) Probe(s core.Surface, x, y int) (float32, error) {
	ss, err := d.surface(s)
	if err != nil {
		return 0, err
	}
	if x < 0 || y < 0 || x >= ss.width || y >= ss.height {
		return 0, fmt.Errorf("probe (%d, %d) outside %dx%d", x, y, ss.width, ss.height)
	}

	var c color.RGBA
	err = guard("probe", func() {
		c = color.RGBAModel.Convert(ss.img.At(x, ss.height-1-y)).(color.RGBA)
	})
	if err != nil {
		return 0, err
	}

	return core.DecodeFixed16(c.R, c.G), nil
}

// SimulateUniforms is the uniform map of the simulation shader.
func SimulateUniforms(u core.Uniforms) map[string]any {
	return map[string]any{
		"Time":       u.Time,
		"Frame":      int(int32(u.Frame)),
		"Mouse":      []float32{u.Mouse[0], u.Mouse[1]},
		"Resolution": []float32{u.Resolution[0], u.Resolution[1]},

		"Courant":  core.WaveCourant,
		"Damping":  core.WaveDamping,
		"Radius":   core.PointerRadius,
		"Strength": core.PointerStrength,
		"Limit":    core.StateLimit,
	}
}

// CompositeUniforms is the uniform map of the composite shader. The clear
// color is passed premultiplied like every ebiten image.
func CompositeUniforms(style core.Style, hasTexture bool) map[string]any {
	c := style.ClearColor
	a := float32(c.A) / 255
	premul := []float32{
		float32(c.R) / 255 * a,
		float32(c.G) / 255 * a,
		float32(c.B) / 255 * a,
		a,
	}

	var has float32
	if hasTexture {
		has = 1
	}

	return map[string]any{
		"ClearColor":        premul,
		"HasTexture":        has,
		"DisplacementScale": core.DisplacementScale,
		"ShadeScale":        core.ShadeScale,
		"Limit":             core.StateLimit,
	}
}
