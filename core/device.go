package core

import (
	"image"
	"image/color"
)

// Surface is an offscreen or visible 2D buffer owned by a Device.
type Surface interface {
	Size() (width, height int)
}

// Texture is an uploaded copy of a texture source image.
type Texture interface {
	Size() (width, height int)
}

// Device executes the two passes. Implementations must not retain the
// surfaces passed to a pass beyond the call.
type Device interface {
	// NewSurface allocates a state surface holding the default (all zero)
	// state.
	NewSurface(width, height int) (Surface, error)
	ReleaseSurface(s Surface)

	// Upload copies img into a texture. The previous texture, if any, is
	// released by the caller through ReleaseTexture.
	Upload(img image.Image) (Texture, error)
	ReleaseTexture(t Texture)

	// Simulate reads prev and writes the next state into dst.
	Simulate(dst, prev Surface, u Uniforms) error

	// Composite reads the state in sim and the source texture (nil when no
	// texture is ready) and writes the final image into out.
	Composite(out, sim Surface, tex Texture, style Style) error

	// Probe decodes the height stored in s at buffer pixel (x, y), origin
	// bottom-left.
	Probe(s Surface, x, y int) (float32, error)
}

// Style holds the static colors used by the composite pass.
type Style struct {
	// ClearColor is shown where no texture is ready yet.
	ClearColor color.NRGBA
}
