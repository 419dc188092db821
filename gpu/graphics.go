package gpu

import (
	"fmt"

	eb "github.com/hajimehoshi/ebiten/v2"
)

type DrawImageOptions struct {
	GeoM eb.GeoM

	Blend  eb.Blend
	Filter eb.Filter
}

type DrawRectShaderOptions struct {
	GeoM eb.GeoM

	Blend eb.Blend

	Uniforms map[string]any

	Images [4]*eb.Image
}

func DrawImage(dst *eb.Image, src *eb.Image, options *DrawImageOptions) {
	if options == nil {
		options = &DrawImageOptions{}
	}
	op := &eb.DrawImageOptions{}
	op.GeoM = options.GeoM
	op.Blend = options.Blend
	op.Filter = options.Filter
	dst.DrawImage(src, op)
}

func DrawRectShader(
	dst *eb.Image,
	width, height int,
	shader *eb.Shader,
	options *DrawRectShaderOptions,
) {
	if options == nil {
		options = &DrawRectShaderOptions{}
	}
	op := &eb.DrawRectShaderOptions{}
	op.GeoM = options.GeoM
	op.Blend = options.Blend
	op.Uniforms = options.Uniforms
	op.Images = options.Images
	dst.DrawRectShader(width, height, shader, op)
}

// guard turns a panic raised by ebiten while recording a draw into an
// error, so the frame is dropped instead of the process.
func guard(what string, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("gpu %s: %v", what, r)
		}
	}()
	fn()
	return nil
}
