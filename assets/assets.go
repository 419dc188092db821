// Package assets embeds the Kage shader sources.
package assets

import (
	_ "embed"
)

var (
	//go:embed simulate_shader.go
	SimulateShader []byte

	//go:embed composite_shader.go
	CompositeShader []byte
)

const (
	SimulateShaderFile  = "simulate_shader.go"
	CompositeShaderFile = "composite_shader.go"
)
