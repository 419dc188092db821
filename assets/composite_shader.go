//go:build ignore

//kage:unit pixels

package main

// Uniform variables.
var ClearColor vec4
var HasTexture float

var DisplacementScale float
var ShadeScale float
var Limit float

func decode(hi, lo float) float {
	n := floor(hi*255+0.5)*256 + floor(lo*255+0.5)
	if n >= 32768 {
		n -= 65536
	}
	return clamp(n/32767, -Limit, Limit)
}

func height(p vec2) float {
	origin := imageSrc0Origin()
	size := imageSrc0Size()
	c := imageSrc0UnsafeAt(clamp(p, origin+0.5, origin+size-0.5))
	return decode(c.r, c.g)
}

func texel(p vec2) vec4 {
	origin := imageSrc1Origin()
	size := imageSrc1Size()
	return imageSrc1UnsafeAt(clamp(p, origin+0.5, origin+size-0.5))
}

func sampleBilinear(uv vec2) vec4 {
	origin := imageSrc1Origin()
	size := imageSrc1Size()

	f := uv*size - 0.5
	i := floor(f)
	t := f - i
	base := origin + i + 0.5

	c00 := texel(base)
	c10 := texel(base + vec2(1, 0))
	c01 := texel(base + vec2(0, 1))
	c11 := texel(base + vec2(1, 1))

	return mix(mix(c00, c10, t.x), mix(c01, c11, t.x), t.y)
}

func Fragment(dstPos vec4, srcPos vec2, color vec4) vec4 {
	h := height(srcPos)
	gx := height(srcPos+vec2(1, 0)) - height(srcPos-vec2(1, 0))
	// image rows run down, simulation y runs up
	gy := height(srcPos-vec2(0, 1)) - height(srcPos+vec2(0, 1))

	uv := (srcPos - imageSrc0Origin()) / imageSrc0Size()
	uv += vec2(gx, -gy) * DisplacementScale
	uv = clamp(uv, vec2(0), vec2(1))

	c := ClearColor
	if HasTexture > 0 {
		c = sampleBilinear(uv)
	}

	// premultiplied alpha
	rgb := clamp(c.rgb+ShadeScale*h*c.a, vec3(0), vec3(c.a))
	return vec4(rgb, c.a)
}
