//go:build ignore

//kage:unit pixels

package main

// Uniform variables.
var Time float
var Frame int
var Mouse vec2
var Resolution vec2

var Courant float
var Damping float
var Radius float
var Strength float
var Limit float

// heights are 16-bit two's complement fixed point, high byte first
func decode(hi, lo float) float {
	n := floor(hi*255+0.5)*256 + floor(lo*255+0.5)
	if n >= 32768 {
		n -= 65536
	}
	return clamp(n/32767, -Limit, Limit)
}

func encode(v float) vec2 {
	n := floor(clamp(v, -Limit, Limit)*32767 + 0.5)
	if n < 0 {
		n += 65536
	}
	hi := floor(n / 256)
	lo := n - hi*256
	return vec2(hi, lo) / 255
}

// clamp to edge
func state(p vec2) vec4 {
	origin := imageSrc0Origin()
	size := imageSrc0Size()
	return imageSrc0UnsafeAt(clamp(p, origin+0.5, origin+size-0.5))
}

func height(p vec2) float {
	c := state(p)
	return decode(c.r, c.g)
}

func Fragment(dstPos vec4, srcPos vec2, color vec4) vec4 {
	c := state(srcPos)
	h := decode(c.r, c.g)
	prev := decode(c.b, c.a)

	lap := height(srcPos+vec2(1, 0)) + height(srcPos-vec2(1, 0)) +
		height(srcPos+vec2(0, 1)) + height(srcPos-vec2(0, 1)) - 4*h

	next := (2*h - prev + Courant*lap) * Damping

	if Mouse.x != 0 || Mouse.y != 0 {
		// image rows run down, simulation y runs up
		local := srcPos - imageSrc0Origin()
		sim := vec2(local.x, Resolution.y-local.y)
		d := distance(sim, Mouse)
		if d < Radius {
			t := 1 - d/Radius
			next += Strength * t * t
		}
	}

	return vec4(encode(next), encode(h))
}
