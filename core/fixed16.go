package core

// Heights on 8-bit surfaces are stored as 16-bit two's complement fixed
// point split over two channels, high byte first. All-zero bytes decode
// to 0. The encoder lives in the simulation shader.

const fixed16Scale = 32767

func DecodeFixed16(hi, lo uint8) float32 {
	n := int16(uint16(hi)<<8 | uint16(lo))
	return Clamp(float32(n)/fixed16Scale, -StateLimit, StateLimit)
}
