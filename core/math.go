package core

import (
	"golang.org/x/exp/constraints"
)

func Lerp[F constraints.Float](a, b, t F) F {
	return a + (b-a)*t
}

func Clamp[N constraints.Integer | constraints.Float](n, minN, maxN N) N {
	n = min(n, maxN)
	n = max(n, minN)

	return n
}

// ClampIndex clamps i to [0, n-1]. It is the clamp-to-edge boundary policy
// used by every pass.
func ClampIndex(i, n int) int {
	return Clamp(i, 0, n-1)
}
