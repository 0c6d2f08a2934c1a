package math

import (
	stdmath "math"

	"golang.org/x/exp/constraints"
)

// Clamp returns f limited to the range [low, high] for any ordered type.
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

// WrapDegrees maps an angle into [0, 360).
func WrapDegrees[T constraints.Float](deg T) T {
	w := T(stdmath.Mod(float64(deg), 360))
	if w < 0 {
		w += 360
	}
	return w
}
