// SPDX-License-Identifier: EPL-2.0

package pcm

import "math"

// FromFloat converts a normalized sample in [-1, 1] to int16. Values
// outside the range are clamped; 1 maps to 32767 and -1 to -32767.
func FromFloat(x float32) int16 {
	switch {
	case x > 1:
		x = 1
	case x < -1:
		x = -1
	}
	return int16(x * math.MaxInt16)
}

// Round rounds v, already in int16 units, to the nearest sample and
// saturates at the int16 limits. Halves round away from zero.
func Round(v float32) int16 {
	if v >= math.MaxInt16 {
		return math.MaxInt16
	}
	if v <= math.MinInt16 {
		return math.MinInt16
	}
	return int16(math.Round(float64(v)))
}
