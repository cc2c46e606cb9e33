// Package fixed collects small fixed-point constants and clamp helpers
// used by the slope walker and the pixel pipeline.
package fixed

// SlopeFracBits is the number of fractional bits in a Slope's dx
// accumulator and Increment.
const SlopeFracBits = 18

// SlopeOne is 1.0 in Slope's 18-bit fixed-point representation.
const SlopeOne = 1 << SlopeFracBits

// ReciprocalBits is the fixed-point precision of the interpolator's
// 1/xdiff reciprocal.
const ReciprocalBits = 30

// Clamp restricts v to [lo, hi].
func Clamp(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Expand5To6 widens a 5-bit (0..31) color channel to a 6-bit (0..63)
// channel the way the console does it: double the value, then add one
// unless it was zero.
func Expand5To6(c uint32) uint32 {
	v := (c << 1) & 0x3E
	if v != 0 {
		v++
	}
	return v
}
