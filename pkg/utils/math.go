package utils

import "math"

// ClampFloat64 clamps a float64 value between min and max
func ClampFloat64(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// Clamp01 clamps a value into [0, 1]
func Clamp01(value float64) float64 {
	return ClampFloat64(value, 0, 1)
}

// Lerp linearly interpolates from a to b by t
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// EaseCubicOut decelerates towards 1. Input is clamped to [0, 1].
func EaseCubicOut(t float64) float64 {
	t = Clamp01(t) - 1
	return t*t*t + 1
}

// EaseCubicInOut is the symmetric slow-fast-slow curve. Input is clamped to [0, 1].
func EaseCubicInOut(t float64) float64 {
	t = Clamp01(t)
	if t < 0.5 {
		return 4 * t * t * t
	}
	u := 2*t - 2
	return (u*u*u + 2) / 2
}

// Smoothstep is the Hermite ramp 3t²-2t³. Input is clamped to [0, 1].
func Smoothstep(t float64) float64 {
	t = Clamp01(t)
	return t * t * (3 - 2*t)
}

// Hypot returns the distance between two points
func Hypot(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x2-x1, y2-y1)
}

// Round rounds a float64 to the specified number of decimal places
func Round(value float64, decimals int) float64 {
	multiplier := math.Pow(10, float64(decimals))
	return math.Round(value*multiplier) / multiplier
}
