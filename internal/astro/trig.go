package astro

import (
	"math"

	"github.com/soniakeys/unit"
)

// Trigonometry in degrees. The series below are written in degrees, so
// keeping the conversions here keeps the formulas readable.

func dsin(x float64) float64 { return math.Sin(degToRad(x)) }
func dcos(x float64) float64 { return math.Cos(degToRad(x)) }
func dtan(x float64) float64 { return math.Tan(degToRad(x)) }

func dasin(x float64) float64 { return radToDeg(math.Asin(clampUnit(x))) }

// datan2 returns the angle of (x, y) in [0, 360). The origin maps to 0.
func datan2(y, x float64) float64 {
	if x == 0 && y == 0 {
		return 0
	}
	return normalizeAngle360(radToDeg(math.Atan2(y, x)))
}

// normalizeAngle360 wraps an angle to [0, 360).
func normalizeAngle360(a float64) float64 {
	return unit.PMod(a, 360)
}

// normalizeAngle180 wraps an angle to [-180, 180).
func normalizeAngle180(a float64) float64 {
	a = normalizeAngle360(a)
	if a >= 180 {
		a -= 360
	}
	return a
}

// clampUnit keeps asin/acos arguments inside [-1, 1] against rounding.
func clampUnit(x float64) float64 {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return x
}
