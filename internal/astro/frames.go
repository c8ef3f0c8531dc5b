package astro

import (
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
)

// AU is the Astronomical Unit in kilometers.
const AU = 149597870.7

// EarthRadiusKm is the Earth's mean radius; the render frame uses it as unit length.
const EarthRadiusKm = 6371.0

// Vec3 represents a 3D vector in any reference frame.
type Vec3 struct {
	X, Y, Z float64
}

// Norm returns the magnitude of the vector.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Normalized returns a unit vector in the same direction.
func (v Vec3) Normalized() Vec3 {
	n := v.Norm()
	if n == 0 {
		return Vec3{}
	}
	return Vec3{X: v.X / n, Y: v.Y / n, Z: v.Z / n}
}

// Scale returns the vector scaled by a factor.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Add returns the sum of two vectors.
func (v Vec3) Add(u Vec3) Vec3 {
	return Vec3{X: v.X + u.X, Y: v.Y + u.Y, Z: v.Z + u.Z}
}

// Sub returns the difference of two vectors.
func (v Vec3) Sub(u Vec3) Vec3 {
	return Vec3{X: v.X - u.X, Y: v.Y - u.Y, Z: v.Z - u.Z}
}

// KmToEarthRadii converts kilometres to render units.
func KmToEarthRadii(km float64) float64 {
	return km / EarthRadiusKm
}

// AUToKm converts Astronomical Units to kilometers.
func AUToKm(au float64) float64 {
	return au * AU
}

// precession is a fixed near-identity correction from the J2000 frame
// toward the current mean frame.
var precession = mat.NewDense(3, 3, []float64{
	0.9999999999999928, -0.0000000707827970, 0.0000000805627700,
	0.0000000707827970, 0.9999999999999974, -0.0000000356813400,
	-0.0000000805627700, 0.0000000356813400, 0.9999999999999969,
})

// renderRemap is a basis change, not a physical rotation:
//
//	render.X =  eq.X
//	render.Y =  eq.Z  (north celestial pole is "up")
//	render.Z = -eq.Y
var renderRemap = mat.NewDense(3, 3, []float64{
	1, 0, 0,
	0, 0, 1,
	0, -1, 0,
})

// AnnualAngle returns the Z rotation angle in radians applied at Julian
// day jd: one full turn per Julian year since J2000.0.
func AnnualAngle(jd float64) float64 {
	return 2 * math.Pi * (jd - J2000) / 365.25
}

// FrameMatrix returns remap · Rz(θ) · precession for Julian day jd.
func FrameMatrix(jd float64) *mat.Dense {
	theta := AnnualAngle(jd)
	sin, cos := math.Sincos(theta)
	rz := mat.NewDense(3, 3, []float64{
		cos, -sin, 0,
		sin, cos, 0,
		0, 0, 1,
	})

	var rp, m mat.Dense
	rp.Mul(rz, precession)
	m.Mul(renderRemap, &rp)
	return &m
}

// RotateJ2000ToFrame rotates a J2000 equatorial vector into the render
// frame at Julian day jd.
func RotateJ2000ToFrame(v Vec3, jd float64) Vec3 {
	return applyMatrix(FrameMatrix(jd), v)
}

// RotateJ2000ToNow rotates using the wall-clock Julian day.
func RotateJ2000ToNow(v Vec3) Vec3 {
	return RotateJ2000ToFrame(v, JulianDay(time.Now()))
}

func applyMatrix(m mat.Matrix, v Vec3) Vec3 {
	in := mat.NewVecDense(3, []float64{v.X, v.Y, v.Z})
	var out mat.VecDense
	out.MulVec(m, in)
	return Vec3{X: out.AtVec(0), Y: out.AtVec(1), Z: out.AtVec(2)}
}
