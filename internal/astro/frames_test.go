package astro

import (
	"math"
	"testing"
)

func TestVec3Norm(t *testing.T) {
	tests := []struct {
		name string
		v    Vec3
		want float64
	}{
		{"zero", Vec3{0, 0, 0}, 0},
		{"unit x", Vec3{1, 0, 0}, 1},
		{"unit y", Vec3{0, 1, 0}, 1},
		{"unit z", Vec3{0, 0, 1}, 1},
		{"3-4-5", Vec3{3, 4, 0}, 5},
		{"negative", Vec3{-3, -4, 0}, 5},
		{"3D", Vec3{1, 2, 2}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.v.Norm()
			if math.Abs(got-tt.want) > 1e-10 {
				t.Errorf("Norm() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVec3Normalized(t *testing.T) {
	tests := []struct {
		name string
		v    Vec3
		want Vec3
	}{
		{"unit x", Vec3{5, 0, 0}, Vec3{1, 0, 0}},
		{"unit y", Vec3{0, 3, 0}, Vec3{0, 1, 0}},
		{"diagonal", Vec3{1, 1, 0}, Vec3{1 / math.Sqrt(2), 1 / math.Sqrt(2), 0}},
		{"zero", Vec3{0, 0, 0}, Vec3{0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.v.Normalized()
			if math.Abs(got.X-tt.want.X) > 1e-10 ||
				math.Abs(got.Y-tt.want.Y) > 1e-10 ||
				math.Abs(got.Z-tt.want.Z) > 1e-10 {
				t.Errorf("Normalized() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKmToEarthRadii(t *testing.T) {
	if got := KmToEarthRadii(6371); got != 1 {
		t.Errorf("KmToEarthRadii(6371) = %v, want 1", got)
	}
	if got := KmToEarthRadii(-6371 * 2); got != -2 {
		t.Errorf("KmToEarthRadii(-12742) = %v, want -2", got)
	}
}

func TestAnnualAngle(t *testing.T) {
	tests := []struct {
		name string
		jd   float64
		want float64
	}{
		{"J2000", J2000, 0},
		{"quarter year", J2000 + 365.25/4, math.Pi / 2},
		{"one year", J2000 + 365.25, 2 * math.Pi},
		{"before J2000", J2000 - 365.25/2, -math.Pi},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AnnualAngle(tt.jd); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("AnnualAngle(%v) = %v, want %v", tt.jd, got, tt.want)
			}
		})
	}
}

func TestRotateJ2000ToFrame_AtJ2000(t *testing.T) {
	// With θ = 0 the rotation is the precession matrix followed by the
	// axis remap (x, y, z) -> (x, z, -y).
	inputs := []Vec3{
		{X: 1},
		{Y: 1},
		{Z: 1},
		{X: 3, Y: -4, Z: 12},
	}

	for _, v := range inputs {
		p := Vec3{
			X: 0.9999999999999928*v.X - 0.0000000707827970*v.Y + 0.0000000805627700*v.Z,
			Y: 0.0000000707827970*v.X + 0.9999999999999974*v.Y - 0.0000000356813400*v.Z,
			Z: -0.0000000805627700*v.X + 0.0000000356813400*v.Y + 0.9999999999999969*v.Z,
		}
		want := Vec3{X: p.X, Y: p.Z, Z: -p.Y}

		got := RotateJ2000ToFrame(v, J2000)
		if got.Sub(want).Norm() > 1e-12 {
			t.Errorf("RotateJ2000ToFrame(%+v) = %+v, want %+v", v, got, want)
		}
	}
}

func TestRotateJ2000ToFrame_HalfYear(t *testing.T) {
	// θ = π flips X and Y before the remap.
	got := RotateJ2000ToFrame(Vec3{X: 1}, J2000+365.25/2)
	want := Vec3{X: -1}
	if got.Sub(want).Norm() > 1e-6 {
		t.Errorf("RotateJ2000ToFrame(+X, half year) = %+v, want ~%+v", got, want)
	}

	got = RotateJ2000ToFrame(Vec3{Y: 1}, J2000+365.25/2)
	want = Vec3{Z: 1}
	if got.Sub(want).Norm() > 1e-6 {
		t.Errorf("RotateJ2000ToFrame(+Y, half year) = %+v, want ~%+v", got, want)
	}
}

func TestRotateJ2000ToFrame_PreservesNorm(t *testing.T) {
	v := Vec3{X: 12.5, Y: -3.25, Z: 40}
	for jd := J2000 - 3000; jd < J2000+9000; jd += 777.7 {
		got := RotateJ2000ToFrame(v, jd)
		if math.Abs(got.Norm()-v.Norm()) > 1e-9 {
			t.Errorf("norm changed at jd %v: %v -> %v", jd, v.Norm(), got.Norm())
		}
	}
}

func TestRotateJ2000ToNow_KeepsPoleUp(t *testing.T) {
	// The Z rotation never moves the celestial pole off render +Y.
	got := RotateJ2000ToNow(Vec3{Z: 1})
	if math.Abs(got.Y-1) > 1e-6 {
		t.Errorf("RotateJ2000ToNow(+Z) = %+v, want Y ~1", got)
	}
}
