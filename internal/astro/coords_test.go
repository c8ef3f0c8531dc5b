package astro

import (
	"math"
	"testing"
	"time"
)

func TestJulianDay(t *testing.T) {
	tests := []struct {
		name     string
		time     time.Time
		expected float64
		tol      float64
	}{
		{
			name:     "J2000 epoch",
			time:     time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC),
			expected: 2451545.0,
			tol:      0.0001,
		},
		{
			name:     "Unix epoch",
			time:     time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
			expected: 2440587.5,
			tol:      0.0001,
		},
		{
			name:     "Known date 2024-01-01 00:00 UTC",
			time:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			expected: 2460310.5,
			tol:      0.0001,
		},
		{
			name:     "Non-UTC zone is converted",
			time:     time.Date(2000, 1, 1, 14, 0, 0, 0, time.FixedZone("CEST", 2*3600)),
			expected: 2451545.0,
			tol:      0.0001,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := JulianDay(tt.time)
			if math.Abs(got-tt.expected) > tt.tol {
				t.Errorf("JulianDay() = %v, want %v (±%v)", got, tt.expected, tt.tol)
			}
		})
	}
}

func TestEquatorialCartesianRoundTrip(t *testing.T) {
	for ra := 0.0; ra < 24; ra += 1.7 {
		for dec := -85.0; dec <= 85; dec += 17 {
			for _, r := range []float64{1, 60.3, 50 * 0.98} {
				v := EquatorialToCartesian(ra, dec, r)
				got := CartesianToEquatorial(v)

				if math.Abs(got.RAHours-ra) > 1e-6 {
					t.Errorf("RA round trip (%v, %v, %v): got %v", ra, dec, r, got.RAHours)
				}
				if math.Abs(got.DecDeg-dec) > 1e-6 {
					t.Errorf("Dec round trip (%v, %v, %v): got %v", ra, dec, r, got.DecDeg)
				}
				if math.Abs(got.Distance-r) > 1e-6 {
					t.Errorf("distance round trip (%v, %v, %v): got %v", ra, dec, r, got.Distance)
				}
			}
		}
	}
}

func TestEquatorialToCartesian_Axes(t *testing.T) {
	tests := []struct {
		name    string
		ra, dec float64
		want    Vec3
	}{
		{"vernal equinox", 0, 0, Vec3{X: 1}},
		{"6h is negative Y", 6, 0, Vec3{Y: -1}},
		{"18h is positive Y", 18, 0, Vec3{Y: 1}},
		{"north pole", 3, 90, Vec3{Z: 1}},
		{"south pole", 3, -90, Vec3{Z: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EquatorialToCartesian(tt.ra, tt.dec, 1)
			if got.Sub(tt.want).Norm() > 1e-12 {
				t.Errorf("EquatorialToCartesian(%v, %v) = %+v, want %+v", tt.ra, tt.dec, got, tt.want)
			}
		})
	}
}

func TestCartesianToEquatorial_Origin(t *testing.T) {
	if got := CartesianToEquatorial(Vec3{}); got != (Equatorial{}) {
		t.Errorf("CartesianToEquatorial(0) = %+v, want zero", got)
	}
}

func TestToRenderFrame_AtJ2000(t *testing.T) {
	eq := Equatorial{RAHours: 0, DecDeg: 90, Distance: 2}
	got := ToRenderFrame(eq, 3, J2000)

	// The north pole ends up on render +Y, scaled by distance*scale.
	if math.Abs(got.Y-6) > 1e-6 || math.Abs(got.X) > 1e-6 || math.Abs(got.Z) > 1e-6 {
		t.Errorf("ToRenderFrame(north pole) = %+v, want (0, 6, 0)", got)
	}
}

func TestGreenwichMeanSiderealTime(t *testing.T) {
	t2000 := time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)
	gmst := greenwichMeanSiderealTime(t2000)

	if math.Abs(gmst-280.46) > 0.1 {
		t.Errorf("GMST at J2000 = %v, want ~280.46", gmst)
	}
	if gmst < 0 || gmst >= 360 {
		t.Errorf("GMST out of range: %v", gmst)
	}
}

func TestLocalSiderealTime(t *testing.T) {
	testTime := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	gmst := greenwichMeanSiderealTime(testTime)
	lst0 := localSiderealTime(testTime, 0)
	if math.Abs(lst0-gmst) > 0.001 {
		t.Errorf("LST at lon=0 should equal GMST: got %v, want %v", lst0, gmst)
	}

	lst90 := localSiderealTime(testTime, 90)
	expected90 := math.Mod(gmst+90, 360)
	if math.Abs(lst90-expected90) > 0.001 {
		t.Errorf("LST at lon=90 = %v, want %v", lst90, expected90)
	}

	for lon := -180.0; lon <= 180; lon += 30 {
		lst := localSiderealTime(testTime, lon)
		if lst < 0 || lst >= 360 {
			t.Errorf("LST at lon=%v out of range: %v", lon, lst)
		}
	}
}

func TestEquatorialToHorizontal_Polaris(t *testing.T) {
	polaris := Equatorial{RAHours: 37.95 / 15, DecDeg: 89.26}
	observer := Observer{LatDeg: 35.0, LonDeg: -117.0}

	result := EquatorialToHorizontal(polaris, observer, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC))

	// Elevation tracks latitude for a star this close to the pole
	if math.Abs(result.ElDeg-observer.LatDeg) > 5 {
		t.Errorf("Polaris elevation = %v°, expected ~%v°", result.ElDeg, observer.LatDeg)
	}
}

func TestEquatorialToHorizontal_Zenith(t *testing.T) {
	observer := Observer{LatDeg: 35.0, LonDeg: -117.0}
	testTime := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	lst := localSiderealTime(testTime, observer.LonDeg)

	zenith := Equatorial{RAHours: lst / 15, DecDeg: observer.LatDeg}
	result := EquatorialToHorizontal(zenith, observer, testTime)

	if math.Abs(result.ElDeg-90) > 1 {
		t.Errorf("zenith elevation = %v°, expected ~90°", result.ElDeg)
	}
}

func TestEquatorialToHorizontal_NeverRises(t *testing.T) {
	southern := Equatorial{RAHours: 0, DecDeg: -60}
	observer := Observer{LatDeg: 35.0, LonDeg: -117.0}

	// Max elevation = 90 - 35 + (-60) = -5°
	for hour := 0; hour < 24; hour += 6 {
		testTime := time.Date(2024, 6, 15, hour, 0, 0, 0, time.UTC)
		result := EquatorialToHorizontal(southern, observer, testTime)
		if result.ElDeg > 0 {
			t.Errorf("Dec=-60° visible from 35°N at hour %d: El=%v°", hour, result.ElDeg)
		}
	}
}

func TestEquatorialToHorizontal_AzimuthRange(t *testing.T) {
	observer := Observer{LatDeg: 35, LonDeg: -117}
	testTime := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	for ra := 0.0; ra < 24; ra += 2 {
		for dec := -80.0; dec <= 80; dec += 20 {
			result := EquatorialToHorizontal(Equatorial{RAHours: ra, DecDeg: dec}, observer, testTime)
			if result.AzDeg < 0 || result.AzDeg > 360 {
				t.Errorf("Azimuth out of range for RA=%vh, Dec=%v: Az=%v", ra, dec, result.AzDeg)
			}
		}
	}
}

func TestDegToRad(t *testing.T) {
	tests := []struct {
		deg float64
		rad float64
	}{
		{0, 0},
		{90, math.Pi / 2},
		{180, math.Pi},
		{360, 2 * math.Pi},
		{-90, -math.Pi / 2},
	}

	for _, tt := range tests {
		got := degToRad(tt.deg)
		if math.Abs(got-tt.rad) > 1e-10 {
			t.Errorf("degToRad(%v) = %v, want %v", tt.deg, got, tt.rad)
		}
	}
}

func TestRadToDeg(t *testing.T) {
	tests := []struct {
		rad float64
		deg float64
	}{
		{0, 0},
		{math.Pi / 2, 90},
		{math.Pi, 180},
		{2 * math.Pi, 360},
	}

	for _, tt := range tests {
		got := radToDeg(tt.rad)
		if math.Abs(got-tt.deg) > 1e-10 {
			t.Errorf("radToDeg(%v) = %v, want %v", tt.rad, got, tt.deg)
		}
	}
}
