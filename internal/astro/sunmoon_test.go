package astro

import (
	"errors"
	"math"
	"testing"
)

func TestCompute_ReferenceEpoch(t *testing.T) {
	res, err := Compute(20230219.2056)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}

	if res.Validity != Valid || len(res.Issues) != 0 {
		t.Errorf("Validity = %v, issues %v; want valid", res.Validity, res.Issues)
	}
	if math.Abs(res.DayNumber-8450.372222) > 1e-5 {
		t.Errorf("DayNumber = %.6f, want 8450.372222", res.DayNumber)
	}
	if math.Abs(res.JulianDay-2459995.372222) > 1e-5 {
		t.Errorf("JulianDay = %.6f, want 2459995.372222", res.JulianDay)
	}

	if math.Abs(res.Sun.RAHours-22.199) > 0.02 || math.Abs(res.Sun.DecDeg+11.14) > 0.1 {
		t.Errorf("Sun = %+v, want RA ~22.199h Dec ~-11.14°", res.Sun)
	}
	if math.Abs(res.Moon.RAHours-21.93) > 0.05 || math.Abs(res.Moon.DecDeg+17.63) > 0.3 {
		t.Errorf("Moon = %+v, want RA ~21.93h Dec ~-17.63°", res.Moon)
	}

	// About ten hours before new moon.
	if res.IlluminatedFraction > 0.02 {
		t.Errorf("IlluminatedFraction = %.4f, want a thin crescent", res.IlluminatedFraction)
	}
	if sep := res.SkySeparation(); sep < 4 || sep > 11 {
		t.Errorf("SkySeparation() = %.2f°, want 4-11°", sep)
	}
	if math.Abs(res.Elongation-res.SkySeparation()) > 1 {
		t.Errorf("Elongation %.3f° and sky separation %.3f° disagree", res.Elongation, res.SkySeparation())
	}
	if km := res.SunDistanceKm(); km < 1.47e8 || km > 1.49e8 {
		t.Errorf("SunDistanceKm() = %.0f", km)
	}
}

func TestCompute_Deterministic(t *testing.T) {
	a, _ := Compute(20230219.2056)
	b, _ := Compute(20230219.2056)
	if a.Sun != b.Sun || a.Moon != b.Moon || a.Selenographic != b.Selenographic {
		t.Error("Compute() is not a pure function of the epoch")
	}
}

func TestCompute_InvalidCalendar(t *testing.T) {
	res, err := Compute(20230230.1200)
	if err != nil {
		t.Fatalf("Compute() error = %v, want best-effort result", err)
	}
	if res.Validity != InvalidComputed {
		t.Errorf("Validity = %v, want %v", res.Validity, InvalidComputed)
	}
	if len(res.Issues) != 1 || !errors.Is(res.Issues[0], ErrInvalidDay) {
		t.Errorf("Issues = %v, want [ErrInvalidDay]", res.Issues)
	}
	if res.Sun.RAHours < 0 || res.Sun.RAHours >= 24 {
		t.Errorf("Sun RA = %v, still expected in range", res.Sun.RAHours)
	}
}

func TestCompute_Fatal(t *testing.T) {
	for _, e := range []Epoch{0, -20230219, Epoch(math.NaN()), Epoch(math.Inf(-1))} {
		if _, err := Compute(e); !errors.Is(err, ErrFatalEpoch) {
			t.Errorf("Compute(%v) error = %v, want ErrFatalEpoch", float64(e), err)
		}
	}
}

func TestComputeStrict(t *testing.T) {
	if _, err := ComputeStrict(20230219.2056); err != nil {
		t.Errorf("ComputeStrict(valid) error = %v", err)
	}

	_, err := ComputeStrict(20231345.2599)
	if err == nil {
		t.Fatal("ComputeStrict(invalid) should fail")
	}
	for _, want := range []error{ErrInvalidMonth, ErrInvalidHour, ErrInvalidMinute} {
		if !errors.Is(err, want) {
			t.Errorf("ComputeStrict() error %v does not wrap %v", err, want)
		}
	}
}

func TestComputeNow(t *testing.T) {
	res := ComputeNow()
	if res.Validity != Valid {
		t.Errorf("ComputeNow() Validity = %v, issues %v", res.Validity, res.Issues)
	}
	if res.Moon.Distance < 55 || res.Moon.Distance > 64.5 {
		t.Errorf("ComputeNow() Moon distance = %v Earth radii", res.Moon.Distance)
	}
}

func TestValidityString(t *testing.T) {
	if Valid.String() != "valid" || InvalidComputed.String() != "invalid-computed" {
		t.Errorf("Validity strings = %q, %q", Valid, InvalidComputed)
	}
}
