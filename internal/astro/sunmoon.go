package astro

import (
	"errors"
	"fmt"
)

// Validity tags a SunMoonResult.
type Validity int

const (
	// Valid means the epoch is a real date inside the algorithm's range.
	Valid Validity = iota
	// InvalidComputed means the epoch had calendar issues but the series
	// was evaluated anyway.
	InvalidComputed
)

func (v Validity) String() string {
	switch v {
	case Valid:
		return "valid"
	case InvalidComputed:
		return "invalid-computed"
	default:
		return "unknown"
	}
}

// SunMoonResult is the output of one Sun/Moon computation. Angles are in
// degrees; the Sun distance is in AU and the Moon distance in Earth radii.
type SunMoonResult struct {
	Epoch     Epoch
	DayNumber float64 // days since J2000.0
	JulianDay float64

	Sun  Equatorial
	Moon Equatorial

	SunEclipticLongitude  float64
	MoonEclipticLongitude float64
	MoonEclipticLatitude  float64

	Selenographic

	Validity Validity
	Issues   []error
}

// MoonDistanceKm returns the Earth-Moon distance in kilometres.
func (r SunMoonResult) MoonDistanceKm() float64 {
	return r.Moon.Distance * EarthRadiusKm
}

// SunDistanceKm returns the Earth-Sun distance in kilometres.
func (r SunMoonResult) SunDistanceKm() float64 {
	return AUToKm(r.Sun.Distance)
}

// SkySeparation returns the Sun-Moon angular separation on the sky.
func (r SunMoonResult) SkySeparation() float64 {
	return AngularSeparation(r.Sun, r.Moon)
}

// Compute evaluates the Sun and Moon positions at e. Calendar problems do not
// stop the computation: the result is tagged InvalidComputed and carries the
// issues. Only an epoch that is not a positive finite number is an error.
func Compute(e Epoch) (SunMoonResult, error) {
	issues := e.Validate()
	for _, issue := range issues {
		if errors.Is(issue, ErrFatalEpoch) {
			return SunMoonResult{}, issue
		}
	}

	days := e.DayOffset()
	t := Centuries(days)

	sun := Sun(t)
	moon := Moon(t, sun)

	res := SunMoonResult{
		Epoch:                 e,
		DayNumber:             days,
		JulianDay:             days + J2000,
		Sun:                   sun.Equatorial,
		Moon:                  moon.Equatorial,
		SunEclipticLongitude:  sun.ApparentLongitude,
		MoonEclipticLongitude: moon.Longitude,
		MoonEclipticLatitude:  moon.Latitude,
		Selenographic:         LunarGeometry(sun, moon),
		Validity:              Valid,
	}
	if len(issues) > 0 {
		res.Validity = InvalidComputed
		res.Issues = issues
	}
	return res, nil
}

// ComputeNow evaluates the positions at the current UTC minute.
func ComputeNow() SunMoonResult {
	res, _ := Compute(CurrentUTCEpoch())
	return res
}

// ComputeStrict is Compute but rejects epochs with any calendar issue.
func ComputeStrict(e Epoch) (SunMoonResult, error) {
	res, err := Compute(e)
	if err != nil {
		return res, err
	}
	if res.Validity != Valid {
		return res, fmt.Errorf("compute %s: %w", e, errors.Join(res.Issues...))
	}
	return res, nil
}
