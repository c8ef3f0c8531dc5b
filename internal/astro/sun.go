package astro

import (
	"math"
	"time"
)

// Solar series coefficients (Meeus, Astronomical Algorithms 1st ed., ch. 25,
// low-precision form). Changing them breaks parity with published values.
var (
	sunMeanLongitude = Polynomial{280.466, 36000.8, 0, 0}
	sunMeanAnomaly   = Polynomial{357.529, 35999, -0.0001536, 1.0 / 24490000}
	sunEccentricity  = Polynomial{0.01671, -0.00004204, -0.0000001236, 0}
	sunNode          = Polynomial{125.04, -1934.1, 0, 0}
	obliquityArcsec  = Polynomial{84381.448, -46.815, 0, 0}
)

// SolarPosition holds the Sun's geocentric position and the intermediate
// quantities of the series. Angles are in degrees.
type SolarPosition struct {
	MeanLongitude     float64 // L
	MeanAnomaly       float64 // M
	EquationOfCenter  float64 // C
	TrueAnomaly       float64 // V = M + C
	Eccentricity      float64 // e of Earth's orbit
	TrueLongitude     float64 // Θ = L + C
	Node              float64 // Ω used for the apparent longitude
	ApparentLongitude float64 // λ
	Obliquity         float64 // ε, mean obliquity of the ecliptic

	Equatorial Equatorial // Distance in AU
}

// Obliquity returns the mean obliquity of the ecliptic in degrees for t
// Julian centuries since J2000.0.
func Obliquity(t float64) float64 {
	return obliquityArcsec.Eval(t) / 3600
}

// Sun computes the solar position for t Julian centuries since J2000.0.
func Sun(t float64) SolarPosition {
	var p SolarPosition

	p.MeanLongitude = sunMeanLongitude.Angle(t)
	p.MeanAnomaly = sunMeanAnomaly.Angle(t)

	m := p.MeanAnomaly
	c := (1.915 - 0.004817*t - 0.000014*t*t) * dsin(m)
	c += (0.01999 - 0.000101*t) * dsin(2*m)
	c += 0.00029 * dsin(3*m)
	p.EquationOfCenter = c

	p.TrueAnomaly = m + c
	p.Eccentricity = sunEccentricity.Eval(t)
	distance := 0.99972 / (1 + p.Eccentricity*dcos(p.TrueAnomaly))

	p.TrueLongitude = p.MeanLongitude + c
	p.Node = sunNode.Angle(t)
	p.ApparentLongitude = p.TrueLongitude - 0.00569 - 0.00478*dsin(p.Node)
	p.Obliquity = Obliquity(t)

	// The Sun's ecliptic latitude is taken as zero.
	ra, dec := eclipticToEquatorial(p.TrueLongitude, 0, p.Obliquity)
	p.Equatorial = Equatorial{RAHours: ra / 15, DecDeg: dec, Distance: distance}
	return p
}

// SunAt computes the solar position at a UTC time.
func SunAt(tm time.Time) SolarPosition {
	return Sun(Centuries(dayOffsetOfTime(tm)))
}

// eclipticToEquatorial converts ecliptic longitude/latitude to right
// ascension and declination, all in degrees, for obliquity eps.
func eclipticToEquatorial(lambda, beta, eps float64) (raDeg, decDeg float64) {
	raDeg = datan2(dsin(lambda)*dcos(eps)-dtan(beta)*dsin(eps), dcos(lambda))
	decDeg = dasin(dsin(beta)*dcos(eps) + dcos(beta)*dsin(eps)*dsin(lambda))
	return raDeg, decDeg
}

// AngularSeparation calculates the angular separation between two points on
// the celestial sphere. Returns separation in degrees.
func AngularSeparation(a, b Equatorial) float64 {
	ra1Rad := degToRad(a.RAHours * 15)
	dec1Rad := degToRad(a.DecDeg)
	ra2Rad := degToRad(b.RAHours * 15)
	dec2Rad := degToRad(b.DecDeg)

	// Haversine formula for angular separation
	dRA := ra2Rad - ra1Rad
	dDec := dec2Rad - dec1Rad

	h := math.Sin(dDec/2)*math.Sin(dDec/2) +
		math.Cos(dec1Rad)*math.Cos(dec2Rad)*math.Sin(dRA/2)*math.Sin(dRA/2)

	// Clamp to avoid numerical errors with asin
	if h > 1 {
		h = 1
	}

	return radToDeg(2 * math.Asin(math.Sqrt(h)))
}

// dayOffsetOfTime returns the J2000 day offset of t including seconds.
func dayOffsetOfTime(tm time.Time) float64 {
	tm = tm.UTC()
	hour := float64(tm.Hour()) + float64(tm.Minute())/60 +
		(float64(tm.Second())+float64(tm.Nanosecond())/1e9)/3600
	return DayOffsetSinceJ2000(tm.Year(), int(tm.Month()), tm.Day(), hour)
}
