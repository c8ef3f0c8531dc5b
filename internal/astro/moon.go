package astro

import "math"

// Fundamental lunar arguments as cubic polynomials in Julian centuries.
var (
	moonArgLatitude   = Polynomial{93.2721, 483202, -0.003403, -1.0 / 3526000} // F
	moonMeanLongitude = Polynomial{218.316, 481268, 0, 0}                      // L'
	moonNode          = Polynomial{125.045, -1934.14, 0.002071, 1.0 / 450000}  // Ω'
	moonMeanAnomaly   = Polynomial{134.963, 477199, 0.008997, 1.0 / 69700}     // M'
	moonElongation    = Polynomial{297.85, 445267, -0.00163, 1.0 / 545900}     // D
)

// Periodic terms of the low-precision lunar theory.
var (
	moonLongitudeTerms = []Term{
		{Coeff: 6.289, Mp: 1},
		{Coeff: 1.274, D: 2, Mp: -1},
		{Coeff: 0.6583, D: 2},
		{Coeff: 0.2136, Mp: 2},
		{Coeff: -0.1851, M: 1},
		{Coeff: -0.1143, F: 2},
		{Coeff: 0.0588, D: 2, Mp: -2},
		{Coeff: 0.0572, D: 2, M: -1, Mp: -1},
		{Coeff: 0.0533, D: 2, Mp: 1},
	}

	moonLatitudeTerms = []Term{
		{Coeff: 5.128, F: 1},
		{Coeff: 0.2806, Mp: 1, F: 1},
		{Coeff: 0.2777, Mp: 1, F: -1},
		{Coeff: 0.1732, D: 2, F: -1},
	}

	// Distance terms are in km and scaled by moonReferenceDistanceKm.
	moonDistanceTerms = []Term{
		{Coeff: -20954, Mp: 1},
		{Coeff: -3699, D: 2, Mp: -1},
		{Coeff: -2956, D: 2},
	}
)

const (
	moonReferenceDistanceKm = 385000.0

	// EarthRadiiPerLunarUnit converts the lunar distance ratio to Earth radii.
	EarthRadiiPerLunarUnit = 60.268511

	// sunMoonDistanceRatio is the mean Sun distance over the mean Moon
	// distance; it turns R2/R into the heliocentric correction factor.
	sunMoonDistanceRatio = 379.168831168831

	// LunarInclination is the inclination of the mean lunar equator to the
	// ecliptic, in degrees.
	LunarInclination = 1.54242
)

// LunarPosition holds the Moon's geocentric position and the arguments it
// was derived from. Angles are in degrees.
type LunarPosition struct {
	Arguments
	MeanLongitude float64 // L'
	Node          float64 // Ω'

	Longitude float64 // geocentric ecliptic longitude λ
	Latitude  float64 // geocentric ecliptic latitude β

	// DistanceRatio is the Earth-Moon distance over the reference distance.
	DistanceRatio float64

	// HeliocentricRatio is (DistanceRatio / Sun distance) / 379.17, the
	// Moon-Earth over Sun-Earth distance used for the sub-solar point.
	HeliocentricRatio float64

	HeliocentricLongitude float64
	HeliocentricLatitude  float64

	Equatorial Equatorial // Distance in Earth radii
}

// Moon computes the lunar position for t Julian centuries since J2000.0.
// The Sun's position supplies its mean anomaly, distance and apparent
// longitude, and the obliquity.
func Moon(t float64, sun SolarPosition) LunarPosition {
	var p LunarPosition

	p.F = moonArgLatitude.Angle(t)
	p.MeanLongitude = moonMeanLongitude.Angle(t)
	p.Node = moonNode.Angle(t)
	p.Mp = moonMeanAnomaly.Angle(t)
	p.D = moonElongation.Angle(t)
	p.M = sun.MeanAnomaly

	p.DistanceRatio = 1 + evalCos(moonDistanceTerms, p.Arguments)/moonReferenceDistanceKm
	p.HeliocentricRatio = (p.DistanceRatio / sun.Equatorial.Distance) / sunMoonDistanceRatio

	p.Latitude = evalSin(moonLatitudeTerms, p.Arguments)
	p.Longitude = normalizeAngle360(p.MeanLongitude + evalSin(moonLongitudeTerms, p.Arguments))

	ra, dec := eclipticToEquatorial(p.Longitude, p.Latitude, sun.Obliquity)
	p.Equatorial = Equatorial{
		RAHours:  ra / 15,
		DecDeg:   dec,
		Distance: p.DistanceRatio * EarthRadiiPerLunarUnit,
	}

	lam := sun.ApparentLongitude
	p.HeliocentricLongitude = normalizeAngle360(lam + 180 +
		(180/math.Pi)*p.HeliocentricRatio*dcos(p.Latitude)*dsin(lam-p.Longitude))
	p.HeliocentricLatitude = p.HeliocentricRatio * p.Latitude

	return p
}

// DistanceKm returns the Earth-Moon distance in kilometres.
func (p LunarPosition) DistanceKm() float64 {
	return p.Equatorial.Distance * EarthRadiusKm
}
