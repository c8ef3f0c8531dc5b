package astro

import (
	"math"
	"time"
)

// Equatorial is a position in equatorial coordinates.
type Equatorial struct {
	RAHours  float64 // Right ascension in hours [0, 24)
	DecDeg   float64 // Declination in degrees [-90, 90]
	Distance float64 // Units depend on the body (AU for the Sun, Earth radii for the Moon)
}

// Horizontal is an observer-relative position.
type Horizontal struct {
	AzDeg float64 // Azimuth in degrees (0=N, 90=E, 180=S, 270=W)
	ElDeg float64 // Elevation/Altitude in degrees (0=horizon, 90=zenith)
}

// Observer represents a ground-based observer location.
type Observer struct {
	LatDeg float64 // Latitude in degrees (north positive)
	LonDeg float64 // Longitude in degrees (east positive)
	Name   string  // Optional name for the site
}

// EquatorialToCartesian converts right ascension (hours), declination
// (degrees) and distance to Cartesian coordinates in the J2000 equatorial
// frame. Right ascension is negated so that increasing RA turns clockwise
// when seen from the north pole, matching the render frame's handedness.
func EquatorialToCartesian(raHours, decDeg, r float64) Vec3 {
	dec := degToRad(decDeg)
	ra := -degToRad(raHours * 15)

	return Vec3{
		X: r * math.Cos(dec) * math.Cos(ra),
		Y: r * math.Cos(dec) * math.Sin(ra),
		Z: r * math.Sin(dec),
	}
}

// CartesianToEquatorial is the inverse of EquatorialToCartesian.
func CartesianToEquatorial(v Vec3) Equatorial {
	r := v.Norm()
	if r == 0 {
		return Equatorial{}
	}

	raDeg := normalizeAngle360(-radToDeg(math.Atan2(v.Y, v.X)))
	return Equatorial{
		RAHours:  raDeg / 15,
		DecDeg:   radToDeg(math.Asin(clampUnit(v.Z / r))),
		Distance: r,
	}
}

// ToRenderFrame places an equatorial position in the render frame at Julian
// day jd: spherical to Cartesian, then RotateJ2000ToFrame.
func ToRenderFrame(eq Equatorial, scale, jd float64) Vec3 {
	v := EquatorialToCartesian(eq.RAHours, eq.DecDeg, eq.Distance*scale)
	return RotateJ2000ToFrame(v, jd)
}

// EquatorialToHorizontal converts an equatorial position to azimuth and
// elevation for a given observer and time.
func EquatorialToHorizontal(eq Equatorial, obs Observer, t time.Time) Horizontal {
	lat := degToRad(obs.LatDeg)
	ra := degToRad(eq.RAHours * 15)
	dec := degToRad(eq.DecDeg)

	lstRad := degToRad(localSiderealTime(t, obs.LonDeg))

	// Hour Angle = LST - RA
	ha := lstRad - ra

	sinAlt := math.Sin(dec)*math.Sin(lat) + math.Cos(dec)*math.Cos(lat)*math.Cos(ha)
	alt := math.Asin(clampUnit(sinAlt))

	cosAz := (math.Sin(dec) - math.Sin(alt)*math.Sin(lat)) / (math.Cos(alt) * math.Cos(lat))
	az := math.Acos(clampUnit(cosAz))

	// If the hour angle is positive the body is west of the meridian
	if math.Sin(ha) > 0 {
		az = 2*math.Pi - az
	}

	return Horizontal{
		AzDeg: radToDeg(az),
		ElDeg: radToDeg(alt),
	}
}

// localSiderealTime calculates the Local Sidereal Time in degrees
// for a given UTC time and observer longitude.
func localSiderealTime(t time.Time, lonDeg float64) float64 {
	return normalizeAngle360(greenwichMeanSiderealTime(t) + lonDeg)
}

// greenwichMeanSiderealTime calculates GMST in degrees (IAU 1982).
func greenwichMeanSiderealTime(t time.Time) float64 {
	jd := JulianDay(t)
	T := (jd - J2000) / DaysPerCentury

	gmst := 280.46061837 +
		360.98564736629*(jd-J2000) +
		0.000387933*T*T -
		T*T*T/38710000.0

	return normalizeAngle360(gmst)
}

// degToRad converts degrees to radians.
func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// radToDeg converts radians to degrees.
func radToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}
