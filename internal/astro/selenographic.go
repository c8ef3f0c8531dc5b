package astro

import "math"

// Selenographic describes which part of the lunar disk faces the Earth and
// the Sun. Physical libration and nutation are neglected, so the sub-Earth
// point is the optical (geocentric) libration.
type Selenographic struct {
	// Sub-Earth point (libration), degrees.
	EarthLongitude float64 // [-180, 180)
	EarthLatitude  float64

	// Sub-solar point, degrees.
	SunLongitude float64 // [0, 360)
	SunLatitude  float64

	// Colongitude is the selenographic colongitude of the Sun.
	Colongitude float64
	// TerminatorLongitude is the selenographic longitude of the morning or
	// evening terminator facing the Earth.
	TerminatorLongitude float64

	Elongation          float64 // Sun-Moon elongation ψ
	PhaseAngle          float64 // Sun-Moon-Earth angle i
	IlluminatedFraction float64 // k in [0, 1]

	// Position angles measured from the north celestial point toward east.
	BrightLimbAngle float64
	PoleAngle       float64
}

// selenographicPoint rotates an ecliptic direction (lon, lat) seen from the
// Moon into selenographic longitude and latitude (Meeus ch. 51).
func selenographicPoint(lon, lat, node, argLatitude float64) (selLon, selLat float64) {
	w := normalizeAngle360(lon - node)
	y := dcos(w) * dcos(lat)
	x := dsin(w)*dcos(lat)*dcos(LunarInclination) - dsin(lat)*dsin(LunarInclination)
	a := datan2(x, y)
	selLon = a - argLatitude
	selLat = dasin(-dsin(w)*dcos(lat)*dsin(LunarInclination) - dsin(lat)*dcos(LunarInclination))
	return selLon, selLat
}

// LunarGeometry derives libration, terminator, illumination and position
// angles from the Sun and Moon positions.
func LunarGeometry(sun SolarPosition, moon LunarPosition) Selenographic {
	var g Selenographic

	el, eb := selenographicPoint(moon.Longitude, moon.Latitude, moon.Node, moon.F)
	g.EarthLongitude = normalizeAngle180(el)
	g.EarthLatitude = eb

	sl, sb := selenographicPoint(moon.HeliocentricLongitude, moon.HeliocentricLatitude, moon.Node, moon.F)
	g.SunLongitude = normalizeAngle360(sl)
	g.SunLatitude = sb

	g.Colongitude = colongitude(g.SunLongitude)
	g.TerminatorLongitude = terminatorLongitude(g.Colongitude)

	// Illuminated fraction from elongation and relative distances.
	r := sun.Equatorial.Distance
	cosPsi := clampUnit(dcos(moon.Latitude) * dcos(moon.Longitude-sun.ApparentLongitude))
	g.Elongation = radToDeg(math.Acos(cosPsi))
	g.PhaseAngle = datan2(r*dsin(g.Elongation), moon.HeliocentricRatio-r*cosPsi)
	g.IlluminatedFraction = (1 + dcos(g.PhaseAngle)) / 2

	// Position angle of the bright limb.
	sunRA, sunDec := sun.Equatorial.RAHours*15, sun.Equatorial.DecDeg
	moonRA, moonDec := moon.Equatorial.RAHours*15, moon.Equatorial.DecDeg
	x := dsin(sunDec)*dcos(moonDec) - dcos(sunDec)*dsin(moonDec)*dcos(sunRA-moonRA)
	y := dcos(sunDec) * dsin(sunRA-moonRA)
	g.BrightLimbAngle = datan2(y, x)

	// Position angle of the rotation axis. Without nutation and physical
	// libration Meeus' V is just the node Ω'.
	x = dsin(LunarInclination) * dsin(moon.Node)
	y = dsin(LunarInclination)*dcos(moon.Node)*dcos(sun.Obliquity) - dcos(LunarInclination)*dsin(sun.Obliquity)
	w := datan2(x, y)
	a := math.Sqrt(x*x+y*y) * dcos(moonRA-w)
	g.PoleAngle = dasin(a / dcos(g.EarthLatitude))

	return g
}

func colongitude(sunLongitude float64) float64 {
	if sunLongitude < 90 {
		return 90 - sunLongitude
	}
	return 450 - sunLongitude
}

func terminatorLongitude(co float64) float64 {
	switch {
	case co > 90 && co < 270:
		return 180 - co
	case co < 90:
		return -co
	default:
		return 360 - co
	}
}
