package astro

// Phase is the conventional name of a lunar phase.
type Phase string

const (
	PhaseNew            Phase = "New Moon"
	PhaseWaxingCrescent Phase = "Waxing Crescent"
	PhaseFirstQuarter   Phase = "First Quarter"
	PhaseWaxingGibbous  Phase = "Waxing Gibbous"
	PhaseFull           Phase = "Full Moon"
	PhaseWaningGibbous  Phase = "Waning Gibbous"
	PhaseLastQuarter    Phase = "Last Quarter"
	PhaseWaningCrescent Phase = "Waning Crescent"
)

// Illuminated fraction bands for the named phases.
const (
	newFullBand = 0.03
	quarterBand = 0.03
)

// Waxing reports whether the Moon is east of the Sun, i.e. its ecliptic
// longitude leads the Sun's by less than 180°.
func (r SunMoonResult) Waxing() bool {
	return normalizeAngle360(r.MoonEclipticLongitude-r.SunEclipticLongitude) < 180
}

// Phase names the lunar phase from the illuminated fraction and whether
// the Moon is waxing.
func (r SunMoonResult) Phase() Phase {
	return phaseFor(r.IlluminatedFraction, r.Waxing())
}

func phaseFor(k float64, waxing bool) Phase {
	switch {
	case k < newFullBand:
		return PhaseNew
	case k > 1-newFullBand:
		return PhaseFull
	case k > 0.5-quarterBand && k < 0.5+quarterBand:
		if waxing {
			return PhaseFirstQuarter
		}
		return PhaseLastQuarter
	case k < 0.5:
		if waxing {
			return PhaseWaxingCrescent
		}
		return PhaseWaningCrescent
	default:
		if waxing {
			return PhaseWaxingGibbous
		}
		return PhaseWaningGibbous
	}
}
