// Package scene assembles a render-frame snapshot of the Sun, Moon and
// satellite for one instant.
package scene

import (
	"errors"
	"fmt"
	"time"

	"github.com/soniakeys/meeus/v3/julian"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/ephem"
)

// Default render scales. The Sun is placed at 50 scene units per AU and the
// Moon at one sixth of its distance in Earth radii, so both fit a view a
// few dozen Earth radii across.
const (
	DefaultSunScale  = 50.0
	DefaultMoonScale = 1.0 / 6.0
)

// Scales converts body distances to scene units.
type Scales struct {
	Sun  float64 // scene units per AU
	Moon float64 // scene units per Earth radius
}

// DefaultScales returns the standard render scales.
func DefaultScales() Scales {
	return Scales{Sun: DefaultSunScale, Moon: DefaultMoonScale}
}

// Body is one celestial body placed in the scene.
type Body struct {
	Name       string
	Equatorial astro.Equatorial
	Position   astro.Vec3 // render frame, scene units
	DistanceKm float64
	Horizontal *astro.Horizontal
}

// Satellite is the ephemeris-driven body.
type Satellite struct {
	Name       string
	State      ephem.StateVector
	Position   astro.Vec3 // render frame, Earth radii
	Velocity   astro.Vec3 // render frame, Earth radii/s
	AltitudeKm float64
	SpeedKmS   float64
	Clamped    bool
	Note       string
}

// Frame is everything a collaborator needs to draw one instant.
type Frame struct {
	Time      time.Time
	Epoch     astro.Epoch
	JulianDay float64
	Realtime  bool

	Result    astro.SunMoonResult
	Sun       Body
	Moon      Body
	Satellite *Satellite
	Observer  *astro.Observer
}

// Builder produces frames.
type Builder struct {
	store    *ephem.Store
	scales   Scales
	observer *astro.Observer
	satName  string
}

// Option configures a Builder.
type Option func(*Builder)

// WithScales overrides the render scales.
func WithScales(s Scales) Option {
	return func(b *Builder) {
		b.scales = s
	}
}

// WithObserver adds azimuth/elevation for a ground observer to each body.
func WithObserver(obs astro.Observer) Option {
	return func(b *Builder) {
		b.observer = &obs
	}
}

// WithSatelliteName sets the satellite's display name.
func WithSatelliteName(name string) Option {
	return func(b *Builder) {
		b.satName = name
	}
}

// NewBuilder creates a builder. store may be nil for a Sun/Moon-only scene.
func NewBuilder(store *ephem.Store, opts ...Option) *Builder {
	b := &Builder{
		store:   store,
		scales:  DefaultScales(),
		satName: "ISS",
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Scales returns the builder's render scales.
func (b *Builder) Scales() Scales {
	return b.scales
}

// Build computes the frame for a fixed epoch.
func (b *Builder) Build(e astro.Epoch) (*Frame, error) {
	res, err := astro.Compute(e)
	if err != nil {
		return nil, fmt.Errorf("build frame: %w", err)
	}
	t, terr := e.Time()
	if terr != nil {
		// Calendar-invalid epochs still compute; place them by Julian day.
		t = julian.JDToTime(res.JulianDay).UTC()
	}
	return b.build(res, t, false), nil
}

// BuildAt computes the frame for a wall-clock instant. Sun and Moon use the
// instant's minute; the satellite is queried at the full-precision time.
func (b *Builder) BuildAt(t time.Time) (*Frame, error) {
	res, err := astro.Compute(astro.EpochFromTime(t))
	if err != nil {
		return nil, fmt.Errorf("build frame: %w", err)
	}
	return b.build(res, t.UTC(), true), nil
}

func (b *Builder) build(res astro.SunMoonResult, t time.Time, realtime bool) *Frame {
	jd := res.JulianDay

	f := &Frame{
		Time:      t,
		Epoch:     res.Epoch,
		JulianDay: jd,
		Realtime:  realtime,
		Result:    res,
		Sun: Body{
			Name:       "Sun",
			Equatorial: res.Sun,
			Position:   astro.ToRenderFrame(res.Sun, b.scales.Sun, jd),
			DistanceKm: res.SunDistanceKm(),
		},
		Moon: Body{
			Name:       "Moon",
			Equatorial: res.Moon,
			Position:   astro.ToRenderFrame(res.Moon, b.scales.Moon, jd),
			DistanceKm: res.MoonDistanceKm(),
		},
	}

	if b.observer != nil {
		obs := *b.observer
		f.Observer = &obs
		sunHz := astro.EquatorialToHorizontal(res.Sun, obs, t)
		moonHz := astro.EquatorialToHorizontal(res.Moon, obs, t)
		f.Sun.Horizontal = &sunHz
		f.Moon.Horizontal = &moonHz
	}

	f.Satellite = b.satellite(t, jd)
	return f
}

func (b *Builder) satellite(t time.Time, jd float64) *Satellite {
	if b.store == nil {
		return nil
	}

	sv, err := b.store.Query(t)
	if errors.Is(err, ephem.ErrNotLoaded) {
		return nil
	}

	sat := &Satellite{
		Name:       b.satName,
		State:      sv,
		Position:   astro.RotateJ2000ToFrame(sv.Position, jd),
		Velocity:   astro.RotateJ2000ToFrame(sv.Velocity, jd),
		AltitudeKm: sv.Altitude(),
		SpeedKmS:   sv.Speed(),
	}
	if err != nil {
		sat.Clamped = errors.Is(err, ephem.ErrOutOfRange)
		sat.Note = err.Error()
	}
	return sat
}
