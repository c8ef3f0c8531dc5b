// Package ephem loads satellite state vectors from ephemeris text and
// answers point-in-time position queries by constant-velocity
// extrapolation from the nearest preceding vector.
package ephem

import (
	"errors"
	"fmt"
	"time"

	"github.com/litescript/ls-orrery/internal/astro"
)

// DefaultSentinel is the line after which data records start.
const DefaultSentinel = "META_STOP"

var (
	// ErrNotLoaded is returned by queries made before a series is installed.
	ErrNotLoaded = errors.New("ephemeris not loaded")
	// ErrNoSentinel means the sentinel line never appeared.
	ErrNoSentinel = errors.New("ephemeris sentinel line not found")
	// ErrNoRecords means no data line could be parsed.
	ErrNoRecords = errors.New("ephemeris has no valid records")
	// ErrOutOfRange is matched by every *OutOfRangeError.
	ErrOutOfRange = errors.New("query time outside ephemeris range")
)

// StateVector is one ephemeris record. Position is in Earth radii and
// Velocity in Earth radii per second, both in the J2000 equatorial frame.
type StateVector struct {
	Timestamp string    // as written in the source
	Time      time.Time // parsed, UTC
	Position  astro.Vec3
	Velocity  astro.Vec3

	// Adjusted is set once Position has been advanced past Time; AdjustedAt
	// is the instant Position now describes.
	Adjusted   bool
	AdjustedAt time.Time
}

// EffectiveTime is the instant Position currently describes.
func (v StateVector) EffectiveTime() time.Time {
	if v.Adjusted {
		return v.AdjustedAt
	}
	return v.Time
}

// Altitude returns the height above the mean Earth radius in kilometres.
func (v StateVector) Altitude() float64 {
	return (v.Position.Norm() - 1) * astro.EarthRadiusKm
}

// Speed returns the velocity magnitude in km/s.
func (v StateVector) Speed() float64 {
	return v.Velocity.Norm() * astro.EarthRadiusKm
}

// Series is an ordered list of state vectors in file order.
type Series struct {
	Source  string
	Vectors []StateVector
}

// Len returns the number of vectors.
func (s *Series) Len() int {
	return len(s.Vectors)
}

// First returns the first vector's time.
func (s *Series) First() time.Time {
	return s.Vectors[0].Time
}

// Last returns the last vector's time.
func (s *Series) Last() time.Time {
	return s.Vectors[len(s.Vectors)-1].Time
}

// Side says which end of the series a query fell off.
type Side int

const (
	BeforeFirst Side = iota
	AfterLast
)

func (s Side) String() string {
	if s == BeforeFirst {
		return "before first record"
	}
	return "after last record"
}

// OutOfRangeError reports a query outside the loaded series. The vector
// returned with it is the boundary record, unmodified.
type OutOfRangeError struct {
	At       time.Time
	Side     Side
	Boundary time.Time
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("query at %s is %s (%s)",
		e.At.UTC().Format(time.RFC3339), e.Side, e.Boundary.UTC().Format(time.RFC3339))
}

func (e *OutOfRangeError) Is(target error) bool {
	return target == ErrOutOfRange
}
