// Package astro provides low-precision Sun and Moon positions, lunar
// selenographic geometry and the coordinate transforms used to place them
// in a render frame.
package astro

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// J2000 is the Julian day of the J2000.0 reference epoch.
const J2000 = 2451545.0

// DaysPerCentury is the length of a Julian century in days.
const DaysPerCentury = 36525.0

// Algorithm validity range for the low-precision series, as epochs.
const (
	MinValidEpoch Epoch = 16000000
	MaxValidEpoch Epoch = 23000000
)

// Calendar validation errors. Issues returned by Epoch.Validate wrap one of these.
var (
	ErrOutOfAlgorithmRange = errors.New("date outside the accurate range of the algorithm")
	ErrInvalidMonth        = errors.New("month out of range")
	ErrInvalidDay          = errors.New("wrong number of days for the month")
	ErrInvalidHour         = errors.New("hour out of range")
	ErrInvalidMinute       = errors.New("minute out of range")
	ErrFatalEpoch          = errors.New("epoch is not a usable number")
)

// CalendarError describes one problem found in an epoch.
type CalendarError struct {
	Epoch Epoch
	Err   error
}

func (e *CalendarError) Error() string {
	return fmt.Sprintf("epoch %s: %v", e.Epoch, e.Err)
}

func (e *CalendarError) Unwrap() error {
	return e.Err
}

// Epoch is a UTC date-time encoded as YYYYMMDD.HHmm, e.g. 20230219.2056.
// The fractional part holds hours and minutes, not a fraction of a day.
type Epoch float64

// EpochFromTime encodes t (converted to UTC) as an Epoch, truncated to the minute.
func EpochFromTime(t time.Time) Epoch {
	t = t.UTC()
	s := fmt.Sprintf("%d.%02d%02d",
		10000*t.Year()+100*int(t.Month())+t.Day(), t.Hour(), t.Minute())
	v, _ := strconv.ParseFloat(s, 64)
	return Epoch(v)
}

// CurrentUTCEpoch returns the wall-clock time as an Epoch.
func CurrentUTCEpoch() Epoch {
	return EpochFromTime(time.Now())
}

// ParseEpoch parses a YYYYMMDD.HHmm string.
func ParseEpoch(s string) (Epoch, error) {
	s = strings.TrimSpace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse epoch %q: %w", s, err)
	}
	e := Epoch(v)
	if !e.finite() {
		return 0, fmt.Errorf("parse epoch %q: %w", s, ErrFatalEpoch)
	}
	return e, nil
}

// String formats the epoch with four decimals (HHmm).
func (e Epoch) String() string {
	return strconv.FormatFloat(float64(e), 'f', 4, 64)
}

func (e Epoch) finite() bool {
	g := float64(e)
	return !math.IsNaN(g) && !math.IsInf(g, 0) && g > 0
}

// Components splits the epoch into calendar fields. The HHmm fraction is
// rounded as a whole so that binary representation error cannot turn
// 09:00 into 08:100.
func (e Epoch) Components() (year, month, day, hour, minute int) {
	g := float64(e)
	y := math.Floor(g / 10000)
	m := math.Floor((g - y*10000) / 100)
	d := math.Floor(g - y*10000 - m*100)
	hhmm := int(math.Round((g - math.Floor(g)) * 10000))
	return int(y), int(m), int(d), hhmm / 100, hhmm % 100
}

// Validate reports every calendar problem in the epoch. An empty result
// means the epoch is a real date inside the algorithm's range.
func (e Epoch) Validate() []error {
	if !e.finite() {
		return []error{&CalendarError{Epoch: e, Err: ErrFatalEpoch}}
	}

	var issues []error
	add := func(err error) {
		issues = append(issues, &CalendarError{Epoch: e, Err: err})
	}

	if e < MinValidEpoch || e > MaxValidEpoch {
		add(ErrOutOfAlgorithmRange)
	}

	y, m, d, h, min := e.Components()
	if m < 1 || m > 12 {
		add(ErrInvalidMonth)
	} else if !IsValidCalendarDate(y, m, d) {
		add(ErrInvalidDay)
	}
	if h > 23 {
		add(ErrInvalidHour)
	}
	if min > 59 {
		add(ErrInvalidMinute)
	}
	return issues
}

// Time converts the epoch to a UTC time. Invalid epochs return an error.
func (e Epoch) Time() (time.Time, error) {
	if issues := e.Validate(); len(issues) > 0 {
		for _, issue := range issues {
			if !errors.Is(issue, ErrOutOfAlgorithmRange) {
				return time.Time{}, issue
			}
		}
	}
	y, m, d, h, min := e.Components()
	return time.Date(y, time.Month(m), d, h, min, 0, 0, time.UTC), nil
}

// DayOffsetSinceJ2000 returns days since J2000.0 for a calendar date and
// fractional hour of day. Dates on or before 1582-10-04 are treated as
// Julian calendar dates.
func DayOffsetSinceJ2000(year, month, day int, hour float64) float64 {
	greg := year*10000 + month*100 + day

	y := float64(year)
	m := float64(month)
	if month == 1 || month == 2 {
		y--
		m += 12
	}

	b := 0.0
	if greg > 15821004 {
		a := math.Floor(y / 100)
		b = 2 - a + math.Floor(a/4)
	}

	c := math.Floor(365.25 * y)
	d1 := math.Floor(30.6001 * (m + 1))
	return b + c + d1 - 730550.5 + float64(day) + hour/24
}

// DayOffset returns the J2000 day offset of the epoch.
func (e Epoch) DayOffset() float64 {
	y, m, d, h, min := e.Components()
	return DayOffsetSinceJ2000(y, m, d, float64(h)+float64(min)/60)
}

// IsLeapYear applies the Gregorian leap year rule.
func IsLeapYear(year int) bool {
	return julian.LeapYearGregorian(year)
}

// IsValidCalendarDate reports whether day exists in the given month.
func IsValidCalendarDate(year, month, day int) bool {
	if month < 1 || month > 12 || day < 1 {
		return false
	}
	switch month {
	case 2:
		if IsLeapYear(year) {
			return day <= 29
		}
		return day <= 28
	case 4, 6, 9, 11:
		return day <= 30
	default:
		return day <= 31
	}
}

// JulianDay returns the Julian day of t.
func JulianDay(t time.Time) float64 {
	return julian.TimeToJD(t.UTC())
}

// Centuries converts a J2000 day offset to Julian centuries.
func Centuries(days float64) float64 {
	return days / DaysPerCentury
}
