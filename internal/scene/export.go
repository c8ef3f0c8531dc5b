package scene

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/litescript/ls-orrery/internal/astro"
)

// FrameExport is the JSON-serializable representation of a frame.
type FrameExport struct {
	Time      time.Time        `json:"time"`
	Epoch     string           `json:"epoch"`
	JulianDay float64          `json:"julian_day"`
	DayNumber float64          `json:"day_number"`
	Realtime  bool             `json:"realtime"`
	Validity  string           `json:"validity"`
	Issues    []string         `json:"issues,omitempty"`
	Sun       BodyExport       `json:"sun"`
	Moon      BodyExport       `json:"moon"`
	Lunar     LunarExport      `json:"lunar"`
	Satellite *SatelliteExport `json:"satellite,omitempty"`
}

// Vec3Export is a JSON-friendly vector.
type Vec3Export struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// BodyExport is a JSON-friendly body.
type BodyExport struct {
	RAHours    float64    `json:"ra_hours"`
	DecDeg     float64    `json:"dec_deg"`
	Distance   float64    `json:"distance"`
	DistanceKm float64    `json:"distance_km"`
	Render     Vec3Export `json:"render"`
	AzDeg      *float64   `json:"az_deg,omitempty"`
	ElDeg      *float64   `json:"el_deg,omitempty"`
}

// LunarExport holds the selenographic quantities.
type LunarExport struct {
	Phase               string  `json:"phase"`
	IlluminatedFraction float64 `json:"illuminated_fraction"`
	PhaseAngle          float64 `json:"phase_angle"`
	Elongation          float64 `json:"elongation"`
	LibrationLongitude  float64 `json:"libration_lon"`
	LibrationLatitude   float64 `json:"libration_lat"`
	SubSolarLongitude   float64 `json:"subsolar_lon"`
	SubSolarLatitude    float64 `json:"subsolar_lat"`
	Colongitude         float64 `json:"colongitude"`
	TerminatorLongitude float64 `json:"terminator_lon"`
	BrightLimbAngle     float64 `json:"bright_limb_pa"`
	PoleAngle           float64 `json:"pole_pa"`
}

// SatelliteExport is a JSON-friendly satellite state.
type SatelliteExport struct {
	Name       string     `json:"name"`
	Record     string     `json:"record"`
	Adjusted   bool       `json:"adjusted"`
	AdjustedAt *time.Time `json:"adjusted_at,omitempty"`
	Position   Vec3Export `json:"position_j2000"`
	Velocity   Vec3Export `json:"velocity_j2000"`
	Render     Vec3Export `json:"render"`
	AltitudeKm float64    `json:"altitude_km"`
	SpeedKmS   float64    `json:"speed_km_s"`
	Clamped    bool       `json:"clamped"`
	Note       string     `json:"note,omitempty"`
}

func exportVec(v astro.Vec3) Vec3Export {
	return Vec3Export{X: v.X, Y: v.Y, Z: v.Z}
}

func exportBody(b Body) BodyExport {
	out := BodyExport{
		RAHours:    b.Equatorial.RAHours,
		DecDeg:     b.Equatorial.DecDeg,
		Distance:   b.Equatorial.Distance,
		DistanceKm: b.DistanceKm,
		Render:     exportVec(b.Position),
	}
	if b.Horizontal != nil {
		az, el := b.Horizontal.AzDeg, b.Horizontal.ElDeg
		out.AzDeg, out.ElDeg = &az, &el
	}
	return out
}

// Export converts a frame to its exportable form.
func Export(f *Frame) *FrameExport {
	res := f.Result
	out := &FrameExport{
		Time:      f.Time,
		Epoch:     f.Epoch.String(),
		JulianDay: f.JulianDay,
		DayNumber: res.DayNumber,
		Realtime:  f.Realtime,
		Validity:  res.Validity.String(),
		Sun:       exportBody(f.Sun),
		Moon:      exportBody(f.Moon),
		Lunar: LunarExport{
			Phase:               string(res.Phase()),
			IlluminatedFraction: res.IlluminatedFraction,
			PhaseAngle:          res.PhaseAngle,
			Elongation:          res.Elongation,
			LibrationLongitude:  res.EarthLongitude,
			LibrationLatitude:   res.EarthLatitude,
			SubSolarLongitude:   res.SunLongitude,
			SubSolarLatitude:    res.SunLatitude,
			Colongitude:         res.Colongitude,
			TerminatorLongitude: res.TerminatorLongitude,
			BrightLimbAngle:     res.BrightLimbAngle,
			PoleAngle:           res.PoleAngle,
		},
	}
	for _, issue := range res.Issues {
		out.Issues = append(out.Issues, issue.Error())
	}

	if s := f.Satellite; s != nil {
		sat := &SatelliteExport{
			Name:       s.Name,
			Record:     s.State.Timestamp,
			Adjusted:   s.State.Adjusted,
			Position:   exportVec(s.State.Position),
			Velocity:   exportVec(s.State.Velocity),
			Render:     exportVec(s.Position),
			AltitudeKm: s.AltitudeKm,
			SpeedKmS:   s.SpeedKmS,
			Clamped:    s.Clamped,
			Note:       s.Note,
		}
		if s.State.Adjusted {
			at := s.State.AdjustedAt
			sat.AdjustedAt = &at
		}
		out.Satellite = sat
	}
	return out
}

// WriteJSON writes the export as indented JSON.
func (e *FrameExport) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}

// Round rounds x to n decimals for display.
func Round(x float64, n int) float64 {
	p := math.Pow(10, float64(n))
	return math.Round(x*p) / p
}

// FormatRA formats right ascension hours as 22h11m53s.
func FormatRA(hours float64) string {
	total := int(math.Round(hours * 3600))
	total %= 24 * 3600
	return fmt.Sprintf("%02dh%02dm%02ds", total/3600, total/60%60, total%60)
}

// FormatDec formats declination degrees as -11°08'24".
func FormatDec(deg float64) string {
	sign := "+"
	if deg < 0 {
		sign = "-"
		deg = -deg
	}
	total := int(math.Round(deg * 3600))
	return fmt.Sprintf("%s%02d°%02d'%02d\"", sign, total/3600, total/60%60, total%60)
}

// FormatDistance formats kilometres with thousands separators.
func FormatDistance(km float64) string {
	s := fmt.Sprintf("%.0f", math.Abs(km))
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if km < 0 {
		return "-" + b.String() + " km"
	}
	return b.String() + " km"
}

// WriteSummary writes a text table for the frame.
func WriteSummary(w io.Writer, f *Frame) {
	res := f.Result

	mode := "fixed"
	if f.Realtime {
		mode = "realtime"
	}
	fmt.Fprintf(w, "Sun & Moon @ %s (epoch %s, %s)\n", f.Time.Format(time.RFC3339), f.Epoch, mode)
	fmt.Fprintln(w, strings.Repeat("─", 72))

	if res.Validity != astro.Valid {
		for _, issue := range res.Issues {
			fmt.Fprintf(w, "warning: %v\n", issue)
		}
	}

	fmt.Fprintf(w, "%-10s %-12s %-14s %-18s %s\n", "Body", "RA", "Dec", "Distance", "Render (x, y, z)")
	writeBody(w, f.Sun)
	writeBody(w, f.Moon)
	fmt.Fprintln(w, strings.Repeat("─", 72))

	fmt.Fprintf(w, "Phase        %s (%.1f%% lit, phase angle %.2f°)\n",
		res.Phase(), Round(res.IlluminatedFraction*100, 1), Round(res.PhaseAngle, 2))
	fmt.Fprintf(w, "Libration    lon %+.2f°  lat %+.2f°\n", Round(res.EarthLongitude, 2), Round(res.EarthLatitude, 2))
	fmt.Fprintf(w, "Sub-solar    lon %.2f°  lat %+.2f°\n", Round(res.SunLongitude, 2), Round(res.SunLatitude, 2))
	fmt.Fprintf(w, "Colongitude  %.2f°  terminator %+.2f°\n", Round(res.Colongitude, 2), Round(res.TerminatorLongitude, 2))
	fmt.Fprintf(w, "Position ang bright limb %.2f°  pole %+.2f°\n", Round(res.BrightLimbAngle, 2), Round(res.PoleAngle, 2))

	if f.Observer != nil && f.Sun.Horizontal != nil && f.Moon.Horizontal != nil {
		name := f.Observer.Name
		if name == "" {
			name = fmt.Sprintf("%.3f, %.3f", f.Observer.LatDeg, f.Observer.LonDeg)
		}
		fmt.Fprintf(w, "Observer     %s: Sun az %.1f° el %+.1f°, Moon az %.1f° el %+.1f°\n", name,
			f.Sun.Horizontal.AzDeg, f.Sun.Horizontal.ElDeg, f.Moon.Horizontal.AzDeg, f.Moon.Horizontal.ElDeg)
	}

	if s := f.Satellite; s != nil {
		fmt.Fprintln(w, strings.Repeat("─", 72))
		fmt.Fprintf(w, "%-10s record %s  alt %.1f km  speed %.3f km/s\n",
			s.Name, s.State.Timestamp, s.AltitudeKm, s.SpeedKmS)
		fmt.Fprintf(w, "%-10s render (%.4f, %.4f, %.4f)\n", "", s.Position.X, s.Position.Y, s.Position.Z)
		if s.Note != "" {
			fmt.Fprintf(w, "%-10s %s\n", "", s.Note)
		}
	}
}

func writeBody(w io.Writer, b Body) {
	fmt.Fprintf(w, "%-10s %-12s %-14s %-18s (%.3f, %.3f, %.3f)\n",
		b.Name,
		FormatRA(b.Equatorial.RAHours),
		FormatDec(b.Equatorial.DecDeg),
		FormatDistance(b.DistanceKm),
		b.Position.X, b.Position.Y, b.Position.Z,
	)
}
