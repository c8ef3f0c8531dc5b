package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/scene"
	"github.com/litescript/ls-orrery/internal/state"
)

// Styles for the dashboard
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)

	rowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

// DashboardModel shows the numbers for the current frame.
type DashboardModel struct {
	width        int
	height       int
	eventScroll  int
	snapshot     state.Snapshot
	illumination []state.TimeSeries
}

// NewDashboardModel creates a new dashboard model.
func NewDashboardModel() DashboardModel {
	return DashboardModel{}
}

// SetSize updates the viewport size.
func (m DashboardModel) SetSize(width, height int) DashboardModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData updates the model with new data.
func (m DashboardModel) UpdateData(snapshot state.Snapshot, illumination []state.TimeSeries) DashboardModel {
	m.snapshot = snapshot
	m.illumination = illumination
	return m
}

// Update handles messages.
func (m DashboardModel) Update(msg tea.Msg) (DashboardModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			if m.eventScroll > 0 {
				m.eventScroll--
			}
		case "down", "j":
			if m.eventScroll < len(m.snapshot.Events)-1 {
				m.eventScroll++
			}
		}
	}
	return m, nil
}

// View renders the dashboard.
func (m DashboardModel) View() string {
	var b strings.Builder

	f := m.snapshot.Frame
	if f == nil {
		if m.snapshot.LastError != nil {
			b.WriteString(errorStyle.Render("Error: " + m.snapshot.LastError.Error()))
			b.WriteString("\n")
		}
		b.WriteString("Waiting for first frame...\n")
		return b.String()
	}

	b.WriteString(titleStyle.Render(fmt.Sprintf("%s UTC  ·  epoch %s  ·  JD %.5f",
		f.Time.Format("2006-01-02 15:04:05"), f.Epoch, f.JulianDay)))
	b.WriteString("\n")

	for _, issue := range f.Result.Issues {
		b.WriteString(warnStyle.Render("  ⚠ " + issue.Error()))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(m.renderBodies(f))
	b.WriteString("\n")
	b.WriteString(m.renderLunar(f))
	b.WriteString("\n")
	b.WriteString(m.renderSatellite(f))
	b.WriteString("\n")
	b.WriteString(m.renderEvents())

	return b.String()
}

func (m DashboardModel) renderBodies(f *scene.Frame) string {
	var b strings.Builder

	header := fmt.Sprintf("%-6s %-11s %-12s %-16s %-26s", "Body", "RA", "Dec", "Distance", "Render (x, y, z)")
	if f.Observer != nil {
		header += fmt.Sprintf(" %-7s %-6s", "Az", "El")
	}
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	for _, body := range []scene.Body{f.Sun, f.Moon} {
		row := fmt.Sprintf("%-6s %-11s %-12s %-16s %-26s",
			body.Name,
			scene.FormatRA(body.Equatorial.RAHours),
			scene.FormatDec(body.Equatorial.DecDeg),
			scene.FormatDistance(body.DistanceKm),
			fmt.Sprintf("(%.2f, %.2f, %.2f)", body.Position.X, body.Position.Y, body.Position.Z),
		)
		if body.Horizontal != nil {
			row += fmt.Sprintf(" %6.1f° %+5.1f°", body.Horizontal.AzDeg, body.Horizontal.ElDeg)
		}
		b.WriteString(rowStyle.Render(row))
		b.WriteString("\n")
	}
	return b.String()
}

func (m DashboardModel) renderLunar(f *scene.Frame) string {
	res := f.Result
	var b strings.Builder

	b.WriteString(titleStyle.Render("Moon"))
	b.WriteString("\n")

	line := func(label, value string) {
		b.WriteString("  " + labelStyle.Render(fmt.Sprintf("%-13s", label)) + rowStyle.Render(value) + "\n")
	}

	line("Phase", fmt.Sprintf("%s  %s %.1f%%", res.Phase(),
		renderIlluminationBar(res.IlluminatedFraction, 20), scene.Round(res.IlluminatedFraction*100, 1)))
	line("Trend", sparkline(m.illumination, 30))
	line("Elongation", fmt.Sprintf("%.2f°  (phase angle %.2f°)", scene.Round(res.Elongation, 2), scene.Round(res.PhaseAngle, 2)))
	line("Libration", fmt.Sprintf("lon %+.2f°  lat %+.2f°", scene.Round(res.EarthLongitude, 2), scene.Round(res.EarthLatitude, 2)))
	line("Sub-solar", fmt.Sprintf("lon %.2f°  lat %+.2f°", scene.Round(res.SunLongitude, 2), scene.Round(res.SunLatitude, 2)))
	line("Colongitude", fmt.Sprintf("%.2f°  (terminator %+.2f°)", scene.Round(res.Colongitude, 2), scene.Round(res.TerminatorLongitude, 2)))
	line("Position ang", fmt.Sprintf("bright limb %.1f°  axis %+.1f°", scene.Round(res.BrightLimbAngle, 1), scene.Round(res.PoleAngle, 1)))

	return b.String()
}

func (m DashboardModel) renderSatellite(f *scene.Frame) string {
	var b strings.Builder

	s := f.Satellite
	if s == nil {
		title := "Satellite"
		switch m.snapshot.Load.State {
		case state.LoadRunning:
			b.WriteString(titleStyle.Render(title) + labelStyle.Render("  loading ephemeris...") + "\n")
		case state.LoadFailed:
			b.WriteString(titleStyle.Render(title) + errorStyle.Render("  "+m.snapshot.Load.Err.Error()) + "\n")
		default:
			b.WriteString(titleStyle.Render(title) + labelStyle.Render("  no ephemeris") + "\n")
		}
		return b.String()
	}

	b.WriteString(titleStyle.Render(s.Name))
	if load := m.snapshot.Load; load.State == state.LoadDone {
		b.WriteString(labelStyle.Render(fmt.Sprintf("  %s, %d records", load.Source, load.Records)))
	}
	b.WriteString("\n")

	b.WriteString(rowStyle.Render(fmt.Sprintf("  record %s  alt %.1f km  speed %.3f km/s",
		s.State.Timestamp, s.AltitudeKm, s.SpeedKmS)))
	b.WriteString("\n")
	b.WriteString(rowStyle.Render(fmt.Sprintf("  render (%.4f, %.4f, %.4f)", s.Position.X, s.Position.Y, s.Position.Z)))
	b.WriteString("\n")
	if s.Clamped {
		b.WriteString(warnStyle.Render("  ⚠ " + s.Note))
		b.WriteString("\n")
	}
	return b.String()
}

func (m DashboardModel) renderEvents() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Events"))
	b.WriteString("\n")

	events := m.snapshot.Events
	if len(events) == 0 {
		b.WriteString(labelStyle.Render("  none"))
		b.WriteString("\n")
		return b.String()
	}

	maxRows := m.height - 22
	if maxRows < 3 {
		maxRows = 3
	}

	// Newest first
	start := len(events) - 1 - m.eventScroll
	for i := start; i >= 0 && start-i < maxRows; i-- {
		e := events[i]
		row := fmt.Sprintf("  %s  %-18s %s", e.Timestamp.Format("15:04:05"), e.Type, truncate(e.Detail, 60))
		b.WriteString(rowStyle.Render(row))
		b.WriteString("\n")
	}
	return b.String()
}

// renderIlluminationBar draws the illuminated fraction as a bar.
func renderIlluminationBar(k float64, width int) string {
	filled := int(k*float64(width) + 0.5)
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}

// sparkline renders the last n values (0..1) with block glyphs.
func sparkline(points []state.TimeSeries, n int) string {
	if len(points) == 0 {
		return ""
	}
	if len(points) > n {
		points = points[len(points)-n:]
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	var b strings.Builder
	for _, p := range points {
		idx := int(clampFloat(p.Value, 0, 1) * float64(len(chars)-1))
		b.WriteRune(chars[idx])
	}
	return b.String()
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// epochLabel formats an epoch for compact display.
func epochLabel(e astro.Epoch) string {
	y, mo, d, h, mi := e.Components()
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d", y, mo, d, h, mi)
}
