package ui

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-orrery/internal/state"
)

// Disk glyphs
const (
	glyphLit      = '█'
	glyphShadow   = '░'
	glyphSubEarth = '+'
)

// MoonViewModel draws the lunar disk as seen from Earth, north up and
// east to the left, with the terminator placed from the phase angle and
// the bright limb position angle.
type MoonViewModel struct {
	width      int
	height     int
	showMarker bool
	snapshot   state.Snapshot
}

// NewMoonViewModel creates a new moon view.
func NewMoonViewModel() MoonViewModel {
	return MoonViewModel{showMarker: true}
}

// SetSize updates the viewport size.
func (m MoonViewModel) SetSize(width, height int) MoonViewModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData updates the model with new data.
func (m MoonViewModel) UpdateData(snapshot state.Snapshot) MoonViewModel {
	m.snapshot = snapshot
	return m
}

// Update handles messages.
func (m MoonViewModel) Update(msg tea.Msg) (MoonViewModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "l" {
		m.showMarker = !m.showMarker
	}
	return m, nil
}

// View renders the disk and a short legend.
func (m MoonViewModel) View() string {
	f := m.snapshot.Frame
	if f == nil {
		return "Waiting for first frame...\n"
	}
	if m.width < 30 || m.height < 10 {
		return "Terminal too small for moon view"
	}

	// Terminal cells are about twice as tall as wide.
	radius := m.height/2 - 2
	if radius > m.width/4-2 {
		radius = m.width/4 - 2
	}
	if radius < 3 {
		radius = 3
	}

	res := f.Result
	grid := moonDisk(radius, res.PhaseAngle, res.BrightLimbAngle)
	if m.showMarker {
		markSubEarth(grid, radius, res.EarthLongitude, res.EarthLatitude, res.PoleAngle)
	}

	litStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("230"))
	shadowStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("237"))
	markStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)

	var b strings.Builder
	for _, row := range grid {
		b.WriteString("  ")
		for _, ch := range row {
			switch ch {
			case glyphLit:
				b.WriteString(litStyle.Render(string(ch)))
			case glyphShadow:
				b.WriteString(shadowStyle.Render(string(ch)))
			case glyphSubEarth:
				b.WriteString(markStyle.Render(string(ch)))
			default:
				b.WriteRune(ch)
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(labelStyle.Render(fmt.Sprintf("  %s · %.1f%% lit · bright limb PA %.1f° · N up, E left",
		res.Phase(), res.IlluminatedFraction*100, res.BrightLimbAngle)))
	b.WriteString("\n")
	if m.showMarker {
		b.WriteString(labelStyle.Render(fmt.Sprintf("  + sub-Earth point: libration lon %+.2f° lat %+.2f°",
			res.EarthLongitude, res.EarthLatitude)))
		b.WriteString("\n")
	}
	return b.String()
}

// moonDisk returns a character grid of the disk. Each cell is lit when
// the surface normal under it faces the Sun. With the observer on +z,
// the Sun direction is tilted from +z by the phase angle toward the
// bright limb position angle (measured from north through east).
func moonDisk(radius int, phaseAngle, brightLimb float64) [][]rune {
	i := phaseAngle * math.Pi / 180
	chi := brightLimb * math.Pi / 180
	sunEast := math.Sin(i) * math.Sin(chi)
	sunNorth := math.Sin(i) * math.Cos(chi)
	sunZ := math.Cos(i)

	w := 4*radius + 1
	h := 2*radius + 1
	grid := make([][]rune, h)
	for row := range grid {
		grid[row] = make([]rune, w)
		north := float64(radius-row) / float64(radius)
		for col := range grid[row] {
			// East is to the left
			east := -float64(col-2*radius) / float64(2*radius)
			rr := east*east + north*north
			if rr > 1 {
				grid[row][col] = ' '
				continue
			}
			z := math.Sqrt(1 - rr)
			if east*sunEast+north*sunNorth+z*sunZ > 0 {
				grid[row][col] = glyphLit
			} else {
				grid[row][col] = glyphShadow
			}
		}
	}
	return grid
}

// markSubEarth places the sub-Earth point. Libration moves it away from
// the disk centre along selenographic longitude and latitude; the lunar
// axis is tilted by the pole position angle.
func markSubEarth(grid [][]rune, radius int, lon, lat, poleAngle float64) {
	// The point of the surface at selenographic (lon, lat) relative to the
	// mean centre, seen along the sub-Earth direction.
	x := math.Sin(-lon*math.Pi/180) * math.Cos(lat*math.Pi/180)
	y := math.Sin(-lat * math.Pi / 180)

	p := poleAngle * math.Pi / 180
	east := x*math.Cos(p) + y*math.Sin(p)
	north := -x*math.Sin(p) + y*math.Cos(p)

	col := 2*radius - int(math.Round(east*float64(2*radius)))
	row := radius - int(math.Round(north*float64(radius)))
	if row < 0 || row >= len(grid) || col < 0 || col >= len(grid[row]) {
		return
	}
	grid[row][col] = glyphSubEarth
}

// litFraction returns the share of disk cells that are lit.
func litFraction(grid [][]rune) float64 {
	var lit, total int
	for _, row := range grid {
		for _, ch := range row {
			switch ch {
			case glyphLit:
				lit++
				total++
			case glyphShadow, glyphSubEarth:
				total++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(lit) / float64(total)
}
