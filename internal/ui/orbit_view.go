package ui

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/scene"
	"github.com/litescript/ls-orrery/internal/state"
)

// Discrete zoom levels for clean stepping
var zoomLevels = []float64{0.5, 0.75, 1.0, 1.5, 2.0, 3.0, 5.0, 10.0, 25.0, 50.0}

const defaultZoom = 2 // index of 1.0

// Reference rings in Earth radii.
var ringRadii = []float64{10, 30, 60}

// OrbitViewModel renders a top-down view of the render frame (X right,
// Z down the screen) centred on Earth, in Earth radii.
type OrbitViewModel struct {
	width     int
	height    int
	zoomLevel int
	snapshot  state.Snapshot
}

// NewOrbitViewModel creates a new orbit view.
func NewOrbitViewModel() OrbitViewModel {
	return OrbitViewModel{zoomLevel: defaultZoom}
}

func (m OrbitViewModel) scale() float64 {
	if m.zoomLevel < 0 || m.zoomLevel >= len(zoomLevels) {
		return 1.0
	}
	return zoomLevels[m.zoomLevel]
}

// SetSize updates the viewport size.
func (m OrbitViewModel) SetSize(width, height int) OrbitViewModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData updates the model with new data.
func (m OrbitViewModel) UpdateData(snapshot state.Snapshot) OrbitViewModel {
	m.snapshot = snapshot
	return m
}

// Update handles input messages.
func (m OrbitViewModel) Update(msg tea.Msg) (OrbitViewModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "+", "=":
			if m.zoomLevel < len(zoomLevels)-1 {
				m.zoomLevel++
			}
		case "-":
			if m.zoomLevel > 0 {
				m.zoomLevel--
			}
		case "0":
			m.zoomLevel = defaultZoom
		}
	}
	return m, nil
}

// View renders the canvas and HUD.
func (m OrbitViewModel) View() string {
	if m.width < 40 || m.height < 10 {
		return "Terminal too small for orbit view"
	}
	f := m.snapshot.Frame
	if f == nil {
		return "Waiting for first frame...\n"
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.buildCanvas(f), m.renderHUD(f))
}

// earthRadii converts a body's render position to Earth radii using its
// true distance, independent of the display scales.
func earthRadii(b scene.Body) astro.Vec3 {
	return b.Position.Normalized().Scale(astro.KmToEarthRadii(b.DistanceKm))
}

// buildCanvas renders the Earth-Moon system to a string canvas.
func (m OrbitViewModel) buildCanvas(f *scene.Frame) string {
	canvasH := m.height - 3
	if canvasH < 5 {
		canvasH = 5
	}
	canvasW := m.width

	grid := make([][]rune, canvasH)
	for y := range grid {
		grid[y] = make([]rune, canvasW)
		for x := range grid[y] {
			grid[y][x] = ' '
		}
	}

	cx := canvasW / 2
	cy := canvasH / 2

	// 70 Earth radii fit the half canvas at 1x.
	maxDisplayR := float64(min(cx, cy*2)) * 0.9
	displayScale := maxDisplayR / 70 * m.scale()

	for _, r := range ringRadii {
		drawCircle(grid, cx, cy, r*displayScale)
	}

	project := func(v astro.Vec3) (int, int) {
		return cx + int(math.Round(v.X*displayScale)), cy + int(math.Round(v.Z*displayScale*0.5))
	}
	inside := func(x, y int) bool {
		return x >= 0 && x < canvasW && y >= 0 && y < canvasH
	}

	// The Sun is always far off canvas; pin it to the edge along its direction.
	sx, sy := edgePoint(cx, cy, canvasW, canvasH, f.Sun.Position.X, f.Sun.Position.Z*0.5)
	grid[sy][sx] = '☉'

	if x, y := project(earthRadii(f.Moon)); inside(x, y) {
		grid[y][x] = '☾'
	}

	if s := f.Satellite; s != nil {
		if x, y := project(s.Position); inside(x, y) && (x != cx || y != cy) {
			grid[y][x] = '◇'
		}
	}

	grid[cy][cx] = '⊕'

	return renderOrbitGrid(grid)
}

// edgePoint walks from the centre along (dx, dy) to the last cell on the
// canvas border.
func edgePoint(cx, cy, w, h int, dx, dy float64) (int, int) {
	n := math.Hypot(dx, dy)
	if n == 0 {
		return cx, 0
	}
	dx, dy = dx/n, dy/n
	tx := math.Inf(1)
	if dx > 0 {
		tx = float64(w-1-cx) / dx
	} else if dx < 0 {
		tx = float64(-cx) / dx
	}
	ty := math.Inf(1)
	if dy > 0 {
		ty = float64(h-1-cy) / dy
	} else if dy < 0 {
		ty = float64(-cy) / dy
	}
	t := math.Min(tx, ty)
	x := cx + int(math.Round(dx*t))
	y := cy + int(math.Round(dy*t))
	return min(max(x, 0), w-1), min(max(y, 0), h-1)
}

func drawCircle(grid [][]rune, cx, cy int, r float64) {
	if r < 1 {
		return
	}

	h := len(grid)
	w := len(grid[0])

	steps := int(2 * math.Pi * r)
	if steps < 8 {
		steps = 8
	}
	if steps > 360 {
		steps = 360
	}

	for i := 0; i < steps; i++ {
		theta := 2 * math.Pi * float64(i) / float64(steps)
		x := cx + int(r*math.Cos(theta))
		y := cy - int(r*math.Sin(theta)*0.5) // Aspect ratio correction

		if x >= 0 && x < w && y >= 0 && y < h && grid[y][x] == ' ' {
			grid[y][x] = '·'
		}
	}
}

func renderOrbitGrid(grid [][]rune) string {
	var b strings.Builder

	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	sunStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true)
	earthStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	moonStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	scStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("46"))

	for _, row := range grid {
		for _, ch := range row {
			var style lipgloss.Style
			switch ch {
			case ' ':
				b.WriteRune(ch)
				continue
			case '·':
				style = dimStyle
			case '☉':
				style = sunStyle
			case '⊕':
				style = earthStyle
			case '☾':
				style = moonStyle
			case '◇':
				style = scStyle
			}
			b.WriteString(style.Render(string(ch)))
		}
		b.WriteRune('\n')
	}
	return b.String()
}

func (m OrbitViewModel) renderHUD(f *scene.Frame) string {
	var b strings.Builder

	hudLabel := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	value := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))

	moon := earthRadii(f.Moon)
	b.WriteString(hudLabel.Render("☾ Moon "))
	b.WriteString(value.Render(fmt.Sprintf("%.1f R⊕ (%s)", moon.Norm(), scene.FormatDistance(f.Moon.DistanceKm))))
	if s := f.Satellite; s != nil {
		b.WriteString("  ")
		b.WriteString(hudLabel.Render("◇ " + s.Name + " "))
		b.WriteString(value.Render(fmt.Sprintf("%.3f R⊕, alt %.0f km", s.Position.Norm(), s.AltitudeKm)))
	}
	b.WriteString("\n")

	b.WriteString(hudLabel.Render("Zoom:"))
	b.WriteString(value.Render(fmt.Sprintf("%.2gx", m.scale())))
	b.WriteString("  ")
	b.WriteString(hudLabel.Render("Rings:"))
	b.WriteString(value.Render("10, 30, 60 R⊕"))
	b.WriteString("  ")
	b.WriteString(hudLabel.Render("☉ pinned to edge"))

	return b.String()
}
