// Package ui provides the terminal user interface using Bubble Tea.
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/ephem"
	"github.com/litescript/ls-orrery/internal/metrics"
	"github.com/litescript/ls-orrery/internal/scene"
	"github.com/litescript/ls-orrery/internal/state"
	"github.com/litescript/ls-orrery/internal/version"
)

// ViewMode represents the current UI view.
type ViewMode int

const (
	ViewDashboard ViewMode = iota
	ViewMoon
	ViewOrbit
)

const viewCount = 3

// Msg types for Bubble Tea
type (
	// TickMsg triggers a frame rebuild.
	TickMsg time.Time

	// AnimTickMsg triggers fast animation updates.
	AnimTickMsg time.Time

	// LoadDoneMsg signals the ephemeris load finished.
	LoadDoneMsg struct {
		Result ephem.LoadResult
	}
)

// Model is the root Bubble Tea model.
type Model struct {
	// Dependencies
	state   *state.Manager
	builder *scene.Builder
	metrics *metrics.Metrics
	clock   func() time.Time

	// UI state
	viewMode  ViewMode
	width     int
	height    int
	ready     bool
	statusMsg string
	animTick  int

	// Sub-models
	dashboard DashboardModel
	moon      MoonViewModel
	orbit     OrbitViewModel

	snapshot state.Snapshot
}

// New creates a new root UI model. m may be nil.
func New(stateMgr *state.Manager, builder *scene.Builder, m *metrics.Metrics) Model {
	return Model{
		state:     stateMgr,
		builder:   builder,
		metrics:   m,
		clock:     time.Now,
		viewMode:  ViewDashboard,
		dashboard: NewDashboardModel(),
		moon:      NewMoonViewModel(),
		orbit:     NewOrbitViewModel(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return TickMsg(m.clock()) },
		animTickCmd(),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit

		case "1", "d":
			m.viewMode = ViewDashboard
		case "2", "m":
			m.viewMode = ViewMoon
		case "3", "o":
			m.viewMode = ViewOrbit
		case "tab":
			m.viewMode = (m.viewMode + 1) % viewCount

		case "f":
			mode := m.state.ToggleMode()
			m.statusMsg = "Mode: " + mode.String()
			m.refresh()
		case "n":
			m.state.SetRealtime()
			m.statusMsg = "Mode: realtime"
			m.refresh()
		case "[", "]", "{", "}":
			m.stepEpoch(msg.String())
			m.refresh()

		default:
			cmds = append(cmds, m.updateActiveView(msg))
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		// Logo and tabs take ~10 lines, footer ~2
		contentHeight := msg.Height - 12
		m.dashboard = m.dashboard.SetSize(msg.Width, contentHeight)
		m.moon = m.moon.SetSize(msg.Width, contentHeight)
		m.orbit = m.orbit.SetSize(msg.Width, contentHeight)

	case TickMsg:
		m.refresh()
		cmds = append(cmds, tickCmd(m.state.RefreshInterval()))

	case AnimTickMsg:
		cmds = append(cmds, animTickCmd())
		m.animTick++

	case LoadDoneMsg:
		if msg.Result.Err != nil {
			m.statusMsg = "Ephemeris load failed: " + msg.Result.Err.Error()
		} else {
			m.statusMsg = fmt.Sprintf("Ephemeris loaded: %d records from %s",
				msg.Result.Report.Records, msg.Result.Source)
		}
		m.refresh()

	default:
		cmds = append(cmds, m.updateActiveView(msg))
	}

	return m, tea.Batch(cmds...)
}

// refresh builds a frame for the current mode and pushes the snapshot to
// the sub-models.
func (m *Model) refresh() {
	mode, fixed := m.state.Mode()

	start := m.clock()
	var (
		f   *scene.Frame
		err error
	)
	if mode == state.ModeFixed {
		f, err = m.builder.Build(fixed)
	} else {
		f, err = m.builder.BuildAt(start)
	}
	elapsed := m.clock().Sub(start)

	m.state.Update(f, elapsed, err)
	if err == nil && m.metrics != nil {
		m.metrics.ObserveFrame(f, elapsed)
	}

	m.snapshot = m.state.Snapshot()
	m.dashboard = m.dashboard.UpdateData(m.snapshot, m.state.IlluminationHistory())
	m.moon = m.moon.UpdateData(m.snapshot)
	m.orbit = m.orbit.UpdateData(m.snapshot)
}

// stepEpoch moves the fixed epoch by an hour ([ ]) or a day ({ }),
// switching to fixed mode first if needed.
func (m *Model) stepEpoch(key string) {
	mode, fixed := m.state.Mode()
	base := m.clock().UTC()
	if mode == state.ModeFixed {
		if t, err := fixed.Time(); err == nil {
			base = t
		}
	} else if m.snapshot.Frame != nil {
		base = m.snapshot.Frame.Time
	}

	var d time.Duration
	switch key {
	case "[":
		d = -time.Hour
	case "]":
		d = time.Hour
	case "{":
		d = -24 * time.Hour
	case "}":
		d = 24 * time.Hour
	}

	e := astro.EpochFromTime(base.Add(d))
	m.state.SetFixed(e)
	m.statusMsg = "Epoch: " + e.String()
}

func (m *Model) updateActiveView(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.viewMode {
	case ViewDashboard:
		m.dashboard, cmd = m.dashboard.Update(msg)
	case ViewMoon:
		m.moon, cmd = m.moon.Update(msg)
	case ViewOrbit:
		m.orbit, cmd = m.orbit.Update(msg)
	}
	return cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var content string
	switch m.viewMode {
	case ViewDashboard:
		content = m.dashboard.View()
	case ViewMoon:
		content = m.moon.View()
	case ViewOrbit:
		content = m.orbit.View()
	}

	return m.renderHeader() + "\n" + content + "\n" + m.renderFooter()
}

func (m Model) renderHeader() string {
	return m.renderLogo() + m.renderTabs() + "\n"
}

func (m Model) renderLogo() string {
	logo := []string{
		`  ╦  ╔═╗   ╔═╗╦═╗╦═╗╔═╗╦═╗╦ ╦`,
		`  ║  ╚═╗───║ ║╠╦╝╠╦╝║╣ ╠╦╝╚╦╝`,
		`  ╩═╝╚═╝   ╚═╝╩╚═╩╚═╚═╝╩╚═ ╩ `,
	}

	var b strings.Builder
	b.WriteString("\n")

	for row, line := range logo {
		runes := []rune(line)
		for col, r := range runes {
			color := gradientColor(col, row, len(runes), len(logo))
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(string(r)))
		}
		b.WriteString("\n")
	}

	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	b.WriteString(muted.Render(fmt.Sprintf("  Sun · Moon · ISS  |  v%s", version.Version)))
	b.WriteString("\n\n")

	return b.String()
}

// gradientColor returns a hex color for a position in the logo gradient:
// deep blue through silver to a warm sunlit gold.
func gradientColor(col, row, width, height int) string {
	xRatio := float64(col) / float64(width)
	yRatio := float64(row) / float64(height)

	var r, g, b float64
	if xRatio < 0.5 {
		t := xRatio / 0.5
		r = 59 + t*(203-59)
		g = 130 + t*(213-130)
		b = 246 + t*(225-246)
	} else {
		t := (xRatio - 0.5) / 0.5
		r = 203 + t*(250-203)
		g = 213 + t*(204-213)
		b = 225 + t*(21-225)
	}

	// Brighter at top, darker toward bottom
	f := 1.0 - yRatio*0.4
	return fmt.Sprintf("#%02X%02X%02X", clampByte(r*f), clampByte(g*f), clampByte(b*f))
}

func clampByte(v float64) int {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return int(v)
}

func (m Model) renderTabs() string {
	tabs := []string{"[1] Dashboard", "[2] Moon", "[3] Orbit"}
	activeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#9D4EDD")).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))

	var parts []string
	for i, tab := range tabs {
		if ViewMode(i) == m.viewMode {
			parts = append(parts, activeStyle.Render("▶ "+tab))
		} else {
			parts = append(parts, dimStyle.Render("  "+tab))
		}
	}
	return "  " + strings.Join(parts, "  ")
}

func (m Model) renderFooter() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#E84A27"))
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#7B2CBF"))

	spinnerFrames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	spinner := spinnerFrames[m.animTick%len(spinnerFrames)]

	snap := m.snapshot
	var status string
	switch {
	case snap.LastError != nil:
		status = errorStyle.Render("ERROR: " + snap.LastError.Error())
	case snap.Frame != nil:
		mode := snap.Mode.String()
		if snap.Mode == state.ModeFixed {
			mode += " " + epochLabel(snap.FixedEpoch)
		}
		status = accentStyle.Render(spinner) + dimStyle.Render(" "+mode)
		if snap.BuildDuration > 0 {
			status += dimStyle.Render(" (" + snap.BuildDuration.Round(time.Microsecond).String() + ")")
		}
	default:
		status = accentStyle.Render(spinner) + " " + m.renderShimmerText("Computing...")
	}

	switch snap.Load.State {
	case state.LoadRunning:
		status += "  " + m.renderShimmerText("loading ephemeris")
	case state.LoadFailed:
		status += "  " + errorStyle.Render("ephemeris unavailable")
	}

	var help string
	switch m.viewMode {
	case ViewMoon:
		help = dimStyle.Render("l: libration marker")
	case ViewOrbit:
		help = dimStyle.Render("+/-: zoom | 0: reset")
	default:
		help = dimStyle.Render("↑↓: events")
	}
	help += dimStyle.Render(" | f: fixed/realtime | [ ]: ±1h | { }: ±1d | n: now | tab: switch view")

	footer := "  " + status + "  " + dimStyle.Render("|") + "  " + help
	if m.statusMsg != "" {
		footer += "\n  " + dimStyle.Render(m.statusMsg)
	}
	return footer
}

func tickCmd(d time.Duration) tea.Cmd {
	if d <= 0 {
		d = time.Second
	}
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func animTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return AnimTickMsg(t)
	})
}

// SendLoadDone creates a command that reports a finished ephemeris load.
func SendLoadDone(res ephem.LoadResult) tea.Cmd {
	return func() tea.Msg {
		return LoadDoneMsg{Result: res}
	}
}

// renderShimmerText renders text with a subtle moving shine effect.
func (m Model) renderShimmerText(text string) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return ""
	}

	pos := m.animTick % (len(runes) + 8)

	var result strings.Builder
	for i, r := range runes {
		dist := i - pos + 4
		if dist < 0 {
			dist = -dist
		}

		var r8, g8, b8 int
		switch {
		case dist <= 1:
			r8, g8, b8 = 180, 160, 220
		case dist <= 3:
			r8, g8, b8 = 140, 120, 180
		case dist <= 5:
			r8, g8, b8 = 110, 90, 150
		default:
			r8, g8, b8 = 80, 70, 120
		}

		hexColor := fmt.Sprintf("#%02X%02X%02X", r8, g8, b8)
		result.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(hexColor)).Render(string(r)))
	}
	return result.String()
}
