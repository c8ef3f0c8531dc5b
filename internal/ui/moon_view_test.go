package ui

import (
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/litescript/ls-orrery/internal/state"
)

func TestMoonDiskFullAndNew(t *testing.T) {
	full := litFraction(moonDisk(8, 0, 0))
	if full < 0.95 {
		t.Errorf("full moon lit fraction = %.3f, want ~1", full)
	}

	dark := litFraction(moonDisk(8, 180, 0))
	if dark > 0.05 {
		t.Errorf("new moon lit fraction = %.3f, want ~0", dark)
	}
}

func TestMoonDiskQuarter(t *testing.T) {
	grid := moonDisk(8, 90, 90)

	k := litFraction(grid)
	if math.Abs(k-0.5) > 0.1 {
		t.Errorf("quarter lit fraction = %.3f, want ~0.5", k)
	}

	// Bright limb toward the east means the left half is lit.
	row := grid[8]
	if row[1] != glyphLit {
		t.Errorf("east limb should be lit, got %q", row[1])
	}
	if row[len(row)-2] != glyphShadow {
		t.Errorf("west limb should be dark, got %q", row[len(row)-2])
	}
}

func TestMoonDiskShape(t *testing.T) {
	grid := moonDisk(5, 0, 0)
	if len(grid) != 11 {
		t.Fatalf("expected 11 rows, got %d", len(grid))
	}
	for _, row := range grid {
		if len(row) != 21 {
			t.Fatalf("expected 21 columns, got %d", len(row))
		}
	}
	// Corners are outside the disk
	if grid[0][0] != ' ' || grid[10][20] != ' ' {
		t.Error("corners should be blank")
	}
	if grid[5][10] != glyphLit {
		t.Error("centre of a full disk should be lit")
	}
}

func TestMarkSubEarth(t *testing.T) {
	grid := moonDisk(5, 0, 0)
	markSubEarth(grid, 5, 0, 0, 0)
	if grid[5][10] != glyphSubEarth {
		t.Errorf("zero libration should mark the centre, got %q", grid[5][10])
	}

	// Positive longitude libration shows more of the eastern limb, so the
	// sub-Earth point moves west (right).
	grid = moonDisk(5, 0, 0)
	markSubEarth(grid, 5, 7, 0, 0)
	found := -1
	for col, ch := range grid[5] {
		if ch == glyphSubEarth {
			found = col
		}
	}
	if found <= 10 {
		t.Errorf("marker should sit right of centre, got column %d", found)
	}
}

func TestMoonViewToggleMarker(t *testing.T) {
	m := NewMoonViewModel()
	if !m.showMarker {
		t.Fatal("marker should be on by default")
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'l'}})
	if m.showMarker {
		t.Error("marker should be off after l")
	}
}

func TestMoonViewRender(t *testing.T) {
	m := NewMoonViewModel().SetSize(100, 30)
	if view := m.View(); !strings.Contains(view, "Waiting") {
		t.Errorf("expected waiting message, got %q", view)
	}

	m = m.UpdateData(testSnapshot(t))
	view := m.View()
	for _, want := range []string{"New Moon", "N up, E left", "sub-Earth point"} {
		if !strings.Contains(view, want) {
			t.Errorf("moon view missing %q", want)
		}
	}

	small := NewMoonViewModel().SetSize(10, 5).UpdateData(state.Snapshot{Frame: m.snapshot.Frame})
	if view := small.View(); !strings.Contains(view, "too small") {
		t.Errorf("expected size warning, got %q", view)
	}
}
