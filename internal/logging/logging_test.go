package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"warning", LevelWarn},
		{" WARN ", LevelWarn},
		{"error", LevelError},
		{"verbose", LevelInfo},
		{"", LevelInfo},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), "ParseLevel(%q)", tt.in)
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(LevelWarn)
	l.SetOutput(&buf)

	l.Debug("debug %d", 1)
	l.Info("info %d", 2)
	l.Warn("warn %d", 3)
	l.Error("error %d", 4)

	out := buf.String()
	assert.NotContains(t, out, "debug 1")
	assert.NotContains(t, out, "info 2")
	assert.Contains(t, out, "WARN")
	assert.Contains(t, out, "warn 3")
	assert.Contains(t, out, "ERROR")
	assert.Contains(t, out, "error 4")
	assert.Equal(t, 2, strings.Count(out, "\n"))
}

func TestLogger_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(LevelError)
	l.SetOutput(&buf)

	l.Info("hidden")
	assert.False(t, l.Enabled(LevelInfo))

	l.SetLevel(LevelDebug)
	l.Debug("shown")
	assert.True(t, l.Enabled(LevelDebug))

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(LevelInfo)
	l.SetOutput(&buf)

	child := l.With("source", "ISS.OEM_J2K_EPH.txt")
	child.Infow("ephemeris loaded", "records", 42)
	l.Info("parent entry")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if assert.Len(t, lines, 2) {
		assert.Contains(t, lines[0], "ephemeris loaded")
		assert.Contains(t, lines[0], `"source": "ISS.OEM_J2K_EPH.txt"`)
		assert.Contains(t, lines[0], `"records": 42`)
		assert.NotContains(t, lines[1], "source")
	}

	// Children follow the parent's level.
	l.SetLevel(LevelError)
	child.Info("after")
	assert.NotContains(t, buf.String(), "after")
}

func TestDiscard(t *testing.T) {
	l := Discard()
	l.Error("nothing")
	assert.False(t, l.Enabled(LevelError))
}
