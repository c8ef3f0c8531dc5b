// Package state provides thread-safe state management for the application.
package state

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/ephem"
	"github.com/litescript/ls-orrery/internal/scene"
)

// EventType represents the type of state change event.
type EventType string

const (
	EventLoadStarted      EventType = "LOAD_STARTED"
	EventLoaded           EventType = "EPHEMERIS_LOADED"
	EventLoadFailed       EventType = "LOAD_FAILED"
	EventPhaseChange      EventType = "PHASE_CHANGE"
	EventSatelliteClamped EventType = "SATELLITE_CLAMPED"
	EventSatelliteInRange EventType = "SATELLITE_IN_RANGE"
	EventInvalidEpoch     EventType = "INVALID_EPOCH"
	EventModeChange       EventType = "MODE_CHANGE"
)

// Event represents a notable change in the scene or the ephemeris.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Epoch     string    `json:"epoch,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	LoadID    string    `json:"load_id,omitempty"`
}

// Mode selects how the scene epoch is chosen.
type Mode int

const (
	ModeRealtime Mode = iota
	ModeFixed
)

func (m Mode) String() string {
	if m == ModeFixed {
		return "fixed"
	}
	return "realtime"
}

// LoadState is the lifecycle of the ephemeris load.
type LoadState int

const (
	LoadIdle LoadState = iota
	LoadRunning
	LoadDone
	LoadFailed
)

func (s LoadState) String() string {
	switch s {
	case LoadRunning:
		return "loading"
	case LoadDone:
		return "loaded"
	case LoadFailed:
		return "failed"
	default:
		return "idle"
	}
}

// LoadStatus describes the most recent ephemeris load.
type LoadStatus struct {
	ID       uuid.UUID
	State    LoadState
	Source   string
	Started  time.Time
	Duration time.Duration
	Records  int
	Skipped  int
	Err      error
}

// TimeSeries is a single data point with timestamp.
type TimeSeries struct {
	Timestamp time.Time
	Value     float64
}

// Manager handles all shared application state with thread-safe access.
type Manager struct {
	mu sync.RWMutex

	// Current state
	current       *scene.Frame
	lastUpdate    time.Time
	lastError     error
	buildDuration time.Duration
	frames        uint64

	// Previous values for event detection
	prevPhase   astro.Phase
	prevClamped bool
	prevInvalid astro.Epoch

	load LoadStatus

	mode       Mode
	fixedEpoch astro.Epoch

	// History buffers
	illumination []TimeSeries
	moonDistance []TimeSeries
	maxHistLen   int

	// Event log (ring buffer)
	events       []Event
	maxEvents    int
	eventWriteAt int

	refreshInterval time.Duration
	now             func() time.Time
}

// Config holds configuration for the state manager.
type Config struct {
	MaxHistoryLen   int
	MaxEvents       int
	RefreshInterval time.Duration
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		MaxHistoryLen:   240, // 4 minutes of frames at 1/s
		MaxEvents:       50,
		RefreshInterval: time.Second,
	}
}

// NewManager creates a new state manager in realtime mode.
func NewManager(cfg Config) *Manager {
	maxEvents := cfg.MaxEvents
	if maxEvents <= 0 {
		maxEvents = 50
	}
	maxHist := cfg.MaxHistoryLen
	if maxHist <= 0 {
		maxHist = 240
	}
	return &Manager{
		maxHistLen:      maxHist,
		maxEvents:       maxEvents,
		events:          make([]Event, 0, maxEvents),
		refreshInterval: cfg.RefreshInterval,
		now:             time.Now,
	}
}

// Update atomically replaces the current frame. A nil frame records only
// the error and duration.
func (m *Manager) Update(f *scene.Frame, buildDuration time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastUpdate = m.now()
	m.lastError = err
	m.buildDuration = buildDuration

	if f == nil {
		return
	}

	m.detectEvents(f)
	m.current = f
	m.frames++

	m.illumination = appendBounded(m.illumination, TimeSeries{Timestamp: f.Time, Value: f.Result.IlluminatedFraction}, m.maxHistLen)
	m.moonDistance = appendBounded(m.moonDistance, TimeSeries{Timestamp: f.Time, Value: f.Moon.DistanceKm}, m.maxHistLen)
}

func appendBounded(s []TimeSeries, p TimeSeries, max int) []TimeSeries {
	s = append(s, p)
	if len(s) > max {
		s = s[len(s)-max:]
	}
	return s
}

// detectEvents compares the new frame with the previous one.
func (m *Manager) detectEvents(f *scene.Frame) {
	now := m.now()
	epoch := f.Epoch.String()

	phase := f.Result.Phase()
	if m.current != nil && phase != m.prevPhase {
		m.addEvent(Event{
			Type:      EventPhaseChange,
			Timestamp: now,
			Epoch:     epoch,
			Detail:    string(m.prevPhase) + " -> " + string(phase),
		})
	}
	m.prevPhase = phase

	clamped := f.Satellite != nil && f.Satellite.Clamped
	switch {
	case clamped && !m.prevClamped:
		m.addEvent(Event{Type: EventSatelliteClamped, Timestamp: now, Epoch: epoch, Detail: f.Satellite.Note})
	case !clamped && m.prevClamped && f.Satellite != nil:
		m.addEvent(Event{Type: EventSatelliteInRange, Timestamp: now, Epoch: epoch, Detail: f.Satellite.State.Timestamp})
	}
	m.prevClamped = clamped

	if f.Result.Validity != astro.Valid && f.Epoch != m.prevInvalid {
		detail := ""
		if len(f.Result.Issues) > 0 {
			detail = f.Result.Issues[0].Error()
		}
		m.addEvent(Event{Type: EventInvalidEpoch, Timestamp: now, Epoch: epoch, Detail: detail})
		m.prevInvalid = f.Epoch
	}
}

// addEvent adds an event to the ring buffer.
func (m *Manager) addEvent(e Event) {
	if len(m.events) < m.maxEvents {
		m.events = append(m.events, e)
	} else {
		m.events[m.eventWriteAt] = e
		m.eventWriteAt = (m.eventWriteAt + 1) % m.maxEvents
	}
}

// LoadStarted marks an ephemeris load as in flight. It is a no-op when
// the load with this ID has already finished.
func (m *Manager) LoadStarted(id uuid.UUID, source string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.load.ID == id && (m.load.State == LoadDone || m.load.State == LoadFailed) {
		return
	}
	now := m.now()
	m.load = LoadStatus{ID: id, State: LoadRunning, Source: source, Started: now}
	m.addEvent(Event{Type: EventLoadStarted, Timestamp: now, Detail: source, LoadID: id.String()})
}

// LoadFinished records the outcome of an ephemeris load.
func (m *Manager) LoadFinished(res ephem.LoadResult) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.load = LoadStatus{
		ID:       res.ID,
		State:    LoadDone,
		Source:   res.Source,
		Started:  res.Started,
		Duration: res.Duration,
		Records:  res.Report.Records,
		Skipped:  res.Report.Skipped,
		Err:      res.Err,
	}

	e := Event{Timestamp: m.now(), LoadID: res.ID.String()}
	if res.Err != nil {
		m.load.State = LoadFailed
		e.Type = EventLoadFailed
		e.Detail = res.Err.Error()
	} else {
		e.Type = EventLoaded
		e.Detail = res.Source
	}
	m.addEvent(e)
}

// Load returns the most recent load status.
func (m *Manager) Load() LoadStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.load
}

// SetFixed pins the scene to epoch e.
func (m *Manager) SetFixed(e astro.Epoch) {
	m.mu.Lock()
	defer m.mu.Unlock()

	changed := m.mode != ModeFixed || m.fixedEpoch != e
	m.mode = ModeFixed
	m.fixedEpoch = e
	if changed {
		m.addEvent(Event{Type: EventModeChange, Timestamp: m.now(), Epoch: e.String(), Detail: ModeFixed.String()})
	}
}

// SetRealtime returns the scene to the wall clock.
func (m *Manager) SetRealtime() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.mode == ModeRealtime {
		return
	}
	m.mode = ModeRealtime
	m.addEvent(Event{Type: EventModeChange, Timestamp: m.now(), Detail: ModeRealtime.String()})
}

// ToggleMode switches between realtime and the last fixed epoch. With no
// fixed epoch set, the current frame's epoch is used.
func (m *Manager) ToggleMode() Mode {
	m.mu.RLock()
	mode, fixed, cur := m.mode, m.fixedEpoch, m.current
	m.mu.RUnlock()

	if mode == ModeFixed {
		m.SetRealtime()
		return ModeRealtime
	}
	if fixed == 0 && cur != nil {
		fixed = cur.Epoch
	}
	if fixed == 0 {
		fixed = astro.CurrentUTCEpoch()
	}
	m.SetFixed(fixed)
	return ModeFixed
}

// Mode returns the epoch mode and, in fixed mode, the pinned epoch.
func (m *Manager) Mode() (Mode, astro.Epoch) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mode, m.fixedEpoch
}

// Snapshot represents an immutable snapshot of current state.
type Snapshot struct {
	Frame         *scene.Frame
	LastUpdate    time.Time
	LastError     error
	BuildDuration time.Duration
	Frames        uint64
	Mode          Mode
	FixedEpoch    astro.Epoch
	Load          LoadStatus
	Events        []Event
}

// Snapshot returns a consistent snapshot of current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Snapshot{
		Frame:         m.current,
		LastUpdate:    m.lastUpdate,
		LastError:     m.lastError,
		BuildDuration: m.buildDuration,
		Frames:        m.frames,
		Mode:          m.mode,
		FixedEpoch:    m.fixedEpoch,
		Load:          m.load,
		Events:        m.getEventsOrdered(),
	}
}

// getEventsOrdered returns events in chronological order.
func (m *Manager) getEventsOrdered() []Event {
	if len(m.events) == 0 {
		return nil
	}

	if len(m.events) < m.maxEvents {
		result := make([]Event, len(m.events))
		copy(result, m.events)
		return result
	}

	// Ring buffer is full, reorder from oldest to newest
	result := make([]Event, m.maxEvents)
	for i := 0; i < m.maxEvents; i++ {
		idx := (m.eventWriteAt + i) % m.maxEvents
		result[i] = m.events[idx]
	}
	return result
}

// RecentEvents returns the last n events.
func (m *Manager) RecentEvents(n int) []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.getEventsOrdered()
	if len(all) <= n {
		return all
	}
	return all[len(all)-n:]
}

// IlluminationHistory returns a copy of the illuminated-fraction history.
func (m *Manager) IlluminationHistory() []TimeSeries {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]TimeSeries, len(m.illumination))
	copy(out, m.illumination)
	return out
}

// MoonDistanceHistory returns a copy of the Earth-Moon distance history in km.
func (m *Manager) MoonDistanceHistory() []TimeSeries {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]TimeSeries, len(m.moonDistance))
	copy(out, m.moonDistance)
	return out
}

// MoonRangeRate estimates the Earth-Moon range rate in km/s from the last
// two history points. Zero when there is not enough history.
func (m *Manager) MoonRangeRate() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := len(m.moonDistance)
	if n < 2 {
		return 0
	}
	p1, p2 := m.moonDistance[n-2], m.moonDistance[n-1]
	dt := p2.Timestamp.Sub(p1.Timestamp).Seconds()
	if dt <= 0 {
		return 0
	}
	return (p2.Value - p1.Value) / dt
}

// RefreshInterval returns the configured refresh interval.
func (m *Manager) RefreshInterval() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.refreshInterval
}

// SetRefreshInterval updates the refresh interval.
func (m *Manager) SetRefreshInterval(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshInterval = d
}

// HasData returns true once a frame has been stored.
func (m *Manager) HasData() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current != nil
}
