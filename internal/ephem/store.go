package ephem

import (
	"sort"
	"sync"
	"time"
)

// StoreStats counts query outcomes since the store was created.
type StoreStats struct {
	Queries     uint64
	Adjustments uint64
	Clamped     uint64
	NotLoaded   uint64
	Installs    uint64
}

// Store holds one installed Series and answers position queries. Queries
// advance the base vector in place, so a later query only extrapolates
// over the time since the previous one.
type Store struct {
	mu          sync.Mutex
	series      *Series
	edges       [2]StateVector // first and last records as loaded
	ordered     bool
	installedAt time.Time
	stats       StoreStats
	now         func() time.Time
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithClock sets the clock used by QueryNow.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates an empty store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Install replaces the store's series. The store keeps its own copy of the
// vectors.
func (s *Store) Install(series *Series) {
	if series == nil || series.Len() == 0 {
		return
	}

	vectors := make([]StateVector, len(series.Vectors))
	copy(vectors, series.Vectors)

	ordered := sort.SliceIsSorted(vectors, func(i, j int) bool {
		return vectors[i].Time.Before(vectors[j].Time)
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.series = &Series{Source: series.Source, Vectors: vectors}
	s.edges = [2]StateVector{vectors[0], vectors[len(vectors)-1]}
	s.ordered = ordered
	s.installedAt = s.now()
	s.stats.Installs++
}

// Loaded reports whether a series has been installed.
func (s *Store) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.series != nil
}

// Len returns the number of installed vectors.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.series == nil {
		return 0
	}
	return s.series.Len()
}

// Source returns the installed series' source name.
func (s *Store) Source() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.series == nil {
		return ""
	}
	return s.series.Source
}

// InstalledAt returns when the current series was installed.
func (s *Store) InstalledAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.installedAt
}

// Range returns the first and last record times.
func (s *Store) Range() (first, last time.Time, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.series == nil {
		return time.Time{}, time.Time{}, false
	}
	return s.series.First(), s.series.Last(), true
}

// Stats returns a snapshot of the query counters.
func (s *Store) Stats() StoreStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// QueryNow is Query at the store's clock, truncated to the whole UTC
// minute like an epoch.
func (s *Store) QueryNow() (StateVector, error) {
	return s.Query(s.now().UTC().Truncate(time.Minute))
}

// Query returns the state at time at. The base record is the last one at
// or before at; its position is advanced by velocity times the time since
// it was last evaluated and the result is remembered. Outside the series
// the boundary record is returned as loaded, without any earlier
// extrapolation, together with an *OutOfRangeError.
func (s *Store) Query(at time.Time) (StateVector, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stats.Queries++
	if s.series == nil {
		s.stats.NotLoaded++
		return StateVector{}, ErrNotLoaded
	}

	vectors := s.series.Vectors
	idx := s.firstAfter(at)

	if idx == 0 {
		s.stats.Clamped++
		return s.edges[0], &OutOfRangeError{At: at, Side: BeforeFirst, Boundary: s.edges[0].Time}
	}
	if idx == len(vectors) && at.After(vectors[idx-1].Time) {
		s.stats.Clamped++
		return s.edges[1], &OutOfRangeError{At: at, Side: AfterLast, Boundary: s.edges[1].Time}
	}

	base := &vectors[idx-1]
	elapsed := at.Sub(base.EffectiveTime()).Seconds()
	if elapsed != 0 {
		base.Position = base.Position.Add(base.Velocity.Scale(elapsed))
		base.Adjusted = true
		base.AdjustedAt = at
		s.stats.Adjustments++
	}
	return *base, nil
}

// firstAfter returns the index of the first vector whose time is after at,
// in file order, or len if there is none.
func (s *Store) firstAfter(at time.Time) int {
	vectors := s.series.Vectors
	if s.ordered {
		return sort.Search(len(vectors), func(i int) bool {
			return vectors[i].Time.After(at)
		})
	}
	for i := range vectors {
		if vectors[i].Time.After(at) {
			return i
		}
	}
	return len(vectors)
}
