package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/ephem"
	"github.com/litescript/ls-orrery/internal/scene"
)

// gathered returns the metric family with the given name.
func gathered(t *testing.T, m *Metrics, name string) *dto.MetricFamily {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			return mf
		}
	}
	t.Fatalf("metric %s not gathered", name)
	return nil
}

func TestObserveFrame(t *testing.T) {
	m := New()

	good, err := scene.NewBuilder(nil).Build(20230219.2056)
	require.NoError(t, err)
	bad, err := scene.NewBuilder(nil).Build(20230230.1200)
	require.NoError(t, err)

	m.ObserveFrame(good, time.Millisecond)
	m.ObserveFrame(good, time.Millisecond)
	m.ObserveFrame(bad, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.computations.WithLabelValues("valid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.computations.WithLabelValues("invalid-computed")))
	assert.InDelta(t, bad.Moon.DistanceKm, testutil.ToFloat64(m.moonDistance), 1e-6)
	assert.Equal(t, uint64(3), gathered(t, m, "orrery_frame_duration_seconds").GetMetric()[0].GetHistogram().GetSampleCount())
}

func TestObserveLoad(t *testing.T) {
	m := New()

	m.ObserveLoad(ephem.LoadResult{
		ID:       uuid.New(),
		Report:   ephem.ParseReport{Records: 5, Skipped: 2},
		Duration: 40 * time.Millisecond,
	}, 5)
	m.ObserveLoad(ephem.LoadResult{ID: uuid.New(), Err: errors.New("timeout")}, 5)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.loads.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.loads.WithLabelValues("failure")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.skippedLines))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.seriesLength))
}

func TestWatchStore(t *testing.T) {
	m := New()
	store := ephem.NewStore()
	m.WatchStore(store)

	_, err := store.Query(time.Now())
	require.ErrorIs(t, err, ephem.ErrNotLoaded)

	t0 := time.Date(2023, 2, 19, 20, 56, 0, 0, time.UTC)
	store.Install(&ephem.Series{Vectors: []ephem.StateVector{
		{Time: t0, Position: astro.Vec3{X: 1.07}, Velocity: astro.Vec3{Y: 0.001}},
		{Time: t0.Add(4 * time.Minute), Position: astro.Vec3{Y: 1.07}},
	}})
	_, err = store.Query(t0.Add(30 * time.Second))
	require.NoError(t, err)
	_, err = store.Query(t0.Add(time.Hour))
	require.ErrorIs(t, err, ephem.ErrOutOfRange)

	value := func(name string) float64 {
		return gathered(t, m, name).GetMetric()[0].GetCounter().GetValue()
	}
	assert.Equal(t, 3.0, value("orrery_ephemeris_queries_total"))
	assert.Equal(t, 1.0, value("orrery_ephemeris_adjustments_total"))
	assert.Equal(t, 1.0, value("orrery_ephemeris_clamped_total"))
	assert.Equal(t, 1.0, value("orrery_ephemeris_not_loaded_total"))
}

func TestNormalizeRoute(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/healthz", "/healthz"},
		{"/metrics", "/metrics"},
		{"/api/v1/sunmoon", "/api/v1/sunmoon"},
		{"/api/v1/ephemeris", "/api/v1/ephemeris"},
		{"/api/v1/frame", "/api/v1/frame"},
		{"/wp-admin", "other"},
		{"/api/v1/sunmoon/extra", "other"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeRoute(tt.path))
		})
	}
}

func TestMiddleware(t *testing.T) {
	m := New()
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/healthz" {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, "ok")
	}))

	for _, path := range []string{"/healthz", "/healthz", "/.env"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("/healthz", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("other", "GET", "404")))
}

func TestHandler(t *testing.T) {
	m := New()
	f, err := scene.NewBuilder(nil).Build(20230219.2056)
	require.NoError(t, err)
	m.ObserveFrame(f, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `orrery_frames_total{validity="valid"} 1`)
	assert.Contains(t, body, "go_goroutines")
}
