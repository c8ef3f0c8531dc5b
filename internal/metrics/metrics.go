// Package metrics exposes Prometheus collectors for frame computation,
// ephemeris loads and queries, and the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/litescript/ls-orrery/internal/ephem"
	"github.com/litescript/ls-orrery/internal/scene"
)

const namespace = "orrery"

// Metrics owns a registry and the application's collectors.
type Metrics struct {
	registry *prometheus.Registry

	computations    *prometheus.CounterVec
	computeDuration prometheus.Histogram
	illuminated     prometheus.Gauge
	moonDistance    prometheus.Gauge

	loads        *prometheus.CounterVec
	loadDuration prometheus.Histogram
	skippedLines prometheus.Counter
	seriesLength prometheus.Gauge

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New creates the collectors on a fresh registry, including the Go runtime
// and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		computations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "Frames computed, by calendar validity.",
		}, []string{"validity"}),
		computeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "frame_duration_seconds",
			Help:      "Time to build one frame.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 8),
		}),
		illuminated: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "moon_illuminated_fraction",
			Help:      "Illuminated fraction of the lunar disk in the latest frame.",
		}),
		moonDistance: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "moon_distance_km",
			Help:      "Earth-Moon distance in the latest frame.",
		}),
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ephemeris",
			Name:      "loads_total",
			Help:      "Ephemeris loads, by outcome.",
		}, []string{"outcome"}),
		loadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ephemeris",
			Name:      "load_duration_seconds",
			Help:      "Time to fetch and parse the ephemeris.",
			Buckets:   prometheus.DefBuckets,
		}),
		skippedLines: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ephemeris",
			Name:      "skipped_lines_total",
			Help:      "Malformed data lines skipped by the parser.",
		}),
		seriesLength: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ephemeris",
			Name:      "state_vectors",
			Help:      "State vectors in the installed series.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"path", "method", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path", "method"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.computations,
		m.computeDuration,
		m.illuminated,
		m.moonDistance,
		m.loads,
		m.loadDuration,
		m.skippedLines,
		m.seriesLength,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the Prometheus metrics HTTP handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveFrame records one built frame.
func (m *Metrics) ObserveFrame(f *scene.Frame, d time.Duration) {
	m.computations.WithLabelValues(f.Result.Validity.String()).Inc()
	m.computeDuration.Observe(d.Seconds())
	m.illuminated.Set(f.Result.IlluminatedFraction)
	m.moonDistance.Set(f.Moon.DistanceKm)
}

// ObserveLoad records a finished ephemeris load. seriesLen is the number of
// vectors now installed.
func (m *Metrics) ObserveLoad(res ephem.LoadResult, seriesLen int) {
	outcome := "success"
	if res.Err != nil {
		outcome = "failure"
	}
	m.loads.WithLabelValues(outcome).Inc()
	m.loadDuration.Observe(res.Duration.Seconds())
	m.skippedLines.Add(float64(res.Report.Skipped))
	m.seriesLength.Set(float64(seriesLen))
}

// WatchStore exports the store's query counters. Call it once per store.
func (m *Metrics) WatchStore(s *ephem.Store) {
	counter := func(name, help string, get func(ephem.StoreStats) uint64) prometheus.Collector {
		return prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ephemeris",
			Name:      name,
			Help:      help,
		}, func() float64 {
			return float64(get(s.Stats()))
		})
	}

	m.registry.MustRegister(
		counter("queries_total", "Position queries answered.",
			func(st ephem.StoreStats) uint64 { return st.Queries }),
		counter("adjustments_total", "Queries that advanced a state vector.",
			func(st ephem.StoreStats) uint64 { return st.Adjustments }),
		counter("clamped_total", "Queries outside the series range.",
			func(st ephem.StoreStats) uint64 { return st.Clamped }),
		counter("not_loaded_total", "Queries made before a series was installed.",
			func(st ephem.StoreStats) uint64 { return st.NotLoaded }),
	)
}

// knownRoutes are the exact paths served by the API.
var knownRoutes = map[string]bool{
	"/":                 true,
	"/healthz":          true,
	"/metrics":          true,
	"/api/v1/sunmoon":   true,
	"/api/v1/ephemeris": true,
	"/api/v1/frame":     true,
	"/api/v1/events":    true,
}

// normalizeRoute maps a request path to a bounded label value.
func normalizeRoute(path string) string {
	if knownRoutes[path] {
		return path
	}
	return "other"
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware records request count and duration for each request.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		path := normalizeRoute(r.URL.Path)
		m.httpRequests.WithLabelValues(path, r.Method, strconv.Itoa(rw.statusCode)).Inc()
		m.httpDuration.WithLabelValues(path, r.Method).Observe(time.Since(start).Seconds())
	})
}
