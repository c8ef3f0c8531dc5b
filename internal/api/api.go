// Package api serves frames, ephemeris queries and metrics over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/ephem"
	"github.com/litescript/ls-orrery/internal/logging"
	"github.com/litescript/ls-orrery/internal/metrics"
	"github.com/litescript/ls-orrery/internal/scene"
	"github.com/litescript/ls-orrery/internal/state"
)

const (
	apiPrefix       = "/api/v1"
	shutdownTimeout = 5 * time.Second
)

// Server is the HTTP API.
type Server struct {
	builder *scene.Builder
	store   *ephem.Store
	state   *state.Manager
	metrics *metrics.Metrics
	logger  *logging.Logger
	router  *mux.Router
}

// NewServer wires the routes. metrics and logger may be nil.
func NewServer(builder *scene.Builder, store *ephem.Store, st *state.Manager, m *metrics.Metrics, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	s := &Server{
		builder: builder,
		store:   store,
		state:   st,
		metrics: m,
		logger:  logger,
	}
	s.router = s.setupRouter()
	return s
}

func (s *Server) setupRouter() *mux.Router {
	router := mux.NewRouter()
	if s.metrics != nil {
		router.Use(s.metrics.Middleware)
		router.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}

	router.HandleFunc("/healthz", s.health).Methods(http.MethodGet)

	// Registered on the root router so a wrong method answers 405.
	router.HandleFunc(apiPrefix+"/sunmoon", s.sunMoon).Methods(http.MethodGet)
	router.HandleFunc(apiPrefix+"/ephemeris", s.ephemeris).Methods(http.MethodGet)
	router.HandleFunc(apiPrefix+"/frame", s.frame).Methods(http.MethodGet)
	router.HandleFunc(apiPrefix+"/events", s.events).Methods(http.MethodGet)
	return router
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infow("HTTP API listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("Shutting down the HTTP API...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warnw("encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

type healthResponse struct {
	Status    string `json:"status"`
	Ephemeris string `json:"ephemeris"`
	Records   int    `json:"records"`
	Frames    uint64 `json:"frames"`
	LastError string `json:"last_error,omitempty"`
}

func (s *Server) health(w http.ResponseWriter, req *http.Request) {
	resp := healthResponse{Status: "ok", Ephemeris: state.LoadIdle.String()}
	if s.store != nil {
		resp.Records = s.store.Len()
	}
	if s.state != nil {
		snap := s.state.Snapshot()
		resp.Ephemeris = snap.Load.State.String()
		resp.Frames = snap.Frames
		if snap.Load.Err != nil {
			resp.LastError = snap.Load.Err.Error()
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// sunMoon computes a frame for ?epoch=YYYYMMDD.HHmm, or now when omitted.
// ?strict=true rejects epochs that compute but fail calendar validation.
func (s *Server) sunMoon(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()

	var (
		frame *scene.Frame
		err   error
	)
	start := time.Now()
	if raw := q.Get("epoch"); raw != "" {
		e, perr := astro.ParseEpoch(raw)
		if perr != nil {
			s.writeError(w, http.StatusBadRequest, perr)
			return
		}
		if strict, _ := strconv.ParseBool(q.Get("strict")); strict {
			if _, serr := astro.ComputeStrict(e); serr != nil {
				s.writeError(w, http.StatusUnprocessableEntity, serr)
				return
			}
		}
		frame, err = s.builder.Build(e)
	} else {
		frame, err = s.builder.BuildAt(time.Now())
	}
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if s.metrics != nil {
		s.metrics.ObserveFrame(frame, time.Since(start))
	}

	s.writeJSON(w, http.StatusOK, scene.Export(frame))
}

// frame returns the most recent frame held by the state manager.
func (s *Server) frame(w http.ResponseWriter, req *http.Request) {
	if s.state == nil || !s.state.HasData() {
		s.writeError(w, http.StatusServiceUnavailable, errors.New("no frame computed yet"))
		return
	}
	s.writeJSON(w, http.StatusOK, scene.Export(s.state.Snapshot().Frame))
}

type ephemerisResponse struct {
	Source     string           `json:"source"`
	At         time.Time        `json:"at"`
	Record     string           `json:"record"`
	RecordTime time.Time        `json:"record_time"`
	Adjusted   bool             `json:"adjusted"`
	Position   scene.Vec3Export `json:"position_er"`
	Velocity   scene.Vec3Export `json:"velocity_er_s"`
	AltitudeKm float64          `json:"altitude_km"`
	SpeedKmS   float64          `json:"speed_km_s"`
	Clamped    bool             `json:"clamped"`
	Side       string           `json:"side,omitempty"`
	Boundary   *time.Time       `json:"boundary,omitempty"`
}

// ephemeris answers a store query for ?at=, or now when omitted. Times
// outside the series return the boundary vector with clamped set.
func (s *Server) ephemeris(w http.ResponseWriter, req *http.Request) {
	if s.store == nil {
		s.writeError(w, http.StatusServiceUnavailable, ephem.ErrNotLoaded)
		return
	}

	at := time.Now().UTC()
	if raw := req.URL.Query().Get("at"); raw != "" {
		t, err := ephem.ParseTimestamp(raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
		at = t
	}

	sv, err := s.store.Query(at)
	var oor *ephem.OutOfRangeError
	switch {
	case errors.Is(err, ephem.ErrNotLoaded):
		s.writeError(w, http.StatusServiceUnavailable, err)
		return
	case err != nil && !errors.As(err, &oor):
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	resp := ephemerisResponse{
		Source:     s.store.Source(),
		At:         at,
		Record:     sv.Timestamp,
		RecordTime: sv.Time,
		Adjusted:   sv.Adjusted,
		Position:   scene.Vec3Export{X: sv.Position.X, Y: sv.Position.Y, Z: sv.Position.Z},
		Velocity:   scene.Vec3Export{X: sv.Velocity.X, Y: sv.Velocity.Y, Z: sv.Velocity.Z},
		AltitudeKm: sv.Altitude(),
		SpeedKmS:   sv.Speed(),
	}
	if oor != nil {
		resp.Clamped = true
		resp.Side = oor.Side.String()
		boundary := oor.Boundary
		resp.Boundary = &boundary
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// events returns the last ?n= state events (default 20).
func (s *Server) events(w http.ResponseWriter, req *http.Request) {
	n := 20
	if raw := req.URL.Query().Get("n"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			s.writeError(w, http.StatusBadRequest, errors.New("n must be a positive integer"))
			return
		}
		n = v
	}

	events := []state.Event{}
	if s.state != nil {
		if recent := s.state.RecentEvents(n); recent != nil {
			events = recent
		}
	}
	s.writeJSON(w, http.StatusOK, events)
}
