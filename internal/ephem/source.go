package ephem

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/litescript/ls-orrery/internal/logging"
	"github.com/litescript/ls-orrery/internal/version"
)

const (
	// DefaultURL is NASA's public ISS trajectory data (OEM, J2000).
	DefaultURL = "https://nasa-public-data.s3.amazonaws.com/iss-coords/current/ISS_OEM/ISS.OEM_J2K_EPH.txt"

	// DefaultTimeout for HTTP requests.
	DefaultTimeout = 30 * time.Second
)

// Source yields ephemeris text.
type Source interface {
	// Name identifies the source in logs and load results.
	Name() string
	Open(ctx context.Context) (io.ReadCloser, error)
}

// FileSource reads ephemeris text from a local file.
type FileSource struct {
	Path string
}

// Name implements Source.
func (f FileSource) Name() string {
	return f.Path
}

// Open implements Source.
func (f FileSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("open ephemeris: %w", err)
	}
	return file, nil
}

// HTTPSource downloads ephemeris text.
type HTTPSource struct {
	client    *http.Client
	url       string
	timeout   time.Duration
	userAgent string
}

// HTTPOption configures an HTTPSource.
type HTTPOption func(*HTTPSource)

// WithTimeout sets the HTTP request timeout.
func WithTimeout(d time.Duration) HTTPOption {
	return func(s *HTTPSource) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(s *HTTPSource) {
		s.client = client
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) HTTPOption {
	return func(s *HTTPSource) {
		s.userAgent = ua
	}
}

// NewHTTPSource creates a source for url.
func NewHTTPSource(url string, opts ...HTTPOption) *HTTPSource {
	s := &HTTPSource{
		url:       url,
		timeout:   DefaultTimeout,
		userAgent: "ls-orrery/" + version.Version,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.client == nil {
		s.client = &http.Client{
			Timeout: s.timeout,
		}
	}

	return s
}

// Name implements Source.
func (s *HTTPSource) Name() string {
	return s.url
}

// Open implements Source. The caller closes the body.
func (s *HTTPSource) Open(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/plain")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch ephemeris: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch ephemeris: unexpected status code: %d", resp.StatusCode)
	}

	return resp.Body, nil
}

// SourceFor picks an HTTPSource for http(s) URLs and a FileSource otherwise.
func SourceFor(location string, opts ...HTTPOption) Source {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return NewHTTPSource(location, opts...)
	}
	return FileSource{Path: location}
}

// Load reads and parses one source.
func Load(ctx context.Context, src Source, opts ...ParseOption) (*Series, ParseReport, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, ParseReport{}, err
	}
	defer rc.Close()

	opts = append([]ParseOption{WithSourceName(src.Name())}, opts...)
	series, report, err := Parse(rc, opts...)
	if err != nil {
		return nil, report, fmt.Errorf("parse %s: %w", src.Name(), err)
	}
	return series, report, nil
}

// LoadResult describes one completed load.
type LoadResult struct {
	ID       uuid.UUID
	Source   string
	Report   ParseReport
	Started  time.Time
	Duration time.Duration
	Err      error
}

// LoadAsync loads src in a goroutine, installs the series into store on
// success and then calls done exactly once. It returns the load's ID.
func LoadAsync(ctx context.Context, src Source, store *Store, done func(LoadResult), logger *logging.Logger, opts ...ParseOption) uuid.UUID {
	if logger == nil {
		logger = logging.Discard()
	}
	id := uuid.New()
	log := logger.With("load_id", id.String(), "source", src.Name())

	go func() {
		res := LoadResult{ID: id, Source: src.Name(), Started: time.Now()}

		series, report, err := Load(ctx, src, append([]ParseOption{WithLogger(log)}, opts...)...)
		res.Duration = time.Since(res.Started)
		res.Report = report
		res.Err = err

		if err != nil {
			log.Errorw("ephemeris load failed", "error", err, "duration", res.Duration)
		} else {
			store.Install(series)
			first, last := series.First(), series.Last()
			log.Infow("ephemeris loaded",
				"records", report.Records,
				"skipped", report.Skipped,
				"out_of_order", report.OutOfOrder,
				"first", first.Format(time.RFC3339),
				"last", last.Format(time.RFC3339),
				"duration", res.Duration)
		}

		if done != nil {
			done(res)
		}
	}()

	return id
}
