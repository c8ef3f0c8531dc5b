package ephem

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/logging"
)

// maxSkippedLines bounds ParseReport.SkippedLines.
const maxSkippedLines = 16

// Timestamp layouts accepted in data records. Fractional seconds are
// optional when parsing; a missing zone means UTC.
var timestampLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-002T15:04:05Z07:00",
	"2006-002T15:04:05",
}

var (
	errFieldCount = errors.New("want 7 fields")
	errTimestamp  = errors.New("unparsable timestamp")
	errNumber     = errors.New("unparsable number")
)

// ParseReport summarizes what Parse accepted and skipped.
type ParseReport struct {
	Records      int
	Skipped      int
	SkippedLines []int // first few 1-based line numbers that were skipped
	OutOfOrder   int   // records whose time is before their predecessor's
	Comments     int
	SentinelLine int
}

type parseConfig struct {
	sentinel string
	source   string
	logger   *logging.Logger
}

// ParseOption configures Parse.
type ParseOption func(*parseConfig)

// WithSentinel sets the line that precedes the data records.
func WithSentinel(s string) ParseOption {
	return func(c *parseConfig) {
		if s != "" {
			c.sentinel = s
		}
	}
}

// WithSourceName records where the text came from on the Series.
func WithSourceName(name string) ParseOption {
	return func(c *parseConfig) {
		c.source = name
	}
}

// WithLogger sets the logger for skipped and out-of-order records.
func WithLogger(l *logging.Logger) ParseOption {
	return func(c *parseConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// Parse reads ephemeris text. Everything up to and including the sentinel
// line is header. After it, each non-empty line is a record:
//
//	<timestamp> x y z vx vy vz
//
// with position in km and velocity in km/s. Lines starting with COMMENT are
// ignored and malformed lines are skipped and counted.
func Parse(r io.Reader, opts ...ParseOption) (*Series, ParseReport, error) {
	cfg := parseConfig{
		sentinel: DefaultSentinel,
		logger:   logging.Discard(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	var (
		report  ParseReport
		vectors []StateVector
		inData  bool
		lineNo  int
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSuffix(scanner.Text(), "\r")

		if !inData {
			if line == cfg.sentinel {
				inData = true
				report.SentinelLine = lineNo
			}
			continue
		}

		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasPrefix(line, "COMMENT") {
			report.Comments++
			continue
		}

		sv, err := parseRecord(line)
		if err != nil {
			report.Skipped++
			if len(report.SkippedLines) < maxSkippedLines {
				report.SkippedLines = append(report.SkippedLines, lineNo)
			}
			cfg.logger.Debug("ephemeris line %d skipped: %v", lineNo, err)
			continue
		}

		if n := len(vectors); n > 0 && sv.Time.Before(vectors[n-1].Time) {
			report.OutOfOrder++
			cfg.logger.Warn("ephemeris line %d: %s is before previous record %s",
				lineNo, sv.Timestamp, vectors[n-1].Timestamp)
		}
		vectors = append(vectors, sv)
	}

	if err := scanner.Err(); err != nil {
		return nil, report, fmt.Errorf("read ephemeris: %w", err)
	}
	if !inData {
		return nil, report, fmt.Errorf("%w: %q", ErrNoSentinel, cfg.sentinel)
	}

	report.Records = len(vectors)
	if len(vectors) == 0 {
		return nil, report, ErrNoRecords
	}

	return &Series{Source: cfg.source, Vectors: vectors}, report, nil
}

func parseRecord(line string) (StateVector, error) {
	fields := strings.Fields(line)
	if len(fields) != 7 {
		return StateVector{}, fmt.Errorf("%w, got %d", errFieldCount, len(fields))
	}

	ts, err := ParseTimestamp(fields[0])
	if err != nil {
		return StateVector{}, err
	}

	var nums [6]float64
	for i := range nums {
		v, err := strconv.ParseFloat(fields[i+1], 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return StateVector{}, fmt.Errorf("%w: field %d %q", errNumber, i+2, fields[i+1])
		}
		nums[i] = astro.KmToEarthRadii(v)
	}

	return StateVector{
		Timestamp: fields[0],
		Time:      ts,
		Position:  astro.Vec3{X: nums[0], Y: nums[1], Z: nums[2]},
		Velocity:  astro.Vec3{X: nums[3], Y: nums[4], Z: nums[5]},
	}, nil
}

// ParseTimestamp parses an OEM epoch. Both calendar (2006-01-02) and
// day-of-year (2006-002) dates are accepted, with or without a zone.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", errTimestamp, s)
}
