// Package config loads the YAML configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/ephem"
	"github.com/litescript/ls-orrery/internal/logging"
	"github.com/litescript/ls-orrery/internal/scene"
)

// Config is the complete application configuration.
type Config struct {
	LogLevel string          `yaml:"log_level" validate:"oneof=debug info warn warning error"`
	Epoch    string          `yaml:"epoch,omitempty" validate:"omitempty,epoch"`
	Refresh  time.Duration   `yaml:"refresh" validate:"min=100ms,max=1h"`
	Ephem    EphemConfig     `yaml:"ephemeris"`
	Render   RenderConfig    `yaml:"render"`
	Observer *ObserverConfig `yaml:"observer,omitempty"`
	HTTP     HTTPConfig      `yaml:"http"`
}

// EphemConfig selects and parses the satellite ephemeris.
type EphemConfig struct {
	Source    string        `yaml:"source" validate:"required"`
	Sentinel  string        `yaml:"sentinel" validate:"required"`
	Timeout   time.Duration `yaml:"timeout" validate:"min=1s"`
	Satellite string        `yaml:"satellite" validate:"required,max=32"`
}

// RenderConfig holds the scene scales.
type RenderConfig struct {
	SunScale  float64 `yaml:"sun_scale" validate:"gt=0"`
	MoonScale float64 `yaml:"moon_scale" validate:"gt=0"`
}

// ObserverConfig places a ground observer for azimuth/elevation output.
type ObserverConfig struct {
	Name string  `yaml:"name"`
	Lat  float64 `yaml:"lat" validate:"gte=-90,lte=90"`
	Lon  float64 `yaml:"lon" validate:"gte=-180,lte=180"`
}

// HTTPConfig configures the API server. An empty Listen disables it.
type HTTPConfig struct {
	Listen string `yaml:"listen" validate:"omitempty,hostname_port"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Refresh:  time.Second,
		Ephem: EphemConfig{
			Source:    ephem.DefaultURL,
			Sentinel:  ephem.DefaultSentinel,
			Timeout:   ephem.DefaultTimeout,
			Satellite: "ISS",
		},
		Render: RenderConfig{
			SunScale:  scene.DefaultSunScale,
			MoonScale: scene.DefaultMoonScale,
		},
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("epoch", func(fl validator.FieldLevel) bool {
		e, err := astro.ParseEpoch(fl.Field().String())
		return err == nil && len(e.Validate()) == 0
	})
	return v
}

// Validate checks every field constraint.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}
	return nil
}

func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, formatFieldError(e))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func formatFieldError(e validator.FieldError) string {
	// Drop the root type name.
	field := e.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "hostname_port":
		return fmt.Sprintf("%s must be host:port", field)
	case "epoch":
		return fmt.Sprintf("%s must be a valid YYYYMMDD.HHmm date", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// Level returns the configured log level.
func (c *Config) Level() logging.Level {
	return logging.ParseLevel(c.LogLevel)
}

// FixedEpoch returns the configured epoch, or false for realtime mode.
func (c *Config) FixedEpoch() (astro.Epoch, bool) {
	if c.Epoch == "" {
		return 0, false
	}
	e, err := astro.ParseEpoch(c.Epoch)
	if err != nil {
		return 0, false
	}
	return e, true
}

// Scales returns the render scales.
func (c *Config) Scales() scene.Scales {
	return scene.Scales{Sun: c.Render.SunScale, Moon: c.Render.MoonScale}
}

// SceneOptions returns builder options for the configured scales, observer
// and satellite name.
func (c *Config) SceneOptions() []scene.Option {
	opts := []scene.Option{
		scene.WithScales(c.Scales()),
		scene.WithSatelliteName(c.Ephem.Satellite),
	}
	if c.Observer != nil {
		opts = append(opts, scene.WithObserver(astro.Observer{
			LatDeg: c.Observer.Lat,
			LonDeg: c.Observer.Lon,
			Name:   c.Observer.Name,
		}))
	}
	return opts
}

// Source returns the ephemeris source for the configured location.
func (c *Config) Source() ephem.Source {
	return ephem.SourceFor(c.Ephem.Source, ephem.WithTimeout(c.Ephem.Timeout))
}

// ParseOptions returns the parser options for the configured sentinel.
func (c *Config) ParseOptions() []ephem.ParseOption {
	return []ephem.ParseOption{ephem.WithSentinel(c.Ephem.Sentinel)}
}
