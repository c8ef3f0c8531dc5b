// Command ls-orrery is a terminal orrery for the Sun, the Moon and the ISS.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/litescript/ls-orrery/internal/api"
	"github.com/litescript/ls-orrery/internal/config"
	"github.com/litescript/ls-orrery/internal/ephem"
	"github.com/litescript/ls-orrery/internal/logging"
	"github.com/litescript/ls-orrery/internal/metrics"
	"github.com/litescript/ls-orrery/internal/scene"
	"github.com/litescript/ls-orrery/internal/state"
	"github.com/litescript/ls-orrery/internal/ui"
	"github.com/litescript/ls-orrery/internal/version"
)

// CLI flags for headless mode
var (
	summaryMode   bool
	watchInterval time.Duration
	jsonPath      string
	logFile       string
)

// app holds the wired components shared by every mode.
type app struct {
	cfg     *config.Config
	logger  *logging.Logger
	store   *ephem.Store
	state   *state.Manager
	metrics *metrics.Metrics
	builder *scene.Builder
}

func main() {
	configPath := flag.String("config", "", "YAML config file")
	epoch := flag.String("epoch", "", "Fixed epoch YYYYMMDD.HHmm (default: realtime)")
	ephemeris := flag.String("ephemeris", "", "Ephemeris file path or URL")
	serve := flag.String("serve", "", "Serve the HTTP API on host:port")
	refresh := flag.Duration("refresh", 0, "Frame refresh interval (e.g., 1s, 500ms)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.BoolVar(&summaryMode, "summary", false, "Print text summary instead of TUI")
	flag.DurationVar(&watchInterval, "watch", 0, "Repeat output at interval (e.g., 30s)")
	flag.StringVar(&jsonPath, "json", "", "Export JSON frame to file (use - for stdout)")
	flag.StringVar(&logFile, "log-file", "", "Write TUI-mode logs to this file")
	flag.Parse()

	if *showVersion {
		fmt.Println("ls-orrery " + version.Version)
		return
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	// Flags override the file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "epoch":
			cfg.Epoch = *epoch
		case "ephemeris":
			cfg.Ephem.Source = *ephemeris
		case "serve":
			cfg.HTTP.Listen = *serve
		case "refresh":
			cfg.Refresh = *refresh
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := newApp(cfg)

	headless := summaryMode || jsonPath != "" || watchInterval > 0
	isTTY := term.IsTerminal(int(os.Stdout.Fd()))

	var code int
	switch {
	case headless:
		code = a.runHeadless(ctx)
	case cfg.HTTP.Listen != "":
		code = a.runServe(ctx)
	case !isTTY:
		// No terminal for the TUI; print one summary instead.
		summaryMode = true
		code = a.runHeadless(ctx)
	default:
		code = a.runTUI(ctx)
	}
	stop()
	os.Exit(code)
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func newApp(cfg *config.Config) *app {
	logger := logging.New(cfg.Level())

	stateCfg := state.DefaultConfig()
	stateCfg.RefreshInterval = cfg.Refresh
	stateMgr := state.NewManager(stateCfg)
	if e, ok := cfg.FixedEpoch(); ok {
		stateMgr.SetFixed(e)
	}

	store := ephem.NewStore()
	m := metrics.New()
	m.WatchStore(store)

	return &app{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		state:   stateMgr,
		metrics: m,
		builder: scene.NewBuilder(store, cfg.SceneOptions()...),
	}
}

// startLoad kicks off the ephemeris load. notify, if set, runs after the
// state and metrics have recorded the result.
func (a *app) startLoad(ctx context.Context, notify func(ephem.LoadResult)) {
	src := a.cfg.Source()
	id := ephem.LoadAsync(ctx, src, a.store, func(res ephem.LoadResult) {
		a.state.LoadFinished(res)
		a.metrics.ObserveLoad(res, a.store.Len())
		if notify != nil {
			notify(res)
		}
	}, a.logger, a.cfg.ParseOptions()...)
	a.state.LoadStarted(id, src.Name())
}

// buildFrame computes a frame for the current mode and records it.
func (a *app) buildFrame() (*scene.Frame, error) {
	mode, fixed := a.state.Mode()

	start := time.Now()
	var (
		f   *scene.Frame
		err error
	)
	if mode == state.ModeFixed {
		f, err = a.builder.Build(fixed)
	} else {
		f, err = a.builder.BuildAt(start)
	}
	elapsed := time.Since(start)

	a.state.Update(f, elapsed, err)
	if err != nil {
		return nil, err
	}
	a.metrics.ObserveFrame(f, elapsed)
	return f, nil
}

func (a *app) runTUI(ctx context.Context) int {
	// Keep the alt screen clean
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: open log file: %v\n", err)
			return 1
		}
		defer f.Close()
		a.logger.SetOutput(f)
	} else {
		a.logger.SetOutput(io.Discard)
	}

	model := ui.New(a.state, a.builder, a.metrics)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	a.startLoad(ctx, func(res ephem.LoadResult) {
		p.Send(ui.LoadDoneMsg{Result: res})
	})

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		return 1
	}
	return 0
}

// runServe serves the HTTP API and keeps the current frame fresh until
// the context is cancelled.
func (a *app) runServe(ctx context.Context) int {
	a.startLoad(ctx, nil)

	srv := api.NewServer(a.builder, a.store, a.state, a.metrics, a.logger)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe(ctx, a.cfg.HTTP.Listen)
	}()

	go a.runFrameLoop(ctx)

	if err := <-errCh; err != nil {
		a.logger.Errorw("HTTP API stopped", "error", err)
		return 1
	}
	return 0
}

func (a *app) runFrameLoop(ctx context.Context) {
	if _, err := a.buildFrame(); err != nil {
		a.logger.Warnw("frame build failed", "error", err)
	}

	ticker := time.NewTicker(a.state.RefreshInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.logger.Debug("Frame loop shutting down")
			return
		case <-ticker.C:
			if _, err := a.buildFrame(); err != nil {
				a.logger.Warnw("frame build failed", "error", err)
			}
		}
	}
}

// runHeadless waits for the ephemeris, then prints frames without the TUI.
func (a *app) runHeadless(ctx context.Context) int {
	loaded := make(chan ephem.LoadResult, 1)
	a.startLoad(ctx, func(res ephem.LoadResult) { loaded <- res })

	select {
	case res := <-loaded:
		if res.Err != nil {
			a.logger.Warnw("continuing without satellite", "error", res.Err)
		}
	case <-ctx.Done():
		return 1
	}

	if watchInterval > 0 && a.cfg.HTTP.Listen != "" {
		srv := api.NewServer(a.builder, a.store, a.state, a.metrics, a.logger)
		go func() {
			if err := srv.ListenAndServe(ctx, a.cfg.HTTP.Listen); err != nil {
				a.logger.Errorw("HTTP API stopped", "error", err)
			}
		}()
	}

	outputOnce := func() error {
		f, err := a.buildFrame()
		if err != nil {
			return err
		}

		if jsonPath != "" {
			if err := writeJSON(f, jsonPath); err != nil {
				return err
			}
		}

		if summaryMode || jsonPath == "" {
			scene.WriteSummary(os.Stdout, f)
		}
		return nil
	}

	// Single run
	if watchInterval == 0 {
		if err := outputOnce(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	// Watch mode: repeat at interval
	if err := outputOnce(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}

	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return 0
		case <-ticker.C:
			fmt.Println() // Blank line between outputs
			if err := outputOnce(); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
		}
	}
}

func writeJSON(f *scene.Frame, path string) error {
	export := scene.Export(f)
	if path == "-" {
		if err := export.WriteJSON(os.Stdout); err != nil {
			return fmt.Errorf("write JSON to stdout: %w", err)
		}
		return nil
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create JSON file: %w", err)
	}
	defer out.Close()
	if err := export.WriteJSON(out); err != nil {
		return fmt.Errorf("write JSON to file: %w", err)
	}
	return nil
}
