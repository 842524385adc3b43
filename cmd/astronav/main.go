// Command astronav recovers latitude and longitude from a plate-solved photo
// of the night sky.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/soniakeys/unit"
	"golang.org/x/term"

	"github.com/DanLyss/AstroNavigation/internal/astro"
	"github.com/DanLyss/AstroNavigation/internal/config"
	"github.com/DanLyss/AstroNavigation/internal/corr"
	"github.com/DanLyss/AstroNavigation/internal/export"
	"github.com/DanLyss/AstroNavigation/internal/logging"
	"github.com/DanLyss/AstroNavigation/internal/nav"
	"github.com/DanLyss/AstroNavigation/internal/server"
	"github.com/DanLyss/AstroNavigation/internal/simulate"
	"github.com/DanLyss/AstroNavigation/internal/state"
	"github.com/DanLyss/AstroNavigation/internal/ui"
)

// Solve input
var (
	corrPath   string
	configPath string
	posAngle   float64
	rotAngle   float64
	timeStr    string
	threshold  float64
	maxStars   int
	seed       uint64
	hemisphere string
	eotMode    string
)

// Output modes
var (
	jsonPath    string
	reportPath  string
	summaryMode bool
	tuiMode     bool
	serveAddr   string
)

// Simulation
var (
	simulateMode bool
	simLat       float64
	simLon       float64
	simAlt       float64
	simAz        float64
	simRoll      float64
	simTarget    string
	simFocal     float64
	simWidth     float64
	simHeight    float64
	simOut       string
)

func main() {
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")

	flag.StringVar(&corrPath, "corr", "", "Correspondence file (.corr/.fits or .csv)")
	flag.StringVar(&configPath, "config", "", "Config file (.yaml, .yml or .toml)")
	flag.Float64Var(&posAngle, "pos-angle", 0, "Camera tilt from the vertical, degrees (altitude of the optical axis)")
	flag.Float64Var(&rotAngle, "rot-angle", 0, "Camera roll about the optical axis, degrees")
	flag.StringVar(&timeStr, "time", "", "Capture time, RFC3339 (e.g. 2024-11-03T19:30:00Z)")
	flag.Float64Var(&threshold, "threshold", 0, "Minimum match weight (overrides config)")
	flag.IntVar(&maxStars, "max-stars", 0, "Keep at most this many stars (overrides config)")
	flag.Uint64Var(&seed, "seed", 0, "Seed for star selection and resampling; makes runs repeatable")
	flag.StringVar(&hemisphere, "hemisphere", "", "Latitude constraint: north, south or any (overrides config)")
	flag.StringVar(&eotMode, "eot", "", "Equation of time: empirical or smart (overrides config)")

	flag.StringVar(&jsonPath, "json", "", "Export the solution as JSON (use - for stdout)")
	flag.StringVar(&reportPath, "report", "", "Write the per-star report (use - for stdout)")
	flag.BoolVar(&summaryMode, "summary", false, "Print text summary instead of TUI")
	flag.BoolVar(&tuiMode, "tui", false, "Show the result in the terminal UI")
	flag.StringVar(&serveAddr, "serve", "", "Run the HTTP solve service on this address (empty uses the config address)")

	flag.BoolVar(&simulateMode, "simulate", false, "Render correspondence rows for a simulated sky and exit")
	flag.Float64Var(&simLat, "lat", 32.08, "Simulated observer latitude, degrees")
	flag.Float64Var(&simLon, "lon", 34.78, "Simulated observer longitude, degrees east")
	flag.Float64Var(&simAlt, "alt", 45, "Simulated optical axis altitude, degrees")
	flag.Float64Var(&simAz, "az", 180, "Simulated optical axis azimuth, degrees")
	flag.Float64Var(&simRoll, "roll", 0, "Simulated camera roll, degrees")
	flag.StringVar(&simTarget, "target", "", "Aim the simulated camera at this catalogue star")
	flag.Float64Var(&simFocal, "focal", 1200, "Simulated focal length, pixels")
	flag.Float64Var(&simWidth, "width", 1920, "Simulated image width, pixels")
	flag.Float64Var(&simHeight, "height", 1080, "Simulated image height, pixels")
	flag.StringVar(&simOut, "out", "-", "Simulated rows output CSV (use - for stdout)")
	flag.Parse()

	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			fatal(err)
		}
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	applyOverrides(&cfg, set)

	logger := logging.New(cfg.Level())

	navCfg, err := cfg.Nav()
	if err != nil {
		fatal(err)
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if simulateMode {
		if err := runSimulate(logger); err != nil {
			fatal(err)
		}
		return
	}

	solver := nav.NewSolver(navCfg, logger)
	stateCfg := state.DefaultConfig()
	stateCfg.MaxHistory = cfg.History.MaxEntries
	stateMgr := state.NewManager(stateCfg)

	if set["serve"] {
		addr := serveAddr
		if addr == "" {
			addr = cfg.Server.Addr
		}
		srv := server.New(solver, stateMgr, server.Options{
			Filter:        cfg.FilterOptions(),
			MaxUploadSize: cfg.Server.MaxUploadSize,
		}, logger)
		if err := srv.Run(ctx, addr); err != nil {
			fatal(err)
		}
		return
	}

	if corrPath == "" {
		fatal(fmt.Errorf("-corr is required (or use -serve or -simulate)"))
	}
	if !set["pos-angle"] {
		fatal(fmt.Errorf("-pos-angle is required"))
	}
	obsTime, err := time.Parse(time.RFC3339, timeStr)
	if err != nil {
		fatal(fmt.Errorf("-time: %w", err))
	}
	obs := nav.Observation{
		PositionalAngle: unit.AngleFromDeg(posAngle),
		RotationAngle:   unit.AngleFromDeg(rotAngle),
		Time:            obsTime,
	}

	solveOnce := func() (*nav.Solution, error) {
		start := time.Now()
		sol, err := solveFile(solver, cfg.FilterOptions(), obs, logger)
		stateMgr.Record(filepath.Base(corrPath), sol, time.Since(start), err)
		return sol, err
	}

	// Headless mode: no TUI
	headless := summaryMode || jsonPath != "" || reportPath != ""
	if !headless && !tuiMode && !term.IsTerminal(int(os.Stdout.Fd())) {
		summaryMode, headless = true, true
	}

	if headless {
		sol, err := solveOnce()
		if err != nil {
			fatal(err)
		}
		if err := writeOutputs(sol, time.Now()); err != nil {
			fatal(err)
		}
		return
	}

	// The TUI shows failures too, so the first error is not fatal.
	if _, err := solveOnce(); err != nil {
		logger.Warn("Solve failed: %v", err)
	}

	model := ui.New(stateMgr, func() error {
		_, err := solveOnce()
		return err
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

// applyOverrides copies explicitly set flags over the configuration.
func applyOverrides(cfg *config.File, set map[string]bool) {
	if set["threshold"] {
		cfg.Filter.Threshold = threshold
	}
	if set["max-stars"] {
		cfg.Filter.MaxStars = maxStars
	}
	if set["seed"] {
		cfg.Filter.Seed = seed
		cfg.Solver.Seed = seed
		cfg.Solver.Repeatable = true
	}
	if set["hemisphere"] {
		cfg.Solver.Hemisphere = hemisphere
	}
	if set["eot"] {
		cfg.Solver.EquationOfTime = eotMode
	}
}

func solveFile(solver *nav.Solver, opts corr.Options, obs nav.Observation, logger *logging.Logger) (*nav.Solution, error) {
	rows, err := corr.ReadFile(corrPath)
	if err != nil {
		return nil, err
	}
	filtered, err := corr.Filter(rows, opts)
	if err != nil {
		return nil, err
	}
	logger.Debug("Kept %d of %d rows, %d stars", filtered.Kept, filtered.Total, len(filtered.Stars))

	sol, err := solver.Solve(filtered.Stars, obs)
	if err != nil {
		return nil, err
	}
	logger.Info("Fix: %s %s from %d stars",
		export.FormatLatitude(sol.Latitude.Deg()), export.FormatLongitude(sol.Longitude.Deg()), len(sol.Stars))
	return sol, nil
}

func writeOutputs(sol *nav.Solution, solvedAt time.Time) error {
	if jsonPath != "" {
		exp := export.FromSolution(sol, solvedAt)
		if err := withOutput(jsonPath, exp.WriteJSON); err != nil {
			return fmt.Errorf("write JSON: %w", err)
		}
	}
	if reportPath != "" {
		err := withOutput(reportPath, func(w io.Writer) error {
			return export.WriteReport(w, sol)
		})
		if err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}
	if summaryMode {
		export.WriteSummaryTable(os.Stdout, sol)
	}
	return nil
}

// withOutput runs write against stdout for "-" or a freshly created file.
func withOutput(path string, write func(io.Writer) error) error {
	if path == "-" {
		return write(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func runSimulate(logger *logging.Logger) error {
	when := time.Now().UTC()
	if timeStr != "" {
		var err error
		if when, err = time.Parse(time.RFC3339, timeStr); err != nil {
			return fmt.Errorf("-time: %w", err)
		}
	}

	cat := astro.DefaultCatalog()
	sc := simulate.Scene{
		Observer: astro.NewObserver(simLat, simLon),
		Time:     when,
		Pointing: simulate.Pointing{
			Alt:  unit.AngleFromDeg(simAlt),
			Az:   unit.AngleFromDeg(simAz),
			Roll: unit.AngleFromDeg(simRoll),
		},
		FocalPx: simFocal,
	}
	if simTarget != "" {
		star, ok := cat.Lookup(simTarget)
		if !ok {
			return fmt.Errorf("unknown star %q", simTarget)
		}
		sc.Pointing = simulate.PointAt(star.Equatorial, sc.Observer, when, sc.Pointing.Roll)
	}

	dets := sc.FromCatalog(cat, simWidth/2, simHeight/2)
	if len(dets) == 0 {
		return fmt.Errorf("no catalogue stars in the simulated frame")
	}
	logger.Info("Simulated %d stars: -pos-angle %.4f -rot-angle %.4f -time %s",
		len(dets), sc.Pointing.Alt.Deg(), sc.Pointing.Roll.Deg(), when.Format(time.RFC3339))

	rows := simulate.Rows(dets, simWidth, simHeight, 1)
	return withOutput(simOut, func(w io.Writer) error {
		return corr.WriteCSV(w, rows)
	})
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
