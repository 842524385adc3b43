// Package config loads astronav settings from YAML or TOML files and maps
// them onto the filter, solver and server configurations.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/naoina/toml"
	"gopkg.in/yaml.v3"

	"github.com/DanLyss/AstroNavigation/internal/astro"
	"github.com/DanLyss/AstroNavigation/internal/corr"
	"github.com/DanLyss/AstroNavigation/internal/logging"
	"github.com/DanLyss/AstroNavigation/internal/nav"
)

// File is the on-disk configuration. Keys missing from a file keep their
// Default values.
type File struct {
	LogLevel string  `yaml:"log_level" toml:"log_level"`
	Filter   Filter  `yaml:"filter" toml:"filter"`
	Solver   Solver  `yaml:"solver" toml:"solver"`
	Server   Server  `yaml:"server" toml:"server"`
	History  History `yaml:"history" toml:"history"`
}

// Filter mirrors corr.Options.
type Filter struct {
	Threshold float64 `yaml:"threshold" toml:"threshold"`
	MaxStars  int     `yaml:"max_stars" toml:"max_stars"`
	Seed      uint64  `yaml:"seed" toml:"seed"`
	Width     float64 `yaml:"width" toml:"width"`
	Height    float64 `yaml:"height" toml:"height"`
}

// Solver mirrors nav.Config with enums spelled as strings.
type Solver struct {
	PixelLengthX   float64 `yaml:"pixel_length_x" toml:"pixel_length_x"`
	PixelLengthY   float64 `yaml:"pixel_length_y" toml:"pixel_length_y"`
	SigmaClip      float64 `yaml:"sigma_clip" toml:"sigma_clip"`
	MinScalePairs  int     `yaml:"min_scale_pairs" toml:"min_scale_pairs"`
	GridSize       int     `yaml:"grid_size" toml:"grid_size"`
	Resamples      int     `yaml:"resamples" toml:"resamples"`
	SubsetFraction float64 `yaml:"subset_fraction" toml:"subset_fraction"`
	TrimFraction   float64 `yaml:"trim_fraction" toml:"trim_fraction"`
	Hemisphere     string  `yaml:"hemisphere" toml:"hemisphere"`
	BandLow        float64 `yaml:"band_low" toml:"band_low"`
	BandHigh       float64 `yaml:"band_high" toml:"band_high"`
	MinBandSize    int     `yaml:"min_band_size" toml:"min_band_size"`
	EquationOfTime string  `yaml:"equation_of_time" toml:"equation_of_time"`
	MaxIterations  int     `yaml:"max_iterations" toml:"max_iterations"`
	Seed           uint64  `yaml:"seed" toml:"seed"`
	Repeatable     bool    `yaml:"repeatable" toml:"repeatable"`
}

// Server configures the HTTP API.
type Server struct {
	Addr          string `yaml:"addr" toml:"addr"`
	MaxUploadSize int64  `yaml:"max_upload_size" toml:"max_upload_size"`
}

// History sizes the in-memory solve history.
type History struct {
	MaxEntries int `yaml:"max_entries" toml:"max_entries"`
}

// Default returns the built-in configuration.
func Default() File {
	n := nav.DefaultConfig()
	f := corr.DefaultOptions()
	return File{
		LogLevel: "info",
		Filter: Filter{
			Threshold: f.Threshold,
			MaxStars:  f.MaxStars,
			Seed:      f.Seed,
		},
		Solver: Solver{
			PixelLengthX:   n.PixelLengthX,
			PixelLengthY:   n.PixelLengthY,
			SigmaClip:      n.SigmaClip,
			MinScalePairs:  n.MinScalePairs,
			GridSize:       n.GridSize,
			Resamples:      n.Resamples,
			SubsetFraction: n.SubsetFraction,
			TrimFraction:   n.TrimFraction,
			Hemisphere:     n.Hemisphere.String(),
			BandLow:        n.BandLow,
			BandHigh:       n.BandHigh,
			MinBandSize:    n.MinBandSize,
			EquationOfTime: n.EquationOfTime.String(),
			MaxIterations:  n.LM.MaxIterations,
		},
		Server: Server{
			Addr:          ":8080",
			MaxUploadSize: 32 << 20,
		},
		History: History{MaxEntries: 100},
	}
}

// Load reads a configuration file over the defaults. The format follows
// the extension: .yaml and .yml for YAML, .toml for TOML.
func Load(path string) (File, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	default:
		return cfg, fmt.Errorf("config %s: unsupported format %q", path, ext)
	}
	if err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if _, err := cfg.Nav(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Nav returns the solver configuration.
func (f File) Nav() (nav.Config, error) {
	s := f.Solver
	cfg := nav.DefaultConfig()

	h, err := nav.ParseHemisphere(s.Hemisphere)
	if err != nil {
		return cfg, err
	}
	eot, err := astro.ParseEoTMode(s.EquationOfTime)
	if err != nil {
		return cfg, err
	}

	cfg.PixelLengthX = s.PixelLengthX
	cfg.PixelLengthY = s.PixelLengthY
	cfg.SigmaClip = s.SigmaClip
	cfg.MinScalePairs = s.MinScalePairs
	cfg.GridSize = s.GridSize
	cfg.Resamples = s.Resamples
	cfg.SubsetFraction = s.SubsetFraction
	cfg.TrimFraction = s.TrimFraction
	cfg.Hemisphere = h
	cfg.BandLow = s.BandLow
	cfg.BandHigh = s.BandHigh
	cfg.MinBandSize = s.MinBandSize
	cfg.EquationOfTime = eot
	cfg.LM.MaxIterations = s.MaxIterations
	cfg.Seed = s.Seed
	cfg.Repeatable = s.Repeatable

	return cfg, cfg.Validate()
}

// FilterOptions returns the correspondence filter options.
func (f File) FilterOptions() corr.Options {
	return corr.Options{
		Threshold: f.Filter.Threshold,
		MaxStars:  f.Filter.MaxStars,
		Seed:      f.Filter.Seed,
		Width:     f.Filter.Width,
		Height:    f.Filter.Height,
	}
}

// Level returns the configured log level.
func (f File) Level() logging.Level {
	return logging.ParseLevel(f.LogLevel)
}
