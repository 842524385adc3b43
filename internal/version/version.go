// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.4.0"

// Milestones:
// 0.4.0 - HTTP solve service, solve history, TUI re-solve
// 0.3.0 - Bootstrap resampling with trimmed mean, smart equation of time
// 0.2.0 - FITS corr input, YAML/TOML config, scene simulator
// 0.1.0 - Initial release: latitude/longitude from a single star field
