// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.3.0"

// Milestones:
// 0.3.0 - HTTP API, Prometheus metrics, YAML config
// 0.2.0 - ISS ephemeris store with incremental extrapolation, async load
// 0.1.0 - Initial release: Sun/Moon positions, libration, moon phase TUI
