// Package config loads toolkit configuration from TOML with an
// environment overlay.
//
// Precedence is fixed: compiled defaults, then the config file, then
// TERMWIN_* environment variables. A missing file is not an error.
// The Watcher reloads the file on change and re-applies the overlay,
// so environment overrides survive hot reloads.
package config
