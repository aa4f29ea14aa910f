// Package config loads, normalizes, and validates zipseal configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// ZIPSEAL_DUMP_DIR. The Config type centralizes every knob the batch and CLI
// need: the archive directory, sidecar and backup naming, the 7-Zip candidate
// list, the secret variable name, journal storage, and logging.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors. Core
// packages never read the environment themselves; the values resolved here
// are passed to them explicitly.
package config
