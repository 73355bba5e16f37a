// Package config loads, normalizes, and validates zennovel configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// ZENNOVEL_API_BIND. The Config type centralizes every knob the daemon and CLI
// need, from data/media directories to the ingestion policy thresholds.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
