// Package daemon owns the long-running process: it enforces single-instance
// execution through a lock file, opens the library store, and runs the HTTP
// API server until stopped.
package daemon
