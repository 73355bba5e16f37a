// Package logging constructs the slog loggers used by the daemon and CLI.
//
// Two output formats are supported: a human-oriented console format and plain
// JSON for log shipping. Construction goes through Options so the daemon can
// tee output to both stdout and a log file under the configured log directory.
package logging
