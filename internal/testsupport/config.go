package testsupport

import (
	"path/filepath"
	"testing"

	"zennovel/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.MediaDir = filepath.Join(base, "media")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.APIBind = "127.0.0.1:0"

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithMinBodyChars overrides the minimum chapter body length.
func WithMinBodyChars(n int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Ingest.MinBodyChars = n
	}
}

// WithTextChunkSize overrides the paragraphs-per-chapter grouping for plain
// text uploads.
func WithTextChunkSize(n int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Ingest.TextChunkSize = n
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
