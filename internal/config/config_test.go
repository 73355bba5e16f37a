package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"zennovel/internal/config"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.toml")

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Error("exists = true for missing file")
	}
	if resolved != path {
		t.Errorf("resolved path = %q, want %q", resolved, path)
	}
	defaults := config.Default()
	if cfg.Ingest.TOCEntryThreshold != defaults.Ingest.TOCEntryThreshold {
		t.Errorf("TOCEntryThreshold = %d, want default %d",
			cfg.Ingest.TOCEntryThreshold, defaults.Ingest.TOCEntryThreshold)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Errorf("logging = %+v, want console/info", cfg.Logging)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	base := t.TempDir()
	path := writeConfig(t, `
[paths]
data_dir = "`+filepath.Join(base, "data")+`"
api_bind = "127.0.0.1:9000"

[ingest]
filename_blacklist = ["  COVER  ", "Daftar Isi"]
min_body_chars = 40

[logging]
level = "DEBUG"
`)

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("exists = false for written file")
	}
	if cfg.Paths.APIBind != "127.0.0.1:9000" {
		t.Errorf("APIBind = %q", cfg.Paths.APIBind)
	}
	if got := cfg.Ingest.FilenameBlacklist; len(got) != 2 || got[0] != "cover" || got[1] != "daftar isi" {
		t.Errorf("FilenameBlacklist = %v, want lowercased trimmed entries", got)
	}
	if cfg.Ingest.MinBodyChars != 40 {
		t.Errorf("MinBodyChars = %d, want 40", cfg.Ingest.MinBodyChars)
	}
	// Unset thresholds fall back to defaults.
	if cfg.Ingest.TextChunkSize != config.Default().Ingest.TextChunkSize {
		t.Errorf("TextChunkSize = %d, want default", cfg.Ingest.TextChunkSize)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("ZENNOVEL_API_BIND", "127.0.0.1:9999")
	t.Setenv("ZENNOVEL_LOG_LEVEL", "warn")

	path := filepath.Join(t.TempDir(), "absent.toml")
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Paths.APIBind != "127.0.0.1:9999" {
		t.Errorf("APIBind = %q, want env override", cfg.Paths.APIBind)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Level = %q, want env override", cfg.Logging.Level)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name     string
		contents string
		wantErr  string
	}{
		{
			name: "bad log format",
			contents: `
[logging]
format = "xml"
`,
			wantErr: "logging.format",
		},
		{
			name: "threshold above scan window",
			contents: `
[ingest]
toc_scan_lines = 10
toc_entry_threshold = 20
`,
			wantErr: "toc_entry_threshold",
		},
		{
			name: "bad bind address",
			contents: `
[paths]
api_bind = "not-a-bind"
`,
			wantErr: "api_bind",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.contents)
			_, _, _, err := config.Load(path)
			if err == nil {
				t.Fatal("Load succeeded, want error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error %q does not mention %q", err, tc.wantErr)
			}
		})
	}
}

func TestSampleConfigIsValid(t *testing.T) {
	cfg := config.Default()
	if err := toml.Unmarshal([]byte(config.SampleConfig()), &cfg); err != nil {
		t.Fatalf("sample config does not parse: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("sample config does not validate: %v", err)
	}
}

func TestDatabaseAndLockPaths(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.DataDir = "/tmp/zn"
	if got := cfg.DatabasePath(); got != filepath.Join("/tmp/zn", "library.db") {
		t.Errorf("DatabasePath = %q", got)
	}
	if got := cfg.LockFilePath(); got != filepath.Join("/tmp/zn", "zennoveld.lock") {
		t.Errorf("LockFilePath = %q", got)
	}
}
