package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	DataDir  string `toml:"data_dir"`
	MediaDir string `toml:"media_dir"`
	LogDir   string `toml:"log_dir"`
	APIBind  string `toml:"api_bind"`
}

// Ingest contains the e-book ingestion policy knobs. The defaults reproduce
// the established segmentation behavior; change them only with evidence that
// a different threshold segments real uploads better.
type Ingest struct {
	// FilenameBlacklist lists substrings that mark a document item as
	// front-matter or navigation noise.
	FilenameBlacklist []string `toml:"filename_blacklist"`
	// RescueMarkers override the blacklist: an item whose filename contains
	// one of these is kept even when a blacklist marker also matches.
	RescueMarkers []string `toml:"rescue_markers"`
	// TOCScanLines bounds how many leading text lines are inspected when
	// deciding whether an item is an embedded table of contents.
	TOCScanLines int `toml:"toc_scan_lines"`
	// TOCEntryThreshold is the number of chapter-list-looking lines within
	// the scan window above which an item is treated as a table of contents.
	TOCEntryThreshold int `toml:"toc_entry_threshold"`
	// HeadingScanParagraphs bounds how many leading paragraphs are scanned
	// for a chapter heading when an item has no heading element.
	HeadingScanParagraphs int `toml:"heading_scan_paragraphs"`
	// MinBodyChars is the minimum plain-text length of a cleaned item body;
	// shorter items are skipped.
	MinBodyChars int `toml:"min_body_chars"`
	// GenreMaxChars caps the joined subject list length in extracted metadata.
	GenreMaxChars int `toml:"genre_max_chars"`
	// TextChunkSize is the paragraphs-per-chapter grouping for plain-text
	// uploads.
	TextChunkSize int `toml:"text_chunk_size"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for zennovel.
//
// Configuration sections by subsystem:
//   - Paths: data/media/log directories and API bind address
//   - Ingest: e-book segmentation policy thresholds
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	Ingest  Ingest  `toml:"ingest"`
	Logging Logging `toml:"logging"`
}

// SampleConfig returns the embedded annotated sample configuration file.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes the annotated sample configuration to path.
func CreateSample(path string) error {
	return os.WriteFile(path, []byte(sampleConfig), 0o644)
}

// ExpandPath resolves a leading ~ to the current user's home directory.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/zennovel/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. A .env file in the
// working directory, when present, supplies environment overrides.
func Load(path string) (*Config, string, bool, error) {
	_ = godotenv.Load()

	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func (c *Config) applyEnvOverrides() {
	if v := strings.TrimSpace(os.Getenv("ZENNOVEL_API_BIND")); v != "" {
		c.Paths.APIBind = v
	}
	if v := strings.TrimSpace(os.Getenv("ZENNOVEL_DATA_DIR")); v != "" {
		c.Paths.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv("ZENNOVEL_LOG_LEVEL")); v != "" {
		c.Logging.Level = v
	}
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("zennovel.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the daemon needs at runtime.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.MediaDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the location of the library SQLite database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "library.db")
}

// LockFilePath returns the daemon single-instance lock file location.
func (c *Config) LockFilePath() string {
	return filepath.Join(c.Paths.DataDir, "zennoveld.lock")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
