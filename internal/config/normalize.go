package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeIngest()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.MediaDir) == "" {
		c.Paths.MediaDir = defaultMediaDir
	}
	if c.Paths.MediaDir, err = expandPath(c.Paths.MediaDir); err != nil {
		return fmt.Errorf("paths.media_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeIngest() {
	if len(c.Ingest.FilenameBlacklist) == 0 {
		c.Ingest.FilenameBlacklist = append([]string(nil), defaultFilenameBlacklist...)
	}
	if len(c.Ingest.RescueMarkers) == 0 {
		c.Ingest.RescueMarkers = append([]string(nil), defaultRescueMarkers...)
	}
	for i, marker := range c.Ingest.FilenameBlacklist {
		c.Ingest.FilenameBlacklist[i] = strings.ToLower(strings.TrimSpace(marker))
	}
	for i, marker := range c.Ingest.RescueMarkers {
		c.Ingest.RescueMarkers[i] = strings.ToLower(strings.TrimSpace(marker))
	}
	if c.Ingest.TOCScanLines <= 0 {
		c.Ingest.TOCScanLines = defaultTOCScanLines
	}
	if c.Ingest.TOCEntryThreshold <= 0 {
		c.Ingest.TOCEntryThreshold = defaultTOCEntryThreshold
	}
	if c.Ingest.HeadingScanParagraphs <= 0 {
		c.Ingest.HeadingScanParagraphs = defaultHeadingScanParagraphs
	}
	if c.Ingest.MinBodyChars <= 0 {
		c.Ingest.MinBodyChars = defaultMinBodyChars
	}
	if c.Ingest.GenreMaxChars <= 0 {
		c.Ingest.GenreMaxChars = defaultGenreMaxChars
	}
	if c.Ingest.TextChunkSize <= 0 {
		c.Ingest.TextChunkSize = defaultTextChunkSize
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
