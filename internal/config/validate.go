package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateIngest(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	if strings.TrimSpace(c.Paths.MediaDir) == "" {
		return errors.New("paths.media_dir must be set")
	}
	if _, _, err := net.SplitHostPort(c.Paths.APIBind); err != nil {
		return fmt.Errorf("paths.api_bind %q is not a host:port address: %w", c.Paths.APIBind, err)
	}
	return nil
}

func (c *Config) validateIngest() error {
	if c.Ingest.TOCEntryThreshold > c.Ingest.TOCScanLines {
		return fmt.Errorf("ingest.toc_entry_threshold (%d) cannot exceed ingest.toc_scan_lines (%d)",
			c.Ingest.TOCEntryThreshold, c.Ingest.TOCScanLines)
	}
	for _, marker := range c.Ingest.FilenameBlacklist {
		if marker == "" {
			return errors.New("ingest.filename_blacklist entries must be non-empty")
		}
	}
	for _, marker := range c.Ingest.RescueMarkers {
		if marker == "" {
			return errors.New("ingest.rescue_markers entries must be non-empty")
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be \"console\" or \"json\", got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
	return nil
}
