package config

import (
	"errors"
	"fmt"
)

var validResizeFilters = map[string]struct{}{
	"nearest":    {},
	"bilinear":   {},
	"catmullrom": {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateImaging(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.StorageDir == "" {
		return errors.New("paths.storage_dir must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateImaging() error {
	if _, ok := validResizeFilters[c.Imaging.ResizeFilter]; !ok {
		return fmt.Errorf("imaging.resize_filter must be one of nearest, bilinear, catmullrom (got %q)", c.Imaging.ResizeFilter)
	}
	if c.Imaging.JPEGQuality < 1 || c.Imaging.JPEGQuality > 100 {
		return fmt.Errorf("imaging.jpeg_quality must be between 1 and 100 (got %d)", c.Imaging.JPEGQuality)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error (got %q)", c.Logging.Level)
	}
}
