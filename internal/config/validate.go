// internal/config/validate.go
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// MaxWorkers bounds extract.workers.
const MaxWorkers = 32

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

var validOverwrite = map[string]bool{
	"prompt": true, "overwrite": true, "skip": true, "skip_existing": true,
}

var validConvertModes = map[string]bool{
	"flac": true, "rename": true, "off": true,
}

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, fmt.Sprintf("log.level: must be one of debug, info, warn, error; got %q", c.Log.Level))
	}

	if !tableName.MatchString(c.Catalog.Table) {
		errs = append(errs, fmt.Sprintf("catalog.table: must be a plain identifier, got %q", c.Catalog.Table))
	}
	if c.Catalog.Path != "" {
		if info, err := os.Stat(c.Catalog.Path); err != nil {
			errs = append(errs, fmt.Sprintf("catalog.path: %v", err))
		} else if info.IsDir() {
			errs = append(errs, fmt.Sprintf("catalog.path: %q is a directory", c.Catalog.Path))
		}
	}

	if !validOverwrite[strings.ToLower(c.Extract.Overwrite)] {
		errs = append(errs, fmt.Sprintf("extract.overwrite: must be one of prompt, overwrite, skip; got %q", c.Extract.Overwrite))
	}
	if c.Extract.Workers < 1 || c.Extract.Workers > MaxWorkers {
		errs = append(errs, fmt.Sprintf("extract.workers: must be between 1 and %d, got %d", MaxWorkers, c.Extract.Workers))
	}
	if c.Extract.Output != "" {
		if info, err := os.Stat(c.Extract.Output); err == nil && !info.IsDir() {
			errs = append(errs, fmt.Sprintf("extract.output: %q is not a directory", c.Extract.Output))
		}
	}

	if !validConvertModes[strings.ToLower(c.Convert.Mode)] {
		errs = append(errs, fmt.Sprintf("convert.mode: must be one of flac, rename, off; got %q", c.Convert.Mode))
	}
	if c.Convert.CompressionLevel < 0 || c.Convert.CompressionLevel > 12 {
		errs = append(errs, fmt.Sprintf("convert.compression_level: must be between 0 and 12, got %d", c.Convert.CompressionLevel))
	}

	if c.History.Enabled && c.History.Path == "" {
		errs = append(errs, "history.path: required when history is enabled")
	}

	return errs
}
