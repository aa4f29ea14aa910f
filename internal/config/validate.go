package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateArchive(); err != nil {
		return err
	}
	if err := c.validateTool(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DumpDir) == "" {
		return errors.New("paths.dump_dir must be set")
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		return errors.New("paths.state_dir must be set")
	}
	return nil
}

func (c *Config) validateArchive() error {
	if strings.ContainsAny(c.Archive.SidecarDir, `/\`) || c.Archive.SidecarDir == "." || c.Archive.SidecarDir == ".." {
		return fmt.Errorf("archive.sidecar_dir must be a single directory name, got %q", c.Archive.SidecarDir)
	}
	if strings.EqualFold(c.Archive.BackupSuffix, c.Archive.Extension) {
		return errors.New("archive.backup_suffix must differ from archive.extension")
	}
	if strings.ContainsAny(c.Archive.BackupSuffix, `/\`) {
		return fmt.Errorf("archive.backup_suffix must not contain path separators, got %q", c.Archive.BackupSuffix)
	}
	if strings.EqualFold(filepath.Ext("x"+c.Archive.BackupSuffix), c.Archive.Extension) {
		return errors.New("archive.backup_suffix must not end with archive.extension; backups would be picked up as archives")
	}
	return nil
}

func (c *Config) validateTool() error {
	if len(c.Tool.Candidates) == 0 {
		return errors.New("tool.candidates must include at least one 7-Zip command or path")
	}
	if c.Tool.TimeoutSeconds < 0 {
		return errors.New("tool.timeout_seconds must be >= 0")
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
