package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeArchive()
	c.normalizeSecret()
	c.normalizeTool()
	if err := c.normalizeJournal(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DumpDir) == "" {
		if value, ok := os.LookupEnv("ZIPSEAL_DUMP_DIR"); ok && strings.TrimSpace(value) != "" {
			c.Paths.DumpDir = strings.TrimSpace(value)
		} else {
			c.Paths.DumpDir = defaultDumpDir
		}
	}
	if c.Paths.DumpDir, err = expandPath(c.Paths.DumpDir); err != nil {
		return fmt.Errorf("paths.dump_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.ScratchDir = strings.TrimSpace(c.Paths.ScratchDir)
	if c.Paths.ScratchDir, err = expandPath(c.Paths.ScratchDir); err != nil {
		return fmt.Errorf("paths.scratch_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeArchive() {
	c.Archive.Extension = strings.ToLower(strings.TrimSpace(c.Archive.Extension))
	if c.Archive.Extension == "" {
		c.Archive.Extension = defaultExtension
	}
	if !strings.HasPrefix(c.Archive.Extension, ".") {
		c.Archive.Extension = "." + c.Archive.Extension
	}
	c.Archive.BackupSuffix = strings.TrimSpace(c.Archive.BackupSuffix)
	if c.Archive.BackupSuffix == "" {
		c.Archive.BackupSuffix = defaultBackupSuffix
	}
	c.Archive.SidecarDir = strings.TrimSpace(c.Archive.SidecarDir)
	if c.Archive.SidecarDir == "" {
		c.Archive.SidecarDir = defaultSidecarDir
	}
	c.Archive.SidecarSuffix = strings.TrimSpace(c.Archive.SidecarSuffix)
	if c.Archive.SidecarSuffix == "" {
		c.Archive.SidecarSuffix = defaultSidecarSuffix
	}
}

func (c *Config) normalizeSecret() {
	c.Secret.Env = strings.TrimSpace(c.Secret.Env)
	if c.Secret.Env == "" {
		c.Secret.Env = defaultSecretEnv
	}
}

func (c *Config) normalizeTool() {
	candidates := make([]string, 0, len(c.Tool.Candidates))
	seen := make(map[string]struct{}, len(c.Tool.Candidates))
	for _, candidate := range c.Tool.Candidates {
		expanded := strings.TrimSpace(os.Expand(candidate, lookupUserEnv))
		if expanded == "" {
			continue
		}
		if _, exists := seen[expanded]; exists {
			continue
		}
		seen[expanded] = struct{}{}
		candidates = append(candidates, expanded)
	}
	c.Tool.Candidates = candidates
	if c.Tool.TimeoutSeconds < 0 {
		c.Tool.TimeoutSeconds = 0
	}
}

func (c *Config) normalizeJournal() error {
	var err error
	if strings.TrimSpace(c.Journal.Path) == "" {
		c.Journal.Path = filepath.Join(c.Paths.StateDir, defaultJournalName)
	}
	if c.Journal.Path, err = expandPath(c.Journal.Path); err != nil {
		return fmt.Errorf("journal.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

// lookupUserEnv expands candidate placeholders. USERNAME falls back to USER
// so Windows-style paths still resolve under POSIX shells.
func lookupUserEnv(key string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	if key == "USERNAME" {
		return os.Getenv("USER")
	}
	return ""
}
