package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"zipseal/internal/batch"
	"zipseal/internal/config"
	"zipseal/internal/journal"
	"zipseal/internal/logging"
	"zipseal/internal/probe"
	"zipseal/internal/reencode"
	"zipseal/internal/services"
	"zipseal/internal/sevenzip"
	"zipseal/internal/sidecar"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "cli", "load config", "", err)
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "cli", "ensure directories", "", err)
			return
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

func (c *commandContext) newLogger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return logger, nil
}

// openJournal returns nil when the journal is disabled.
func (c *commandContext) openJournal() (*journal.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.Journal.Enabled {
		return nil, nil
	}
	store, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	return store, nil
}

// newRunner wires the batch runner from configuration. store may be nil.
func (c *commandContext) newRunner(logger *slog.Logger, store *journal.Store) (*batch.Runner, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	reencoder, err := reencode.New(reencode.Options{
		Locator:      sevenzip.NewLocator(cfg.Tool.Candidates, logger),
		Creator:      sevenzip.New(cfg.Tool.TimeoutSeconds),
		BackupSuffix: cfg.Archive.BackupSuffix,
		ScratchRoot:  cfg.Paths.ScratchDir,
		Logger:       logger,
	})
	if err != nil {
		return nil, err
	}

	opts := batch.Options{
		Loader:       sidecar.NewLoader(cfg.Archive.SidecarDir, cfg.Archive.SidecarSuffix, logger),
		Prober:       probe.New(logger),
		Protector:    reencoder,
		Extension:    cfg.Archive.Extension,
		BackupSuffix: cfg.Archive.BackupSuffix,
		LockPath:     cfg.LockPath(),
		Logger:       logger,
	}
	if store != nil {
		opts.Recorder = store
	}
	return batch.NewRunner(opts)
}

// resolveDumpDir prefers the --dir flag over the configured directory.
func (c *commandContext) resolveDumpDir(flagValue string) (string, error) {
	if dir := strings.TrimSpace(flagValue); dir != "" {
		return config.ExpandPath(dir)
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	return cfg.Paths.DumpDir, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
