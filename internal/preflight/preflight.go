package preflight

import (
	"context"
	"os"

	"zipseal/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Dump directory", cfg.Paths.DumpDir),
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
	}

	scratch := cfg.Paths.ScratchDir
	if scratch == "" {
		scratch = os.TempDir()
	}
	results = append(results, CheckDirectoryAccess("Scratch directory", scratch))

	results = append(results, CheckSecret(cfg.Secret.Env))
	results = append(results, CheckTool(ctx, cfg.Tool.Candidates))
	return results
}
