package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"zipseal/internal/scratch"
	"zipseal/internal/services"
)

// staleScratchAge is how old an extraction directory must be before run
// removes it as left over from an interrupted run.
const staleScratchAge = 24 * time.Hour

func newRunCommand(ctx *commandContext) *cobra.Command {
	var dirFlag string
	var strict bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Protect every tagged archive in the dump directory",
		Long: "Scan the dump directory once and re-encode every archive whose sidecar carries\n" +
			"the PROTECT tag into an AES-256 zip. The original is kept as <name>.zip.backup,\n" +
			"which also marks the archive as handled for later runs.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			dir, err := ctx.resolveDumpDir(dirFlag)
			if err != nil {
				return err
			}
			password, err := cfg.Password()
			if err != nil {
				return services.Wrap(services.ErrConfiguration, "cli", "load secret", "", err)
			}

			logger, err := ctx.newLogger()
			if err != nil {
				return err
			}
			store, err := ctx.openJournal()
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
			}
			runner, err := ctx.newRunner(logger, store)
			if err != nil {
				return err
			}

			scratch.CleanStale(cmd.Context(), cfg.Paths.ScratchDir, staleScratchAge, logger)

			summary, runErr := runner.Run(cmd.Context(), dir, password)
			if summary.RunID == "" && runErr != nil {
				return runErr
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				if err := writeJSON(cmd, newSummaryView(summary)); err != nil {
					return err
				}
			} else {
				renderSummary(out, summary)
			}
			if runErr != nil {
				return runErr
			}
			if strict && summary.Failed > 0 {
				return fmt.Errorf("%d archive(s) failed", summary.Failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dirFlag, "dir", "", "Dump directory (overrides paths.dump_dir)")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when any archive fails")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the summary as JSON")
	return cmd
}

func newScanCommand(ctx *commandContext) *cobra.Command {
	var dirFlag string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Show what run would do without changing anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := ctx.resolveDumpDir(dirFlag)
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger()
			if err != nil {
				return err
			}
			store, err := ctx.openJournal()
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
			}
			runner, err := ctx.newRunner(logger, store)
			if err != nil {
				return err
			}

			summary, runErr := runner.Scan(cmd.Context(), dir)
			if summary.RunID == "" && runErr != nil {
				return runErr
			}
			if jsonOutput {
				if err := writeJSON(cmd, newSummaryView(summary)); err != nil {
					return err
				}
			} else {
				renderSummary(cmd.OutOrStdout(), summary)
			}
			return runErr
		},
	}

	cmd.Flags().StringVar(&dirFlag, "dir", "", "Dump directory (overrides paths.dump_dir)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the summary as JSON")
	return cmd
}
