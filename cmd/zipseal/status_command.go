package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"zipseal/internal/journal"
	"zipseal/internal/preflight"
	"zipseal/internal/scratch"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show configuration, tool and journal health",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			lines := renderSectionHeader("Configuration", colorize)
			lines = append(lines,
				renderStatusLine("Config file", statusInfo, ctx.configPath, colorize),
				renderStatusLine("Dump directory", statusInfo, cfg.Paths.DumpDir, colorize),
				renderStatusLine("Secret variable", statusInfo, cfg.Secret.Env, colorize),
			)
			fmt.Fprintln(out, strings.Join(lines, "\n"))
			fmt.Fprintln(out)

			results := preflight.RunAll(cmd.Context(), cfg)
			lines = renderSectionHeader("Checks", colorize)
			lines = append(lines, checkLines(results, colorize)...)
			lines = append(lines, scratchLine(cfg.Paths.ScratchDir, colorize))
			fmt.Fprintln(out, strings.Join(lines, "\n"))
			fmt.Fprintln(out)

			lines = renderSectionHeader("Journal", colorize)
			lines = append(lines, journalLines(cmd, ctx, colorize)...)
			fmt.Fprintln(out, strings.Join(lines, "\n"))

			if strict {
				for _, result := range results {
					if !result.Passed {
						return fmt.Errorf("preflight check failed: %s", result.Name)
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when any check fails")
	return cmd
}

func scratchLine(root string, colorize bool) string {
	dirs, err := scratch.List(root)
	if err != nil {
		return renderStatusLine("Scratch leftovers", statusError, err.Error(), colorize)
	}
	if len(dirs) == 0 {
		return renderStatusLine("Scratch leftovers", statusOK, "none", colorize)
	}
	var size int64
	for _, dir := range dirs {
		size += dir.Size
	}
	message := fmt.Sprintf("%d director(ies), %s under %s", len(dirs), humanize.IBytes(uint64(size)), scratch.Root(root))
	return renderStatusLine("Scratch leftovers", statusWarn, message, colorize)
}

func journalLines(cmd *cobra.Command, ctx *commandContext, colorize bool) []string {
	cfg := ctx.configValue()
	if !cfg.Journal.Enabled {
		return []string{renderStatusLine("Journal", statusWarn, "disabled", colorize)}
	}
	lines := []string{renderStatusLine("Journal", statusInfo, cfg.Journal.Path, colorize)}

	store, err := ctx.openJournal()
	if err != nil {
		return append(lines, renderStatusLine("Last run", statusError, err.Error(), colorize))
	}
	defer store.Close()

	runs, err := store.RecentRuns(cmd.Context(), 1)
	if err != nil {
		return append(lines, renderStatusLine("Last run", statusError, err.Error(), colorize))
	}
	if len(runs) == 0 {
		return append(lines, renderStatusLine("Last run", statusInfo, "none recorded", colorize))
	}
	last := runs[0]
	kind := statusOK
	switch {
	case last.Failed > 0 || last.Status == journal.StatusFailed:
		kind = statusError
	case last.Status != journal.StatusCompleted:
		kind = statusWarn
	}
	message := fmt.Sprintf("%s %s %s (processed %d, failed %d)",
		last.Mode, last.Status, last.StartedAt.Local().Format("2006-01-02 15:04:05"), last.Processed, last.Failed)
	return append(lines, renderStatusLine("Last run", kind, message, colorize))
}
