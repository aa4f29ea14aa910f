package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"zipseal/internal/journal"
	"zipseal/internal/services"
)

type runView struct {
	ID         string      `json:"id"`
	Mode       string      `json:"mode"`
	Dir        string      `json:"dir"`
	Status     string      `json:"status"`
	Error      string      `json:"error,omitempty"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt *time.Time  `json:"finished_at,omitempty"`
	Total      int         `json:"total"`
	Tagged     int         `json:"tagged"`
	Processed  int         `json:"processed"`
	Pending    int         `json:"pending"`
	Failed     int         `json:"failed"`
	Events     []eventView `json:"events,omitempty"`
}

type eventView struct {
	Archive    string    `json:"archive"`
	Decision   string    `json:"decision"`
	ProbeState string    `json:"probe_state,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

func newRunView(run journal.Run) runView {
	view := runView{
		ID:        run.ID,
		Mode:      run.Mode,
		Dir:       run.Dir,
		Status:    run.Status,
		Error:     run.Error,
		StartedAt: run.StartedAt,
		Total:     run.Total,
		Tagged:    run.Tagged,
		Processed: run.Processed,
		Pending:   run.Pending,
		Failed:    run.Failed,
	}
	if !run.FinishedAt.IsZero() {
		finished := run.FinishedAt
		view.FinishedAt = &finished
	}
	return view
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var runID string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs from the journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openJournal()
			if err != nil {
				return err
			}
			if store == nil {
				return services.Wrap(services.ErrConfiguration, "cli", "open journal", "journal is disabled", nil)
			}
			defer store.Close()

			if id := strings.TrimSpace(runID); id != "" {
				return showRun(cmd, store, id, jsonOutput)
			}

			runs, err := store.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonOutput {
				views := make([]runView, 0, len(runs))
				for _, run := range runs {
					views = append(views, newRunView(run))
				}
				return writeJSON(cmd, views)
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					run.ID,
					run.Mode,
					run.Status,
					run.StartedAt.Local().Format("2006-01-02 15:04:05"),
					strconv.Itoa(run.Total),
					strconv.Itoa(run.Tagged),
					strconv.Itoa(run.Processed),
					strconv.Itoa(run.Failed),
				})
			}
			writeTable(out,
				[]string{"Run", "Mode", "Status", "Started", "Total", "Tagged", "Processed", "Failed"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
			)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show")
	cmd.Flags().StringVar(&runID, "run", "", "Show the archive decisions for one run")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print JSON")
	return cmd
}

func showRun(cmd *cobra.Command, store *journal.Store, id string, jsonOutput bool) error {
	run, err := store.GetRun(cmd.Context(), id)
	if err != nil {
		return err
	}
	if run == nil {
		return services.Wrap(services.ErrNotFound, "cli", "show run", fmt.Sprintf("run %s not found", id), nil)
	}
	events, err := store.RunEvents(cmd.Context(), id)
	if err != nil {
		return err
	}

	view := newRunView(*run)
	for _, event := range events {
		view.Events = append(view.Events, eventView{
			Archive:    event.Archive,
			Decision:   event.Decision,
			ProbeState: event.ProbeState,
			Detail:     event.Detail,
			RecordedAt: event.RecordedAt,
		})
	}
	if jsonOutput {
		return writeJSON(cmd, view)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s (%s, %s)\n", run.ID, run.Mode, run.Status)
	fmt.Fprintf(out, "Directory: %s\n", run.Dir)
	fmt.Fprintf(out, "Started: %s\n", run.StartedAt.Local().Format(time.RFC3339))
	if view.FinishedAt != nil {
		fmt.Fprintf(out, "Finished: %s\n", view.FinishedAt.Local().Format(time.RFC3339))
	}
	if run.Error != "" {
		fmt.Fprintf(out, "Error: %s\n", run.Error)
	}
	fmt.Fprintln(out)
	rows := make([][]string, 0, len(events))
	for _, event := range events {
		rows = append(rows, []string{event.Archive, event.Decision, event.ProbeState, truncate(event.Detail, 80)})
	}
	writeTable(out, []string{"Archive", "Decision", "Probe", "Detail"}, rows, nil)
	return nil
}
