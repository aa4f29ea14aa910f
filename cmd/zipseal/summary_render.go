package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"zipseal/internal/batch"
)

type outcomeView struct {
	Archive    string `json:"archive"`
	Decision   string `json:"decision"`
	ProbeState string `json:"probe_state,omitempty"`
	Detail     string `json:"detail,omitempty"`
}

type summaryView struct {
	RunID      string        `json:"run_id"`
	Mode       string        `json:"mode"`
	Dir        string        `json:"dir"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Total      int           `json:"total"`
	Tagged     int           `json:"tagged"`
	Processed  int           `json:"processed"`
	Pending    int           `json:"pending"`
	Failed     int           `json:"failed"`
	Outcomes   []outcomeView `json:"outcomes"`
}

func newSummaryView(summary batch.Summary) summaryView {
	view := summaryView{
		RunID:      summary.RunID,
		Mode:       string(summary.Mode),
		Dir:        summary.Dir,
		StartedAt:  summary.StartedAt,
		FinishedAt: summary.FinishedAt,
		Total:      summary.Total,
		Tagged:     summary.Tagged,
		Processed:  summary.Processed,
		Pending:    summary.Pending,
		Failed:     summary.Failed,
		Outcomes:   make([]outcomeView, 0, len(summary.Outcomes)),
	}
	for _, o := range summary.Outcomes {
		ov := outcomeView{Archive: o.Archive, Decision: string(o.Decision), Detail: o.Detail}
		if o.Probed() {
			ov.ProbeState = o.State.String()
		}
		view.Outcomes = append(view.Outcomes, ov)
	}
	return view
}

func renderSummary(out io.Writer, summary batch.Summary) {
	if summary.Total == 0 {
		fmt.Fprintln(out, "No zip files found in the dump directory")
	} else {
		fmt.Fprintf(out, "Found %d zip files in %s\n\n", summary.Total, summary.Dir)
		rows := make([][]string, 0, len(summary.Outcomes))
		for _, o := range summary.Outcomes {
			state := ""
			if o.Probed() {
				state = o.State.String()
			}
			rows = append(rows, []string{o.Archive, decisionLabel(o.Decision), state, truncate(o.Detail, 80)})
		}
		writeTable(out, []string{"Archive", "Decision", "Probe", "Detail"}, rows, nil)
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, "Summary:")
	fmt.Fprintf(out, "  Total zip files: %d\n", summary.Total)
	fmt.Fprintf(out, "  Files with PROTECT tag: %d\n", summary.Tagged)
	if summary.Mode == batch.ModeScan {
		fmt.Fprintf(out, "  Files pending protection: %d\n", summary.Pending)
	} else {
		fmt.Fprintf(out, "  Files processed (recreated): %d\n", summary.Processed)
		fmt.Fprintf(out, "  Files failed: %d\n", summary.Failed)
	}
	if summary.RunID != "" {
		fmt.Fprintf(out, "  Run ID: %s\n", summary.RunID)
	}
}

func decisionLabel(decision batch.Decision) string {
	switch decision {
	case batch.DecisionNoSidecar:
		return "skipped (no sidecar)"
	case batch.DecisionUntagged:
		return "skipped (no PROTECT tag)"
	case batch.DecisionBackupExists:
		return "skipped (backup exists)"
	case batch.DecisionAlreadyProtected:
		return "skipped (already protected)"
	case batch.DecisionProtected:
		return "protected"
	case batch.DecisionFailed:
		return "failed"
	case batch.DecisionPending:
		return "would protect"
	default:
		return string(decision)
	}
}

func truncate(value string, limit int) string {
	value = strings.Join(strings.Fields(value), " ")
	runes := []rune(value)
	if limit <= 0 || len(runes) <= limit {
		return value
	}
	return string(runes[:limit-1]) + "…"
}
