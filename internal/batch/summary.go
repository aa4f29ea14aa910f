package batch

import (
	"context"
	"time"

	"zipseal/internal/probe"
)

// Mode distinguishes a mutating run from a dry-run scan.
type Mode string

const (
	ModeRun  Mode = "run"
	ModeScan Mode = "scan"
)

// Decision is what the batch did, or would do, with one archive.
type Decision string

const (
	DecisionNoSidecar        Decision = "no_sidecar"
	DecisionUntagged         Decision = "untagged"
	DecisionBackupExists     Decision = "backup_exists"
	DecisionAlreadyProtected Decision = "already_protected"
	DecisionProtected        Decision = "protected"
	DecisionFailed           Decision = "failed"
	DecisionPending          Decision = "pending"
)

// Outcome records the decision for one archive.
type Outcome struct {
	Archive  string
	Decision Decision
	// State is only meaningful when Probed reports true.
	State  probe.State
	Detail string
}

// Summary aggregates one pass over a directory.
//
// Tagged counts archives carrying the protect tag that are protected at the
// end of the pass: backup skips, already protected archives, and newly
// re-encoded ones. In scan mode it also includes Pending archives.
type Summary struct {
	RunID      string
	Mode       Mode
	Dir        string
	StartedAt  time.Time
	FinishedAt time.Time
	Total      int
	Tagged     int
	Processed  int
	Pending    int
	Failed     int
	Outcomes   []Outcome
}

// Probed reports whether the archive reached the protection probe, which
// is when State carries a result.
func (o Outcome) Probed() bool {
	switch o.Decision {
	case DecisionAlreadyProtected, DecisionProtected, DecisionFailed, DecisionPending:
		return true
	default:
		return false
	}
}

func (s *Summary) add(outcome Outcome) {
	s.Outcomes = append(s.Outcomes, outcome)
	switch outcome.Decision {
	case DecisionBackupExists, DecisionAlreadyProtected:
		s.Tagged++
	case DecisionProtected:
		s.Tagged++
		s.Processed++
	case DecisionPending:
		s.Tagged++
		s.Pending++
	case DecisionFailed:
		s.Failed++
	}
}

// Recorder persists run history. Errors are logged by the runner and never
// fail the batch.
type Recorder interface {
	BeginRun(ctx context.Context, summary Summary) error
	RecordOutcome(ctx context.Context, runID string, outcome Outcome) error
	FinishRun(ctx context.Context, summary Summary, runErr error) error
}
