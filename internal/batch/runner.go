package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"zipseal/internal/fileutil"
	"zipseal/internal/logging"
	"zipseal/internal/probe"
	"zipseal/internal/services"
	"zipseal/internal/sidecar"
)

// SidecarLoader reads the metadata document of an archive.
type SidecarLoader interface {
	Load(ctx context.Context, archivePath string) (*sidecar.Document, bool)
}

// Prober classifies an archive's protection.
type Prober interface {
	Probe(ctx context.Context, archivePath string) probe.State
}

// Protector re-encodes an archive with a password.
type Protector interface {
	Reencode(ctx context.Context, archivePath, password string) error
}

// Options configures a Runner.
type Options struct {
	Loader    SidecarLoader
	Prober    Prober
	Protector Protector
	// Recorder is optional.
	Recorder     Recorder
	Extension    string
	BackupSuffix string
	// LockPath guards against overlapping runs; empty disables locking.
	LockPath string
	Logger   *slog.Logger
}

// Runner executes batch passes.
type Runner struct {
	loader       SidecarLoader
	prober       Prober
	protector    Protector
	recorder     Recorder
	extension    string
	backupSuffix string
	lockPath     string
	logger       *slog.Logger
	now          func() time.Time
}

// NewRunner validates opts and builds a Runner. Protector may be nil for a
// runner that only scans.
func NewRunner(opts Options) (*Runner, error) {
	if opts.Loader == nil {
		return nil, errors.New("batch: sidecar loader required")
	}
	if opts.Prober == nil {
		return nil, errors.New("batch: prober required")
	}
	ext := strings.ToLower(strings.TrimSpace(opts.Extension))
	if ext == "" {
		ext = ".zip"
	}
	suffix := strings.TrimSpace(opts.BackupSuffix)
	if suffix == "" {
		suffix = ".backup"
	}
	return &Runner{
		loader:       opts.Loader,
		prober:       opts.Prober,
		protector:    opts.Protector,
		recorder:     opts.Recorder,
		extension:    ext,
		backupSuffix: suffix,
		lockPath:     strings.TrimSpace(opts.LockPath),
		logger:       logging.NewComponentLogger(opts.Logger, "batch"),
		now:          time.Now,
	}, nil
}

// Run protects every tagged, unprotected archive in dir. The returned error
// is non-nil only for configuration problems, which are detected before any
// archive is touched, and for cancellation, which returns the partial
// summary.
func (r *Runner) Run(ctx context.Context, dir, password string) (Summary, error) {
	if r.protector == nil {
		return Summary{}, services.Wrap(services.ErrConfiguration, "batch", "run", "no protector configured", nil)
	}
	if password == "" {
		return Summary{}, services.Wrap(services.ErrConfiguration, "batch", "load secret", "archive password not set", nil)
	}
	if err := checkDir(dir); err != nil {
		return Summary{}, err
	}

	if r.lockPath != "" {
		if err := os.MkdirAll(filepath.Dir(r.lockPath), 0o755); err != nil {
			return Summary{}, services.Wrap(services.ErrConfiguration, "batch", "acquire lock", r.lockPath, err)
		}
		lock := flock.New(r.lockPath)
		ok, err := lock.TryLock()
		if err != nil {
			return Summary{}, services.Wrap(services.ErrConfiguration, "batch", "acquire lock", r.lockPath, err)
		}
		if !ok {
			return Summary{}, services.Wrap(services.ErrConfiguration, "batch", "acquire lock",
				"another zipseal run is already in progress", nil)
		}
		defer func() {
			if err := lock.Unlock(); err != nil {
				r.logger.Warn("failed to release run lock", logging.Error(err))
			}
		}()
	}

	return r.execute(ctx, ModeRun, dir, password)
}

// Scan walks dir through the same decisions as Run without changing
// anything. Archives Run would re-encode are reported as pending.
func (r *Runner) Scan(ctx context.Context, dir string) (Summary, error) {
	if err := checkDir(dir); err != nil {
		return Summary{}, err
	}
	return r.execute(ctx, ModeScan, dir, "")
}

func checkDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "batch", "open directory",
			fmt.Sprintf("dump directory not found at %s", dir), err)
	}
	if !info.IsDir() {
		return services.Wrap(services.ErrConfiguration, "batch", "open directory",
			fmt.Sprintf("%s is not a directory", dir), nil)
	}
	return nil
}

func (r *Runner) execute(ctx context.Context, mode Mode, dir, password string) (Summary, error) {
	summary := Summary{
		RunID:     uuid.NewString(),
		Mode:      mode,
		Dir:       dir,
		StartedAt: r.now().UTC(),
	}
	ctx = services.WithRunID(ctx, summary.RunID)

	archives, err := Discover(dir, r.extension)
	if err != nil {
		return summary, services.Wrap(services.ErrConfiguration, "batch", "list archives", dir, err)
	}
	summary.Total = len(archives)
	if len(archives) == 0 {
		r.logger.InfoContext(ctx, "no zip files found in the dump directory", logging.String("dir", dir))
		summary.FinishedAt = r.now().UTC()
		return summary, nil
	}
	r.logger.InfoContext(ctx, "found zip files",
		logging.Int("count", len(archives)),
		logging.String("dir", dir),
		logging.String("mode", string(mode)),
	)

	r.record(ctx, "begin run", func() error { return r.recorder.BeginRun(ctx, summary) })

	var runErr error
	for _, archive := range archives {
		if err := ctx.Err(); err != nil {
			runErr = err
			r.logger.WarnContext(ctx, "batch cancelled", logging.Int("remaining", summary.Total-len(summary.Outcomes)))
			break
		}
		outcome := r.evaluate(services.WithArchive(ctx, filepath.Base(archive)), mode, archive, password)
		summary.add(outcome)
		r.record(ctx, "record outcome", func() error { return r.recorder.RecordOutcome(ctx, summary.RunID, outcome) })
	}

	summary.FinishedAt = r.now().UTC()
	r.record(ctx, "finish run", func() error { return r.recorder.FinishRun(ctx, summary, runErr) })

	r.logger.InfoContext(ctx, "batch complete",
		logging.Int("total", summary.Total),
		logging.Int("tagged", summary.Tagged),
		logging.Int("processed", summary.Processed),
		logging.Int("pending", summary.Pending),
		logging.Int("failed", summary.Failed),
	)
	return summary, runErr
}

func (r *Runner) evaluate(ctx context.Context, mode Mode, archive, password string) Outcome {
	outcome := Outcome{Archive: filepath.Base(archive)}
	r.logger.InfoContext(ctx, "processing archive")

	doc, ok := r.loader.Load(ctx, archive)
	if !ok {
		outcome.Decision = DecisionNoSidecar
		return outcome
	}
	if !sidecar.HasProtectTag(doc) {
		r.logger.InfoContext(ctx, "no PROTECT tag found, skipping")
		outcome.Decision = DecisionUntagged
		return outcome
	}
	r.logger.InfoContext(ctx, "PROTECT tag found")

	backup := archive + r.backupSuffix
	if fileutil.Exists(backup) {
		r.logger.InfoContext(ctx, "backup file already exists, skipping (already processed)",
			logging.String("backup", filepath.Base(backup)))
		outcome.Decision = DecisionBackupExists
		return outcome
	}

	outcome.State = r.prober.Probe(ctx, archive)
	if outcome.State == probe.StateProtected {
		r.logger.InfoContext(ctx, "already password protected, skipping")
		outcome.Decision = DecisionAlreadyProtected
		return outcome
	}

	if mode == ModeScan {
		outcome.Decision = DecisionPending
		outcome.Detail = "would recreate with password protection"
		return outcome
	}

	r.logger.InfoContext(ctx, "not password protected, recreating with password",
		logging.String("probe_state", outcome.State.String()))
	if err := r.protector.Reencode(ctx, archive, password); err != nil {
		outcome.Decision = DecisionFailed
		outcome.Detail = err.Error()
		return outcome
	}
	outcome.Decision = DecisionProtected
	return outcome
}

func (r *Runner) record(ctx context.Context, op string, fn func() error) {
	if r.recorder == nil {
		return
	}
	if err := fn(); err != nil {
		logging.WarnWithContext(ctx, r.logger, "journal write failed", "journal_write_failed",
			logging.String("operation", op),
			logging.Error(err),
			logging.String(logging.FieldImpact, "run history incomplete"),
			logging.String(logging.FieldErrorHint, "check the journal database path and permissions"),
		)
	}
}
