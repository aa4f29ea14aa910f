package reencode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"zipseal/internal/fileutil"
	"zipseal/internal/logging"
	"zipseal/internal/scratch"
	"zipseal/internal/services"
)

// ToolLocator finds the 7-Zip binary to run.
type ToolLocator interface {
	Locate(ctx context.Context) (string, error)
}

// ArchiveCreator writes an encrypted archive from a directory.
type ArchiveCreator interface {
	Create(ctx context.Context, binary, archivePath, sourceDir, password string) error
}

// Options configures a Reencoder.
type Options struct {
	Locator      ToolLocator
	Creator      ArchiveCreator
	BackupSuffix string
	// ScratchRoot is where extraction directories are created; empty means
	// the OS temp directory.
	ScratchRoot string
	Logger      *slog.Logger
}

// Reencoder performs the backup, re-encode, and rollback sequence.
type Reencoder struct {
	locator      ToolLocator
	creator      ArchiveCreator
	backupSuffix string
	scratchRoot  string
	logger       *slog.Logger
	copyFile     func(src, dst string) error
}

// New validates opts and builds a Reencoder.
func New(opts Options) (*Reencoder, error) {
	if opts.Locator == nil {
		return nil, errors.New("reencode: tool locator required")
	}
	if opts.Creator == nil {
		return nil, errors.New("reencode: archive creator required")
	}
	suffix := strings.TrimSpace(opts.BackupSuffix)
	if suffix == "" {
		suffix = ".backup"
	}
	return &Reencoder{
		locator:      opts.Locator,
		creator:      opts.Creator,
		backupSuffix: suffix,
		scratchRoot:  strings.TrimSpace(opts.ScratchRoot),
		logger:       logging.NewComponentLogger(opts.Logger, "reencode"),
		copyFile:     fileutil.CopyFilePreserve,
	}, nil
}

// BackupPath returns where the backup of archivePath is kept.
func (r *Reencoder) BackupPath(archivePath string) string {
	return archivePath + r.backupSuffix
}

// Protect re-encodes archivePath with password and reports success. Failures
// are logged; the original bytes are back in place whenever it returns false.
func (r *Reencoder) Protect(ctx context.Context, archivePath, password string) bool {
	return r.Reencode(ctx, archivePath, password) == nil
}

// Reencode is Protect with the failure returned instead of only logged.
func (r *Reencoder) Reencode(ctx context.Context, archivePath, password string) (err error) {
	name := filepath.Base(archivePath)
	ctx = services.WithArchive(ctx, name)

	r.logger.InfoContext(ctx, "recreating archive with password protection")

	if password == "" {
		err = services.Wrap(services.ErrConfiguration, "reencode", "check password", "password required", nil)
		r.logFailure(ctx, "check password", err)
		return err
	}

	workDir, err := os.MkdirTemp(r.scratchRoot, scratch.Pattern)
	if err != nil {
		err = services.Wrap(services.ErrTransient, "reencode", "create scratch", "", err)
		r.logFailure(ctx, "create scratch", err)
		return err
	}
	defer func() {
		if rmErr := os.RemoveAll(workDir); rmErr != nil {
			logging.WarnWithContext(ctx, r.logger, "scratch directory not removed", "scratch_cleanup_failed",
				logging.String("scratch", workDir),
				logging.Error(rmErr),
				logging.String(logging.FieldImpact, "extracted copy left on disk"),
				logging.String(logging.FieldErrorHint, "remove the directory manually"),
			)
		}
	}()

	if err := Extract(archivePath, workDir); err != nil {
		err = services.Wrap(services.ErrValidation, "reencode", "extract", "", err)
		r.logFailure(ctx, "extract", err)
		return err
	}

	backup := r.BackupPath(archivePath)
	if fileutil.Exists(backup) {
		err = services.Wrap(services.ErrValidation, "reencode", "backup",
			fmt.Sprintf("backup %s already exists", filepath.Base(backup)), nil)
		r.logFailure(ctx, "backup", err)
		return err
	}
	if err := r.copyFile(archivePath, backup); err != nil {
		// A partial backup would mark the archive as handled on the next run.
		_ = os.Remove(backup)
		err = services.Wrap(services.ErrTransient, "reencode", "backup", "", err)
		r.logFailure(ctx, "backup", err)
		return err
	}
	r.logger.InfoContext(ctx, "created backup", logging.String("backup", filepath.Base(backup)))

	defer func() {
		if err != nil {
			r.restore(ctx, archivePath, backup)
		}
	}()

	binary, err := r.locator.Locate(ctx)
	if err != nil {
		r.logFailure(ctx, "locate tool", err)
		return err
	}

	if err := os.Remove(archivePath); err != nil {
		err = services.Wrap(services.ErrTransient, "reencode", "remove original", "", err)
		r.logFailure(ctx, "remove original", err)
		return err
	}

	if err := r.creator.Create(ctx, binary, archivePath, workDir, password); err != nil {
		r.logFailure(ctx, "create archive", err)
		return err
	}

	r.logger.InfoContext(ctx, "recreated archive with password protection")
	return nil
}

func (r *Reencoder) restore(ctx context.Context, archivePath, backup string) {
	if err := r.copyFile(backup, archivePath); err != nil {
		logging.ErrorWithContext(ctx, r.logger, "restore from backup failed", "restore_failed",
			logging.String("backup", filepath.Base(backup)),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "copy the backup over the archive manually"),
		)
		return
	}
	r.logger.InfoContext(ctx, "restored archive from backup")
}

func (r *Reencoder) logFailure(ctx context.Context, stage string, err error) {
	logging.ErrorWithContext(ctx, r.logger, "error recreating archive", services.Category(err),
		logging.String(logging.FieldStage, stage),
		logging.Error(err),
	)
}
