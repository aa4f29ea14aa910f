// Package scratch manages the temporary extraction directories the
// re-encoder creates. Interrupted runs can leave them behind holding
// plaintext copies, so they are listed by status and cleaned before runs.
package scratch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"zipseal/internal/logging"
)

// Prefix names every extraction directory zipseal creates.
const Prefix = "zipseal-"

// Pattern is the os.MkdirTemp pattern for extraction directories.
const Pattern = Prefix + "*"

// Root resolves the configured scratch root; empty means the OS temp dir.
func Root(configured string) string {
	if root := strings.TrimSpace(configured); root != "" {
		return root
	}
	return os.TempDir()
}

// Dir describes one extraction directory found under the scratch root.
type Dir struct {
	Name    string
	Path    string
	ModTime time.Time
	Size    int64
}

// CleanupError pairs a directory path with its cleanup error.
type CleanupError struct {
	Path  string
	Error error
}

// CleanResult contains the outcome of a cleanup pass.
type CleanResult struct {
	Removed []string
	Errors  []CleanupError
}

// List returns the zipseal extraction directories under root. Other
// entries are ignored since root may be a shared temp directory.
func List(root string) ([]Dir, error) {
	entries, err := os.ReadDir(Root(root))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var dirs []Dir
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), Prefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		path := filepath.Join(Root(root), entry.Name())
		dirs = append(dirs, Dir{
			Name:    entry.Name(),
			Path:    path,
			ModTime: info.ModTime(),
			Size:    dirSize(path),
		})
	}
	return dirs, nil
}

// CleanStale removes extraction directories older than maxAge.
func CleanStale(ctx context.Context, root string, maxAge time.Duration, logger *slog.Logger) CleanResult {
	result := CleanResult{}
	logger = logging.NewComponentLogger(logger, "scratch")

	dirs, err := List(root)
	if err != nil {
		result.Errors = append(result.Errors, CleanupError{Path: Root(root), Error: err})
		return result
	}

	cutoff := time.Now().Add(-maxAge)
	for _, dir := range dirs {
		if ctx.Err() != nil {
			break
		}
		if !dir.ModTime.Before(cutoff) {
			continue
		}
		if err := os.RemoveAll(dir.Path); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: dir.Path, Error: err})
			logging.WarnWithContext(ctx, logger, "failed to remove stale scratch directory", "scratch_cleanup_failed",
				logging.String("path", dir.Path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check paths.scratch_dir permissions"),
				logging.String(logging.FieldImpact, "extracted plaintext left on disk"),
			)
			continue
		}
		result.Removed = append(result.Removed, dir.Path)
		logger.InfoContext(ctx, "removed stale scratch directory",
			logging.String("path", dir.Path),
			logging.Duration("age", time.Since(dir.ModTime)),
			logging.String(logging.FieldEventType, "scratch_cleanup"),
		)
	}
	return result
}

func dirSize(path string) int64 {
	var size int64
	_ = filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.Type().IsRegular() {
			if info, err := d.Info(); err == nil {
				size += info.Size()
			}
		}
		return nil
	})
	return size
}
