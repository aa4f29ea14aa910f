package sevenzip

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"zipseal/internal/logging"
	"zipseal/internal/services"
)

// ErrNotFound reports that no configured candidate could be started.
var ErrNotFound = errors.New("7-Zip not found; install 7-Zip or add it to PATH")

const probeTimeout = 15 * time.Second

// Locator finds a usable 7-Zip binary from an ordered candidate list.
type Locator struct {
	candidates []string
	exec       Executor
	logger     *slog.Logger
}

// LocatorOption configures a Locator.
type LocatorOption func(*Locator)

// WithLocatorExecutor injects a custom executor (primarily for tests).
func WithLocatorExecutor(exec Executor) LocatorOption {
	return func(l *Locator) {
		if exec != nil {
			l.exec = exec
		}
	}
}

// NewLocator builds a locator over candidates, tried in order. Bare names
// resolve through PATH; anything containing a path separator is used as a
// path after environment expansion.
func NewLocator(candidates []string, logger *slog.Logger, opts ...LocatorOption) *Locator {
	cleaned := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		if trimmed := strings.TrimSpace(candidate); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	locator := &Locator{
		candidates: cleaned,
		exec:       commandExecutor{},
		logger:     logging.NewComponentLogger(logger, "sevenzip"),
	}
	for _, opt := range opts {
		opt(locator)
	}
	return locator
}

// Candidates returns the configured candidate list.
func (l *Locator) Candidates() []string {
	out := make([]string, len(l.candidates))
	copy(out, l.candidates)
	return out
}

// Locate returns the first candidate that can be started, whatever its exit
// status.
func (l *Locator) Locate(ctx context.Context) (string, error) {
	for _, candidate := range l.candidates {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		binary, ok := Resolve(candidate)
		if !ok {
			l.logger.DebugContext(ctx, "7-Zip candidate not present", logging.String("candidate", candidate))
			continue
		}
		probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		_, err := l.exec.Run(probeCtx, "", binary, nil)
		cancel()
		if err != nil {
			l.logger.DebugContext(ctx, "7-Zip candidate not startable",
				logging.String("candidate", binary),
				logging.Error(err),
			)
			continue
		}
		l.logger.DebugContext(ctx, "using 7-Zip", logging.String("binary", binary))
		return binary, nil
	}
	return "", services.Wrap(services.ErrNotFound, "reencode", "locate tool", "", ErrNotFound)
}

// Resolve maps a candidate to an executable path without running it. The
// boolean is false when the candidate does not exist.
func Resolve(candidate string) (string, bool) {
	candidate = os.ExpandEnv(strings.TrimSpace(candidate))
	if candidate == "" {
		return "", false
	}
	if !strings.ContainsAny(candidate, `/\`) {
		path, err := exec.LookPath(candidate)
		if err != nil {
			return "", false
		}
		return path, true
	}
	info, err := os.Stat(filepath.Clean(candidate))
	if err != nil || info.IsDir() {
		return "", false
	}
	return candidate, true
}
