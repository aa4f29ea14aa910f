package sevenzip

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

const (
	maxCapturedOutput = 64 * 1024
	waitDelay         = 2 * time.Second
)

// Result captures how a finished command exited.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Executor abstracts command execution for testability. A returned error
// means the command could not be started or was cancelled; a command that
// ran and exited non-zero reports that through Result.ExitCode.
type Executor interface {
	Run(ctx context.Context, dir, binary string, args []string) (Result, error)
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, dir, binary string, args []string) (Result, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	cmd.Dir = dir
	cmd.WaitDelay = waitDelay
	stdout := &cappedBuffer{limit: maxCapturedOutput}
	stderr := &cappedBuffer{limit: maxCapturedOutput}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	err := cmd.Run()
	result := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return result, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, ctxErr
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}
	return result, fmt.Errorf("start %s: %w", binary, err)
}

// cappedBuffer keeps the first limit bytes written and discards the rest,
// so a chatty tool cannot grow memory without bound.
type cappedBuffer struct {
	buf   bytes.Buffer
	limit int
}

func (c *cappedBuffer) Write(p []byte) (int, error) {
	if room := c.limit - c.buf.Len(); room > 0 {
		if len(p) > room {
			c.buf.Write(p[:room])
		} else {
			c.buf.Write(p)
		}
	}
	return len(p), nil
}

func (c *cappedBuffer) String() string {
	return c.buf.String()
}
