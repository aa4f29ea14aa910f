package sevenzip

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"zipseal/internal/services"
)

// Client runs 7-Zip to write password-protected archives.
type Client struct {
	timeout time.Duration
	exec    Executor
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// New constructs a client. A timeoutSeconds of zero disables the timeout.
func New(timeoutSeconds int, opts ...Option) *Client {
	client := &Client{
		timeout: time.Duration(timeoutSeconds) * time.Second,
		exec:    commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// CreateArgs returns the 7-Zip arguments that add everything under
// sourceDir to an AES-256 zip at archivePath. The wildcard is expanded by
// 7-Zip itself, not by a shell.
func CreateArgs(archivePath, sourceDir, password string) []string {
	return []string{
		"a",
		"-tzip",
		"-p" + password,
		"-mem=AES256",
		archivePath,
		filepath.Join(sourceDir, "*"),
	}
}

// MaskArgs returns args with the password argument replaced.
func MaskArgs(args []string) []string {
	masked := make([]string, len(args))
	for i, arg := range args {
		if strings.HasPrefix(arg, "-p") && len(arg) > 2 {
			arg = "-p****"
		}
		masked[i] = arg
	}
	return masked
}

// Create writes archivePath from the contents of sourceDir with binary,
// running inside sourceDir. A non-zero exit status is an error carrying the
// tool's stderr.
func (c *Client) Create(ctx context.Context, binary, archivePath, sourceDir, password string) error {
	if strings.TrimSpace(binary) == "" {
		return services.Wrap(services.ErrValidation, "reencode", "create archive", "7-Zip binary required", nil)
	}
	if password == "" {
		return services.Wrap(services.ErrValidation, "reencode", "create archive", "password required", nil)
	}
	absArchive, err := filepath.Abs(archivePath)
	if err != nil {
		return fmt.Errorf("resolve archive path: %w", err)
	}

	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	result, err := c.exec.Run(runCtx, sourceDir, binary, CreateArgs(absArchive, sourceDir, password))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return services.Wrap(services.ErrTimeout, "reencode", "create archive",
				fmt.Sprintf("7-Zip did not finish within %s", c.timeout), err)
		}
		return services.Wrap(services.ErrExternalTool, "reencode", "create archive", "run 7-Zip", err)
	}
	if result.ExitCode != 0 {
		detail := strings.TrimSpace(result.Stderr)
		if detail == "" {
			detail = strings.TrimSpace(result.Stdout)
		}
		return services.Wrap(services.ErrExternalTool, "reencode", "create archive",
			fmt.Sprintf("7-Zip failed (exit %d): %s", result.ExitCode, strings.ReplaceAll(detail, password, "****")), nil)
	}
	return nil
}
