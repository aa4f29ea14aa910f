package preflight

import (
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/sys/unix"

	"zipseal/internal/config"
	"zipseal/internal/deps"
	"zipseal/internal/sevenzip"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSecret verifies that the password variable is set without revealing
// its value.
func CheckSecret(envName string) Result {
	const name = "Archive password"
	envName = strings.TrimSpace(envName)
	if envName == "" {
		return Result{Name: name, Detail: "secret.env not configured"}
	}
	if value, ok := os.LookupEnv(envName); !ok || value == "" {
		return Result{Name: name, Detail: fmt.Sprintf("%s environment variable not set", envName)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s is set", envName)}
}

// CheckTool locates a startable 7-Zip binary among candidates.
func CheckTool(ctx context.Context, candidates []string) Result {
	const name = "7-Zip"
	binary, err := sevenzip.NewLocator(candidates, nil).Locate(ctx)
	if err != nil {
		status := deps.CheckSevenZip(candidates)
		if status.Detail != "" {
			return Result{Name: name, Detail: status.Detail}
		}
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: binary}
}

// CheckSystemDeps evaluates the external binaries for the given config.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	if cfg == nil {
		return nil
	}
	return []deps.Status{deps.CheckSevenZip(cfg.Tool.Candidates)}
}
