package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"zipseal/internal/config"
	"zipseal/internal/journal"
	"zipseal/internal/testsupport"
)

const (
	testSecretEnv = "ZIPSEAL_TEST_PASS"
	testPassword  = "cli secret"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	payload    string
	argsLog    string
}

// setupCLITestEnv writes a config whose only 7-Zip candidate is a stub that
// copies a pre-built encrypted archive into place.
func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", base)
	payload := filepath.Join(base, "sealed.zip")
	argsLog := filepath.Join(base, "args.log")
	testsupport.WriteEncryptedZip(t, payload, testPassword, testsupport.ZipEntry{Name: "doc.txt", Data: []byte("sealed")})

	all := append([]testsupport.ConfigOption{
		testsupport.WithSecretEnv(testSecretEnv, testPassword),
		testsupport.WithStubTool(testsupport.SevenZipCopyScript(payload, argsLog)),
	}, opts...)
	cfg := testsupport.NewConfig(t, all...)

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, payload: payload, argsLog: argsLog}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content, err := cfg.Encode()
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func mustOpenJournal(t *testing.T, cfg *config.Config) *journal.Store {
	t.Helper()
	store, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		t.Fatalf("journal.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func (env *cliTestEnv) plainArchive(t *testing.T, name string, tags ...string) string {
	t.Helper()
	path := filepath.Join(env.cfg.Paths.DumpDir, name)
	testsupport.WriteZip(t, path, testsupport.ZipEntry{Name: "readme.txt", Data: []byte("contents of " + name)})
	if len(tags) > 0 {
		testsupport.WriteSidecar(t, env.cfg.Paths.DumpDir, name, tags...)
	}
	return path
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func requireNotContains(t *testing.T, output, substr string) {
	t.Helper()
	if strings.Contains(output, substr) {
		t.Fatalf("expected %q not to contain %q", output, substr)
	}
}
