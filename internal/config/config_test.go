package config_test

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"zipseal/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "share", "zipseal")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if !filepath.IsAbs(cfg.Paths.DumpDir) || filepath.Base(cfg.Paths.DumpDir) != "dump" {
		t.Fatalf("unexpected dump dir: %q", cfg.Paths.DumpDir)
	}
	if cfg.Journal.Path != filepath.Join(wantState, "journal.db") {
		t.Fatalf("unexpected journal path: %q", cfg.Journal.Path)
	}
	if cfg.Archive.BackupSuffix != ".backup" || cfg.Archive.SidecarDir != ".ts" || cfg.Archive.SidecarSuffix != ".json" {
		t.Fatalf("unexpected archive defaults: %+v", cfg.Archive)
	}
	if cfg.Secret.Env != "REPO_DUMP_ZIP_PASS" {
		t.Fatalf("unexpected secret env: %q", cfg.Secret.Env)
	}
	if len(cfg.Tool.Candidates) == 0 || cfg.Tool.Candidates[0] != "7z" {
		t.Fatalf("expected 7z first in candidates, got %v", cfg.Tool.Candidates)
	}
	if cfg.Tool.TimeoutSeconds != 600 {
		t.Fatalf("unexpected tool timeout: %d", cfg.Tool.TimeoutSeconds)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoadCustomConfigOverrides(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	dir := t.TempDir()
	path := filepath.Join(dir, "zipseal.toml")
	content := `
[paths]
dump_dir = "~/archives"
state_dir = "~/state"

[archive]
extension = "ZIP"
backup_suffix = ".orig"

[secret]
env = "MY_ZIP_PASS"

[tool]
candidates = ["/opt/7zip/7zz", "7z", "/opt/7zip/7zz"]
timeout_seconds = 0

[journal]
enabled = false

[logging]
format = "JSON"
level = "DEBUG"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected config %q to be used, got %q exists=%v", path, resolved, exists)
	}
	if cfg.Paths.DumpDir != filepath.Join(tempHome, "archives") {
		t.Fatalf("unexpected dump dir: %q", cfg.Paths.DumpDir)
	}
	if cfg.Journal.Path != filepath.Join(tempHome, "state", "journal.db") {
		t.Fatalf("unexpected journal path: %q", cfg.Journal.Path)
	}
	if cfg.Journal.Enabled {
		t.Fatal("expected journal disabled")
	}
	if cfg.Archive.Extension != ".zip" {
		t.Fatalf("expected normalized extension, got %q", cfg.Archive.Extension)
	}
	if cfg.Archive.BackupSuffix != ".orig" {
		t.Fatalf("unexpected backup suffix: %q", cfg.Archive.BackupSuffix)
	}
	if cfg.Secret.Env != "MY_ZIP_PASS" {
		t.Fatalf("unexpected secret env: %q", cfg.Secret.Env)
	}
	if len(cfg.Tool.Candidates) != 2 || cfg.Tool.Candidates[0] != "/opt/7zip/7zz" {
		t.Fatalf("expected deduplicated candidates, got %v", cfg.Tool.Candidates)
	}
	if cfg.Tool.TimeoutSeconds != 0 {
		t.Fatalf("expected timeout disabled, got %d", cfg.Tool.TimeoutSeconds)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging: %+v", cfg.Logging)
	}
}

func TestDumpDirEnvFallback(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	target := t.TempDir()
	t.Setenv("ZIPSEAL_DUMP_DIR", target)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[paths]\ndump_dir = \"\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.DumpDir != target {
		t.Fatalf("expected dump dir from env %q, got %q", target, cfg.Paths.DumpDir)
	}
}

func TestCandidateExpansionUsesUserFallback(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("USERNAME", "")
	os.Unsetenv("USERNAME")
	t.Setenv("USER", "alice")

	path := filepath.Join(t.TempDir(), "config.toml")
	content := "[tool]\ncandidates = [\"/home/${USERNAME}/bin/7z\"]\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got := cfg.Tool.Candidates[0]; got != "/home/alice/bin/7z" {
		t.Fatalf("unexpected expanded candidate: %q", got)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{
			name:    "nested sidecar dir",
			mutate:  func(c *config.Config) { c.Archive.SidecarDir = "a/b" },
			wantErr: "archive.sidecar_dir",
		},
		{
			name:    "backup looks like archive",
			mutate:  func(c *config.Config) { c.Archive.BackupSuffix = ".bak.zip" },
			wantErr: "archive.backup_suffix",
		},
		{
			name:    "no candidates",
			mutate:  func(c *config.Config) { c.Tool.Candidates = nil },
			wantErr: "tool.candidates",
		},
		{
			name:    "bad level",
			mutate:  func(c *config.Config) { c.Logging.Level = "chatty" },
			wantErr: "logging.level",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Paths.DumpDir = t.TempDir()
			cfg.Paths.StateDir = t.TempDir()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected %q in error, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestPasswordFromEnv(t *testing.T) {
	cfg := config.Default()
	cfg.Secret.Env = "ZIPSEAL_TEST_PASS"

	os.Unsetenv("ZIPSEAL_TEST_PASS")
	if _, err := cfg.Password(); err == nil {
		t.Fatal("expected error when variable is unset")
	}

	t.Setenv("ZIPSEAL_TEST_PASS", "")
	if _, err := cfg.Password(); err == nil {
		t.Fatal("expected error when variable is blank")
	}

	t.Setenv("ZIPSEAL_TEST_PASS", "s3cret")
	got, err := cfg.Password()
	if err != nil {
		t.Fatalf("Password returned error: %v", err)
	}
	if got != "s3cret" {
		t.Fatalf("unexpected password %q", got)
	}
}

func TestSampleConfigParses(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var cfg config.Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("sample config does not parse: %v", err)
	}
	if cfg.Secret.Env != "REPO_DUMP_ZIP_PASS" {
		t.Fatalf("unexpected sample secret env %q", cfg.Secret.Env)
	}
}

func TestEncodeRoundTrips(t *testing.T) {
	cfg := config.Default()
	out, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	var decoded config.Config
	if err := toml.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("decode encoded config: %v", err)
	}
	if decoded.Archive.BackupSuffix != cfg.Archive.BackupSuffix {
		t.Fatalf("backup suffix lost in encoding: %q", decoded.Archive.BackupSuffix)
	}
}

func TestDefaultToolCandidatesPerPlatform(t *testing.T) {
	windows := config.DefaultToolCandidates("windows")
	if !strings.Contains(strings.Join(windows, "|"), `C:\Program Files\7-Zip\7z.exe`) {
		t.Fatalf("expected Program Files path in windows candidates: %v", windows)
	}
	current := config.DefaultToolCandidates(runtime.GOOS)
	if current[0] != "7z" {
		t.Fatalf("expected PATH lookup first, got %v", current)
	}
}
