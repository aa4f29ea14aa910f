package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"zipseal/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The dump directory is created empty; the tool candidate list is left at
// the platform default unless an option replaces it.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DumpDir = filepath.Join(base, "dump")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.ScratchDir = filepath.Join(base, "scratch")
	cfgVal.Journal.Path = filepath.Join(base, "state", "journal.db")
	cfgVal.Tool.TimeoutSeconds = 30

	for _, dir := range []string{cfgVal.Paths.DumpDir, cfgVal.Paths.StateDir, cfgVal.Paths.ScratchDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithSecretEnv points the config at a test-specific password variable and
// sets it for the duration of the test. An empty password leaves the
// variable unset.
func WithSecretEnv(name, password string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Secret.Env = name
		if password == "" {
			return
		}
		b.t.Setenv(name, password)
	}
}

// WithJournalDisabled turns off the sqlite run history.
func WithJournalDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Journal.Enabled = false
	}
}

// WithStubTool writes a stub 7-Zip executable with the given shell body and
// makes it the only tool candidate.
func WithStubTool(body string) ConfigOption {
	return func(b *configBuilder) {
		path := WriteStubTool(b.t, filepath.Join(b.baseDir, "bin"), "7z", body)
		b.cfg.Tool.Candidates = []string{path}
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, the bare 7-Zip names are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"7z"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		for _, name := range names {
			WriteStubTool(b.t, binDir, name, "exit 0")
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DumpDir)
}
