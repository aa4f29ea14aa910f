package scratch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"zipseal/internal/logging"
)

func makeDir(t *testing.T, root, name string, age time.Duration) string {
	t.Helper()
	path := filepath.Join(root, name)
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
	if err := os.WriteFile(filepath.Join(path, "doc.txt"), []byte("plaintext"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	when := time.Now().Add(-age)
	if err := os.Chtimes(path, when, when); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	return path
}

func TestListOnlyReturnsOwnDirectories(t *testing.T) {
	root := t.TempDir()
	makeDir(t, root, Prefix+"123", time.Minute)
	makeDir(t, root, "other-tool-456", time.Minute)
	if err := os.WriteFile(filepath.Join(root, Prefix+"file"), nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	dirs, err := List(root)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(dirs) != 1 || dirs[0].Name != Prefix+"123" {
		t.Fatalf("unexpected dirs: %+v", dirs)
	}
	if dirs[0].Size != int64(len("plaintext")) {
		t.Fatalf("size = %d", dirs[0].Size)
	}
}

func TestListMissingRoot(t *testing.T) {
	dirs, err := List(filepath.Join(t.TempDir(), "absent"))
	if err != nil || len(dirs) != 0 {
		t.Fatalf("expected empty result, got %v %v", dirs, err)
	}
}

func TestCleanStaleRemovesOldDirectories(t *testing.T) {
	root := t.TempDir()
	old := makeDir(t, root, Prefix+"old", 2*time.Hour)
	recent := makeDir(t, root, Prefix+"recent", time.Minute)
	foreign := makeDir(t, root, "foreign", 2*time.Hour)

	result := CleanStale(context.Background(), root, time.Hour, logging.NewNop())
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %+v", result.Errors)
	}
	if len(result.Removed) != 1 || result.Removed[0] != old {
		t.Fatalf("unexpected removals: %v", result.Removed)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Fatal("old scratch directory should be gone")
	}
	for _, keep := range []string{recent, foreign} {
		if _, err := os.Stat(keep); err != nil {
			t.Fatalf("%s should remain: %v", keep, err)
		}
	}
}

func TestRootDefaultsToTempDir(t *testing.T) {
	if Root("  ") != os.TempDir() {
		t.Fatalf("Root(blank) = %q", Root("  "))
	}
	if Root("/srv/scratch") != "/srv/scratch" {
		t.Fatal("configured root not returned")
	}
}
