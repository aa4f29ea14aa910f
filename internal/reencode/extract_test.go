package reencode

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yeka/zip"

	"zipseal/internal/testsupport"
)

func TestExtractRejectsEscapingEntries(t *testing.T) {
	for _, name := range []string{"../evil.txt", "/abs.txt", "a/../../evil.txt"} {
		dir := t.TempDir()
		archive := filepath.Join(dir, "evil.zip")
		testsupport.WriteZip(t, archive, testsupport.ZipEntry{Name: name, Data: []byte("x")})

		dest := filepath.Join(dir, "out")
		if err := os.MkdirAll(dest, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		err := Extract(archive, dest)
		if !errors.Is(err, ErrUnsafeEntry) {
			t.Fatalf("%q: expected unsafe entry error, got %v", name, err)
		}
		if _, err := os.Stat(filepath.Join(dir, "evil.txt")); !os.IsNotExist(err) {
			t.Fatalf("%q: entry escaped the destination", name)
		}
	}
}

func TestExtractWritesEntries(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "a.zip")
	testsupport.WriteZip(t, archive,
		testsupport.ZipEntry{Name: "docs/"},
		testsupport.ZipEntry{Name: "docs/readme.md", Data: []byte("# hi")},
		testsupport.ZipEntry{Name: "top.txt", Data: []byte("top")},
	)
	dest := t.TempDir()

	if err := Extract(archive, dest); err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got := string(testsupport.ReadFile(t, filepath.Join(dest, "docs", "readme.md"))); got != "# hi" {
		t.Fatalf("readme = %q", got)
	}
	if got := string(testsupport.ReadFile(t, filepath.Join(dest, "top.txt"))); got != "top" {
		t.Fatalf("top = %q", got)
	}
}

func TestExtractEncryptedEntryFails(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "sealed.zip")
	testsupport.WriteEncryptedZip(t, archive, "pw", testsupport.ZipEntry{Name: "a.txt", Data: []byte("secret")})

	if err := Extract(archive, t.TempDir()); err == nil {
		t.Fatal("expected encrypted entry to fail extraction")
	}
}

func TestExtractKeepsEntryModTime(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "dated.zip")
	when := time.Date(2021, 6, 14, 9, 30, 40, 0, time.UTC)

	f, err := os.Create(archive)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	zw := zip.NewWriter(f)
	header := &zip.FileHeader{Name: "dated.txt", Method: zip.Deflate}
	header.SetModTime(when)
	w, err := zw.CreateHeader(header)
	if err != nil {
		t.Fatalf("CreateHeader: %v", err)
	}
	if _, err := w.Write([]byte("dated")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}

	dest := t.TempDir()
	if err := Extract(archive, dest); err != nil {
		t.Fatalf("Extract: %v", err)
	}
	info, err := os.Stat(filepath.Join(dest, "dated.txt"))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if !info.ModTime().Equal(when) {
		t.Fatalf("mtime = %v, want %v", info.ModTime(), when)
	}
}

func TestExtractLeavesUndatedEntriesAlone(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "undated.zip")
	testsupport.WriteZip(t, archive, testsupport.ZipEntry{Name: "plain.txt", Data: []byte("x")})
	dest := t.TempDir()
	before := time.Now().Add(-time.Minute)

	if err := Extract(archive, dest); err != nil {
		t.Fatalf("Extract: %v", err)
	}
	info, err := os.Stat(filepath.Join(dest, "plain.txt"))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.ModTime().Before(before) {
		t.Fatalf("undated entry got mtime %v", info.ModTime())
	}
}
