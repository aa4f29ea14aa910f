package testsupport

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/yeka/zip"
)

// ZipEntry is one file stored in a fixture archive.
type ZipEntry struct {
	Name string
	Data []byte
}

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	const chunkSize = 32 * 1024
	buf := make([]byte, chunkSize)
	for i := range buf {
		buf[i] = 0x42
	}

	remaining := size
	for remaining > 0 {
		toWrite := int64(chunkSize)
		if remaining < toWrite {
			toWrite = remaining
		}
		if _, err := f.Write(buf[:toWrite]); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		remaining -= toWrite
	}
}

// WriteZip creates a plain zip archive holding entries in order. No entries
// produces a valid empty archive.
func WriteZip(t testing.TB, path string, entries ...ZipEntry) {
	t.Helper()
	writeZip(t, path, "", entries)
}

// WriteEncryptedZip creates a zip whose entries are AES-256 encrypted with
// password, the layout 7-Zip produces with -mem=AES256.
func WriteEncryptedZip(t testing.TB, path, password string, entries ...ZipEntry) {
	t.Helper()
	if password == "" {
		t.Fatalf("WriteEncryptedZip needs a password")
	}
	writeZip(t, path, password, entries)
}

func writeZip(t testing.TB, path, password string, entries []ZipEntry) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, entry := range entries {
		var w io.Writer
		if password != "" {
			w, err = zw.Encrypt(entry.Name, password, zip.AES256Encryption)
		} else {
			w, err = zw.Create(entry.Name)
		}
		if err != nil {
			t.Fatalf("add %s to %s: %v", entry.Name, path, err)
		}
		if _, err := w.Write(entry.Data); err != nil {
			t.Fatalf("write %s to %s: %v", entry.Name, path, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("finish %s: %v", path, err)
	}
}

// WriteSidecar stores a sidecar document for archiveName under dir/.ts with
// one tag per title.
func WriteSidecar(t testing.TB, dir, archiveName string, titles ...string) string {
	t.Helper()

	type tag struct {
		Title string `json:"title"`
		Type  string `json:"type"`
	}
	doc := struct {
		AppName string `json:"appName"`
		Tags    []tag  `json:"tags"`
	}{AppName: "TagSpaces", Tags: []tag{}}
	for _, title := range titles {
		doc.Tags = append(doc.Tags, tag{Title: title, Type: "sidecar"})
	}
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal sidecar: %v", err)
	}
	return WriteRawSidecar(t, dir, archiveName, data)
}

// WriteRawSidecar stores data verbatim as the sidecar for archiveName.
func WriteRawSidecar(t testing.TB, dir, archiveName string, data []byte) string {
	t.Helper()

	sidecarDir := filepath.Join(dir, ".ts")
	if err := os.MkdirAll(sidecarDir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", sidecarDir, err)
	}
	path := filepath.Join(sidecarDir, archiveName+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write sidecar %s: %v", path, err)
	}
	return path
}

// ReadFile returns the contents of path or fails the test.
func ReadFile(t testing.TB, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return data
}
