package sidecar

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"zipseal/internal/logging"
)

func writeSidecar(t *testing.T, dir, archive string, data []byte) string {
	t.Helper()
	sidecarDir := filepath.Join(dir, ".ts")
	if err := os.MkdirAll(sidecarDir, 0o755); err != nil {
		t.Fatalf("mkdir sidecar dir: %v", err)
	}
	path := filepath.Join(sidecarDir, archive+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write sidecar: %v", err)
	}
	return path
}

func strPtr(s string) *string { return &s }

func TestLoaderPath(t *testing.T) {
	loader := NewLoader("", "", nil)
	got := loader.Path(filepath.Join("/data", "dump", "a.zip"))
	want := filepath.Join("/data", "dump", ".ts", "a.zip.json")
	if got != want {
		t.Fatalf("Path = %q, want %q", got, want)
	}

	custom := NewLoader("meta", ".tags", nil)
	got = custom.Path(filepath.Join("/data", "b.zip"))
	want = filepath.Join("/data", "meta", "b.zip.tags")
	if got != want {
		t.Fatalf("custom Path = %q, want %q", got, want)
	}
}

func TestLoadMissingSidecar(t *testing.T) {
	dir := t.TempDir()
	loader := NewLoader(".ts", ".json", logging.NewNop())

	doc, ok := loader.Load(context.Background(), filepath.Join(dir, "a.zip"))
	if ok || doc != nil {
		t.Fatalf("expected absent sidecar, got %+v, %v", doc, ok)
	}
}

func TestLoadMalformedSidecar(t *testing.T) {
	dir := t.TempDir()
	writeSidecar(t, dir, "a.zip", []byte(`{"tags": [`))
	loader := NewLoader(".ts", ".json", logging.NewNop())

	doc, ok := loader.Load(context.Background(), filepath.Join(dir, "a.zip"))
	if ok || doc != nil {
		t.Fatalf("expected malformed sidecar to be absent, got %+v, %v", doc, ok)
	}
}

func TestLoadLogsMalformedSidecar(t *testing.T) {
	dir := t.TempDir()
	writeSidecar(t, dir, "a.zip", []byte(`{"tags": "PROTECT"}`))

	logPath := filepath.Join(t.TempDir(), "sidecar.log")
	logger, err := logging.New(logging.Options{Level: "debug", Format: "json", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	loader := NewLoader(".ts", ".json", logger)

	if _, ok := loader.Load(context.Background(), filepath.Join(dir, "a.zip")); ok {
		t.Fatal("expected non-array tags to be rejected")
	}
	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "sidecar_parse_failed") {
		t.Fatalf("expected parse warning in log output, got %q", out)
	}
}

func TestLoadValidSidecar(t *testing.T) {
	dir := t.TempDir()
	writeSidecar(t, dir, "a.zip", []byte(`{"tags":[{"title":"PROTECT","type":"sidecar"}],"appName":"TagSpaces"}`))
	loader := NewLoader(".ts", ".json", logging.NewNop())

	doc, ok := loader.Load(context.Background(), filepath.Join(dir, "a.zip"))
	if !ok {
		t.Fatal("expected sidecar to load")
	}
	if len(doc.Tags) != 1 || doc.Tags[0].Title == nil || *doc.Tags[0].Title != "PROTECT" {
		t.Fatalf("unexpected tags: %+v", doc.Tags)
	}
}

func TestDecodeStripsByteOrderMark(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte(`{"tags":[{"title":"protect"}]}`)...)
	doc, err := Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !HasProtectTag(doc) {
		t.Fatal("expected BOM-prefixed sidecar to carry the protect tag")
	}
}

func TestDecodeUTF16(t *testing.T) {
	text := `{"tags":[{"title":"PROTECT"}]}`
	data := []byte{0xFF, 0xFE}
	for _, r := range text {
		data = append(data, byte(r), 0)
	}
	doc, err := Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !HasProtectTag(doc) {
		t.Fatal("expected UTF-16 sidecar to carry the protect tag")
	}
}

func TestDecodeTolerantTags(t *testing.T) {
	doc, err := Decode(strings.NewReader(`{"tags":[{"type":"plain"},{"title":42},"loose",{"title":"keep"}]}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(doc.Tags) != 4 {
		t.Fatalf("expected 4 tags, got %d", len(doc.Tags))
	}
	for i := 0; i < 3; i++ {
		if doc.Tags[i].Title != nil {
			t.Fatalf("tag %d: expected nil title, got %q", i, *doc.Tags[i].Title)
		}
	}
	if doc.Tags[3].Title == nil || *doc.Tags[3].Title != "keep" {
		t.Fatalf("unexpected last tag: %+v", doc.Tags[3])
	}
}

func TestDecodeNullTags(t *testing.T) {
	doc, err := Decode(strings.NewReader(`{"tags":null}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if HasProtectTag(doc) {
		t.Fatal("null tags must not match")
	}
}

func TestHasProtectTag(t *testing.T) {
	tests := []struct {
		name string
		doc  *Document
		want bool
	}{
		{name: "nil document", doc: nil, want: false},
		{name: "no tags", doc: &Document{}, want: false},
		{name: "other tags", doc: &Document{Tags: []Tag{{Title: strPtr("archive")}, {Title: strPtr("2024")}}}, want: false},
		{name: "missing title", doc: &Document{Tags: []Tag{{}}}, want: false},
		{name: "lower case", doc: &Document{Tags: []Tag{{Title: strPtr("protect")}}}, want: true},
		{name: "title case", doc: &Document{Tags: []Tag{{Title: strPtr("Protect")}}}, want: true},
		{name: "upper case", doc: &Document{Tags: []Tag{{Title: strPtr("PROTECT")}}}, want: true},
		{name: "among others", doc: &Document{Tags: []Tag{{}, {Title: strPtr("misc")}, {Title: strPtr("pRoTeCt")}}}, want: true},
		{name: "padded", doc: &Document{Tags: []Tag{{Title: strPtr(" PROTECT ")}}}, want: false},
		{name: "prefix", doc: &Document{Tags: []Tag{{Title: strPtr("PROTECTED")}}}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasProtectTag(tt.doc); got != tt.want {
				t.Fatalf("HasProtectTag() = %v, want %v", got, tt.want)
			}
		})
	}
}
