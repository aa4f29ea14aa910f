package sidecar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"zipseal/internal/logging"
)

// Tag is one entry of a sidecar's tag list. Title is nil when the entry has
// no string title.
type Tag struct {
	Title *string
}

// UnmarshalJSON accepts any tag entry; a non-object entry or a missing or
// non-string title leaves Title nil instead of failing the whole document.
func (t *Tag) UnmarshalJSON(data []byte) error {
	t.Title = nil
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	value, ok := raw["title"]
	if !ok {
		return nil
	}
	var title string
	if err := json.Unmarshal(value, &title); err != nil {
		return nil
	}
	t.Title = &title
	return nil
}

// Document is the parsed sidecar for exactly one archive.
type Document struct {
	Tags []Tag `json:"tags"`
}

// Loader resolves and parses sidecar documents.
type Loader struct {
	dirName string
	suffix  string
	logger  *slog.Logger
}

// NewLoader builds a loader for sidecars stored in dirName next to each
// archive, named after the archive plus suffix.
func NewLoader(dirName, suffix string, logger *slog.Logger) *Loader {
	if dirName == "" {
		dirName = ".ts"
	}
	if suffix == "" {
		suffix = ".json"
	}
	return &Loader{
		dirName: dirName,
		suffix:  suffix,
		logger:  logging.NewComponentLogger(logger, "sidecar"),
	}
}

// Path returns the sidecar location for archivePath.
func (l *Loader) Path(archivePath string) string {
	return filepath.Join(filepath.Dir(archivePath), l.dirName, filepath.Base(archivePath)+l.suffix)
}

// Load reads the sidecar for archivePath. The boolean is false when the
// sidecar is missing, unreadable, or not a valid document.
func (l *Loader) Load(ctx context.Context, archivePath string) (*Document, bool) {
	path := l.Path(archivePath)
	name := filepath.Base(archivePath)

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.logger.InfoContext(ctx, "no sidecar file found", logging.String(logging.FieldArchive, name))
			return nil, false
		}
		logging.WarnWithContext(ctx, l.logger, "sidecar file unreadable", "sidecar_read_failed",
			logging.String(logging.FieldArchive, name),
			logging.String("sidecar", path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "archive treated as untagged"),
		)
		return nil, false
	}
	defer file.Close()

	doc, err := Decode(file)
	if err != nil {
		logging.WarnWithContext(ctx, l.logger, "error reading sidecar file", "sidecar_parse_failed",
			logging.String(logging.FieldArchive, name),
			logging.String("sidecar", path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "archive treated as untagged"),
			logging.String(logging.FieldErrorHint, "fix or regenerate the sidecar JSON"),
		)
		return nil, false
	}
	return doc, true
}

// Decode parses a sidecar document. A leading byte-order mark is honoured,
// so UTF-8 files saved with a BOM and UTF-16 files both decode.
func Decode(r io.Reader) (*Document, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	data, err := io.ReadAll(transform.NewReader(r, decoder))
	if err != nil {
		return nil, fmt.Errorf("read sidecar: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse sidecar: %w", err)
	}
	return &doc, nil
}
