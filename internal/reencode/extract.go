package reencode

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/yeka/zip"
)

// ErrUnsafeEntry reports an entry whose name would land outside the
// extraction directory.
var ErrUnsafeEntry = errors.New("unsafe entry path")

// Extract writes every entry of archivePath below destDir, keeping the
// directory structure and modification times.
func Extract(archivePath, destDir string) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer reader.Close()

	for _, file := range reader.File {
		if err := extractEntry(file, destDir); err != nil {
			return err
		}
	}
	return nil
}

func extractEntry(file *zip.File, destDir string) error {
	name := filepath.FromSlash(file.Name)
	if !filepath.IsLocal(name) {
		return fmt.Errorf("%w: %q", ErrUnsafeEntry, file.Name)
	}
	target := filepath.Join(destDir, name)

	if file.FileInfo().IsDir() {
		if err := os.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", file.Name, err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", file.Name, err)
	}

	if file.IsEncrypted() {
		return fmt.Errorf("entry %s is encrypted", file.Name)
	}
	src, err := file.Open()
	if err != nil {
		return fmt.Errorf("open entry %s: %w", file.Name, err)
	}
	defer src.Close()

	mode := file.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}
	dst, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("create %s: %w", file.Name, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return fmt.Errorf("extract %s: %w", file.Name, err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("close %s: %w", file.Name, err)
	}
	if file.ModifiedDate != 0 {
		modified := file.ModTime()
		_ = os.Chtimes(target, modified, modified)
	}
	return nil
}
