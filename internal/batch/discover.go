package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Discover lists the regular files directly inside dir whose extension
// matches ext case-insensitively, sorted by name. Subdirectories are not
// searched.
func Discover(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}
	ext = strings.ToLower(ext)

	var archives []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(entry.Name()), ext) {
			continue
		}
		archives = append(archives, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(archives)
	return archives, nil
}
