package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// MatchFunc selects which lines are returned. A nil MatchFunc keeps all.
type MatchFunc func(line string) bool

// Containing matches lines holding needle. An empty needle matches all.
func Containing(needle string) MatchFunc {
	needle = strings.TrimSpace(needle)
	if needle == "" {
		return nil
	}
	return func(line string) bool { return strings.Contains(line, needle) }
}

// Last returns up to limit matching lines from the end of path and the offset
// just past the last complete line. A missing file yields no lines.
func Last(path string, limit int, match MatchFunc) ([]string, int64, error) {
	file, err := open(path)
	if err != nil || file == nil {
		return nil, 0, err
	}
	defer file.Close()

	if limit <= 0 {
		offset, err := completeLinesEnd(file)
		return nil, offset, err
	}

	ring := make([]string, limit)
	count, idx := 0, 0
	offset, err := scanLines(file, 0, func(line string) {
		if match != nil && !match(line) {
			return
		}
		ring[idx] = line
		idx = (idx + 1) % limit
		if count < limit {
			count++
		}
	})
	if err != nil {
		return nil, 0, err
	}

	lines := make([]string, count)
	if count == limit {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%limit]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, offset, nil
}

// Follow emits matching lines appended to path after offset, polling every
// interval, until ctx is done. A truncated file is read again from the start.
// It returns nil when ctx ends.
func Follow(ctx context.Context, path string, offset int64, interval time.Duration, match MatchFunc, emit func(string)) error {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		next, err := readFrom(path, offset, match, emit)
		if err != nil {
			return err
		}
		offset = next

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func readFrom(path string, offset int64, match MatchFunc, emit func(string)) (int64, error) {
	file, err := open(path)
	if err != nil || file == nil {
		return 0, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return offset, fmt.Errorf("stat log file: %w", err)
	}
	if info.Size() < offset {
		offset = 0
	}
	return scanLines(file, offset, func(line string) {
		if match == nil || match(line) {
			emit(line)
		}
	})
}

// scanLines calls fn for every newline-terminated line after offset and
// returns the offset past the last one. A trailing partial line is left for
// the next read.
func scanLines(file *os.File, offset int64, fn func(string)) (int64, error) {
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return offset, fmt.Errorf("seek log file: %w", err)
	}
	reader := bufio.NewReaderSize(file, 64*1024)
	for {
		line, err := reader.ReadString('\n')
		if err == nil {
			offset += int64(len(line))
			fn(strings.TrimRight(line, "\r\n"))
			continue
		}
		if errors.Is(err, io.EOF) {
			return offset, nil
		}
		return offset, fmt.Errorf("read log file: %w", err)
	}
}

func completeLinesEnd(file *os.File) (int64, error) {
	return scanLines(file, 0, func(string) {})
}

func open(path string) (*os.File, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat log file: %w", err)
	}
	if info.IsDir() {
		file.Close()
		return nil, fmt.Errorf("log path %q is a directory", path)
	}
	return file, nil
}
