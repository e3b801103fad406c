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

// Window is a run of log lines and the byte offset just past the last one.
type Window struct {
	Lines  []string
	Offset int64
}

// DefaultPollInterval is how often Follow checks the file for growth.
const DefaultPollInterval = 250 * time.Millisecond

// Last returns up to n trailing lines. n <= 0 returns no lines but still
// positions Offset at the end of the file. A missing file is empty.
func Last(path string, n int) (Window, error) {
	all, err := Since(path, 0)
	if err != nil {
		return Window{}, err
	}
	if n <= 0 {
		return Window{Offset: all.Offset}, nil
	}
	if len(all.Lines) > n {
		all.Lines = all.Lines[len(all.Lines)-n:]
	}
	return all, nil
}

// Since returns the complete lines written after offset. An offset past the
// end means the file was truncated or rotated, and reading restarts at 0.
func Since(path string, offset int64) (Window, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Window{}, nil
		}
		return Window{Offset: offset}, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return Window{Offset: offset}, fmt.Errorf("stat log file: %w", err)
	}
	if info.IsDir() {
		return Window{Offset: offset}, fmt.Errorf("log path %q is a directory", path)
	}
	if offset < 0 || offset > info.Size() {
		offset = 0
	}
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return Window{Offset: offset}, fmt.Errorf("seek log file: %w", err)
	}

	win := Window{Offset: offset}
	reader := bufio.NewReader(file)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				// A trailing fragment without newline is left for the next read.
				return win, nil
			}
			return win, fmt.Errorf("read log file: %w", err)
		}
		win.Offset += int64(len(line))
		win.Lines = append(win.Lines, strings.TrimRight(line, "\r\n"))
	}
}

// Follow passes every line appended after offset to onLine until ctx is done.
// It returns nil when ctx ends.
func Follow(ctx context.Context, path string, offset int64, interval time.Duration, onLine func(string)) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		win, err := Since(path, offset)
		if err != nil {
			return err
		}
		for _, line := range win.Lines {
			onLine(line)
		}
		offset = win.Offset

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
