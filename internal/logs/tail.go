package logs

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"subforge/internal/services"
)

// DefaultPollInterval is how often Follow checks for new lines.
const DefaultPollInterval = 250 * time.Millisecond

const maxLineBytes = 1024 * 1024

// Filter selects log lines. The zero value matches everything.
type Filter struct {
	// Contains keeps lines containing every listed substring.
	Contains []string
}

// Match reports whether line passes f.
func (f Filter) Match(line string) bool {
	for _, needle := range f.Contains {
		if needle != "" && !strings.Contains(line, needle) {
			return false
		}
	}
	return true
}

// Last returns up to limit of the final matching lines in path and the byte
// offset of the end of the last complete line. A non-positive limit returns
// every matching line. A missing file yields no lines and offset zero.
func Last(path string, limit int, filter Filter) ([]string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, services.Wrap(services.ErrTransient, "logs", "open", path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, 0, services.Wrap(services.ErrTransient, "logs", "stat", path, err)
	}
	if info.IsDir() {
		return nil, 0, services.Wrap(services.ErrValidation, "logs", "open", path+" is a directory", nil)
	}

	var (
		lines  []string
		offset int64
	)
	err = scanLines(file, func(line string, end int64) {
		offset = end
		if !filter.Match(line) {
			return
		}
		lines = append(lines, line)
		// Keep at most 2*limit lines buffered.
		if limit > 0 && len(lines) >= 2*limit {
			lines = append(lines[:0], lines[len(lines)-limit:]...)
		}
	})
	if err != nil {
		return nil, 0, services.Wrap(services.ErrTransient, "logs", "read", path, err)
	}
	if limit > 0 && len(lines) > limit {
		lines = lines[len(lines)-limit:]
	}
	return lines, offset, nil
}

// Follow emits every matching line appended to path after offset until ctx is
// done. Partial trailing lines are held back until their newline arrives. If
// the file shrinks below offset it is read again from the start. Follow
// returns nil when ctx is cancelled and the first error from emit otherwise.
func Follow(ctx context.Context, path string, offset int64, interval time.Duration, filter Filter, emit func(string) error) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		next, err := readFrom(path, offset, filter, emit)
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

func readFrom(path string, offset int64, filter Filter, emit func(string) error) (int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return offset, services.Wrap(services.ErrTransient, "logs", "open", path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return offset, services.Wrap(services.ErrTransient, "logs", "stat", path, err)
	}
	if info.Size() < offset {
		offset = 0
	}
	if info.Size() == offset {
		return offset, nil
	}
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return offset, services.Wrap(services.ErrTransient, "logs", "seek", path, err)
	}

	var emitErr error
	end := offset
	err = scanLines(file, func(line string, pos int64) {
		if emitErr != nil {
			return
		}
		end = offset + pos
		if filter.Match(line) {
			emitErr = emit(line)
		}
	})
	if emitErr != nil {
		return end, emitErr
	}
	if err != nil {
		return end, services.Wrap(services.ErrTransient, "logs", "read", path, err)
	}
	return end, nil
}

// scanLines calls fn for each newline-terminated line in r with the byte
// position just past its newline. An unterminated final line is skipped.
func scanLines(r io.Reader, fn func(line string, end int64)) error {
	reader := bufio.NewReaderSize(r, 64*1024)
	var pos int64
	var pending []byte
	for {
		chunk, err := reader.ReadSlice('\n')
		if len(pending) < maxLineBytes {
			pending = append(pending, chunk...)
		}
		pos += int64(len(chunk))
		switch {
		case err == nil:
			line := bytes.TrimRight(pending, "\r\n")
			fn(string(line), pos)
			pending = pending[:0]
		case errors.Is(err, bufio.ErrBufferFull):
		case errors.Is(err, io.EOF):
			return nil
		default:
			return err
		}
	}
}
