package subtitles

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"subforge/internal/services"
	"subforge/internal/timecode"
)

const arrow = "-->"

// BlockError reports a malformed subtitle block. It matches services.ErrParse
// under errors.Is.
type BlockError struct {
	Ordinal int
	Line    string
	Reason  string
	Err     error
}

func (e *BlockError) Error() string {
	msg := fmt.Sprintf("%v: subtitles: block %d: %s", services.ErrParse, e.Ordinal, e.Reason)
	if e.Line != "" {
		msg += fmt.Sprintf(" (%q)", e.Line)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *BlockError) Is(target error) bool {
	return target == services.ErrParse
}

func (e *BlockError) Unwrap() error {
	return e.Err
}

// Parse decodes SRT text into a Timeline. Blocks are runs of non-blank lines;
// the second line of each block must be "HH:MM:SS,mmm --> HH:MM:SS,mmm". The
// index line is kept when numeric but never validated.
func Parse(text string) (Timeline, error) {
	text = strings.TrimPrefix(text, "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	blocks := splitBlocks(text)
	timeline := make(Timeline, 0, len(blocks))
	for i, block := range blocks {
		entry, err := parseBlock(block, i+1)
		if err != nil {
			return nil, err
		}
		timeline = append(timeline, entry)
	}
	return timeline, nil
}

func splitBlocks(text string) [][]string {
	var (
		blocks  [][]string
		current []string
	)
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			if len(current) > 0 {
				blocks = append(blocks, current)
				current = nil
			}
			continue
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		blocks = append(blocks, current)
	}
	return blocks
}

func parseBlock(lines []string, ordinal int) (Entry, error) {
	if len(lines) < 2 {
		return Entry{}, &BlockError{Ordinal: ordinal, Line: strings.TrimSpace(lines[0]), Reason: "missing time range line"}
	}
	rangeLine := strings.TrimSpace(lines[1])
	startText, endText, found := strings.Cut(rangeLine, arrow)
	if !found {
		return Entry{}, &BlockError{Ordinal: ordinal, Line: rangeLine, Reason: "missing time range arrow"}
	}
	start, err := timecode.FromDisplay(strings.TrimSpace(startText))
	if err != nil {
		return Entry{}, &BlockError{Ordinal: ordinal, Line: rangeLine, Reason: "malformed start time", Err: err}
	}
	end, err := timecode.FromDisplay(strings.TrimSpace(endText))
	if err != nil {
		return Entry{}, &BlockError{Ordinal: ordinal, Line: rangeLine, Reason: "malformed end time", Err: err}
	}

	index, err := strconv.Atoi(strings.TrimSpace(lines[0]))
	if err != nil || index <= 0 {
		index = ordinal
	}

	text := strings.TrimRightFunc(strings.Join(lines[2:], "\n"), unicode.IsSpace)
	return Entry{Index: index, Start: start, End: end, Text: text}, nil
}

// Serialize renders t as SRT text in its existing order without reindexing.
// Blocks are separated by one blank line and trailing whitespace is trimmed.
// Negative times render as zero.
func Serialize(t Timeline) string {
	var b strings.Builder
	for i, entry := range t {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(strconv.Itoa(entry.Index))
		b.WriteByte('\n')
		b.WriteString(display(entry.Start))
		b.WriteString(" " + arrow + " ")
		b.WriteString(display(entry.End))
		b.WriteByte('\n')
		b.WriteString(entry.Text)
		b.WriteByte('\n')
	}
	return strings.TrimRightFunc(b.String(), unicode.IsSpace)
}

// BlockOrdinal returns the ordinal of the malformed block behind err.
func BlockOrdinal(err error) (int, bool) {
	var blockErr *BlockError
	if errors.As(err, &blockErr) {
		return blockErr.Ordinal, true
	}
	return 0, false
}

func display(ms timecode.Millis) string {
	return timecode.MustDisplay(max(ms, 0))
}
