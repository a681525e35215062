package subtitles

import (
	"fmt"
	"strings"
)

// IssueKind classifies a content problem found by Validate.
type IssueKind string

const (
	IssueEmptyText      IssueKind = "empty_text"
	IssueEndBeforeStart IssueKind = "end_before_start"
	IssueZeroDuration   IssueKind = "zero_duration"
	IssueOverlap        IssueKind = "overlap"
	IssueOutOfOrder     IssueKind = "out_of_order"
	IssueIndexSequence  IssueKind = "index_sequence"
)

// Issue describes one problem with a cue. Ordinal is the 1-based position of
// the cue in the timeline.
type Issue struct {
	Ordinal int
	Index   int
	Kind    IssueKind
	Detail  string
}

func (i Issue) String() string {
	return fmt.Sprintf("cue %d (index %d): %s: %s", i.Ordinal, i.Index, i.Kind, i.Detail)
}

// Validate inspects t for content problems that Parse accepts but players
// handle poorly. It never fails; an empty slice means the timeline is clean.
func Validate(t Timeline) []Issue {
	var issues []Issue
	for i, entry := range t {
		ordinal := i + 1
		add := func(kind IssueKind, detail string) {
			issues = append(issues, Issue{Ordinal: ordinal, Index: entry.Index, Kind: kind, Detail: detail})
		}
		if strings.TrimSpace(entry.Text) == "" {
			add(IssueEmptyText, "cue has no text")
		}
		switch {
		case entry.End < entry.Start:
			add(IssueEndBeforeStart, fmt.Sprintf("ends at %s before it starts at %s", display(entry.End), display(entry.Start)))
		case entry.End == entry.Start:
			add(IssueZeroDuration, fmt.Sprintf("starts and ends at %s", display(entry.Start)))
		}
		if entry.Index != ordinal {
			add(IssueIndexSequence, fmt.Sprintf("expected index %d", ordinal))
		}
		if i == 0 {
			continue
		}
		prev := t[i-1]
		switch {
		case entry.Start < prev.Start:
			add(IssueOutOfOrder, fmt.Sprintf("starts at %s before previous cue at %s", display(entry.Start), display(prev.Start)))
		case entry.Overlaps(prev):
			add(IssueOverlap, fmt.Sprintf("overlaps previous cue ending at %s", display(prev.End)))
		}
	}
	return issues
}
