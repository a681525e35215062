package subtitles

import "testing"

func TestValidateCleanTimeline(t *testing.T) {
	timeline := Timeline{
		{Index: 1, Start: 0, End: 1000, Text: "a"},
		{Index: 2, Start: 1000, End: 2000, Text: "b"},
	}
	if issues := Validate(timeline); len(issues) != 0 {
		t.Fatalf("expected no issues, got %v", issues)
	}
}

func TestValidateReportsProblems(t *testing.T) {
	timeline := Timeline{
		{Index: 1, Start: 0, End: 1000, Text: "a"},
		{Index: 2, Start: 500, End: 1500, Text: " "},
		{Index: 5, Start: 400, End: 300, Text: "c"},
		{Index: 4, Start: 2000, End: 2000, Text: "d"},
	}
	issues := Validate(timeline)
	kinds := make(map[IssueKind]int)
	for _, issue := range issues {
		kinds[issue.Kind]++
	}
	want := map[IssueKind]int{
		IssueOverlap:        1,
		IssueEmptyText:      1,
		IssueEndBeforeStart: 1,
		IssueOutOfOrder:     1,
		IssueIndexSequence:  1,
		IssueZeroDuration:   1,
	}
	for kind, count := range want {
		if kinds[kind] != count {
			t.Fatalf("expected %d %s issue(s), got %d (%v)", count, kind, kinds[kind], issues)
		}
	}
	if issues[0].Ordinal != 2 {
		t.Fatalf("expected first issue on cue 2, got %+v", issues[0])
	}
}
