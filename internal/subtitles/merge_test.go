package subtitles

import (
	"slices"
	"testing"
)

func TestMergeEvictsOverlappingBaseWholesale(t *testing.T) {
	base := Timeline{
		{Index: 1, Start: 0, End: 5000, Text: "A"},
		{Index: 2, Start: 5000, End: 10000, Text: "B"},
	}
	overlay := Timeline{{Index: 1, Start: 4000, End: 6000, Text: "X"}}

	merged, stats := MergeWithStats(base, overlay)
	want := Timeline{{Index: 1, Start: 4000, End: 6000, Text: "X"}}
	if !slices.Equal(merged, want) {
		t.Fatalf("unexpected merge result: %#v", merged)
	}
	if stats.BaseEvicted != 2 || stats.Inserted != 1 || stats.OverlaySuperseded != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestMergeKeepsUnrelatedBaseAndSorts(t *testing.T) {
	base := Timeline{
		{Index: 1, Start: 0, End: 1000, Text: "keep early"},
		{Index: 2, Start: 2000, End: 3000, Text: "replace"},
		{Index: 3, Start: 9000, End: 9500, Text: "keep late"},
	}
	overlay := Timeline{
		{Index: 1, Start: 5000, End: 6000, Text: "new middle"},
		{Index: 2, Start: 2500, End: 2600, Text: "new replacement"},
	}
	merged := Merge(base, overlay)
	want := Timeline{
		{Index: 1, Start: 0, End: 1000, Text: "keep early"},
		{Index: 2, Start: 2500, End: 2600, Text: "new replacement"},
		{Index: 3, Start: 5000, End: 6000, Text: "new middle"},
		{Index: 4, Start: 9000, End: 9500, Text: "keep late"},
	}
	if !slices.Equal(merged, want) {
		t.Fatalf("unexpected merge result:\n got %#v\nwant %#v", merged, want)
	}
}

func TestMergeAdjacentIntervalsDoNotOverlap(t *testing.T) {
	base := Timeline{{Index: 1, Start: 0, End: 1000, Text: "A"}}
	overlay := Timeline{{Index: 1, Start: 1000, End: 2000, Text: "B"}}
	merged := Merge(base, overlay)
	if len(merged) != 2 {
		t.Fatalf("expected touching cues to coexist, got %#v", merged)
	}
}

func TestMergeLaterOverlayWins(t *testing.T) {
	overlay := Timeline{
		{Index: 1, Start: 0, End: 2000, Text: "first"},
		{Index: 2, Start: 1500, End: 3000, Text: "second"},
	}
	merged, stats := MergeWithStats(nil, overlay)
	want := Timeline{{Index: 1, Start: 1500, End: 3000, Text: "second"}}
	if !slices.Equal(merged, want) {
		t.Fatalf("unexpected merge result: %#v", merged)
	}
	if stats.OverlaySuperseded != 1 {
		t.Fatalf("expected one superseded overlay cue, got %+v", stats)
	}
}

func TestMergeEqualStartsKeepInsertionOrder(t *testing.T) {
	base := Timeline{{Index: 1, Start: 1000, End: 1000, Text: "zero length base"}}
	overlay := Timeline{{Index: 1, Start: 1000, End: 1000, Text: "zero length overlay"}}
	merged := Merge(base, overlay)
	if len(merged) != 2 {
		t.Fatalf("expected zero-length cues not to overlap, got %#v", merged)
	}
	if merged[0].Text != "zero length base" || merged[1].Text != "zero length overlay" {
		t.Fatalf("expected stable ordering, got %#v", merged)
	}
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	base := Timeline{
		{Index: 9, Start: 0, End: 5000, Text: "A"},
		{Index: 8, Start: 6000, End: 7000, Text: "B"},
	}
	overlay := Timeline{{Index: 4, Start: 100, End: 200, Text: "X"}}
	baseCopy := base.Clone()
	overlayCopy := overlay.Clone()
	_ = Merge(base, overlay)
	if !slices.Equal(base, baseCopy) || !slices.Equal(overlay, overlayCopy) {
		t.Fatal("merge mutated its inputs")
	}
}

func TestMergeIndicesAreContiguousAndSorted(t *testing.T) {
	base := Timeline{
		{Index: 3, Start: 7000, End: 8000, Text: "c"},
		{Index: 1, Start: 0, End: 500, Text: "a"},
		{Index: 2, Start: 3000, End: 3500, Text: "b"},
	}
	overlays := []Timeline{
		nil,
		{{Start: 100, End: 200, Text: "x"}},
		{{Start: 9000, End: 9100, Text: "y"}, {Start: 3200, End: 7500, Text: "z"}},
		{{Start: 0, End: 10000, Text: "all"}},
	}
	for i, overlay := range overlays {
		merged := Merge(base, overlay)
		for j, entry := range merged {
			if entry.Index != j+1 {
				t.Fatalf("case %d: expected index %d, got %d", i, j+1, entry.Index)
			}
			if j > 0 && merged[j-1].Start > entry.Start {
				t.Fatalf("case %d: result not sorted: %#v", i, merged)
			}
		}
	}

	merged, stats := MergeWithStats(Timeline{{Start: 5000, End: 6000, Text: "B"}, {Start: 0, End: 1000, Text: "A"}}, nil)
	want := Timeline{{Index: 1, Start: 0, End: 1000, Text: "A"}, {Index: 2, Start: 5000, End: 6000, Text: "B"}}
	if !slices.Equal(merged, want) || stats != (MergeStats{}) {
		t.Fatalf("empty overlay should still sort the base: %#v %+v", merged, stats)
	}
}
