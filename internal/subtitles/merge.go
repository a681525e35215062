package subtitles

import (
	"cmp"
	"slices"
)

// MergeStats summarizes what a merge replaced.
type MergeStats struct {
	// BaseEvicted counts base cues removed by overlapping overlay cues.
	BaseEvicted int
	// OverlaySuperseded counts overlay cues removed by later overlay cues.
	OverlaySuperseded int
	// Inserted counts overlay cues inserted, including ones later superseded.
	Inserted int
}

type mergeItem struct {
	entry   Entry
	overlay bool
}

// Merge reconciles base with overlay. Overlay cues are applied in their given
// order; each one evicts every cue in the running result whose interval
// overlaps it (whole-cue eviction, never trimming) and is inserted. The result
// is stably sorted by start and renumbered 1..N, even when overlay is empty. A later
// overlay cue therefore wins over an earlier overlay cue it overlaps, and any
// overlay cue wins over any base cue it overlaps.
func Merge(base, overlay Timeline) Timeline {
	merged, _ := MergeWithStats(base, overlay)
	return merged
}

// MergeWithStats is Merge that also reports eviction counts.
func MergeWithStats(base, overlay Timeline) (Timeline, MergeStats) {
	var stats MergeStats

	result := make([]mergeItem, 0, len(base)+len(overlay))
	for _, entry := range base {
		result = append(result, mergeItem{entry: entry})
	}

	for _, incoming := range overlay {
		kept := result[:0]
		for _, existing := range result {
			if !existing.entry.Overlaps(incoming) {
				kept = append(kept, existing)
				continue
			}
			if existing.overlay {
				stats.OverlaySuperseded++
			} else {
				stats.BaseEvicted++
			}
		}
		result = append(kept, mergeItem{entry: incoming, overlay: true})
		stats.Inserted++
	}
	slices.SortStableFunc(result, func(a, b mergeItem) int {
		return cmp.Compare(a.entry.Start, b.entry.Start)
	})

	merged := make(Timeline, len(result))
	for i, item := range result {
		merged[i] = item.entry
	}
	return merged.Renumber(), stats
}
