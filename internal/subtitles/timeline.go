package subtitles

import (
	"cmp"
	"slices"

	"subforge/internal/timecode"
)

// Entry is a single subtitle cue.
type Entry struct {
	Index int
	Start timecode.Millis
	End   timecode.Millis
	Text  string
}

// Overlaps reports whether the half-open intervals [e.Start, e.End) and
// [other.Start, other.End) intersect.
func (e Entry) Overlaps(other Entry) bool {
	return e.Start < other.End && other.Start < e.End
}

// Duration returns the cue length.
func (e Entry) Duration() timecode.Millis {
	return e.End - e.Start
}

// Timeline is an ordered sequence of cues.
type Timeline []Entry

// Clone returns an independent copy of t.
func (t Timeline) Clone() Timeline {
	if t == nil {
		return nil
	}
	out := make(Timeline, len(t))
	copy(out, t)
	return out
}

// Renumber returns a copy of t with indices 1..N in the current order.
func (t Timeline) Renumber() Timeline {
	out := t.Clone()
	for i := range out {
		out[i].Index = i + 1
	}
	return out
}

// Normalize returns a copy of t stably sorted by start time and renumbered.
func (t Timeline) Normalize() Timeline {
	out := t.Clone()
	sortByStart(out)
	for i := range out {
		out[i].Index = i + 1
	}
	return out
}

// Bounds returns the earliest start and the latest end in t.
func (t Timeline) Bounds() (timecode.Millis, timecode.Millis, bool) {
	if len(t) == 0 {
		return 0, 0, false
	}
	first, last := t[0].Start, t[0].End
	for _, e := range t[1:] {
		first = min(first, e.Start)
		last = max(last, e.End)
	}
	return first, last, true
}

func sortByStart(t Timeline) {
	slices.SortStableFunc(t, func(a, b Entry) int {
		return cmp.Compare(a.Start, b.Start)
	})
}
