package planner

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"subforge/internal/services"
	"subforge/internal/timecode"
)

// Plan modes reported in Result.Mode.
const (
	ModePattern     = "pattern"
	ModeCheckpoints = "checkpoints"
	ModeRanges      = "ranges"
	ModeWhole       = "whole"
)

// Segment is the half-open interval [Start, End) of source media.
type Segment struct {
	Start timecode.Millis `json:"start_ms" yaml:"start_ms"`
	End   timecode.Millis `json:"end_ms" yaml:"end_ms"`
}

// Duration returns the segment length.
func (s Segment) Duration() timecode.Millis {
	return s.End - s.Start
}

func (s Segment) overlaps(other Segment) bool {
	return s.Start < other.End && other.Start < s.End
}

func (s Segment) String() string {
	return timecode.MustDisplay(max(s.Start, 0)) + " - " + timecode.MustDisplay(max(s.End, 0))
}

// WarningKind classifies a non-fatal planning diagnostic.
type WarningKind string

const (
	WarnCheckpointsReordered WarningKind = "checkpoints_reordered"
	WarnRangeOutOfOrder      WarningKind = "range_out_of_order"
	WarnRangeOverlap         WarningKind = "range_overlap"
	WarnRangeEmpty           WarningKind = "range_empty"
	WarnRangePastEnd         WarningKind = "range_past_end"
)

// Warning is a diagnostic that does not block planning. Segment and Other are
// 1-based segment positions; Other is set only for overlaps.
type Warning struct {
	Kind    WarningKind `json:"kind" yaml:"kind"`
	Segment int         `json:"segment,omitempty" yaml:"segment,omitempty"`
	Other   int         `json:"other,omitempty" yaml:"other,omitempty"`
	Message string      `json:"message" yaml:"message"`
}

// Result is a chunk plan. Boundaries lists the interior cut points of pattern
// and checkpoint partitions.
type Result struct {
	Mode       string            `json:"mode" yaml:"mode"`
	Total      timecode.Millis   `json:"total_ms" yaml:"total_ms"`
	Boundaries []timecode.Millis `json:"boundaries_ms,omitempty" yaml:"boundaries_ms,omitempty"`
	Segments   []Segment         `json:"segments" yaml:"segments"`
	Warnings   []Warning         `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Plan builds the chunk plan for an input of total milliseconds.
func Plan(total timecode.Millis, spec Spec) (Result, error) {
	if total <= 0 {
		return Result{}, services.Wrap(services.ErrValidation, "planner", "plan", fmt.Sprintf("total duration must be positive, got %s", total), nil)
	}
	if spec == nil {
		spec = Whole{}
	}

	switch s := spec.(type) {
	case Pattern:
		return planPattern(total, s)
	case CheckpointList:
		return planCheckpoints(total, s)
	case RangeList:
		return planRanges(total, s)
	case Whole:
		return Result{Mode: ModeWhole, Total: total, Segments: []Segment{{Start: 0, End: total}}}, nil
	default:
		return Result{}, services.Wrap(services.ErrValidation, "planner", "plan", fmt.Sprintf("unsupported spec %T", spec), nil)
	}
}

func planPattern(total timecode.Millis, p Pattern) (Result, error) {
	interval, err := p.Interval()
	if err != nil {
		return Result{}, err
	}
	var boundaries []timecode.Millis
	for at := interval; at <= total; at += interval {
		boundaries = append(boundaries, at)
		if at > total-interval {
			break
		}
	}
	if len(boundaries) == 0 {
		boundaries = []timecode.Millis{total}
	}
	segments := partition(total, boundaries)
	return Result{
		Mode:       ModePattern,
		Total:      total,
		Boundaries: cuts(segments),
		Segments:   segments,
	}, nil
}

var checkpointPattern = regexp.MustCompile(`^(\d+:)?(\d+:)?\d+$`)

func planCheckpoints(total timecode.Millis, list CheckpointList) (Result, error) {
	if len(list.Tokens) == 0 {
		return Result{}, services.Wrap(services.ErrValidation, "planner", "checkpoints", "no checkpoints given", nil)
	}
	boundaries := make([]timecode.Millis, 0, len(list.Tokens))
	for _, token := range list.Tokens {
		token = strings.TrimSpace(token)
		if !checkpointPattern.MatchString(token) {
			return Result{}, services.Wrap(services.ErrValidation, "planner", "checkpoints",
				fmt.Sprintf("invalid checkpoint %q, expected hh:mm:ss with hours and minutes optional", token), nil)
		}
		at, err := timecode.FromFreeform(token)
		if err != nil {
			return Result{}, services.Wrap(services.ErrValidation, "planner", "checkpoints", fmt.Sprintf("invalid checkpoint %q", token), err)
		}
		if at < 0 || at > total {
			return Result{}, services.Wrap(services.ErrValidation, "planner", "checkpoints",
				fmt.Sprintf("checkpoint %q is out of bounds, valid checkpoints range from 00:00:00 to %s", token, timecode.ToCompact(total, true)), nil)
		}
		boundaries = append(boundaries, at)
	}

	result := Result{Mode: ModeCheckpoints, Total: total}
	if !slices.IsSorted(boundaries) {
		boundaries = slices.Clone(boundaries)
		slices.Sort(boundaries)
		result.Warnings = append(result.Warnings, Warning{
			Kind:    WarnCheckpointsReordered,
			Message: "checkpoints were out of order and have been sorted",
		})
	}
	result.Segments = partition(total, boundaries)
	result.Boundaries = cuts(result.Segments)
	return result, nil
}

// partition closes one segment per boundary that advances past the previous
// one, then a final segment up to total. Boundaries must be sorted.
func partition(total timecode.Millis, boundaries []timecode.Millis) []Segment {
	segments := make([]Segment, 0, len(boundaries)+1)
	var prev timecode.Millis
	for _, at := range boundaries {
		if at <= prev {
			continue
		}
		segments = append(segments, Segment{Start: prev, End: at})
		prev = at
	}
	if total > prev {
		segments = append(segments, Segment{Start: prev, End: total})
	}
	return segments
}

// cuts returns the interior boundaries of a partition.
func cuts(segments []Segment) []timecode.Millis {
	if len(segments) < 2 {
		return nil
	}
	out := make([]timecode.Millis, 0, len(segments)-1)
	for _, s := range segments[1:] {
		out = append(out, s.Start)
	}
	return out
}

func planRanges(total timecode.Millis, list RangeList) (Result, error) {
	if len(list.Tokens) == 0 {
		return Result{}, services.Wrap(services.ErrValidation, "planner", "ranges", "no segments given", nil)
	}
	segments := make([]Segment, 0, len(list.Tokens))
	last := len(list.Tokens) - 1
	for i, token := range list.Tokens {
		seg, err := parseRange(strings.TrimSpace(token), i == 0, i == last, total)
		if err != nil {
			return Result{}, err
		}
		if seg.End < seg.Start {
			return Result{}, services.Wrap(services.ErrValidation, "planner", "ranges",
				fmt.Sprintf("segment %d (%q) ends before it starts", i+1, token), nil)
		}
		segments = append(segments, seg)
	}
	return Result{
		Mode:     ModeRanges,
		Total:    total,
		Segments: segments,
		Warnings: rangeDiagnostics(total, segments),
	}, nil
}

func parseRange(token string, first, last bool, total timecode.Millis) (Segment, error) {
	malformed := func(reason string, err error) error {
		return services.Wrap(services.ErrValidation, "planner", "ranges", fmt.Sprintf("malformed segment %q: %s", token, reason), err)
	}
	parse := func(text string) (timecode.Millis, error) {
		text = strings.TrimSpace(text)
		if text == "" {
			return total, nil
		}
		at, err := timecode.FromFreeform(text)
		if err != nil {
			return 0, malformed("invalid time", err)
		}
		return at, nil
	}

	if rest, ok := strings.CutPrefix(token, ":"); ok {
		if !first {
			return Segment{}, malformed("\":END\" is only allowed as the first segment", nil)
		}
		end, err := parse(rest)
		if err != nil {
			return Segment{}, err
		}
		return Segment{Start: 0, End: end}, nil
	}

	startText, endText, found := strings.Cut(token, "-")
	if !found {
		if !last {
			return Segment{}, malformed("a bare start is only allowed as the last segment", nil)
		}
		endText = ""
	}
	if strings.TrimSpace(startText) == "" {
		return Segment{}, malformed("missing start", nil)
	}
	start, err := parse(startText)
	if err != nil {
		return Segment{}, err
	}
	end, err := parse(endText)
	if err != nil {
		return Segment{}, err
	}
	return Segment{Start: start, End: end}, nil
}

func rangeDiagnostics(total timecode.Millis, segments []Segment) []Warning {
	var warnings []Warning
	var prevEnd timecode.Millis
	for i, seg := range segments {
		if seg.Start < prevEnd {
			warnings = append(warnings, Warning{
				Kind:    WarnRangeOutOfOrder,
				Segment: i + 1,
				Message: fmt.Sprintf("segment %d starts before the previous segment ends", i+1),
			})
		}
		prevEnd = seg.End
		if seg.Duration() == 0 {
			warnings = append(warnings, Warning{
				Kind:    WarnRangeEmpty,
				Segment: i + 1,
				Message: fmt.Sprintf("segment %d is empty", i+1),
			})
		}
		if seg.End > total {
			warnings = append(warnings, Warning{
				Kind:    WarnRangePastEnd,
				Segment: i + 1,
				Message: fmt.Sprintf("segment %d ends after the input at %s", i+1, timecode.ToCompact(total, true)),
			})
		}
	}
	for i := range segments {
		for j := i + 1; j < len(segments); j++ {
			if segments[i].overlaps(segments[j]) {
				warnings = append(warnings, Warning{
					Kind:    WarnRangeOverlap,
					Segment: i + 1,
					Other:   j + 1,
					Message: fmt.Sprintf("segments %d and %d are overlapping", i+1, j+1),
				})
			}
		}
	}
	return warnings
}
