package planner

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"subforge/internal/services"
	"subforge/internal/timecode"
)

// Unit is the time unit of a periodic pattern.
type Unit byte

const (
	UnitHour   Unit = 'h'
	UnitMinute Unit = 'm'
	UnitSecond Unit = 's'
)

// Millis returns the unit length.
func (u Unit) Millis() (timecode.Millis, bool) {
	switch u {
	case UnitHour:
		return timecode.Hour, true
	case UnitMinute:
		return timecode.Minute, true
	case UnitSecond:
		return timecode.Second, true
	default:
		return 0, false
	}
}

// Spec is a decoded chunking request.
type Spec interface {
	isSpec()
	// Mode names the request kind for logs and plan output.
	Mode() string
}

// Pattern splits the input every Count units.
type Pattern struct {
	Count int64
	Unit  Unit
}

// CheckpointList splits the input at explicit free-form times.
type CheckpointList struct {
	Tokens []string
}

// RangeList selects explicit, possibly gapped or overlapping, ranges.
type RangeList struct {
	Tokens []string
}

// Whole processes the input as a single segment.
type Whole struct{}

func (Pattern) isSpec()        {}
func (CheckpointList) isSpec() {}
func (RangeList) isSpec()      {}
func (Whole) isSpec()          {}

func (Pattern) Mode() string        { return ModePattern }
func (CheckpointList) Mode() string { return ModeCheckpoints }
func (RangeList) Mode() string      { return ModeRanges }
func (Whole) Mode() string          { return ModeWhole }

// Interval returns the pattern period.
func (p Pattern) Interval() (timecode.Millis, error) {
	unit, ok := p.Unit.Millis()
	if !ok {
		return 0, services.Wrap(services.ErrFormat, "planner", "pattern", fmt.Sprintf("unknown unit %q", rune(p.Unit)), nil)
	}
	if p.Count <= 0 {
		return 0, services.Wrap(services.ErrValidation, "planner", "pattern", "count must be positive", nil)
	}
	if p.Count > math.MaxInt64/int64(unit) {
		return 0, services.Wrap(services.ErrValidation, "planner", "pattern", fmt.Sprintf("interval %d%c overflows", p.Count, p.Unit), nil)
	}
	return timecode.Millis(p.Count) * unit, nil
}

func (p Pattern) String() string {
	return strconv.FormatInt(p.Count, 10) + string(rune(p.Unit))
}

var patternPattern = regexp.MustCompile(`^[1-9]\d*[hms]$`)

// ParseInput decodes the checkpoints and ranges flag values. At most one may
// be non-empty; either may carry a periodic pattern such as "5m".
func ParseInput(checkpoints, ranges string) (Spec, error) {
	checkpoints = strings.TrimSpace(checkpoints)
	ranges = strings.TrimSpace(ranges)

	if checkpoints != "" && ranges != "" {
		return nil, services.Wrap(services.ErrConflict, "planner", "parse input", "checkpoints and segments are mutually exclusive", nil)
	}

	raw := checkpoints
	if raw == "" {
		raw = ranges
	}
	if raw == "" {
		return Whole{}, nil
	}
	if patternPattern.MatchString(raw) {
		return parsePattern(raw)
	}

	tokens := splitTokens(raw)
	if checkpoints != "" {
		return CheckpointList{Tokens: tokens}, nil
	}
	return RangeList{Tokens: tokens}, nil
}

func parsePattern(raw string) (Pattern, error) {
	count, err := strconv.ParseInt(raw[:len(raw)-1], 10, 64)
	if err != nil {
		return Pattern{}, services.Wrap(services.ErrFormat, "planner", "pattern", fmt.Sprintf("invalid count in %q", raw), err)
	}
	p := Pattern{Count: count, Unit: Unit(raw[len(raw)-1])}
	if _, err := p.Interval(); err != nil {
		return Pattern{}, err
	}
	return p, nil
}

func splitTokens(raw string) []string {
	parts := strings.Split(raw, ",")
	tokens := make([]string, 0, len(parts))
	for _, part := range parts {
		tokens = append(tokens, strings.TrimSpace(part))
	}
	return tokens
}
