package timecode

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"subforge/internal/services"
)

// Millis is a point or span on a media timeline in milliseconds.
type Millis int64

const (
	Second Millis = 1000
	Minute Millis = 60 * Second
	Hour   Millis = 60 * Minute
)

var (
	displayPattern  = regexp.MustCompile(`^(\d{2,}):(\d{2}):(\d{2}),(\d{3})$`)
	freeformPattern = regexp.MustCompile(`^\d+(:\d+){0,2}$`)
)

// ToDisplay renders ms as HH:MM:SS,mmm. Hours accumulate past 24.
func ToDisplay(ms Millis) (string, error) {
	if ms < 0 {
		return "", services.Wrap(services.ErrRange, "timecode", "display", fmt.Sprintf("negative time %d ms", ms), nil)
	}
	h := ms / Hour
	m := (ms % Hour) / Minute
	s := (ms % Minute) / Second
	frac := ms % Second
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, frac), nil
}

// MustDisplay is ToDisplay for values already known to be non-negative.
func MustDisplay(ms Millis) string {
	out, err := ToDisplay(ms)
	if err != nil {
		panic(err)
	}
	return out
}

// FromDisplay parses the strict HH:MM:SS,mmm form.
func FromDisplay(text string) (Millis, error) {
	match := displayPattern.FindStringSubmatch(text)
	if match == nil {
		return 0, formatError("display", text, "expected HH:MM:SS,mmm")
	}
	hours, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return 0, formatError("display", text, "hours out of range")
	}
	minutes, _ := strconv.ParseInt(match[2], 10, 64)
	seconds, _ := strconv.ParseInt(match[3], 10, 64)
	frac, _ := strconv.ParseInt(match[4], 10, 64)
	if minutes > 59 || seconds > 59 {
		return 0, formatError("display", text, "minutes and seconds must be below 60")
	}
	if hours > int64(math.MaxInt64/Hour)-1 {
		return 0, formatError("display", text, "hours out of range")
	}
	return Millis(hours)*Hour + Millis(minutes)*Minute + Millis(seconds)*Second + Millis(frac), nil
}

// FromFreeform parses SS, MM:SS or HH:MM:SS. Missing higher units are zero and
// components are not bounded, so "90" is ninety seconds.
func FromFreeform(text string) (Millis, error) {
	trimmed := strings.TrimSpace(text)
	if !freeformPattern.MatchString(trimmed) {
		return 0, formatError("freeform", text, "expected SS, MM:SS or HH:MM:SS")
	}
	parts := strings.Split(trimmed, ":")
	units := []Millis{Second, Minute, Hour}
	var total Millis
	for i := 0; i < len(parts); i++ {
		value, err := strconv.ParseInt(parts[len(parts)-1-i], 10, 64)
		if err != nil {
			return 0, formatError("freeform", text, "component out of range")
		}
		unit := units[i]
		if value > int64(math.MaxInt64/unit) {
			return 0, formatError("freeform", text, "component out of range")
		}
		add := Millis(value) * unit
		if total > math.MaxInt64-add {
			return 0, formatError("freeform", text, "value out of range")
		}
		total += add
	}
	return total, nil
}

// ToCompact renders ms as zero-padded HHMMSS (or HH:MM:SS with separators),
// truncating sub-second precision. Negative values render as zero.
func ToCompact(ms Millis, withSeparator bool) string {
	if ms < 0 {
		ms = 0
	}
	h := ms / Hour
	m := (ms % Hour) / Minute
	s := (ms % Minute) / Second
	if withSeparator {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d%02d%02d", h, m, s)
}

// FromCompact parses the HHMMSS form produced by ToCompact.
func FromCompact(text string) (Millis, error) {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < 6 {
		return 0, formatError("compact", text, "expected HHMMSS")
	}
	for _, r := range trimmed {
		if r < '0' || r > '9' {
			return 0, formatError("compact", text, "expected HHMMSS")
		}
	}
	split := len(trimmed) - 4
	hours, err := strconv.ParseInt(trimmed[:split], 10, 64)
	if err != nil {
		return 0, formatError("compact", text, "hours out of range")
	}
	minutes, _ := strconv.ParseInt(trimmed[split:split+2], 10, 64)
	seconds, _ := strconv.ParseInt(trimmed[split+2:], 10, 64)
	if minutes > 59 || seconds > 59 {
		return 0, formatError("compact", text, "minutes and seconds must be below 60")
	}
	return Millis(hours)*Hour + Millis(minutes)*Minute + Millis(seconds)*Second, nil
}

// FromSeconds converts fractional seconds (as reported by recognizers and
// ffprobe) to milliseconds, rounding to the nearest millisecond. NaN and
// negative values yield 0; values beyond the Millis range saturate.
func FromSeconds(seconds float64) Millis {
	if math.IsNaN(seconds) || seconds <= 0 {
		return 0
	}
	ms := math.Round(seconds * 1000)
	if ms >= math.MaxInt64 {
		return math.MaxInt64
	}
	return Millis(ms)
}

// Seconds returns ms as fractional seconds.
func (ms Millis) Seconds() float64 {
	return float64(ms) / 1000
}

// Duration converts ms to a time.Duration.
func (ms Millis) Duration() time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// FromDuration converts d to milliseconds, truncating.
func FromDuration(d time.Duration) Millis {
	return Millis(d / time.Millisecond)
}

// String renders the display form, or a signed millisecond count when negative.
func (ms Millis) String() string {
	out, err := ToDisplay(ms)
	if err != nil {
		return strconv.FormatInt(int64(ms), 10) + "ms"
	}
	return out
}

func formatError(form, text, reason string) error {
	return services.Wrap(services.ErrFormat, "timecode", form, fmt.Sprintf("%q: %s", text, reason), nil)
}
