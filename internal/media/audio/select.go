package audio

import (
	"strconv"
	"strings"

	"subforge/internal/language"
	"subforge/internal/media/ffprobe"
)

// Selection reasons reported for logging.
const (
	ReasonLanguage = "language_match"
	ReasonDefault  = "default_track"
	ReasonFirst    = "first_track"
	ReasonNone     = "no_audio"
)

// Selection is the audio stream chosen for transcription.
type Selection struct {
	// Track is the position among audio streams, or -1 when there is none.
	Track  int
	Stream ffprobe.Stream
	Reason string
}

// Label returns a human-readable summary of the selected stream.
func (s Selection) Label() string {
	if s.Track < 0 {
		return ""
	}
	return StreamLabel(s.Stream)
}

type candidate struct {
	stream         ffprobe.Stream
	track          int
	language       string
	title          string
	channels       int
	defaultFlagged bool
	secondary      bool
}

// Select returns the audio stream best suited to recognizing speech in lang.
// An empty lang only applies the commentary and default-track preferences.
func Select(streams []ffprobe.Stream, lang string) Selection {
	candidates := buildCandidates(streams)
	if len(candidates) == 0 {
		return Selection{Track: -1, Reason: ReasonNone}
	}
	want := language.ToISO2(lang)

	best := candidates[0]
	bestScore := score(best, want)
	for _, cand := range candidates[1:] {
		if s := score(cand, want); s > bestScore {
			best, bestScore = cand, s
		}
	}

	reason := ReasonFirst
	switch {
	case want != "" && best.language == want:
		reason = ReasonLanguage
	case best.defaultFlagged:
		reason = ReasonDefault
	}
	return Selection{Track: best.track, Stream: best.stream, Reason: reason}
}

func score(cand candidate, want string) int {
	total := 0
	if want != "" && cand.language == want {
		total += 1000
	}
	if cand.secondary {
		total -= 500
	}
	if cand.defaultFlagged {
		total += 100
	}
	// Dialogue mixes beyond 5.1 add nothing for recognition.
	total += min(cand.channels, 6)
	// Earlier tracks win ties.
	total -= cand.track
	return total
}

func buildCandidates(streams []ffprobe.Stream) []candidate {
	var result []candidate
	for _, stream := range streams {
		if !strings.EqualFold(stream.CodecType, "audio") {
			continue
		}
		cand := candidate{
			stream:         stream,
			track:          len(result),
			language:       language.ToISO2(tagValue(stream.Tags, "language", "LANGUAGE", "language_ietf")),
			title:          strings.ToLower(tagValue(stream.Tags, "title", "TITLE", "handler_name")),
			channels:       channelCount(stream),
			defaultFlagged: stream.Disposition["default"] == 1,
		}
		cand.secondary = isSecondary(stream, cand.title)
		result = append(result, cand)
	}
	return result
}

var secondaryKeywords = []string{"commentary", "director", "description", "descriptive", "visually impaired"}

// isSecondary reports commentary and audio-description tracks, whose speech
// is not the programme dialogue.
func isSecondary(stream ffprobe.Stream, title string) bool {
	if stream.Disposition["comment"] == 1 || stream.Disposition["visual_impaired"] == 1 {
		return true
	}
	for _, keyword := range secondaryKeywords {
		if strings.Contains(title, keyword) {
			return true
		}
	}
	return false
}

func tagValue(tags map[string]string, keys ...string) string {
	for _, key := range keys {
		if value, ok := tags[key]; ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func channelCount(stream ffprobe.Stream) int {
	if stream.Channels > 0 {
		return stream.Channels
	}
	layout := strings.ToLower(strings.TrimSpace(stream.ChannelLayout))
	switch {
	case layout == "mono":
		return 1
	case layout == "stereo":
		return 2
	case strings.Contains(layout, "."):
		total := 0
		for _, part := range strings.Split(layout, ".") {
			part = strings.Trim(part, "abcdefghijklmnopqrstuvwxyz ()")
			if n, err := strconv.Atoi(part); err == nil {
				total += n
			}
		}
		return total
	}
	return 0
}

// StreamLabel renders an audio stream as "en | aac | 2ch | Title".
func StreamLabel(stream ffprobe.Stream) string {
	parts := make([]string, 0, 4)
	if lang := tagValue(stream.Tags, "language", "LANGUAGE"); lang != "" {
		parts = append(parts, strings.ToLower(lang))
	}
	if stream.CodecName != "" {
		parts = append(parts, stream.CodecName)
	}
	if channels := channelCount(stream); channels > 0 {
		parts = append(parts, strconv.Itoa(channels)+"ch")
	}
	if title := tagValue(stream.Tags, "title", "TITLE"); title != "" {
		parts = append(parts, title)
	}
	if len(parts) == 0 {
		return "audio"
	}
	return strings.Join(parts, " | ")
}
