package whisperx

import (
	"fmt"
	"strconv"

	"subforge/internal/timecode"
)

// buildExtractArgs returns ffmpeg arguments that cut [start, end) from the
// audioTrack-th audio stream of source into a mono 16 kHz WAV at dest. Seeking
// happens before -i so large inputs are not decoded from the beginning.
func buildExtractArgs(source string, audioTrack int, start, end timecode.Millis, dest string) []string {
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-ss", seconds(start),
		"-t", seconds(end - start),
		"-i", source,
		"-map", fmt.Sprintf("0:a:%d", audioTrack),
		"-vn",
		"-sn",
		"-dn",
		"-ac", Channels,
		"-ar", SampleRate,
		"-c:a", AudioCodec,
		dest,
	}
	return args
}

// seconds renders ms as decimal seconds with millisecond precision.
func seconds(ms timecode.Millis) string {
	return strconv.FormatFloat(ms.Seconds(), 'f', 3, 64)
}
