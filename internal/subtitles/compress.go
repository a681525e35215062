package subtitles

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// DefaultCompressChars is the default per-chunk character budget for Compress.
const DefaultCompressChars = 4000

var compressReplacer = strings.NewReplacer("|", "", "\n", "<br>")

// Compress renders t as "start,end,text|" records (times in milliseconds, line
// breaks as <br>, pipes removed) packed into chunks of at most maxChars
// characters. A single record longer than the budget gets a chunk of its own.
// The trailing record separator of each chunk is dropped.
func Compress(t Timeline, maxChars int) []string {
	if maxChars <= 0 {
		maxChars = DefaultCompressChars
	}
	var (
		chunks  []string
		current strings.Builder
		size    int
	)
	flush := func() {
		if size == 0 {
			return
		}
		chunks = append(chunks, strings.TrimRight(current.String(), "|"))
		current.Reset()
		size = 0
	}
	for _, entry := range t {
		record := compressRecord(entry)
		length := utf8.RuneCountInString(record)
		if size > 0 && size+length > maxChars {
			flush()
		}
		current.WriteString(record)
		size += length
	}
	flush()
	return chunks
}

// CompressText joins the Compress chunks with a blank line.
func CompressText(t Timeline, maxChars int) string {
	return strings.Join(Compress(t, maxChars), "\n\n")
}

func compressRecord(entry Entry) string {
	var b strings.Builder
	b.WriteString(strconv.FormatInt(int64(entry.Start), 10))
	b.WriteByte(',')
	b.WriteString(strconv.FormatInt(int64(entry.End), 10))
	b.WriteByte(',')
	b.WriteString(compressReplacer.Replace(strings.TrimSpace(entry.Text)))
	b.WriteByte('|')
	return b.String()
}
