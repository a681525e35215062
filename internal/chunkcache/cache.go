package chunkcache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"subforge/internal/timecode"
	"subforge/internal/transcript"
)

// timestampLayout is fixed width so created_at sorts lexically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

// Key identifies one cached chunk transcript.
type Key struct {
	Fingerprint string
	AudioTrack  int
	Start       timecode.Millis
	End         timecode.Millis
	Model       string
	Language    string
}

// Stats summarizes the cache contents.
type Stats struct {
	Entries   int
	Frames    int64
	SizeBytes int64
	Oldest    time.Time
	Newest    time.Time
}

// Fingerprint identifies the media at path by absolute path, size and
// modification time.
func Fingerprint(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	sum := sha256.New()
	sum.Write([]byte(abs))
	sum.Write([]byte{0})
	sum.Write([]byte(strconv.FormatInt(info.Size(), 10)))
	sum.Write([]byte{0})
	sum.Write([]byte(strconv.FormatInt(info.ModTime().UnixNano(), 10)))
	return hex.EncodeToString(sum.Sum(nil))[:32], nil
}

// Get returns the cached frames for key. The second result reports a hit.
func (s *Store) Get(ctx context.Context, key Key) ([]transcript.Frame, bool, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT frames_json FROM chunks
		 WHERE fingerprint = ? AND audio_track = ? AND start_ms = ? AND end_ms = ? AND model = ? AND language = ?`,
		key.Fingerprint, key.AudioTrack, int64(key.Start), int64(key.End), key.Model, key.Language,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read cached chunk: %w", err)
	}
	var frames []transcript.Frame
	if err := json.Unmarshal([]byte(payload), &frames); err != nil {
		return nil, false, fmt.Errorf("decode cached chunk: %w", err)
	}
	return frames, true, nil
}

// Put stores frames for key, replacing any previous entry.
func (s *Store) Put(ctx context.Context, key Key, frames []transcript.Frame) error {
	if frames == nil {
		frames = []transcript.Frame{}
	}
	payload, err := json.Marshal(frames)
	if err != nil {
		return fmt.Errorf("encode chunk frames: %w", err)
	}
	_, err = s.exec(ctx,
		`INSERT INTO chunks (fingerprint, audio_track, start_ms, end_ms, model, language, frames_json, frame_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(fingerprint, audio_track, start_ms, end_ms, model, language)
		 DO UPDATE SET frames_json = excluded.frames_json,
		               frame_count = excluded.frame_count,
		               created_at = excluded.created_at`,
		key.Fingerprint, key.AudioTrack, int64(key.Start), int64(key.End), key.Model, key.Language,
		string(payload), len(frames), time.Now().UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("store chunk: %w", err)
	}
	return nil
}

// Stats reports entry counts and the on-disk size of the database.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var (
		stats          Stats
		oldest, newest sql.NullString
		frames         sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1), SUM(frame_count), MIN(created_at), MAX(created_at) FROM chunks`,
	).Scan(&stats.Entries, &frames, &oldest, &newest)
	if err != nil {
		return Stats{}, fmt.Errorf("read cache stats: %w", err)
	}
	stats.Frames = frames.Int64
	stats.Oldest = parseTime(oldest)
	stats.Newest = parseTime(newest)
	for _, suffix := range []string{"", "-wal", "-shm"} {
		if info, err := os.Stat(s.path + suffix); err == nil {
			stats.SizeBytes += info.Size()
		}
	}
	return stats, nil
}

// Clear removes entries created before olderThan; a zero time removes every
// entry. It returns the number of entries removed.
func (s *Store) Clear(ctx context.Context, olderThan time.Time) (int64, error) {
	var (
		res sql.Result
		err error
	)
	if olderThan.IsZero() {
		res, err = s.exec(ctx, `DELETE FROM chunks`)
	} else {
		res, err = s.exec(ctx, `DELETE FROM chunks WHERE created_at < ?`, olderThan.UTC().Format(timestampLayout))
	}
	if err != nil {
		return 0, fmt.Errorf("clear cache: %w", err)
	}
	removed, _ := res.RowsAffected()
	if _, err := s.exec(ctx, `PRAGMA wal_checkpoint(TRUNCATE)`); err != nil {
		return removed, fmt.Errorf("checkpoint cache: %w", err)
	}
	return removed, nil
}

func parseTime(value sql.NullString) time.Time {
	if !value.Valid {
		return time.Time{}
	}
	ts, err := time.Parse(timestampLayout, value.String)
	if err != nil {
		return time.Time{}
	}
	return ts
}
