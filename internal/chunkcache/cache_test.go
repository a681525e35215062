package chunkcache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"subforge/internal/transcript"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "cache", "chunks.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestPutGetRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	key := Key{Fingerprint: "abc", Start: 0, End: 300000, Model: "large-v3", Language: "en"}

	if _, hit, err := store.Get(ctx, key); err != nil || hit {
		t.Fatalf("expected miss, got hit=%v err=%v", hit, err)
	}

	frames := []transcript.Frame{
		{Start: 0, End: 1500, Text: "Hello"},
		{Start: 1500, End: 3000, Text: "World"},
	}
	if err := store.Put(ctx, key, frames); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, hit, err := store.Get(ctx, key)
	if err != nil || !hit {
		t.Fatalf("expected hit, got hit=%v err=%v", hit, err)
	}
	if len(got) != 2 || got[1] != frames[1] {
		t.Fatalf("unexpected frames: %+v", got)
	}

	other := key
	other.Language = "fr"
	if _, hit, _ := store.Get(ctx, other); hit {
		t.Fatal("language must be part of the key")
	}
	other = key
	other.AudioTrack = 1
	if _, hit, _ := store.Get(ctx, other); hit {
		t.Fatal("audio track must be part of the key")
	}
}

func TestPutReplacesAndStoresEmpty(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	key := Key{Fingerprint: "abc", Start: 1000, End: 2000, Model: "small"}

	if err := store.Put(ctx, key, []transcript.Frame{{Start: 0, End: 1, Text: "a"}}); err != nil {
		t.Fatal(err)
	}
	if err := store.Put(ctx, key, nil); err != nil {
		t.Fatal(err)
	}
	got, hit, err := store.Get(ctx, key)
	if err != nil || !hit {
		t.Fatalf("expected hit for silent chunk, got hit=%v err=%v", hit, err)
	}
	if len(got) != 0 {
		t.Fatalf("expected replaced empty frames, got %+v", got)
	}
}

func TestStatsAndClear(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i := range 3 {
		key := Key{Fingerprint: "f", Start: 0, End: 1000, Model: "m", Language: string(rune('a' + i))}
		if err := store.Put(ctx, key, []transcript.Frame{{Text: "x"}, {Text: "y"}}); err != nil {
			t.Fatal(err)
		}
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Entries != 3 || stats.Frames != 6 || stats.SizeBytes <= 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.Oldest.IsZero() || stats.Newest.Before(stats.Oldest) {
		t.Fatalf("unexpected timestamps: %+v", stats)
	}

	removed, err := store.Clear(ctx, time.Now().Add(-time.Hour))
	if err != nil || removed != 0 {
		t.Fatalf("Clear older than an hour removed %d (err %v)", removed, err)
	}
	removed, err = store.Clear(ctx, time.Time{})
	if err != nil || removed != 3 {
		t.Fatalf("Clear all removed %d (err %v)", removed, err)
	}
	stats, err = store.Stats(ctx)
	if err != nil || stats.Entries != 0 || stats.Frames != 0 {
		t.Fatalf("expected empty cache, got %+v (err %v)", stats, err)
	}
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chunks.db")
	store, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	key := Key{Fingerprint: "f", End: 10}
	if err := store.Put(context.Background(), key, []transcript.Frame{{Text: "kept"}}); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if _, hit, err := reopened.Get(context.Background(), key); err != nil || !hit {
		t.Fatalf("expected hit after reopen, got hit=%v err=%v", hit, err)
	}
}

func TestOpenRebuildsIncompatibleSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chunks.db")
	store, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	key := Key{Fingerprint: "f", End: 10}
	if err := store.Put(context.Background(), key, []transcript.Frame{{Text: "stale"}}); err != nil {
		t.Fatal(err)
	}
	if _, err := store.db.Exec("UPDATE schema_version SET version = 1"); err != nil {
		t.Fatal(err)
	}
	_ = store.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if _, hit, err := reopened.Get(context.Background(), key); err != nil || hit {
		t.Fatalf("old entries should be dropped, got hit=%v err=%v", hit, err)
	}
	var version int
	if err := reopened.db.QueryRow("SELECT version FROM schema_version").Scan(&version); err != nil || version != schemaVersion {
		t.Fatalf("expected version %d, got %d (err %v)", schemaVersion, version, err)
	}
}

func TestFingerprint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "talk.mp3")
	if err := os.WriteFile(path, []byte("audio"), 0o644); err != nil {
		t.Fatal(err)
	}
	first, err := Fingerprint(path)
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	again, _ := Fingerprint(path)
	if first != again || len(first) != 32 {
		t.Fatalf("unstable fingerprint %q vs %q", first, again)
	}

	later := time.Now().Add(time.Hour)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatal(err)
	}
	changed, _ := Fingerprint(path)
	if changed == first {
		t.Fatal("fingerprint should change with modification time")
	}

	if _, err := Fingerprint(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
