package scanner

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/vonshlovens/zettelkasten/internal/zettel"
)

func sampleEntry() CacheEntry {
	meta := zettel.NewOrderedMap()
	meta.Set("title", zettel.String("Sample"))
	meta.Set("id", zettel.Int(123))
	meta.Set("publish", zettel.Bool(true))
	meta.Set("tags", zettel.List([]zettel.Value{zettel.String("a"), zettel.String("b")}))

	ref := zettel.NewOrderedMap()
	ref.Set("parent", zettel.String("[[other]]"))

	return CacheEntry{
		MtimeSecs:  1700000000,
		MtimeNanos: 42,
		Metadata:   meta,
		Reference:  ref,
	}
}

func TestSaveLoadCache_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "cache.bin")

	cache := Cache{"note.md": sampleEntry()}
	if err := SaveCache(path, cache); err != nil {
		t.Fatalf("SaveCache: %v", err)
	}

	loaded := LoadCache(path)
	entry, ok := loaded["note.md"]
	if !ok {
		t.Fatal("expected entry for note.md")
	}
	if entry.MtimeSecs != 1700000000 || entry.MtimeNanos != 42 {
		t.Errorf("unexpected mtime: %+v", entry)
	}

	title, ok := entry.Metadata.Get("title")
	if !ok {
		t.Fatal("expected title in decoded metadata")
	}
	if s, _ := title.AsString(); s != "Sample" {
		t.Errorf("expected title 'Sample', got %q", s)
	}

	tagsVal, _ := entry.Metadata.Get("tags")
	tags, _ := tagsVal.AsList()
	if len(tags) != 2 {
		t.Fatalf("expected 2 tags, got %v", tags)
	}

	parent, ok := entry.Reference.Get("parent")
	if !ok {
		t.Fatal("expected parent in decoded reference")
	}
	if s, _ := parent.AsString(); s != "[[other]]" {
		t.Errorf("expected '[[other]]', got %q", s)
	}
}

func TestLoadCache_MissingFileYieldsEmpty(t *testing.T) {
	cache := LoadCache(filepath.Join(t.TempDir(), "does-not-exist.bin"))
	if len(cache) != 0 {
		t.Errorf("expected empty cache, got %v", cache)
	}
}

func TestLoadCache_VersionMismatchYieldsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.bin")
	writeFile(t, dir, "cache.bin", "\x02garbage-after-wrong-version")

	cache := LoadCache(path)
	if len(cache) != 0 {
		t.Errorf("expected empty cache on version mismatch, got %v", cache)
	}
}

func TestLoadCache_CorruptPayloadYieldsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.bin")
	writeFile(t, dir, "cache.bin", "\x01\x00\x00")

	cache := LoadCache(path)
	if len(cache) != 0 {
		t.Errorf("expected empty cache on truncated payload, got %v", cache)
	}
}

func TestCacheEntry_IsStale(t *testing.T) {
	entry := CacheEntry{MtimeSecs: 1000, MtimeNanos: 500}

	same := time.Unix(1000, 500)
	if entry.IsStale(same) {
		t.Error("expected exact match to not be stale")
	}

	different := time.Unix(1000, 501)
	if !entry.IsStale(different) {
		t.Error("expected a nanosecond difference to be stale")
	}
}
