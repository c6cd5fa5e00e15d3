package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/vonshlovens/zettelkasten/internal/zettel"
)

// defaultExtensions is used whenever the caller passes an empty slice.
var defaultExtensions = []string{".md"}

// MetadataEq is a post-pipeline metadata equality filter: for every pair,
// metadata[key] must be present and Equal to the given value for a note
// to survive LoadFiltered.
type MetadataEq map[string]zettel.Value

// LoadAll walks dir, parses every matching file, and runs the full
// pipeline over each. Symlinks are followed. A per-file parse failure is
// logged and the file skipped — never fatal to the whole scan.
func LoadAll(ctx context.Context, dir string, extensions []string) ([]*zettel.Note, error) {
	return loadAll(ctx, dir, extensions, true)
}

func loadAll(ctx context.Context, dir string, extensions []string, followSymlinks bool) ([]*zettel.Note, error) {
	extensions = orDefault(extensions)

	paths, err := CollectFiles(dir, extensions, nil, nil, followSymlinks)
	if err != nil {
		return nil, fmt.Errorf("scanner: collecting files under %s: %w", dir, err)
	}

	return parseAll(ctx, dir, paths)
}

// LoadFiltered behaves like LoadAll but drops any note whose post-pipeline
// metadata doesn't satisfy every condition in conditions.
func LoadFiltered(ctx context.Context, dir string, extensions []string, conditions MetadataEq) ([]*zettel.Note, error) {
	notes, err := LoadAll(ctx, dir, extensions)
	if err != nil {
		return nil, err
	}
	return filterNotes(notes, conditions), nil
}

// LoadCached serves LoadFiltered from cachePath when possible. A missing
// or empty cache triggers a cold run: a local-only walk (no symlinks),
// parsing everything and writing a fresh cache. A populated cache serves
// a warm run: cache entries are filtered on metadata first, and only
// paths that survive the filter are ever stat'd or reparsed — the warm
// path never touches the filesystem for a non-matching file.
func LoadCached(ctx context.Context, dir string, extensions []string, conditions MetadataEq, cachePath string) ([]*zettel.Note, error) {
	extensions = orDefault(extensions)
	cache := LoadCache(cachePath)

	if len(cache) == 0 {
		return loadColdAndCache(ctx, dir, extensions, conditions, cachePath)
	}

	var candidates []string
	for path, entry := range cache {
		if metadataMatches(entry.Metadata, conditions) {
			candidates = append(candidates, path)
		}
	}

	return parseAll(ctx, dir, candidates)
}

func loadColdAndCache(ctx context.Context, dir string, extensions []string, conditions MetadataEq, cachePath string) ([]*zettel.Note, error) {
	paths, err := CollectFiles(dir, extensions, nil, nil, false)
	if err != nil {
		return nil, fmt.Errorf("scanner: collecting files under %s: %w", dir, err)
	}

	notes, cache := parseAllAndCache(ctx, dir, paths)
	if err := SaveCache(cachePath, cache); err != nil {
		slog.Warn("failed to write cache", "path", cachePath, "error", err)
	}

	return filterNotes(notes, conditions), nil
}

// RefreshCache re-walks dir (following symlinks), compares each file's
// mtime against cachePath's entries, reparses anything new or stale,
// drops entries for files that no longer exist, and saves the result.
// It returns a short human summary such as "3 new, 2 modified", or an
// empty string if nothing changed.
func RefreshCache(ctx context.Context, dir string, extensions []string, cachePath string) (string, error) {
	extensions = orDefault(extensions)
	cache := LoadCache(cachePath)

	paths, err := CollectFiles(dir, extensions, nil, nil, true)
	if err != nil {
		return "", fmt.Errorf("scanner: collecting files under %s: %w", dir, err)
	}
	present := make(map[string]bool, len(paths))

	var stale []string
	newCount, modifiedCount := 0, 0

	for _, rel := range paths {
		present[rel] = true
		abs := filepath.Join(dir, rel)

		info, err := os.Stat(abs)
		if err != nil {
			stale = append(stale, rel)
			continue
		}

		entry, ok := cache[rel]
		if !ok {
			newCount++
			stale = append(stale, rel)
			continue
		}
		if entry.IsStale(info.ModTime()) {
			modifiedCount++
			stale = append(stale, rel)
		}
	}

	deleted := 0
	for path := range cache {
		if !present[path] {
			delete(cache, path)
			deleted++
		}
	}

	if len(stale) == 0 && deleted == 0 {
		return "", nil
	}

	notes, err := parseAllWithPaths(ctx, dir, stale)
	if err != nil {
		return "", err
	}
	for _, note := range notes {
		info, err := os.Stat(note.FilePath)
		if err != nil {
			continue
		}
		rel, err := filepath.Rel(dir, note.FilePath)
		if err != nil {
			continue
		}
		cache[filepath.ToSlash(rel)] = EntryFor(note, info.ModTime())
	}

	if err := SaveCache(cachePath, cache); err != nil {
		return "", fmt.Errorf("scanner: saving cache: %w", err)
	}

	return summarize(newCount, modifiedCount, deleted), nil
}

func summarize(newCount, modifiedCount, deleted int) string {
	var parts []string
	if newCount > 0 {
		parts = append(parts, fmt.Sprintf("%d new", newCount))
	}
	if modifiedCount > 0 {
		parts = append(parts, fmt.Sprintf("%d modified", modifiedCount))
	}
	if deleted > 0 {
		parts = append(parts, fmt.Sprintf("%d deleted", deleted))
	}
	return strings.Join(parts, ", ")
}

// Search performs a case-insensitive substring match over section
// headings/bodies, metadata.title, and string metadata.tags entries of
// the raw (pre-pipeline) parse of every matching file, then runs the full
// pipeline only on notes that matched — avoiding pipeline cost on misses.
func Search(ctx context.Context, dir string, query string, extensions []string) ([]*zettel.Note, error) {
	extensions = orDefault(extensions)
	query = strings.ToLower(query)

	paths, err := CollectFiles(dir, extensions, nil, nil, true)
	if err != nil {
		return nil, fmt.Errorf("scanner: collecting files under %s: %w", dir, err)
	}

	var hits []string
	for _, rel := range paths {
		abs := filepath.Join(dir, rel)
		raw, err := zettel.ParseFile(abs)
		if err != nil {
			slog.Warn("scanner: failed to parse for search", "path", abs, "error", err)
			continue
		}
		if matchesQuery(raw, query) {
			hits = append(hits, rel)
		}
	}

	return parseAll(ctx, dir, hits)
}

func matchesQuery(note *zettel.Note, query string) bool {
	for _, s := range note.Sections {
		if strings.Contains(strings.ToLower(s.Heading), query) || strings.Contains(strings.ToLower(s.Body), query) {
			return true
		}
	}
	if v, ok := note.Metadata.Get("title"); ok {
		if s, isStr := v.AsString(); isStr && strings.Contains(strings.ToLower(s), query) {
			return true
		}
	}
	if v, ok := note.Metadata.Get("tags"); ok {
		if list, isList := v.AsList(); isList {
			for _, tag := range list {
				if s, isStr := tag.AsString(); isStr && strings.Contains(strings.ToLower(s), query) {
					return true
				}
			}
		}
	}
	return false
}

func filterNotes(notes []*zettel.Note, conditions MetadataEq) []*zettel.Note {
	if len(conditions) == 0 {
		return notes
	}
	out := make([]*zettel.Note, 0, len(notes))
	for _, n := range notes {
		if metadataMatches(n.Metadata, conditions) {
			out = append(out, n)
		}
	}
	return out
}

func metadataMatches(m *zettel.OrderedMap, conditions MetadataEq) bool {
	if len(conditions) == 0 {
		return true
	}
	if m == nil {
		return false
	}
	for key, want := range conditions {
		got, ok := m.Get(key)
		if !ok || !got.Equal(want) {
			return false
		}
	}
	return true
}

// parseAll parses and pipelines every path (relative to dir) in parallel,
// preserving walk order in the returned slice regardless of which task
// finishes first.
func parseAll(ctx context.Context, dir string, paths []string) ([]*zettel.Note, error) {
	notes, err := parseAllWithPaths(ctx, dir, paths)
	return notes, err
}

func parseAllAndCache(ctx context.Context, dir string, paths []string) ([]*zettel.Note, Cache) {
	notes, _ := parseAllWithPaths(ctx, dir, paths)
	cache := make(Cache, len(notes))
	for _, note := range notes {
		info, err := os.Stat(note.FilePath)
		if err != nil {
			continue
		}
		rel, err := filepath.Rel(dir, note.FilePath)
		if err != nil {
			continue
		}
		cache[filepath.ToSlash(rel)] = EntryFor(note, info.ModTime())
	}
	return notes, cache
}

const maxParallelParses = 16

func parseAllWithPaths(ctx context.Context, dir string, paths []string) ([]*zettel.Note, error) {
	results := make([]*zettel.Note, len(paths))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelParses)

	for i, rel := range paths {
		i, rel := i, rel
		g.Go(func() error {
			abs := filepath.Join(dir, rel)
			note, err := zettel.ParseFile(abs)
			if err != nil {
				slog.Warn("scanner: failed to parse file, skipping", "path", abs, "error", err)
				return nil
			}
			zettel.ProcessNote(note)
			results[i] = note
			return nil
		})
	}
	_ = g.Wait()

	out := make([]*zettel.Note, 0, len(results))
	for _, n := range results {
		if n != nil {
			out = append(out, n)
		}
	}
	return out, nil
}

func orDefault(extensions []string) []string {
	if len(extensions) == 0 {
		return defaultExtensions
	}
	return extensions
}
