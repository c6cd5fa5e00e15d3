package zettel

import (
	"fmt"
	"os"
	"time"
)

// ParseContent decomposes raw markdown content into a Note: front matter
// becomes Metadata, a trailing back-matter block becomes Reference, and
// whatever remains is split into ordered Sections by ATX heading. Keys in
// both maps are normalized to kebab-case. filePath and fsModTime (both
// optional — pass "" / zero time when parsing content with no backing
// file) feed filename/mtime-based enrichment of missing date/title
// fields.
func ParseContent(content, filePath string, fsModTime time.Time) *Note {
	meta, rest := ParseFrontMatter(content)
	ref, body := ParseBackMatter(rest)

	if meta == nil {
		meta = NewOrderedMap()
	} else {
		meta = NormalizeKeys(meta)
	}
	if ref == nil {
		ref = NewOrderedMap()
	} else {
		ref = NormalizeKeys(ref)
	}

	note := &Note{
		Metadata:  meta,
		Reference: ref,
		Sections:  SplitSections(body),
		FilePath:  filePath,
	}

	if filePath != "" {
		EnrichFromFilename(note, filePath, fsModTime)
	}

	return note
}

// ParseFile reads path and parses it with ParseContent, using the file's
// modification time as the enrichment fallback for a missing date.
func ParseFile(path string) (*Note, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var modTime time.Time
	if info, err := os.Stat(path); err == nil {
		modTime = info.ModTime()
	}

	return ParseContent(string(data), path, modTime), nil
}
