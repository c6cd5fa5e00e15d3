package zettel

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// filenameDateRe recognizes a Zettelkasten-style filename timestamp
// prefix: a 14-digit (yyyyMMddHHmmss) or 12-digit (yyyyMMddHHmm) run
// anchored at the start of the stem.
var filenameDateRe = regexp.MustCompile(`^(\d{14}|\d{12})`)

// DateFromFilename extracts a timestamp from the leading digit run of a
// base filename (no directory, extension already stripped by caller).
func DateFromFilename(base string) (time.Time, bool) {
	m := filenameDateRe.FindString(base)
	if m == "" {
		return time.Time{}, false
	}

	layout := "20060102150405"
	if len(m) == 12 {
		layout = "200601021504"
	}
	t, err := time.Parse(layout, m)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// TitleFromFilename derives a title candidate from a base filename by
// stripping any leading timestamp prefix, replacing hyphens with spaces,
// trimming, and capitalizing the first character. It is independent of
// DateFromFilename: a stem with no timestamp prefix at all still yields a
// title (e.g. "my-note" -> "My note").
func TitleFromFilename(base string) (string, bool) {
	stripped := filenameDateRe.ReplaceAllString(base, "")
	title := strings.TrimSpace(strings.ReplaceAll(stripped, "-", " "))
	if title == "" {
		return "", false
	}
	return strings.ToUpper(title[:1]) + title[1:], true
}

// EnrichFromFilename fills in a missing date and a missing title from the
// file's name — each derived independently of the other — falling back
// to fsModTime for the date when the filename carries no timestamp
// prefix. Never overwrites a field that is already present and non-null.
func EnrichFromFilename(note *Note, filePath string, fsModTime time.Time) {
	base := filepath.Base(filePath)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	if note.Metadata.IsMissing("date") {
		if t, ok := DateFromFilename(base); ok {
			note.Metadata.Set("date", DateTime(t))
		} else if !fsModTime.IsZero() {
			note.Metadata.Set("date", DateTime(fsModTime))
		}
	}

	if note.Metadata.IsMissing("title") {
		if title, ok := TitleFromFilename(base); ok {
			note.Metadata.Set("title", String(title))
		}
	}
}
