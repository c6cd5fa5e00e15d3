package zettel

import (
	"regexp"
	"strings"
)

// backMatterMarkerRe matches a line that is exactly "---" on its own,
// which closes off a trailing back-matter block.
var backMatterMarkerRe = regexp.MustCompile(`(?m)^---$`)

// dataviewKeyRe matches Dataview's inline-field shorthand ("key:: value")
// so it can be rewritten to plain YAML ("key: value") before parsing.
var dataviewKeyRe = regexp.MustCompile(`^(\s*-?\s*\S+?)::`)

// unsafeValueRe splits a `key: value` line into its key and value so that
// needsQuoting can decide whether the value has to be quoted.
var unsafeValueRe = regexp.MustCompile(`^(\s*-?\s*[^:]+:)\s*(.+)$`)

// ParseBackMatter extracts and normalizes a trailing back-matter block: a
// sequence of single-key mappings introduced by a standalone "---" line.
//
// Deliberately takes the LAST standalone "---" line in the document, not
// the first — a markdown body may contain its own horizontal rules
// ("---") before the real back-matter delimiter, and treating the first
// one as the delimiter would truncate the note body.
func ParseBackMatter(content string) (*OrderedMap, string) {
	matches := backMatterMarkerRe.FindAllStringIndex(content, -1)
	if matches == nil {
		return nil, content
	}

	last := matches[len(matches)-1]
	markerStart, markerEnd := last[0], last[1]

	rawStart := markerEnd
	if rawStart < len(content) && content[rawStart] == '\n' {
		rawStart++
	}
	raw := strings.TrimSpace(content[rawStart:])

	preprocessed := quoteUnsafeValues(fixDataviewKeys(raw))

	reference, err := decodeYAMLSequenceOfMappings(preprocessed)
	if err != nil {
		return nil, content
	}

	without := strings.TrimRight(content[:markerStart], "\n")
	return reference, without
}

// fixDataviewKeys rewrites "key:: value" lines (Dataview inline-field
// shorthand) to plain YAML "key: value", line by line.
func fixDataviewKeys(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if m := dataviewKeyRe.FindStringSubmatchIndex(line); m != nil {
			lines[i] = line[:m[3]] + ":" + line[m[1]:]
		}
	}
	return strings.Join(lines, "\n")
}

// quoteUnsafeValues wraps a line's value portion in double quotes when it
// contains characters (":" in particular) that would otherwise break a
// bare YAML scalar, escaping any embedded double quotes first.
func quoteUnsafeValues(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		m := unsafeValueRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		key, value := m[1], m[2]
		if !needsQuoting(value) {
			continue
		}
		escaped := strings.ReplaceAll(value, `"`, `\"`)
		lines[i] = key + ` "` + escaped + `"`
	}
	return strings.Join(lines, "\n")
}

// needsQuoting reports whether value would not parse as a safe bare YAML
// scalar: any value containing ":", "[" or "]" (a URL, a timestamp, a
// wiki-link) needs quoting unless it is already wrapped in double quotes.
func needsQuoting(value string) bool {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) >= 2 && trimmed[0] == '"' && trimmed[len(trimmed)-1] == '"' {
		return false
	}
	return strings.ContainsAny(trimmed, ":[]")
}
