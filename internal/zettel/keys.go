package zettel

import (
	"regexp"
	"strings"
)

// hyphenSpaceRe matches runs of hyphens/spaces, normalized to underscore
// before the camel-case splitting rules run.
var hyphenSpaceRe = regexp.MustCompile(`[-\s]+`)

// acronymBoundaryRe splits an acronym run from the word it leads into,
// e.g. "HTMLParser" -> "HTML_Parser".
var acronymBoundaryRe = regexp.MustCompile(`([A-Z]+)([A-Z][a-z])`)

// camelBoundaryRe splits a lowercase/digit run from a following uppercase
// letter, e.g. "dueDate" -> "due_Date".
var camelBoundaryRe = regexp.MustCompile(`([a-z0-9])([A-Z])`)

// NormalizeKey rewrites a metadata/reference key into kebab-case:
// hyphens and spaces become underscores, CamelCase/acronym boundaries get
// an inserted underscore, the result is lowercased, and underscores
// finally become hyphens. "SomeValue" -> "some-value", "Note Title" ->
// "note-title", "zkn-id" -> "zkn-id" (already normalized, a no-op).
func NormalizeKey(key string) string {
	s := hyphenSpaceRe.ReplaceAllString(key, "_")
	s = acronymBoundaryRe.ReplaceAllString(s, "${1}_${2}")
	s = camelBoundaryRe.ReplaceAllString(s, "${1}_${2}")
	s = strings.ToLower(s)
	return strings.ReplaceAll(s, "_", "-")
}

// NormalizeKeys returns a copy of m with every key passed through
// NormalizeKey, preserving insertion order. A collision after
// normalization (e.g. "due_date" and "DueDate" both present) keeps the
// position of the first occurrence but the value of the last, per
// OrderedMap.Set's insert-position/update-value semantics.
func NormalizeKeys(m *OrderedMap) *OrderedMap {
	out := NewOrderedMap()
	for _, k := range m.Keys() {
		v, _ := m.Get(k)
		out.Set(NormalizeKey(k), v)
	}
	return out
}
