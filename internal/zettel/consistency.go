package zettel

import (
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// EnsureConsistency runs the base consistency checks: filling in missing
// metadata defaults, deduplicating and sorting tags, normalizing title
// casing, and aligning the first section's H1 heading to the title.
func EnsureConsistency(note *Note) {
	setMissingDefaults(note)
	removeDuplicateTags(note)
	sortTags(note)
	fixTitleFormat(note)
	alignH1ToTitle(note)
}

func setMissingDefaults(note *Note) {
	setDefaultDate(note)
	setDefaultID(note)
	setDefaultTitle(note)
	setDefaultType(note)
	setDefaultTags(note)
	setDefaultPublish(note)
	setDefaultProcessed(note)
}

func setDefaultDate(note *Note) {
	if note.Metadata.IsMissing("date") {
		note.Metadata.Set("date", DateTime(time.Now().UTC()))
	}
}

func setDefaultID(note *Note) {
	if !note.Metadata.IsMissing("id") {
		return
	}
	dateVal, ok := note.Metadata.Get("date")
	if !ok {
		return
	}
	t, ok := dateVal.AsTime()
	if !ok {
		return
	}
	idStr := t.UTC().Format("20060102150405")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return
	}
	note.Metadata.Set("id", Int(id))
}

func setDefaultTitle(note *Note) {
	if !note.Metadata.IsMissing("title") {
		return
	}
	title := "Unknown title"
	if len(note.Sections) > 0 && strings.HasPrefix(note.Sections[0].Heading, "# ") {
		title = note.Sections[0].Heading[2:]
	}
	note.Metadata.Set("title", String(title))
}

func setDefaultType(note *Note) {
	if note.Metadata.IsMissing("type") {
		note.Metadata.Set("type", String("note"))
	}
}

func setDefaultTags(note *Note) {
	if note.Metadata.IsMissing("tags") {
		note.Metadata.Set("tags", List(nil))
	}
}

func setDefaultPublish(note *Note) {
	if note.Metadata.IsMissing("publish") {
		note.Metadata.Set("publish", Bool(false))
	}
}

func setDefaultProcessed(note *Note) {
	if note.Metadata.IsMissing("processed") {
		note.Metadata.Set("processed", Bool(false))
	}
}

// removeDuplicateTags drops repeated string tags, preserving first
// occurrence order. Non-string list entries are always kept (they have
// no dedup key).
func removeDuplicateTags(note *Note) {
	tagsVal, ok := note.Metadata.Get("tags")
	if !ok {
		return
	}
	tags, ok := tagsVal.AsList()
	if !ok {
		return
	}
	seen := make(map[string]bool, len(tags))
	deduped := make([]Value, 0, len(tags))
	for _, t := range tags {
		if s, isStr := t.AsString(); isStr {
			if seen[s] {
				continue
			}
			seen[s] = true
		}
		deduped = append(deduped, t)
	}
	note.Metadata.Set("tags", List(deduped))
}

// sortTags sorts the tags list alphabetically by string value; non-string
// entries sort as if empty.
func sortTags(note *Note) {
	tagsVal, ok := note.Metadata.Get("tags")
	if !ok {
		return
	}
	tags, ok := tagsVal.AsList()
	if !ok {
		return
	}
	sorted := append([]Value{}, tags...)
	sort.SliceStable(sorted, func(i, j int) bool {
		si, _ := sorted[i].AsString()
		sj, _ := sorted[j].AsString()
		return si < sj
	})
	note.Metadata.Set("tags", List(sorted))
}

// fixTitleFormat trims the title and capitalizes its first rune.
func fixTitleFormat(note *Note) {
	titleVal, ok := note.Metadata.Get("title")
	if !ok {
		return
	}
	title, ok := titleVal.AsString()
	if !ok {
		return
	}
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return
	}
	r := []rune(trimmed)
	r[0] = unicode.ToUpper(r[0])
	note.Metadata.Set("title", String(string(r)))
}

// alignH1ToTitle makes the first section's heading "# <title>", inserting
// an empty leading section if the note has none yet.
func alignH1ToTitle(note *Note) {
	titleVal, ok := note.Metadata.Get("title")
	if !ok {
		return
	}
	title, ok := titleVal.AsString()
	if !ok {
		return
	}
	titleHeading := "# " + title

	if len(note.Sections) == 0 {
		note.Sections = append(note.Sections, Section{Heading: titleHeading, Body: ""})
		return
	}
	if note.Sections[0].Heading != titleHeading {
		note.Sections[0].Heading = titleHeading
	}
}
