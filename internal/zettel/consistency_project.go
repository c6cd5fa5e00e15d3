package zettel

import "strings"

// EnsureProjectConsistency runs the project/loop-only consistency checks,
// applied after EnsureConsistency: bullet normalization, canonical
// section ordering, and completed-flag derivation.
func EnsureProjectConsistency(note *Note) {
	fixListBullets(note)
	normalizeSectionsOrder(note)
	setDefaultCompleted(note)
}

// fixListBullets rewrites `* ` bullets to `- ` in every section body and
// trims each line, in place.
func fixListBullets(note *Note) {
	for i, s := range note.Sections {
		lines := strings.Split(s.Body, "\n")
		for j, line := range lines {
			if strings.HasPrefix(line, "* ") {
				lines[j] = "- " + strings.TrimSpace(line[2:])
			} else {
				lines[j] = strings.TrimSpace(line)
			}
		}
		note.Sections[i].Body = strings.Join(lines, "\n")
	}
}

// normalizeSectionsOrder reorders sections into the canonical project
// shape: the title heading first, then "## Description", "## Log",
// "## Actions buffer" (each if present), then everything else in its
// original relative order.
func normalizeSectionsOrder(note *Note) {
	var title, desc, log, actions *Section
	var others []Section

	for i := range note.Sections {
		s := note.Sections[i]
		switch {
		case strings.HasPrefix(s.Heading, "# ") && title == nil:
			title = &s
		case s.Heading == "## Description":
			desc = &s
		case s.Heading == "## Log":
			log = &s
		case s.Heading == "## Actions buffer":
			actions = &s
		default:
			others = append(others, s)
		}
	}

	reordered := make([]Section, 0, len(note.Sections))
	for _, s := range []*Section{title, desc, log, actions} {
		if s != nil {
			reordered = append(reordered, *s)
		}
	}
	reordered = append(reordered, others...)
	note.Sections = reordered
}

// setDefaultCompleted derives the `completed` flag from `gtd-list ==
// "completed"`, consuming gtd-list when it does, and otherwise leaves an
// existing true completed flag alone or defaults it to false.
func setDefaultCompleted(note *Note) {
	if v, ok := note.Metadata.Get("completed"); ok {
		if b, isBool := v.AsBool(); isBool && b {
			return
		}
	}

	isGTDCompleted := false
	if v, ok := note.Metadata.Get("gtd-list"); ok {
		if s, isStr := v.AsString(); isStr {
			isGTDCompleted = s == "completed"
		}
	}

	if isGTDCompleted {
		note.Metadata.Set("completed", Bool(true))
		note.Metadata.Delete("gtd-list")
	} else if !note.Metadata.Has("completed") {
		note.Metadata.Set("completed", Bool(false))
	}
}
