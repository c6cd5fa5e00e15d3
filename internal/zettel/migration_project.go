package zettel

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// logEntryRe matches a loop-log line: "dd.mm.yyyy HH:MM - before [=> after]".
var logEntryRe = regexp.MustCompile(`^(\d{2}\.\d{2}\.\d{4} \d{2}:\d{2}) - (.*?)(?:\s*=>\s*(.*))?$`)

// datePatternRe finds an embedded ISO date (yyyy-mm-dd) inside a
// next-action metadata value such as "before 2025-06-01".
var datePatternRe = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)

// wikiLinkRe extracts the target of an Obsidian `[[...]]` wiki-link.
var wikiLinkRe = regexp.MustCompile(`\[\[(.*?)\]\]`)

// priorityGlyphs maps a next-action importance word to its GTD priority
// glyph.
var priorityGlyphs = []struct{ key, glyph string }{
	{"could", "⏬"},   // ⏬
	{"would", "\U0001F53D"}, // 🔽
	{"should", "\U0001F53C"}, // 🔼
	{"must", "⏫"},    // ⏫
}

// beforeWords maps a next-action verb to the milestone relation word used
// when rendering its date glyph.
var beforeWords = []struct{ key, mapped string }{
	{"start", "start"},
	{"end", "before"},
	{"complete", "before"},
}

type nextAction struct {
	gtdList  string
	priority string
	dates    string
}

type logEntry struct {
	date   time.Time
	before string
	after  string
}

type dateParseResult struct {
	date   *time.Time
	before string
}

// MigrateLoopLog rewrites a project/loop note's first section: freeform
// "dd.mm.yyyy HH:MM - note [=> outcome]" log lines are pulled out into a
// trailing "## Log" section as GTD-flavored Markdown task checkboxes,
// leaving any non-log prose behind in the original section.
func MigrateLoopLog(note *Note) {
	if len(note.Sections) == 0 {
		return
	}

	header := note.Sections[0].Heading
	content := note.Sections[0].Body

	entries, remaining := extractLogEntries(content)
	action := getNextActionProperties(note)
	formatted := formatLogEntries(entries, action)

	note.Sections[0] = Section{Heading: header, Body: strings.Join(remaining, "\n")}
	if formatted != "" {
		note.Sections = append(note.Sections, Section{Heading: "## Log", Body: formatted})
	}
}

// MigrateParentReference rewrites a project note's `parent` reference
// field into wiki-link form, pointing it at the zettelkasten path when
// the link target is this note's own id.
func MigrateParentReference(note *Note) {
	parentVal, ok := note.Reference.Get("parent")
	if !ok {
		return
	}
	parent, ok := parentVal.AsString()
	if !ok {
		return
	}

	m := wikiLinkRe.FindStringSubmatch(parent)
	if m == nil {
		return
	}
	link := m[1]

	idStr := ""
	if v, ok := note.Metadata.Get("id"); ok {
		switch v.Kind() {
		case KindInt:
			i, _ := v.AsInt()
			idStr = strconv.FormatInt(i, 10)
		case KindString:
			idStr, _ = v.AsString()
		}
	}

	title := ""
	if v, ok := note.Metadata.Get("title"); ok {
		title, _ = v.AsString()
	}

	var newParent string
	if link == idStr {
		newParent = fmt.Sprintf("[[zettelkasten/%s|%s]]", idStr, title)
	} else {
		newParent = fmt.Sprintf("[[%s]]", link)
	}
	note.Reference.Set("parent", String(newParent))
}

func extractLogEntries(content string) ([]logEntry, []string) {
	var entries []logEntry
	var unmatched []string

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		m := logEntryRe.FindStringSubmatch(trimmed)
		if m == nil {
			if trimmed != "" {
				unmatched = append(unmatched, trimmed)
			}
			continue
		}

		dateStr, before, after := m[1], strings.TrimSpace(m[2]), strings.TrimSpace(m[3])
		t, err := time.ParseInLocation("02.01.2006 15:04", dateStr, time.Local)
		if err != nil {
			unmatched = append(unmatched, trimmed)
			continue
		}
		entries = append(entries, logEntry{date: t, before: before, after: after})
	}

	return entries, unmatched
}

// getNextActionProperties finds the first metadata key containing a dash
// (an "importance-action" key such as "must-end" or "should-start"),
// derives GTD list/priority/date hints from it, and consumes the key.
func getNextActionProperties(note *Note) nextAction {
	var key, targetDate string
	found := false
	for _, k := range note.Metadata.Keys() {
		if strings.Contains(k, "-") {
			v, _ := note.Metadata.Get(k)
			switch v.Kind() {
			case KindString:
				targetDate, _ = v.AsString()
			case KindInt:
				i, _ := v.AsInt()
				targetDate = strconv.FormatInt(i, 10)
			case KindDateTime:
				t, _ := v.AsTime()
				targetDate = t.Format("2006-01-02")
			}
			key = k
			found = true
			break
		}
	}
	if !found {
		return nextAction{gtdList: "#gtd/inbox", priority: "\U0001F53C"}
	}

	parts := strings.SplitN(key, "-", 2)
	if len(parts) != 2 {
		return nextAction{gtdList: "#gtd/inbox", priority: "\U0001F53C"}
	}
	importance, action := parts[0], parts[1]

	priority := ""
	matched := false
	for _, p := range priorityGlyphs {
		if p.key == importance {
			priority = p.glyph
			matched = true
			break
		}
	}
	if !matched {
		return nextAction{}
	}

	gtdList := "#gtd/act/" + determineGTDList(targetDate)
	if action == "wait" {
		gtdList = "#gtd/wait"
	}

	milestone := parseDateString(targetDate)
	for _, b := range beforeWords {
		if b.key == action {
			milestone.before = b.mapped
			break
		}
	}

	dates := createDatesSection(milestone)

	note.Metadata.Delete(key)

	return nextAction{gtdList: gtdList, priority: priority, dates: dates}
}

func determineGTDList(targetDate string) string {
	result := parseDateString(targetDate)
	switch result.before {
	case "now", "next", "someday", "later":
		return result.before
	default:
		return "now"
	}
}

func parseDateString(input string) dateParseResult {
	input = strings.TrimSpace(input)
	loc := datePatternRe.FindStringSubmatchIndex(input)
	if loc != nil {
		dateStr := input[loc[2]:loc[3]]
		if t, err := time.Parse("2006-01-02", dateStr); err == nil {
			before := strings.TrimSpace(input[:loc[2]])
			return dateParseResult{date: &t, before: before}
		}
	}
	return dateParseResult{date: nil, before: input}
}

func createDatesSection(milestone dateParseResult) string {
	if milestone.date == nil {
		return ""
	}
	formatted := milestone.date.Format("2006-01-02")
	switch milestone.before {
	case "", "before":
		return "\U0001F4C5 " + formatted // 📅
	case "start", "after":
		return "\U0001F6EB " + formatted // 🛫
	case "on":
		return "⏳ " + formatted // ⏳
	default:
		return ""
	}
}

func formatLogEntries(entries []logEntry, action nextAction) string {
	var out strings.Builder
	taskStatus := " "
	gtdList := action.gtdList
	priority := action.priority
	dates := action.dates

	for _, e := range entries {
		dateStr := e.date.Format("2006-01-02 15:04")

		if e.after == "" {
			fmt.Fprintf(&out, "- [i] %s - %s\n", dateStr, e.before)
			continue
		}

		var taskProps string
		switch {
		case gtdList != "" && dates != "":
			taskProps = fmt.Sprintf(" | %s %s %s", gtdList, priority, dates)
		case gtdList != "":
			taskProps = fmt.Sprintf(" | %s %s", gtdList, priority)
		case dates != "":
			taskProps = fmt.Sprintf(" | %s %s", priority, dates)
		default:
			taskProps = fmt.Sprintf(" | %s", priority)
		}

		fmt.Fprintf(&out, "- [%s] %s - %s => %s%s\n", taskStatus, dateStr, e.before, e.after, taskProps)
		taskStatus = "x"
		gtdList = ""
	}

	return out.String()
}
