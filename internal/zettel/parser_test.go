package zettel

import (
	"testing"
	"time"
)

func TestParseContent_FullNote(t *testing.T) {
	content := "---\ntitle: My Note\ntags: [a, b]\n---\n# My Note\nBody paragraph.\n---\n- parent: \"[[other]]\"\n"

	note := ParseContent(content, "", time.Time{})

	title, ok := note.Metadata.Get("title")
	if !ok {
		t.Fatal("expected title in metadata")
	}
	if s, _ := title.AsString(); s != "My Note" {
		t.Errorf("expected title 'My Note', got %q", s)
	}

	parent, ok := note.Reference.Get("parent")
	if !ok {
		t.Fatal("expected parent in reference")
	}
	if s, _ := parent.AsString(); s != "[[other]]" {
		t.Errorf("expected parent '[[other]]', got %q", s)
	}

	last := note.Sections[len(note.Sections)-1]
	if last.Heading != "# My Note" || last.Body != "Body paragraph." {
		t.Errorf("unexpected final section: %+v", last)
	}
}

func TestParseContent_KeysNormalized(t *testing.T) {
	content := "---\nZknId: 123\nDue Date: 2024-01-01\n---\nBody\n"

	note := ParseContent(content, "", time.Time{})

	if !note.Metadata.Has("zkn-id") {
		t.Error("expected ZknId normalized to zkn-id")
	}
	if !note.Metadata.Has("due-date") {
		t.Error("expected 'Due Date' normalized to due-date")
	}
}

func TestParseContent_FilenameEnrichment(t *testing.T) {
	content := "Body with no front matter at all.\n"

	note := ParseContent(content, "/vault/20240115103000 Filename Title.md", time.Time{})

	title, ok := note.Metadata.Get("title")
	if !ok {
		t.Fatal("expected title enriched from filename")
	}
	if s, _ := title.AsString(); s != "Filename Title" {
		t.Errorf("expected 'Filename Title', got %q", s)
	}
}
