package zettel

import "testing"

func TestFixListBullets_StarToHyphen(t *testing.T) {
	note := NewNote()
	note.Sections = []Section{
		{Heading: "## Actions buffer", Body: "* first\n*second\n- already dash\n  indented\n"},
	}

	EnsureProjectConsistency(note)

	lines := note.Sections[0].Body
	want := "- first\n*second\n- already dash\nindented\n"
	if lines != want {
		t.Errorf("got %q, want %q", lines, want)
	}
}

func TestNormalizeSectionsOrder(t *testing.T) {
	note := NewNote()
	note.Sections = []Section{
		{Heading: "## Other Stuff", Body: "x\n"},
		{Heading: "## Log", Body: "log\n"},
		{Heading: "# Title", Body: "intro\n"},
		{Heading: "## Actions buffer", Body: "actions\n"},
		{Heading: "## Description", Body: "desc\n"},
	}

	EnsureProjectConsistency(note)

	headings := make([]string, len(note.Sections))
	for i, s := range note.Sections {
		headings[i] = s.Heading
	}
	want := []string{"# Title", "## Description", "## Log", "## Actions buffer", "## Other Stuff"}
	if len(headings) != len(want) {
		t.Fatalf("got %v, want %v", headings, want)
	}
	for i := range want {
		if headings[i] != want[i] {
			t.Errorf("headings[%d] = %q, want %q", i, headings[i], want[i])
		}
	}
}

func TestSetDefaultCompleted_FromGTDList(t *testing.T) {
	note := NewNote()
	note.Metadata.Set("gtd-list", String("completed"))

	EnsureProjectConsistency(note)

	completed, ok := note.Metadata.Get("completed")
	if !ok {
		t.Fatal("expected completed key set")
	}
	if b, _ := completed.AsBool(); !b {
		t.Error("expected completed true")
	}
	if note.Metadata.Has("gtd-list") {
		t.Error("expected gtd-list consumed")
	}
}

func TestSetDefaultCompleted_DefaultsFalse(t *testing.T) {
	note := NewNote()

	EnsureProjectConsistency(note)

	completed, ok := note.Metadata.Get("completed")
	if !ok {
		t.Fatal("expected completed default set")
	}
	if b, _ := completed.AsBool(); b {
		t.Error("expected completed default false")
	}
}

func TestSetDefaultCompleted_ExistingTruePreserved(t *testing.T) {
	note := NewNote()
	note.Metadata.Set("completed", Bool(true))
	note.Metadata.Set("gtd-list", String("now"))

	EnsureProjectConsistency(note)

	completed, _ := note.Metadata.Get("completed")
	if b, _ := completed.AsBool(); !b {
		t.Error("expected true preserved")
	}
	if !note.Metadata.Has("gtd-list") {
		t.Error("expected gtd-list untouched since completed was already true")
	}
}
