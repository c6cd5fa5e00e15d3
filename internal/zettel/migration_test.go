package zettel

import "testing"

func TestMigrateBase_ZknIDRenamedToID(t *testing.T) {
	note := NewNote()
	note.Metadata.Set("zkn-id", Int(20240115103000))

	MigrateBase(note)

	if note.Metadata.Has("zkn-id") {
		t.Error("expected zkn-id removed")
	}
	id, ok := note.Metadata.Get("id")
	if !ok {
		t.Fatal("expected id set")
	}
	if i, _ := id.AsInt(); i != 20240115103000 {
		t.Errorf("expected id 20240115103000, got %d", i)
	}
}

func TestMigrateBase_ZknIDDoesNotOverwriteExistingID(t *testing.T) {
	note := NewNote()
	note.Metadata.Set("id", Int(1))
	note.Metadata.Set("zkn-id", Int(2))

	MigrateBase(note)

	id, _ := note.Metadata.Get("id")
	if i, _ := id.AsInt(); i != 1 {
		t.Errorf("expected existing id preserved, got %d", i)
	}
	if note.Metadata.Has("zkn-id") {
		t.Error("expected zkn-id still removed even when id already present")
	}
}

func TestMigrateBase_SingularTagMergedIntoTags(t *testing.T) {
	note := NewNote()
	note.Metadata.Set("tags", List([]Value{String("existing")}))
	note.Metadata.Set("tag", String("solo"))

	MigrateBase(note)

	if note.Metadata.Has("tag") {
		t.Error("expected tag key removed")
	}
	tagsVal, _ := note.Metadata.Get("tags")
	tags, _ := tagsVal.AsList()
	if len(tags) != 2 {
		t.Fatalf("expected 2 merged tags, got %v", tags)
	}
	s0, _ := tags[0].AsString()
	s1, _ := tags[1].AsString()
	if s0 != "existing" || s1 != "solo" {
		t.Errorf("expected [existing solo], got [%s %s]", s0, s1)
	}
}

func TestMigrateBase_TypeRenames(t *testing.T) {
	tests := []struct{ in, out string }{
		{"loop", "project"},
		{"wiki-article", "note"},
		{"zettel", "note"},
		{"project", "project"},
	}
	for _, tt := range tests {
		note := NewNote()
		note.Metadata.Set("type", String(tt.in))
		MigrateBase(note)
		got := note.TypeString()
		if got != tt.out {
			t.Errorf("type %q: expected %q, got %q", tt.in, tt.out, got)
		}
	}
}
