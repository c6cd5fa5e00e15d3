package zettel

import "testing"

func TestParseFrontMatter_Basic(t *testing.T) {
	content := "---\ntitle: Test Note\ntags:\n  - tag1\n  - tag2\npublish: true\n---\nBody text.\n"

	meta, rest := ParseFrontMatter(content)
	if meta == nil {
		t.Fatal("expected metadata, got nil")
	}

	title, ok := meta.Get("title")
	if !ok {
		t.Fatal("expected title key")
	}
	if s, _ := title.AsString(); s != "Test Note" {
		t.Errorf("expected title 'Test Note', got %q", s)
	}

	tags, ok := meta.Get("tags")
	if !ok {
		t.Fatal("expected tags key")
	}
	list, ok := tags.AsList()
	if !ok || len(list) != 2 {
		t.Fatalf("expected 2-element tags list, got %v", tags)
	}

	expectedRest := "\nBody text.\n"
	if rest != expectedRest {
		t.Errorf("expected rest %q, got %q", expectedRest, rest)
	}
}

func TestParseFrontMatter_NoFrontMatter(t *testing.T) {
	content := "Just some content without front matter."

	meta, rest := ParseFrontMatter(content)
	if meta != nil {
		t.Errorf("expected nil metadata, got %v", meta)
	}
	if rest != content {
		t.Errorf("expected rest unchanged, got %q", rest)
	}
}

func TestParseFrontMatter_SingularTagLine(t *testing.T) {
	content := "---\ntag: solo-tag\n---\nBody\n"

	meta, _ := ParseFrontMatter(content)
	if meta == nil {
		t.Fatal("expected metadata")
	}
	v, ok := meta.Get("tag")
	if !ok {
		t.Fatal("expected tag key to survive (migration handles the rename)")
	}
	list, ok := v.AsList()
	if !ok || len(list) != 1 {
		t.Fatalf("expected tag rewritten to a single-element list, got %v", v)
	}
	if s, _ := list[0].AsString(); s != "solo-tag" {
		t.Errorf("expected 'solo-tag', got %q", s)
	}
}

func TestParseFrontMatter_MalformedYAMLDegradesToNil(t *testing.T) {
	content := "---\ntitle: [unterminated\n---\nBody\n"

	meta, rest := ParseFrontMatter(content)
	if meta != nil {
		t.Errorf("expected nil metadata on parse failure, got %v", meta)
	}
	if rest != content {
		t.Errorf("expected original content returned unchanged, got %q", rest)
	}
}
