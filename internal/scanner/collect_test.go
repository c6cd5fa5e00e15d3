package scanner

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	full := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestCollectFiles_FiltersByExtension(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.md", "x")
	writeFile(t, dir, "b.txt", "x")
	writeFile(t, dir, "sub/c.md", "x")

	files, err := CollectFiles(dir, []string{".md"}, nil, nil, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"a.md", "sub/c.md"}
	if len(files) != len(want) {
		t.Fatalf("got %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("files[%d] = %q, want %q", i, files[i], want[i])
		}
	}
}

func TestCollectFiles_IgnorePatterns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "keep.md", "x")
	writeFile(t, dir, ".trash/dropped.md", "x")

	files, err := CollectFiles(dir, []string{".md"}, []string{".trash/**"}, nil, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 1 || files[0] != "keep.md" {
		t.Errorf("got %v, want [keep.md]", files)
	}
}

func TestCollectFiles_IncludePatterns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes/a.md", "x")
	writeFile(t, dir, "drafts/b.md", "x")

	files, err := CollectFiles(dir, []string{".md"}, nil, []string{"notes/**"}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 1 || files[0] != "notes/a.md" {
		t.Errorf("got %v, want [notes/a.md]", files)
	}
}

func TestCollectFiles_EmptyExtensionsMatchesEverything(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.md", "x")
	writeFile(t, dir, "b.txt", "x")

	files, err := CollectFiles(dir, nil, nil, nil, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 2 {
		t.Errorf("expected both files matched, got %v", files)
	}
}
