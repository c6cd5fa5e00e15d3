// Package scanner walks a corpus directory, parses each matching file
// through the zettel pipeline, and serves queries over the result — either
// cold (reparsing everything) or warm (reusing a persisted metadata cache
// and only reparsing what changed).
package scanner

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// CollectFiles walks root and returns every regular file whose extension
// is in extensions (empty extensions matches everything) and whose
// relative path is not excluded by ignorePatterns / includePatterns,
// sorted for deterministic ordering. followSymlinks controls whether
// symlinks are followed — LoadAll, Search and RefreshCache follow them;
// LoadCached's cold run does not, and walks the local tree only.
func CollectFiles(root string, extensions, ignorePatterns, includePatterns []string, followSymlinks bool) ([]string, error) {
	var files []string

	var walk func(dir string) error
	walk = func(dir string) error {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			full := filepath.Join(dir, entry.Name())
			rel, err := filepath.Rel(root, full)
			if err != nil {
				continue
			}
			rel = filepath.ToSlash(rel)

			info := entry
			isDir := info.IsDir()
			if info.Type()&os.ModeSymlink != 0 {
				if !followSymlinks {
					continue
				}
				stat, err := os.Stat(full)
				if err != nil {
					continue
				}
				isDir = stat.IsDir()
			}

			if matchesAnyPattern(ignorePatterns, rel) {
				continue
			}

			if isDir {
				if err := walk(full); err != nil {
					return err
				}
				continue
			}

			if !matchesExtension(rel, extensions) {
				continue
			}
			if len(includePatterns) > 0 && !matchesAnyPattern(includePatterns, rel) {
				continue
			}
			files = append(files, rel)
		}
		return nil
	}

	if err := walk(root); err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

func matchesExtension(relPath string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	ext := filepath.Ext(relPath)
	for _, e := range extensions {
		if ext == e {
			return true
		}
	}
	return false
}

func matchesAnyPattern(patterns []string, relPath string) bool {
	for _, pattern := range patterns {
		if matched, err := doublestar.Match(pattern, relPath); err == nil && matched {
			return true
		}
		parts := strings.Split(relPath, "/")
		for i := 1; i <= len(parts); i++ {
			partial := strings.Join(parts[:i], "/")
			if matched, _ := doublestar.Match(pattern, partial); matched {
				return true
			}
		}
	}
	return false
}
