package zettel

import (
	"fmt"
	"regexp"
	"strings"
)

// frontMatterRe locates the first `---\n...\n---` block. Deliberately not
// anchored to the start of the file — in practice front matter always
// begins the file, so this only matters for malformed input.
var frontMatterRe = regexp.MustCompile(`(?s)---\n(.*?)\n---`)

// tagLineRe matches inline (non-YAML-list) tag/tags lines so they can be
// rewritten into a YAML-parseable list form before the block is decoded.
// [ \t]* (not \s*) is essential: \s* would cross into the next line and
// swallow a real YAML sequence body.
var tagLineRe = regexp.MustCompile(`(?m)^(tag|tags):[ \t]*(\S.*)$`)

// ParseFrontMatter extracts and normalizes the leading YAML front-matter
// block. Returns (nil, content) if no block is found or it fails to parse
// as YAML — front matter is always best-effort, never fatal (§7).
func ParseFrontMatter(content string) (*OrderedMap, string) {
	loc := frontMatterRe.FindStringSubmatchIndex(content)
	if loc == nil {
		return nil, content
	}

	matchStart, matchEnd := loc[0], loc[1]
	rawStart, rawEnd := loc[2], loc[3]
	raw := content[rawStart:rawEnd]

	preprocessed := normalizeTagLines(raw)

	meta, err := decodeYAMLMapping(preprocessed)
	if err != nil {
		return nil, content
	}

	without := content[:matchStart] + content[matchEnd:]
	return meta, without
}

// normalizeTagLines rewrites `tag:`/`tags:` lines written in Obsidian's
// inline form (`tags: [foo, #bar], baz` or `tag: foo bar`) into a proper
// YAML flow sequence.
func normalizeTagLines(text string) string {
	return tagLineRe.ReplaceAllStringFunc(text, func(line string) string {
		m := tagLineRe.FindStringSubmatch(line)
		key, tagsPart := m[1], m[2]

		cleaned := strings.ReplaceAll(tagsPart, "[", "")
		cleaned = strings.ReplaceAll(cleaned, "]", "")
		cleaned = strings.ReplaceAll(cleaned, ",", " ")

		fields := strings.Fields(cleaned)
		for i, f := range fields {
			fields[i] = strings.TrimPrefix(f, "#")
		}

		return fmt.Sprintf("%s: [%s]", key, strings.Join(fields, ", "))
	})
}
