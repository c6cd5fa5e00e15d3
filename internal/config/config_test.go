package config

import "testing"

func TestSanitizeIdentifier(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		// Basic cases
		{"MyCorpus", "mycorpus"},
		{"my_corpus", "my_corpus"},
		{"my-corpus", "my_corpus"},

		// Spaces
		{"My Zettelkasten Corpus", "my_zettelkasten_corpus"},
		{"Notes  and   Things", "notes_and_things"},

		// Special characters
		{"My Corpus (2024)", "my_corpus_2024"},
		{"Notes & Ideas", "notes_ideas"},
		{"Corpus@Home!", "corpushome"},

		// Unicode
		{"My Café Notes", "my_caf_notes"},
		{"日本語Corpus", "corpus"},

		// Starts with number
		{"2024 Notes", "zettelkasten_2024_notes"},
		{"123", "zettelkasten_123"},

		// Edge cases
		{"", "zettelkasten"},
		{"___", "zettelkasten"},
		{"---", "zettelkasten"},
		{"   ", "zettelkasten"},

		// Leading/trailing cleanup
		{"_corpus_", "corpus"},
		{"-corpus-", "corpus"},
		{" corpus ", "corpus"},

		// Multiple underscores/hyphens
		{"my--corpus", "my_corpus"},
		{"my__corpus", "my_corpus"},
		{"my - corpus", "my_corpus"},

		// Long names (63 char limit)
		{
			"ThisIsAReallyLongCorpusNameThatExceedsThePostgreSQLIdentifierLimitOfSixtyThreeCharacters",
			"thisisareallylongcorpusnamethatexceedsthepostgresqlidentifierli",
		},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := SanitizeIdentifier(tt.input)
			if result != tt.expected {
				t.Errorf("SanitizeIdentifier(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestSanitizeIdentifier_MaxLength(t *testing.T) {
	longName := "abcdefghijklmnopqrstuvwxyzabcdefghijklmnopqrstuvwxyzabcdefghijklmnopqrstuvwxyz"

	result := SanitizeIdentifier(longName)
	if len(result) > 63 {
		t.Errorf("result length %d exceeds 63: %q", len(result), result)
	}
}

func TestSanitizeIdentifier_ValidIdentifier(t *testing.T) {
	testCases := []string{
		"My Corpus",
		"123",
		"",
		"___test___",
		"valid_name",
		"UPPERCASE",
	}

	for _, tc := range testCases {
		result := SanitizeIdentifier(tc)

		if result == "" {
			t.Errorf("SanitizeIdentifier(%q) returned empty string", tc)
			continue
		}

		if result[0] < 'a' || result[0] > 'z' {
			if result[0] != '_' {
				t.Errorf("SanitizeIdentifier(%q) = %q, doesn't start with letter", tc, result)
			}
		}

		for _, c := range result {
			if !((c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '_') {
				t.Errorf("SanitizeIdentifier(%q) = %q, contains invalid character %q", tc, result, c)
			}
		}
	}
}
