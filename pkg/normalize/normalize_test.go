package normalize

import (
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"
	"testing"
)

var tokenShape = regexp.MustCompile(`^[a-z]{3,}$`)

func TestNormalize(t *testing.T) {
	n := New(EnglishStopwords())

	testCases := []struct {
		input       string
		expected    []string
		description string
	}{
		{"", []string{}, "Empty input"},
		{"12345 !!! ___", []string{}, "No letters at all"},
		{"cat dog cat", []string{"cat", "dog", "cat"}, "Simple words in order"},
		{"The Quick BROWN fox", []string{"quick", "brown", "fox"}, "Lowercased and stopword dropped"},
		{"an ox is up", []string{}, "Short runs discarded"},
		{"abc123def", []string{"abc", "def"}, "Digits split runs"},
		{"snake_case_word", []string{"snake", "case", "word"}, "Underscores split runs"},
		{"ab1cd2efg", []string{"efg"}, "Short pieces dropped, not joined"},
		{"don't won't", []string{}, "Contraction pieces are stopwords or too short"},
		{"café crème", []string{"caf"}, "Non-ASCII letters end a run"},
		{"Machine-learning, e.g. statistics.", []string{"machine", "learning", "statistics"}, "Punctuation splits"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			got := n.Normalize(tc.input)
			if !reflect.DeepEqual(got, tc.expected) {
				t.Errorf("Normalize(%q) = %v, want %v", tc.input, got, tc.expected)
			}
		})
	}
}

func TestNormalizeTokenShape(t *testing.T) {
	stop := EnglishStopwords()
	n := New(stop)
	inputs := []string{
		"Quantum computing is a type of computation whose operations can harness the phenomena of quantum mechanics.",
		"ÀÉÎõü ÿ 42 Über straße naïve résumé",
		"x\x00yz\xffhello\tworld\nagain",
		strings.Repeat("abcdefghij", 10000),
		"UPPER lower MiXeD 3D 4k",
	}
	for _, in := range inputs {
		for _, tok := range n.Normalize(in) {
			if !tokenShape.MatchString(tok) {
				t.Errorf("token %q does not match token shape", tok)
			}
			if stop.Contains(tok) {
				t.Errorf("token %q is a stopword", tok)
			}
		}
	}
}

func TestNormalizeDeterministic(t *testing.T) {
	n := New(EnglishStopwords())
	text := "Cryptography, or cryptology, is the practice and study of techniques for secure communication."
	first := n.Normalize(text)
	second := n.Normalize(text)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Normalize not deterministic: %v vs %v", first, second)
	}
}

func TestStopwordSet(t *testing.T) {
	set := NewStopwordSet(" The ", "AND", "")
	if set.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", set.Len())
	}
	if !set.Contains("the") || !set.Contains("and") {
		t.Errorf("expected lowercased entries to be present")
	}
	if set.Contains("The") {
		t.Errorf("Contains should match exactly")
	}

	extended := set.With("cat")
	if set.Contains("cat") {
		t.Errorf("With must not modify the original set")
	}
	if !extended.Contains("cat") || !extended.Contains("the") {
		t.Errorf("extended set missing entries")
	}

	var zero StopwordSet
	if zero.Contains("the") || zero.Len() != 0 {
		t.Errorf("zero value should be empty")
	}
}

func TestLoadStopwords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extra.txt")
	if err := os.WriteFile(path, []byte("wikipedia\nArticle  retrieved\n"), 0644); err != nil {
		t.Fatal(err)
	}

	set, err := LoadStopwords(path, EnglishStopwords())
	if err != nil {
		t.Fatalf("LoadStopwords: %v", err)
	}
	for _, w := range []string{"wikipedia", "article", "retrieved", "the"} {
		if !set.Contains(w) {
			t.Errorf("expected %q in loaded set", w)
		}
	}

	n := New(set)
	got := n.Normalize("The Wikipedia article about cats")
	if !reflect.DeepEqual(got, []string{"cats"}) {
		t.Errorf("Normalize = %v, want [cats]", got)
	}

	if _, err := LoadStopwords(filepath.Join(t.TempDir(), "missing.txt"), StopwordSet{}); err == nil {
		t.Errorf("expected error for missing file")
	}
}
