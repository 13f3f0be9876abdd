// Package normalize turns raw article text into countable word tokens.
//
// A token is a maximal run of ASCII letters, lowercased, at least MinTokenLen
// long and not present in the configured StopwordSet. Digits, punctuation,
// underscores and any non-ASCII byte end a run; shorter runs are discarded
// whole rather than truncated.
package normalize

import "strings"

// MinTokenLen is the shortest run of letters kept as a token.
const MinTokenLen = 3

// Normalizer extracts tokens using a fixed stopword set.
type Normalizer struct {
	stopwords StopwordSet
}

// New creates a Normalizer that drops the given stopwords.
func New(stopwords StopwordSet) *Normalizer {
	return &Normalizer{stopwords: stopwords}
}

// Normalize returns the tokens of text in the order they appear.
// It never fails; an empty slice is a valid result.
func (n *Normalizer) Normalize(text string) []string {
	lower := strings.ToLower(text)
	tokens := make([]string, 0, len(lower)/8)

	start := -1
	for i := 0; i <= len(lower); i++ {
		if i < len(lower) && isLower(lower[i]) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start < 0 {
			continue
		}
		if i-start >= MinTokenLen {
			word := lower[start:i]
			if !n.stopwords.Contains(word) {
				tokens = append(tokens, word)
			}
		}
		start = -1
	}
	return tokens
}

func isLower(b byte) bool {
	return b >= 'a' && b <= 'z'
}
