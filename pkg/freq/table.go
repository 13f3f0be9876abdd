// Package freq holds the frequency table built from a corpus.
package freq

import (
	"sort"
	"strings"
)

// Entry is a single word and its occurrence count.
type Entry struct {
	Word  string
	Count int
}

// Table maps tokens to occurrence counts. A word present in the table
// always has a count of at least 1.
type Table struct {
	counts map[string]int
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{counts: make(map[string]int)}
}

// Accumulate adds one occurrence per token and returns the same table.
func (t *Table) Accumulate(tokens []string) *Table {
	for _, tok := range tokens {
		if c, ok := t.counts[tok]; ok {
			t.counts[tok] = c + 1
			continue
		}
		// tokens usually slice a whole article; don't keep it alive through the key
		t.counts[strings.Clone(tok)] = 1
	}
	return t
}

// Count returns the count for word, 0 if absent.
func (t *Table) Count(word string) int {
	return t.counts[word]
}

// Len returns the number of distinct words.
func (t *Table) Len() int {
	return len(t.counts)
}

// Total returns the sum of all counts.
func (t *Table) Total() int {
	total := 0
	for _, c := range t.counts {
		total += c
	}
	return total
}

// Entries returns all entries sorted by count (highest first), then word.
func (t *Table) Entries() []Entry {
	entries := make([]Entry, 0, len(t.counts))
	for w, c := range t.counts {
		entries = append(entries, Entry{Word: w, Count: c})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Word < entries[j].Word
	})
	return entries
}

// Top returns at most n entries in Entries order. n <= 0 returns all.
func (t *Table) Top(n int) []Entry {
	entries := t.Entries()
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}
