// Package search ranks library items against a query.
package search

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/zjrosen/folio/internal/library"
)

// Result is a ranked match.
type Result struct {
	Item  library.Item
	Index int
	Score int
	// Matched are rune offsets into the searched text.
	Matched []int
}

type itemSource []library.Item

func (s itemSource) String(i int) string { return s[i].SearchText() }
func (s itemSource) Len() int            { return len(s) }

// Rank fuzzy-matches query against each item's title and authors, best
// first. An empty query returns every item in input order.
func Rank(query string, items []library.Item) []Result {
	query = strings.TrimSpace(query)
	if query == "" {
		out := make([]Result, len(items))
		for i, item := range items {
			out[i] = Result{Item: item, Index: i}
		}
		return out
	}
	matches := fuzzy.FindFrom(strings.ToLower(query), itemSource(items))
	out := make([]Result, len(matches))
	for i, m := range matches {
		out[i] = Result{Item: items[m.Index], Index: m.Index, Score: m.Score, Matched: m.MatchedIndexes}
	}
	return out
}

// Contains returns the indices of items whose title or authors contain
// query, case-insensitively, in list order.
func Contains(query string, items []library.Item) []int {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var out []int
	for i, item := range items {
		if strings.Contains(item.SearchText(), q) {
			out = append(out, i)
		}
	}
	return out
}
