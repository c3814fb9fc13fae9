package engine

import (
	"context"
	"slices"

	"github.com/zjrosen/folio/internal/engine/motion"
	"github.com/zjrosen/folio/internal/flags"
	"github.com/zjrosen/folio/internal/search"
)

// searchMatches returns the list indices matching term, in list order.
// With fuzzy-search enabled the fuzzy ranker decides what matches.
func (e *Engine) searchMatches(term string) []int {
	if !e.flags.Enabled(flags.FlagFuzzySearch) {
		return search.Contains(term, e.items)
	}
	ranked := search.Rank(term, e.items)
	out := make([]int, len(ranked))
	for i, r := range ranked {
		out[i] = r.Index
	}
	slices.Sort(out)
	return out
}

// search runs a / or ? search and remembers it for n and N.
func (e *Engine) search(ctx context.Context, term string, backward bool) {
	if term == "" {
		if e.state.LastSearch == nil {
			e.setStatus("No previous search pattern")
			return
		}
		term = e.state.LastSearch.Term
	}
	e.state.LastSearch = &SearchState{Term: term, Backward: backward}
	e.jumpToMatch(term, backward, 1)
}

// repeatSearch is n (reverse false) and N (reverse true).
func (e *Engine) repeatSearch(reverse bool, n int) {
	last := e.state.LastSearch
	e.state.Reset()
	if last == nil {
		e.setStatus("No previous search pattern")
		return
	}
	backward := last.Backward != reverse
	e.jumpToMatch(last.Term, backward, n)
}

// searchAuthor searches for the current item's first author (* and #).
func (e *Engine) searchAuthor(backward bool) {
	n := e.state.CountOr1()
	e.state.Reset()
	item, ok := e.Current()
	if !ok || item.FirstAuthor() == "" {
		e.setStatus("No author to search")
		return
	}
	e.state.LastSearch = &SearchState{Term: item.FirstAuthor(), Backward: backward}
	e.jumpToMatch(item.FirstAuthor(), backward, n)
}

// jumpToMatch moves n matches away from the cursor, wrapping around the
// list ends.
func (e *Engine) jumpToMatch(term string, backward bool, n int) {
	matches := e.searchMatches(term)
	prefix := "/"
	if backward {
		prefix = "?"
	}
	if len(matches) == 0 {
		e.setStatusf("Pattern not found: %s", term)
		return
	}

	// i is the position in matches the cursor sits at or just before.
	i, found := slices.BinarySearch(matches, e.cursor)
	var k int
	if backward {
		k = i - n
	} else {
		k = i + n
		if !found {
			k--
		}
	}
	k = ((k % len(matches)) + len(matches)) % len(matches)

	e.panel = motion.PanelList
	if matches[k] != e.cursor {
		e.recordJump()
	}
	e.setCursor(matches[k])
	e.setStatusf("%s%s [%d/%d]", prefix, term, k+1, len(matches))
}
