package engine

import (
	"maps"
	"slices"
)

// Range is an inclusive pair of list indices.
type Range struct {
	Start int
	End   int
}

// Contains reports whether i falls inside the range.
func (r Range) Contains(i int) bool {
	return i >= r.Start && i <= r.End
}

// Indices expands the range.
func (r Range) Indices() []int {
	out := make([]int, 0, r.End-r.Start+1)
	for i := r.Start; i <= r.End; i++ {
		out = append(out, i)
	}
	return out
}

func rangeOf(a, b int) Range {
	return Range{Start: min(a, b), End: max(a, b)}
}

// Selection is the active visual selection. It is contiguous between
// Anchor and Cursor until the toggle key switches it to a scattered set.
type Selection struct {
	Anchor    int
	Cursor    int
	scattered map[int]struct{}
}

func newSelection(pos int) *Selection {
	return &Selection{Anchor: pos, Cursor: pos}
}

// Scattered reports whether the selection is a toggled set.
func (s *Selection) Scattered() bool {
	return s.scattered != nil
}

// Bounds is the contiguous anchor/cursor range.
func (s *Selection) Bounds() Range {
	return rangeOf(s.Anchor, s.Cursor)
}

// Indices returns the selected positions in ascending order.
func (s *Selection) Indices() []int {
	if s.scattered != nil {
		return slices.Sorted(maps.Keys(s.scattered))
	}
	return s.Bounds().Indices()
}

// Contains reports whether i is selected.
func (s *Selection) Contains(i int) bool {
	if s.scattered != nil {
		_, ok := s.scattered[i]
		return ok
	}
	return s.Bounds().Contains(i)
}

// Move sets the cursor after a motion. Any motion returns the selection to
// the contiguous form.
func (s *Selection) Move(pos int) {
	s.scattered = nil
	s.Cursor = pos
}

// Toggle flips pos in the scattered set, seeding the set from the current
// contiguous range the first time, and advances the cursor by one within
// [0, last].
func (s *Selection) Toggle(pos, last int) {
	if s.scattered == nil {
		s.scattered = make(map[int]struct{})
		if s.Anchor != s.Cursor {
			for _, i := range s.Bounds().Indices() {
				s.scattered[i] = struct{}{}
			}
		}
	}
	if _, ok := s.scattered[pos]; ok {
		delete(s.scattered, pos)
	} else {
		s.scattered[pos] = struct{}{}
	}
	s.Cursor = min(pos+1, last)
}

// SwapEnds exchanges anchor and cursor.
func (s *Selection) SwapEnds() {
	s.Anchor, s.Cursor = s.Cursor, s.Anchor
}

// Clamp keeps both ends and the scattered set inside a list of n rows.
func (s *Selection) Clamp(n int) {
	last := max(n-1, 0)
	s.Anchor = min(s.Anchor, last)
	s.Cursor = min(s.Cursor, last)
	for i := range s.scattered {
		if i > last {
			delete(s.scattered, i)
		}
	}
}
