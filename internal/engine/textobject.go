package engine

import (
	"context"
	"slices"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/folio/internal/library"
)

// textObject returns the displayed rows an operator covers for i<obj> or
// a<obj> around the item at cur. Only the tag object tells inner from
// around: inner takes items carrying every tag of the current item, around
// takes items sharing any of them. Returns nil when the object names
// nothing.
func textObject(items []library.Item, cur int, obj rune, around bool) []int {
	if cur < 0 || cur >= len(items) {
		return nil
	}
	here := items[cur]

	var match func(library.Item) bool
	switch obj {
	case 'b':
		return []int{cur}
	case 'f':
		match = func(library.Item) bool { return true }
	case 'l':
		match = func(it library.Item) bool { return it.Library == here.Library }
	case 'y':
		if here.Year == 0 {
			return nil
		}
		match = func(it library.Item) bool { return it.Year == here.Year }
	case 'a':
		author := here.FirstAuthor()
		if author == "" {
			return nil
		}
		match = func(it library.Item) bool { return slices.Contains(it.Authors, author) }
	case 't':
		if len(here.Tags) == 0 {
			return nil
		}
		if around {
			match = func(it library.Item) bool { return slices.ContainsFunc(here.Tags, it.HasTag) }
		} else {
			match = func(it library.Item) bool {
				for _, tag := range here.Tags {
					if !it.HasTag(tag) {
						return false
					}
				}
				return true
			}
		}
	default:
		return nil
	}

	var rows []int
	for i, it := range items {
		if match(it) {
			rows = append(rows, i)
		}
	}
	return rows
}

// applyTextObject completes a pending operator with the object named by
// obj after an i or a leader.
func (e *Engine) applyTextObject(ctx context.Context, obj rune, around bool) tea.Cmd {
	op, reg := e.state.Operator, e.state.Register
	e.state.Reset()
	rows := textObject(e.items, e.cursor, obj, around)
	if len(rows) == 0 {
		e.setStatusf("No text object '%c' here", obj)
		return nil
	}
	return e.applyOperator(ctx, op, reg, rows)
}
