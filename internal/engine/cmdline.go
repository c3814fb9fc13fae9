package engine

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/folio/internal/library"
)

// openLine focuses the command line for kind, pre-filled with initial.
func (e *Engine) openLine(kind lineKind, initial string) {
	e.lineKind = kind
	if kind == lineSearchForward || kind == lineSearchBackward {
		e.mode = ModeSearch
	} else {
		e.mode = ModeCommand
	}
	e.line.SetValue(initial)
	e.line.CursorEnd()
	e.line.Focus()
	e.state.Reset()
}

// closeLine returns to Normal mode, dropping any visual selection the line
// was opened from.
func (e *Engine) closeLine() {
	e.line.Blur()
	e.line.SetValue("")
	e.mode = ModeNormal
	e.tagTargets = nil
	if e.visual != nil {
		e.exitVisual(true)
	}
	e.state.Reset()
}

func (e *Engine) handleLine(ctx context.Context, msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		e.closeLine()
		return nil
	case tea.KeyBackspace:
		if e.line.Value() == "" {
			e.closeLine()
			return nil
		}
	case tea.KeyEnter:
		text := e.line.Value()
		kind := e.lineKind
		targets := e.tagTargets
		e.closeLine()
		return e.submitLine(ctx, kind, text, targets)
	}
	var cmd tea.Cmd
	e.line, cmd = e.line.Update(msg)
	return cmd
}

func (e *Engine) submitLine(ctx context.Context, kind lineKind, text string, targets []library.Item) tea.Cmd {
	switch kind {
	case lineSearchForward, lineSearchBackward:
		e.search(ctx, strings.TrimSpace(text), kind == lineSearchBackward)
	case lineTagAdd, lineTagRemove:
		e.applyTag(ctx, kind == lineTagAdd, text, targets)
	default:
		return e.Execute(ctx, text)
	}
	return nil
}
