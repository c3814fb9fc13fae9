package engine

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/folio/internal/engine/motion"
)

func visualModeForKey(key string) Mode {
	switch key {
	case "V":
		return ModeVisualLine
	case "ctrl+v":
		return ModeVisualBlock
	default:
		return ModeVisual
	}
}

func (e *Engine) enterVisual(mode Mode) {
	e.state.Reset()
	if len(e.items) == 0 {
		return
	}
	e.panel = motion.PanelList
	e.mode = mode
	e.visual = newSelection(e.cursor)
}

// exitVisual leaves Visual mode. With save set, a contiguous selection is
// kept as the last visual range for gv, '< and '>.
func (e *Engine) exitVisual(save bool) {
	if e.visual != nil && save && !e.visual.Scattered() {
		r := e.visual.Bounds()
		e.lastVisual = &r
	}
	e.visual = nil
	if e.mode.IsVisual() {
		e.mode = ModeNormal
	}
}

// reselectVisual restores the last contiguous visual range (gv).
func (e *Engine) reselectVisual() {
	if e.lastVisual == nil || len(e.items) == 0 {
		e.setStatus("No previous visual selection")
		return
	}
	last := len(e.items) - 1
	r := *e.lastVisual
	e.panel = motion.PanelList
	e.mode = ModeVisual
	e.visual = &Selection{Anchor: min(r.Start, last), Cursor: min(r.End, last)}
	e.cursor = e.visual.Cursor
	e.scrollToCursor()
}

func (e *Engine) handleVisual(ctx context.Context, msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	if d, ok := e.state.digit(key); ok {
		e.state.PushDigit(d)
		return nil
	}
	if m, ok := simpleMotion(key); ok {
		return e.runMotion(ctx, m, 0)
	}
	if motionLeader(key) {
		e.state.Pending = key
		return nil
	}

	switch key {
	case `"`, "@":
		e.state.Pending = key
		return nil
	case e.mode.visualEntryKey(), "esc":
		e.exitVisual(true)
	case "v", "V", "ctrl+v":
		e.mode = visualModeForKey(key)
	case "o":
		e.visual.SwapEnds()
		e.cursor = e.visual.Cursor
		e.scrollToCursor()
	case " ":
		e.visual.Toggle(e.cursor, len(e.items)-1)
		e.cursor = e.visual.Cursor
		e.scrollToCursor()
	case "ctrl+a":
		e.visual.Anchor = 0
		e.setCursor(len(e.items) - 1)
	case ";", ",":
		return e.repeatFind(ctx, key == ",")
	case "d", "x":
		return e.visualOperator(ctx, OpDelete)
	case "y":
		return e.visualOperator(ctx, OpYank)
	case "c":
		return e.visualOperator(ctx, OpChange)
	case ">":
		return e.visualOperator(ctx, OpAddTag)
	case "<":
		return e.visualOperator(ctx, OpRemoveTag)
	case "h", "l", "left", "right":
		e.exitVisual(true)
	case ":":
		e.exitVisual(true)
		e.state.Reset()
		e.openLine(lineCommand, "")
		return nil
	case "q":
		if e.macros.IsRecording() {
			e.stopRecording()
		}
	}
	e.state.Reset()
	return nil
}

// visualOperator applies op to the whole selection and leaves Visual mode.
func (e *Engine) visualOperator(ctx context.Context, op Operator) tea.Cmd {
	indices := e.visual.Indices()
	reg := e.state.Register
	e.state.Reset()
	e.exitVisual(true)
	if len(indices) > 0 {
		e.cursor = indices[0]
	}
	return e.applyOperator(ctx, op, reg, indices)
}
