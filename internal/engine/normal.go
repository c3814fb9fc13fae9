package engine

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/folio/internal/engine/motion"
	"github.com/zjrosen/folio/internal/engine/undo"
	"github.com/zjrosen/folio/internal/log"
	"github.com/zjrosen/folio/internal/pubsub"
)

// simpleMotion maps single keys to motions.
func simpleMotion(key string) (motion.Motion, bool) {
	switch key {
	case "j", "down":
		return motion.Down, true
	case "k", "up":
		return motion.Up, true
	case "G":
		return motion.Bottom, true
	case "0", "home":
		return motion.First, true
	case "$", "end":
		return motion.Last, true
	case "H":
		return motion.ScreenTop, true
	case "M":
		return motion.ScreenMiddle, true
	case "L":
		return motion.ScreenBottom, true
	case "{":
		return motion.GroupPrev, true
	case "}":
		return motion.GroupNext, true
	case "ctrl+d":
		return motion.HalfPageDown, true
	case "ctrl+u":
		return motion.HalfPageUp, true
	case "ctrl+f", "pgdown":
		return motion.PageDown, true
	case "ctrl+b", "pgup":
		return motion.PageUp, true
	default:
		return motion.None, false
	}
}

// motionLeader reports whether key starts a two-key motion.
func motionLeader(key string) bool {
	switch key {
	case "g", "[", "]", "f", "F", "t", "T", "'", "`":
		return true
	default:
		return false
	}
}

func (e *Engine) handleNormal(ctx context.Context, msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	if d, ok := e.state.digit(key); ok {
		e.state.PushDigit(d)
		return nil
	}
	if e.state.Operator != OpNone {
		return e.handleOperatorPending(ctx, key)
	}
	if m, ok := simpleMotion(key); ok {
		return e.runMotion(ctx, m, 0)
	}
	if motionLeader(key) {
		e.state.Pending = key
		return nil
	}

	switch key {
	case "z", "m", "@", `"`, " ":
		e.state.Pending = key
		return nil
	case "q":
		if e.macros.IsRecording() {
			e.stopRecording()
			e.state.Reset()
			return nil
		}
		e.state.Pending = key
		return nil
	case ";", ",":
		return e.repeatFind(ctx, key == ",")
	case "d", "y", "c", ">", "<":
		if e.panel != motion.PanelList || len(e.items) == 0 {
			break
		}
		e.state.Operator = operatorForKey(key)
		return nil
	case "v", "V", "ctrl+v":
		e.enterVisual(visualModeForKey(key))
		return nil
	case "Y":
		e.yankPath()
	case "s":
		e.cycleStatus(ctx)
	case "R":
		e.rate(ctx, e.state.Count, e.state.Explicit)
	case "p", "P":
		return e.paste(ctx)
	case "u":
		e.undo(ctx, e.state.CountOr1())
	case "ctrl+r":
		e.redo(ctx, e.state.CountOr1())
	case ":":
		e.state.Reset()
		e.openLine(lineCommand, "")
		return nil
	case "/", "?":
		e.state.Reset()
		if key == "/" {
			e.openLine(lineSearchForward, "")
		} else {
			e.openLine(lineSearchBackward, "")
		}
		return nil
	case "n", "N":
		e.repeatSearch(key == "N", e.state.CountOr1())
	case "*", "#":
		e.searchAuthor(key == "#")
	case "ctrl+o":
		e.jumpBack()
	case "tab":
		e.jumpForward()
	case "ctrl+e":
		e.scroll(e.state.CountOr1())
	case "ctrl+y":
		e.scroll(-e.state.CountOr1())
	case "h", "left":
		e.focusLeft()
	case "l", "right":
		e.focusRight()
	case "enter":
		e.state.Reset()
		return e.activate(ctx)
	case "esc":
		e.status = ""
	case "Q":
		e.state.Reset()
		return e.quit()
	}
	e.state.Reset()
	return nil
}

// handleOperatorPending completes d, y, c, > or < with a motion, a text
// object or a repeat of the operator key.
func (e *Engine) handleOperatorPending(ctx context.Context, key string) tea.Cmd {
	op := e.state.Operator
	if operatorForKey(key) == op {
		n := e.state.CountOr1()
		reg := e.state.Register
		e.state.Reset()
		end := min(e.cursor+n-1, len(e.items)-1)
		return e.applyOperator(ctx, op, reg, rangeOf(e.cursor, end).Indices())
	}
	if m, ok := simpleMotion(key); ok {
		return e.runMotion(ctx, m, 0)
	}
	if motionLeader(key) {
		e.state.Pending = key
		return nil
	}
	if key == ";" || key == "," {
		return e.repeatFind(ctx, key == ",")
	}
	if key == "i" || key == "a" {
		e.state.Pending = key
		return nil
	}
	e.state.Reset()
	return nil
}

// runMotion resolves m from the current position and completes the
// pending sequence with the result.
func (e *Engine) runMotion(ctx context.Context, m motion.Motion, target rune) tea.Cmd {
	if m.IsFind() {
		e.state.LastFind = &FindState{Motion: m, Target: target}
	}
	pos, ok := motion.Resolve(e.position(), m, e.state.CountOr1(), e.panel, e.frame(target)).Get()
	if !ok {
		e.state.Reset()
		return nil
	}
	return e.moveTo(ctx, pos, m.IsJump())
}

// moveTo finishes a motion at pos: it applies a pending operator over the
// spanned rows, or moves the cursor, recording a jump first when asked.
func (e *Engine) moveTo(ctx context.Context, pos int, jump bool) tea.Cmd {
	op, reg := e.state.Operator, e.state.Register
	e.state.Reset()

	if e.panel == motion.PanelSidebar {
		e.sideCursor = pos
		return nil
	}
	if op != OpNone {
		return e.applyOperator(ctx, op, reg, rangeOf(e.cursor, pos).Indices())
	}
	if jump {
		e.recordJump()
	}
	e.setCursor(pos)
	return nil
}

func (e *Engine) repeatFind(ctx context.Context, reverse bool) tea.Cmd {
	last := e.state.LastFind
	if last == nil {
		e.state.Reset()
		return nil
	}
	m := last.Motion
	if reverse {
		m = m.Reverse()
	}
	pos, ok := motion.Resolve(e.position(), m, e.state.CountOr1(), e.panel, e.frame(last.Target)).Get()
	if !ok {
		e.state.Reset()
		return nil
	}
	return e.moveTo(ctx, pos, false)
}

func (e *Engine) recordJump() {
	e.jumps.Push(e.cursor)
	e.lastJump = e.cursor
}

func (e *Engine) jumpBack() {
	pos, ok := e.jumps.Back(e.cursor)
	if !ok {
		e.setStatus("At bottom of jump list")
		return
	}
	e.lastJump = e.cursor
	e.setCursor(pos)
}

func (e *Engine) jumpForward() {
	pos, ok := e.jumps.Forward()
	if !ok {
		e.setStatus("At top of jump list")
		return
	}
	e.lastJump = e.cursor
	e.setCursor(pos)
}

// scroll moves the viewport by n rows, dragging the cursor along when it
// would leave the screen.
func (e *Engine) scroll(n int) {
	h := e.cfg.ViewportHeight
	e.offset = max(0, min(e.offset+n, max(len(e.items)-h, 0)))
	switch {
	case e.cursor < e.offset:
		e.cursor = e.offset
	case e.cursor >= e.offset+h:
		e.cursor = e.offset + h - 1
	}
}

// recenter implements zz, zt and zb.
func (e *Engine) recenter(key string) {
	h := e.cfg.ViewportHeight
	switch key {
	case "z":
		e.offset = e.cursor - h/2
	case "t":
		e.offset = e.cursor
	case "b":
		e.offset = e.cursor - h + 1
	default:
		return
	}
	e.offset = max(0, min(e.offset, max(len(e.items)-h, 0)))
}

func (e *Engine) focusLeft() {
	switch e.panel {
	case motion.PanelList:
		e.panel = motion.PanelSidebar
	case motion.PanelPreview:
		e.panel = motion.PanelList
	}
}

func (e *Engine) focusRight() {
	switch e.panel {
	case motion.PanelSidebar:
		e.panel = motion.PanelList
	case motion.PanelList:
		e.panel = motion.PanelPreview
	}
}

// activate handles enter: apply the sidebar filter, or open the current
// item's file.
func (e *Engine) activate(ctx context.Context) tea.Cmd {
	if e.panel == motion.PanelSidebar {
		if e.sideCursor < len(e.sidebar) {
			e.applyFilter(ctx, e.sidebar[e.sideCursor].Filter)
			e.panel = motion.PanelList
		}
		return nil
	}
	e.openCurrent()
	return nil
}

func (e *Engine) openCurrent() {
	item, ok := e.Current()
	if !ok {
		e.setStatus("No item selected")
		return
	}
	if !item.HasFile() {
		e.setStatusf("No file attached to %q", item.Title)
		return
	}
	e.publish(pubsub.OpenEvent, Event{Item: item})
	e.setStatusf("Opening %s", item.FilePath)
}

func (e *Engine) quit() tea.Cmd {
	e.publish(pubsub.QuitEvent, Event{})
	return tea.Quit
}

func (e *Engine) undo(ctx context.Context, n int) {
	defer e.refresh(ctx)
	for range n {
		entry, err := e.history.Undo(ctx, e.store)
		if errors.Is(err, undo.ErrNothingToUndo) {
			e.setStatus("Already at oldest change")
			return
		}
		if err != nil {
			log.ErrorErr(log.CatUndo, "undo failed", err)
			e.setStatusf("Undo failed: %s", firstLine(err.Error()))
			return
		}
		e.setStatusf("Undo: %s", entry.Description)
	}
}

func (e *Engine) redo(ctx context.Context, n int) {
	defer e.refresh(ctx)
	for range n {
		entry, err := e.history.Redo(ctx, e.store)
		if errors.Is(err, undo.ErrNothingToRedo) {
			e.setStatus("Already at newest change")
			return
		}
		if err != nil {
			log.ErrorErr(log.CatUndo, "redo failed", err)
			e.setStatusf("Redo failed: %s", firstLine(err.Error()))
			return
		}
		e.setStatusf("Redo: %s", entry.Description)
	}
}
