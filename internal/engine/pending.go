package engine

import (
	"context"
	"unicode"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/folio/internal/engine/macro"
	"github.com/zjrosen/folio/internal/engine/motion"
	"github.com/zjrosen/folio/internal/engine/register"
	"github.com/zjrosen/folio/internal/log"
)

// keyRune returns the single character a key typed, if it typed one.
func keyRune(msg tea.KeyMsg) (rune, bool) {
	if msg.Type == tea.KeySpace {
		return ' ', true
	}
	if msg.Type != tea.KeyRunes || msg.Alt || len(msg.Runes) != 1 {
		return 0, false
	}
	return msg.Runes[0], true
}

// handlePending consumes the key after a leader. The leader is cleared
// whether or not the pair means anything.
func (e *Engine) handlePending(ctx context.Context, msg tea.KeyMsg) tea.Cmd {
	leader := e.state.Pending
	e.state.Pending = ""
	key := msg.String()
	r, isRune := keyRune(msg)

	if e.state.Operator != OpNone && (leader == "i" || leader == "a") {
		if !isRune {
			e.state.Reset()
			return nil
		}
		return e.applyTextObject(ctx, r, leader == "a")
	}
	// Only motions and text objects may follow a pending operator.
	if e.state.Operator != OpNone && !motionLeader(leader) {
		e.state.Reset()
		return nil
	}

	switch leader {
	case "g":
		switch key {
		case "g":
			return e.runMotion(ctx, motion.Top, 0)
		case "v":
			e.state.Reset()
			e.reselectVisual()
			return nil
		}
	case "[":
		if key == "[" {
			return e.runMotion(ctx, motion.GroupPrev, 0)
		}
	case "]":
		if key == "]" {
			return e.runMotion(ctx, motion.GroupNext, 0)
		}
	case "f", "F", "t", "T":
		if isRune {
			return e.runMotion(ctx, findMotion(leader), unicode.ToLower(r))
		}
	case "'", "`":
		if isRune {
			return e.jumpToMark(ctx, r)
		}
	case "z":
		e.state.Reset()
		e.recenter(key)
		return nil
	case "m":
		e.state.Reset()
		if isRune {
			e.setMark(r)
		}
		return nil
	case "@":
		if isRune {
			return e.replayMacro(ctx, r)
		}
	case "q":
		e.state.Reset()
		if isRune {
			e.startRecording(r)
		}
		return nil
	case `"`:
		if isRune && register.Valid(r) {
			// The register choice survives until an operator or paste
			// consumes it.
			e.state.Register = r
			return nil
		}
		e.setStatusf("Invalid register: %s", key)
	case " ":
		e.state.Reset()
		e.spaceLeader(key)
		return nil
	}
	e.state.Reset()
	return nil
}

func findMotion(leader string) motion.Motion {
	switch leader {
	case "f":
		return motion.FindForward
	case "F":
		return motion.FindBackward
	case "t":
		return motion.TillForward
	default:
		return motion.TillBackward
	}
}

// spaceLeader maps <space>x shortcuts onto line commands.
func (e *Engine) spaceLeader(key string) {
	switch key {
	case "/", "f":
		e.openLine(lineCommand, "search ")
	case "u":
		e.listUndo()
	case "r":
		e.listRegisters("")
	case "m":
		e.listMarks()
	case "q":
		e.listMacros()
	case "?":
		e.showOverlay(OverlayHelp, "Help", nil)
	}
}

// ============================================================================
// Macros
// ============================================================================

func (e *Engine) startRecording(r rune) {
	if err := e.macros.StartRecording(r); err != nil {
		e.setStatusf("Cannot record: %s", err)
		return
	}
	e.setStatusf("recording @%c", r)
}

func (e *Engine) stopRecording() {
	m, err := e.macros.StopRecording()
	if err != nil {
		return
	}
	e.setStatusf("Recorded @%c (%d keys)", m.Register, len(m.Keys))
}

// replayMacro feeds a stored macro back through Handle count times. @@
// replays the last macro played.
func (e *Engine) replayMacro(ctx context.Context, r rune) tea.Cmd {
	n := e.state.CountOr1()
	e.state.Reset()

	if r == '@' {
		r = e.macros.LastPlayed()
		if r == 0 {
			e.setStatus("No previous macro")
			return nil
		}
	}
	keys, err := e.macros.Get(r)
	if err != nil {
		if macro.Valid(r) {
			e.setStatusf("Macro @%c is empty", r)
		} else {
			e.setStatusf("Invalid macro register: %c", r)
		}
		return nil
	}
	e.macros.SetLastPlayed(r)
	log.Debug(log.CatMacro, "replay", "register", string(r), "keys", len(keys), "count", n)

	e.replayDepth++
	defer func() { e.replayDepth-- }()

	var cmds []tea.Cmd
	for range n {
		for _, k := range keys {
			cmds = append(cmds, e.Handle(ctx, k))
		}
	}
	return tea.Batch(cmds...)
}

// ============================================================================
// Marks
// ============================================================================

func (e *Engine) setMark(r rune) {
	if !unicode.IsLetter(r) || r > unicode.MaxASCII {
		e.setStatusf("Invalid mark: %c", r)
		return
	}
	if len(e.items) == 0 {
		return
	}
	e.marks[r] = e.cursor
	e.setStatusf("Mark '%c' set", r)
}

// jumpToMark resolves ' and ` targets: a letter mark, the previous jump,
// or '< and '> for the last visual range.
func (e *Engine) jumpToMark(ctx context.Context, r rune) tea.Cmd {
	var target int
	switch r {
	case '\'', '`':
		if e.lastJump < 0 {
			e.state.Reset()
			e.setStatus("No previous jump")
			return nil
		}
		target = e.lastJump
	case '<', '>':
		if e.lastVisual == nil {
			e.state.Reset()
			e.setStatus("No previous visual selection")
			return nil
		}
		target = e.lastVisual.Start
		if r == '>' {
			target = e.lastVisual.End
		}
	default:
		idx, ok := e.marks[r]
		if !ok {
			e.state.Reset()
			e.setStatusf("No mark '%c'", r)
			return nil
		}
		target = idx
	}
	if target >= len(e.items) {
		e.state.Reset()
		e.setStatusf("Mark '%c' is out of range", r)
		return nil
	}
	e.panel = motion.PanelList
	return e.moveTo(ctx, target, true)
}
