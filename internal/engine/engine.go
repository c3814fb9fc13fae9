package engine

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/folio/internal/engine/macro"
	"github.com/zjrosen/folio/internal/engine/motion"
	"github.com/zjrosen/folio/internal/engine/register"
	"github.com/zjrosen/folio/internal/engine/undo"
	"github.com/zjrosen/folio/internal/flags"
	"github.com/zjrosen/folio/internal/library"
	"github.com/zjrosen/folio/internal/log"
	"github.com/zjrosen/folio/internal/pubsub"
	"github.com/zjrosen/folio/internal/shared"
)

// lineKind says what a Command or Search mode line will do on enter.
type lineKind int

const (
	lineCommand lineKind = iota
	lineSearchForward
	lineSearchBackward
	lineTagAdd
	lineTagRemove
)

// Engine owns the modal state and the visible item list. It is driven one
// key at a time through Handle and is not safe for concurrent use.
type Engine struct {
	store     library.Store
	history   *undo.History
	registers *register.Store
	macros    *macro.Recorder
	clipboard shared.Clipboard
	clock     shared.Clock
	tracer    trace.Tracer
	broker    pubsub.Publisher[Event]
	flags     *flags.Registry
	cfg       Config

	mode    Mode
	state   InputState
	panel   motion.Panel
	status  string
	overlay *Overlay

	filter     library.ListOptions
	items      []library.Item
	total      int
	cursor     int
	offset     int
	sidebar    []SidebarEntry
	sideCursor int

	visual     *Selection
	lastVisual *Range
	marks      map[rune]int
	jumps      *JumpList
	lastJump   int

	line     textinput.Model
	lineKind lineKind
	// tagTargets are the items a pending > or < prompt applies to.
	tagTargets []library.Item
	// editing is the item whose title Insert mode is changing.
	editing library.Item

	quickfix []string
	qfIndex  int
	qfOpen   bool

	replayDepth int
}

// New creates an engine over store. Call Reload before the first key.
func New(store library.Store, opts ...Option) *Engine {
	e := &Engine{
		store:    store,
		clock:    shared.RealClock{},
		cfg:      DefaultConfig(),
		mode:     ModeNormal,
		panel:    motion.PanelList,
		marks:    make(map[rune]int),
		lastJump: -1,
		line:     textinput.New(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.cfg.ViewportHeight <= 0 {
		e.cfg.ViewportHeight = DefaultConfig().ViewportHeight
	}
	if e.clipboard == nil {
		e.clipboard = shared.NoClipboard{}
	}
	if e.registers == nil {
		e.registers = register.New(e.clipboard)
	}
	if e.macros == nil {
		e.macros = macro.NewRecorder()
	}
	e.history = undo.NewHistory(
		undo.WithLimit(e.cfg.UndoLimit),
		undo.WithClock(e.clock),
		undo.WithTracer(e.tracer),
	)
	e.jumps = NewJumpList(e.cfg.JumpListSize)
	e.line.Prompt = ""
	return e
}

// ============================================================================
// Accessors for the rendering layer
// ============================================================================

// Mode returns the current mode. ModePending is reported while a leader or
// operator awaits its next key.
func (e *Engine) Mode() Mode {
	if (e.mode == ModeNormal || e.mode.IsVisual()) && (e.state.Pending != "" || e.state.Operator != OpNone) {
		return ModePending
	}
	return e.mode
}

// BaseMode returns the mode underneath any pending sequence.
func (e *Engine) BaseMode() Mode { return e.mode }

// State returns a copy of the input state.
func (e *Engine) State() InputState { return e.state }

// Echo is the partial key sequence for the mode indicator.
func (e *Engine) Echo() string { return e.state.Echo() }

// Status returns the status line message.
func (e *Engine) Status() string { return e.status }

// Overlay returns the open listing, or nil.
func (e *Engine) Overlay() *Overlay { return e.overlay }

// Panel returns the focused pane.
func (e *Engine) Panel() motion.Panel { return e.panel }

// Items returns the visible list.
func (e *Engine) Items() []library.Item { return e.items }

// Total returns the number of items in the whole library.
func (e *Engine) Total() int { return e.total }

// Cursor returns the list cursor.
func (e *Engine) Cursor() int { return e.cursor }

// Offset returns the first visible row.
func (e *Engine) Offset() int { return e.offset }

// Current returns the item under the cursor.
func (e *Engine) Current() (library.Item, bool) {
	if e.cursor < 0 || e.cursor >= len(e.items) {
		return library.Item{}, false
	}
	return e.items[e.cursor], true
}

// Selection returns the active visual selection, or nil.
func (e *Engine) Selection() *Selection { return e.visual }

// Selected returns the selected indices: the visual selection, or the
// cursor row outside Visual mode.
func (e *Engine) Selected() []int {
	if e.visual != nil {
		return e.visual.Indices()
	}
	if len(e.items) == 0 {
		return nil
	}
	return []int{e.cursor}
}

// LastVisual returns the last contiguous visual range, if any.
func (e *Engine) LastVisual() (Range, bool) {
	if e.lastVisual == nil {
		return Range{}, false
	}
	return *e.lastVisual, true
}

// Sidebar returns the sidebar entries and the sidebar cursor.
func (e *Engine) Sidebar() ([]SidebarEntry, int) { return e.sidebar, e.sideCursor }

// Filter returns the active list filter.
func (e *Engine) Filter() library.ListOptions { return e.filter }

// Line returns the command-line input while in Command or Search mode.
func (e *Engine) Line() textinput.Model { return e.line }

// LinePrompt is the prefix shown before the command line.
func (e *Engine) LinePrompt() string {
	switch e.lineKind {
	case lineSearchForward:
		return "/"
	case lineSearchBackward:
		return "?"
	case lineTagAdd:
		return "+tag: "
	case lineTagRemove:
		return "-tag: "
	default:
		return ":"
	}
}

// Recording returns the macro register being recorded, or 0.
func (e *Engine) Recording() rune { return e.macros.Recording() }

// History exposes the undo history.
func (e *Engine) History() *undo.History { return e.history }

// Registers exposes the register store.
func (e *Engine) Registers() *register.Store { return e.registers }

// Macros exposes the macro recorder.
func (e *Engine) Macros() *macro.Recorder { return e.macros }

// Marks returns a copy of the marks.
func (e *Engine) Marks() map[rune]int {
	return maps.Clone(e.marks)
}

// Quickfix returns the quickfix item ids, the selected entry and whether
// the list is shown.
func (e *Engine) Quickfix() ([]string, int, bool) { return e.quickfix, e.qfIndex, e.qfOpen }

// ============================================================================
// Layout
// ============================================================================

// SetViewportHeight updates the visible row count after a resize.
func (e *Engine) SetViewportHeight(h int) {
	if h > 0 {
		e.cfg.ViewportHeight = h
		e.scrollToCursor()
	}
}

// ClickRow moves the cursor to row i of the list, as a mouse click does.
func (e *Engine) ClickRow(i int) {
	if i < 0 || i >= len(e.items) {
		return
	}
	e.panel = motion.PanelList
	e.setCursor(i)
}

func (e *Engine) setCursor(i int) {
	if len(e.items) == 0 {
		e.cursor = 0
		return
	}
	e.cursor = max(0, min(i, len(e.items)-1))
	if e.visual != nil {
		e.visual.Move(e.cursor)
	}
	e.scrollToCursor()
}

func (e *Engine) scrollToCursor() {
	h := e.cfg.ViewportHeight
	if e.cursor < e.offset {
		e.offset = e.cursor
	}
	if e.cursor >= e.offset+h {
		e.offset = e.cursor - h + 1
	}
	e.offset = max(0, min(e.offset, max(len(e.items)-h, 0)))
}

// frame builds the motion context for the focused panel.
func (e *Engine) frame(target rune) motion.Frame {
	f := motion.Frame{
		Offset:   e.offset,
		Height:   e.cfg.ViewportHeight,
		Target:   target,
		Explicit: e.state.Explicit,
	}
	if e.panel == motion.PanelSidebar {
		f.Len = len(e.sidebar)
		f.Offset = 0
		return f
	}
	f.Len = len(e.items)
	f.Titles = make([]string, len(e.items))
	f.Groups = make([]string, len(e.items))
	for i, item := range e.items {
		f.Titles[i] = item.Title
		if e.cfg.GroupBy == GroupByStatus {
			f.Groups[i] = string(item.Status)
		} else {
			f.Groups[i] = motion.GroupKey(item.Title)
		}
	}
	return f
}

func (e *Engine) position() int {
	if e.panel == motion.PanelSidebar {
		return e.sideCursor
	}
	return e.cursor
}

// ============================================================================
// Loading
// ============================================================================

// Reload re-reads the visible list and the sidebar from the store. The
// cursor stays on the same item when it is still listed.
func (e *Engine) Reload(ctx context.Context) error {
	var currentID string
	if item, ok := e.Current(); ok {
		currentID = item.ID
	}

	items, err := e.store.List(ctx, e.filter)
	if err != nil {
		return fmt.Errorf("failed to list items: %w", err)
	}
	all, err := e.store.List(ctx, library.ListOptions{})
	if err != nil {
		return fmt.Errorf("failed to list library: %w", err)
	}

	e.items = items
	e.total = len(all)
	e.sidebar = buildSidebar(all)
	e.sideCursor = min(e.sideCursor, max(len(e.sidebar)-1, 0))

	if i := slices.IndexFunc(items, func(it library.Item) bool { return it.ID == currentID }); i >= 0 {
		e.cursor = i
	} else {
		e.cursor = min(e.cursor, max(len(items)-1, 0))
	}
	if e.visual != nil {
		e.visual.Clamp(len(items))
	}
	e.scrollToCursor()
	log.Debug(log.CatEngine, "reloaded", "visible", len(items), "total", e.total)
	return nil
}

// refresh reloads after a mutation, reporting failures on the status line.
func (e *Engine) refresh(ctx context.Context) {
	if err := e.Reload(ctx); err != nil {
		log.ErrorErr(log.CatEngine, "reload failed", err)
		e.status = "Failed to reload: " + err.Error()
	}
}

// ============================================================================
// Dispatch
// ============================================================================

// Handle is the single entry point for key events, used for live input and
// macro replay alike. While a macro is being recorded, every key handled at
// the top level is appended to it, except the keys that start and stop the
// recording.
func (e *Engine) Handle(ctx context.Context, msg tea.KeyMsg) tea.Cmd {
	recording := e.macros.IsRecording() && e.replayDepth == 0
	cmd := e.dispatch(ctx, msg)
	if recording && e.macros.IsRecording() {
		e.macros.Record(msg)
	}
	return cmd
}

func (e *Engine) dispatch(ctx context.Context, msg tea.KeyMsg) tea.Cmd {
	if e.overlay != nil {
		e.overlay = nil
		e.state.Reset()
		return nil
	}

	switch e.mode {
	case ModeInsert:
		return e.handleInsert(ctx, msg)
	case ModeCommand, ModeSearch:
		return e.handleLine(ctx, msg)
	}

	if e.state.Pending != "" {
		return e.handlePending(ctx, msg)
	}
	if e.mode.IsVisual() {
		return e.handleVisual(ctx, msg)
	}
	return e.handleNormal(ctx, msg)
}

// setStatus replaces the status line and publishes it.
func (e *Engine) setStatus(msg string) {
	e.status = msg
	e.publish(pubsub.StatusEvent, Event{Message: msg})
}

func (e *Engine) setStatusf(format string, args ...any) {
	e.setStatus(fmt.Sprintf(format, args...))
}

// itemsAt maps indices to items, skipping any out of range.
func (e *Engine) itemsAt(indices []int) []library.Item {
	out := make([]library.Item, 0, len(indices))
	for _, i := range indices {
		if i >= 0 && i < len(e.items) {
			out = append(out, e.items[i])
		}
	}
	return out
}
