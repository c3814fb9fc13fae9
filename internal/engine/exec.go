package engine

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.opentelemetry.io/otel/attribute"

	"github.com/zjrosen/folio/internal/engine/linecmd"
	"github.com/zjrosen/folio/internal/engine/macro"
	"github.com/zjrosen/folio/internal/engine/register"
	"github.com/zjrosen/folio/internal/engine/undo"
	"github.com/zjrosen/folio/internal/library"
	"github.com/zjrosen/folio/internal/log"
	"github.com/zjrosen/folio/internal/pubsub"
	"github.com/zjrosen/folio/internal/search"
	"github.com/zjrosen/folio/internal/tracing"
)

// Execute runs a ':' line. Failures are reported on the status line and
// never returned; the returned command is tea.Quit for :q and :wq.
func (e *Engine) Execute(ctx context.Context, line string) tea.Cmd {
	cmd := linecmd.Parse(line)
	if cmd.Raw == "" {
		return nil
	}
	ctx, span := tracing.Start(ctx, e.tracer, tracing.SpanLineCommand,
		attribute.String(tracing.AttrCommandKind, cmd.Kind.String()),
		attribute.String(tracing.AttrCommandLine, cmd.Raw),
	)
	log.Debug(log.CatCommand, "execute", "kind", cmd.Kind.String(), "line", cmd.Raw)

	teaCmd, err := e.execute(ctx, cmd)
	if err != nil {
		log.Warn(log.CatCommand, "command failed", "line", cmd.Raw, "error", err)
	}
	tracing.End(span, err)
	return teaCmd
}

// fail sets the status line and returns it as an error for tracing.
func (e *Engine) fail(format string, args ...any) error {
	e.setStatusf(format, args...)
	return errors.New(e.status)
}

func (e *Engine) execute(ctx context.Context, cmd linecmd.Command) (tea.Cmd, error) {
	switch cmd.Kind {
	case linecmd.Quit, linecmd.WriteQuit:
		return e.quit(), nil
	case linecmd.Write:
		e.setStatusf("Library saved (%s)", pluralItems(e.total))
	case linecmd.Add:
		return nil, e.addItem(ctx, cmd.Arg)
	case linecmd.Open:
		e.openCurrent()
	case linecmd.Tags:
		e.listTags()
	case linecmd.Help:
		e.showOverlay(OverlayHelp, "Help", nil)
	case linecmd.Search:
		return nil, e.searchCommand(cmd.Arg)
	case linecmd.Refresh:
		if err := e.Reload(ctx); err != nil {
			return nil, e.fail("Failed to reload: %s", err)
		}
		e.setStatusf("Refreshed (%s)", pluralItems(len(e.items)))
	case linecmd.UndoList:
		e.listUndo()
	case linecmd.Earlier, linecmd.Later:
		return nil, e.timeTravel(ctx, cmd)
	case linecmd.QuickfixOpen:
		return nil, e.quickfixOpen()
	case linecmd.QuickfixClose:
		e.qfOpen = false
		e.overlay = nil
	case linecmd.QuickfixNext:
		return nil, e.quickfixStep(1)
	case linecmd.QuickfixPrev:
		return nil, e.quickfixStep(-1)
	case linecmd.QuickfixDo:
		return nil, e.quickfixDo(ctx, cmd.Arg)
	case linecmd.Sort:
		return nil, e.sortBy(ctx, cmd.Arg)
	case linecmd.Library:
		e.applyFilter(ctx, library.ListOptions{Library: cmd.Arg, Tag: e.filter.Tag})
		e.publish(pubsub.LibraryEvent, Event{Library: cmd.Arg})
	case linecmd.FilterTag:
		e.applyFilter(ctx, library.ListOptions{Library: e.filter.Library, Tag: cmd.Arg})
	case linecmd.ClearFilter:
		e.applyFilter(ctx, library.ListOptions{})
	case linecmd.Marks:
		e.listMarks()
	case linecmd.DeleteMarks:
		e.deleteMarks(cmd.Arg)
	case linecmd.Registers:
		e.listRegisters(cmd.Arg)
	case linecmd.Macros:
		e.listMacros()
	case linecmd.Doctor:
		e.doctor()
	case linecmd.Cite:
		return nil, e.cite(cmd.Arg)
	case linecmd.Bibtex:
		return nil, e.bibtex()
	case linecmd.Refs, linecmd.CitedBy:
		item, ok := e.Current()
		if !ok {
			return nil, e.fail("No item selected")
		}
		e.setStatusf("No %s data for %q (metadata lookup is offline)", cmd.Kind, item.Title)
	case linecmd.Global:
		return nil, e.global(ctx, cmd)
	case linecmd.Substitute:
		return nil, e.substitute(ctx, cmd)
	default:
		if hint, ok := linecmd.Suggest(cmd.Name); ok {
			return nil, e.fail("Unknown command: %s (did you mean :%s?)", cmd.Name, hint)
		}
		return nil, e.fail("Unknown command: %s", cmd.Name)
	}
	return nil, nil
}

// ============================================================================
// Items
// ============================================================================

// addItem creates an item titled title in the active library. Without a
// title it shows the add form's usage.
func (e *Engine) addItem(ctx context.Context, title string) error {
	if title == "" {
		e.showOverlay(OverlayAdd, "Add item", []string{
			":add <title>    add an item to the current library",
			"folio add --title T --author A [--year N] [--tag X] [--file PATH]",
		})
		return nil
	}
	now := e.clock.Now()
	item := library.Item{
		ID:        library.NewID(),
		Title:     title,
		Status:    library.StatusUnread,
		Library:   e.filter.Library,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := e.history.Do(ctx, e.store, itemsDescription("Add", []library.Item{item}), undo.UpsertItems([]library.Item{item})); err != nil {
		return e.fail("Add failed: %s", firstLine(err.Error()))
	}
	e.refresh(ctx)
	e.selectID(item.ID)
	e.publish(pubsub.CreatedEvent, Event{Item: item, Count: 1})
	e.setStatusf("Added %q", title)
	return nil
}

func (e *Engine) sortBy(ctx context.Context, arg string) error {
	field, ok := library.ParseSortField(arg)
	if !ok {
		return e.fail("Unknown sort field: %s (title, year, year_asc, rating, updated)", arg)
	}
	e.filter.SortBy = field
	e.refresh(ctx)
	e.setStatusf("Sorted by %s", field)
	return nil
}

func (e *Engine) timeTravel(ctx context.Context, cmd linecmd.Command) error {
	d := undo.ParseDuration(cmd.Arg)
	var (
		n   int
		err error
	)
	if cmd.Kind == linecmd.Earlier {
		n, err = e.history.Earlier(ctx, e.store, d)
	} else {
		n, err = e.history.Later(ctx, e.store, d)
	}
	e.refresh(ctx)
	verb := "Undid"
	if cmd.Kind == linecmd.Later {
		verb = "Redid"
	}
	if err != nil {
		return e.fail("%s %d changes, then failed: %s", verb, n, firstLine(err.Error()))
	}
	e.setStatusf("%s %d changes", verb, n)
	return nil
}

// ============================================================================
// Search and quickfix
// ============================================================================

// searchCommand ranks the list against query and shows the results as
// the quickfix list. With no query it opens the / prompt.
func (e *Engine) searchCommand(query string) error {
	if query == "" {
		e.openLine(lineSearchForward, "")
		return nil
	}
	e.state.LastSearch = &SearchState{Term: query}
	if err := e.quickfixOpen(); err != nil {
		return err
	}
	return e.quickfixStep(0)
}

func (e *Engine) quickfixOpen() error {
	if e.state.LastSearch == nil {
		return e.fail("No previous search pattern")
	}
	term := e.state.LastSearch.Term
	ranked := search.Rank(term, e.items)
	if len(ranked) == 0 {
		e.quickfix, e.qfIndex, e.qfOpen = nil, 0, false
		return e.fail("Pattern not found: %s", term)
	}
	e.quickfix = make([]string, len(ranked))
	lines := make([]string, len(ranked))
	for i, r := range ranked {
		e.quickfix[i] = r.Item.ID
		lines[i] = fmt.Sprintf("%3d  %s", i+1, r.Item.Title)
	}
	e.qfIndex, e.qfOpen = 0, true
	e.showOverlay(OverlayQuickfix, fmt.Sprintf("Quickfix: %s (%d)", term, len(ranked)), lines)
	return nil
}

// quickfixStep moves delta entries through the quickfix list and puts the
// cursor on the entry.
func (e *Engine) quickfixStep(delta int) error {
	if len(e.quickfix) == 0 {
		return e.fail("Quickfix list is empty")
	}
	next := e.qfIndex + delta
	if next < 0 || next >= len(e.quickfix) {
		return e.fail("No more items")
	}
	e.qfIndex = next
	id := e.quickfix[next]
	i := slices.IndexFunc(e.items, func(it library.Item) bool { return it.ID == id })
	if i < 0 {
		return e.fail("Item no longer listed")
	}
	e.recordJump()
	e.setCursor(i)
	e.setStatusf("(%d of %d) %s", next+1, len(e.quickfix), e.items[i].Title)
	return nil
}

func (e *Engine) quickfixDo(ctx context.Context, action string) error {
	if len(e.quickfix) == 0 {
		return e.fail("Quickfix list is empty")
	}
	var targets []library.Item
	for _, id := range e.quickfix {
		if i := slices.IndexFunc(e.items, func(it library.Item) bool { return it.ID == id }); i >= 0 {
			targets = append(targets, e.items[i])
		}
	}
	return e.bulk(ctx, "cdo", action, targets)
}

// ============================================================================
// Listings
// ============================================================================

func (e *Engine) listUndo() {
	entries := e.history.Entries()
	if len(entries) == 0 {
		e.setStatus("Undo history is empty")
		return
	}
	lines := make([]string, len(entries))
	for i, entry := range entries {
		lines[i] = fmt.Sprintf("%3d  %s  %s", i+1, entry.Time.Format("15:04:05"), entry.Description)
	}
	e.showOverlay(OverlayUndo, fmt.Sprintf("Undo history (%d, redo %d)", len(entries), e.history.RedoCount()), lines)
}

// listRegisters shows every non-empty register, or only those named in
// filter.
func (e *Engine) listRegisters(filter string) {
	var lines []string
	for _, entry := range e.registers.List() {
		if filter != "" && !strings.ContainsRune(filter, entry.Name) {
			continue
		}
		lines = append(lines, fmt.Sprintf(`"%c  %-8s %s`, entry.Name, entry.Content.Kind, entry.Content.Summary()))
	}
	if len(lines) == 0 {
		e.setStatus("No registers")
		return
	}
	e.showOverlay(OverlayRegisters, "Registers", lines)
}

func (e *Engine) listMarks() {
	if len(e.marks) == 0 {
		e.setStatus("No marks set")
		return
	}
	var lines []string
	for _, r := range slices.Sorted(maps.Keys(e.marks)) {
		idx := e.marks[r]
		title := "(out of range)"
		if idx < len(e.items) {
			title = e.items[idx].Title
		}
		lines = append(lines, fmt.Sprintf("%c  %4d  %s", r, idx+1, title))
	}
	e.showOverlay(OverlayMarks, "Marks", lines)
}

// deleteMarks removes the letters in arg, or every mark when arg is empty
// or "!".
func (e *Engine) deleteMarks(arg string) {
	arg = strings.TrimSpace(arg)
	if arg == "" || arg == "!" {
		n := len(e.marks)
		clear(e.marks)
		e.setStatusf("Deleted %d marks", n)
		return
	}
	n := 0
	for _, r := range arg {
		if _, ok := e.marks[r]; ok {
			delete(e.marks, r)
			n++
		}
	}
	e.setStatusf("Deleted %d marks", n)
}

func (e *Engine) listMacros() {
	macros := e.macros.List()
	if len(macros) == 0 {
		e.setStatus("No macros recorded")
		return
	}
	lines := make([]string, len(macros))
	for i, m := range macros {
		lines[i] = fmt.Sprintf("@%c  %s", m.Register, macro.Describe(m.Keys))
	}
	e.showOverlay(OverlayMacros, "Macros", lines)
}

func (e *Engine) listTags() {
	var lines []string
	for _, entry := range e.sidebar {
		if entry.Filter.Tag != "" {
			lines = append(lines, fmt.Sprintf("%-24s %d", entry.Label, entry.Count))
		}
	}
	if len(lines) == 0 {
		e.setStatus("No tags")
		return
	}
	e.showOverlay(OverlayTags, "Tags", lines)
}

func (e *Engine) doctor() {
	e.setStatusf("Doctor: items=%d/%d undo=%d marks=%d regs=%d macros=%d",
		len(e.items), e.total, e.history.UndoCount(), len(e.marks), e.registers.Len(), e.macros.Len())
}

// ============================================================================
// Citations
// ============================================================================

func (e *Engine) cite(style string) error {
	item, ok := e.Current()
	if !ok {
		return e.fail("No item selected")
	}
	var text string
	switch strings.ToLower(style) {
	case "", "apa":
		text = citeAPA(item)
	case "mla":
		text = citeMLA(item)
	default:
		return e.fail("Unknown citation style: %s (apa, mla)", style)
	}
	e.copyText("Citation", text)
	return nil
}

func (e *Engine) bibtex() error {
	item, ok := e.Current()
	if !ok {
		return e.fail("No item selected")
	}
	e.copyText("BibTeX", bibtexEntry(item))
	return nil
}

// copyText stores text in the clipboard register, which mirrors into the
// unnamed register, and shows it.
func (e *Engine) copyText(title, text string) {
	err := e.registers.Write(register.Clipboard, register.Text(text))
	e.showOverlay(OverlayCitation, title, strings.Split(text, "\n"))
	if err != nil {
		e.setStatusf("%s copied to register; clipboard write failed: %s", title, firstLine(err.Error()))
		return
	}
	e.setStatusf("%s copied", title)
}

func citeAPA(item library.Item) string {
	var b strings.Builder
	if len(item.Authors) > 0 {
		b.WriteString(joinAuthors(item.Authors, "&"))
		b.WriteString(" ")
	}
	if item.Year > 0 {
		fmt.Fprintf(&b, "(%d). ", item.Year)
	} else {
		b.WriteString("(n.d.). ")
	}
	b.WriteString(item.Title)
	b.WriteString(".")
	return b.String()
}

func citeMLA(item library.Item) string {
	var b strings.Builder
	if len(item.Authors) > 0 {
		b.WriteString(joinAuthors(item.Authors, "and"))
		b.WriteString(". ")
	}
	b.WriteString(item.Title)
	b.WriteString(".")
	if item.Year > 0 {
		fmt.Fprintf(&b, " %d.", item.Year)
	}
	return b.String()
}

func joinAuthors(authors []string, conj string) string {
	switch len(authors) {
	case 1:
		return authors[0]
	case 2:
		return authors[0] + " " + conj + " " + authors[1]
	default:
		return strings.Join(authors[:len(authors)-1], ", ") + ", " + conj + " " + authors[len(authors)-1]
	}
}

func bibtexEntry(item library.Item) string {
	var b strings.Builder
	fmt.Fprintf(&b, "@book{%s,\n", bibtexKey(item))
	fmt.Fprintf(&b, "  title = {%s},\n", item.Title)
	if len(item.Authors) > 0 {
		fmt.Fprintf(&b, "  author = {%s},\n", strings.Join(item.Authors, " and "))
	}
	if item.Year > 0 {
		fmt.Fprintf(&b, "  year = {%d},\n", item.Year)
	}
	b.WriteString("}")
	return b.String()
}

// bibtexKey is the first author's last name, the year and the first title
// word longer than three letters, lowercased: knuth1968computer.
func bibtexKey(item library.Item) string {
	var key string
	if fields := strings.Fields(item.FirstAuthor()); len(fields) > 0 {
		key = fields[len(fields)-1]
	}
	if item.Year > 0 {
		key += fmt.Sprint(item.Year)
	}
	for _, w := range strings.Fields(item.Title) {
		if len(w) > 3 || len(key) == 0 {
			key += w
			break
		}
	}
	key = strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, strings.ToLower(key))
	if key == "" {
		return "item"
	}
	return key
}
