package app

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	zone "github.com/lrstanley/bubblezone"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
	"github.com/rivo/uniseg"

	"github.com/zjrosen/folio/internal/engine"
	"github.com/zjrosen/folio/internal/engine/motion"
	"github.com/zjrosen/folio/internal/library"
	"github.com/zjrosen/folio/internal/log"
)

const (
	sidebarWidth    = 24
	previewWidth    = 40
	minSidebarTotal = 60
	minPreviewTotal = 110
	authorWidth     = 18
	yearWidth       = 4
)

// ============================================================================
// Layout
// ============================================================================

// bodyHeight is the height of the pane row between the header and footer.
func (m Model) bodyHeight() int {
	chrome := 2 // header and the command/help line
	if m.cfg.UI.ShowStatusBar {
		chrome++
	}
	return max(m.height-chrome, 3)
}

// listRows is the number of item rows inside the bordered list pane.
func (m Model) listRows() int {
	rows := m.bodyHeight() - 2
	if m.cfg.UI.ViewportHeight > 0 {
		rows = min(rows, m.cfg.UI.ViewportHeight)
	}
	return max(rows, 1)
}

func (m Model) showSidebar() bool {
	return m.cfg.UI.ShowSidebar && m.width >= minSidebarTotal
}

func (m Model) showPreview() bool {
	return m.width >= minPreviewTotal
}

func (m Model) listWidth() int {
	w := m.width
	if m.showSidebar() {
		w -= sidebarWidth
	}
	if m.showPreview() {
		w -= previewWidth
	}
	return max(w, 20)
}

func (m Model) overlayWidth() int {
	return max(m.width-4, 20)
}

func rowZoneID(i int) string {
	return "row-" + strconv.Itoa(i)
}

// rowAt maps a mouse event to the list row under it.
func (m Model) rowAt(msg tea.MouseMsg) (int, bool) {
	if m.engine.Overlay() != nil {
		return 0, false
	}
	first := m.engine.Offset()
	last := min(first+m.listRows(), len(m.engine.Items()))
	for i := first; i < last; i++ {
		if z := zone.Get(rowZoneID(i)); z != nil && z.InBounds(msg) {
			return i, true
		}
	}
	return 0, false
}

// ============================================================================
// View
// ============================================================================

// View implements tea.Model.
func (m Model) View() string {
	var body string
	if ov := m.engine.Overlay(); ov != nil {
		body = m.renderOverlay(ov)
	} else {
		body = m.renderPanes()
	}

	parts := []string{m.renderHeader(), body}
	if m.cfg.UI.ShowStatusBar {
		parts = append(parts, m.renderStatus())
	}
	parts = append(parts, m.renderBottom())
	return zone.Scan(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m Model) renderHeader() string {
	mode := m.engine.Mode()
	left := m.styles.badge(mode).Render(mode.String())
	if echo := m.engine.Echo(); echo != "" {
		left += " " + m.styles.muted.Render(echo)
	}
	if r := m.engine.Recording(); r != 0 {
		left += " " + m.styles.recording.Render("recording @"+string(r))
	}

	filter := m.engine.Filter()
	scope := "All"
	switch {
	case filter.Library != "" && filter.Tag != "":
		scope = filter.Library + " #" + filter.Tag
	case filter.Library != "":
		scope = filter.Library
	case filter.Tag != "":
		scope = "#" + filter.Tag
	}
	right := m.styles.header.Render(fmt.Sprintf("%s  %d/%d", scope, len(m.engine.Items()), m.engine.Total()))

	gap := m.width - ansi.StringWidth(left) - ansi.StringWidth(right)
	if gap < 1 {
		return truncate.String(left, uint(max(m.width, 0)))
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) renderPanes() string {
	h := m.bodyHeight()
	panel := m.engine.Panel()

	var cols []string
	if m.showSidebar() {
		cols = append(cols, m.pane(panel == motion.PanelSidebar, sidebarWidth, h).Render(m.renderSidebar(sidebarWidth-2, h-2)))
	}
	lw := m.listWidth()
	cols = append(cols, m.pane(panel == motion.PanelList, lw, h).Render(m.renderList(lw-2)))
	if m.showPreview() {
		cols = append(cols, m.pane(panel == motion.PanelPreview, previewWidth, h).Render(m.renderPreview(previewWidth-2, h-2)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

// pane returns a bordered box of outer size w x h.
func (m Model) pane(focused bool, w, h int) lipgloss.Style {
	st := m.styles.pane
	if focused {
		st = m.styles.focused
	}
	return st.Width(w - 2).Height(h - 2).MaxHeight(h)
}

func (m Model) renderSidebar(w, h int) string {
	entries, cursor := m.engine.Sidebar()
	focused := m.engine.Panel() == motion.PanelSidebar
	filter := m.engine.Filter()

	lines := make([]string, 0, min(len(entries), h))
	for i, entry := range entries {
		if i >= h {
			break
		}
		count := strconv.Itoa(entry.Count)
		label := truncate.StringWithTail(entry.Label, uint(max(w-len(count)-1, 1)), "…")
		line := padRight(label, w-len(count)) + count
		switch {
		case focused && i == cursor:
			line = m.styles.selected.Render(line)
		case entry.Filter.Library == filter.Library && entry.Filter.Tag == filter.Tag:
			line = m.styles.header.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderList(w int) string {
	items := m.engine.Items()
	if len(items) == 0 {
		return m.styles.muted.Render("No items")
	}

	first := m.engine.Offset()
	last := min(first+m.listRows(), len(items))
	sel := m.engine.Selection()
	cursor := m.engine.Cursor()

	titleWidth := max(w-2-authorWidth-yearWidth-2, 8)
	lines := make([]string, 0, last-first)
	for i := first; i < last; i++ {
		item := items[i]
		prefix := "  "
		if i == cursor {
			prefix = m.styles.cursor.Render("> ")
		}
		row := fmt.Sprintf("%s %s %s",
			fitWidth(item.Title, titleWidth),
			fitWidth(item.FirstAuthor(), authorWidth),
			formatYear(item.Year),
		)
		if sel != nil && sel.Contains(i) {
			row = m.styles.selected.Render(row)
		} else if item.Status == library.StatusRead {
			row = m.styles.muted.Render(row)
		}
		lines = append(lines, zone.Mark(rowZoneID(i), prefix+row))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderPreview(w, h int) string {
	item, ok := m.engine.Current()
	if !ok {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.styles.title.Render(wordwrap.String(item.Title, w)))
	b.WriteString("\n\n")
	if len(item.Authors) > 0 {
		b.WriteString(wordwrap.String(strings.Join(item.Authors, ", "), w))
		b.WriteString("\n")
	}
	if item.Year > 0 {
		b.WriteString(m.styles.muted.Render("Year    ") + strconv.Itoa(item.Year) + "\n")
	}
	b.WriteString(m.styles.muted.Render("Status  ") + string(item.Status) + "\n")
	if item.Rating > 0 {
		b.WriteString(m.styles.muted.Render("Rating  ") + strings.Repeat("★", item.Rating) + "\n")
	}
	if item.Library != "" {
		b.WriteString(m.styles.muted.Render("Library ") + item.Library + "\n")
	}
	if len(item.Tags) > 0 {
		tags := make([]string, len(item.Tags))
		for i, t := range item.Tags {
			tags[i] = "#" + t
		}
		b.WriteString(wordwrap.String(strings.Join(tags, " "), w) + "\n")
	}
	if item.HasFile() {
		b.WriteString(m.styles.muted.Render(truncate.StringWithTail(item.FilePath, uint(w), "…")) + "\n")
	}
	return clipLines(b.String(), h)
}

func (m Model) renderOverlay(ov *engine.Overlay) string {
	w, h := m.overlayWidth(), m.bodyHeight()
	var content string
	if ov.Kind == engine.OverlayHelp {
		content = m.renderHelp(w - 2)
	} else {
		lines := append([]string{m.styles.title.Render(ov.Title), ""}, ov.Lines...)
		content = strings.Join(lines, "\n")
	}
	content = clipLines(content, h-2)
	return m.styles.focused.Width(w - 2).Height(h - 2).Render(content)
}

// renderHelp renders the key reference through glamour, once per width.
// Failures fall back to the raw markdown.
func (m Model) renderHelp(w int) string {
	c := m.helpCache
	if c.out != "" && c.width == w {
		return c.out
	}
	md := m.keys.HelpMarkdown()
	r, err := newMarkdownRenderer(w, m.cfg.UI.MarkdownStyle)
	if err != nil {
		log.ErrorErr(log.CatUI, "markdown renderer failed", err)
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		log.ErrorErr(log.CatUI, "help render failed", err)
		return md
	}
	c.width, c.out = w, strings.TrimRight(out, "\n")
	return c.out
}

func (m Model) renderStatus() string {
	status := m.engine.Status()
	if m.message != "" {
		status = m.styles.errText.Render(m.message)
	}
	if qf, idx, open := m.engine.Quickfix(); open && len(qf) > 0 {
		status = fmt.Sprintf("[%d/%d] %s", idx+1, len(qf), status)
	}
	if m.debug && m.lastLog != "" {
		room := m.width - ansi.StringWidth(status) - 3
		if room > 10 {
			status += "   " + m.styles.muted.Render(truncate.StringWithTail(m.lastLog, uint(room), "…"))
		}
	}
	return truncate.String(status, uint(max(m.width, 0)))
}

func (m Model) renderBottom() string {
	switch m.engine.BaseMode() {
	case engine.ModeCommand, engine.ModeSearch:
		return m.engine.LinePrompt() + m.engine.Line().View()
	case engine.ModeInsert:
		return m.styles.muted.Render("title: ") + m.engine.Line().View()
	}
	return m.help.ShortHelpView(m.keys.ShortHelp())
}

// ============================================================================
// Text helpers
// ============================================================================

// fitWidth truncates or pads s to exactly w terminal cells.
func fitWidth(s string, w int) string {
	return runewidth.FillRight(runewidth.Truncate(s, w, "…"), w)
}

// padRight pads a plain string to w cells, counting grapheme widths.
func padRight(s string, w int) string {
	if n := uniseg.StringWidth(s); n < w {
		return s + strings.Repeat(" ", w-n)
	}
	return s
}

func formatYear(y int) string {
	if y <= 0 {
		return strings.Repeat(" ", yearWidth)
	}
	return fmt.Sprintf("%*d", yearWidth, y)
}

// clipLines keeps the first h lines, replacing the rest with a count.
func clipLines(s string, h int) string {
	lines := strings.Split(s, "\n")
	if h <= 0 || len(lines) <= h {
		return s
	}
	hidden := len(lines) - h + 1
	return strings.Join(append(lines[:h-1], fmt.Sprintf("… %d more", hidden)), "\n")
}
