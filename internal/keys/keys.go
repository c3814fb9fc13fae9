// Package keys contains the keybinding reference shown in the help bar and
// the help overlay. Dispatch itself is fixed in the engine.
package keys

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// KeyMap lists the bindings by group.
type KeyMap struct {
	// Navigation
	Up         key.Binding
	Down       key.Binding
	Top        key.Binding
	Bottom     key.Binding
	Screen     key.Binding
	Group      key.Binding
	Find       key.Binding
	RepeatFind key.Binding
	HalfPage   key.Binding
	Page       key.Binding
	Scroll     key.Binding
	Recenter   key.Binding
	FocusLeft  key.Binding
	FocusRight key.Binding

	// Operators
	Delete     key.Binding
	Yank       key.Binding
	YankPath   key.Binding
	Change     key.Binding
	AddTag     key.Binding
	RemoveTag  key.Binding
	Paste      key.Binding
	Register   key.Binding
	TextObject key.Binding
	Status     key.Binding
	Rate       key.Binding

	// History
	Undo key.Binding
	Redo key.Binding

	// Visual
	Visual      key.Binding
	VisualLine  key.Binding
	VisualBlock key.Binding
	Toggle      key.Binding
	SwapEnds    key.Binding
	Reselect    key.Binding

	// Marks and jumps
	SetMark     key.Binding
	GotoMark    key.Binding
	JumpBack    key.Binding
	JumpForward key.Binding

	// Search
	Search       key.Binding
	SearchBack   key.Binding
	NextMatch    key.Binding
	SearchAuthor key.Binding

	// Macros
	Record key.Binding
	Replay key.Binding

	// General
	Open    key.Binding
	Command key.Binding
	Leader  key.Binding
	Help    key.Binding
	Escape  key.Binding
	Quit    key.Binding
}

// DefaultKeyMap returns the bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		// Navigation
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("gg", "first item"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G"),
			key.WithHelp("G", "last item, or item N with a count"),
		),
		Screen: key.NewBinding(
			key.WithKeys("H", "M", "L"),
			key.WithHelp("H/M/L", "screen top/middle/bottom"),
		),
		Group: key.NewBinding(
			key.WithKeys("{", "}", "[", "]"),
			key.WithHelp("{/}", "previous/next group"),
		),
		Find: key.NewBinding(
			key.WithKeys("f", "F", "t", "T"),
			key.WithHelp("f/F/t/T", "find title letter"),
		),
		RepeatFind: key.NewBinding(
			key.WithKeys(";", ","),
			key.WithHelp(";/,", "repeat find"),
		),
		HalfPage: key.NewBinding(
			key.WithKeys("ctrl+d", "ctrl+u"),
			key.WithHelp("ctrl+d/u", "half page down/up"),
		),
		Page: key.NewBinding(
			key.WithKeys("ctrl+f", "ctrl+b", "pgdown", "pgup"),
			key.WithHelp("ctrl+f/b", "page down/up"),
		),
		Scroll: key.NewBinding(
			key.WithKeys("ctrl+e", "ctrl+y"),
			key.WithHelp("ctrl+e/y", "scroll view"),
		),
		Recenter: key.NewBinding(
			key.WithKeys("z"),
			key.WithHelp("zz/zt/zb", "recenter view"),
		),
		FocusLeft: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/←", "focus left pane"),
		),
		FocusRight: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l/→", "focus right pane"),
		),

		// Operators
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d{motion}", "delete"),
		),
		Yank: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y{motion}", "yank"),
		),
		YankPath: key.NewBinding(
			key.WithKeys("Y"),
			key.WithHelp("Y", "yank file path"),
		),
		Change: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("cc", "edit title"),
		),
		AddTag: key.NewBinding(
			key.WithKeys(">"),
			key.WithHelp(">{motion}", "add tag"),
		),
		RemoveTag: key.NewBinding(
			key.WithKeys("<"),
			key.WithHelp("<{motion}", "remove tag"),
		),
		Paste: key.NewBinding(
			key.WithKeys("p", "P"),
			key.WithHelp("p", "paste copies"),
		),
		Register: key.NewBinding(
			key.WithKeys(`"`),
			key.WithHelp(`"{r}`, "use register r"),
		),
		TextObject: key.NewBinding(
			key.WithKeys("i", "a"),
			key.WithHelp("{op}i{b,l,a,t,y,f}", "book, library, author, tag, year or view (a for any tag)"),
		),
		Status: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "cycle read status"),
		),
		Rate: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("{n}R", "rate n stars, R alone steps"),
		),

		// History
		Undo: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "undo"),
		),
		Redo: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "redo"),
		),

		// Visual
		Visual: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "visual"),
		),
		VisualLine: key.NewBinding(
			key.WithKeys("V"),
			key.WithHelp("V", "visual line"),
		),
		VisualBlock: key.NewBinding(
			key.WithKeys("ctrl+v"),
			key.WithHelp("ctrl+v", "visual block"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "toggle item (visual)"),
		),
		SwapEnds: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "swap selection ends"),
		),
		Reselect: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("gv", "reselect last range"),
		),

		// Marks and jumps
		SetMark: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m{a-z}", "set mark"),
		),
		GotoMark: key.NewBinding(
			key.WithKeys("'", "`"),
			key.WithHelp("'{a-z}", "go to mark"),
		),
		JumpBack: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "jump back"),
		),
		JumpForward: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("ctrl+i", "jump forward"),
		),

		// Search
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search forward"),
		),
		SearchBack: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "search backward"),
		),
		NextMatch: key.NewBinding(
			key.WithKeys("n", "N"),
			key.WithHelp("n/N", "next/previous match"),
		),
		SearchAuthor: key.NewBinding(
			key.WithKeys("*", "#"),
			key.WithHelp("*/#", "search author"),
		),

		// Macros
		Record: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q{a-z}", "record macro, q to stop"),
		),
		Replay: key.NewBinding(
			key.WithKeys("@"),
			key.WithHelp("@{a-z}", "replay macro, @@ repeats"),
		),

		// General
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open file / apply filter"),
		),
		Command: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", "command line"),
		),
		Leader: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "leader (/ u r m q ?)"),
		),
		Help: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space ?", "help"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		Quit: key.NewBinding(
			key.WithKeys("Q", "ctrl+c"),
			key.WithHelp("Q", "quit"),
		),
	}
}

// ShortHelp returns keybindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Command, k.Visual, k.Undo, k.Help, k.Quit}
}

// FullHelp returns keybindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		// Navigation
		{k.Up, k.Down, k.Top, k.Bottom, k.Screen, k.Group, k.Find, k.RepeatFind, k.HalfPage, k.Page, k.Scroll, k.Recenter, k.FocusLeft, k.FocusRight},
		// Editing
		{k.Delete, k.Yank, k.YankPath, k.Change, k.AddTag, k.RemoveTag, k.Paste, k.Register, k.TextObject, k.Status, k.Rate, k.Undo, k.Redo},
		// Visual
		{k.Visual, k.VisualLine, k.VisualBlock, k.Toggle, k.SwapEnds, k.Reselect},
		// Marks, search, macros
		{k.SetMark, k.GotoMark, k.JumpBack, k.JumpForward, k.Search, k.SearchBack, k.NextMatch, k.SearchAuthor, k.Record, k.Replay},
		// General
		{k.Open, k.Command, k.Leader, k.Escape, k.Quit},
	}
}

var groupTitles = []string{"Navigation", "Editing", "Visual", "Marks, search and macros", "General"}

// Commands is the ':' reference shown in the help overlay.
var Commands = [][2]string{
	{":q  :w  :wq", "quit, save, save and quit"},
	{":add <title>", "add an item"},
	{":search <query>", "fuzzy search into the quickfix list"},
	{":copen :cclose :cn :cp", "quickfix list"},
	{":cdo d | tag <t>", "run on every quickfix item"},
	{":g/re/d  :g/re/tag <t>", "delete or tag matching items"},
	{":v/re/...", "same, for items that do not match"},
	{":%s/re/new/[g]", "rewrite titles"},
	{":sort <field>", "title, year, year_asc, rating, updated"},
	{":library <name>  :tag <t>  :all", "filter the list"},
	{":earlier 5m  :later 5m", "undo or redo by time"},
	{":undolist :marks :registers :macros", "listings"},
	{":delmarks [abc]", "delete marks"},
	{":cite [apa|mla]  :bibtex", "copy a citation"},
	{":doctor", "engine summary"},
}

// HelpMarkdown renders the full reference as markdown for the help overlay.
func (k KeyMap) HelpMarkdown() string {
	var b strings.Builder
	b.WriteString("# folio keys\n")
	for i, group := range k.FullHelp() {
		fmt.Fprintf(&b, "\n## %s\n\n| key | action |\n|---|---|\n", groupTitles[i])
		for _, binding := range group {
			h := binding.Help()
			fmt.Fprintf(&b, "| `%s` | %s |\n", h.Key, h.Desc)
		}
	}
	b.WriteString("\n## Commands\n\n| command | action |\n|---|---|\n")
	for _, c := range Commands {
		fmt.Fprintf(&b, "| `%s` | %s |\n", c[0], c[1])
	}
	return b.String()
}
