// Package register implements named registers holding yanked and deleted
// library content. The unnamed register mirrors the last write; the + and
// * registers are linked to the system clipboard.
package register

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/zjrosen/folio/internal/library"
	"github.com/zjrosen/folio/internal/log"
	"github.com/zjrosen/folio/internal/shared"
)

const (
	Unnamed   = '"'
	Clipboard = '+'
	Selection = '*'
)

var (
	ErrInvalidRegister = errors.New("invalid register")
	ErrEmpty           = errors.New("register is empty")
)

// Kind is the shape of a register's content.
type Kind int

const (
	KindSingleItem Kind = iota
	KindMultipleItems
	KindText
	KindPath
)

func (k Kind) String() string {
	switch k {
	case KindSingleItem:
		return "item"
	case KindMultipleItems:
		return "items"
	case KindText:
		return "text"
	case KindPath:
		return "path"
	default:
		return "unknown"
	}
}

// Content is what a register holds. Items is set for the item kinds, Text
// for text and path.
type Content struct {
	Kind  Kind
	Items []library.Item
	Text  string
}

// Items wraps items as SingleItem or MultipleItems depending on count.
func Items(items []library.Item) Content {
	cloned := make([]library.Item, len(items))
	for i, item := range items {
		cloned[i] = item.Clone()
	}
	if len(cloned) == 1 {
		return Content{Kind: KindSingleItem, Items: cloned}
	}
	return Content{Kind: KindMultipleItems, Items: cloned}
}

// Text wraps free text.
func Text(s string) Content {
	return Content{Kind: KindText, Text: s}
}

// Path wraps a file path.
func Path(p string) Content {
	return Content{Kind: KindPath, Text: p}
}

// Plain renders the content as clipboard text: item titles one per line,
// or the text itself.
func (c Content) Plain() string {
	switch c.Kind {
	case KindSingleItem, KindMultipleItems:
		titles := make([]string, len(c.Items))
		for i, item := range c.Items {
			titles[i] = item.Title
		}
		return strings.Join(titles, "\n")
	default:
		return c.Text
	}
}

// Summary is a one-line description used in listings.
func (c Content) Summary() string {
	switch c.Kind {
	case KindSingleItem:
		return fmt.Sprintf("[item] %s", c.Items[0].Title)
	case KindMultipleItems:
		return fmt.Sprintf("[%d items] %s", len(c.Items), firstLine(c.Plain()))
	case KindPath:
		return "[path] " + c.Text
	default:
		return "[text] " + firstLine(c.Text)
	}
}

func (c Content) empty() bool {
	return len(c.Items) == 0 && c.Text == ""
}

// appendTo returns prev followed by c. Items concatenate into
// MultipleItems; anything else concatenates as text.
func (c Content) appendTo(prev Content) Content {
	if prev.empty() {
		return c
	}
	prevItems := prev.Kind == KindSingleItem || prev.Kind == KindMultipleItems
	curItems := c.Kind == KindSingleItem || c.Kind == KindMultipleItems
	if prevItems && curItems {
		merged := append(slices.Clone(prev.Items), c.Items...)
		return Content{Kind: KindMultipleItems, Items: merged}
	}
	return Text(prev.Plain() + "\n" + c.Plain())
}

// Register is one named slot.
type Register struct {
	Content Content
	// Append records whether the last write appended to existing content.
	Append bool
}

// Entry is a named register in a listing.
type Entry struct {
	Name rune
	Register
}

// Valid reports whether r names a register: a-z, A-Z (append), ", +, *.
func Valid(r rune) bool {
	return IsClipboard(r) || r == Unnamed || (r < unicode.MaxASCII && unicode.IsLetter(r))
}

// IsClipboard reports whether r is linked to the system clipboard.
func IsClipboard(r rune) bool {
	return r == Clipboard || r == Selection
}

// Store holds every register.
type Store struct {
	regs      map[rune]Register
	clipboard shared.Clipboard
}

// New creates an empty store. A nil clipboard disables + and * syncing.
func New(clipboard shared.Clipboard) *Store {
	if clipboard == nil {
		clipboard = shared.NoClipboard{}
	}
	return &Store{
		regs:      make(map[rune]Register),
		clipboard: clipboard,
	}
}

// Write stores c under name and mirrors it into the unnamed register.
// An uppercase letter appends to its lowercase register. A zero name means
// the unnamed register.
//
// Clipboard-linked names also push the plain text to the system clipboard.
// A clipboard failure does not undo the write; it is returned so callers
// can surface it.
func (s *Store) Write(name rune, c Content) error {
	if name == 0 {
		name = Unnamed
	}
	if !Valid(name) {
		return fmt.Errorf("%w: %q", ErrInvalidRegister, name)
	}

	appending := unicode.IsUpper(name)
	key := unicode.ToLower(name)
	reg := Register{Content: c}
	if appending {
		reg = Register{Content: c.appendTo(s.regs[key].Content), Append: true}
	}
	s.regs[key] = reg
	if key != Unnamed {
		s.regs[Unnamed] = reg
	}
	log.Debug(log.CatRegister, "register written", "register", string(key), "kind", reg.Content.Kind, "append", appending)

	if IsClipboard(key) {
		if err := s.clipboard.Copy(reg.Content.Plain()); err != nil {
			log.ErrorErr(log.CatRegister, "clipboard write failed", err, "register", string(key))
			return fmt.Errorf("clipboard: %w", err)
		}
	}
	return nil
}

// Get returns the register's content. Uppercase names read their
// lowercase register.
func (s *Store) Get(name rune) (Register, error) {
	if name == 0 {
		name = Unnamed
	}
	if !Valid(name) {
		return Register{}, fmt.Errorf("%w: %q", ErrInvalidRegister, name)
	}
	reg, ok := s.regs[unicode.ToLower(name)]
	if !ok || reg.Content.empty() {
		return Register{}, ErrEmpty
	}
	return reg, nil
}

// ClipboardText returns the system clipboard's text when it holds any.
func (s *Store) ClipboardText() (string, bool) {
	text, err := s.clipboard.Paste()
	if err != nil || text == "" {
		return "", false
	}
	return text, true
}

// List returns every non-empty register ordered by name, unnamed first.
func (s *Store) List() []Entry {
	entries := make([]Entry, 0, len(s.regs))
	for name, reg := range s.regs {
		if reg.Content.empty() {
			continue
		}
		entries = append(entries, Entry{Name: name, Register: reg})
	}
	slices.SortFunc(entries, func(a, b Entry) int {
		switch {
		case a.Name == Unnamed:
			return -1
		case b.Name == Unnamed:
			return 1
		default:
			return int(a.Name) - int(b.Name)
		}
	})
	return entries
}

// Len returns the number of non-empty registers.
func (s *Store) Len() int {
	return len(s.List())
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
