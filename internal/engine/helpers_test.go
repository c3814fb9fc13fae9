package engine

import (
	"context"
	"testing"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/folio/internal/library"
	"github.com/zjrosen/folio/internal/shared"
	"github.com/zjrosen/folio/internal/testutil"
)

var namedKeys = map[string]tea.KeyType{
	"esc":       tea.KeyEsc,
	"enter":     tea.KeyEnter,
	"tab":       tea.KeyTab,
	"backspace": tea.KeyBackspace,
	"ctrl+a":    tea.KeyCtrlA,
	"ctrl+d":    tea.KeyCtrlD,
	"ctrl+e":    tea.KeyCtrlE,
	"ctrl+o":    tea.KeyCtrlO,
	"ctrl+r":    tea.KeyCtrlR,
	"ctrl+u":    tea.KeyCtrlU,
	"ctrl+v":    tea.KeyCtrlV,
	"ctrl+y":    tea.KeyCtrlY,
}

// key builds the KeyMsg for a key name as bubbletea reports it.
func key(name string) tea.KeyMsg {
	if t, ok := namedKeys[name]; ok {
		return tea.KeyMsg{Type: t}
	}
	if name == " " {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	r, _ := utf8.DecodeRuneInString(name)
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

type harness struct {
	t     *testing.T
	ctx   context.Context
	e     *Engine
	store *testutil.MemoryStore
	clock *shared.ManualClock
}

func newHarness(t *testing.T, items []library.Item, opts ...Option) *harness {
	t.Helper()
	store := testutil.NewMemoryStore(items...)
	clock := shared.NewManualClock(testutil.BaseTime)
	opts = append([]Option{WithClock(clock)}, opts...)
	e := New(store, opts...)
	require.NoError(t, e.Reload(context.Background()))
	return &harness{t: t, ctx: context.Background(), e: e, store: store, clock: clock}
}

// press sends each named key through Handle.
func (h *harness) press(keys ...string) {
	h.t.Helper()
	for _, k := range keys {
		h.e.Handle(h.ctx, key(k))
	}
}

// typeKeys sends every character of s as its own key.
func (h *harness) typeKeys(s string) {
	h.t.Helper()
	for _, r := range s {
		h.press(string(r))
	}
}

// command types a full ':' line and submits it.
func (h *harness) command(line string) {
	h.t.Helper()
	h.press(":")
	require.Equal(h.t, ModeCommand, h.e.Mode())
	h.typeKeys(line)
	h.press("enter")
}

func (h *harness) titles() []string {
	out := make([]string, len(h.e.Items()))
	for i, item := range h.e.Items() {
		out[i] = item.Title
	}
	return out
}
