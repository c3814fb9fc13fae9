package register

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/folio/internal/library"
	"github.com/zjrosen/folio/internal/shared"
	"github.com/zjrosen/folio/internal/testutil"
)

func TestValid(t *testing.T) {
	for _, r := range []rune{'a', 'z', 'A', 'Z', '"', '+', '*'} {
		require.True(t, Valid(r), "expected %q valid", r)
	}
	for _, r := range []rune{'0', '9', '-', ' ', 'é', 0} {
		require.False(t, Valid(r), "expected %q invalid", r)
	}
}

func TestItems_Kind(t *testing.T) {
	one := Items([]library.Item{testutil.Item("a", "Alpha")})
	require.Equal(t, KindSingleItem, one.Kind)

	two := Items([]library.Item{testutil.Item("a", "Alpha"), testutil.Item("b", "Beta")})
	require.Equal(t, KindMultipleItems, two.Kind)
	require.Equal(t, "Alpha\nBeta", two.Plain())
}

func TestItems_ClonesInput(t *testing.T) {
	src := []library.Item{testutil.Item("a", "Alpha", testutil.Tags("x"))}
	c := Items(src)
	src[0].Tags[0] = "mutated"
	require.Equal(t, []string{"x"}, c.Items[0].Tags)
}

func TestStore_WriteMirrorsUnnamed(t *testing.T) {
	s := New(nil)
	require.NoError(t, s.Write('b', Items([]library.Item{testutil.Item("a", "Alpha")})))

	b, err := s.Get('b')
	require.NoError(t, err)
	require.Equal(t, "Alpha", b.Content.Items[0].Title)

	unnamed, err := s.Get(Unnamed)
	require.NoError(t, err)
	require.Equal(t, b, unnamed)

	// Zero name is the unnamed register.
	zero, err := s.Get(0)
	require.NoError(t, err)
	require.Equal(t, b, zero)
}

func TestStore_UppercaseAppends(t *testing.T) {
	s := New(nil)
	require.NoError(t, s.Write('a', Items([]library.Item{testutil.Item("1", "One")})))
	require.NoError(t, s.Write('A', Items([]library.Item{testutil.Item("2", "Two")})))

	reg, err := s.Get('a')
	require.NoError(t, err)
	require.True(t, reg.Append)
	require.Equal(t, KindMultipleItems, reg.Content.Kind)
	require.Len(t, reg.Content.Items, 2)

	upper, err := s.Get('A')
	require.NoError(t, err)
	require.Equal(t, reg, upper)
}

func TestStore_AppendMixedKindsBecomesText(t *testing.T) {
	s := New(nil)
	require.NoError(t, s.Write('a', Items([]library.Item{testutil.Item("1", "One")})))
	require.NoError(t, s.Write('A', Path("/tmp/x.pdf")))

	reg, err := s.Get('a')
	require.NoError(t, err)
	require.Equal(t, KindText, reg.Content.Kind)
	require.Equal(t, "One\n/tmp/x.pdf", reg.Content.Text)
}

func TestStore_AppendToEmpty(t *testing.T) {
	s := New(nil)
	require.NoError(t, s.Write('Q', Text("hello")))
	reg, err := s.Get('q')
	require.NoError(t, err)
	require.Equal(t, Text("hello"), reg.Content)
}

func TestStore_GetErrors(t *testing.T) {
	s := New(nil)
	_, err := s.Get('a')
	require.ErrorIs(t, err, ErrEmpty)

	_, err = s.Get('1')
	require.ErrorIs(t, err, ErrInvalidRegister)

	require.ErrorIs(t, s.Write('#', Text("x")), ErrInvalidRegister)
}

func TestStore_ClipboardSync(t *testing.T) {
	cb := &shared.MockClipboard{}
	s := New(cb)

	items := []library.Item{testutil.Item("a", "Alpha"), testutil.Item("b", "Beta")}
	require.NoError(t, s.Write(Clipboard, Items(items)))
	require.Equal(t, "Alpha\nBeta", cb.Text)

	// Named registers never touch the clipboard.
	require.NoError(t, s.Write('c', Text("other")))
	require.Equal(t, "Alpha\nBeta", cb.Text)
}

func TestStore_ClipboardFailureKeepsWrite(t *testing.T) {
	boom := errors.New("no display")
	s := New(&shared.MockClipboard{Err: boom})

	err := s.Write(Selection, Text("kept"))
	require.ErrorIs(t, err, boom)

	reg, getErr := s.Get(Selection)
	require.NoError(t, getErr)
	require.Equal(t, "kept", reg.Content.Text)
}

func TestStore_ClipboardText(t *testing.T) {
	cb := &shared.MockClipboard{}
	s := New(cb)

	_, ok := s.ClipboardText()
	require.False(t, ok)

	cb.Text = "from outside"
	text, ok := s.ClipboardText()
	require.True(t, ok)
	require.Equal(t, "from outside", text)

	cb.Err = errors.New("gone")
	_, ok = s.ClipboardText()
	require.False(t, ok)
}

func TestStore_List(t *testing.T) {
	s := New(nil)
	require.NoError(t, s.Write('c', Text("c")))
	require.NoError(t, s.Write('a', Text("a")))

	entries := s.List()
	require.Len(t, entries, 3)
	require.Equal(t, rune(Unnamed), entries[0].Name)
	require.Equal(t, 'a', entries[1].Name)
	require.Equal(t, 'c', entries[2].Name)
	require.Equal(t, 3, s.Len())
}

func TestContent_Summary(t *testing.T) {
	require.Equal(t, "[item] Alpha", Items([]library.Item{testutil.Item("a", "Alpha")}).Summary())
	require.Equal(t, "[2 items] Alpha",
		Items([]library.Item{testutil.Item("a", "Alpha"), testutil.Item("b", "Beta")}).Summary())
	require.Equal(t, "[path] /x", Path("/x").Summary())
	require.Equal(t, "[text] first", Text("first\nsecond").Summary())
}
