package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/folio/internal/engine/register"
	"github.com/zjrosen/folio/internal/library"
	"github.com/zjrosen/folio/internal/testutil"
)

func TestTextObject_Resolve(t *testing.T) {
	shelf := testutil.Shelf()
	tests := []struct {
		name   string
		cur    int
		obj    rune
		around bool
		want   []int
	}{
		{name: "book is the current row", cur: 2, obj: 'b', want: []int{2}},
		{name: "library", cur: 0, obj: 'l', want: []int{0, 1, 2}},
		{name: "other library", cur: 3, obj: 'l', want: []int{3}},
		{name: "author", cur: 1, obj: 'a', want: []int{1}},
		{name: "year", cur: 3, obj: 'y', want: []int{3}},
		{name: "inner tag needs every tag", cur: 1, obj: 't', want: []int{1}},
		{name: "around tag takes any tag", cur: 1, obj: 't', around: true, want: []int{1, 2}},
		{name: "untagged item has no tag object", cur: 3, obj: 't'},
		{name: "whole view", cur: 0, obj: 'f', want: []int{0, 1, 2, 3}},
		{name: "unknown object", cur: 0, obj: 'x'},
		{name: "cursor out of range", cur: 4, obj: 'b'},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, textObject(shelf, tt.cur, tt.obj, tt.around))
		})
	}
}

func TestTextObject_YearlessItemHasNoYear(t *testing.T) {
	items := []library.Item{testutil.Item("a", "A"), testutil.Item("b", "B")}
	require.Nil(t, textObject(items, 0, 'y', false))
}

func TestTextObject_DeleteInnerAuthor(t *testing.T) {
	h := newHarness(t, []library.Item{
		testutil.Item("alpha", "Alpha", testutil.Authors("Ann Lee")),
		testutil.Item("beta", "Beta", testutil.Authors("Bo Park", "Ann Lee")),
		testutil.Item("delta", "Delta", testutil.Authors("Cid Moss")),
		testutil.Item("gamma", "Gamma", testutil.Authors("Ann Lee")),
	})
	before := h.store.Snapshot()

	h.press("d", "i", "a")
	require.Equal(t, ModeNormal, h.e.Mode())
	require.Empty(t, h.e.Echo())
	require.Equal(t, "Deleted 3 items", h.e.Status())
	require.Equal(t, []string{"Delta"}, h.titles())
	require.Equal(t, 1, h.e.History().UndoCount())

	h.press("u")
	require.Equal(t, before, h.store.Snapshot())
}

func TestTextObject_YankInnerLibrary(t *testing.T) {
	h := newHarness(t, testutil.Shelf())
	h.press("y", "i", "l")
	require.Equal(t, "Yanked 3 items", h.e.Status())
	require.Zero(t, h.e.History().UndoCount())

	reg, err := h.e.Registers().Get(register.Unnamed)
	require.NoError(t, err)
	require.Equal(t, register.KindMultipleItems, reg.Content.Kind)
	ids := make([]string, len(reg.Content.Items))
	for i, item := range reg.Content.Items {
		ids[i] = item.ID
	}
	require.Equal(t, []string{"go", "rust-atomics", "rust-rustaceans"}, ids)
}

func TestTextObject_InnerAndAroundTag(t *testing.T) {
	h := newHarness(t, testutil.Shelf())
	h.press("j", "y", "i", "t")
	require.Equal(t, "Yanked 1 item", h.e.Status())

	h.press("y", "a", "t")
	require.Equal(t, "Yanked 2 items", h.e.Status())
}

func TestTextObject_NothingToApply(t *testing.T) {
	h := newHarness(t, testutil.Shelf())
	before := h.store.Snapshot()

	h.press("G", "d", "i", "t")
	require.Equal(t, "No text object 't' here", h.e.Status())
	require.Equal(t, before, h.store.Snapshot())
	require.Equal(t, OpNone, h.e.state.Operator)

	h.press("d", "a", "esc")
	require.Equal(t, ModeNormal, h.e.Mode())
	require.Empty(t, h.e.Echo())
	require.Equal(t, before, h.store.Snapshot())
}
