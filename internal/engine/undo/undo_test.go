package undo

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/folio/internal/library"
	"github.com/zjrosen/folio/internal/shared"
	"github.com/zjrosen/folio/internal/testutil"
)

func newHistory(t *testing.T, opts ...Option) (*History, *shared.ManualClock) {
	t.Helper()
	clock := shared.NewManualClock(testutil.BaseTime)
	return NewHistory(append([]Option{WithClock(clock)}, opts...)...), clock
}

// ============================================================================
// Apply
// ============================================================================

func TestApply_UpsertNewInvertsToDelete(t *testing.T) {
	store := testutil.NewMemoryStore()
	x := testutil.Item("x", "New")

	inv, err := Apply(context.Background(), store, UpsertItems([]library.Item{x}))
	require.NoError(t, err)
	require.Equal(t, KindDelete, inv.Kind)
	require.Equal(t, []library.Item{x}, inv.Items)
}

func TestApply_UpsertExistingInvertsToPrior(t *testing.T) {
	prior := testutil.Item("x", "Old")
	store := testutil.NewMemoryStore(prior)
	edited := prior.Clone()
	edited.Title = "New"

	inv, err := Apply(context.Background(), store, UpsertItems([]library.Item{edited}))
	require.NoError(t, err)
	require.Equal(t, KindUpsert, inv.Kind)
	require.Equal(t, []library.Item{prior}, inv.Items)
}

func TestApply_UpsertMixedInvertsToBatch(t *testing.T) {
	prior := testutil.Item("a", "Old")
	store := testutil.NewMemoryStore(prior)
	edited := testutil.Item("a", "Edited")
	fresh := testutil.Item("b", "Fresh")

	inv, err := Apply(context.Background(), store, UpsertItems([]library.Item{edited, fresh}))
	require.NoError(t, err)
	require.Equal(t, KindBatch, inv.Kind)
	require.Equal(t, 2, inv.Len())

	_, err = Apply(context.Background(), store, inv)
	require.NoError(t, err)
	require.Equal(t, map[string]library.Item{"a": prior}, store.Snapshot())
}

func TestApply_DeleteInvertsToUpsert(t *testing.T) {
	x := testutil.Item("x", "Gone", testutil.Tags("t"))
	store := testutil.NewMemoryStore(x)

	inv, err := Apply(context.Background(), store, DeleteItems([]library.Item{x}))
	require.NoError(t, err)
	require.Equal(t, KindUpsert, inv.Kind)
	require.Equal(t, 0, store.Len())

	_, err = Apply(context.Background(), store, inv)
	require.NoError(t, err)
	require.Equal(t, map[string]library.Item{"x": x}, store.Snapshot())
}

func TestApply_PartialFailureKeepsGoing(t *testing.T) {
	items := testutil.Numbered(5)
	store := testutil.NewMemoryStore(items...)
	boom := errors.New("disk full")
	store.FailDelete(items[2].ID, boom)

	inv, err := Apply(context.Background(), store, DeleteItems(items))
	require.ErrorIs(t, err, boom)
	require.Equal(t, 4, inv.Len())
	require.Equal(t, []string{items[2].ID}, store.IDs())
}

func TestApply_LoadErrorSkipsItem(t *testing.T) {
	m := &testutil.MockStore{}
	boom := errors.New("connection reset")
	good := testutil.Item("good", "Good")
	bad := testutil.Item("bad", "Bad")

	m.On("Load", mock.Anything, "bad").Return(library.Item{}, boom)
	m.On("Load", mock.Anything, "good").Return(library.Item{}, &library.ItemNotFoundError{ID: "good"})
	m.On("Upsert", mock.Anything, good).Return(nil)

	inv, err := Apply(context.Background(), m, UpsertItems([]library.Item{bad, good}))
	require.ErrorIs(t, err, boom)
	require.Equal(t, DeleteItems([]library.Item{good}), inv)
	m.AssertExpectations(t)
	m.AssertNotCalled(t, "Upsert", mock.Anything, bad)
}

// ============================================================================
// History
// ============================================================================

func TestHistory_DoUndoRedoDelete(t *testing.T) {
	items := testutil.Numbered(3)
	store := testutil.NewMemoryStore(items...)
	h, _ := newHistory(t)
	ctx := context.Background()

	n, err := h.Do(ctx, store, "Delete 3 items", DeleteItems(items))
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, 0, store.Len())
	require.True(t, h.CanUndo())

	entry, err := h.Undo(ctx, store)
	require.NoError(t, err)
	require.Equal(t, "Delete 3 items", entry.Description)
	require.Equal(t, 3, store.Len())
	for _, item := range items {
		got, err := store.Load(ctx, item.ID)
		require.NoError(t, err)
		require.Equal(t, item, got)
	}
	require.True(t, h.CanRedo())

	_, err = h.Redo(ctx, store)
	require.NoError(t, err)
	require.Equal(t, 0, store.Len())
	require.True(t, h.CanUndo())
	require.False(t, h.CanRedo())
}

func TestHistory_PushClearsRedo(t *testing.T) {
	store := testutil.NewMemoryStore()
	h, _ := newHistory(t)
	ctx := context.Background()

	_, err := h.Do(ctx, store, "add", UpsertItems([]library.Item{testutil.Item("a", "A")}))
	require.NoError(t, err)
	_, err = h.Undo(ctx, store)
	require.NoError(t, err)
	require.Equal(t, 1, h.RedoCount())

	h.Push("other", DeleteItems(nil))
	require.Equal(t, 0, h.RedoCount())
}

func TestHistory_PushedCompensationIsApplied(t *testing.T) {
	dup := testutil.Item("dup", "Alpha (copy)")
	store := testutil.NewMemoryStore(dup)
	h, _ := newHistory(t)
	ctx := context.Background()

	h.Push("Paste 1 item", DeleteItems([]library.Item{dup}))
	_, err := h.Undo(ctx, store)
	require.NoError(t, err)
	require.Equal(t, 0, store.Len())

	_, err = h.Redo(ctx, store)
	require.NoError(t, err)
	require.Equal(t, []string{"dup"}, store.IDs())
}

func TestHistory_EmptyStacks(t *testing.T) {
	h, _ := newHistory(t)
	store := testutil.NewMemoryStore()
	_, err := h.Undo(context.Background(), store)
	require.ErrorIs(t, err, ErrNothingToUndo)
	_, err = h.Redo(context.Background(), store)
	require.ErrorIs(t, err, ErrNothingToRedo)
}

func TestHistory_FailedUndoKeepsEntry(t *testing.T) {
	x := testutil.Item("x", "X")
	store := testutil.NewMemoryStore()
	h, _ := newHistory(t)
	h.Push("Delete x", UpsertItems([]library.Item{x}))

	boom := errors.New("read only")
	store.FailUpsert("x", boom)
	_, err := h.Undo(context.Background(), store)
	require.ErrorIs(t, err, boom)
	require.Equal(t, 1, h.UndoCount())
	require.Equal(t, 0, h.RedoCount())
}

func TestHistory_Limit(t *testing.T) {
	h, _ := newHistory(t, WithLimit(3))
	for i := range 5 {
		h.Push(fmt.Sprintf("e%d", i), DeleteItems(nil))
	}
	entries := h.Entries()
	require.Len(t, entries, 3)
	require.Equal(t, "e4", entries[0].Description)
	require.Equal(t, "e2", entries[2].Description)
}

func TestHistory_RedoEntryHasFreshTimestamp(t *testing.T) {
	store := testutil.NewMemoryStore()
	h, clock := newHistory(t)
	ctx := context.Background()

	_, err := h.Do(ctx, store, "add", UpsertItems([]library.Item{testutil.Item("a", "A")}))
	require.NoError(t, err)
	clock.Advance(time.Minute)
	_, err = h.Undo(ctx, store)
	require.NoError(t, err)

	redoTime := h.redo[0].Time
	require.Equal(t, testutil.BaseTime.Add(time.Minute), redoTime)
}

func TestHistory_EarlierAndLater(t *testing.T) {
	store := testutil.NewMemoryStore()
	h, clock := newHistory(t)
	ctx := context.Background()

	for i := range 3 {
		item := testutil.Item(fmt.Sprintf("i%d", i), "Item")
		_, err := h.Do(ctx, store, "add", UpsertItems([]library.Item{item}))
		require.NoError(t, err)
		clock.Advance(time.Minute)
	}
	// Entries at t=0, 1m, 2m; now is 3m. A 150s window covers 1m and 2m.
	n, err := h.Earlier(ctx, store, 150*time.Second)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, []string{"i0"}, store.IDs())

	clock.Advance(time.Hour)
	n, err = h.Later(ctx, store, time.Minute)
	require.NoError(t, err)
	require.Equal(t, 0, n)

	n, err = h.Later(ctx, store, 2*time.Hour)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, 3, store.Len())
}

func TestParseDuration(t *testing.T) {
	cases := map[string]time.Duration{
		"10s":                   10 * time.Second,
		"5m":                    5 * time.Minute,
		"2h":                    2 * time.Hour,
		" 3m":                   3 * time.Minute,
		"5d":                    0,
		"m":                     0,
		"":                      0,
		"xm":                    0,
		"-1h":                   0,
		"+5m":                   0,
		"1_0m":                  0,
		"10":                    0,
		"8760h":                 MaxDuration,
		"8761h":                 MaxDuration,
		"99999999999999999999s": MaxDuration,
		"9223372036854775807h":  MaxDuration,
	}
	for in, want := range cases {
		require.Equal(t, want, ParseDuration(in), "input %q", in)
	}
}

// ============================================================================
// Properties
// ============================================================================

func itemGen() *rapid.Generator[library.Item] {
	return rapid.Custom(func(t *rapid.T) library.Item {
		id := rapid.SampledFrom([]string{"a", "b", "c", "d", "e"}).Draw(t, "id")
		return testutil.Item(id, rapid.StringMatching(`[A-Z][a-z]{0,8}`).Draw(t, "title"),
			testutil.Year(rapid.IntRange(1900, 2030).Draw(t, "year")),
			testutil.Tags(rapid.SliceOfN(rapid.StringMatching(`[a-z]{1,5}`), 0, 3).Draw(t, "tags")...),
		)
	})
}

func uniqueByID(items []library.Item) []library.Item {
	seen := make(map[string]bool)
	var out []library.Item
	for _, item := range items {
		if !seen[item.ID] {
			seen[item.ID] = true
			out = append(out, item)
		}
	}
	return out
}

func TestProperty_DoThenUndoRestoresStore(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		initial := uniqueByID(rapid.SliceOfN(itemGen(), 0, 5).Draw(rt, "initial"))
		store := testutil.NewMemoryStore(initial...)
		before := store.Snapshot()
		ctx := context.Background()

		var action Action
		if rapid.Bool().Draw(rt, "delete") && len(initial) > 0 {
			n := rapid.IntRange(1, len(initial)).Draw(rt, "n")
			action = DeleteItems(initial[:n])
		} else {
			action = UpsertItems(uniqueByID(rapid.SliceOfN(itemGen(), 1, 5).Draw(rt, "upserts")))
		}

		h := NewHistory()
		_, err := h.Do(ctx, store, "op", action)
		require.NoError(rt, err)
		_, err = h.Undo(ctx, store)
		require.NoError(rt, err)
		require.Equal(rt, before, store.Snapshot())
	})
}

func TestProperty_UndoRedoRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		store := testutil.NewMemoryStore()
		h := NewHistory()
		ctx := context.Background()

		ops := rapid.IntRange(1, 6).Draw(rt, "ops")
		for range ops {
			batch := uniqueByID(rapid.SliceOfN(itemGen(), 1, 3).Draw(rt, "batch"))
			_, err := h.Do(ctx, store, "op", UpsertItems(batch))
			require.NoError(rt, err)
		}
		after := store.Snapshot()

		for range ops {
			_, err := h.Undo(ctx, store)
			require.NoError(rt, err)
		}
		require.Equal(rt, 0, store.Len())

		for range ops {
			_, err := h.Redo(ctx, store)
			require.NoError(rt, err)
		}
		require.Equal(rt, after, store.Snapshot())
	})
}
