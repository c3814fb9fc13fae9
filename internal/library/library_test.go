package library_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/folio/internal/library"
	"github.com/zjrosen/folio/internal/testutil"
)

func TestItem_CloneDoesNotShareSlices(t *testing.T) {
	item := testutil.Item("a", "Dune", testutil.Authors("Frank Herbert"), testutil.Tags("scifi"))
	clone := item.Clone()
	clone.Tags[0] = "fantasy"
	clone.Authors[0] = "Brian Herbert"

	require.Equal(t, []string{"scifi"}, item.Tags)
	require.Equal(t, []string{"Frank Herbert"}, item.Authors)
}

func TestItem_Tags(t *testing.T) {
	item := testutil.Item("a", "Dune", testutil.Tags("scifi"))
	original := item.Tags

	require.False(t, item.AddTag("scifi"))
	require.False(t, item.AddTag(""))
	require.True(t, item.AddTag("classic"))
	require.Equal(t, []string{"scifi", "classic"}, item.Tags)

	require.True(t, item.RemoveTag("scifi"))
	require.False(t, item.RemoveTag("scifi"))
	require.Equal(t, []string{"classic"}, item.Tags)
	require.Equal(t, []string{"scifi"}, original)
}

func TestItem_Text(t *testing.T) {
	item := testutil.Item("a", "Rust Atomics", testutil.Authors("Mara Bos"), testutil.Tags("rust"))
	require.Equal(t, "rust atomics mara bos", item.SearchText())
	require.Equal(t, "Rust Atomics Mara Bos rust", item.Blob())
	require.Equal(t, "Mara Bos", item.FirstAuthor())
	require.Empty(t, testutil.Item("b", "Anon").FirstAuthor())
}

func TestParseStatus(t *testing.T) {
	st, ok := library.ParseStatus(" Reading ")
	require.True(t, ok)
	require.Equal(t, library.StatusReading, st)

	_, ok = library.ParseStatus("finished")
	require.False(t, ok)
}

func TestParseSortField(t *testing.T) {
	f, ok := library.ParseSortField(" Year_Asc ")
	require.True(t, ok)
	require.Equal(t, library.SortYearAsc, f)

	_, ok = library.ParseSortField("frecency")
	require.False(t, ok)
}

func TestSortItems(t *testing.T) {
	older := testutil.Item("1", "b", testutil.Year(1990), testutil.Rating(5))
	newer := testutil.Item("2", "a", testutil.Year(2020), testutil.Rating(3))
	newer.UpdatedAt = testutil.BaseTime.Add(time.Hour)
	tie := testutil.Item("0", "a", testutil.Year(2020), testutil.Rating(3))

	items := []library.Item{older, newer, tie}
	library.SortItems(items, library.SortTitle)
	require.Equal(t, []string{"0", "2", "1"}, []string{items[0].ID, items[1].ID, items[2].ID})

	library.SortItems(items, library.SortRating)
	require.Equal(t, "1", items[0].ID)

	library.SortItems(items, library.SortUpdated)
	require.Equal(t, "2", items[0].ID)
}

func TestListOptions_Matches(t *testing.T) {
	item := testutil.Item("a", "Dune", testutil.Tags("scifi"), testutil.InLibrary("books"))
	require.True(t, library.ListOptions{}.Matches(item))
	require.True(t, library.ListOptions{Library: "books", Tag: "scifi"}.Matches(item))
	require.False(t, library.ListOptions{Library: "papers"}.Matches(item))
	require.False(t, library.ListOptions{Tag: "fantasy"}.Matches(item))
}

func TestCachedStore_ServesFromCacheAndInvalidatesOnWrite(t *testing.T) {
	ctx := context.Background()
	backing := testutil.NewMemoryStore(testutil.Item("a", "Dune"))
	store := library.NewCachedStore(backing, false)

	got, err := store.Load(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, "Dune", got.Title)

	// A write that bypasses the cache is not seen until invalidated.
	require.NoError(t, backing.Upsert(ctx, testutil.Item("a", "Dune Messiah")))
	got, err = store.Load(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, "Dune", got.Title)

	require.NoError(t, store.Invalidate(ctx))
	got, err = store.Load(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, "Dune Messiah", got.Title)

	require.NoError(t, store.Upsert(ctx, testutil.Item("a", "Children of Dune")))
	got, err = store.Load(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, "Children of Dune", got.Title)

	require.NoError(t, store.Delete(ctx, "a"))
	_, err = store.Load(ctx, "a")
	var nf *library.ItemNotFoundError
	require.ErrorAs(t, err, &nf)
}
