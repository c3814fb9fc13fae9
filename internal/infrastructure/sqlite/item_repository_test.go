package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/folio/internal/library"
)

func newTestRepository(t *testing.T) library.Store {
	t.Helper()
	db, err := NewDB(MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db.ItemStore()
}

func testItem(id, title string, year int) library.Item {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return library.Item{
		ID:        id,
		Title:     title,
		Authors:   []string{"Frank Herbert"},
		Year:      year,
		Rating:    4,
		Status:    library.StatusRead,
		Tags:      []string{"scifi"},
		Library:   "books",
		CreatedAt: ts,
		UpdatedAt: ts,
	}
}

func TestItemRepository_UpsertAndLoad(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	item := testItem("a", "Dune", 1965)
	item.FilePath = "/books/dune.epub"
	require.NoError(t, repo.Upsert(ctx, item))

	got, err := repo.Load(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, item, got)
}

func TestItemRepository_UpsertReplaces(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	item := testItem("a", "Dune", 1965)
	require.NoError(t, repo.Upsert(ctx, item))

	item.Title = "Dune Messiah"
	item.Tags = nil
	require.NoError(t, repo.Upsert(ctx, item))

	got, err := repo.Load(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, "Dune Messiah", got.Title)
	require.Empty(t, got.Tags)
}

func TestItemRepository_LoadMissing(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.Load(context.Background(), "missing")
	var nf *library.ItemNotFoundError
	require.True(t, errors.As(err, &nf))
	require.Equal(t, "missing", nf.ID)
}

func TestItemRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	require.NoError(t, repo.Upsert(ctx, testItem("a", "Dune", 1965)))

	require.NoError(t, repo.Delete(ctx, "a"))

	var nf *library.ItemNotFoundError
	require.ErrorAs(t, repo.Delete(ctx, "a"), &nf)
	_, err := repo.Load(ctx, "a")
	require.ErrorAs(t, err, &nf)
}

func TestItemRepository_ListFiltersAndSorts(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	hyperion := testItem("h", "Hyperion", 1989)
	hyperion.Tags = []string{"scifi", "space"}
	paper := testItem("p", "Attention Is All You Need", 2017)
	paper.Library = "papers"
	paper.Tags = []string{"ml"}
	for _, item := range []library.Item{testItem("d", "dune", 1965), hyperion, paper} {
		require.NoError(t, repo.Upsert(ctx, item))
	}

	all, err := repo.List(ctx, library.ListOptions{})
	require.NoError(t, err)
	require.Equal(t, []string{"p", "d", "h"}, ids(all))

	byYear, err := repo.List(ctx, library.ListOptions{SortBy: library.SortYear})
	require.NoError(t, err)
	require.Equal(t, []string{"p", "h", "d"}, ids(byYear))

	books, err := repo.List(ctx, library.ListOptions{Library: "books", SortBy: library.SortYearAsc})
	require.NoError(t, err)
	require.Equal(t, []string{"d", "h"}, ids(books))

	space, err := repo.List(ctx, library.ListOptions{Tag: "space"})
	require.NoError(t, err)
	require.Equal(t, []string{"h"}, ids(space))
}

func TestItemRepository_OrderMatchesSortItems(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	items := []library.Item{
		testItem("1", "Bravo", 2001),
		testItem("2", "alpha", 2001),
		testItem("3", "Charlie", 1999),
		testItem("4", "alpha", 2020),
	}
	for _, item := range items {
		require.NoError(t, repo.Upsert(ctx, item))
	}

	for _, field := range []library.SortField{library.SortTitle, library.SortYear, library.SortYearAsc, library.SortRating} {
		got, err := repo.List(ctx, library.ListOptions{SortBy: field})
		require.NoError(t, err)

		want := append([]library.Item(nil), items...)
		library.SortItems(want, field)
		require.Equal(t, ids(want), ids(got), "sort field %s", field)
	}
}

func ids(items []library.Item) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}
