package search

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/folio/internal/testutil"
)

func TestRank_EmptyQueryKeepsOrder(t *testing.T) {
	items := testutil.Shelf()
	got := Rank("  ", items)
	require.Len(t, got, len(items))
	for i, r := range got {
		require.Equal(t, i, r.Index)
		require.Equal(t, items[i].ID, r.Item.ID)
	}
}

func TestRank_FuzzyMatchesTitleAndAuthor(t *testing.T) {
	items := testutil.Shelf()

	got := Rank("rust", items)
	require.Len(t, got, 2)
	for _, r := range got {
		require.Contains(t, []string{"rust-atomics", "rust-rustaceans"}, r.Item.ID)
	}

	got = Rank("Brooks", items)
	require.Len(t, got, 1)
	require.Equal(t, "mmm", got[0].Item.ID)
	require.NotEmpty(t, got[0].Matched)
}

func TestRank_NoMatch(t *testing.T) {
	require.Empty(t, Rank("qqqq", testutil.Shelf()))
}

func TestContains(t *testing.T) {
	items := testutil.Shelf()
	require.Equal(t, []int{1, 2}, Contains("RUST", items))
	require.Equal(t, []int{3}, Contains("fred", items))
	require.Nil(t, Contains("", items))
	require.Nil(t, Contains("zzz", items))
}
