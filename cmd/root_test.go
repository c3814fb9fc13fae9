package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/folio/internal/config"
	"github.com/zjrosen/folio/internal/engine"
	"github.com/zjrosen/folio/internal/library"
	"github.com/zjrosen/folio/internal/shared"
	"github.com/zjrosen/folio/internal/testutil"
	"github.com/zjrosen/folio/internal/tracing"
)

func TestConfigDefaults_FillMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ui:\n  viewport_height: 12\nengine:\n  group_by: status\n"), 0o600))

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	var c config.Config
	require.NoError(t, v.Unmarshal(&c))
	require.Equal(t, 12, c.UI.ViewportHeight)
	require.Equal(t, "status", c.Engine.GroupBy)
	require.Equal(t, 300*time.Millisecond, c.AutoRefreshDebounce)
	require.Equal(t, 1000, c.Engine.UndoLimit)
	require.True(t, c.UI.ShowSidebar)
	require.NoError(t, config.Validate(c))
}

func TestEngineOptions_RestoresLastLibrary(t *testing.T) {
	c := config.Defaults()
	c.Engine.Clipboard = false
	c.LastLibrary = "classics"

	eng := engine.New(testutil.NewMemoryStore(testutil.Shelf()...), engineOptions(c, tracing.Noop(), nil)...)
	require.NoError(t, eng.Reload(context.Background()))

	require.Len(t, eng.Items(), 1)
	require.Equal(t, "classics", eng.Filter().Library)
	require.Equal(t, 4, eng.Total())
}

func TestAddItem(t *testing.T) {
	store := testutil.NewMemoryStore()
	clock := shared.NewManualClock(testutil.BaseTime)

	item, err := addItem(context.Background(), store, addInput{
		Title:   "  Rust Atomics and Locks ",
		Authors: []string{"Mara Bos", " "},
		Year:    2023,
		Status:  "Reading",
		Tags:    []string{"rust", "rust", "concurrency"},
		Library: "books",
	}, clock)
	require.NoError(t, err)

	stored, err := store.Load(context.Background(), item.ID)
	require.NoError(t, err)
	require.Equal(t, "Rust Atomics and Locks", stored.Title)
	require.Equal(t, []string{"Mara Bos"}, stored.Authors)
	require.Equal(t, []string{"rust", "concurrency"}, stored.Tags)
	require.Equal(t, library.StatusReading, stored.Status)
	require.Equal(t, testutil.BaseTime, stored.CreatedAt)
}

func TestAddItem_Validation(t *testing.T) {
	store := testutil.NewMemoryStore()
	clock := shared.NewManualClock(testutil.BaseTime)
	ctx := context.Background()

	_, err := addItem(ctx, store, addInput{Title: "   "}, clock)
	require.EqualError(t, err, "--title is required")

	_, err = addItem(ctx, store, addInput{Title: "x", Status: "finished"}, clock)
	require.ErrorContains(t, err, `unknown status "finished"`)

	_, err = addItem(ctx, store, addInput{Title: "x", Rating: 6}, clock)
	require.ErrorContains(t, err, "rating must be between 0 and 5")

	require.Zero(t, store.Len())
}

func TestListOptions(t *testing.T) {
	opts, err := listOptions("papers", "rust", "year")
	require.NoError(t, err)
	require.Equal(t, library.ListOptions{Library: "papers", Tag: "rust", SortBy: library.SortYear}, opts)

	_, err = listOptions("", "", "pages")
	require.ErrorContains(t, err, `unknown sort field "pages"`)
}

func TestPrintItems_FromSQLite(t *testing.T) {
	store := testutil.NewSQLiteStore(t)
	ctx := context.Background()
	for _, item := range testutil.Shelf() {
		require.NoError(t, store.Upsert(ctx, item))
	}

	var buf bytes.Buffer
	require.NoError(t, printItems(ctx, &buf, store, library.ListOptions{Tag: "rust", SortBy: library.SortYear}, true))

	var out []struct {
		ID   string   `json:"id"`
		Tags []string `json:"tags"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out, 2)
	require.Equal(t, "rust-atomics", out[0].ID)
	require.Equal(t, "rust-rustaceans", out[1].ID)
}

func TestInitCommand_RefusesToOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "folio", "config.yaml")
	t.Cleanup(func() {
		cfgFile = ""
		viper.Reset()
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs([]string{"init", "--config", path})
	require.NoError(t, rootCmd.Execute())
	require.Contains(t, out.String(), "Wrote "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, config.DefaultConfigTemplate(), string(data))

	rootCmd.SetArgs([]string{"init", "--config", path})
	require.ErrorContains(t, rootCmd.Execute(), "config already exists")
}
