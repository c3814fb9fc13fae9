package presentation

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/folio/internal/library"
	"github.com/zjrosen/folio/internal/testutil"
)

func TestFromDomainItem_NilSlicesBecomeEmpty(t *testing.T) {
	dto := FromDomainItem(library.Item{ID: "x", Title: "Untitled", Status: library.StatusUnread})
	require.NotNil(t, dto.Authors)
	require.NotNil(t, dto.Tags)
	require.Equal(t, "unread", dto.Status)
}

func TestFormatItemsJSON(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(&buf)
	require.NoError(t, f.FormatItemsJSON(FromDomainItems(testutil.Shelf())))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 4)
	require.Equal(t, "rust-atomics", decoded[1]["id"])
	require.Equal(t, "/books/atomics.pdf", decoded[1]["file_path"])
	require.NotContains(t, decoded[0], "file_path", "empty paths are omitted")
	require.Equal(t, []any{}, decoded[3]["tags"])
}

func TestFormatItemsTable(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(&buf)
	require.NoError(t, f.FormatItemsTable(FromDomainItems(testutil.Shelf()[:2])))

	lines := bytes.Split(bytes.TrimRight(buf.Bytes(), "\n"), []byte("\n"))
	require.Len(t, lines, 2)
	require.Equal(t,
		"Rust Atomics                              Mara Bos              2023  #rust #concurrency",
		string(lines[1]))
}

func TestFormatItemsTable_TruncatesLongTitles(t *testing.T) {
	var buf bytes.Buffer
	item := testutil.Item("long", "An Extremely Long Title That Keeps Going And Going")
	require.NoError(t, NewFormatter(&buf).FormatItemsTable(FromDomainItems([]library.Item{item})))
	require.Contains(t, buf.String(), "An Extremely Long Title That Keeps Goin…")
}
