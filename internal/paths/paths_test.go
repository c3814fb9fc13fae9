package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveLibraryPath(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "mine.db")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", "library.db"},
		{"memory", ":memory:", ":memory:"},
		{"directory", dir, filepath.Join(dir, "library.db")},
		{"file path", file, file},
		{"unclean", dir + "/sub/../mine.db", file},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ResolveLibraryPath(tt.in))
		})
	}
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	require.Equal(t, filepath.Join(home, "books", "library.db"), ExpandHome("~/books/library.db"))
	require.Equal(t, home, ExpandHome("~"))
	require.Equal(t, "~other/x", ExpandHome("~other/x"))
	require.Equal(t, "/abs/x", ExpandHome("/abs/x"))

	require.NoError(t, os.MkdirAll(filepath.Join(home, "books"), 0o700))
	require.Equal(t, filepath.Join(home, "books", "library.db"), ResolveLibraryPath("~/books"))
}
