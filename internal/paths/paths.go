// Package paths provides path resolution utilities.
package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// LibraryFile is the database file name used when a directory is given.
const LibraryFile = "library.db"

// ResolveLibraryPath resolves the library database path from user input.
//
// Input normalization:
//   - "~/books/library.db" -> "$HOME/books/library.db"
//   - "/path/to/dir" (an existing directory) -> "/path/to/dir/library.db"
//   - "" -> "library.db"
//   - ":memory:" is returned unchanged
func ResolveLibraryPath(path string) string {
	if path == ":memory:" {
		return path
	}
	if path == "" {
		return LibraryFile
	}
	path = filepath.Clean(ExpandHome(path))

	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return filepath.Join(path, LibraryFile)
	}
	return path
}

// ExpandHome replaces a leading "~" with the user's home directory. The
// path is returned unchanged when the home directory is unknown.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
