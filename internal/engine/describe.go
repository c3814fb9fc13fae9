package engine

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/zjrosen/folio/internal/library"
)

// renameDescription summarizes a title edit word by word, e.g.
// "Rename: Rust [-Atomics-] {+Basics+}". Words are diffed as units by
// mapping each one onto a line.
func renameDescription(oldTitle, newTitle string) string {
	dmp := diffmatchpatch.New()
	oldText := strings.Join(strings.Fields(oldTitle), "\n") + "\n"
	newText := strings.Join(strings.Fields(newTitle), "\n") + "\n"

	a, b, words := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, words)

	var parts []string
	for _, d := range diffs {
		text := strings.TrimSpace(strings.ReplaceAll(d.Text, "\n", " "))
		if text == "" {
			continue
		}
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			parts = append(parts, text)
		case diffmatchpatch.DiffDelete:
			parts = append(parts, "[-"+text+"-]")
		case diffmatchpatch.DiffInsert:
			parts = append(parts, "{+"+text+"+}")
		}
	}
	return "Rename: " + strings.Join(parts, " ")
}

func pluralItems(n int) string {
	if n == 1 {
		return "1 item"
	}
	return fmt.Sprintf("%d items", n)
}

// itemsDescription names a single item by title, or counts several.
func itemsDescription(verb string, items []library.Item) string {
	if len(items) == 1 {
		return fmt.Sprintf("%s %q", verb, items[0].Title)
	}
	return verb + " " + pluralItems(len(items))
}
