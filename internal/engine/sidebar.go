package engine

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/zjrosen/folio/internal/library"
)

// SidebarEntry is a filter shown in the sidebar.
type SidebarEntry struct {
	Label  string
	Filter library.ListOptions
	Count  int
}

// buildSidebar lists "All", then every library, then every tag, each with
// its item count.
func buildSidebar(all []library.Item) []SidebarEntry {
	libraries := make(map[string]int)
	tags := make(map[string]int)
	for _, item := range all {
		if item.Library != "" {
			libraries[item.Library]++
		}
		for _, tag := range item.Tags {
			tags[tag]++
		}
	}

	entries := []SidebarEntry{{Label: "All", Count: len(all)}}
	for _, name := range slices.Sorted(maps.Keys(libraries)) {
		entries = append(entries, SidebarEntry{
			Label:  name,
			Filter: library.ListOptions{Library: name},
			Count:  libraries[name],
		})
	}
	for _, tag := range slices.Sorted(maps.Keys(tags)) {
		entries = append(entries, SidebarEntry{
			Label:  "#" + tag,
			Filter: library.ListOptions{Tag: tag},
			Count:  tags[tag],
		})
	}
	return entries
}

// applyFilter switches the list to opts, keeping the sort order.
func (e *Engine) applyFilter(ctx context.Context, opts library.ListOptions) {
	opts.SortBy = e.filter.SortBy
	e.filter = opts
	e.exitVisual(false)
	e.cursor, e.offset = 0, 0
	e.refresh(ctx)
	e.setStatusf("%s (%d)", describeFilter(opts), len(e.items))
}

func describeFilter(opts library.ListOptions) string {
	switch {
	case opts.Library != "" && opts.Tag != "":
		return fmt.Sprintf("Library: %s, tag: %s", opts.Library, opts.Tag)
	case opts.Library != "":
		return "Library: " + opts.Library
	case opts.Tag != "":
		return "Tag filter: " + opts.Tag
	default:
		return "All items"
	}
}
