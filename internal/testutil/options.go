package testutil

import (
	"time"

	"github.com/zjrosen/folio/internal/library"
)

// BaseTime is the creation time given to every built item.
var BaseTime = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

// ItemOption customizes an item built by Item or Builder.WithItem.
type ItemOption func(*library.Item)

// Authors sets the authors.
func Authors(names ...string) ItemOption {
	return func(i *library.Item) { i.Authors = names }
}

// Year sets the publication year.
func Year(y int) ItemOption {
	return func(i *library.Item) { i.Year = y }
}

// Rating sets the rating.
func Rating(r int) ItemOption {
	return func(i *library.Item) { i.Rating = r }
}

// Tags sets the tags.
func Tags(tags ...string) ItemOption {
	return func(i *library.Item) { i.Tags = tags }
}

// InLibrary sets the library name.
func InLibrary(name string) ItemOption {
	return func(i *library.Item) { i.Library = name }
}

// File attaches a file path.
func File(path string) ItemOption {
	return func(i *library.Item) { i.FilePath = path }
}

// Status sets the read status.
func Status(s library.ReadStatus) ItemOption {
	return func(i *library.Item) { i.Status = s }
}

// Item builds a single item with defaults: unread, in the "books" library,
// created and updated at BaseTime.
func Item(id, title string, opts ...ItemOption) library.Item {
	item := library.Item{
		ID:        id,
		Title:     title,
		Authors:   []string{},
		Tags:      []string{},
		Status:    library.StatusUnread,
		Library:   "books",
		CreatedAt: BaseTime,
		UpdatedAt: BaseTime,
	}
	for _, opt := range opts {
		opt(&item)
	}
	return item
}
