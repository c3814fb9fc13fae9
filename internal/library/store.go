package library

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
)

// SortField selects list ordering.
type SortField string

const (
	SortTitle   SortField = "title"
	SortYear    SortField = "year"     // newest first
	SortYearAsc SortField = "year_asc" // oldest first
	SortRating  SortField = "rating"
	SortUpdated SortField = "updated"
)

// ParseSortField validates a user supplied sort field.
func ParseSortField(s string) (SortField, bool) {
	switch f := SortField(strings.ToLower(strings.TrimSpace(s))); f {
	case SortTitle, SortYear, SortYearAsc, SortRating, SortUpdated:
		return f, true
	default:
		return "", false
	}
}

// ListOptions filters and orders a List call. Zero values mean no filter
// and title ordering.
type ListOptions struct {
	Library string
	Tag     string
	SortBy  SortField
}

// Matches reports whether item passes the filters in opts.
func (o ListOptions) Matches(item Item) bool {
	if o.Library != "" && item.Library != o.Library {
		return false
	}
	if o.Tag != "" && !item.HasTag(o.Tag) {
		return false
	}
	return true
}

// Store is the persistent item store.
type Store interface {
	// Load returns the item with the given id or an *ItemNotFoundError.
	Load(ctx context.Context, id string) (Item, error)
	// Upsert inserts or replaces the item keyed by its ID.
	Upsert(ctx context.Context, item Item) error
	// Delete removes the item. Deleting a missing item returns *ItemNotFoundError.
	Delete(ctx context.Context, id string) error
	// List returns the items matching opts in the requested order.
	List(ctx context.Context, opts ListOptions) ([]Item, error)
}

// ItemNotFoundError is returned when an item id does not exist.
type ItemNotFoundError struct {
	ID string
}

func (e *ItemNotFoundError) Error() string {
	return fmt.Sprintf("item not found: %s", e.ID)
}

// SortItems orders items in place. Ties fall back to title, then id, so
// the order is stable across reloads.
func SortItems(items []Item, field SortField) {
	byTitle := func(a, b Item) int {
		if c := cmp.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title)); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	}
	slices.SortStableFunc(items, func(a, b Item) int {
		var c int
		switch field {
		case SortYear:
			c = cmp.Compare(b.Year, a.Year)
		case SortYearAsc:
			c = cmp.Compare(a.Year, b.Year)
		case SortRating:
			c = cmp.Compare(b.Rating, a.Rating)
		case SortUpdated:
			c = b.UpdatedAt.Compare(a.UpdatedAt)
		}
		if c != 0 {
			return c
		}
		return byTitle(a, b)
	})
}
