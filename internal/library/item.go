// Package library defines the library item domain and the storage contract
// the command engine works against.
package library

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ReadStatus is the reading progress of an item.
type ReadStatus string

const (
	StatusUnread  ReadStatus = "unread"
	StatusReading ReadStatus = "reading"
	StatusRead    ReadStatus = "read"
	StatusDropped ReadStatus = "dropped"
)

// ParseStatus maps a status name to a ReadStatus.
func ParseStatus(s string) (ReadStatus, bool) {
	switch st := ReadStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusUnread, StatusReading, StatusRead, StatusDropped:
		return st, true
	}
	return "", false
}

// Item is a single book or paper in the library.
type Item struct {
	ID        string
	Title     string
	Authors   []string
	Year      int
	Rating    int
	Status    ReadStatus
	Tags      []string
	Library   string
	FilePath  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewID returns a fresh item identity.
func NewID() string {
	return uuid.NewString()
}

// Clone returns a deep copy of the item. Slices are never shared between
// the copy and the original.
func (i Item) Clone() Item {
	c := i
	c.Authors = slices.Clone(i.Authors)
	c.Tags = slices.Clone(i.Tags)
	return c
}

// HasFile reports whether a file is attached to the item.
func (i Item) HasFile() bool {
	return i.FilePath != ""
}

// FirstAuthor returns the first listed author or "".
func (i Item) FirstAuthor() string {
	if len(i.Authors) == 0 {
		return ""
	}
	return i.Authors[0]
}

// HasTag reports whether the item carries tag.
func (i Item) HasTag(tag string) bool {
	return slices.Contains(i.Tags, tag)
}

// AddTag adds tag if missing. Returns false when the tag was already present.
func (i *Item) AddTag(tag string) bool {
	if tag == "" || i.HasTag(tag) {
		return false
	}
	i.Tags = append(slices.Clone(i.Tags), tag)
	return true
}

// RemoveTag removes tag. Returns false when the tag was absent.
func (i *Item) RemoveTag(tag string) bool {
	idx := slices.Index(i.Tags, tag)
	if idx < 0 {
		return false
	}
	i.Tags = slices.Delete(slices.Clone(i.Tags), idx, idx+1)
	return true
}

// SearchText is the lowercase haystack used by substring search:
// the title followed by the authors.
func (i Item) SearchText() string {
	return strings.ToLower(i.Title + " " + strings.Join(i.Authors, " "))
}

// Blob is the text matched by global line commands: title, authors and tags.
func (i Item) Blob() string {
	return i.Title + " " + strings.Join(i.Authors, " ") + " " + strings.Join(i.Tags, " ")
}
