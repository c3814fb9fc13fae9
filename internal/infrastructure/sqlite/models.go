package sqlite

import (
	"encoding/json"
	"time"

	"github.com/zjrosen/folio/internal/library"
)

// ItemModel is the database row for the items table. Slices are stored as
// JSON arrays and times as Unix nanoseconds.
type ItemModel struct {
	ID        string
	Title     string
	Authors   string
	Year      int
	Rating    int
	Status    string
	Tags      string
	Library   string
	FilePath  *string // nullable
	CreatedAt int64
	UpdatedAt int64
}

// toItemModel converts a domain item to its row.
func toItemModel(item library.Item) (*ItemModel, error) {
	authors, err := encodeList(item.Authors)
	if err != nil {
		return nil, err
	}
	tags, err := encodeList(item.Tags)
	if err != nil {
		return nil, err
	}

	m := &ItemModel{
		ID:        item.ID,
		Title:     item.Title,
		Authors:   authors,
		Year:      item.Year,
		Rating:    item.Rating,
		Status:    string(item.Status),
		Tags:      tags,
		Library:   item.Library,
		CreatedAt: item.CreatedAt.UnixNano(),
		UpdatedAt: item.UpdatedAt.UnixNano(),
	}
	if m.Status == "" {
		m.Status = string(library.StatusUnread)
	}
	if item.FilePath != "" {
		path := item.FilePath
		m.FilePath = &path
	}
	return m, nil
}

// toDomain converts a row back to a domain item.
func (m *ItemModel) toDomain() (library.Item, error) {
	item := library.Item{
		ID:        m.ID,
		Title:     m.Title,
		Year:      m.Year,
		Rating:    m.Rating,
		Status:    library.ReadStatus(m.Status),
		Library:   m.Library,
		CreatedAt: time.Unix(0, m.CreatedAt).UTC(),
		UpdatedAt: time.Unix(0, m.UpdatedAt).UTC(),
	}
	if m.FilePath != nil {
		item.FilePath = *m.FilePath
	}
	if err := json.Unmarshal([]byte(m.Authors), &item.Authors); err != nil {
		return library.Item{}, err
	}
	if err := json.Unmarshal([]byte(m.Tags), &item.Tags); err != nil {
		return library.Item{}, err
	}
	return item, nil
}

func encodeList(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
