// Package presentation formats library items for command-line output.
package presentation

import (
	"time"

	"github.com/zjrosen/folio/internal/library"
)

// ItemDTO is the JSON shape of a library item.
type ItemDTO struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Authors   []string  `json:"authors"`
	Year      int       `json:"year,omitempty"`
	Rating    int       `json:"rating,omitempty"`
	Status    string    `json:"status"`
	Tags      []string  `json:"tags"`
	Library   string    `json:"library"`
	FilePath  string    `json:"file_path,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FromDomainItem converts an item. Authors and Tags are never null.
func FromDomainItem(item library.Item) ItemDTO {
	authors := item.Authors
	if authors == nil {
		authors = []string{}
	}
	tags := item.Tags
	if tags == nil {
		tags = []string{}
	}
	return ItemDTO{
		ID:        item.ID,
		Title:     item.Title,
		Authors:   authors,
		Year:      item.Year,
		Rating:    item.Rating,
		Status:    string(item.Status),
		Tags:      tags,
		Library:   item.Library,
		FilePath:  item.FilePath,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
}

// FromDomainItems converts a list, keeping its order.
func FromDomainItems(items []library.Item) []ItemDTO {
	dtos := make([]ItemDTO, len(items))
	for i, item := range items {
		dtos[i] = FromDomainItem(item)
	}
	return dtos
}
