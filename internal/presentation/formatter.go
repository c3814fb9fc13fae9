package presentation

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

const (
	titleColumn  = 40
	authorColumn = 20
)

// Formatter handles output formatting
type Formatter struct {
	writer io.Writer
}

// NewFormatter creates a new formatter
func NewFormatter(writer io.Writer) *Formatter {
	return &Formatter{
		writer: writer,
	}
}

// FormatItemsJSON writes items as an indented JSON array.
func (f *Formatter) FormatItemsJSON(items []ItemDTO) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(items)
}

// FormatItemJSON writes a single item as indented JSON.
func (f *Formatter) FormatItemJSON(item ItemDTO) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(item)
}

// FormatItemsTable writes one aligned row per item: title, first author,
// year, then tags.
func (f *Formatter) FormatItemsTable(items []ItemDTO) error {
	for _, item := range items {
		author := ""
		if len(item.Authors) > 0 {
			author = item.Authors[0]
		}
		year := "    "
		if item.Year > 0 {
			year = fmt.Sprintf("%4d", item.Year)
		}
		line := strings.Join([]string{
			fit(item.Title, titleColumn),
			fit(author, authorColumn),
			year,
			formatTags(item.Tags),
		}, "  ")
		if _, err := fmt.Fprintln(f.writer, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	return nil
}

func fit(s string, w int) string {
	return runewidth.FillRight(runewidth.Truncate(s, w, "…"), w)
}

func formatTags(tags []string) string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = "#" + t
	}
	return strings.Join(out, " ")
}
