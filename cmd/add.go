package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zjrosen/folio/internal/library"
	"github.com/zjrosen/folio/internal/log"
	"github.com/zjrosen/folio/internal/presentation"
	"github.com/zjrosen/folio/internal/shared"
)

// addInput is the item described by the add flags.
type addInput struct {
	Title   string
	Authors []string
	Year    int
	Rating  int
	Status  string
	Tags    []string
	Library string
	File    string
}

var (
	addFlags addInput
	addJSON  bool
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an item to the library",
	Long: `Add a book or paper to the library database. A running folio picks the
new item up on its own when auto_refresh is on.

Examples:
  folio add --title "Rust Atomics and Locks" --author "Mara Bos" --year 2023 --tag rust
  folio add -t "The Mythical Man-Month" -a "Fred Brooks" --library classics --status read
  folio add -t "Paper" --file ~/papers/paper.pdf --json | jq .id`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		provider, err := newTracing(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = provider.Shutdown(ctx) }()

		db, store, err := openLibrary(cfg, provider)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		item, err := addItem(ctx, store, addFlags, shared.RealClock{})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if addJSON {
			return presentation.NewFormatter(out).FormatItemJSON(presentation.FromDomainItem(item))
		}
		_, err = fmt.Fprintf(out, "Added %q (%s)\n", item.Title, item.ID)
		return err
	},
}

// addItem validates in and stores it as a new item.
func addItem(ctx context.Context, store library.Store, in addInput, clock shared.Clock) (library.Item, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return library.Item{}, errors.New("--title is required")
	}
	status := library.StatusUnread
	if in.Status != "" {
		st, ok := library.ParseStatus(in.Status)
		if !ok {
			return library.Item{}, fmt.Errorf("unknown status %q (unread, reading, read, dropped)", in.Status)
		}
		status = st
	}
	if in.Rating < 0 || in.Rating > 5 {
		return library.Item{}, fmt.Errorf("rating must be between 0 and 5, got %d", in.Rating)
	}

	now := clock.Now()
	item := library.Item{
		ID:        library.NewID(),
		Title:     title,
		Authors:   []string{},
		Year:      in.Year,
		Rating:    in.Rating,
		Status:    status,
		Tags:      []string{},
		Library:   in.Library,
		FilePath:  in.File,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, a := range in.Authors {
		if a = strings.TrimSpace(a); a != "" {
			item.Authors = append(item.Authors, a)
		}
	}
	for _, t := range in.Tags {
		item.AddTag(strings.TrimSpace(t))
	}

	if err := store.Upsert(ctx, item); err != nil {
		return library.Item{}, fmt.Errorf("adding item: %w", err)
	}
	log.Info(log.CatDB, "item added", "id", item.ID, "title", item.Title)
	return item, nil
}

func init() {
	f := addCmd.Flags()
	f.StringVarP(&addFlags.Title, "title", "t", "", "Item title (required)")
	f.StringArrayVarP(&addFlags.Authors, "author", "a", nil, "Author (can be repeated)")
	f.IntVarP(&addFlags.Year, "year", "y", 0, "Publication year")
	f.IntVar(&addFlags.Rating, "rating", 0, "Rating from 1 to 5")
	f.StringVar(&addFlags.Status, "status", "", "Read status: unread, reading, read, dropped")
	f.StringArrayVar(&addFlags.Tags, "tag", nil, "Tag (can be repeated)")
	f.StringVarP(&addFlags.Library, "library", "l", "books", "Library name")
	f.StringVarP(&addFlags.File, "file", "f", "", "Path of the attached file")
	f.BoolVar(&addJSON, "json", false, "Print the new item as JSON")
	rootCmd.AddCommand(addCmd)
}
