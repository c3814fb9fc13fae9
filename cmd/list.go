package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/zjrosen/folio/internal/library"
	"github.com/zjrosen/folio/internal/presentation"
)

var (
	listLibrary string
	listTag     string
	listSort    string
	listJSON    bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the items in the library",
	Long: `Print library items, one per line, or as JSON with --json.

Examples:
  # Everything, newest first
  folio list --sort updated

  # One library, filtered by tag
  folio list --library papers --tag rust

  # Parse specific fields with jq
  folio list --json | jq '.[].title'`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		opts, err := listOptions(listLibrary, listTag, listSort)
		if err != nil {
			return err
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

		return printItems(ctx, cmd.OutOrStdout(), store, opts, listJSON)
	},
}

// listOptions builds the store query from the list flags.
func listOptions(lib, tag, sortBy string) (library.ListOptions, error) {
	opts := library.ListOptions{Library: lib, Tag: tag}
	if sortBy != "" {
		field, ok := library.ParseSortField(sortBy)
		if !ok {
			return opts, fmt.Errorf("unknown sort field %q (title, year, year_asc, rating, updated)", sortBy)
		}
		opts.SortBy = field
	}
	return opts, nil
}

func printItems(ctx context.Context, w io.Writer, store library.Store, opts library.ListOptions, asJSON bool) error {
	items, err := store.List(ctx, opts)
	if err != nil {
		return fmt.Errorf("listing items: %w", err)
	}
	f := presentation.NewFormatter(w)
	dtos := presentation.FromDomainItems(items)
	if asJSON {
		return f.FormatItemsJSON(dtos)
	}
	return f.FormatItemsTable(dtos)
}

func init() {
	listCmd.Flags().StringVarP(&listLibrary, "library", "l", "", "Only items in this library")
	listCmd.Flags().StringVarP(&listTag, "tag", "t", "", "Only items with this tag")
	listCmd.Flags().StringVarP(&listSort, "sort", "s", "", "Sort by title, year, year_asc, rating or updated")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Print JSON")
	rootCmd.AddCommand(listCmd)
}
