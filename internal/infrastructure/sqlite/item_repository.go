package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/folio/internal/library"
	"github.com/zjrosen/folio/internal/tracing"
)

// itemColumns is the list of columns to select for item queries.
const itemColumns = `id, title, authors, year, rating, status, tags, library, file_path, created_at, updated_at`

// itemRepository implements library.Store using SQLite.
type itemRepository struct {
	db     *sql.DB
	tracer trace.Tracer
}

// newItemRepository creates a new itemRepository instance.
func newItemRepository(db *sql.DB, tracer trace.Tracer) *itemRepository {
	return &itemRepository{db: db, tracer: tracing.OrNoop(tracer)}
}

// Ensure itemRepository implements library.Store.
var _ library.Store = (*itemRepository)(nil)

// scanItem scans a row into an ItemModel.
func scanItem(scanner interface{ Scan(...any) error }) (*ItemModel, error) {
	var model ItemModel
	err := scanner.Scan(
		&model.ID, &model.Title, &model.Authors, &model.Year, &model.Rating,
		&model.Status, &model.Tags, &model.Library, &model.FilePath,
		&model.CreatedAt, &model.UpdatedAt,
	)
	return &model, err
}

// Load retrieves an item by id.
func (r *itemRepository) Load(ctx context.Context, id string) (item library.Item, err error) {
	ctx, span := tracing.Start(ctx, r.tracer, tracing.SpanStorePrefix+"load", attribute.String(tracing.AttrItemID, id))
	defer func() { tracing.End(span, ignoreNotFound(err)) }()

	row := r.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id)
	model, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return library.Item{}, &library.ItemNotFoundError{ID: id}
	}
	if err != nil {
		return library.Item{}, fmt.Errorf("failed to load item: %w", err)
	}
	item, err = model.toDomain()
	if err != nil {
		return library.Item{}, fmt.Errorf("failed to decode item %s: %w", id, err)
	}
	return item, nil
}

// Upsert inserts the item or replaces every column of an existing row.
func (r *itemRepository) Upsert(ctx context.Context, item library.Item) (err error) {
	ctx, span := tracing.Start(ctx, r.tracer, tracing.SpanStorePrefix+"upsert", attribute.String(tracing.AttrItemID, item.ID))
	defer func() { tracing.End(span, err) }()

	model, err := toItemModel(item)
	if err != nil {
		return fmt.Errorf("failed to encode item: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO items (`+itemColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title, authors = excluded.authors, year = excluded.year,
			rating = excluded.rating, status = excluded.status, tags = excluded.tags,
			library = excluded.library, file_path = excluded.file_path,
			created_at = excluded.created_at, updated_at = excluded.updated_at`,
		model.ID, model.Title, model.Authors, model.Year, model.Rating,
		model.Status, model.Tags, model.Library, model.FilePath,
		model.CreatedAt, model.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert item: %w", err)
	}
	return nil
}

// Delete removes an item by id.
func (r *itemRepository) Delete(ctx context.Context, id string) (err error) {
	ctx, span := tracing.Start(ctx, r.tracer, tracing.SpanStorePrefix+"delete", attribute.String(tracing.AttrItemID, id))
	defer func() { tracing.End(span, err) }()

	result, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return &library.ItemNotFoundError{ID: id}
	}
	return nil
}

// List returns the items matching opts.
func (r *itemRepository) List(ctx context.Context, opts library.ListOptions) (items []library.Item, err error) {
	ctx, span := tracing.Start(ctx, r.tracer, tracing.SpanStorePrefix+"list")
	defer func() {
		span.SetAttributes(attribute.Int(tracing.AttrItemCount, len(items)))
		tracing.End(span, err)
	}()

	query := `SELECT ` + itemColumns + ` FROM items WHERE 1 = 1`
	var args []any
	if opts.Library != "" {
		query += ` AND library = ?`
		args = append(args, opts.Library)
	}
	if opts.Tag != "" {
		query += ` AND EXISTS (SELECT 1 FROM json_each(items.tags) WHERE json_each.value = ?)`
		args = append(args, opts.Tag)
	}
	query += ` ORDER BY ` + orderBy(opts.SortBy)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		model, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		item, err := model.toDomain()
		if err != nil {
			return nil, fmt.Errorf("failed to decode item %s: %w", model.ID, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}
	return items, nil
}

// orderBy mirrors library.SortItems so SQL and in-memory ordering agree.
func orderBy(field library.SortField) string {
	const tiebreak = `lower(title) ASC, id ASC`
	switch field {
	case library.SortYear:
		return `year DESC, ` + tiebreak
	case library.SortYearAsc:
		return `year ASC, ` + tiebreak
	case library.SortRating:
		return `rating DESC, ` + tiebreak
	case library.SortUpdated:
		return `updated_at DESC, ` + tiebreak
	default:
		return tiebreak
	}
}

func ignoreNotFound(err error) error {
	var nf *library.ItemNotFoundError
	if errors.As(err, &nf) {
		return nil
	}
	return err
}
