// Package undo implements the undo/redo history. Every entry holds one
// Action; applying an Action returns its inverse, so undo and redo are
// the same operation run against opposite stacks.
package undo

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/folio/internal/library"
	"github.com/zjrosen/folio/internal/tracing"
)

// Kind discriminates Action.
type Kind int

const (
	KindUpsert Kind = iota
	KindDelete
	KindBatch
)

func (k Kind) String() string {
	switch k {
	case KindUpsert:
		return "upsert"
	case KindDelete:
		return "delete"
	case KindBatch:
		return "batch"
	default:
		return "unknown"
	}
}

// Action is a reversible store mutation.
type Action struct {
	Kind  Kind
	Items []library.Item
	// Steps is set for KindBatch and applied in order.
	Steps []Action
}

// UpsertItems writes every item.
func UpsertItems(items []library.Item) Action {
	return Action{Kind: KindUpsert, Items: cloneItems(items)}
}

// DeleteItems removes every item by id.
func DeleteItems(items []library.Item) Action {
	return Action{Kind: KindDelete, Items: cloneItems(items)}
}

// Len returns the number of items the action touches.
func (a Action) Len() int {
	if a.Kind != KindBatch {
		return len(a.Items)
	}
	n := 0
	for _, s := range a.Steps {
		n += s.Len()
	}
	return n
}

// Empty reports whether applying the action would do nothing.
func (a Action) Empty() bool {
	return a.Len() == 0
}

// Apply performs a against store and returns the action that reverses what
// was actually applied.
//
// Upsert captures the stored version of each item before writing it. When
// none of the items existed the inverse is DeleteItems; when all did it is
// UpsertItems of the prior versions; a mix yields a batch of both. Delete
// always inverts to UpsertItems of the deleted snapshot.
//
// Items are applied independently. A failing item is skipped, left out of
// the inverse, and its error joined into the returned error.
func Apply(ctx context.Context, store library.Store, a Action) (Action, error) {
	switch a.Kind {
	case KindUpsert:
		return applyUpsert(ctx, store, a.Items)
	case KindDelete:
		return applyDelete(ctx, store, a.Items)
	case KindBatch:
		return applyBatch(ctx, store, a.Steps)
	default:
		return Action{}, fmt.Errorf("unknown action kind %d", a.Kind)
	}
}

func applyUpsert(ctx context.Context, store library.Store, items []library.Item) (Action, error) {
	var (
		priors  []library.Item
		created []library.Item
		errs    []error
	)
	for _, item := range items {
		prior, err := store.Load(ctx, item.ID)
		existed := err == nil
		if err != nil {
			var nf *library.ItemNotFoundError
			if !errors.As(err, &nf) {
				errs = append(errs, fmt.Errorf("failed to load %s: %w", item.ID, err))
				continue
			}
		}
		if err := store.Upsert(ctx, item); err != nil {
			errs = append(errs, fmt.Errorf("failed to save %s: %w", item.ID, err))
			continue
		}
		if existed {
			priors = append(priors, prior)
		} else {
			created = append(created, item.Clone())
		}
	}

	var inverse Action
	switch {
	case len(priors) == 0:
		inverse = DeleteItems(created)
	case len(created) == 0:
		inverse = UpsertItems(priors)
	default:
		inverse = Action{Kind: KindBatch, Steps: []Action{UpsertItems(priors), DeleteItems(created)}}
	}
	return inverse, errors.Join(errs...)
}

func applyDelete(ctx context.Context, store library.Store, items []library.Item) (Action, error) {
	var (
		deleted []library.Item
		errs    []error
	)
	for _, item := range items {
		if err := store.Delete(ctx, item.ID); err != nil {
			errs = append(errs, fmt.Errorf("failed to delete %s: %w", item.ID, err))
			continue
		}
		deleted = append(deleted, item)
	}
	return UpsertItems(deleted), errors.Join(errs...)
}

func applyBatch(ctx context.Context, store library.Store, steps []Action) (Action, error) {
	var (
		inverses []Action
		errs     []error
	)
	for _, step := range steps {
		inv, err := Apply(ctx, store, step)
		if err != nil {
			errs = append(errs, err)
		}
		if !inv.Empty() {
			inverses = append(inverses, inv)
		}
	}
	slices.Reverse(inverses)
	if len(inverses) == 1 {
		return inverses[0], errors.Join(errs...)
	}
	return Action{Kind: KindBatch, Steps: inverses}, errors.Join(errs...)
}

// applyTraced wraps Apply in an undo.apply span.
func applyTraced(ctx context.Context, tracer trace.Tracer, store library.Store, a Action) (Action, error) {
	ctx, span := tracing.Start(ctx, tracer, tracing.SpanUndoApply,
		attribute.String(tracing.AttrActionKind, a.Kind.String()),
		attribute.Int(tracing.AttrItemCount, a.Len()),
	)
	inverse, err := Apply(ctx, store, a)
	span.SetAttributes(attribute.Int(tracing.AttrAppliedCount, inverse.Len()))
	tracing.End(span, err)
	return inverse, err
}

func cloneItems(items []library.Item) []library.Item {
	if items == nil {
		return nil
	}
	out := make([]library.Item, len(items))
	for i, item := range items {
		out[i] = item.Clone()
	}
	return out
}
