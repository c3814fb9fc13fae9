package undo

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/folio/internal/library"
	"github.com/zjrosen/folio/internal/log"
	"github.com/zjrosen/folio/internal/shared"
)

var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// DefaultLimit caps the undo stack when no limit is configured.
const DefaultLimit = 1000

// Entry is one step of history. Action is what applying the entry does,
// i.e. the compensating action for the mutation it describes.
type Entry struct {
	Description string
	Action      Action
	Time        time.Time
}

// History holds the undo and redo stacks. It is owned by a single engine
// and is not safe for concurrent use.
type History struct {
	undo   []Entry
	redo   []Entry
	limit  int
	clock  shared.Clock
	tracer trace.Tracer
}

// Option configures a History.
type Option func(*History)

// WithLimit caps the undo stack. Non-positive values keep the default.
func WithLimit(n int) Option {
	return func(h *History) {
		if n > 0 {
			h.limit = n
		}
	}
}

// WithClock sets the time source for entry timestamps.
func WithClock(c shared.Clock) Option {
	return func(h *History) { h.clock = c }
}

// WithTracer records an undo.apply span for every applied action.
func WithTracer(t trace.Tracer) Option {
	return func(h *History) { h.tracer = t }
}

// NewHistory creates an empty history.
func NewHistory(opts ...Option) *History {
	h := &History{
		limit: DefaultLimit,
		clock: shared.RealClock{},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Push records a compensating action and clears the redo stack.
func (h *History) Push(description string, action Action) {
	h.undo = append(h.undo, Entry{
		Description: description,
		Action:      action,
		Time:        h.clock.Now(),
	})
	h.redo = nil
	if excess := len(h.undo) - h.limit; excess > 0 {
		h.undo = h.undo[excess:]
	}
	log.Debug(log.CatUndo, "pushed", "desc", description, "kind", action.Kind, "items", action.Len())
}

// Do applies action, records its inverse under description, and returns
// how many items were applied. Nothing is recorded when no item could be
// applied. Partial failures record the inverse of what succeeded and return
// the joined error.
func (h *History) Do(ctx context.Context, store library.Store, description string, action Action) (int, error) {
	inverse, err := applyTraced(ctx, h.tracer, store, action)
	if err != nil {
		log.ErrorErr(log.CatUndo, "apply failed", err, "desc", description, "applied", inverse.Len(), "total", action.Len())
	}
	if !inverse.Empty() {
		h.Push(description, inverse)
	}
	return inverse.Len(), err
}

// Undo pops the newest entry, applies it, and moves its inverse onto the
// redo stack with a fresh timestamp. The entry stays in place when nothing
// could be applied.
func (h *History) Undo(ctx context.Context, store library.Store) (Entry, error) {
	return h.step(ctx, store, &h.undo, &h.redo, ErrNothingToUndo)
}

// Redo is Undo run against the redo stack.
func (h *History) Redo(ctx context.Context, store library.Store) (Entry, error) {
	return h.step(ctx, store, &h.redo, &h.undo, ErrNothingToRedo)
}

func (h *History) step(ctx context.Context, store library.Store, from, to *[]Entry, empty error) (Entry, error) {
	if len(*from) == 0 {
		return Entry{}, empty
	}
	entry := (*from)[len(*from)-1]
	*from = (*from)[:len(*from)-1]

	inverse, err := applyTraced(ctx, h.tracer, store, entry.Action)
	if inverse.Empty() && !entry.Action.Empty() {
		*from = append(*from, entry)
		return entry, fmt.Errorf("failed to apply %q: %w", entry.Description, err)
	}
	*to = append(*to, Entry{
		Description: entry.Description,
		Action:      inverse,
		Time:        h.clock.Now(),
	})
	log.Info(log.CatUndo, "applied", "desc", entry.Description, "items", inverse.Len())
	return entry, err
}

// Earlier undoes every entry recorded within d of now and returns how many
// were undone. It stops at the first failure.
func (h *History) Earlier(ctx context.Context, store library.Store, d time.Duration) (int, error) {
	cutoff := h.clock.Now().Add(-d)
	return h.walk(ctx, func() bool {
		return len(h.undo) > 0 && h.undo[len(h.undo)-1].Time.After(cutoff)
	}, func() error {
		_, err := h.Undo(ctx, store)
		return err
	})
}

// Later redoes every entry that was undone within d of now.
func (h *History) Later(ctx context.Context, store library.Store, d time.Duration) (int, error) {
	cutoff := h.clock.Now().Add(-d)
	return h.walk(ctx, func() bool {
		return len(h.redo) > 0 && h.redo[len(h.redo)-1].Time.After(cutoff)
	}, func() error {
		_, err := h.Redo(ctx, store)
		return err
	})
}

func (h *History) walk(ctx context.Context, peek func() bool, step func() error) (int, error) {
	n := 0
	for {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		if !peek() {
			return n, nil
		}
		if err := step(); err != nil {
			return n, err
		}
		n++
	}
}

// Entries returns the undo stack, newest first.
func (h *History) Entries() []Entry {
	out := slices.Clone(h.undo)
	slices.Reverse(out)
	return out
}

// CanUndo reports whether the undo stack is non-empty.
func (h *History) CanUndo() bool {
	return len(h.undo) > 0
}

// CanRedo reports whether the redo stack is non-empty.
func (h *History) CanRedo() bool {
	return len(h.redo) > 0
}

// UndoCount returns the depth of the undo stack.
func (h *History) UndoCount() int {
	return len(h.undo)
}

// RedoCount returns the depth of the redo stack.
func (h *History) RedoCount() int {
	return len(h.redo)
}

// MaxDuration caps the window ParseDuration returns.
const MaxDuration = 365 * 24 * time.Hour

// ParseDuration parses unsigned decimal digits followed by s, m or h.
// Windows longer than MaxDuration are capped to it. Anything else,
// including a sign or a missing or unknown unit, yields zero.
func ParseDuration(s string) time.Duration {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return 0
	}
	digits := s[:len(s)-1]
	if strings.IndexFunc(digits, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
		return 0
	}
	var unit time.Duration
	switch s[len(s)-1] {
	case 's':
		unit = time.Second
	case 'm':
		unit = time.Minute
	case 'h':
		unit = time.Hour
	default:
		return 0
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || n > int64(MaxDuration/unit) {
		return MaxDuration
	}
	return time.Duration(n) * unit
}
