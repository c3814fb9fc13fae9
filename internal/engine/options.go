package engine

import (
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/folio/internal/engine/macro"
	"github.com/zjrosen/folio/internal/engine/register"
	"github.com/zjrosen/folio/internal/engine/undo"
	"github.com/zjrosen/folio/internal/flags"
	"github.com/zjrosen/folio/internal/library"
	"github.com/zjrosen/folio/internal/pubsub"
	"github.com/zjrosen/folio/internal/shared"
)

// GroupBy selects the key { and } group rows by.
type GroupBy string

const (
	GroupByLetter GroupBy = "letter"
	GroupByStatus GroupBy = "status"
)

// Config holds the engine's tunables.
type Config struct {
	// ViewportHeight is the number of visible list rows. H/M/L and page
	// motions are relative to it.
	ViewportHeight int
	JumpListSize   int
	UndoLimit      int
	GroupBy        GroupBy
}

// DefaultConfig returns the defaults used when no config file is present.
func DefaultConfig() Config {
	return Config{
		ViewportHeight: 20,
		JumpListSize:   DefaultJumpListSize,
		UndoLimit:      undo.DefaultLimit,
		GroupBy:        GroupByLetter,
	}
}

// Option configures an Engine.
type Option func(*Engine)

// WithConfig replaces the default config.
func WithConfig(cfg Config) Option {
	return func(e *Engine) { e.cfg = cfg }
}

// WithClipboard links the + and * registers to c.
func WithClipboard(c shared.Clipboard) Option {
	return func(e *Engine) { e.clipboard = c }
}

// WithClock sets the time source for undo timestamps and new items.
func WithClock(c shared.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithTracer traces line commands and undo application.
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) { e.tracer = t }
}

// WithBroker publishes engine events on b.
func WithBroker(b pubsub.Publisher[Event]) Option {
	return func(e *Engine) { e.broker = b }
}

// WithFlags sets the feature flags.
func WithFlags(f *flags.Registry) Option {
	return func(e *Engine) { e.flags = f }
}

// WithMacros shares a macro recorder, e.g. across engine restarts.
func WithMacros(r *macro.Recorder) Option {
	return func(e *Engine) { e.macros = r }
}

// WithRegisters shares a register store.
func WithRegisters(r *register.Store) Option {
	return func(e *Engine) { e.registers = r }
}

// WithFilter sets the list filter applied by the first Reload.
func WithFilter(opts library.ListOptions) Option {
	return func(e *Engine) { e.filter = opts }
}
