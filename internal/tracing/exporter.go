package tracing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// FileExporter appends one SpanRecord per line to a trace file.
type FileExporter struct {
	mu  sync.Mutex
	w   io.WriteCloser
	enc *json.Encoder
}

// NewFileExporter opens path for appending, creating parent directories.
func NewFileExporter(path string) (*FileExporter, error) {
	path = filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create trace directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600) // #nosec G304 -- path comes from config
	if err != nil {
		return nil, fmt.Errorf("open trace file: %w", err)
	}
	return &FileExporter{w: f, enc: json.NewEncoder(f)}, nil
}

// ExportSpans implements sdktrace.SpanExporter.
func (e *FileExporter) ExportSpans(_ context.Context, spans []sdktrace.ReadOnlySpan) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.w == nil {
		return nil
	}
	for _, span := range spans {
		if err := e.enc.Encode(NewSpanRecord(span)); err != nil {
			return fmt.Errorf("encode span %s: %w", span.Name(), err)
		}
	}
	return nil
}

// Shutdown closes the file. Later exports are dropped.
func (e *FileExporter) Shutdown(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.w == nil {
		return nil
	}
	err := e.w.Close()
	e.w, e.enc = nil, nil
	return err
}

// SpanRecord is one line of the trace file.
type SpanRecord struct {
	Trace      string    `json:"trace"`
	Span       string    `json:"span"`
	Parent     string    `json:"parent,omitempty"`
	Name       string    `json:"name"`
	Start      time.Time `json:"start"`
	DurationMs float64   `json:"duration_ms"`
	Failed     bool      `json:"failed,omitempty"`
	Error      string    `json:"error,omitempty"`

	// Command is the parsed line command kind, Line its raw text.
	Command string `json:"command,omitempty"`
	Line    string `json:"line,omitempty"`
	// Action is the undo action kind applied by the span.
	Action string `json:"action,omitempty"`
	ItemID string `json:"item_id,omitempty"`
	// Items is the number of items an action or listing covered, Applied
	// how many of them went through. Nil when the span did not record it.
	Items   *int `json:"items,omitempty"`
	Applied *int `json:"applied,omitempty"`

	// Extra holds attributes without a typed field.
	Extra map[string]any `json:"extra,omitempty"`
}

// NewSpanRecord flattens a finished span into a SpanRecord.
func NewSpanRecord(span sdktrace.ReadOnlySpan) SpanRecord {
	rec := SpanRecord{
		Trace:      span.SpanContext().TraceID().String(),
		Span:       span.SpanContext().SpanID().String(),
		Name:       span.Name(),
		Start:      span.StartTime().UTC(),
		DurationMs: float64(span.EndTime().Sub(span.StartTime()).Microseconds()) / 1000,
	}
	if p := span.Parent(); p.IsValid() {
		rec.Parent = p.SpanID().String()
	}
	if st := span.Status(); st.Code == codes.Error {
		rec.Failed = true
		rec.Error = st.Description
	}
	for _, kv := range span.Attributes() {
		rec.set(kv)
	}
	return rec
}

func (r *SpanRecord) set(kv attribute.KeyValue) {
	switch string(kv.Key) {
	case AttrCommandKind:
		r.Command = kv.Value.AsString()
	case AttrCommandLine:
		r.Line = kv.Value.AsString()
	case AttrActionKind:
		r.Action = kv.Value.AsString()
	case AttrItemID:
		r.ItemID = kv.Value.AsString()
	case AttrItemCount:
		n := int(kv.Value.AsInt64())
		r.Items = &n
	case AttrAppliedCount:
		n := int(kv.Value.AsInt64())
		r.Applied = &n
	default:
		if r.Extra == nil {
			r.Extra = make(map[string]any)
		}
		r.Extra[string(kv.Key)] = kv.Value.AsInterface()
	}
}
