// Package log writes leveled, categorized debug lines to a file and fans
// each line out to in-process listeners such as the status bar.
//
// Logging is off until Init is called, which the CLI does only for --debug
// or FOLIO_DEBUG.
package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zjrosen/folio/internal/pubsub"
)

// Level represents log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR"}

func (l Level) String() string {
	if l < LevelDebug || l > LevelError {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// ParseLevel accepts a level name in any case.
func ParseLevel(s string) (Level, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for i, name := range levelNames {
		if s == name {
			return Level(i), true
		}
	}
	return LevelDebug, false
}

// Category names the subsystem a line came from.
type Category string

const (
	CatDB       Category = "db"
	CatConfig   Category = "config"
	CatWatcher  Category = "watcher"
	CatUI       Category = "ui"
	CatEngine   Category = "engine"
	CatUndo     Category = "undo"
	CatMacro    Category = "macro"
	CatRegister Category = "register"
	CatCommand  Category = "command"
	CatCache    Category = "cache"
)

const (
	// EnvDebug turns on debug logging when non-empty.
	EnvDebug = "FOLIO_DEBUG"
	// EnvLevel sets the minimum level, e.g. FOLIO_LOG_LEVEL=warn.
	EnvLevel = "FOLIO_LOG_LEVEL"
)

// DebugRequested reports whether the --debug flag or FOLIO_DEBUG asks for
// logging.
func DebugRequested(flag bool) bool {
	return flag || os.Getenv(EnvDebug) != ""
}

type logger struct {
	mu       sync.Mutex
	out      io.WriteCloser
	enabled  bool
	minLevel Level
	broker   *pubsub.Broker[string]
}

var current atomic.Pointer[logger]

// Init opens path for appending and makes it the log destination,
// replacing any earlier logger. The returned func closes the file.
func Init(path string) (func(), error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //nolint:gosec // user-chosen log path
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}

	l := &logger{out: f, enabled: true, minLevel: LevelDebug, broker: pubsub.NewBroker[string]()}
	if lvl, ok := ParseLevel(os.Getenv(EnvLevel)); ok {
		l.minLevel = lvl
	}
	if prev := current.Swap(l); prev != nil {
		prev.close()
	}

	return func() {
		current.CompareAndSwap(l, nil)
		l.close()
	}, nil
}

func (l *logger) close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.out != nil {
		_ = l.out.Close()
		l.out = nil
		l.broker.Close()
	}
}

// SetEnabled pauses or resumes logging.
func SetEnabled(enabled bool) {
	if l := current.Load(); l != nil {
		l.mu.Lock()
		l.enabled = enabled
		l.mu.Unlock()
	}
}

// SetMinLevel drops lines below level.
func SetMinLevel(level Level) {
	if l := current.Load(); l != nil {
		l.mu.Lock()
		l.minLevel = level
		l.mu.Unlock()
	}
}

func Debug(cat Category, msg string, fields ...any) { write(LevelDebug, cat, msg, fields) }
func Info(cat Category, msg string, fields ...any)  { write(LevelInfo, cat, msg, fields) }
func Warn(cat Category, msg string, fields ...any)  { write(LevelWarn, cat, msg, fields) }
func Error(cat Category, msg string, fields ...any) { write(LevelError, cat, msg, fields) }

// ErrorErr logs at error level with err appended as the "error" field.
func ErrorErr(cat Category, msg string, err error, fields ...any) {
	text := "<nil>"
	if err != nil {
		text = err.Error()
	}
	write(LevelError, cat, msg, append(fields, "error", text))
}

func write(level Level, cat Category, msg string, fields []any) {
	l := current.Load()
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.enabled || level < l.minLevel || l.out == nil {
		return
	}

	line := format(time.Now(), level, cat, msg, fields)
	_, _ = io.WriteString(l.out, line)
	l.broker.Publish(pubsub.LogEvent, line)
}

// format renders one line:
//
//	2026-01-02T15:04:05 [INFO] [engine] operator applied op=delete
//
// A trailing key without a value is written as key=<missing>.
func format(ts time.Time, level Level, cat Category, msg string, fields []any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] [%s] %s", ts.Format("2006-01-02T15:04:05"), level, cat, msg)
	for i := 0; i < len(fields); i += 2 {
		if i+1 < len(fields) {
			fmt.Fprintf(&b, " %v=%v", fields[i], fields[i+1])
		} else {
			fmt.Fprintf(&b, " %v=<missing>", fields[i])
		}
	}
	b.WriteByte('\n')
	return b.String()
}

// LogEvent carries one formatted line.
type LogEvent = pubsub.Event[string]

// LogListener delivers log lines to a bubbletea model.
type LogListener = pubsub.Listener[string]

// NewListener subscribes to log lines until ctx ends. It returns nil when
// logging was never initialized.
func NewListener(ctx context.Context) *LogListener {
	l := current.Load()
	if l == nil {
		return nil
	}
	return pubsub.NewListener(ctx, l.broker, pubsub.LogEvent)
}
