// Package shared provides small seams over the operating system that the
// engine and the TUI both depend on.
package shared

import (
	"errors"
	"sync"

	"github.com/atotto/clipboard"
)

// ErrClipboardUnavailable is returned when no clipboard utility is present.
var ErrClipboardUnavailable = errors.New("system clipboard unavailable")

// Clipboard defines the interface for clipboard operations.
type Clipboard interface {
	Copy(text string) error
	Paste() (string, error)
}

// SystemClipboard implements Clipboard using the system clipboard.
type SystemClipboard struct{}

// Copy copies text to the system clipboard.
func (SystemClipboard) Copy(text string) error {
	if clipboard.Unsupported {
		return ErrClipboardUnavailable
	}
	return clipboard.WriteAll(text)
}

// Paste reads the current clipboard text.
func (SystemClipboard) Paste() (string, error) {
	if clipboard.Unsupported {
		return "", ErrClipboardUnavailable
	}
	return clipboard.ReadAll()
}

// MockClipboard is an in-memory clipboard for testing. Setting Err makes
// every call fail with it.
type MockClipboard struct {
	mu   sync.Mutex
	Text string
	Err  error
}

// Copy stores text unless Err is set.
func (c *MockClipboard) Copy(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return c.Err
	}
	c.Text = text
	return nil
}

// Paste returns the stored text unless Err is set.
func (c *MockClipboard) Paste() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return "", c.Err
	}
	return c.Text, nil
}

// NoClipboard drops writes and never holds text. Used when the clipboard is
// disabled in config.
type NoClipboard struct{}

func (NoClipboard) Copy(string) error      { return ErrClipboardUnavailable }
func (NoClipboard) Paste() (string, error) { return "", ErrClipboardUnavailable }
