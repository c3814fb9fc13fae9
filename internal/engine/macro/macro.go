// Package macro records and stores raw key sequences under letter registers.
// Replay lives in the engine, which feeds stored keys back through its own
// dispatch entry point.
package macro

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/folio/internal/log"
)

var (
	ErrInvalidRegister  = errors.New("invalid macro register")
	ErrAlreadyRecording = errors.New("already recording")
	ErrNotRecording     = errors.New("not recording")
	ErrEmptyMacro       = errors.New("macro is empty")
)

// Valid reports whether r can name a macro. Only lowercase letters can.
func Valid(r rune) bool {
	return r >= 'a' && r <= 'z'
}

// Macro is a stored key sequence.
type Macro struct {
	Register rune
	Keys     []tea.KeyMsg
}

// Recorder holds the macro registers and the in-progress recording. It is
// not safe for concurrent use.
type Recorder struct {
	recording  bool
	register   rune
	keys       []tea.KeyMsg
	registers  map[rune][]tea.KeyMsg
	lastPlayed rune
}

// NewRecorder creates a recorder with no macros.
func NewRecorder() *Recorder {
	return &Recorder{
		registers: make(map[rune][]tea.KeyMsg),
	}
}

// StartRecording begins capturing keys into register.
func (r *Recorder) StartRecording(register rune) error {
	if !Valid(register) {
		return fmt.Errorf("%w: %q", ErrInvalidRegister, register)
	}

	if r.recording {
		return fmt.Errorf("%w into @%c", ErrAlreadyRecording, r.register)
	}
	r.recording = true
	r.register = register
	r.keys = nil
	log.Info(log.CatMacro, "recording started", "register", string(register))
	return nil
}

// StopRecording ends the recording and stores it, replacing the register's
// previous content. An empty recording clears the register.
func (r *Recorder) StopRecording() (Macro, error) {
	if !r.recording {
		return Macro{}, ErrNotRecording
	}
	r.recording = false
	saved := slices.Clone(r.keys)
	if len(saved) == 0 {
		delete(r.registers, r.register)
	} else {
		r.registers[r.register] = saved
	}
	r.keys = nil
	log.Info(log.CatMacro, "recording stopped", "register", string(r.register), "keys", len(saved))
	return Macro{Register: r.register, Keys: slices.Clone(saved)}, nil
}

// Record appends msg to the in-progress recording. It is a no-op when idle.
func (r *Recorder) Record(msg tea.KeyMsg) {
	if r.recording {
		r.keys = append(r.keys, msg)
	}
}

// IsRecording reports whether a recording is in progress.
func (r *Recorder) IsRecording() bool {
	return r.recording
}

// Recording returns the register being recorded, or 0 when idle.
func (r *Recorder) Recording() rune {
	if r.recording {
		return r.register
	}
	return 0
}

// Get returns a copy of the keys stored in register.
func (r *Recorder) Get(register rune) ([]tea.KeyMsg, error) {
	if !Valid(register) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRegister, register)
	}
	keys := r.registers[register]
	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: @%c", ErrEmptyMacro, register)
	}
	return slices.Clone(keys), nil
}

// SetLastPlayed remembers register for @@.
func (r *Recorder) SetLastPlayed(register rune) {
	r.lastPlayed = register
}

// LastPlayed returns the register last replayed, or 0.
func (r *Recorder) LastPlayed() rune {
	return r.lastPlayed
}

// List returns every stored macro ordered by register.
func (r *Recorder) List() []Macro {
	out := make([]Macro, 0, len(r.registers))
	for reg, keys := range r.registers {
		out = append(out, Macro{Register: reg, Keys: slices.Clone(keys)})
	}
	slices.SortFunc(out, func(a, b Macro) int { return int(a.Register) - int(b.Register) })
	return out
}

// Len returns the number of stored macros.
func (r *Recorder) Len() int {
	return len(r.registers)
}

// Describe renders keys the way they were typed, e.g. "3j<esc>".
func Describe(keys []tea.KeyMsg) string {
	var b strings.Builder
	for _, k := range keys {
		switch {
		case k.Type == tea.KeyRunes && !k.Alt:
			b.WriteString(string(k.Runes))
		case k.Type == tea.KeySpace:
			b.WriteString("<space>")
		default:
			b.WriteString("<" + k.String() + ">")
		}
	}
	return b.String()
}
