package engine

import (
	"strconv"

	"github.com/zjrosen/folio/internal/engine/motion"
)

// MaxCount caps the count prefix.
const MaxCount = 9999

// FindState is the last f/F/t/T, repeated by ; and ,.
type FindState struct {
	Motion motion.Motion
	Target rune
}

// SearchState is the last / or ? term, repeated by n and N.
type SearchState struct {
	Term     string
	Backward bool
}

// InputState is the modal context carried between key events. Everything
// except the last find and search is cleared by Reset at the end of every
// completed sequence.
type InputState struct {
	// Pending is the leader awaiting its second key: g z m ' [ ] f F t T
	// @ q " or space.
	Pending  string
	Operator Operator
	Count    int
	// Explicit is set once a digit has been typed.
	Explicit bool
	// Register is the register chosen with "x for the next operator or
	// paste. Zero means the unnamed register.
	Register rune

	LastFind   *FindState
	LastSearch *SearchState
}

// Reset clears the per-sequence fields.
func (s *InputState) Reset() {
	s.Pending = ""
	s.Operator = OpNone
	s.Count = 0
	s.Explicit = false
	s.Register = 0
}

// PushDigit appends d to the count, clamping at MaxCount.
func (s *InputState) PushDigit(d int) {
	s.Count = min(s.Count*10+d, MaxCount)
	s.Explicit = true
}

// CountOr1 returns the count, or 1 when none was typed.
func (s *InputState) CountOr1() int {
	if s.Count == 0 && !s.Explicit {
		return 1
	}
	return max(s.Count, 1)
}

// Echo renders the partial sequence for the mode indicator, e.g. `"a3d`.
func (s *InputState) Echo() string {
	var out string
	if s.Register != 0 {
		out += `"` + string(s.Register)
	}
	if s.Count > 0 {
		out += strconv.Itoa(s.Count)
	}
	out += s.Operator.String()
	if s.Pending != "" && s.Pending != " " {
		out += s.Pending
	}
	return out
}

// digit reports whether key extends the count: 1-9 always, 0 only once a
// count has started.
func (s *InputState) digit(key string) (int, bool) {
	if len(key) != 1 || key[0] < '0' || key[0] > '9' {
		return 0, false
	}
	d := int(key[0] - '0')
	if d == 0 && s.Count == 0 {
		return 0, false
	}
	return d, true
}
