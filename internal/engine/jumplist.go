package engine

// DefaultJumpListSize caps the jump list when no size is configured.
const DefaultJumpListSize = 100

// JumpList is the back/forward history of large cursor moves. Positions
// are list indices; callers clamp them to the current list.
type JumpList struct {
	jumps    []int
	current  int
	capacity int
}

// NewJumpList creates an empty jump list holding at most capacity entries.
func NewJumpList(capacity int) *JumpList {
	if capacity <= 0 {
		capacity = DefaultJumpListSize
	}
	return &JumpList{capacity: capacity}
}

// Push records pos as a jump origin. Any forward history is dropped and a
// repeat of the newest entry is ignored.
func (j *JumpList) Push(pos int) {
	if j.current < len(j.jumps) {
		j.jumps = j.jumps[:j.current+1]
	}
	if n := len(j.jumps); n == 0 || j.jumps[n-1] != pos {
		j.jumps = append(j.jumps, pos)
	}
	if excess := len(j.jumps) - j.capacity; excess > 0 {
		j.jumps = j.jumps[excess:]
	}
	j.current = len(j.jumps)
}

// Back moves to the previous jump. cur is recorded first when leaving the
// newest position so Forward can return to it.
func (j *JumpList) Back(cur int) (int, bool) {
	if j.current == len(j.jumps) {
		if n := len(j.jumps); n == 0 || j.jumps[n-1] != cur {
			j.jumps = append(j.jumps, cur)
		}
		j.current = len(j.jumps) - 1
	}
	if j.current <= 0 {
		return 0, false
	}
	j.current--
	return j.jumps[j.current], true
}

// Forward moves to the next jump, if any.
func (j *JumpList) Forward() (int, bool) {
	if j.current+1 >= len(j.jumps) {
		return 0, false
	}
	j.current++
	return j.jumps[j.current], true
}

// Len returns the number of recorded jumps.
func (j *JumpList) Len() int {
	return len(j.jumps)
}
