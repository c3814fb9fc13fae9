// Package motion resolves cursor motions over a one-dimensional list.
//
// Resolve is a pure function: it never touches storage and cannot block.
// A motion that does not apply in the active panel, or a relative motion
// that would not move the cursor, resolves to mo.None.
package motion

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/samber/mo"
)

// Motion identifies a cursor motion.
type Motion int

const (
	None Motion = iota
	Down
	Up
	Top          // gg
	Bottom       // G
	First        // 0
	Last         // $
	ScreenTop    // H
	ScreenMiddle // M
	ScreenBottom // L
	GroupPrev    // { and [[
	GroupNext    // } and ]]
	FindForward  // f
	FindBackward // F
	TillForward  // t
	TillBackward // T
	HalfPageDown
	HalfPageUp
	PageDown
	PageUp
)

var motionNames = map[Motion]string{
	None:         "none",
	Down:         "j",
	Up:           "k",
	Top:          "gg",
	Bottom:       "G",
	First:        "0",
	Last:         "$",
	ScreenTop:    "H",
	ScreenMiddle: "M",
	ScreenBottom: "L",
	GroupPrev:    "{",
	GroupNext:    "}",
	FindForward:  "f",
	FindBackward: "F",
	TillForward:  "t",
	TillBackward: "T",
	HalfPageDown: "ctrl+d",
	HalfPageUp:   "ctrl+u",
	PageDown:     "ctrl+f",
	PageUp:       "ctrl+b",
}

// String returns the key that triggers the motion.
func (m Motion) String() string {
	if s, ok := motionNames[m]; ok {
		return s
	}
	return "unknown"
}

// IsFind reports whether m is one of f/F/t/T.
func (m Motion) IsFind() bool {
	return m == FindForward || m == FindBackward || m == TillForward || m == TillBackward
}

// Reverse flips the direction of a find motion (f<->F, t<->T). Other
// motions are returned unchanged.
func (m Motion) Reverse() Motion {
	switch m {
	case FindForward:
		return FindBackward
	case FindBackward:
		return FindForward
	case TillForward:
		return TillBackward
	case TillBackward:
		return TillForward
	default:
		return m
	}
}

// IsJump reports whether the motion is large enough to be recorded in the
// jump list before it is taken.
func (m Motion) IsJump() bool {
	return m == Top || m == Bottom
}

// relative motions resolve to None when they would not move the cursor.
func (m Motion) relative() bool {
	switch m {
	case Down, Up, GroupPrev, GroupNext, FindForward, FindBackward, TillForward, TillBackward,
		HalfPageDown, HalfPageUp, PageDown, PageUp:
		return true
	default:
		return false
	}
}

// Panel is the focused pane.
type Panel int

const (
	PanelSidebar Panel = iota
	PanelList
	PanelPreview
)

func (p Panel) String() string {
	switch p {
	case PanelSidebar:
		return "sidebar"
	case PanelList:
		return "list"
	case PanelPreview:
		return "preview"
	default:
		return "unknown"
	}
}

// supports reports whether m has meaning in panel p. The sidebar only
// moves by steps and bounds, the preview pane has no cursor.
func (p Panel) supports(m Motion) bool {
	switch p {
	case PanelList:
		return true
	case PanelSidebar:
		switch m {
		case Down, Up, Top, Bottom, First, Last, HalfPageDown, HalfPageUp, PageDown, PageUp:
			return true
		}
		return false
	default:
		return false
	}
}

// Frame is the list context a motion resolves against.
type Frame struct {
	// Len is the number of rows in the active panel.
	Len int
	// Offset is the index of the first visible row.
	Offset int
	// Height is the number of visible rows.
	Height int
	// Titles feed find-char motions. Only read for f/F/t/T.
	Titles []string
	// Groups holds a grouping key per row for { and }.
	Groups []string
	// Target is the character f/F/t/T search for.
	Target rune
	// Explicit is set when the count was typed rather than defaulted.
	Explicit bool
}

// Resolve maps (pos, motion, count, panel) to a new position.
// count <= 0 is treated as 1 for repeatable motions; for G and gg an
// explicit count selects a 1-based absolute row.
//
// Relative motions return None when they cannot move. Absolute motions
// (gg, G, 0, $, H, M, L) name a row rather than a step, so they return it
// even when pos is already there and dG on the last row covers that row.
func Resolve(pos int, m Motion, count int, panel Panel, f Frame) mo.Option[int] {
	if f.Len <= 0 || !panel.supports(m) {
		return mo.None[int]()
	}
	last := f.Len - 1
	pos = clamp(pos, 0, last)
	n := max(count, 1)
	height := max(f.Height, 1)

	var target int
	switch m {
	case Down:
		target = min(pos+n, last)
	case Up:
		target = max(pos-n, 0)
	case Top:
		if f.Explicit && count > 0 {
			target = min(count-1, last)
		} else {
			target = 0
		}
	case Bottom:
		if f.Explicit && count > 0 {
			target = min(count-1, last)
		} else {
			target = last
		}
	case First:
		target = 0
	case Last:
		target = last
	case ScreenTop:
		top := clamp(f.Offset, 0, last)
		target = min(top+n-1, screenBottom(f, last, height))
	case ScreenMiddle:
		top := clamp(f.Offset, 0, last)
		target = top + (screenBottom(f, last, height)-top)/2
	case ScreenBottom:
		top := clamp(f.Offset, 0, last)
		target = max(screenBottom(f, last, height)-(n-1), top)
	case HalfPageDown:
		target = min(pos+max(height/2, 1)*n, last)
	case HalfPageUp:
		target = max(pos-max(height/2, 1)*n, 0)
	case PageDown:
		target = min(pos+height*n, last)
	case PageUp:
		target = max(pos-height*n, 0)
	case GroupNext:
		target = nextGroup(pos, n, f.Groups, last)
	case GroupPrev:
		target = prevGroup(pos, n, f.Groups)
	case FindForward, FindBackward, TillForward, TillBackward:
		t, ok := findChar(pos, m, n, f)
		if !ok {
			return mo.None[int]()
		}
		target = t
	default:
		return mo.None[int]()
	}

	if m.relative() && target == pos {
		return mo.None[int]()
	}
	return mo.Some(target)
}

func screenBottom(f Frame, last, height int) int {
	return min(clamp(f.Offset, 0, last)+height-1, last)
}

// groupAt returns the group key at i, or "" when groups are not supplied.
func groupAt(groups []string, i int) string {
	if i < 0 || i >= len(groups) {
		return ""
	}
	return groups[i]
}

// nextGroup moves to the first row of the following run, n times. When no
// further run exists it stops on the last row.
func nextGroup(pos, n int, groups []string, last int) int {
	for range n {
		i := pos + 1
		for i <= last && groupAt(groups, i) == groupAt(groups, pos) {
			i++
		}
		if i > last {
			return last
		}
		pos = i
	}
	return pos
}

// prevGroup moves to the start of the current run, or of the previous run
// when already at a run start, n times.
func prevGroup(pos, n int, groups []string) int {
	for range n {
		if pos == 0 {
			return 0
		}
		i := pos
		if groupAt(groups, i-1) != groupAt(groups, i) {
			i--
		}
		for i > 0 && groupAt(groups, i-1) == groupAt(groups, i) {
			i--
		}
		pos = i
	}
	return pos
}

// findChar scans titles for the n-th row whose title starts with the
// target (case-insensitive). t stops one row before the match, T one row
// after.
func findChar(pos int, m Motion, n int, f Frame) (int, bool) {
	if f.Target == 0 {
		return 0, false
	}
	target := unicode.ToLower(f.Target)
	matches := func(i int) bool {
		if i >= len(f.Titles) {
			return false
		}
		r, _ := utf8.DecodeRuneInString(strings.ToLower(f.Titles[i]))
		return r != utf8.RuneError && r == target
	}

	seen := 0
	switch m {
	case FindForward, TillForward:
		for i := pos + 1; i < f.Len; i++ {
			if !matches(i) {
				continue
			}
			if seen++; seen == n {
				if m == TillForward {
					return max(i-1, pos), true
				}
				return i, true
			}
		}
	case FindBackward, TillBackward:
		for i := pos - 1; i >= 0; i-- {
			if !matches(i) {
				continue
			}
			if seen++; seen == n {
				if m == TillBackward {
					return min(i+1, pos), true
				}
				return i, true
			}
		}
	}
	return 0, false
}

// GroupKey derives the grouping key of a row: the lowercase first letter
// of title, or "#" for titles that do not start with a letter.
func GroupKey(title string) string {
	if title == "" {
		return ""
	}
	r, _ := utf8.DecodeRuneInString(title)
	if unicode.IsLetter(r) {
		return string(unicode.ToLower(r))
	}
	return "#"
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
