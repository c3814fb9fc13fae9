// Package engine is the modal command engine: it turns key events into
// cursor movement, selections and undoable mutations of the library.
package engine

// Mode represents the current input mode.
type Mode int

const (
	// ModeNormal navigates and runs operators.
	ModeNormal Mode = iota
	// ModeInsert edits an item title.
	ModeInsert
	// ModeVisual selects a range of items.
	ModeVisual
	// ModeVisualLine is linewise visual selection. Items are rows, so it
	// selects exactly like ModeVisual.
	ModeVisualLine
	// ModeVisualBlock is blockwise visual selection.
	ModeVisualBlock
	// ModeCommand edits a ':' line or an operator prompt.
	ModeCommand
	// ModeSearch edits a '/' or '?' line.
	ModeSearch
	// ModePending awaits the second key of a sequence or an operator's
	// motion. It is reported by Mode but never stored.
	ModePending
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "NORMAL"
	case ModeInsert:
		return "INSERT"
	case ModeVisual:
		return "VISUAL"
	case ModeVisualLine:
		return "VISUAL LINE"
	case ModeVisualBlock:
		return "VISUAL BLOCK"
	case ModeCommand:
		return "COMMAND"
	case ModeSearch:
		return "SEARCH"
	case ModePending:
		return "PENDING"
	default:
		return "UNKNOWN"
	}
}

// IsVisual reports whether m is one of the visual variants.
func (m Mode) IsVisual() bool {
	return m == ModeVisual || m == ModeVisualLine || m == ModeVisualBlock
}

// visualEntryKey is the key that enters (and leaves) each visual variant.
func (m Mode) visualEntryKey() string {
	switch m {
	case ModeVisual:
		return "v"
	case ModeVisualLine:
		return "V"
	case ModeVisualBlock:
		return "ctrl+v"
	default:
		return ""
	}
}

// Operator is a mutation waiting for a range.
type Operator int

const (
	OpNone Operator = iota
	OpDelete
	OpYank
	OpChange
	OpAddTag
	OpRemoveTag
)

// String returns the key that starts the operator.
func (o Operator) String() string {
	switch o {
	case OpDelete:
		return "d"
	case OpYank:
		return "y"
	case OpChange:
		return "c"
	case OpAddTag:
		return ">"
	case OpRemoveTag:
		return "<"
	default:
		return ""
	}
}

func operatorForKey(key string) Operator {
	switch key {
	case "d":
		return OpDelete
	case "y":
		return OpYank
	case "c":
		return OpChange
	case ">":
		return OpAddTag
	case "<":
		return OpRemoveTag
	default:
		return OpNone
	}
}
