package engine

// OverlayKind identifies what an overlay lists.
type OverlayKind int

const (
	OverlayHelp OverlayKind = iota
	OverlayMarks
	OverlayRegisters
	OverlayMacros
	OverlayUndo
	OverlayTags
	OverlayAdd
	OverlayCitation
	OverlayQuickfix
)

// Overlay is a read-only listing drawn over the list. Any key closes it.
// Help overlays carry no lines; the renderer draws the key reference.
type Overlay struct {
	Kind  OverlayKind
	Title string
	Lines []string
}

func (e *Engine) showOverlay(kind OverlayKind, title string, lines []string) {
	e.overlay = &Overlay{Kind: kind, Title: title, Lines: lines}
}
