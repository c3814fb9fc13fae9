package app

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/folio/internal/config"
	"github.com/zjrosen/folio/internal/engine"
)

// styles holds the lipgloss styles derived from the theme.
type styles struct {
	mode      map[engine.Mode]lipgloss.Style
	recording lipgloss.Style
	header    lipgloss.Style
	muted     lipgloss.Style
	cursor    lipgloss.Style
	selected  lipgloss.Style
	match     lipgloss.Style
	errText   lipgloss.Style
	pane      lipgloss.Style
	focused   lipgloss.Style
	title     lipgloss.Style
	statusBar lipgloss.Style
}

func newStyles(theme config.ThemeConfig) styles {
	accent := lipgloss.Color(theme.Accent)
	muted := lipgloss.Color(theme.Muted)
	selected := lipgloss.Color(theme.Selected)
	errColor := lipgloss.Color(theme.Error)

	badge := lipgloss.NewStyle().Bold(true).Padding(0, 1).Foreground(lipgloss.Color("#FFFFFF"))
	return styles{
		mode: map[engine.Mode]lipgloss.Style{
			engine.ModeNormal:      badge.Background(accent),
			engine.ModeInsert:      badge.Background(lipgloss.Color("#2E8B57")),
			engine.ModeVisual:      badge.Background(lipgloss.Color("#D7875F")),
			engine.ModeVisualLine:  badge.Background(lipgloss.Color("#D7875F")),
			engine.ModeVisualBlock: badge.Background(lipgloss.Color("#D7875F")),
			engine.ModeCommand:     badge.Background(muted),
			engine.ModeSearch:      badge.Background(muted),
			engine.ModePending:     badge.Background(lipgloss.Color("#5F87AF")),
		},
		recording: lipgloss.NewStyle().Foreground(errColor).Bold(true),
		header:    lipgloss.NewStyle().Foreground(accent).Bold(true),
		muted:     lipgloss.NewStyle().Foreground(muted),
		cursor:    lipgloss.NewStyle().Foreground(accent).Bold(true),
		selected:  lipgloss.NewStyle().Background(selected),
		match:     lipgloss.NewStyle().Underline(true),
		errText:   lipgloss.NewStyle().Foreground(errColor),
		pane:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(muted),
		focused:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accent),
		title:     lipgloss.NewStyle().Bold(true),
		statusBar: lipgloss.NewStyle().Foreground(muted),
	}
}

func (s styles) badge(m engine.Mode) lipgloss.Style {
	if st, ok := s.mode[m]; ok {
		return st
	}
	return s.mode[engine.ModeNormal]
}
