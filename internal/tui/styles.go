package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/roach88/fxrelay/internal/alias"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	dryRunBadge = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#000000")).Background(lipgloss.Color("#ffcc00")).Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#33ff33"))
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff0000"))

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#ff7700")).
			Padding(0, 1)
	modalTitleStyle = lipgloss.NewStyle().Bold(true)
)

var blockingStyles = map[alias.BlockingMode]lipgloss.Style{
	alias.BlockAll:        lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Background(lipgloss.Color("#ff0000")),
	alias.BlockPromotions: lipgloss.NewStyle().Foreground(lipgloss.Color("#000000")).Background(lipgloss.Color("#ff7700")),
	alias.BlockNone:       lipgloss.NewStyle().Foreground(lipgloss.Color("#000000")).Background(lipgloss.Color("#33ff33")),
}

// BlockingLabel is the display label of a blocking mode.
func BlockingLabel(m alias.BlockingMode) string {
	switch m {
	case alias.BlockAll:
		return "⛔ All"
	case alias.BlockPromotions:
		return "🗑️ Promotions"
	case alias.BlockNone:
		return "✅ None"
	default:
		return m.String()
	}
}

func blockingStyle(m alias.BlockingMode) lipgloss.Style {
	if s, ok := blockingStyles[m]; ok {
		return s
	}
	return lipgloss.NewStyle()
}
