package theme

import (
	"github.com/charmbracelet/lipgloss"

	"feeddeck/internal/feedapi"
)

type Theme struct {
	Title       lipgloss.Style
	Section     lipgloss.Style
	UnreadBadge lipgloss.Style
	ActiveLine  lipgloss.Style
	FocusedLine lipgloss.Style
	Chevron     lipgloss.Style
	FeedError   lipgloss.Style
	StatusInfo  lipgloss.Style
	StatusWarn  lipgloss.Style
	StatusLoad  lipgloss.Style

	ItemUnread     lipgloss.Style
	ItemRead       lipgloss.Style
	ItemBookmarked lipgloss.Style
}

func Default() Theme {
	cpMauve := lipgloss.Color("#cba6f7")
	cpRed := lipgloss.Color("#f38ba8")
	cpPeach := lipgloss.Color("#fab387")
	cpYellow := lipgloss.Color("#f9e2af")
	cpGreen := lipgloss.Color("#a6e3a1")
	cpTeal := lipgloss.Color("#94e2d5")
	cpLavender := lipgloss.Color("#b4befe")
	cpText := lipgloss.Color("#cdd6f4")
	cpSubtext0 := lipgloss.Color("#a6adc8")
	cpOverlay1 := lipgloss.Color("#7f849c")
	cpSurface0 := lipgloss.Color("#313244")

	return Theme{
		Title:       lipgloss.NewStyle().Bold(true).Foreground(cpMauve),
		Section:     lipgloss.NewStyle().Bold(true).Foreground(cpTeal),
		UnreadBadge: lipgloss.NewStyle().Foreground(cpYellow).Bold(true),
		ActiveLine:  lipgloss.NewStyle().Background(cpSurface0).Foreground(cpText),
		FocusedLine: lipgloss.NewStyle().Background(cpSurface0).Foreground(cpLavender).Bold(true),
		Chevron:     lipgloss.NewStyle().Foreground(cpOverlay1),
		FeedError:   lipgloss.NewStyle().Foreground(cpRed),
		StatusInfo:  lipgloss.NewStyle().Foreground(cpGreen),
		StatusWarn:  lipgloss.NewStyle().Foreground(cpRed),
		StatusLoad:  lipgloss.NewStyle().Foreground(cpPeach),

		ItemUnread:     lipgloss.NewStyle().Bold(true).Foreground(cpText),
		ItemRead:       lipgloss.NewStyle().Foreground(cpSubtext0),
		ItemBookmarked: lipgloss.NewStyle().Italic(true).Foreground(cpLavender),
	}
}

func (t Theme) StyleItemTitle(item feedapi.Item, title string) string {
	if title == "" {
		return title
	}
	switch {
	case item.IsBookmarked():
		return t.ItemBookmarked.Render(title)
	case item.IsRead():
		return t.ItemRead.Render(title)
	default:
		return t.ItemUnread.Render(title)
	}
}

func (t Theme) RenderActiveLine(active bool, line string) string {
	if !active {
		return line
	}
	return t.ActiveLine.Render(line)
}
