package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nconklindev/gopdon/internal/types"
)

var (
	accent = lipgloss.Color("#E11D48")
	gold   = lipgloss.Color("#FCD34D")
	muted  = lipgloss.Color("#6B7280")

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			MarginTop(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(muted).
			MarginBottom(1)

	FileStyle = lipgloss.NewStyle().
			Foreground(gold)

	NoticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F59E0B"))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF4757")).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#22C55E")).
			Bold(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(muted).
			MarginTop(1)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 2)

	platformStyles = map[types.Platform]lipgloss.Style{
		types.Shopee: lipgloss.NewStyle().Bold(true).Padding(0, 1).
			Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#EE4D2D")),
		types.TikTok: lipgloss.NewStyle().Bold(true).Padding(0, 1).
			Foreground(lipgloss.Color("#000000")).Background(lipgloss.Color("#25F4EE")),
	}
	inactivePlatformStyle = lipgloss.NewStyle().Padding(0, 1).Foreground(muted)
)

// platformTabs renders the platform switcher with the active one highlighted.
func platformTabs(active types.Platform) string {
	tabs := make([]string, 0, len(types.Platforms))
	for _, p := range types.Platforms {
		style := inactivePlatformStyle
		if p == active {
			style = platformStyles[p]
		}
		tabs = append(tabs, style.Render(p.Upper()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}
