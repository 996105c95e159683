package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	green = lipgloss.Color("#22c55e")
	red   = lipgloss.Color("#ef4444")
	gray  = lipgloss.Color("#888888")

	Success = lipgloss.NewStyle().Foreground(green)
	Failure = lipgloss.NewStyle().Foreground(red)
	Command = lipgloss.NewStyle().Foreground(red).Bold(true)
	Muted   = lipgloss.NewStyle().Foreground(gray)

	bannerBox = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(green).
			Padding(0, 3)
	bannerTitle = lipgloss.NewStyle().Foreground(green).Bold(true)
)

// Banner renders the product name in a bordered box, with an optional
// tagline underneath.
func Banner(title, tagline string) string {
	spaced := strings.Join(strings.Split(strings.ToUpper(title), ""), " ")
	body := bannerTitle.Render(spaced)
	if tagline != "" {
		body = lipgloss.JoinVertical(lipgloss.Center, body, Muted.Render(tagline))
	}
	return bannerBox.Render(body)
}
