package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ramanasai/reflectboard/internal/board"
	"github.com/ramanasai/reflectboard/internal/utils"
)

type Theme struct {
	Title    lipgloss.Style
	Label    lipgloss.Style
	Hint     lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Rule     lipgloss.Style
	Selected lipgloss.Style
	AI       lipgloss.Style
	User     lipgloss.Style
	Preview  lipgloss.Style
	Link     lipgloss.Style
	Anchor   lipgloss.Style

	mono bool
}

var DefaultTheme = Theme{
	Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#A6E3A1")),
	Label:    lipgloss.NewStyle().Faint(true).Foreground(lipgloss.Color("#89B4FA")),
	Hint:     lipgloss.NewStyle().Faint(true).Foreground(lipgloss.Color("#CBA6F7")),
	Error:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F38BA8")),
	Success:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#A6E3A1")),
	Rule:     lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")),
	Selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F9E2AF")),
	AI:       lipgloss.NewStyle().Foreground(lipgloss.Color("#89B4FA")),
	User:     lipgloss.NewStyle().Foreground(lipgloss.Color("#F2CDCD")),
	Preview:  lipgloss.NewStyle().Foreground(lipgloss.Color("#F9E2AF")),
	Link:     lipgloss.NewStyle().Foreground(lipgloss.Color("#9399B2")),
	Anchor:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F5C2E7")),
}

var MonoTheme = Theme{
	Title:    lipgloss.NewStyle().Bold(true),
	Label:    lipgloss.NewStyle(),
	Hint:     lipgloss.NewStyle().Faint(true),
	Error:    lipgloss.NewStyle().Bold(true),
	Success:  lipgloss.NewStyle().Bold(true),
	Rule:     lipgloss.NewStyle(),
	Selected: lipgloss.NewStyle().Bold(true),
	AI:       lipgloss.NewStyle(),
	User:     lipgloss.NewStyle(),
	Preview:  lipgloss.NewStyle(),
	Link:     lipgloss.NewStyle(),
	Anchor:   lipgloss.NewStyle().Bold(true),
	mono:     true,
}

// ThemeByName resolves the config's theme key; unknown names get the
// default.
func ThemeByName(name string) Theme {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "mono", "monochrome", "none":
		return MonoTheme
	}
	return DefaultTheme
}

// Category is the note border style for c.
func (t Theme) Category(c board.Category) lipgloss.Style {
	if t.mono {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Foreground(utils.CategoryColor(c))
}
