package tui

import (
	"github.com/DachengChen/paiAnalyst/chart"
	"github.com/charmbracelet/lipgloss"
)

// Palette: terminal-neutral greys with the chart accent for focus.
var (
	ColorPrimary   = lipgloss.Color("255")
	ColorSecondary = lipgloss.Color("240")
	ColorAccent    = lipgloss.Color(chart.Accent)
	ColorSuccess   = lipgloss.Color("42")
	ColorError     = lipgloss.Color("196")
	ColorWarning   = lipgloss.Color("214")
	ColorDim       = lipgloss.Color("240")

	ColorHighlightBg = lipgloss.Color("236")
)

var (
	StyleNormal = lipgloss.NewStyle().Foreground(ColorPrimary)
	StyleDimmed = lipgloss.NewStyle().Foreground(ColorDim)
	StyleBold   = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)

	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning)

	StyleBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorSecondary)

	StyleTitle  = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent).MarginBottom(1)
	StylePrompt = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)

	StyleTabActive = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent).
			Padding(0, 1)

	StyleTabInactive = lipgloss.NewStyle().
				Foreground(ColorDim).
				Padding(0, 1)

	// Conversation
	StyleUser    = lipgloss.NewStyle().Foreground(ColorSecondary).Bold(true)
	StyleAnalyst = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	StyleModel   = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)

	StyleSuggestion = lipgloss.NewStyle().Foreground(ColorDim)

	StyleSuggestionActive = lipgloss.NewStyle().
				Foreground(ColorAccent).
				Background(ColorHighlightBg).
				Bold(true)

	StyleSQL = lipgloss.NewStyle().
			Foreground(ColorWarning).
			PaddingLeft(2)

	StyleBar = lipgloss.NewStyle().Foreground(ColorAccent)

	StyleStatusBar = lipgloss.NewStyle().
			Foreground(ColorSecondary)

	StyleHelpKey = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	StyleHelpDesc = lipgloss.NewStyle().
			Foreground(ColorDim)
)
