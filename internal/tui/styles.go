package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/sprite-ai/revchat/internal/model"
)

// Color palette.
var (
	colorRed     = lipgloss.Color("#ff5555")
	colorGreen   = lipgloss.Color("#50fa7b")
	colorYellow  = lipgloss.Color("#f1fa8c")
	colorBlue    = lipgloss.Color("#8be9fd")
	colorPurple  = lipgloss.Color("#bd93f9")
	colorDim     = lipgloss.Color("#6272a4")
	colorBgLight = lipgloss.Color("#343746")
	colorFg      = lipgloss.Color("#f8f8f2")
	colorOrange  = lipgloss.Color("#ffb86c")
	colorBorder  = lipgloss.Color("#44475a")
)

// Style definitions.
var (
	// Header
	headerStyle = lipgloss.NewStyle().
			Foreground(colorBlue).
			Bold(true)

	modeActiveStyle = lipgloss.NewStyle().
			Foreground(colorBgLight).
			Background(colorPurple).
			Bold(true).
			Padding(0, 1)

	modeInactiveStyle = lipgloss.NewStyle().
				Foreground(colorDim).
				Padding(0, 1)

	// Transcript
	userLabelStyle = lipgloss.NewStyle().
			Foreground(colorGreen).
			Bold(true)

	aiLabelStyle = lipgloss.NewStyle().
			Foreground(colorPurple).
			Bold(true)

	timestampStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	userTextStyle = lipgloss.NewStyle().
			Foreground(colorFg)

	textStyle = lipgloss.NewStyle().
			Foreground(colorFg)

	// Code blocks
	codeBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Foreground(colorFg).
			Padding(0, 1)

	codeLabelStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			Italic(true)

	// Error banner
	errorBannerStyle = lipgloss.NewStyle().
				Border(lipgloss.NormalBorder(), false, false, false, true).
				BorderForeground(colorRed).
				Foreground(colorRed).
				Padding(0, 1)

	errorDetailStyle = lipgloss.NewStyle().
				Foreground(colorOrange)

	// Input and status
	inputBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder)

	hintStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			Italic(true)

	thinkingStyle = lipgloss.NewStyle().
			Foreground(colorYellow)

	// Help
	helpBarStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(colorYellow)
)

// annotationColor is the accent for an issue kind.
func annotationColor(kind model.IssueKind) lipgloss.Color {
	switch kind {
	case model.IssueIssue:
		return colorRed
	case model.IssueWarning:
		return colorOrange
	case model.IssueGood:
		return colorGreen
	default:
		return colorBlue
	}
}

func annotationStyle(kind model.IssueKind) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(annotationColor(kind)).
		Foreground(colorFg).
		PaddingLeft(1)
}

func markerStyle(kind model.IssueKind) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(annotationColor(kind)).
		Bold(true)
}
