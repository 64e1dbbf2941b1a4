package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	colorPurple    = lipgloss.Color("#7D56F4")
	colorGreen     = lipgloss.Color("#04B575")
	colorRed       = lipgloss.Color("#FF4141")
	colorGray      = lipgloss.Color("#626262")
	colorLightGray = lipgloss.Color("#9e9e9e")
	colorWhite     = lipgloss.Color("#FFFFFF")
	colorBlue      = lipgloss.Color("#007BFF")

	styleTitle = lipgloss.NewStyle().
			Foreground(colorPurple).
			Bold(true).
			MarginBottom(1)

	styleLabel = lipgloss.NewStyle().
			Foreground(colorLightGray)

	styleLabelFocused = lipgloss.NewStyle().
				Foreground(colorPurple).
				Bold(true)

	styleValue = lipgloss.NewStyle().
			Foreground(colorWhite)

	styleError = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorGreen).
			Bold(true)

	styleHelp = lipgloss.NewStyle().
			Foreground(colorGray)

	styleViewport = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPurple).
			Padding(0, 1)

	styleFormContainer = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorGray).
				Padding(0, 1)

	styleStatusText = lipgloss.NewStyle().
			Foreground(colorWhite).
			Background(colorGray).
			Padding(0, 1)

	styleStatusRunning = lipgloss.NewStyle().
				Foreground(colorWhite).
				Background(colorBlue).
				Padding(0, 1).
				Bold(true)

	styleStatusDone = lipgloss.NewStyle().
			Foreground(colorWhite).
			Background(colorGreen).
			Padding(0, 1)

	styleStatusFailed = lipgloss.NewStyle().
				Foreground(colorWhite).
				Background(colorRed).
				Padding(0, 1)
)
