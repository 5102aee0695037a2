package styles

import "github.com/charmbracelet/lipgloss"

// https://github.com/inngest/inngest/blob/main/pkg/cli/styles.go
var (
	Primary   = lipgloss.Color("#4636f5")
	Green     = lipgloss.Color("#9dcc3a")
	Red       = lipgloss.Color("#ff0000")
	White     = lipgloss.Color("#ffffff")
	Black     = lipgloss.Color("#000000")
	Highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}

	keyBorder = lipgloss.Border{
		Top:         "─",
		Bottom:      "─",
		Left:        "│",
		Right:       "│",
		TopLeft:     "╭",
		TopRight:    "╮",
		BottomLeft:  "╰",
		BottomRight: "╯",
	}

	// Piano keys
	WhiteKey = lipgloss.NewStyle().
			Align(lipgloss.Center).
			Border(keyBorder, true).
			BorderForeground(Highlight).
			Foreground(Black).
			Background(White).
			Width(3)
	BlackKey = WhiteKey.Copy().
			Foreground(White).
			Background(Black)
	PressedKey = WhiteKey.Copy().
			Foreground(White).
			Background(Primary).
			Bold(true)

	// Status Bar.
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#343433", Dark: "#C1C6B2"}).
			Background(lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#353533"})

	StatusStyle = lipgloss.NewStyle().
			Inherit(StatusBarStyle).
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#FF5F87")).
			Padding(0, 1).
			MarginRight(1)

	StatusText = lipgloss.NewStyle().Inherit(StatusBarStyle)

	// Recorder indicators
	RecordingStyle = StatusStyle.Copy().Background(Red)
	PlayingStyle   = StatusStyle.Copy().Background(Green).Foreground(Black)

	HelpMenu = lipgloss.NewStyle().Align(lipgloss.Center).PaddingTop(2)
	// Page
	DocStyle = lipgloss.NewStyle().Padding(1, 2, 1, 2)
)

// RenderError returns a formatted error string.
func RenderError(msg string) string {
	err := lipgloss.NewStyle().Background(Red).Foreground(White).Bold(true).Padding(0, 1).Render("Error")
	content := lipgloss.NewStyle().Bold(true).Padding(0, 1).Render(msg)
	return err + content
}
