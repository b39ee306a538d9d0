package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	colorPrimary   = lipgloss.Color("#6C63FF")
	colorAccent    = lipgloss.Color("#FF6B6B")
	colorMuted     = lipgloss.Color("#666666")
	colorSuccess   = lipgloss.Color("#2ECC71")
	colorWarning   = lipgloss.Color("#F39C12")
	colorError     = lipgloss.Color("#E74C3C")
	colorFg        = lipgloss.Color("#C0CAF5")
	colorSubtle    = lipgloss.Color("#414868")
	colorHighlight = lipgloss.Color("#7AA2F7")
)

// themeColors maps the stored project theme classes to terminal colors.
var themeColors = map[string]lipgloss.Color{
	"bg-blue-500":   lipgloss.Color("#3B82F6"),
	"bg-purple-500": lipgloss.Color("#A855F7"),
	"bg-green-500":  lipgloss.Color("#22C55E"),
	"bg-red-500":    lipgloss.Color("#EF4444"),
	"bg-orange-500": lipgloss.Color("#F97316"),
	"bg-pink-500":   lipgloss.Color("#EC4899"),
	"bg-teal-500":   lipgloss.Color("#14B8A6"),
	"bg-yellow-500": lipgloss.Color("#EAB308"),
}

var themeNames = []string{
	"bg-blue-500", "bg-purple-500", "bg-green-500", "bg-red-500",
	"bg-orange-500", "bg-pink-500", "bg-teal-500", "bg-yellow-500",
}

// projectColor resolves a stored theme to a color. Hex values pass through.
func projectColor(theme string) lipgloss.Color {
	if strings.HasPrefix(theme, "#") {
		return lipgloss.Color(theme)
	}
	if c, ok := themeColors[theme]; ok {
		return c
	}
	return colorPrimary
}

func colorDot(theme string) string {
	return lipgloss.NewStyle().Foreground(projectColor(theme)).Render("●")
}

// Styles
var (
	activeTabStyle    lipgloss.Style
	inactiveTabStyle  lipgloss.Style
	panelStyle        lipgloss.Style
	activePanelStyle  lipgloss.Style
	timerStyle        lipgloss.Style
	timerRunningStyle lipgloss.Style
	titleStyle        lipgloss.Style
	subtitleStyle     lipgloss.Style
	accentStyle       lipgloss.Style
	successStyle      lipgloss.Style
	warningStyle      lipgloss.Style
	errorStyle        lipgloss.Style
	mutedStyle        lipgloss.Style
	highlightStyle    lipgloss.Style
	headerStyle       lipgloss.Style
	footerStyle       lipgloss.Style
	selectedItemStyle lipgloss.Style
	normalItemStyle   lipgloss.Style
	doneItemStyle     lipgloss.Style
)

func init() {
	applyTheme(true)
}

// applyTheme switches the foreground palette and rebuilds every style.
func applyTheme(dark bool) {
	if dark {
		colorFg = lipgloss.Color("#C0CAF5")
		colorSubtle = lipgloss.Color("#414868")
		colorMuted = lipgloss.Color("#666666")
	} else {
		colorFg = lipgloss.Color("#343B58")
		colorSubtle = lipgloss.Color("#9699A3")
		colorMuted = lipgloss.Color("#8C8C8C")
	}
	buildStyles()
}

func buildStyles() {
	// Tabs
	activeTabStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(colorPrimary).
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(colorPrimary).
		Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
		Foreground(colorMuted).
		Padding(0, 2)

	// Panels
	panelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorSubtle).
		Padding(1, 2)

	activePanelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorPrimary).
		Padding(1, 2)

	// Timer
	timerStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(colorPrimary).
		Align(lipgloss.Center)

	timerRunningStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(colorSuccess).
		Align(lipgloss.Center)

	// Text
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorFg)
	subtitleStyle = lipgloss.NewStyle().Foreground(colorMuted)
	accentStyle = lipgloss.NewStyle().Foreground(colorAccent)
	successStyle = lipgloss.NewStyle().Foreground(colorSuccess)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning)
	errorStyle = lipgloss.NewStyle().Foreground(colorError)
	mutedStyle = lipgloss.NewStyle().Foreground(colorMuted)
	highlightStyle = lipgloss.NewStyle().Foreground(colorHighlight)

	// Header/footer
	headerStyle = lipgloss.NewStyle().Padding(0, 1)
	footerStyle = lipgloss.NewStyle().Foreground(colorMuted).Padding(0, 1)

	// List items
	selectedItemStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	normalItemStyle = lipgloss.NewStyle().Foreground(colorFg)
	doneItemStyle = lipgloss.NewStyle().Foreground(colorMuted).Strikethrough(true)
}
