package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// viewState represents the currently active view.
type viewState int

const (
	viewDashboard viewState = iota
	viewProjects
	viewAnalytics
	viewReminders
	viewSettings
)

var viewNames = []string{"Dashboard", "Projects", "Analytics", "Reminders", "Settings"}

// --- Messages ---

// StateChangedMsg tells the App that the cached documents changed and the
// screen must be redrawn. Senders outside the event loop deliver it through
// tea.Program.Send.
type StateChangedMsg struct{}

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

// serviceCmd runs a write off the event loop and reports the outcome in the
// footer. The view refreshes once the store snapshot arrives.
func serviceCmd(done string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(context.Background()); err != nil {
			return statusMsg{text: "Error: " + err.Error(), isError: true}
		}
		return statusMsg{text: done}
	}
}

func statusCmd(text string) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text} }
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func formatSeconds(secs int64) string {
	return formatDuration(time.Duration(secs) * time.Second)
}

func formatHours(secs int64) string {
	h := float64(secs) / 3600
	return fmt.Sprintf("%.1fh", h)
}

// progressBar renders pct (0..100) as a fixed-width bar.
func progressBar(pct, width int) string {
	if width < 1 {
		return ""
	}
	pct = max(0, min(100, pct))
	filled := pct * width / 100
	return successStyle.Render(strings.Repeat("█", filled)) +
		mutedStyle.Render(strings.Repeat("░", width-filled))
}

// clampCursor keeps a list cursor inside [0, n).
func clampCursor(cursor, n int) int {
	if cursor >= n {
		cursor = n - 1
	}
	return max(0, cursor)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 1 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
