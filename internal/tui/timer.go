package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/focusflow/internal/tracker"
)

// timerView renders the single focus session. The engine owns the session;
// this only reads copies and forwards toggles.
type timerView struct {
	state  *tracker.State
	engine *tracker.Engine
}

// toggle starts a session on target ("" for the default target) or stops
// the running one.
func (t timerView) toggle(target string) tea.Cmd {
	wasActive := t.engine.Active()
	t.engine.Toggle(target)
	if wasActive {
		return statusCmd("Timer stopped")
	}
	return statusCmd("Timer started: " + t.targetLabel())
}

// targetLabel names what the running session credits, or what the next
// session would credit when idle.
func (t timerView) targetLabel() string {
	ts := t.engine.State()
	taskID, projectID := ts.ActiveTaskID, ts.ActiveProjectID
	if !ts.IsActive {
		taskID, projectID = t.state.ResolveTarget("")
	}

	name := projectID
	if p, ok := t.state.Project(projectID); ok {
		name = p.Name
	}
	if task, ok := t.state.Task(taskID); ok {
		name += " / " + task.Title
	}
	return name
}

func (t timerView) panel(w int) string {
	_, projectID := t.state.ResolveTarget("")
	var stored int64
	if p, ok := t.state.Project(projectID); ok {
		stored = p.TotalTime
	}
	// Live session length while running, the project total otherwise.
	timeStr := formatSeconds(t.engine.Display(stored))

	if t.engine.Active() {
		content := lipgloss.JoinVertical(lipgloss.Center,
			timerRunningStyle.Width(w-6).Render(timeStr),
			successStyle.Render("●  RUNNING"),
			highlightStyle.Render(t.targetLabel()),
		)
		return activePanelStyle.Width(w).Render(content)
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		timerStyle.Width(w-6).Render(timeStr),
		mutedStyle.Render("■  STOPPED"),
		mutedStyle.Render("Press s to start tracking "+t.targetLabel()),
	)
	return panelStyle.Width(w).Render(content)
}

// indicator is the footer badge, empty when idle.
func (t timerView) indicator() string {
	if !t.engine.Active() {
		return ""
	}
	return successStyle.Render(" ● " + formatDuration(t.engine.Elapsed()))
}
