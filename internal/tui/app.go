// Package tui is the Bubble Tea front end. It renders the cached documents
// held by tracker.State and forwards every write to the tracker service.
package tui

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/sadopc/focusflow/internal/export"
	"github.com/sadopc/focusflow/internal/tracker"
)

// Deps are the collaborators the App renders and drives.
type Deps struct {
	State     *tracker.State
	Engine    *tracker.Engine
	Service   *tracker.Service
	Logger    zerolog.Logger
	ExportDir string
}

// App is the root Bubble Tea model.
type App struct {
	state     *tracker.State
	engine    *tracker.Engine
	timer     timerView
	logger    zerolog.Logger
	exportDir string
	dark      bool
	width     int
	height    int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	dashboard dashboardModel
	projects  projectsModel
	analytics analyticsModel
	reminders remindersModel
	settings  settingsModel

	help      help.Model
	status    string
	statusErr bool
}

func NewApp(d Deps) App {
	h := help.New()
	h.ShowAll = false

	dark := d.State.Preferences().IsDarkMode
	applyTheme(dark)

	return App{
		state:      d.State,
		engine:     d.Engine,
		timer:      timerView{state: d.State, engine: d.Engine},
		logger:     d.Logger.With().Str("component", "tui").Logger(),
		exportDir:  d.ExportDir,
		dark:       dark,
		activeView: viewDashboard,
		dashboard:  newDashboardModel(d),
		projects:   newProjectsModel(d),
		analytics:  newAnalyticsModel(d),
		reminders:  newRemindersModel(d),
		settings:   newSettingsModel(d),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.dashboard.setSize(a.width, contentHeight)
		a.projects.setSize(a.width, contentHeight)
		a.analytics.setSize(a.width, contentHeight)
		a.reminders.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		// Export picker
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			a.stopTimer()
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.switchView(viewDashboard)
			return a, nil
		case key.Matches(msg, keys.Tab2):
			a.switchView(viewProjects)
			return a, nil
		case key.Matches(msg, keys.Tab3):
			a.switchView(viewAnalytics)
			return a, nil
		case key.Matches(msg, keys.Tab4):
			a.switchView(viewReminders)
			return a, nil
		case key.Matches(msg, keys.Tab5):
			a.switchView(viewSettings)
			return a, nil
		case key.Matches(msg, keys.Tab):
			a.switchView((a.activeView + 1) % viewState(len(viewNames)))
			return a, nil
		}

	case tickMsg:
		// Visual heartbeat only; time is committed on stop.
		a.engine.Tick()
		return a, tickCmd()

	case StateChangedMsg:
		if dark := a.state.Preferences().IsDarkMode; dark != a.dark {
			applyTheme(dark)
			a.dark = dark
		}
		return a, nil

	case statusMsg:
		a.status = msg.text
		a.statusErr = msg.isError
		if msg.isError {
			a.logger.Warn().Str("status", msg.text).Msg("action failed")
		}
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.statusErr = false
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

// switchView changes tabs. Only the projects tab with an open task list
// names a viewed project.
func (a *App) switchView(v viewState) {
	if a.activeView == viewProjects && v != viewProjects {
		a.state.SetViewedProject("")
	}
	if v == viewProjects && a.activeView != viewProjects {
		a.projects.focus()
	}
	a.activeView = v
}

// stopTimer commits a running session before the program exits.
func (a App) stopTimer() {
	if a.engine.Active() {
		a.engine.Toggle("")
	}
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewDashboard:
		a.dashboard, cmd = a.dashboard.update(msg)
	case viewProjects:
		a.projects, cmd = a.projects.update(msg)
	case viewAnalytics:
		a.analytics, cmd = a.analytics.update(msg)
	case viewReminders:
		a.reminders, cmd = a.reminders.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewDashboard:
		return a.dashboard.formActive
	case viewProjects:
		return a.projects.formActive
	case viewReminders:
		return a.reminders.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewDashboard:
		content = a.dashboard.view()
	case viewProjects:
		content = a.projects.view()
	case viewAnalytics:
		content = a.analytics.view()
	case viewReminders:
		content = a.reminders.view()
	case viewSettings:
		content = a.settings.view()
	}

	// Calculate available height for content
	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := max(1, a.height-headerHeight-footerHeight)

	// Show export picker overlay
	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("focusflow")
	if p, ok := a.state.Profile(); ok && p.Name != "" {
		title += mutedStyle.Render(" · " + p.Name)
	}
	gap := max(1, a.width-lipgloss.Width(title)-lipgloss.Width(tabRow)-4)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := mutedStyle
		if a.statusErr {
			style = errorStyle
		}
		status = style.Render(" " + a.status)
	}

	left := footerStyle.Render(helpView)
	right := a.timer.indicator() + status

	gap := max(1, a.width-lipgloss.Width(left)-lipgloss.Width(right)-2)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export Format")
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range export.Formats() {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	formats := export.Formats()
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(formats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(formats[a.exportCursor])
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format string) tea.Cmd {
	projects := a.state.Projects()
	tasks := a.state.Tasks()
	path := filepath.Join(a.exportDir, export.FileName(format, time.Now()))

	return func() tea.Msg {
		if err := export.Write(format, projects, tasks, path); err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		return exportDoneMsg{path: path}
	}
}
