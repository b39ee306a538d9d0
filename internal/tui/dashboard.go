package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/focusflow/internal/tracker"
)

type dashboardModel struct {
	state   *tracker.State
	service *tracker.Service
	timer   timerView
	width   int
	height  int

	inboxCursor int

	formActive bool
	form       *huh.Form
	formTitle  *string
}

func newDashboardModel(d Deps) dashboardModel {
	title := ""
	return dashboardModel{
		state:     d.State,
		service:   d.Service,
		timer:     timerView{state: d.State, engine: d.Engine},
		formTitle: &title,
	}
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	if d.formActive && d.form != nil {
		return d.updateForm(msg)
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return d, nil
	}

	inbox := d.state.Inbox()
	d.inboxCursor = clampCursor(d.inboxCursor, len(inbox))

	switch {
	case key.Matches(km, keys.Toggle):
		return d, d.timer.toggle("")
	case key.Matches(km, keys.Up):
		if d.inboxCursor > 0 {
			d.inboxCursor--
		}
	case key.Matches(km, keys.Down):
		if d.inboxCursor < len(inbox)-1 {
			d.inboxCursor++
		}
	case key.Matches(km, keys.Complete), key.Matches(km, keys.Enter):
		if len(inbox) > 0 {
			id := inbox[d.inboxCursor].ID
			return d, serviceCmd("Inbox updated", func(ctx context.Context) error {
				return d.service.ToggleInboxTask(ctx, id)
			})
		}
	case key.Matches(km, keys.New):
		return d.showInboxForm()
	}
	return d, nil
}

func (d dashboardModel) showInboxForm() (dashboardModel, tea.Cmd) {
	*d.formTitle = ""
	d.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Inbox item").Value(d.formTitle).Validate(huh.ValidateNotEmpty()),
		),
	).WithShowHelp(true).WithShowErrors(true)

	d.formActive = true
	return d, d.form.Init()
}

func (d dashboardModel) updateForm(msg tea.Msg) (dashboardModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		d.formActive = false
		d.form = nil
		return d, nil
	}

	form, cmd := d.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		d.form = f
	}

	if d.form.State == huh.StateCompleted {
		d.formActive = false
		title := *d.formTitle
		return d, serviceCmd("Added to inbox", func(ctx context.Context) error {
			_, err := d.service.AddInboxTask(ctx, title)
			return err
		})
	}
	return d, cmd
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}
	w := d.width - 4

	if d.formActive && d.form != nil {
		content := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("New Inbox Item"), "", d.form.View())
		return panelStyle.Width(w).Render(content)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		d.timer.panel(w),
		d.renderTodayPanel(w),
		d.renderInboxPanel(w),
	)
}

func (d dashboardModel) renderTodayPanel(w int) string {
	totals := d.state.Totals()
	prefs := d.state.Preferences()
	pct := tracker.Percent(totals.Today, prefs.DailyGoalTarget)

	header := fmt.Sprintf("%s  %s %s",
		titleStyle.Render("Daily Goal"),
		highlightStyle.Render(tracker.FormatDuration(totals.Today)),
		mutedStyle.Render("/ "+tracker.FormatDuration(prefs.DailyGoalTarget)),
	)
	barWidth := max(10, min(40, w-16))
	rows := []string{header, fmt.Sprintf("%s %3d%%", progressBar(pct, barWidth), pct)}

	for _, g := range d.state.Goals() {
		rows = append(rows, mutedStyle.Render(fmt.Sprintf("%-8s %s / %s  %d%%",
			periodLabel(g.Period),
			tracker.FormatDuration(g.CurrentSeconds),
			tracker.FormatDuration(g.TargetSeconds),
			g.Percent(),
		)))
	}

	var today []string
	for _, p := range d.state.Projects() {
		if p.Stats.Today <= 0 {
			continue
		}
		today = append(today, fmt.Sprintf("  %s %-20s %s", colorDot(p.ThemeColor), truncate(p.Name, 20), formatSeconds(p.Stats.Today)))
	}
	if len(today) > 0 {
		rows = append(rows, "")
		rows = append(rows, today...)
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dashboardModel) renderInboxPanel(w int) string {
	title := titleStyle.Render("Inbox")
	inbox := d.state.Inbox()
	if len(inbox) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("Nothing captured. Press n to add an item."),
		)
		return panelStyle.Width(w).Render(content)
	}

	cursor := clampCursor(d.inboxCursor, len(inbox))
	rows := []string{title}
	for i, item := range inbox {
		prefix := "  "
		style := normalItemStyle
		if i == cursor {
			prefix = "> "
			style = selectedItemStyle
		}
		check := "[ ] "
		if item.Completed {
			check = "[x] "
			style = doneItemStyle
		}
		rows = append(rows, prefix+style.Render(check+item.Title))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: capture  c: done  s: start/stop timer"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func periodLabel(p tracker.GoalPeriod) string {
	switch p {
	case tracker.PeriodWeekly:
		return "Weekly"
	case tracker.PeriodMonthly:
		return "Monthly"
	}
	return string(p)
}
