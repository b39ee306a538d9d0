package tui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/focusflow/internal/tracker"
)

type statPeriod int

const (
	periodToday statPeriod = iota
	periodWeek
	periodMonth
)

var periodNames = []string{"Today", "Week", "Month"}

func (p statPeriod) value(s tracker.Stats) int64 {
	switch p {
	case periodWeek:
		return s.Week
	case periodMonth:
		return s.Month
	}
	return s.Today
}

const activityRows = 8

type analyticsModel struct {
	state   *tracker.State
	service *tracker.Service
	width   int
	height  int

	period statPeriod
}

func newAnalyticsModel(d Deps) analyticsModel {
	return analyticsModel{state: d.State, service: d.Service}
}

func (a *analyticsModel) setSize(w, h int) {
	a.width = w
	a.height = h
}

func (a analyticsModel) update(msg tea.Msg) (analyticsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Left):
			a.period = (a.period + statPeriod(len(periodNames)) - 1) % statPeriod(len(periodNames))
		case key.Matches(msg, keys.Right):
			a.period = (a.period + 1) % statPeriod(len(periodNames))
		}
	}
	return a, nil
}

// chartBars builds one bar per project, in hours for the selected period.
func (a analyticsModel) chartBars() []barchart.BarData {
	var bars []barchart.BarData
	for _, p := range a.state.Projects() {
		hours := float64(a.period.value(p.Stats)) / 3600.0
		bars = append(bars, barchart.BarData{
			Label: truncate(p.Name, 10),
			Values: []barchart.BarValue{{
				Name:  p.Name,
				Value: hours,
				Style: lipgloss.NewStyle().Foreground(projectColor(p.ThemeColor)),
			}},
		})
	}
	return bars
}

func (a analyticsModel) renderChart() string {
	bars := a.chartBars()
	if len(bars) == 0 {
		return mutedStyle.Render("  No projects yet")
	}

	chartWidth := max(20, a.width-8)
	chartHeight := 10
	if a.height > 36 {
		chartHeight = 14
	}

	chart := barchart.New(chartWidth, chartHeight)
	chart.PushAll(bars)
	chart.Draw()
	return chart.View()
}

func (a analyticsModel) view() string {
	w := a.width - 4

	var tabs []string
	for i, name := range periodNames {
		if statPeriod(i) == a.period {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Analytics"), "  ", lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...),
	)

	totals := a.state.Totals()
	summary := mutedStyle.Render(fmt.Sprintf("  today %s   week %s   month %s   lifetime %s",
		tracker.FormatDuration(totals.Today),
		tracker.FormatDuration(totals.Week),
		tracker.FormatDuration(totals.Month),
		tracker.FormatDuration(totals.Lifetime),
	))

	nav := mutedStyle.Render("  ←/→: period")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", a.renderChart(), "", summary, "", a.renderGoals(w), "", a.renderActivity(w), "", nav,
		),
	)
}

func (a analyticsModel) renderGoals(w int) string {
	barWidth := max(10, min(30, w-40))
	var rows []string
	for _, g := range a.state.Goals() {
		rows = append(rows, fmt.Sprintf("  %-8s %s %3d%%  %s / %s",
			periodLabel(g.Period),
			progressBar(g.Percent(), barWidth),
			g.Percent(),
			tracker.FormatDuration(g.CurrentSeconds),
			tracker.FormatDuration(g.TargetSeconds),
		))
	}
	return strings.Join(rows, "\n")
}

// renderActivity lists the tasks with the most tracked time.
func (a analyticsModel) renderActivity(w int) string {
	history := a.service.ActivityHistory()
	if len(history) == 0 {
		return mutedStyle.Render("  No tracked tasks yet")
	}

	rows := []string{
		mutedStyle.Render(fmt.Sprintf("  %-32s %-20s %10s", "Task", "Project", "Time")),
		mutedStyle.Render("  " + strings.Repeat("─", min(w-6, 64))),
	}
	for i, t := range history {
		if i == activityRows {
			break
		}
		projectName := "Unknown"
		theme := ""
		if p, ok := a.state.Project(t.ProjectID); ok {
			projectName = p.Name
			theme = p.ThemeColor
		}
		rows = append(rows, fmt.Sprintf("  %-32s %s %-18s %10s",
			truncate(t.Title, 32), colorDot(theme), truncate(projectName, 18), tracker.FormatDuration(t.TotalTime),
		))
	}
	return strings.Join(rows, "\n")
}
