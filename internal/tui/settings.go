package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/focusflow/internal/tracker"
)

type settingsModel struct {
	state   *tracker.State
	service *tracker.Service
	width   int
	height  int

	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	dailyGoal   *string
	weeklyGoal  *string
	monthlyGoal *string
	darkMode    *bool
	name        *string
	email       *string
}

func newSettingsModel(d Deps) settingsModel {
	dg, wg, mg, name, email := "", "", "", "", ""
	dark := true
	return settingsModel{
		state:       d.State,
		service:     d.Service,
		dailyGoal:   &dg,
		weeklyGoal:  &wg,
		monthlyGoal: &mg,
		darkMode:    &dark,
		name:        &name,
		email:       &email,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Edit):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	prefs := s.state.Preferences()
	profile, _ := s.state.Profile()

	*s.dailyGoal = secsToHours(prefs.DailyGoalTarget)
	*s.weeklyGoal = secsToHours(prefs.WeeklyGoalTarget)
	*s.monthlyGoal = secsToHours(prefs.MonthlyGoalTarget)
	*s.darkMode = prefs.IsDarkMode
	*s.name = profile.Name
	*s.email = profile.Email

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Daily goal (hours)").Value(s.dailyGoal).Validate(validateHours),
			huh.NewInput().Title("Weekly goal (hours)").Value(s.weeklyGoal).Validate(validateHours),
			huh.NewInput().Title("Monthly goal (hours)").Value(s.monthlyGoal).Validate(validateHours),
			huh.NewConfirm().Title("Dark mode").Value(s.darkMode),
		).Title("Goals"),
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(s.name).Validate(huh.ValidateNotEmpty()),
			huh.NewInput().Title("Email").Value(s.email),
		).Title("Profile"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		return s, s.saveCmd()
	}

	return s, cmd
}

// saveCmd writes the form values. Preferences are merged field by field so
// a concurrent edit of another field survives.
func (s settingsModel) saveCmd() tea.Cmd {
	daily, _ := hoursToSecs(*s.dailyGoal)
	weekly, _ := hoursToSecs(*s.weeklyGoal)
	monthly, _ := hoursToSecs(*s.monthlyGoal)
	dark := *s.darkMode
	name, email := *s.name, *s.email

	return serviceCmd("Settings saved", func(ctx context.Context) error {
		if err := s.service.SetDailyGoal(ctx, daily); err != nil {
			return err
		}
		if err := s.service.SetGoalTarget(ctx, tracker.PeriodWeekly, weekly); err != nil {
			return err
		}
		if err := s.service.SetGoalTarget(ctx, tracker.PeriodMonthly, monthly); err != nil {
			return err
		}
		if err := s.service.SetDarkMode(ctx, dark); err != nil {
			return err
		}
		return s.service.UpdateProfile(ctx, name, email)
	})
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Settings")
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	prefs := s.state.Preferences()
	profile, ok := s.state.Profile()

	theme := "light"
	if prefs.IsDarkMode {
		theme = "dark"
	}

	var rows []string
	rows = append(rows, titleStyle.Render("Settings"), "")
	rows = append(rows, settingRow("Daily goal", formatHours(prefs.DailyGoalTarget)))
	rows = append(rows, settingRow("Weekly goal", formatHours(prefs.WeeklyGoalTarget)))
	rows = append(rows, settingRow("Monthly goal", formatHours(prefs.MonthlyGoalTarget)))
	rows = append(rows, settingRow("Theme", theme))
	rows = append(rows, "", titleStyle.Render("Profile"), "")
	if ok {
		rows = append(rows, settingRow("Name", profile.Name))
		rows = append(rows, settingRow("Email", profile.Email))
		rows = append(rows, settingRow("Avatar", profile.Avatar))
	} else {
		rows = append(rows, mutedStyle.Render("  No profile yet"))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("Press enter to edit settings"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func settingRow(label, value string) string {
	return fmt.Sprintf("  %s %s", lipgloss.NewStyle().Width(16).Render(label), highlightStyle.Render(value))
}

func validateHours(s string) error {
	if _, err := hoursToSecs(s); err != nil {
		return err
	}
	return nil
}

func secsToHours(secs int64) string {
	return strconv.FormatFloat(float64(secs)/3600, 'f', -1, 64)
}

func hoursToSecs(s string) (int64, error) {
	hours, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || hours < 0 {
		return 0, errors.New("enter a non-negative number of hours")
	}
	return int64(hours * 3600), nil
}
