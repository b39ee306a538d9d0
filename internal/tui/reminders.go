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

type remindersModel struct {
	state   *tracker.State
	service *tracker.Service
	width   int
	height  int

	cursor int

	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	formTitle *string
	formType  *tracker.ReminderType
	formDue   *string
}

func newRemindersModel(d Deps) remindersModel {
	title, typ, due := "", tracker.ReminderShortTerm, ""
	return remindersModel{
		state:     d.State,
		service:   d.Service,
		formTitle: &title,
		formType:  &typ,
		formDue:   &due,
	}
}

func (r *remindersModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

// ordered lists short-term reminders before long-term ones, keeping the
// cached order inside each group.
func (r remindersModel) ordered() []tracker.Reminder {
	var short, long []tracker.Reminder
	for _, rem := range r.state.Reminders() {
		if rem.Type == tracker.ReminderLongTerm {
			long = append(long, rem)
		} else {
			short = append(short, rem)
		}
	}
	return append(short, long...)
}

func (r remindersModel) update(msg tea.Msg) (remindersModel, tea.Cmd) {
	if r.formActive && r.form != nil {
		return r.updateForm(msg)
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return r, nil
	}

	items := r.ordered()
	r.cursor = clampCursor(r.cursor, len(items))

	switch {
	case key.Matches(km, keys.Up):
		if r.cursor > 0 {
			r.cursor--
		}
	case key.Matches(km, keys.Down):
		if r.cursor < len(items)-1 {
			r.cursor++
		}
	case key.Matches(km, keys.New):
		return r.showForm()
	case key.Matches(km, keys.Complete), key.Matches(km, keys.Enter):
		if len(items) > 0 {
			id := items[r.cursor].ID
			return r, serviceCmd("Reminder updated", func(ctx context.Context) error {
				return r.service.ToggleReminder(ctx, id)
			})
		}
	}
	return r, nil
}

func (r remindersModel) showForm() (remindersModel, tea.Cmd) {
	*r.formTitle = ""
	*r.formType = tracker.ReminderShortTerm
	*r.formDue = ""

	r.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Reminder").Value(r.formTitle).Validate(huh.ValidateNotEmpty()),
			huh.NewSelect[tracker.ReminderType]().Title("Type").
				Options(
					huh.NewOption("Short term", tracker.ReminderShortTerm),
					huh.NewOption("Long term", tracker.ReminderLongTerm),
				).Value(r.formType),
			huh.NewInput().Title("Due").Placeholder("17:00 or 2024-12-31").Value(r.formDue),
		),
	).WithShowHelp(true).WithShowErrors(true)

	r.formActive = true
	return r, r.form.Init()
}

func (r remindersModel) updateForm(msg tea.Msg) (remindersModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		r.formActive = false
		r.form = nil
		return r, nil
	}

	form, cmd := r.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		r.form = f
	}

	if r.form.State == huh.StateCompleted {
		r.formActive = false
		title, typ, due := *r.formTitle, *r.formType, *r.formDue
		return r, serviceCmd("Reminder added", func(ctx context.Context) error {
			_, err := r.service.AddReminder(ctx, title, typ, due)
			return err
		})
	}
	return r, cmd
}

func (r remindersModel) view() string {
	w := r.width - 4

	if r.formActive && r.form != nil {
		content := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("New Reminder"), "", r.form.View())
		return panelStyle.Width(w).Render(content)
	}

	title := titleStyle.Render("Reminders")
	items := r.ordered()
	if len(items) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No reminders. Press n to add one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	cursor := clampCursor(r.cursor, len(items))
	rows := []string{title}
	var group tracker.ReminderType
	for i, rem := range items {
		if rem.Type != group {
			group = rem.Type
			label := "Short term"
			if group == tracker.ReminderLongTerm {
				label = "Long term"
			}
			rows = append(rows, "", highlightStyle.Render(label))
		}

		prefix := "  "
		style := normalItemStyle
		if i == cursor {
			prefix = "> "
			style = selectedItemStyle
		}
		check := "[ ] "
		if rem.Completed {
			check = "[x] "
			style = doneItemStyle
		}
		due := ""
		if rem.DueTime != "" {
			due = mutedStyle.Render(fmt.Sprintf("  %s", rem.DueTime))
		}
		rows = append(rows, prefix+style.Render(check+rem.Title)+due)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  c: done  ↑/↓: move"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
