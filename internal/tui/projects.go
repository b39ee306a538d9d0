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

var projectIcons = []string{"folder", "rocket", "code", "book", "briefcase", "star"}

type projectsModel struct {
	state   *tracker.State
	service *tracker.Service
	timer   timerView
	width   int
	height  int

	cursor       int
	taskCursor   int
	viewingTasks bool // true = viewing tasks of selected project

	formActive bool
	form       *huh.Form
	formType   string // "project", "edit_project", "task", "edit_task", "subtask"

	// Form field pointers (survive value copies)
	formName     *string
	formDesc     *string
	formColor    *string
	formIcon     *string
	formDeadline *string
	formProgress *string
	formNotes    *string
	formPriority *bool

	editingID string
}

func newProjectsModel(d Deps) projectsModel {
	name, desc, color, icon := "", "", themeNames[0], projectIcons[0]
	deadline, progress, notes, priority := "", "0", "", false
	return projectsModel{
		state:        d.State,
		service:      d.Service,
		timer:        timerView{state: d.State, engine: d.Engine},
		formName:     &name,
		formDesc:     &desc,
		formColor:    &color,
		formIcon:     &icon,
		formDeadline: &deadline,
		formProgress: &progress,
		formNotes:    &notes,
		formPriority: &priority,
	}
}

func (p *projectsModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

// selectedProject returns the project under the cursor.
func (p projectsModel) selectedProject() (tracker.Project, bool) {
	projects := p.state.Projects()
	if len(projects) == 0 {
		return tracker.Project{}, false
	}
	return projects[clampCursor(p.cursor, len(projects))], true
}

// closeTasks returns to the project list. The timer falls back to the
// viewed project only while its task list is open.
func (p *projectsModel) closeTasks() {
	p.viewingTasks = false
	p.state.SetViewedProject("")
}

// focus re-marks the open project as viewed when the tab is shown again.
func (p projectsModel) focus() {
	if !p.viewingTasks {
		return
	}
	if proj, ok := p.selectedProject(); ok {
		p.state.SetViewedProject(proj.ID)
	}
}

func (p projectsModel) update(msg tea.Msg) (projectsModel, tea.Cmd) {
	if p.formActive && p.form != nil {
		return p.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		if p.viewingTasks {
			return p.updateTaskView(msg)
		}
		return p.updateProjectList(msg)
	}
	return p, nil
}

func (p projectsModel) updateProjectList(msg tea.KeyMsg) (projectsModel, tea.Cmd) {
	projects := p.state.Projects()
	p.cursor = clampCursor(p.cursor, len(projects))

	switch {
	case key.Matches(msg, keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
	case key.Matches(msg, keys.Down):
		if p.cursor < len(projects)-1 {
			p.cursor++
		}
	case key.Matches(msg, keys.Enter):
		if len(projects) > 0 {
			p.viewingTasks = true
			p.taskCursor = 0
			p.state.SetViewedProject(projects[p.cursor].ID)
		}
	case key.Matches(msg, keys.Toggle):
		if len(projects) > 0 {
			return p, p.timer.toggle(projects[p.cursor].ID)
		}
	case key.Matches(msg, keys.New):
		return p.showProjectForm(tracker.Project{Icon: projectIcons[0], ThemeColor: themeNames[0]}, "project")
	case key.Matches(msg, keys.Edit):
		if len(projects) > 0 {
			return p.showProjectForm(projects[p.cursor], "edit_project")
		}
	case key.Matches(msg, keys.Delete):
		if len(projects) > 0 {
			id := projects[p.cursor].ID
			return p, serviceCmd("Project deleted", func(ctx context.Context) error {
				return p.service.DeleteProjects(ctx, id)
			})
		}
	}
	return p, nil
}

func (p projectsModel) updateTaskView(msg tea.KeyMsg) (projectsModel, tea.Cmd) {
	proj, ok := p.selectedProject()
	if !ok {
		p.closeTasks()
		return p, nil
	}
	tasks := p.state.TasksFor(proj.ID)
	p.taskCursor = clampCursor(p.taskCursor, len(tasks))

	switch {
	case key.Matches(msg, keys.Back):
		p.closeTasks()
		return p, nil
	case key.Matches(msg, keys.Up):
		if p.taskCursor > 0 {
			p.taskCursor--
		}
	case key.Matches(msg, keys.Down):
		if p.taskCursor < len(tasks)-1 {
			p.taskCursor++
		}
	case key.Matches(msg, keys.New):
		return p.showTaskForm(tracker.Task{}, "task")
	}

	if len(tasks) == 0 {
		return p, nil
	}
	task := tasks[p.taskCursor]

	switch {
	case key.Matches(msg, keys.Toggle):
		return p, p.timer.toggle(task.ID)
	case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Edit):
		return p.showTaskForm(task, "edit_task")
	case key.Matches(msg, keys.Subtask):
		p.editingID = task.ID
		return p.showSubtaskForm()
	case key.Matches(msg, keys.Complete):
		return p, serviceCmd("Task updated", func(ctx context.Context) error {
			return p.service.ToggleTaskStatus(ctx, task.ID)
		})
	case key.Matches(msg, keys.Delete):
		return p, serviceCmd("Task deleted", func(ctx context.Context) error {
			return p.service.DeleteTask(ctx, task.ID)
		})
	case key.Matches(msg, keys.MoveUp):
		if p.taskCursor > 0 {
			p.taskCursor--
			return p, p.moveCmd(task.ID, p.taskCursor)
		}
	case key.Matches(msg, keys.MoveDown):
		if p.taskCursor < len(tasks)-1 {
			p.taskCursor++
			return p, p.moveCmd(task.ID, p.taskCursor)
		}
	}
	return p, nil
}

func (p projectsModel) moveCmd(id string, index int) tea.Cmd {
	return serviceCmd("Task moved", func(ctx context.Context) error {
		return p.service.MoveTask(ctx, id, index)
	})
}

func (p projectsModel) showProjectForm(proj tracker.Project, formType string) (projectsModel, tea.Cmd) {
	*p.formName = proj.Name
	*p.formDesc = proj.Description
	*p.formColor = proj.ThemeColor
	*p.formIcon = proj.Icon
	*p.formDeadline = proj.Deadline
	*p.formProgress = strconv.Itoa(proj.Progress)
	p.formType = formType
	p.editingID = proj.ID

	colorOptions := make([]huh.Option[string], len(themeNames))
	for i, c := range themeNames {
		colorOptions[i] = huh.NewOption(colorDot(c)+" "+strings.TrimSuffix(strings.TrimPrefix(c, "bg-"), "-500"), c)
	}
	iconOptions := make([]huh.Option[string], len(projectIcons))
	for i, ic := range projectIcons {
		iconOptions[i] = huh.NewOption(ic, ic)
	}

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Project Name").Value(p.formName).Validate(huh.ValidateNotEmpty()),
			huh.NewInput().Title("Description").Value(p.formDesc),
			huh.NewSelect[string]().Title("Color").Options(colorOptions...).Value(p.formColor),
			huh.NewSelect[string]().Title("Icon").Options(iconOptions...).Value(p.formIcon),
			huh.NewInput().Title("Deadline").Placeholder("2024-12-31").Value(p.formDeadline),
			huh.NewInput().Title("Progress (%)").Value(p.formProgress).Validate(validatePercent),
		),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func (p projectsModel) showTaskForm(task tracker.Task, formType string) (projectsModel, tea.Cmd) {
	*p.formName = task.Title
	*p.formDesc = task.Subtitle
	*p.formNotes = task.Notes
	*p.formDeadline = task.DueDate
	*p.formPriority = task.IsPriority
	p.formType = formType
	p.editingID = task.ID

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Task").Value(p.formName).Validate(huh.ValidateNotEmpty()),
			huh.NewInput().Title("Subtitle").Value(p.formDesc),
			huh.NewInput().Title("Due date").Placeholder("2024-12-31").Value(p.formDeadline),
			huh.NewText().Title("Notes").Value(p.formNotes),
			huh.NewConfirm().Title("Priority").Value(p.formPriority),
		),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func (p projectsModel) showSubtaskForm() (projectsModel, tea.Cmd) {
	*p.formName = ""
	p.formType = "subtask"

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Subtask").Value(p.formName).Validate(huh.ValidateNotEmpty()),
		),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func validatePercent(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 || n > 100 {
		return errors.New("enter a number from 0 to 100")
	}
	return nil
}

func (p projectsModel) updateForm(msg tea.Msg) (projectsModel, tea.Cmd) {
	// Check for escape to cancel form
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			p.formActive = false
			p.form = nil
			return p, nil
		}
	}

	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}

	if p.form.State == huh.StateCompleted {
		p.formActive = false
		return p, p.submitCmd()
	}

	return p, cmd
}

// submitCmd saves the completed form. Values are copied out of the shared
// pointers before the command runs.
func (p projectsModel) submitCmd() tea.Cmd {
	id := p.editingID
	progress, _ := strconv.Atoi(strings.TrimSpace(*p.formProgress))
	projectIn := tracker.ProjectInput{
		Name:        *p.formName,
		Description: *p.formDesc,
		Icon:        *p.formIcon,
		ThemeColor:  *p.formColor,
		Deadline:    *p.formDeadline,
		Progress:    progress,
	}
	taskIn := tracker.TaskInput{
		Title:      *p.formName,
		Subtitle:   *p.formDesc,
		Notes:      *p.formNotes,
		DueDate:    *p.formDeadline,
		IsPriority: *p.formPriority,
	}

	switch p.formType {
	case "project":
		return serviceCmd("Project created", func(ctx context.Context) error {
			_, err := p.service.AddProject(ctx, projectIn)
			return err
		})
	case "edit_project":
		return serviceCmd("Project saved", func(ctx context.Context) error {
			return p.service.UpdateProject(ctx, id, projectIn)
		})
	case "task":
		proj, ok := p.selectedProject()
		if !ok {
			return nil
		}
		return serviceCmd("Task created", func(ctx context.Context) error {
			_, err := p.service.AddTask(ctx, proj.ID, taskIn)
			return err
		})
	case "edit_task":
		return serviceCmd("Task saved", func(ctx context.Context) error {
			return p.service.UpdateTask(ctx, id, taskIn)
		})
	case "subtask":
		title := *p.formName
		return serviceCmd("Subtask added", func(ctx context.Context) error {
			_, err := p.service.AddSubtask(ctx, id, title)
			return err
		})
	}
	return nil
}

func (p projectsModel) view() string {
	if p.formActive && p.form != nil {
		title := "New Project"
		switch p.formType {
		case "edit_project":
			title = "Edit Project"
		case "task":
			title = "New Task"
		case "edit_task":
			title = "Edit Task"
		case "subtask":
			title = "New Subtask"
		}
		content := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), "", p.form.View())
		return panelStyle.Width(p.width - 4).Render(content)
	}

	if p.viewingTasks {
		return p.renderTaskView()
	}
	return p.renderProjectList()
}

func (p projectsModel) renderProjectList() string {
	w := p.width - 4
	title := titleStyle.Render("Projects")
	projects := p.state.Projects()

	if len(projects) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No projects yet. Press n to create one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("    %-24s %9s %9s %9s %9s %5s", "Name", "Today", "Week", "Month", "Total", "Done")))

	cursor := clampCursor(p.cursor, len(projects))
	for i, proj := range projects {
		prefix := "  "
		style := normalItemStyle
		if i == cursor {
			prefix = "> "
			style = selectedItemStyle
		}
		live := " "
		if p.timer.engine.Tracking(proj.ID) {
			live = successStyle.Render("●")
		}
		row := fmt.Sprintf("%-24s %9s %9s %9s %9s %4d%%",
			truncate(proj.Name, 24),
			tracker.FormatDuration(proj.Stats.Today),
			tracker.FormatDuration(proj.Stats.Week),
			tracker.FormatDuration(proj.Stats.Month),
			tracker.FormatDuration(proj.TotalTime),
			proj.Progress,
		)
		rows = append(rows, prefix+colorDot(proj.ThemeColor)+live+" "+style.Render(row))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  e: edit  d: delete  s: start/stop  enter: tasks"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (p projectsModel) renderTaskView() string {
	w := p.width - 4
	proj, _ := p.selectedProject()
	header := fmt.Sprintf("%s %s  %s", colorDot(proj.ThemeColor), proj.Name, mutedStyle.Render("Tasks"))
	title := titleStyle.Render(header)
	tasks := p.state.TasksFor(proj.ID)

	if len(tasks) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No tasks. Press n to add one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	if proj.Description != "" {
		rows = append(rows, subtitleStyle.Render(proj.Description))
	}
	rows = append(rows, "")

	cursor := clampCursor(p.taskCursor, len(tasks))
	for i, task := range tasks {
		prefix := "  "
		style := normalItemStyle
		if i == cursor {
			prefix = "> "
			style = selectedItemStyle
		}
		check := "[ ] "
		if task.Status == tracker.StatusCompleted {
			check = "[x] "
			if i != cursor {
				style = doneItemStyle
			}
		}

		var extra []string
		if p.timer.engine.Tracking(task.ID) {
			extra = append(extra, successStyle.Render("●"))
		}
		if task.IsPriority {
			extra = append(extra, accentStyle.Render("!"))
		}
		extra = append(extra, mutedStyle.Render(tracker.FormatDuration(task.TotalTime)))
		if n := len(task.Subtasks); n > 0 {
			done := 0
			for _, st := range task.Subtasks {
				if st.Completed {
					done++
				}
			}
			extra = append(extra, mutedStyle.Render(fmt.Sprintf("%d/%d", done, n)))
		}
		if task.DueDate != "" {
			extra = append(extra, warningStyle.Render("due "+task.DueDate))
		}

		rows = append(rows, prefix+style.Render(check+task.Title)+" "+strings.Join(extra, " "))
		if task.Subtitle != "" && i == cursor {
			rows = append(rows, "      "+subtitleStyle.Render(task.Subtitle))
		}
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  e: edit  c: complete  a: subtask  K/J: move  s: start/stop  esc: back"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
