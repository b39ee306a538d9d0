package tracker

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sadopc/focusflow/internal/clock"
	"github.com/sadopc/focusflow/internal/store"
)

var (
	ErrEmptyTitle = errors.New("title must not be empty")
	ErrNotFound   = errors.New("not found")
)

// Service is the write side for tasks, projects, inbox items, reminders and
// settings. Reads come from State, which every write reaches back through
// the store subscriptions.
type Service struct {
	docs   DocumentStore
	paths  Paths
	state  *State
	clock  clock.Clock
	logger zerolog.Logger

	inboxDelay    time.Duration
	reminderDelay time.Duration

	wg sync.WaitGroup
}

func NewService(docs DocumentStore, paths Paths, state *State, opts ...Option) *Service {
	o := buildOptions(opts)
	return &Service{
		docs:          docs,
		paths:         paths,
		state:         state,
		clock:         o.clock,
		logger:        o.logger.With().Str("component", "service").Logger(),
		inboxDelay:    o.inboxDelay,
		reminderDelay: o.reminderDelay,
	}
}

func newID(prefix string) string {
	return prefix + uuid.NewString()
}

// =============================================================================
// Tasks
// =============================================================================

// TaskInput carries the user-editable task fields.
type TaskInput struct {
	Title      string
	Subtitle   string
	Notes      string
	DueDate    string
	IsPriority bool
}

// AddTask creates an active task at the end of its project.
func (s *Service) AddTask(ctx context.Context, projectID string, in TaskInput) (Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Task{}, ErrEmptyTitle
	}

	order := orderStep
	if tasks := s.state.TasksFor(projectID); len(tasks) > 0 {
		order = OrderAfter(tasks[len(tasks)-1].Order)
	}

	t := Task{
		ID:         newID("t-"),
		ProjectID:  projectID,
		Title:      title,
		Subtitle:   in.Subtitle,
		Notes:      in.Notes,
		DueDate:    in.DueDate,
		IsPriority: in.IsPriority,
		Status:     StatusActive,
		Order:      order,
	}
	if err := s.docs.Set(ctx, s.paths.Task(t.ID), t); err != nil {
		return Task{}, fmt.Errorf("add task: %w", err)
	}
	return t, nil
}

// UpdateTask rewrites the editable fields only. totalTime is owned by the
// timer and is never written here.
func (s *Service) UpdateTask(ctx context.Context, id string, in TaskInput) error {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return ErrEmptyTitle
	}
	err := s.docs.Update(ctx, s.paths.Task(id), store.Fields{
		"title":      title,
		"subtitle":   in.Subtitle,
		"notes":      in.Notes,
		"dueDate":    in.DueDate,
		"isPriority": in.IsPriority,
	})
	if err != nil {
		return fmt.Errorf("update task: %w", s.notFound(err))
	}
	return nil
}

// SetTaskStatus stamps completedAt when the task becomes completed and
// clears it otherwise.
func (s *Service) SetTaskStatus(ctx context.Context, id string, status TaskStatus) error {
	var completedAt any
	if status == StatusCompleted {
		completedAt = s.clock.Now().UTC()
	}
	err := s.docs.Update(ctx, s.paths.Task(id), store.Fields{
		"status":      string(status),
		"completedAt": completedAt,
	})
	if err != nil {
		return fmt.Errorf("set task status: %w", s.notFound(err))
	}
	return nil
}

// ToggleTaskStatus flips a task between active and completed.
func (s *Service) ToggleTaskStatus(ctx context.Context, id string) error {
	t, ok := s.state.Task(id)
	if !ok {
		return fmt.Errorf("toggle task %s: %w", id, ErrNotFound)
	}
	next := StatusCompleted
	if t.Status == StatusCompleted {
		next = StatusActive
	}
	return s.SetTaskStatus(ctx, id, next)
}

func (s *Service) AddSubtask(ctx context.Context, taskID, title string) (Subtask, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Subtask{}, ErrEmptyTitle
	}
	t, ok := s.state.Task(taskID)
	if !ok {
		return Subtask{}, fmt.Errorf("add subtask to %s: %w", taskID, ErrNotFound)
	}

	sub := Subtask{ID: newID("st-"), Title: title}
	subs := append(append([]Subtask(nil), t.Subtasks...), sub)
	if err := s.docs.Update(ctx, s.paths.Task(taskID), store.Fields{"subtasks": subs}); err != nil {
		return Subtask{}, fmt.Errorf("add subtask: %w", s.notFound(err))
	}
	return sub, nil
}

func (s *Service) ToggleSubtask(ctx context.Context, taskID, subtaskID string) error {
	t, ok := s.state.Task(taskID)
	if !ok {
		return fmt.Errorf("toggle subtask on %s: %w", taskID, ErrNotFound)
	}

	subs := append([]Subtask(nil), t.Subtasks...)
	found := false
	for i := range subs {
		if subs[i].ID == subtaskID {
			subs[i].Completed = !subs[i].Completed
			found = true
		}
	}
	if !found {
		return fmt.Errorf("toggle subtask %s: %w", subtaskID, ErrNotFound)
	}
	if err := s.docs.Update(ctx, s.paths.Task(taskID), store.Fields{"subtasks": subs}); err != nil {
		return fmt.Errorf("toggle subtask: %w", s.notFound(err))
	}
	return nil
}

func (s *Service) DeleteTask(ctx context.Context, id string) error {
	if err := s.docs.Delete(ctx, s.paths.Task(id)); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// MoveTask places a task at index among the other tasks of its project.
// When no key fits between the neighbours the whole project is renumbered
// in one batch.
func (s *Service) MoveTask(ctx context.Context, id string, index int) error {
	t, ok := s.state.Task(id)
	if !ok {
		return fmt.Errorf("move task %s: %w", id, ErrNotFound)
	}

	var others []Task
	for _, o := range s.state.TasksFor(t.ProjectID) {
		if o.ID != id {
			others = append(others, o)
		}
	}
	orders := make([]float64, len(others))
	for i, o := range others {
		orders[i] = o.Order
	}

	if order, ok := InsertOrder(orders, index); ok {
		if err := s.docs.Update(ctx, s.paths.Task(id), store.Fields{"order": order}); err != nil {
			return fmt.Errorf("move task: %w", s.notFound(err))
		}
		return nil
	}

	if index < 0 {
		index = 0
	}
	if index > len(others) {
		index = len(others)
	}
	arranged := make([]Task, 0, len(others)+1)
	arranged = append(arranged, others[:index]...)
	arranged = append(arranged, t)
	arranged = append(arranged, others[index:]...)

	keys := Rebalance(len(arranged))
	b := store.NewBatch()
	for i, a := range arranged {
		b.Update(s.paths.Task(a.ID), store.Fields{"order": keys[i]})
	}
	if err := s.docs.Commit(ctx, b); err != nil {
		return fmt.Errorf("rebalance task order: %w", s.notFound(err))
	}
	s.logger.Debug().Str("project", t.ProjectID).Int("tasks", len(arranged)).Msg("task order rebalanced")
	return nil
}

// =============================================================================
// Projects
// =============================================================================

// ProjectInput carries the user-editable project fields.
type ProjectInput struct {
	Name        string
	Description string
	Icon        string
	ThemeColor  string
	Deadline    string
	Progress    int
}

func (s *Service) AddProject(ctx context.Context, in ProjectInput) (Project, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Project{}, ErrEmptyTitle
	}

	order := orderStep
	if projects := s.state.Projects(); len(projects) > 0 {
		order = OrderAfter(projects[len(projects)-1].Order)
	}
	icon := in.Icon
	if icon == "" {
		icon = "folder"
	}

	p := Project{
		ID:          newID("p-"),
		Name:        name,
		Description: in.Description,
		Icon:        icon,
		ThemeColor:  in.ThemeColor,
		Deadline:    in.Deadline,
		Progress:    clampProgress(in.Progress),
		Order:       order,
	}
	if err := s.docs.Set(ctx, s.paths.Project(p.ID), p); err != nil {
		return Project{}, fmt.Errorf("add project: %w", err)
	}
	return p, nil
}

// UpdateProject rewrites the editable fields. Time counters are untouched.
func (s *Service) UpdateProject(ctx context.Context, id string, in ProjectInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return ErrEmptyTitle
	}
	f := store.Fields{
		"name":        name,
		"description": in.Description,
		"themeColor":  in.ThemeColor,
		"deadline":    in.Deadline,
		"progress":    clampProgress(in.Progress),
	}
	if in.Icon != "" {
		f["icon"] = in.Icon
	}
	if err := s.docs.Update(ctx, s.paths.Project(id), f); err != nil {
		return fmt.Errorf("update project: %w", s.notFound(err))
	}
	return nil
}

// DeleteProjects removes the projects and every task that belongs to them
// in one atomic batch.
func (s *Service) DeleteProjects(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	doomed := make(map[string]bool, len(ids))
	for _, id := range ids {
		doomed[id] = true
	}

	docs, err := s.docs.List(ctx, s.paths.Tasks())
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}

	b := store.NewBatch()
	for _, d := range docs {
		var t Task
		if err := d.Decode(&t); err != nil {
			s.logger.Warn().Err(err).Str("path", d.Path).Msg("skipping undecodable task")
			continue
		}
		if doomed[t.ProjectID] {
			b.Delete(d.Path)
		}
	}
	for _, id := range ids {
		b.Delete(s.paths.Project(id))
	}

	if err := s.docs.Commit(ctx, b); err != nil {
		return fmt.Errorf("delete projects: %w", err)
	}
	if doomed[s.state.ViewedProject()] {
		s.state.SetViewedProject("")
	}
	s.logger.Info().Int("projects", len(ids)).Int("writes", b.Len()).Msg("projects deleted")
	return nil
}

func clampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// =============================================================================
// Inbox & reminders
// =============================================================================

func (s *Service) AddInboxTask(ctx context.Context, title string) (InboxTask, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return InboxTask{}, ErrEmptyTitle
	}
	order := orderStep
	if items := s.state.Inbox(); len(items) > 0 {
		order = OrderAfter(items[len(items)-1].Order)
	}
	it := InboxTask{ID: newID("i-"), Title: title, Order: order}
	if err := s.docs.Set(ctx, s.paths.InboxItem(it.ID), it); err != nil {
		return InboxTask{}, fmt.Errorf("add inbox task: %w", err)
	}
	return it, nil
}

// ToggleInboxTask flips the completed flag. An item that becomes completed
// is deleted once the inbox clear delay has passed, unless it was
// un-completed in the meantime.
func (s *Service) ToggleInboxTask(ctx context.Context, id string) error {
	it, ok := s.state.InboxItem(id)
	if !ok {
		return fmt.Errorf("toggle inbox task %s: %w", id, ErrNotFound)
	}
	done := !it.Completed
	path := s.paths.InboxItem(id)
	if err := s.docs.Update(ctx, path, store.Fields{"completed": done}); err != nil {
		return fmt.Errorf("toggle inbox task: %w", s.notFound(err))
	}
	if done {
		s.clearLater(path, s.inboxDelay)
	}
	return nil
}

func (s *Service) AddReminder(ctx context.Context, title string, typ ReminderType, due string) (Reminder, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Reminder{}, ErrEmptyTitle
	}
	if typ == "" {
		typ = ReminderShortTerm
	}
	r := Reminder{ID: newID("r-"), Title: title, Type: typ, DueTime: due}
	if err := s.docs.Set(ctx, s.paths.Reminder(r.ID), r); err != nil {
		return Reminder{}, fmt.Errorf("add reminder: %w", err)
	}
	return r, nil
}

func (s *Service) ToggleReminder(ctx context.Context, id string) error {
	r, ok := s.state.Reminder(id)
	if !ok {
		return fmt.Errorf("toggle reminder %s: %w", id, ErrNotFound)
	}
	done := !r.Completed
	path := s.paths.Reminder(id)
	if err := s.docs.Update(ctx, path, store.Fields{"completed": done}); err != nil {
		return fmt.Errorf("toggle reminder: %w", s.notFound(err))
	}
	if done {
		s.clearLater(path, s.reminderDelay)
	}
	return nil
}

// clearLater deletes a completed document after delay, re-reading it first
// so an item toggled back in the meantime survives.
func (s *Service) clearLater(path string, delay time.Duration) {
	s.wg.Add(1)
	time.AfterFunc(delay, func() {
		defer s.wg.Done()
		ctx := context.Background()

		var doc struct {
			Completed bool `json:"completed"`
		}
		if err := s.docs.Get(ctx, path, &doc); err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				s.logger.Warn().Err(err).Str("path", path).Msg("clear check failed")
			}
			return
		}
		if !doc.Completed {
			return
		}
		if err := s.docs.Delete(ctx, path); err != nil {
			s.logger.Error().Err(err).Str("path", path).Msg("clear completed item failed")
		}
	})
}

// =============================================================================
// Settings
// =============================================================================

// SetDailyGoal stores the daily target in seconds.
func (s *Service) SetDailyGoal(ctx context.Context, secs int64) error {
	return s.mergePrefs(ctx, map[string]any{"dailyGoalTarget": secs})
}

// SetGoalTarget stores the weekly or monthly target in seconds.
func (s *Service) SetGoalTarget(ctx context.Context, period GoalPeriod, secs int64) error {
	switch period {
	case PeriodWeekly:
		return s.mergePrefs(ctx, map[string]any{"weeklyGoalTarget": secs})
	case PeriodMonthly:
		return s.mergePrefs(ctx, map[string]any{"monthlyGoalTarget": secs})
	}
	return fmt.Errorf("unknown goal period %q", period)
}

func (s *Service) SetDarkMode(ctx context.Context, dark bool) error {
	return s.mergePrefs(ctx, map[string]any{"isDarkMode": dark})
}

func (s *Service) mergePrefs(ctx context.Context, fields map[string]any) error {
	if err := s.docs.Set(ctx, s.paths.Preferences(), fields, store.Merge()); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

// EnsureProfile creates the profile document when it does not exist yet.
func (s *Service) EnsureProfile(ctx context.Context, email string) (Profile, error) {
	var p Profile
	err := s.docs.Get(ctx, s.paths.Profile(), &p)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return Profile{}, fmt.Errorf("load profile: %w", err)
	}

	p = Profile{Name: "New User", Email: email, Avatar: AvatarURL("New User")}
	if err := s.docs.Set(ctx, s.paths.Profile(), p); err != nil {
		return Profile{}, fmt.Errorf("create profile: %w", err)
	}
	return p, nil
}

// UpdateProfile merges name and email and refreshes the generated avatar.
func (s *Service) UpdateProfile(ctx context.Context, name, email string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyTitle
	}
	err := s.docs.Set(ctx, s.paths.Profile(), map[string]any{
		"name":   name,
		"email":  strings.TrimSpace(email),
		"avatar": AvatarURL(name),
	}, store.Merge())
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// AvatarURL derives the generated avatar image for a display name.
func AvatarURL(name string) string {
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(name) + "&background=random"
}

// ActivityHistory lists the tasks with tracked time, most time first.
func (s *Service) ActivityHistory() []Task {
	return ActivityHistory(s.state.Tasks())
}

// Wait blocks until every pending delayed clear has run.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) notFound(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}
