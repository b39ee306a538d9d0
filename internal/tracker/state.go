package tracker

import (
	"sort"
	"sync"
)

// State mirrors the account's live documents. Snapshots replace collections
// wholesale. Timer ticks add provisional seconds on top; those are dropped,
// never merged, when the next snapshot of the same collection arrives.
type State struct {
	mu sync.RWMutex

	tasks      []Task
	projects   []Project
	inbox      []InboxTask
	reminders  []Reminder
	prefs      Preferences
	meta       ResetMeta
	profile    Profile
	hasProfile bool

	projectsLoaded bool
	viewedProject  string

	provTasks    map[string]int64
	provProjects map[string]int64

	onChange func()
}

func NewState() *State {
	return &State{
		prefs:        DefaultPreferences(),
		provTasks:    make(map[string]int64),
		provProjects: make(map[string]int64),
	}
}

// OnChange registers the callback fired after every mutation. It runs
// outside the state lock.
func (s *State) OnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

func (s *State) changed() {
	s.mu.RLock()
	fn := s.onChange
	s.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

// --- Authoritative writes ---

func (s *State) ReplaceTasks(tasks []Task) {
	sorted := append([]Task(nil), tasks...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Order != sorted[j].Order {
			return sorted[i].Order < sorted[j].Order
		}
		return sorted[i].ID < sorted[j].ID
	})

	s.mu.Lock()
	s.tasks = sorted
	s.provTasks = make(map[string]int64)
	s.mu.Unlock()
	s.changed()
}

func (s *State) ReplaceProjects(projects []Project) {
	sorted := append([]Project(nil), projects...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Order != sorted[j].Order {
			return sorted[i].Order < sorted[j].Order
		}
		return sorted[i].ID < sorted[j].ID
	})

	s.mu.Lock()
	s.projects = sorted
	s.projectsLoaded = true
	s.provProjects = make(map[string]int64)
	if s.viewedProject != "" && !containsProject(sorted, s.viewedProject) {
		s.viewedProject = ""
	}
	s.mu.Unlock()
	s.changed()
}

func (s *State) ReplaceInbox(items []InboxTask) {
	sorted := append([]InboxTask(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Order != sorted[j].Order {
			return sorted[i].Order < sorted[j].Order
		}
		return sorted[i].ID < sorted[j].ID
	})

	s.mu.Lock()
	s.inbox = sorted
	s.mu.Unlock()
	s.changed()
}

func (s *State) ReplaceReminders(items []Reminder) {
	sorted := append([]Reminder(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	s.mu.Lock()
	s.reminders = sorted
	s.mu.Unlock()
	s.changed()
}

func (s *State) SetPreferences(p Preferences) {
	s.mu.Lock()
	s.prefs = p
	s.mu.Unlock()
	s.changed()
}

func (s *State) SetMeta(m ResetMeta) {
	s.mu.Lock()
	s.meta = m
	s.mu.Unlock()
	s.changed()
}

func (s *State) SetProfile(p Profile) {
	s.mu.Lock()
	s.profile = p
	s.hasProfile = true
	s.mu.Unlock()
	s.changed()
}

// --- Provisional overlay ---

// AddProvisional credits secs to the cached task and project for display
// only. Empty ids are skipped.
func (s *State) AddProvisional(taskID, projectID string, secs int64) {
	s.mu.Lock()
	if taskID != "" {
		s.provTasks[taskID] += secs
	}
	if projectID != "" {
		s.provProjects[projectID] += secs
	}
	s.mu.Unlock()
	s.changed()
}

func (s *State) withTaskOverlay(t Task) Task {
	t.TotalTime += s.provTasks[t.ID]
	return t
}

func (s *State) withProjectOverlay(p Project) Project {
	n := s.provProjects[p.ID]
	p.TotalTime += n
	p.Stats.Today += n
	p.Stats.Week += n
	p.Stats.Month += n
	return p
}

// --- Reads ---

// Tasks returns every task, provisional seconds included.
func (s *State) Tasks() []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = s.withTaskOverlay(t)
	}
	return out
}

// TasksFor returns the tasks of one project in display order.
func (s *State) TasksFor(projectID string) []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Task
	for _, t := range s.tasks {
		if t.ProjectID == projectID {
			out = append(out, s.withTaskOverlay(t))
		}
	}
	return out
}

func (s *State) Task(id string) (Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tasks {
		if t.ID == id {
			return s.withTaskOverlay(t), true
		}
	}
	return Task{}, false
}

// Projects returns every project, provisional seconds included.
func (s *State) Projects() []Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Project, len(s.projects))
	for i, p := range s.projects {
		out[i] = s.withProjectOverlay(p)
	}
	return out
}

func (s *State) Project(id string) (Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.projects {
		if p.ID == id {
			return s.withProjectOverlay(p), true
		}
	}
	return Project{}, false
}

func (s *State) ProjectCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.projects)
}

// ProjectsLoaded reports whether a project snapshot has arrived yet.
func (s *State) ProjectsLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.projectsLoaded
}

func (s *State) Inbox() []InboxTask {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]InboxTask(nil), s.inbox...)
}

func (s *State) InboxItem(id string) (InboxTask, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, it := range s.inbox {
		if it.ID == id {
			return it, true
		}
	}
	return InboxTask{}, false
}

func (s *State) Reminders() []Reminder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Reminder(nil), s.reminders...)
}

func (s *State) Reminder(id string) (Reminder, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.reminders {
		if r.ID == id {
			return r, true
		}
	}
	return Reminder{}, false
}

func (s *State) Preferences() Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs
}

func (s *State) Meta() ResetMeta {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.meta
}

func (s *State) Profile() (Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile, s.hasProfile
}

// --- Navigation ---

// SetViewedProject records the project the user is looking at; it becomes
// the timer's fallback target.
func (s *State) SetViewedProject(id string) {
	s.mu.Lock()
	s.viewedProject = id
	s.mu.Unlock()
}

func (s *State) ViewedProject() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewedProject
}

// ResolveTarget maps a timer target to a (task, project) pair. A known task
// id targets the task and its project. Any other id is taken as a project
// id. An empty id falls back to the viewed project, then the first project,
// then DefaultProjectID.
func (s *State) ResolveTarget(id string) (taskID, projectID string) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if id != "" {
		for _, t := range s.tasks {
			if t.ID == id {
				return t.ID, t.ProjectID
			}
		}
		return "", id
	}
	if s.viewedProject != "" {
		return "", s.viewedProject
	}
	if len(s.projects) > 0 {
		return "", s.projects[0].ID
	}
	return "", DefaultProjectID
}

// --- Derived ---

// Totals folds the displayed project stats.
func (s *State) Totals() Totals {
	return Aggregate(s.Projects())
}

// Goals returns the weekly and monthly goals with current progress.
func (s *State) Goals() []Goal {
	return BuildGoals(s.Totals(), s.Preferences())
}

func containsProject(projects []Project, id string) bool {
	for _, p := range projects {
		if p.ID == id {
			return true
		}
	}
	return false
}
