// Package tracker holds the focus-tracking core: the timer engine, the
// calendar reset coordinator, the live state container and the CRUD service
// that sits on top of the document store.
package tracker

import "time"

type TaskStatus string

const (
	StatusActive    TaskStatus = "active"
	StatusCompleted TaskStatus = "completed"
	StatusPending   TaskStatus = "pending"
	StatusReview    TaskStatus = "review"
)

type Subtask struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
	Deadline  string `json:"deadline,omitempty"`
}

type Task struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"projectId"`
	Title       string     `json:"title"`
	Subtitle    string     `json:"subtitle,omitempty"`
	Status      TaskStatus `json:"status"`
	TotalTime   int64      `json:"totalTime"`
	Subtasks    []Subtask  `json:"subtasks,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	DueDate     string     `json:"dueDate,omitempty"`
	IsPriority  bool       `json:"isPriority,omitempty"`
	Order       float64    `json:"order"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// Stats are rolling counters in seconds, each reset on its own boundary.
type Stats struct {
	Today int64 `json:"today"`
	Week  int64 `json:"week"`
	Month int64 `json:"month"`
}

type Project struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Icon        string  `json:"icon"`
	ThemeColor  string  `json:"themeColor,omitempty"`
	Progress    int     `json:"progress"`
	Deadline    string  `json:"deadline,omitempty"`
	TotalTime   int64   `json:"totalTime"`
	Stats       Stats   `json:"stats"`
	Order       float64 `json:"order"`
}

type GoalPeriod string

const (
	PeriodWeekly  GoalPeriod = "weekly"
	PeriodMonthly GoalPeriod = "monthly"
)

// Goal pairs a configured target with progress derived from project stats.
// CurrentSeconds is never persisted.
type Goal struct {
	ID             string     `json:"id"`
	Period         GoalPeriod `json:"period"`
	TargetSeconds  int64      `json:"targetSeconds"`
	CurrentSeconds int64      `json:"currentSeconds"`
}

// ResetMeta is the per-account checkpoint of the last applied resets.
// LastWeekYear is the ISO week-numbering year of LastWeeklyReset; documents
// written before it existed leave it zero.
type ResetMeta struct {
	LastDailyReset   string `json:"lastDailyReset"`
	LastWeeklyReset  int    `json:"lastWeeklyReset"`
	LastMonthlyReset int    `json:"lastMonthlyReset"`
	LastYear         int    `json:"lastYear"`
	LastWeekYear     int    `json:"lastWeekYear,omitempty"`
	Initialized      bool   `json:"initialized"`
}

type InboxTask struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Completed bool    `json:"completed"`
	Order     float64 `json:"order,omitempty"`
}

type ReminderType string

const (
	ReminderShortTerm ReminderType = "short-term"
	ReminderLongTerm  ReminderType = "long-term"
)

type Reminder struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	Type      ReminderType `json:"type"`
	DueTime   string       `json:"dueTime"`
	Completed bool         `json:"completed"`
}

type Preferences struct {
	DailyGoalTarget   int64 `json:"dailyGoalTarget"`
	WeeklyGoalTarget  int64 `json:"weeklyGoalTarget"`
	MonthlyGoalTarget int64 `json:"monthlyGoalTarget"`
	IsDarkMode        bool  `json:"isDarkMode"`
}

const (
	DefaultDailyGoal   int64 = 8 * 3600
	DefaultWeeklyGoal  int64 = 40 * 3600
	DefaultMonthlyGoal int64 = 160 * 3600
)

func DefaultPreferences() Preferences {
	return Preferences{
		DailyGoalTarget:   DefaultDailyGoal,
		WeeklyGoalTarget:  DefaultWeeklyGoal,
		MonthlyGoalTarget: DefaultMonthlyGoal,
		IsDarkMode:        true,
	}
}

type Profile struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
}

// TimerState is the in-memory focus session. Empty ids mean "none".
// IsActive holds exactly when StartTime is non-nil.
type TimerState struct {
	IsActive           bool
	StartTime          *time.Time
	ElapsedBeforeStart int64
	ActiveTaskID       string
	ActiveProjectID    string
}

// DefaultProjectID is the target used when no project exists yet.
const DefaultProjectID = "default"

// StarterProjects is the seed written on an account's first run.
func StarterProjects() []Project {
	return []Project{
		{
			ID:          "p-1",
			Name:        "My First Project",
			Description: "Start adding tasks to track time...",
			Icon:        "rocket",
			ThemeColor:  "bg-blue-500",
			Order:       1,
		},
	}
}
