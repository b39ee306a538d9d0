package tracker

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveTarget(t *testing.T) {
	s := NewState()

	task, proj := s.ResolveTarget("")
	assert.Empty(t, task)
	assert.Equal(t, DefaultProjectID, proj, "no projects yet")

	s.ReplaceProjects([]Project{{ID: "p2", Order: 2}, {ID: "p1", Order: 1}})
	s.ReplaceTasks([]Task{{ID: "t1", ProjectID: "p2"}})

	task, proj = s.ResolveTarget("")
	assert.Empty(t, task)
	assert.Equal(t, "p1", proj, "first project by order")

	s.SetViewedProject("p2")
	_, proj = s.ResolveTarget("")
	assert.Equal(t, "p2", proj, "viewed project wins")

	task, proj = s.ResolveTarget("t1")
	assert.Equal(t, "t1", task)
	assert.Equal(t, "p2", proj)

	task, proj = s.ResolveTarget("p1")
	assert.Empty(t, task)
	assert.Equal(t, "p1", proj)
}

func TestReplaceProjectsSortsAndForgetsDeletedView(t *testing.T) {
	s := NewState()
	assert.False(t, s.ProjectsLoaded())

	s.ReplaceProjects([]Project{{ID: "b", Order: 1}, {ID: "c", Order: 0.5}, {ID: "a", Order: 1}})
	assert.True(t, s.ProjectsLoaded())

	var ids []string
	for _, p := range s.Projects() {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"c", "a", "b"}, ids)

	s.SetViewedProject("b")
	s.ReplaceProjects([]Project{{ID: "a"}})
	assert.Empty(t, s.ViewedProject())
}

func TestTasksFor(t *testing.T) {
	s := NewState()
	s.ReplaceTasks([]Task{
		{ID: "t3", ProjectID: "p1", Order: 3},
		{ID: "t1", ProjectID: "p1", Order: 1},
		{ID: "t2", ProjectID: "p2", Order: 2},
	})

	got := s.TasksFor("p1")
	require.Len(t, got, 2)
	assert.Equal(t, "t1", got[0].ID)
	assert.Equal(t, "t3", got[1].ID)
	assert.Empty(t, s.TasksFor("nope"))
}

func TestOverlayIsPerCollection(t *testing.T) {
	s := NewState()
	s.ReplaceProjects([]Project{{ID: "p1"}})
	s.ReplaceTasks([]Task{{ID: "t1", ProjectID: "p1"}})

	s.AddProvisional("t1", "p1", 4)

	// a task snapshot drops only the task overlay
	s.ReplaceTasks([]Task{{ID: "t1", ProjectID: "p1", TotalTime: 4}})
	task, _ := s.Task("t1")
	assert.Equal(t, int64(4), task.TotalTime)
	proj, _ := s.Project("p1")
	assert.Equal(t, int64(4), proj.Stats.Today)
}

func TestOnChangeFiresOutsideLock(t *testing.T) {
	s := NewState()
	var calls atomic.Int32
	s.OnChange(func() {
		// reading back must not deadlock
		_ = s.Projects()
		calls.Add(1)
	})

	s.ReplaceProjects(nil)
	s.AddProvisional("", "p1", 1)
	s.SetPreferences(DefaultPreferences())
	assert.Equal(t, int32(3), calls.Load())
}

func TestDefaultsBeforeSnapshots(t *testing.T) {
	s := NewState()
	assert.Equal(t, DefaultPreferences(), s.Preferences())
	_, ok := s.Profile()
	assert.False(t, ok)
	assert.Equal(t, ResetMeta{}, s.Meta())
}

// Goals recompute from whatever project list is cached; nothing is written.
func TestWeeklyGoalAggregatesProjects(t *testing.T) {
	s := NewState()
	s.ReplaceProjects([]Project{
		{ID: "a", Stats: Stats{Week: 100, Month: 1000}},
		{ID: "b", Stats: Stats{Week: 250, Month: 2000}},
		{ID: "c", Stats: Stats{Week: 0}},
	})

	goals := s.Goals()
	require.Len(t, goals, 2)
	assert.Equal(t, PeriodWeekly, goals[0].Period)
	assert.Equal(t, int64(350), goals[0].CurrentSeconds)
	assert.Equal(t, DefaultWeeklyGoal, goals[0].TargetSeconds)
	assert.Equal(t, int64(3000), goals[1].CurrentSeconds)

	s.ReplaceProjects([]Project{{ID: "a", Stats: Stats{Week: 10}}})
	assert.Equal(t, int64(10), s.Goals()[0].CurrentSeconds)
}
