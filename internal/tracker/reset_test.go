package tracker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/focusflow/internal/store"
)

func metaAt(t time.Time) ResetMeta {
	m := MarkersAt(t)
	return ResetMeta{
		LastDailyReset:   m.Day,
		LastWeeklyReset:  m.Week,
		LastMonthlyReset: m.Month,
		LastYear:         m.Year,
		LastWeekYear:     m.WeekYear,
		Initialized:      true,
	}
}

// =============================================================================
// Plan
// =============================================================================

func TestMarkersAt(t *testing.T) {
	m := MarkersAt(at(2024, time.January, 1, 12))
	assert.Equal(t, Markers{Day: "Mon Jan 01 2024", Week: 1, WeekYear: 2024, Month: 0, Year: 2024}, m)

	m = MarkersAt(at(2024, time.December, 31, 12))
	assert.Equal(t, Markers{Day: "Tue Dec 31 2024", Week: 1, WeekYear: 2025, Month: 11, Year: 2024}, m)
}

func TestDayBoundaryResetsTodayOnly(t *testing.T) {
	meta := ResetMeta{
		LastDailyReset:   "Mon Jan 01 2024",
		LastWeeklyReset:  1,
		LastMonthlyReset: 0,
		LastYear:         2024,
		LastWeekYear:     2024,
	}
	plan := ComputeResetPlan(meta, at(2024, time.January, 2, 8))

	assert.True(t, plan.Daily)
	assert.False(t, plan.Weekly)
	assert.False(t, plan.Monthly)
	assert.Equal(t, store.Fields{"stats.today": 0}, plan.StatFields())
	assert.Equal(t, "Tue Jan 02 2024", plan.Markers.Day)
}

func TestISOWeekRolloverForcesWeeklyReset(t *testing.T) {
	now := at(2024, time.December, 31, 10)

	cases := []struct {
		name string
		meta ResetMeta
	}{
		{"with week year", ResetMeta{LastDailyReset: "Mon Dec 30 2024", LastWeeklyReset: 1, LastMonthlyReset: 11, LastYear: 2024, LastWeekYear: 2024}},
		{"legacy meta", ResetMeta{LastDailyReset: "Sun Jan 07 2024", LastWeeklyReset: 1, LastMonthlyReset: 11, LastYear: 2024}},
		{"legacy meta without day", ResetMeta{LastWeeklyReset: 1, LastMonthlyReset: 11, LastYear: 2024}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			plan := ComputeResetPlan(tc.meta, now)
			assert.True(t, plan.Weekly, "week 1 of 2025 must not match week 1 of 2024")
			assert.False(t, plan.Monthly)
		})
	}
}

func TestISOWeekSpanningNewYearResetsOnce(t *testing.T) {
	// Monday Dec 30 2024 opens ISO week 1 of 2025.
	meta := metaAt(at(2024, time.December, 30, 9))

	plan := ComputeResetPlan(meta, at(2024, time.December, 31, 9))
	assert.True(t, plan.Daily)
	assert.False(t, plan.Weekly)
	assert.False(t, plan.Monthly)

	plan = ComputeResetPlan(metaAt(at(2024, time.December, 31, 9)), at(2025, time.January, 1, 9))
	assert.True(t, plan.Daily)
	assert.False(t, plan.Weekly, "still ISO week 1 of 2025")
	assert.True(t, plan.Monthly)
}

func TestLegacyMetaSpanningNewYearResetsOnce(t *testing.T) {
	// Written on Monday Dec 30 2024 before lastWeekYear existed.
	legacy := metaAt(at(2024, time.December, 30, 9))
	legacy.LastWeekYear = 0

	plan := ComputeResetPlan(legacy, at(2024, time.December, 31, 9))
	assert.True(t, plan.Daily)
	assert.False(t, plan.Weekly, "Dec 30 and Dec 31 share ISO week 1 of 2025")
	assert.False(t, plan.Monthly)

	plan = ComputeResetPlan(legacy, at(2025, time.January, 6, 9))
	assert.True(t, plan.Weekly, "ISO week 2 of 2025")
}

func TestZeroMetaResetsEverything(t *testing.T) {
	plan := ComputeResetPlan(ResetMeta{}, at(2024, time.January, 10, 9))
	assert.True(t, plan.Daily)
	assert.True(t, plan.Weekly)
	assert.True(t, plan.Monthly, "January is month 0 but the year guard fires")
	assert.Equal(t, []string{"daily", "weekly", "monthly"}, plan.Periods())
}

func TestCurrentMetaPlansNothing(t *testing.T) {
	now := at(2024, time.June, 12, 15)
	plan := ComputeResetPlan(metaAt(now), now)
	assert.False(t, plan.Any())
	assert.Empty(t, plan.StatFields())
}

func TestPlanMetaFieldsCarryAllMarkers(t *testing.T) {
	plan := ComputeResetPlan(ResetMeta{}, at(2024, time.December, 31, 9))
	assert.Equal(t, map[string]any{
		"lastDailyReset":   "Tue Dec 31 2024",
		"lastWeeklyReset":  1,
		"lastMonthlyReset": 11,
		"lastYear":         2024,
		"lastWeekYear":     2025,
	}, plan.MetaFields())
}

// =============================================================================
// Coordinator
// =============================================================================

func seedProjects(t *testing.T, s *recordingStore) []Project {
	t.Helper()
	projects := []Project{
		{ID: "p1", Name: "A", TotalTime: 900, Stats: Stats{Today: 500, Week: 600, Month: 700}, Order: 1},
		{ID: "p2", Name: "B", TotalTime: 90, Stats: Stats{Today: 50, Week: 60, Month: 70}, Order: 2},
	}
	for _, p := range projects {
		putProject(t, s, p)
	}
	return projects
}

func TestCheckIsIdempotent(t *testing.T) {
	for _, tc := range []struct {
		name string
		last time.Time
	}{
		{"daily", at(2024, time.May, 14, 9)},
		{"weekly", at(2024, time.May, 10, 9)},
		{"monthly", at(2024, time.April, 30, 9)},
	} {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestStore(t)
			projects := seedProjects(t, s)
			require.NoError(t, s.Store.Set(context.Background(), FlatPaths().Meta(), metaAt(tc.last)))

			clk := newFakeClock(at(2024, time.May, 15, 9))
			c := NewCoordinator(s, FlatPaths(), WithClock(clk))

			plan, err := c.Check(context.Background(), projects)
			require.NoError(t, err)
			require.True(t, plan.Any())

			plan, err = c.Check(context.Background(), projects)
			require.NoError(t, err)
			assert.False(t, plan.Any())
			assert.Equal(t, 1, s.Commits())
		})
	}
}

func TestConcurrentChecksCommitOnce(t *testing.T) {
	s := newTestStore(t)
	projects := seedProjects(t, s)
	require.NoError(t, s.Store.Set(context.Background(), FlatPaths().Meta(), metaAt(at(2024, time.May, 14, 9))))

	c := NewCoordinator(s, FlatPaths(), WithClock(newFakeClock(at(2024, time.May, 15, 9))))

	const workers = 8
	var wg sync.WaitGroup
	start := make(chan struct{})
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := c.Check(context.Background(), projects)
			errs <- err
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, 1, s.Commits(), "only the first check sees stale markers")
	assert.Equal(t, "Wed May 15 2024", getMeta(t, s).LastDailyReset)
}

func TestCheckZeroesOnlyCrossedPeriods(t *testing.T) {
	s := newTestStore(t)
	projects := seedProjects(t, s)
	require.NoError(t, s.Store.Set(context.Background(), FlatPaths().Meta(), metaAt(at(2024, time.January, 1, 9))))

	clk := newFakeClock(at(2024, time.January, 2, 9))
	c := NewCoordinator(s, FlatPaths(), WithClock(clk))

	_, err := c.Check(context.Background(), projects)
	require.NoError(t, err)

	assert.Equal(t, Stats{Today: 0, Week: 600, Month: 700}, getProject(t, s, "p1").Stats)
	assert.Equal(t, Stats{Today: 0, Week: 60, Month: 70}, getProject(t, s, "p2").Stats)
	assert.Equal(t, int64(900), getProject(t, s, "p1").TotalTime)

	meta := getMeta(t, s)
	assert.Equal(t, "Tue Jan 02 2024", meta.LastDailyReset)
	assert.True(t, meta.Initialized, "merge keeps the initialized flag")
}

func TestCheckWithoutProjectsWritesNothing(t *testing.T) {
	s := newTestStore(t)
	c := NewCoordinator(s, FlatPaths(), WithClock(newFakeClock(at(2024, time.May, 15, 9))))

	plan, err := c.Check(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, plan.Any())
	assert.Zero(t, s.Commits())
}

func TestCheckFailureIsAtomic(t *testing.T) {
	s := newTestStore(t)
	projects := seedProjects(t, s)
	require.NoError(t, s.Store.Set(context.Background(), FlatPaths().Meta(), metaAt(at(2024, time.January, 1, 9))))

	// a project that no longer exists makes its update fail
	projects = append(projects, Project{ID: "gone"})

	c := NewCoordinator(s, FlatPaths(), WithClock(newFakeClock(at(2024, time.January, 2, 9))))
	_, err := c.Check(context.Background(), projects)
	require.Error(t, err)

	assert.Equal(t, int64(500), getProject(t, s, "p1").Stats.Today)
	assert.Equal(t, "Mon Jan 01 2024", getMeta(t, s).LastDailyReset)
}

func TestPlanDoesNotWrite(t *testing.T) {
	s := newTestStore(t)
	seedProjects(t, s)

	c := NewCoordinator(s, FlatPaths(), WithClock(newFakeClock(at(2024, time.January, 2, 9))))
	plan, meta, err := c.Plan(context.Background())
	require.NoError(t, err)
	assert.True(t, plan.Any())
	assert.Equal(t, ResetMeta{}, meta)
	assert.Zero(t, s.Commits())
}

func TestSeedIfEmpty(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	c := NewCoordinator(s, FlatPaths())

	seeded, err := c.SeedIfEmpty(ctx, nil, 0)
	require.NoError(t, err)
	assert.True(t, seeded)

	p := getProject(t, s, "p-1")
	assert.Equal(t, "My First Project", p.Name)
	assert.True(t, getMeta(t, s).Initialized)

	// deleting every project must not bring the starter back
	require.NoError(t, s.Store.Delete(ctx, FlatPaths().Project("p-1")))
	seeded, err = c.SeedIfEmpty(ctx, nil, 0)
	require.NoError(t, err)
	assert.False(t, seeded)
	assert.Equal(t, 1, s.Commits())
}

func TestSeedSkippedWhenCacheHasProjects(t *testing.T) {
	s := newTestStore(t)
	c := NewCoordinator(s, FlatPaths())

	seeded, err := c.SeedIfEmpty(context.Background(), nil, 3)
	require.NoError(t, err)
	assert.False(t, seeded)

	seeded, err = c.SeedIfEmpty(context.Background(), []Project{{ID: "x"}}, 0)
	require.NoError(t, err)
	assert.False(t, seeded)
	assert.Zero(t, s.Commits())
}

func TestRunChecksPeriodically(t *testing.T) {
	s := newTestStore(t)
	projects := seedProjects(t, s)

	c := NewCoordinator(s, FlatPaths(), WithClock(newFakeClock(at(2024, time.January, 2, 9))))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx, 5*time.Millisecond, func() []Project { return projects })
		close(done)
	}()

	require.Eventually(t, func() bool { return s.Commits() == 1 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	<-done
	assert.Equal(t, 1, s.Commits(), "later ticks see current markers")
}

func TestRunDisabledReturnsImmediately(t *testing.T) {
	c := NewCoordinator(newTestStore(t), FlatPaths())
	c.Run(context.Background(), 0, func() []Project { return nil })
}
