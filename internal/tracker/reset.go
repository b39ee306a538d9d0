package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sadopc/focusflow/internal/clock"
	"github.com/sadopc/focusflow/internal/store"
)

// ResetPlan says which rolling stats must be zeroed and which markers to
// record afterwards.
type ResetPlan struct {
	Daily   bool
	Weekly  bool
	Monthly bool
	Markers Markers
}

// ComputeResetPlan compares meta against the calendar at now.
//
// The weekly year guard uses the ISO week-numbering year, so that the last
// days of December belonging to week 1 of the next year reset once and only
// once. Older meta documents without lastWeekYear take it from their day
// marker, and compare lastYear against both the calendar year and the ISO
// week year when that does not parse either.
func ComputeResetPlan(meta ResetMeta, now time.Time) ResetPlan {
	m := MarkersAt(now)

	var weekYearChanged bool
	if wy := storedWeekYear(meta); wy != 0 {
		weekYearChanged = wy != m.WeekYear
	} else {
		weekYearChanged = meta.LastYear != m.Year || meta.LastYear != m.WeekYear
	}

	return ResetPlan{
		Daily:   meta.LastDailyReset != m.Day,
		Weekly:  meta.LastWeeklyReset != m.Week || weekYearChanged,
		Monthly: meta.LastMonthlyReset != m.Month || meta.LastYear != m.Year,
		Markers: m,
	}
}

func storedWeekYear(meta ResetMeta) int {
	if meta.LastWeekYear != 0 {
		return meta.LastWeekYear
	}
	day, err := time.Parse(DayLayout, meta.LastDailyReset)
	if err != nil {
		return 0
	}
	wy, _ := ISOWeek(day)
	return wy
}

func (p ResetPlan) Any() bool {
	return p.Daily || p.Weekly || p.Monthly
}

// Periods lists the flagged periods, for logs and metrics.
func (p ResetPlan) Periods() []string {
	var out []string
	if p.Daily {
		out = append(out, "daily")
	}
	if p.Weekly {
		out = append(out, "weekly")
	}
	if p.Monthly {
		out = append(out, "monthly")
	}
	return out
}

// StatFields returns the per-project update: only flagged fields, set to 0.
func (p ResetPlan) StatFields() store.Fields {
	f := store.Fields{}
	if p.Daily {
		f["stats.today"] = 0
	}
	if p.Weekly {
		f["stats.week"] = 0
	}
	if p.Monthly {
		f["stats.month"] = 0
	}
	return f
}

// MetaFields returns the marker values to merge into ResetMeta.
func (p ResetPlan) MetaFields() map[string]any {
	return map[string]any{
		"lastDailyReset":   p.Markers.Day,
		"lastWeeklyReset":  p.Markers.Week,
		"lastMonthlyReset": p.Markers.Month,
		"lastYear":         p.Markers.Year,
		"lastWeekYear":     p.Markers.WeekYear,
	}
}

// Batch builds the single atomic write for this plan.
func (p ResetPlan) Batch(paths Paths, projects []Project) *store.Batch {
	b := store.NewBatch()
	fields := p.StatFields()
	for _, proj := range projects {
		b.Update(paths.Project(proj.ID), fields)
	}
	b.Set(paths.Meta(), p.MetaFields(), store.Merge())
	return b
}

type resetStore interface {
	Get(ctx context.Context, path string, dst any) error
	Commit(ctx context.Context, b *store.Batch) error
}

// Coordinator applies calendar resets to project stats. Checks are
// serialized, so overlapping triggers in one process never both commit
// against the same stale markers.
type Coordinator struct {
	mu      sync.Mutex
	docs    resetStore
	paths   Paths
	clock   clock.Clock
	logger  zerolog.Logger
	metrics Recorder
}

func NewCoordinator(docs resetStore, paths Paths, opts ...Option) *Coordinator {
	o := buildOptions(opts)
	return &Coordinator{
		docs:    docs,
		paths:   paths,
		clock:   o.clock,
		logger:  o.logger.With().Str("component", "reset").Logger(),
		metrics: o.metrics,
	}
}

func (c *Coordinator) loadMeta(ctx context.Context) (ResetMeta, error) {
	var meta ResetMeta
	err := c.docs.Get(ctx, c.paths.Meta(), &meta)
	if errors.Is(err, store.ErrNotFound) {
		return ResetMeta{}, nil
	}
	if err != nil {
		return ResetMeta{}, fmt.Errorf("load reset meta: %w", err)
	}
	return meta, nil
}

// Plan reports what a check would do right now without writing anything.
func (c *Coordinator) Plan(ctx context.Context) (ResetPlan, ResetMeta, error) {
	meta, err := c.loadMeta(ctx)
	if err != nil {
		return ResetPlan{}, ResetMeta{}, err
	}
	return ComputeResetPlan(meta, c.clock.Now()), meta, nil
}

// Check zeroes the stats whose calendar boundary has been crossed since the
// last recorded reset, for every given project, and records the new markers
// in the same batch. With no projects or no crossed boundary it writes
// nothing. Failures are logged and returned; they are never retried.
func (c *Coordinator) Check(ctx context.Context, projects []Project) (ResetPlan, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(projects) == 0 {
		return ResetPlan{}, nil
	}

	meta, err := c.loadMeta(ctx)
	if err != nil {
		c.logger.Error().Err(err).Msg("reset check skipped")
		return ResetPlan{}, err
	}

	plan := ComputeResetPlan(meta, c.clock.Now())
	if !plan.Any() {
		return plan, nil
	}

	err = c.docs.Commit(ctx, plan.Batch(c.paths, projects))
	c.metrics.RecordReset(plan.Periods(), err)
	if err != nil {
		c.logger.Error().Err(err).Strs("periods", plan.Periods()).Msg("reset batch failed")
		return plan, fmt.Errorf("commit reset batch: %w", err)
	}

	c.logger.Info().
		Strs("periods", plan.Periods()).
		Int("projects", len(projects)).
		Str("day", plan.Markers.Day).
		Msg("rolling stats reset")
	return plan, nil
}

// SeedIfEmpty writes the starter projects and marks the account initialized,
// but only when the store returned no projects, nothing is cached locally
// and the account was never initialized.
func (c *Coordinator) SeedIfEmpty(ctx context.Context, loaded []Project, cached int) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(loaded) > 0 || cached > 0 {
		return false, nil
	}

	meta, err := c.loadMeta(ctx)
	if err != nil {
		c.logger.Error().Err(err).Msg("seed check skipped")
		return false, err
	}
	if meta.Initialized {
		return false, nil
	}

	b := store.NewBatch()
	for _, p := range StarterProjects() {
		b.Set(c.paths.Project(p.ID), p)
	}
	b.Set(c.paths.Meta(), map[string]any{"initialized": true}, store.Merge())

	if err := c.docs.Commit(ctx, b); err != nil {
		c.logger.Error().Err(err).Msg("seed batch failed")
		return false, fmt.Errorf("commit seed batch: %w", err)
	}
	c.logger.Info().Msg("starter projects seeded")
	return true, nil
}

// Run re-checks on a wall-clock interval until ctx is done, so an idle
// account still resets without any project write. A non-positive interval
// disables the loop.
func (c *Coordinator) Run(ctx context.Context, interval time.Duration, projects func() []Project) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.logger.Debug().Dur("interval", interval).Msg("periodic reset check started")
	for {
		select {
		case <-ctx.Done():
			c.logger.Debug().Msg("periodic reset check stopped")
			return
		case <-ticker.C:
			_, _ = c.Check(ctx, projects())
		}
	}
}
