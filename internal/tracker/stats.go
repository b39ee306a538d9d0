package tracker

import (
	"fmt"
	"sort"
)

// Totals sums project counters. Today is the daily progress; Week and Month
// feed the goals.
type Totals struct {
	Today    int64
	Week     int64
	Month    int64
	Lifetime int64
}

// Aggregate is a pure fold over the project list.
func Aggregate(projects []Project) Totals {
	var t Totals
	for _, p := range projects {
		t.Today += p.Stats.Today
		t.Week += p.Stats.Week
		t.Month += p.Stats.Month
		t.Lifetime += p.TotalTime
	}
	return t
}

// BuildGoals pairs the configured targets with the aggregated stats.
func BuildGoals(t Totals, prefs Preferences) []Goal {
	return []Goal{
		{ID: "g-1", Period: PeriodWeekly, TargetSeconds: prefs.WeeklyGoalTarget, CurrentSeconds: t.Week},
		{ID: "g-2", Period: PeriodMonthly, TargetSeconds: prefs.MonthlyGoalTarget, CurrentSeconds: t.Month},
	}
}

// Percent returns progress toward the target, capped at 100.
func Percent(current, target int64) int {
	if target <= 0 {
		return 0
	}
	p := current * 100 / target
	if p > 100 {
		return 100
	}
	if p < 0 {
		return 0
	}
	return int(p)
}

func (g Goal) Percent() int {
	return Percent(g.CurrentSeconds, g.TargetSeconds)
}

// ActivityHistory lists tasks that have tracked time, most time first.
func ActivityHistory(tasks []Task) []Task {
	var out []Task
	for _, t := range tasks {
		if t.TotalTime > 0 {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalTime > out[j].TotalTime })
	return out
}

// FormatDuration renders seconds as "2h 5m", "2h", "5m" or "0m".
func FormatDuration(secs int64) string {
	if secs < 0 {
		secs = 0
	}
	h := secs / 3600
	m := (secs % 3600) / 60
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dm", m)
	}
}
