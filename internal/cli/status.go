package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/sadopc/focusflow/internal/tracker"
)

func newStatusCmd(env *cmdEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show rolling stats and goal progress",
		Long: `Show today, week and month totals per project, the daily goal and the
weekly and monthly goals.

Stats are shown as stored. When a calendar boundary has passed since the last
reset, the pending periods are listed; run "focusflow reset" or open the
tracker to apply them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd.Context(), cmd.OutOrStdout(), env)
		},
	}
}

func runStatus(ctx context.Context, w io.Writer, env *cmdEnv) (err error) {
	rt, err := openRuntime(env.cfg, *zerolog.Ctx(ctx))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rt.close(); cerr != nil && err == nil {
			err = fmt.Errorf("close store: %w", cerr)
		}
	}()

	if err := rt.loadSnapshot(ctx); err != nil {
		return err
	}
	plan, _, err := rt.coordinator.Plan(ctx)
	if err != nil {
		return err
	}

	projects := rt.state.Projects()
	if len(projects) == 0 {
		fmt.Fprintln(w, "No projects yet.")
	} else {
		fmt.Fprintln(w, projectTable(projects))
	}

	totals := rt.state.Totals()
	prefs := rt.state.Preferences()
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Daily goal    %s / %s (%d%%)\n",
		tracker.FormatDuration(totals.Today),
		tracker.FormatDuration(prefs.DailyGoalTarget),
		tracker.Percent(totals.Today, prefs.DailyGoalTarget))
	for _, g := range rt.state.Goals() {
		fmt.Fprintf(w, "%-13s %s / %s (%d%%)\n",
			goalLabel(g.Period),
			tracker.FormatDuration(g.CurrentSeconds),
			tracker.FormatDuration(g.TargetSeconds),
			g.Percent())
	}
	fmt.Fprintf(w, "Lifetime      %s\n", tracker.FormatDuration(totals.Lifetime))

	if plan.Any() {
		fmt.Fprintf(w, "\nPending resets: %s\n", strings.Join(plan.Periods(), ", "))
	}
	return nil
}

func projectTable(projects []tracker.Project) string {
	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, []string{
			p.Name,
			tracker.FormatDuration(p.Stats.Today),
			tracker.FormatDuration(p.Stats.Week),
			tracker.FormatDuration(p.Stats.Month),
			tracker.FormatDuration(p.TotalTime),
		})
	}
	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("PROJECT", "TODAY", "WEEK", "MONTH", "TOTAL").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		}).
		String()
}

func goalLabel(p tracker.GoalPeriod) string {
	switch p {
	case tracker.PeriodWeekly:
		return "Weekly goal"
	case tracker.PeriodMonthly:
		return "Monthly goal"
	}
	return string(p)
}
