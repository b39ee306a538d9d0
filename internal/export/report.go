// Package export writes projects and their tasks to CSV, JSON or YAML files.
package export

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sadopc/focusflow/internal/tracker"
)

var ErrUnknownFormat = errors.New("unknown export format")

// Formats lists the accepted format names.
func Formats() []string {
	return []string{"csv", "json", "yaml"}
}

// Write dispatches on format.
func Write(format string, projects []tracker.Project, tasks []tracker.Task, path string) error {
	switch strings.ToLower(format) {
	case "csv":
		return ToCSV(projects, tasks, path)
	case "json":
		return ToJSON(projects, tasks, path)
	case "yaml", "yml":
		return ToYAML(projects, tasks, path)
	}
	return fmt.Errorf("%w: %q (want one of %s)", ErrUnknownFormat, format, strings.Join(Formats(), ", "))
}

// FileName is the default export file name for format.
func FileName(format string, now time.Time) string {
	return fmt.Sprintf("focusflow-export-%s.%s", now.Format("20060102-150405"), strings.ToLower(format))
}

type report struct {
	ExportedAt string          `json:"exported_at" yaml:"exported_at"`
	Count      int             `json:"count" yaml:"count"`
	Projects   []projectReport `json:"projects" yaml:"projects"`
}

type projectReport struct {
	ID       string       `json:"id" yaml:"id"`
	Name     string       `json:"name" yaml:"name"`
	TotalSec int64        `json:"total_seconds" yaml:"total_seconds"`
	Total    string       `json:"total" yaml:"total"`
	TodaySec int64        `json:"today_seconds" yaml:"today_seconds"`
	WeekSec  int64        `json:"week_seconds" yaml:"week_seconds"`
	MonthSec int64        `json:"month_seconds" yaml:"month_seconds"`
	Progress int          `json:"progress" yaml:"progress"`
	Deadline string       `json:"deadline,omitempty" yaml:"deadline,omitempty"`
	Tasks    []taskReport `json:"tasks" yaml:"tasks"`
}

type taskReport struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Status      string `json:"status" yaml:"status"`
	TotalSec    int64  `json:"total_seconds" yaml:"total_seconds"`
	Total       string `json:"total" yaml:"total"`
	CompletedAt string `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
}

// build groups tasks under their projects in project order. Tasks whose
// project is gone are collected under an "Unknown" entry at the end.
func build(projects []tracker.Project, tasks []tracker.Task, now time.Time) report {
	r := report{ExportedAt: now.UTC().Format(time.RFC3339), Count: len(tasks)}

	index := make(map[string]int, len(projects))
	for _, p := range projects {
		index[p.ID] = len(r.Projects)
		r.Projects = append(r.Projects, projectReport{
			ID:       p.ID,
			Name:     p.Name,
			TotalSec: p.TotalTime,
			Total:    formatDuration(p.TotalTime),
			TodaySec: p.Stats.Today,
			WeekSec:  p.Stats.Week,
			MonthSec: p.Stats.Month,
			Progress: p.Progress,
			Deadline: p.Deadline,
			Tasks:    []taskReport{},
		})
	}

	orphans := -1
	for _, t := range tasks {
		i, ok := index[t.ProjectID]
		if !ok {
			if orphans < 0 {
				orphans = len(r.Projects)
				r.Projects = append(r.Projects, projectReport{ID: "", Name: "Unknown", Tasks: []taskReport{}})
			}
			i = orphans
		}
		completed := ""
		if t.CompletedAt != nil {
			completed = t.CompletedAt.Local().Format(time.RFC3339)
		}
		r.Projects[i].Tasks = append(r.Projects[i].Tasks, taskReport{
			ID:          t.ID,
			Title:       t.Title,
			Status:      string(t.Status),
			TotalSec:    t.TotalTime,
			Total:       formatDuration(t.TotalTime),
			CompletedAt: completed,
		})
	}
	return r
}

func formatDuration(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
