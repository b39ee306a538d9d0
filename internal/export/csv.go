package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sadopc/focusflow/internal/tracker"
)

var csvHeader = []string{
	"Project ID", "Project", "Today (s)", "Week (s)", "Month (s)", "Project Total (s)",
	"Task ID", "Task", "Status", "Task Total (s)", "Task Total", "Completed At",
}

// ToCSV writes one row per task. A project without tasks still gets one
// row with empty task columns.
func ToCSV(projects []tracker.Project, tasks []tracker.Task, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(csvHeader); err != nil {
		return err
	}

	r := build(projects, tasks, time.Now())
	for _, p := range r.Projects {
		prefix := []string{
			p.ID,
			p.Name,
			strconv.FormatInt(p.TodaySec, 10),
			strconv.FormatInt(p.WeekSec, 10),
			strconv.FormatInt(p.MonthSec, 10),
			strconv.FormatInt(p.TotalSec, 10),
		}
		if len(p.Tasks) == 0 {
			if err := w.Write(append(prefix, "", "", "", "", "", "")); err != nil {
				return err
			}
			continue
		}
		for _, t := range p.Tasks {
			row := append(append([]string(nil), prefix...),
				t.ID,
				t.Title,
				t.Status,
				strconv.FormatInt(t.TotalSec, 10),
				t.Total,
				t.CompletedAt,
			)
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}

	w.Flush()
	return w.Error()
}
