package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sadopc/focusflow/internal/tracker"
)

func sampleData() ([]tracker.Project, []tracker.Task) {
	done := time.Date(2024, 3, 5, 17, 0, 0, 0, time.UTC)

	projects := []tracker.Project{
		{ID: "p-1", Name: "Project Alpha", TotalTime: 5400, Stats: tracker.Stats{Today: 600, Week: 1800, Month: 5400}},
		{ID: "p-2", Name: "Project Beta", TotalTime: 0},
	}
	tasks := []tracker.Task{
		{ID: "t-1", ProjectID: "p-1", Title: "design", Status: tracker.StatusCompleted, TotalTime: 3600, CompletedAt: &done},
		{ID: "t-2", ProjectID: "p-1", Title: "build", Status: tracker.StatusActive, TotalTime: 1800},
	}
	return projects, tasks
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	return records
}

// ============================================================
// CSV
// ============================================================

func TestToCSV(t *testing.T) {
	projects, tasks := sampleData()
	path := filepath.Join(t.TempDir(), "test.csv")

	if err := ToCSV(projects, tasks, path); err != nil {
		t.Fatalf("ToCSV: %v", err)
	}

	records := readCSV(t, path)
	// header + 2 task rows + 1 row for the empty project
	if len(records) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(records))
	}

	for i, h := range csvHeader {
		if records[0][i] != h {
			t.Fatalf("header[%d] = %q, want %q", i, records[0][i], h)
		}
	}

	row := records[1]
	if row[1] != "Project Alpha" {
		t.Fatalf("Project = %q, want Project Alpha", row[1])
	}
	if row[2] != "600" || row[3] != "1800" || row[4] != "5400" {
		t.Fatalf("stats = %v, want 600/1800/5400", row[2:5])
	}
	if row[7] != "design" {
		t.Fatalf("Task = %q, want design", row[7])
	}
	if row[9] != "3600" {
		t.Fatalf("Task Total (s) = %q, want 3600", row[9])
	}
	if row[10] != "01:00:00" {
		t.Fatalf("Task Total = %q, want 01:00:00", row[10])
	}
	if _, err := time.Parse(time.RFC3339, row[11]); err != nil {
		t.Fatalf("Completed At not RFC3339: %q", row[11])
	}

	if records[2][11] != "" {
		t.Fatalf("active task should have empty completion, got %q", records[2][11])
	}

	empty := records[3]
	if empty[1] != "Project Beta" || empty[6] != "" {
		t.Fatalf("project without tasks should have empty task columns, got %v", empty)
	}
}

func TestToCSVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")

	if err := ToCSV(nil, nil, path); err != nil {
		t.Fatal(err)
	}

	if records := readCSV(t, path); len(records) != 1 {
		t.Fatalf("expected 1 row (header only), got %d", len(records))
	}
}

func TestToCSVUnknownProject(t *testing.T) {
	tasks := []tracker.Task{{ID: "t-9", ProjectID: "gone", Title: "orphan", TotalTime: 60}}
	path := filepath.Join(t.TempDir(), "unknown.csv")

	if err := ToCSV(nil, tasks, path); err != nil {
		t.Fatal(err)
	}

	records := readCSV(t, path)
	if records[1][1] != "Unknown" {
		t.Fatalf("expected 'Unknown' for missing project, got %q", records[1][1])
	}
}

func TestToCSVBadPath(t *testing.T) {
	if err := ToCSV(nil, nil, "/nonexistent/dir/file.csv"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

func TestToCSVSpecialCharacters(t *testing.T) {
	projects := []tracker.Project{{ID: "p-1", Name: `Project "Special"`}}
	tasks := []tracker.Task{{ID: "t-1", ProjectID: "p-1", Title: `title with "quotes" and, commas`}}
	path := filepath.Join(t.TempDir(), "special.csv")

	if err := ToCSV(projects, tasks, path); err != nil {
		t.Fatal(err)
	}

	records := readCSV(t, path)
	if records[1][1] != `Project "Special"` {
		t.Fatalf("project name mangled: %q", records[1][1])
	}
	if records[1][7] != `title with "quotes" and, commas` {
		t.Fatalf("title mangled: %q", records[1][7])
	}
}

// ============================================================
// JSON
// ============================================================

func TestToJSON(t *testing.T) {
	projects, tasks := sampleData()
	path := filepath.Join(t.TempDir(), "test.json")

	if err := ToJSON(projects, tasks, path); err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var result report
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if result.Count != 2 {
		t.Fatalf("count = %d, want 2", result.Count)
	}
	if len(result.Projects) != 2 {
		t.Fatalf("projects = %d, want 2", len(result.Projects))
	}
	if _, err := time.Parse(time.RFC3339, result.ExportedAt); err != nil {
		t.Fatalf("exported_at is not valid RFC3339: %q", result.ExportedAt)
	}

	p := result.Projects[0]
	if p.Name != "Project Alpha" || p.TotalSec != 5400 || p.Total != "01:30:00" {
		t.Fatalf("unexpected project: %+v", p)
	}
	if len(p.Tasks) != 2 || p.Tasks[0].Title != "design" {
		t.Fatalf("unexpected tasks: %+v", p.Tasks)
	}
	if result.Projects[1].Tasks == nil {
		t.Fatal("empty project should export an empty task list, not null")
	}
}

func TestToJSONEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")

	if err := ToJSON(nil, nil, path); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	var result report
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatal(err)
	}
	if result.Count != 0 {
		t.Fatalf("count = %d, want 0", result.Count)
	}
	if result.Projects != nil {
		t.Fatal("projects should be null for empty export")
	}
}

func TestToJSONBadPath(t *testing.T) {
	if err := ToJSON(nil, nil, "/nonexistent/dir/file.json"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

func TestToJSONPrettyPrinted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pretty.json")
	if err := ToJSON(nil, nil, path); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "\n  ") {
		t.Fatal("JSON should be indented")
	}
}

// ============================================================
// YAML
// ============================================================

func TestToYAML(t *testing.T) {
	projects, tasks := sampleData()
	path := filepath.Join(t.TempDir(), "test.yaml")

	if err := ToYAML(projects, tasks, path); err != nil {
		t.Fatalf("ToYAML: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var result report
	if err := yaml.Unmarshal(data, &result); err != nil {
		t.Fatalf("invalid YAML: %v", err)
	}
	if result.Count != 2 || len(result.Projects) != 2 {
		t.Fatalf("unexpected report: %+v", result)
	}
	if got := result.Projects[0].Tasks[1].TotalSec; got != 1800 {
		t.Fatalf("task total = %d, want 1800", got)
	}
	if !strings.Contains(string(data), "total_seconds: 5400") {
		t.Fatal("YAML should use snake_case keys")
	}
}

// ============================================================
// Dispatch
// ============================================================

func TestWrite(t *testing.T) {
	projects, tasks := sampleData()
	dir := t.TempDir()

	for _, format := range []string{"csv", "JSON", "yml"} {
		path := filepath.Join(dir, "out."+format)
		if err := Write(format, projects, tasks, path); err != nil {
			t.Fatalf("Write(%s): %v", format, err)
		}
		if info, err := os.Stat(path); err != nil || info.Size() == 0 {
			t.Fatalf("Write(%s) produced no file", format)
		}
	}

	err := Write("xml", projects, tasks, filepath.Join(dir, "out.xml"))
	if !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestFileName(t *testing.T) {
	got := FileName("CSV", time.Date(2024, 3, 5, 9, 8, 7, 0, time.UTC))
	if got != "focusflow-export-20240305-090807.csv" {
		t.Fatalf("FileName = %q", got)
	}
}

// ============================================================
// formatDuration (internal helper)
// ============================================================

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		secs int64
		want string
	}{
		{0, "00:00:00"},
		{1, "00:00:01"},
		{60, "00:01:00"},
		{3600, "01:00:00"},
		{3661, "01:01:01"},
		{86400, "24:00:00"},
		{90061, "25:01:01"},
	}

	for _, tt := range tests {
		got := formatDuration(tt.secs)
		if got != tt.want {
			t.Errorf("formatDuration(%d) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}
