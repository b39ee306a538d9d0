package export

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sadopc/focusflow/internal/tracker"
)

func ToYAML(projects []tracker.Project, tasks []tracker.Task, path string) error {
	data, err := yaml.Marshal(build(projects, tasks, time.Now()))
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write yaml file: %w", err)
	}
	return nil
}
