package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrTaskIDRequired   = errors.New("model: task id is required")
	ErrTaskTextRequired = errors.New("model: task text is required")
	ErrDuplicateTaskID  = errors.New("model: duplicate task id")
)

// Task is the persisted record; the json tags are the storage format.
type Task struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return ErrTaskIDRequired
	}
	if strings.TrimSpace(t.Text) == "" {
		return fmt.Errorf("%w: id %q", ErrTaskTextRequired, t.ID)
	}
	return nil
}

// ValidateTasks checks every record and that ids are unique.
func ValidateTasks(tasks []Task) error {
	seen := make(map[string]struct{}, len(tasks))
	for i, t := range tasks {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("task %d: %w", i, err)
		}
		if _, dup := seen[t.ID]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateTaskID, t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	return nil
}

// NormalizeText trims a user supplied label. The bool is false when nothing
// is left.
func NormalizeText(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	return trimmed, trimmed != ""
}
