package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/sandeepkv93/focusflow/internal/model"
)

const DefaultTaskKey = "focusflow-tasks"

// TaskPersistence stores the whole task list as one JSON array under Key.
type TaskPersistence struct {
	KV  KV
	Key string
}

func NewTaskPersistence(kv KV, key string) *TaskPersistence {
	if strings.TrimSpace(key) == "" {
		key = DefaultTaskKey
	}
	return &TaskPersistence{KV: kv, Key: key}
}

// Load never fails: a missing, unreadable or malformed value yields an empty
// list and the cause is logged.
func (p *TaskPersistence) Load(ctx context.Context) []model.Task {
	tasks, err := p.load(ctx)
	if err != nil {
		log.Printf("focusflow: %v", err)
		return []model.Task{}
	}
	return tasks
}

func (p *TaskPersistence) load(ctx context.Context) ([]model.Task, error) {
	raw, ok, err := p.KV.Get(ctx, p.Key)
	if err != nil {
		return nil, model.Wrap(model.ErrCorruptStore, fmt.Errorf("read %s: %w", p.Key, err))
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return []model.Task{}, nil
	}
	var tasks []model.Task
	if err := json.Unmarshal([]byte(raw), &tasks); err != nil {
		return nil, model.Wrap(model.ErrCorruptStore, fmt.Errorf("decode %s: %w", p.Key, err))
	}
	if tasks == nil {
		return []model.Task{}, nil
	}
	if err := model.ValidateTasks(tasks); err != nil {
		return nil, model.Wrap(model.ErrCorruptStore, fmt.Errorf("validate %s: %w", p.Key, err))
	}
	return tasks, nil
}

func (p *TaskPersistence) Save(ctx context.Context, tasks []model.Task) error {
	if tasks == nil {
		tasks = []model.Task{}
	}
	payload, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}
	if err := p.KV.Set(ctx, p.Key, string(payload)); err != nil {
		return fmt.Errorf("write %s: %w", p.Key, err)
	}
	return nil
}
