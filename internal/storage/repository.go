package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var ErrNotFound = errors.New("storage: not found")

// KV is the local key-value store the task list is persisted in.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

type Backend string

const (
	BackendSQLite Backend = "sqlite"
	BackendFile   Backend = "file"
	BackendMemory Backend = "memory"
)

// Open returns the KV for a configured backend. path is ignored for memory.
func Open(backend Backend, path string) (KV, error) {
	switch Backend(strings.ToLower(string(backend))) {
	case BackendSQLite, "":
		if strings.TrimSpace(path) == "" {
			return nil, errors.New("storage: sqlite backend requires a path")
		}
		kv, err := OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		return kv, nil
	case BackendFile:
		if strings.TrimSpace(path) == "" {
			return nil, errors.New("storage: file backend requires a path")
		}
		return NewFileKV(path), nil
	case BackendMemory:
		return NewMemoryKV(), nil
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", backend)
	}
}
