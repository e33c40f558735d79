// Package tasks holds the ordered in-memory task list. Every mutation is
// written through to a Persister before the call returns.
package tasks

import (
	"context"
	"log"
	"slices"

	"github.com/google/uuid"
	"github.com/sandeepkv93/focusflow/internal/model"
)

type Persister interface {
	Load(ctx context.Context) []model.Task
	Save(ctx context.Context, tasks []model.Task) error
}

type EventKind string

const (
	EventAdded   EventKind = "added"
	EventToggled EventKind = "toggled"
	EventDeleted EventKind = "deleted"
	EventRenamed EventKind = "renamed"
)

type Event struct {
	Kind   EventKind
	TaskID string
}

// Partition is the list view: pending and completed tasks, each in
// insertion order.
type Partition struct {
	Pending   []model.Task
	Completed []model.Task
}

type Option func(*Store)

// WithIDFunc replaces the uuid generator.
func WithIDFunc(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

type Store struct {
	items     []model.Task
	persister Persister
	newID     func() string
	observers []func(Event)
	lastErr   error
}

// New loads the initial list from p. A nil persister keeps the store in
// memory only.
func New(ctx context.Context, p Persister, opts ...Option) *Store {
	s := &Store{
		persister: p,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if p != nil {
		s.items = slices.Clone(p.Load(ctx))
	}
	if s.items == nil {
		s.items = []model.Task{}
	}
	return s
}

// Subscribe registers fn to run after each successful mutation.
func (s *Store) Subscribe(fn func(Event)) {
	if fn != nil {
		s.observers = append(s.observers, fn)
	}
}

func (s *Store) Add(text string) (model.Task, bool) {
	added := s.AddMany([]string{text})
	if len(added) == 0 {
		return model.Task{}, false
	}
	return added[0], true
}

// AddMany appends every non-blank text in order as one batch with a single
// write.
func (s *Store) AddMany(texts []string) []model.Task {
	batch := make([]model.Task, 0, len(texts))
	for _, raw := range texts {
		text, ok := model.NormalizeText(raw)
		if !ok {
			continue
		}
		batch = append(batch, model.Task{ID: s.uniqueID(batch), Text: text})
	}
	if len(batch) == 0 {
		return nil
	}
	s.items = append(s.items, batch...)
	s.persist()
	for _, t := range batch {
		s.emit(Event{Kind: EventAdded, TaskID: t.ID})
	}
	return slices.Clone(batch)
}

func (s *Store) Toggle(id string) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.items[i].Completed = !s.items[i].Completed
	s.persist()
	s.emit(Event{Kind: EventToggled, TaskID: id})
	return true
}

func (s *Store) Delete(id string) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.items = slices.Delete(s.items, i, i+1)
	s.persist()
	s.emit(Event{Kind: EventDeleted, TaskID: id})
	return true
}

func (s *Store) Rename(id, text string) bool {
	trimmed, ok := model.NormalizeText(text)
	if !ok {
		return false
	}
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.items[i].Text = trimmed
	s.persist()
	s.emit(Event{Kind: EventRenamed, TaskID: id})
	return true
}

func (s *Store) List() Partition {
	out := Partition{
		Pending:   make([]model.Task, 0, len(s.items)),
		Completed: make([]model.Task, 0),
	}
	for _, t := range s.items {
		if t.Completed {
			out.Completed = append(out.Completed, t)
		} else {
			out.Pending = append(out.Pending, t)
		}
	}
	return out
}

func (s *Store) All() []model.Task {
	return slices.Clone(s.items)
}

func (s *Store) Get(id string) (model.Task, bool) {
	i := s.index(id)
	if i < 0 {
		return model.Task{}, false
	}
	return s.items[i], true
}

func (s *Store) Len() int {
	return len(s.items)
}

// LastSaveError is the error from the most recent write, nil once a write
// succeeds again.
func (s *Store) LastSaveError() error {
	return s.lastErr
}

// Flush writes the current list regardless of pending state.
func (s *Store) Flush(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	return s.persister.Save(ctx, s.All())
}

func (s *Store) persist() {
	if s.persister == nil {
		return
	}
	if err := s.persister.Save(context.Background(), s.All()); err != nil {
		log.Printf("focusflow: save tasks: %v", err)
		s.lastErr = err
		return
	}
	s.lastErr = nil
}

func (s *Store) emit(ev Event) {
	for _, fn := range s.observers {
		fn(ev)
	}
}

func (s *Store) index(id string) int {
	return slices.IndexFunc(s.items, func(t model.Task) bool { return t.ID == id })
}

func (s *Store) uniqueID(pending []model.Task) string {
	for {
		id := s.newID()
		if s.index(id) >= 0 {
			continue
		}
		if slices.ContainsFunc(pending, func(t model.Task) bool { return t.ID == id }) {
			continue
		}
		return id
	}
}
