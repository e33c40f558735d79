// Package app ties the task list, the pomodoro timer and the breakdown
// client together. A Session is owned by one goroutine (the UI loop or a CLI
// command); only RequestBreakdown may run elsewhere.
package app

import (
	"context"
	"fmt"
	"log"

	"github.com/sandeepkv93/focusflow/internal/breakdown"
	"github.com/sandeepkv93/focusflow/internal/model"
	"github.com/sandeepkv93/focusflow/internal/tasks"
	"github.com/sandeepkv93/focusflow/internal/timer"
)

// Ticker is the tick source the session arms while the timer runs.
type Ticker interface {
	Arm(gen uint64) error
	Disarm()
}

// Notice is raised when an interval expires.
type Notice struct {
	Title string
	Body  string
	Mode  model.TimerMode
}

// View is one consistent read of the whole session.
type View struct {
	Pending          []model.Task
	Completed        []model.Task
	Focused          model.Task
	HasFocus         bool
	Timer            timer.Snapshot
	BreakdownEnabled bool
}

type Session struct {
	store    *tasks.Store
	machine  *timer.Machine
	client   *breakdown.Client
	ticker   Ticker
	focusID  string
	onNotify func(Notice)

	armed    bool
	armedGen uint64

	// text of the task the last work expiry completed, read by notify
	lastCompleted string
}

type Option func(*Session)

func WithTicker(t Ticker) Option {
	return func(s *Session) { s.ticker = t }
}

func WithNotifier(fn func(Notice)) Option {
	return func(s *Session) { s.onNotify = fn }
}

func New(store *tasks.Store, machine *timer.Machine, client *breakdown.Client, opts ...Option) *Session {
	if client == nil {
		client = breakdown.New(nil)
	}
	s := &Session{store: store, machine: machine, client: client}
	for _, opt := range opts {
		opt(s)
	}
	machine.OnWorkExpired(s.onWorkIntervalExpired)
	store.Subscribe(s.onTaskEvent)
	return s
}

func (s *Session) OnNotify(fn func(Notice)) {
	s.onNotify = fn
}

// Focus marks id as the task the next work interval completes. Unknown or
// completed tasks are rejected.
func (s *Session) Focus(id string) bool {
	t, ok := s.store.Get(id)
	if !ok || t.Completed {
		return false
	}
	s.focusID = id
	return true
}

// FocusedTask resolves the focus against the live list, so a stale id never
// surfaces.
func (s *Session) FocusedTask() (model.Task, bool) {
	if s.focusID == "" {
		return model.Task{}, false
	}
	t, ok := s.store.Get(s.focusID)
	if !ok || t.Completed {
		return model.Task{}, false
	}
	return t, true
}

func (s *Session) ClearFocus() {
	s.focusID = ""
}

func (s *Session) onWorkIntervalExpired() {
	s.lastCompleted = ""
	t, ok := s.FocusedTask()
	if !ok {
		return
	}
	s.store.Toggle(t.ID)
	s.lastCompleted = t.Text
	s.ClearFocus()
}

func (s *Session) onTaskEvent(ev tasks.Event) {
	if ev.TaskID != s.focusID {
		return
	}
	switch ev.Kind {
	case tasks.EventToggled, tasks.EventDeleted:
		s.focusID = ""
	}
}

func (s *Session) AddTask(text string) (model.Task, bool) {
	return s.store.Add(text)
}

func (s *Session) AddTasks(texts []string) []model.Task {
	return s.store.AddMany(texts)
}

func (s *Session) ToggleTask(id string) bool {
	return s.store.Toggle(id)
}

func (s *Session) DeleteTask(id string) bool {
	return s.store.Delete(id)
}

func (s *Session) RenameTask(id, text string) bool {
	return s.store.Rename(id, text)
}

func (s *Session) Tasks() tasks.Partition {
	return s.store.List()
}

func (s *Session) Task(id string) (model.Task, bool) {
	return s.store.Get(id)
}

func (s *Session) Timer() timer.Snapshot {
	return s.machine.Snapshot()
}

func (s *Session) ToggleTimer() {
	s.machine.ToggleRunning()
	s.syncTicker()
}

func (s *Session) StartTimer() {
	s.machine.Start()
	s.syncTicker()
}

func (s *Session) PauseTimer() {
	s.machine.Pause()
	s.syncTicker()
}

func (s *Session) ResetTimer() {
	s.machine.Reset()
	s.syncTicker()
}

// SelectMode switches the timer mode. confirm is asked only when a running
// countdown would be discarded; nil allows the switch.
func (s *Session) SelectMode(mode model.TimerMode, confirm func() bool) bool {
	changed := s.machine.SelectMode(mode, confirm)
	s.syncTicker()
	return changed
}

// Tick applies one tick armed at gen. Stale generations are ignored.
func (s *Session) Tick(gen uint64) timer.Transition {
	if !s.machine.Accept(gen) {
		return timer.Transition{From: s.machine.Mode(), To: s.machine.Mode()}
	}
	tr := s.machine.Tick()
	if tr.Expired {
		s.syncTicker()
		s.notify(tr)
	}
	return tr
}

func (s *Session) notify(tr timer.Transition) {
	completed := s.lastCompleted
	s.lastCompleted = ""
	if s.onNotify == nil {
		return
	}
	n := Notice{Mode: tr.From}
	if tr.From == model.ModeWork {
		n.Title = "Work session complete"
		n.Body = fmt.Sprintf("Time for a %s.", tr.To.Label())
		if completed != "" {
			n.Body = fmt.Sprintf("Completed %q. Time for a %s.", completed, tr.To.Label())
		}
	} else {
		n.Title = tr.From.Label() + " over"
		n.Body = "Back to work."
	}
	s.onNotify(n)
}

func (s *Session) syncTicker() {
	if s.ticker == nil {
		return
	}
	snap := s.machine.Snapshot()
	if !snap.Running {
		if s.armed {
			s.ticker.Disarm()
			s.armed = false
		}
		return
	}
	if s.armed && s.armedGen == snap.Generation {
		return
	}
	if err := s.ticker.Arm(snap.Generation); err != nil {
		log.Printf("focusflow: arm ticker: %v", err)
		return
	}
	s.armed = true
	s.armedGen = snap.Generation
}

func (s *Session) BreakdownEnabled() bool {
	return s.client.Enabled()
}

// RequestBreakdown only talks to the breakdown service and touches no
// session state, so it may run on another goroutine. Pair it with AddTasks.
func (s *Session) RequestBreakdown(ctx context.Context, description string) ([]string, error) {
	return s.client.BreakDown(ctx, description)
}

// BreakDown requests subtasks and appends them after the existing tasks.
func (s *Session) BreakDown(ctx context.Context, description string) ([]model.Task, error) {
	items, err := s.RequestBreakdown(ctx, description)
	if err != nil {
		return nil, err
	}
	return s.AddTasks(items), nil
}

func (s *Session) View() View {
	part := s.store.List()
	v := View{
		Pending:          part.Pending,
		Completed:        part.Completed,
		Timer:            s.machine.Snapshot(),
		BreakdownEnabled: s.client.Enabled(),
	}
	v.Focused, v.HasFocus = s.FocusedTask()
	return v
}

// Close disarms the ticker and writes the task list one last time.
func (s *Session) Close(ctx context.Context) error {
	if s.ticker != nil && s.armed {
		s.ticker.Disarm()
		s.armed = false
	}
	if err := s.store.Flush(ctx); err != nil {
		return fmt.Errorf("flush tasks: %w", err)
	}
	return nil
}
