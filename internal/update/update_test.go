package update

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/focusflow/internal/app"
	"github.com/sandeepkv93/focusflow/internal/breakdown"
	"github.com/sandeepkv93/focusflow/internal/config"
	"github.com/sandeepkv93/focusflow/internal/model"
	"github.com/sandeepkv93/focusflow/internal/scheduler"
	"github.com/sandeepkv93/focusflow/internal/storage"
	"github.com/sandeepkv93/focusflow/internal/tasks"
	"github.com/sandeepkv93/focusflow/internal/timer"
)

type recordingNotifier struct {
	sent []Notification
}

func (r *recordingNotifier) Send(n Notification) error {
	r.sent = append(r.sent, n)
	return nil
}

func newTestModel(t *testing.T, gen breakdown.Generator) Model {
	t.Helper()
	store := tasks.New(context.Background(), storage.NewTaskPersistence(storage.NewMemoryKV(), ""))
	machine, err := timer.New(timer.DefaultDurations())
	if err != nil {
		t.Fatalf("new machine: %v", err)
	}
	session := app.New(store, machine, breakdown.New(gen))
	return NewModel(session, nil, nil, config.Default().UI)
}

func press(t *testing.T, m Model, keys ...tea.KeyMsg) Model {
	t.Helper()
	for _, k := range keys {
		updated, _ := m.Update(k)
		m = updated.(Model)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keySpace = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	keySave  = tea.KeyMsg{Type: tea.KeyCtrlS}
)

func addTask(t *testing.T, m Model, text string) Model {
	t.Helper()
	return press(t, m, runes("a"), runes(text), keyEnter)
}

func tick(t *testing.T, m Model, n int) Model {
	t.Helper()
	for i := 0; i < n; i++ {
		updated, _ := m.Update(TickMsg{Event: scheduler.TickEvent{Generation: m.Session.Timer().Generation, At: time.Now()}})
		m = updated.(Model)
	}
	return m
}

func TestNewModelDefaults(t *testing.T) {
	m := newTestModel(t, nil)
	if m.CurrentView != ViewTasks {
		t.Fatalf("expected default view %q, got %q", ViewTasks, m.CurrentView)
	}
	if m.Keys.Quit != "q" || m.Keys.Breakdown != "3" {
		t.Fatalf("unexpected keys: %+v", m.Keys)
	}
	if m.Init() != nil {
		t.Fatal("expected no tick command without a tick channel")
	}
}

func TestUpdateKeySwitchesView(t *testing.T) {
	m := newTestModel(t, nil)
	m = press(t, m, runes("2"))
	if m.CurrentView != ViewTimer {
		t.Fatalf("expected timer view, got %q", m.CurrentView)
	}
	m = press(t, m, runes("3"))
	if m.CurrentView != ViewBreakdown {
		t.Fatalf("expected breakdown view, got %q", m.CurrentView)
	}
	if m.Breakdown.Editing {
		t.Fatal("editor must stay closed without an API key")
	}
	m = press(t, m, runes("1"))
	if m.CurrentView != ViewTasks {
		t.Fatalf("expected tasks view, got %q", m.CurrentView)
	}

	updated, _ := m.Update(SwitchViewMsg{View: View("Unknown")})
	if updated.(Model).CurrentView != ViewTasks {
		t.Fatal("expected view unchanged for unknown view")
	}
}

func TestUpdateStatusAndError(t *testing.T) {
	m := newTestModel(t, nil)
	updated, _ := m.Update(SetStatusMsg{Text: "ready"})
	next := updated.(Model)
	if next.Status.Text != "ready" || next.Status.IsError {
		t.Fatalf("unexpected status: %+v", next.Status)
	}

	updated, _ = next.Update(AppErrorMsg{Err: errors.New("boom")})
	next = updated.(Model)
	if next.LastError == nil || !next.Status.IsError || next.Status.Text != "boom" {
		t.Fatalf("unexpected error state: %+v %v", next.Status, next.LastError)
	}

	updated, _ = next.Update(ClearStatusMsg{})
	if updated.(Model).Status != (StatusBar{}) {
		t.Fatal("expected cleared status")
	}
}

func TestAddRenameToggleDeleteWithKeyboard(t *testing.T) {
	m := newTestModel(t, nil)
	m = addTask(t, m, "write tests")
	m = addTask(t, m, "ship it")

	pending := m.Session.Tasks().Pending
	if len(pending) != 2 || pending[0].Text != "write tests" || pending[1].Text != "ship it" {
		t.Fatalf("unexpected pending tasks: %+v", pending)
	}
	if m.Cursor != 1 {
		t.Fatalf("expected cursor on the new task, got %d", m.Cursor)
	}

	m = press(t, m, runes("k"), runes("e"))
	if m.Input.Mode != InputRename || m.taskInput.Value() != "write tests" {
		t.Fatalf("expected rename input prefilled, got %+v %q", m.Input, m.taskInput.Value())
	}
	m = press(t, m, runes(" first"), keyEnter)
	if got := m.Session.Tasks().Pending[0].Text; got != "write tests first" {
		t.Fatalf("unexpected renamed text %q", got)
	}

	m = press(t, m, runes("x"))
	part := m.Session.Tasks()
	if len(part.Completed) != 1 || part.Completed[0].Text != "write tests first" {
		t.Fatalf("expected first task completed, got %+v", part)
	}

	m = press(t, m, runes("j"), runes("d"))
	if m.Session.Tasks().Pending[0].Text != "ship it" || len(m.Session.Tasks().Completed) != 0 {
		t.Fatalf("expected completed task deleted, got %+v", m.Session.Tasks())
	}
}

func TestAddBlankTaskIsRejected(t *testing.T) {
	m := newTestModel(t, nil)
	m = press(t, m, runes("a"), keySpace, keyEnter)
	if len(m.Session.Tasks().Pending) != 0 {
		t.Fatal("blank task must not be added")
	}
	if !m.Status.IsError || m.Input.Mode != InputAdd {
		t.Fatalf("expected error and input still open, got %+v %+v", m.Status, m.Input)
	}
	m = press(t, m, keyEsc)
	if m.Input.Mode != InputNone {
		t.Fatal("expected esc to close input")
	}
}

func TestInputModeCapturesGlobalKeys(t *testing.T) {
	m := newTestModel(t, nil)
	m = press(t, m, runes("a"), runes("q2"))
	if m.Quitting || m.CurrentView != ViewTasks {
		t.Fatal("keys typed into the input must not act globally")
	}
	if m.taskInput.Value() != "q2" {
		t.Fatalf("unexpected input %q", m.taskInput.Value())
	}
}

func TestFocusedTaskCompletesAfterWorkInterval(t *testing.T) {
	notifier := &recordingNotifier{}
	m := newTestModel(t, nil)
	m.notifier = notifier
	m.DesktopEnabled = true

	m = addTask(t, m, "A")
	m = press(t, m, runes("f"))
	if _, ok := m.Session.FocusedTask(); !ok {
		t.Fatal("expected focus set")
	}

	m = press(t, m, runes("2"), keySpace)
	if !m.Session.Timer().Running {
		t.Fatal("expected timer running")
	}
	m = tick(t, m, 1500)

	part := m.Session.Tasks()
	if len(part.Completed) != 1 || part.Completed[0].Text != "A" {
		t.Fatalf("expected focused task completed, got %+v", part)
	}
	if _, ok := m.Session.FocusedTask(); ok {
		t.Fatal("expected focus cleared")
	}
	snap := m.Session.Timer()
	if snap.Mode != model.ModeShortBreak || snap.Remaining != 300 || snap.Running || snap.CompletedWork != 1 {
		t.Fatalf("unexpected timer after expiry: %+v", snap)
	}
	if len(notifier.sent) != 1 || notifier.sent[0].Title != "Work session complete" {
		t.Fatalf("expected one desktop notification, got %+v", notifier.sent)
	}
	if m.Status.Text != "Work session complete" {
		t.Fatalf("unexpected status %q", m.Status.Text)
	}
}

func TestStaleTickIsIgnored(t *testing.T) {
	m := newTestModel(t, nil)
	m = press(t, m, runes("2"), keySpace)
	gen := m.Session.Timer().Generation
	m = press(t, m, keySpace)

	updated, cmd := m.Update(TickMsg{Event: scheduler.TickEvent{Generation: gen}})
	m = updated.(Model)
	if m.Session.Timer().Remaining != 1500 {
		t.Fatalf("paused timer must not move, remaining %d", m.Session.Timer().Remaining)
	}
	if cmd != nil {
		t.Fatal("expected no follow-up read without a tick channel")
	}
}

func TestTickMsgSchedulesNextRead(t *testing.T) {
	ch := make(chan scheduler.TickEvent, 1)
	m := newTestModel(t, nil)
	m.Ticks = ch
	if m.Init() == nil {
		t.Fatal("expected init to start reading ticks")
	}
	_, cmd := m.Update(TickMsg{})
	if cmd == nil {
		t.Fatal("expected next tick read")
	}
	ch <- scheduler.TickEvent{Generation: 9}
	msg, ok := cmd().(TickMsg)
	if !ok || msg.Event.Generation != 9 {
		t.Fatalf("unexpected message %#v", msg)
	}

	close(ch)
	if got := waitForTickCmd(ch)(); got != nil {
		t.Fatalf("expected nil message from closed channel, got %#v", got)
	}
}

func TestModeSwitchWhileRunningAsksFirst(t *testing.T) {
	m := newTestModel(t, nil)
	m = press(t, m, runes("2"), keySpace)
	m = tick(t, m, 10)

	m = press(t, m, runes("l"))
	if !m.Confirm.Active || m.Confirm.Mode != model.ModeLongBreak {
		t.Fatalf("expected confirmation prompt, got %+v", m.Confirm)
	}
	if snap := m.Session.Timer(); snap.Mode != model.ModeWork || !snap.Running || snap.Remaining != 1490 {
		t.Fatalf("timer must be untouched while asking: %+v", snap)
	}
	if !strings.Contains(m.View(), "[y/n]") {
		t.Fatal("expected prompt in view")
	}

	m = press(t, m, runes("n"))
	if m.Confirm.Active || m.Session.Timer().Mode != model.ModeWork {
		t.Fatal("declining must keep work mode")
	}

	m = press(t, m, runes("l"), runes("y"))
	snap := m.Session.Timer()
	if snap.Mode != model.ModeLongBreak || snap.Remaining != 900 || snap.Running {
		t.Fatalf("unexpected timer after confirmed switch: %+v", snap)
	}
}

func TestModeSwitchWhilePausedIsImmediate(t *testing.T) {
	m := newTestModel(t, nil)
	m = press(t, m, runes("2"), runes("s"))
	if m.Confirm.Active {
		t.Fatal("no prompt expected while paused")
	}
	if snap := m.Session.Timer(); snap.Mode != model.ModeShortBreak || snap.Remaining != 300 {
		t.Fatalf("unexpected timer: %+v", snap)
	}
	m = press(t, m, keySpace, runes("r"))
	if snap := m.Session.Timer(); snap.Running || snap.Remaining != 300 {
		t.Fatalf("expected reset timer: %+v", snap)
	}
}

func TestBreakdownAppendsSubtasks(t *testing.T) {
	gen := breakdown.GeneratorFunc(func(context.Context, string) (string, error) {
		return `["book flight","book hotel","pack bags"]`, nil
	})
	m := newTestModel(t, gen)
	m = addTask(t, m, "existing")

	m = press(t, m, runes("3"))
	if !m.Breakdown.Editing {
		t.Fatal("expected editor open")
	}
	m = press(t, m, runes("Plan trip"))
	updated, cmd := m.Update(keySave)
	m = updated.(Model)
	if cmd == nil || !m.Breakdown.Loading {
		t.Fatal("expected request started")
	}

	m = press(t, m, keySave)
	if !m.Status.IsError {
		t.Fatal("second submit while loading must be refused")
	}

	result := breakdownCmd(m.Session, "Plan trip", time.Second)()
	updated, _ = m.Update(result)
	m = updated.(Model)
	if m.Breakdown.Loading {
		t.Fatal("expected loading cleared")
	}
	pending := m.Session.Tasks().Pending
	if len(pending) != 4 || pending[0].Text != "existing" || pending[3].Text != "pack bags" {
		t.Fatalf("unexpected tasks after breakdown: %+v", pending)
	}
	if len(m.Breakdown.Results) != 3 || m.breakdownInput.Value() != "" {
		t.Fatalf("unexpected breakdown state: %+v input=%q", m.Breakdown, m.breakdownInput.Value())
	}
}

func TestBreakdownFailureShowsGenericMessage(t *testing.T) {
	gen := breakdown.GeneratorFunc(func(context.Context, string) (string, error) {
		return "", errors.New("quota exceeded for project 1234")
	})
	m := newTestModel(t, gen)
	updated, _ := m.Update(breakdownCmd(m.Session, "Plan trip", time.Second)())
	m = updated.(Model)
	if m.Breakdown.Err != model.BreakdownFailedMessage {
		t.Fatalf("unexpected error text %q", m.Breakdown.Err)
	}
	if strings.Contains(m.View(), "quota") {
		t.Fatal("raw cause must not reach the screen")
	}
	if len(m.Session.Tasks().Pending) != 0 {
		t.Fatal("failed breakdown must not add tasks")
	}
}

func TestBreakdownDisabledWithoutAPIKey(t *testing.T) {
	m := newTestModel(t, nil)
	m = press(t, m, runes("3"))
	updated, cmd := m.Update(keySave)
	m = updated.(Model)
	if cmd != nil || m.Breakdown.Loading || !m.Status.IsError {
		t.Fatalf("expected refusal, got status %+v", m.Status)
	}
	if !strings.Contains(m.View(), "no API key configured") {
		t.Fatal("expected disabled notice in view")
	}
}

func TestPaletteCommands(t *testing.T) {
	m := newTestModel(t, nil)
	m = press(t, m, runes("/"), runes("add"), keySpace, runes("write docs"), keyEnter)
	if m.Palette.Active {
		t.Fatal("expected palette closed after enter")
	}
	pending := m.Session.Tasks().Pending
	if len(pending) != 1 || pending[0].Text != "write docs" {
		t.Fatalf("unexpected tasks: %+v", pending)
	}

	m = press(t, m, runes("/"), runes("focus"), keyEnter)
	if f, ok := m.Session.FocusedTask(); !ok || f.Text != "write docs" {
		t.Fatal("expected focus via palette")
	}

	m = press(t, m, runes("/"), runes("mode long"), keyEnter)
	if m.CurrentView != ViewTimer || m.Session.Timer().Mode != model.ModeLongBreak {
		t.Fatalf("expected long break mode, got %+v", m.Session.Timer())
	}

	m = press(t, m, runes("/"), runes("bogus"), keyEnter)
	if !m.Status.IsError || !strings.Contains(m.Status.Text, "unknown_command") {
		t.Fatalf("expected unknown command error, got %+v", m.Status)
	}

	m = press(t, m, runes("/"), runes("breakdown plan"), keyEnter)
	if !m.Status.IsError || m.Breakdown.Loading {
		t.Fatalf("breakdown without key must fail, got %+v", m.Status)
	}
}

func TestUpdateQuitKey(t *testing.T) {
	m := newTestModel(t, nil)
	updated, cmd := m.Update(runes("q"))
	if !updated.(Model).Quitting || cmd == nil {
		t.Fatal("expected quit")
	}
}

func TestViewContainsCoreState(t *testing.T) {
	m := newTestModel(t, nil)
	m = addTask(t, m, "draft outline")
	m = press(t, m, runes("f"))
	out := m.View()
	for _, want := range []string{"view: Tasks", "focus: draft outline", "draft outline", "status: focusing on", "25:00"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output: %q", want, out)
		}
	}

	m = press(t, m, runes("?"))
	if !strings.Contains(m.View(), "add task") {
		t.Fatal("expected contextual help")
	}
}
