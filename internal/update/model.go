package update

import (
	"fmt"
	"os/exec"
	"runtime"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/sandeepkv93/focusflow/internal/app"
	"github.com/sandeepkv93/focusflow/internal/config"
	"github.com/sandeepkv93/focusflow/internal/model"
	"github.com/sandeepkv93/focusflow/internal/scheduler"
)

type View string

const (
	ViewTasks     View = "Tasks"
	ViewTimer     View = "Timer"
	ViewBreakdown View = "Breakdown"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Tasks     string
	Timer     string
	Breakdown string
	Help      string
	Quit      string
}

type InputMode string

const (
	InputNone   InputMode = ""
	InputAdd    InputMode = "add"
	InputRename InputMode = "rename"
)

type TaskInputState struct {
	Mode     InputMode
	TargetID string
}

// ConfirmState is the pending "discard the running countdown?" question.
type ConfirmState struct {
	Active bool
	Mode   model.TimerMode
}

type BreakdownState struct {
	Editing bool
	Loading bool
	Results []string
	Err     string
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type Notification struct {
	Title string
	Body  string
	Level string
	At    time.Time
}

type DesktopNotifier interface {
	Send(Notification) error
}

type NoopDesktopNotifier struct{}

func (NoopDesktopNotifier) Send(Notification) error { return nil }

type ExecDesktopNotifier struct{}

func (ExecDesktopNotifier) Send(n Notification) error {
	switch runtime.GOOS {
	case "linux":
		return exec.Command("notify-send", n.Title, n.Body).Run()
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(n.Body), escapeAppleScript(n.Title))
		return exec.Command("osascript", "-e", script).Run()
	default:
		return nil
	}
}

// noticeQueue collects session notices raised inside Session.Tick until the
// update loop drains them. It is shared by every copy of Model.
type noticeQueue struct {
	items []app.Notice
}

func (q *noticeQueue) drain() []app.Notice {
	out := q.items
	q.items = nil
	return out
}

type Model struct {
	CurrentView    View
	Session        *app.Session
	Ticks          <-chan scheduler.TickEvent
	Cursor         int
	Input          TaskInputState
	Confirm        ConfirmState
	Breakdown      BreakdownState
	Palette        CommandPaletteState
	HelpVisible    bool
	Notifications  []Notification
	DesktopEnabled bool
	notifier       DesktopNotifier
	notices        *noticeQueue
	Status         StatusBar
	Keys           GlobalKeyMap
	Quitting       bool
	LastError      error
	RequestTimeout time.Duration
	// Bubble components used for rich TUI controls
	taskInput      textinput.Model
	commandInput   textinput.Model
	breakdownInput textarea.Model
	timerProgress  progress.Model
	loadSpinner    spinner.Model
	helpModel      help.Model
	resultsView    viewport.Model
}

type SwitchViewMsg struct {
	View View
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

type TickMsg struct {
	Event scheduler.TickEvent
}

type BreakdownResultMsg struct {
	Description string
	Items       []string
	Err         error
}

// NewModel builds the UI around session. ticks is the engine channel the
// session arms; nil disables the countdown loop.
func NewModel(session *app.Session, ticks <-chan scheduler.TickEvent, notifier DesktopNotifier, cfg config.UIConfig) Model {
	m := Model{
		CurrentView:    ViewTasks,
		Session:        session,
		Ticks:          ticks,
		DesktopEnabled: cfg.DesktopNotifications,
		notifier:       NoopDesktopNotifier{},
		notices:        &noticeQueue{},
		RequestTimeout: 30 * time.Second,
		Keys: GlobalKeyMap{
			Tasks:     "1",
			Timer:     "2",
			Breakdown: "3",
			Help:      "?",
			Quit:      "q",
		},
	}
	if notifier != nil {
		m.notifier = notifier
	}
	queue := m.notices
	session.OnNotify(func(n app.Notice) {
		queue.items = append(queue.items, n)
	})
	m.initBubbleComponents()
	m.syncBubbleData()
	return m
}

func (m *Model) initBubbleComponents() {
	m.taskInput = textinput.New()
	m.taskInput.Prompt = "> "
	m.taskInput.CharLimit = 256
	m.taskInput.Width = 48

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 40

	m.breakdownInput = textarea.New()
	m.breakdownInput.SetWidth(54)
	m.breakdownInput.SetHeight(4)
	m.breakdownInput.ShowLineNumbers = false
	m.breakdownInput.Placeholder = "e.g. Plan a weekend trip to Lisbon"

	m.timerProgress = progress.New(progress.WithDefaultGradient(), progress.WithWidth(30), progress.WithoutPercentage())

	m.loadSpinner = spinner.New()
	m.loadSpinner.Spinner = spinner.Dot

	m.helpModel = help.New()
	m.resultsView = viewport.New(54, 10)
}

// syncBubbleData keeps widget state derived from the model fields.
func (m *Model) syncBubbleData() {
	m.clampCursor()
	m.commandInput.SetValue(m.Palette.Input)
	if m.Palette.Active {
		m.commandInput.Focus()
	} else {
		m.commandInput.Blur()
	}
	if m.Input.Mode != InputNone {
		m.taskInput.Focus()
	} else {
		m.taskInput.Blur()
	}
	if m.CurrentView == ViewBreakdown && m.Breakdown.Editing && !m.Palette.Active {
		m.breakdownInput.Focus()
	} else {
		m.breakdownInput.Blur()
	}
}
