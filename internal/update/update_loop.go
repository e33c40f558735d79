package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/focusflow/internal/scheduler"
	"github.com/sandeepkv93/focusflow/internal/views"
)

func (m Model) Init() tea.Cmd {
	return waitForTickCmd(m.Ticks)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	next.syncBubbleData()
	return next, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(typed)
	case spinner.TickMsg:
		if m.Breakdown.Loading {
			var cmd tea.Cmd
			m.loadSpinner, cmd = m.loadSpinner.Update(typed)
			return m, cmd
		}
	case SwitchViewMsg:
		if isKnownView(typed.View) {
			m = m.switchView(typed.View)
		}
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
			m.notify("Error", typed.Err.Error(), "error")
		}
		return m, nil
	case TickMsg:
		m = m.onTick(typed.Event)
		return m, waitForTickCmd(m.Ticks)
	case BreakdownResultMsg:
		return m.onBreakdownResult(typed), nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	keyStr := msg.String()
	if keyStr == "ctrl+c" {
		m.Quitting = true
		return m, tea.Quit
	}
	if m.Confirm.Active {
		return m.handleConfirmKey(msg), nil
	}
	if m.Palette.Active {
		if keyStr == m.Keys.Help {
			m.HelpVisible = !m.HelpVisible
			return m, nil
		}
		return m.handlePaletteKey(msg)
	}
	if m.Input.Mode != InputNone {
		return m.handleTaskInputKey(msg), nil
	}
	if m.CurrentView == ViewBreakdown && m.Breakdown.Editing {
		return m.handleBreakdownEditKey(msg)
	}

	switch keyStr {
	case "/":
		m.Palette.Active = true
		m.Palette.Input = ""
		m.commandInput.SetValue("")
		m.Status = StatusBar{Text: "command palette active"}
		return m, nil
	case m.Keys.Tasks:
		return m.switchView(ViewTasks), nil
	case m.Keys.Timer:
		return m.switchView(ViewTimer), nil
	case m.Keys.Breakdown:
		return m.switchView(ViewBreakdown), nil
	case m.Keys.Help:
		m.HelpVisible = !m.HelpVisible
		if m.HelpVisible {
			m.Status = StatusBar{Text: "help shown"}
		} else {
			m.Status = StatusBar{Text: "help hidden"}
		}
		return m, nil
	case m.Keys.Quit:
		m.Quitting = true
		return m, tea.Quit
	}

	switch m.CurrentView {
	case ViewTasks:
		return m.handleTasksKey(msg), nil
	case ViewTimer:
		return m.handleTimerKey(msg), nil
	case ViewBreakdown:
		return m.handleBreakdownKey(msg)
	}
	return m, nil
}

func (m Model) switchView(v View) Model {
	m.CurrentView = v
	if v == ViewBreakdown && m.Session.BreakdownEnabled() {
		m.Breakdown.Editing = true
	}
	return m
}

func (m Model) View() string {
	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}

	leftPane := ""
	switch m.CurrentView {
	case ViewTasks:
		leftPane = m.renderTasksView()
	case ViewTimer:
		leftPane = m.renderTimerView()
	case ViewBreakdown:
		leftPane = m.renderBreakdownView()
	}
	rightPane := joinNonEmpty(m.renderTimerSummary(), m.renderCommandPalette(), m.renderHelpIfVisible())

	focus := "(none)"
	if t, ok := m.Session.FocusedTask(); ok {
		focus = t.Text
	}
	return views.RenderApp(views.AppData{
		Header:       fmt.Sprintf("focusflow | view: %s | focus: %s", m.CurrentView, focus),
		LeftPane:     leftPane,
		RightPane:    rightPane,
		StatusLine:   status,
		StatusError:  m.Status.IsError,
		Notification: m.renderNotificationsView(),
		Footer: fmt.Sprintf("keys: %s tasks | %s timer | %s breakdown | / cmd | %s help | %s quit",
			m.Keys.Tasks, m.Keys.Timer, m.Keys.Breakdown, m.Keys.Help, m.Keys.Quit),
	})
}

func isKnownView(v View) bool {
	switch v {
	case ViewTasks, ViewTimer, ViewBreakdown:
		return true
	default:
		return false
	}
}

// waitForTickCmd reads one tick. Exactly one read is outstanding at a time:
// Init issues the first and every TickMsg issues the next.
func waitForTickCmd(ch <-chan scheduler.TickEvent) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return TickMsg{Event: ev}
	}
}
