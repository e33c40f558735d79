package update

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/focusflow/internal/model"
	"github.com/sandeepkv93/focusflow/internal/scheduler"
)

func (m Model) handleTimerKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case " ":
		m.Session.ToggleTimer()
		if m.Session.Timer().Running {
			m.Status = StatusBar{Text: "timer running"}
		} else {
			m.Status = StatusBar{Text: "timer paused"}
		}
	case "r":
		m.Session.ResetTimer()
		m.Status = StatusBar{Text: "timer reset"}
	case "w":
		m = m.requestMode(model.ModeWork)
	case "s":
		m = m.requestMode(model.ModeShortBreak)
	case "l":
		m = m.requestMode(model.ModeLongBreak)
	}
	return m
}

// requestMode switches immediately when nothing would be lost. Otherwise the
// confirmation predicate records the question and declines; the y answer
// retries with an accepting predicate.
func (m Model) requestMode(mode model.TimerMode) Model {
	asked := false
	changed := m.Session.SelectMode(mode, func() bool {
		asked = true
		return false
	})
	if asked {
		m.Confirm = ConfirmState{Active: true, Mode: mode}
		m.Status = StatusBar{Text: fmt.Sprintf("switch to %s and discard the running countdown? [y/n]", mode.Label())}
		return m
	}
	if changed {
		m.Status = StatusBar{Text: fmt.Sprintf("mode: %s", mode.Label())}
	}
	return m
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "y", "Y", "enter":
		mode := m.Confirm.Mode
		m.Confirm = ConfirmState{}
		if m.Session.SelectMode(mode, func() bool { return true }) {
			m.Status = StatusBar{Text: fmt.Sprintf("mode: %s", mode.Label())}
		}
	case "n", "N", "esc":
		m.Confirm = ConfirmState{}
		m.Status = StatusBar{Text: "mode switch cancelled"}
	}
	return m
}

func (m Model) onTick(ev scheduler.TickEvent) Model {
	tr := m.Session.Tick(ev.Generation)
	if !tr.Expired {
		return m
	}
	// a countdown that is gone cannot be discarded
	m.Confirm = ConfirmState{}
	for _, n := range m.notices.drain() {
		m.Status = StatusBar{Text: n.Title}
		m.notify(n.Title, n.Body, "info")
	}
	return m
}
