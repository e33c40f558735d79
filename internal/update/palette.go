package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/focusflow/internal/commands"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closePalette()
		m.Status = StatusBar{Text: "command palette closed"}
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		return m.executePaletteCommand()
	default:
		if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
			m.commandInput.SetValue(m.commandInput.Value() + string(msg.Runes))
			m.Palette.Input = m.commandInput.Value()
			return m, nil
		}
		m.commandInput, _ = m.commandInput.Update(msg)
		m.Palette.Input = m.commandInput.Value()
	}
	return m, nil
}

func (m *Model) closePalette() {
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
}

func (m Model) executePaletteCommand() (Model, tea.Cmd) {
	raw := strings.TrimSpace(m.Palette.Input)
	m.closePalette()
	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}

	var follow tea.Cmd
	res, err := commands.Execute(cmd, commands.Handlers{
		Add: func(a commands.AddArgs) (commands.Result, error) {
			t, ok := m.Session.AddTask(a.Text)
			if !ok {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "task text is empty"}
			}
			m.CurrentView = ViewTasks
			m.selectTask(t.ID)
			return commands.Result{Message: fmt.Sprintf("added: %s", t.Text)}, nil
		},
		Rename: func(r commands.RenameArgs) (commands.Result, error) {
			t, ok := m.selectedTask()
			if !ok || t.Completed {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "select a pending task to rename"}
			}
			m.Session.RenameTask(t.ID, r.Text)
			return commands.Result{Message: "task renamed"}, nil
		},
		Focus: func() (commands.Result, error) {
			t, ok := m.selectedTask()
			if !ok || !m.Session.Focus(t.ID) {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "select a pending task to focus"}
			}
			return commands.Result{Message: fmt.Sprintf("focusing on: %s", t.Text)}, nil
		},
		Mode: func(a commands.ModeArgs) (commands.Result, error) {
			m.CurrentView = ViewTimer
			m = m.requestMode(a.Mode)
			return commands.Result{Message: m.Status.Text}, nil
		},
		Breakdown: func(b commands.BreakdownArgs) (commands.Result, error) {
			if why := m.breakdownBlocked(b.Description); why != "" {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: why}
			}
			m.CurrentView = ViewBreakdown
			m, follow = m.submitBreakdown(b.Description)
			return commands.Result{Message: m.Status.Text}, nil
		},
		Reset: func() (commands.Result, error) {
			m.Session.ResetTimer()
			return commands.Result{Message: "timer reset"}, nil
		},
	})
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.notify("Command Failed", err.Error(), "error")
		return m, nil
	}
	m.Status = StatusBar{Text: res.Message}
	return m, follow
}
