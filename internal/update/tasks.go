package update

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/focusflow/internal/model"
)

// rows is the display order: pending tasks, then completed ones.
func (m Model) rows() []model.Task {
	part := m.Session.Tasks()
	return append(part.Pending, part.Completed...)
}

func (m Model) selectedTask() (model.Task, bool) {
	rows := m.rows()
	if m.Cursor < 0 || m.Cursor >= len(rows) {
		return model.Task{}, false
	}
	return rows[m.Cursor], true
}

func (m *Model) clampCursor() {
	n := len(m.rows())
	if m.Cursor >= n {
		m.Cursor = n - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
}

func (m *Model) selectTask(id string) {
	for i, t := range m.rows() {
		if t.ID == id {
			m.Cursor = i
			return
		}
	}
}

func (m Model) handleTasksKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.rows())-1 {
			m.Cursor++
		}
	case "a":
		m.Input = TaskInputState{Mode: InputAdd}
		m.taskInput.SetValue("")
		m.Status = StatusBar{Text: "new task: type and press enter"}
	case "e":
		t, ok := m.selectedTask()
		if !ok || t.Completed {
			m.Status = StatusBar{Text: "select a pending task to rename", IsError: true}
			return m
		}
		m.Input = TaskInputState{Mode: InputRename, TargetID: t.ID}
		m.taskInput.SetValue(t.Text)
		m.Status = StatusBar{Text: "rename task: edit and press enter"}
	case " ", "x":
		t, ok := m.selectedTask()
		if !ok {
			return m
		}
		m.Session.ToggleTask(t.ID)
		m.selectTask(t.ID)
		if t.Completed {
			m.Status = StatusBar{Text: fmt.Sprintf("reopened: %s", t.Text)}
		} else {
			m.Status = StatusBar{Text: fmt.Sprintf("completed: %s", t.Text)}
		}
	case "d":
		t, ok := m.selectedTask()
		if !ok {
			return m
		}
		m.Session.DeleteTask(t.ID)
		m.Status = StatusBar{Text: fmt.Sprintf("deleted: %s", t.Text)}
	case "f":
		m = m.focusSelected()
	}
	return m
}

func (m Model) focusSelected() Model {
	t, ok := m.selectedTask()
	if !ok || !m.Session.Focus(t.ID) {
		m.Status = StatusBar{Text: "select a pending task to focus", IsError: true}
		return m
	}
	m.Status = StatusBar{Text: fmt.Sprintf("focusing on: %s", t.Text)}
	return m
}

func (m Model) handleTaskInputKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc":
		m.Input = TaskInputState{}
		m.taskInput.SetValue("")
		m.Status = StatusBar{Text: "edit cancelled"}
		return m
	case "enter":
		return m.submitTaskInput()
	}
	if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
		m.taskInput.SetValue(m.taskInput.Value() + string(msg.Runes))
		return m
	}
	m.taskInput, _ = m.taskInput.Update(msg)
	return m
}

func (m Model) submitTaskInput() Model {
	value := m.taskInput.Value()
	switch m.Input.Mode {
	case InputAdd:
		t, ok := m.Session.AddTask(value)
		if !ok {
			m.Status = StatusBar{Text: "task text is empty", IsError: true}
			return m
		}
		m.selectTask(t.ID)
		m.Status = StatusBar{Text: fmt.Sprintf("added: %s", t.Text)}
	case InputRename:
		if !m.Session.RenameTask(m.Input.TargetID, value) {
			m.Status = StatusBar{Text: "task text is empty", IsError: true}
			return m
		}
		m.Status = StatusBar{Text: "task renamed"}
	}
	m.Input = TaskInputState{}
	m.taskInput.SetValue("")
	return m
}
