package update

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/focusflow/internal/app"
	"github.com/sandeepkv93/focusflow/internal/model"
	"github.com/sandeepkv93/focusflow/internal/views"
)

func (m Model) handleBreakdownKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "i", "enter":
		if m.Session.BreakdownEnabled() {
			m.Breakdown.Editing = true
		}
	case "ctrl+s":
		return m.submitBreakdown(m.breakdownInput.Value())
	case "up", "k":
		m.resultsView.LineUp(1)
	case "down", "j":
		m.resultsView.LineDown(1)
	}
	return m, nil
}

func (m Model) handleBreakdownEditKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.Breakdown.Editing = false
		return m, nil
	case "ctrl+s":
		return m.submitBreakdown(m.breakdownInput.Value())
	}
	if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
		m.breakdownInput.InsertString(string(msg.Runes))
		return m, nil
	}
	var cmd tea.Cmd
	m.breakdownInput, cmd = m.breakdownInput.Update(msg)
	return m, cmd
}

// breakdownBlocked names why a request cannot be sent now, or "".
func (m Model) breakdownBlocked(description string) string {
	switch {
	case !m.Session.BreakdownEnabled():
		return "task breakdown needs an API key"
	case m.Breakdown.Loading:
		return "a breakdown is already running"
	case strings.TrimSpace(description) == "":
		return "describe the task to break down"
	}
	return ""
}

func (m Model) submitBreakdown(description string) (Model, tea.Cmd) {
	if why := m.breakdownBlocked(description); why != "" {
		m.Status = StatusBar{Text: why, IsError: true}
		return m, nil
	}
	m.Breakdown.Loading = true
	m.Breakdown.Err = ""
	m.Status = StatusBar{Text: "breaking down task..."}
	return m, tea.Batch(m.loadSpinner.Tick, breakdownCmd(m.Session, description, m.RequestTimeout))
}

func breakdownCmd(session *app.Session, description string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		items, err := session.RequestBreakdown(ctx, description)
		return BreakdownResultMsg{Description: description, Items: items, Err: err}
	}
}

func (m Model) onBreakdownResult(msg BreakdownResultMsg) Model {
	m.Breakdown.Loading = false
	if msg.Err != nil {
		m.LastError = msg.Err
		m.Breakdown.Err = userMessage(msg.Err)
		m.Status = StatusBar{Text: m.Breakdown.Err, IsError: true}
		return m
	}
	added := m.Session.AddTasks(msg.Items)
	texts := make([]string, 0, len(added))
	for _, t := range added {
		texts = append(texts, t.Text)
	}
	m.Breakdown.Results = texts
	m.Breakdown.Err = ""
	m.breakdownInput.Reset()
	m.resultsView.SetContent(renderResultsMarkdown(texts))
	m.resultsView.GotoTop()
	m.Status = StatusBar{Text: fmt.Sprintf("added %d subtask(s)", len(added))}
	return m
}

// userMessage keeps raw causes out of the UI; they are already logged.
func userMessage(err error) string {
	var typed *model.Error
	if errors.As(err, &typed) && typed.Message != "" {
		return typed.Message
	}
	return model.BreakdownFailedMessage
}

func renderResultsMarkdown(items []string) string {
	if len(items) == 0 {
		return ""
	}
	return views.RenderMarkdown(views.BulletList(items))
}
