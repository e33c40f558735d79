package update

import (
	"strings"
	"time"

	"github.com/sandeepkv93/focusflow/internal/model"
	"github.com/sandeepkv93/focusflow/internal/views"
)

func (m Model) renderTasksView() string {
	view := m.Session.View()
	toRows := func(in []model.Task) []views.TaskRowData {
		out := make([]views.TaskRowData, 0, len(in))
		for _, t := range in {
			out = append(out, views.TaskRowData{
				ID:        t.ID,
				Text:      t.Text,
				Completed: t.Completed,
				Focused:   view.HasFocus && view.Focused.ID == t.ID,
			})
		}
		return out
	}
	data := views.TasksPanelData{
		Pending:   toRows(view.Pending),
		Completed: toRows(view.Completed),
	}
	if t, ok := m.selectedTask(); ok {
		data.SelectedID = t.ID
	}
	switch m.Input.Mode {
	case InputAdd:
		data.InputLabel = "new task (enter to save, esc to cancel)"
		data.InputView = m.taskInput.View()
	case InputRename:
		data.InputLabel = "rename (enter to save, esc to cancel)"
		data.InputView = m.taskInput.View()
	}
	return views.RenderTasksPanel(data)
}

func (m Model) renderTimerView() string {
	view := m.Session.View()
	snap := view.Timer
	progress := snap.Progress()
	data := views.TimerPanelData{
		Mode:          snap.Mode.Label(),
		IsBreak:       snap.Mode.IsBreak(),
		Clock:         snap.Clock(),
		Running:       snap.Running,
		ProgressView:  m.timerProgress.ViewAs(progress),
		ProgressPct:   int(progress * 100),
		CompletedWork: snap.CompletedWork,
	}
	if view.HasFocus {
		data.FocusedTask = view.Focused.Text
	}
	if m.Confirm.Active {
		data.Confirm = "switch to " + m.Confirm.Mode.Label() + "? the running countdown is discarded [y/n]"
	}
	return views.RenderTimerPanel(data)
}

func (m Model) renderTimerSummary() string {
	view := m.Session.View()
	data := views.TimerSummaryData{
		Mode:    view.Timer.Mode.Label(),
		IsBreak: view.Timer.Mode.IsBreak(),
		Clock:   view.Timer.Clock(),
		Running: view.Timer.Running,
	}
	if view.HasFocus {
		data.FocusedTask = view.Focused.Text
	}
	return views.RenderTimerSummary(data)
}

func (m Model) renderBreakdownView() string {
	data := views.BreakdownPanelData{
		Enabled:      m.Session.BreakdownEnabled(),
		Loading:      m.Breakdown.Loading,
		Editing:      m.Breakdown.Editing,
		SpinnerView:  m.loadSpinner.View(),
		InputView:    m.breakdownInput.View(),
		ErrorText:    m.Breakdown.Err,
		ResultsCount: len(m.Breakdown.Results),
	}
	if !data.Loading {
		data.DisabledWhy = m.breakdownBlocked(m.breakdownInput.Value())
	}
	if data.ResultsCount > 0 {
		data.ResultsView = m.resultsView.View()
	}
	return views.RenderBreakdownPanel(data)
}

func (m Model) renderCommandPalette() string {
	return views.RenderCommandPalette(m.Palette.Active, m.Palette.Input)
}

func (m Model) renderNotificationsView() string {
	if len(m.Notifications) == 0 {
		return ""
	}
	n := m.Notifications[len(m.Notifications)-1]
	return views.RenderNotification(n.Level, n.Body)
}

func (m *Model) notify(title, body, level string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	n := Notification{
		Title: title,
		Body:  body,
		Level: level,
		At:    time.Now().UTC(),
	}
	m.Notifications = append(m.Notifications, n)
	if len(m.Notifications) > 40 {
		m.Notifications = m.Notifications[len(m.Notifications)-40:]
	}
	if m.DesktopEnabled && m.notifier != nil {
		_ = m.notifier.Send(n)
	}
}
