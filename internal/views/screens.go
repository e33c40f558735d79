package views

import (
	"fmt"
	"strings"
)

type TaskRowData struct {
	ID        string
	Text      string
	Completed bool
	Focused   bool
}

type TasksPanelData struct {
	Pending    []TaskRowData
	Completed  []TaskRowData
	SelectedID string
	InputLabel string
	InputView  string
}

type TimerPanelData struct {
	Mode          string
	IsBreak       bool
	Clock         string
	Running       bool
	ProgressView  string
	ProgressPct   int
	CompletedWork int
	FocusedTask   string
	Confirm       string
}

type TimerSummaryData struct {
	Mode        string
	IsBreak     bool
	Clock       string
	Running     bool
	FocusedTask string
}

type BreakdownPanelData struct {
	Enabled      bool
	Loading      bool
	Editing      bool
	SpinnerView  string
	InputView    string
	DisabledWhy  string
	ErrorText    string
	ResultsView  string
	ResultsCount int
}

type HelpPanelData struct {
	CurrentView string
	Bindings    []string
	HelpView    string
}

func RenderTasksPanel(data TasksPanelData) string {
	var b strings.Builder
	b.WriteString("tasks:\n")
	b.WriteString("actions: [a]add [e]rename [space/x]toggle [d]delete [f]focus [j/k]move\n")
	if data.InputLabel != "" {
		b.WriteString(promptStyle.Render(data.InputLabel) + "\n")
		b.WriteString(data.InputView + "\n")
	}
	renderTaskSection(&b, fmt.Sprintf("Pending (%d)", len(data.Pending)), data.Pending, data.SelectedID)
	renderTaskSection(&b, fmt.Sprintf("Completed (%d)", len(data.Completed)), data.Completed, data.SelectedID)
	return strings.TrimSpace(b.String())
}

func renderTaskSection(b *strings.Builder, title string, rows []TaskRowData, selectedID string) {
	b.WriteString(fmt.Sprintf("\n%s:\n", title))
	if len(rows) == 0 {
		b.WriteString(mutedStyle.Render("  (none)") + "\n")
		return
	}
	for _, row := range rows {
		cursor := " "
		if row.ID == selectedID {
			cursor = ">"
		}
		box := "[ ]"
		text := row.Text
		if row.Completed {
			box = "[x]"
			text = doneStyle.Render(text)
		}
		line := fmt.Sprintf("%s %s %s", cursor, box, text)
		if row.Focused {
			line += " " + focusStyle.Render("(focus)")
		}
		b.WriteString(line + "\n")
	}
}

func RenderTimerPanel(data TimerPanelData) string {
	var b strings.Builder
	b.WriteString("timer:\n")
	b.WriteString(fmt.Sprintf("mode: %s\n", modeLabel(data.Mode, data.IsBreak)))
	b.WriteString(clockStyle.Render(data.Clock) + "\n")
	b.WriteString(fmt.Sprintf("state: %s\n", runState(data.Running)))
	b.WriteString(fmt.Sprintf("progress: %s %d%%\n", data.ProgressView, data.ProgressPct))
	b.WriteString(fmt.Sprintf("work sessions completed: %d\n", data.CompletedWork))
	if data.FocusedTask != "" {
		b.WriteString(fmt.Sprintf("focus: %s\n", focusStyle.Render(data.FocusedTask)))
	} else {
		b.WriteString("focus: (none, press f on a task)\n")
	}
	b.WriteString("actions: [space]start/pause [r]reset [w]work [s]short break [l]long break\n")
	if data.Confirm != "" {
		b.WriteString(promptStyle.Render(data.Confirm))
	}
	return strings.TrimSpace(b.String())
}

func RenderTimerSummary(data TimerSummaryData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s  %s  %s\n", modeLabel(data.Mode, data.IsBreak), data.Clock, runState(data.Running)))
	if data.FocusedTask != "" {
		b.WriteString("focus: " + focusStyle.Render(data.FocusedTask) + "\n")
	}
	return strings.TrimSpace(b.String())
}

func RenderBreakdownPanel(data BreakdownPanelData) string {
	var b strings.Builder
	b.WriteString("breakdown:\n")
	if !data.Enabled {
		b.WriteString(disabledStyle.Render("unavailable: no API key configured") + "\n")
		return strings.TrimSpace(b.String())
	}
	b.WriteString("describe a task and press [ctrl+s]; [esc] leaves the editor, [i] returns\n")
	b.WriteString(data.InputView + "\n")
	switch {
	case data.Loading:
		b.WriteString(data.SpinnerView + " breaking down...\n")
	case data.DisabledWhy != "":
		b.WriteString(disabledStyle.Render(data.DisabledWhy) + "\n")
	}
	if data.ErrorText != "" {
		b.WriteString(errorStyle.Render("error: "+data.ErrorText) + "\n")
	}
	if data.ResultsCount > 0 {
		b.WriteString(fmt.Sprintf("\nadded %d subtask(s):\n", data.ResultsCount))
		b.WriteString(data.ResultsView + "\n")
	}
	return strings.TrimSpace(b.String())
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("command: /%s", input)
}

func RenderNotification(level string, body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	return fmt.Sprintf("notification: [%s] %s", strings.ToUpper(level), body)
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help:\n%s view:\n%s\n%s",
		strings.ToLower(data.CurrentView),
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
	)
}

// BulletList renders items as a markdown bullet list.
func BulletList(items []string) string {
	var b strings.Builder
	for _, item := range items {
		b.WriteString("- " + item + "\n")
	}
	return b.String()
}

func modeLabel(mode string, isBreak bool) string {
	if isBreak {
		return breakStyle.Render(mode)
	}
	return workStyle.Render(mode)
}

func runState(running bool) string {
	if running {
		return "running"
	}
	return "paused"
}
