package ui

import (
	"context"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"reloadpanel/pkg/core"
)

const maxConsoleChars = 200000

type logsView struct {
	Container *fyne.Container
	Console   *widget.Entry
}

func newLogsView(pa *PanelApp) *logsView {
	console := widget.NewMultiLineEntry()
	console.Disable()
	console.SetMinRowsVisible(20)
	console.TextStyle = fyne.TextStyle{Monospace: true}
	console.SetPlaceHolder("Service log lines will appear here.")
	v := &logsView{Console: console}

	var refreshButton, saveButton *widget.Button
	refreshButton = widget.NewButtonWithIcon("Refresh", theme.ViewRefreshIcon(), func() {
		pa.runFrom(refreshButton, pa.panel.RefreshLogs)
	})
	// Clearing only empties the view; the service keeps its log.
	clearButton := widget.NewButtonWithIcon("Clear", theme.ContentClearIcon(), func() {
		console.SetText("")
	})
	saveButton = widget.NewButtonWithIcon("Save PDF", theme.DocumentSaveIcon(), func() {
		pa.runFrom(saveButton, func(ctx context.Context) error {
			return pa.panel.SaveLogReport(ctx, pa.endpoint)
		})
	})

	v.Container = container.NewBorder(
		container.NewBorder(nil, nil, widget.NewLabel("Service log"), container.NewHBox(refreshButton, clearButton, saveButton), nil),
		nil, nil, nil,
		container.NewPadded(console),
	)
	return v
}

// Update must run on the UI goroutine.
func (v *logsView) Update(snap core.Snapshot) {
	if !snap.LogsLoaded {
		return
	}
	v.Console.SetText(consoleText(snap.Logs))
}

func consoleText(logs core.LogTail) string {
	if len(logs) == 0 {
		return "No log entries."
	}
	text := strings.Join(logs, "\n")
	if len(text) > maxConsoleChars {
		text = "[log output truncated]\n" + text[len(text)-maxConsoleChars:]
	}
	return text
}
