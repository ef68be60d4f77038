package ui

import (
	"context"
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"reloadpanel/pkg/core"
)

const onlineHistory = 60

type dashboardView struct {
	Container *fyne.Container

	StatusLabel  *widget.Label
	OnlineLabel  *widget.Label
	CheckedLabel *widget.Label
	TimingLabel  *widget.Label
	OnlineChart  *Sparkline

	quickURL      *widget.Entry
	quickInterval *widget.Entry
}

func newDashboardView(pa *PanelApp) *dashboardView {
	d := &dashboardView{
		StatusLabel:   widget.NewLabel("Service: checking..."),
		OnlineLabel:   widget.NewLabel("URLs online: -"),
		CheckedLabel:  widget.NewLabel("Last check: -"),
		TimingLabel:   widget.NewLabel("Default interval: -"),
		OnlineChart:   NewSparkline(onlineHistory),
		quickURL:      widget.NewEntry(),
		quickInterval: widget.NewEntry(),
	}
	d.StatusLabel.TextStyle = fyne.TextStyle{Bold: true}
	d.quickURL.SetPlaceHolder("https://example.com")
	d.quickInterval.SetPlaceHolder("seconds, blank for default")

	var addButton *widget.Button
	addButton = widget.NewButtonWithIcon("Add", theme.ContentAddIcon(), func() {
		rawURL, interval := d.quickURL.Text, d.quickInterval.Text
		pa.runFrom(addButton, func(ctx context.Context) error {
			err := pa.panel.AddURL(ctx, rawURL, interval)
			if err == nil {
				fyne.Do(func() {
					d.quickURL.SetText("")
					d.quickInterval.SetText("")
				})
			}
			return err
		})
	})

	var startButton, stopButton, restartButton *widget.Button
	startButton = widget.NewButtonWithIcon("Start", theme.MediaPlayIcon(), func() {
		pa.runFrom(startButton, pa.panel.StartService)
	})
	stopButton = widget.NewButtonWithIcon("Stop", theme.MediaStopIcon(), func() {
		pa.runFrom(stopButton, pa.panel.StopService)
	})
	restartButton = widget.NewButtonWithIcon("Restart", theme.ViewRefreshIcon(), func() {
		pa.runFrom(restartButton, pa.panel.RestartService)
	})

	var refreshButton *widget.Button
	refreshButton = widget.NewButtonWithIcon("Refresh", theme.ViewRefreshIcon(), func() {
		pa.runFrom(refreshButton, pa.panel.RefreshDashboard)
	})

	quickAdd := widget.NewForm(
		widget.NewFormItem("URL", d.quickURL),
		widget.NewFormItem("Interval", d.quickInterval),
	)

	d.Container = container.NewVBox(
		widget.NewCard("Service", "", container.NewVBox(
			d.StatusLabel,
			d.CheckedLabel,
			container.NewHBox(startButton, stopButton, restartButton, refreshButton),
		)),
		widget.NewCard("Monitoring", "", container.NewVBox(
			d.OnlineLabel,
			d.TimingLabel,
			container.NewPadded(d.OnlineChart),
		)),
		widget.NewCard("Quick add", "", container.NewVBox(quickAdd, container.NewHBox(addButton))),
	)
	return d
}

// Update must run on the UI goroutine.
func (d *dashboardView) Update(snap core.Snapshot) {
	status, importance := statusText(snap.Status)
	d.StatusLabel.Importance = importance
	d.StatusLabel.SetText(status)

	if !snap.StatusCheckedAt.IsZero() {
		d.CheckedLabel.SetText("Last check: " + snap.StatusCheckedAt.Format("15:04:05"))
	}
	if snap.URLsLoaded {
		online := snap.OnlineCount()
		d.OnlineLabel.SetText(fmt.Sprintf("URLs online: %d / %d", online, len(snap.URLs)))
	}
	if snap.Timing != nil {
		d.TimingLabel.SetText(fmt.Sprintf("Default interval: %s, timeout: %ds",
			core.FormatInterval(snap.Timing.DefaultIntervalSeconds), snap.Timing.TimeoutSeconds))
	}
}

// RecordOnline appends the current online count to the chart. It is called
// once per committed URL list.
func (d *dashboardView) RecordOnline(snap core.Snapshot) {
	d.OnlineChart.Add(float64(snap.OnlineCount()))
}

func statusText(st *core.ServiceStatus) (string, widget.Importance) {
	switch {
	case st == nil:
		return "Service: unknown", widget.MediumImportance
	case st.Running:
		return "Service: running", widget.SuccessImportance
	default:
		return "Service: stopped", widget.DangerImportance
	}
}
