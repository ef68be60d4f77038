package ui

import (
	"context"
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"reloadpanel/pkg/core"
)

// urlManager is the URLs tab: one row per monitored URL with its actions.
type urlManager struct {
	Container *fyne.Container
	List      *widget.List
	Summary   *widget.Label

	app  *PanelApp
	urls []core.MonitoredURL // Local copy for display
}

func newURLManager(pa *PanelApp) *urlManager {
	um := &urlManager{app: pa, Summary: widget.NewLabel("No URLs loaded")}
	um.setupUI()
	return um
}

func (um *urlManager) setupUI() {
	um.List = widget.NewList(
		func() int {
			return len(um.urls)
		},
		func() fyne.CanvasObject {
			return container.NewGridWithColumns(4,
				widget.NewLabel(""), // URL
				widget.NewLabel(""), // Status
				widget.NewLabel(""), // Interval
				container.NewHBox(
					widget.NewButtonWithIcon("", theme.DocumentCreateIcon(), nil),
					widget.NewButtonWithIcon("", theme.SearchIcon(), nil),
					widget.NewButtonWithIcon("", theme.DeleteIcon(), nil),
				),
			)
		},
		func(i widget.ListItemID, o fyne.CanvasObject) {
			if i < 0 || i >= len(um.urls) {
				return
			}
			u := um.urls[i]
			grid := o.(*fyne.Container)

			grid.Objects[0].(*widget.Label).SetText(u.URL)
			statusLabel := grid.Objects[1].(*widget.Label)
			statusLabel.Importance = statusImportance(u.Status)
			statusLabel.SetText(string(u.Status))
			grid.Objects[2].(*widget.Label).SetText(intervalText(u))

			btns := grid.Objects[3].(*fyne.Container)
			editBtn := btns.Objects[0].(*widget.Button)
			testBtn := btns.Objects[1].(*widget.Button)
			delBtn := btns.Objects[2].(*widget.Button)

			target := u.URL
			editBtn.OnTapped = func() {
				um.showIntervalDialog(u)
			}
			testBtn.OnTapped = func() {
				um.app.runFrom(testBtn, func(ctx context.Context) error {
					return um.app.panel.TestURL(ctx, target)
				})
			}
			delBtn.OnTapped = func() {
				um.app.run(func(ctx context.Context) error {
					return um.app.panel.RemoveURL(ctx, target)
				})
			}
		},
	)

	urlEntry := widget.NewEntry()
	urlEntry.SetPlaceHolder("https://example.com")
	intervalEntry := widget.NewEntry()
	intervalEntry.SetPlaceHolder("Interval (s)")

	var addBtn, testAllBtn, refreshBtn *widget.Button
	addBtn = widget.NewButtonWithIcon("Add URL", theme.ContentAddIcon(), func() {
		rawURL, interval := urlEntry.Text, intervalEntry.Text
		um.app.runFrom(addBtn, func(ctx context.Context) error {
			err := um.app.panel.AddURL(ctx, rawURL, interval)
			if err == nil {
				fyne.Do(func() {
					urlEntry.SetText("")
					intervalEntry.SetText("")
				})
			}
			return err
		})
	})
	testAllBtn = widget.NewButtonWithIcon("Test all", theme.SearchIcon(), func() {
		um.app.runFrom(testAllBtn, um.app.panel.TestAll)
	})
	refreshBtn = widget.NewButtonWithIcon("Refresh", theme.ViewRefreshIcon(), func() {
		um.app.runFrom(refreshBtn, um.app.panel.RefreshURLs)
	})

	header := container.NewGridWithColumns(4,
		widget.NewLabel("URL"),
		widget.NewLabel("Status"),
		widget.NewLabel("Interval"),
		widget.NewLabel("Action"),
	)

	addRow := container.NewBorder(nil, nil, nil, container.NewHBox(intervalEntry, addBtn), urlEntry)

	um.Container = container.NewBorder(
		container.NewVBox(
			widget.NewLabelWithStyle("Monitored URLs", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
			addRow,
			container.NewHBox(testAllBtn, refreshBtn, um.Summary),
			header,
		),
		nil, nil, nil,
		um.List,
	)
}

// Update must run on the UI goroutine.
func (um *urlManager) Update(snap core.Snapshot) {
	um.urls = snap.URLs
	um.Summary.SetText(fmt.Sprintf("%d online of %d", snap.OnlineCount(), len(snap.URLs)))
	um.List.Refresh()
}

func (um *urlManager) showIntervalDialog(u core.MonitoredURL) {
	intervalEntry := widget.NewEntry()
	intervalEntry.SetText(strconv.Itoa(u.Interval))

	items := []*widget.FormItem{
		widget.NewFormItem("URL", widget.NewLabel(u.URL)),
		widget.NewFormItem("Interval (s)", intervalEntry),
	}
	dialog.ShowForm("Reload interval", "Save", "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		value := intervalEntry.Text
		um.app.run(func(ctx context.Context) error {
			return um.app.panel.SetURLInterval(ctx, u.URL, value)
		})
	}, um.app.Window)
}

func intervalText(u core.MonitoredURL) string {
	if u.UsesDefault() {
		return core.FormatInterval(u.Interval) + " (default)"
	}
	return core.FormatInterval(u.Interval)
}

func statusImportance(s core.URLStatus) widget.Importance {
	switch s {
	case core.StatusOnline:
		return widget.SuccessImportance
	case core.StatusOffline:
		return widget.DangerImportance
	default:
		return widget.MediumImportance
	}
}
