package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"reloadpanel/pkg/core"
)

var settingsSections = []string{"Service", "Configuration", "System", "Diagnostics", "Interface"}

type settingsView struct {
	Container *fyne.Container

	systemInfo  *widget.Label
	diagnostics *widget.Entry
}

func newSettingsView(pa *PanelApp) *settingsView {
	v := &settingsView{
		systemInfo:  widget.NewLabel("Not loaded"),
		diagnostics: widget.NewMultiLineEntry(),
	}
	v.systemInfo.Wrapping = fyne.TextWrapWord
	v.systemInfo.TextStyle = fyne.TextStyle{Monospace: true}
	v.diagnostics.Disable()
	v.diagnostics.SetMinRowsVisible(12)
	v.diagnostics.TextStyle = fyne.TextStyle{Monospace: true}

	content := container.NewStack()
	pages := map[string]fyne.CanvasObject{
		"Service":       v.buildServicePage(pa),
		"Configuration": v.buildConfigPage(pa),
		"System":        v.buildSystemPage(pa),
		"Diagnostics":   v.buildDiagnosticsPage(pa),
		"Interface":     v.buildInterfacePage(pa),
	}

	setSection := func(name string) {
		page, ok := pages[name]
		if !ok {
			return
		}
		content.Objects = []fyne.CanvasObject{page}
		content.Refresh()
	}

	sectionList := widget.NewList(
		func() int { return len(settingsSections) },
		func() fyne.CanvasObject { return widget.NewLabel("Section") },
		func(i widget.ListItemID, obj fyne.CanvasObject) {
			obj.(*widget.Label).SetText(settingsSections[i])
		},
	)
	sectionList.OnSelected = func(id widget.ListItemID) {
		setSection(settingsSections[id])
	}

	layout := container.NewHSplit(
		container.NewPadded(widget.NewCard("Settings", "", sectionList)),
		container.NewPadded(content),
	)
	layout.SetOffset(0.2)
	v.Container = container.NewStack(layout)

	sectionList.Select(0)
	return v
}

// Update must run on the UI goroutine.
func (v *settingsView) Update(snap core.Snapshot) {
	if snap.SystemInfoLoaded {
		v.systemInfo.SetText(snap.SystemInfo)
	}
}

func (v *settingsView) buildServicePage(pa *PanelApp) fyne.CanvasObject {
	var enable, disable, uninstall *widget.Button
	enable = widget.NewButton("Enable auto-start", func() {
		pa.runFrom(enable, pa.panel.EnableAutostart)
	})
	disable = widget.NewButton("Disable auto-start", func() {
		pa.runFrom(disable, pa.panel.DisableAutostart)
	})
	uninstall = widget.NewButtonWithIcon("Uninstall page-reloader", theme.DeleteIcon(), func() {
		pa.runFrom(uninstall, pa.panel.Uninstall)
	})
	uninstall.Importance = widget.DangerImportance

	return container.NewVBox(
		widget.NewCard("Auto-start", "Start the service when the device boots", container.NewHBox(enable, disable)),
		widget.NewCard("Danger zone", "Removes the service and its configuration", container.NewHBox(uninstall)),
	)
}

func (v *settingsView) buildConfigPage(pa *PanelApp) fyne.CanvasObject {
	var exportBtn, importBtn, clearBtn *widget.Button
	exportBtn = widget.NewButtonWithIcon("Export", theme.DocumentSaveIcon(), func() {
		pa.runFrom(exportBtn, pa.panel.ExportConfig)
	})
	importBtn = widget.NewButtonWithIcon("Import", theme.FolderOpenIcon(), func() {
		pa.runFrom(importBtn, pa.panel.ImportConfig)
	})
	clearBtn = widget.NewButtonWithIcon("Clear all URLs", theme.ContentClearIcon(), func() {
		pa.runFrom(clearBtn, pa.panel.ClearURLs)
	})
	clearBtn.Importance = widget.DangerImportance

	return container.NewVBox(
		widget.NewCard("Configuration file", "Back up or restore URLs and timing", container.NewHBox(exportBtn, importBtn)),
		widget.NewCard("URLs", "", container.NewHBox(clearBtn)),
	)
}

func (v *settingsView) buildSystemPage(pa *PanelApp) fyne.CanvasObject {
	var refresh *widget.Button
	refresh = widget.NewButtonWithIcon("Refresh", theme.ViewRefreshIcon(), func() {
		pa.runFrom(refresh, pa.panel.RefreshSystemInfo)
	})
	return widget.NewCard("System information", "", container.NewBorder(
		nil, container.NewHBox(refresh), nil, nil,
		container.NewVScroll(v.systemInfo),
	))
}

func (v *settingsView) buildDiagnosticsPage(pa *PanelApp) fyne.CanvasObject {
	endpoint := widget.NewLabel("Endpoint: " + pa.endpoint)
	update := func() {
		text := pa.panel.DiagnosticsText()
		if text == "" {
			text = "No requests sent yet."
		}
		v.diagnostics.SetText(text)
	}
	refresh := widget.NewButtonWithIcon("Refresh", theme.ViewRefreshIcon(), update)
	update()

	return widget.NewCard("Diagnostics", "Requests sent to the control endpoint", container.NewBorder(
		endpoint, container.NewHBox(refresh), nil, nil,
		v.diagnostics,
	))
}

func (v *settingsView) buildInterfacePage(pa *PanelApp) fyne.CanvasObject {
	prefs := pa.FyneApp.Preferences()
	names := make([]string, 0, len(core.Tabs()))
	byTitle := make(map[string]core.Tab)
	for _, tab := range core.Tabs() {
		names = append(names, tab.Title())
		byTitle[tab.Title()] = tab
	}

	startTab := widget.NewSelect(names, func(title string) {
		if tab, ok := byTitle[title]; ok {
			prefs.SetString(prefDefaultTab, string(tab))
		}
	})
	if saved, err := core.ParseTab(prefs.StringWithFallback(prefDefaultTab, "")); err == nil {
		startTab.SetSelected(saved.Title())
	}

	form := widget.NewForm(widget.NewFormItem("Open on start", startTab))
	return widget.NewCard("Interface", "Switching tabs updates this too", form)
}
