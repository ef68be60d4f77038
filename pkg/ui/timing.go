package ui

import (
	"context"
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"reloadpanel/pkg/core"
)

var timingPresets = []string{"fast", "normal", "slow"}

type timingView struct {
	Container *fyne.Container

	current       *widget.Label
	info          *widget.Label
	intervalEntry *widget.Entry
	timeoutEntry  *widget.Entry
}

func newTimingView(pa *PanelApp) *timingView {
	v := &timingView{
		current:       widget.NewLabel("Not loaded"),
		info:          widget.NewLabel(""),
		intervalEntry: widget.NewEntry(),
		timeoutEntry:  widget.NewEntry(),
	}
	v.info.Wrapping = fyne.TextWrapWord
	v.intervalEntry.SetPlaceHolder("seconds, at least 5")
	v.timeoutEntry.SetPlaceHolder("seconds, at least 1")

	var setInterval, setTimeout, applyPreset *widget.Button
	setInterval = widget.NewButton("Set", func() {
		value := v.intervalEntry.Text
		pa.runFrom(setInterval, func(ctx context.Context) error {
			return pa.panel.SetDefaultInterval(ctx, value)
		})
	})
	setTimeout = widget.NewButton("Set", func() {
		value := v.timeoutEntry.Text
		pa.runFrom(setTimeout, func(ctx context.Context) error {
			return pa.panel.SetTimeout(ctx, value)
		})
	})

	presets := widget.NewSelect(timingPresets, nil)
	presets.PlaceHolder = "Choose a preset"
	applyPreset = widget.NewButtonWithIcon("Apply", theme.ConfirmIcon(), func() {
		preset := presets.Selected
		pa.runFrom(applyPreset, func(ctx context.Context) error {
			return pa.panel.SetPreset(ctx, preset)
		})
	})

	form := widget.NewForm(
		widget.NewFormItem("Default interval", container.NewBorder(nil, nil, nil, setInterval, v.intervalEntry)),
		widget.NewFormItem("Request timeout", container.NewBorder(nil, nil, nil, setTimeout, v.timeoutEntry)),
		widget.NewFormItem("Preset", container.NewBorder(nil, nil, nil, applyPreset, presets)),
	)

	v.Container = container.NewVBox(
		widget.NewCard("Current timing", "", container.NewVBox(v.current, v.info)),
		widget.NewCard("Change timing", "fast 10s/5s, normal 30s/10s, slow 5m/30s", form),
	)
	return v
}

// Update must run on the UI goroutine.
func (v *timingView) Update(snap core.Snapshot) {
	if snap.Timing == nil {
		return
	}
	t := snap.Timing
	v.current.SetText(fmt.Sprintf("Default interval: %s    Timeout: %ds",
		core.FormatInterval(t.DefaultIntervalSeconds), t.TimeoutSeconds))
	v.info.SetText(t.InfoText)
	if v.intervalEntry.Text == "" {
		v.intervalEntry.SetText(strconv.Itoa(t.DefaultIntervalSeconds))
	}
	if v.timeoutEntry.Text == "" {
		v.timeoutEntry.SetText(strconv.Itoa(t.TimeoutSeconds))
	}
}
