package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"reloadpanel/pkg/core"
)

// noticeBanner is the strip above the tabs that shows the current notification.
type noticeBanner struct {
	Container *fyne.Container

	background *canvas.Rectangle
	message    *widget.Label
}

func newNoticeBanner(onDismiss func()) *noticeBanner {
	b := &noticeBanner{
		background: canvas.NewRectangle(theme.Color(theme.ColorNamePrimary)),
		message:    widget.NewLabel(""),
	}
	b.message.Wrapping = fyne.TextWrapWord
	b.message.TextStyle = fyne.TextStyle{Bold: true}
	b.background.CornerRadius = theme.InputRadiusSize()

	dismiss := widget.NewButtonWithIcon("", theme.CancelIcon(), onDismiss)
	dismiss.Importance = widget.LowImportance

	b.Container = container.NewStack(
		b.background,
		container.NewBorder(nil, nil, nil, dismiss, b.message),
	)
	b.Container.Hide()
	return b
}

func (b *noticeBanner) Show(n core.Notification) {
	b.background.FillColor = theme.Color(severityColorName(n.Severity))
	b.background.Refresh()
	b.message.SetText(n.Message)
	b.Container.Show()
}

func (b *noticeBanner) Hide() {
	b.Container.Hide()
}

func severityColorName(s core.Severity) fyne.ThemeColorName {
	switch s {
	case core.SeveritySuccess:
		return theme.ColorNameSuccess
	case core.SeverityWarning:
		return theme.ColorNameWarning
	case core.SeverityDanger:
		return theme.ColorNameError
	default:
		return theme.ColorNamePrimary
	}
}
