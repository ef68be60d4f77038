package ui

import (
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

type manualCommand struct {
	Usage   string
	Summary string
}

// manualCommands is the shell equivalent of every panel action, for use when
// the control endpoint is down.
var manualCommands = []manualCommand{
	{"page-reloader status", "Show whether the service is running"},
	{"page-reloader start", "Start the service"},
	{"page-reloader stop", "Stop the service"},
	{"page-reloader restart", "Restart the service"},
	{"page-reloader list-urls", "List monitored URLs"},
	{"page-reloader add-url \"<url>\"", "Start monitoring a URL at the default interval"},
	{"page-reloader remove-url \"<url>\"", "Stop monitoring a URL"},
	{"page-reloader set-url-interval \"<url>\" <seconds>", "Give one URL its own interval"},
	{"page-reloader test-url \"<url>\"", "Check a URL once"},
	{"page-reloader test-all", "Check every URL once"},
	{"page-reloader clear-urls", "Remove every monitored URL"},
	{"page-reloader show-timing", "Show the default interval and timeout"},
	{"page-reloader set-interval <seconds>", "Change the default interval (min 5)"},
	{"page-reloader set-timeout <seconds>", "Change the request timeout (min 1)"},
	{"page-reloader set-preset fast|normal|slow", "Apply a timing preset"},
	{"page-reloader logs", "Print recent log lines"},
	{"page-reloader system-info", "Show service and host details"},
	{"page-reloader enable-autostart", "Start the service at boot"},
	{"page-reloader disable-autostart", "Do not start the service at boot"},
	{"page-reloader export-config", "Print the configuration"},
	{"page-reloader import-config <file>", "Replace the configuration from a file"},
	{"page-reloader uninstall", "Remove the service"},
}

func manualMarkdown() string {
	var b strings.Builder
	b.WriteString("## Manual commands\n\n")
	b.WriteString("Run these on the device when the panel cannot reach the control endpoint.\n\n")
	for _, cmd := range manualCommands {
		b.WriteString("* `")
		b.WriteString(cmd.Usage)
		b.WriteString("`: ")
		b.WriteString(cmd.Summary)
		b.WriteString("\n")
	}
	return b.String()
}

func newManualView() fyne.CanvasObject {
	text := widget.NewRichTextFromMarkdown(manualMarkdown())
	text.Wrapping = fyne.TextWrapWord
	return container.NewVScroll(text)
}
