package panel

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"reloadpanel/pkg/client"
	"reloadpanel/pkg/core"
	"reloadpanel/pkg/report"
)

const (
	ConfigFileName    = "page-reloader-config.txt"
	LogReportFileName = "page-reloader-logs.pdf"
)

var errNoFileDialog = errors.New("no file dialog available")

// ExportConfig fetches the serialised configuration and offers it as a file.
func (p *Panel) ExportConfig(ctx context.Context) error {
	res, err := p.call(ctx, client.ActionExportConfig, nil)
	if err != nil {
		return p.fail(err, "Failed to export config")
	}
	text, err := parseText(res, "config")
	if err != nil {
		return p.fail(err, "Failed to export config")
	}
	return p.offer(ctx, ConfigFileName, []byte(text), "Configuration exported")
}

// ImportConfig submits the chosen file verbatim, then reloads everything it
// can have changed.
func (p *Panel) ImportConfig(ctx context.Context) error {
	p.mu.Lock()
	opener := p.opener
	p.mu.Unlock()
	if opener == nil {
		return p.fail(errNoFileDialog, "Failed to import config")
	}

	data, err := opener.OpenFile(ctx)
	if errors.Is(err, ErrCancelled) {
		return err
	}
	if err != nil {
		return p.fail(err, "Failed to read config file")
	}
	if strings.TrimSpace(string(data)) == "" {
		return p.reject(&core.ValidationError{Field: "config", Message: "The selected file is empty"})
	}

	if _, err := p.call(ctx, client.ActionImportConfig, url.Values{"config": {string(data)}}); err != nil {
		return p.fail(err, "Failed to import config")
	}
	p.notify(core.SeveritySuccess, "Configuration imported successfully")
	p.reload(ctx, core.EntityURLs, core.EntityTiming, core.EntityStatus)
	return nil
}

// SaveLogReport renders the loaded log tail and URL table as a PDF.
func (p *Panel) SaveLogReport(ctx context.Context, endpoint string) error {
	snap := p.store.Snapshot()
	if !snap.LogsLoaded {
		return p.reject(&core.ValidationError{Field: "logs", Message: "Load the logs before saving a report"})
	}
	data, err := report.RenderLogs(report.LogReport{
		Endpoint:    endpoint,
		GeneratedAt: p.clock.Now(),
		Status:      snap.Status,
		URLs:        snap.URLs,
		Logs:        snap.Logs,
	})
	if err != nil {
		return p.fail(err, "Failed to build log report")
	}
	return p.offer(ctx, LogReportFileName, data, "Log report saved")
}

func (p *Panel) offer(ctx context.Context, name string, data []byte, done string) error {
	p.mu.Lock()
	saver := p.saver
	p.mu.Unlock()
	if saver == nil {
		return p.fail(errNoFileDialog, "Failed to save %s", name)
	}
	err := saver.SaveFile(ctx, name, data)
	if errors.Is(err, ErrCancelled) {
		return err
	}
	if err != nil {
		return p.fail(err, "Failed to save %s", name)
	}
	p.notify(core.SeveritySuccess, "%s", done)
	return nil
}
