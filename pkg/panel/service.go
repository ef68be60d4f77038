package panel

import (
	"context"

	"reloadpanel/pkg/client"
	"reloadpanel/pkg/core"
)

func (p *Panel) StartService(ctx context.Context) error {
	return p.serviceAction(ctx, client.ActionStart, "Service started")
}

func (p *Panel) StopService(ctx context.Context) error {
	return p.serviceAction(ctx, client.ActionStop, "Service stopped")
}

func (p *Panel) RestartService(ctx context.Context) error {
	return p.serviceAction(ctx, client.ActionRestart, "Service restarted")
}

// serviceAction failures name the shell command that does the same thing,
// since a broken endpoint is the usual reason they fail.
func (p *Panel) serviceAction(ctx context.Context, action, done string) error {
	if _, err := p.call(ctx, action, nil); err != nil {
		return p.fail(err, "Failed to %s service. Use manual command: page-reloader %s", action, action)
	}
	p.notify(core.SeveritySuccess, "%s", done)
	p.reload(ctx, core.EntityStatus, core.EntityURLs)
	return nil
}

func (p *Panel) EnableAutostart(ctx context.Context) error {
	if _, err := p.call(ctx, client.ActionEnableAutostart, nil); err != nil {
		return p.fail(err, "Failed to enable auto-start")
	}
	p.notify(core.SeveritySuccess, "Auto-start enabled")
	return nil
}

func (p *Panel) DisableAutostart(ctx context.Context) error {
	if _, err := p.call(ctx, client.ActionDisableAutostart, nil); err != nil {
		return p.fail(err, "Failed to disable auto-start")
	}
	p.notify(core.SeveritySuccess, "Auto-start disabled")
	return nil
}

// Uninstall removes the service after two confirmations. On success the
// auto-refresh stops for good and OnUninstalled runs.
func (p *Panel) Uninstall(ctx context.Context) error {
	if !p.confirm(ctx, "Uninstall", "Are you sure you want to uninstall the Page Reloader service? This will remove all configuration!") {
		return ErrCancelled
	}
	if !p.confirm(ctx, "Uninstall", "This action cannot be undone! Are you absolutely sure?") {
		return ErrCancelled
	}
	if _, err := p.call(ctx, client.ActionUninstall, nil); err != nil {
		return p.fail(err, "Failed to uninstall. Use manual command: page-reloader uninstall")
	}
	p.notify(core.SeveritySuccess, "Service uninstalled successfully")
	p.sched.Close()

	p.mu.Lock()
	hook := p.onUninstalled
	p.mu.Unlock()
	if hook != nil {
		hook()
	}
	return nil
}
