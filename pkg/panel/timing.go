package panel

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"reloadpanel/pkg/client"
	"reloadpanel/pkg/core"
)

// Timing is never changed locally; every setter re-reads it from the service.

func (p *Panel) SetDefaultInterval(ctx context.Context, intervalText string) error {
	interval, err := core.ParseInterval(intervalText)
	if err != nil {
		return p.reject(err)
	}
	if _, err := p.call(ctx, client.ActionSetInterval, url.Values{"interval": {strconv.Itoa(interval)}}); err != nil {
		return p.fail(err, "Failed to set default interval")
	}
	p.notify(core.SeveritySuccess, "Default interval set to %s", core.FormatInterval(interval))
	p.reload(ctx, core.EntityTiming, core.EntityURLs)
	return nil
}

func (p *Panel) SetTimeout(ctx context.Context, timeoutText string) error {
	timeout, err := core.ParseTimeout(timeoutText)
	if err != nil {
		return p.reject(err)
	}
	if _, err := p.call(ctx, client.ActionSetTimeout, url.Values{"timeout": {strconv.Itoa(timeout)}}); err != nil {
		return p.fail(err, "Failed to set timeout")
	}
	p.notify(core.SeveritySuccess, "Timeout set to %ds", timeout)
	p.reload(ctx, core.EntityTiming)
	return nil
}

func (p *Panel) SetPreset(ctx context.Context, preset string) error {
	preset = strings.TrimSpace(preset)
	if preset == "" {
		return p.reject(&core.ValidationError{Field: "preset", Message: "Please select a preset"})
	}
	if _, err := p.call(ctx, client.ActionSetPreset, url.Values{"preset": {preset}}); err != nil {
		return p.fail(err, "Failed to apply preset %s", preset)
	}
	p.notify(core.SeveritySuccess, "Preset %s applied", preset)
	p.reload(ctx, core.EntityTiming, core.EntityURLs)
	return nil
}
