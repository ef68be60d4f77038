package panel

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"reloadpanel/pkg/client"
	"reloadpanel/pkg/core"
)

// AddURL registers rawURL with the service. intervalText may be empty, in
// which case the service default applies. If the URL is added but the
// interval cannot be set, the URL stays and the error says so.
func (p *Panel) AddURL(ctx context.Context, rawURL, intervalText string) error {
	target, err := core.ValidateMonitoredURL(rawURL)
	if err != nil {
		return p.reject(err)
	}
	interval := 0
	if strings.TrimSpace(intervalText) != "" {
		if interval, err = core.ParseInterval(intervalText); err != nil {
			return p.reject(err)
		}
	}
	snap := p.store.Snapshot()
	if _, exists := snap.FindURL(target); exists {
		return p.reject(&core.ValidationError{Field: "url", Message: "URL is already monitored: " + target})
	}

	if _, err := p.call(ctx, client.ActionAddURL, url.Values{"url": {target}}); err != nil {
		return p.fail(err, "Failed to add URL")
	}

	def := p.defaultInterval(snap)
	entry := core.MonitoredURL{URL: target, Status: core.StatusUnknown, Interval: def, DefaultInterval: def}
	p.store.UpsertURL(entry)

	if interval > 0 {
		params := url.Values{"url": {target}, "interval": {strconv.Itoa(interval)}}
		if _, err := p.call(ctx, client.ActionSetURLInterval, params); err != nil {
			p.reload(ctx, core.EntityStatus, core.EntityURLs)
			p.notify(core.SeverityWarning, "URL added, but setting its interval failed: %s", describe(err))
			return &PartialError{Step: client.ActionSetURLInterval, Err: err}
		}
		entry.Interval = interval
		p.store.UpsertURL(entry)
		p.notify(core.SeveritySuccess, "URL added: %s (every %s)", target, core.FormatInterval(interval))
	} else {
		p.notify(core.SeveritySuccess, "URL added: %s", target)
	}
	p.reload(ctx, core.EntityStatus, core.EntityURLs)
	return nil
}

// PartialError reports a multi-step action whose first step took effect.
type PartialError struct {
	Step string
	Err  error
}

func (e *PartialError) Error() string {
	return fmt.Sprintf("partially applied, %s failed: %v", e.Step, e.Err)
}

func (e *PartialError) Unwrap() error {
	return e.Err
}

func (p *Panel) RemoveURL(ctx context.Context, target string) error {
	if !p.confirm(ctx, "Remove URL", fmt.Sprintf("Are you sure you want to remove %s?", target)) {
		return ErrCancelled
	}
	if _, err := p.call(ctx, client.ActionRemoveURL, url.Values{"url": {target}}); err != nil {
		return p.fail(err, "Failed to remove URL. Use manual command: page-reloader remove-url %q", target)
	}
	p.store.DeleteURL(target)
	p.notify(core.SeveritySuccess, "URL removed: %s", target)
	p.reload(ctx, core.EntityStatus, core.EntityURLs)
	return nil
}

func (p *Panel) SetURLInterval(ctx context.Context, target, intervalText string) error {
	interval, err := core.ParseInterval(intervalText)
	if err != nil {
		return p.reject(err)
	}
	params := url.Values{"url": {target}, "interval": {strconv.Itoa(interval)}}
	if _, err := p.call(ctx, client.ActionSetURLInterval, params); err != nil {
		return p.fail(err, "Failed to update interval. Use manual command: page-reloader set-url-interval %q %d", target, interval)
	}
	if entry, ok := p.store.Snapshot().FindURL(target); ok {
		entry.Interval = interval
		p.store.UpsertURL(entry)
	}
	p.notify(core.SeveritySuccess, "Interval for %s set to %s", target, core.FormatInterval(interval))
	p.reload(ctx, core.EntityURLs)
	return nil
}

func (p *Panel) TestURL(ctx context.Context, target string) error {
	target = strings.TrimSpace(target)
	if target == "" {
		return p.reject(&core.ValidationError{Field: "url", Message: "Please enter a URL"})
	}
	res, err := p.call(ctx, client.ActionTestURL, url.Values{"url": {target}})
	if err != nil {
		return p.fail(err, "Failed to test URL %s", target)
	}
	if parseAccessible(res) {
		p.notify(core.SeveritySuccess, "%s is accessible", target)
	} else {
		p.notify(core.SeverityWarning, "%s is not accessible", target)
	}
	return nil
}

// TestAll asks the service to check every URL in one call.
func (p *Panel) TestAll(ctx context.Context) error {
	if _, err := p.call(ctx, client.ActionTestAll, nil); err != nil {
		return p.fail(err, "Test failed")
	}
	p.notify(core.SeveritySuccess, "All URLs tested. Check logs for details.")
	p.reload(ctx, core.EntityURLs, core.EntityLogs)
	return nil
}

// ClearURLs needs two confirmations before anything is sent.
func (p *Panel) ClearURLs(ctx context.Context) error {
	if !p.confirm(ctx, "Clear URLs", "Are you sure you want to remove ALL URLs? This cannot be undone!") {
		return ErrCancelled
	}
	if !p.confirm(ctx, "Clear URLs", "All monitored URLs will be deleted. Continue?") {
		return ErrCancelled
	}
	if _, err := p.call(ctx, client.ActionClearURLs, nil); err != nil {
		return p.fail(err, "Failed to clear URLs")
	}
	p.notify(core.SeveritySuccess, "All URLs cleared")
	p.reload(ctx, core.EntityStatus, core.EntityURLs)
	return nil
}
