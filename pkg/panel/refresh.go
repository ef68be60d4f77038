package panel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"reloadpanel/pkg/client"
	"reloadpanel/pkg/core"
)

func (p *Panel) RefreshStatus(ctx context.Context) error {
	return p.Refresh(ctx, core.EntityStatus)
}

func (p *Panel) RefreshURLs(ctx context.Context) error {
	return p.Refresh(ctx, core.EntityURLs)
}

func (p *Panel) RefreshTiming(ctx context.Context) error {
	return p.Refresh(ctx, core.EntityTiming)
}

func (p *Panel) RefreshLogs(ctx context.Context) error {
	return p.Refresh(ctx, core.EntityLogs)
}

func (p *Panel) RefreshSystemInfo(ctx context.Context) error {
	return p.Refresh(ctx, core.EntitySystemInfo)
}

// RefreshDashboard loads status and the URL list concurrently.
func (p *Panel) RefreshDashboard(ctx context.Context) error {
	return p.Refresh(ctx, core.EntityStatus, core.EntityURLs)
}

// Refresh reloads entities concurrently. Each success replaces its entity in
// the store; failures leave the old value and are reported in one notification.
func (p *Panel) Refresh(ctx context.Context, entities ...core.Entity) error {
	errs := p.reloadAll(ctx, entities)

	var failed []string
	var first error
	for i, err := range errs {
		if err == nil {
			continue
		}
		if first == nil {
			first = err
		}
		failed = append(failed, entities[i].String())
	}
	if first == nil {
		return nil
	}
	p.notify(core.SeverityDanger, "Failed to load %s: %s", strings.Join(failed, ", "), describe(first))
	return errors.Join(errs...)
}

// reload is the refresh that follows a successful action. Its failures are
// only logged so the action's own notification stays visible.
func (p *Panel) reload(ctx context.Context, entities ...core.Entity) {
	p.reloadAll(ctx, entities)
}

// reloadAll returns one error slot per entity.
func (p *Panel) reloadAll(ctx context.Context, entities []core.Entity) []error {
	errs := make([]error, len(entities))
	var wg sync.WaitGroup
	for i, e := range entities {
		wg.Add(1)
		go func(i int, e core.Entity) {
			defer wg.Done()
			if errs[i] = p.load(ctx, e); errs[i] != nil {
				slog.Warn("refresh failed", "entity", e.String(), "error", errs[i])
			}
		}(i, e)
	}
	wg.Wait()
	return errs
}

func (p *Panel) load(ctx context.Context, e core.Entity) error {
	ticket := p.store.Begin(e)

	switch e {
	case core.EntityStatus:
		res, err := p.call(ctx, client.ActionStatus, nil)
		if err != nil {
			return err
		}
		st, err := parseStatus(res)
		if err != nil {
			return err
		}
		p.store.SetStatus(ticket, st, p.clock.Now())

	case core.EntityURLs:
		res, err := p.call(ctx, client.ActionListURLs, nil)
		if err != nil {
			return err
		}
		urls, err := parseURLs(res, p.defaultInterval(p.store.Snapshot()))
		if err != nil {
			return err
		}
		p.store.SetURLs(ticket, urls)

	case core.EntityTiming:
		res, err := p.call(ctx, client.ActionShowTiming, nil)
		if err != nil {
			return err
		}
		cfg, err := parseTiming(res, p.store.Snapshot().Timing)
		if err != nil {
			return err
		}
		p.store.SetTiming(ticket, cfg)

	case core.EntityLogs:
		res, err := p.call(ctx, client.ActionLogs, nil)
		if err != nil {
			return err
		}
		logs, err := parseLogs(res)
		if err != nil {
			return err
		}
		p.store.SetLogs(ticket, logs)

	case core.EntitySystemInfo:
		res, err := p.call(ctx, client.ActionSystemInfo, nil)
		if err != nil {
			return err
		}
		info, err := parseText(res, "info")
		if err != nil {
			return err
		}
		p.store.SetSystemInfo(ticket, info)

	default:
		return fmt.Errorf("unknown entity %d", e)
	}
	return nil
}
