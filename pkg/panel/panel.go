package panel

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"reloadpanel/pkg/client"
	"reloadpanel/pkg/config"
	"reloadpanel/pkg/core"
)

const fallbackIntervalSeconds = 30

// ErrCancelled is returned when the user declines a confirmation or closes a
// file dialog. No request is sent in that case.
var ErrCancelled = errors.New("cancelled by user")

// Caller sends one action to the control endpoint.
type Caller interface {
	Call(ctx context.Context, action string, params url.Values, method string) (client.Result, error)
}

// Confirmer asks the user a yes/no question and blocks until answered.
type Confirmer interface {
	Confirm(ctx context.Context, title, message string) bool
}

// FileSaver offers data to the user as a file named suggestedName.
// It returns ErrCancelled if the user backs out.
type FileSaver interface {
	SaveFile(ctx context.Context, suggestedName string, data []byte) error
}

// FileOpener lets the user pick a local file and returns its full content.
// It returns ErrCancelled if nothing was chosen.
type FileOpener interface {
	OpenFile(ctx context.Context) ([]byte, error)
}

type Options struct {
	Clock           core.Clock
	RefreshPeriod   time.Duration
	NotificationTTL time.Duration
	InitialTab      core.Tab

	Confirmer Confirmer
	Saver     FileSaver
	Opener    FileOpener

	// OnUninstalled runs after the service confirmed an uninstall.
	OnUninstalled func()
}

// Panel ties the transport, state, tabs, scheduler and notifications together.
// It is created once at startup and closed when the window goes away.
type Panel struct {
	caller  Caller
	clock   core.Clock
	store   *core.Store
	notices *core.NotificationQueue
	tabs    *core.TabController
	sched   *core.Scheduler

	confirmer Confirmer
	saver     FileSaver
	opener    FileOpener

	mu            sync.Mutex
	onUninstalled func()

	ctx    context.Context
	cancel context.CancelFunc
}

func New(caller Caller, opts Options) *Panel {
	if opts.Clock == nil {
		opts.Clock = core.SystemClock()
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Panel{
		caller:        caller,
		clock:         opts.Clock,
		store:         core.NewStore(),
		notices:       core.NewNotificationQueue(opts.Clock, opts.NotificationTTL),
		tabs:          core.NewTabController(opts.InitialTab),
		confirmer:     opts.Confirmer,
		saver:         opts.Saver,
		opener:        opts.Opener,
		onUninstalled: opts.OnUninstalled,
		ctx:           ctx,
		cancel:        cancel,
	}
	p.sched = core.NewScheduler(opts.Clock, opts.RefreshPeriod, p.tick)
	return p
}

// NewFromConfig builds the HTTP control client from cfg and wraps it in a Panel.
func NewFromConfig(cfg config.PanelConfig, opts Options) (*Panel, *client.ControlClient) {
	c := client.NewControlClientFromConfig(cfg)
	if opts.RefreshPeriod == 0 {
		opts.RefreshPeriod = time.Duration(cfg.RefreshIntervalSec) * time.Second
	}
	if opts.NotificationTTL == 0 {
		opts.NotificationTTL = time.Duration(cfg.NotificationSec) * time.Second
	}
	if opts.InitialTab == "" {
		opts.InitialTab = core.Tab(cfg.DefaultTab)
	}
	return New(c, opts), c
}

func (p *Panel) Store() *core.Store {
	return p.store
}

func (p *Panel) Notifications() *core.NotificationQueue {
	return p.notices
}

func (p *Panel) Tabs() *core.TabController {
	return p.tabs
}

func (p *Panel) Scheduler() *core.Scheduler {
	return p.sched
}

// SetConfirmer and friends let the UI attach dialogs once its window exists.
func (p *Panel) SetConfirmer(c Confirmer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.confirmer = c
}

func (p *Panel) SetFileSaver(s FileSaver) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.saver = s
}

func (p *Panel) SetFileOpener(o FileOpener) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.opener = o
}

func (p *Panel) SetOnUninstalled(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onUninstalled = fn
}

// Context is cancelled by Close. Background work started by the UI should use it.
func (p *Panel) Context() context.Context {
	return p.ctx
}

// Start loads the initial tab and arms the auto-refresh timer.
func (p *Panel) Start(ctx context.Context) {
	p.sched.Start()
	_ = p.SelectTab(ctx, p.tabs.Active())
}

// SetVisible pauses the auto-refresh while the window is hidden.
func (p *Panel) SetVisible(visible bool) {
	if visible {
		p.sched.Resume()
	} else {
		p.sched.Pause()
	}
}

func (p *Panel) Close() {
	p.sched.Close()
	p.notices.Close()
	p.cancel()
}

// SelectTab activates tab and refreshes what it shows.
func (p *Panel) SelectTab(ctx context.Context, tab core.Tab) error {
	if err := p.tabs.Select(tab); err != nil {
		return err
	}
	if entities := tab.Refreshes(); len(entities) > 0 {
		return p.Refresh(ctx, entities...)
	}
	return nil
}

// DiagnosticsText renders per-action call counters, if the transport keeps them.
func (p *Panel) DiagnosticsText() string {
	m, ok := p.caller.(interface{ Metrics() *client.Metrics })
	if !ok {
		return ""
	}
	var buf bytes.Buffer
	if err := m.Metrics().WriteText(&buf); err != nil {
		return err.Error()
	}
	return buf.String()
}

func (p *Panel) tick() {
	if p.tabs.Active() != core.TabDashboard {
		return
	}
	_ = p.RefreshDashboard(p.ctx)
}

func (p *Panel) call(ctx context.Context, action string, params url.Values) (client.Result, error) {
	return p.caller.Call(ctx, action, params, client.MethodFor(action))
}

func (p *Panel) notify(severity core.Severity, format string, args ...any) {
	p.notices.Push(fmt.Sprintf(format, args...), severity)
}

// reject turns local validation failures into a warning.
func (p *Panel) reject(err error) error {
	p.notify(core.SeverityWarning, "%s", err.Error())
	return err
}

func (p *Panel) fail(err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	slog.Warn(msg, "error", err)
	p.notify(core.SeverityDanger, "%s: %s", msg, describe(err))
	return fmt.Errorf("%s: %w", msg, err)
}

func (p *Panel) confirm(ctx context.Context, title, message string) bool {
	p.mu.Lock()
	c := p.confirmer
	p.mu.Unlock()
	if c == nil {
		return false
	}
	return c.Confirm(ctx, title, message)
}

func (p *Panel) defaultInterval(snap core.Snapshot) int {
	if snap.Timing != nil && snap.Timing.DefaultIntervalSeconds > 0 {
		return snap.Timing.DefaultIntervalSeconds
	}
	for _, u := range snap.URLs {
		if u.DefaultInterval > 0 {
			return u.DefaultInterval
		}
	}
	return fallbackIntervalSeconds
}

// describe renders an error the way the notification banner shows it.
func describe(err error) string {
	var httpErr *client.HTTPStatusError
	var protoErr *client.ProtocolError
	switch {
	case errors.As(err, &httpErr):
		return fmt.Sprintf("HTTP error! status: %d", httpErr.Code)
	case errors.As(err, &protoErr):
		return protoErr.Error()
	case errors.Is(err, client.ErrUnreachable):
		return "control endpoint unreachable"
	default:
		return err.Error()
	}
}
