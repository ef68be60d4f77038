package ui

import (
	"context"
	"log/slog"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"reloadpanel/pkg/config"
	"reloadpanel/pkg/core"
	"reloadpanel/pkg/panel"
)

const (
	appID          = "com.github.reloadpanel"
	prefDefaultTab = "defaultTab"
	quitAfter      = 3 * time.Second
)

type PanelApp struct {
	FyneApp fyne.App
	Window  fyne.Window

	panel    *panel.Panel
	endpoint string
	mobile   bool

	tabs     *container.AppTabs
	tabItems map[core.Tab]*container.TabItem
	banner   *noticeBanner

	dashboard *dashboardView
	urls      *urlManager
	timing    *timingView
	logs      *logsView
	settings  *settingsView
}

// NewPanelApp creates the window and the panel behind it. A tab saved in the
// preferences wins over the one from cfg.
func NewPanelApp(cfg config.PanelConfig) *PanelApp {
	return newPanelApp(app.NewWithID(appID), cfg)
}

func newPanelApp(a fyne.App, cfg config.PanelConfig) *PanelApp {
	a.SetIcon(appIcon())
	w := a.NewWindow("Page Reloader")
	w.Resize(fyne.NewSize(1024, 720))

	opts := panel.Options{InitialTab: core.Tab(cfg.DefaultTab)}
	if saved, err := core.ParseTab(a.Preferences().StringWithFallback(prefDefaultTab, "")); err == nil {
		opts.InitialTab = saved
	}
	p, _ := panel.NewFromConfig(cfg, opts)

	pa := &PanelApp{
		FyneApp:  a,
		Window:   w,
		panel:    p,
		endpoint: cfg.Endpoint,
		mobile:   a.Driver().Device().IsMobile(),
	}

	dialogs := &windowDialogs{window: w}
	p.SetConfirmer(dialogs)
	p.SetFileSaver(dialogs)
	p.SetFileOpener(dialogs)
	p.SetOnUninstalled(pa.onUninstalled)

	pa.setupUI()
	pa.subscribe()
	return pa
}

// Run blocks until the window is closed.
func (pa *PanelApp) Run() {
	lc := pa.FyneApp.Lifecycle()
	lc.SetOnStarted(func() {
		go pa.panel.Start(pa.panel.Context())
	})
	lc.SetOnEnteredForeground(func() { pa.onForeground(true) })
	lc.SetOnExitedForeground(func() { pa.onForeground(false) })
	lc.SetOnStopped(pa.panel.Close)

	pa.Window.SetOnClosed(pa.panel.Close)
	pa.Window.ShowAndRun()
}

// onForeground pauses the auto-refresh while a mobile app is in the
// background. Desktop drivers report focus changes here, and an unfocused
// window is still on screen, so the refresh keeps running there.
func (pa *PanelApp) onForeground(entered bool) {
	if !pa.mobile {
		return
	}
	pa.panel.SetVisible(entered)
}

func (pa *PanelApp) setupUI() {
	pa.banner = newNoticeBanner(pa.panel.Notifications().Dismiss)
	pa.dashboard = newDashboardView(pa)
	pa.urls = newURLManager(pa)
	pa.timing = newTimingView(pa)
	pa.logs = newLogsView(pa)
	pa.settings = newSettingsView(pa)

	views := map[core.Tab]fyne.CanvasObject{
		core.TabDashboard: pa.dashboard.Container,
		core.TabURLs:      pa.urls.Container,
		core.TabTiming:    pa.timing.Container,
		core.TabLogs:      pa.logs.Container,
		core.TabSettings:  pa.settings.Container,
		core.TabManual:    newManualView(),
	}

	pa.tabItems = make(map[core.Tab]*container.TabItem, len(views))
	pa.tabs = container.NewAppTabs()
	for _, tab := range core.Tabs() {
		item := container.NewTabItem(tab.Title(), container.NewPadded(views[tab]))
		pa.tabItems[tab] = item
		pa.tabs.Append(item)
	}
	if item, ok := pa.tabItems[pa.panel.Tabs().Active()]; ok {
		pa.tabs.Select(item)
	}
	pa.tabs.OnSelected = func(item *container.TabItem) {
		tab := pa.tabFor(item)
		if tab == "" {
			return
		}
		pa.FyneApp.Preferences().SetString(prefDefaultTab, string(tab))
		pa.run(func(ctx context.Context) error { return pa.panel.SelectTab(ctx, tab) })
	}

	pa.Window.SetContent(container.NewBorder(pa.banner.Container, nil, nil, nil, pa.tabs))
}

// subscribe routes store and notification changes onto the UI goroutine.
func (pa *PanelApp) subscribe() {
	pa.panel.Store().Subscribe(func(e core.Entity) {
		snap := pa.panel.Store().Snapshot()
		fyne.Do(func() { pa.render(e, snap) })
	})
	pa.panel.Notifications().Subscribe(func(n core.Notification, visible bool) {
		fyne.Do(func() {
			if visible {
				pa.banner.Show(n)
			} else {
				pa.banner.Hide()
			}
		})
	})
}

func (pa *PanelApp) render(e core.Entity, snap core.Snapshot) {
	switch e {
	case core.EntityStatus:
		pa.dashboard.Update(snap)
	case core.EntityURLs:
		pa.dashboard.Update(snap)
		pa.dashboard.RecordOnline(snap)
		pa.urls.Update(snap)
	case core.EntityTiming:
		pa.dashboard.Update(snap)
		pa.timing.Update(snap)
	case core.EntityLogs:
		pa.logs.Update(snap)
	case core.EntitySystemInfo:
		pa.settings.Update(snap)
	}
}

func (pa *PanelApp) tabFor(item *container.TabItem) core.Tab {
	for tab, candidate := range pa.tabItems {
		if candidate == item {
			return tab
		}
	}
	return ""
}

// run executes op off the UI goroutine. Failures are already reported
// through the notification banner.
func (pa *PanelApp) run(op func(ctx context.Context) error) {
	go func() {
		if err := op(pa.panel.Context()); err != nil {
			slog.Debug("panel operation failed", "error", err)
		}
	}()
}

// runFrom is run with btn disabled until op returns.
func (pa *PanelApp) runFrom(btn *widget.Button, op func(ctx context.Context) error) {
	btn.Disable()
	go func() {
		defer fyne.Do(btn.Enable)
		if err := op(pa.panel.Context()); err != nil {
			slog.Debug("panel operation failed", "error", err)
		}
	}()
}

func (pa *PanelApp) onUninstalled() {
	fyne.Do(func() {
		dialog.ShowInformation("Uninstalled", "page-reloader has been removed. The panel will close.", pa.Window)
	})
	time.AfterFunc(quitAfter, func() {
		fyne.Do(pa.FyneApp.Quit)
	})
}
