package core

import (
	"fmt"
	"strings"
	"sync"
)

type Tab string

const (
	TabDashboard Tab = "dashboard"
	TabURLs      Tab = "urls"
	TabTiming    Tab = "timing"
	TabLogs      Tab = "logs"
	TabSettings  Tab = "settings"
	TabManual    Tab = "manual"
)

var allTabs = []Tab{TabDashboard, TabURLs, TabTiming, TabLogs, TabSettings, TabManual}

// Tabs returns the fixed tab set in display order.
func Tabs() []Tab {
	return append([]Tab(nil), allTabs...)
}

func ParseTab(raw string) (Tab, error) {
	t := Tab(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range allTabs {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown tab %q", raw)
}

// Title is the label shown on the tab strip.
func (t Tab) Title() string {
	switch t {
	case TabDashboard:
		return "Dashboard"
	case TabURLs:
		return "URLs"
	case TabTiming:
		return "Timing"
	case TabLogs:
		return "Logs"
	case TabSettings:
		return "Settings"
	case TabManual:
		return "Manual"
	default:
		return string(t)
	}
}

// Refreshes lists the entities loaded when the tab is entered.
func (t Tab) Refreshes() []Entity {
	switch t {
	case TabDashboard:
		return []Entity{EntityStatus, EntityURLs}
	case TabURLs:
		return []Entity{EntityURLs}
	case TabTiming:
		return []Entity{EntityTiming}
	case TabLogs:
		return []Entity{EntityLogs}
	default:
		return nil
	}
}

// TabController tracks the single active tab.
type TabController struct {
	mu        sync.RWMutex
	active    Tab
	listeners []func(Tab)
}

func NewTabController(initial Tab) *TabController {
	if _, err := ParseTab(string(initial)); err != nil {
		initial = TabDashboard
	}
	return &TabController{active: initial}
}

func (c *TabController) Active() Tab {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active
}

func (c *TabController) Subscribe(fn func(Tab)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Select makes t the active tab. Re-selecting the active tab still counts
// as entering it.
func (c *TabController) Select(t Tab) error {
	if _, err := ParseTab(string(t)); err != nil {
		return err
	}
	c.mu.Lock()
	c.active = t
	listeners := append([]func(Tab){}, c.listeners...)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(t)
	}
	return nil
}
