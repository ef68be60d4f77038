package agent

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"reloadpanel/pkg/core"
)

const maxLogLines = 200

var (
	ErrDuplicateURL = errors.New("URL already monitored")
	ErrUnknownURL   = errors.New("URL not monitored")
	ErrUninstalled  = errors.New("page-reloader is not installed")
)

// Prober reports whether a monitored URL answers.
type Prober func(ctx context.Context, url string) bool

// HTTPProber treats any response below 400 as accessible.
func HTTPProber(timeout time.Duration) Prober {
	client := &http.Client{Timeout: timeout}
	return func(ctx context.Context, url string) bool {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return false
		}
		resp, err := client.Do(req)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode < 400
	}
}

type Preset struct {
	Interval int
	Timeout  int
}

var presets = map[string]Preset{
	"fast":   {Interval: 10, Timeout: 5},
	"normal": {Interval: 30, Timeout: 10},
	"slow":   {Interval: 300, Timeout: 30},
}

type urlEntry struct {
	url      string
	interval int
	custom   bool
	status   core.URLStatus
}

// Registry is the in-memory state behind the stand-in endpoint.
type Registry struct {
	mu sync.Mutex

	running     bool
	autostart   bool
	uninstalled bool
	interval    int
	timeout     int
	urls        []*urlEntry
	logs        []string

	now  func() time.Time
	host func() hostInfo
}

func NewRegistry(defaultInterval, timeout int) *Registry {
	return &Registry{
		running:  true,
		interval: defaultInterval,
		timeout:  timeout,
		now:      time.Now,
		host:     collectHostInfo,
	}
}

func (r *Registry) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *Registry) SetRunning(running bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.uninstalled {
		return ErrUninstalled
	}
	r.running = running
	if running {
		r.logLocked("service started")
	} else {
		r.logLocked("service stopped")
	}
	return nil
}

func (r *Registry) Restart() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.uninstalled {
		return ErrUninstalled
	}
	r.running = true
	r.logLocked("service restarted")
	return nil
}

func (r *Registry) URLs() []core.MonitoredURL {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]core.MonitoredURL, 0, len(r.urls))
	for _, e := range r.urls {
		out = append(out, r.viewLocked(e))
	}
	return out
}

func (r *Registry) AddURL(url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.uninstalled {
		return ErrUninstalled
	}
	if r.findLocked(url) != nil {
		return ErrDuplicateURL
	}
	r.urls = append(r.urls, &urlEntry{url: url, interval: r.interval, status: core.StatusUnknown})
	r.logLocked("url added: %s", url)
	return nil
}

func (r *Registry) RemoveURL(url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.urls[:0]
	found := false
	for _, e := range r.urls {
		if e.url == url {
			found = true
			continue
		}
		kept = append(kept, e)
	}
	r.urls = kept
	if !found {
		return ErrUnknownURL
	}
	r.logLocked("url removed: %s", url)
	return nil
}

func (r *Registry) SetURLInterval(url string, interval int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := r.findLocked(url)
	if e == nil {
		return ErrUnknownURL
	}
	e.interval = interval
	e.custom = true
	r.logLocked("interval for %s set to %ds", url, interval)
	return nil
}

func (r *Registry) ClearURLs() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.urls = nil
	r.logLocked("all urls cleared")
}

// RecordCheck stores a probe outcome for url, if it is monitored.
func (r *Registry) RecordCheck(url string, accessible bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := r.findLocked(url)
	status := core.StatusOffline
	if accessible {
		status = core.StatusOnline
	}
	if e != nil {
		e.status = status
	}
	r.logLocked("check %s: %s", url, status)
}

func (r *Registry) Timing() core.TimingConfig {
	r.mu.Lock()
	defer r.mu.Unlock()
	return core.TimingConfig{
		DefaultIntervalSeconds: r.interval,
		TimeoutSeconds:         r.timeout,
		InfoText: fmt.Sprintf("Default check interval: %s\nRequest timeout: %ds\nMonitored URLs: %d",
			core.FormatInterval(r.interval), r.timeout, len(r.urls)),
	}
}

func (r *Registry) SetDefaultInterval(interval int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setDefaultIntervalLocked(interval)
	r.logLocked("default interval set to %ds", interval)
}

func (r *Registry) SetTimeout(timeout int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timeout = timeout
	r.logLocked("timeout set to %ds", timeout)
}

func (r *Registry) ApplyPreset(name string) error {
	p, ok := presets[name]
	if !ok {
		return fmt.Errorf("unknown preset %q", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setDefaultIntervalLocked(p.Interval)
	r.timeout = p.Timeout
	r.logLocked("preset %s applied", name)
	return nil
}

func (r *Registry) SetAutostart(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.autostart = enabled
	r.logLocked("autostart enabled: %t", enabled)
}

func (r *Registry) Logs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.logs...)
}

// SystemInfo is a multi-line summary of the service and the host it runs on.
func (r *Registry) SystemInfo() string {
	r.mu.Lock()
	summary := fmt.Sprintf("page-reloader stand-in agent\nRunning: %t\nAutostart: %t\nMonitored URLs: %d",
		r.running, r.autostart, len(r.urls))
	host := r.host
	r.mu.Unlock()
	return summary + "\n" + host().String()
}

func (r *Registry) Uninstall() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.uninstalled = true
	r.running = false
	r.urls = nil
	r.logs = nil
}

func (r *Registry) Uninstalled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.uninstalled
}

// ExportConfig serialises timing and URLs in the line format ImportConfig reads.
func (r *Registry) ExportConfig() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var b strings.Builder
	b.WriteString("# page-reloader configuration\n")
	fmt.Fprintf(&b, "interval=%d\n", r.interval)
	fmt.Fprintf(&b, "timeout=%d\n", r.timeout)
	for _, e := range r.urls {
		if e.custom {
			fmt.Fprintf(&b, "url=%s %d\n", e.url, e.interval)
		} else {
			fmt.Fprintf(&b, "url=%s\n", e.url)
		}
	}
	return b.String()
}

// ImportConfig replaces timing and the URL set. Nothing changes on a parse error.
func (r *Registry) ImportConfig(text string) error {
	interval, timeout := 0, 0
	var urls []*urlEntry
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(strings.NewReader(text))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("line %d: expected key=value", lineNo)
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "interval":
			v, err := strconv.Atoi(value)
			if err != nil || v < core.MinIntervalSeconds {
				return fmt.Errorf("line %d: invalid interval %q", lineNo, value)
			}
			interval = v
		case "timeout":
			v, err := strconv.Atoi(value)
			if err != nil || v < core.MinTimeoutSeconds {
				return fmt.Errorf("line %d: invalid timeout %q", lineNo, value)
			}
			timeout = v
		case "url":
			fields := strings.Fields(value)
			if len(fields) == 0 || len(fields) > 2 {
				return fmt.Errorf("line %d: invalid url entry", lineNo)
			}
			if seen[fields[0]] {
				continue
			}
			seen[fields[0]] = true
			e := &urlEntry{url: fields[0], status: core.StatusUnknown}
			if len(fields) == 2 {
				v, err := strconv.Atoi(fields[1])
				if err != nil || v < core.MinIntervalSeconds {
					return fmt.Errorf("line %d: invalid interval %q", lineNo, fields[1])
				}
				e.interval = v
				e.custom = true
			}
			urls = append(urls, e)
		default:
			return fmt.Errorf("line %d: unknown key %q", lineNo, key)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if interval > 0 {
		r.interval = interval
	}
	if timeout > 0 {
		r.timeout = timeout
	}
	for _, e := range urls {
		if !e.custom {
			e.interval = r.interval
		}
	}
	r.urls = urls
	r.logLocked("configuration imported: %d urls", len(urls))
	return nil
}

func (r *Registry) setDefaultIntervalLocked(interval int) {
	r.interval = interval
	for _, e := range r.urls {
		if !e.custom {
			e.interval = interval
		}
	}
}

func (r *Registry) findLocked(url string) *urlEntry {
	for _, e := range r.urls {
		if e.url == url {
			return e
		}
	}
	return nil
}

func (r *Registry) viewLocked(e *urlEntry) core.MonitoredURL {
	return core.MonitoredURL{
		URL:             e.url,
		Status:          e.status,
		Interval:        e.interval,
		DefaultInterval: r.interval,
	}
}

func (r *Registry) logLocked(format string, args ...any) {
	line := r.now().Format("2006-01-02 15:04:05") + " " + fmt.Sprintf(format, args...)
	r.logs = append(r.logs, line)
	if len(r.logs) > maxLogLines {
		r.logs = r.logs[len(r.logs)-maxLogLines:]
	}
}
