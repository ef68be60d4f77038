package panel

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"reloadpanel/pkg/agent"
	"reloadpanel/pkg/client"
	"reloadpanel/pkg/core"
)

const endpointPath = "/cgi-bin/page-reloader-api"

type scriptedConfirmer struct {
	mu      sync.Mutex
	answers []bool
	asked   []string
}

func (c *scriptedConfirmer) Confirm(_ context.Context, _, message string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.asked = append(c.asked, message)
	if len(c.answers) == 0 {
		return false
	}
	answer := c.answers[0]
	c.answers = c.answers[1:]
	return answer
}

func (c *scriptedConfirmer) reply(answers ...bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.answers = answers
	c.asked = nil
}

type memorySaver struct {
	name string
	data []byte
	err  error
}

func (s *memorySaver) SaveFile(_ context.Context, name string, data []byte) error {
	if s.err != nil {
		return s.err
	}
	s.name = name
	s.data = append([]byte(nil), data...)
	return nil
}

type memoryOpener struct {
	data []byte
	err  error
}

func (o *memoryOpener) OpenFile(context.Context) ([]byte, error) {
	return o.data, o.err
}

// countingCaller records every action sent through it.
type countingCaller struct {
	next Caller

	mu      sync.Mutex
	actions []string
}

func (c *countingCaller) Call(ctx context.Context, action string, params url.Values, method string) (client.Result, error) {
	c.mu.Lock()
	c.actions = append(c.actions, action)
	c.mu.Unlock()
	return c.next.Call(ctx, action, params, method)
}

func (c *countingCaller) count(action string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, a := range c.actions {
		if a == action {
			n++
		}
	}
	return n
}

func (c *countingCaller) total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.actions)
}

func (c *countingCaller) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.actions = nil
}

// Metrics lets DiagnosticsText see through the wrapper.
func (c *countingCaller) Metrics() *client.Metrics {
	return c.next.(*client.ControlClient).Metrics()
}

type harness struct {
	panel    *Panel
	registry *agent.Registry
	server   *agent.Server
	calls    *countingCaller
	clock    *core.ManualClock
	confirm  *scriptedConfirmer
	saver    *memorySaver
	opener   *memoryOpener
	endpoint string

	failMu  sync.Mutex
	fail    map[string]int
	replies map[string]string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		registry: agent.NewRegistry(30, 10),
		clock:    core.NewManualClock(time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)),
		confirm:  &scriptedConfirmer{},
		saver:    &memorySaver{},
		opener:   &memoryOpener{},
		fail:     make(map[string]int),
		replies:  make(map[string]string),
	}
	h.server = agent.NewServer(h.registry, endpointPath, func(_ context.Context, u string) bool {
		return strings.Contains(u, "up")
	})
	inner := h.server.Handler()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if code := h.failCode(r.URL.Query().Get("action")); code != 0 {
			http.Error(w, "injected failure", code)
			return
		}
		if body, ok := h.cannedReply(r.URL.Query().Get("action")); ok {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(body))
			return
		}
		inner.ServeHTTP(w, r)
	}))
	t.Cleanup(ts.Close)

	h.endpoint = ts.URL + endpointPath
	h.calls = &countingCaller{next: client.NewControlClient(h.endpoint, 2*time.Second, 0)}
	h.panel = New(h.calls, Options{
		Clock:           h.clock,
		RefreshPeriod:   30 * time.Second,
		NotificationTTL: 5 * time.Second,
		Confirmer:       h.confirm,
		Saver:           h.saver,
		Opener:          h.opener,
	})
	t.Cleanup(h.panel.Close)
	return h
}

func (h *harness) failAction(action string, code int) {
	h.failMu.Lock()
	defer h.failMu.Unlock()
	h.fail[action] = code
}

func (h *harness) failCode(action string) int {
	h.failMu.Lock()
	defer h.failMu.Unlock()
	return h.fail[action]
}

// replyWith makes the endpoint answer action with body instead of the agent.
func (h *harness) replyWith(action, body string) {
	h.failMu.Lock()
	defer h.failMu.Unlock()
	h.replies[action] = body
}

func (h *harness) cannedReply(action string) (string, bool) {
	h.failMu.Lock()
	defer h.failMu.Unlock()
	body, ok := h.replies[action]
	return body, ok
}

func (h *harness) notice(t *testing.T) core.Notification {
	t.Helper()
	n, ok := h.panel.Notifications().Current()
	if !ok {
		t.Fatal("no notification visible")
	}
	return n
}

func (h *harness) expectNotice(t *testing.T, severity core.Severity, contains string) {
	t.Helper()
	n := h.notice(t)
	if n.Severity != severity || !strings.Contains(n.Message, contains) {
		t.Errorf("notification = %s %q; want %s containing %q", n.Severity, n.Message, severity, contains)
	}
}
