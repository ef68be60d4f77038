package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"reloadpanel/pkg/config"
)

const maxResponseBytes = 4 << 20

// Control endpoint actions.
const (
	ActionStatus           = "status"
	ActionListURLs         = "list-urls"
	ActionAddURL           = "add-url"
	ActionRemoveURL        = "remove-url"
	ActionSetURLInterval   = "set-url-interval"
	ActionTestURL          = "test-url"
	ActionTestAll          = "test-all"
	ActionStart            = "start"
	ActionStop             = "stop"
	ActionRestart          = "restart"
	ActionShowTiming       = "show-timing"
	ActionSetInterval      = "set-interval"
	ActionSetTimeout       = "set-timeout"
	ActionSetPreset        = "set-preset"
	ActionLogs             = "logs"
	ActionSystemInfo       = "system-info"
	ActionEnableAutostart  = "enable-autostart"
	ActionDisableAutostart = "disable-autostart"
	ActionExportConfig     = "export-config"
	ActionImportConfig     = "import-config"
	ActionClearURLs        = "clear-urls"
	ActionUninstall        = "uninstall"
)

var readActions = map[string]bool{
	ActionStatus:       true,
	ActionListURLs:     true,
	ActionShowTiming:   true,
	ActionLogs:         true,
	ActionSystemInfo:   true,
	ActionExportConfig: true,
}

// MethodFor returns the HTTP method the endpoint expects for action.
func MethodFor(action string) string {
	if readActions[action] {
		return http.MethodGet
	}
	return http.MethodPost
}

var (
	// ErrUnreachable wraps every network-level failure.
	ErrUnreachable = errors.New("control endpoint unreachable")
	// ErrNoStructuredData is returned by Result.Decode on a plain text reply.
	ErrNoStructuredData = errors.New("response carries no structured data")
)

type HTTPStatusError struct {
	Code int
	Body string
}

func (e *HTTPStatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP error! status: %d", e.Code)
	}
	return fmt.Sprintf("HTTP error! status: %d: %s", e.Code, e.Body)
}

// ProtocolError is an envelope that arrived intact but says success=false.
type ProtocolError struct {
	Action  string
	Message string
}

func (e *ProtocolError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: request failed", e.Action)
	}
	return e.Message
}

type Kind int

const (
	KindStructured Kind = iota
	KindText
)

// Result is a successful reply: either a parsed envelope or raw text.
type Result struct {
	Action string
	Kind   Kind
	Data   json.RawMessage
	Text   string
}

func (r Result) IsText() bool {
	return r.Kind == KindText
}

// AsText returns the reply as plain text: the raw body of a text reply, or
// an envelope whose data is a bare JSON string.
func (r Result) AsText() (string, bool) {
	if r.Kind == KindText {
		return r.Text, true
	}
	var s string
	if len(r.Data) > 0 && r.Data[0] == '"' && json.Unmarshal(r.Data, &s) == nil {
		return s, true
	}
	return "", false
}

// Decode unmarshals the envelope's data into v.
func (r Result) Decode(v any) error {
	if r.Kind != KindStructured {
		return ErrNoStructuredData
	}
	if len(r.Data) == 0 || string(r.Data) == "null" {
		return ErrNoStructuredData
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		return fmt.Errorf("decode %s data: %w", r.Action, err)
	}
	return nil
}

type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

type ControlClient struct {
	endpoint   string
	httpClient *http.Client
	limiter    *rate.Limiter
	metrics    *Metrics
}

func NewControlClient(endpoint string, timeout time.Duration, maxPerSecond float64) *ControlClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	limit := rate.Inf
	burst := 1
	if maxPerSecond > 0 {
		limit = rate.Limit(maxPerSecond)
		burst = int(math.Ceil(maxPerSecond))
	}
	return &ControlClient{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(limit, burst),
		metrics: NewMetrics(),
	}
}

func NewControlClientFromConfig(cfg config.PanelConfig) *ControlClient {
	return NewControlClient(
		cfg.Endpoint,
		time.Duration(cfg.RequestTimeoutSec)*time.Second,
		cfg.MaxRequestsPerSecond,
	)
}

func (c *ControlClient) Endpoint() string {
	return c.endpoint
}

func (c *ControlClient) Metrics() *Metrics {
	return c.metrics
}

// Call sends one action to the control endpoint.
func (c *ControlClient) Call(ctx context.Context, action string, params url.Values, method string) (Result, error) {
	started := time.Now()
	result, err := c.call(ctx, action, params, method)
	c.metrics.Observe(action, time.Since(started), err)
	if err != nil {
		slog.Debug("control call failed", "action", action, "method", method, "error", err)
	} else {
		slog.Debug("control call", "action", action, "method", method, "text", result.IsText())
	}
	return result, err
}

func (c *ControlClient) call(ctx context.Context, action string, params url.Values, method string) (Result, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	req, err := c.newRequest(ctx, action, params, method)
	if err != nil {
		return Result{}, fmt.Errorf("create %s request: %w", action, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Result{}, fmt.Errorf("%w: read %s response: %v", ErrUnreachable, action, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, &HTTPStatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	return parseBody(action, body)
}

func (c *ControlClient) newRequest(ctx context.Context, action string, params url.Values, method string) (*http.Request, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, err
	}
	query := u.Query()
	query.Set("action", action)

	var body io.Reader
	if method == http.MethodGet {
		for key, values := range params {
			for _, v := range values {
				query.Add(key, v)
			}
		}
	} else if len(params) > 0 {
		body = strings.NewReader(params.Encode())
	}
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if method != http.MethodGet {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	return req, nil
}

func parseBody(action string, body []byte) (Result, error) {
	trimmed := bytes.TrimSpace(body)

	var env envelope
	if len(trimmed) > 0 && trimmed[0] == '{' && json.Unmarshal(trimmed, &env) == nil && env.Success != nil {
		if !*env.Success {
			msg := env.Error
			if msg == "" {
				msg = env.Message
			}
			return Result{}, &ProtocolError{Action: action, Message: msg}
		}
		return Result{Action: action, Kind: KindStructured, Data: env.Data, Text: env.Message}, nil
	}

	return Result{Action: action, Kind: KindText, Text: string(trimmed)}, nil
}
