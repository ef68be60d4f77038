package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

type capturedRequest struct {
	method      string
	query       url.Values
	body        string
	contentType string
}

func newCapturingServer(t *testing.T, status int, reply string) (*ControlClient, *capturedRequest) {
	t.Helper()
	seen := &capturedRequest{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		seen.method = r.Method
		seen.query = r.URL.Query()
		seen.body = string(raw)
		seen.contentType = r.Header.Get("Content-Type")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(ts.Close)
	return NewControlClient(ts.URL+"/cgi-bin/page-reloader-api", time.Second, 0), seen
}

func TestMethodFor(t *testing.T) {
	tests := map[string]string{
		ActionStatus:       http.MethodGet,
		ActionListURLs:     http.MethodGet,
		ActionShowTiming:   http.MethodGet,
		ActionLogs:         http.MethodGet,
		ActionSystemInfo:   http.MethodGet,
		ActionExportConfig: http.MethodGet,
		ActionAddURL:       http.MethodPost,
		ActionRestart:      http.MethodPost,
		ActionUninstall:    http.MethodPost,
		"something-new":    http.MethodPost,
	}
	for action, want := range tests {
		if got := MethodFor(action); got != want {
			t.Errorf("MethodFor(%q) = %s; want %s", action, got, want)
		}
	}
}

func TestCall_GetCarriesParamsInQuery(t *testing.T) {
	c, seen := newCapturingServer(t, http.StatusOK, `{"success":true,"data":{"running":true}}`)

	res, err := c.Call(context.Background(), ActionStatus, url.Values{"verbose": {"1"}}, http.MethodGet)
	if err != nil {
		t.Fatal(err)
	}
	if seen.method != http.MethodGet || seen.query.Get("action") != "status" || seen.query.Get("verbose") != "1" {
		t.Errorf("request = %+v", seen)
	}
	if seen.body != "" {
		t.Errorf("GET body = %q; want empty", seen.body)
	}

	var status struct {
		Running bool `json:"running"`
	}
	if err := res.Decode(&status); err != nil || !status.Running {
		t.Errorf("Decode = %+v, %v", status, err)
	}
}

func TestCall_PostFormEncodesBody(t *testing.T) {
	c, seen := newCapturingServer(t, http.StatusOK, `{"success":true,"message":"URL added"}`)

	params := url.Values{"url": {"http://example.com/?a=1&b=2"}}
	res, err := c.Call(context.Background(), ActionAddURL, params, http.MethodPost)
	if err != nil {
		t.Fatal(err)
	}
	if seen.method != http.MethodPost || seen.query.Get("action") != "add-url" {
		t.Errorf("request = %+v", seen)
	}
	if seen.query.Get("url") != "" {
		t.Error("POST params leaked into the query string")
	}
	if seen.contentType != "application/x-www-form-urlencoded" {
		t.Errorf("Content-Type = %q", seen.contentType)
	}
	form, err := url.ParseQuery(seen.body)
	if err != nil || form.Get("url") != "http://example.com/?a=1&b=2" {
		t.Errorf("body = %q", seen.body)
	}
	if res.IsText() || res.Text != "URL added" {
		t.Errorf("result = %+v", res)
	}
	if err := res.Decode(&struct{}{}); !errors.Is(err, ErrNoStructuredData) {
		t.Errorf("Decode without data = %v; want ErrNoStructuredData", err)
	}
}

func TestCall_PlainTextIsSuccess(t *testing.T) {
	c, _ := newCapturingServer(t, http.StatusOK, "OK\n")

	res, err := c.Call(context.Background(), ActionRestart, nil, http.MethodPost)
	if err != nil {
		t.Fatalf("Call() err = %v; want nil", err)
	}
	if !res.IsText() || res.Text != "OK" {
		t.Errorf("result = %+v; want text OK", res)
	}
	if err := res.Decode(&struct{}{}); !errors.Is(err, ErrNoStructuredData) {
		t.Errorf("Decode on text = %v", err)
	}
}

func TestCall_JSONWithoutSuccessKeyIsText(t *testing.T) {
	c, _ := newCapturingServer(t, http.StatusOK, `{"running":true}`)

	res, err := c.Call(context.Background(), ActionStatus, nil, http.MethodGet)
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsText() || res.Text != `{"running":true}` {
		t.Errorf("result = %+v", res)
	}
}

func TestCall_EnvelopeFailureIsProtocolError(t *testing.T) {
	c, _ := newCapturingServer(t, http.StatusOK, `{"success":false,"error":"URL already monitored"}`)

	_, err := c.Call(context.Background(), ActionAddURL, url.Values{"url": {"http://a"}}, http.MethodPost)
	var perr *ProtocolError
	if !errors.As(err, &perr) {
		t.Fatalf("err = %v; want *ProtocolError", err)
	}
	if perr.Action != ActionAddURL || perr.Error() != "URL already monitored" {
		t.Errorf("ProtocolError = %+v", perr)
	}
}

func TestCall_NonSuccessStatus(t *testing.T) {
	c, _ := newCapturingServer(t, http.StatusInternalServerError, "")

	_, err := c.Call(context.Background(), ActionStatus, nil, http.MethodGet)
	var herr *HTTPStatusError
	if !errors.As(err, &herr) || herr.Code != http.StatusInternalServerError {
		t.Fatalf("err = %v; want HTTPStatusError 500", err)
	}
	if herr.Error() != "HTTP error! status: 500" {
		t.Errorf("Error() = %q", herr.Error())
	}
	if got := c.Metrics().Calls(ActionStatus); got != 1 {
		t.Errorf("Calls(status) = %d; want 1", got)
	}
}

func TestCall_Unreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	endpoint := ts.URL + "/api"
	ts.Close()

	c := NewControlClient(endpoint, time.Second, 0)
	_, err := c.Call(context.Background(), ActionStatus, nil, http.MethodGet)
	if !errors.Is(err, ErrUnreachable) {
		t.Fatalf("err = %v; want ErrUnreachable", err)
	}
}

func TestCall_CancelledContextIsUnreachable(t *testing.T) {
	c, _ := newCapturingServer(t, http.StatusOK, "OK")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Call(ctx, ActionStatus, nil, http.MethodGet)
	if !errors.Is(err, ErrUnreachable) {
		t.Fatalf("err = %v; want ErrUnreachable", err)
	}
}

func TestResult_AsText(t *testing.T) {
	tests := []struct {
		name   string
		result Result
		want   string
		ok     bool
	}{
		{"text", Result{Kind: KindText, Text: "line"}, "line", true},
		{"string data", Result{Kind: KindStructured, Data: []byte(`"a\nb"`)}, "a\nb", true},
		{"object data", Result{Kind: KindStructured, Data: []byte(`{"a":1}`)}, "", false},
		{"no data", Result{Kind: KindStructured}, "", false},
	}
	for _, test := range tests {
		got, ok := test.result.AsText()
		if got != test.want || ok != test.ok {
			t.Errorf("%s: AsText() = %q, %t; want %q, %t", test.name, got, ok, test.want, test.ok)
		}
	}
}

func TestCall_RateLimitedWaitHonoursContext(t *testing.T) {
	c, _ := newCapturingServer(t, http.StatusOK, "OK")
	c = NewControlClient(c.Endpoint(), time.Second, 0.001)

	if _, err := c.Call(context.Background(), ActionStatus, nil, http.MethodGet); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.Call(ctx, ActionStatus, nil, http.MethodGet)
	if !errors.Is(err, ErrUnreachable) || !strings.Contains(err.Error(), "rate") {
		t.Errorf("err = %v; want rate limiter error", err)
	}
}
