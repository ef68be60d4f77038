package agent

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

const testPath = "/cgi-bin/page-reloader-api"

func newTestServer(t *testing.T, probe Prober) (*Server, *httptest.Server) {
	t.Helper()
	if probe == nil {
		probe = func(context.Context, string) bool { return true }
	}
	s := NewServer(newTestRegistry(), testPath, probe)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

type decoded struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func doAction(t *testing.T, ts *httptest.Server, method, action string, form url.Values) (int, string) {
	t.Helper()
	target := ts.URL + testPath + "?action=" + url.QueryEscape(action)
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequest(method, target, body)
	if err != nil {
		t.Fatal(err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, string(raw)
}

func decode(t *testing.T, body string) decoded {
	t.Helper()
	var d decoded
	if err := json.Unmarshal([]byte(body), &d); err != nil {
		t.Fatalf("decode %q: %v", body, err)
	}
	return d
}

func TestServer_StatusAndListURLs(t *testing.T) {
	s, ts := newTestServer(t, nil)
	_ = s.Registry().AddURL("http://a")

	code, body := doAction(t, ts, http.MethodGet, "status", nil)
	if code != http.StatusOK {
		t.Fatalf("status code = %d", code)
	}
	if d := decode(t, body); !d.Success || string(d.Data) != `{"running":true}` {
		t.Errorf("status body = %s", body)
	}

	_, body = doAction(t, ts, http.MethodGet, "list-urls", nil)
	d := decode(t, body)
	var payload struct {
		URLs []map[string]any `json:"urls"`
	}
	if err := json.Unmarshal(d.Data, &payload); err != nil {
		t.Fatal(err)
	}
	urls := payload.URLs
	if len(urls) != 1 || urls[0]["url"] != "http://a" || urls[0]["defaultInterval"] != float64(30) {
		t.Errorf("list-urls data = %s", d.Data)
	}
}

func TestServer_AddURLFormBodyAndDuplicate(t *testing.T) {
	_, ts := newTestServer(t, nil)

	form := url.Values{"url": {"http://a"}}
	_, body := doAction(t, ts, http.MethodPost, "add-url", form)
	if d := decode(t, body); !d.Success {
		t.Fatalf("add-url body = %s", body)
	}

	code, body := doAction(t, ts, http.MethodPost, "add-url", form)
	d := decode(t, body)
	if code != http.StatusOK || d.Success || d.Error != ErrDuplicateURL.Error() {
		t.Errorf("duplicate add-url = %d %s", code, body)
	}
}

func TestServer_RestartRepliesPlainText(t *testing.T) {
	_, ts := newTestServer(t, nil)
	code, body := doAction(t, ts, http.MethodPost, "restart", url.Values{})
	if code != http.StatusOK || body != "OK" {
		t.Errorf("restart = %d %q; want 200 \"OK\"", code, body)
	}
}

func TestServer_Routing(t *testing.T) {
	_, ts := newTestServer(t, nil)

	if code, _ := doAction(t, ts, http.MethodGet, "add-url", nil); code != http.StatusMethodNotAllowed {
		t.Errorf("GET add-url code = %d; want 405", code)
	}
	code, body := doAction(t, ts, http.MethodGet, "bogus", nil)
	if code != http.StatusBadRequest || !strings.Contains(body, "unknown action: bogus") {
		t.Errorf("bogus action = %d %s", code, body)
	}
	// Queries must match the whole value.
	if code, _ := doAction(t, ts, http.MethodPost, "tart", url.Values{}); code != http.StatusBadRequest {
		t.Errorf("partial action code = %d; want 400", code)
	}
}

func TestServer_TestURLUsesProber(t *testing.T) {
	s, ts := newTestServer(t, func(_ context.Context, u string) bool {
		return u == "http://up"
	})
	_ = s.Registry().AddURL("http://up")
	_ = s.Registry().AddURL("http://down")

	_, body := doAction(t, ts, http.MethodPost, "test-url", url.Values{"url": {"http://down"}})
	d := decode(t, body)
	var res struct {
		Accessible bool `json:"accessible"`
	}
	if err := json.Unmarshal(d.Data, &res); err != nil {
		t.Fatal(err)
	}
	if res.Accessible {
		t.Error("http://down reported accessible")
	}

	_, body = doAction(t, ts, http.MethodPost, "test-all", url.Values{})
	if d := decode(t, body); string(d.Data) != `{"online":1,"tested":2}` {
		t.Errorf("test-all data = %s", d.Data)
	}
	urls := s.Registry().URLs()
	if urls[0].Status != "online" || urls[1].Status != "offline" {
		t.Errorf("statuses = %s %s", urls[0].Status, urls[1].Status)
	}
}

func TestServer_ImportConfig(t *testing.T) {
	s, ts := newTestServer(t, nil)
	text := "interval=60\ntimeout=20\nurl=http://x\nurl=http://y 90\n"

	_, body := doAction(t, ts, http.MethodPost, "import-config", url.Values{"config": {text}})
	if d := decode(t, body); !d.Success {
		t.Fatalf("import-config = %s", body)
	}
	if got := s.Registry().ExportConfig(); !strings.Contains(got, "interval=60\ntimeout=20\nurl=http://x\nurl=http://y 90\n") {
		t.Errorf("export after import = %q", got)
	}
}

func TestServer_UninstallDisablesEndpoint(t *testing.T) {
	_, ts := newTestServer(t, nil)
	doAction(t, ts, http.MethodPost, "uninstall", url.Values{})

	_, body := doAction(t, ts, http.MethodGet, "status", nil)
	if d := decode(t, body); d.Success || d.Error != ErrUninstalled.Error() {
		t.Errorf("status after uninstall = %s", body)
	}
}

func TestServer_Metrics(t *testing.T) {
	s, ts := newTestServer(t, nil)
	_ = s.Registry().AddURL("http://a")

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	text := string(raw)
	for _, want := range []string{"page_reloader_running 1", "page_reloader_urls 1", "page_reloader_urls_online 0"} {
		if !strings.Contains(text, want) {
			t.Errorf("metrics missing %q:\n%s", want, text)
		}
	}
}
