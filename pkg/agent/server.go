package agent

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"

	"reloadpanel/pkg/core"
)

const maxImportBodyBytes = 1 << 20

// Server exposes a Registry through the single-endpoint control protocol.
type Server struct {
	registry *Registry
	path     string
	probe    Prober

	// Restart replies with a bare "OK" body instead of an envelope.
	PlainRestart bool
}

func NewServer(registry *Registry, path string, probe Prober) *Server {
	if probe == nil {
		probe = HTTPProber(10 * time.Second)
	}
	return &Server{
		registry:     registry,
		path:         path,
		probe:        probe,
		PlainRestart: true,
	}
}

func (s *Server) Registry() *Registry {
	return s.registry
}

func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	get := func(action string, h http.HandlerFunc) {
		r.Path(s.path).Methods(http.MethodGet).Queries("action", action).HandlerFunc(s.guard(h))
	}
	post := func(action string, h http.HandlerFunc) {
		r.Path(s.path).Methods(http.MethodPost).Queries("action", action).HandlerFunc(s.guard(h))
	}

	get("status", s.handleStatus)
	get("list-urls", s.handleListURLs)
	get("show-timing", s.handleShowTiming)
	get("logs", s.handleLogs)
	get("system-info", s.handleSystemInfo)
	get("export-config", s.handleExport)

	post("add-url", s.handleAddURL)
	post("remove-url", s.handleRemoveURL)
	post("set-url-interval", s.handleSetURLInterval)
	post("test-url", s.handleTestURL)
	post("test-all", s.handleTestAll)
	post("start", s.handleRunning(true))
	post("stop", s.handleRunning(false))
	post("restart", s.handleRestart)
	post("set-interval", s.handleSetInterval)
	post("set-timeout", s.handleSetTimeout)
	post("set-preset", s.handleSetPreset)
	post("enable-autostart", s.handleAutostart(true))
	post("disable-autostart", s.handleAutostart(false))
	post("import-config", s.handleImport)
	post("clear-urls", s.handleClearURLs)
	post("uninstall", s.handleUninstall)

	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	r.HandleFunc("/metrics", s.handleMetrics).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path == s.path {
			writeError(w, http.StatusBadRequest, "unknown action: "+req.URL.Query().Get("action"))
			return
		}
		http.NotFound(w, req)
	})
	return r
}

func (s *Server) guard(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Debug("control request", "action", r.URL.Query().Get("action"), "method", r.Method)
		if s.registry.Uninstalled() {
			writeError(w, http.StatusOK, ErrUninstalled.Error())
			return
		}
		h(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeData(w, core.ServiceStatus{Running: s.registry.Running()})
}

func (s *Server) handleListURLs(w http.ResponseWriter, r *http.Request) {
	writeData(w, map[string]any{"urls": s.registry.URLs()})
}

func (s *Server) handleShowTiming(w http.ResponseWriter, r *http.Request) {
	writeData(w, s.registry.Timing())
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	writeData(w, map[string]any{"logs": s.registry.Logs()})
}

func (s *Server) handleSystemInfo(w http.ResponseWriter, r *http.Request) {
	writeData(w, map[string]string{"info": s.registry.SystemInfo()})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	writeData(w, map[string]string{"config": s.registry.ExportConfig()})
}

func (s *Server) handleAddURL(w http.ResponseWriter, r *http.Request) {
	url := strings.TrimSpace(r.FormValue("url"))
	if url == "" {
		writeError(w, http.StatusOK, "url is required")
		return
	}
	if err := s.registry.AddURL(url); err != nil {
		writeError(w, http.StatusOK, err.Error())
		return
	}
	writeMessage(w, "URL added")
}

func (s *Server) handleRemoveURL(w http.ResponseWriter, r *http.Request) {
	if err := s.registry.RemoveURL(r.FormValue("url")); err != nil {
		writeError(w, http.StatusOK, err.Error())
		return
	}
	writeMessage(w, "URL removed")
}

func (s *Server) handleSetURLInterval(w http.ResponseWriter, r *http.Request) {
	interval, ok := formInt(w, r, "interval", core.MinIntervalSeconds)
	if !ok {
		return
	}
	if err := s.registry.SetURLInterval(r.FormValue("url"), interval); err != nil {
		writeError(w, http.StatusOK, err.Error())
		return
	}
	writeMessage(w, "Interval updated")
}

func (s *Server) handleTestURL(w http.ResponseWriter, r *http.Request) {
	url := strings.TrimSpace(r.FormValue("url"))
	if url == "" {
		writeError(w, http.StatusOK, "url is required")
		return
	}
	accessible := s.probe(r.Context(), url)
	s.registry.RecordCheck(url, accessible)
	writeData(w, map[string]any{"url": url, "accessible": accessible})
}

func (s *Server) handleTestAll(w http.ResponseWriter, r *http.Request) {
	online := 0
	urls := s.registry.URLs()
	for _, u := range urls {
		accessible := s.probe(r.Context(), u.URL)
		s.registry.RecordCheck(u.URL, accessible)
		if accessible {
			online++
		}
	}
	writeData(w, map[string]int{"tested": len(urls), "online": online})
}

func (s *Server) handleRunning(running bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.registry.SetRunning(running); err != nil {
			writeError(w, http.StatusOK, err.Error())
			return
		}
		if running {
			writeMessage(w, "Service started")
		} else {
			writeMessage(w, "Service stopped")
		}
	}
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	if err := s.registry.Restart(); err != nil {
		writeError(w, http.StatusOK, err.Error())
		return
	}
	if s.PlainRestart {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = io.WriteString(w, "OK")
		return
	}
	writeMessage(w, "Service restarted")
}

func (s *Server) handleSetInterval(w http.ResponseWriter, r *http.Request) {
	interval, ok := formInt(w, r, "interval", core.MinIntervalSeconds)
	if !ok {
		return
	}
	s.registry.SetDefaultInterval(interval)
	writeMessage(w, "Default interval updated")
}

func (s *Server) handleSetTimeout(w http.ResponseWriter, r *http.Request) {
	timeout, ok := formInt(w, r, "timeout", core.MinTimeoutSeconds)
	if !ok {
		return
	}
	s.registry.SetTimeout(timeout)
	writeMessage(w, "Timeout updated")
}

func (s *Server) handleSetPreset(w http.ResponseWriter, r *http.Request) {
	if err := s.registry.ApplyPreset(r.FormValue("preset")); err != nil {
		writeError(w, http.StatusOK, err.Error())
		return
	}
	writeMessage(w, "Preset applied")
}

func (s *Server) handleAutostart(enabled bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.registry.SetAutostart(enabled)
		writeMessage(w, "Autostart updated")
	}
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBodyBytes)
	text := r.FormValue("config")
	if strings.TrimSpace(text) == "" {
		writeError(w, http.StatusOK, "config is required")
		return
	}
	if err := s.registry.ImportConfig(text); err != nil {
		writeError(w, http.StatusOK, err.Error())
		return
	}
	writeMessage(w, "Configuration imported")
}

func (s *Server) handleClearURLs(w http.ResponseWriter, r *http.Request) {
	s.registry.ClearURLs()
	writeMessage(w, "All URLs cleared")
}

func (s *Server) handleUninstall(w http.ResponseWriter, r *http.Request) {
	s.registry.Uninstall()
	writeMessage(w, "page-reloader uninstalled")
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	for _, mf := range s.metricFamilies() {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			slog.Warn("write metrics", "error", err)
			return
		}
	}
}

func (s *Server) metricFamilies() []*dto.MetricFamily {
	urls := s.registry.URLs()
	online := 0
	for _, u := range urls {
		if u.Status == core.StatusOnline {
			online++
		}
	}
	running := 0.0
	if s.registry.Running() {
		running = 1
	}
	return []*dto.MetricFamily{
		gauge("page_reloader_running", "Service running state (1=running, 0=stopped).", running),
		gauge("page_reloader_urls", "Monitored URLs.", float64(len(urls))),
		gauge("page_reloader_urls_online", "Monitored URLs whose last check succeeded.", float64(online)),
	}
}

func gauge(name, help string, value float64) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name:   proto.String(name),
		Help:   proto.String(help),
		Type:   dto.MetricType_GAUGE.Enum(),
		Metric: []*dto.Metric{{Gauge: &dto.Gauge{Value: proto.Float64(value)}}},
	}
}

func formInt(w http.ResponseWriter, r *http.Request, key string, min int) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(r.FormValue(key)))
	if err != nil || v < min {
		writeError(w, http.StatusOK, "invalid "+key)
		return 0, false
	}
	return v, true
}

type response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, response{Success: true, Data: data})
}

func writeMessage(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, response{Success: true, Message: message})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, response{Success: false, Error: message})
}

func writeJSON(w http.ResponseWriter, status int, payload response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// ListenAndServe serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
