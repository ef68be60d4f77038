package panel

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"reloadpanel/pkg/client"
	"reloadpanel/pkg/core"
)

// The endpoint sometimes answers with plain text, or with an envelope whose
// data is a bare string instead of the documented object. The parsers below
// accept either and fall back to reading the text.

var errEmptyPayload = errors.New("response carries no data")

// field returns data[key] when data is an object holding key.
func field(res client.Result, key string) (json.RawMessage, bool) {
	if res.Kind != client.KindStructured || len(res.Data) == 0 || res.Data[0] != '{' {
		return nil, false
	}
	var obj map[string]json.RawMessage
	if json.Unmarshal(res.Data, &obj) != nil {
		return nil, false
	}
	raw, ok := obj[key]
	return raw, ok && string(raw) != "null"
}

func parseStatus(res client.Result) (core.ServiceStatus, error) {
	if text, ok := res.AsText(); ok {
		return core.ServiceStatus{Running: textSaysRunning(text)}, nil
	}
	raw, ok := field(res, "running")
	if !ok {
		return core.ServiceStatus{}, fmt.Errorf("status: %w", errEmptyPayload)
	}
	var running bool
	if err := json.Unmarshal(raw, &running); err != nil {
		return core.ServiceStatus{}, fmt.Errorf("status: %w", err)
	}
	return core.ServiceStatus{Running: running}, nil
}

func textSaysRunning(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "running") && !strings.Contains(lower, "not running")
}

func parseURLs(res client.Result, defaultInterval int) ([]core.MonitoredURL, error) {
	if text, ok := res.AsText(); ok {
		return urlsFromText(text, defaultInterval), nil
	}
	// No data, a null list or an object without urls all mean nothing is
	// configured.
	raw := res.Data
	if len(raw) > 0 && raw[0] == '{' {
		inner, ok := field(res, "urls")
		if !ok {
			return []core.MonitoredURL{}, nil
		}
		raw = inner
	}
	if len(raw) == 0 || string(raw) == "null" {
		return []core.MonitoredURL{}, nil
	}
	if raw[0] != '[' {
		return nil, fmt.Errorf("list-urls: %w", errEmptyPayload)
	}
	urls := []core.MonitoredURL{}
	if err := json.Unmarshal(raw, &urls); err != nil {
		return nil, fmt.Errorf("list-urls: %w", err)
	}
	if urls == nil {
		urls = []core.MonitoredURL{}
	}
	for i := range urls {
		if urls[i].DefaultInterval <= 0 {
			urls[i].DefaultInterval = defaultInterval
		}
		if urls[i].Interval <= 0 {
			urls[i].Interval = urls[i].DefaultInterval
		}
	}
	return urls, nil
}

func urlsFromText(text string, defaultInterval int) []core.MonitoredURL {
	var urls []core.MonitoredURL
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !strings.Contains(line, "http") {
			continue
		}
		urls = append(urls, core.MonitoredURL{
			URL:             line,
			Status:          core.StatusUnknown,
			Interval:        defaultInterval,
			DefaultInterval: defaultInterval,
		})
	}
	return urls
}

// parseTiming keeps the numbers from prev when the reply is text only.
func parseTiming(res client.Result, prev *core.TimingConfig) (core.TimingConfig, error) {
	if text, ok := res.AsText(); ok {
		cfg := core.TimingConfig{InfoText: text}
		if prev != nil {
			cfg.DefaultIntervalSeconds = prev.DefaultIntervalSeconds
			cfg.TimeoutSeconds = prev.TimeoutSeconds
		}
		return cfg, nil
	}
	var cfg core.TimingConfig
	if err := res.Decode(&cfg); err != nil {
		return core.TimingConfig{}, err
	}
	return cfg, nil
}

func parseLogs(res client.Result) (core.LogTail, error) {
	if text, ok := res.AsText(); ok {
		return logsFromText(text), nil
	}
	raw := res.Data
	if inner, ok := field(res, "logs"); ok {
		raw = inner
	}
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("logs: %w", err)
		}
		return logsFromText(s), nil
	}
	if len(raw) == 0 || raw[0] != '[' {
		return nil, fmt.Errorf("logs: %w", errEmptyPayload)
	}
	var logs core.LogTail
	if err := json.Unmarshal(raw, &logs); err != nil {
		return nil, fmt.Errorf("logs: %w", err)
	}
	if logs == nil {
		logs = core.LogTail{}
	}
	return logs, nil
}

func logsFromText(text string) core.LogTail {
	logs := core.LogTail{}
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimRight(line, "\r"); strings.TrimSpace(line) != "" {
			logs = append(logs, line)
		}
	}
	return logs
}

// parseText reads a {key: "..."} payload, a bare string or a text reply.
func parseText(res client.Result, key string) (string, error) {
	if text, ok := res.AsText(); ok {
		return text, nil
	}
	raw, ok := field(res, key)
	if !ok {
		return "", fmt.Errorf("%s: %w", res.Action, errEmptyPayload)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("%s: %w", res.Action, err)
	}
	return s, nil
}

func parseAccessible(res client.Result) bool {
	if text, ok := res.AsText(); ok {
		lower := strings.ToLower(strings.TrimSpace(text))
		if strings.Contains(lower, "not accessible") || strings.Contains(lower, "inaccessible") {
			return false
		}
		return lower == "ok" || strings.Contains(lower, "accessible") || strings.Contains(lower, "online")
	}
	raw, ok := field(res, "accessible")
	if !ok {
		return false
	}
	var accessible bool
	return json.Unmarshal(raw, &accessible) == nil && accessible
}
