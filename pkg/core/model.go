package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type URLStatus string

const (
	StatusOnline  URLStatus = "online"
	StatusOffline URLStatus = "offline"
	StatusUnknown URLStatus = "unknown"
)

// ParseURLStatus maps anything the service reports onto the closed set,
// falling back to unknown.
func ParseURLStatus(raw string) URLStatus {
	switch URLStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case StatusOnline:
		return StatusOnline
	case StatusOffline:
		return StatusOffline
	default:
		return StatusUnknown
	}
}

// MonitoredURL is one entry of the service's URL registry. URL is the key.
type MonitoredURL struct {
	URL             string    `json:"url"`
	Status          URLStatus `json:"status"`
	Interval        int       `json:"interval"`
	DefaultInterval int       `json:"defaultInterval"`
}

// UsesDefault reports whether the entry is checked at the service-wide interval.
func (u MonitoredURL) UsesDefault() bool {
	return u.Interval == u.DefaultInterval
}

func (u *MonitoredURL) UnmarshalJSON(data []byte) error {
	var raw struct {
		URL             string  `json:"url"`
		Status          string  `json:"status"`
		Interval        FlexInt `json:"interval"`
		DefaultInterval FlexInt `json:"defaultInterval"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	u.URL = strings.TrimSpace(raw.URL)
	u.Status = ParseURLStatus(raw.Status)
	u.Interval = int(raw.Interval)
	u.DefaultInterval = int(raw.DefaultInterval)
	return nil
}

type ServiceStatus struct {
	Running bool `json:"running"`
}

type TimingConfig struct {
	DefaultIntervalSeconds int    `json:"interval"`
	TimeoutSeconds         int    `json:"timeout"`
	InfoText               string `json:"info"`
}

func (t *TimingConfig) UnmarshalJSON(data []byte) error {
	var raw struct {
		Interval FlexInt `json:"interval"`
		Timeout  FlexInt `json:"timeout"`
		Info     string  `json:"info"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	t.DefaultIntervalSeconds = int(raw.Interval)
	t.TimeoutSeconds = int(raw.Timeout)
	t.InfoText = raw.Info
	return nil
}

// LogTail holds service log lines, most recent last.
type LogTail []string

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

type Notification struct {
	ID        uint64
	Message   string
	Severity  Severity
	CreatedAt time.Time
}

// FlexInt decodes JSON numbers as well as numeric strings ("30").
type FlexInt int

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = 0
			return nil
		}
		data = []byte(s)
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid integer %q", string(data))
	}
	*f = FlexInt(v)
	return nil
}

// FormatInterval renders seconds the way the panel shows them: 45s, 5m, 2h.
func FormatInterval(seconds int) string {
	switch {
	case seconds < 60:
		return fmt.Sprintf("%ds", seconds)
	case seconds < 3600:
		return fmt.Sprintf("%dm", seconds/60)
	default:
		return fmt.Sprintf("%dh", seconds/3600)
	}
}
