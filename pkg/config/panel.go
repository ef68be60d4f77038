package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
)

const (
	DefaultPanelConfigPath = "config/panel.json"
	defaultEndpoint        = "http://192.168.1.1/cgi-bin/page-reloader-api"
	defaultRefreshSeconds  = 30
	defaultNoticeSeconds   = 5
	defaultTimeoutSeconds  = 10
	defaultRequestRate     = 5
	defaultTab             = "dashboard"
	defaultLogLevel        = "INFO"
)

type PanelConfig struct {
	Endpoint             string  `json:"endpoint"`
	RefreshIntervalSec   int     `json:"refresh_interval_seconds"`
	NotificationSec      int     `json:"notification_seconds"`
	RequestTimeoutSec    int     `json:"request_timeout_seconds"`
	MaxRequestsPerSecond float64 `json:"max_requests_per_second"`
	DefaultTab           string  `json:"default_tab,omitempty"`
	LogLevel             string  `json:"log_level,omitempty"`
}

func DefaultPanelConfig() PanelConfig {
	return PanelConfig{
		Endpoint:             defaultEndpoint,
		RefreshIntervalSec:   defaultRefreshSeconds,
		NotificationSec:      defaultNoticeSeconds,
		RequestTimeoutSec:    defaultTimeoutSeconds,
		MaxRequestsPerSecond: defaultRequestRate,
		DefaultTab:           defaultTab,
		LogLevel:             defaultLogLevel,
	}
}

func ResolvePanelConfigPath() string {
	if fromEnv := os.Getenv("RELOADPANEL_CONFIG"); fromEnv != "" {
		return fromEnv
	}
	return DefaultPanelConfigPath
}

// LoadPanelConfig reads path; a missing file yields the defaults.
// RELOADPANEL_ENDPOINT overrides the endpoint either way.
func LoadPanelConfig(path string) (PanelConfig, error) {
	cfg := DefaultPanelConfig()

	file, err := os.Open(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, err
	default:
		defer file.Close()
		if err := json.NewDecoder(file).Decode(&cfg); err != nil {
			return DefaultPanelConfig(), fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if endpoint := os.Getenv("RELOADPANEL_ENDPOINT"); endpoint != "" {
		cfg.Endpoint = endpoint
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *PanelConfig) applyDefaults() {
	c.Endpoint = strings.TrimSpace(c.Endpoint)
	if c.Endpoint == "" {
		c.Endpoint = defaultEndpoint
	}
	if c.RefreshIntervalSec == 0 {
		c.RefreshIntervalSec = defaultRefreshSeconds
	}
	if c.NotificationSec == 0 {
		c.NotificationSec = defaultNoticeSeconds
	}
	if c.RequestTimeoutSec == 0 {
		c.RequestTimeoutSec = defaultTimeoutSeconds
	}
	if c.MaxRequestsPerSecond == 0 {
		c.MaxRequestsPerSecond = defaultRequestRate
	}
	if c.DefaultTab == "" {
		c.DefaultTab = defaultTab
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
}

func (c PanelConfig) Validate() error {
	u, err := url.Parse(c.Endpoint)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("invalid endpoint: %q", c.Endpoint)
	}
	if c.RefreshIntervalSec <= 0 {
		return fmt.Errorf("refresh_interval_seconds must be > 0")
	}
	if c.NotificationSec <= 0 {
		return fmt.Errorf("notification_seconds must be > 0")
	}
	if c.RequestTimeoutSec <= 0 {
		return fmt.Errorf("request_timeout_seconds must be > 0")
	}
	if c.MaxRequestsPerSecond < 0 {
		return fmt.Errorf("max_requests_per_second must be >= 0")
	}
	return nil
}

// ParseLogLevel maps DEBUG/INFO/WARN/ERROR onto slog levels, defaulting to info.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
