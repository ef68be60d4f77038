package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

const (
	DefaultAgentConfigPath = "config/agent.json"
	defaultListenHost      = "127.0.0.1"
	defaultPort            = 8088
	defaultEndpointPath    = "/cgi-bin/page-reloader-api"
	defaultIntervalSeconds = 30
	defaultCheckTimeout    = 10
)

// AgentConfig configures the stand-in control endpoint.
type AgentConfig struct {
	ListenHost      string `json:"listen_host"`
	Port            int    `json:"port"`
	EndpointPath    string `json:"endpoint_path"`
	DefaultInterval int    `json:"default_interval_seconds"`
	CheckTimeout    int    `json:"check_timeout_seconds"`
	LogLevel        string `json:"log_level,omitempty"`
}

func DefaultAgentConfig() AgentConfig {
	return AgentConfig{
		ListenHost:      defaultListenHost,
		Port:            defaultPort,
		EndpointPath:    defaultEndpointPath,
		DefaultInterval: defaultIntervalSeconds,
		CheckTimeout:    defaultCheckTimeout,
		LogLevel:        defaultLogLevel,
	}
}

func ResolveAgentConfigPath() string {
	if fromEnv := os.Getenv("RELOADER_AGENT_CONFIG"); fromEnv != "" {
		return fromEnv
	}
	return DefaultAgentConfigPath
}

func LoadAgentConfig(path string) (AgentConfig, error) {
	cfg := DefaultAgentConfig()

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&cfg); err != nil {
		return DefaultAgentConfig(), err
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func (c *AgentConfig) applyDefaults() {
	if c.ListenHost == "" {
		c.ListenHost = defaultListenHost
	}
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.EndpointPath == "" {
		c.EndpointPath = defaultEndpointPath
	}
	if !strings.HasPrefix(c.EndpointPath, "/") {
		c.EndpointPath = "/" + c.EndpointPath
	}
	if c.DefaultInterval == 0 {
		c.DefaultInterval = defaultIntervalSeconds
	}
	if c.CheckTimeout == 0 {
		c.CheckTimeout = defaultCheckTimeout
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
}

func (c AgentConfig) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.DefaultInterval < 5 {
		return fmt.Errorf("default_interval_seconds must be >= 5")
	}
	if c.CheckTimeout <= 0 {
		return fmt.Errorf("check_timeout_seconds must be > 0")
	}
	return nil
}

func (c AgentConfig) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.ListenHost, c.Port)
}

// EndpointURL is what a panel on the same machine should use.
func (c AgentConfig) EndpointURL() string {
	host := c.ListenHost
	if host == "" || host == "0.0.0.0" {
		host = "127.0.0.1"
	}
	return fmt.Sprintf("http://%s:%d%s", host, c.Port, c.EndpointPath)
}
