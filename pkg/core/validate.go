package core

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	MinIntervalSeconds = 5
	MinTimeoutSeconds  = 1
)

// ValidationError is bad local input. It never reaches the network.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ParseInterval validates a user-typed check interval in seconds.
func ParseInterval(raw string) (int, error) {
	return parseSeconds("interval", raw, MinIntervalSeconds,
		"Invalid interval. Must be %d seconds or more.")
}

// ParseTimeout validates a user-typed request timeout in seconds.
func ParseTimeout(raw string) (int, error) {
	return parseSeconds("timeout", raw, MinTimeoutSeconds,
		"Invalid timeout. Must be %d second or more.")
}

func parseSeconds(field, raw string, min int, message string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || v < min {
		return 0, invalid(field, message, min)
	}
	return v, nil
}

// ValidateMonitoredURL accepts absolute http(s) URLs with a host.
func ValidateMonitoredURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", invalid("url", "Please enter a URL")
	}
	u, err := url.Parse(trimmed)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", invalid("url", "Invalid URL %q. Use http:// or https:// with a host.", trimmed)
	}
	return trimmed, nil
}
