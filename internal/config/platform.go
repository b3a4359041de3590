package config

import (
	"fmt"
	"strings"
	"time"
)

// PlatformConfig holds chat-platform API client configuration.
type PlatformConfig struct {
	// BaseURL is the platform Web API root (e.g. https://slack.com/api).
	BaseURL string
	// ClientID is the OAuth client id issued for the app.
	ClientID string
	// ClientSecret is the OAuth client secret issued for the app.
	ClientSecret string
	// RequestTimeout is the fixed timeout applied to every outbound call.
	RequestTimeout time.Duration
}

// LoadPlatformConfigFromEnv loads platform client configuration from environment variables.
func LoadPlatformConfigFromEnv() PlatformConfig {
	return PlatformConfig{
		BaseURL:        GetEnv("PLATFORM_BASE_URL", "https://slack.com/api"),
		ClientID:       GetEnv("PLATFORM_CLIENT_ID", ""),
		ClientSecret:   GetEnv("PLATFORM_CLIENT_SECRET", ""),
		RequestTimeout: GetEnvDuration("PLATFORM_REQUEST_TIMEOUT", 10*time.Second),
	}
}

// Validate validates platform configuration.
func (c PlatformConfig) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("BaseURL must not be empty")
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("invalid BaseURL: %s (must be an http(s) URL)", c.BaseURL)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("RequestTimeout must be greater than 0")
	}
	return nil
}
