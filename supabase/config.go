package supabase

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the connection settings for the hosted backend.
// All fields can be loaded from HOSTWISE_* environment variables.
type Config struct {
	// URL is the project base URL, e.g. https://xyzcompany.supabase.co.
	URL string `envconfig:"SUPABASE_URL" default:"http://localhost:54321"`

	// AnonKey is the public anonymous API key. Row-level security on the
	// hosted database scopes what this key can reach.
	AnonKey string `envconfig:"SUPABASE_ANON_KEY" default:"dev-anon-key"`

	// HTTPTimeout bounds every request to the backend.
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`
}

// ConfigFromEnv loads configuration from HOSTWISE_SUPABASE_URL,
// HOSTWISE_SUPABASE_ANON_KEY and HOSTWISE_HTTP_TIMEOUT, falling back to
// local development defaults.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := envconfig.Process("hostwise", &cfg); err != nil {
		return Config{}, fmt.Errorf("hostwise/supabase: load config: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for obvious mistakes.
func (c Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("hostwise/supabase: URL is required")
	}
	if !strings.HasPrefix(c.URL, "http://") && !strings.HasPrefix(c.URL, "https://") {
		return fmt.Errorf("hostwise/supabase: URL must start with http:// or https://")
	}
	if c.AnonKey == "" {
		return fmt.Errorf("hostwise/supabase: anon key is required")
	}
	return nil
}

// httpClient builds the shared HTTP client with the configured timeout.
func (c Config) httpClient() *http.Client {
	timeout := c.HTTPTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Timeout: timeout}
}
