/*
Package configs loads the application configuration from environment
variables, providing defaults and validation for each setting.
*/
package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// AppConfig holds every runtime setting the relay needs. All values come
// from environment variables; the struct is loaded once in main and passed
// by reference from there.
type AppConfig struct {
	// Environment selects logging and origin-check behavior ("development" or "production").
	Environment string

	// Port is the TCP port the HTTP server listens on.
	Port int

	// AllowedOrigin is the single origin permitted by CORS and the WebSocket
	// origin check outside development.
	AllowedOrigin string
}

const (
	defaultEnvironment = "development"
	defaultPort        = "4444"
	defaultOrigin      = "http://localhost:4200"
)

// LoadConfig reads and validates the configuration from the environment.
func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{}

	cfg.Environment = os.Getenv("ENVIRONMENT")
	if cfg.Environment == "" {
		cfg.Environment = defaultEnvironment
	}

	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = defaultPort
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT environment variable: %w", err)
	}
	if port < 1024 || port > 65535 {
		return nil, fmt.Errorf("port number %d is outside the allowed range (1024-65535)", port)
	}
	cfg.Port = port

	cfg.AllowedOrigin = strings.TrimSpace(os.Getenv("ALLOWED_ORIGIN"))
	if cfg.AllowedOrigin == "" {
		cfg.AllowedOrigin = defaultOrigin
	}

	return cfg, nil
}

// IsDevelopment reports whether the relay runs in the development environment.
func (c *AppConfig) IsDevelopment() bool {
	return c.Environment == "development"
}
