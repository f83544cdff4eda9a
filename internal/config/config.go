package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "PAINT"

// Config holds application configuration sourced from environment variables.
type Config struct {
	Env         string `envconfig:"ENV" default:"development"`
	Address     string `envconfig:"ADDRESS" default:":8080"`
	DBPath      string `envconfig:"DB_PATH" default:"./paint.db"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	CatalogPath string `envconfig:"CATALOG_PATH"`

	// CORSOrigins lists the browser origins allowed to call the API.
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`

	AdminEmail    string `envconfig:"ADMIN_EMAIL"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD"`
	SessionSecret string `envconfig:"SESSION_SECRET"`

	Assistant Assistant
}

// Assistant configures the relay to the hosted reasoning service.
type Assistant struct {
	URL     string        `envconfig:"URL"`
	UserID  string        `envconfig:"USER_ID" default:"user-generic"`
	Timeout time.Duration `envconfig:"TIMEOUT" default:"60s"`
}

// Enabled reports whether an assistant endpoint is configured.
func (a Assistant) Enabled() bool {
	return a.URL != ""
}

// IsDev reports whether the service runs in a development environment.
func (c Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// Warnings lists settings that are missing but not required to start.
func (c Config) Warnings() []string {
	var warnings []string
	if c.AdminEmail == "" {
		warnings = append(warnings, "PAINT_ADMIN_EMAIL is not set")
	}
	if c.AdminPassword == "" {
		warnings = append(warnings, "PAINT_ADMIN_PASSWORD is not set")
	}
	if c.SessionSecret == "" {
		warnings = append(warnings, "PAINT_SESSION_SECRET is not set")
	}
	if !c.Assistant.Enabled() {
		warnings = append(warnings, "PAINT_ASSISTANT_URL is not set, assistant routes are disabled")
	}
	return warnings
}

// Load reads the .env file, if any, then the environment.
func Load() (Config, error) {
	// Local development only; real deployments inject the environment.
	if err := loadDotEnv(".env"); err != nil {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("process environment: %w", err)
	}
	return cfg, nil
}
