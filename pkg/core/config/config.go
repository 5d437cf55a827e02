// Package config holds the pipeline settings loaded from YAML with
// environment overrides for credentials-adjacent values.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

// Config is the full pipeline configuration. Zero values fall back to
// the defaults below, so a partial YAML file is fine.
type Config struct {
	// ContactEmail identifies this client to SEC EDGAR, which rejects
	// anonymous traffic. Required before any archive call.
	ContactEmail string `yaml:"contact_email"`

	RateLimit         int `yaml:"rate_limit"`
	RatePeriodSeconds int `yaml:"rate_period_seconds"`

	ChunkWindow  int `yaml:"chunk_window"`
	ChunkOverlap int `yaml:"chunk_overlap"`
	TopN         int `yaml:"top_n"`
	StepTopN     int `yaml:"step_top_n"`

	// ReportingYear marks the current reporting year for the
	// comparison-table filter; zero means the current calendar year.
	ReportingYear int `yaml:"reporting_year"`

	// Provider and EmbeddingProvider select the LLM backend by name
	// ("openai" or "gemini"); unknown names fall back to openai.
	Provider          string `yaml:"provider"`
	EmbeddingProvider string `yaml:"embedding_provider"`

	Model          string `yaml:"model"`
	RepairModel    string `yaml:"repair_model"`
	EmbeddingModel string `yaml:"embedding_model"`

	ListenAddr string `yaml:"listen_addr"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		RateLimit:         10,
		RatePeriodSeconds: 1,
		ChunkWindow:       1024,
		ChunkOverlap:      256,
		TopN:              100,
		StepTopN:          50,
		Provider:          "openai",
		EmbeddingProvider: "openai",
		Model:             "gpt-4o-mini",
		RepairModel:       "gpt-4o-mini",
		EmbeddingModel:    "text-embedding-3-small",
		ListenAddr:        ":8080",
	}
}

// Load reads the YAML file at path over the defaults. A missing file is
// not an error; the defaults plus environment overrides apply. The
// EDGAR_CONTACT_EMAIL environment variable wins over the file so
// deployments can keep the email out of checked-in config.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if email := os.Getenv("EDGAR_CONTACT_EMAIL"); email != "" {
		cfg.ContactEmail = email
	}
	return cfg, nil
}

// Validate checks the settings a run cannot proceed without.
func (c Config) Validate() error {
	if strings.TrimSpace(c.ContactEmail) == "" {
		return fmt.Errorf("contact_email is required: SEC EDGAR rejects requests without an identifying User-Agent")
	}
	if c.RateLimit <= 0 || c.RatePeriodSeconds <= 0 {
		return fmt.Errorf("rate_limit and rate_period_seconds must be positive")
	}
	if c.ChunkOverlap >= c.ChunkWindow {
		return fmt.Errorf("chunk_overlap (%d) must be smaller than chunk_window (%d)", c.ChunkOverlap, c.ChunkWindow)
	}
	return nil
}

// RatePeriod returns the limiter window as a duration.
func (c Config) RatePeriod() time.Duration {
	return time.Duration(c.RatePeriodSeconds) * time.Second
}
