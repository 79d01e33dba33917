// Package config loads the mealmind configuration: YAML file first,
// environment variables override.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all mealmind configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Model providers
	Text   TextModelConfig   `yaml:"text_model"`
	Vision VisionModelConfig `yaml:"vision_model"`

	// Nutrition catalogs
	Nutrition NutritionConfig `yaml:"nutrition"`

	// Observability
	Opik OpikConfig `yaml:"opik"`

	// Meal history storage
	Storage StorageConfig `yaml:"storage"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// TextModelConfig configures the text completion provider.
type TextModelConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`
}

// VisionModelConfig configures the vision provider.
type VisionModelConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// NutritionConfig configures the verified nutrition lookups.
type NutritionConfig struct {
	FDCAPIKey  string `yaml:"fdc_api_key"`
	FDCBaseURL string `yaml:"fdc_base_url"`
	OFFBaseURL string `yaml:"off_base_url"`
}

// OpikConfig configures trace export. Disabled when the API key is empty.
type OpikConfig struct {
	APIKey    string `yaml:"api_key"`
	Workspace string `yaml:"workspace"`
	BaseURL   string `yaml:"base_url"`
	Project   string `yaml:"project"`
}

// StorageConfig configures the local meal history database.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	JSONFormat bool   `yaml:"json_format"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Name:    "mealmind",
		Version: "1.0.0",
		Text: TextModelConfig{
			Model:   "openai/gpt-oss-120b",
			BaseURL: "https://api.groq.com/openai/v1",
			Timeout: "30s",
		},
		Vision: VisionModelConfig{
			Model: "gemini-2.0-flash",
		},
		Nutrition: NutritionConfig{
			FDCAPIKey:  "DEMO_KEY",
			FDCBaseURL: "https://api.nal.usda.gov/fdc/v1",
			OFFBaseURL: "https://world.openfoodfacts.org",
		},
		Opik: OpikConfig{
			BaseURL: "https://www.comet.com/opik/api",
			Project: "mealmind",
		},
		Storage: StorageConfig{
			DatabasePath: "mealmind.db",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads the YAML config at path on top of the defaults. A missing file
// is not an error; environment variables are applied last.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("GROQ_API_KEY"); key != "" {
		c.Text.APIKey = key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Vision.APIKey = key
	}
	if key := os.Getenv("FDC_API_KEY"); key != "" {
		c.Nutrition.FDCAPIKey = key
	}
	if key := os.Getenv("OPIK_API_KEY"); key != "" {
		c.Opik.APIKey = key
	}
	if ws := os.Getenv("OPIK_WORKSPACE"); ws != "" {
		c.Opik.Workspace = ws
	}
	if path := os.Getenv("MEALMIND_DB"); path != "" {
		c.Storage.DatabasePath = path
	}
	if level := os.Getenv("MEALMIND_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}
