// Package config handles application configuration from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultMaxUploadBytes is the media size ceiling (4 MiB).
const DefaultMaxUploadBytes = 4 * 1024 * 1024

// Config represents the application configuration.
type Config struct {
	Server     ServerConfig    `yaml:"server"`
	Database   DatabaseConfig  `yaml:"database"`
	LLM        LLMConfig       `yaml:"llm"`
	Analysis   AnalysisConfig  `yaml:"analysis"`
	RateLimits RateLimitConfig `yaml:"rate_limits"`
	Settings   SettingsConfig  `yaml:"settings"`
	Logging    LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	Port     int  `yaml:"port"`
	EnableUI bool `yaml:"enable_ui"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite
	Path   string `yaml:"path"`
}

type LLMConfig struct {
	Provider  string        `yaml:"provider"` // gemini, openai
	Model     string        `yaml:"model"`
	APIKey    string        `yaml:"api_key"`
	BaseURL   string        `yaml:"base_url"`
	WebSearch bool          `yaml:"web_search"`
	FastMode  bool          `yaml:"fast_mode"`
	Timeout   time.Duration `yaml:"timeout"` // 0 disables the explicit deadline
}

type AnalysisConfig struct {
	MaxUploadBytes  int64  `yaml:"max_upload_bytes"`
	DefaultLanguage string `yaml:"default_language"`
}

type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"default_requests_per_minute"`
}

type SettingsConfig struct {
	CacheSize int `yaml:"cache_size"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:     8080,
			EnableUI: true,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			Path:   "./data/detector.db",
		},
		LLM: LLMConfig{
			Provider:  "gemini",
			Model:     "gemini-2.5-flash",
			WebSearch: true,
			FastMode:  true,
		},
		Analysis: AnalysisConfig{
			MaxUploadBytes:  DefaultMaxUploadBytes,
			DefaultLanguage: "English",
		},
		RateLimits: RateLimitConfig{
			RequestsPerMinute: 30,
		},
		Settings: SettingsConfig{
			CacheSize: 64,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s (run with --generate-config to create one)", path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML configuration, applying defaults, environment
// interpolation and the credential fallback.
func Parse(data []byte) (*Config, error) {
	content := interpolateEnvVars(string(data))

	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(content), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyCredentialFallback()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// GenerateSample creates a sample configuration file.
func GenerateSample(path string) error {
	sample := `# Misinformation Detector configuration

server:
  port: 8080
  enable_ui: true

database:
  driver: sqlite
  path: ./data/detector.db

llm:
  provider: gemini  # gemini or openai
  model: gemini-2.5-flash
  api_key: ${API_KEY}
  web_search: true   # ground answers with Google Search
  fast_mode: true    # disable extended reasoning
  # timeout: 60s

  # For OpenAI (no search grounding; URLs are fetched locally):
  # provider: openai
  # model: gpt-4o-mini
  # api_key: ${OPENAI_API_KEY}

analysis:
  max_upload_bytes: 4194304
  default_language: English

rate_limits:
  default_requests_per_minute: 30

settings:
  cache_size: 64

logging:
  level: info  # debug, info, warn, error
  format: json # json or text
`
	return os.WriteFile(path, []byte(sample), 0644)
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	if c.Database.Driver != "sqlite" {
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	switch c.LLM.Provider {
	case "gemini", "openai":
	default:
		return fmt.Errorf("unsupported LLM provider: %s", c.LLM.Provider)
	}

	if c.LLM.APIKey == "" || isPlaceholder(c.LLM.APIKey) {
		return fmt.Errorf("API key is required for provider %s (set API_KEY)", c.LLM.Provider)
	}

	if c.LLM.Timeout < 0 {
		return fmt.Errorf("invalid LLM timeout: %s", c.LLM.Timeout)
	}

	if c.Analysis.MaxUploadBytes <= 0 {
		return fmt.Errorf("invalid max_upload_bytes: %d", c.Analysis.MaxUploadBytes)
	}

	if c.Analysis.DefaultLanguage == "" {
		return fmt.Errorf("default_language is required")
	}

	if c.RateLimits.RequestsPerMinute <= 0 {
		return fmt.Errorf("invalid requests per minute: %d", c.RateLimits.RequestsPerMinute)
	}

	return nil
}

// applyCredentialFallback fills the API key from the environment when the
// file leaves it blank or unresolved.
func (c *Config) applyCredentialFallback() {
	if c.LLM.APIKey != "" && !isPlaceholder(c.LLM.APIKey) {
		return
	}
	envVars := []string{"API_KEY", "GEMINI_API_KEY"}
	if c.LLM.Provider == "openai" {
		envVars = []string{"API_KEY", "OPENAI_API_KEY"}
	}
	for _, name := range envVars {
		if v := os.Getenv(name); v != "" {
			c.LLM.APIKey = v
			return
		}
	}
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

func isPlaceholder(s string) bool {
	return envVarPattern.MatchString(s)
}

// interpolateEnvVars replaces ${VAR_NAME} with environment variable values.
func interpolateEnvVars(content string) string {
	return envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		varName := strings.TrimPrefix(strings.TrimSuffix(match, "}"), "${")
		if value := os.Getenv(varName); value != "" {
			return value
		}
		return match // Keep original if not set
	})
}
