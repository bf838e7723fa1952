package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	AnthropicAPIKey string
	OpenAIAPIKey    string
	GoogleAPIKey    string
	DeepSeekAPIKey  string
	Redis           RedisConfig
	Execution       ExecutionConfig
	RateCard        *RateCard
	ConfigDir       string
}

// FileConfig represents the structure of ~/.clarity/config.yaml.
// API keys are never read from this file.
type FileConfig struct {
	Redis     RedisConfig     `yaml:"redis"`
	Execution ExecutionConfig `yaml:"execution"`
}

// RedisConfig locates the context cache. An empty Addr selects the in-memory cache.
type RedisConfig struct {
	Addr     string `yaml:"addr,omitempty"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`
	Key      string `yaml:"key,omitempty"`
}

// ExecutionConfig bounds each task execution.
type ExecutionConfig struct {
	AttemptTimeoutMs int  `yaml:"attempt_timeout_ms,omitempty"`
	CacheTimeoutMs   int  `yaml:"cache_timeout_ms,omitempty"`
	CacheLimit       int  `yaml:"cache_limit,omitempty"`
	MaxOutputTokens  int  `yaml:"max_output_tokens,omitempty"`
	RecordContext    bool `yaml:"record_context,omitempty"`
}

// AttemptTimeout is the bound on a single backend invocation.
func (e ExecutionConfig) AttemptTimeout() time.Duration {
	return time.Duration(e.AttemptTimeoutMs) * time.Millisecond
}

// CacheTimeout is the bound on a context cache lookup.
func (e ExecutionConfig) CacheTimeout() time.Duration {
	return time.Duration(e.CacheTimeoutMs) * time.Millisecond
}

// DefaultExecutionConfig returns the execution defaults.
func DefaultExecutionConfig() ExecutionConfig {
	var e ExecutionConfig
	applyExecutionDefaults(&e)
	return e
}

// Load reads configuration from config files and environment variables.
// Environment variables take precedence over file configuration.
func Load() (*Config, error) {
	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	cfg := build(configDir)

	ratePath := filepath.Join(configDir, "ratecard.yaml")
	if _, err := os.Stat(ratePath); err == nil {
		card, err := LoadRateCard(ratePath)
		if err != nil {
			return nil, fmt.Errorf("failed to load rate card: %w", err)
		}
		cfg.RateCard = card
	} else {
		cfg.RateCard = DefaultRateCard()
	}

	return cfg, nil
}

// LoadWithRateCard loads config with a specific rate card file.
func LoadWithRateCard(ratePath string) (*Config, error) {
	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	cfg := build(configDir)

	card, err := LoadRateCard(ratePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load rate card from %s: %w", ratePath, err)
	}
	cfg.RateCard = card

	return cfg, nil
}

func build(configDir string) *Config {
	fileConfig := loadFileConfig(filepath.Join(configDir, "config.yaml"))

	cfg := &Config{
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		GoogleAPIKey:    os.Getenv("GOOGLE_API_KEY"),
		DeepSeekAPIKey:  os.Getenv("DEEPSEEK_API_KEY"),
		Redis:           fileConfig.Redis,
		Execution:       fileConfig.Execution,
		ConfigDir:       configDir,
	}
	cfg.Redis.Addr = getEnvOrDefault("CLARITY_REDIS_ADDR", cfg.Redis.Addr)
	if cfg.Redis.Key == "" {
		cfg.Redis.Key = "clarity:context"
	}
	applyExecutionDefaults(&cfg.Execution)
	return cfg
}

// HasVendor returns true if the credentials for the given vendor are configured.
func (c *Config) HasVendor(name string) bool {
	switch name {
	case VendorAnthropic:
		return c.AnthropicAPIKey != ""
	case VendorOpenAI:
		return c.OpenAIAPIKey != ""
	case VendorGoogle:
		return c.GoogleAPIKey != ""
	case VendorDeepSeek:
		return c.DeepSeekAPIKey != ""
	case VendorMock:
		return true
	default:
		return false
	}
}

// CheckVendors verifies that every backend on the rate card can be constructed.
// A declared backend without credentials is a startup error, not a runtime one.
func (c *Config) CheckVendors() error {
	if c.RateCard == nil {
		return fmt.Errorf("no rate card configured")
	}
	for _, b := range c.RateCard.Backends {
		if !c.HasVendor(b.Vendor) {
			return fmt.Errorf("backend %q requires %s credentials", b.ID, b.Vendor)
		}
	}
	return nil
}

// loadFileConfig reads the config file, returning empty config if not found.
func loadFileConfig(path string) *FileConfig {
	cfg := &FileConfig{}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}

	_ = yaml.Unmarshal(data, cfg) // Ignore parse errors, use defaults
	return cfg
}

func applyExecutionDefaults(e *ExecutionConfig) {
	if e.AttemptTimeoutMs <= 0 {
		e.AttemptTimeoutMs = 30000
	}
	if e.CacheTimeoutMs <= 0 {
		e.CacheTimeoutMs = 2000
	}
	if e.CacheLimit <= 0 {
		e.CacheLimit = 3
	}
	if e.MaxOutputTokens <= 0 {
		e.MaxOutputTokens = 4096
	}
}

// getEnvOrDefault returns the environment variable value if set,
// otherwise returns the default value.
func getEnvOrDefault(envVar, defaultValue string) string {
	if val := os.Getenv(envVar); val != "" {
		return val
	}
	return defaultValue
}

func getConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	configDir := filepath.Join(home, ".clarity")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", err
	}
	return configDir, nil
}
