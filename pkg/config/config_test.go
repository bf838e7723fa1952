package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestConfigIgnoresFileAPIKeys(t *testing.T) {
	home := t.TempDir()
	setHomeEnv(t, home)

	configDir := filepath.Join(home, ".clarity")
	if err := os.MkdirAll(configDir, 0700); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	configPath := filepath.Join(configDir, "config.yaml")
	data := []byte("api_keys:\n  anthropic: file-ant\n  openai: file-openai\nredis:\n  addr: cache:6379\n")
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("DEEPSEEK_API_KEY", "")
	t.Setenv("CLARITY_REDIS_ADDR", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AnthropicAPIKey != "" || cfg.OpenAIAPIKey != "" {
		t.Fatalf("expected file API keys to be ignored")
	}
	if cfg.Redis.Addr != "cache:6379" {
		t.Fatalf("expected redis addr from file, got %q", cfg.Redis.Addr)
	}
}

func TestConfigUsesEnv(t *testing.T) {
	home := t.TempDir()
	setHomeEnv(t, home)

	t.Setenv("ANTHROPIC_API_KEY", "env-ant")
	t.Setenv("OPENAI_API_KEY", "env-openai")
	t.Setenv("GOOGLE_API_KEY", "env-google")
	t.Setenv("DEEPSEEK_API_KEY", "env-deepseek")
	t.Setenv("CLARITY_REDIS_ADDR", "localhost:6380")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AnthropicAPIKey != "env-ant" || cfg.OpenAIAPIKey != "env-openai" || cfg.GoogleAPIKey != "env-google" || cfg.DeepSeekAPIKey != "env-deepseek" {
		t.Fatalf("expected env API keys to be used")
	}
	if cfg.Redis.Addr != "localhost:6380" {
		t.Fatalf("expected env redis addr, got %q", cfg.Redis.Addr)
	}
	if err := cfg.CheckVendors(); err != nil {
		t.Fatalf("expected default card to be satisfiable: %v", err)
	}
}

func TestExecutionDefaults(t *testing.T) {
	home := t.TempDir()
	setHomeEnv(t, home)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	e := cfg.Execution
	if e.AttemptTimeoutMs != 30000 || e.CacheTimeoutMs != 2000 || e.CacheLimit != 3 || e.MaxOutputTokens != 4096 {
		t.Fatalf("unexpected execution defaults: %+v", e)
	}
	if cfg.Redis.Key != "clarity:context" {
		t.Fatalf("unexpected redis key default %q", cfg.Redis.Key)
	}
}

func TestCheckVendorsMissingKey(t *testing.T) {
	cfg := &Config{OpenAIAPIKey: "k", RateCard: DefaultRateCard()}
	if err := cfg.CheckVendors(); err == nil {
		t.Fatalf("expected missing anthropic credentials to fail")
	}

	cfg = &Config{RateCard: MockRateCard()}
	if err := cfg.CheckVendors(); err != nil {
		t.Fatalf("mock card needs no credentials: %v", err)
	}
}

func TestLoadWithRateCard(t *testing.T) {
	home := t.TempDir()
	setHomeEnv(t, home)

	path := filepath.Join(t.TempDir(), "ratecard.yaml")
	if err := os.WriteFile(path, []byte(testRateCardYAML), 0600); err != nil {
		t.Fatalf("write rate card: %v", err)
	}

	cfg, err := LoadWithRateCard(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.RateCard.Backends) != 6 {
		t.Fatalf("expected 6 backends, got %d", len(cfg.RateCard.Backends))
	}
}

func setHomeEnv(t *testing.T, home string) {
	t.Helper()
	t.Setenv("HOME", home)
	if runtime.GOOS == "windows" {
		t.Setenv("USERPROFILE", home)
	}
}
