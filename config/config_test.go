package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

var envKeys = []string{
	"DEEPSEEK_API_KEY", "OPENAI_API_KEY", "GOOGLE_API_KEY", "GOOGLE_CSE_ID", "GOOGLE_SEARCH_ENGINE_ID",
	"WAYFARER_LLM_API_KEY", "WAYFARER_SEARCH_API_KEY", "WAYFARER_SEARCH_ENGINE_ID",
	"WAYFARER_SEARCH_PROVIDER", "WAYFARER_SERVER_ADDRESS", "WAYFARER_EXTRACT_ENGINE",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Address != ":5000" {
		t.Fatalf("expected default address :5000, got %q", cfg.Server.Address)
	}
	if cfg.LLM.BaseURL != DefaultLLMBaseURL || cfg.LLM.Model != DefaultLLMModel {
		t.Fatalf("unexpected llm defaults: %+v", cfg.LLM)
	}
	if cfg.Search.Provider != SearchProviderGoogle || cfg.Search.MaxResults != 10 || cfg.Search.Timeout != 10*time.Second {
		t.Fatalf("unexpected search defaults: %+v", cfg.Search)
	}
	if cfg.Search.Configured() {
		t.Fatalf("search must not be configured without credentials")
	}
	if cfg.Extract.Engine != ExtractEngineSelector || cfg.Extract.Timeout != 10*time.Second {
		t.Fatalf("unexpected extract defaults: %+v", cfg.Extract)
	}
	if len(cfg.Server.AllowOrigins) != 1 || cfg.Server.AllowOrigins[0] != "*" {
		t.Fatalf("expected CORS to allow every origin, got %v", cfg.Server.AllowOrigins)
	}
	if !cfg.Telemetry.Enabled || cfg.Telemetry.MetricsPath != "/metrics" {
		t.Fatalf("unexpected telemetry defaults: %+v", cfg.Telemetry)
	}
}

func TestLoadConfigLegacyEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("DEEPSEEK_API_KEY", "sk-legacy")
	t.Setenv("GOOGLE_API_KEY", "g-key")
	t.Setenv("GOOGLE_CSE_ID", "cx-1")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.LLM.APIKey != "sk-legacy" {
		t.Fatalf("expected legacy llm key, got %q", cfg.LLM.APIKey)
	}
	if cfg.Search.APIKey != "g-key" || cfg.Search.EngineID != "cx-1" {
		t.Fatalf("unexpected search credentials: %+v", cfg.Search)
	}
	if !cfg.Search.Configured() {
		t.Fatalf("search should be configured")
	}
}

func TestLoadConfigPrefixedEnvWins(t *testing.T) {
	clearEnv(t)
	t.Setenv("DEEPSEEK_API_KEY", "sk-legacy")
	t.Setenv("WAYFARER_LLM_API_KEY", "sk-new")
	t.Setenv("WAYFARER_SERVER_ADDRESS", "8080")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.LLM.APIKey != "sk-new" {
		t.Fatalf("expected WAYFARER_LLM_API_KEY to win, got %q", cfg.LLM.APIKey)
	}
	if cfg.Server.Address != ":8080" {
		t.Fatalf("expected bare port to be normalised, got %q", cfg.Server.Address)
	}
}

func TestLoadConfigFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `{
        "search": {"provider": "Brave", "api_key": "b-key", "max_results": 50, "timeout": "5s"},
        "extract": {"engine": "readability"},
        "llm": {"base_url": "https://llm.example.com/v1/", "model": "gpt-4o-mini"}
    }`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Search.Provider != SearchProviderBrave || !cfg.Search.Configured() {
		t.Fatalf("expected configured brave search, got %+v", cfg.Search)
	}
	if cfg.Search.MaxResults != 10 {
		t.Fatalf("max_results must be capped at 10, got %d", cfg.Search.MaxResults)
	}
	if cfg.Search.Timeout != 5*time.Second {
		t.Fatalf("expected 5s search timeout, got %s", cfg.Search.Timeout)
	}
	if cfg.Extract.Engine != ExtractEngineReadability {
		t.Fatalf("expected readability engine, got %q", cfg.Extract.Engine)
	}
	if cfg.LLM.BaseURL != "https://llm.example.com/v1" || cfg.LLM.Model != "gpt-4o-mini" {
		t.Fatalf("unexpected llm config: %+v", cfg.LLM)
	}
}

func TestLoadConfigRejectsUnknownProvider(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `{"search": {"provider": "bing"}}`)
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected unsupported provider to fail validation")
	}

	path = writeConfig(t, `{"extract": {"engine": "headless"}}`)
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected unsupported engine to fail validation")
	}
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	clearEnv(t)
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatalf("expected a missing explicit config file to fail")
	}
}

func TestSearchConfigured(t *testing.T) {
	tests := []struct {
		name string
		cfg  SearchConfig
		want bool
	}{
		{"google without engine", SearchConfig{Provider: SearchProviderGoogle, APIKey: "k"}, false},
		{"google without key", SearchConfig{Provider: SearchProviderGoogle, EngineID: "cx"}, false},
		{"google complete", SearchConfig{Provider: SearchProviderGoogle, APIKey: "k", EngineID: "cx"}, true},
		{"serper key only", SearchConfig{Provider: SearchProviderSerper, APIKey: "k"}, true},
		{"brave blank key", SearchConfig{Provider: SearchProviderBrave, APIKey: "  "}, false},
	}
	for _, tt := range tests {
		if got := tt.cfg.Normalize().Configured(); got != tt.want {
			t.Fatalf("%s: Configured() = %v, want %v", tt.name, got, tt.want)
		}
	}
}
