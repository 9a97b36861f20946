package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/HerbHall/promptlens/internal/analysis"
)

func loadDecoded(t *testing.T, path string) *Config {
	t.Helper()
	v, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg, err := Decode(v)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return cfg
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg := loadDecoded(t, "")

	if cfg.Analysis.OptimalTokenLen != 4820 || cfg.Analysis.MaxOptimalTokenLen != 9820 ||
		cfg.Analysis.MaxTotalTokens != 128000 {
		t.Errorf("thresholds = %+v", cfg.Analysis.Thresholds)
	}
	if cfg.Analysis.Temperature != 0.4 {
		t.Errorf("temperature = %v, want 0.4", cfg.Analysis.Temperature)
	}
	if cfg.Analysis.CallTimeout != 90*time.Second {
		t.Errorf("call_timeout = %s, want 90s", cfg.Analysis.CallTimeout)
	}
	if cfg.Analysis.AccuracyWeighting != analysis.WeightEqual {
		t.Errorf("accuracy_weighting = %q", cfg.Analysis.AccuracyWeighting)
	}
	if cfg.LLM.Provider != "openai" || cfg.LLM.OpenAI.Model != "gpt-4o" {
		t.Errorf("llm = %+v", cfg.LLM)
	}
	if cfg.RateLimit.Window != time.Second || cfg.RateLimit.MaxCallers != 10000 {
		t.Errorf("ratelimit = %+v", cfg.RateLimit)
	}
	if cfg.Server.Port != 8080 || cfg.Server.DevMode {
		t.Errorf("server = %+v", cfg.Server)
	}
	if !cfg.CORS.AllowExtensions {
		t.Error("extension origins disabled by default")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PL_ANALYSIS_OPTIMAL_TOKEN_LEN", "1000")
	t.Setenv("PL_ANALYSIS_MAX_OPTIMAL_TOKEN_LEN", "2000")
	t.Setenv("PL_RATELIMIT_WINDOW", "5s")
	t.Setenv("PL_SERVER_PORT", "9191")
	t.Setenv("PL_CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("PL_SERVER_TRUSTED_PROXIES", "10.0.0.0/8, 127.0.0.1")
	t.Setenv("OPENAI_API_KEY", "sk-from-conventional-env-000000000000")
	t.Setenv("ANTHROPIC_API_KEY", "anthropic-from-env")

	cfg := loadDecoded(t, "")

	if cfg.Analysis.OptimalTokenLen != 1000 || cfg.Analysis.MaxOptimalTokenLen != 2000 {
		t.Errorf("thresholds = %+v", cfg.Analysis.Thresholds)
	}
	if cfg.RateLimit.Window != 5*time.Second {
		t.Errorf("window = %s, want 5s", cfg.RateLimit.Window)
	}
	if cfg.Server.Port != 9191 {
		t.Errorf("port = %d, want 9191", cfg.Server.Port)
	}
	if cfg.LLM.OpenAI.APIKey != "sk-from-conventional-env-000000000000" {
		t.Errorf("api key = %q", cfg.LLM.OpenAI.APIKey)
	}
	if cfg.LLM.Anthropic.APIKey != "anthropic-from-env" {
		t.Errorf("anthropic api key = %q", cfg.LLM.Anthropic.APIKey)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("allowed origins = %q", cfg.CORS.AllowedOrigins)
	}
	if len(cfg.Server.TrustedProxies) != 2 || cfg.Server.TrustedProxies[0] != "10.0.0.0/8" {
		t.Errorf("trusted proxies = %q", cfg.Server.TrustedProxies)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	// godotenv does not override variables already set, so clear it first.
	t.Setenv("PL_LLM_PROVIDER", "")
	os.Unsetenv("PL_LLM_PROVIDER")
	t.Cleanup(func() { os.Unsetenv("PL_LLM_PROVIDER") })

	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("PL_LLM_PROVIDER=ollama\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := loadDecoded(t, "")
	if cfg.LLM.Provider != "ollama" {
		t.Errorf("provider = %q, want ollama from .env", cfg.LLM.Provider)
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "custom.yaml")
	yaml := `
analysis:
  accuracy_weighting: tokens
  continue_on_upstream_error: true
llm:
  provider: ollama
  ollama:
    model: llama3.1:8b
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := loadDecoded(t, path)
	if cfg.Analysis.AccuracyWeighting != analysis.WeightTokens || !cfg.Analysis.ContinueOnUpstreamError {
		t.Errorf("analysis = %+v", cfg.Analysis)
	}
	if cfg.LLM.Provider != "ollama" || cfg.LLM.Ollama.Model != "llama3.1:8b" {
		t.Errorf("llm = %+v", cfg.LLM)
	}
	// Unset keys keep their defaults.
	if cfg.Analysis.MaxOptimalTokenLen != 9820 {
		t.Errorf("max_optimal_token_len = %d", cfg.Analysis.MaxOptimalTokenLen)
	}
}

func TestDecode_InvalidAnalysis(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PL_ANALYSIS_OPTIMAL_TOKEN_LEN", "20000")

	v, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := Decode(v); err == nil {
		t.Error("expected error when optimal exceeds max optimal")
	}
}

func TestDecode_InvalidTrustedProxy(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PL_SERVER_TRUSTED_PROXIES", "proxy.internal")

	v, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := Decode(v); err == nil {
		t.Error("expected error for a trusted proxy that is not an address")
	}
}
