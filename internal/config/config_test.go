package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"aide/internal/config"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.Load(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Model != "gpt-4o-mini" {
		t.Errorf("expected default model, got %q", cfg.Model)
	}
	if cfg.HistoryLimit != 40 || cfg.InterruptTimeoutSecs != 5 || cfg.HTTPTimeoutSecs != 30 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
model = "gpt-4o"
history_limit = 10
interrupt_timeout_secs = 2

[pricing."gpt-4o"]
prompt_usd_per_mtok = 2.0
completion_usd_per_mtok = 8.0
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Model != "gpt-4o" {
		t.Errorf("model = %q", cfg.Model)
	}
	if cfg.HistoryLimit != 10 {
		t.Errorf("history_limit = %d", cfg.HistoryLimit)
	}
	if cfg.HTTPTimeoutSecs != 30 {
		t.Errorf("unset key must keep its default, got %d", cfg.HTTPTimeoutSecs)
	}
	p, ok := cfg.Pricing["gpt-4o"]
	if !ok || p.PromptUSDPerMTok != 2.0 || p.CompletionUSDPerMTok != 8.0 {
		t.Errorf("pricing override = %+v ok=%v", p, ok)
	}
}

func TestLoadMalformedTOML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("model = [broken"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := config.Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadClampsNonPositiveLimits(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("history_limit = -3\nhttp_timeout_secs = 0\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HistoryLimit != 40 || cfg.HTTPTimeoutSecs != 30 {
		t.Errorf("non-positive values must fall back to defaults: %+v", cfg)
	}
}
