// Package config loads the assistant configuration file. The file is
// optional: a missing file yields defaults, a malformed one is an error.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config holds the tunable settings read from config.toml.
type Config struct {
	// Model is the chat model identifier sent to the provider.
	Model string `toml:"model"`
	// SystemPrompt overrides the built-in assistant persona when set.
	SystemPrompt string `toml:"system_prompt"`
	// HistoryLimit caps how many prior messages seed a resumed chat.
	HistoryLimit int `toml:"history_limit"`
	// InterruptTimeoutSecs bounds how long Ctrl-C cleanup may take.
	InterruptTimeoutSecs int `toml:"interrupt_timeout_secs"`
	// HTTPTimeoutSecs bounds outbound page fetches.
	HTTPTimeoutSecs int `toml:"http_timeout_secs"`
	// Pricing overrides per-model token prices, in USD per million
	// tokens. Keys are model name prefixes.
	Pricing map[string]PriceOverride `toml:"pricing"`
}

// PriceOverride sets the token prices for one model prefix.
type PriceOverride struct {
	PromptUSDPerMTok     float64 `toml:"prompt_usd_per_mtok"`
	CompletionUSDPerMTok float64 `toml:"completion_usd_per_mtok"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Model:                "gpt-4o-mini",
		HistoryLimit:         40,
		InterruptTimeoutSecs: 5,
		HTTPTimeoutSecs:      30,
	}
}

// Load reads the TOML file at path, layered over Default. A missing
// file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = Default().HistoryLimit
	}
	if cfg.InterruptTimeoutSecs <= 0 {
		cfg.InterruptTimeoutSecs = Default().InterruptTimeoutSecs
	}
	if cfg.HTTPTimeoutSecs <= 0 {
		cfg.HTTPTimeoutSecs = Default().HTTPTimeoutSecs
	}
	return cfg, nil
}
