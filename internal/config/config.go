// Package config loads the engine configuration from
// ~/.todochain/config.json. Every field has a working default so a fresh
// install runs without a config file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Default contract addresses for the escrow registry and the bounty token.
const (
	DefaultRegistryAddress = "0x3B46fA0835FfCc60A507566e1bCb39237F586B17"
	DefaultTokenAddress    = "0x741e049ed61A5EBa4B0A7D8C379298F9ECDCaD96"
)

// Config holds all runtime configuration.
type Config struct {
	// APIBaseURL is the remote task API.
	APIBaseURL string `json:"api_base_url"`

	// BridgeURL is the local wallet bridge. Empty disables the ledger leg.
	BridgeURL string `json:"bridge_url"`

	// RegistryAddress is the escrow registry contract.
	RegistryAddress string `json:"registry_address"`

	// TokenAddress is the bounty token contract.
	TokenAddress string `json:"token_address"`

	// DescribeURL is an optional description service. Empty uses the
	// embedded templates.
	DescribeURL string `json:"describe_url,omitempty"`

	// AuthPollAttempts bounds allowance and confirmation polling.
	AuthPollAttempts int `json:"auth_poll_attempts"`

	// AuthPollDelayMS is the delay between polls, in milliseconds.
	AuthPollDelayMS int `json:"auth_poll_delay_ms"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		APIBaseURL:       "http://localhost:3000",
		BridgeURL:        "http://localhost:8545",
		RegistryAddress:  DefaultRegistryAddress,
		TokenAddress:     DefaultTokenAddress,
		AuthPollAttempts: 3,
		AuthPollDelayMS:  2000,
	}
}

// Dir returns the todochain home directory.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".todochain"), nil
}

// Path returns the config file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config file, filling defaults for missing fields. A
// missing file returns the defaults without error.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads a config file at an explicit path.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.RegistryAddress == "" {
		cfg.RegistryAddress = DefaultRegistryAddress
	}
	if cfg.TokenAddress == "" {
		cfg.TokenAddress = DefaultTokenAddress
	}
	if cfg.AuthPollAttempts <= 0 {
		cfg.AuthPollAttempts = 3
	}
	if cfg.AuthPollDelayMS <= 0 {
		cfg.AuthPollDelayMS = 2000
	}
	return cfg, nil
}

// Save writes the config file, creating the directory when needed.
func (c *Config) Save() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
