package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a layered set of sources.
//
// The loading order is:
//  1. Built-in defaults
//  2. YAML config file (explicit path, CRUCIBLE_CONFIG env, ./config.yaml, /etc/crucible/config.yaml)
//  3. Environment variable overrides
//  4. Validation
func Load(configPath string) (*Config, error) {
	// Start with defaults.
	cfg := Defaults()

	// Discover and load YAML config file.
	filePath := discoverConfigFile(configPath)
	if filePath != "" {
		if err := loadYAMLFile(filePath, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", filePath, err)
		}
	}

	// Apply environment variable overrides.
	applyEnvOverrides(&cfg)

	// Validate.
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// discoverConfigFile finds the config file path using the discovery order:
// 1. Explicit configPath argument
// 2. CRUCIBLE_CONFIG environment variable
// 3. ./config.yaml in the current directory
// 4. /etc/crucible/config.yaml
//
// Returns empty string if no config file is found.
func discoverConfigFile(configPath string) string {
	// Explicit path takes priority.
	if configPath != "" {
		return configPath
	}

	// Check CRUCIBLE_CONFIG env var.
	if envPath := os.Getenv("CRUCIBLE_CONFIG"); envPath != "" {
		return envPath
	}

	// Check common locations.
	candidates := []string{
		"config.yaml",
		"/etc/crucible/config.yaml",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// loadYAMLFile reads and parses a YAML file into the Config struct.
// Fields not present in the YAML retain their current (default) values.
func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyEnvOverrides maps environment variables to config fields. The
// timeout and retry variables take bare integers (seconds and attempts
// respectively), matching the variable names deployments already use.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CRUCIBLE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("CRUCIBLE_WORKSPACE_ROOT"); v != "" {
		cfg.Sandbox.WorkspaceRoot = v
	}
	if v := os.Getenv("CRUCIBLE_PYTHON_BIN"); v != "" {
		cfg.Sandbox.PythonBin = v
	}
	if v := os.Getenv("CRUCIBLE_DEFAULT_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.Sandbox.DefaultTimeout = time.Duration(secs) * time.Second
		}
	}
	if v := os.Getenv("CRUCIBLE_MAX_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.Sandbox.MaxTimeout = time.Duration(secs) * time.Second
		}
	}
	if v := os.Getenv("CRUCIBLE_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Loop.MaxAttempts = n
		}
	}
	if v := os.Getenv("CRUCIBLE_LEDGER"); v != "" {
		cfg.Ledger.Type = v
	}
	if v := os.Getenv("CRUCIBLE_LEDGER_PATH"); v != "" {
		cfg.Ledger.Path = v
	}

	// CRUCIBLE_CORRECTOR_CMD: JSON array forming the corrector argv.
	if v := os.Getenv("CRUCIBLE_CORRECTOR_CMD"); v != "" {
		argv, err := parseArgvJSON(v)
		if err == nil && len(argv) > 0 {
			cfg.Corrector.Command = argv
		}
	}
}

// parseArgvJSON parses a JSON array of strings into an argv slice.
func parseArgvJSON(jsonStr string) ([]string, error) {
	var argv []string
	if err := json.Unmarshal([]byte(jsonStr), &argv); err != nil {
		return nil, fmt.Errorf("parsing argv JSON: %w", err)
	}
	return argv, nil
}
