// Package config provides unified configuration for the crucible service.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (CRUCIBLE_ prefix)
//  4. Validation
package config

import "time"

// Config holds all configuration for the crucible service.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Sandbox       SandboxConfig       `yaml:"sandbox"`
	Loop          LoopConfig          `yaml:"loop"`
	Corrector     CorrectorConfig     `yaml:"corrector"`
	Ledger        LedgerConfig        `yaml:"ledger"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: "/metrics"
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int           `yaml:"port"`          // default: 8080
	ReadTimeout  time.Duration `yaml:"read_timeout"`  // default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"` // default: 10m, must exceed sandbox.max_timeout
}

// SandboxConfig holds execution sandbox settings.
type SandboxConfig struct {
	WorkspaceRoot  string        `yaml:"workspace_root"`  // default: os.TempDir()
	PythonBin      string        `yaml:"python_bin"`      // default: "python3"
	DefaultTimeout time.Duration `yaml:"default_timeout"` // default: 30s
	MaxTimeout     time.Duration `yaml:"max_timeout"`     // default: 300s
}

// LoopConfig holds correction loop settings.
type LoopConfig struct {
	MaxAttempts int `yaml:"max_attempts"` // default: 3
}

// CorrectorConfig holds the external corrector command settings. An
// empty command disables the correction endpoint; verification still
// works.
type CorrectorConfig struct {
	Command []string      `yaml:"command"` // argv of the corrector process
	Timeout time.Duration `yaml:"timeout"` // default: 120s
}

// LedgerConfig holds attempt persistence settings.
type LedgerConfig struct {
	Type     string `yaml:"type"`      // "memory", "sqlite", or "none", default: "memory"
	MaxTasks int    `yaml:"max_tasks"` // for memory ledger, default: 10000
	Path     string `yaml:"path"`      // SQLite database file, required for type "sqlite"
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 10 * time.Minute,
		},
		Sandbox: SandboxConfig{
			PythonBin:      "python3",
			DefaultTimeout: 30 * time.Second,
			MaxTimeout:     300 * time.Second,
		},
		Loop: LoopConfig{
			MaxAttempts: 3,
		},
		Corrector: CorrectorConfig{
			Timeout: 120 * time.Second,
		},
		Ledger: LedgerConfig{
			Type:     "memory",
			MaxTasks: 10000,
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
	}
}
