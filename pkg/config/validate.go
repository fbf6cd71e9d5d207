package config

import (
	"errors"
	"fmt"
	"path/filepath"
)

// Validate checks the configuration for required fields and valid values.
// Returns an error with a descriptive field path on failure.
func (c *Config) Validate() error {
	var errs []error

	// server.port must be positive.
	if c.Server.Port <= 0 {
		errs = append(errs, fmt.Errorf("server.port must be > 0, got %d", c.Server.Port))
	}

	// sandbox.python_bin is required.
	if c.Sandbox.PythonBin == "" {
		errs = append(errs, fmt.Errorf("sandbox.python_bin is required"))
	}

	// sandbox timeouts must be positive and consistent.
	if c.Sandbox.DefaultTimeout <= 0 {
		errs = append(errs, fmt.Errorf("sandbox.default_timeout must be > 0, got %v", c.Sandbox.DefaultTimeout))
	}
	if c.Sandbox.MaxTimeout <= 0 {
		errs = append(errs, fmt.Errorf("sandbox.max_timeout must be > 0, got %v", c.Sandbox.MaxTimeout))
	}
	if c.Sandbox.DefaultTimeout > 0 && c.Sandbox.MaxTimeout > 0 && c.Sandbox.DefaultTimeout > c.Sandbox.MaxTimeout {
		errs = append(errs, fmt.Errorf("sandbox.default_timeout (%v) must not exceed sandbox.max_timeout (%v)",
			c.Sandbox.DefaultTimeout, c.Sandbox.MaxTimeout))
	}

	// sandbox.workspace_root must be absolute when set.
	if c.Sandbox.WorkspaceRoot != "" && !filepath.IsAbs(c.Sandbox.WorkspaceRoot) {
		errs = append(errs, fmt.Errorf("sandbox.workspace_root must be an absolute path, got %q", c.Sandbox.WorkspaceRoot))
	}

	// loop.max_attempts must be positive.
	if c.Loop.MaxAttempts <= 0 {
		errs = append(errs, fmt.Errorf("loop.max_attempts must be > 0, got %d", c.Loop.MaxAttempts))
	}

	// The server write timeout must leave room for the slowest run,
	// otherwise long verifications are cut off mid-response.
	if c.Server.WriteTimeout > 0 && c.Server.WriteTimeout <= c.Sandbox.MaxTimeout {
		errs = append(errs, fmt.Errorf("server.write_timeout (%v) must exceed sandbox.max_timeout (%v)",
			c.Server.WriteTimeout, c.Sandbox.MaxTimeout))
	}

	// corrector.timeout must be positive.
	if c.Corrector.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("corrector.timeout must be > 0, got %v", c.Corrector.Timeout))
	}

	// ledger.type must be a known backend.
	switch c.Ledger.Type {
	case "memory":
		if c.Ledger.MaxTasks <= 0 {
			errs = append(errs, fmt.Errorf("ledger.max_tasks must be > 0, got %d", c.Ledger.MaxTasks))
		}
	case "sqlite":
		if c.Ledger.Path == "" {
			errs = append(errs, fmt.Errorf("ledger.path is required when ledger.type is %q", "sqlite"))
		}
	case "none":
	default:
		errs = append(errs, fmt.Errorf("ledger.type must be one of memory, sqlite, none, got %q", c.Ledger.Type))
	}

	return errors.Join(errs...)
}
