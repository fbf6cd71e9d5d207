package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/covenantcc/crucible/pkg/config"
	"github.com/covenantcc/crucible/pkg/debug"
	"github.com/covenantcc/crucible/pkg/engine"
	"github.com/covenantcc/crucible/pkg/ledger"
	"github.com/covenantcc/crucible/pkg/sandbox"
	"github.com/covenantcc/crucible/pkg/workspace"
)

// components holds the assembled engine and its collaborators. Ledger
// and corrector are nil when not configured.
type components struct {
	engine  *engine.Engine
	ledger  engine.Ledger
	hasLoop bool
	cleanup func()
}

// buildComponents assembles the verification engine from configuration.
// The cleanup function releases any resources (the ledger database) and
// must be called when the engine is no longer needed.
func buildComponents(cfg *config.Config, logger *slog.Logger) (*components, error) {
	root := cfg.Sandbox.WorkspaceRoot
	if root == "" {
		root = os.TempDir()
	}

	workspaces, err := workspace.NewManager(root, logger)
	if err != nil {
		return nil, fmt.Errorf("creating workspace manager: %w", err)
	}

	runner := sandbox.NewExecRunner(workspaces, sandbox.Config{
		PythonBin:      cfg.Sandbox.PythonBin,
		DefaultTimeout: cfg.Sandbox.DefaultTimeout,
		MaxTimeout:     cfg.Sandbox.MaxTimeout,
	}, logger)

	var corrector engine.Corrector
	if len(cfg.Corrector.Command) > 0 {
		corrector = &engine.CommandCorrector{
			Argv:    cfg.Corrector.Command,
			Timeout: cfg.Corrector.Timeout,
		}
	}

	c := &components{
		hasLoop: corrector != nil,
		cleanup: func() {},
	}

	switch cfg.Ledger.Type {
	case "sqlite":
		db, err := ledger.Open(cfg.Ledger.Path)
		if err != nil {
			return nil, fmt.Errorf("opening ledger: %w", err)
		}
		c.ledger = db
		c.cleanup = func() { db.Close() }
	case "none":
	default:
		c.ledger = ledger.NewMemory(cfg.Ledger.MaxTasks)
	}

	eng, err := engine.New(runner, corrector, c.ledger, engine.Config{
		MaxAttempts: cfg.Loop.MaxAttempts,
	}, logger)
	if err != nil {
		c.cleanup()
		return nil, fmt.Errorf("creating engine: %w", err)
	}
	c.engine = eng

	return c, nil
}

// newLogger initializes debug categories and the log level from the
// CRUCIBLE_DEBUG and CRUCIBLE_LOG_LEVEL environment and returns the
// process-wide structured logger.
func newLogger() *slog.Logger {
	debug.Init("", "")
	return slog.Default()
}
