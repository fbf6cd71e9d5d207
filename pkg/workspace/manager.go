package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/covenantcc/crucible/pkg/api"
	"github.com/covenantcc/crucible/pkg/observability"
)

// Manager allocates single-use workspaces under a fixed root directory.
// A single Manager is safe for concurrent use by multiple tasks.
type Manager struct {
	root   string
	logger *slog.Logger
}

// NewManager creates a Manager rooted at the given directory, creating it
// if necessary. The root must be an absolute path so the removal guard has
// a stable prefix to check against.
func NewManager(root string, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if !filepath.IsAbs(root) {
		return nil, api.NewWorkspaceError(fmt.Sprintf("workspace root must be absolute, got %q", root))
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, api.NewWorkspaceError(fmt.Sprintf("creating workspace root: %v", err))
	}
	return &Manager{root: root, logger: logger}, nil
}

// Root returns the directory under which workspaces are created.
func (m *Manager) Root() string {
	return m.root
}

// Workspace is an exclusively-owned, single-use filesystem scope. It is
// created by Manager.Acquire and destroyed exactly once by Release,
// regardless of how the surrounding verification attempt ends.
type Workspace struct {
	// ID uniquely identifies the workspace and is embedded in its path.
	ID string

	// Dir is the absolute path of the workspace directory.
	Dir string

	// Files lists the names written into the workspace, sorted.
	Files []string

	// CreatedAt is the workspace creation time in UTC.
	CreatedAt time.Time

	manager *Manager
	release sync.Once
}

// Acquire creates a new empty workspace and writes the given files into
// it. File names must be bare names without path separators; anything else
// could escape the workspace. On any failure the partially created
// directory is removed before returning.
func (m *Manager) Acquire(files map[string]string) (*Workspace, error) {
	for name := range files {
		if err := validateFileName(name); err != nil {
			return nil, err
		}
	}

	id := uuid.NewString()
	dir := filepath.Join(m.root, "crucible_"+id+"_workspace")

	if err := os.Mkdir(dir, 0o755); err != nil {
		return nil, api.NewWorkspaceError(fmt.Sprintf("creating workspace directory: %v", err))
	}

	names := make([]string, 0, len(files))
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			// Roll back: the caller never sees a half-written workspace.
			_ = os.RemoveAll(dir)
			return nil, api.NewWorkspaceError(fmt.Sprintf("writing %s: %v", name, err))
		}
		names = append(names, name)
	}
	sort.Strings(names)

	observability.WorkspacesActive.Inc()

	return &Workspace{
		ID:        id,
		Dir:       dir,
		Files:     names,
		CreatedAt: time.Now().UTC(),
		manager:   m,
	}, nil
}

// Path returns the absolute path of a file inside the workspace.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.Dir, name)
}

// Release removes the workspace subtree. It is idempotent: only the first
// call performs the removal. Removal failures are logged and counted but
// never returned, since they must not mask a verification result already
// obtained by the caller.
func (w *Workspace) Release() {
	w.release.Do(func() {
		observability.WorkspacesActive.Dec()
		if err := guardedRemoveAll(w.Dir, w.manager.root); err != nil {
			observability.WorkspaceCleanupFailures.Inc()
			w.manager.logger.Error("workspace cleanup failed",
				"workspace_id", w.ID,
				"dir", w.Dir,
				"error", err)
		}
	})
}

// validateFileName rejects names that could place a file outside the
// workspace directory.
func validateFileName(name string) error {
	if name == "" {
		return api.NewWorkspaceError("file name must not be empty")
	}
	if strings.ContainsAny(name, `/\`) || name != filepath.Base(name) || name == "." || name == ".." {
		return api.NewWorkspaceError(fmt.Sprintf("invalid file name %q: must be a bare file name", name))
	}
	return nil
}
