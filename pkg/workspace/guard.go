package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotUnderRoot is returned when a removal target does not resolve to a
// path under the workspace root.
type ErrNotUnderRoot struct {
	Target string
	Root   string
}

func (e *ErrNotUnderRoot) Error() string {
	return fmt.Sprintf("target %q is not under workspace root %q", e.Target, e.Root)
}

// guardedRemoveAll removes a directory only if it is a true subpath of the
// workspace root. Both paths are cleaned and symlink-resolved first, so a
// symlinked workspace entry cannot redirect the removal outside the root.
//
// A target that no longer exists is not an error: cleanup is idempotent.
// Any resolution failure fails closed.
func guardedRemoveAll(target, root string) error {
	cleanTarget := filepath.Clean(target)
	cleanRoot := filepath.Clean(root)

	resolvedTarget, err := filepath.EvalSymlinks(cleanTarget)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return &ErrNotUnderRoot{Target: target, Root: root}
	}

	resolvedRoot, err := filepath.EvalSymlinks(cleanRoot)
	if err != nil {
		return &ErrNotUnderRoot{Target: target, Root: root}
	}

	if !isSubpath(resolvedTarget, resolvedRoot) {
		return &ErrNotUnderRoot{Target: target, Root: root}
	}

	return os.RemoveAll(cleanTarget)
}

// isSubpath returns true if target is a proper subpath of root. Both paths
// must already be cleaned and resolved. Equality does not count: the root
// itself is never a valid removal target.
func isSubpath(target, root string) bool {
	rootWithSep := root
	if !strings.HasSuffix(rootWithSep, string(filepath.Separator)) {
		rootWithSep = root + string(filepath.Separator)
	}
	return strings.HasPrefix(target, rootWithSep) && len(target) > len(root)
}
