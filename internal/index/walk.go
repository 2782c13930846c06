package index

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// walkFiles visits every regular file reachable from root and passes its path
// to fn. Traversal is iterative: a pending stack of directories plus a visited
// set keyed by canonical (symlink-resolved) path, so link cycles cannot make
// the walk descend forever. Unreadable directories and entries are logged and
// skipped; only a root that cannot be read at all fails the walk.
func walkFiles(root string, logger *slog.Logger, fn func(path string)) error {
	if _, err := os.ReadDir(root); err != nil {
		return fmt.Errorf("read root %s: %w", root, err)
	}

	visited := map[string]struct{}{canonical(root): {}}
	pending := []string{root}

	for len(pending) > 0 {
		dir := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		entries, err := os.ReadDir(dir)
		if err != nil {
			logger.Warn("cannot read directory", "path", dir, "error", err)
			continue
		}

		for _, entry := range entries {
			path := filepath.Join(dir, entry.Name())
			info, err := os.Stat(path)
			if err != nil {
				logger.Warn("cannot stat entry", "path", path, "error", err)
				continue
			}

			switch {
			case info.IsDir():
				id := canonical(path)
				if _, seen := visited[id]; !seen {
					visited[id] = struct{}{}
					pending = append(pending, path)
				}
			case info.Mode().IsRegular():
				fn(path)
			}
		}
	}

	return nil
}

// canonical resolves symlinks so the visited set tracks directory identity
// rather than spelling. Falls back to the cleaned absolute path when
// resolution fails.
func canonical(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
