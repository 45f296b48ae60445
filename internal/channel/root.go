package channel

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// FindRoot walks up from start until it finds a directory satisfying the
// root predicate. An empty start means the process working directory.
//
// Once a root is found it is memoized: later calls return it without
// touching the filesystem, whatever start they pass. Reaching the
// filesystem root without a match returns ("", false).
func (b *Base) FindRoot(start string) (string, bool) {
	if b.resolved {
		return b.rootDir, true
	}

	if start == "" {
		wd, err := os.Getwd()
		if err != nil {
			b.Debug("cannot determine working directory", zap.Error(err))
			return "", false
		}
		start = wd
	}
	b.cwd = start

	current, err := filepath.Abs(start)
	if err != nil {
		b.Debug("cannot resolve start directory", zap.String("dir", start), zap.Error(err))
		return "", false
	}

	for {
		if b.isRoot(current) {
			b.rootDir = current
			b.resolved = true
			b.isPackage = true
			return current, true
		}

		parent := filepath.Dir(current)
		if parent == current {
			// Reached filesystem root
			return "", false
		}
		current = parent
	}
}

// isRoot applies the RootPredicate capability, or checks for the marker file.
func (b *Base) isRoot(dir string) bool {
	if b.rootPredicate != nil {
		return b.rootPredicate.IsRoot(b, dir)
	}
	return b.HasMarker(dir)
}

// HasMarker reports whether dir contains the channel's marker file.
// Stat errors other than not-exist count as absent.
func (b *Base) HasMarker(dir string) bool {
	ok, err := b.fs.Exists(filepath.Join(dir, b.marker))
	if err != nil {
		b.Debug("cannot stat marker", zap.String("dir", dir), zap.Error(err))
		return false
	}
	return ok
}
