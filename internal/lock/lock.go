// Package lock keeps two release runs from publishing the same project at
// once.
package lock

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrHeld indicates another process is releasing the project.
var ErrHeld = errors.New("another release of this project is in progress")

// Path returns the lock file for the project at root inside dir. Lock files
// live outside the project so they never dirty its worktree.
func Path(dir, root string) string {
	sum := sha256.Sum256([]byte(filepath.Clean(root)))
	return filepath.Join(dir, hex.EncodeToString(sum[:8])+".lock")
}

// Acquire takes the exclusive lock for the project at root without
// blocking. The caller must Release the returned handle.
func Acquire(dir, root string) (*flock.Flock, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	fl := flock.New(Path(dir, root))
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w (%s)", ErrHeld, root)
	}
	return fl, nil
}

// Release unlocks fl. A nil handle is ignored.
func Release(fl *flock.Flock) {
	if fl != nil {
		_ = fl.Unlock()
	}
}
