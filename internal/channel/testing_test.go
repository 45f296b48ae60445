package channel

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"go.uber.org/zap/zapcore"

	"github.com/danieljhkim/release/internal/fsops"
)

// countingFS counts existence checks made through it.
type countingFS struct {
	*fsops.RealFS
	checks int
}

func (fs *countingFS) Exists(path string) (bool, error) {
	fs.checks++
	return fs.RealFS.Exists(path)
}

// observedLogger returns a logger that records every entry.
func observedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

// writeFile creates path (and its parents) with content.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create parent of %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// newProject creates a temp dir holding the default marker and returns it.
func newProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, DefaultMarker), "{}\n")
	return root
}
