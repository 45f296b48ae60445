package integration

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/danieljhkim/release/internal/channels"
	"github.com/danieljhkim/release/internal/fsops"
)

// testFS is a filesystem implementation that tracks files in memory for testing
type testFS struct {
	mu     sync.Mutex
	files  map[string][]byte
	dirs   map[string]bool
	writes []string
	real   *fsops.RealFS
}

var _ fsops.FS = (*testFS)(nil)

func newTestFS() *testFS {
	return &testFS{
		files: make(map[string][]byte),
		dirs:  make(map[string]bool),
		real:  fsops.NewRealFS(),
	}
}

// add stores content at path and registers its parent directories.
func (fs *testFS) add(path, content string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.files[path] = []byte(content)
	for dir := filepath.Dir(path); ; dir = filepath.Dir(dir) {
		fs.dirs[dir] = true
		if filepath.Dir(dir) == dir {
			break
		}
	}
}

func (fs *testFS) Stat(path string) (os.FileInfo, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if content, ok := fs.files[path]; ok {
		return &mockFileInfo{name: filepath.Base(path), size: int64(len(content))}, nil
	}
	if fs.dirs[path] {
		return &mockFileInfo{name: filepath.Base(path), isDir: true}, nil
	}
	return nil, os.ErrNotExist
}

func (fs *testFS) Exists(path string) (bool, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	_, hasFile := fs.files[path]
	return hasFile || fs.dirs[path], nil
}

func (fs *testFS) ReadFile(path string) ([]byte, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if content, ok := fs.files[path]; ok {
		return append([]byte(nil), content...), nil
	}
	return nil, os.ErrNotExist
}

func (fs *testFS) WriteFile(path string, data []byte, perm os.FileMode) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if !fs.dirs[filepath.Dir(path)] {
		return os.ErrNotExist
	}
	fs.files[path] = append([]byte(nil), data...)
	fs.writes = append(fs.writes, path)
	return nil
}

func (fs *testFS) AtomicWrite(path string, data []byte, perm os.FileMode) error {
	return fs.WriteFile(path, data, perm)
}

func (fs *testFS) MkdirAll(path string, perm os.FileMode) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.dirs[path] = true
	return nil
}

func (fs *testFS) ValidateRelPath(relPath string) error {
	return fs.real.ValidateRelPath(relPath)
}

// written returns the paths written so far, sorted and deduplicated.
func (fs *testFS) written() []string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	seen := make(map[string]bool)
	var out []string
	for _, p := range fs.writes {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

func (fs *testFS) content(t *testing.T, path string) string {
	t.Helper()
	data, err := fs.ReadFile(path)
	if err != nil {
		t.Fatalf("expected %s to exist: %v", path, err)
	}
	return string(data)
}

// mockFileInfo implements os.FileInfo
type mockFileInfo struct {
	name  string
	size  int64
	mode  os.FileMode
	isDir bool
}

func (m *mockFileInfo) Name() string       { return m.name }
func (m *mockFileInfo) Size() int64        { return m.size }
func (m *mockFileInfo) Mode() os.FileMode  { return m.mode }
func (m *mockFileInfo) ModTime() time.Time { return time.Time{} }
func (m *mockFileInfo) IsDir() bool        { return m.isDir }
func (m *mockFileInfo) Sys() interface{}   { return nil }

// setupProject opens the project at cwd on fs with an observed logger.
func setupProject(t *testing.T, fs *testFS, cwd string) (*channels.Project, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	project, err := channels.Open(channels.Options{
		Cwd:    cwd,
		Logger: zap.New(core),
		FS:     fs,
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return project, logs
}

// messages returns the logged messages, one per entry.
func messages(logs *observer.ObservedLogs) string {
	var b strings.Builder
	for _, entry := range logs.All() {
		b.WriteString(entry.LoggerName)
		b.WriteString(": ")
		b.WriteString(entry.Message)
		b.WriteString("\n")
	}
	return b.String()
}
