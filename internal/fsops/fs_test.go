package fsops

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRealFS_ValidateRelPath(t *testing.T) {
	fs := &RealFS{}

	tests := []struct {
		name      string
		path      string
		wantError bool
	}{
		{
			name:      "manifest at root",
			path:      "package.json",
			wantError: false,
		},
		{
			name:      "nested manifest",
			path:      "packages/web/package.json",
			wantError: false,
		},
		{
			name:      "empty path",
			path:      "",
			wantError: true,
		},
		{
			name:      "current directory",
			path:      ".",
			wantError: true,
		},
		{
			name:      "absolute path",
			path:      "/etc/hosts",
			wantError: true,
		},
		{
			name:      "parent directory",
			path:      "..",
			wantError: true,
		},
		{
			name:      "parent directory traversal",
			path:      "../release.json",
			wantError: true,
		},
		{
			name:      "traversal in middle",
			path:      "a/../../release.json",
			wantError: true,
		},
		{
			name:      "dot-dot prefixed name",
			path:      "..hidden.json",
			wantError: false,
		},
		{
			name:      "hidden file",
			path:      ".release/state.json",
			wantError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fs.ValidateRelPath(tt.path)
			if (err != nil) != tt.wantError {
				t.Errorf("ValidateRelPath(%q) error = %v, wantError %v", tt.path, err, tt.wantError)
			}
		})
	}
}

func TestRealFS_Exists(t *testing.T) {
	fs := NewRealFS()
	tmpDir := t.TempDir()

	t.Run("existing file", func(t *testing.T) {
		testFile := filepath.Join(tmpDir, "release.json")
		if err := os.WriteFile(testFile, []byte("{}"), 0644); err != nil {
			t.Fatalf("failed to create test file: %v", err)
		}

		exists, err := fs.Exists(testFile)
		if err != nil {
			t.Errorf("Exists returned error: %v", err)
		}
		if !exists {
			t.Error("Exists should return true for existing file")
		}
	})

	t.Run("non-existing file", func(t *testing.T) {
		exists, err := fs.Exists(filepath.Join(tmpDir, "missing.json"))
		if err != nil {
			t.Errorf("Exists returned error: %v", err)
		}
		if exists {
			t.Error("Exists should return false for non-existing file")
		}
	})

	t.Run("existing directory", func(t *testing.T) {
		exists, err := fs.Exists(tmpDir)
		if err != nil {
			t.Errorf("Exists returned error: %v", err)
		}
		if !exists {
			t.Error("Exists should return true for existing directory")
		}
	})
}

func TestRealFS_WriteFile(t *testing.T) {
	fs := NewRealFS()
	tmpDir := t.TempDir()

	t.Run("overwrites in full", func(t *testing.T) {
		testFile := filepath.Join(tmpDir, "package.json")
		if err := os.WriteFile(testFile, []byte("a much longer initial body"), 0644); err != nil {
			t.Fatalf("failed to create initial file: %v", err)
		}

		if err := fs.WriteFile(testFile, []byte("short"), 0644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}

		got, err := os.ReadFile(testFile)
		if err != nil {
			t.Fatalf("failed to read file: %v", err)
		}
		if string(got) != "short" {
			t.Errorf("WriteFile content = %q, want %q", got, "short")
		}
	})

	t.Run("missing parent directory fails", func(t *testing.T) {
		err := fs.WriteFile(filepath.Join(tmpDir, "nope", "x.json"), []byte("{}"), 0644)
		if err == nil {
			t.Error("WriteFile should fail when the parent directory is missing")
		}
	})
}

func TestRealFS_AtomicWrite(t *testing.T) {
	fs := NewRealFS()
	tmpDir := t.TempDir()

	t.Run("write to new file in new directory", func(t *testing.T) {
		testFile := filepath.Join(tmpDir, "sub", "release.json")
		content := []byte(`{"channels": ["npm"]}`)

		if err := fs.AtomicWrite(testFile, content, 0644); err != nil {
			t.Fatalf("AtomicWrite failed: %v", err)
		}

		readContent, err := os.ReadFile(testFile)
		if err != nil {
			t.Fatalf("failed to read written file: %v", err)
		}
		if string(readContent) != string(content) {
			t.Errorf("File content mismatch: got %q, want %q", readContent, content)
		}
	})

	t.Run("leaves no temp files behind", func(t *testing.T) {
		dir := filepath.Join(tmpDir, "clean")
		if err := fs.AtomicWrite(filepath.Join(dir, "a.json"), []byte("{}"), 0644); err != nil {
			t.Fatalf("AtomicWrite failed: %v", err)
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("failed to read dir: %v", err)
		}
		if len(entries) != 1 {
			t.Errorf("expected only the target file, got %d entries", len(entries))
		}
	})
}

func TestRealFS_ReadFile(t *testing.T) {
	fs := NewRealFS()
	tmpDir := t.TempDir()

	t.Run("read non-existing file", func(t *testing.T) {
		_, err := fs.ReadFile(filepath.Join(tmpDir, "does-not-exist.json"))
		if !os.IsNotExist(err) {
			t.Errorf("ReadFile error = %v, want not-exist", err)
		}
	})
}
