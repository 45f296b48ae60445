package channel

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
)

// Path joins name onto the resolved root.
func (b *Base) Path(name string) (string, error) {
	if !b.resolved {
		return "", fmt.Errorf("%w: %s has no root for %q", ErrNoRoot, b.name, name)
	}
	if err := b.fs.ValidateRelPath(name); err != nil {
		return "", fmt.Errorf("%w: %v", ErrArgument, err)
	}
	return filepath.Join(b.rootDir, name), nil
}

// Exists reports whether every named file exists under the root.
// It stops at the first missing name.
func (b *Base) Exists(names ...string) (bool, error) {
	if len(names) == 0 {
		return false, fmt.Errorf("%w: Exists needs at least one file name", ErrArgument)
	}

	for _, name := range names {
		path, err := b.Path(name)
		if err != nil {
			return false, err
		}
		ok, err := b.fs.Exists(path)
		if err != nil {
			return false, fmt.Errorf("%w: stat %s: %w", ErrIO, name, err)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// ReadJSON decodes the root-relative file name into v.
func (b *Base) ReadJSON(name string, v any) error {
	path, err := b.Path(name)
	if err != nil {
		return err
	}

	data, err := b.fs.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: read %s: %w", ErrIO, name, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrParse, name, err)
	}
	return nil
}

// WriteJSON overwrites the root-relative file name with v encoded as JSON,
// indented by two spaces and ending in a single newline. The write is not
// atomic.
func (b *Base) WriteJSON(name string, v any) error {
	path, err := b.Path(name)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	// Encode terminates the document with a newline
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}

	if err := b.fs.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrIO, name, err)
	}
	return nil
}
