package manifest

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// Reader reads root-relative JSON files. *channel.Base implements it.
type Reader interface {
	ReadJSON(name string, v any) error
}

// Load reads and validates the manifest at the root-relative path name.
func Load(r Reader, name string) (*Manifest, error) {
	var m Manifest
	if err := r.ReadJSON(name, &m); err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	m.applyDefaults()
	if err := Validate(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks the manifest for errors.
func Validate(m *Manifest) error {
	seen := make(map[string]bool, len(m.Channels))
	for i, kind := range m.Channels {
		if strings.TrimSpace(kind) == "" {
			return fmt.Errorf("manifest: channels[%d] is empty", i)
		}
		if seen[kind] {
			return fmt.Errorf("manifest: duplicate channel %q", kind)
		}
		seen[kind] = true
	}

	paths := []struct{ path, label string }{
		{m.NPM.Package, "npm.package"},
		{m.Cargo.Manifest, "cargo.manifest"},
		{m.Helm.Chart, "helm.chart"},
	}
	for _, p := range paths {
		if err := validatePath(p.path, p.label); err != nil {
			return err
		}
	}

	if prefix := m.Git.Prefix(); strings.ContainsAny(prefix, " ~^:?*[\\") {
		return fmt.Errorf("manifest: git.tagPrefix contains characters not allowed in tag names: %q", prefix)
	}

	if strings.ContainsAny(m.GitHub.Owner, "/ ") || strings.ContainsAny(m.GitHub.Repo, "/ ") {
		return fmt.Errorf("manifest: github.owner and github.repo must be plain names, got %q/%q", m.GitHub.Owner, m.GitHub.Repo)
	}
	if m.GitHub.APIURL != "" {
		u, err := url.Parse(m.GitHub.APIURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("manifest: github.apiURL must be an http(s) URL: %q", m.GitHub.APIURL)
		}
	}

	return nil
}

// validatePath ensures a path is relative and does not escape the project root.
func validatePath(p, label string) error {
	if filepath.IsAbs(p) {
		return fmt.Errorf("manifest: %s: absolute path is not allowed: %s", label, p)
	}
	cleaned := filepath.Clean(p)
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return fmt.Errorf("manifest: %s: path must not escape the project root: %s", label, p)
	}
	return nil
}
