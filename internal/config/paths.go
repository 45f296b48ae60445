// Package config manages release CLI configuration and filesystem paths.
//
// Settings are read from ~/.config/release/config.yaml and overridden by
// RELEASE_* environment variables. The configuration directory can be moved
// with RELEASE_HOME.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths contains the filesystem paths used by the release CLI.
type Paths struct {
	// Root is the configuration directory (default: ~/.config/release)
	Root string

	// Config is the path to the settings file
	Config string
}

// DefaultPaths returns the default paths for the release CLI.
// Paths can be overridden with environment variables:
// - RELEASE_HOME: Override the configuration directory
func DefaultPaths() (*Paths, error) {
	root := os.Getenv("RELEASE_HOME")
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		root = filepath.Join(home, ".config", "release")
	}

	return &Paths{
		Root:   root,
		Config: filepath.Join(root, "config.yaml"),
	}, nil
}
