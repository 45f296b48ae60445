package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix         = "RELEASE_"
	maxConfigFileSize = 1024 * 1024 // 1MB
)

// Settings holds user-level CLI configuration.
type Settings struct {
	// LogLevel is the minimum level channels log at (debug, info, warn, error)
	LogLevel string `koanf:"log_level"`

	// Marker is the file name that marks a project root
	Marker string `koanf:"marker"`

	// Channels is used when release.json does not list any
	Channels []string `koanf:"channels"`

	// LogFile also records debug-level JSON logs, rotated (empty disables)
	LogFile string `koanf:"log_file"`

	// GitHubToken authenticates the github channel (falls back to GITHUB_TOKEN)
	GitHubToken string `koanf:"github_token"`
}

// DefaultSettings returns the built-in settings.
func DefaultSettings() Settings {
	return Settings{
		LogLevel: "warn",
		Marker:   "release.json",
		Channels: []string{"npm", "git"},
	}
}

// Load reads settings from the config file at path (if it exists), then
// applies RELEASE_* environment overrides.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (RELEASE_LOG_LEVEL, RELEASE_MARKER, RELEASE_CHANNELS,
//     RELEASE_LOG_FILE, RELEASE_GITHUB_TOKEN)
//  2. YAML config file
//  3. Hardcoded defaults
func Load(path string) (Settings, error) {
	var settings Settings
	k := koanf.New(".")

	if path != "" {
		info, err := os.Stat(path)
		switch {
		case err == nil:
			if info.Size() > maxConfigFileSize {
				return settings, fmt.Errorf("config file %s exceeds %d bytes", path, maxConfigFileSize)
			}
			content, err := os.ReadFile(path)
			if err != nil {
				return settings, fmt.Errorf("failed to read config file: %w", err)
			}
			if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
				return settings, fmt.Errorf("failed to load config file %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return settings, fmt.Errorf("failed to stat config file: %w", err)
		}
	}

	// RELEASE_LOG_LEVEL -> log_level
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return settings, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := k.Unmarshal("", &settings); err != nil {
		return settings, fmt.Errorf("failed to decode settings: %w", err)
	}

	// Defaults are applied after decoding; mapstructure merges into
	// pre-populated slices instead of replacing them.
	defaults := DefaultSettings()
	if settings.LogLevel == "" {
		settings.LogLevel = defaults.LogLevel
	}
	if settings.Marker == "" {
		settings.Marker = defaults.Marker
	}
	if len(settings.Channels) == 0 {
		settings.Channels = defaults.Channels
	}
	if settings.GitHubToken == "" {
		settings.GitHubToken = os.Getenv("GITHUB_TOKEN")
	}
	return settings, nil
}
