package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"RELEASE_LOG_LEVEL", "RELEASE_MARKER", "RELEASE_CHANNELS",
		"RELEASE_LOG_FILE", "RELEASE_GITHUB_TOKEN", "GITHUB_TOKEN",
	} {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}
}

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	clearEnv(t)

	got, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(got, DefaultSettings()) {
		t.Errorf("Load = %+v, want defaults %+v", got, DefaultSettings())
	}
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "log_level: debug\nmarker: project.json\nchannels:\n  - git\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := Settings{LogLevel: "debug", Marker: "project.json", Channels: []string{"git"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Load = %+v, want %+v", got, want)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("log_level: info\n"), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("RELEASE_LOG_LEVEL", "error")
	t.Setenv("RELEASE_MARKER", "ship.json")

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.LogLevel != "error" {
		t.Errorf("LogLevel = %q, want error", got.LogLevel)
	}
	if got.Marker != "ship.json" {
		t.Errorf("Marker = %q, want ship.json", got.Marker)
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("log_level: [unterminated\n"), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestLoad_EnvChannelList(t *testing.T) {
	clearEnv(t)
	t.Setenv("RELEASE_CHANNELS", "git,npm")

	got, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(got.Channels, []string{"git", "npm"}) {
		t.Errorf("Channels = %v, want [git npm]", got.Channels)
	}
}

func TestLoad_GitHubToken(t *testing.T) {
	t.Run("falls back to GITHUB_TOKEN", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("GITHUB_TOKEN", "from-gh")

		got, err := Load("")
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if got.GitHubToken != "from-gh" {
			t.Errorf("GitHubToken = %q, want from-gh", got.GitHubToken)
		}
	})

	t.Run("RELEASE_GITHUB_TOKEN wins", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("GITHUB_TOKEN", "from-gh")
		t.Setenv("RELEASE_GITHUB_TOKEN", "from-release")

		got, err := Load("")
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if got.GitHubToken != "from-release" {
			t.Errorf("GitHubToken = %q, want from-release", got.GitHubToken)
		}
	})
}

func TestLoad_LogFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("log_file: /var/log/release.log\n"), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.LogFile != "/var/log/release.log" {
		t.Errorf("LogFile = %q", got.LogFile)
	}
}
