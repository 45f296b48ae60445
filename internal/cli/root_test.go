package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestRootCommand_Help(t *testing.T) {
	stdout, _, err := runCLI(t, "--help")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if stdout == "" {
		t.Fatal("expected help output, got empty string")
	}
	for _, want := range []string{"release", "Project:", "Release:", "CLI & Tooling:", "--dir",
		"npm", "git", "cargo", "helm", "github"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected help to contain %q", want)
		}
	}
}

func TestRootCommand_Version(t *testing.T) {
	SetVersion("1.2.3")
	defer SetVersion("dev")

	stdout, _, err := runCLI(t, "--version")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(stdout, "1.2.3") {
		t.Errorf("expected version output to contain version, got %q", stdout)
	}

	stdout, _, err = runCLI(t, "version")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if strings.TrimSpace(stdout) != "1.2.3" {
		t.Errorf("version = %q, want %q", stdout, "1.2.3")
	}
}

func TestRootCommand_InvalidCommand(t *testing.T) {
	_, _, err := runCLI(t, "invalid-command")
	if err == nil {
		t.Error("expected error for invalid command")
	}
}

func TestSetVersion(t *testing.T) {
	defer SetVersion("dev")

	tests := []struct {
		name    string
		version string
		want    string
	}{
		{"normal version", "1.2.3", "1.2.3"},
		{"empty version keeps previous", "", "1.2.3"},
		{"dev version", "dev", "dev"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SetVersion(tt.version)
			if rootCmd.Version != tt.want {
				t.Errorf("SetVersion(%q) = %q, want %q", tt.version, rootCmd.Version, tt.want)
			}
		})
	}
}

func TestRootCommand_Subcommands(t *testing.T) {
	subcommands := []string{
		"init", "root", "status", "check", "set", "version", "completion",
	}

	for _, cmd := range subcommands {
		t.Run(cmd, func(t *testing.T) {
			subCmd, _, err := rootCmd.Find([]string{cmd})
			if err != nil {
				t.Errorf("Find(%q) error = %v", cmd, err)
			}
			if subCmd == nil || subCmd == rootCmd {
				t.Errorf("Find(%q) did not return a subcommand", cmd)
			}
		})
	}
}

func TestCompletion_Bash(t *testing.T) {
	stdout, _, err := runCLI(t, "completion", "bash")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(stdout, "release") {
		t.Error("expected completion script to mention release")
	}
}

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer
	PrintTable(&buf, []string{"CHANNEL", "VERSION"}, [][]string{
		{"npm", "1.0.0"},
		{"git-tag", "1.0.0"},
	})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header, rule and 2 rows, got %d lines: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[1], strings.Repeat("-", len("CHANNEL"))) {
		t.Errorf("rule line = %q", lines[1])
	}
	if !strings.HasPrefix(lines[3], "  git-tag") {
		t.Errorf("row = %q, want git-tag first column", lines[3])
	}

	buf.Reset()
	PrintTable(&buf, []string{"CHANNEL"}, nil)
	if buf.Len() != 0 {
		t.Errorf("expected no output for empty table, got %q", buf.String())
	}
}
