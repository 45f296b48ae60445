package channels

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/danieljhkim/release/internal/channel"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func kindsOf(p *Project) []string {
	var kinds []string
	for _, ch := range p.Channels {
		kinds = append(kinds, ch.Kind())
	}
	return kinds
}

func TestKinds(t *testing.T) {
	if got := Kinds(); !reflect.DeepEqual(got, []string{"cargo", "git", "github", "helm", "npm"}) {
		t.Errorf("Kinds() = %v", got)
	}
	if !Known("npm") || Known("pypi") {
		t.Error("Known reports the wrong kinds")
	}
}

func TestOpen(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "release.json"), `{"channels": ["git", "npm"]}`)
	sub := filepath.Join(root, "src")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatalf("failed to create sub: %v", err)
	}

	p, err := Open(Options{Cwd: sub})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if p.Root != root {
		t.Errorf("Root = %s, want %s", p.Root, root)
	}
	if got := kindsOf(p); !reflect.DeepEqual(got, []string{"git", "npm"}) {
		t.Errorf("channels = %v, want manifest order [git npm]", got)
	}
	if npmRoot, ok := p.Channels[1].Root(); !ok || npmRoot != root {
		t.Errorf("npm channel root = (%s, %v)", npmRoot, ok)
	}
}

func TestOpen_AllChannels(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "release.json"), `{
  "channels": ["npm", "cargo", "helm", "git", "github"],
  "github": {"owner": "acme", "repo": "widget"}
}`)

	p, err := Open(Options{Cwd: root, Env: Env{}})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	var names []string
	for _, ch := range p.Channels {
		names = append(names, ch.Name())
	}
	want := []string{"npm", "cargo", "helm-chart", "git-tag", "github-release"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("names = %v, want %v", names, want)
	}
}

func TestOpen_FallbackAndFilter(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "release.json"), `{}`)

	p, err := Open(Options{Cwd: root, Fallback: []string{"npm", "git"}})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if got := kindsOf(p); !reflect.DeepEqual(got, []string{"npm", "git"}) {
		t.Errorf("channels = %v, want fallback [npm git]", got)
	}

	p, err = Open(Options{Cwd: root, Fallback: []string{"npm", "git"}, Only: []string{"git"}})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if got := kindsOf(p); !reflect.DeepEqual(got, []string{"git"}) {
		t.Errorf("channels = %v, want [git]", got)
	}

	if _, err := Open(Options{Cwd: root, Fallback: []string{"npm"}, Only: []string{"git"}}); err == nil {
		t.Error("expected error when filtering on an unconfigured channel")
	}
}

func TestOpen_CustomMarker(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "ship.json"), `{"channels": ["npm"]}`)

	p, err := Open(Options{Cwd: root, Marker: "ship.json"})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if len(p.Channels) != 1 || p.Channels[0].Kind() != "npm" {
		t.Errorf("channels = %v", kindsOf(p))
	}
}

func TestOpen_Errors(t *testing.T) {
	t.Run("no root", func(t *testing.T) {
		_, err := Open(Options{Cwd: t.TempDir(), Marker: "no-such-marker-7f3a.json"})
		if !errors.Is(err, channel.ErrNoRoot) {
			t.Errorf("Open error = %v, want ErrNoRoot", err)
		}
	})

	t.Run("unknown channel", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "release.json"), `{"channels": ["pypi"]}`)

		_, err := Open(Options{Cwd: root})
		if err == nil || !strings.Contains(err.Error(), `unknown channel "pypi"`) {
			t.Errorf("Open error = %v", err)
		}
	})

	t.Run("malformed manifest", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "release.json"), `{"channels": `)

		_, err := Open(Options{Cwd: root})
		if !errors.Is(err, channel.ErrParse) {
			t.Errorf("Open error = %v, want ErrParse", err)
		}
	})
}
