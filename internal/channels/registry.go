// Package channels registers the concrete release channels and opens the
// ones a project's release.json asks for.
package channels

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/danieljhkim/release/internal/channel"
	"github.com/danieljhkim/release/internal/channels/cargo"
	"github.com/danieljhkim/release/internal/channels/ghrelease"
	"github.com/danieljhkim/release/internal/channels/gittag"
	"github.com/danieljhkim/release/internal/channels/helm"
	"github.com/danieljhkim/release/internal/channels/npm"
	"github.com/danieljhkim/release/internal/fsops"
	"github.com/danieljhkim/release/internal/manifest"
)

// Env carries the process-level inputs channels need beyond the manifest.
type Env struct {
	GitHub ghrelease.Config
}

// Factory builds a channel from the project manifest.
type Factory func(m *manifest.Manifest, env Env, opts ...channel.Option) channel.Channel

var registry = map[string]Factory{
	npm.Kind: func(m *manifest.Manifest, _ Env, opts ...channel.Option) channel.Channel {
		return npm.New(m, opts...)
	},
	gittag.Kind: func(m *manifest.Manifest, _ Env, opts ...channel.Option) channel.Channel {
		return gittag.New(m, opts...)
	},
	cargo.Kind: func(m *manifest.Manifest, _ Env, opts ...channel.Option) channel.Channel {
		return cargo.New(m, opts...)
	},
	helm.Kind: func(m *manifest.Manifest, _ Env, opts ...channel.Option) channel.Channel {
		return helm.New(m, opts...)
	},
	ghrelease.Kind: func(m *manifest.Manifest, env Env, opts ...channel.Option) channel.Channel {
		return ghrelease.New(m, env.GitHub, opts...)
	},
}

// Kinds returns the registered channel kinds in sorted order.
func Kinds() []string {
	kinds := make([]string, 0, len(registry))
	for kind := range registry {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// Known reports whether kind is registered.
func Known(kind string) bool {
	_, ok := registry[kind]
	return ok
}

// Options configures Open.
type Options struct {
	// Cwd is where root resolution starts (default: working directory)
	Cwd string

	// Marker is the root marker and manifest file name (default: release.json)
	Marker string

	// Fallback lists the channels to open when the manifest names none
	Fallback []string

	// Only restricts the opened channels to these kinds
	Only []string

	// Env is handed to every channel factory
	Env Env

	Logger *zap.Logger
	FS     fsops.FS
}

// Project is a resolved project root with its channels.
type Project struct {
	Root     string
	Manifest *manifest.Manifest
	Channels []channel.Channel
}

// Open finds the project root, loads its manifest and builds its channels in
// manifest order.
func Open(opts Options) (*Project, error) {
	if opts.Marker == "" {
		opts.Marker = channel.DefaultMarker
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.FS == nil {
		opts.FS = fsops.NewRealFS()
	}

	common := []channel.Option{
		channel.WithMarker(opts.Marker),
		channel.WithLogger(opts.Logger),
		channel.WithFS(opts.FS),
	}

	base := channel.New("release", nil, append(common, channel.WithCwd(opts.Cwd))...)
	root, ok := base.Root()
	if !ok {
		start := base.Cwd()
		if start == "" {
			start, _ = os.Getwd()
		}
		return nil, fmt.Errorf("%w: no %s in %s or any parent directory", channel.ErrNoRoot, opts.Marker, start)
	}

	m, err := manifest.Load(base, opts.Marker)
	if err != nil {
		return nil, err
	}

	kinds := m.Channels
	if len(kinds) == 0 {
		kinds = opts.Fallback
	}
	kinds, err = filter(kinds, opts.Only)
	if err != nil {
		return nil, err
	}

	project := &Project{Root: root, Manifest: m}
	for _, kind := range kinds {
		factory, ok := registry[kind]
		if !ok {
			return nil, fmt.Errorf("unknown channel %q (known: %s)", kind, strings.Join(Kinds(), ", "))
		}
		project.Channels = append(project.Channels, factory(m, opts.Env, append(common, channel.WithCwd(root))...))
	}

	return project, nil
}

// filter keeps the kinds listed in only, in their original order.
func filter(kinds, only []string) ([]string, error) {
	if len(only) == 0 {
		return kinds, nil
	}

	want := make(map[string]bool, len(only))
	for _, kind := range only {
		want[kind] = true
	}

	var out []string
	for _, kind := range kinds {
		if want[kind] {
			out = append(out, kind)
			delete(want, kind)
		}
	}
	if len(want) > 0 {
		missing := make([]string, 0, len(want))
		for kind := range want {
			missing = append(missing, kind)
		}
		sort.Strings(missing)
		return nil, fmt.Errorf("channel not configured for this project: %s", strings.Join(missing, ", "))
	}
	return out, nil
}
