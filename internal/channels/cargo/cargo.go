// Package cargo implements the release channel that carries the version in
// a Rust crate manifest.
package cargo

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"

	"github.com/danieljhkim/release/internal/channel"
	"github.com/danieljhkim/release/internal/manifest"
	"github.com/danieljhkim/release/internal/versions"
)

// Kind is the identifier the cargo channel is registered under.
const Kind = "cargo"

// Lockfile is the cargo lockfile kept in step with the crate manifest.
const Lockfile = "Cargo.lock"

// errInherited is reported for crates that take their version from the
// workspace.
var errInherited = fmt.Errorf("%w: version is inherited from the workspace", channel.ErrUnsupported)

// Channel releases by rewriting the [package] version of Cargo.toml.
type Channel struct {
	*channel.Base

	crate string
}

// New creates a cargo channel configured by m.
func New(m *manifest.Manifest, opts ...channel.Option) *Channel {
	c := &Channel{crate: m.Cargo.Manifest}
	if c.crate == "" {
		c.crate = manifest.DefaultCrate
	}
	c.Base = channel.New(Kind, c, opts...)
	return c
}

// crateInfo is the subset of Cargo.toml the channel inspects. Version is a
// string, or a table such as {workspace = true}.
type crateInfo struct {
	Package struct {
		Name    string `toml:"name"`
		Version any    `toml:"version"`
	} `toml:"package"`
}

// ReadVersion returns the crate version, or NoVersion when the manifest does
// not exist.
func (c *Channel) ReadVersion(ctx context.Context) (string, error) {
	info, found, err := c.readInfo()
	if err != nil || !found {
		return channel.NoVersion, err
	}
	return info.version()
}

// WriteVersion rewrites the crate version in place, then the crate's entry
// in Cargo.lock when one exists.
func (c *Channel) WriteVersion(ctx context.Context, version string, done *channel.Completion[error]) channel.Reply[error] {
	info, _, err := c.readInfo()
	if err != nil {
		return channel.Immediate(err)
	}
	if _, err := info.version(); err != nil {
		return channel.Immediate(err)
	}

	if err := c.rewrite(c.crate, version, isPackageTable); err != nil {
		return channel.Immediate(err)
	}

	hasLock, err := c.Exists(Lockfile)
	if err != nil {
		return channel.Immediate(err)
	}
	if hasLock {
		name := info.Package.Name
		err := c.rewrite(Lockfile, version, func(table, pkg string) bool {
			return table == "[[package]]" && pkg == name
		})
		if err != nil {
			return channel.Immediate(err)
		}
	}

	c.Debug("crate version written", zap.String("version", version), zap.Bool("lockfile", hasLock))
	return channel.Immediate[error](nil)
}

// CheckConflict refuses versions that are not strict semver, that would move
// the crate backwards, or crates whose version the workspace owns.
func (c *Channel) CheckConflict(ctx context.Context, version string, done *channel.Completion[channel.Conflict]) channel.Reply[channel.Conflict] {
	want, conflict := versions.Validate(version)
	if conflict.Found {
		return channel.Immediate(conflict)
	}

	info, found, err := c.readInfo()
	if err != nil {
		return channel.Immediate(channel.ConflictOf(err.Error()))
	}
	if !found {
		return channel.Immediate(channel.ConflictOf(c.crate + " not found"))
	}
	current, err := info.version()
	if err != nil {
		return channel.Immediate(channel.ConflictOf(err.Error()))
	}

	return channel.Immediate(versions.NotBehind(want, current))
}

func (i crateInfo) version() (string, error) {
	switch v := i.Package.Version.(type) {
	case nil:
		return channel.NoVersion, nil
	case string:
		return v, nil
	default:
		return channel.NoVersion, errInherited
	}
}

func (c *Channel) readInfo() (crateInfo, bool, error) {
	var info crateInfo
	data, err := c.read(c.crate)
	if errors.Is(err, os.ErrNotExist) {
		return info, false, nil
	}
	if err != nil {
		return info, false, err
	}
	if _, err := toml.Decode(string(data), &info); err != nil {
		return info, false, fmt.Errorf("%w: %s: %w", channel.ErrParse, c.crate, err)
	}
	return info, true, nil
}

func (c *Channel) read(name string) ([]byte, error) {
	path, err := c.Path(name)
	if err != nil {
		return nil, err
	}
	data, err := c.FS().ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", channel.ErrIO, name, err)
	}
	return data, nil
}

// rewrite sets the version line of the table match selects in the
// root-relative TOML file name, leaving every other byte alone.
func (c *Channel) rewrite(name, version string, match tableMatcher) error {
	src, err := c.read(name)
	if err != nil {
		return err
	}
	out, ok := setVersion(string(src), version, match)
	if !ok {
		return fmt.Errorf("%s: no version to update", name)
	}

	var check map[string]any
	if _, err := toml.Decode(out, &check); err != nil {
		return fmt.Errorf("%w: %s after update: %w", channel.ErrParse, name, err)
	}

	path, err := c.Path(name)
	if err != nil {
		return err
	}
	if err := c.FS().WriteFile(path, []byte(out), 0644); err != nil {
		return fmt.Errorf("%w: %s: %w", channel.ErrIO, name, err)
	}
	return nil
}
