// Package npm implements the release channel that carries the version in an
// npm package manifest.
package npm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/danieljhkim/release/internal/channel"
	"github.com/danieljhkim/release/internal/manifest"
	"github.com/danieljhkim/release/internal/versions"
)

// Kind is the identifier the npm channel is registered under.
const Kind = "npm"

// Lockfile is the npm lockfile kept in step with the package manifest.
const Lockfile = "package-lock.json"

// Channel releases by rewriting the version field of package.json.
type Channel struct {
	*channel.Base

	pkg          string
	skipLockfile bool
}

// New creates an npm channel configured by m.
func New(m *manifest.Manifest, opts ...channel.Option) *Channel {
	c := &Channel{
		pkg:          m.NPM.Package,
		skipLockfile: m.NPM.SkipLockfile,
	}
	if c.pkg == "" {
		c.pkg = manifest.DefaultPackage
	}
	c.Base = channel.New(Kind, c, opts...)
	return c
}

// packageInfo is the subset of package.json the channel inspects.
type packageInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ReadVersion returns the package manifest's version, or NoVersion when the
// manifest does not exist.
func (c *Channel) ReadVersion(ctx context.Context) (string, error) {
	info, found, err := c.readInfo()
	if err != nil || !found {
		return channel.NoVersion, err
	}
	return info.Version, nil
}

// WriteVersion rewrites the version in the package manifest and, when
// present, in the lockfile.
func (c *Channel) WriteVersion(ctx context.Context, version string, done *channel.Completion[error]) channel.Reply[error] {
	if err := c.rewrite(c.pkg, version, false); err != nil {
		return channel.Immediate(err)
	}

	if c.skipLockfile {
		return channel.Immediate[error](nil)
	}
	hasLock, err := c.Exists(Lockfile)
	if err != nil {
		return channel.Immediate(err)
	}
	if hasLock {
		if err := c.rewrite(Lockfile, version, true); err != nil {
			return channel.Immediate(err)
		}
	}

	c.Debug("package version written", zap.String("version", version), zap.Bool("lockfile", hasLock))
	return channel.Immediate[error](nil)
}

// CheckConflict refuses versions that are not strict semver, that would move
// the package backwards, or that target a package without a name.
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
		return channel.Immediate(channel.ConflictOf(c.pkg + " not found"))
	}
	if info.Name == "" {
		return channel.Immediate(channel.GenericConflict())
	}

	return channel.Immediate(versions.NotBehind(want, info.Version))
}

func (c *Channel) readInfo() (packageInfo, bool, error) {
	var info packageInfo
	ok, err := c.Exists(c.pkg)
	if err != nil || !ok {
		return info, false, err
	}
	if err := c.ReadJSON(c.pkg, &info); err != nil {
		return info, false, err
	}
	return info, true, nil
}

// rewrite sets the version field of the root-relative JSON file name,
// preserving key order. Lockfiles also carry the version under packages[""].
func (c *Channel) rewrite(name, version string, lockfile bool) error {
	var doc document
	if err := c.ReadJSON(name, &doc); err != nil {
		return err
	}
	if err := doc.set("version", version); err != nil {
		return fmt.Errorf("updating %s: %w", name, err)
	}

	if lockfile {
		if err := setRootPackageVersion(&doc, version); err != nil {
			return fmt.Errorf("updating %s: %w", name, err)
		}
	}

	return c.WriteJSON(name, &doc)
}

// setRootPackageVersion updates packages[""].version in a v2+ lockfile.
func setRootPackageVersion(doc *document, version string) error {
	var packages document
	found, err := doc.get("packages", &packages)
	if err != nil || !found {
		return err
	}

	var rootPkg document
	found, err = packages.get("", &rootPkg)
	if err != nil || !found {
		return err
	}

	if err := rootPkg.set("version", version); err != nil {
		return err
	}
	if err := packages.set("", &rootPkg); err != nil {
		return err
	}
	return doc.set("packages", &packages)
}
