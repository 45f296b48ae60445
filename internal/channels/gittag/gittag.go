// Package gittag implements the release channel that carries the version as
// an annotated git tag.
package gittag

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"go.uber.org/zap"

	"github.com/danieljhkim/release/internal/channel"
	"github.com/danieljhkim/release/internal/clock"
	"github.com/danieljhkim/release/internal/manifest"
	"github.com/danieljhkim/release/internal/versions"
)

// Kind is the identifier the git tag channel is registered under.
const Kind = "git"

// Tagger identity used when git config has none.
const (
	fallbackName  = "release"
	fallbackEmail = "release@localhost"
)

// Channel releases by tagging HEAD.
type Channel struct {
	*channel.Base

	prefix       string
	remote       string
	push         bool
	requireClean bool
	clock        clock.Clock
}

// New creates a git tag channel configured by m.
func New(m *manifest.Manifest, opts ...channel.Option) *Channel {
	return NewWithClock(m, clock.System{}, opts...)
}

// NewWithClock creates a git tag channel that stamps tags with clk's time.
func NewWithClock(m *manifest.Manifest, clk clock.Clock, opts ...channel.Option) *Channel {
	c := &Channel{
		prefix:       m.Git.Prefix(),
		remote:       m.Git.Remote,
		push:         m.Git.Push,
		requireClean: m.Git.RequireClean,
		clock:        clk,
	}
	if c.remote == "" {
		c.remote = manifest.DefaultRemote
	}
	c.Base = channel.New(Kind, c, opts...)
	return c
}

// ChannelName distinguishes the channel from other git-based ones in output.
func (c *Channel) ChannelName() string {
	return "git-tag"
}

// IsRoot matches the top of the git checkout (.git directory, or .git file
// for worktrees), so packages nested in a monorepo tag the repository.
func (c *Channel) IsRoot(b *channel.Base, dir string) bool {
	ok, err := b.FS().Exists(filepath.Join(dir, ".git"))
	return err == nil && ok
}

// TagName returns the tag a version is released under.
func (c *Channel) TagName(version string) string {
	return c.prefix + version
}

// ReadVersion returns the highest semantic version among the prefixed tags,
// or NoVersion when there are none. With push enabled only tags the remote
// has count, so a tag whose push failed is released again.
func (c *Channel) ReadVersion(ctx context.Context) (string, error) {
	repo, err := c.open()
	if err != nil {
		return channel.NoVersion, err
	}

	var names []string
	if c.push {
		names, err = c.remoteTags(ctx, repo)
	} else {
		names, err = localTags(repo)
	}
	if err != nil {
		return channel.NoVersion, err
	}

	var candidates []string
	for _, name := range names {
		if strings.HasPrefix(name, c.prefix) {
			candidates = append(candidates, strings.TrimPrefix(name, c.prefix))
		}
	}
	return versions.Highest(candidates), nil
}

func localTags(repo *git.Repository) ([]string, error) {
	tags, err := repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	var names []string
	err = tags.ForEach(func(ref *plumbing.Reference) error {
		names = append(names, ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read tags: %w", err)
	}
	return names, nil
}

// remoteTags lists the tag names advertised by the push remote.
func (c *Channel) remoteTags(ctx context.Context, repo *git.Repository) ([]string, error) {
	remote, err := repo.Remote(c.remote)
	if err != nil {
		return nil, fmt.Errorf("failed to find remote %s: %w", c.remote, err)
	}
	refs, err := remote.ListContext(ctx, &git.ListOptions{})
	if errors.Is(err, transport.ErrEmptyRemoteRepository) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list tags on %s: %w", c.remote, err)
	}

	var names []string
	for _, ref := range refs {
		if ref.Name().IsTag() {
			names = append(names, strings.TrimSuffix(ref.Name().Short(), "^{}"))
		}
	}
	return names, nil
}

// WriteVersion creates an annotated tag at HEAD. With push enabled the tag is
// pushed in the background and done is resolved when the push finishes.
func (c *Channel) WriteVersion(ctx context.Context, version string, done *channel.Completion[error]) channel.Reply[error] {
	repo, err := c.open()
	if err != nil {
		return channel.Immediate(err)
	}

	head, err := repo.Head()
	if err != nil {
		return channel.Immediate(fmt.Errorf("failed to resolve HEAD: %w", err))
	}

	tag := c.TagName(version)
	found, atHead, err := c.lookupTag(repo, tag, head.Hash())
	switch {
	case err != nil:
		return channel.Immediate(err)
	case found && !atHead:
		return channel.Immediate(fmt.Errorf("tag %s already exists on another commit", tag))
	case found:
		// Left behind by an earlier run whose push failed.
		c.Debug("tag already at HEAD", zap.String("tag", tag))
	default:
		if _, err := repo.CreateTag(tag, head.Hash(), &git.CreateTagOptions{
			Tagger:  c.tagger(repo),
			Message: "Release " + version,
		}); err != nil {
			return channel.Immediate(fmt.Errorf("failed to create tag %s: %w", tag, err))
		}
		c.Debug("tag created", zap.String("tag", tag), zap.String("commit", head.Hash().String()))
	}

	if !c.push {
		return channel.Immediate[error](nil)
	}

	go func() {
		done.Resolve(c.pushTag(ctx, repo, tag))
	}()
	return channel.Pending[error]()
}

// CheckConflict refuses versions that are not strict semver, whose tag
// already exists on a commit other than HEAD, or (with requireClean)
// releases from a dirty worktree.
func (c *Channel) CheckConflict(ctx context.Context, version string, done *channel.Completion[channel.Conflict]) channel.Reply[channel.Conflict] {
	if _, conflict := versions.Validate(version); conflict.Found {
		return channel.Immediate(conflict)
	}

	repo, err := c.open()
	if err != nil {
		return channel.Immediate(channel.ConflictOf(err.Error()))
	}

	head, err := repo.Head()
	if err != nil {
		return channel.Immediate(channel.ConflictOf(fmt.Sprintf("failed to resolve HEAD: %v", err)))
	}
	tag := c.TagName(version)
	found, atHead, err := c.lookupTag(repo, tag, head.Hash())
	switch {
	case err != nil:
		return channel.Immediate(channel.ConflictOf(err.Error()))
	case found && !atHead:
		return channel.Immediate(channel.ConflictOf(fmt.Sprintf("tag %s already exists", tag)))
	}

	if c.requireClean {
		clean, err := c.isClean(repo)
		if err != nil {
			return channel.Immediate(channel.ConflictOf(err.Error()))
		}
		if !clean {
			return channel.Immediate(channel.GenericConflict())
		}
	}

	return channel.Immediate(channel.NoConflict())
}

func (c *Channel) open() (*git.Repository, error) {
	root, ok := c.Root()
	if !ok {
		return nil, fmt.Errorf("%w: %s", channel.ErrNoRoot, c.Name())
	}
	repo, err := git.PlainOpen(root)
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository at %s: %w", root, err)
	}
	return repo, nil
}

// lookupTag reports whether tag exists and whether it points at head.
// Annotated tags are peeled to their commit.
func (c *Channel) lookupTag(repo *git.Repository, tag string, head plumbing.Hash) (bool, bool, error) {
	ref, err := repo.Tag(tag)
	if errors.Is(err, git.ErrTagNotFound) {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("failed to look up tag %s: %w", tag, err)
	}

	target := ref.Hash()
	obj, err := repo.TagObject(ref.Hash())
	switch {
	case err == nil:
		commit, err := obj.Commit()
		if err != nil {
			return true, false, fmt.Errorf("failed to resolve tag %s: %w", tag, err)
		}
		target = commit.Hash
	case !errors.Is(err, plumbing.ErrObjectNotFound):
		return true, false, fmt.Errorf("failed to read tag %s: %w", tag, err)
	}
	return true, target == head, nil
}

// tagger builds the tag signature from git config user.name and user.email.
func (c *Channel) tagger(repo *git.Repository) *object.Signature {
	sig := &object.Signature{
		Name:  fallbackName,
		Email: fallbackEmail,
		When:  c.clock.Now(),
	}

	cfg, err := repo.ConfigScoped(config.GlobalScope)
	if err != nil {
		c.Debug("cannot read git config", zap.Error(err))
		return sig
	}
	if cfg.User.Name != "" {
		sig.Name = cfg.User.Name
	}
	if cfg.User.Email != "" {
		sig.Email = cfg.User.Email
	}
	return sig
}

func (c *Channel) isClean(repo *git.Repository) (bool, error) {
	wt, err := repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("failed to open worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return false, fmt.Errorf("failed to read worktree status: %w", err)
	}
	return status.IsClean(), nil
}

func (c *Channel) pushTag(ctx context.Context, repo *git.Repository, tag string) error {
	ref := "refs/tags/" + tag
	err := repo.PushContext(ctx, &git.PushOptions{
		RemoteName: c.remote,
		RefSpecs:   []config.RefSpec{config.RefSpec(ref + ":" + ref)},
	})
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to push %s to %s: %w", tag, c.remote, err)
	}
	c.Debug("tag pushed", zap.String("tag", tag), zap.String("remote", c.remote))
	return nil
}
