// Package ghrelease implements the release channel that publishes a GitHub
// release for the version.
package ghrelease

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/google/go-github/v57/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/danieljhkim/release/internal/channel"
	"github.com/danieljhkim/release/internal/manifest"
	"github.com/danieljhkim/release/internal/versions"
)

// Kind is the identifier the GitHub release channel is registered under.
const Kind = "github"

// GitHub penalizes bursts of API calls from one token, so calls are spaced.
const (
	defaultRateLimit = 5
	defaultBurst     = 5
)

// Config carries what the manifest must not: credentials and transport.
type Config struct {
	// Token authenticates API calls; required to create releases
	Token string

	// HTTPClient is the base transport (default: http.DefaultClient)
	HTTPClient *http.Client
}

// Channel releases by creating a GitHub release named after the tag.
type Channel struct {
	*channel.Base

	client        *github.Client
	limiter       *rate.Limiter
	hasToken      bool
	owner         string
	repo          string
	remote        string
	prefix        string
	draft         bool
	generateNotes bool
	apiErr        error
}

// New creates a GitHub release channel configured by m and cfg.
func New(m *manifest.Manifest, cfg Config, opts ...channel.Option) *Channel {
	c := &Channel{
		hasToken:      cfg.Token != "",
		owner:         m.GitHub.Owner,
		repo:          m.GitHub.Repo,
		remote:        m.Git.Remote,
		prefix:        m.Git.Prefix(),
		draft:         m.GitHub.Draft,
		generateNotes: m.GitHub.GenerateNotes,
		limiter:       rate.NewLimiter(rate.Limit(defaultRateLimit), defaultBurst),
	}
	if c.remote == "" {
		c.remote = manifest.DefaultRemote
	}

	httpClient := cfg.HTTPClient
	if cfg.Token != "" {
		ctx := context.Background()
		if httpClient != nil {
			ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
		}
		httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token}))
	}
	c.client = github.NewClient(httpClient)
	if m.GitHub.APIURL != "" {
		c.apiErr = setBaseURL(c.client, m.GitHub.APIURL)
	}

	c.Base = channel.New(Kind, c, opts...)
	return c
}

// ChannelName labels the channel by what it publishes.
func (c *Channel) ChannelName() string {
	return "github-release"
}

// ReadVersion returns the highest version among the releases whose tag
// carries the prefix, drafts and prereleases included, or NoVersion when
// there are none.
func (c *Channel) ReadVersion(ctx context.Context) (string, error) {
	owner, repo, err := c.coordinates()
	if err != nil {
		return channel.NoVersion, err
	}

	var candidates []string
	opts := &github.ListOptions{PerPage: 100}
	for {
		if err := c.wait(ctx); err != nil {
			return channel.NoVersion, err
		}
		releases, resp, err := c.client.Repositories.ListReleases(ctx, owner, repo, opts)
		if err != nil {
			return channel.NoVersion, fmt.Errorf("failed to list releases of %s/%s: %w", owner, repo, err)
		}
		for _, rel := range releases {
			if tag := rel.GetTagName(); strings.HasPrefix(tag, c.prefix) {
				candidates = append(candidates, strings.TrimPrefix(tag, c.prefix))
			}
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return versions.Highest(candidates), nil
}

// WriteVersion creates the release in the background and resolves done when
// GitHub answers.
func (c *Channel) WriteVersion(ctx context.Context, version string, done *channel.Completion[error]) channel.Reply[error] {
	owner, repo, err := c.coordinates()
	if err != nil {
		return channel.Immediate(err)
	}
	v, err := versions.Parse(version)
	if err != nil {
		return channel.Immediate(err)
	}

	tag := c.prefix + version
	release := &github.RepositoryRelease{
		TagName:              github.String(tag),
		Name:                 github.String(tag),
		Draft:                github.Bool(c.draft),
		Prerelease:           github.Bool(v.Prerelease() != ""),
		GenerateReleaseNotes: github.Bool(c.generateNotes),
	}

	go func() {
		if err := c.wait(ctx); err != nil {
			done.Resolve(err)
			return
		}
		created, _, err := c.client.Repositories.CreateRelease(ctx, owner, repo, release)
		if err != nil {
			done.Resolve(fmt.Errorf("failed to create release %s on %s/%s: %w", tag, owner, repo, err))
			return
		}
		c.Debug("release created", zap.String("tag", tag), zap.String("url", created.GetHTMLURL()))
		done.Resolve(nil)
	}()
	return channel.Pending[error]()
}

// CheckConflict refuses versions that are not strict semver, releases that
// already exist, and runs without a token. The lookup runs in the
// background.
func (c *Channel) CheckConflict(ctx context.Context, version string, done *channel.Completion[channel.Conflict]) channel.Reply[channel.Conflict] {
	if _, conflict := versions.Validate(version); conflict.Found {
		return channel.Immediate(conflict)
	}
	if !c.hasToken {
		return channel.Immediate(channel.ConflictOf("no GitHub token; set GITHUB_TOKEN"))
	}
	owner, repo, err := c.coordinates()
	if err != nil {
		return channel.Immediate(channel.ConflictOf(err.Error()))
	}

	tag := c.prefix + version
	go func() {
		if err := c.wait(ctx); err != nil {
			done.Resolve(channel.ConflictOf(err.Error()))
			return
		}
		_, resp, err := c.client.Repositories.GetReleaseByTag(ctx, owner, repo, tag)
		switch {
		case isNotFound(resp):
			done.Resolve(channel.NoConflict())
		case err != nil:
			done.Resolve(channel.ConflictOf(fmt.Sprintf("cannot query releases of %s/%s: %v", owner, repo, err)))
		default:
			done.Resolve(channel.ConflictOf(fmt.Sprintf("release %s already exists on %s/%s", tag, owner, repo)))
		}
	}()
	return channel.Pending[channel.Conflict]()
}

// coordinates returns the configured owner and repository, falling back to
// the GitHub remote of the checkout.
func (c *Channel) coordinates() (string, string, error) {
	if c.apiErr != nil {
		return "", "", c.apiErr
	}
	if c.owner != "" && c.repo != "" {
		return c.owner, c.repo, nil
	}

	root, ok := c.Root()
	if !ok {
		return "", "", fmt.Errorf("%w: %s", channel.ErrNoRoot, c.Name())
	}
	repo, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", "", fmt.Errorf("github.owner and github.repo are not set and %s is not a git checkout", root)
	}
	remote, err := repo.Remote(c.remote)
	if err != nil {
		return "", "", fmt.Errorf("github.owner and github.repo are not set and remote %q is missing", c.remote)
	}
	for _, u := range remote.Config().URLs {
		if owner, name, ok := parseRemote(u); ok {
			c.owner, c.repo = owner, name
			return owner, name, nil
		}
	}
	return "", "", fmt.Errorf("remote %q does not point at GitHub", c.remote)
}

// parseRemote extracts owner and repository from a GitHub remote URL in
// https, ssh or scp-like form.
func parseRemote(raw string) (string, string, bool) {
	var path string
	switch {
	case strings.HasPrefix(raw, "git@github.com:"):
		path = strings.TrimPrefix(raw, "git@github.com:")
	default:
		u, err := url.Parse(raw)
		if err != nil || u.Hostname() != "github.com" {
			return "", "", false
		}
		path = strings.TrimPrefix(u.Path, "/")
	}

	path = strings.TrimSuffix(strings.TrimSuffix(path, "/"), ".git")
	owner, repo, ok := strings.Cut(path, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", false
	}
	return owner, repo, true
}

func (c *Channel) wait(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}
	return nil
}

func setBaseURL(client *github.Client, raw string) error {
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid github.apiURL %q: %w", raw, err)
	}
	client.BaseURL = u
	return nil
}

func isNotFound(resp *github.Response) bool {
	return resp != nil && resp.StatusCode == http.StatusNotFound
}
