// Package helm implements the release channel that carries the version in a
// Helm chart's Chart.yaml.
package helm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/danieljhkim/release/internal/channel"
	"github.com/danieljhkim/release/internal/manifest"
	"github.com/danieljhkim/release/internal/versions"
)

// Kind is the identifier the helm channel is registered under.
const Kind = "helm"

// Channel releases by rewriting the chart version.
type Channel struct {
	*channel.Base

	chart      string
	appVersion bool
}

// New creates a helm channel configured by m.
func New(m *manifest.Manifest, opts ...channel.Option) *Channel {
	c := &Channel{
		chart:      m.Helm.Chart,
		appVersion: m.Helm.AppVersion,
	}
	if c.chart == "" {
		c.chart = manifest.DefaultChart
	}
	c.Base = channel.New(Kind, c, opts...)
	return c
}

// ChannelName labels the channel by what it publishes.
func (c *Channel) ChannelName() string {
	return "helm-chart"
}

// ReadVersion returns the chart version, or NoVersion when the chart file
// does not exist.
func (c *Channel) ReadVersion(ctx context.Context) (string, error) {
	doc, found, err := c.load()
	if err != nil || !found {
		return channel.NoVersion, err
	}
	if v := lookup(doc, "version"); v != nil {
		return v.Value, nil
	}
	return channel.NoVersion, nil
}

// WriteVersion sets version (and appVersion when configured) in the chart
// file. Comments and key order survive the rewrite.
func (c *Channel) WriteVersion(ctx context.Context, version string, done *channel.Completion[error]) channel.Reply[error] {
	doc, found, err := c.load()
	if err != nil {
		return channel.Immediate(err)
	}
	if !found {
		return channel.Immediate(fmt.Errorf("%w: %s not found", channel.ErrIO, c.chart))
	}

	keys := []string{"version"}
	if c.appVersion {
		keys = append(keys, "appVersion")
	}
	for _, key := range keys {
		if err := set(doc, key, version); err != nil {
			return channel.Immediate(fmt.Errorf("updating %s: %w", c.chart, err))
		}
	}

	if err := c.save(doc); err != nil {
		return channel.Immediate(err)
	}
	c.Debug("chart version written", zap.String("version", version), zap.Strings("keys", keys))
	return channel.Immediate[error](nil)
}

// CheckConflict refuses versions that are not strict semver (Helm requires
// SemVer 2 chart versions) or that would move the chart backwards.
func (c *Channel) CheckConflict(ctx context.Context, version string, done *channel.Completion[channel.Conflict]) channel.Reply[channel.Conflict] {
	want, conflict := versions.Validate(version)
	if conflict.Found {
		return channel.Immediate(conflict)
	}

	doc, found, err := c.load()
	if err != nil {
		return channel.Immediate(channel.ConflictOf(err.Error()))
	}
	if !found {
		return channel.Immediate(channel.ConflictOf(c.chart + " not found"))
	}
	if name := lookup(doc, "name"); name == nil || name.Value == "" {
		return channel.Immediate(channel.ConflictOf(c.chart + " has no chart name"))
	}

	current := channel.NoVersion
	if v := lookup(doc, "version"); v != nil {
		current = v.Value
	}
	return channel.Immediate(versions.NotBehind(want, current))
}

// load parses the chart file into a node tree. found is false when the file
// does not exist.
func (c *Channel) load() (*yaml.Node, bool, error) {
	path, err := c.Path(c.chart)
	if err != nil {
		return nil, false, err
	}
	data, err := c.FS().ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: %s: %w", channel.ErrIO, c.chart, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, false, fmt.Errorf("%w: %s: %w", channel.ErrParse, c.chart, err)
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, false, fmt.Errorf("%w: %s: top level is not a mapping", channel.ErrParse, c.chart)
	}
	return &doc, true, nil
}

func (c *Channel) save(doc *yaml.Node) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding %s: %w", c.chart, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encoding %s: %w", c.chart, err)
	}

	path, err := c.Path(c.chart)
	if err != nil {
		return err
	}
	if err := c.FS().WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("%w: %s: %w", channel.ErrIO, c.chart, err)
	}
	return nil
}

// lookup returns the scalar value node for a top-level key.
func lookup(doc *yaml.Node, key string) *yaml.Node {
	m := doc.Content[0]
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key && m.Content[i+1].Kind == yaml.ScalarNode {
			return m.Content[i+1]
		}
	}
	return nil
}

// set updates a top-level scalar, appending the key when it is missing.
// Values are always written as strings so "1.10" stays a version.
func set(doc *yaml.Node, key, value string) error {
	m := doc.Content[0]
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value != key {
			continue
		}
		v := m.Content[i+1]
		if v.Kind != yaml.ScalarNode {
			return fmt.Errorf("%s is not a scalar", key)
		}
		v.Value = value
		v.Tag = "!!str"
		return nil
	}

	m.Content = append(m.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value},
	)
	return nil
}
