// Package versions holds the semantic version rules every channel applies
// to a requested release.
package versions

import (
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/danieljhkim/release/internal/channel"
)

// Parse accepts MAJOR.MINOR.PATCH with optional pre-release and build
// metadata. A leading "v" is rejected; tag prefixes are a channel concern.
func Parse(version string) (*semver.Version, error) {
	v, err := semver.StrictNewVersion(version)
	if err != nil {
		return nil, fmt.Errorf("%q is not a valid semantic version", version)
	}
	return v, nil
}

// Validate returns the parsed version, or the conflict reported for a
// malformed one.
func Validate(version string) (*semver.Version, channel.Conflict) {
	v, err := Parse(version)
	if err != nil {
		return nil, channel.ConflictOf(err.Error())
	}
	return v, channel.NoConflict()
}

// NotBehind reports a conflict when want sorts below current. Releasing the
// current version again is allowed, and a current version that is not
// semver is ignored.
func NotBehind(want *semver.Version, current string) channel.Conflict {
	if current == channel.NoVersion {
		return channel.NoConflict()
	}
	cur, err := semver.NewVersion(current)
	if err != nil {
		return channel.NoConflict()
	}
	if want.LessThan(cur) {
		return channel.ConflictOf(fmt.Sprintf("version %s is lower than current %s", want, cur))
	}
	return channel.NoConflict()
}

// Highest returns the highest strict semantic version among candidates, or
// NoVersion when none parses.
func Highest(candidates []string) string {
	var best *semver.Version
	for _, c := range candidates {
		v, err := semver.StrictNewVersion(c)
		if err != nil {
			continue
		}
		if best == nil || v.GreaterThan(best) {
			best = v
		}
	}
	if best == nil {
		return channel.NoVersion
	}
	return best.Original()
}
