// Package manifest defines release.json, the file that marks a project root
// and lists the channels a release goes out on.
package manifest

// Manifest is the content of release.json.
type Manifest struct {
	// Channels is the ordered list of channel kinds to release on
	Channels []string `json:"channels"`

	// NPM configures the npm channel
	NPM NPM `json:"npm"`

	// Git configures the git tag channel
	Git Git `json:"git"`

	// Cargo configures the Rust crate channel
	Cargo Cargo `json:"cargo"`

	// Helm configures the Helm chart channel
	Helm Helm `json:"helm"`

	// GitHub configures the GitHub release channel
	GitHub GitHub `json:"github"`
}

// NPM configures the npm package channel.
type NPM struct {
	// Package is the root-relative package manifest (default: package.json)
	Package string `json:"package,omitempty"`

	// SkipLockfile leaves package-lock.json untouched when set
	SkipLockfile bool `json:"skipLockfile,omitempty"`
}

// Git configures the git tag channel.
type Git struct {
	// TagPrefix is prepended to the version to form the tag name (default: v)
	TagPrefix *string `json:"tagPrefix,omitempty"`

	// Remote is the remote tags are pushed to (default: origin)
	Remote string `json:"remote,omitempty"`

	// Push pushes new tags to Remote
	Push bool `json:"push,omitempty"`

	// RequireClean refuses releases from a dirty worktree
	RequireClean bool `json:"requireClean,omitempty"`
}

// Cargo configures the Rust crate channel.
type Cargo struct {
	// Manifest is the root-relative crate manifest (default: Cargo.toml)
	Manifest string `json:"manifest,omitempty"`
}

// Helm configures the Helm chart channel.
type Helm struct {
	// Chart is the root-relative chart metadata file (default: Chart.yaml)
	Chart string `json:"chart,omitempty"`

	// AppVersion also sets the chart's appVersion
	AppVersion bool `json:"appVersion,omitempty"`
}

// GitHub configures the GitHub release channel. Owner and Repo default to
// the GitHub remote of the checkout.
type GitHub struct {
	Owner string `json:"owner,omitempty"`
	Repo  string `json:"repo,omitempty"`

	// APIURL points at a GitHub Enterprise API, e.g. https://ghe.example.com/api/v3/
	APIURL string `json:"apiURL,omitempty"`

	// Draft creates releases as drafts
	Draft bool `json:"draft,omitempty"`

	// GenerateNotes asks GitHub to write the release notes
	GenerateNotes bool `json:"generateNotes,omitempty"`
}

const (
	// DefaultPackage is the npm package manifest name.
	DefaultPackage = "package.json"

	// DefaultTagPrefix is prepended to versions to name git tags.
	DefaultTagPrefix = "v"

	// DefaultRemote is the remote git tags are pushed to.
	DefaultRemote = "origin"

	// DefaultCrate is the Rust crate manifest name.
	DefaultCrate = "Cargo.toml"

	// DefaultChart is the Helm chart metadata file name.
	DefaultChart = "Chart.yaml"
)

// Default returns the manifest written by `release init`.
func Default(channels []string) *Manifest {
	m := &Manifest{Channels: append([]string{}, channels...)}
	m.applyDefaults()
	return m
}

// Prefix returns the tag prefix, which may deliberately be empty.
func (g Git) Prefix() string {
	if g.TagPrefix == nil {
		return DefaultTagPrefix
	}
	return *g.TagPrefix
}

func (m *Manifest) applyDefaults() {
	if m.Channels == nil {
		m.Channels = []string{}
	}
	if m.NPM.Package == "" {
		m.NPM.Package = DefaultPackage
	}
	if m.Git.Remote == "" {
		m.Git.Remote = DefaultRemote
	}
	if m.Git.TagPrefix == nil {
		prefix := DefaultTagPrefix
		m.Git.TagPrefix = &prefix
	}
	if m.Cargo.Manifest == "" {
		m.Cargo.Manifest = DefaultCrate
	}
	if m.Helm.Chart == "" {
		m.Helm.Chart = DefaultChart
	}
}
