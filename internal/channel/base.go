package channel

import (
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/danieljhkim/release/internal/fsops"
	"github.com/danieljhkim/release/internal/logging"
)

// DefaultMarker is the file that marks a project root.
const DefaultMarker = "release.json"

// ExitCode is the status Exit terminates the process with. POSIX shells
// observe it as 255.
const ExitCode = -1

// exitFunc is swapped out by tests.
var exitFunc = os.Exit

// Base implements root resolution, root-relative file access and the release
// lifecycle shared by every channel. Concrete channels embed *Base and pass
// themselves as hooks to New.
type Base struct {
	kind   string
	name   string
	prefix string
	marker string

	fs  fsops.FS
	log *zap.Logger

	// Capabilities, resolved once in New.
	rootPredicate RootPredicate
	getter        VersionGetter
	setter        VersionSetter
	checker       ConflictChecker

	cwd            string
	rootDir        string
	resolved       bool
	isPackage      bool
	versionChanged bool
}

// Option configures a Base.
type Option func(*Base)

// WithCwd sets the directory root resolution starts from.
func WithCwd(dir string) Option {
	return func(b *Base) {
		b.cwd = dir
	}
}

// WithMarker overrides the root marker file name.
func WithMarker(name string) Option {
	return func(b *Base) {
		if name != "" {
			b.marker = name
		}
	}
}

// WithFS sets the filesystem the channel reads and writes through.
func WithFS(fs fsops.FS) Option {
	return func(b *Base) {
		if fs != nil {
			b.fs = fs
		}
	}
}

// WithLogger redirects the channel's error and debug output.
func WithLogger(log *zap.Logger) Option {
	return func(b *Base) {
		if log != nil {
			b.log = log
		}
	}
}

// New creates a Base of the given kind and resolves its root immediately.
//
// hooks is the concrete channel; each capability interface it implements
// replaces the corresponding default. hooks may be nil for a plain
// root-resolving Base.
func New(kind string, hooks any, opts ...Option) *Base {
	b := &Base{
		kind:   kind,
		marker: DefaultMarker,
		fs:     fsops.NewRealFS(),
	}
	for _, opt := range opts {
		opt(b)
	}

	b.name = strings.ToLower(kind)
	if np, ok := hooks.(NameProvider); ok {
		b.name = np.ChannelName()
	}
	b.prefix = "[" + b.name + "]"

	if b.log == nil {
		b.log = logging.Stderr()
	}
	b.log = b.log.Named(b.name)

	b.rootPredicate, _ = hooks.(RootPredicate)
	b.getter, _ = hooks.(VersionGetter)
	b.setter, _ = hooks.(VersionSetter)
	b.checker, _ = hooks.(ConflictChecker)

	b.FindRoot(b.cwd)
	return b
}

// Kind returns the identifier the channel was registered under.
func (b *Base) Kind() string { return b.kind }

// Name returns the channel's display name.
func (b *Base) Name() string { return b.name }

// Prefix returns the tag used to label the channel's output, e.g. "[npm]".
func (b *Base) Prefix() string { return b.prefix }

// Cwd returns the directory root resolution started from.
func (b *Base) Cwd() string { return b.cwd }

// Root returns the resolved project root and whether one was found.
func (b *Base) Root() (string, bool) { return b.rootDir, b.resolved }

// IsPackage reports whether the channel found a project root.
func (b *Base) IsPackage() bool { return b.isPackage }

// VersionChanged reports whether the last SetVersion invoked the setter.
func (b *Base) VersionChanged() bool { return b.versionChanged }

// FS returns the filesystem the channel uses.
func (b *Base) FS() fsops.FS { return b.fs }

// Logger returns the channel's named logger.
func (b *Base) Logger() *zap.Logger { return b.log }

// Error logs msg at error level under the channel's name.
func (b *Base) Error(msg string, fields ...zap.Field) {
	b.log.Error(msg, fields...)
}

// Debug logs msg at debug level under the channel's name.
func (b *Base) Debug(msg string, fields ...zap.Field) {
	b.log.Debug(msg, fields...)
}

// Exit flushes the channel's logger and terminates the process with ExitCode.
func (b *Base) Exit() {
	_ = b.log.Sync()
	Exit()
}

// Exit terminates the process with ExitCode.
func Exit() {
	exitFunc(ExitCode)
}
