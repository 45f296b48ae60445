package channel

import "context"

// NoVersion is reported when a channel has no version to read.
const NoVersion = ""

// NameProvider overrides the default channel name (the lowercased kind).
type NameProvider interface {
	ChannelName() string
}

// RootPredicate overrides the default root test (marker file present in dir).
// It runs while the Base is still being constructed, so it receives the Base
// explicitly rather than through the embedding channel.
type RootPredicate interface {
	IsRoot(b *Base, dir string) bool
}

// VersionGetter reads the version currently published by the channel.
// Implementations return NoVersion when nothing has been published yet.
type VersionGetter interface {
	ReadVersion(ctx context.Context) (string, error)
}

// VersionSetter publishes a new version.
//
// A setter either returns Immediate(err) or returns Pending and later calls
// done.Resolve(err) itself. It is only invoked when the requested version
// differs from the one ReadVersion reports.
type VersionSetter interface {
	WriteVersion(ctx context.Context, version string, done *Completion[error]) Reply[error]
}

// ConflictChecker decides whether version may be released on the channel.
//
// A checker answers with Immediate(...) or returns Pending and resolves done
// itself. Whichever answer arrives first is reported.
type ConflictChecker interface {
	CheckConflict(ctx context.Context, version string, done *Completion[Conflict]) Reply[Conflict]
}

// Conflict is a ConflictChecker's verdict.
type Conflict struct {
	// Found is set when the version must not be released.
	Found bool

	// Message explains the conflict. Empty means DefaultConflictMessage.
	Message string
}

// NoConflict reports that the version can be released.
func NoConflict() Conflict {
	return Conflict{}
}

// ConflictOf reports a conflict with an explanation.
func ConflictOf(message string) Conflict {
	return Conflict{Found: true, Message: message}
}

// GenericConflict reports a conflict without an explanation.
func GenericConflict() Conflict {
	return Conflict{Found: true}
}

// message returns the message to report, normalizing generic conflicts.
func (c Conflict) message() string {
	if c.Message == "" {
		return DefaultConflictMessage
	}
	return c.Message
}

// Channel is the lifecycle the release CLI drives. *Base implements it, so
// every concrete channel embedding *Base does too.
type Channel interface {
	Kind() string
	Name() string
	Root() (string, bool)
	GetVersion(ctx context.Context) (string, error)
	ConflictCheck(ctx context.Context, version string, done func(error))
	SetVersion(ctx context.Context, version string, done func(error)) Outcome
	VersionChanged() bool
}
