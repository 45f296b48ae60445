package channel

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Outcome is the result of SetVersion.
type Outcome int

const (
	// Failed means the version could not be set; done received the error.
	Failed Outcome = iota

	// Unchanged means the channel already carried the version.
	Unchanged

	// Changed means the setter was invoked. A pending setter may still
	// report an error through done.
	Changed
)

func (o Outcome) String() string {
	switch o {
	case Changed:
		return "changed"
	case Unchanged:
		return "unchanged"
	default:
		return "failed"
	}
}

// GetVersion returns the channel's current version, or NoVersion when the
// channel has no VersionGetter.
func (b *Base) GetVersion(ctx context.Context) (string, error) {
	if b.getter == nil {
		return NoVersion, nil
	}
	return b.getter.ReadVersion(ctx)
}

// SetVersion publishes version on the channel.
//
// The setter runs only when version differs from GetVersion. done is called
// exactly once: with nil when the version is unchanged or was set, or with an
// error wrapping ErrVersionSet. Failures are logged and reported, never
// propagated. A setter that returns Pending and never resolves leaves done
// uncalled.
func (b *Base) SetVersion(ctx context.Context, version string, done func(error)) Outcome {
	if done == nil {
		done = func(error) {}
	}

	current, err := b.GetVersion(ctx)
	if err != nil {
		b.versionChanged = false
		return b.failSet(version, fmt.Errorf("%w: reading current version: %w", ErrVersionSet, err), done)
	}

	if current == version {
		b.versionChanged = false
		b.Debug("version unchanged", zap.String("version", version))
		done(nil)
		return Unchanged
	}

	if b.setter == nil {
		b.versionChanged = false
		return b.failSet(version, fmt.Errorf("%w: %w", ErrVersionSet, ErrUnsupported), done)
	}

	completion := NewCompletion(func(err error) {
		if err != nil {
			err = fmt.Errorf("%w: %w", ErrVersionSet, err)
			b.Error("failed to set version", zap.String("version", version), zap.Error(err))
		}
		done(err)
	})
	completion.dropped = func(err error) {
		b.Debug("ignoring repeated version completion", zap.String("version", version), zap.Error(err))
	}

	b.Debug("setting version", zap.String("from", current), zap.String("to", version))
	reply := b.setter.WriteVersion(ctx, version, completion)
	b.versionChanged = true

	if reply.IsPending() {
		return Changed
	}

	// A setter that already resolved done keeps its own verdict.
	if err := reply.Value(); completion.Resolve(err) && err != nil {
		return Failed
	}
	return Changed
}

func (b *Base) failSet(version string, err error, done func(error)) Outcome {
	b.Error("failed to set version", zap.String("version", version), zap.Error(err))
	done(err)
	return Failed
}

// ConflictCheck asks the channel whether version may be released.
//
// done is called exactly once, with nil when there is no conflict or with a
// *ConflictError. Without a ConflictChecker, done(nil) is called before
// ConflictCheck returns.
func (b *Base) ConflictCheck(ctx context.Context, version string, done func(error)) {
	if done == nil {
		done = func(error) {}
	}

	if b.checker == nil {
		done(nil)
		return
	}

	completion := NewCompletion(func(c Conflict) {
		if !c.Found {
			done(nil)
			return
		}
		msg := c.message()
		b.Error(msg, zap.String("version", version))
		done(&ConflictError{Channel: b.name, Version: version, Message: msg})
	})
	completion.dropped = func(c Conflict) {
		b.Debug("ignoring repeated conflict verdict", zap.String("version", version), zap.Bool("conflict", c.Found))
	}

	reply := b.checker.CheckConflict(ctx, version, completion)
	if !reply.IsPending() {
		completion.Resolve(reply.Value())
	}
}
