package channel

import (
	"errors"
	"fmt"
)

var (
	// ErrArgument indicates a required argument was missing.
	ErrArgument = errors.New("missing argument")

	// ErrNoRoot indicates no project root was found for the channel.
	ErrNoRoot = errors.New("project root not found")

	// ErrIO indicates a root-relative file could not be read or written.
	ErrIO = errors.New("file access failed")

	// ErrParse indicates a root-relative file held malformed JSON.
	ErrParse = errors.New("malformed JSON")

	// ErrConflict indicates a channel refused the requested version.
	ErrConflict = errors.New("version conflict")

	// ErrVersionSet indicates the version could not be set.
	ErrVersionSet = errors.New("version set failed")

	// ErrUnsupported indicates the channel lacks the capability for an operation.
	ErrUnsupported = errors.New("operation not supported by channel")
)

// DefaultConflictMessage is reported when a checker signals a conflict without a message.
const DefaultConflictMessage = "version conflict detected"

// ConflictError carries the message a ConflictChecker reported.
type ConflictError struct {
	Channel string
	Version string
	Message string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: cannot release %s: %s", e.Channel, e.Version, e.Message)
}

// Unwrap lets errors.Is match ErrConflict.
func (e *ConflictError) Unwrap() error {
	return ErrConflict
}
