// Package clock supplies the time stamped on release artifacts, such as the
// tagger line of an annotated tag, so tests can pin it.
package clock

import "time"

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// System reads the wall clock. Times are truncated to whole seconds, the
// resolution git records.
type System struct{}

// Now returns the current local time.
func (System) Now() time.Time {
	return time.Now().Truncate(time.Second)
}

// Fixed always reports the same instant.
type Fixed time.Time

// Now returns the fixed instant.
func (f Fixed) Now() time.Time {
	return time.Time(f)
}
