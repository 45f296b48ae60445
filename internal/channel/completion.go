package channel

import "sync"

// Reply is a hook's synchronous answer: either a value now, or a promise
// that the hook will resolve the Completion it was handed.
type Reply[T any] struct {
	value   T
	pending bool
}

// Immediate returns a Reply carrying v.
func Immediate[T any](v T) Reply[T] {
	return Reply[T]{value: v}
}

// Pending returns a Reply promising a later Resolve on the hook's Completion.
func Pending[T any]() Reply[T] {
	return Reply[T]{pending: true}
}

// IsPending reports whether the hook will resolve asynchronously.
func (r Reply[T]) IsPending() bool {
	return r.pending
}

// Value returns the immediate value. It is the zero value for pending replies.
func (r Reply[T]) Value() T {
	return r.value
}

// Completion is a single-shot handle. The first Resolve delivers its value;
// every later Resolve is dropped.
type Completion[T any] struct {
	mu       sync.Mutex
	resolved bool
	deliver  func(T)
	dropped  func(T)
}

// NewCompletion creates a Completion that hands its value to deliver.
func NewCompletion[T any](deliver func(T)) *Completion[T] {
	return &Completion[T]{deliver: deliver}
}

// Resolve fulfills the completion. It returns false if it was already resolved.
func (c *Completion[T]) Resolve(v T) bool {
	c.mu.Lock()
	if c.resolved {
		dropped := c.dropped
		c.mu.Unlock()
		if dropped != nil {
			dropped(v)
		}
		return false
	}
	c.resolved = true
	c.mu.Unlock()

	if c.deliver != nil {
		c.deliver(v)
	}
	return true
}

// Resolved reports whether Resolve has been called.
func (c *Completion[T]) Resolved() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resolved
}
