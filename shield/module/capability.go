package module

import "fmt"

type capState int8

const (
	unresolved capState = iota
	available
	unavailable
)

// Capability is a lazily resolved module symbol. It is either Unresolved,
// Available with a callable function or permanently Unavailable with the
// reason it could not be resolved.
type Capability[T any] struct {
	state  capState
	fn     T
	reason error
}

// Available capability wrapping fn
func Available[T any](fn T) Capability[T] {
	return Capability[T]{state: available, fn: fn}
}

// Unavailable capability and the reason why
func Unavailable[T any](reason error) Capability[T] {
	return Capability[T]{state: unavailable, reason: reason}
}

// Resolved is true once the capability is either Available or Unavailable
func (c Capability[T]) Resolved() bool {
	return c.state != unresolved
}

// Get the function, ok is false unless the capability is Available
func (c Capability[T]) Get() (fn T, ok bool) {
	if c.state != available {
		return fn, false
	}
	return c.fn, true
}

// Reason the capability is Unavailable
func (c Capability[T]) Reason() error {
	return c.reason
}

func (c Capability[T]) String() string {
	switch c.state {
	case available:
		return "available"
	case unavailable:
		return fmt.Sprintf("unavailable(%s)", c.reason)
	}
	return "unresolved"
}
