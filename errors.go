package aru

import "fmt"

// GateClosedError is returned internally when an operation observes a gate
// that has already been destroyed. It is never surfaced through the public
// API today (Update/Read/Sync are documented as unsafe to call concurrently
// with Destroy), but exists as a typed cause for WrapError call sites added
// by future callers of the internal gate package.
type GateClosedError struct {
	Cause error
}

func (e *GateClosedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("aru: gate closed: %v", e.Cause)
	}
	return "aru: gate closed"
}

func (e *GateClosedError) Unwrap() error { return e.Cause }

// WrapError wraps cause with a message, in the idiom of fmt.Errorf("%w").
// It returns nil if cause is nil.
func WrapError(message string, cause error) error {
	if cause == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, cause)
}
