package aru

// Option configures a Coordinator at construction time.
type Option func(*Coordinator)

// WithLogger sets the diagnostic logger used for best-effort notices (gate
// lifecycle events, mover contention). The default discards everything.
func WithLogger(logger Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithSpinPolicy overrides what a goroutine does while it waits at one of
// the two bounded spin points in the submission protocol: waiting for a
// predecessor's forward link to become visible, and waiting for the very
// first tail version to be installed. The default is runtime.Gosched.
func WithSpinPolicy(spin func()) Option {
	return func(c *Coordinator) {
		if spin != nil {
			c.spin = spin
		}
	}
}
