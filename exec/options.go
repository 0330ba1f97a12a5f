package exec

import (
	"context"
	"time"
)

// Option configures the defaults of a Command at creation time.
type Option func(*Command)

// WithEnv returns an Option that sets default environment variables.
func WithEnv(env map[string]string) Option {
	return func(c *Command) {
		for k, v := range env {
			c.env[k] = v
		}
	}
}

// WithDir returns an Option that sets the default working directory.
func WithDir(dir string) Option {
	return func(c *Command) {
		c.dir = dir
	}
}

// WithContext returns an Option that sets the default context.
func WithContext(ctx context.Context) Option {
	return func(c *Command) {
		c.ctx = ctx
	}
}

// WithTimeout returns an Option that sets the default timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Command) {
		c.timeout = timeout
	}
}

// WithInheritEnv returns an Option that enables environment inheritance.
func WithInheritEnv() Option {
	return func(c *Command) {
		c.inheritEnv = true
	}
}

// WithLookPath replaces the function used to resolve executables.
// Tests use it to simulate a missing binary.
func WithLookPath(fn func(string) (string, error)) Option {
	return func(c *Command) {
		c.lookPath = fn
	}
}
