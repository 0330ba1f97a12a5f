package exec

import (
	"context"
	"time"
)

// Executor runs commands. Implementations must treat every With* call as
// returning a derived value and leave the receiver unchanged.
type Executor interface {
	// WithEnv adds environment variables for the command.
	WithEnv(env map[string]string) Executor

	// WithDir sets the working directory for the command.
	WithDir(dir string) Executor

	// WithContext sets the context for the command.
	// The process is killed if the context is canceled.
	WithContext(ctx context.Context) Executor

	// WithTimeout bounds the command's run time. Zero means no limit.
	WithTimeout(timeout time.Duration) Executor

	// WithInheritEnv passes the parent process environment to the command.
	WithInheritEnv() Executor

	// Run executes the command. The first argument names the executable.
	Run(args ...string) (*Result, error)
}

// Result is the captured outcome of a command.
type Result struct {
	// Stdout is the captured standard output
	Stdout string

	// Stderr is the captured standard error
	Stderr string

	// Combined holds stdout and stderr interleaved in write order
	Combined string

	// ExitCode is the process exit code, or -1 if the process never ran
	ExitCode int
}
