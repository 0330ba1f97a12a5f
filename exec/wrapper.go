package exec

import (
	"context"
	"time"
)

// CommandWrapper prepends a fixed executable name to every Run call.
// It implements Executor, so wrappers compose with anything that accepts one.
type CommandWrapper struct {
	executor Executor
	cmd      string
}

// NewWrapper creates a CommandWrapper that runs cmd through executor.
// The executor can be any Executor, including a test fake.
func NewWrapper(executor Executor, cmd string) *CommandWrapper {
	return &CommandWrapper{
		executor: executor,
		cmd:      cmd,
	}
}

func (w *CommandWrapper) derive(executor Executor) Executor {
	return &CommandWrapper{executor: executor, cmd: w.cmd}
}

// WithEnv adds environment variables for the command.
func (w *CommandWrapper) WithEnv(env map[string]string) Executor {
	return w.derive(w.executor.WithEnv(env))
}

// WithDir sets the working directory for the command.
func (w *CommandWrapper) WithDir(dir string) Executor {
	return w.derive(w.executor.WithDir(dir))
}

// WithContext sets the context for the command.
func (w *CommandWrapper) WithContext(ctx context.Context) Executor {
	return w.derive(w.executor.WithContext(ctx))
}

// WithTimeout bounds the command's run time.
func (w *CommandWrapper) WithTimeout(timeout time.Duration) Executor {
	return w.derive(w.executor.WithTimeout(timeout))
}

// WithInheritEnv passes the parent process environment to the command.
func (w *CommandWrapper) WithInheritEnv() Executor {
	return w.derive(w.executor.WithInheritEnv())
}

// Run executes the wrapped command. The command name is prepended to args.
func (w *CommandWrapper) Run(args ...string) (*Result, error) {
	fullArgs := append([]string{w.cmd}, args...)
	return w.executor.Run(fullArgs...)
}
