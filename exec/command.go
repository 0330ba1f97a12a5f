package exec

import (
	"context"
	stderrors "errors"
	"os"
	osexec "os/exec"
	"time"

	"github.com/FamousArchives/famous-git-cache/errors"
)

// ErrExecutableNotFound is the cause of an *ExecError when the executable
// could not be resolved by name.
var ErrExecutableNotFound = errors.New(errors.CodeExecutableNotFound, "executable not found")

// Command is the os/exec backed Executor.
type Command struct {
	env        map[string]string
	dir        string
	ctx        context.Context
	timeout    time.Duration
	inheritEnv bool
	lookPath   func(string) (string, error)
}

// New creates a Command with the given options.
func New(opts ...Option) *Command {
	cmd := &Command{
		env:      map[string]string{},
		ctx:      context.Background(),
		lookPath: osexec.LookPath,
	}

	for _, opt := range opts {
		opt(cmd)
	}

	return cmd
}

func (c *Command) clone() *Command {
	out := *c
	out.env = make(map[string]string, len(c.env))
	for k, v := range c.env {
		out.env[k] = v
	}
	return &out
}

// WithEnv adds environment variables for the command.
func (c *Command) WithEnv(env map[string]string) Executor {
	out := c.clone()
	for k, v := range env {
		out.env[k] = v
	}
	return out
}

// WithDir sets the working directory for the command.
func (c *Command) WithDir(dir string) Executor {
	out := c.clone()
	out.dir = dir
	return out
}

// WithContext sets the context for the command.
func (c *Command) WithContext(ctx context.Context) Executor {
	out := c.clone()
	out.ctx = ctx
	return out
}

// WithTimeout bounds the command's run time.
func (c *Command) WithTimeout(timeout time.Duration) Executor {
	out := c.clone()
	out.timeout = timeout
	return out
}

// WithInheritEnv passes the parent process environment to the command.
func (c *Command) WithInheritEnv() Executor {
	out := c.clone()
	out.inheritEnv = true
	return out
}

// Run executes the command with the given arguments.
func (c *Command) Run(args ...string) (*Result, error) {
	if len(args) == 0 {
		return nil, &ExecError{
			ExitCode: -1,
			Dir:      c.dir,
			Err:      errors.New(errors.CodeInvalidInput, "no command given"),
		}
	}

	path, err := c.lookPath(args[0])
	if err != nil {
		return nil, &ExecError{
			Command:  args,
			ExitCode: -1,
			Dir:      c.dir,
			Err:      errors.Wrap(ErrExecutableNotFound, errors.CodeExecutableNotFound, err.Error()),
		}
	}

	ctx := c.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	cmd := osexec.CommandContext(ctx, path, args[1:]...)
	cmd.Dir = c.dir

	if c.inheritEnv {
		cmd.Env = os.Environ()
	}
	if len(c.env) > 0 && cmd.Env == nil {
		cmd.Env = []string{}
	}
	for k, v := range c.env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	combined := &combinedWriter{}
	stdout := &captureWriter{combined: combined}
	stderr := &captureWriter{combined: combined}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	runErr := cmd.Run()

	result := &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Combined: combined.String(),
		ExitCode: -1,
	}
	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	}

	if runErr != nil {
		return result, &ExecError{
			Command:  args,
			ExitCode: result.ExitCode,
			Dir:      c.dir,
			Stdout:   result.Stdout,
			Stderr:   result.Stderr,
			TimedOut: c.timeout > 0 && stderrors.Is(ctx.Err(), context.DeadlineExceeded),
			Err:      runErr,
		}
	}

	return result, nil
}
