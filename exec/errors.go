package exec

import (
	"fmt"
	"strings"
)

// ExecError describes a command that could not be started or exited non-zero.
type ExecError struct {
	// Command is the full argument vector, executable first
	Command []string

	// ExitCode is the exit code, or -1 if the process never ran
	ExitCode int

	// Dir is the working directory the command ran in
	Dir string

	// Stdout is the captured standard output
	Stdout string

	// Stderr is the captured standard error
	Stderr string

	// TimedOut is set when the command was killed by its timeout
	TimedOut bool

	// Err is the underlying error
	Err error
}

// Error implements the error interface.
func (e *ExecError) Error() string {
	cmd := strings.Join(e.Command, " ")
	if e.Err != nil {
		return fmt.Sprintf("command %q failed with exit code %d: %v", cmd, e.ExitCode, e.Err)
	}
	return fmt.Sprintf("command %q failed with exit code %d", cmd, e.ExitCode)
}

// Unwrap returns the underlying error.
func (e *ExecError) Unwrap() error {
	return e.Err
}
