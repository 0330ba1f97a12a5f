package cache

import (
	"context"
	"strings"
	"time"

	"github.com/FamousArchives/famous-git-cache/errors"
	"github.com/FamousArchives/famous-git-cache/exec"
)

// Step names recorded in error context and logs.
const (
	stepClone     = "clone"
	stepRefresh   = "refresh"
	stepResolve   = "resolve-ref"
	stepCheckout  = "checkout"
	stepSubmodule = "submodule"
	stepListRefs  = "list-refs"
)

// gitRunner invokes git through an Executor with the cache's timeout.
type gitRunner struct {
	git     exec.Executor
	timeout time.Duration
}

func newGitRunner(executor exec.Executor, binary string, timeout time.Duration) *gitRunner {
	return &gitRunner{
		git:     exec.NewWrapper(executor, binary),
		timeout: timeout,
	}
}

func (r *gitRunner) run(ctx context.Context, dir string, args ...string) (*exec.Result, error) {
	cmd := r.git.WithContext(ctx).WithDir(dir)
	if r.timeout > 0 {
		cmd = cmd.WithTimeout(r.timeout)
	}
	return cmd.Run(args...)
}

// stepError converts a process failure into a PlatformError for step.
// A missing executable and a timeout keep their own codes so callers can
// tell them apart from git reporting a failure.
func stepError(err error, code errors.ErrorCode, step, message string) error {
	ctx := map[string]interface{}{"step": step}

	var execErr *exec.ExecError
	if errors.As(err, &execErr) {
		ctx["args"] = strings.Join(execErr.Command, " ")
		ctx["dir"] = execErr.Dir
		ctx["stdout"] = execErr.Stdout
		ctx["stderr"] = execErr.Stderr
		ctx["exit_code"] = execErr.ExitCode

		switch {
		case errors.Is(err, exec.ErrExecutableNotFound):
			return errors.WrapWithContext(err, errors.CodeExecutableNotFound, "git executable not found", ctx)
		case execErr.TimedOut:
			return errors.WrapWithContext(err, errors.CodeTimeout, message+": timed out", ctx)
		}
	}

	return errors.WrapWithContext(err, code, message, ctx)
}
