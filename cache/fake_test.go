package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/FamousArchives/famous-git-cache/exec"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/stretchr/testify/require"
)

// invocation is one recorded process run.
type invocation struct {
	Dir  string
	Args []string
}

// subcommand returns the git subcommand. A shared clone that builds a
// working tree is reported as "clone-shared" to tell it apart from the
// mirror clone.
func (i invocation) subcommand() string {
	if len(i.Args) < 2 {
		return ""
	}
	if i.Args[1] == "clone" && i.has("--shared") {
		return "clone-shared"
	}
	return i.Args[1]
}

func (i invocation) has(arg string) bool {
	for _, a := range i.Args {
		if a == arg {
			return true
		}
	}
	return false
}

// fakeGit simulates git against the real filesystem and records every call.
type fakeGit struct {
	mu    sync.Mutex
	calls []invocation

	// refs is returned by show-ref.
	refs string

	// fail maps a subcommand to the error returned for it.
	fail map[string]error

	// onCheckout runs after the default checkout effect.
	onCheckout func(workTree, ref string)

	delay time.Duration
}

func newFakeGit() *fakeGit {
	return &fakeGit{fail: map[string]error{}}
}

func (f *fakeGit) executor() exec.Executor {
	return &fakeExecutor{git: f}
}

func (f *fakeGit) record(inv invocation) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, inv)
}

func (f *fakeGit) invocations() []invocation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]invocation(nil), f.calls...)
}

func (f *fakeGit) count(sub string) int {
	n := 0
	for _, inv := range f.invocations() {
		if inv.subcommand() == sub {
			n++
		}
	}
	return n
}

func (f *fakeGit) run(inv invocation) (*exec.Result, error) {
	f.record(inv)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	sub := inv.subcommand()
	if err, ok := f.fail[sub]; ok {
		if execErr, ok := err.(*exec.ExecError); ok {
			execErr.Command = inv.Args
			execErr.Dir = inv.Dir
		}
		if sub == "clone" || sub == "clone-shared" {
			// git leaves a partial directory behind on failure.
			_ = os.MkdirAll(inv.Args[len(inv.Args)-1], 0o755)
		}
		return &exec.Result{ExitCode: 128}, err
	}

	switch sub {
	case "clone", "clone-shared":
		if err := os.MkdirAll(inv.Args[len(inv.Args)-1], 0o755); err != nil {
			return nil, err
		}
	case "show-ref":
		return &exec.Result{Stdout: f.refs}, nil
	case "rev-parse":
		// Refs resolve to themselves so checkouts stay traceable by name.
		ref := strings.TrimSuffix(inv.Args[len(inv.Args)-1], "^{commit}")
		return &exec.Result{Stdout: ref + "\n"}, nil
	case "checkout":
		commit := inv.Args[len(inv.Args)-2]
		name := strings.ReplaceAll(commit, "/", "_") + ".txt"
		if err := os.WriteFile(filepath.Join(inv.Dir, name), []byte(commit), 0o644); err != nil {
			return nil, err
		}
		if f.onCheckout != nil {
			f.onCheckout(inv.Dir, commit)
		}
	}
	return &exec.Result{}, nil
}

func processFailure(code int, stderr string) *exec.ExecError {
	return &exec.ExecError{ExitCode: code, Stderr: stderr, Err: fmt.Errorf("exit status %d", code)}
}

// fakeExecutor is a copy-on-write exec.Executor backed by fakeGit.
type fakeExecutor struct {
	git *fakeGit
	dir string
}

func (e *fakeExecutor) WithEnv(map[string]string) exec.Executor   { return e }
func (e *fakeExecutor) WithContext(context.Context) exec.Executor { return e }
func (e *fakeExecutor) WithTimeout(time.Duration) exec.Executor   { return e }
func (e *fakeExecutor) WithInheritEnv() exec.Executor             { return e }

func (e *fakeExecutor) WithDir(dir string) exec.Executor {
	out := *e
	out.dir = dir
	return &out
}

func (e *fakeExecutor) Run(args ...string) (*exec.Result, error) {
	return e.git.run(invocation{Dir: e.dir, Args: args})
}

// newTestCache builds a MirrorCache on a temp root backed by fake.
func newTestCache(t *testing.T, fake *fakeGit, opts ...Option) *MirrorCache {
	t.Helper()

	base := []Option{
		WithRoot(t.TempDir()),
		WithExecutor(fake.executor()),
		WithFilesystem(osfs.New("/")),
	}
	c, err := New(append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// age sets the mtime of path to d in the past.
func age(t *testing.T, path string, d time.Duration) {
	t.Helper()
	old := time.Now().Add(-d)
	require.NoError(t, os.Chtimes(path, old, old))
}
