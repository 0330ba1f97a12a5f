package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/FamousArchives/famous-git-cache/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckoutValidation(t *testing.T) {
	tests := []struct {
		name       string
		identifier string
		opts       []CacheOption
	}{
		{"missing identifier", "", []CacheOption{WithRef("master")}},
		{"blank identifier", "   ", nil},
		{"option-like identifier", "--upload-pack=evil", nil},
		{"explicit empty ref", testURL, []CacheOption{WithRef("")}},
		{"option-like ref", testURL, []CacheOption{WithRef("--orphan")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFakeGit()
			c := newTestCache(t, fake)

			_, err := c.Checkout(context.Background(), tt.identifier, tt.opts...)
			require.Error(t, err)
			assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
			assert.Empty(t, fake.invocations(), "no process may run before validation")
			assert.NoDirExists(t, filepath.Join(c.Root(), DeriveKey(tt.identifier).String()))
		})
	}
}

func TestCheckoutDefaultRef(t *testing.T) {
	fake := newFakeGit()
	c := newTestCache(t, fake)

	path, err := c.Checkout(context.Background(), testURL)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(path, "master.txt"))

	fake2 := newFakeGit()
	c2 := newTestCache(t, fake2, WithDefaultRef("main"))
	path, err = c2.Checkout(context.Background(), testURL)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(path, "main.txt"))
}

func TestCheckoutInvocations(t *testing.T) {
	fake := newFakeGit()
	c := newTestCache(t, fake)
	paths := mustPaths(t, c, testURL)

	path, err := c.Checkout(context.Background(), testURL, WithRef("v1.0.0"))
	require.NoError(t, err)
	assert.Equal(t, paths.WorkingTree, path)

	calls := fake.invocations()
	require.Len(t, calls, 4)
	assert.Equal(t, "clone", calls[0].subcommand())

	assert.Equal(t, []string{"git", "rev-parse", "--verify", "v1.0.0^{commit}"}, calls[1].Args)
	assert.Equal(t, paths.Mirror, calls[1].Dir)

	assert.Equal(t, []string{
		"git", "clone", "--shared", "--no-checkout", "--quiet", "--", paths.Mirror, paths.WorkingTree,
	}, calls[2].Args)
	assert.Equal(t, paths.Root, calls[2].Dir)

	assert.Equal(t, []string{"git", "checkout", "--force", "--quiet", "v1.0.0", "--"}, calls[3].Args)
	assert.Equal(t, paths.WorkingTree, calls[3].Dir)
}

func TestCheckoutNeverRunsInsideMirror(t *testing.T) {
	fake := newFakeGit()
	fake.onCheckout = func(workTree, _ string) {
		_ = os.WriteFile(filepath.Join(workTree, ".gitmodules"), nil, 0o644)
	}
	c := newTestCache(t, fake)
	paths := mustPaths(t, c, testURL)

	_, err := c.Checkout(context.Background(), testURL, WithRef("main"))
	require.NoError(t, err)

	// Only the mirror clone and read-only ref resolution touch the mirror.
	for _, inv := range fake.invocations() {
		switch inv.subcommand() {
		case "clone", "rev-parse":
			continue
		}
		assert.NotEqual(t, paths.Mirror, inv.Dir, "%v ran inside the mirror", inv.Args)
		assert.False(t, inv.has("--git-dir"), "%v addresses the mirror as its git dir", inv.Args)
	}
}

func TestCheckoutRefResolutionFailure(t *testing.T) {
	fake := newFakeGit()
	fake.fail["rev-parse"] = processFailure(128, "fatal: Needed a single revision")
	c := newTestCache(t, fake)

	_, err := c.Checkout(context.Background(), testURL, WithRef("missing"))
	require.Error(t, err)
	assert.Equal(t, errors.CodeCheckoutFailed, errors.GetCode(err))

	var platformErr errors.PlatformError
	require.True(t, errors.As(err, &platformErr))
	assert.Equal(t, "resolve-ref", platformErr.Context()["step"])
	assert.Equal(t, "missing", platformErr.Context()["ref"])
	assert.Equal(t, testURL, platformErr.Context()["identifier"])

	assert.Equal(t, 0, fake.count("clone-shared"))
	assert.NoDirExists(t, mustPaths(t, c, testURL).WorkingTree)
}

func TestCheckoutReplacesWorkingTree(t *testing.T) {
	fake := newFakeGit()
	c := newTestCache(t, fake)
	ctx := context.Background()

	path, err := c.Checkout(ctx, testURL, WithRef("refA"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(path, "untracked.txt"), []byte("x"), 0o644))

	path, err = c.Checkout(ctx, testURL, WithRef("refB"))
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(path, "refB.txt"))
	assert.NoFileExists(t, filepath.Join(path, "refA.txt"))
	assert.NoFileExists(t, filepath.Join(path, "untracked.txt"))
}

func TestCheckoutSubmodules(t *testing.T) {
	t.Run("skipped without .gitmodules", func(t *testing.T) {
		fake := newFakeGit()
		c := newTestCache(t, fake)

		_, err := c.Checkout(context.Background(), testURL)
		require.NoError(t, err)
		assert.Equal(t, 0, fake.count("submodule"))
	})

	t.Run("updated with .gitmodules", func(t *testing.T) {
		fake := newFakeGit()
		fake.onCheckout = func(workTree, _ string) {
			_ = os.WriteFile(filepath.Join(workTree, ".gitmodules"), []byte("[submodule \"lib\"]\n"), 0o644)
		}
		c := newTestCache(t, fake)
		paths := mustPaths(t, c, testURL)

		_, err := c.Checkout(context.Background(), testURL)
		require.NoError(t, err)

		calls := fake.invocations()
		require.Len(t, calls, 5)
		assert.Equal(t, []string{"git", "submodule", "update", "--init", "--recursive"}, calls[4].Args)
		assert.Equal(t, paths.WorkingTree, calls[4].Dir)
	})

	t.Run("failure", func(t *testing.T) {
		fake := newFakeGit()
		fake.onCheckout = func(workTree, _ string) {
			_ = os.WriteFile(filepath.Join(workTree, ".gitmodules"), nil, 0o644)
		}
		fake.fail["submodule"] = processFailure(1, "fatal: clone of submodule failed")
		c := newTestCache(t, fake)

		_, err := c.Checkout(context.Background(), testURL)
		require.Error(t, err)
		assert.Equal(t, errors.CodeSubmoduleFailed, errors.GetCode(err))
		assert.False(t, errors.IsRetryable(err))
	})
}

func TestCheckoutFailure(t *testing.T) {
	fake := newFakeGit()
	fake.fail["checkout"] = processFailure(1, "error: pathspec 'nope' did not match")
	c := newTestCache(t, fake)

	_, err := c.Checkout(context.Background(), testURL, WithRef("nope"))
	require.Error(t, err)
	assert.Equal(t, errors.CodeCheckoutFailed, errors.GetCode(err))

	var platformErr errors.PlatformError
	require.True(t, errors.As(err, &platformErr))
	ctx := platformErr.Context()
	assert.Equal(t, "checkout", ctx["step"])
	assert.Equal(t, "nope", ctx["ref"])
	assert.Equal(t, "nope", ctx["commit"])
	assert.Equal(t, testURL, ctx["identifier"])
	assert.Contains(t, ctx["args"], "checkout --force --quiet nope --")

	// The emptied working tree is left behind.
	assert.DirExists(t, mustPaths(t, c, testURL).WorkingTree)
}

func TestCheckoutSkippedWhenMirrorFails(t *testing.T) {
	fake := newFakeGit()
	fake.fail["clone"] = processFailure(128, "fatal: unable to access")
	c := newTestCache(t, fake)

	_, err := c.Checkout(context.Background(), testURL)
	require.Error(t, err)
	assert.Equal(t, errors.CodeCloneFailed, errors.GetCode(err))
	assert.Equal(t, 0, fake.count("checkout"))
	assert.NoDirExists(t, mustPaths(t, c, testURL).WorkingTree)
}

func TestCheckoutConcurrentRequests(t *testing.T) {
	fake := newFakeGit()
	fake.delay = 2 * time.Millisecond

	var (
		active, maxActive int32
		mu                sync.Mutex
		mismatches        []string
	)
	fake.onCheckout = func(workTree, ref string) {
		n := atomic.AddInt32(&active, 1)
		for {
			m := atomic.LoadInt32(&maxActive)
			if n <= m || atomic.CompareAndSwapInt32(&maxActive, m, n) {
				break
			}
		}

		// While this task runs, the tree must hold exactly this ref.
		entries, err := os.ReadDir(workTree)
		if err != nil || len(entries) != 1 || entries[0].Name() != ref+".txt" {
			mu.Lock()
			mismatches = append(mismatches, fmt.Sprintf("%s: %v %v", ref, entries, err))
			mu.Unlock()
		}

		time.Sleep(time.Millisecond)
		atomic.AddInt32(&active, -1)
	}
	c := newTestCache(t, fake)

	const n = 12
	var wg sync.WaitGroup
	var completed int32
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			path, err := c.Checkout(context.Background(), testURL, WithRef(fmt.Sprintf("ref-%d", i)))
			if err != nil {
				errs <- err
				return
			}
			if path != mustPaths(t, c, testURL).WorkingTree {
				errs <- fmt.Errorf("unexpected working tree %s", path)
				return
			}
			atomic.AddInt32(&completed, 1)
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
	assert.Equal(t, int32(n), completed)
	assert.Equal(t, int32(1), maxActive)
	assert.Empty(t, mismatches)
	assert.Equal(t, 1, fake.count("clone"))
	assert.Equal(t, n, fake.count("clone-shared"))
	assert.Equal(t, n, fake.count("checkout"))

	// The tree holds exactly one ref's file: the last one to run.
	entries, err := os.ReadDir(mustPaths(t, c, testURL).WorkingTree)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
