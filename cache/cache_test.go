package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/FamousArchives/famous-git-cache/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	c, err := New()
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, filepath.Join(os.TempDir(), "git-cache"), c.Root())
	assert.Equal(t, DefaultRef, c.defaultRef)
	assert.Equal(t, DefaultStaleAfter, c.mirrors.staleAfter)
}

func TestNewRelativeRootIsAbsolute(t *testing.T) {
	c, err := New(WithRoot("relative/cache"))
	require.NoError(t, err)
	defer c.Close()

	assert.True(t, filepath.IsAbs(c.Root()))
}

func TestNewInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"empty root", WithRoot("")},
		{"empty binary", WithGitBinary("")},
		{"negative stale", WithStaleAfter(-time.Second)},
		{"negative timeout", WithCommandTimeout(-time.Second)},
		{"empty default ref", WithDefaultRef("")},
		{"option-like default ref", WithDefaultRef("-x")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opt)
			require.Error(t, err)
			assert.Equal(t, errors.CodeInvalidConfig, errors.GetCode(err))
		})
	}
}

func TestPaths(t *testing.T) {
	c := newTestCache(t, newFakeGit())

	paths, err := c.Paths(testURL)
	require.NoError(t, err)
	assert.Equal(t, ResolvePaths(c.Root(), testURL), paths)

	other := t.TempDir()
	paths, err = c.Paths(testURL, WithCacheRoot(other))
	require.NoError(t, err)
	assert.Equal(t, ResolvePaths(other, testURL), paths)

	_, err = c.Paths("")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestPurge(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*MirrorCache, *fakeGit, Paths) {
		fake := newFakeGit()
		c := newTestCache(t, fake)
		_, err := c.Checkout(ctx, testURL)
		require.NoError(t, err)
		return c, fake, mustPaths(t, c, testURL)
	}

	t.Run("mirror", func(t *testing.T) {
		c, fake, paths := setup(t)

		require.NoError(t, c.PurgeMirror(ctx, testURL))
		assert.NoDirExists(t, paths.Mirror)
		assert.DirExists(t, paths.WorkingTree)

		_, err := c.EnsureMirror(ctx, testURL)
		require.NoError(t, err)
		assert.Equal(t, 2, fake.count("clone"))
	})

	t.Run("working tree", func(t *testing.T) {
		c, _, paths := setup(t)

		require.NoError(t, c.PurgeWorkingTree(ctx, testURL))
		assert.NoDirExists(t, paths.WorkingTree)
		assert.DirExists(t, paths.Mirror)
	})

	t.Run("all", func(t *testing.T) {
		c, _, paths := setup(t)

		require.NoError(t, c.PurgeAll(ctx, testURL))
		assert.NoDirExists(t, paths.Root)
	})

	t.Run("missing entry", func(t *testing.T) {
		c := newTestCache(t, newFakeGit())

		assert.NoError(t, c.PurgeMirror(ctx, testURL))
		assert.NoError(t, c.PurgeWorkingTree(ctx, testURL))
		assert.NoError(t, c.PurgeAll(ctx, testURL))
	})

	t.Run("invalid identifier", func(t *testing.T) {
		c := newTestCache(t, newFakeGit())

		assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(c.PurgeMirror(ctx, "")))
		assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(c.PurgeWorkingTree(ctx, "")))
		assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(c.PurgeAll(ctx, "")))
	})
}

func TestClose(t *testing.T) {
	fake := newFakeGit()
	c := newTestCache(t, fake)
	ctx := context.Background()

	require.NoError(t, c.Close())

	_, err := c.EnsureMirror(ctx, testURL)
	assert.Equal(t, errors.CodeUnavailable, errors.GetCode(err))
	_, err = c.Checkout(ctx, testURL)
	assert.Equal(t, errors.CodeUnavailable, errors.GetCode(err))
	assert.Equal(t, errors.CodeUnavailable, errors.GetCode(c.PurgeWorkingTree(ctx, testURL)))
	assert.Empty(t, fake.invocations())

	require.NoError(t, c.Close())
}

func TestDefault(t *testing.T) {
	a, err := Default()
	require.NoError(t, err)
	b, err := Default()
	require.NoError(t, err)
	assert.Same(t, a, b)

	_, err = Checkout(context.Background(), "")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
	_, err = ListTags(context.Background(), "")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(PurgeAll(context.Background(), "")))
}
