// Package testutil builds on-disk upstream repositories for cache tests.
// Fixtures are created with go-git, so building them does not require the
// git CLI; only the code under test shells out to git.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

// Upstream is a non-bare repository in a temp directory that tests clone from.
// Its path doubles as the repository identifier.
type Upstream struct {
	Path string

	t    testing.TB
	repo *gogit.Repository
}

// NewUpstream initializes an empty repository whose HEAD points at master.
//
// Example:
//
//	up := testutil.NewUpstream(t)
//	first := up.Commit(map[string]string{"README.md": testutil.TestFileContent})
//	up.Tag(testutil.TestTagName, first)
func NewUpstream(t testing.TB) *Upstream {
	t.Helper()

	path := filepath.Join(t.TempDir(), "upstream")
	repo, err := gogit.PlainInit(path, false)
	require.NoError(t, err)

	return &Upstream{Path: path, t: t, repo: repo}
}

// Commit writes files, deletes the paths in remove and commits the result on
// the current branch. It returns the commit hash.
func (u *Upstream) Commit(files map[string]string, remove ...string) string {
	u.t.Helper()

	wt, err := u.repo.Worktree()
	require.NoError(u.t, err)

	for name, content := range files {
		full := filepath.Join(u.Path, name)
		require.NoError(u.t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(u.t, os.WriteFile(full, []byte(content), 0o644))
		_, err := wt.Add(name)
		require.NoError(u.t, err)
	}
	for _, name := range remove {
		_, err := wt.Remove(name)
		require.NoError(u.t, err)
	}

	hash, err := wt.Commit(fmt.Sprintf("commit %d files", len(files)), &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  TestAuthor,
			Email: TestEmail,
			When:  time.Now(),
		},
		AllowEmptyCommits: true,
	})
	require.NoError(u.t, err)

	return hash.String()
}

// Branch points refs/heads/<name> at commit without checking it out.
func (u *Upstream) Branch(name, commit string) {
	u.SetRef(plumbing.NewBranchReferenceName(name).String(), commit)
}

// Tag creates a lightweight tag so show-ref reports the commit hash itself.
func (u *Upstream) Tag(name, commit string) {
	u.t.Helper()
	_, err := u.repo.CreateTag(name, plumbing.NewHash(commit), nil)
	require.NoError(u.t, err)
}

// PullRequest creates refs/pull/<number>/head, as hosting providers do.
func (u *Upstream) PullRequest(number int, commit string) {
	u.SetRef(fmt.Sprintf("refs/pull/%d/head", number), commit)
}

// SetRef points an arbitrary fully-qualified ref at commit.
func (u *Upstream) SetRef(name, commit string) {
	u.t.Helper()
	ref := plumbing.NewHashReference(plumbing.ReferenceName(name), plumbing.NewHash(commit))
	require.NoError(u.t, u.repo.Storer.SetReference(ref))
}

// DeleteRef removes a ref so a refresh with --prune drops it from mirrors.
func (u *Upstream) DeleteRef(name string) {
	u.t.Helper()
	require.NoError(u.t, u.repo.Storer.RemoveReference(plumbing.ReferenceName(name)))
}

// Refs returns every ref under refs/ keyed by full name.
func (u *Upstream) Refs() map[string]string {
	u.t.Helper()

	iter, err := u.repo.References()
	require.NoError(u.t, err)

	refs := map[string]string{}
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() == plumbing.HashReference && ref.Name() != plumbing.HEAD {
			refs[ref.Name().String()] = ref.Hash().String()
		}
		return nil
	})
	require.NoError(u.t, err)
	return refs
}
