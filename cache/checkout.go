package cache

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/FamousArchives/famous-git-cache/errors"
	"github.com/go-git/go-billy/v5"
)

// resolveRef returns the commit ref points at in the mirror.
// It only reads the mirror and must run inside a mirror queue task.
func resolveRef(ctx context.Context, git *gitRunner, mirrorPath, ref string) (string, error) {
	result, err := git.run(ctx, mirrorPath, "rev-parse", "--verify", ref+"^{commit}")
	if err != nil {
		return "", errors.WithContext(
			stepError(err, errors.CodeCheckoutFailed, stepResolve, "failed to resolve ref"),
			"ref", ref)
	}

	commit := strings.TrimSpace(result.Stdout)
	if commit == "" {
		return "", errors.WithContext(
			errors.New(errors.CodeCheckoutFailed, "ref resolved to an empty commit"), "ref", ref)
	}
	return commit, nil
}

// checkoutManager rebuilds working trees from mirrors.
// Its methods must only run inside a checkout queue task.
type checkoutManager struct {
	fs     billy.Filesystem
	git    *gitRunner
	logger *slog.Logger
}

// materialize replaces workTree with a checkout of commit and initializes
// submodules. The working tree is a shared clone of the mirror: objects are
// borrowed through alternates while index, HEAD and submodule state live
// under workTree, so nothing is written inside the mirror.
//
// A failure leaves the tree in whatever state the last completed step produced.
func (m *checkoutManager) materialize(ctx context.Context, mirrorPath, workTree, ref, commit string) error {
	if err := removeAll(m.fs, workTree); err != nil {
		return err
	}

	_, err := m.git.run(ctx, filepath.Dir(workTree),
		"clone", "--shared", "--no-checkout", "--quiet", "--", mirrorPath, workTree)
	if err != nil {
		return errors.WithContext(
			stepError(err, errors.CodeCheckoutFailed, stepCheckout, "failed to create working tree"),
			"ref", ref)
	}

	if _, err := m.git.run(ctx, workTree, "checkout", "--force", "--quiet", commit, "--"); err != nil {
		return errors.WithContextMap(
			stepError(err, errors.CodeCheckoutFailed, stepCheckout, "failed to check out ref"),
			map[string]interface{}{"ref": ref, "commit": commit})
	}

	hasModules, err := exists(m.fs, filepath.Join(workTree, ".gitmodules"))
	if err != nil {
		return err
	}
	if hasModules {
		if _, err := m.git.run(ctx, workTree, "submodule", "update", "--init", "--recursive"); err != nil {
			return errors.WithContext(
				stepError(err, errors.CodeSubmoduleFailed, stepSubmodule, "failed to update submodules"),
				"ref", ref)
		}
		m.logger.Debug("updated submodules", "working_tree", workTree)
	}

	m.logger.Info("checked out ref", "ref", ref, "commit", commit, "working_tree", workTree)
	return nil
}
