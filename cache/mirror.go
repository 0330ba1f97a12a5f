package cache

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/FamousArchives/famous-git-cache/errors"
	"github.com/go-git/go-billy/v5"
)

// mirrorStore keeps the bare mirror of one repository up to date.
// Its methods must only run inside a mirror queue task.
type mirrorStore struct {
	fs         billy.Filesystem
	git        *gitRunner
	staleAfter time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

// ensureFresh clones the mirror if it is missing and refreshes it if its
// mtime is older than staleAfter. A fresh mirror is left untouched.
func (s *mirrorStore) ensureFresh(ctx context.Context, identifier, mirrorPath string) error {
	logger := s.logger.With("identifier", identifier, "mirror", mirrorPath)

	mtime, err := modTime(s.fs, mirrorPath)
	switch {
	case errors.HasCode(err, errors.CodeNotFound):
		if err := s.clone(ctx, identifier, mirrorPath); err != nil {
			return err
		}
		logger.Info("cloned mirror")
	case err != nil:
		return err
	default:
		age := s.now().Sub(mtime)
		if age <= s.staleAfter {
			logger.Debug("mirror is fresh, skipping refresh", "age", age)
			return nil
		}
		if err := s.refresh(ctx, mirrorPath); err != nil {
			return err
		}
		logger.Info("refreshed mirror", "age", age)
	}

	return touch(s.fs, mirrorPath, s.now())
}

func (s *mirrorStore) clone(ctx context.Context, identifier, mirrorPath string) error {
	parent := filepath.Dir(mirrorPath)
	if err := mkdirAll(s.fs, parent); err != nil {
		return err
	}

	if _, err := s.git.run(ctx, parent, "clone", "--mirror", "--", identifier, mirrorPath); err != nil {
		// A half-written mirror would otherwise be refreshed forever.
		if rmErr := removeAll(s.fs, mirrorPath); rmErr != nil {
			s.logger.Warn("failed to remove partial mirror", "mirror", mirrorPath, "error", rmErr)
		}
		return errors.WithContext(
			stepError(err, errors.CodeCloneFailed, stepClone, "failed to clone mirror"),
			"identifier", identifier)
	}
	return nil
}

func (s *mirrorStore) refresh(ctx context.Context, mirrorPath string) error {
	if _, err := s.git.run(ctx, mirrorPath, "remote", "update", "--prune"); err != nil {
		return stepError(err, errors.CodeRefreshFailed, stepRefresh, "failed to refresh mirror")
	}
	return nil
}
