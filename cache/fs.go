package cache

import (
	"os"
	"time"

	"github.com/FamousArchives/famous-git-cache/errors"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// touchMarker is created and removed to bump a directory mtime on
// filesystems that do not implement billy.Change.
const touchMarker = ".gitcache-touch"

func fsError(err error, op, path string) error {
	return errors.WrapWithContext(err, errors.CodeFileSystem, "failed to "+op,
		map[string]interface{}{"path": path})
}

// exists reports whether path exists. Errors other than not-exist are returned.
func exists(fs billy.Filesystem, path string) (bool, error) {
	_, err := fs.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fsError(err, "stat path", path)
}

// modTime returns the mtime of path, or a CodeNotFound error if it is absent.
func modTime(fs billy.Filesystem, path string) (time.Time, error) {
	info, err := fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return time.Time{}, errors.WrapWithContext(err, errors.CodeNotFound, "path does not exist",
				map[string]interface{}{"path": path})
		}
		return time.Time{}, fsError(err, "stat path", path)
	}
	return info.ModTime(), nil
}

func mkdirAll(fs billy.Filesystem, path string) error {
	if err := fs.MkdirAll(path, 0o755); err != nil {
		return fsError(err, "create directory", path)
	}
	return nil
}

// removeAll deletes path recursively. A missing path is not an error.
func removeAll(fs billy.Filesystem, path string) error {
	if err := util.RemoveAll(fs, path); err != nil && !os.IsNotExist(err) {
		return fsError(err, "remove directory", path)
	}
	return nil
}

// touch advances the mtime of dir to now.
func touch(fs billy.Filesystem, dir string, now time.Time) error {
	if change, ok := fs.(billy.Change); ok {
		if err := change.Chtimes(dir, now, now); err == nil {
			return nil
		}
	}

	marker := fs.Join(dir, touchMarker)
	f, err := fs.Create(marker)
	if err != nil {
		return fsError(err, "touch directory", dir)
	}
	if err := f.Close(); err != nil {
		return fsError(err, "touch directory", dir)
	}
	if err := fs.Remove(marker); err != nil {
		return fsError(err, "touch directory", dir)
	}
	return nil
}
