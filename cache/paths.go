package cache

import (
	"path/filepath"
)

const (
	mirrorDirName      = "mirror"
	workingTreeDirName = "checkout"
)

// RootPath returns the directory holding everything cached for key.
func RootPath(cacheRoot string, key Key) string {
	return filepath.Join(cacheRoot, key.String())
}

// MirrorPath returns the bare mirror directory for key.
func MirrorPath(cacheRoot string, key Key) string {
	return filepath.Join(RootPath(cacheRoot, key), mirrorDirName)
}

// WorkingTreePath returns the working tree directory for key.
func WorkingTreePath(cacheRoot string, key Key) string {
	return filepath.Join(RootPath(cacheRoot, key), workingTreeDirName)
}

// ResolvePaths derives every path for identifier under cacheRoot.
func ResolvePaths(cacheRoot, identifier string) Paths {
	key := DeriveKey(identifier)
	return Paths{
		Key:         key,
		Root:        RootPath(cacheRoot, key),
		Mirror:      MirrorPath(cacheRoot, key),
		WorkingTree: WorkingTreePath(cacheRoot, key),
	}
}
