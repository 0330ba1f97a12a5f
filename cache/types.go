package cache

import (
	"strings"
)

// Key is the hex-encoded sha256 digest of a repository identifier.
// It is only ever used as a directory name.
type Key string

// String returns the key as a string.
func (k Key) String() string {
	return string(k)
}

// RefTable maps fully-qualified ref names (refs/heads/main) to commit IDs.
// It is read fresh from the mirror on every query.
type RefTable map[string]string

// RefCategory names a class of refs by the path segment after "refs/".
type RefCategory string

const (
	// CategoryHeads selects branches (refs/heads/).
	CategoryHeads RefCategory = "heads"

	// CategoryTags selects tags (refs/tags/).
	CategoryTags RefCategory = "tags"

	// CategoryPull selects pull request refs (refs/pull/).
	CategoryPull RefCategory = "pull"
)

// Prefix returns the ref prefix for the category, including the trailing slash.
func (c RefCategory) Prefix() string {
	return "refs/" + string(c) + "/"
}

// Filter returns the refs of one category keyed by short name. The prefix is
// stripped and any remaining path is kept, so refs/pull/42/head becomes 42/head.
func (t RefTable) Filter(category RefCategory) map[string]string {
	prefix := category.Prefix()
	out := make(map[string]string)
	for name, commit := range t {
		if short, ok := strings.CutPrefix(name, prefix); ok && short != "" {
			out[short] = commit
		}
	}
	return out
}

// Categorize partitions the table into heads, tags and pull refs.
// Refs outside those categories (refs/notes/, refs/remotes/) are dropped.
func (t RefTable) Categorize() map[RefCategory]map[string]string {
	return map[RefCategory]map[string]string{
		CategoryHeads: t.Filter(CategoryHeads),
		CategoryTags:  t.Filter(CategoryTags),
		CategoryPull:  t.Filter(CategoryPull),
	}
}

// Paths describes where a repository lives inside a cache root.
type Paths struct {
	Key         Key    `json:"key"`
	Root        string `json:"root"`
	Mirror      string `json:"mirror"`
	WorkingTree string `json:"working_tree"`
}
