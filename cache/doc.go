// Package cache provides a local, content-addressed cache of remote Git repositories.
//
// # Overview
//
// Build and CI tooling often materializes the same upstream repository at many
// refs. The cache keeps one bare mirror per repository and refreshes it only
// when it has gone stale, so repeated requests avoid a full network fetch.
//
// # Layout
//
// Each repository identifier is hashed to a sha256 cache key:
//
//	<root>/
//	└── <key>/
//	    ├── mirror/     # bare mirror clone, refreshed in place
//	    └── checkout/   # working tree, rebuilt on every checkout
//
// The working tree is a sibling of the mirror, never nested in it, so purging
// one never touches the other.
//
// # Freshness
//
// A mirror is refreshed with "git remote update --prune" only when its
// directory mtime is older than the staleness threshold (30s by default,
// see WithStaleAfter). A fresh mirror costs a single stat call.
//
// # Serialization
//
// All mirror mutations run on one single-worker FIFO queue and all working
// tree mutations on another. The "does it exist, how old is it" check happens
// inside the mirror task, so two first-time requests for the same repository
// produce exactly one clone. The two queues run independently of each other.
//
// Queued tasks are never canceled. A context passed to an operation reaches
// the git process, but the caller still waits for the task to finish. A git
// process that hangs blocks its queue unless WithCommandTimeout is set.
//
// # Usage
//
//	c, err := cache.New(cache.WithRoot("/var/cache/git"))
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
//
//	path, err := c.Checkout(ctx, "https://github.com/my/repo", cache.WithRef("v1.2.0"))
//	tags, err := c.ListTags(ctx, "https://github.com/my/repo")
//
// Package-level functions operate on a shared process-wide cache, so every
// caller in the process goes through the same queues:
//
//	path, err := cache.Checkout(ctx, "https://github.com/my/repo")
//
// Authentication is left to git's own credential handling.
package cache
