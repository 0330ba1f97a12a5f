package cache

import (
	"context"
	"sync"
)

var (
	defaultOnce  sync.Once
	defaultCache *MirrorCache
	defaultErr   error
)

// Default returns the process-wide MirrorCache, creating it on first use with
// default options. Every package-level function uses it, so all callers in
// the process share one pair of queues.
func Default() (*MirrorCache, error) {
	defaultOnce.Do(func() {
		defaultCache, defaultErr = New()
	})
	return defaultCache, defaultErr
}

// EnsureMirror calls EnsureMirror on the default cache.
func EnsureMirror(ctx context.Context, identifier string, opts ...CacheOption) (string, error) {
	c, err := Default()
	if err != nil {
		return "", err
	}
	return c.EnsureMirror(ctx, identifier, opts...)
}

// Checkout calls Checkout on the default cache.
func Checkout(ctx context.Context, identifier string, opts ...CacheOption) (string, error) {
	c, err := Default()
	if err != nil {
		return "", err
	}
	return c.Checkout(ctx, identifier, opts...)
}

// ListRefs calls ListRefs on the default cache.
func ListRefs(ctx context.Context, identifier string, opts ...CacheOption) (RefTable, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}
	return c.ListRefs(ctx, identifier, opts...)
}

// ListBranches calls ListBranches on the default cache.
func ListBranches(ctx context.Context, identifier string, opts ...CacheOption) (map[string]string, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}
	return c.ListBranches(ctx, identifier, opts...)
}

// ListTags calls ListTags on the default cache.
func ListTags(ctx context.Context, identifier string, opts ...CacheOption) (map[string]string, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}
	return c.ListTags(ctx, identifier, opts...)
}

// ListPullRequests calls ListPullRequests on the default cache.
func ListPullRequests(ctx context.Context, identifier string, opts ...CacheOption) (map[string]string, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}
	return c.ListPullRequests(ctx, identifier, opts...)
}

// PurgeMirror calls PurgeMirror on the default cache.
func PurgeMirror(ctx context.Context, identifier string, opts ...CacheOption) error {
	c, err := Default()
	if err != nil {
		return err
	}
	return c.PurgeMirror(ctx, identifier, opts...)
}

// PurgeWorkingTree calls PurgeWorkingTree on the default cache.
func PurgeWorkingTree(ctx context.Context, identifier string, opts ...CacheOption) error {
	c, err := Default()
	if err != nil {
		return err
	}
	return c.PurgeWorkingTree(ctx, identifier, opts...)
}

// PurgeAll calls PurgeAll on the default cache.
func PurgeAll(ctx context.Context, identifier string, opts ...CacheOption) error {
	c, err := Default()
	if err != nil {
		return err
	}
	return c.PurgeAll(ctx, identifier, opts...)
}
