package cache

import (
	"log/slog"
	"time"

	"github.com/FamousArchives/famous-git-cache/exec"
	"github.com/go-git/go-billy/v5"
)

const (
	// DefaultRef is the ref checked out when WithRef is not given.
	DefaultRef = "master"

	// DefaultStaleAfter is how old a mirror may get before it is refreshed.
	DefaultStaleAfter = 30 * time.Second

	// DefaultGitBinary is the executable name resolved on every invocation.
	DefaultGitBinary = "git"

	defaultRootName = "git-cache"
)

// Option configures a MirrorCache at creation time.
type Option func(*options)

type options struct {
	root           string
	defaultRef     string
	staleAfter     time.Duration
	gitBinary      string
	commandTimeout time.Duration
	executor       exec.Executor
	fs             billy.Filesystem
	logger         *slog.Logger
}

// WithRoot sets the cache root directory. Relative paths are made absolute.
// Defaults to <os.TempDir()>/git-cache.
//
// Example:
//
//	c, _ := cache.New(cache.WithRoot("/var/cache/git"))
func WithRoot(root string) Option {
	return func(o *options) {
		o.root = root
	}
}

// WithDefaultRef sets the ref used by Checkout when WithRef is not given.
func WithDefaultRef(ref string) Option {
	return func(o *options) {
		o.defaultRef = ref
	}
}

// WithStaleAfter sets the mirror staleness threshold. A mirror whose directory
// mtime is older than d is refreshed before use. Zero refreshes every time.
//
// Example:
//
//	// Tolerate five minutes of upstream drift
//	c, _ := cache.New(cache.WithStaleAfter(5 * time.Minute))
func WithStaleAfter(d time.Duration) Option {
	return func(o *options) {
		o.staleAfter = d
	}
}

// WithGitBinary sets the name or path of the git executable.
func WithGitBinary(name string) Option {
	return func(o *options) {
		o.gitBinary = name
	}
}

// WithCommandTimeout bounds every git invocation. Zero (the default) means no limit.
func WithCommandTimeout(d time.Duration) Option {
	return func(o *options) {
		o.commandTimeout = d
	}
}

// WithExecutor replaces the process runner. Tests use it to observe or fake
// git invocations.
func WithExecutor(executor exec.Executor) Option {
	return func(o *options) {
		o.executor = executor
	}
}

// WithFilesystem sets the filesystem used for existence checks, mtimes,
// directory creation and removal. Defaults to osfs rooted at "/".
// The filesystem must address the same paths git sees.
func WithFilesystem(fs billy.Filesystem) Option {
	return func(o *options) {
		o.fs = fs
	}
}

// WithLogger sets the structured logger. Defaults to discarding all output.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// CacheOption configures a single cache operation.
type CacheOption func(*callOptions)

type callOptions struct {
	ref    string
	refSet bool
	root   string
}

// WithRef selects the ref to check out (branch, tag or commit).
// An explicitly empty ref is rejected as invalid input.
//
// Example:
//
//	path, _ := c.Checkout(ctx, url, cache.WithRef("v1.0.0"))
func WithRef(ref string) CacheOption {
	return func(o *callOptions) {
		o.ref = ref
		o.refSet = true
	}
}

// WithCacheRoot overrides the cache root for one operation.
func WithCacheRoot(root string) CacheOption {
	return func(o *callOptions) {
		o.root = root
	}
}
