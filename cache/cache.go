package cache

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/FamousArchives/famous-git-cache/errors"
	"github.com/FamousArchives/famous-git-cache/exec"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

// MirrorCache caches bare mirrors of remote repositories and materializes refs
// from them into working trees. It is safe for concurrent use.
type MirrorCache struct {
	root       string
	defaultRef string
	fs         billy.Filesystem
	logger     *slog.Logger

	mirrors   *mirrorStore
	checkouts *checkoutManager
	git       *gitRunner

	mirrorQueue   *Queue
	checkoutQueue *Queue
}

// New creates a MirrorCache and starts its mirror and checkout queues.
// No directories are created until the first operation.
//
// Example:
//
//	c, err := cache.New(
//	    cache.WithRoot("/var/cache/git"),
//	    cache.WithStaleAfter(time.Minute),
//	    cache.WithLogger(slog.Default()),
//	)
func New(opts ...Option) (*MirrorCache, error) {
	o := &options{
		root:       filepath.Join(os.TempDir(), defaultRootName),
		defaultRef: DefaultRef,
		staleAfter: DefaultStaleAfter,
		gitBinary:  DefaultGitBinary,
	}
	for _, opt := range opts {
		opt(o)
	}

	if o.fs == nil {
		o.fs = osfs.New("/")
	}
	if o.executor == nil {
		o.executor = exec.New(exec.WithInheritEnv())
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}

	if err := o.validate(); err != nil {
		return nil, err
	}

	root, err := absRoot(o.root)
	if err != nil {
		return nil, err
	}

	git := newGitRunner(o.executor, o.gitBinary, o.commandTimeout)
	c := &MirrorCache{
		root:       root,
		defaultRef: o.defaultRef,
		fs:         o.fs,
		logger:     o.logger,
		git:        git,
		mirrors: &mirrorStore{
			fs:         o.fs,
			git:        git,
			staleAfter: o.staleAfter,
			logger:     o.logger,
			now:        time.Now,
		},
		checkouts: &checkoutManager{
			fs:     o.fs,
			git:    git,
			logger: o.logger,
		},
		mirrorQueue:   NewQueue("mirror", o.logger),
		checkoutQueue: NewQueue("checkout", o.logger),
	}

	return c, nil
}

func (o *options) validate() error {
	switch {
	case strings.TrimSpace(o.root) == "":
		return errors.New(errors.CodeInvalidConfig, "cache root must not be empty")
	case strings.TrimSpace(o.gitBinary) == "":
		return errors.New(errors.CodeInvalidConfig, "git binary must not be empty")
	case o.staleAfter < 0:
		return errors.Newf(errors.CodeInvalidConfig, "stale-after must not be negative, got %s", o.staleAfter)
	case o.commandTimeout < 0:
		return errors.Newf(errors.CodeInvalidConfig, "command timeout must not be negative, got %s", o.commandTimeout)
	}
	if err := validateRef(o.defaultRef); err != nil {
		return errors.Wrap(err, errors.CodeInvalidConfig, "invalid default ref")
	}
	return nil
}

func absRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", errors.WrapWithContext(err, errors.CodeFileSystem, "failed to resolve cache root",
			map[string]interface{}{"path": root})
	}
	return abs, nil
}

// Root returns the default cache root.
func (c *MirrorCache) Root() string {
	return c.root
}

func validateIdentifier(identifier string) error {
	if strings.TrimSpace(identifier) == "" {
		return errors.New(errors.CodeInvalidInput, "missing or invalid git repo URI")
	}
	if strings.HasPrefix(identifier, "-") {
		return errors.WithContext(
			errors.New(errors.CodeInvalidInput, "git repo URI must not start with '-'"),
			"identifier", identifier)
	}
	return nil
}

func validateRef(ref string) error {
	if strings.TrimSpace(ref) == "" {
		return errors.New(errors.CodeInvalidInput, "missing or invalid git ref")
	}
	if strings.HasPrefix(ref, "-") {
		return errors.WithContext(
			errors.New(errors.CodeInvalidInput, "git ref must not start with '-'"),
			"ref", ref)
	}
	return nil
}

// resolve validates identifier and derives its paths for one call.
func (c *MirrorCache) resolve(identifier string, opts []CacheOption) (Paths, *callOptions, error) {
	o := &callOptions{}
	for _, opt := range opts {
		opt(o)
	}

	if err := validateIdentifier(identifier); err != nil {
		return Paths{}, nil, err
	}

	root := c.root
	if o.root != "" {
		abs, err := absRoot(o.root)
		if err != nil {
			return Paths{}, nil, err
		}
		root = abs
	}

	return ResolvePaths(root, identifier), o, nil
}

// Paths returns the cache key and directories for identifier without
// touching the filesystem.
func (c *MirrorCache) Paths(identifier string, opts ...CacheOption) (Paths, error) {
	paths, _, err := c.resolve(identifier, opts)
	return paths, err
}

// EnsureMirror clones or refreshes the mirror of identifier as needed and
// returns its path.
//
// Example:
//
//	mirror, err := c.EnsureMirror(ctx, "https://github.com/my/repo")
func (c *MirrorCache) EnsureMirror(ctx context.Context, identifier string, opts ...CacheOption) (string, error) {
	paths, _, err := c.resolve(identifier, opts)
	if err != nil {
		return "", err
	}

	err = c.mirrorQueue.Submit(ctx, func(ctx context.Context) error {
		return c.mirrors.ensureFresh(ctx, identifier, paths.Mirror)
	})
	if err != nil {
		return "", err
	}
	return paths.Mirror, nil
}

// Checkout materializes a ref of identifier into its working tree and returns
// the working tree path. The tree is deleted and rebuilt on every call, so it
// never holds files from a previously requested ref. Submodules are
// initialized recursively.
//
// The ref defaults to the cache's default ref when WithRef is not given.
//
// Example:
//
//	path, err := c.Checkout(ctx, "https://github.com/my/repo", cache.WithRef("v2.0.0"))
func (c *MirrorCache) Checkout(ctx context.Context, identifier string, opts ...CacheOption) (string, error) {
	paths, o, err := c.resolve(identifier, opts)
	if err != nil {
		return "", err
	}

	ref := c.defaultRef
	if o.refSet {
		ref = o.ref
	}
	if err := validateRef(ref); err != nil {
		return "", err
	}

	// The ref is resolved while the mirror queue is held, so the checkout
	// uses the commit this request's refresh observed.
	var commit string
	err = c.mirrorQueue.Submit(ctx, func(ctx context.Context) error {
		if err := c.mirrors.ensureFresh(ctx, identifier, paths.Mirror); err != nil {
			return err
		}
		resolved, err := resolveRef(ctx, c.git, paths.Mirror, ref)
		if err != nil {
			return err
		}
		commit = resolved
		return nil
	})
	if err != nil {
		return "", errors.WithContext(err, "identifier", identifier)
	}

	err = c.checkoutQueue.Submit(ctx, func(ctx context.Context) error {
		return c.checkouts.materialize(ctx, paths.Mirror, paths.WorkingTree, ref, commit)
	})
	if err != nil {
		return "", errors.WithContext(err, "identifier", identifier)
	}
	return paths.WorkingTree, nil
}

// ListRefs returns every ref of identifier's mirror keyed by its full name.
// The mirror is brought up to date first.
func (c *MirrorCache) ListRefs(ctx context.Context, identifier string, opts ...CacheOption) (RefTable, error) {
	paths, _, err := c.resolve(identifier, opts)
	if err != nil {
		return nil, err
	}

	var table RefTable
	err = c.mirrorQueue.Submit(ctx, func(ctx context.Context) error {
		if err := c.mirrors.ensureFresh(ctx, identifier, paths.Mirror); err != nil {
			return err
		}
		refs, err := readRefs(ctx, c.git, paths.Mirror)
		if err != nil {
			return err
		}
		table = refs
		return nil
	})
	if err != nil {
		return nil, err
	}
	return table, nil
}

func (c *MirrorCache) listCategory(ctx context.Context, identifier string, category RefCategory, opts []CacheOption) (map[string]string, error) {
	table, err := c.ListRefs(ctx, identifier, opts...)
	if err != nil {
		return nil, err
	}
	return table.Filter(category), nil
}

// ListBranches returns the branches of identifier keyed by short name.
func (c *MirrorCache) ListBranches(ctx context.Context, identifier string, opts ...CacheOption) (map[string]string, error) {
	return c.listCategory(ctx, identifier, CategoryHeads, opts)
}

// ListTags returns the tags of identifier keyed by short name.
//
// Example:
//
//	tags, _ := c.ListTags(ctx, url) // {"v1.0.0": "abc123..."}
func (c *MirrorCache) ListTags(ctx context.Context, identifier string, opts ...CacheOption) (map[string]string, error) {
	return c.listCategory(ctx, identifier, CategoryTags, opts)
}

// ListPullRequests returns the pull request refs of identifier with the
// refs/pull/ prefix removed, for example "42/head".
func (c *MirrorCache) ListPullRequests(ctx context.Context, identifier string, opts ...CacheOption) (map[string]string, error) {
	return c.listCategory(ctx, identifier, CategoryPull, opts)
}

// PurgeMirror removes the mirror of identifier. The next operation clones again.
func (c *MirrorCache) PurgeMirror(ctx context.Context, identifier string, opts ...CacheOption) error {
	paths, _, err := c.resolve(identifier, opts)
	if err != nil {
		return err
	}

	return c.mirrorQueue.Submit(ctx, func(context.Context) error {
		if err := removeAll(c.fs, paths.Mirror); err != nil {
			return err
		}
		c.logger.Info("purged mirror", "identifier", identifier, "mirror", paths.Mirror)
		return nil
	})
}

// PurgeWorkingTree removes the working tree of identifier.
func (c *MirrorCache) PurgeWorkingTree(ctx context.Context, identifier string, opts ...CacheOption) error {
	paths, _, err := c.resolve(identifier, opts)
	if err != nil {
		return err
	}

	return c.checkoutQueue.Submit(ctx, func(context.Context) error {
		if err := removeAll(c.fs, paths.WorkingTree); err != nil {
			return err
		}
		c.logger.Info("purged working tree", "identifier", identifier, "working_tree", paths.WorkingTree)
		return nil
	})
}

// PurgeAll removes everything cached for identifier. It holds the mirror
// queue while the removal runs on the checkout queue, so neither a refresh
// nor a checkout can observe a half-deleted entry.
func (c *MirrorCache) PurgeAll(ctx context.Context, identifier string, opts ...CacheOption) error {
	paths, _, err := c.resolve(identifier, opts)
	if err != nil {
		return err
	}

	return c.mirrorQueue.Submit(ctx, func(ctx context.Context) error {
		return c.checkoutQueue.Submit(ctx, func(context.Context) error {
			if err := removeAll(c.fs, paths.Root); err != nil {
				return err
			}
			c.logger.Info("purged cache entry", "identifier", identifier, "root", paths.Root)
			return nil
		})
	})
}

// Close waits for queued operations to finish and stops both queues.
// Operations submitted afterwards fail with CodeUnavailable.
func (c *MirrorCache) Close() error {
	// Mirror tasks may submit to the checkout queue, so it closes last.
	c.mirrorQueue.Close()
	c.checkoutQueue.Close()
	return nil
}
