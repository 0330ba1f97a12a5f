package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/FamousArchives/famous-git-cache/cache"
	"github.com/FamousArchives/famous-git-cache/errors"
	"github.com/FamousArchives/famous-git-cache/internal/config"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var (
	// Set by the release build
	version = "dev"

	// Global flags
	cfgFile    string
	cacheRoot  string
	logLevel   string
	logFormat  string
	jsonOutput bool

	// Command flags
	refType       string
	purgeMirror   bool
	purgeWorktree bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "gitcache",
	Short: "Cache remote Git repositories locally",
	Long: `gitcache keeps a bare mirror of each remote repository under a cache root
and materializes refs from it into working trees, refreshing the mirror only
when it has gone stale.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var mirrorCmd = &cobra.Command{
	Use:   "mirror <url>",
	Short: "Clone or refresh the mirror of a repository",
	Args:  cobra.ExactArgs(1),
	RunE: withCache(func(ctx context.Context, c *cache.MirrorCache, cmd *cobra.Command, args []string) error {
		path, err := c.EnsureMirror(ctx, args[0])
		if err != nil {
			return err
		}
		return output(cmd.OutOrStdout(), map[string]string{"mirror": path}, path)
	}),
}

var checkoutCmd = &cobra.Command{
	Use:   "checkout <url> [ref]",
	Short: "Check out a ref of a repository into its working tree",
	Args:  cobra.RangeArgs(1, 2),
	RunE: withCache(func(ctx context.Context, c *cache.MirrorCache, cmd *cobra.Command, args []string) error {
		var opts []cache.CacheOption
		if len(args) == 2 {
			opts = append(opts, cache.WithRef(args[1]))
		}
		path, err := c.Checkout(ctx, args[0], opts...)
		if err != nil {
			return err
		}
		return output(cmd.OutOrStdout(), map[string]string{"working_tree": path}, path)
	}),
}

var refsCmd = &cobra.Command{
	Use:   "refs <url>",
	Short: "List the refs of a repository",
	Args:  cobra.ExactArgs(1),
	RunE: withCache(func(ctx context.Context, c *cache.MirrorCache, cmd *cobra.Command, args []string) error {
		refs, err := listRefs(ctx, c, args[0], refType)
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), refs)
		}
		return writeRefs(cmd.OutOrStdout(), refs)
	}),
}

var purgeCmd = &cobra.Command{
	Use:   "purge <url>",
	Short: "Remove cached data for a repository",
	Long: `Purge removes the mirror and working tree of a repository. Use --mirror or
--worktree to remove only one of them.`,
	Args: cobra.ExactArgs(1),
	RunE: withCache(func(ctx context.Context, c *cache.MirrorCache, cmd *cobra.Command, args []string) error {
		switch {
		case purgeMirror && purgeWorktree:
			return c.PurgeAll(ctx, args[0])
		case purgeMirror:
			return c.PurgeMirror(ctx, args[0])
		case purgeWorktree:
			return c.PurgeWorkingTree(ctx, args[0])
		default:
			return c.PurgeAll(ctx, args[0])
		}
	}),
}

var pathsCmd = &cobra.Command{
	Use:   "paths <url>",
	Short: "Print the cache key and directories of a repository",
	Args:  cobra.ExactArgs(1),
	RunE: withCache(func(_ context.Context, c *cache.MirrorCache, cmd *cobra.Command, args []string) error {
		paths, err := c.Paths(args[0])
		if err != nil {
			return err
		}
		text := fmt.Sprintf("key:          %s\nroot:         %s\nmirror:       %s\nworking tree: %s",
			paths.Key, paths.Root, paths.Mirror, paths.WorkingTree)
		return output(cmd.OutOrStdout(), paths, text)
	}),
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "gitcache %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML)")
	rootCmd.PersistentFlags().StringVar(&cacheRoot, "cache-root", "", "cache root directory (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (text, json)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results and errors as JSON")

	refsCmd.Flags().StringVar(&refType, "type", "all", "ref category (all, heads, tags, pull)")
	purgeCmd.Flags().BoolVar(&purgeMirror, "mirror", false, "remove only the mirror")
	purgeCmd.Flags().BoolVar(&purgeWorktree, "worktree", false, "remove only the working tree")

	rootCmd.AddCommand(mirrorCmd, checkoutCmd, refsCmd, purgeCmd, pathsCmd, versionCmd)
}

type cacheFunc func(ctx context.Context, c *cache.MirrorCache, cmd *cobra.Command, args []string) error

// withCache loads configuration, builds the cache and closes it after fn.
func withCache(fn cacheFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, cancel := setupSignalHandler()
		defer cancel()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		logger := setupLogger(cfg, cmd.ErrOrStderr())
		logger.Debug("configuration loaded",
			"root", cfg.Cache.Root,
			"stale_after", cfg.Cache.StaleAfter,
			"default_ref", cfg.Cache.DefaultRef)

		c, err := cache.New(append(cfg.Options(), cache.WithLogger(logger))...)
		if err != nil {
			return err
		}
		defer c.Close()

		return fn(ctx, c, cmd, args)
	}
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	if cacheRoot != "" {
		cfg.Cache.Root = cacheRoot
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = config.LogFormat(logFormat)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setupLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	level := cfg.SlogLevel()

	if cfg.Log.Format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	}

	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		NoColor:    !isTerminal(w),
	}))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func listRefs(ctx context.Context, c *cache.MirrorCache, url, category string) (map[string]string, error) {
	switch category {
	case "all", "":
		return c.ListRefs(ctx, url)
	case string(cache.CategoryHeads):
		return c.ListBranches(ctx, url)
	case string(cache.CategoryTags):
		return c.ListTags(ctx, url)
	case string(cache.CategoryPull):
		return c.ListPullRequests(ctx, url)
	default:
		return nil, errors.Newf(errors.CodeInvalidInput,
			"invalid ref type: %s (must be all, heads, tags, or pull)", category)
	}
}

// writeRefs prints "<commit> <name>" lines sorted by name.
func writeRefs(w io.Writer, refs map[string]string) error {
	names := make([]string, 0, len(refs))
	for name := range refs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if _, err := fmt.Fprintf(w, "%s %s\n", refs[name], name); err != nil {
			return err
		}
	}
	return nil
}

func output(w io.Writer, value interface{}, text string) error {
	if jsonOutput {
		return writeJSON(w, value)
	}
	_, err := fmt.Fprintln(w, text)
	return err
}

func writeJSON(w io.Writer, value interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

func reportError(w io.Writer, err error) {
	if jsonOutput {
		_ = writeJSON(w, errors.ToJSON(err))
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}

func setupSignalHandler() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
