package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/deptree/pkg/buildinfo"
	"github.com/matzehuels/deptree/pkg/cache"
	"github.com/matzehuels/deptree/pkg/config"
	"github.com/matzehuels/deptree/pkg/explorer"
	"github.com/matzehuels/deptree/pkg/metadata"
	"github.com/matzehuels/deptree/pkg/tree"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "deptree"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "deptree explores dependency trees interactively",
		Long: `deptree lays out package dependency trees top-down and lets you explore them:
expand and collapse packages, pan and zoom, and inspect package details in the
terminal, over HTTP, or as exported SVG/PNG frames.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.cfg = cfg
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: "+config.DefaultPath()+")")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.metadataCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// config returns the loaded configuration, or the defaults when a command
// runs without the root pre-run (as in tests).
func (c *CLI) config() *config.Config {
	if c.cfg == nil {
		c.cfg = config.Default()
	}
	return c.cfg
}

// =============================================================================
// Tree Input
// =============================================================================

// treeFlags selects the input tree and its initial expansion.
type treeFlags struct {
	root      string
	expand    []string
	expandAll bool
	collapsed bool
}

func (f *treeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.root, "root", "", "root package of node-link graph input (default: first node without dependents)")
	cmd.Flags().StringSliceVarP(&f.expand, "expand", "e", nil, "packages to expand initially (comma-separated)")
	cmd.Flags().BoolVar(&f.expandAll, "expand-all", false, "expand every package")
	cmd.Flags().BoolVar(&f.collapsed, "collapsed", false, "start with the root collapsed")

	cmd.ValidArgsFunction = completeTreeFile
	_ = cmd.RegisterFlagCompletionFunc("root", completeNodeIDs)
	_ = cmd.RegisterFlagCompletionFunc("expand", completeNodeIDs)
}

// openExplorer reads the tree at path and builds an explorer for it.
func (c *CLI) openExplorer(path string, f treeFlags, opts ...explorer.Option) (*explorer.Explorer, error) {
	t, err := tree.ReadFile(path, f.root)
	if err != nil {
		return nil, fmt.Errorf("load tree %s: %w", path, err)
	}
	cfg := c.config()

	base := []explorer.Option{
		explorer.WithLayoutOptions(cfg.Layout),
		explorer.WithLimits(cfg.Viewport),
		explorer.WithLogger(c.Logger),
		explorer.WithExpandRoot(cfg.Explore.ExpandRoot && !f.collapsed),
		explorer.WithExpanded(f.expand...),
	}
	ex, err := explorer.New(t, append(base, opts...)...)
	if err != nil {
		return nil, err
	}
	if f.expandAll {
		ex.ExpandAll()
	}
	c.Logger.Debug("loaded tree", "file", path, "root", t.Root().ID, "packages", t.Len())
	return ex, nil
}

// =============================================================================
// Metadata
// =============================================================================

// openLookup connects the configured metadata backend. The returned close
// function is never nil.
func (c *CLI) openLookup(ctx context.Context) (metadata.Lookup, func(), error) {
	mc := c.config().Metadata
	noop := func() {}

	switch mc.Backend {
	case "", "none":
		return nil, noop, nil
	case "file":
		l, err := metadata.LoadFile(mc.File)
		if err != nil {
			return nil, noop, err
		}
		return l, noop, nil
	case "redis":
		l, closeFn, err := metadata.DialRedis(mc.RedisURL, mc.RedisPrefix)
		if err != nil {
			return nil, noop, err
		}
		return metadata.WithRetry(l), func() { _ = closeFn() }, nil
	case "mongo":
		l, closeFn, err := metadata.DialMongo(ctx, mc.MongoURI, mc.MongoDatabase, mc.MongoCollection)
		if err != nil {
			return nil, noop, err
		}
		return metadata.WithRetry(l), func() { _ = closeFn(context.Background()) }, nil
	default:
		return nil, noop, fmt.Errorf("unknown metadata backend %q", mc.Backend)
	}
}

// =============================================================================
// Cache
// =============================================================================

func (c *CLI) newCache(noCache bool) (cache.Cache, error) {
	cfg := c.config().Cache
	if noCache || !cfg.Enabled {
		return cache.NewNullCache(), nil
	}
	dir, err := c.cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// cacheDir returns the cache directory using XDG standard (~/.cache/deptree/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Output Helpers
// =============================================================================

// outputPath derives the file for one format. A single format honours an
// explicit output path as-is; otherwise output (or the input name) is a base
// path that receives the format as extension.
func outputPath(input, output, format string, single bool) string {
	if output != "" && single {
		return output
	}
	base := output
	if base == "" {
		base = strings.TrimSuffix(input, filepath.Ext(input))
	}
	return base + "." + format
}

// writeOutput writes data to path, or to w when path is "-".
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "-" {
		_, err := w.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
