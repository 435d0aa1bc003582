package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cyclesearch/pkg/archive"
	"github.com/matzehuels/cyclesearch/pkg/buildinfo"
	"github.com/matzehuels/cyclesearch/pkg/cache"
	"github.com/matzehuels/cyclesearch/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "cyclesearch"

	// archiveFile is the default file archive inside the data directory.
	archiveFile = "runs.jsonl"

	// resultsDir holds cached search results inside the cache directory.
	resultsDir = "results"
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Verbosity is the -v count. Search commands forward it to the engine.
	Verbosity int
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
		Short: "Cyclesearch finds minimal phase cycles for NMR pulse sequences",
		Long: `Cyclesearch searches for the shortest phase cycles that select the wanted
coherence transfer pathways of a pulse sequence and suppress all others.

Three cycle families are supported: cogwheel cycles, nested cycles and
nested cogwheel cycles. Pathways are read from a JSON or TOML descriptor.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	for _, f := range searchFamilies {
		root.AddCommand(c.searchCommand(f))
	}
	root.AddCommand(c.countCommand())
	root.AddCommand(c.predictCommand())
	root.AddCommand(c.phasesCommand())
	root.AddCommand(c.historyCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// backendOpts selects the cache and archive of a runner.
type backendOpts struct {
	noCache   bool
	redis     string // Redis address; empty uses the file cache
	archive   string // archive URI; empty uses the default file archive
	noArchive bool
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, cfg Config, b backendOpts) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, cfg, b)
	if err != nil {
		return nil, err
	}
	runner := pipeline.NewRunner(cc, nil, c.Logger)
	runner.TTL = cfg.CacheTTL.Duration

	if !b.noArchive {
		store, err := openArchive(ctx, cfg, b.archive)
		if err != nil {
			// A missing archive never blocks a search.
			c.Logger.Warn("archive disabled", "err", err)
		} else {
			runner.Archive = store
		}
	}
	return runner, nil
}

// newCache returns the cache for b: none, Redis when an address is known,
// otherwise the file cache.
func (c *CLI) newCache(ctx context.Context, cfg Config, b backendOpts) (cache.Cache, error) {
	if b.noCache {
		return cache.NewNullCache(), nil
	}
	rc := cfg.Redis
	if b.redis != "" {
		rc.Addr = b.redis
	}
	if rc.Addr != "" {
		return cache.NewRedisCache(ctx, rc)
	}
	dir, err := resultsCacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// openArchive opens uri, falling back to the configured archive and then
// to the file archive in the data directory.
func openArchive(ctx context.Context, cfg Config, uri string) (archive.Store, error) {
	if uri == "" {
		uri = cfg.Archive
	}
	if uri == "" {
		dir, err := dataDir()
		if err != nil {
			return nil, err
		}
		uri = filepath.Join(dir, archiveFile)
	}
	return archive.Open(ctx, uri)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/cyclesearch/).
func cacheDir() (string, error) {
	return xdgDir("XDG_CACHE_HOME", ".cache")
}

// resultsCacheDir is where the file cache keeps search results.
func resultsCacheDir() (string, error) {
	dir, err := cacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, resultsDir), nil
}

// configDir returns the config directory (~/.config/cyclesearch/).
func configDir() (string, error) {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// dataDir returns the data directory (~/.local/share/cyclesearch/).
func dataDir() (string, error) {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

func xdgDir(env, fallback string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallback, appName), nil
}
