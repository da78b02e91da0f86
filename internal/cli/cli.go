package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/topdeps/pkg/buildinfo"
	"github.com/matzehuels/topdeps/pkg/cache"
	"github.com/matzehuels/topdeps/pkg/integrations/github"
	"github.com/matzehuels/topdeps/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "topdeps"

	// envCacheDir overrides the cache directory.
	envCacheDir = "TOPDEPS_CACHE_DIR"

	// envSite overrides the GitHub origin, mostly for mirrors and tests.
	envSite = "TOPDEPS_SITE"
)

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

	// Config holds file and environment defaults. It is loaded by the root
	// command before any subcommand runs.
	Config Config

	configPath string
	logOut     io.Writer
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: defaultConfig(),
		logOut: w,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Topdeps lists the most starred dependents of a GitHub repository",
		Long:         `Topdeps walks the "Used by" listing of a GitHub repository, ranks the dependents by stars and prints the top of the list.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(c.configPath, cmd.Flags().Changed("config"))
			if err != nil {
				return err
			}
			c.Config = cfg
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/topdeps/config.toml)")

	root.AddCommand(c.topCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool, dir, markup string) (*pipeline.Runner, error) {
	parser, err := github.ParserFor(markup)
	if err != nil {
		return nil, err
	}
	store, err := c.newCache(noCache, dir)
	if err != nil {
		return nil, err
	}
	runner := pipeline.NewRunner(store, github.NewSite(c.Config.Site), c.Logger)
	runner.Parser = parser
	return runner, nil
}

// newCache opens the file cache in dir, falling back to the default
// location. Without a usable home directory caching is disabled.
func (c *CLI) newCache(noCache bool, dir string) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if dir == "" {
		var err error
		if dir, err = cacheDir(); err != nil {
			c.Logger.Warn("caching disabled", "err", err)
			return cache.NewNullCache(), nil
		}
	}
	fc, err := cache.NewFileCache(dir, cache.DefaultTTL)
	if err != nil {
		return nil, err
	}
	return fc, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory: $TOPDEPS_CACHE_DIR if set, else the
// XDG standard location (~/.cache/topdeps/).
func cacheDir() (string, error) {
	if dir := os.Getenv(envCacheDir); dir != "" {
		return dir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// configFile returns the default config file location
// (~/.config/topdeps/config.toml).
func configFile() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}
