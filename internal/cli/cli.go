// Package cli implements the gridpath command-line interface.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gridpath/pkg/buildinfo"
	"github.com/matzehuels/gridpath/pkg/cache"
	"github.com/matzehuels/gridpath/pkg/observability"
	"github.com/matzehuels/gridpath/pkg/planner"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display and for the cache
// directory.
const appName = "gridpath"

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
		Use:          appName,
		Short:        "Gridpath searches grids step by step and smooths the result",
		Long:         `Gridpath builds a grid graph, scatters noise obstacles over it, finds a shortest path with a stepwise breadth-first search and turns the path into a Bézier trajectory.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			hooks := newLogHooks(c.Logger)
			observability.SetSearchHooks(hooks)
			observability.SetPlannerHooks(hooks)
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.searchCommand())
	root.AddCommand(c.stepCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.trajectoryCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Planner Factory
// =============================================================================

// newPlanner creates a planner for CLI use.
func (c *CLI) newPlanner() *planner.Planner {
	return planner.New(c.Logger)
}

// =============================================================================
// Cache
// =============================================================================

// cacheDir returns $XDG_CACHE_HOME/gridpath, or ~/.cache/gridpath.
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

// openCache opens the render cache, or a null cache when disabled or when
// the cache directory cannot be created.
func (c *CLI) openCache(disabled bool) (cache.Cache, error) {
	if disabled {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		c.Logger.Warn("render cache disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Warn("render cache disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	return fc, nil
}
