// Package cli implements the brickyard command-line interface.
//
// The interactive builder runs in the terminal (play) or behind an HTTP
// API (serve). The remaining commands work on build files and the build
// library: they inspect, place into, and graph builds without a session.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger
// is attached to the command context and handed to the session, server and
// library explicitly.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/brickyard/pkg/build"
	"github.com/matzehuels/brickyard/pkg/buildinfo"
	"github.com/matzehuels/brickyard/pkg/catalog"
	"github.com/matzehuels/brickyard/pkg/config"
	"github.com/matzehuels/brickyard/pkg/controller"
	"github.com/matzehuels/brickyard/pkg/library"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "brickyard"

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

	// configPath is set by the persistent --config flag.
	configPath string
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
		Use:           appName,
		Short:         "Brickyard is a snap-to-grid brick builder",
		Long:          `Brickyard places interlocking bricks and plates on a 32x32 baseplate. Pieces snap to the stud grid and stack on whatever lies beneath them; every edit can be undone.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default "+config.Path()+")")

	root.AddCommand(c.playCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.catalogCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.placeCommand())
	root.AddCommand(c.supportCommand())
	root.AddCommand(c.libraryCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Shared Setup
// =============================================================================

// loadConfig reads the configuration selected by --config.
func (c *CLI) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return cfg, err
	}
	c.Logger.Debug("config loaded", "path", c.configPathOrDefault(), "store", cfg.Store.Backend)
	return cfg, nil
}

func (c *CLI) configPathOrDefault() string {
	if c.configPath != "" {
		return c.configPath
	}
	return config.Path()
}

// openLibrary opens the configured build library.
func (c *CLI) openLibrary(ctx context.Context, cfg config.Config) (library.Store, error) {
	store, err := library.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("library opened", "backend", cfg.Store.Backend)
	return store, nil
}

// newController creates a controller over pieces with the configured
// tool defaults. Config validation guarantees the defaults parse.
func newController(cfg config.Config, pieces build.Pieces, opts controller.Options) *controller.Controller {
	st := build.NewState()
	st.Swap(pieces)
	_ = st.SetActiveType(catalog.Type(cfg.Builder.DefaultPiece))
	if col, err := catalog.ParseColor(cfg.Builder.DefaultColor); err == nil {
		_ = st.SetActiveColor(col)
	}
	if opts.ClickThreshold == 0 {
		opts.ClickThreshold = cfg.Builder.ClickThreshold
	}
	return controller.New(st, opts)
}
