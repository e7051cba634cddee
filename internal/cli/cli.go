// Package cli implements the labelsheet command-line interface.
//
// # Commands
//
//   - generate: produce the next label sheet and advance the counter (also the default action)
//   - preview: show the sheet the next run would produce, without side effects
//   - counter: show or set the persisted counter
//   - serve: expose runs over HTTP
//   - completion: shell completion scripts
//
// # Configuration
//
// Every command reads labelsheet.toml (or the file named by --config), then
// LABELSHEET_* environment variables, then its own flags. See package config.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/labelsheet/pkg/artifact"
	"github.com/matzehuels/labelsheet/pkg/buildinfo"
	"github.com/matzehuels/labelsheet/pkg/config"
	"github.com/matzehuels/labelsheet/pkg/counter"
	"github.com/matzehuels/labelsheet/pkg/counter/backend"
	"github.com/matzehuels/labelsheet/pkg/pipeline"
	"github.com/matzehuels/labelsheet/pkg/render"
	"github.com/matzehuels/labelsheet/pkg/render/sink"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "labelsheet"

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
	return &CLI{
		Logger: newLogger(w, level),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
// Run without a subcommand, it generates a sheet.
func (c *CLI) RootCommand() *cobra.Command {
	gen := c.generateCommand()

	root := &cobra.Command{
		Use:   appName,
		Short: "labelsheet prints sheets of sequentially numbered labels",
		Long: `labelsheet generates a printable page of sequentially numbered labels laid out
as a fixed grid, and remembers where the sequence stopped so the next sheet
continues without gaps or repeats.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE:         gen.RunE,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "configuration file (default: "+config.DefaultFile+")")
	root.Flags().AddFlagSet(gen.Flags())

	// Register all subcommands
	root.AddCommand(gen)
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.counterCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig builds the configuration snapshot for cmd: file and
// environment first, then the flags set on the command line.
func (c *CLI) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyFlags(cmd.Flags()); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := loggerFromContext(cmd.Context())
	if cfg.Found {
		logger.Debug("loaded configuration", "file", cfg.File)
	}
	for _, key := range cfg.Undecoded {
		logger.Warn("unknown configuration key", "key", key, "file", cfg.File)
	}
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// openStore opens the configured counter store. Connecting to a shared
// backend shows a spinner.
func (c *CLI) openStore(ctx context.Context, cfg *config.Config) (counter.Store, error) {
	switch cfg.Store.Backend {
	case config.BackendFile, config.BackendMemory:
		store, err := backend.Open(ctx, cfg)
		if fs, ok := store.(*counter.FileStore); ok {
			fs.SetLogger(loggerFromContext(ctx))
		}
		return store, err
	}
	spinner := newSpinnerWithContext(ctx, "Connecting to "+backend.Describe(cfg)+"...")
	spinner.Start()
	store, err := backend.Open(ctx, cfg)
	spinner.Stop()
	return store, err
}

// newRenderer returns the renderer for the configured format.
func newRenderer(cfg *config.Config) (render.Renderer, error) {
	return sink.ForFormat(cfg.Format, sink.WithPDFFont(cfg.Font))
}

// newRunner creates a pipeline runner writing into the output directory.
func (c *CLI) newRunner(cfg *config.Config, store counter.Store, logger *log.Logger) (*pipeline.Runner, error) {
	renderer, err := newRenderer(cfg)
	if err != nil {
		return nil, err
	}
	runner := pipeline.NewRunner(store, renderer, artifact.FileSink{Dir: cfg.OutputDir}, logger)
	runner.Backend = cfg.Store.Backend
	return runner, nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// optionsFrom converts the configuration snapshot into run options.
// The default output name follows the format's extension.
func optionsFrom(cfg *config.Config) pipeline.Options {
	opts := pipeline.DefaultOptions()
	opts.Geometry = cfg.Sheet
	opts.Start = cfg.Start
	opts.StartOverride = cfg.StartOverride
	opts.Output = cfg.Output
	if opts.Output == config.DefaultOutput && cfg.Format != render.FormatPDF {
		opts.Output = "label-sheet" + render.Extension(cfg.Format)
	}
	return opts
}
