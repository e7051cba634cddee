package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/labelsheet/pkg/buildinfo"
)

// SetVersion sets the version information displayed by --version.
// It is called by the main package with values injected via ldflags.
// Empty values keep the defaults.
func SetVersion(v, c, d string) {
	if v != "" {
		buildinfo.Version = v
	}
	if c != "" {
		buildinfo.Commit = c
	}
	if d != "" {
		buildinfo.Date = d
	}
}

// Execute runs the labelsheet CLI with the process arguments.
//
// Logging goes to stderr at info level, or debug level with --verbose (-v).
// The logger is attached to the command context and reachable from every
// command via loggerFromContext.
func Execute(ctx context.Context) error {
	return newRoot(New(os.Stderr, LogInfo)).ExecuteContext(ctx)
}

// newRoot builds the root command of c and adds the --verbose flag.
func newRoot(c *CLI) *cobra.Command {
	var verbose bool

	root := c.RootCommand()
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	preRun := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		level := LogInfo
		if verbose {
			level = LogDebug
		}
		c.SetLogLevel(level)
		if preRun != nil {
			return preRun(cmd, args)
		}
		return nil
	}
	return root
}
