package cli

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/labelsheet/pkg/config"
	"github.com/matzehuels/labelsheet/pkg/counter"
	"github.com/matzehuels/labelsheet/pkg/counter/backend"
	"github.com/matzehuels/labelsheet/pkg/errors"
)

// counterCommand creates the counter command and its subcommands.
func (c *CLI) counterCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "counter",
		Short: "Show or set the persisted label counter",
	}
	config.AddStoreFlags(cmd.PersistentFlags())
	cmd.AddCommand(c.counterShowCommand())
	cmd.AddCommand(c.counterSetCommand())
	return cmd
}

func (c *CLI) counterShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the next label number",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			store, err := c.openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			snap, err := store.Load(cmd.Context())
			if err != nil {
				return err
			}
			printKeyValue("counter", backend.Describe(cfg))
			printKeyValue("next", StyleNumber.Render(strconv.Itoa(snap.Or(cfg.Start))))
			if !snap.Exists {
				printDetail("nothing persisted yet")
			}
			return nil
		},
	}
}

func (c *CLI) counterSetCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "set <next>",
		Short: "Set the next label number",
		Long: `Set the number the next sheet starts at.

Lowering the counter would issue labels a second time and is refused
unless --force is given.`,
		Example: `  labelsheet counter set 1000`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			next, err := strconv.Atoi(args[0])
			if err != nil || next < 0 {
				return errors.New(errors.ErrCodeConfiguration, "counter must be a non-negative integer, got %q", args[0])
			}
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			store, err := c.openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			prev, err := setCounter(cmd.Context(), store, next, force)
			if err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Info("counter set", "from", prev, "to", next)
			printSuccess("Next sheet starts at %s", StyleNumber.Render(strconv.Itoa(next)))
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "allow lowering the counter")
	return cmd
}

// setCounter stores next under the store lock and returns the previous
// value, or 0 if none was persisted.
func setCounter(ctx context.Context, store counter.Store, next int, force bool) (int, error) {
	if locker, ok := store.(counter.Locker); ok {
		unlock, err := locker.Lock(ctx)
		if err != nil {
			return 0, err
		}
		defer unlock()
	}
	snap, err := store.Load(ctx)
	if err != nil {
		return 0, err
	}
	if snap.Exists && next < snap.Value && !force {
		return snap.Value, errors.New(errors.ErrCodeConfiguration,
			"counter is at %d; setting it to %d would reissue labels (use --force)", snap.Value, next)
	}
	if err := store.Commit(ctx, snap, next); err != nil {
		return snap.Value, err
	}
	return snap.Value, nil
}
