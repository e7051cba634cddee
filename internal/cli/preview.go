package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/labelsheet/pkg/config"
	"github.com/matzehuels/labelsheet/pkg/counter/backend"
)

// previewCommand creates the preview command.
func (c *CLI) previewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show the sheet the next run would produce",
		Long: `Show the label grid of the next sheet in the terminal.

Preview reads the counter but neither takes the store lock nor writes
anything. The numbers shown are not reserved.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			return c.runPreview(cmd, cfg)
		},
	}
	config.AddSheetFlags(cmd.Flags())
	return cmd
}

func (c *CLI) runPreview(cmd *cobra.Command, cfg *config.Config) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	store, err := c.openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	runner, err := c.newRunner(cfg, store, logger)
	if err != nil {
		return err
	}
	opts := optionsFrom(cfg)
	opts.DryRun = true

	plan, err := runner.Plan(ctx, opts)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), gridTable(plan.Grid))
	printKeyValue("labels", formatRange(plan.Range.First, plan.Range.Last()))
	printKeyValue("next", strconv.Itoa(plan.NextStart))
	printKeyValue("page", fmt.Sprintf("%s %s", plan.Page.Size.Name, plan.Page.Orientation))
	printKeyValue("counter", backend.Describe(cfg))
	if !plan.Snapshot.Exists {
		printDetail("no counter persisted yet, starting at %d", plan.Range.First)
	}
	if plan.Page.Overflows() {
		printWarning("the label table is larger than the printable area")
	}
	return nil
}
