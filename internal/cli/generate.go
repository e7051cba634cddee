package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/labelsheet/pkg/config"
	"github.com/matzehuels/labelsheet/pkg/counter/backend"
	"github.com/matzehuels/labelsheet/pkg/pipeline"
)

// generateFlags holds the flags of the generate command that are not part
// of the configuration snapshot.
type generateFlags struct {
	sheets  int
	dryRun  bool
	force   bool
	confirm bool
	yes     bool
}

// generateCommand creates the generate command.
func (c *CLI) generateCommand() *cobra.Command {
	var flags generateFlags

	cmd := &cobra.Command{
		Use:     "generate",
		Aliases: []string{"gen"},
		Short:   "Generate the next label sheet and advance the counter",
		Long: `Generate one page of sequentially numbered labels.

The sheet starts at the persisted counter (or --start) and the counter is
advanced by rows x columns once the document has been written. A run that
fails before that point leaves the counter untouched, so running it again
produces the same labels.`,
		Example: `  # Next sheet with the configured geometry
  labelsheet generate

  # Three sheets in a row: label-sheet.pdf, label-sheet-2.pdf, label-sheet-3.pdf
  labelsheet generate --sheets 3

  # Look at the page description without using up any numbers
  labelsheet generate --format json --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			return c.runGenerate(cmd, cfg, flags)
		},
	}

	config.AddSheetFlags(cmd.Flags())
	cmd.Flags().IntVarP(&flags.sheets, "sheets", "n", 1, "number of sheets to generate")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "render without writing the sheet or advancing the counter")
	cmd.Flags().BoolVar(&flags.force, "force", false, "allow --start below the persisted counter")
	cmd.Flags().BoolVar(&flags.confirm, "confirm", false, "ask before allocating labels")
	cmd.Flags().BoolVarP(&flags.yes, "yes", "y", false, "answer yes to --confirm")

	return cmd
}

func (c *CLI) runGenerate(cmd *cobra.Command, cfg *config.Config, flags generateFlags) error {
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
	opts.DryRun = flags.dryRun
	opts.Force = flags.force

	if flags.confirm && !flags.yes && !flags.dryRun {
		plan, err := runner.Plan(ctx, opts)
		if err != nil {
			return err
		}
		last := plan.Range.First + flags.sheets*plan.Range.Count - 1
		ok, err := confirm(cmd.InOrStdin(), cmd.OutOrStdout(),
			fmt.Sprintf("Allocate labels %d to %d?", plan.Range.First, last),
			fmt.Sprintf("%d sheet(s) of %d x %d", flags.sheets, cfg.Sheet.Rows, cfg.Sheet.Columns),
			"counter: "+backend.Describe(cfg))
		if err != nil {
			return err
		}
		if !ok {
			printInfo("Aborted, no labels allocated")
			return nil
		}
	}

	prog := newProgress(logger)
	results, err := runner.ExecuteBatch(ctx, opts, flags.sheets)
	for _, r := range results {
		printResult(r)
	}
	if err != nil {
		return err
	}
	prog.done("finished", "sheets", len(results), "next", results[len(results)-1].NextStart)
	return nil
}

// printResult reports one finished sheet.
func printResult(r *pipeline.Result) {
	if !r.Committed {
		printInfo("%s %s", StyleWarning.Render(iconDryRun), formatRange(r.Range.First, r.Range.Last()))
		printDetail("counter stays at %d", r.Range.First)
		return
	}
	printSuccess("Labels %s", formatRange(r.Range.First, r.Range.Last()))
	if r.Output != "" {
		printFile(r.Output)
	}
	if r.Stats.Overflow {
		printWarning("the label table is larger than the printable area")
	}
	printDetail("next sheet starts at %d", r.NextStart)
}
