package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/fsmcheck/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Limit    int
	Scenario string
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded verdicts, newest first",
		Long: `List the verdicts recorded by "fsmcheck check --record", newest first.

Exit codes:
  0 - Success
  2 - Command error (database not found, etc.)

Examples:
  fsmcheck history --db ./fsmcheck.db
  fsmcheck history --limit 5
  fsmcheck history --scenario meow_and_eat --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum verdicts to list (0 for all)")
	cmd.Flags().StringVar(&opts.Scenario, "scenario", "", "list only this scenario's verdicts")

	return cmd
}

func runHistory(ctx context.Context, opts *HistoryOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	out := opts.formatter(cmd)

	// Opening would create an empty ledger.
	if _, err := os.Stat(opts.DB); err != nil {
		return WrapExitError(ExitCommandError, "database not found", err)
	}
	st, err := opts.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	var runs []store.Run
	if opts.Scenario != "" {
		runs, err = st.ReadScenarioRuns(ctx, opts.Scenario, opts.Limit)
	} else {
		runs, err = st.ReadRuns(ctx, opts.Limit)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read ledger", err)
	}

	if opts.Format == "json" {
		return out.OK(runs)
	}

	w := out.Writer
	if len(runs) == 0 {
		fmt.Fprintln(w, "No verdicts recorded.")
		return nil
	}
	for _, r := range runs {
		mark := "✓"
		if !r.Pass {
			mark = "✗"
		}
		fmt.Fprintf(w, "#%d %s %s (%s, %s) batch %s\n", r.Seq, mark, r.Scenario, r.Model, r.Outcome, r.BatchID)
		if r.ViolationLabel != "" {
			fmt.Fprintf(w, "  %s at step %d: %s\n", r.ViolationKind, r.FailedStep, r.ViolationLabel)
		}
		for _, e := range r.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}
	return nil
}
