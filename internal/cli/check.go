package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/fsmcheck/internal/checker"
	"github.com/roach88/fsmcheck/internal/model"
	"github.com/roach88/fsmcheck/internal/scenario"
	"github.com/roach88/fsmcheck/internal/store"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Filter   string
	Record   bool
	MaxSteps int
	Jobs     int
}

// ScenarioResult holds the verdict of a single scenario.
type ScenarioResult struct {
	Name    string   `json:"name"`
	Model   string   `json:"model,omitempty"`
	Pass    bool     `json:"pass"`
	Outcome string   `json:"outcome"`
	Errors  []string `json:"errors,omitempty"`

	Fingerprint string `json:"fingerprint,omitempty"`

	// Drift is set with --record when a passing run's trace differs from
	// the last passing run recorded for the same scenario.
	Drift bool `json:"drift,omitempty"`

	result *scenario.Result
}

// CheckResult holds the overall check result.
type CheckResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`

	// Batch is the ledger batch ID when --record is set.
	Batch string `json:"batch,omitempty"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <scenarios-dir>",
		Short: "Check scenarios against their models",
		Long: `Replay every scenario in a directory against its model and compare the
verdict with the scenario's expectations.

Scenario files are YAML files (*.yaml, *.yml) naming a model, a message
sequence and the expected outcome. With --record, each verdict is written
to the ledger and passing traces are compared with the last passing run.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (missing directory, invalid scenario file, ledger error)

Examples:
  fsmcheck check ./scenarios
  fsmcheck check ./scenarios --filter "meow*"
  fsmcheck check ./scenarios --jobs 4
  fsmcheck check ./scenarios --record --db ./fsmcheck.db
  fsmcheck check ./scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), opts, cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "run only scenarios whose name matches this glob")
	cmd.Flags().BoolVar(&opts.Record, "record", false, "record verdicts in the ledger")
	cmd.Flags().IntVar(&opts.MaxSteps, "max-steps", 0, "reject scenarios with more messages (default $FSMCHECK_MAX_STEPS)")
	cmd.Flags().IntVarP(&opts.Jobs, "jobs", "j", 1, "scenarios to check in parallel")

	return cmd
}

func runCheck(ctx context.Context, opts *CheckOptions, cmd *cobra.Command, dir string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	out := opts.formatter(cmd)

	scenarios, err := loadScenarios(dir, opts.Filter)
	if err != nil {
		return err
	}

	if len(scenarios) == 0 {
		if opts.Format == "json" {
			return out.OK(CheckResult{Scenarios: []ScenarioResult{}})
		}
		fmt.Fprintf(out.Writer, "No scenarios found in %s\n", dir)
		return nil
	}

	maxSteps := opts.RootOptions.MaxSteps
	if cmd.Flags().Changed("max-steps") {
		maxSteps = opts.MaxSteps
	}
	checkOpts := []checker.Option{checker.WithLogger(opts.logger())}
	if maxSteps > 0 {
		checkOpts = append(checkOpts, checker.WithMaxSteps(maxSteps))
	}

	if opts.Jobs < 1 {
		return NewExitError(ExitCommandError, fmt.Sprintf("--jobs must be at least 1, got %d", opts.Jobs))
	}

	// Each scenario runs on its own machine; results keep file order.
	catalog := opts.catalog()
	result := CheckResult{
		Scenarios: make([]ScenarioResult, len(scenarios)),
		Total:     len(scenarios),
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Jobs)
	for i, s := range scenarios {
		out.VerboseLog("checking %s (%s)", s.Name, s.Path)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result.Scenarios[i] = checkScenario(opts, catalog, s, checkOpts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return WrapExitError(ExitCommandError, "check interrupted", err)
	}

	for _, sr := range result.Scenarios {
		if sr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if opts.Record {
		batchID, err := recordCheck(ctx, opts, dir, &result)
		if err != nil {
			return err
		}
		result.Batch = batchID
	}

	if opts.Format == "json" {
		return outputCheckJSON(out, result)
	}
	return outputCheckText(out, result)
}

// loadScenarios loads and filters the scenario files of dir.
func loadScenarios(dir, filter string) ([]*scenario.Scenario, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "scenarios directory not found", err)
	}
	if !info.IsDir() {
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("%s is not a directory", dir))
	}

	scenarios, err := scenario.LoadDir(dir)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load scenarios", err)
	}
	if filter != "" {
		scenarios, err = scenario.Filter(scenarios, filter)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "invalid filter", err)
		}
	}
	return scenarios, nil
}

// checkScenario runs one scenario. Scenarios that cannot run fail with
// outcome error instead of aborting the command.
func checkScenario(opts *CheckOptions, catalog *model.Catalog, s *scenario.Scenario, checkOpts []checker.Option) ScenarioResult {
	res, err := scenario.Run(catalog, s, checkOpts...)
	if err != nil {
		opts.logger().Warn("scenario could not run", "scenario", s.Name, "error", err)
		return ScenarioResult{
			Name:    s.Name,
			Model:   s.Model,
			Outcome: store.OutcomeError,
			Errors:  []string{err.Error()},
		}
	}
	return ScenarioResult{
		Name:        res.Scenario,
		Model:       res.Model,
		Pass:        res.Pass,
		Outcome:     scenario.OutcomeOf(res.Outcome),
		Errors:      res.Errors,
		Fingerprint: res.Fingerprint,
		result:      res,
	}
}

// recordCheck writes one batch for the check and marks drifted traces.
func recordCheck(ctx context.Context, opts *CheckOptions, dir string, result *CheckResult) (string, error) {
	st, err := opts.openStore()
	if err != nil {
		return "", err
	}
	defer st.Close()

	ids := opts.ids()
	batchID := ids.Generate()
	runs := make([]store.Run, len(result.Scenarios))
	for i := range result.Scenarios {
		sr := &result.Scenarios[i]
		if sr.Pass {
			prev, err := st.LastPassingFingerprint(ctx, sr.Name)
			switch {
			case errors.Is(err, store.ErrNotFound):
			case err != nil:
				return "", WrapExitError(ExitCommandError, "failed to read ledger", err)
			default:
				sr.Drift = prev != sr.Fingerprint
			}
		}
		runs[i] = toRun(ids.Generate(), *sr)
	}

	batch, _, err := st.WriteBatch(ctx, store.Batch{
		ID:     batchID,
		Source: dir,
		Filter: opts.Filter,
	}, runs)
	if err != nil {
		return "", WrapExitError(ExitCommandError, "failed to record verdicts", err)
	}
	opts.logger().Info("recorded check", "batch", batch.ID, "seq", batch.Seq, "runs", len(runs))
	return batch.ID, nil
}

func toRun(id string, sr ScenarioResult) store.Run {
	run := store.Run{
		ID:          id,
		Scenario:    sr.Name,
		Model:       sr.Model,
		Pass:        sr.Pass,
		Outcome:     sr.Outcome,
		Errors:      sr.Errors,
		Fingerprint: sr.Fingerprint,
	}
	if sr.result == nil {
		return run
	}
	o := sr.result.Outcome
	run.Applied = o.Applied
	run.FailedStep = o.FailedStep
	run.FinalState = o.FinalState
	if o.Violation != nil {
		run.ViolationKind = o.Violation.Kind
		run.ViolationLabel = o.Violation.Label
	}
	return run
}

// outputCheckJSON outputs the check result as JSON.
func outputCheckJSON(out *OutputFormatter, result CheckResult) error {
	if result.Failed == 0 {
		return out.OK(result)
	}
	exitErr := NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	if err := out.Fail(CodeCheckFailed, result, exitErr); err != nil {
		return err
	}
	return exitErr
}

// outputCheckText outputs the check result as text.
func outputCheckText(out *OutputFormatter, result CheckResult) error {
	w := out.Writer

	for _, sr := range result.Scenarios {
		if sr.Pass {
			fmt.Fprintf(w, "✓ %s (%s, %s)\n", sr.Name, sr.Model, sr.Outcome)
		} else {
			fmt.Fprintf(w, "✗ %s (%s, %s)\n", sr.Name, sr.Model, sr.Outcome)
		}
		for _, e := range sr.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
		if sr.Drift {
			fmt.Fprintln(w, "  trace changed since the last passing run")
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Check Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
	if result.Batch != "" {
		fmt.Fprintf(w, "Recorded batch %s\n", result.Batch)
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}

	fmt.Fprintln(w, "✓ All scenarios passed")
	return nil
}

// describeContext renders a machine context on one line.
func describeContext(ctx any) string {
	return strings.TrimSpace(fmt.Sprintf("%+v", ctx))
}
