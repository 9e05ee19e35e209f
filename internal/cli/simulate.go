package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/roach88/fsmcheck/internal/actor"
	"github.com/roach88/fsmcheck/internal/model"
)

// SimulateOptions holds flags for the simulate command.
type SimulateOptions struct {
	*RootOptions
	Filter      string
	MetricsAddr string
}

// SimulationResult is the end state of one simulated scenario.
type SimulationResult struct {
	Name string `json:"name"`
	*model.Simulation
}

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimulateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "simulate <scenarios-dir>",
		Short: "Deliver scenario messages through a live actor",
		Long: `Deliver each scenario's messages to a fresh machine owned by an actor and
report the state it ends in. Contracts and expectations are not checked.

With --metrics-addr, actor metrics are served at /metrics on that address
until the command is interrupted.

Exit codes:
  0 - Every scenario was delivered
  1 - A machine rejected a message
  2 - Command error (missing directory, invalid scenario file)

Examples:
  fsmcheck simulate ./scenarios
  fsmcheck simulate ./scenarios --metrics-addr :2112`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(cmd.Context(), opts, cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "simulate only scenarios whose name matches this glob")
	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "serve actor metrics on this address")

	return cmd
}

func runSimulate(ctx context.Context, opts *SimulateOptions, cmd *cobra.Command, dir string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	out := opts.formatter(cmd)

	scenarios, err := loadScenarios(dir, opts.Filter)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	metrics := actor.NewMetrics(reg)

	catalog := opts.catalog()
	results := make([]SimulationResult, 0, len(scenarios))
	failed := 0
	for _, s := range scenarios {
		m, err := catalog.Lookup(s.Model)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("scenario %s", s.Name), err)
		}
		sim, err := m.Simulate(ctx, s.Messages, model.SimulateOptions{
			Metrics: metrics,
			Logger:  opts.logger(),
		})
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("scenario %s", s.Name), err)
		}
		if sim.Failure != "" {
			failed++
		}
		results = append(results, SimulationResult{Name: s.Name, Simulation: sim})
	}

	var failErr *ExitError
	if failed > 0 {
		failErr = NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) rejected a message", failed))
	}

	switch {
	case opts.Format != "json":
		writeSimulationText(out, results)
	case failErr != nil:
		if err := out.Fail(CodeSimulationFailed, results, failErr); err != nil {
			return err
		}
	default:
		if err := out.OK(results); err != nil {
			return err
		}
	}

	if opts.MetricsAddr != "" {
		if err := serveMetrics(ctx, opts, reg); err != nil {
			return err
		}
	}

	if failErr != nil {
		return failErr
	}
	return nil
}

func writeSimulationText(out *OutputFormatter, results []SimulationResult) {
	w := out.Writer
	if len(results) == 0 {
		fmt.Fprintln(w, "No scenarios to simulate")
		return
	}
	for _, r := range results {
		mark := "✓"
		if r.Failure != "" {
			mark = "✗"
		}
		fmt.Fprintf(w, "%s %s (%s): %d delivered, ends %s %s\n",
			mark, r.Name, r.Model, r.Delivered, r.FinalState, describeContext(r.Context))
		if len(r.Outputs) > 0 {
			fmt.Fprintf(w, "  outputs: %v\n", r.Outputs)
		}
		if r.Failure != "" {
			fmt.Fprintf(w, "  %s\n", r.Failure)
		}
	}
}

// serveMetrics serves reg until ctx is cancelled.
func serveMetrics(ctx context.Context, opts *SimulateOptions, reg *prometheus.Registry) error {
	srv := &http.Server{
		Addr:              opts.MetricsAddr,
		Handler:           metricsHandler(reg),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	opts.logger().Info("serving metrics", "addr", opts.MetricsAddr)

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return WrapExitError(ExitCommandError, "metrics server failed", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// metricsHandler exposes reg at /metrics.
func metricsHandler(reg *prometheus.Registry) http.Handler {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return r
}
