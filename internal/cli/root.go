package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/fsmcheck/internal/bowl"
	"github.com/roach88/fsmcheck/internal/config"
	"github.com/roach88/fsmcheck/internal/logging"
	"github.com/roach88/fsmcheck/internal/model"
	"github.com/roach88/fsmcheck/internal/store"
)

// RootOptions holds global flags and the dependencies shared by all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	DB      string
	EnvFile string

	// MaxSteps caps the messages per scenario; zero means unlimited.
	MaxSteps int

	Logger  *slog.Logger
	Catalog *model.Catalog
	IDs     store.IDGenerator
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// DefaultCatalog returns the models built into the binary.
func DefaultCatalog() *model.Catalog {
	return model.NewCatalog(bowl.Model(), bowl.StockedModel())
}

// NewRootCommand creates the root command for the fsmcheck CLI.
func NewRootCommand() *cobra.Command {
	return NewRootCommandWithOptions(&RootOptions{})
}

// NewRootCommandWithOptions is NewRootCommand with preset dependencies.
// Nil Catalog and IDs fall back to DefaultCatalog and UUIDv7 run IDs.
func NewRootCommandWithOptions(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fsmcheck",
		Short: "fsmcheck - contract checking for finite-state machines",
		Long: `Replay message scenarios against finite-state machine models and check
them against their preconditions, postconditions, invariants and transition rules.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.DB, "db", "", "path to the verdict ledger (default $FSMCHECK_DB or fsmcheck.db)")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", "", "load settings from this .env file")

	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewSimulateCommand(opts))
	cmd.AddCommand(NewModelsCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}

// Execute runs the command line args and returns the process exit code.
// Errors go to stderr; with --format json, a command error that left stdout
// empty is also written there as an error envelope.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts := &RootOptions{}
	cmd := NewRootCommandWithOptions(opts)
	out := &trackingWriter{w: stdout}
	cmd.SetArgs(args)
	cmd.SetOut(out)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err != nil {
		format := opts.Format
		if out.written {
			format = "text"
		}
		f := &OutputFormatter{Format: format, Writer: stdout, ErrWriter: stderr}
		f.CommandError(err)
	}
	return GetExitCode(err)
}

// trackingWriter records whether anything was written through it.
type trackingWriter struct {
	w       io.Writer
	written bool
}

func (t *trackingWriter) Write(p []byte) (int, error) {
	if len(p) > 0 {
		t.written = true
	}
	return t.w.Write(p)
}

// setup validates global flags and merges them with the environment config.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	if !isValidFormat(o.Format) {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}

	var files []string
	if o.EnvFile != "" {
		files = append(files, o.EnvFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	if !cmd.Flags().Changed("db") {
		o.DB = cfg.DB
	}
	o.MaxSteps = cfg.MaxSteps

	level, err := cfg.Level()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if o.Verbose {
		level = slog.LevelDebug
	}
	o.Logger = logging.NewWithWriter(cmd.ErrOrStderr(), level)
	return nil
}

func (o *RootOptions) logger() *slog.Logger {
	if o.Logger == nil {
		return logging.NewNop()
	}
	return o.Logger
}

// catalog returns the configured catalog or a fresh default one.
// It never writes o, so it is safe from parallel checks.
func (o *RootOptions) catalog() *model.Catalog {
	if o.Catalog == nil {
		return DefaultCatalog()
	}
	return o.Catalog
}

func (o *RootOptions) ids() store.IDGenerator {
	if o.IDs == nil {
		return store.UUIDv7Generator{}
	}
	return o.IDs
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// openStore opens the ledger at o.DB.
func (o *RootOptions) openStore() (*store.Store, error) {
	if o.DB == "" {
		return nil, NewExitError(ExitCommandError, "no ledger path: set --db or FSMCHECK_DB")
	}
	st, err := store.Open(o.DB)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
