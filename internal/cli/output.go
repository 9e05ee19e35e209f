package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Process exit codes.
const (
	ExitSuccess      = 0 // every scenario met its expectations
	ExitFailure      = 1 // a scenario failed or a simulation rejected a message
	ExitCommandError = 2 // bad flags, unreadable scenarios, ledger errors
)

// Error codes reported in the JSON envelope.
const (
	CodeCheckFailed      = "E_CHECK_FAILED"
	CodeSimulationFailed = "E_SIMULATION_FAILED"
	CodeCommand          = "E_COMMAND"
)

// ExitError carries the exit code a command should end the process with.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// NewExitError returns an ExitError without a cause.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError returns an ExitError caused by err.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode maps err to a process exit code. Errors that carry no
// ExitError, such as cobra's argument errors, are command errors.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if exitErr, ok := asExitError(err); ok {
		return exitErr.Code
	}
	return ExitCommandError
}

func asExitError(err error) (*ExitError, bool) {
	var exitErr *ExitError
	ok := errors.As(err, &exitErr)
	return exitErr, ok
}

// CLIResponse is the JSON envelope every command writes with --format json.
type CLIResponse struct {
	Status   string    `json:"status"` // "ok" or "error"
	ExitCode int       `json:"exit_code"`
	Data     any       `json:"data,omitempty"`
	Error    *CLIError `json:"error,omitempty"`
}

// CLIError describes why a command did not succeed.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// OutputFormatter writes command results.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // diagnostics; Writer when nil
	Verbose   bool
}

// OK writes a successful envelope around data.
func (f *OutputFormatter) OK(data any) error {
	return f.encode(CLIResponse{Status: "ok", ExitCode: ExitSuccess, Data: data})
}

// Fail writes an error envelope for exitErr, keeping data as the partial
// result. The caller still returns exitErr.
func (f *OutputFormatter) Fail(code string, data any, exitErr *ExitError) error {
	cliErr := &CLIError{Code: code, Message: exitErr.Message}
	if exitErr.Err != nil {
		cliErr.Details = exitErr.Err.Error()
	}
	return f.encode(CLIResponse{
		Status:   "error",
		ExitCode: exitErr.Code,
		Data:     data,
		Error:    cliErr,
	})
}

// CommandError renders an error that aborted a command. In JSON mode it
// writes an E_COMMAND envelope to Writer so scripted callers always get
// parseable output; every mode also prints it to ErrWriter.
func (f *OutputFormatter) CommandError(err error) {
	if f.Format == "json" {
		exitErr, ok := asExitError(err)
		if !ok {
			exitErr = NewExitError(ExitCommandError, err.Error())
		}
		if exitErr.Code == ExitCommandError {
			_ = f.Fail(CodeCommand, nil, exitErr)
		}
	}
	fmt.Fprintln(f.GetErrWriter(), "Error:", err)
}

func (f *OutputFormatter) encode(resp CLIResponse) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

// VerboseLog writes a diagnostic line when --verbose is set.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if f.Verbose {
		fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
	}
}

// GetErrWriter returns ErrWriter, or Writer when none is set.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter == nil {
		return f.Writer
	}
	return f.ErrWriter
}
