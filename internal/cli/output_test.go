package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputFormatter_OK(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}
	require.NoError(t, f.OK("done"))
	assert.Equal(t, "{\n  \"status\": \"ok\",\n  \"exit_code\": 0,\n  \"data\": \"done\"\n}\n", buf.String())
}

func TestOutputFormatter_Fail(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		data    any
		exitErr *ExitError
		want    CLIError
	}{
		{
			name:    "check failure keeps the result",
			code:    CodeCheckFailed,
			data:    CheckResult{Failed: 1, Total: 1},
			exitErr: NewExitError(ExitFailure, "1 scenario(s) failed"),
			want:    CLIError{Code: CodeCheckFailed, Message: "1 scenario(s) failed"},
		},
		{
			name:    "cause becomes details",
			code:    CodeCommand,
			exitErr: WrapExitError(ExitCommandError, "failed to open database", errors.New("disk full")),
			want:    CLIError{Code: CodeCommand, Message: "failed to open database", Details: "disk full"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			f := &OutputFormatter{Format: "json", Writer: &buf}
			require.NoError(t, f.Fail(tt.code, tt.data, tt.exitErr))

			var resp CLIResponse
			require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
			assert.Equal(t, "error", resp.Status)
			assert.Equal(t, tt.exitErr.Code, resp.ExitCode)
			assert.Equal(t, tt.data != nil, resp.Data != nil)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.want, *resp.Error)
		})
	}
}

func TestOutputFormatter_CommandError(t *testing.T) {
	tests := []struct {
		name         string
		format       string
		err          error
		wantEnvelope bool
	}{
		{"json command error", "json", NewExitError(ExitCommandError, "invalid filter"), true},
		{"json cobra error", "json", errors.New("accepts 1 arg(s), received 0"), true},
		{"json check failure already reported", "json", NewExitError(ExitFailure, "1 scenario(s) failed"), false},
		{"text command error", "text", NewExitError(ExitCommandError, "invalid filter"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, diag := &bytes.Buffer{}, &bytes.Buffer{}
			f := &OutputFormatter{Format: tt.format, Writer: out, ErrWriter: diag}
			f.CommandError(tt.err)

			assert.Equal(t, "Error: "+tt.err.Error()+"\n", diag.String())
			if !tt.wantEnvelope {
				assert.Empty(t, out.String())
				return
			}
			var resp CLIResponse
			require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
			assert.Equal(t, ExitCommandError, resp.ExitCode)
			require.NotNil(t, resp.Error)
			assert.Equal(t, CodeCommand, resp.Error.Code)
			assert.Equal(t, tt.err.Error(), resp.Error.Message)
		})
	}
}

func TestOutputFormatter_VerboseLogQuietByDefault(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &buf}
	f.VerboseLog("checking %s", "meow_and_eat")
	assert.Empty(t, buf.String())

	f.Verbose = true
	f.VerboseLog("checking %s", "meow_and_eat")
	assert.Equal(t, "checking meow_and_eat\n", buf.String())
}

func TestOutputFormatter_VerboseLogUsesErrWriter(t *testing.T) {
	out, diag := &bytes.Buffer{}, &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:    "json",
		Writer:    out,
		ErrWriter: diag,
		Verbose:   true,
	}

	formatter.VerboseLog("checking %s", "overstocked")
	assert.Empty(t, out.String())
	assert.Equal(t, "checking overstocked\n", diag.String())
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"failure", NewExitError(ExitFailure, "1 scenario(s) failed"), ExitFailure},
		{"wrapped command error", fmt.Errorf("run: %w", WrapExitError(ExitCommandError, "no ledger", errors.New("boom"))), ExitCommandError},
		{"plain error", errors.New("accepts 1 arg(s), received 0"), ExitCommandError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestExitError_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := WrapExitError(ExitCommandError, "failed to record verdicts", cause)

	assert.Equal(t, "failed to record verdicts: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "no scenarios", NewExitError(ExitFailure, "no scenarios").Error())
}
