package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/fxrelay/internal/alias"
	"github.com/roach88/fxrelay/internal/relay"
	"github.com/roach88/fxrelay/internal/table"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution (dry-run skips included)
	ExitFailure      = 1 // The relay rejected the operation or could not be reached
	ExitCommandError = 2 // Command error (bad flags, config, validation, unknown id)
)

// Error codes reported in JSON error responses.
const (
	ErrCodeGeneric    = "E001" // Generic/unknown error
	ErrCodeConfig     = "E002" // Config file or environment invalid
	ErrCodeValidation = "E003" // Rejected input value
	ErrCodeNotFound   = "E004" // Unknown alias id or column
	ErrCodeJournal    = "E005" // Journal unavailable
	ErrCodeRemote     = "E101" // Relay API error
	ErrCodeBusy       = "E102" // Alias has a pending change
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)

	// Reported is set when the command already wrote the error to its
	// output, so main must not print it again.
	Reported bool
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError returns an ExitError without an underlying cause.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError attaches an exit code to err.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Errors that are not ExitErrors come from cobra's own argument and flag
// parsing and map to ExitCommandError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitCommandError
}

// classify maps a domain error to an exit code and a response error code.
func classify(err error) (int, string) {
	var nf *table.NotFoundError
	switch {
	case relay.IsRemoteError(err):
		return ExitFailure, ErrCodeRemote
	case errors.Is(err, table.ErrBusy):
		return ExitFailure, ErrCodeBusy
	case alias.IsValidationError(err):
		return ExitCommandError, ErrCodeValidation
	case errors.As(err, &nf):
		return ExitCommandError, ErrCodeNotFound
	default:
		return ExitFailure, ErrCodeGeneric
	}
}

// OutputFormatter renders command results as text or as a JSON envelope.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string      `json:"status"`          // "ok", "dry_run" or "error"
	Data   interface{} `json:"data,omitempty"`  // success payload
	Error  *CLIError   `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string      `json:"code"`              // "E001", "E101", etc.
	Message string      `json:"message"`           // human-readable message
	Details interface{} `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	// Human-readable text output
	fmt.Fprintln(f.Writer, data)
	return nil
}

// DryRunResult is the JSON payload of a dry-run response.
type DryRunResult struct {
	Message string      `json:"message"`
	Result  interface{} `json:"result,omitempty"`
}

// DryRun reports an operation skipped by dry-run mode. result, if non-nil,
// is included in JSON output only.
func (f *OutputFormatter) DryRun(message string, result interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "dry_run",
			Data:   DryRunResult{Message: message, Result: result},
		})
	}
	fmt.Fprintf(f.Writer, "dry run: %s\n", message)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	// Human-readable error
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Fail reports err and returns the ExitError the command should return.
func (f *OutputFormatter) Fail(message string, err error) error {
	exit, code := classify(err)
	var details interface{}
	var remote *relay.RemoteError
	if errors.As(err, &remote) {
		details = map[string]interface{}{
			"status":     remote.StatusCode,
			"method":     remote.Method,
			"url":        remote.URL,
			"request_id": remote.RequestID,
		}
	}
	_ = f.Error(code, fmt.Sprintf("%s: %v", message, err), details)
	return &ExitError{Code: exit, Message: message, Err: err, Reported: true}
}

// Report writes an error response with an explicit code and returns the
// matching ExitError.
func (f *OutputFormatter) Report(exit int, code, message string, err error) error {
	text := message
	if err != nil {
		text = fmt.Sprintf("%s: %v", message, err)
	}
	_ = f.Error(code, text, nil)
	return &ExitError{Code: exit, Message: message, Err: err, Reported: true}
}

// VerboseLog writes a diagnostic line to ErrWriter (or Writer when unset)
// in verbose mode only. JSON output on Writer stays parseable.
func (f *OutputFormatter) VerboseLog(format string, args ...interface{}) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}
