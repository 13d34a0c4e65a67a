// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Error types and exit codes for the codecraft commands.
//
// Commands always return errors and never print them. Run's caller displays
// the error once, in text or JSON, and exits with GetExitCode(err).
package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/jeranaias/codecraft-tui/internal/api"
	"github.com/jeranaias/codecraft-tui/internal/config"
	"github.com/jeranaias/codecraft-tui/internal/storage"
	"github.com/jeranaias/codecraft-tui/internal/workbench"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitNotFound indicates a project or saved session does not exist
	ExitNotFound = 3
	// ExitValidation indicates input or configuration that failed validation
	ExitValidation = 4
	// ExitBackendUnavailable indicates the server could not be reached in time
	ExitBackendUnavailable = 5
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// CommandError represents a CLI command error with context.
type CommandError struct {
	Command string // Command that failed (e.g., "history", "export")
	Action  string // Action being performed (e.g., "show", "delete")
	Reason  string // Human-readable reason
	Err     error  // Underlying error (if any)
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s failed: %s: %v", e.Command, e.Action, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Command, e.Action, e.Reason)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// UsageError is a malformed invocation: unknown command, missing argument.
type UsageError struct {
	Message string
	Usage   string // Example invocation (optional)
}

func (e *UsageError) Error() string {
	if e.Usage != "" {
		return e.Message + "\nUsage: " + e.Usage
	}
	return e.Message
}

// ValidationError represents a validation failure for user input.
type ValidationError struct {
	Field   string // Field that failed validation
	Value   string // Value that was provided
	Reason  string // Why validation failed
	Example string // Example of valid value (optional)
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	if e.Value != "" {
		msg += fmt.Sprintf(" (got: %s)", e.Value)
	}
	if e.Example != "" {
		msg += fmt.Sprintf("\nExample: %s", e.Example)
	}
	return msg
}

// NotFoundError represents a resource not found error.
type NotFoundError struct {
	Resource string // Type of resource (e.g., "project", "session")
	ID       string // Identifier that was not found
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// =============================================================================
// ERROR CONSTRUCTION HELPERS
// =============================================================================

// NewCommandError creates a new command error.
func NewCommandError(command, action, reason string, err error) error {
	return &CommandError{Command: command, Action: action, Reason: reason, Err: err}
}

// NewUsageError creates a usage error with an example invocation.
func NewUsageError(message, usage string) error {
	return &UsageError{Message: message, Usage: usage}
}

// NewValidationErrorWithExample creates a validation error with an example.
func NewValidationErrorWithExample(field, value, reason, example string) error {
	return &ValidationError{Field: field, Value: value, Reason: reason, Example: example}
}

// NewNotFoundError creates a new not found error.
func NewNotFoundError(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// ErrMissingArgument creates an error for missing required arguments.
func ErrMissingArgument(argName, usage string) error {
	return NewUsageError("missing required argument: "+argName, usage)
}

// =============================================================================
// EXIT CODE MAPPING
// =============================================================================

// GetExitCode determines the exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var usageErr *UsageError
	var validationErr *ValidationError
	var configErrs config.ValidateErrors
	var notFoundErr *NotFoundError

	switch {
	case errors.As(err, &usageErr):
		return ExitUsageError
	case errors.As(err, &notFoundErr), errors.Is(err, storage.ErrSessionNotFound):
		return ExitNotFound
	case errors.As(err, &validationErr), errors.As(err, &configErrs),
		workbench.IsAlert(err), api.IsValidation(err), errors.Is(err, storage.ErrAmbiguousID):
		return ExitValidation
	case api.IsNotRunning(err), api.IsTimeout(err):
		return ExitBackendUnavailable
	default:
		return ExitGeneralError
	}
}

// errorType names the error category in JSON output.
func errorType(err error) string {
	switch GetExitCode(err) {
	case ExitUsageError:
		return "usage_error"
	case ExitNotFound:
		return "not_found_error"
	case ExitValidation:
		return "validation_error"
	case ExitBackendUnavailable:
		return "backend_unavailable"
	default:
		return "generic_error"
	}
}

// =============================================================================
// ERROR DISPLAY
// =============================================================================

// DisplayError writes err once, as a JSON envelope in JSON mode.
func DisplayError(out, errOut io.Writer, command string, err error, jsonMode bool) {
	if err == nil {
		return
	}
	if jsonMode {
		_ = NewJSONErrorResponse(command, err).Write(out)
		return
	}
	fmt.Fprintf(errOut, "%s %s\n", ErrorStyle.Render("[ERROR]"), err.Error())
	if GetExitCode(err) == ExitBackendUnavailable {
		fmt.Fprintln(errOut, DimStyle.Render("Is the CodeCraft server running? Set the URL with --server or CODECRAFT_SERVER_URL."))
	}
}
