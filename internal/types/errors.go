package types

import (
	"errors"
	"fmt"
)

// ErrNotInitialized is returned by components used before Initialize.
var ErrNotInitialized = errors.New("not initialized")

// ConversionError reports input that could not be converted for the given
// format.
type ConversionError struct {
	Format ToolUseFormat
	Reason string
	Err    error
}

func (e *ConversionError) Error() string {
	msg := fmt.Sprintf("convert %s: %s", e.Format, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConversionError) Unwrap() error { return e.Err }

// NewConversionError is a shorthand for building a *ConversionError.
func NewConversionError(format ToolUseFormat, reason string, err error) *ConversionError {
	return &ConversionError{Format: format, Reason: reason, Err: err}
}

// InvalidRequestFormatError reports a neutral object missing required
// fields.
type InvalidRequestFormatError struct {
	Missing []string
}

func (e *InvalidRequestFormatError) Error() string {
	return fmt.Sprintf("invalid request format: missing %v", e.Missing)
}

// ToolNotFoundError is returned by the registry for unknown tool names.
type ToolNotFoundError struct {
	Name string
}

func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("Tool '%s' not found", e.Name)
}

// ToolExecutionError wraps an error returned by a tool handler.
type ToolExecutionError struct {
	Name string
	Err  error
}

func (e *ToolExecutionError) Error() string {
	return fmt.Sprintf("Error executing tool '%s': %v", e.Name, e.Err)
}

func (e *ToolExecutionError) Unwrap() error { return e.Err }

// TransportStartError reports that a transport failed to bind or connect.
type TransportStartError struct {
	Transport string
	Err       error
}

func (e *TransportStartError) Error() string {
	return fmt.Sprintf("starting %s transport: %v", e.Transport, e.Err)
}

func (e *TransportStartError) Unwrap() error { return e.Err }
