// Package errors provides standardized error handling for the tool
// adapter services. Query ambiguity is never represented here: the
// intent engine answers ambiguous queries with clarification outcomes,
// not errors. These codes cover infrastructure and configuration
// failures of the hosting layer.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeRegistryLoadFailed  ErrorCode = "REGISTRY_LOAD_FAILED"
	ErrCodeToolNotFound        ErrorCode = "TOOL_NOT_FOUND"
	ErrCodeSchemaCompileFailed ErrorCode = "SCHEMA_COMPILE_FAILED"
	ErrCodeArgumentsInvalid    ErrorCode = "ARGUMENTS_INVALID"

	ErrCodeContextStoreFailed ErrorCode = "CONTEXT_STORE_FAILED"
	ErrCodeHistoryStoreFailed ErrorCode = "HISTORY_STORE_FAILED"
	ErrCodeDatabaseConnection ErrorCode = "DATABASE_CONNECTION_FAILED"

	ErrCodeToolExecutionFailed ErrorCode = "TOOL_EXECUTION_FAILED"
	ErrCodeToolTimeout         ErrorCode = "TOOL_TIMEOUT"
	ErrCodeExecutionDisabled   ErrorCode = "EXECUTION_DISABLED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// Error Constructors
// ==========================

// NewRegistryLoadFailedError creates a non-retryable registry error.
// Raised at startup only; a registry that loaded once stays valid.
func NewRegistryLoadFailedError(path string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRegistryLoadFailed,
		Message:   "Tool registry could not be loaded",
		Details:   fmt.Sprintf("path: %s, error: %s", path, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewToolNotFoundError creates a non-retryable unknown-tool error.
func NewToolNotFoundError(tool string) *StandardError {
	return &StandardError{
		Code:      ErrCodeToolNotFound,
		Message:   "Tool is not present in the registry",
		Details:   fmt.Sprintf("tool: %s", tool),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSchemaCompileFailedError creates a non-retryable schema error.
func NewSchemaCompileFailedError(tool string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSchemaCompileFailed,
		Message:   "Tool parameter schema failed to compile",
		Details:   fmt.Sprintf("tool: %s, error: %s", tool, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewArgumentsInvalidError creates a non-retryable argument validation error.
func NewArgumentsInvalidError(tool string, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeArgumentsInvalid,
		Message:   "Arguments do not satisfy the tool's parameter schema",
		Details:   fmt.Sprintf("tool: %s, %s", tool, details),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewContextStoreFailedError creates a retryable context store error.
func NewContextStoreFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeContextStoreFailed,
		Message:   "Conversation context store error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewHistoryStoreFailedError creates a retryable history store error.
func NewHistoryStoreFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeHistoryStoreFailed,
		Message:   "Suggestion history store error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionError creates a retryable connection error.
func NewDatabaseConnectionError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnection,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewToolExecutionFailedError creates a non-retryable execution error.
// A tool that exits non-zero will do so again on the same input.
func NewToolExecutionFailedError(tool string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeToolExecutionFailed,
		Message:   "Tool invocation failed",
		Details:   fmt.Sprintf("tool: %s, error: %s", tool, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewToolTimeoutError creates a retryable execution timeout error.
func NewToolTimeoutError(tool string) *StandardError {
	return &StandardError{
		Code:      ErrCodeToolTimeout,
		Message:   "Tool invocation exceeded its deadline",
		Details:   fmt.Sprintf("tool: %s", tool),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewExecutionDisabledError creates a non-retryable dry-run-mode error.
func NewExecutionDisabledError(tool string) *StandardError {
	return &StandardError{
		Code:      ErrCodeExecutionDisabled,
		Message:   "Tool execution is disabled on this server",
		Details:   fmt.Sprintf("tool: %s, the server runs in dry-run mode", tool),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// Utility Functions
// ==========================

// IsRetryable reports whether err is a retryable StandardError.
func IsRetryable(err error) bool {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr.Retryable
	}
	return false
}

// CodeOf extracts the error code from err, or empty when err is not a
// StandardError.
func CodeOf(err error) ErrorCode {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr.Code
	}
	return ""
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "REGISTRY") || strings.Contains(codeStr, "SCHEMA"):
		return "REGISTRY"
	case strings.Contains(codeStr, "STORE") || strings.Contains(codeStr, "DATABASE"):
		return "STORAGE"
	case strings.Contains(codeStr, "TOOL") || strings.Contains(codeStr, "EXECUTION"):
		return "EXECUTION"
	case strings.Contains(codeStr, "ARGUMENTS"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
