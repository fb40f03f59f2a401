package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructorsSetCodeAndRetryability(t *testing.T) {
	boom := stderrors.New("boom")

	tests := []struct {
		name      string
		err       *StandardError
		wantCode  ErrorCode
		retryable bool
	}{
		{"registry load", NewRegistryLoadFailedError("/etc/tools.json", boom), ErrCodeRegistryLoadFailed, false},
		{"tool not found", NewToolNotFoundError("run_bmc"), ErrCodeToolNotFound, false},
		{"schema compile", NewSchemaCompileFailedError("run_bmc", boom), ErrCodeSchemaCompileFailed, false},
		{"arguments invalid", NewArgumentsInvalidError("run_bmc", "bound: type mismatch"), ErrCodeArgumentsInvalid, false},
		{"context store", NewContextStoreFailedError(boom), ErrCodeContextStoreFailed, true},
		{"history store", NewHistoryStoreFailedError(boom), ErrCodeHistoryStoreFailed, true},
		{"database connection", NewDatabaseConnectionError(boom), ErrCodeDatabaseConnection, true},
		{"execution failed", NewToolExecutionFailedError("run_bmc", boom), ErrCodeToolExecutionFailed, false},
		{"execution timeout", NewToolTimeoutError("run_bmc"), ErrCodeToolTimeout, true},
		{"execution disabled", NewExecutionDisabledError("run_bmc"), ErrCodeExecutionDisabled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, tt.err.Code)
			assert.Equal(t, tt.retryable, tt.err.Retryable)
			assert.NotEmpty(t, tt.err.Message)
			assert.False(t, tt.err.Timestamp.IsZero())
			assert.Contains(t, tt.err.Error(), string(tt.wantCode))
		})
	}
}

func TestIsRetryableAndCodeOf(t *testing.T) {
	assert.True(t, IsRetryable(NewToolTimeoutError("x")))
	assert.False(t, IsRetryable(NewToolNotFoundError("x")))
	assert.False(t, IsRetryable(stderrors.New("plain")))

	assert.Equal(t, ErrCodeToolTimeout, CodeOf(NewToolTimeoutError("x")))
	assert.Equal(t, ErrorCode(""), CodeOf(stderrors.New("plain")))
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "REGISTRY", GetErrorCategory(ErrCodeRegistryLoadFailed))
	assert.Equal(t, "REGISTRY", GetErrorCategory(ErrCodeSchemaCompileFailed))
	assert.Equal(t, "STORAGE", GetErrorCategory(ErrCodeContextStoreFailed))
	assert.Equal(t, "STORAGE", GetErrorCategory(ErrCodeDatabaseConnection))
	assert.Equal(t, "EXECUTION", GetErrorCategory(ErrCodeToolTimeout))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeArgumentsInvalid))
	assert.Equal(t, "OTHER", GetErrorCategory("SOMETHING_ELSE"))
}
