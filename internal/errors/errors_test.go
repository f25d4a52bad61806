package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name:     "without cause",
			err:      NewValidationError("given file doesn't exist"),
			expected: "[VALIDATION] given file doesn't exist",
		},
		{
			name:     "with cause",
			err:      NewParsingError("failed to decode dataset", fmt.Errorf("unexpected EOF")),
			expected: "[PARSING] failed to decode dataset: unexpected EOF",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := NewParsingError("wrapper", cause)

	assert.Equal(t, cause, errors.Unwrap(err))
	assert.True(t, errors.Is(err, cause))
}

func TestIsType(t *testing.T) {
	err := NewRangeError("score 300 exceeds uint8 range")

	assert.True(t, IsType(err, ErrTypeRange))
	assert.False(t, IsType(err, ErrTypeValidation))

	// wrapped errors still match their type
	wrapped := fmt.Errorf("running scoring: %w", err)
	assert.True(t, IsType(wrapped, ErrTypeRange))

	assert.False(t, IsType(errors.New("plain"), ErrTypeRange))
}

func TestNewFieldMissingError(t *testing.T) {
	err := NewFieldMissingError("email")

	assert.Equal(t, ErrTypeFieldMissing, err.Type)
	assert.Contains(t, err.Error(), "email")
	assert.Equal(t, "email", err.Context["field"])
}

func TestWithContext(t *testing.T) {
	err := NewValidationError("bad input").WithContext("path", "/tmp/data.json")

	require.NotNil(t, err.Context)
	assert.Equal(t, "/tmp/data.json", err.Context["path"])
}

func TestFromError(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "validation error",
			err:            NewValidationError("given file doesn't exist"),
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_FAILED",
		},
		{
			name:           "field missing error",
			err:            NewFieldMissingError("age"),
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   "FIELD_MISSING",
		},
		{
			name:           "range error",
			err:            NewRangeError("score out of range"),
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   "VALUE_OUT_OF_RANGE",
		},
		{
			name:           "wrapped app error",
			err:            fmt.Errorf("handler: %w", NewNotFoundError("dataset")),
			expectedStatus: http.StatusNotFound,
			expectedCode:   "NOT_FOUND",
		},
		{
			name:           "unknown error",
			err:            errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   "INTERNAL_SERVER_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := FromError(tt.err)
			assert.Equal(t, tt.expectedStatus, apiErr.StatusCode)
			assert.Equal(t, tt.expectedCode, apiErr.ErrorCode)
		})
	}
}
