package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidConfig, "attempts must be positive, got %d", 0)

	assert.Equal(t, ErrCodeInvalidConfig, err.Code)
	assert.Equal(t, "attempts must be positive, got 0", err.Message)
	assert.Equal(t, "INVALID_CONFIG: attempts must be positive, got 0", err.Error())
	assert.Nil(t, errors.Unwrap(err))
}

func TestWrap(t *testing.T) {
	cause := errors.New(`exec: "cargo": executable file not found in $PATH`)
	err := Wrap(ErrCodeManagerNotFound, cause, "cargo install --list")

	assert.Equal(t, ErrCodeManagerNotFound, err.Code)
	assert.Same(t, cause, errors.Unwrap(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, `MANAGER_NOT_FOUND: cargo install --list: exec: "cargo": executable file not found in $PATH`, err.Error())
}

func TestIsAndGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code Code
	}{
		{"direct", New(ErrCodeNotFound, "ghost"), ErrCodeNotFound},
		{"fmt wrapped", fmt.Errorf("resolve: %w", New(ErrCodeNetwork, "timeout")), ErrCodeNetwork},
		{"outermost wins", Wrap(ErrCodeInvalidResponse, New(ErrCodeNetwork, "inner"), "outer"), ErrCodeInvalidResponse},
		{"plain error", errors.New("boom"), ""},
		{"nil", nil, ""},
		{"context", context.Canceled, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, GetCode(tt.err))
			if tt.code != "" {
				assert.True(t, Is(tt.err, tt.code))
			}
			assert.False(t, Is(tt.err, ErrCodeInternal))
		})
	}
}

func TestCodeLookup(t *testing.T) {
	for _, c := range []Code{ErrCodeNotFound, ErrCodeNetwork, ErrCodeInvalidResponse} {
		assert.True(t, c.Lookup(), c)
	}
	for _, c := range []Code{ErrCodeInvalidInput, ErrCodeManagerFailed, ErrCodeInvalidOutput, ErrCodeReinstallFailed, ""} {
		assert.False(t, c.Lookup(), c)
	}
}

func TestUserMessage(t *testing.T) {
	require.Equal(t, "crate name cannot be empty", UserMessage(New(ErrCodeInvalidPackage, "crate name cannot be empty")))

	wrapped := Wrap(ErrCodeNetwork, errors.New("connection refused"), "registry request failed")
	assert.Equal(t, "registry request failed: connection refused", UserMessage(wrapped))

	assert.Equal(t, "plain", UserMessage(errors.New("plain")))
	assert.Equal(t, "registry request failed: connection refused", UserMessage(fmt.Errorf("lookup: %w", wrapped)))
}
