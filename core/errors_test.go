package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainError(t *testing.T) {
	cause := errors.New("connection refused")
	err := WrapDomainError(ModuleStore, ErrorCodeUnavailable, cause, "store: ping %s", "localhost:6379")

	assert.Equal(t, "store: ping localhost:6379: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsUnavailable(err))
	assert.False(t, IsNotFound(err))

	wrapped := fmt.Errorf("load index: %w", err)
	de := GetDomainError(wrapped)
	require.NotNil(t, de)
	assert.Equal(t, ModuleStore, de.Module)
	assert.True(t, IsDomainError(wrapped))
	assert.False(t, IsDomainError(cause))
}

func TestDomainError_IsMatchesModuleAndCode(t *testing.T) {
	err := fmt.Errorf("get: %w", NewDomainError(ModuleStore, ErrorCodeNotFound, "store: key not found"))

	assert.ErrorIs(t, err, ErrStoreNotFound)
	assert.True(t, IsStoreNotFound(err))
	assert.NotErrorIs(t, err, NewDomainError(ModuleQuery, ErrorCodeNotFound, ""))
}

func TestErrorCodeHelpers(t *testing.T) {
	tests := []struct {
		code  string
		check func(error) bool
	}{
		{ErrorCodeNotFound, IsNotFound},
		{ErrorCodeNotSupported, IsNotSupported},
		{ErrorCodeUnavailable, IsUnavailable},
		{ErrorCodeInvalidInput, IsInvalidInput},
		{ErrorCodeCanceled, IsCanceled},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.True(t, tt.check(NewDomainError(ModuleEngine, tt.code, "x")))
			assert.False(t, tt.check(NewDomainError(ModuleEngine, ErrorCodeInternalError, "x")))
			assert.False(t, tt.check(errors.New("plain")))
		})
	}
}
