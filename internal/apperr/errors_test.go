package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationMatching(t *testing.T) {
	err := Validation("price must be a number")
	assert.True(t, IsValidation(err))
	assert.True(t, IsValidation(fmt.Errorf("wrapped: %w", err)))
	assert.False(t, IsValidation(errors.New("price must be a number")))
}

func TestStorageUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := Storage("insert product", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "insert product")
	assert.False(t, IsValidation(err))
	assert.False(t, errors.Is(err, ErrNotFound))
}
