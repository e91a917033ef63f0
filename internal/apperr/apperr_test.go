package apperr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"ms-orders/internal/apperr"
)

func TestKindPredicates(t *testing.T) {
	assert.True(t, apperr.IsValidation(apperr.Validation("quantity", "must be at least 1")))
	assert.True(t, apperr.IsNotFound(apperr.NotFound("order not found")))
	assert.True(t, apperr.IsForbidden(apperr.Forbidden("admins only")))
	assert.True(t, apperr.IsConflict(apperr.Conflict("tracking number exhausted")))

	assert.False(t, apperr.IsNotFound(apperr.Forbidden("admins only")))
	assert.False(t, apperr.IsNotFound(errors.New("plain error")))
	assert.False(t, apperr.IsNotFound(nil))
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("while updating: %w", apperr.NotFound("order not found"))
	assert.True(t, apperr.IsNotFound(err))
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestKindOfDefaultsToStorage(t *testing.T) {
	assert.Equal(t, apperr.KindStorage, apperr.KindOf(errors.New("socket closed")))
}

func TestErrorMessages(t *testing.T) {
	err := apperr.Validation("quantity", "must be at least 1")
	assert.Equal(t, "validation: quantity: must be at least 1", err.Error())

	err = apperr.Storage("failed to load order", errors.New("timeout"))
	assert.Equal(t, "storage: failed to load order: timeout", err.Error())
	assert.EqualError(t, errors.Unwrap(err), "timeout")
}
