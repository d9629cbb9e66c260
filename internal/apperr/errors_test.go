package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(NotFound("property not found")))
	assert.Equal(t, KindConflict, KindOf(fmt.Errorf("failed to list: %w", Conflict("dup"))))
	assert.Equal(t, KindUnexpected, KindOf(errors.New("boom")))
}

func TestFromWrapsUnclassified(t *testing.T) {
	cause := errors.New("connection reset")
	err := From(cause)

	assert.Equal(t, KindUnexpected, err.Kind)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "internal server error", err.Message)
}

func TestIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", Forbidden("only the owner can reply"))

	assert.True(t, errors.Is(err, &Error{Kind: KindForbidden}))
	assert.False(t, errors.Is(err, &Error{Kind: KindNotFound}))
}

func TestFieldError(t *testing.T) {
	err := FieldError("propertyId", "must be a single value")

	assert.Equal(t, KindValidation, err.Kind)
	assert.Equal(t, "must be a single value", err.Fields["propertyId"])
	assert.Equal(t, "VALIDATION_ERROR", err.Kind.String())
}
