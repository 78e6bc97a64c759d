package httperr

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestBusinessError(t *testing.T) {
	err := ErrBusiness("slot_conflict")

	assert.True(t, IsBusiness(err, "slot_conflict"))
	assert.False(t, IsBusiness(err, "other_code"))

	code, ok := CodeOf(err)
	assert.True(t, ok)
	assert.Equal(t, "slot_conflict", code)
}

func TestBusinessError_SurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("booking: %w", ErrBusiness("too_soon"))

	assert.True(t, IsBusiness(err, "too_soon"))

	code, ok := CodeOf(err)
	assert.True(t, ok)
	assert.Equal(t, "too_soon", code)
}

func TestCodeOf_PlainError(t *testing.T) {
	_, ok := CodeOf(assert.AnError)
	assert.False(t, ok)
	assert.False(t, IsBusiness(assert.AnError, "anything"))
	assert.False(t, IsBusiness(nil, "anything"))
}

func TestPgHelpers(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505"}
	exclusion := &pgconn.PgError{Code: "23P01"}

	assert.True(t, IsUniqueViolation(unique))
	assert.False(t, IsUniqueViolation(exclusion))
	assert.True(t, IsExclusionConflict(exclusion))
	assert.False(t, IsExclusionConflict(unique))

	wrapped := fmt.Errorf("insert: %w", exclusion)
	assert.True(t, IsExclusionConflict(wrapped))

	assert.False(t, IsUniqueViolation(nil))
	assert.False(t, IsUniqueViolation(assert.AnError))
}
