package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorsIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("r.db.First -> %w", NotFoundError("Table %d not found", 42))

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrConflict)
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, "Table 42 not found", PublicMessage(err))
}

func TestPublicMessageHidesCause(t *testing.T) {
	cause := errors.New("dial tcp 10.0.0.1:5432: connection refused")

	err := StoreUnavailableError(cause)
	assert.Equal(t, "database unavailable", PublicMessage(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")

	assert.Equal(t, "internal server error", PublicMessage(cause))
	assert.Equal(t, KindUnexpected, KindOf(cause))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "validation", KindValidation.String())
	assert.Equal(t, "store_unavailable", KindStoreUnavailable.String())
	assert.Equal(t, "unexpected", Kind(99).String())
	assert.Equal(t, "conflict", PublicMessage(ErrConflict))
}
