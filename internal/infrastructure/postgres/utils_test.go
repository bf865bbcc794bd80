package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Inventario-kardex/internal/domain"
)

func TestIsRetryable(t *testing.T) {
	for _, code := range []string{codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable} {
		err := fmt.Errorf("update balance: %w", &pgconn.PgError{Code: code})
		assert.True(t, isRetryable(err), code)
	}
	assert.False(t, isRetryable(&pgconn.PgError{Code: codeUniqueViolation}))
	assert.False(t, isRetryable(errors.New("otro")))
}

func TestMapError(t *testing.T) {
	assert.ErrorIs(t, mapError(&pgconn.PgError{Code: codeCheckViolation}), domain.ErrInsufficientStock)
	assert.ErrorIs(t, mapError(&pgconn.PgError{Code: codeForeignKeyViolation}), domain.ErrReferential)
	assert.ErrorIs(t, mapError(&pgconn.PgError{Code: codeUniqueViolation}), domain.ErrConflict)

	plain := errors.New("conexión cerrada")
	assert.Equal(t, plain, mapError(plain))
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: codeUniqueViolation}))
}

func TestHelpers(t *testing.T) {
	assert.Nil(t, nullIfEmpty(""))
	assert.Equal(t, "x", *nullIfEmpty("x"))
	assert.Nil(t, limitOrAll(0))
	assert.Equal(t, 5, *limitOrAll(5))
	assert.Equal(t, "", deref(nil))
}
