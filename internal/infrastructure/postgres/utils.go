package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/Inventario-kardex/internal/domain"
)

// Querier lo que los repositorios necesitan de un pool o de una tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Códigos SQLSTATE que el coordinador trata de forma especial.
const (
	codeUniqueViolation      = "23505"
	codeCheckViolation       = "23514"
	codeForeignKeyViolation  = "23503"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	if code := pgCode(err); code != "" {
		return code == codeUniqueViolation
	}
	return err != nil && strings.Contains(err.Error(), codeUniqueViolation)
}

// isRetryable serialización, deadlock o lock_timeout: la tx completa puede reintentarse.
func isRetryable(err error) bool {
	switch pgCode(err) {
	case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
		return true
	}
	return false
}

// mapError traduce violaciones de constraints a errores de dominio; el resto pasa igual.
func mapError(err error) error {
	switch pgCode(err) {
	case codeCheckViolation:
		// current_stock >= 0 es la última barrera contra saldos negativos
		return errors.Join(domain.ErrInsufficientStock, err)
	case codeForeignKeyViolation:
		return errors.Join(domain.ErrReferential, err)
	case codeUniqueViolation:
		return errors.Join(domain.ErrConflict, err)
	}
	return err
}

// nullIfEmpty NULL para columnas uuid opcionales.
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// limitOrAll LIMIT NULL devuelve todas las filas.
func limitOrAll(limit int) *int {
	if limit <= 0 {
		return nil
	}
	return &limit
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
