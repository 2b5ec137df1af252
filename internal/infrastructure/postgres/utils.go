package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/bodega-api/internal/domain"
)

// Códigos SQLSTATE que el ledger traduce a errores de dominio.
const (
	codeCheckViolation      = "23514"
	codeForeignKeyViolation = "23503"
	codeUniqueViolation     = "23505"
	codeInvalidTextRepr     = "22P02" // p. ej. user_id que no es UUID
	codeRaiseException      = "P0001" // trigger append-only
)

// translateError convierte violaciones de constraints en errores de dominio; el resto pasa intacto.
func translateError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case codeCheckViolation:
		if strings.HasSuffix(pgErr.ConstraintName, "stock_check") {
			return fmt.Errorf("%w (%s)", domain.ErrInsufficientStock, pgErr.ConstraintName)
		}
		return fmt.Errorf("%w (%s)", domain.ErrNegativeQuantity, pgErr.ConstraintName)
	case codeForeignKeyViolation:
		return fmt.Errorf("%w (%s)", domain.ErrUnknownMovementType, pgErr.ConstraintName)
	case codeUniqueViolation:
		return fmt.Errorf("%w (%s)", domain.ErrConflict, pgErr.ConstraintName)
	case codeInvalidTextRepr:
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, pgErr.Message)
	case codeRaiseException:
		return fmt.Errorf("%w: %s", domain.ErrConflict, pgErr.Message)
	}
	return err
}
