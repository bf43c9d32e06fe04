package database

import (
	"context"
	"database/sql"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/lib/pq"

	apperrors "github.com/civicworks/facilitycare/pkg/errors"
)

// dialect builds postgres SQL; execution goes through runner so the same
// adapters serve both a *sql.DB and a transaction.
var dialect = goqu.Dialect("postgres")

// runner is the subset of database/sql satisfied by *sql.DB and *sql.Tx.
type runner interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

const (
	uniqueViolation     = pq.ErrorCode("23505")
	foreignKeyViolation = pq.ErrorCode("23503")
)

// mapInsertError translates a partial-unique-index violation into the same
// Conflict error class the application-level invariant check raises, so a
// lost check-then-act race surfaces identically to a detected one.
func mapInsertError(err error, conflictMsg, internalMsg string) error {
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
		return apperrors.NewConflictError(conflictMsg)
	}
	return apperrors.NewInternalError(internalMsg, err)
}

// mapDeleteError translates a foreign-key violation into a domain rule error:
// the row exists but other records still reference it, which is a rule of the
// domain rather than a bad request.
func mapDeleteError(err error, ruleMsg, internalMsg string) error {
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == foreignKeyViolation {
		return apperrors.NewDomainRuleError(ruleMsg)
	}
	return apperrors.NewInternalError(internalMsg, err)
}
