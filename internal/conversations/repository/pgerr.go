package repository

import (
	"context"
	"errors"
	"fmt"

	"leasing_portal_backend/platform/apperr"

	"github.com/jackc/pgx/v5/pgconn"
)

// translate maps storage failures onto the domain error taxonomy.
// Serialization failures, deadlocks and statement timeouts become
// transient errors so callers know the whole operation is retryable.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.Transient("statement timed out", err).WithOp(op)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "55P03", "57014":
			return apperr.Transient("storage contention, retry the operation", err).WithOp(op)
		case "23505":
			return apperr.Conflict("duplicate row").WithOp(op)
		case "23503":
			return apperr.Validation("referenced row does not exist").WithOp(op)
		case "23514":
			return apperr.InvalidRange(pgErr.ConstraintName).WithOp(op)
		}
	}

	return apperr.Wrap(apperr.KindInternal, fmt.Sprintf("storage operation failed: %v", err), err).WithOp(op)
}
