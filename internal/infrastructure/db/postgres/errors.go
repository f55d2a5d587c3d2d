package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pawtrail/dogwalk-service/internal/core/domain"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return pgCode(err) == codeUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	return pgCode(err) == codeForeignKeyViolation
}

// storeError converts driver errors into domain errors. Timeouts and lost
// connections become domain.ErrUnavailable; constraint failures that reach
// this point become domain.ErrValidation; anything else is wrapped with op.
func storeError(op string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return domain.Unavailable("datastore timed out", fmt.Errorf("%s: %w", op, err))
	}

	var connErr *pgconn.ConnectError
	var netErr net.Error
	if errors.As(err, &connErr) || errors.As(err, &netErr) ||
		errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return domain.Unavailable("datastore unreachable", fmt.Errorf("%s: %w", op, err))
	}

	switch pgCode(err) {
	case codeUniqueViolation:
		return domain.Validation("value already exists")
	case codeForeignKeyViolation:
		return domain.Validation("referenced record does not exist")
	case codeCheckViolation:
		return domain.Validation("value out of range")
	}

	return fmt.Errorf("%s: %w", op, err)
}
