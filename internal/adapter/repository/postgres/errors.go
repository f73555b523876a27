package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/iho/creditledger/internal/domain"
)

// PostgreSQL error codes raised when a lock or statement wait is cut short.
const (
	codeLockNotAvailable = "55P03"
	codeQueryCanceled    = "57014"
)

// mapError reports lock and statement timeouts as domain.ErrTimeout and
// leaves every other error untouched.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeLockNotAvailable, codeQueryCanceled:
			return fmt.Errorf("%w: %w", domain.ErrTimeout, err)
		}
	}

	return err
}
