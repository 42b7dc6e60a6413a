package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/frahmantamala/expense-reimbursement/internal/claim"
)

// SQLSTATE undefined_table
const undefinedTableCode = "42P01"

// translateError tags missing-table failures with claim.ErrRelationMissing.
// sqlite reports the same condition as "no such table".
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if isUndefinedTable(err) {
		return fmt.Errorf("%w: %v", claim.ErrRelationMissing, err)
	}
	return err
}

func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == undefinedTableCode
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such table")
}
