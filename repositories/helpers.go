package repositories

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

func checkAffectedRows(result sql.Result, notFoundError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFoundError
	}
	return nil
}

// isForeignKeyViolation проверяет нарушение FK по имени constraint.
func isForeignKeyViolation(err error, constraints ...string) bool {
	pqErr, ok := err.(*pq.Error)
	if !ok || pqErr.Code != "23503" {
		return false
	}
	for _, c := range constraints {
		if pqErr.Constraint == c {
			return true
		}
	}
	return false
}
