package postgres

import (
	"database/sql"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/lib/pq"
)

const codeInvalidSQLStatementName = "26000"

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// isUnnamedPreparedStatementMissing detects statements dropped by a transaction-mode pooler.
func isUnnamedPreparedStatementMissing(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == codeInvalidSQLStatementName {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unnamed prepared statement does not exist") ||
		strings.Contains(msg, "("+codeInvalidSQLStatementName+")")
}
