// Package dao is the Postgres data access layer. Every write records an
// audit entry; audit failures are logged and never fail the write.
package dao

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	logger "github.com/aniketsuryawanshi1/recipe-hub-api/logging"
)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func logWarnAudit(action string, err error) {
	logger.Warn("Failed to record audit entry",
		zap.String("action", action),
		zap.Error(err))
}
