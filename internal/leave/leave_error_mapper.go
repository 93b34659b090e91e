package leave

import (
	"errors"
	"strings"

	leaveerrors "github.com/Ali-shok/employee-management/internal/leave/errors"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgForeignKeyViolation    = "23503"
	mysqlForeignKeyViolation = 1452
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return leaveerrors.ErrEmployeeNotFound
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlForeignKeyViolation {
		return leaveerrors.ErrEmployeeNotFound
	}

	// sqlite and wrapped driver errors only carry the message
	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "foreign key constraint") {
		return leaveerrors.ErrEmployeeNotFound
	}

	return err
}
