package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"

	"github.com/yeremiapane/table-ordering/domain"
)

// MySQL server error numbers we translate.
const (
	mysqlDuplicateEntry  = 1062
	mysqlRowIsReferenced = 1451
	mysqlNoReferencedRow = 1452
	mysqlBadNull         = 1048
)

// TranslateError maps driver and gorm errors onto the domain taxonomy so callers
// never see driver codes. Errors already in the taxonomy pass through unchanged.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}

	var domainErr *domain.Error
	if errors.As(err, &domainErr) {
		return err
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NotFoundError("record not found")
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgerrcode.UniqueViolation:
			return &domain.Error{Kind: domain.KindConflict, Message: "resource already exists", Err: err}
		case pgErr.Code == pgerrcode.ForeignKeyViolation, pgErr.Code == pgerrcode.NotNullViolation:
			return &domain.Error{Kind: domain.KindValidation, Message: "invalid reference or missing value", Err: err}
		case pgerrcode.IsConnectionException(pgErr.Code), pgErr.Code == pgerrcode.CannotConnectNow:
			return domain.StoreUnavailableError(err)
		}
		return domain.StoreError(err)
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlDuplicateEntry:
			return &domain.Error{Kind: domain.KindConflict, Message: "resource already exists", Err: err}
		case mysqlRowIsReferenced, mysqlNoReferencedRow, mysqlBadNull:
			return &domain.Error{Kind: domain.KindValidation, Message: "invalid reference or missing value", Err: err}
		}
		return domain.StoreError(err)
	}

	if isUnavailable(err) {
		return domain.StoreUnavailableError(err)
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return &domain.Error{Kind: domain.KindConflict, Message: "resource already exists", Err: err}
		case sqlite3.ErrConstraintForeignKey, sqlite3.ErrConstraintNotNull:
			return &domain.Error{Kind: domain.KindValidation, Message: "invalid reference or missing value", Err: err}
		}
		if liteErr.Code == sqlite3.ErrBusy || liteErr.Code == sqlite3.ErrLocked {
			return domain.StoreUnavailableError(err)
		}
	}

	return domain.StoreError(err)
}

func isUnavailable(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, mysql.ErrInvalidConn) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var connectErr *pgconn.ConnectError
	return errors.As(err, &connectErr)
}
