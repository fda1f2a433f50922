package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/yeremiapane/table-ordering/domain"
)

func TestTranslateError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want domain.Kind
	}{
		{"record not found", gorm.ErrRecordNotFound, domain.KindNotFound},
		{"pg unique", &pgconn.PgError{Code: pgerrcode.UniqueViolation}, domain.KindConflict},
		{"pg foreign key", &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}, domain.KindValidation},
		{"pg connection", &pgconn.PgError{Code: pgerrcode.ConnectionFailure}, domain.KindStoreUnavailable},
		{"pg other", &pgconn.PgError{Code: pgerrcode.DivisionByZero}, domain.KindStore},
		{"mysql duplicate", &mysql.MySQLError{Number: 1062}, domain.KindConflict},
		{"mysql no parent", &mysql.MySQLError{Number: 1452}, domain.KindValidation},
		{"mysql other", &mysql.MySQLError{Number: 1205}, domain.KindStore},
		{"bad conn", fmt.Errorf("query: %w", driver.ErrBadConn), domain.KindStoreUnavailable},
		{"deadline", context.DeadlineExceeded, domain.KindStoreUnavailable},
		{"unknown", errors.New("boom"), domain.KindStore},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := TranslateError(tc.err)
			assert.Equal(t, tc.want, domain.KindOf(got))
		})
	}
}

func TestTranslateErrorKeepsDomainErrors(t *testing.T) {
	err := domain.ConflictError("Session has ended")
	assert.Same(t, err, TranslateError(err))
	assert.NoError(t, TranslateError(nil))
}
