// Package testutil builds throwaway databases for tests.
package testutil

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yeremiapane/table-ordering/config"
	"github.com/yeremiapane/table-ordering/database"
)

// NewDB opens a private in-memory sqlite database with the schema migrated and
// the starter data seeded: 18 menu items, tables 1 to 10 and the four staff
// accounts, with odd tables assigned to waiter1 and even tables to waiter2.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := NewEmptyDB(t)

	logger, _ := test.NewNullLogger()
	require.NoError(t, database.Seed(db, logger))
	return db
}

// NewEmptyDB opens a migrated in-memory database without seed data.
func NewEmptyDB(t *testing.T) *gorm.DB {
	t.Helper()
	logger, _ := test.NewNullLogger()

	db, err := database.Open(config.DBConfig{
		Driver:      "sqlite",
		URL:         ":memory:?_foreign_keys=on",
		ConnTimeout: time.Second,
	}, logger)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// Seeded staff ids.
const (
	KitchenID uint = 1
	Waiter1ID uint = 2
	Waiter2ID uint = 3
	AdminID   uint = 4
)
