package database_test

import (
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/table-ordering/database"
	"github.com/yeremiapane/table-ordering/models"
	"github.com/yeremiapane/table-ordering/testutil"
)

func TestSeedIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)
	logger, hook := test.NewNullLogger()

	require.NoError(t, database.Seed(db, logger))
	assert.Empty(t, hook.AllEntries())

	var items, tables, users int64
	db.Model(&models.MenuItem{}).Count(&items)
	db.Model(&models.Table{}).Count(&tables)
	db.Model(&models.User{}).Count(&users)
	assert.EqualValues(t, 18, items)
	assert.EqualValues(t, 10, tables)
	assert.EqualValues(t, 4, users)
}

func TestSeedAssignsTablesRoundRobin(t *testing.T) {
	db := testutil.NewEmptyDB(t)
	logger, hook := test.NewNullLogger()

	require.NoError(t, database.Seed(db, logger))
	assert.NotEmpty(t, hook.AllEntries())

	var rows []models.Table
	require.NoError(t, db.Order("table_number").Find(&rows).Error)
	for _, row := range rows {
		require.NotNil(t, row.WaiterID, "table %d", row.TableNumber)
		if row.TableNumber%2 == 1 {
			assert.Equal(t, testutil.Waiter1ID, *row.WaiterID)
		} else {
			assert.Equal(t, testutil.Waiter2ID, *row.WaiterID)
		}
	}

	n, err := database.AssignTablesRoundRobin(db)
	require.NoError(t, err)
	assert.Zero(t, n)
}
