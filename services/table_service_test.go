package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/table-ordering/domain"
	"github.com/yeremiapane/table-ordering/realtime"
)

func TestListTablesAndMenu(t *testing.T) {
	f := newFixture(t)

	tables, err := f.tables.ListTables(ctx())
	require.NoError(t, err)
	require.Len(t, tables, 10)
	assert.Equal(t, 1, tables[0].TableNumber)
	assert.Equal(t, 6, tables[9].Capacity)

	_, err = f.tables.GetTable(ctx(), 11)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	menu, err := f.menu.ListMenu(ctx(), "")
	require.NoError(t, err)
	assert.Len(t, menu, 18)
	assert.Equal(t, "Bruschetta", menu[0].Name)

	desserts, err := f.menu.ListMenu(ctx(), "Desserts")
	require.NoError(t, err)
	assert.Len(t, desserts, 3)

	categories, err := f.menu.ListCategories(ctx())
	require.NoError(t, err)
	assert.Equal(t, []string{"Appetizers", "Main Courses", "Desserts", "Beverages"}, categories)

	item, err := f.menu.GetMenuItem(ctx(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Calamari", item.Name)
	assert.Equal(t, "12.99", item.Price.StringFixed(2))

	_, err = f.menu.GetMenuItem(ctx(), 500)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCallWaiter(t *testing.T) {
	f := newFixture(t)

	call, err := f.tables.CallWaiter(ctx(), 3, "")
	require.NoError(t, err)
	assert.Equal(t, 3, call.TableNumber)
	assert.Equal(t, "Guest", call.CustomerName)
	require.Len(t, call.AssignedWaiters, 1)
	assert.Equal(t, "waiter1", *call.AssignedWaiters[0].Username)

	require.Len(t, f.pub.events, 1)
	ev := f.pub.events[0]
	assert.Equal(t, realtime.EventWaiterCalled, ev.event)
	assert.NotContains(t, ev.roles, domain.RoleCustomer)
	assert.Contains(t, ev.roles, domain.RoleWaiter)

	_, err = f.tables.CallWaiter(ctx(), 99, "Bob")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
