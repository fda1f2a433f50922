package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/table-ordering/domain"
)

func TestSweepRules(t *testing.T) {
	f := newFixture(t)

	idle := f.openSession(t, 1)
	unpaid := f.openSession(t, 2)
	settled := f.openSession(t, 3)
	recentlyPaid := f.openSession(t, 4)
	noOrders := f.openSession(t, 5)

	f.placeOrder(t, unpaid, line(1, 1))
	f.placeOrder(t, settled, line(2, 1))
	f.placeOrder(t, recentlyPaid, line(3, 1))

	_, err := f.orders.MarkTablePaid(ctx(), 3)
	require.NoError(t, err)

	f.clock.Advance(12 * time.Minute)
	for _, s := range []domain.Session{unpaid, settled, recentlyPaid, noOrders} {
		_, err := f.sessions.Heartbeat(ctx(), s.ID)
		require.NoError(t, err)
	}

	f.clock.Advance(15 * time.Minute)
	_, err = f.orders.MarkTablePaid(ctx(), 4)
	require.NoError(t, err)

	f.clock.Advance(4 * time.Minute)

	res, err := f.sweeper.Sweep(ctx())
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Inactive, "idle for 31 minutes")
	assert.Equal(t, int64(1), res.Paid, "paid 31 minutes ago")

	active := func(id string) bool {
		d, err := f.sessions.GetSessionWithOrders(ctx(), id)
		require.NoError(t, err)
		return d.Session.IsActive
	}
	assert.False(t, active(idle.ID))
	assert.False(t, active(settled.ID))
	assert.True(t, active(unpaid.ID))
	assert.True(t, active(recentlyPaid.ID), "paid 4 minutes ago")
	assert.True(t, active(noOrders.ID))

	for n, want := range map[int]domain.TableStatus{
		1: domain.TableAvailable,
		2: domain.TableOccupied,
		3: domain.TableAvailable,
		5: domain.TableOccupied,
	} {
		table, err := f.tables.GetTable(ctx(), n)
		require.NoError(t, err)
		assert.Equal(t, want, table.Status, "table %d", n)
	}

	res, err = f.sweeper.Sweep(ctx())
	require.NoError(t, err)
	assert.Zero(t, res.Total())
}

func TestSweeperStartStop(t *testing.T) {
	f := newFixture(t)
	f.sweeper.Interval = 10 * time.Millisecond

	idle := f.openSession(t, 8)
	f.clock.Advance(time.Hour)

	f.sweeper.Start()
	require.Eventually(t, func() bool {
		d, err := f.sessions.GetSessionWithOrders(ctx(), idle.ID)
		return err == nil && !d.Session.IsActive
	}, 2*time.Second, 10*time.Millisecond)

	f.sweeper.Stop()
	f.sweeper.Stop()
}
