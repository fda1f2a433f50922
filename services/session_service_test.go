package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/table-ordering/domain"
	"github.com/yeremiapane/table-ordering/realtime"
)

func TestCreateSession(t *testing.T) {
	f := newFixture(t)

	s, err := f.sessions.CreateSession(ctx(), CreateSessionInput{TableNumber: 5, DeviceID: "  ipad-1 "})
	require.NoError(t, err)
	assert.Len(t, s.ID, 36)
	assert.Equal(t, 5, s.TableNumber)
	assert.Equal(t, "ipad-1", s.DeviceID)
	assert.True(t, s.IsActive)
	assert.Equal(t, f.clock.Now(), s.LastActivity)

	again, err := f.sessions.CreateSession(ctx(), CreateSessionInput{TableNumber: 5, DeviceID: "ipad-1"})
	require.NoError(t, err)
	assert.NotEqual(t, s.ID, again.ID, "sessions are never deduplicated")

	assert.Equal(t, []string{realtime.EventSessionCreated, realtime.EventSessionCreated}, f.pub.names())
}

func TestCreateSessionValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.sessions.CreateSession(ctx(), CreateSessionInput{DeviceID: "x"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.sessions.CreateSession(ctx(), CreateSessionInput{TableNumber: 1, DeviceID: "   "})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.sessions.CreateSession(ctx(), CreateSessionInput{TableNumber: 42, DeviceID: "x"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCreateSessionDefaultsToCallingCustomer(t *testing.T) {
	f := newFixture(t)
	caller := &domain.Identity{UserID: 12, Role: domain.RoleCustomer, Email: "ana@example.com"}

	s, err := f.sessions.CreateSession(ctx(), CreateSessionInput{TableNumber: 2, DeviceID: "phone", Caller: caller})
	require.NoError(t, err)
	require.NotNil(t, s.CustomerID)
	assert.Equal(t, uint(12), *s.CustomerID)
	require.NotNil(t, s.CustomerName)
	assert.Equal(t, "ana@example.com", *s.CustomerName)

	name := "Table guest"
	staff := &domain.Identity{UserID: 2, Role: domain.RoleWaiter, Username: "waiter1"}
	s, err = f.sessions.CreateSession(ctx(), CreateSessionInput{TableNumber: 2, DeviceID: "tablet", CustomerName: &name, Caller: staff})
	require.NoError(t, err)
	assert.Nil(t, s.CustomerID)
	assert.Equal(t, "Table guest", *s.CustomerName)
}

func TestHeartbeat(t *testing.T) {
	f := newFixture(t)
	s := f.openSession(t, 3)

	_, err := f.sessions.Heartbeat(ctx(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	f.clock.Advance(5 * time.Minute)
	at, err := f.sessions.Heartbeat(ctx(), s.ID)
	require.NoError(t, err)
	assert.True(t, at.Equal(f.clock.Now()))

	f.clock.Advance(-2 * time.Minute)
	back, err := f.sessions.Heartbeat(ctx(), s.ID)
	require.NoError(t, err)
	assert.True(t, back.Equal(at), "last activity never moves backwards")

	detail, err := f.sessions.GetSessionWithOrders(ctx(), s.ID)
	require.NoError(t, err)
	assert.True(t, detail.Session.LastActivity.Equal(at))
}

func TestEndSessionIsIdempotentAndReleasesTable(t *testing.T) {
	f := newFixture(t)
	s := f.openSession(t, 10)

	table, err := f.tables.GetTable(ctx(), 10)
	require.NoError(t, err)
	assert.Equal(t, domain.TableOccupied, table.Status)

	require.NoError(t, f.sessions.EndSession(ctx(), s.ID))
	require.NoError(t, f.sessions.EndSession(ctx(), s.ID))
	assert.Equal(t, 1, countEvents(f.pub.names(), realtime.EventSessionEnded))

	detail, err := f.sessions.GetSessionWithOrders(ctx(), s.ID)
	require.NoError(t, err)
	assert.False(t, detail.Session.IsActive)

	table, err = f.tables.GetTable(ctx(), 10)
	require.NoError(t, err)
	assert.Equal(t, domain.TableAvailable, table.Status)

	assert.ErrorIs(t, f.sessions.EndSession(ctx(), "missing"), domain.ErrNotFound)
}

func TestEndSessionKeepsTableWithUnpaidOrders(t *testing.T) {
	f := newFixture(t)
	s := f.openSession(t, 4)
	f.placeOrder(t, s, line(1, 1))

	require.NoError(t, f.sessions.EndSession(ctx(), s.ID))

	table, err := f.tables.GetTable(ctx(), 4)
	require.NoError(t, err)
	assert.Equal(t, domain.TableOccupied, table.Status)
}

func TestGetSessionWithOrders(t *testing.T) {
	f := newFixture(t)
	s := f.openSession(t, 5)
	f.placeOrder(t, s, line(1, 2), line(2, 1))
	f.placeOrder(t, s, line(11, 1))

	detail, err := f.sessions.GetSessionWithOrders(ctx(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, detail.OrderCount)
	assert.Equal(t, "38.96", detail.TotalAmount.StringFixed(2))
	require.Len(t, detail.Orders, 2)
	assert.Equal(t, 1, detail.Orders[0].OrderNumber)
	assert.Equal(t, 2, detail.Orders[1].OrderNumber)

	orders, err := f.sessions.GetOrdersForSession(ctx(), s.ID)
	require.NoError(t, err)
	assert.Len(t, orders, 2)

	_, err = f.sessions.GetSessionWithOrders(ctx(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.sessions.GetOrdersForSession(ctx(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListActiveForTable(t *testing.T) {
	f := newFixture(t)
	first := f.openSession(t, 6)
	f.clock.Advance(time.Second)
	second := f.openSession(t, 6)
	ended := f.openSession(t, 6)
	f.placeOrder(t, first, line(14, 3))
	require.NoError(t, f.sessions.EndSession(ctx(), ended.ID))

	summaries, err := f.sessions.ListActiveForTable(ctx(), 6)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, second.ID, summaries[0].ID)
	assert.Equal(t, 0, summaries[0].OrderCount)
	assert.True(t, summaries[0].TotalAmount.IsZero())
	assert.Equal(t, first.ID, summaries[1].ID)
	assert.Equal(t, 1, summaries[1].OrderCount)
	assert.Equal(t, "8.97", summaries[1].TotalAmount.StringFixed(2))

	_, err = f.sessions.ListActiveForTable(ctx(), 50)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCleanupInactive(t *testing.T) {
	f := newFixture(t)
	stale := f.openSession(t, 1)
	f.clock.Advance(20 * time.Minute)
	fresh := f.openSession(t, 2)
	f.clock.Advance(11 * time.Minute)

	n, err := f.sessions.CleanupInactive(ctx())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	s, err := f.sessions.GetSessionWithOrders(ctx(), stale.ID)
	require.NoError(t, err)
	assert.False(t, s.Session.IsActive)
	s, err = f.sessions.GetSessionWithOrders(ctx(), fresh.ID)
	require.NoError(t, err)
	assert.True(t, s.Session.IsActive)
}
