package realtime

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/table-ordering/domain"
)

type recordingSink struct {
	mu    sync.Mutex
	name  string
	err   error
	sent  []Message
	roles [][]domain.Role
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Send(_ context.Context, msg Message, roles []domain.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	s.roles = append(s.roles, roles)
	return s.err
}

func TestBroadcasterPublishesToEverySink(t *testing.T) {
	logger, hook := test.NewNullLogger()
	failing := &recordingSink{name: "broken", err: errors.New("connection reset")}
	ok := &recordingSink{name: "ok"}

	b := NewBroadcaster(logger, failing, ok)
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return fixed }

	b.Publish(EventWaiterCalled, map[string]int{"tableNumber": 3}, domain.RoleWaiter, domain.RoleAdmin)

	require.Len(t, ok.sent, 1)
	assert.Equal(t, EventWaiterCalled, ok.sent[0].Event)
	assert.Equal(t, fixed, ok.sent[0].Timestamp)
	assert.Equal(t, []domain.Role{domain.RoleWaiter, domain.RoleAdmin}, ok.roles[0])
	require.Len(t, failing.sent, 1)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "broken", entry.Data["sink"])
	assert.Equal(t, EventWaiterCalled, entry.Data["event"])
}

func TestStatusEvent(t *testing.T) {
	cases := map[domain.OrderStatus]string{
		domain.StatusReady:  EventOrderReady,
		domain.StatusServed: EventOrderServed,
		domain.StatusPaid:   EventOrderPaid,
	}
	for status, want := range cases {
		got, ok := StatusEvent(status)
		assert.True(t, ok, status)
		assert.Equal(t, want, got)
	}

	_, ok := StatusEvent(domain.StatusPreparing)
	assert.False(t, ok)
}
