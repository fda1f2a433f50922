package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/table-ordering/domain"
)

func newHubServer(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	hub := NewHub(logger, []string{"*"})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role := domain.Role(r.URL.Query().Get("role"))
		if err := hub.ServeWS(w, r, role, 0); err != nil {
			t.Logf("upgrade failed: %v", err)
		}
	}))
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, role domain.Role) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?role=" + string(role)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		total := 0
		for _, c := range hub.Stats() {
			total += c
		}
		return total == n
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHubDeliversByRole(t *testing.T) {
	hub, srv := newHubServer(t)
	kitchen := dial(t, srv, domain.RoleKitchen)
	customer := dial(t, srv, domain.RoleCustomer)
	waitForClients(t, hub, 2)

	assert.Equal(t, 1, hub.Stats()[domain.RoleKitchen])
	assert.Equal(t, 1, hub.Stats()[domain.RoleCustomer])

	err := hub.Send(context.Background(), Message{Event: EventWaiterCalled, Data: map[string]int{"tableNumber": 2}}, []domain.Role{domain.RoleKitchen})
	require.NoError(t, err)
	err = hub.Send(context.Background(), Message{Event: EventOrderCreated, Data: map[string]int{"id": 7}}, nil)
	require.NoError(t, err)

	read := func(conn *websocket.Conn) Message {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, raw, err := conn.ReadMessage()
		require.NoError(t, err)
		var msg Message
		require.NoError(t, json.Unmarshal(raw, &msg))
		return msg
	}

	assert.Equal(t, EventWaiterCalled, read(kitchen).Event)
	assert.Equal(t, EventOrderCreated, read(kitchen).Event)
	// The staff-only event was never queued for the customer.
	assert.Equal(t, EventOrderCreated, read(customer).Event)
}

func TestHubUnregistersOnDisconnect(t *testing.T) {
	hub, srv := newHubServer(t)
	conn := dial(t, srv, domain.RoleWaiter)
	waitForClients(t, hub, 1)

	require.NoError(t, conn.Close())
	waitForClients(t, hub, 0)
}

func TestHubCloseRejectsNewClients(t *testing.T) {
	hub, srv := newHubServer(t)
	require.NoError(t, hub.Close())

	conn := dial(t, srv, domain.RoleAdmin)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
	assert.Empty(t, hub.Stats())
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://restaurant.example"})

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	assert.True(t, check(req), "requests without Origin are allowed")

	req.Header.Set("Origin", "https://restaurant.example")
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://evil.example")
	assert.False(t, check(req))
}
