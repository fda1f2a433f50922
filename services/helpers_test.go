package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"gorm.io/gorm"

	"github.com/yeremiapane/table-ordering/domain"
	"github.com/yeremiapane/table-ordering/repository"
	"github.com/yeremiapane/table-ordering/testutil"
	"github.com/yeremiapane/table-ordering/utils"
)

type published struct {
	event string
	data  interface{}
	roles []domain.Role
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *recordingPublisher) Publish(event string, data interface{}, roles ...domain.Role) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{event: event, data: data, roles: roles})
}

func (p *recordingPublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.event)
	}
	return out
}

func (p *recordingPublisher) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}

type fixture struct {
	db          *gorm.DB
	pub         *recordingPublisher
	clock       *fakeClock
	menu        *MenuService
	tables      *TableService
	sessions    *SessionService
	orders      *OrderService
	assignments *AssignmentService
	auth        *AuthService
	sweeper     *SessionSweeper
	tokens      *utils.TokenIssuer
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	logger, _ := test.NewNullLogger()
	pub := &recordingPublisher{}
	clock := &fakeClock{now: time.Now().UTC().Truncate(time.Second)}

	menuRepo := repository.NewMenuRepository(db)
	tableRepo := repository.NewTableRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	userRepo := repository.NewUserRepository(db)
	tokens := utils.NewTokenIssuer("test-secret-0123456789abcdef-0123456789", 7*24*time.Hour, "table-ordering")

	f := &fixture{
		db:          db,
		pub:         pub,
		clock:       clock,
		menu:        NewMenuService(menuRepo),
		tables:      NewTableService(tableRepo, pub, logger),
		sessions:    NewSessionService(sessionRepo, tableRepo, orderRepo, pub, logger, 30*time.Minute),
		orders:      NewOrderService(orderRepo, sessionRepo, tableRepo, menuRepo, pub, logger),
		assignments: NewAssignmentService(tableRepo, userRepo, pub, logger),
		auth:        NewAuthService(userRepo, tokens, logger),
		sweeper:     NewSessionSweeper(sessionRepo, tableRepo, logger),
		tokens:      tokens,
	}
	f.tables.now = clock.Now
	f.sessions.now = clock.Now
	f.orders.now = clock.Now
	f.auth.now = clock.Now
	f.sweeper.now = clock.Now
	return f
}

func (f *fixture) openSession(t *testing.T, table int) domain.Session {
	t.Helper()
	s, err := f.sessions.CreateSession(ctx(), CreateSessionInput{TableNumber: table, DeviceID: "device-" + t.Name()})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	return s
}

func (f *fixture) placeOrder(t *testing.T, session domain.Session, lines ...domain.OrderLine) domain.OrderWithItems {
	t.Helper()
	o, err := f.orders.CreateOrder(ctx(), CreateOrderInput{
		SessionID:   &session.ID,
		TableNumber: session.TableNumber,
		Items:       lines,
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	return o
}

func line(menuItemID uint, quantity int) domain.OrderLine {
	return domain.OrderLine{MenuItemID: menuItemID, Quantity: quantity}
}

func ctx() context.Context {
	return context.Background()
}
