package services

import (
	"context"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/table-ordering/domain"
	"github.com/yeremiapane/table-ordering/realtime"
	"github.com/yeremiapane/table-ordering/repository"
)

type CreateSessionInput struct {
	TableNumber  int     `json:"tableNumber"`
	DeviceID     string  `json:"deviceId"`
	CustomerID   *uint   `json:"customerId"`
	CustomerName *string `json:"customerName"`
	// Caller is the authenticated user, if any.
	Caller *domain.Identity `json:"-"`
}

func (in CreateSessionInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.TableNumber, validation.Required.Error("is required"), validation.Min(1)),
		validation.Field(&in.DeviceID, validation.Required.Error("is required"), validation.Length(1, 255)),
	)
}

type SessionService struct {
	sessions          *repository.SessionRepository
	tables            *repository.TableRepository
	orders            *repository.OrderRepository
	publisher         EventPublisher
	log               logrus.FieldLogger
	now               func() time.Time
	inactivityTimeout time.Duration
}

func NewSessionService(
	sessions *repository.SessionRepository,
	tables *repository.TableRepository,
	orders *repository.OrderRepository,
	publisher EventPublisher,
	log logrus.FieldLogger,
	inactivityTimeout time.Duration,
) *SessionService {
	return &SessionService{
		sessions:          sessions,
		tables:            tables,
		orders:            orders,
		publisher:         publisherOrNop(publisher),
		log:               log,
		now:               utcNow,
		inactivityTimeout: inactivityTimeout,
	}
}

// CreateSession opens a new session at a table. Every call creates a new
// session, even for a device that already has one.
func (s *SessionService) CreateSession(ctx context.Context, in CreateSessionInput) (domain.Session, error) {
	in.DeviceID = strings.TrimSpace(in.DeviceID)
	if err := in.Validate(); err != nil {
		return domain.Session{}, validationErr(err)
	}

	if _, err := s.tables.GetByNumber(ctx, in.TableNumber); err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			return domain.Session{}, domain.ValidationError("Table %d does not exist", in.TableNumber)
		}
		return domain.Session{}, err
	}

	if in.Caller != nil && in.Caller.Role == domain.RoleCustomer {
		if in.CustomerID == nil {
			id := in.Caller.UserID
			in.CustomerID = &id
		}
		if in.CustomerName == nil {
			name := in.Caller.DisplayName()
			in.CustomerName = &name
		}
	}

	now := s.now()
	session, err := s.sessions.Create(ctx, domain.Session{
		TableNumber:  in.TableNumber,
		DeviceID:     in.DeviceID,
		CustomerID:   in.CustomerID,
		CustomerName: in.CustomerName,
		CreatedAt:    now,
		LastActivity: now,
	})
	if err != nil {
		return domain.Session{}, err
	}

	if err := s.tables.SetStatus(ctx, in.TableNumber, domain.TableOccupied); err != nil {
		s.log.WithError(err).WithField("table", in.TableNumber).Warn("failed to mark table occupied")
	}

	s.publisher.Publish(realtime.EventSessionCreated, session, staffRoles...)
	s.log.WithFields(logrus.Fields{
		"session": session.ID,
		"table":   session.TableNumber,
	}).Info("session created")
	return session, nil
}

// Heartbeat records activity on the session and returns the stored timestamp.
func (s *SessionService) Heartbeat(ctx context.Context, id string) (time.Time, error) {
	return s.sessions.Touch(ctx, id, s.now())
}

// EndSession deactivates the session. Ending it twice is fine.
func (s *SessionService) EndSession(ctx context.Context, id string) error {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return err
	}
	if !session.IsActive {
		return nil
	}

	session, err = s.sessions.Deactivate(ctx, id)
	if err != nil {
		return err
	}
	s.releaseTables(ctx)

	s.publisher.Publish(realtime.EventSessionEnded, session, staffRoles...)
	s.log.WithField("session", id).Info("session ended")
	return nil
}

func (s *SessionService) GetSessionWithOrders(ctx context.Context, id string) (domain.SessionDetail, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return domain.SessionDetail{}, err
	}

	orders, err := s.orders.ListBySession(ctx, id)
	if err != nil {
		return domain.SessionDetail{}, err
	}

	total := decimal.Zero
	for _, o := range orders {
		total = total.Add(o.TotalPrice)
	}
	return domain.SessionDetail{
		Session:     session,
		Orders:      orders,
		OrderCount:  len(orders),
		TotalAmount: total,
	}, nil
}

func (s *SessionService) GetOrdersForSession(ctx context.Context, id string) ([]domain.OrderWithItems, error) {
	if _, err := s.sessions.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.orders.ListBySession(ctx, id)
}

// ListActiveForTable returns the open sessions at a table, newest first, with
// their order totals.
func (s *SessionService) ListActiveForTable(ctx context.Context, number int) ([]domain.SessionSummary, error) {
	if _, err := s.tables.GetByNumber(ctx, number); err != nil {
		return nil, err
	}

	sessions, err := s.sessions.ListActiveForTable(ctx, number)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(sessions))
	for _, sess := range sessions {
		ids = append(ids, sess.ID)
	}
	totals, err := s.orders.SessionTotals(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]domain.SessionSummary, 0, len(sessions))
	for _, sess := range sessions {
		sum := totals[sess.ID]
		sum.Session = sess
		out = append(out, sum)
	}
	return out, nil
}

// CleanupInactive deactivates sessions idle for longer than the inactivity
// timeout.
func (s *SessionService) CleanupInactive(ctx context.Context) (int64, error) {
	n, err := s.sessions.DeactivateIdle(ctx, s.now().Add(-s.inactivityTimeout))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.releaseTables(ctx)
		s.log.WithField("sessions", n).Info("inactive sessions cleaned up")
	}
	return n, nil
}

func (s *SessionService) releaseTables(ctx context.Context) {
	if _, err := s.tables.ReleaseIdle(ctx); err != nil {
		s.log.WithError(err).Warn("failed to release idle tables")
	}
}
