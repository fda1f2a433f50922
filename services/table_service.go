package services

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/table-ordering/domain"
	"github.com/yeremiapane/table-ordering/realtime"
	"github.com/yeremiapane/table-ordering/repository"
)

type TableService struct {
	tables    *repository.TableRepository
	publisher EventPublisher
	log       logrus.FieldLogger
	now       func() time.Time
}

func NewTableService(tables *repository.TableRepository, publisher EventPublisher, log logrus.FieldLogger) *TableService {
	return &TableService{
		tables:    tables,
		publisher: publisherOrNop(publisher),
		log:       log,
		now:       utcNow,
	}
}

func (s *TableService) ListTables(ctx context.Context) ([]domain.Table, error) {
	return s.tables.List(ctx)
}

func (s *TableService) GetTable(ctx context.Context, number int) (domain.Table, error) {
	return s.tables.GetByNumber(ctx, number)
}

// CallWaiter notifies the staff that a table needs attention.
func (s *TableService) CallWaiter(ctx context.Context, number int, customerName string) (domain.WaiterCall, error) {
	if _, err := s.tables.GetByNumber(ctx, number); err != nil {
		return domain.WaiterCall{}, err
	}

	waiters, err := s.tables.AssignedWaiters(ctx, number)
	if err != nil {
		return domain.WaiterCall{}, err
	}

	name := strings.TrimSpace(customerName)
	if name == "" {
		name = "Guest"
	}

	call := domain.WaiterCall{
		TableNumber:     number,
		CustomerName:    name,
		Timestamp:       s.now().Format(time.RFC3339),
		AssignedWaiters: waiters,
	}
	s.publisher.Publish(realtime.EventWaiterCalled, call, staffRoles...)

	s.log.WithFields(logrus.Fields{
		"table":   number,
		"waiters": len(waiters),
	}).Info("waiter called")
	return call, nil
}
