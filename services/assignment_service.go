package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/table-ordering/domain"
	"github.com/yeremiapane/table-ordering/realtime"
	"github.com/yeremiapane/table-ordering/repository"
)

type AssignmentService struct {
	tables    *repository.TableRepository
	users     *repository.UserRepository
	publisher EventPublisher
	log       logrus.FieldLogger
}

func NewAssignmentService(tables *repository.TableRepository, users *repository.UserRepository, publisher EventPublisher, log logrus.FieldLogger) *AssignmentService {
	return &AssignmentService{
		tables:    tables,
		users:     users,
		publisher: publisherOrNop(publisher),
		log:       log,
	}
}

func (s *AssignmentService) ListAssignments(ctx context.Context) ([]domain.TableAssignment, error) {
	return s.tables.ListAssignments(ctx)
}

func (s *AssignmentService) GetTablesForWaiter(ctx context.Context, waiterID uint) ([]domain.TableAssignment, error) {
	return s.tables.ListForWaiter(ctx, waiterID)
}

func (s *AssignmentService) ListWaiters(ctx context.Context) ([]domain.User, error) {
	role := domain.RoleWaiter
	return s.users.List(ctx, &role)
}

// Assign gives the table to waiterID, replacing any previous waiter.
func (s *AssignmentService) Assign(ctx context.Context, tableID, waiterID uint) (domain.TableAssignment, error) {
	waiter, err := s.users.GetByID(ctx, waiterID)
	if err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			return domain.TableAssignment{}, domain.NotFoundError("Waiter not found")
		}
		return domain.TableAssignment{}, err
	}
	if waiter.Role != domain.RoleWaiter {
		return domain.TableAssignment{}, domain.ValidationError("User is not a waiter")
	}

	if _, err := s.tables.GetByID(ctx, tableID); err != nil {
		return domain.TableAssignment{}, err
	}

	assignment, err := s.tables.SetWaiter(ctx, tableID, &waiterID)
	if err != nil {
		return domain.TableAssignment{}, err
	}

	s.publisher.Publish(realtime.EventTableAssigned, assignment, staffRoles...)
	s.log.WithFields(logrus.Fields{
		"table":  assignment.TableNumber,
		"waiter": waiterID,
	}).Info("table assigned")
	return assignment, nil
}

// Unassign clears the table's waiter.
func (s *AssignmentService) Unassign(ctx context.Context, tableID uint) (domain.TableAssignment, error) {
	table, err := s.tables.GetByID(ctx, tableID)
	if err != nil {
		return domain.TableAssignment{}, err
	}
	if table.WaiterID == nil {
		return domain.TableAssignment{Table: table}, nil
	}

	assignment, err := s.tables.SetWaiter(ctx, tableID, nil)
	if err != nil {
		return domain.TableAssignment{}, err
	}

	s.publisher.Publish(realtime.EventTableAssigned, assignment, staffRoles...)
	s.log.WithField("table", assignment.TableNumber).Info("table unassigned")
	return assignment, nil
}
