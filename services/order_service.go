package services

import (
	"context"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/table-ordering/domain"
	"github.com/yeremiapane/table-ordering/realtime"
	"github.com/yeremiapane/table-ordering/repository"
)

type CreateOrderInput struct {
	SessionID   *string            `json:"sessionId"`
	TableNumber int                `json:"tableNumber"`
	Items       []domain.OrderLine `json:"items"`
}

func (in CreateOrderInput) Validate() error {
	err := validation.ValidateStruct(&in,
		validation.Field(&in.TableNumber, validation.Required.Error("is required"), validation.Min(1)),
		validation.Field(&in.Items, validation.Required.Error("must contain at least one item")),
	)
	if err != nil {
		return err
	}

	for i := range in.Items {
		line := in.Items[i]
		err := validation.ValidateStruct(&line,
			validation.Field(&line.MenuItemID, validation.Required.Error("is required")),
			validation.Field(&line.Quantity, validation.Required.Error("must be at least 1"), validation.Min(1).Error("must be at least 1")),
		)
		if err != nil {
			return fmt.Errorf("items[%d]: %w", i, err)
		}
	}
	return nil
}

type OrderService struct {
	orders    *repository.OrderRepository
	sessions  *repository.SessionRepository
	tables    *repository.TableRepository
	menu      *repository.MenuRepository
	publisher EventPublisher
	log       logrus.FieldLogger
	now       func() time.Time
}

func NewOrderService(
	orders *repository.OrderRepository,
	sessions *repository.SessionRepository,
	tables *repository.TableRepository,
	menu *repository.MenuRepository,
	publisher EventPublisher,
	log logrus.FieldLogger,
) *OrderService {
	return &OrderService{
		orders:    orders,
		sessions:  sessions,
		tables:    tables,
		menu:      menu,
		publisher: publisherOrNop(publisher),
		log:       log,
		now:       utcNow,
	}
}

// CreateOrder prices the lines from the current menu and stores the order with
// the next order number of its session.
func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (domain.OrderWithItems, error) {
	if err := in.Validate(); err != nil {
		return domain.OrderWithItems{}, validationErr(err)
	}

	if _, err := s.tables.GetByNumber(ctx, in.TableNumber); err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			return domain.OrderWithItems{}, domain.ValidationError("Table %d does not exist", in.TableNumber)
		}
		return domain.OrderWithItems{}, err
	}

	if in.SessionID != nil {
		session, err := s.sessions.Get(ctx, *in.SessionID)
		if err != nil {
			if domain.KindOf(err) == domain.KindNotFound {
				return domain.OrderWithItems{}, domain.ValidationError("Session %s does not exist", *in.SessionID)
			}
			return domain.OrderWithItems{}, err
		}
		if session.TableNumber != in.TableNumber {
			return domain.OrderWithItems{}, domain.ValidationError("Session belongs to table %d", session.TableNumber)
		}
		if !session.IsActive {
			return domain.OrderWithItems{}, domain.ConflictError("Session has ended")
		}
	}

	ids := make([]uint, 0, len(in.Items))
	for _, line := range in.Items {
		ids = append(ids, line.MenuItemID)
	}
	menu, err := s.menu.FindByIDs(ctx, ids)
	if err != nil {
		return domain.OrderWithItems{}, err
	}

	total := decimal.Zero
	items := make([]repository.NewOrderItem, 0, len(in.Items))
	for _, line := range in.Items {
		item, ok := menu[line.MenuItemID]
		if !ok {
			return domain.OrderWithItems{}, domain.ValidationError("Menu item %d not found", line.MenuItemID)
		}
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		items = append(items, repository.NewOrderItem{
			MenuItemID: line.MenuItemID,
			Quantity:   line.Quantity,
			UnitPrice:  item.Price,
		})
	}

	order, err := s.orders.Create(ctx, repository.NewOrder{
		SessionID:   in.SessionID,
		TableNumber: in.TableNumber,
		TotalPrice:  total,
		Items:       items,
		CreatedAt:   s.now(),
	})
	if err != nil {
		return domain.OrderWithItems{}, err
	}

	if err := s.tables.SetStatus(ctx, in.TableNumber, domain.TableOccupied); err != nil {
		s.log.WithError(err).WithField("table", in.TableNumber).Warn("failed to mark table occupied")
	}

	s.publisher.Publish(realtime.EventOrderCreated, order)
	s.log.WithFields(logrus.Fields{
		"order":  order.ID,
		"number": order.OrderNumber,
		"table":  order.TableNumber,
		"total":  order.TotalPrice.StringFixed(2),
	}).Info("order created")
	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id uint) (domain.OrderWithItems, error) {
	return s.orders.Get(ctx, id)
}

// ListOrders returns orders newest first. Waiters see only their own tables.
func (s *OrderService) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.OrderWithItems, error) {
	if filter.Status != nil {
		if _, err := domain.ParseOrderStatus(string(*filter.Status)); err != nil {
			return nil, err
		}
	}
	return s.orders.List(ctx, filter)
}

func (s *OrderService) GetOrdersForTable(ctx context.Context, number int) ([]domain.OrderWithItems, error) {
	if _, err := s.tables.GetByNumber(ctx, number); err != nil {
		return nil, err
	}
	return s.orders.ListByTable(ctx, number)
}

// UpdateStatus moves an order to any valid status.
func (s *OrderService) UpdateStatus(ctx context.Context, id uint, raw string) (domain.OrderWithItems, error) {
	status, err := domain.ParseOrderStatus(raw)
	if err != nil {
		return domain.OrderWithItems{}, err
	}

	if err := s.orders.UpdateStatus(ctx, id, status, s.now()); err != nil {
		return domain.OrderWithItems{}, err
	}

	order, err := s.orders.Get(ctx, id)
	if err != nil {
		return domain.OrderWithItems{}, err
	}
	s.publishStatus(order)

	s.log.WithFields(logrus.Fields{
		"order":  id,
		"status": status,
	}).Info("order status updated")
	return order, nil
}

func (s *OrderService) publishStatus(order domain.OrderWithItems) {
	s.publisher.Publish(realtime.EventOrderUpdated, order)
	if event, ok := realtime.StatusEvent(order.Status); ok {
		s.publisher.Publish(event, order)
	}
}

// CancelOrder deletes a Pending order.
func (s *OrderService) CancelOrder(ctx context.Context, id uint) error {
	order, err := s.orders.DeletePending(ctx, id)
	if err != nil {
		return err
	}

	s.publisher.Publish(realtime.EventOrderCancelled, realtime.OrderCancelled{
		OrderID:     order.ID,
		TableNumber: order.TableNumber,
	})
	s.log.WithFields(logrus.Fields{
		"order": id,
		"table": order.TableNumber,
	}).Info("order cancelled")
	return nil
}

// GetUnpaidTotal sums every unpaid order at the table.
func (s *OrderService) GetUnpaidTotal(ctx context.Context, number int) (decimal.Decimal, error) {
	if _, err := s.tables.GetByNumber(ctx, number); err != nil {
		return decimal.Zero, err
	}
	return s.orders.UnpaidTotal(ctx, number)
}

// MarkTablePaid settles every unpaid order at the table. Calling it again
// is harmless and reports zero orders paid.
func (s *OrderService) MarkTablePaid(ctx context.Context, number int) (domain.PaymentResult, error) {
	if _, err := s.tables.GetByNumber(ctx, number); err != nil {
		return domain.PaymentResult{}, err
	}

	ids, err := s.orders.MarkTablePaid(ctx, number, s.now())
	if err != nil {
		return domain.PaymentResult{}, err
	}

	result := domain.PaymentResult{
		TableNumber: number,
		OrdersPaid:  len(ids),
		OrderIDs:    ids,
		Message:     fmt.Sprintf("%d orders marked as paid", len(ids)),
	}
	if len(ids) == 0 {
		result.OrderIDs = []uint{}
		result.Message = "No unpaid orders for this table"
		return result, nil
	}

	for _, id := range ids {
		order, err := s.orders.Get(ctx, id)
		if err != nil {
			s.log.WithError(err).WithField("order", id).Warn("failed to load paid order for broadcast")
			continue
		}
		s.publishStatus(order)
	}

	s.log.WithFields(logrus.Fields{
		"table":  number,
		"orders": len(ids),
	}).Info("table marked as paid")
	return result, nil
}
