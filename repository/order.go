package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yeremiapane/table-ordering/database"
	"github.com/yeremiapane/table-ordering/domain"
	"github.com/yeremiapane/table-ordering/models"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// NewOrder is a priced order ready to be stored. Items carry their unit price
// snapshot.
type NewOrder struct {
	SessionID   *string
	TableNumber int
	TotalPrice  decimal.Decimal
	Items       []NewOrderItem
	CreatedAt   time.Time
}

type NewOrderItem struct {
	MenuItemID uint
	Quantity   int
	UnitPrice  decimal.Decimal
}

func orderToDomain(o models.Order) domain.OrderWithItems {
	out := domain.OrderWithItems{
		Order: domain.Order{
			ID:          o.ID,
			OrderNumber: o.OrderNumber,
			SessionID:   o.SessionID,
			TableNumber: o.TableNumber,
			Status:      domain.OrderStatus(o.Status),
			TotalPrice:  o.TotalPrice,
			CreatedAt:   o.CreatedAt,
			UpdatedAt:   o.UpdatedAt,
			PaidAt:      o.PaidAt,
		},
		Items: make([]domain.OrderItem, 0, len(o.Items)),
	}

	for _, it := range o.Items {
		item := domain.OrderItem{
			ID:         it.ID,
			OrderID:    it.OrderID,
			MenuItemID: it.MenuItemID,
			Quantity:   it.Quantity,
			Price:      it.Price,
		}
		if it.MenuItem != nil {
			item.Name = it.MenuItem.Name
			item.Category = it.MenuItem.Category.Name
		}
		out.Items = append(out.Items, item)
	}
	return out
}

func ordersToDomain(rows []models.Order) []domain.OrderWithItems {
	out := make([]domain.OrderWithItems, 0, len(rows))
	for _, row := range rows {
		out = append(out, orderToDomain(row))
	}
	return out
}

// hydrated loads orders with their lines and the menu names for display.
func (r *OrderRepository) hydrated(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_items.id")
		}).
		Preload("Items.MenuItem").
		Preload("Items.MenuItem.Category")
}

// Create stores the order and its lines in one transaction. The order number is
// the session's highest number plus one. Updating the session row first makes
// concurrent creates for the same session queue behind each other.
func (r *OrderRepository) Create(ctx context.Context, in NewOrder) (domain.OrderWithItems, error) {
	row := models.Order{
		SessionID:   in.SessionID,
		OrderNumber: 1,
		TableNumber: in.TableNumber,
		Status:      string(domain.StatusPending),
		TotalPrice:  in.TotalPrice,
		CreatedAt:   in.CreatedAt,
		UpdatedAt:   in.CreatedAt,
		Items:       make([]models.OrderItem, 0, len(in.Items)),
	}
	for _, it := range in.Items {
		row.Items = append(row.Items, models.OrderItem{
			MenuItemID: it.MenuItemID,
			Quantity:   it.Quantity,
			Price:      it.UnitPrice,
			CreatedAt:  in.CreatedAt,
		})
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.SessionID != nil {
			err := tx.Model(&models.Session{}).
				Where("id = ?", *in.SessionID).
				Update("last_activity", in.CreatedAt).Error
			if err != nil {
				return err
			}

			var last int
			err = tx.Model(&models.Order{}).
				Where("session_id = ?", *in.SessionID).
				Select("COALESCE(MAX(order_number), 0)").
				Row().Scan(&last)
			if err != nil {
				return err
			}
			row.OrderNumber = last + 1
		}

		return tx.Create(&row).Error
	})
	if err != nil {
		return domain.OrderWithItems{}, fmt.Errorf("r.db.Transaction -> %w", database.TranslateError(err))
	}

	return r.Get(ctx, row.ID)
}

func (r *OrderRepository) Get(ctx context.Context, id uint) (domain.OrderWithItems, error) {
	var row models.Order
	err := r.hydrated(ctx).First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.OrderWithItems{}, domain.NotFoundError("Order not found")
	}
	if err != nil {
		return domain.OrderWithItems{}, fmt.Errorf("r.db.First -> %w", database.TranslateError(err))
	}
	return orderToDomain(row), nil
}

// List returns orders newest first. Waiters only see tables assigned to them.
func (r *OrderRepository) List(ctx context.Context, filter domain.OrderFilter) ([]domain.OrderWithItems, error) {
	q := r.hydrated(ctx)
	if filter.Status != nil {
		q = q.Where("status = ?", string(*filter.Status))
	}
	if filter.Role == domain.RoleWaiter {
		assigned := r.db.WithContext(ctx).
			Model(&models.Table{}).
			Select("table_number").
			Where("waiter_id = ?", filter.UserID)
		q = q.Where("table_number IN (?)", assigned)
	}

	var rows []models.Order
	if err := q.Order("created_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("r.db.Find -> %w", database.TranslateError(err))
	}
	return ordersToDomain(rows), nil
}

func (r *OrderRepository) ListBySession(ctx context.Context, sessionID string) ([]domain.OrderWithItems, error) {
	var rows []models.Order
	err := r.hydrated(ctx).
		Where("session_id = ?", sessionID).
		Order("order_number").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("r.db.Find -> %w", database.TranslateError(err))
	}
	return ordersToDomain(rows), nil
}

func (r *OrderRepository) ListByTable(ctx context.Context, number int) ([]domain.OrderWithItems, error) {
	var rows []models.Order
	err := r.hydrated(ctx).
		Where("table_number = ?", number).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("r.db.Find -> %w", database.TranslateError(err))
	}
	return ordersToDomain(rows), nil
}

// UpdateStatus sets a new status. Entering Paid stamps paid_at once.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id uint, status domain.OrderStatus, at time.Time) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row models.Order
		if err := tx.Select("id", "status").First(&row, id).Error; err != nil {
			return err
		}

		changes := map[string]interface{}{
			"status":     string(status),
			"updated_at": at,
		}
		if status == domain.StatusPaid && row.Status != string(domain.StatusPaid) {
			changes["paid_at"] = at
		}
		return tx.Model(&models.Order{}).Where("id = ?", id).Updates(changes).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NotFoundError("Order not found")
	}
	if err != nil {
		return fmt.Errorf("r.db.Transaction -> %w", database.TranslateError(err))
	}
	return nil
}

// DeletePending removes a Pending order and its lines. Any other status is a
// conflict and leaves the order untouched.
func (r *OrderRepository) DeletePending(ctx context.Context, id uint) (domain.Order, error) {
	var row models.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&row, id).Error; err != nil {
			return err
		}
		if !domain.OrderStatus(row.Status).Cancellable() {
			return domain.ConflictError("Only Pending orders can be cancelled (current status: %s)", row.Status)
		}

		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}

		res := tx.Where("id = ? AND status = ?", id, string(domain.StatusPending)).Delete(&models.Order{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ConflictError("Only Pending orders can be cancelled")
		}
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Order{}, domain.NotFoundError("Order not found")
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("r.db.Transaction -> %w", database.TranslateError(err))
	}
	return orderToDomain(row).Order, nil
}

// UnpaidTotal sums every order at the table that is not Paid, whichever session
// placed it.
func (r *OrderRepository) UnpaidTotal(ctx context.Context, number int) (decimal.Decimal, error) {
	rows, err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("total_price").
		Where("table_number = ? AND status <> ?", number, string(domain.StatusPaid)).
		Rows()
	if err != nil {
		return decimal.Zero, fmt.Errorf("r.db.Rows -> %w", database.TranslateError(err))
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var price decimal.Decimal
		if err := rows.Scan(&price); err != nil {
			return decimal.Zero, fmt.Errorf("rows.Scan -> %w", database.TranslateError(err))
		}
		total = total.Add(price)
	}
	if err := rows.Err(); err != nil {
		return decimal.Zero, fmt.Errorf("rows.Err -> %w", database.TranslateError(err))
	}
	return total, nil
}

// MarkTablePaid flips every unpaid order at the table to Paid and returns the ids
// it changed, in id order.
func (r *OrderRepository) MarkTablePaid(ctx context.Context, number int, at time.Time) ([]uint, error) {
	paid := string(domain.StatusPaid)
	var ids []uint

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Order{}).
			Where("table_number = ? AND status <> ?", number, paid).
			Order("id").
			Pluck("id", &ids).Error
		if err != nil || len(ids) == 0 {
			return err
		}

		return tx.Model(&models.Order{}).
			Where("id IN ? AND status <> ?", ids, paid).
			Updates(map[string]interface{}{
				"status":     paid,
				"paid_at":    at,
				"updated_at": at,
			}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("r.db.Transaction -> %w", database.TranslateError(err))
	}
	return ids, nil
}

// SessionTotals returns the order count and summed order value per session.
func (r *OrderRepository) SessionTotals(ctx context.Context, sessionIDs []string) (map[string]domain.SessionSummary, error) {
	out := make(map[string]domain.SessionSummary, len(sessionIDs))
	if len(sessionIDs) == 0 {
		return out, nil
	}

	var rows []models.Order
	err := r.db.WithContext(ctx).
		Select("session_id", "total_price").
		Where("session_id IN ?", sessionIDs).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("r.db.Find -> %w", database.TranslateError(err))
	}

	for _, row := range rows {
		sum := out[*row.SessionID]
		sum.OrderCount++
		sum.TotalAmount = sum.TotalAmount.Add(row.TotalPrice)
		out[*row.SessionID] = sum
	}
	return out, nil
}
