package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yeremiapane/table-ordering/database"
	"github.com/yeremiapane/table-ordering/domain"
	"github.com/yeremiapane/table-ordering/models"
)

type TableRepository struct {
	db *gorm.DB
}

func NewTableRepository(db *gorm.DB) *TableRepository {
	return &TableRepository{db: db}
}

func tableToDomain(t models.Table) domain.Table {
	return domain.Table{
		ID:          t.ID,
		TableNumber: t.TableNumber,
		Capacity:    t.Capacity,
		Status:      domain.TableStatus(t.Status),
		WaiterID:    t.WaiterID,
	}
}

func tableToAssignment(t models.Table) domain.TableAssignment {
	a := domain.TableAssignment{Table: tableToDomain(t)}
	if t.Waiter != nil {
		a.WaiterUsername = t.Waiter.Username
		a.WaiterName = t.Waiter.FullName
	}
	return a
}

func (r *TableRepository) List(ctx context.Context) ([]domain.Table, error) {
	var rows []models.Table
	if err := r.db.WithContext(ctx).Order("table_number").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("r.db.Find -> %w", database.TranslateError(err))
	}

	tables := make([]domain.Table, 0, len(rows))
	for _, row := range rows {
		tables = append(tables, tableToDomain(row))
	}
	return tables, nil
}

func (r *TableRepository) GetByNumber(ctx context.Context, number int) (domain.Table, error) {
	var row models.Table
	err := r.db.WithContext(ctx).Where("table_number = ?", number).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Table{}, domain.NotFoundError("Table not found")
	}
	if err != nil {
		return domain.Table{}, fmt.Errorf("r.db.First -> %w", database.TranslateError(err))
	}
	return tableToDomain(row), nil
}

func (r *TableRepository) GetByID(ctx context.Context, id uint) (domain.Table, error) {
	var row models.Table
	err := r.db.WithContext(ctx).First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Table{}, domain.NotFoundError("Table not found")
	}
	if err != nil {
		return domain.Table{}, fmt.Errorf("r.db.First -> %w", database.TranslateError(err))
	}
	return tableToDomain(row), nil
}

func (r *TableRepository) SetStatus(ctx context.Context, number int, status domain.TableStatus) error {
	err := r.db.WithContext(ctx).
		Model(&models.Table{}).
		Where("table_number = ?", number).
		Update("status", string(status)).Error
	if err != nil {
		return fmt.Errorf("r.db.Update -> %w", database.TranslateError(err))
	}
	return nil
}

// ReleaseIdle frees occupied tables that have neither an active session nor an
// unpaid order.
func (r *TableRepository) ReleaseIdle(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Table{}).
		Where("status = ?", string(domain.TableOccupied)).
		Where("NOT EXISTS (SELECT 1 FROM sessions s WHERE s.table_number = tables.table_number AND s.is_active = ?)", true).
		Where("NOT EXISTS (SELECT 1 FROM orders o WHERE o.table_number = tables.table_number AND o.status <> ?)", string(domain.StatusPaid)).
		Update("status", string(domain.TableAvailable))
	if res.Error != nil {
		return 0, fmt.Errorf("r.db.Update -> %w", database.TranslateError(res.Error))
	}
	return res.RowsAffected, nil
}

func (r *TableRepository) ListAssignments(ctx context.Context) ([]domain.TableAssignment, error) {
	var rows []models.Table
	if err := r.db.WithContext(ctx).Preload("Waiter").Order("table_number").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("r.db.Find -> %w", database.TranslateError(err))
	}

	out := make([]domain.TableAssignment, 0, len(rows))
	for _, row := range rows {
		out = append(out, tableToAssignment(row))
	}
	return out, nil
}

func (r *TableRepository) ListForWaiter(ctx context.Context, waiterID uint) ([]domain.TableAssignment, error) {
	var rows []models.Table
	err := r.db.WithContext(ctx).
		Preload("Waiter").
		Where("waiter_id = ?", waiterID).
		Order("table_number").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("r.db.Find -> %w", database.TranslateError(err))
	}

	out := make([]domain.TableAssignment, 0, len(rows))
	for _, row := range rows {
		out = append(out, tableToAssignment(row))
	}
	return out, nil
}

// SetWaiter replaces the table's waiter. A nil waiterID clears the assignment.
func (r *TableRepository) SetWaiter(ctx context.Context, tableID uint, waiterID *uint) (domain.TableAssignment, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Table{}).
		Where("id = ?", tableID).
		Update("waiter_id", waiterID)
	if res.Error != nil {
		return domain.TableAssignment{}, fmt.Errorf("r.db.Update -> %w", database.TranslateError(res.Error))
	}

	var row models.Table
	err := r.db.WithContext(ctx).Preload("Waiter").First(&row, tableID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.TableAssignment{}, domain.NotFoundError("Table not found")
	}
	if err != nil {
		return domain.TableAssignment{}, fmt.Errorf("r.db.First -> %w", database.TranslateError(err))
	}
	return tableToAssignment(row), nil
}

// AssignedWaiters lists the staff responsible for a table.
func (r *TableRepository) AssignedWaiters(ctx context.Context, number int) ([]domain.UserBrief, error) {
	var rows []models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN tables ON tables.waiter_id = users.id").
		Where("tables.table_number = ?", number).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("r.db.Find -> %w", database.TranslateError(err))
	}

	out := make([]domain.UserBrief, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.UserBrief{ID: row.ID, Username: row.Username, FullName: row.FullName})
	}
	return out, nil
}
