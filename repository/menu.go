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

type MenuRepository struct {
	db *gorm.DB
}

func NewMenuRepository(db *gorm.DB) *MenuRepository {
	return &MenuRepository{db: db}
}

func menuItemToDomain(m models.MenuItem) domain.MenuItem {
	return domain.MenuItem{
		ID:          m.ID,
		Name:        m.Name,
		Category:    m.Category.Name,
		Price:       m.Price,
		Description: m.Description,
	}
}

// List returns the menu in display order. An empty category returns every item.
func (r *MenuRepository) List(ctx context.Context, category string) ([]domain.MenuItem, error) {
	q := r.db.WithContext(ctx).
		Preload("Category").
		Joins("JOIN menu_categories ON menu_categories.id = menu_items.category_id").
		Order("menu_categories.sort_order, menu_items.id")
	if category != "" {
		q = q.Where("menu_categories.name = ?", category)
	}

	var rows []models.MenuItem
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("r.db.Find -> %w", database.TranslateError(err))
	}

	items := make([]domain.MenuItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, menuItemToDomain(row))
	}
	return items, nil
}

func (r *MenuRepository) Categories(ctx context.Context) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Model(&models.MenuCategory{}).
		Order("sort_order, id").
		Pluck("name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("r.db.Pluck -> %w", database.TranslateError(err))
	}
	return names, nil
}

func (r *MenuRepository) Get(ctx context.Context, id uint) (domain.MenuItem, error) {
	var row models.MenuItem
	err := r.db.WithContext(ctx).Preload("Category").First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.MenuItem{}, domain.NotFoundError("Menu item not found")
	}
	if err != nil {
		return domain.MenuItem{}, fmt.Errorf("r.db.First -> %w", database.TranslateError(err))
	}
	return menuItemToDomain(row), nil
}

// FindByIDs resolves the given ids. Unknown ids are simply absent from the map.
func (r *MenuRepository) FindByIDs(ctx context.Context, ids []uint) (map[uint]domain.MenuItem, error) {
	found := make(map[uint]domain.MenuItem, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	var rows []models.MenuItem
	if err := r.db.WithContext(ctx).Preload("Category").Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("r.db.Find -> %w", database.TranslateError(err))
	}
	for _, row := range rows {
		found[row.ID] = menuItemToDomain(row)
	}
	return found, nil
}
