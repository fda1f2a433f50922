package services

import (
	"context"
	"strings"

	"github.com/yeremiapane/table-ordering/domain"
	"github.com/yeremiapane/table-ordering/repository"
)

type MenuService struct {
	menu *repository.MenuRepository
}

func NewMenuService(menu *repository.MenuRepository) *MenuService {
	return &MenuService{menu: menu}
}

func (s *MenuService) ListMenu(ctx context.Context, category string) ([]domain.MenuItem, error) {
	return s.menu.List(ctx, strings.TrimSpace(category))
}

func (s *MenuService) ListCategories(ctx context.Context) ([]string, error) {
	return s.menu.Categories(ctx)
}

func (s *MenuService) GetMenuItem(ctx context.Context, id uint) (domain.MenuItem, error) {
	return s.menu.Get(ctx, id)
}
