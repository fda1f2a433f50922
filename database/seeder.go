package database

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/yeremiapane/table-ordering/domain"
	"github.com/yeremiapane/table-ordering/models"
	"github.com/yeremiapane/table-ordering/utils"
)

type seedItem struct {
	name        string
	price       string
	description string
}

type seedCategory struct {
	name  string
	items []seedItem
}

var seedMenu = []seedCategory{
	{"Appetizers", []seedItem{
		{"Bruschetta", "8.99", "Toasted bread with tomatoes, garlic, and basil"},
		{"Calamari", "12.99", "Crispy fried squid with marinara sauce"},
		{"Mozzarella Sticks", "9.99", "Golden fried mozzarella with marinara"},
		{"Caesar Salad", "10.99", "Fresh romaine with Caesar dressing and croutons"},
	}},
	{"Main Courses", []seedItem{
		{"Margherita Pizza", "14.99", "Classic tomato, mozzarella, and basil"},
		{"Pepperoni Pizza", "16.99", "Loaded with pepperoni and cheese"},
		{"Spaghetti Carbonara", "15.99", "Pasta with bacon, egg, and parmesan"},
		{"Grilled Salmon", "22.99", "Atlantic salmon with vegetables"},
		{"Ribeye Steak", "28.99", "Prime ribeye with garlic butter"},
		{"Chicken Parmesan", "18.99", "Breaded chicken with marinara and cheese"},
	}},
	{"Desserts", []seedItem{
		{"Tiramisu", "7.99", "Classic Italian coffee-flavored dessert"},
		{"Chocolate Lava Cake", "8.99", "Warm chocolate cake with molten center"},
		{"Cheesecake", "7.99", "New York style cheesecake"},
	}},
	{"Beverages", []seedItem{
		{"Coca Cola", "2.99", "Classic soft drink"},
		{"Iced Tea", "2.99", "Freshly brewed iced tea"},
		{"Coffee", "3.49", "Freshly brewed coffee"},
		{"Red Wine", "8.99", "House red wine"},
		{"White Wine", "8.99", "House white wine"},
	}},
}

const seedTableCount = 10

type seedUser struct {
	username string
	password string
	role     domain.Role
	fullName string
}

var seedUsers = []seedUser{
	{"kitchen", "kitchen123", domain.RoleKitchen, "Kitchen Staff"},
	{"waiter1", "waiter123", domain.RoleWaiter, "Waiter One"},
	{"waiter2", "waiter123", domain.RoleWaiter, "Waiter Two"},
	{"admin", "admin123", domain.RoleAdmin, "Administrator"},
}

// Seed fills empty tables with the starter menu, floor plan and staff accounts,
// then spreads unassigned tables over the waiters. Each step only runs when its
// table is empty, so Seed is safe on every start.
func Seed(db *gorm.DB, log logrus.FieldLogger) error {
	steps := []struct {
		name string
		fn   func(*gorm.DB) (bool, error)
	}{
		{"menu", seedMenuItems},
		{"tables", seedTables},
		{"users", seedStaff},
	}

	for _, step := range steps {
		seeded, err := step.fn(db)
		if err != nil {
			return fmt.Errorf("seed %s -> %w", step.name, TranslateError(err))
		}
		if seeded {
			log.WithField("step", step.name).Info("seeded")
		}
	}

	assigned, err := AssignTablesRoundRobin(db)
	if err != nil {
		return fmt.Errorf("seed assignments -> %w", TranslateError(err))
	}
	if assigned > 0 {
		log.WithField("tables", assigned).Info("distributed tables across waiters")
	}

	return nil
}

func isEmpty(db *gorm.DB, model interface{}) (bool, error) {
	var count int64
	if err := db.Model(model).Count(&count).Error; err != nil {
		return false, err
	}
	return count == 0, nil
}

func seedMenuItems(db *gorm.DB) (bool, error) {
	empty, err := isEmpty(db, &models.MenuItem{})
	if err != nil || !empty {
		return false, err
	}

	return true, db.Transaction(func(tx *gorm.DB) error {
		for i, cat := range seedMenu {
			category := models.MenuCategory{Name: cat.name, SortOrder: i + 1}
			if err := tx.Create(&category).Error; err != nil {
				return err
			}
			for _, item := range cat.items {
				row := models.MenuItem{
					CategoryID:  category.ID,
					Name:        item.name,
					Price:       decimal.RequireFromString(item.price),
					Description: item.description,
				}
				if err := tx.Create(&row).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func seedTables(db *gorm.DB) (bool, error) {
	empty, err := isEmpty(db, &models.Table{})
	if err != nil || !empty {
		return false, err
	}

	tables := make([]models.Table, 0, seedTableCount)
	for n := 1; n <= seedTableCount; n++ {
		capacity := 4
		if n > 6 {
			capacity = 6
		}
		tables = append(tables, models.Table{
			TableNumber: n,
			Capacity:    capacity,
			Status:      string(domain.TableAvailable),
		})
	}
	return true, db.Create(&tables).Error
}

func seedStaff(db *gorm.DB) (bool, error) {
	empty, err := isEmpty(db, &models.User{})
	if err != nil || !empty {
		return false, err
	}

	users := make([]models.User, 0, len(seedUsers))
	for _, u := range seedUsers {
		hash, err := utils.HashPassword(u.password)
		if err != nil {
			return false, err
		}
		username, fullName := u.username, u.fullName
		users = append(users, models.User{
			Username:     &username,
			PasswordHash: hash,
			Role:         string(u.role),
			FullName:     &fullName,
		})
	}
	return true, db.Create(&users).Error
}

// AssignTablesRoundRobin deals every table to the waiters in id order, so table
// counts differ by at most one. It does nothing once any table has a waiter.
func AssignTablesRoundRobin(db *gorm.DB) (int, error) {
	var assignedCount int64
	if err := db.Model(&models.Table{}).Where("waiter_id IS NOT NULL").Count(&assignedCount).Error; err != nil {
		return 0, err
	}
	if assignedCount > 0 {
		return 0, nil
	}

	var waiterIDs []uint
	if err := db.Model(&models.User{}).Where("role = ?", string(domain.RoleWaiter)).Order("id").Pluck("id", &waiterIDs).Error; err != nil {
		return 0, err
	}
	if len(waiterIDs) == 0 {
		return 0, nil
	}

	var tables []models.Table
	if err := db.Order("table_number").Find(&tables).Error; err != nil {
		return 0, err
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		for i, table := range tables {
			waiterID := waiterIDs[i%len(waiterIDs)]
			if err := tx.Model(&models.Table{}).Where("id = ?", table.ID).Update("waiter_id", waiterID).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return len(tables), nil
}
