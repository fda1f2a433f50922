package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem stores the unit price charged at ordering time. It never follows
// later menu price changes.
type OrderItem struct {
	ID         uint            `gorm:"primaryKey"`
	OrderID    uint            `gorm:"not null;index"`
	MenuItemID uint            `gorm:"not null;index"`
	MenuItem   *MenuItem       `gorm:"foreignKey:MenuItemID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Quantity   int             `gorm:"not null"`
	Price      decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CreatedAt  time.Time       `gorm:"not null"`
}
