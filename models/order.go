package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID          uint            `gorm:"primaryKey"`
	SessionID   *string         `gorm:"type:varchar(36);uniqueIndex:idx_orders_session_number,priority:1"`
	OrderNumber int             `gorm:"not null;uniqueIndex:idx_orders_session_number,priority:2"`
	TableNumber int             `gorm:"not null;index"`
	Table       *Table          `gorm:"foreignKey:TableNumber;references:TableNumber"`
	Status      string          `gorm:"type:varchar(20);not null;index"`
	TotalPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	PaidAt      *time.Time
	CreatedAt   time.Time   `gorm:"not null;index"`
	UpdatedAt   time.Time   `gorm:"not null"`
	Items       []OrderItem `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
