package models

import "time"

type Table struct {
	ID          uint      `gorm:"primaryKey"`
	TableNumber int       `gorm:"not null;uniqueIndex"`
	Capacity    int       `gorm:"not null"`
	Status      string    `gorm:"type:varchar(20);not null;default:'Available'"`
	WaiterID    *uint     `gorm:"index"`
	Waiter      *User     `gorm:"foreignKey:WaiterID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}
