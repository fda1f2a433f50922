package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Session struct {
	ID           string    `gorm:"type:varchar(36);primaryKey"`
	TableNumber  int       `gorm:"not null;index"`
	Table        *Table    `gorm:"foreignKey:TableNumber;references:TableNumber"`
	DeviceID     string    `gorm:"type:varchar(255);not null"`
	CustomerID   *uint     `gorm:"index"`
	CustomerName *string   `gorm:"type:varchar(255)"`
	CreatedAt    time.Time `gorm:"not null"`
	LastActivity time.Time `gorm:"not null;index"`
	IsActive     bool      `gorm:"not null;index"`
}

func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
