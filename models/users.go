package models

import "time"

type User struct {
	ID           uint    `gorm:"primaryKey"`
	Username     *string `gorm:"type:varchar(100);uniqueIndex"`
	Email        *string `gorm:"type:varchar(255);uniqueIndex"`
	PasswordHash string  `gorm:"type:varchar(255);not null"`
	Role         string  `gorm:"type:varchar(20);not null;index"`
	FullName     *string `gorm:"type:varchar(255)"`
	LastLogin    *time.Time
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}
