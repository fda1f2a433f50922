package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Session is one device's visit to one table.
type Session struct {
	ID           string    `json:"id"`
	TableNumber  int       `json:"tableNumber"`
	DeviceID     string    `json:"deviceId"`
	CustomerID   *uint     `json:"customerId"`
	CustomerName *string   `json:"customerName"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActivity time.Time `json:"lastActivity"`
	IsActive     bool      `json:"isActive"`
}

type SessionDetail struct {
	Session     Session          `json:"session"`
	Orders      []OrderWithItems `json:"orders"`
	OrderCount  int              `json:"orderCount"`
	TotalAmount decimal.Decimal  `json:"totalAmount"`
}

type SessionSummary struct {
	Session
	OrderCount  int             `json:"orderCount"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// SweepResult counts the sessions closed by one sweeper run.
type SweepResult struct {
	Inactive int64
	Paid     int64
}

func (r SweepResult) Total() int64 {
	return r.Inactive + r.Paid
}
