package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Money is rendered as a JSON number, e.g. 30.97 rather than "30.97".
	decimal.MarshalJSONWithoutQuotes = true
}

type OrderStatus string

const (
	StatusPending   OrderStatus = "Pending"
	StatusPreparing OrderStatus = "Preparing"
	StatusReady     OrderStatus = "Ready"
	StatusServed    OrderStatus = "Served"
	StatusPaid      OrderStatus = "Paid"
)

var orderStatuses = []OrderStatus{StatusPending, StatusPreparing, StatusReady, StatusServed, StatusPaid}

func (s OrderStatus) Valid() bool {
	for _, v := range orderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Cancellable reports whether an order in this status may still be withdrawn.
func (s OrderStatus) Cancellable() bool {
	return s == StatusPending
}

// ParseOrderStatus accepts the canonical spelling only.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	s := OrderStatus(strings.TrimSpace(raw))
	if !s.Valid() {
		names := make([]string, len(orderStatuses))
		for i, v := range orderStatuses {
			names[i] = string(v)
		}
		return "", ValidationError("invalid status %q, must be one of: %s", raw, strings.Join(names, ", "))
	}
	return s, nil
}

type Order struct {
	ID          uint            `json:"id"`
	OrderNumber int             `json:"orderNumber"`
	SessionID   *string         `json:"sessionId"`
	TableNumber int             `json:"tableNumber"`
	Status      OrderStatus     `json:"status"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	PaidAt      *time.Time      `json:"paidAt"`
}

// OrderItem is an order line joined with the menu for display.
type OrderItem struct {
	ID         uint            `json:"id"`
	OrderID    uint            `json:"orderId"`
	MenuItemID uint            `json:"menuItemId"`
	Name       string          `json:"name"`
	Category   string          `json:"category"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
}

type OrderWithItems struct {
	Order
	Items []OrderItem `json:"items"`
}

// OrderLine is a requested line of a new order.
type OrderLine struct {
	MenuItemID uint `json:"menuItemId"`
	Quantity   int  `json:"quantity"`
}

// OrderFilter narrows ListOrders. A waiter only ever sees orders at their own tables.
type OrderFilter struct {
	Status *OrderStatus
	Role   Role
	UserID uint
}

type PaymentResult struct {
	TableNumber int    `json:"tableNumber"`
	OrdersPaid  int    `json:"ordersPaid"`
	OrderIDs    []uint `json:"orderIds"`
	Message     string `json:"message"`
}
