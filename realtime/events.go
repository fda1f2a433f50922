package realtime

import (
	"time"

	"github.com/yeremiapane/table-ordering/domain"
)

// Event names pushed to connected clients.
const (
	EventOrderCreated   = "orderCreated"
	EventOrderUpdated   = "orderUpdated"
	EventOrderReady     = "orderReady"
	EventOrderServed    = "orderServed"
	EventOrderPaid      = "orderPaid"
	EventOrderCancelled = "orderCancelled"
	EventWaiterCalled   = "waiter-called"
	EventSessionCreated = "sessionCreated"
	EventSessionEnded   = "sessionEnded"
	EventTableAssigned  = "tableAssigned"
)

// StatusEvent returns the status specific event that accompanies orderUpdated,
// if the status has one.
func StatusEvent(status domain.OrderStatus) (string, bool) {
	switch status {
	case domain.StatusReady:
		return EventOrderReady, true
	case domain.StatusServed:
		return EventOrderServed, true
	case domain.StatusPaid:
		return EventOrderPaid, true
	}
	return "", false
}

type Message struct {
	Event     string      `json:"event"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// OrderCancelled is the payload of orderCancelled. The order no longer exists, so
// only its identifiers are sent.
type OrderCancelled struct {
	OrderID     uint `json:"orderId"`
	TableNumber int  `json:"tableNumber"`
}
