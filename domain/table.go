package domain

type TableStatus string

const (
	TableAvailable TableStatus = "Available"
	TableOccupied  TableStatus = "Occupied"
)

type Table struct {
	ID          uint        `json:"id"`
	TableNumber int         `json:"tableNumber"`
	Capacity    int         `json:"capacity"`
	Status      TableStatus `json:"status"`
	WaiterID    *uint       `json:"waiterId"`
}

// TableAssignment is a table together with its waiter, if any.
type TableAssignment struct {
	Table
	WaiterUsername *string `json:"waiterUsername"`
	WaiterName     *string `json:"waiterName"`
}

// WaiterCall is the payload staff receive when a customer asks for help.
type WaiterCall struct {
	TableNumber     int         `json:"tableNumber"`
	CustomerName    string      `json:"customerName"`
	Timestamp       string      `json:"timestamp"`
	AssignedWaiters []UserBrief `json:"assignedWaiters"`
}
