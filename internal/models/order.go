package models

import "time"

// OrderStatus is a closed set; anything outside the five constants is
// rejected before it reaches an order.
type OrderStatus string

const (
	StatusOpen      OrderStatus = "open"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusClosed    OrderStatus = "closed"
	StatusCancelled OrderStatus = "cancelled"
)

// ParseOrderStatus maps raw client input onto the enum.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	status := OrderStatus(s)
	return status, status.Valid()
}

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusPreparing, StatusReady, StatusClosed, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether an order may move from s to next. The
// kitchen flow relies on being able to set any status on any order (including
// reopening a closed one), so today only the target value is checked. A
// stricter state machine only needs to replace this method.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	return next.Valid()
}

// Order. Total is computed once at creation from the item price snapshots and
// never recomputed; status is the only field that changes afterwards.
type Order struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	TableID      uint        `gorm:"not null;index" json:"table_id"`
	Table        *Table      `gorm:"foreignKey:TableID" json:"-"`
	TrackingCode string      `gorm:"not null;unique" json:"tracking_code"`
	Status       OrderStatus `gorm:"not null;default:'open'" json:"status"`
	Total        int64       `gorm:"not null" json:"total"`
	Items        []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// OrderItem carries PriceAtTime, the menu item's price captured at order
// creation. Later price edits on the menu item do not touch it.
type OrderItem struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	OrderID     uint      `gorm:"not null;index" json:"order_id"`
	MenuItemID  uint      `gorm:"not null" json:"menu_item_id"`
	MenuItem    *MenuItem `gorm:"foreignKey:MenuItemID" json:"-"`
	Quantity    int       `gorm:"not null" json:"quantity"`
	Notes       string    `json:"notes,omitempty"`
	PriceAtTime int64     `gorm:"not null" json:"price_at_time"`
	CreatedAt   time.Time `json:"created_at"`
}
