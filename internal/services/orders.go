package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/diewo77/tap-menu/internal/models"
)

// Domain errors surfaced to the HTTP layer, which owns the status mapping.
var (
	ErrTableNotFound    = errors.New("table not found")
	ErrMenuItemNotFound = errors.New("one or more menu items not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrInvalidStatus    = errors.New("invalid order status")
	ErrEmptyOrder       = errors.New("order must contain at least one item")
	ErrInvalidQuantity  = errors.New("item quantity must be at least 1")
)

// ItemUnavailableError names the offending item so the customer knows what to
// drop from the cart.
type ItemUnavailableError struct {
	Name string
}

func (e *ItemUnavailableError) Error() string {
	return fmt.Sprintf("menu item not available: %s", e.Name)
}

// OrderLine is one cart entry from a customer submission.
type OrderLine struct {
	MenuItemID uint   `json:"menu_item_id"`
	Quantity   int    `json:"quantity"`
	Notes      string `json:"notes,omitempty"`
}

// OrderFilter narrows List; zero values mean "no filter". Both filters
// combine with AND.
type OrderFilter struct {
	TableID uint
	Status  models.OrderStatus
}

// OrderService owns the order-creation transaction and the status lifecycle.
type OrderService struct {
	db *gorm.DB
}

func NewOrderService(db *gorm.DB) *OrderService { return &OrderService{db: db} }

// Create converts a cart into a persisted Order plus its OrderItems.
//
// Validation happens before any write: the table must resolve by tracking
// code, every referenced menu item must exist, and every item must be
// available. Prices and availability come from that single pre-transaction
// read; the snapshot stays authoritative even if an admin edits an item
// between read and commit, so an in-flight order never fails or changes price
// under the customer. The order row and all item rows are inserted in one
// transaction: either the full order becomes visible or nothing does.
func (s *OrderService) Create(tableTrackingCode string, lines []OrderLine) (*models.Order, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyOrder
	}
	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
	}

	var table models.Table
	if err := s.db.Where("tracking_code = ?", tableTrackingCode).First(&table).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTableNotFound
		}
		return nil, err
	}

	ids := make([]uint, 0, len(lines))
	seen := make(map[uint]bool, len(lines))
	for _, line := range lines {
		if !seen[line.MenuItemID] {
			seen[line.MenuItemID] = true
			ids = append(ids, line.MenuItemID)
		}
	}
	var menuItems []models.MenuItem
	if err := s.db.Where("id IN ?", ids).Find(&menuItems).Error; err != nil {
		return nil, err
	}
	if len(menuItems) != len(ids) {
		return nil, ErrMenuItemNotFound
	}
	itemByID := make(map[uint]models.MenuItem, len(menuItems))
	for _, mi := range menuItems {
		itemByID[mi.ID] = mi
	}
	for _, line := range lines {
		if mi := itemByID[line.MenuItemID]; !mi.IsAvailable {
			return nil, &ItemUnavailableError{Name: mi.Name}
		}
	}

	var total int64
	for _, line := range lines {
		total += itemByID[line.MenuItemID].Price * int64(line.Quantity)
	}

	order := models.Order{
		TableID:      table.ID,
		TrackingCode: models.NewTrackingCode("order"),
		Status:       models.StatusOpen,
		Total:        total,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		orderItems := make([]models.OrderItem, 0, len(lines))
		for _, line := range lines {
			orderItems = append(orderItems, models.OrderItem{
				OrderID:     order.ID,
				MenuItemID:  line.MenuItemID,
				Quantity:    line.Quantity,
				Notes:       line.Notes,
				PriceAtTime: itemByID[line.MenuItemID].Price,
			})
		}
		if err := tx.Create(&orderItems).Error; err != nil {
			return err
		}
		order.Items = orderItems
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateStatus overwrites an order's status with one of the five valid
// values. Transitions are deliberately unconstrained beyond value validity;
// see OrderStatus.CanTransitionTo.
func (s *OrderService) UpdateStatus(id uint, rawStatus string) (*models.Order, error) {
	status, ok := models.ParseOrderStatus(rawStatus)
	if !ok {
		return nil, ErrInvalidStatus
	}
	var order models.Order
	if err := s.db.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if !order.Status.CanTransitionTo(status) {
		return nil, ErrInvalidStatus
	}
	if err := s.db.Model(&order).Update("status", status).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// GetByTrackingCode serves the unauthenticated customer polling page: the
// order with its items, nothing else.
func (s *OrderService) GetByTrackingCode(code string) (*models.Order, error) {
	var order models.Order
	if err := s.db.Preload("Items").Where("tracking_code = ?", code).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (s *OrderService) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	if err := s.db.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (s *OrderService) Items(orderID uint) ([]models.OrderItem, error) {
	var items []models.OrderItem
	if err := s.db.Where("order_id = ?", orderID).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// List returns orders for the kitchen dashboard, newest first.
func (s *OrderService) List(filter OrderFilter) ([]models.Order, error) {
	q := s.db.Order("id desc")
	if filter.TableID != 0 {
		q = q.Where("table_id = ?", filter.TableID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	var orders []models.Order
	if err := q.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}
