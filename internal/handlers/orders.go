package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/diewo77/tap-menu/httpx"
	"github.com/diewo77/tap-menu/internal/models"
	"github.com/diewo77/tap-menu/internal/services"
	"github.com/diewo77/tap-menu/validation"
)

// OrderHandler maps the order service's domain errors onto transport statuses:
// unknown table 404 (stale QR code), unknown menu item 400 (bad ids in the
// payload), unavailable item 400 with the item named.
type OrderHandler struct {
	Svc *services.OrderService
}

func NewOrderHandler(svc *services.OrderService) *OrderHandler {
	return &OrderHandler{Svc: svc}
}

type orderWithItems struct {
	Order *models.Order      `json:"order"`
	Items []models.OrderItem `json:"items"`
}

// Create: POST /orders — customer cart submission, unauthenticated.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input struct {
		TableTrackingCode string               `json:"table_tracking_code"`
		Items             []services.OrderLine `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	v := validation.Violations{}
	validation.Required("table_tracking_code", input.TableTrackingCode, v)
	validation.NotEmptySlice("items", input.Items, v)
	for _, line := range input.Items {
		if line.MenuItemID == 0 {
			v["items"] = "invalid_menu_item_id"
		}
		if line.Quantity < 1 {
			v["items"] = "quantity_must_be_at_least_1"
		}
	}
	if !v.Empty() {
		httpx.JSONErrorDetails(w, http.StatusBadRequest, "validation_failed", v)
		return
	}

	order, err := h.Svc.Create(input.TableTrackingCode, input.Items)
	if err != nil {
		var unavailable *services.ItemUnavailableError
		switch {
		case errors.Is(err, services.ErrTableNotFound):
			httpx.JSONError(w, http.StatusNotFound, "table_not_found")
		case errors.Is(err, services.ErrMenuItemNotFound):
			httpx.JSONError(w, http.StatusBadRequest, "menu_item_not_found")
		case errors.As(err, &unavailable):
			httpx.JSONError(w, http.StatusBadRequest, unavailable.Error())
		case errors.Is(err, services.ErrEmptyOrder), errors.Is(err, services.ErrInvalidQuantity):
			httpx.JSONError(w, http.StatusBadRequest, err.Error())
		default:
			httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_order")
		}
		return
	}
	items := order.Items
	order.Items = nil // items travel once, in the sibling field
	httpx.JSON(w, http.StatusCreated, orderWithItems{Order: order, Items: items})
}

// GetByTrackingCode: GET /orders/qr/{code} — customer status poll,
// unauthenticated.
func (h *OrderHandler) GetByTrackingCode(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" || len(code) > 200 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_tracking_code")
		return
	}
	order, err := h.Svc.GetByTrackingCode(code)
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "order_not_found")
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_order")
		return
	}
	items := order.Items
	order.Items = nil
	httpx.JSON(w, http.StatusOK, orderWithItems{Order: order, Items: items})
}

// List: GET /orders?tableId=&status= — kitchen dashboard.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter services.OrderFilter
	if raw := r.URL.Query().Get("tableId"); raw != "" {
		tableID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_table_id")
			return
		}
		filter.TableID = uint(tableID)
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, ok := models.ParseOrderStatus(raw)
		if !ok {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_status")
			return
		}
		filter.Status = status
	}
	orders, err := h.Svc.List(filter)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_orders")
		return
	}
	httpx.JSON(w, http.StatusOK, orders)
}

// Get: GET /orders/{id} — kitchen detail view with line items.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id")
		return
	}
	order, err := h.Svc.GetByID(id)
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "order_not_found")
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_order")
		return
	}
	items, err := h.Svc.Items(order.ID)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_order")
		return
	}
	httpx.JSON(w, http.StatusOK, orderWithItems{Order: order, Items: items})
}

// UpdateStatus: PATCH /orders/{id}/status
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id")
		return
	}
	var input struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	order, err := h.Svc.UpdateStatus(id, input.Status)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidStatus):
			httpx.JSONError(w, http.StatusBadRequest, "invalid_status")
		case errors.Is(err, services.ErrOrderNotFound):
			httpx.JSONError(w, http.StatusNotFound, "order_not_found")
		default:
			httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_status")
		}
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}
