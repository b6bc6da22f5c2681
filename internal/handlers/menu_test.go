package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/diewo77/tap-menu/internal/models"
)

func newMenuRouter(db *gorm.DB) *chi.Mux {
	h := NewMenuHandler(db)
	r := chi.NewRouter()
	r.Get("/menu/categories", h.ListCategories)
	r.Post("/menu/categories", h.CreateCategory)
	r.Get("/menu/categories/{id}", h.GetCategory)
	r.Put("/menu/categories/{id}", h.UpdateCategory)
	r.Delete("/menu/categories/{id}", h.DeleteCategory)
	r.Get("/menu/items", h.ListItems)
	r.Post("/menu/items", h.CreateItem)
	r.Get("/menu/items/{id}", h.GetItem)
	r.Put("/menu/items/{id}", h.UpdateItem)
	r.Delete("/menu/items/{id}", h.DeleteItem)
	return r
}

func TestCategoryCRUD(t *testing.T) {
	db := setupTestDB(t)
	r := newMenuRouter(db)

	w := doJSON(t, r, http.MethodPost, "/menu/categories", `{"name":"Pizze","description":"Wood-fired"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPost, "/menu/categories", `{"name":"Pizze"}`)
	require.Equal(t, http.StatusConflict, w.Code)
	require.Contains(t, w.Body.String(), "category_name_exists")

	w = doJSON(t, r, http.MethodPut, "/menu/categories/1", `{"description":"Wood-fired oven"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Wood-fired oven")

	w = doJSON(t, r, http.MethodGet, "/menu/categories/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"name":"Pizze"`)

	w = doJSON(t, r, http.MethodGet, "/menu/categories/99", "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteCategoryDetachesItems(t *testing.T) {
	db := setupTestDB(t)
	r := newMenuRouter(db)

	w := doJSON(t, r, http.MethodPost, "/menu/categories", `{"name":"Pizze"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(t, r, http.MethodPost, "/menu/items", `{"category_id":1,"name":"Margherita","price":1200}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodDelete, "/menu/categories/1", "")
	require.Equal(t, http.StatusOK, w.Code)

	// Item survives with no category.
	var item models.MenuItem
	require.NoError(t, db.First(&item, 1).Error)
	require.Nil(t, item.CategoryID)
}

func TestMenuItemCreateValidation(t *testing.T) {
	db := setupTestDB(t)
	r := newMenuRouter(db)

	w := doJSON(t, r, http.MethodPost, "/menu/items", `{"name":"Margherita","price":1200}`)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Contains(t, w.Body.String(), `"is_available":true`)

	w = doJSON(t, r, http.MethodPost, "/menu/items", `{"name":"","price":1200}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/menu/items", `{"name":"Free bread","price":0}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/menu/items", `{"category_id":42,"name":"Ghost","price":100}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "category_not_found")
}

func TestMenuItemCreatedUnavailableStaysUnavailable(t *testing.T) {
	db := setupTestDB(t)
	r := newMenuRouter(db)

	w := doJSON(t, r, http.MethodPost, "/menu/items", `{"name":"Panettone","price":900,"is_available":false}`)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Contains(t, w.Body.String(), `"is_available":false`)

	// The row itself must hold false, not just the response.
	var stored models.MenuItem
	require.NoError(t, db.First(&stored, 1).Error)
	require.False(t, stored.IsAvailable)
}

func TestMenuItemUpdatePartial(t *testing.T) {
	db := setupTestDB(t)
	r := newMenuRouter(db)

	w := doJSON(t, r, http.MethodPost, "/menu/items", `{"name":"Margherita","price":1200,"description":"Tomato and mozzarella"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPut, "/menu/items/1", `{"price":1400,"is_available":false}`)
	require.Equal(t, http.StatusOK, w.Code)

	var item models.MenuItem
	require.NoError(t, db.First(&item, 1).Error)
	require.Equal(t, int64(1400), item.Price)
	require.False(t, item.IsAvailable)
	require.Equal(t, "Margherita", item.Name)
	require.Equal(t, "Tomato and mozzarella", item.Description)

	w = doJSON(t, r, http.MethodPut, "/menu/items/1", `{"price":-5}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMenuItemListFilterByCategory(t *testing.T) {
	db := setupTestDB(t)
	r := newMenuRouter(db)

	w := doJSON(t, r, http.MethodPost, "/menu/categories", `{"name":"Pizze"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(t, r, http.MethodPost, "/menu/categories", `{"name":"Drinks"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(t, r, http.MethodPost, "/menu/items", `{"category_id":1,"name":"Margherita","price":1200}`)
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(t, r, http.MethodPost, "/menu/items", `{"category_id":2,"name":"Sparkling water","price":300}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Data []models.MenuItem `json:"data"`
	}
	w = doJSON(t, r, http.MethodGet, "/menu/items?categoryId=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	require.Equal(t, "Sparkling water", resp.Data[0].Name)

	w = doJSON(t, r, http.MethodGet, "/menu/items?categoryId=abc", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMenuItemDeleteRetiresWhenOrdered(t *testing.T) {
	db := setupTestDB(t)
	r := newMenuRouter(db)

	w := doJSON(t, r, http.MethodPost, "/menu/items", `{"name":"Margherita","price":1200}`)
	require.Equal(t, http.StatusCreated, w.Code)

	require.NoError(t, db.Create(&models.Table{Number: "1", TrackingCode: "T-1"}).Error)
	require.NoError(t, db.Create(&models.Order{
		TableID:      1,
		TrackingCode: models.NewTrackingCode("order"),
		Status:       models.StatusClosed,
		Total:        1200,
	}).Error)
	require.NoError(t, db.Create(&models.OrderItem{OrderID: 1, MenuItemID: 1, Quantity: 1, PriceAtTime: 1200}).Error)

	w = doJSON(t, r, http.MethodDelete, "/menu/items/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "retired")

	// Still present for order history, just off the menu.
	var item models.MenuItem
	require.NoError(t, db.First(&item, 1).Error)
	require.False(t, item.IsAvailable)

	// An unordered item is deleted outright.
	w = doJSON(t, r, http.MethodPost, "/menu/items", `{"name":"Special","price":900}`)
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(t, r, http.MethodDelete, "/menu/items/2", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "deleted")
	require.ErrorIs(t, db.First(&models.MenuItem{}, 2).Error, gorm.ErrRecordNotFound)
}
