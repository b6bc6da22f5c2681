package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/diewo77/tap-menu/httpx"
	"github.com/diewo77/tap-menu/internal/models"
	"github.com/diewo77/tap-menu/validation"
)

// MenuHandler: category and item management. Reads are public (customers
// browse the menu), writes are mounted behind RequireAuth.
type MenuHandler struct {
	DB *gorm.DB
}

func NewMenuHandler(db *gorm.DB) *MenuHandler { return &MenuHandler{DB: db} }

// ListCategories: GET /menu/categories
func (h *MenuHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	var categories []models.MenuCategory
	if err := h.DB.Order("name asc").Find(&categories).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_categories")
		return
	}
	httpx.JSON(w, http.StatusOK, categories)
}

// GetCategory: GET /menu/categories/{id}
func (h *MenuHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id")
		return
	}
	var category models.MenuCategory
	if err := h.DB.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "category_not_found")
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_category")
		return
	}
	httpx.JSON(w, http.StatusOK, category)
}

// CreateCategory: POST /menu/categories
func (h *MenuHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	v := validation.Violations{}
	validation.Required("name", input.Name, v)
	if !v.Empty() {
		httpx.JSONErrorDetails(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	category := models.MenuCategory{Name: strings.TrimSpace(input.Name), Description: input.Description}
	if err := h.DB.Create(&category).Error; err != nil {
		if isDuplicateErr(err) {
			httpx.JSONError(w, http.StatusConflict, "category_name_exists")
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_category")
		return
	}
	httpx.JSON(w, http.StatusCreated, category)
}

// UpdateCategory: PUT /menu/categories/{id}
func (h *MenuHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id")
		return
	}
	var category models.MenuCategory
	if err := h.DB.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "category_not_found")
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_category")
		return
	}
	var input struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if input.Name != nil {
		category.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		category.Description = *input.Description
	}
	if category.Name == "" {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed")
		return
	}
	if err := h.DB.Save(&category).Error; err != nil {
		if isDuplicateErr(err) {
			httpx.JSONError(w, http.StatusConflict, "category_name_exists")
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_category")
		return
	}
	httpx.JSON(w, http.StatusOK, category)
}

// DeleteCategory: DELETE /menu/categories/{id}. Items keep existing with a
// dangling-free nullable category: they are detached, not deleted.
func (h *MenuHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id")
		return
	}
	var category models.MenuCategory
	if err := h.DB.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "category_not_found")
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_category")
		return
	}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.MenuItem{}).Where("category_id = ?", category.ID).Update("category_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&category).Error
	})
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_category")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": category.ID})
}

// ListItems: GET /menu/items?categoryId=
func (h *MenuHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	q := h.DB.Order("id asc")
	if raw := r.URL.Query().Get("categoryId"); raw != "" {
		categoryID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_category_id")
			return
		}
		q = q.Where("category_id = ?", uint(categoryID))
	}
	var items []models.MenuItem
	if err := q.Find(&items).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_items")
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}

// GetItem: GET /menu/items/{id}
func (h *MenuHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id")
		return
	}
	var item models.MenuItem
	if err := h.DB.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "menu_item_not_found")
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_item")
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

type menuItemInput struct {
	CategoryID  *uint  `json:"category_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	ImageURL    string `json:"image_url"`
	IsAvailable *bool  `json:"is_available"`
}

// CreateItem: POST /menu/items
func (h *MenuHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var input menuItemInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	v := validation.Violations{}
	validation.Required("name", input.Name, v)
	validation.PositiveInt("price", input.Price, v)
	if !v.Empty() {
		httpx.JSONErrorDetails(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	if input.CategoryID != nil {
		var count int64
		if err := h.DB.Model(&models.MenuCategory{}).Where("id = ?", *input.CategoryID).Count(&count).Error; err != nil || count == 0 {
			httpx.JSONError(w, http.StatusBadRequest, "category_not_found")
			return
		}
	}
	item := models.MenuItem{
		CategoryID:  input.CategoryID,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Price:       input.Price,
		ImageURL:    input.ImageURL,
		IsAvailable: true,
	}
	if input.IsAvailable != nil {
		item.IsAvailable = *input.IsAvailable
	}
	if err := h.DB.Create(&item).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_item")
		return
	}
	httpx.JSON(w, http.StatusCreated, item)
}

// UpdateItem: PUT /menu/items/{id}. Price changes never touch existing
// orders; their items keep the snapshot taken at order time.
func (h *MenuHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id")
		return
	}
	var item models.MenuItem
	if err := h.DB.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "menu_item_not_found")
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_item")
		return
	}
	var input struct {
		CategoryID  *uint   `json:"category_id"`
		Name        *string `json:"name"`
		Description *string `json:"description"`
		Price       *int64  `json:"price"`
		ImageURL    *string `json:"image_url"`
		IsAvailable *bool   `json:"is_available"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if input.CategoryID != nil {
		var count int64
		if err := h.DB.Model(&models.MenuCategory{}).Where("id = ?", *input.CategoryID).Count(&count).Error; err != nil || count == 0 {
			httpx.JSONError(w, http.StatusBadRequest, "category_not_found")
			return
		}
		item.CategoryID = input.CategoryID
	}
	if input.Name != nil {
		item.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		item.Description = *input.Description
	}
	if input.Price != nil {
		if *input.Price <= 0 {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed")
			return
		}
		item.Price = *input.Price
	}
	if input.ImageURL != nil {
		item.ImageURL = *input.ImageURL
	}
	if input.IsAvailable != nil {
		item.IsAvailable = *input.IsAvailable
	}
	if item.Name == "" {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed")
		return
	}
	if err := h.DB.Save(&item).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_item")
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

// DeleteItem: DELETE /menu/items/{id}. Existing order items reference the
// menu item by id but carry their own price snapshot, so history survives.
func (h *MenuHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id")
		return
	}
	var item models.MenuItem
	if err := h.DB.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "menu_item_not_found")
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_item")
		return
	}
	var refCount int64
	if err := h.DB.Model(&models.OrderItem{}).Where("menu_item_id = ?", item.ID).Count(&refCount).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_item")
		return
	}
	if refCount > 0 {
		// Referenced by order history: mark unavailable instead of deleting.
		if err := h.DB.Model(&item).Update("is_available", false).Error; err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_item")
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{"retired": item.ID})
		return
	}
	if err := h.DB.Delete(&item).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_item")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": item.ID})
}
