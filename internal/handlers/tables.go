package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/diewo77/tap-menu/httpx"
	"github.com/diewo77/tap-menu/internal/models"
	"github.com/diewo77/tap-menu/validation"
)

// TableHandler: staff CRUD for dining tables.
type TableHandler struct {
	DB *gorm.DB
}

func NewTableHandler(db *gorm.DB) *TableHandler { return &TableHandler{DB: db} }

// List: GET /tables
func (h *TableHandler) List(w http.ResponseWriter, r *http.Request) {
	var tables []models.Table
	if err := h.DB.Order("number asc").Find(&tables).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_tables")
		return
	}
	httpx.JSON(w, http.StatusOK, tables)
}

// Get: GET /tables/{id}
func (h *TableHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id")
		return
	}
	var table models.Table
	if err := h.DB.First(&table, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "table_not_found")
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_table")
		return
	}
	httpx.JSON(w, http.StatusOK, table)
}

// Create: POST /tables. A tracking code is generated unless the client
// supplies one (re-printing an existing physical sticker).
func (h *TableHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Number       string `json:"number"`
		TrackingCode string `json:"tracking_code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	v := validation.Violations{}
	validation.Required("number", input.Number, v)
	if !v.Empty() {
		httpx.JSONErrorDetails(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	code := strings.TrimSpace(input.TrackingCode)
	if code == "" {
		code = models.NewTrackingCode("table")
	}
	table := models.Table{Number: strings.TrimSpace(input.Number), TrackingCode: code}
	if err := h.DB.Create(&table).Error; err != nil {
		if isDuplicateErr(err) {
			httpx.JSONError(w, http.StatusConflict, "table_number_or_code_exists")
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_table")
		return
	}
	httpx.JSON(w, http.StatusCreated, table)
}

// Update: PUT /tables/{id}. Relabeling only; orders referencing the table are
// unaffected.
func (h *TableHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id")
		return
	}
	var table models.Table
	if err := h.DB.First(&table, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "table_not_found")
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_table")
		return
	}
	var input struct {
		Number       *string `json:"number"`
		TrackingCode *string `json:"tracking_code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if input.Number != nil {
		table.Number = strings.TrimSpace(*input.Number)
	}
	if input.TrackingCode != nil {
		table.TrackingCode = strings.TrimSpace(*input.TrackingCode)
	}
	if table.Number == "" || table.TrackingCode == "" {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed")
		return
	}
	if err := h.DB.Save(&table).Error; err != nil {
		if isDuplicateErr(err) {
			httpx.JSONError(w, http.StatusConflict, "table_number_or_code_exists")
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_table")
		return
	}
	httpx.JSON(w, http.StatusOK, table)
}

// Delete: DELETE /tables/{id}. A table referenced by orders cannot be
// deleted; orders keep their table reference forever.
func (h *TableHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id")
		return
	}
	var table models.Table
	if err := h.DB.First(&table, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "table_not_found")
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_table")
		return
	}
	var orderCount int64
	if err := h.DB.Model(&models.Order{}).Where("table_id = ?", table.ID).Count(&orderCount).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_table")
		return
	}
	if orderCount > 0 {
		httpx.JSONError(w, http.StatusConflict, "table_has_orders")
		return
	}
	if err := h.DB.Delete(&table).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_table")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": table.ID})
}

// pathID parses the {id} chi route parameter.
func pathID(r *http.Request) (uint, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
