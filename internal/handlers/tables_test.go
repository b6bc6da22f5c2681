package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/diewo77/tap-menu/internal/models"
)

func newTableRouter(db *gorm.DB) *chi.Mux {
	h := NewTableHandler(db)
	r := chi.NewRouter()
	r.Get("/tables", h.List)
	r.Post("/tables", h.Create)
	r.Get("/tables/{id}", h.Get)
	r.Put("/tables/{id}", h.Update)
	r.Delete("/tables/{id}", h.Delete)
	return r
}

func TestTableCreateGeneratesTrackingCode(t *testing.T) {
	db := setupTestDB(t)
	r := newTableRouter(db)

	w := doJSON(t, r, http.MethodPost, "/tables", `{"number":"12"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Data models.Table `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "12", resp.Data.Number)
	require.True(t, strings.HasPrefix(resp.Data.TrackingCode, "table_"))

	// Client-supplied code is kept verbatim (sticker reprints).
	w = doJSON(t, r, http.MethodPost, "/tables", `{"number":"13","tracking_code":"legacy-13"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Contains(t, w.Body.String(), `"tracking_code":"legacy-13"`)
}

func TestTableCreateDuplicateNumber(t *testing.T) {
	db := setupTestDB(t)
	r := newTableRouter(db)

	w := doJSON(t, r, http.MethodPost, "/tables", `{"number":"12"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(t, r, http.MethodPost, "/tables", `{"number":"12"}`)
	require.Equal(t, http.StatusConflict, w.Code)
	require.Contains(t, w.Body.String(), "table_number_or_code_exists")

	w = doJSON(t, r, http.MethodPost, "/tables", `{"number":"  "}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTableUpdate(t *testing.T) {
	db := setupTestDB(t)
	r := newTableRouter(db)

	w := doJSON(t, r, http.MethodPost, "/tables", `{"number":"12"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPut, "/tables/1", `{"number":"12A"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"number":"12A"`)

	// Partial update leaves the tracking code untouched.
	var table models.Table
	require.NoError(t, db.First(&table, 1).Error)
	require.True(t, strings.HasPrefix(table.TrackingCode, "table_"))

	w = doJSON(t, r, http.MethodPut, "/tables/1", `{"number":""}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPut, "/tables/99", `{"number":"1"}`)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestTableDeleteGuardedByOrders(t *testing.T) {
	db := setupTestDB(t)
	r := newTableRouter(db)

	w := doJSON(t, r, http.MethodPost, "/tables", `{"number":"12"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	require.NoError(t, db.Create(&models.Order{
		TableID:      1,
		TrackingCode: models.NewTrackingCode("order"),
		Status:       models.StatusOpen,
		Total:        500,
	}).Error)

	w = doJSON(t, r, http.MethodDelete, "/tables/1", "")
	require.Equal(t, http.StatusConflict, w.Code)
	require.Contains(t, w.Body.String(), "table_has_orders")

	// An unreferenced table deletes cleanly.
	w = doJSON(t, r, http.MethodPost, "/tables", `{"number":"13"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(t, r, http.MethodDelete, "/tables/2", "")
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, r, http.MethodGet, "/tables/2", "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestTableListSortedByNumber(t *testing.T) {
	db := setupTestDB(t)
	r := newTableRouter(db)

	for _, n := range []string{"9", "3", "5"} {
		w := doJSON(t, r, http.MethodPost, "/tables", `{"number":"`+n+`"}`)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(t, r, http.MethodGet, "/tables", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data []models.Table `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 3)
	require.Equal(t, "3", resp.Data[0].Number)
	require.Equal(t, "9", resp.Data[2].Number)
}
