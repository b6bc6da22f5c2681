package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/diewo77/tap-menu/httpx"
)

const (
	qrMinSize     = 64
	qrMaxSize     = 1024
	qrDefaultSize = 256
)

// QRHandler renders PNG QR codes pointing at the frontend's table and order
// pages. The encoded content is a URL, not the raw tracking code, so any
// phone camera lands the customer on the right page directly.
type QRHandler struct {
	FrontendURL string
}

func NewQRHandler(frontendURL string) *QRHandler {
	return &QRHandler{FrontendURL: frontendURL}
}

// Table: GET /qr/table/{code}.png — printed once and stuck on the table, so
// it may be cached.
func (h *QRHandler) Table(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" || len(code) > 200 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_tracking_code")
		return
	}
	h.render(w, r, h.FrontendURL+"/table/"+code, "public, max-age=3600")
}

// Order: GET /qr/order/{code}.png — shown on the confirmation screen;
// never cached.
func (h *QRHandler) Order(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" || len(code) > 200 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_tracking_code")
		return
	}
	h.render(w, r, h.FrontendURL+"/order/"+code, "no-store")
}

func (h *QRHandler) render(w http.ResponseWriter, r *http.Request, url, cacheControl string) {
	size := parseQRSize(r.URL.Query().Get("size"))
	png, err := qrcode.Encode(url, qrcode.Medium, size)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "qr_generation_failed")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", cacheControl)
	_, _ = w.Write(png)
}

// parseQRSize clamps the requested pixel size into [64, 1024].
func parseQRSize(raw string) int {
	if raw == "" {
		return qrDefaultSize
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return qrDefaultSize
	}
	if n < qrMinSize {
		return qrMinSize
	}
	if n > qrMaxSize {
		return qrMaxSize
	}
	return n
}
