package httpx

import (
	"encoding/json"
	"net/http"
)

// Response envelope shared by every endpoint: {"success":true,"data":...} on
// success, {"success":false,"error":"..."} on failure.
type SuccessResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func JSON(w http.ResponseWriter, status int, data any) {
	write(w, status, SuccessResponse{Success: true, Data: data})
}

func JSONError(w http.ResponseWriter, status int, msg string) {
	write(w, status, ErrorResponse{Success: false, Error: msg})
}

func JSONErrorDetails(w http.ResponseWriter, status int, msg string, details any) {
	write(w, status, ErrorResponse{Success: false, Error: msg, Details: details})
}

func write(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	body, err := json.Marshal(payload)
	if err != nil {
		// best-effort error response; avoid writing partial JSON
		http.Error(w, `{"success":false,"error":"encode_error"}`, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		// nothing we can do at this point
		_ = err
	}
}
