package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/diewo77/tap-menu/auth"
	"github.com/diewo77/tap-menu/httpx"
	"github.com/diewo77/tap-menu/internal/models"
	"github.com/diewo77/tap-menu/validation"
)

type AuthHandler struct {
	DB     *gorm.DB
	Secret string
}

func NewAuthHandler(db *gorm.DB, secret string) *AuthHandler {
	return &AuthHandler{DB: db, Secret: secret}
}

type credentialsResponse struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

// Register: POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	v := validation.Violations{}
	validation.Required("name", input.Name, v)
	validation.Required("email", input.Email, v)
	validation.Required("password", input.Password, v)
	if len(input.Password) > 0 && len(input.Password) < 8 {
		v["password"] = "too_short"
	}
	if !v.Empty() {
		httpx.JSONErrorDetails(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	var count int64
	if err := h.DB.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "registration_failed")
		return
	}
	if count > 0 {
		httpx.JSONError(w, http.StatusConflict, "email_already_registered")
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "registration_failed")
		return
	}
	user := models.User{Name: strings.TrimSpace(input.Name), Email: email, Password: string(hash)}
	if err := h.DB.Create(&user).Error; err != nil {
		if isDuplicateErr(err) {
			httpx.JSONError(w, http.StatusConflict, "email_already_registered")
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "registration_failed")
		return
	}
	token := auth.NewToken(h.Secret, user.ID, auth.TokenTTL)
	httpx.JSON(w, http.StatusCreated, credentialsResponse{User: user, Token: token})
}

// Login: POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if strings.TrimSpace(input.Email) == "" || input.Password == "" {
		httpx.JSONError(w, http.StatusBadRequest, "email_and_password_required")
		return
	}
	var user models.User
	err := h.DB.Where("email = ?", strings.ToLower(strings.TrimSpace(input.Email))).First(&user).Error
	if err != nil {
		// Same answer for unknown email and wrong password.
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)) != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials")
		return
	}
	token := auth.NewToken(h.Secret, user.ID, auth.TokenTTL)
	httpx.JSON(w, http.StatusOK, credentialsResponse{User: user, Token: token})
}

// isDuplicateErr detects unique-constraint violations across postgres and the
// sqlite test driver.
func isDuplicateErr(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint")
}
