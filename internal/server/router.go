package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/diewo77/tap-menu/auth"
	"github.com/diewo77/tap-menu/httpx"
	"github.com/diewo77/tap-menu/internal/config"
	"github.com/diewo77/tap-menu/internal/handlers"
	"github.com/diewo77/tap-menu/internal/models"
	"github.com/diewo77/tap-menu/internal/services"
)

// New constructs the root handler with all routes and middlewares applied.
func New(db *gorm.DB, cfg config.Config, logger *zerolog.Logger) http.Handler {
	// Tokens only work while their user still exists.
	auth.SetUserVerifier(func(_ context.Context, uid uint) bool {
		var count int64
		if err := db.Model(&models.User{}).Where("id = ?", uid).Limit(1).Count(&count).Error; err != nil {
			return false
		}
		return count > 0
	})

	authHandler := handlers.NewAuthHandler(db, cfg.TokenSecret)
	tableHandler := handlers.NewTableHandler(db)
	menuHandler := handlers.NewMenuHandler(db)
	orderHandler := handlers.NewOrderHandler(services.NewOrderService(db))
	qrHandler := handlers.NewQRHandler(cfg.FrontendURL)

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{cfg.FrontendURL},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(requestLogger(logger))
	r.Use(auth.Middleware(cfg.TokenSecret))

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]any{
			"message":     "Tap Menu API is running!",
			"environment": cfg.Env,
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
		})
	})
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSONError(w, http.StatusServiceUnavailable, "degraded")
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
	})

	r.Route("/tables", func(r chi.Router) {
		r.Use(auth.RequireAuth)
		r.Get("/", tableHandler.List)
		r.Post("/", tableHandler.Create)
		r.Get("/{id}", tableHandler.Get)
		r.Put("/{id}", tableHandler.Update)
		r.Delete("/{id}", tableHandler.Delete)
	})

	r.Route("/menu", func(r chi.Router) {
		// Reads are public: customers browse without logging in.
		r.Get("/categories", menuHandler.ListCategories)
		r.Get("/categories/{id}", menuHandler.GetCategory)
		r.Get("/items", menuHandler.ListItems)
		r.Get("/items/{id}", menuHandler.GetItem)
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth)
			r.Post("/categories", menuHandler.CreateCategory)
			r.Put("/categories/{id}", menuHandler.UpdateCategory)
			r.Delete("/categories/{id}", menuHandler.DeleteCategory)
			r.Post("/items", menuHandler.CreateItem)
			r.Put("/items/{id}", menuHandler.UpdateItem)
			r.Delete("/items/{id}", menuHandler.DeleteItem)
		})
	})

	r.Route("/orders", func(r chi.Router) {
		r.Post("/", orderHandler.Create)
		r.Get("/qr/{code}", orderHandler.GetByTrackingCode)
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth)
			r.Get("/", orderHandler.List)
			r.Get("/{id}", orderHandler.Get)
			r.Patch("/{id}/status", orderHandler.UpdateStatus)
		})
	})

	r.Route("/qr", func(r chi.Router) {
		r.Get("/table/{code}.png", qrHandler.Table)
		r.Get("/order/{code}.png", qrHandler.Order)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSONError(w, http.StatusNotFound, "not_found")
	})

	return r
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// requestLogger logs every request and converts panics into a JSON 500.
func requestLogger(logger *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			defer func() {
				if err := recover(); err != nil {
					logger.Error().
						Str("method", r.Method).
						Str("path", r.URL.Path).
						Any("panic", err).
						Msg("request panicked")
					httpx.JSONError(w, http.StatusInternalServerError, "internal_error")
					return
				}
				logger.Info().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Int("status", rec.status).
					Dur("duration", time.Since(start)).
					Msg("request completed")
			}()
			next.ServeHTTP(rec, r)
		})
	}
}
