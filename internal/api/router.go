package api

import (
	"log/slog"
	"net/http"

	"github.com/dom/musikkhylla/internal/api/handlers"
	"github.com/dom/musikkhylla/internal/api/middleware"
	"github.com/dom/musikkhylla/internal/config"
	"github.com/dom/musikkhylla/internal/metrics"
	"github.com/dom/musikkhylla/internal/service"
	"github.com/dom/musikkhylla/internal/websocket"
	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(services *service.Services, hub *websocket.Hub, m *metrics.Metrics, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.RequestLogger(slog.Default()))
	r.Use(chiMiddleware.Recoverer)
	r.Use(sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	if m != nil {
		r.Use(m.Middleware)
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(services.Auth)
	albumHandler := handlers.NewAlbumHandler(services.Albums)
	wsHandler := handlers.NewWebSocketHandler(hub, services.Auth, cfg.CORSOrigins)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Health)
		if m != nil {
			r.Method(http.MethodGet, "/metrics", m.Handler())
		}

		r.Route("/auth", func(r chi.Router) {
			r.Post("/request-code", authHandler.RequestCode)
			r.Post("/verify-code", authHandler.VerifyCode)

			// Protected auth routes
			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(services.Auth))
				r.Get("/me", authHandler.Me)
				r.Delete("/me", authHandler.DeleteMe)
			})
		})

		r.Route("/albums", func(r chi.Router) {
			r.Use(middleware.Auth(services.Auth))
			r.Get("/", albumHandler.List)
			r.Post("/", albumHandler.Create)
			r.Post("/reorder", albumHandler.Reorder)
			r.Put("/{id}", albumHandler.Update)
			r.Delete("/{id}", albumHandler.Delete)
		})

		// WebSocket endpoint
		r.Get("/ws", wsHandler.Handle)
	})

	return r
}
