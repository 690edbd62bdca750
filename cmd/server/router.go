package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/phrazzld/account-api/internal/api"
	apiMiddleware "github.com/phrazzld/account-api/internal/api/middleware"
	"github.com/phrazzld/account-api/internal/platform/metrics"
)

// setupRouter creates the router with all middleware and routes.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.Tracing)
	r.Use(apiMiddleware.TraceMiddleware)
	r.Use(apiMiddleware.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   app.config.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{apiMiddleware.TraceIDHeader, "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if app.httpMetrics != nil {
		r.Use(app.httpMetrics.Middleware)
	}

	userHandler := api.NewUserHandler(app.userService, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		r.Post("/users", userHandler.SignUp)
		r.Post("/users/login", userHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/users", userHandler.ListUsers)
			r.Get("/users/me", userHandler.GetMe)
			r.Get("/users/lookup", userHandler.LookupUserID)
			r.Patch("/users/{id}/dormant", userHandler.MarkDormant)
			r.Patch("/users/{id}/deleted", userHandler.MarkDeleted)
			r.Patch("/users/{id}/nickname", userHandler.ModifyNickname)
			r.Patch("/users/{id}/phone-number", userHandler.ModifyPhoneNumber)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})
	if app.registry != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(app.registry))
	}

	return r
}
