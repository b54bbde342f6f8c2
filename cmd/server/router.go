package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/vocabquest-api/internal/api"
	apiMiddleware "github.com/phrazzld/vocabquest-api/internal/api/middleware"
)

// setupRouter builds the HTTP router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware(app.logger))

	reviewHandler := api.NewReviewHandler(app.reviewService, app.config.Review.DueLimit, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(apiMiddleware.RequireUser)
		reviewHandler.RegisterRoutes(r)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
