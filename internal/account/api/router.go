/**
 * @description
 * HTTP router setup for the account service using go-chi/chi.
 */
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new Chi router and registers account routes.
func NewRouter(h *Handler, internalKey string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Internal-API-Key"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Account service is healthy"))
	})

	r.Route("/accounts", func(r chi.Router) {
		r.Get("/", h.handleListAccounts)
		r.Post("/", h.handleCreateAccount)
		r.Get("/publish-stats", h.handlePublishStats)

		r.Route("/{accountNumber}", func(r chi.Router) {
			r.Get("/", h.handleGetAccount)
			r.Get("/balance", h.handleGetBalance)
			r.Put("/withdrawal", h.handleWithdraw)
			r.Put("/deposit", h.handleDeposit)
			r.Delete("/", h.handleCloseAccount)
			r.With(InternalAuthMiddleware(internalKey)).Put("/status/clear", h.handleClearOverdrawnStatus)
		})
	})

	return r
}
