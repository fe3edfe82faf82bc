package handlers

import "github.com/go-chi/chi/v5"

// RegisterRoutes registers all agent routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/agents", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Get("/{name}", h.HandleGet)
		r.Put("/{name}", h.HandleUpsert)
		r.Delete("/{name}", h.HandleDelete)
	})
}
