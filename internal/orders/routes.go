package orders

import (
	"github.com/go-chi/chi/v5"
)

func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/drafts", h.Create)
	r.Get("/drafts", h.List)
	r.Get("/drafts/{id}", h.Show)
	r.Put("/drafts/{id}/lines", h.ReplaceLines)
	r.Patch("/drafts/{id}/header", h.UpdateHeader)
	r.Delete("/drafts/{id}/lines/{order}", h.RemoveLine)
	r.Post("/drafts/{id}/validate", h.Validate)
	r.Post("/drafts/{id}/reset", h.Reset)
	r.Post("/drafts/{id}/submit", h.Submit)
	r.Delete("/drafts/{id}", h.Delete)
}
