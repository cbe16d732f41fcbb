package dashboard

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/parkhive/parkhive-api/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Stats handles GET /dashboard/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.GetStats(r.Context())
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, stats)
}

// Occupancy handles GET /dashboard/occupancy
func (h *Handler) Occupancy(w http.ResponseWriter, r *http.Request) {
	occupancy, err := h.svc.GetOccupancy(r.Context())
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, occupancy)
}

// Routes mounts the reporting endpoints; admin only.
func (h *Handler) Routes(adminOnly func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(adminOnly)
	r.Get("/stats", h.Stats)
	r.Get("/occupancy", h.Occupancy)
	return r
}
