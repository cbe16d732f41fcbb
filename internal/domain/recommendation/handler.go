package recommendation

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/parkhive/parkhive-api/internal/domain/reservation"
	"github.com/parkhive/parkhive-api/internal/middleware"
	"github.com/parkhive/parkhive-api/internal/pkg/response"
	"github.com/parkhive/parkhive-api/internal/pkg/validator"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Rank returns garages ordered best-first for the requesting user.
func (h *Handler) Rank(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req RankRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}
	if (req.Latitude == nil) != (req.Longitude == nil) {
		response.BadRequest(w, "latitude and longitude must be provided together")
		return
	}

	ranked, err := h.svc.Rank(r.Context(), userID, req.StartsAt, req.EndsAt, req.Latitude, req.Longitude, req.Amenities, req.Weights)
	if err != nil {
		if errors.Is(err, reservation.ErrInvalidWindow) {
			response.Error(w, http.StatusUnprocessableEntity, "INVALID_WINDOW", err.Error())
			return
		}
		response.InternalError(w)
		return
	}

	response.OK(w, ranked)
}

func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Post("/", h.Rank)
	return r
}
