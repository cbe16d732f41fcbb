package review

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

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

// Create handles POST /garages/{garageID}/reviews
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	garageID, err := uuid.Parse(chi.URLParam(r, "garageID"))
	if err != nil {
		response.BadRequest(w, "invalid garage id")
		return
	}

	var req CreateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	rev, err := h.svc.Create(r.Context(), userID, garageID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoCompletedStay):
			response.Forbidden(w, "reviews require a completed stay at this garage")
		case errors.Is(err, ErrAlreadyReviewed):
			response.Conflict(w, "you have already reviewed this garage")
		default:
			response.InternalError(w)
		}
		return
	}

	response.Created(w, rev)
}

// List handles GET /garages/{garageID}/reviews
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	garageID, err := uuid.Parse(chi.URLParam(r, "garageID"))
	if err != nil {
		response.BadRequest(w, "invalid garage id")
		return
	}

	limit := queryInt(r, "limit", 20)
	offset := queryInt(r, "offset", 0)

	reviews, err := h.svc.ListByGarage(r.Context(), garageID, limit, offset)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, reviews)
}

func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/", h.Create)
	})
	return r
}

func queryInt(r *http.Request, key string, defaultValue int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return defaultValue
	}
	return value
}
