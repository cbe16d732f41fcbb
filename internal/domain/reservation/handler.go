package reservation

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

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req CreateReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	garageID, err := uuid.Parse(req.GarageID)
	if err != nil {
		response.BadRequest(w, "invalid garage_id")
		return
	}

	res, err := h.svc.Create(r.Context(), userID, garageID, req.StartsAt, req.EndsAt)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Created(w, res)
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid reservation id")
		return
	}

	if err := h.svc.Cancel(r.Context(), id, userID); err != nil {
		h.writeError(w, err)
		return
	}

	response.NoContent(w)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid reservation id")
		return
	}

	res, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if res.UserID != userID && middleware.GetRole(r.Context()) == "customer" {
		response.Forbidden(w, "not your reservation")
		return
	}

	response.OK(w, res)
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	limit := queryInt(r, "limit", 20)
	offset := queryInt(r, "offset", 0)

	reservations, err := h.svc.ListByUser(r.Context(), userID, limit, offset)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, reservations)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidWindow):
		response.Error(w, http.StatusUnprocessableEntity, "INVALID_WINDOW", err.Error())
	case errors.Is(err, ErrGarageNotFound):
		response.NotFound(w, "garage not found")
	case errors.Is(err, ErrNotFound):
		response.NotFound(w, "reservation not found")
	case errors.Is(err, ErrNoCapacity):
		response.Conflict(w, "garage is fully booked for the requested window")
	case errors.Is(err, ErrBusy):
		response.ServiceUnavailable(w, "garage is busy, please retry")
	case errors.Is(err, ErrForbidden):
		response.Forbidden(w, "not allowed to act on this reservation")
	case errors.Is(err, ErrNotCancellable):
		response.Conflict(w, "reservation can no longer be cancelled")
	default:
		response.InternalError(w)
	}
}

func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Post("/", h.Create)
	r.Get("/", h.ListMine)
	r.Get("/{id}", h.Get)
	r.Delete("/{id}", h.Cancel)
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
