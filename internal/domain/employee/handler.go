package employee

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/parkhive/parkhive-api/internal/pkg/response"
	"github.com/parkhive/parkhive-api/internal/pkg/validator"
)

type Handler struct {
	repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
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

	now := time.Now().UTC()
	e := &Employee{
		ID:              uuid.New(),
		GarageID:        garageID,
		FullName:        req.FullName,
		Email:           req.Email,
		Position:        Position(req.Position),
		HourlyWagePence: req.HourlyWagePence,
		HiredAt:         req.HiredAt,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := h.repo.Create(r.Context(), e); err != nil {
		response.InternalError(w)
		return
	}
	response.Created(w, e)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid employee id")
		return
	}

	e, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		response.InternalError(w)
		return
	}
	if e == nil {
		response.NotFound(w, "employee not found")
		return
	}
	response.OK(w, e)
}

// ListByGarage handles GET /employees?garage_id=...
func (h *Handler) ListByGarage(w http.ResponseWriter, r *http.Request) {
	garageID, err := uuid.Parse(r.URL.Query().Get("garage_id"))
	if err != nil {
		response.BadRequest(w, "garage_id query parameter is required")
		return
	}

	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	employees, err := h.repo.ListByGarage(r.Context(), garageID, limit, offset)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, employees)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid employee id")
		return
	}

	var req UpdateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	e, err := h.repo.Update(r.Context(), id, req)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "employee not found")
			return
		}
		response.InternalError(w)
		return
	}
	response.OK(w, e)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid employee id")
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "employee not found")
			return
		}
		response.InternalError(w)
		return
	}
	response.NoContent(w)
}

// Routes mounts the staff endpoints; all of them are manager-only.
func (h *Handler) Routes(managerOnly func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(managerOnly)
	r.Post("/", h.Create)
	r.Get("/", h.ListByGarage)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
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
