package garage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/parkhive/parkhive-api/internal/domain/reservation"
	"github.com/parkhive/parkhive-api/internal/pkg/response"
	"github.com/parkhive/parkhive-api/internal/pkg/validator"
)

const maxPhotoBytes = 10 << 20

// AvailabilityService answers free-slot queries. Implemented by the
// reservation service.
type AvailabilityService interface {
	GetAvailability(ctx context.Context, garageID uuid.UUID, start, end time.Time) (int, error)
}

// PhotoStore persists garage photos and returns a public URL.
type PhotoStore interface {
	UploadGaragePhoto(ctx context.Context, garageID uuid.UUID, data []byte, contentType string) (string, error)
}

type Handler struct {
	repo         *Repository
	availability AvailabilityService
	hub          *Hub
	photos       PhotoStore
}

func NewHandler(repo *Repository, availability AvailabilityService, hub *Hub, photos PhotoStore) *Handler {
	return &Handler{repo: repo, availability: availability, hub: hub, photos: photos}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	garages, err := h.repo.List(r.Context(), limit, offset)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, garages)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid garage id")
		return
	}

	g, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		response.InternalError(w)
		return
	}
	if g == nil {
		response.NotFound(w, "garage not found")
		return
	}
	response.OK(w, g)
}

// GetAvailability reports free spaces for ?starts_at=...&ends_at=... (RFC 3339).
func (h *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid garage id")
		return
	}

	start, err := time.Parse(time.RFC3339, r.URL.Query().Get("starts_at"))
	if err != nil {
		response.BadRequest(w, "starts_at must be RFC 3339")
		return
	}
	end, err := time.Parse(time.RFC3339, r.URL.Query().Get("ends_at"))
	if err != nil {
		response.BadRequest(w, "ends_at must be RFC 3339")
		return
	}

	free, err := h.availability.GetAvailability(r.Context(), id, start, end)
	if err != nil {
		switch {
		case errors.Is(err, reservation.ErrInvalidWindow):
			response.Error(w, http.StatusUnprocessableEntity, "INVALID_WINDOW", err.Error())
		case errors.Is(err, reservation.ErrGarageNotFound):
			response.NotFound(w, "garage not found")
		default:
			response.InternalError(w)
		}
		return
	}

	response.OK(w, map[string]interface{}{
		"garage_id":  id,
		"starts_at":  start,
		"ends_at":    end,
		"free_slots": free,
	})
}

// Live streams availability updates for one garage over a websocket.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid garage id")
		return
	}
	h.hub.ServeLive(w, r, id)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateGarageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	now := time.Now().UTC()
	g := &Garage{
		ID:              uuid.New(),
		Name:            req.Name,
		Address:         req.Address,
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		TotalSpaces:     req.TotalSpaces,
		HourlyRatePence: req.HourlyRatePence,
		Amenities:       req.Amenities,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := h.repo.Create(r.Context(), g); err != nil {
		response.InternalError(w)
		return
	}
	response.Created(w, g)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid garage id")
		return
	}

	var req UpdateGarageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	g, err := h.repo.Update(r.Context(), id, req)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "garage not found")
			return
		}
		response.InternalError(w)
		return
	}
	response.OK(w, g)
}

// UploadPhoto accepts a multipart "photo" field, resizes it and stores it.
func (h *Handler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid garage id")
		return
	}

	if h.photos == nil {
		response.ServiceUnavailable(w, "photo storage is not configured")
		return
	}

	if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
		response.BadRequest(w, "invalid multipart body")
		return
	}
	file, header, err := r.FormFile("photo")
	if err != nil {
		response.BadRequest(w, "photo field is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxPhotoBytes))
	if err != nil {
		response.InternalError(w)
		return
	}

	url, err := h.photos.UploadGaragePhoto(r.Context(), id, data, header.Header.Get("Content-Type"))
	if err != nil {
		response.Error(w, http.StatusUnprocessableEntity, "INVALID_PHOTO", "photo could not be processed")
		return
	}

	if err := h.repo.SetPhotoURL(r.Context(), id, url); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "garage not found")
			return
		}
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]string{"photo_url": url})
}

// Routes mounts public endpoints; manager endpoints are guarded separately.
func (h *Handler) Routes(managerOnly func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Get("/{id}/availability", h.GetAvailability)
	r.Get("/{id}/live", h.Live)

	r.Group(func(r chi.Router) {
		r.Use(managerOnly)
		r.Post("/", h.Create)
		r.Patch("/{id}", h.Update)
		r.Post("/{id}/photo", h.UploadPhoto)
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
