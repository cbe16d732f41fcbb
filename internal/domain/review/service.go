package review

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Store is the persistence seam, implemented by Repository.
type Store interface {
	Create(ctx context.Context, rev *Review) error
	ListByGarage(ctx context.Context, garageID uuid.UUID, limit, offset int) ([]Review, error)
	HasCompletedStay(ctx context.Context, userID, garageID uuid.UUID) (bool, error)
}

// RatingUpdater refreshes the garage's cached average rating.
type RatingUpdater interface {
	UpdateRating(ctx context.Context, garageID uuid.UUID) error
}

type Service struct {
	store   Store
	ratings RatingUpdater
}

func NewService(store Store, ratings RatingUpdater) *Service {
	return &Service{store: store, ratings: ratings}
}

// Create records a review for a garage the user has actually visited and
// refreshes the garage's average rating.
func (s *Service) Create(ctx context.Context, userID, garageID uuid.UUID, req CreateReviewRequest) (*Review, error) {
	visited, err := s.store.HasCompletedStay(ctx, userID, garageID)
	if err != nil {
		return nil, err
	}
	if !visited {
		return nil, ErrNoCompletedStay
	}

	now := time.Now().UTC()
	rev := &Review{
		ID:        uuid.New(),
		GarageID:  garageID,
		UserID:    userID,
		Rating:    req.Rating,
		Comment:   req.Comment,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Create(ctx, rev); err != nil {
		return nil, err
	}

	if s.ratings != nil {
		if err := s.ratings.UpdateRating(ctx, garageID); err != nil {
			log.Error().Err(err).Str("garage_id", garageID.String()).Msg("rating refresh failed")
		}
	}

	return rev, nil
}

func (s *Service) ListByGarage(ctx context.Context, garageID uuid.UUID, limit, offset int) ([]Review, error) {
	return s.store.ListByGarage(ctx, garageID, limit, offset)
}
