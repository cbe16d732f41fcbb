package recommendation

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/parkhive/parkhive-api/internal/domain/garage"
)

const earthRadiusKm = 6371.0

// GarageSource lists the full candidate set. Price and distance are
// normalized across all garages, so partial listings would skew scores.
type GarageSource interface {
	ListAll(ctx context.Context) ([]garage.Garage, error)
}

// HistorySource reports the user's completed stays per garage.
type HistorySource interface {
	CountCompletedByGarage(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]int, error)
}

// AvailabilityReader answers free-slot queries for the requested window.
type AvailabilityReader interface {
	GetAvailability(ctx context.Context, garageID uuid.UUID, start, end time.Time) (int, error)
}

// PreferenceSource supplies the amenity tags saved on the user's profile,
// used when a request does not carry its own.
type PreferenceSource interface {
	PreferredAmenities(ctx context.Context, userID uuid.UUID) ([]string, error)
}

// RankedGarage pairs a garage with its blended score.
type RankedGarage struct {
	Garage  garage.Garage `json:"garage"`
	Score   float64       `json:"score"`
	Signals Signals       `json:"signals"`
}

type Service struct {
	garages      GarageSource
	history      HistorySource
	availability AvailabilityReader
	prefs        PreferenceSource
	cache        *redis.Client
	cacheTTL     time.Duration
}

func NewService(garages GarageSource, history HistorySource, availability AvailabilityReader) *Service {
	return &Service{
		garages:      garages,
		history:      history,
		availability: availability,
		cacheTTL:     30 * time.Second,
	}
}

// WithPreferences makes the user's saved amenity tags the default filter.
func (s *Service) WithPreferences(prefs PreferenceSource) *Service {
	s.prefs = prefs
	return s
}

// WithCache enables short-lived redis caching of ranked results. Availability
// changes constantly, so the TTL stays small.
func (s *Service) WithCache(rdb *redis.Client) *Service {
	s.cache = rdb
	return s
}

// Rank gathers the raw signals for every garage and scores them. userLat and
// userLng may be nil when the caller has no location fix.
func (s *Service) Rank(ctx context.Context, userID uuid.UUID, start, end time.Time, userLat, userLng *float64, preferredAmenities []string, weights *Weights) ([]RankedGarage, error) {
	w := DefaultWeights()
	if weights != nil {
		w = *weights
	}

	if len(preferredAmenities) == 0 && s.prefs != nil {
		saved, err := s.prefs.PreferredAmenities(ctx, userID)
		if err == nil {
			preferredAmenities = saved
		}
	}

	cacheKey := s.cacheKey(userID, start, end, userLat, userLng, preferredAmenities, w)
	if cached := s.fromCache(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	garages, err := s.garages.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(garages) == 0 {
		return []RankedGarage{}, nil
	}

	history, err := s.history.CountCompletedByGarage(ctx, userID)
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(garages))
	byID := make(map[uuid.UUID]garage.Garage, len(garages))
	for _, g := range garages {
		free, err := s.availability.GetAvailability(ctx, g.ID, start, end)
		if err != nil {
			return nil, err
		}

		distance := -1.0
		if userLat != nil && userLng != nil {
			distance = haversineKm(*userLat, *userLng, g.Latitude, g.Longitude)
		}

		candidates = append(candidates, Candidate{
			GarageID:          g.ID,
			Rating:            g.Rating,
			PricePerHourPence: g.HourlyRatePence,
			FreeSlots:         free,
			TotalSpaces:       g.TotalSpaces,
			HistoryCount:      history[g.ID],
			DistanceKm:        distance,
			Amenities:         g.Amenities,
		})
		byID[g.ID] = g
	}

	scored := Rank(candidates, preferredAmenities, w)

	out := make([]RankedGarage, 0, len(scored))
	for _, sc := range scored {
		out = append(out, RankedGarage{Garage: byID[sc.GarageID], Score: sc.Score, Signals: sc.Signals})
	}

	s.toCache(ctx, cacheKey, out)
	return out, nil
}

func (s *Service) cacheKey(userID uuid.UUID, start, end time.Time, lat, lng *float64, amenities []string, w Weights) string {
	loc := "none"
	if lat != nil && lng != nil {
		loc = fmt.Sprintf("%.4f,%.4f", *lat, *lng)
	}
	return fmt.Sprintf("reco:%s:%d:%d:%s:%v:%v", userID, start.Unix(), end.Unix(), loc, amenities, w)
}

func (s *Service) fromCache(ctx context.Context, key string) []RankedGarage {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		return nil
	}
	var out []RankedGarage
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

func (s *Service) toCache(ctx context.Context, key string, ranked []RankedGarage) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(ranked)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.cacheTTL).Err(); err != nil {
		log.Warn().Err(err).Msg("recommendation cache write failed")
	}
}

func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
