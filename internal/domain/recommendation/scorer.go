package recommendation

import (
	"bytes"
	"math"
	"sort"

	"github.com/google/uuid"
)

// Weights control the blend of ranking signals. They are expected to sum to
// 1.0; Rank normalizes them when they do not (and re-normalizes over the
// signals actually available for a candidate set, so a missing signal never
// silently drags every score down).
type Weights struct {
	History      float64 `json:"history"`
	Rating       float64 `json:"rating"`
	Price        float64 `json:"price"`
	Availability float64 `json:"availability"`
	Location     float64 `json:"location"`
	Amenities    float64 `json:"amenities"`
}

func DefaultWeights() Weights {
	return Weights{
		History:      0.25,
		Rating:       0.20,
		Price:        0.20,
		Availability: 0.15,
		Location:     0.10,
		Amenities:    0.10,
	}
}

func (w Weights) sum() float64 {
	return w.History + w.Rating + w.Price + w.Availability + w.Location + w.Amenities
}

// Candidate carries the raw per-garage inputs the scorer normalizes.
// DistanceKm below zero means the caller has no location fix.
type Candidate struct {
	GarageID          uuid.UUID
	Rating            float64
	PricePerHourPence int64
	FreeSlots         int
	TotalSpaces       int
	HistoryCount      int
	DistanceKm        float64
	Amenities         []string
}

// Signals is the normalized per-garage vector, each component in [0,1].
type Signals struct {
	History      float64 `json:"history"`
	Rating       float64 `json:"rating"`
	Price        float64 `json:"price"`
	Availability float64 `json:"availability"`
	Location     float64 `json:"location"`
	Amenities    float64 `json:"amenities"`
}

type Scored struct {
	GarageID uuid.UUID `json:"garage_id"`
	Score    float64   `json:"score"`
	Signals  Signals   `json:"signals"`
}

// Rank scores every candidate and returns them ordered best-first. Pure:
// identical inputs always produce an identical ordering. Ties break by
// higher raw rating, then lower price, then garage id.
func Rank(candidates []Candidate, preferredAmenities []string, w Weights) []Scored {
	if len(candidates) == 0 {
		return []Scored{}
	}

	if sum := w.sum(); sum <= 0 {
		w = DefaultWeights()
	} else if math.Abs(sum-1.0) > 1e-9 {
		w = Weights{
			History:      w.History / sum,
			Rating:       w.Rating / sum,
			Price:        w.Price / sum,
			Availability: w.Availability / sum,
			Location:     w.Location / sum,
			Amenities:    w.Amenities / sum,
		}
	}

	minPrice, maxPrice := priceBounds(candidates)
	minDist, maxDist, haveLocation := distanceBounds(candidates)
	maxHistory := 0
	for _, c := range candidates {
		if c.HistoryCount > maxHistory {
			maxHistory = c.HistoryCount
		}
	}
	haveAmenityPrefs := len(preferredAmenities) > 0

	// weights for unavailable signals are redistributed over the rest
	effective := w
	if !haveLocation {
		effective.Location = 0
	}
	if !haveAmenityPrefs {
		effective.Amenities = 0
	}
	if sum := effective.sum(); sum > 0 && math.Abs(sum-1.0) > 1e-9 {
		effective = Weights{
			History:      effective.History / sum,
			Rating:       effective.Rating / sum,
			Price:        effective.Price / sum,
			Availability: effective.Availability / sum,
			Location:     effective.Location / sum,
			Amenities:    effective.Amenities / sum,
		}
	}

	out := make([]Scored, 0, len(candidates))
	for _, c := range candidates {
		s := Signals{
			Rating: clamp01(c.Rating / 5.0),
			Price:  minMaxInverted(float64(c.PricePerHourPence), minPrice, maxPrice),
		}
		if c.TotalSpaces > 0 {
			s.Availability = clamp01(float64(c.FreeSlots) / float64(c.TotalSpaces))
		}
		if maxHistory > 0 {
			s.History = float64(c.HistoryCount) / float64(maxHistory)
		}
		if haveLocation {
			s.Location = minMaxInverted(c.DistanceKm, minDist, maxDist)
		}
		if haveAmenityPrefs {
			s.Amenities = jaccard(preferredAmenities, c.Amenities)
		}

		score := effective.History*s.History +
			effective.Rating*s.Rating +
			effective.Price*s.Price +
			effective.Availability*s.Availability +
			effective.Location*s.Location +
			effective.Amenities*s.Amenities

		out = append(out, Scored{GarageID: c.GarageID, Score: score, Signals: s})
	}

	byID := make(map[uuid.UUID]Candidate, len(candidates))
	for _, c := range candidates {
		byID[c.GarageID] = c
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		ca, cb := byID[a.GarageID], byID[b.GarageID]
		if ca.Rating != cb.Rating {
			return ca.Rating > cb.Rating
		}
		if ca.PricePerHourPence != cb.PricePerHourPence {
			return ca.PricePerHourPence < cb.PricePerHourPence
		}
		return bytes.Compare(a.GarageID[:], b.GarageID[:]) < 0
	})

	return out
}

func priceBounds(candidates []Candidate) (float64, float64) {
	minP := float64(candidates[0].PricePerHourPence)
	maxP := minP
	for _, c := range candidates[1:] {
		p := float64(c.PricePerHourPence)
		if p < minP {
			minP = p
		}
		if p > maxP {
			maxP = p
		}
	}
	return minP, maxP
}

func distanceBounds(candidates []Candidate) (float64, float64, bool) {
	minD, maxD := math.Inf(1), math.Inf(-1)
	for _, c := range candidates {
		if c.DistanceKm < 0 {
			return 0, 0, false
		}
		if c.DistanceKm < minD {
			minD = c.DistanceKm
		}
		if c.DistanceKm > maxD {
			maxD = c.DistanceKm
		}
	}
	return minD, maxD, true
}

// minMaxInverted maps lower values to higher scores over [min,max].
// A degenerate range scores 1 for everyone.
func minMaxInverted(value, min, max float64) float64 {
	if max <= min {
		return 1
	}
	return clamp01(1 - (value-min)/(max-min))
}

func jaccard(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(a))
	for _, item := range a {
		set[item] = struct{}{}
	}
	intersection := 0
	union := len(set)
	seen := make(map[string]struct{}, len(b))
	for _, item := range b {
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		if _, ok := set[item]; ok {
			intersection++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
