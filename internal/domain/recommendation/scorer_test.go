package recommendation

import (
	"math"
	"testing"

	"github.com/google/uuid"
)

func approx(t *testing.T, got, want float64, label string) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s: got %v, want %v", label, got, want)
	}
}

func TestRankTieBreaksByGarageID(t *testing.T) {
	low := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	high := uuid.MustParse("ffffffff-ffff-ffff-ffff-ffffffffffff")

	// identical signals everywhere, only the ids differ
	candidate := func(id uuid.UUID) Candidate {
		return Candidate{
			GarageID:          id,
			Rating:            4.0,
			PricePerHourPence: 500,
			FreeSlots:         3,
			TotalSpaces:       10,
			HistoryCount:      1,
			DistanceKm:        2.0,
			Amenities:         []string{"cctv"},
		}
	}

	ranked := Rank([]Candidate{candidate(high), candidate(low)}, []string{"cctv"}, DefaultWeights())
	if len(ranked) != 2 {
		t.Fatalf("expected 2 results, got %d", len(ranked))
	}
	if ranked[0].GarageID != low {
		t.Fatalf("expected lower garage id first, got %s", ranked[0].GarageID)
	}
}

func TestRankDeterministic(t *testing.T) {
	candidates := []Candidate{
		{GarageID: uuid.MustParse("00000000-0000-0000-0000-000000000003"), Rating: 4.5, PricePerHourPence: 700, FreeSlots: 2, TotalSpaces: 5, DistanceKm: 1.2, Amenities: []string{"covered", "cctv"}},
		{GarageID: uuid.MustParse("00000000-0000-0000-0000-000000000001"), Rating: 3.0, PricePerHourPence: 300, FreeSlots: 5, TotalSpaces: 5, DistanceKm: 4.0, Amenities: []string{"valet"}},
		{GarageID: uuid.MustParse("00000000-0000-0000-0000-000000000002"), Rating: 5.0, PricePerHourPence: 900, FreeSlots: 0, TotalSpaces: 8, DistanceKm: 0.5, Amenities: nil},
	}
	prefs := []string{"covered"}

	first := Rank(candidates, prefs, DefaultWeights())
	for i := 0; i < 50; i++ {
		again := Rank(candidates, prefs, DefaultWeights())
		for j := range first {
			if first[j].GarageID != again[j].GarageID || first[j].Score != again[j].Score {
				t.Fatalf("run %d: ordering changed at position %d", i, j)
			}
		}
	}
}

func TestRankSignalNormalization(t *testing.T) {
	cheap := uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	dear := uuid.MustParse("00000000-0000-0000-0000-00000000000b")

	ranked := Rank([]Candidate{
		{GarageID: cheap, Rating: 2.5, PricePerHourPence: 200, FreeSlots: 5, TotalSpaces: 10, HistoryCount: 4, DistanceKm: 1.0, Amenities: []string{"cctv", "covered"}},
		{GarageID: dear, Rating: 5.0, PricePerHourPence: 800, FreeSlots: 10, TotalSpaces: 10, HistoryCount: 2, DistanceKm: 3.0, Amenities: []string{"valet"}},
	}, []string{"cctv"}, DefaultWeights())

	signals := map[uuid.UUID]Signals{}
	for _, r := range ranked {
		signals[r.GarageID] = r.Signals
	}

	approx(t, signals[cheap].Rating, 0.5, "rating 2.5/5")
	approx(t, signals[dear].Rating, 1.0, "rating 5/5")
	approx(t, signals[cheap].Price, 1.0, "cheapest price score")
	approx(t, signals[dear].Price, 0.0, "dearest price score")
	approx(t, signals[cheap].Availability, 0.5, "5 of 10 free")
	approx(t, signals[dear].Availability, 1.0, "10 of 10 free")
	approx(t, signals[cheap].History, 1.0, "4 of max 4 visits")
	approx(t, signals[dear].History, 0.5, "2 of max 4 visits")
	approx(t, signals[cheap].Location, 1.0, "closest garage")
	approx(t, signals[dear].Location, 0.0, "farthest garage")
	approx(t, signals[cheap].Amenities, 0.5, "cctv of {cctv,covered}")
	approx(t, signals[dear].Amenities, 0.0, "no amenity overlap")
}

func TestRankEqualPricesScoreOne(t *testing.T) {
	ranked := Rank([]Candidate{
		{GarageID: uuid.New(), PricePerHourPence: 500, TotalSpaces: 1, DistanceKm: -1},
		{GarageID: uuid.New(), PricePerHourPence: 500, TotalSpaces: 1, DistanceKm: -1},
	}, nil, DefaultWeights())

	for _, r := range ranked {
		approx(t, r.Signals.Price, 1.0, "uniform price")
	}
}

func TestRankNormalizesWeights(t *testing.T) {
	id := uuid.New()
	candidate := Candidate{GarageID: id, Rating: 5.0, PricePerHourPence: 500, FreeSlots: 1, TotalSpaces: 1, DistanceKm: -1}

	// weights sum to 2.0 and should be scaled down, not double the score
	doubled := Weights{History: 0.5, Rating: 0.4, Price: 0.4, Availability: 0.3, Location: 0.2, Amenities: 0.2}
	scaled := Rank([]Candidate{candidate}, nil, doubled)
	standard := Rank([]Candidate{candidate}, nil, DefaultWeights())

	approx(t, scaled[0].Score, standard[0].Score, "normalized weights")
	if scaled[0].Score > 1.0 {
		t.Fatalf("score exceeded 1.0: %v", scaled[0].Score)
	}
}

func TestRankMissingLocationRedistributesWeight(t *testing.T) {
	id := uuid.New()
	// perfect on every available signal; no location fix, no amenity prefs
	ranked := Rank([]Candidate{
		{GarageID: id, Rating: 5.0, PricePerHourPence: 500, FreeSlots: 4, TotalSpaces: 4, HistoryCount: 3, DistanceKm: -1},
	}, nil, DefaultWeights())

	// with the location and amenity weight redistributed, a candidate that is
	// perfect on the remaining signals still scores a full 1.0
	approx(t, ranked[0].Score, 1.0, "redistributed weights")
}

func TestRankEmptyCandidates(t *testing.T) {
	if got := Rank(nil, nil, DefaultWeights()); len(got) != 0 {
		t.Fatalf("expected empty result, got %d entries", len(got))
	}
}
