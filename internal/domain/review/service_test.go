package review

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

type memStore struct {
	reviews   map[uuid.UUID][]Review
	visited   map[[2]uuid.UUID]bool
	duplicate bool
}

func newMemStore() *memStore {
	return &memStore{
		reviews: make(map[uuid.UUID][]Review),
		visited: make(map[[2]uuid.UUID]bool),
	}
}

func (m *memStore) Create(_ context.Context, rev *Review) error {
	for _, existing := range m.reviews[rev.GarageID] {
		if existing.UserID == rev.UserID {
			return ErrAlreadyReviewed
		}
	}
	m.reviews[rev.GarageID] = append(m.reviews[rev.GarageID], *rev)
	return nil
}

func (m *memStore) ListByGarage(_ context.Context, garageID uuid.UUID, _, _ int) ([]Review, error) {
	return m.reviews[garageID], nil
}

func (m *memStore) HasCompletedStay(_ context.Context, userID, garageID uuid.UUID) (bool, error) {
	return m.visited[[2]uuid.UUID{userID, garageID}], nil
}

type ratingSpy struct {
	calls int
}

func (r *ratingSpy) UpdateRating(context.Context, uuid.UUID) error {
	r.calls++
	return nil
}

func TestCreateRequiresCompletedStay(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, nil)

	_, err := svc.Create(context.Background(), uuid.New(), uuid.New(), CreateReviewRequest{Rating: 5})
	if !errors.Is(err, ErrNoCompletedStay) {
		t.Fatalf("expected ErrNoCompletedStay, got %v", err)
	}
}

func TestCreateRefreshesGarageRating(t *testing.T) {
	store := newMemStore()
	ratings := &ratingSpy{}
	svc := NewService(store, ratings)

	userID, garageID := uuid.New(), uuid.New()
	store.visited[[2]uuid.UUID{userID, garageID}] = true

	rev, err := svc.Create(context.Background(), userID, garageID, CreateReviewRequest{Rating: 4, Comment: "easy access"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if rev.Rating != 4 {
		t.Fatalf("expected rating 4, got %d", rev.Rating)
	}
	if ratings.calls != 1 {
		t.Fatalf("expected one rating refresh, got %d", ratings.calls)
	}
}

func TestCreateTwiceConflicts(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, nil)

	userID, garageID := uuid.New(), uuid.New()
	store.visited[[2]uuid.UUID{userID, garageID}] = true

	if _, err := svc.Create(context.Background(), userID, garageID, CreateReviewRequest{Rating: 5}); err != nil {
		t.Fatalf("first review failed: %v", err)
	}
	if _, err := svc.Create(context.Background(), userID, garageID, CreateReviewRequest{Rating: 3}); !errors.Is(err, ErrAlreadyReviewed) {
		t.Fatalf("expected ErrAlreadyReviewed, got %v", err)
	}
}
