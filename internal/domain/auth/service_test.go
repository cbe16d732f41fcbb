package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/parkhive/parkhive-api/internal/domain/user"
	"github.com/parkhive/parkhive-api/internal/pkg/jwt"
)

type stubUserRepo struct {
	byEmail map[string]*user.User
	byID    map[uuid.UUID]*user.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{
		byEmail: make(map[string]*user.User),
		byID:    make(map[uuid.UUID]*user.User),
	}
}

func (s *stubUserRepo) Create(_ context.Context, u *user.User) error {
	copied := *u
	s.byEmail[u.Email] = &copied
	s.byID[u.ID] = &copied
	return nil
}

func (s *stubUserRepo) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	return s.byID[id], nil
}

func (s *stubUserRepo) GetByEmail(_ context.Context, email string) (*user.User, error) {
	return s.byEmail[email], nil
}

func (s *stubUserRepo) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	if u, ok := s.byID[id]; ok {
		u.PasswordHash = hash
	}
	return nil
}

func (s *stubUserRepo) UpdatePreferredAmenities(_ context.Context, id uuid.UUID, amenities []string) error {
	if u, ok := s.byID[id]; ok {
		u.PreferredAmenities = amenities
	}
	return nil
}

func newTestService() (*Service, *stubUserRepo) {
	repo := newStubUserRepo()
	jwtSvc := jwt.NewService("test-secret", 15*time.Minute, 7*24*time.Hour)
	return NewService(repo, jwtSvc, nil), repo
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestService()

	resp, err := svc.Register(context.Background(), &RegisterRequest{
		Email:    "Driver@Example.com",
		Password: "sup3rsecret",
		FullName: "Test Driver",
		Role:     "customer",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if resp.User.Email != "driver@example.com" {
		t.Fatalf("expected normalized email, got %s", resp.User.Email)
	}
	if resp.Tokens.AccessToken == "" {
		t.Fatal("expected access token")
	}

	login, err := svc.Login(context.Background(), &LoginRequest{
		Email:    "driver@example.com",
		Password: "sup3rsecret",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if login.User.ID != resp.User.ID {
		t.Fatal("login returned a different user")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestService()

	req := &RegisterRequest{Email: "dup@example.com", Password: "sup3rsecret", FullName: "Dup", Role: "customer"}
	if _, err := svc.Register(context.Background(), req); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, err := svc.Register(context.Background(), req); !errors.Is(err, ErrEmailAlreadyExists) {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Register(context.Background(), &RegisterRequest{
		Email: "boss@example.com", Password: "sup3rsecret", FullName: "Boss", Role: "admin",
	})
	if !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newTestService()

	if _, err := svc.Register(context.Background(), &RegisterRequest{
		Email: "driver@example.com", Password: "sup3rsecret", FullName: "Driver", Role: "customer",
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	_, err := svc.Login(context.Background(), &LoginRequest{Email: "driver@example.com", Password: "wrong"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRefreshWithoutRedis(t *testing.T) {
	svc, _ := newTestService()

	// without redis configured refresh tokens cannot be validated
	_, err := svc.Refresh(context.Background(), "some-token")
	if !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken, got %v", err)
	}
}
