package garage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, g *Garage) error {
	query := `
		INSERT INTO garages (id, name, address, latitude, longitude, total_spaces, hourly_rate_pence, rating, amenities, created_at, updated_at)
		VALUES (:id, :name, :address, :latitude, :longitude, :total_spaces, :hourly_rate_pence, :rating, :amenities, :created_at, :updated_at)`
	_, err := r.db.NamedExecContext(ctx, query, g)
	return err
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Garage, error) {
	var g Garage
	err := r.db.GetContext(ctx, &g, `SELECT * FROM garages WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *Repository) List(ctx context.Context, limit, offset int) ([]Garage, error) {
	garages := []Garage{}
	err := r.db.SelectContext(ctx, &garages,
		`SELECT * FROM garages ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	return garages, err
}

// ListAll returns every garage. The recommendation scorer normalizes price
// and distance across the whole candidate set, so it needs all rows.
func (r *Repository) ListAll(ctx context.Context) ([]Garage, error) {
	garages := []Garage{}
	err := r.db.SelectContext(ctx, &garages, `SELECT * FROM garages ORDER BY id`)
	return garages, err
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, req UpdateGarageRequest) (*Garage, error) {
	query := `
		UPDATE garages SET
			name = COALESCE($2, name),
			address = COALESCE($3, address),
			total_spaces = COALESCE($4, total_spaces),
			hourly_rate_pence = COALESCE($5, hourly_rate_pence),
			amenities = COALESCE($6, amenities),
			updated_at = NOW()
		WHERE id = $1
		RETURNING *`

	var amenities interface{}
	if req.Amenities != nil {
		amenities = pq.StringArray(req.Amenities)
	}

	var g Garage
	err := r.db.GetContext(ctx, &g, query, id, req.Name, req.Address, req.TotalSpaces, req.HourlyRatePence, amenities)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *Repository) SetPhotoURL(ctx context.Context, id uuid.UUID, url string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE garages SET photo_url = $2, updated_at = NOW() WHERE id = $1`, id, url)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateRating recomputes the garage's average rating from its reviews.
func (r *Repository) UpdateRating(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE garages SET
			rating = COALESCE((SELECT AVG(rating) FROM reviews WHERE garage_id = $1), 0),
			updated_at = NOW()
		WHERE id = $1`, id)
	return err
}
