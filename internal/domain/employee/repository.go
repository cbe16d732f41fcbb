package employee

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, e *Employee) error {
	query := `
		INSERT INTO employees (id, garage_id, full_name, email, position, hourly_wage_pence, hired_at, created_at, updated_at)
		VALUES (:id, :garage_id, :full_name, :email, :position, :hourly_wage_pence, :hired_at, :created_at, :updated_at)`
	_, err := r.db.NamedExecContext(ctx, query, e)
	return err
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Employee, error) {
	var e Employee
	err := r.db.GetContext(ctx, &e, `SELECT * FROM employees WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *Repository) ListByGarage(ctx context.Context, garageID uuid.UUID, limit, offset int) ([]Employee, error) {
	employees := []Employee{}
	err := r.db.SelectContext(ctx, &employees, `
		SELECT * FROM employees
		WHERE garage_id = $1
		ORDER BY full_name
		LIMIT $2 OFFSET $3
	`, garageID, limit, offset)
	return employees, err
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, req UpdateEmployeeRequest) (*Employee, error) {
	query := `
		UPDATE employees SET
			full_name = COALESCE($2, full_name),
			position = COALESCE($3, position),
			hourly_wage_pence = COALESCE($4, hourly_wage_pence),
			updated_at = NOW()
		WHERE id = $1
		RETURNING *`

	var e Employee
	err := r.db.GetContext(ctx, &e, query, id, req.FullName, req.Position, req.HourlyWagePence)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM employees WHERE id = $1`, id)
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
