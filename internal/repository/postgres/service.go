package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rmagtibay/clinic-api/internal/model"
)

const serviceColumns = `
	id, name, description, price, duration_minutes, is_active,
	created_at, updated_at
`

func (r *serviceRepository) Create(ctx context.Context, svc *model.Service) error {
	svc.ID = uuid.New()
	svc.CreatedAt = time.Now()
	svc.UpdatedAt = time.Now()

	query := `
		INSERT INTO services (
			id, name, description, price, duration_minutes, is_active,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		svc.ID,
		svc.Name,
		svc.Description,
		svc.Price,
		svc.DurationMinutes,
		svc.IsActive,
		svc.CreatedAt,
		svc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	return nil
}

func (r *serviceRepository) Get(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE id = $1`

	var svc model.Service
	err := r.db.GetContext(ctx, &svc, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	return &svc, nil
}

func (r *serviceRepository) Update(ctx context.Context, svc *model.Service) error {
	svc.UpdatedAt = time.Now()

	query := `
		UPDATE services
		SET name = $1, description = $2, price = $3, duration_minutes = $4,
			is_active = $5, updated_at = $6
		WHERE id = $7
	`
	result, err := r.db.ExecContext(ctx, query,
		svc.Name,
		svc.Description,
		svc.Price,
		svc.DurationMinutes,
		svc.IsActive,
		svc.UpdatedAt,
		svc.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update service: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *serviceRepository) List(ctx context.Context, activeOnly bool) ([]*model.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY name ASC`

	var services []*model.Service
	if err := r.db.SelectContext(ctx, &services, query); err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return services, nil
}
