package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pawhub/petcare-api/internal/model"
	apperrors "github.com/pawhub/petcare-api/pkg/errors"
)

func (r *professionalRepository) Create(ctx context.Context, p *model.Professional) error {
	query := `
		INSERT INTO professionals (
			id, name, role, email, password_hash, phone,
			qualification, experience_years, verified,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.Name,
		p.Role,
		p.Email,
		p.PasswordHash,
		p.Phone,
		p.Qualification,
		p.ExperienceYears,
		p.Verified,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create professional: %w", err)
	}
	return nil
}

func (r *professionalRepository) Get(ctx context.Context, id uuid.UUID) (*model.Professional, error) {
	query := `
		SELECT id, name, role, email, password_hash, phone,
			   qualification, experience_years, verified,
			   login_attempts, last_login_at,
			   created_at, updated_at, deleted_at
		FROM professionals
		WHERE id = $1 AND deleted_at IS NULL
	`
	var p model.Professional
	err := r.db.GetContext(ctx, &p, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("professional", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get professional: %w", err)
	}
	return &p, nil
}

func (r *professionalRepository) GetByEmail(ctx context.Context, email string) (*model.Professional, error) {
	query := `
		SELECT id, name, role, email, password_hash, phone,
			   qualification, experience_years, verified,
			   login_attempts, last_login_at,
			   created_at, updated_at, deleted_at
		FROM professionals
		WHERE email = $1 AND deleted_at IS NULL
	`
	var p model.Professional
	err := r.db.GetContext(ctx, &p, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("professional", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get professional by email: %w", err)
	}
	return &p, nil
}

func (r *professionalRepository) Update(ctx context.Context, p *model.Professional) error {
	query := `
		UPDATE professionals
		SET name = $1, phone = $2, qualification = $3, experience_years = $4,
			verified = $5, login_attempts = $6, last_login_at = $7, updated_at = $8
		WHERE id = $9 AND deleted_at IS NULL
	`
	p.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		p.Name,
		p.Phone,
		p.Qualification,
		p.ExperienceYears,
		p.Verified,
		p.LoginAttempts,
		p.LastLoginAt,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update professional: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("professional", nil)
	}
	return nil
}

func (r *professionalRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE professionals
		SET deleted_at = $1, updated_at = $1
		WHERE id = $2 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to deactivate professional: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("professional", nil)
	}
	return nil
}

func (r *professionalRepository) List(ctx context.Context, filters *model.ProfessionalFilters) ([]*model.Professional, error) {
	query := `
		SELECT id, name, role, email, phone,
			   qualification, experience_years, verified,
			   created_at, updated_at
		FROM professionals
		WHERE deleted_at IS NULL
	`
	args := []interface{}{}
	if filters != nil && filters.Role != "" {
		args = append(args, filters.Role)
		query += fmt.Sprintf(" AND role = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	var professionals []*model.Professional
	if err := r.db.SelectContext(ctx, &professionals, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list professionals: %w", err)
	}
	return professionals, nil
}
