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

func (r *availabilityRepository) Create(ctx context.Context, slot *model.AvailabilitySlot) error {
	query := `
		INSERT INTO availability_slots (
			id, professional_id, professional_name, role,
			date, start_time, end_time, charge, notes, status,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	slot.CreatedAt = time.Now()
	slot.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		slot.ID,
		slot.ProfessionalID,
		slot.ProfessionalName,
		slot.Role,
		slot.Date,
		slot.StartTime,
		slot.EndTime,
		slot.Charge,
		slot.Notes,
		slot.Status,
		slot.CreatedAt,
		slot.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create availability slot: %w", err)
	}
	return nil
}

func (r *availabilityRepository) Get(ctx context.Context, id uuid.UUID) (*model.AvailabilitySlot, error) {
	query := `
		SELECT id, professional_id, professional_name, role,
			   date, start_time, end_time, charge, notes, status,
			   created_at, updated_at
		FROM availability_slots
		WHERE id = $1
	`
	var slot model.AvailabilitySlot
	err := r.db.GetContext(ctx, &slot, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("availability slot", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get availability slot: %w", err)
	}
	return &slot, nil
}

func (r *availabilityRepository) ListPending(ctx context.Context) ([]*model.AvailabilitySlot, error) {
	query := `
		SELECT id, professional_id, professional_name, role,
			   date, start_time, end_time, charge, notes, status,
			   created_at, updated_at
		FROM availability_slots
		WHERE status = $1
		ORDER BY created_at DESC
	`
	var slots []*model.AvailabilitySlot
	if err := r.db.SelectContext(ctx, &slots, query, model.AvailabilityStatusPending); err != nil {
		return nil, fmt.Errorf("failed to list pending slots: %w", err)
	}
	return slots, nil
}

// Accept flips the slot pending -> accepted and materializes the bookable
// appointment in a single transaction. The status guard makes concurrent
// accepts lose with an invalid-state error instead of double-materializing.
func (r *availabilityRepository) Accept(ctx context.Context, slotID uuid.UUID, apt *model.Appointment) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE availability_slots
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
	`, model.AvailabilityStatusAccepted, time.Now(), slotID, model.AvailabilityStatusPending)
	if err != nil {
		return fmt.Errorf("failed to accept slot: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return r.slotGuardError(ctx, slotID)
	}

	apt.CreatedAt = time.Now()
	apt.UpdatedAt = time.Now()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO appointments (
			id, slot_id, professional_id, professional_name, role,
			date, start_time, end_time, fee, status,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		apt.ID,
		apt.SlotID,
		apt.ProfessionalID,
		apt.ProfessionalName,
		apt.Role,
		apt.Date,
		apt.StartTime,
		apt.EndTime,
		apt.Fee,
		apt.Status,
		apt.CreatedAt,
		apt.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to materialize appointment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit accept: %w", err)
	}
	return nil
}

func (r *availabilityRepository) DenyAndDelete(ctx context.Context, slotID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM availability_slots
		WHERE id = $1 AND status = $2
	`, slotID, model.AvailabilityStatusPending)
	if err != nil {
		return fmt.Errorf("failed to deny slot: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return r.slotGuardError(ctx, slotID)
	}
	return nil
}

// slotGuardError disambiguates a zero-row conditional update: the slot is
// either gone or no longer pending.
func (r *availabilityRepository) slotGuardError(ctx context.Context, slotID uuid.UUID) error {
	var status model.AvailabilityStatus
	err := r.db.GetContext(ctx, &status, `SELECT status FROM availability_slots WHERE id = $1`, slotID)
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NotFound("availability slot", err)
	}
	if err != nil {
		return fmt.Errorf("failed to check slot status: %w", err)
	}
	return apperrors.InvalidStatef("availability slot is %s, not pending", status)
}
