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

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `
		SELECT id, slot_id, professional_id, professional_name, role,
			   client_name, client_phone, client_email,
			   date, start_time, end_time, fee, status, cancel_reason,
			   created_at, updated_at
		FROM appointments
		WHERE id = $1
	`
	var apt model.Appointment
	err := r.db.GetContext(ctx, &apt, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("appointment", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &apt, nil
}

// Book claims an available appointment for a client. The status guard makes
// a second concurrent booking lose with an invalid-state error.
func (r *appointmentRepository) Book(ctx context.Context, id uuid.UUID, client *model.BookAppointmentRequest) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE appointments
		SET status = $1, client_name = $2, client_phone = $3, client_email = $4, updated_at = $5
		WHERE id = $6 AND status = $7
	`,
		model.AppointmentStatusScheduled,
		client.ClientName,
		client.ClientPhone,
		client.ClientEmail,
		time.Now(),
		id,
		model.AppointmentStatusAvailable,
	)
	if err != nil {
		return fmt.Errorf("failed to book appointment: %w", err)
	}
	return r.checkGuard(ctx, result, id, model.AppointmentStatusAvailable)
}

func (r *appointmentRepository) Complete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE appointments
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
	`,
		model.AppointmentStatusCompleted,
		time.Now(),
		id,
		model.AppointmentStatusScheduled,
	)
	if err != nil {
		return fmt.Errorf("failed to complete appointment: %w", err)
	}
	return r.checkGuard(ctx, result, id, model.AppointmentStatusScheduled)
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := `
		SELECT id, slot_id, professional_id, professional_name, role,
			   client_name, client_phone, client_email,
			   date, start_time, end_time, fee, status, cancel_reason,
			   created_at, updated_at
		FROM appointments
		WHERE 1=1
	`
	args := []interface{}{}
	if filters != nil {
		if filters.ProfessionalID != uuid.Nil {
			args = append(args, filters.ProfessionalID)
			query += fmt.Sprintf(" AND professional_id = $%d", len(args))
		}
		if filters.Status != "" {
			args = append(args, filters.Status)
			query += fmt.Sprintf(" AND status = $%d", len(args))
		}
	}
	query += " ORDER BY created_at DESC"

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) checkGuard(ctx context.Context, result sql.Result, id uuid.UUID, expected model.AppointmentStatus) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows > 0 {
		return nil
	}

	var status model.AppointmentStatus
	err = r.db.GetContext(ctx, &status, `SELECT status FROM appointments WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NotFound("appointment", err)
	}
	if err != nil {
		return fmt.Errorf("failed to check appointment status: %w", err)
	}
	return apperrors.InvalidStatef("appointment is %s, not %s", status, expected)
}
