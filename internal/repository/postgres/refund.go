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

func (r *refundRepository) Create(ctx context.Context, req *model.RefundRequest) error {
	query := `
		INSERT INTO refund_requests (
			id, appointment_id, client_name, client_email,
			amount, processing_fee, net_amount, reason, payment_method,
			requested_at, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	req.CreatedAt = time.Now()
	req.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		req.ID,
		req.AppointmentID,
		req.ClientName,
		req.ClientEmail,
		req.Amount,
		req.ProcessingFee,
		req.NetAmount,
		req.Reason,
		req.PaymentMethod,
		req.RequestedAt,
		req.Status,
		req.CreatedAt,
		req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create refund request: %w", err)
	}
	return nil
}

func (r *refundRepository) Get(ctx context.Context, id uuid.UUID) (*model.RefundRequest, error) {
	query := `
		SELECT id, appointment_id, client_name, client_email,
			   amount, processing_fee, net_amount, reason, payment_method,
			   requested_at, resolved_at, status, created_at, updated_at
		FROM refund_requests
		WHERE id = $1
	`
	var req model.RefundRequest
	err := r.db.GetContext(ctx, &req, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("refund request", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get refund request: %w", err)
	}
	return &req, nil
}

func (r *refundRepository) HasPendingForAppointment(ctx context.Context, appointmentID uuid.UUID) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(1) FROM refund_requests
		WHERE appointment_id = $1 AND status = $2
	`, appointmentID, model.RefundStatusPending)
	if err != nil {
		return false, fmt.Errorf("failed to check pending refunds: %w", err)
	}
	return count > 0, nil
}

// Resolve flips a pending request to its terminal decision. On approval the
// linked appointment moves to cancelled inside the same transaction, so a
// resolved refund and a still-scheduled appointment can never coexist.
func (r *refundRepository) Resolve(ctx context.Context, id uuid.UUID, decision model.RefundStatus, cancelReason string) (*model.RefundRequest, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	result, err := tx.ExecContext(ctx, `
		UPDATE refund_requests
		SET status = $1, resolved_at = $2, updated_at = $2
		WHERE id = $3 AND status = $4
	`, decision, now, id, model.RefundStatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve refund request: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return nil, r.refundGuardError(ctx, id)
	}

	var req model.RefundRequest
	err = tx.GetContext(ctx, &req, `
		SELECT id, appointment_id, client_name, client_email,
			   amount, processing_fee, net_amount, reason, payment_method,
			   requested_at, resolved_at, status, created_at, updated_at
		FROM refund_requests
		WHERE id = $1
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload refund request: %w", err)
	}

	if decision == model.RefundStatusApproved {
		result, err = tx.ExecContext(ctx, `
			UPDATE appointments
			SET status = $1, cancel_reason = $2, updated_at = $3
			WHERE id = $4 AND status = $5
		`,
			model.AppointmentStatusCancelled,
			cancelReason,
			now,
			req.AppointmentID,
			model.AppointmentStatusScheduled,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to cancel appointment: %w", err)
		}
		rows, err = result.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return nil, apperrors.InvalidState("linked appointment is no longer scheduled")
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit refund resolution: %w", err)
	}
	return &req, nil
}

func (r *refundRepository) List(ctx context.Context, filters *model.RefundFilters) ([]*model.RefundRequest, error) {
	query := `
		SELECT id, appointment_id, client_name, client_email,
			   amount, processing_fee, net_amount, reason, payment_method,
			   requested_at, resolved_at, status, created_at, updated_at
		FROM refund_requests
		WHERE 1=1
	`
	args := []interface{}{}
	if filters != nil && filters.Status != "" {
		args = append(args, filters.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	query += " ORDER BY requested_at DESC"

	var requests []*model.RefundRequest
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list refund requests: %w", err)
	}
	return requests, nil
}

func (r *refundRepository) refundGuardError(ctx context.Context, id uuid.UUID) error {
	var status model.RefundStatus
	err := r.db.GetContext(ctx, &status, `SELECT status FROM refund_requests WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NotFound("refund request", err)
	}
	if err != nil {
		return fmt.Errorf("failed to check refund status: %w", err)
	}
	return apperrors.InvalidStatef("refund request already %s", status)
}
