package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/pawhub/petcare-api/internal/model"
)

// All repository interfaces in one file
type (
	// ProfessionalRepository handles professional identity records
	ProfessionalRepository interface {
		Create(ctx context.Context, p *model.Professional) error
		Get(ctx context.Context, id uuid.UUID) (*model.Professional, error)
		GetByEmail(ctx context.Context, email string) (*model.Professional, error)
		Update(ctx context.Context, p *model.Professional) error
		Deactivate(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.ProfessionalFilters) ([]*model.Professional, error)
	}

	// AvailabilityRepository owns the pending-review queue. Accept runs the
	// status flip and the appointment materialization in one transaction;
	// either both happen or neither does.
	AvailabilityRepository interface {
		Create(ctx context.Context, slot *model.AvailabilitySlot) error
		Get(ctx context.Context, id uuid.UUID) (*model.AvailabilitySlot, error)
		ListPending(ctx context.Context) ([]*model.AvailabilitySlot, error)
		Accept(ctx context.Context, slotID uuid.UUID, apt *model.Appointment) error
		DenyAndDelete(ctx context.Context, slotID uuid.UUID) error
	}

	AppointmentRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		Book(ctx context.Context, id uuid.UUID, client *model.BookAppointmentRequest) error
		Complete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
	}

	// RefundRepository owns refund resolution. Resolve flips the request and,
	// on approval, cancels the linked appointment in the same transaction.
	RefundRepository interface {
		Create(ctx context.Context, req *model.RefundRequest) error
		Get(ctx context.Context, id uuid.UUID) (*model.RefundRequest, error)
		HasPendingForAppointment(ctx context.Context, appointmentID uuid.UUID) (bool, error)
		Resolve(ctx context.Context, id uuid.UUID, decision model.RefundStatus, cancelReason string) (*model.RefundRequest, error)
		List(ctx context.Context, filters *model.RefundFilters) ([]*model.RefundRequest, error)
	}

	NotificationRepository interface {
		Create(ctx context.Context, notification *model.Notification) error
		Update(ctx context.Context, notification *model.Notification) error
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		BeginTx(ctx context.Context) (*sqlx.Tx, error)
		UpdateStatusTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, status model.OutboxStatus, errorMessage *string, retryAt *time.Time) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
