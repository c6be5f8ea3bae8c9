package appointment

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/pawhub/petcare-api/internal/model"
	"github.com/pawhub/petcare-api/internal/repository"
	"github.com/pawhub/petcare-api/internal/service/event"
	"github.com/pawhub/petcare-api/internal/service/notification"
	apperrors "github.com/pawhub/petcare-api/pkg/errors"
	"github.com/pawhub/petcare-api/pkg/logger"
	"github.com/pawhub/petcare-api/pkg/metrics"
	"github.com/pawhub/petcare-api/pkg/search"
)

// RefundFiler files a cancellation claim; implemented by the refund service.
type RefundFiler interface {
	File(ctx context.Context, appointmentID uuid.UUID, reason, paymentMethod string) (*model.RefundRequest, error)
}

// Service owns the appointment state machine: available -> scheduled ->
// {completed, cancelled}. Appointments are never physically deleted; the
// historical listings are the system of record for reporting.
type Service struct {
	repo     repository.AppointmentRepository
	refunds  RefundFiler
	notifSvc notification.Service
	eventSvc *event.Service
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

func NewService(
	repo repository.AppointmentRepository,
	refunds RefundFiler,
	notifSvc notification.Service,
	eventSvc *event.Service,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *Service {
	return &Service{
		repo:     repo,
		refunds:  refunds,
		notifSvc: notifSvc,
		eventSvc: eventSvc,
		logger:   logger,
		metrics:  metrics,
	}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return s.repo.Get(ctx, id)
}

// Book claims an available appointment for a client, exactly once.
func (s *Service) Book(ctx context.Context, id uuid.UUID, req *model.BookAppointmentRequest) (*model.Appointment, error) {
	if req.ClientName == "" || req.ClientEmail == "" {
		return nil, apperrors.Validation("client name and email are required")
	}

	if err := s.repo.Book(ctx, id, req); err != nil {
		s.metrics.Transitions.WithLabelValues("appointment", "book", "error").Inc()
		return nil, err
	}
	s.metrics.Transitions.WithLabelValues("appointment", "book", "success").Inc()

	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.emitAndNotify(ctx, apt, apt.ClientEmail, model.EventAppointmentBooked,
		"Appointment confirmed",
		fmt.Sprintf("Your %s appointment with %s on %s at %s is confirmed.",
			apt.Role, apt.ProfessionalName,
			apt.Date.Format("2006-01-02"), apt.StartTime.Format("15:04")))

	return apt, nil
}

// Attend marks a scheduled appointment completed.
func (s *Service) Attend(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	if err := s.repo.Complete(ctx, id); err != nil {
		s.metrics.Transitions.WithLabelValues("appointment", "attend", "error").Inc()
		return nil, err
	}
	s.metrics.Transitions.WithLabelValues("appointment", "attend", "success").Inc()

	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.emitAndNotify(ctx, apt, apt.ClientEmail, model.EventAppointmentAttended,
		"Appointment completed",
		fmt.Sprintf("Thank you for attending your %s appointment with %s.", apt.Role, apt.ProfessionalName))

	return apt, nil
}

// Cancel files a refund request against a scheduled appointment. The
// appointment moves to cancelled only when the refund is approved, not at
// request time.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, req *model.CancelAppointmentRequest) (*model.RefundRequest, error) {
	return s.refunds.File(ctx, id, req.Reason, req.PaymentMethod)
}

// ListByProfessional drives the attend-now workflow.
func (s *Service) ListByProfessional(ctx context.Context, professionalID uuid.UUID, searchTerm string) ([]*model.Appointment, error) {
	return s.list(ctx, &model.AppointmentFilters{
		ProfessionalID: professionalID,
		Search:         searchTerm,
	})
}

// ListHistory exposes terminal-state records for reporting; nothing is
// purged.
func (s *Service) ListHistory(ctx context.Context, status model.AppointmentStatus, searchTerm string) ([]*model.Appointment, error) {
	if status != "" && status != model.AppointmentStatusCompleted && status != model.AppointmentStatusCancelled {
		return nil, apperrors.Validationf("history covers completed and cancelled appointments, not %s", status)
	}
	return s.list(ctx, &model.AppointmentFilters{
		Status: status,
		Search: searchTerm,
	})
}

func (s *Service) ListAvailable(ctx context.Context, searchTerm string) ([]*model.Appointment, error) {
	return s.list(ctx, &model.AppointmentFilters{
		Status: model.AppointmentStatusAvailable,
		Search: searchTerm,
	})
}

func (s *Service) list(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	appointments, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	if filters.Search == "" {
		return appointments, nil
	}

	matched := appointments[:0]
	for _, apt := range appointments {
		if search.Matches(filters.Search, apt.ProfessionalName) {
			matched = append(matched, apt)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return search.Less(filters.Search, matched[i].ProfessionalName, matched[j].ProfessionalName)
	})
	return matched, nil
}

func (s *Service) emitAndNotify(ctx context.Context, apt *model.Appointment, recipient, eventType, subject, content string) {
	if err := s.eventSvc.Emit(ctx, eventType, apt); err != nil {
		s.logger.Error(err, "failed to emit event", "event_type", eventType, "appointment_id", apt.ID.String())
	}
	if recipient == "" {
		return
	}
	if err := s.notifSvc.Notify(ctx, recipient, eventType, subject, content); err != nil {
		s.logger.Error(err, "failed to notify", "appointment_id", apt.ID.String())
	}
}
