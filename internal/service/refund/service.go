package refund

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/pawhub/petcare-api/internal/model"
	"github.com/pawhub/petcare-api/internal/repository"
	"github.com/pawhub/petcare-api/internal/service/event"
	"github.com/pawhub/petcare-api/internal/service/notification"
	apperrors "github.com/pawhub/petcare-api/pkg/errors"
	"github.com/pawhub/petcare-api/pkg/logger"
	"github.com/pawhub/petcare-api/pkg/metrics"
	"github.com/pawhub/petcare-api/pkg/money"
	"github.com/pawhub/petcare-api/pkg/search"
)

// Service resolves client-initiated cancellations. The processing fee
// percentage is policy injected from configuration, not decided here.
type Service struct {
	repo       repository.RefundRepository
	aptRepo    repository.AppointmentRepository
	notifSvc   notification.Service
	eventSvc   *event.Service
	feePercent float64
	logger     *logger.Logger
	metrics    *metrics.Metrics
}

func NewService(
	repo repository.RefundRepository,
	aptRepo repository.AppointmentRepository,
	notifSvc notification.Service,
	eventSvc *event.Service,
	feePercent float64,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *Service {
	return &Service{
		repo:       repo,
		aptRepo:    aptRepo,
		notifSvc:   notifSvc,
		eventSvc:   eventSvc,
		feePercent: feePercent,
		logger:     logger,
		metrics:    metrics,
	}
}

// File creates a pending refund request against a scheduled appointment.
// The appointment keeps its scheduled status until the request is approved.
func (s *Service) File(ctx context.Context, appointmentID uuid.UUID, reason, paymentMethod string) (*model.RefundRequest, error) {
	if reason == "" {
		return nil, apperrors.Validation("cancellation reason is required")
	}
	if paymentMethod == "" {
		return nil, apperrors.Validation("payment method is required")
	}

	apt, err := s.aptRepo.Get(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if apt.Status != model.AppointmentStatusScheduled {
		return nil, apperrors.InvalidStatef("appointment is %s, only scheduled appointments can be cancelled", apt.Status)
	}

	pending, err := s.repo.HasPendingForAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, apperrors.InvalidState("a refund request is already pending for this appointment")
	}

	fee := money.Percent(apt.Fee, s.feePercent)
	net := money.Round2(apt.Fee - fee)
	if net < 0 {
		return nil, apperrors.Validationf("processing fee %.2f exceeds refund amount %.2f", fee, apt.Fee)
	}

	req := &model.RefundRequest{
		AppointmentID: apt.ID,
		ClientName:    apt.ClientName,
		ClientEmail:   apt.ClientEmail,
		Amount:        apt.Fee,
		ProcessingFee: fee,
		NetAmount:     net,
		Reason:        reason,
		PaymentMethod: paymentMethod,
		RequestedAt:   time.Now(),
		Status:        model.RefundStatusPending,
	}
	req.ID = uuid.New()

	if err := s.repo.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to create refund request: %w", err)
	}

	s.emitAndNotify(ctx, req, model.EventRefundRequested,
		"Cancellation received",
		fmt.Sprintf("Your cancellation was received. If approved you will be refunded %.2f (%.2f minus a %.2f processing fee).",
			req.NetAmount, req.Amount, req.ProcessingFee))

	return req, nil
}

// Resolve settles a pending request exactly once. Approval cancels the
// linked appointment in the same transaction; rejection leaves it scheduled.
func (s *Service) Resolve(ctx context.Context, requestID uuid.UUID, decision string) (*model.RefundRequest, error) {
	var target model.RefundStatus
	switch decision {
	case string(model.RefundStatusApproved):
		target = model.RefundStatusApproved
	case string(model.RefundStatusRejected):
		target = model.RefundStatusRejected
	default:
		return nil, apperrors.Validationf("unknown decision: %s", decision)
	}

	current, err := s.repo.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !current.Status.CanTransitionTo(target) {
		return nil, apperrors.InvalidStatef("refund request already %s", current.Status)
	}

	req, err := s.repo.Resolve(ctx, requestID, target, current.Reason)
	if err != nil {
		s.metrics.Transitions.WithLabelValues("refund", decision, "error").Inc()
		return nil, err
	}
	s.metrics.Transitions.WithLabelValues("refund", decision, "success").Inc()

	if target == model.RefundStatusApproved {
		s.emitAndNotify(ctx, req, model.EventRefundApproved,
			"Refund approved",
			fmt.Sprintf("Your refund of %.2f was approved and the appointment has been cancelled.", req.NetAmount))
	} else {
		s.emitAndNotify(ctx, req, model.EventRefundRejected,
			"Refund denied",
			"Your refund request was denied. The appointment remains scheduled.")
	}

	return req, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.RefundRequest, error) {
	return s.repo.Get(ctx, id)
}

// List defaults to pending requests, ordered by the shared match ranking
// over the client name, ties broken by request recency.
func (s *Service) List(ctx context.Context, filters *model.RefundFilters) ([]*model.RefundRequest, error) {
	if filters == nil {
		filters = &model.RefundFilters{}
	}
	if filters.Status == "" {
		filters.Status = model.RefundStatusPending
	}

	requests, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, err
	}
	if filters.Search == "" {
		return requests, nil
	}

	matched := requests[:0]
	for _, req := range requests {
		if search.Matches(filters.Search, req.ClientName) {
			matched = append(matched, req)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return search.Less(filters.Search, matched[i].ClientName, matched[j].ClientName)
	})
	return matched, nil
}

func (s *Service) emitAndNotify(ctx context.Context, req *model.RefundRequest, eventType, subject, content string) {
	if err := s.eventSvc.Emit(ctx, eventType, req); err != nil {
		s.logger.Error(err, "failed to emit event", "event_type", eventType, "refund_id", req.ID.String())
	}
	if req.ClientEmail == "" {
		return
	}
	if err := s.notifSvc.Notify(ctx, req.ClientEmail, eventType, subject, content); err != nil {
		s.logger.Error(err, "failed to notify client", "refund_id", req.ID.String())
	}
}
