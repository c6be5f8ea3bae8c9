package availability

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

// Service gates professional-submitted availability through administrative
// review before it becomes bookable.
type Service struct {
	repo     repository.AvailabilityRepository
	profRepo repository.ProfessionalRepository
	notifSvc notification.Service
	eventSvc *event.Service
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

func NewService(
	repo repository.AvailabilityRepository,
	profRepo repository.ProfessionalRepository,
	notifSvc notification.Service,
	eventSvc *event.Service,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *Service {
	return &Service{
		repo:     repo,
		profRepo: profRepo,
		notifSvc: notifSvc,
		eventSvc: eventSvc,
		logger:   logger,
		metrics:  metrics,
	}
}

// Submit records a pending availability slot for review. Only the three
// recognized professional roles may submit.
func (s *Service) Submit(ctx context.Context, principal model.Principal, req *model.SubmitAvailabilityRequest) (*model.AvailabilitySlot, error) {
	if !principal.IsProfessional() {
		return nil, apperrors.Forbidden("only professionals can submit availability")
	}
	if req.Date.IsZero() {
		return nil, apperrors.Validation("date is required")
	}
	if !req.StartTime.Before(req.EndTime) {
		return nil, apperrors.Validation("start time must be before end time")
	}
	if req.Charge < 0 {
		return nil, apperrors.Validation("charge cannot be negative")
	}

	prof, err := s.profRepo.Get(ctx, principal.ID)
	if err != nil {
		return nil, err
	}

	slot := &model.AvailabilitySlot{
		ProfessionalID:   prof.ID,
		ProfessionalName: prof.Name,
		Role:             prof.Role,
		Date:             req.Date,
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
		Charge:           req.Charge,
		Notes:            req.Notes,
		Status:           model.AvailabilityStatusPending,
	}
	slot.ID = uuid.New()

	if err := s.repo.Create(ctx, slot); err != nil {
		return nil, fmt.Errorf("failed to submit availability: %w", err)
	}
	return slot, nil
}

// Accept flips a pending slot to accepted and materializes the bookable
// appointment. Status flip and materialization share one transaction; a
// second accept on the same slot fails with an invalid-state error.
func (s *Service) Accept(ctx context.Context, slotID uuid.UUID) (*model.Appointment, error) {
	slot, err := s.repo.Get(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if !slot.Status.CanTransitionTo(model.AvailabilityStatusAccepted) {
		return nil, apperrors.InvalidStatef("availability slot is %s, not pending", slot.Status)
	}

	apt := &model.Appointment{
		SlotID:           slot.ID,
		ProfessionalID:   slot.ProfessionalID,
		ProfessionalName: slot.ProfessionalName,
		Role:             slot.Role,
		Date:             slot.Date,
		StartTime:        slot.StartTime,
		EndTime:          slot.EndTime,
		Fee:              slot.Charge,
		Status:           model.AppointmentStatusAvailable,
	}
	apt.ID = uuid.New()

	if err := s.repo.Accept(ctx, slotID, apt); err != nil {
		s.metrics.Transitions.WithLabelValues("availability", "accept", "error").Inc()
		return nil, err
	}
	s.metrics.Transitions.WithLabelValues("availability", "accept", "success").Inc()

	s.emitAndNotify(ctx, slot, model.EventAvailabilityAccepted,
		"Availability accepted",
		fmt.Sprintf("Your availability on %s from %s to %s was accepted and is now bookable.",
			slot.Date.Format("2006-01-02"),
			slot.StartTime.Format("15:04"),
			slot.EndTime.Format("15:04")))

	return apt, nil
}

// Deny removes a pending slot and informs the professional.
func (s *Service) Deny(ctx context.Context, slotID uuid.UUID) error {
	slot, err := s.repo.Get(ctx, slotID)
	if err != nil {
		return err
	}
	if !slot.Status.CanTransitionTo(model.AvailabilityStatusDenied) {
		return apperrors.InvalidStatef("availability slot is %s, not pending", slot.Status)
	}

	if err := s.repo.DenyAndDelete(ctx, slotID); err != nil {
		s.metrics.Transitions.WithLabelValues("availability", "deny", "error").Inc()
		return err
	}
	s.metrics.Transitions.WithLabelValues("availability", "deny", "success").Inc()

	s.emitAndNotify(ctx, slot, model.EventAvailabilityDenied,
		"Availability denied",
		fmt.Sprintf("Your availability on %s from %s to %s was denied.",
			slot.Date.Format("2006-01-02"),
			slot.StartTime.Format("15:04"),
			slot.EndTime.Format("15:04")))

	return nil
}

// ListPending returns pending slots newest first, filtered and ordered by
// the shared match ranking over the professional's display name.
func (s *Service) ListPending(ctx context.Context, searchTerm string) ([]*model.AvailabilitySlot, error) {
	slots, err := s.repo.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	if searchTerm == "" {
		return slots, nil
	}

	matched := slots[:0]
	for _, slot := range slots {
		if search.Matches(searchTerm, slot.ProfessionalName) {
			matched = append(matched, slot)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return search.Less(searchTerm, matched[i].ProfessionalName, matched[j].ProfessionalName)
	})
	return matched, nil
}

func (s *Service) emitAndNotify(ctx context.Context, slot *model.AvailabilitySlot, eventType, subject, content string) {
	if err := s.eventSvc.Emit(ctx, eventType, slot); err != nil {
		s.logger.Error(err, "failed to emit event", "event_type", eventType, "slot_id", slot.ID.String())
	}

	prof, err := s.profRepo.Get(ctx, slot.ProfessionalID)
	if err != nil {
		s.logger.Error(err, "failed to resolve professional for notification", "slot_id", slot.ID.String())
		return
	}
	if err := s.notifSvc.Notify(ctx, prof.Email, eventType, subject, content); err != nil {
		s.logger.Error(err, "failed to notify professional", "slot_id", slot.ID.String())
	}
}
