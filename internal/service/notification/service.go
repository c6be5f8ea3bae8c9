package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pawhub/petcare-api/internal/email"
	"github.com/pawhub/petcare-api/internal/model"
	"github.com/pawhub/petcare-api/internal/repository"
	"github.com/pawhub/petcare-api/pkg/logger"
	"github.com/pawhub/petcare-api/pkg/messaging"
	"github.com/pawhub/petcare-api/pkg/metrics"
)

const (
	maxRetries = 3
	retryDelay = 5 * time.Second

	ChannelEmail = "email"
	ChannelInApp = "in_app"
)

// Service is the notification emitter collaborator. Delivery is best-effort:
// failures are logged and retried but never propagated to the caller, so a
// state transition is never rolled back over a missed email.
type Service interface {
	Notify(ctx context.Context, recipient, eventType, subject, content string) error
}

type service struct {
	repo     repository.NotificationRepository
	emailSvc email.Service
	broker   messaging.Broker
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

func NewService(repo repository.NotificationRepository, emailSvc email.Service, broker messaging.Broker, logger *logger.Logger, metrics *metrics.Metrics) Service {
	return &service{
		repo:     repo,
		emailSvc: emailSvc,
		broker:   broker,
		logger:   logger,
		metrics:  metrics,
	}
}

func (s *service) Notify(ctx context.Context, recipient, eventType, subject, content string) error {
	if recipient == "" {
		return fmt.Errorf("recipient is required")
	}
	if eventType == "" {
		return fmt.Errorf("event type is required")
	}

	for _, channel := range []string{ChannelEmail, ChannelInApp} {
		n := &model.Notification{
			ID:        uuid.New(),
			Channel:   channel,
			EventType: eventType,
			Subject:   subject,
			Content:   content,
			Recipient: recipient,
			Status:    model.NotificationStatusPending,
		}
		if err := s.repo.Create(ctx, n); err != nil {
			return fmt.Errorf("failed to create notification: %w", err)
		}

		go s.process(context.WithoutCancel(ctx), n)
	}
	return nil
}

func (s *service) process(ctx context.Context, n *model.Notification) {
	var err error
	switch n.Channel {
	case ChannelEmail:
		err = s.emailSvc.SendCustom(ctx, n.Recipient, n.Subject, n.Content)
	case ChannelInApp:
		err = s.broker.Publish(ctx, "notifications", messaging.Message{
			Type:    n.EventType,
			Payload: n,
		})
	default:
		err = fmt.Errorf("unsupported channel: %s", n.Channel)
	}

	if err != nil {
		s.handleError(ctx, n, err)
		return
	}

	n.Status = model.NotificationStatusSent
	n.SentAt = time.Now()

	if err := s.repo.Update(ctx, n); err != nil {
		s.logger.Error(err, "failed to mark notification sent", "notification_id", n.ID.String())
		return
	}
	s.metrics.NotificationsSent.WithLabelValues(n.Channel).Inc()
}

func (s *service) handleError(ctx context.Context, n *model.Notification, err error) {
	s.metrics.NotificationsFailed.WithLabelValues(n.Channel).Inc()
	s.logger.Error(err, "notification delivery failed",
		"notification_id", n.ID.String(),
		"channel", n.Channel,
		"event_type", n.EventType)

	n.RetryCount++
	n.LastError = err.Error()

	if n.RetryCount >= maxRetries {
		n.Status = model.NotificationStatusFailed
	} else {
		n.Status = model.NotificationStatusRetrying
		n.NextRetryAt = time.Now().Add(retryDelay * time.Duration(n.RetryCount))
	}

	if err := s.repo.Update(ctx, n); err != nil {
		s.logger.Error(err, "failed to update notification state", "notification_id", n.ID.String())
	}
}
