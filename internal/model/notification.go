package model

import (
	"time"

	"github.com/google/uuid"
)

type NotificationStatus string

const (
	NotificationStatusPending  NotificationStatus = "pending"
	NotificationStatusSent     NotificationStatus = "sent"
	NotificationStatusFailed   NotificationStatus = "failed"
	NotificationStatusRetrying NotificationStatus = "retrying"
)

// Notification event types emitted on state transitions.
const (
	EventAvailabilityAccepted = "availability_accepted"
	EventAvailabilityDenied   = "availability_denied"
	EventAppointmentBooked    = "appointment_booked"
	EventAppointmentAttended  = "appointment_attended"
	EventRefundRequested      = "refund_requested"
	EventRefundApproved       = "refund_approved"
	EventRefundRejected       = "refund_rejected"
)

type Notification struct {
	ID          uuid.UUID          `db:"id" json:"id"`
	Channel     string             `db:"channel" json:"channel"`
	EventType   string             `db:"event_type" json:"event_type"`
	Subject     string             `db:"subject" json:"subject"`
	Content     string             `db:"content" json:"content"`
	Recipient   string             `db:"recipient" json:"recipient"`
	Status      NotificationStatus `db:"status" json:"status"`
	RetryCount  int                `db:"retry_count" json:"retry_count"`
	LastError   string             `db:"last_error" json:"last_error,omitempty"`
	NextRetryAt time.Time          `db:"next_retry_at" json:"next_retry_at,omitempty"`
	SentAt      time.Time          `db:"sent_at" json:"sent_at,omitempty"`
	CreatedAt   time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `db:"updated_at" json:"updated_at"`
}
