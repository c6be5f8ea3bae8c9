package model

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentStatus tracks the appointment lifecycle. An accepted
// availability slot materializes an "available" appointment; booking claims
// it, after which only completed and cancelled are reachable. Both are
// terminal.
type AppointmentStatus string

const (
	AppointmentStatusAvailable AppointmentStatus = "available"
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

var appointmentTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentStatusAvailable: {AppointmentStatusScheduled},
	AppointmentStatusScheduled: {AppointmentStatusCompleted, AppointmentStatusCancelled},
}

// CanTransitionTo reports whether moving from s to target is permitted.
func (s AppointmentStatus) CanTransitionTo(target AppointmentStatus) bool {
	for _, allowed := range appointmentTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is permitted from s.
func (s AppointmentStatus) IsTerminal() bool {
	return len(appointmentTransitions[s]) == 0
}

// Appointment binds a client to a professional's accepted time window.
// Appointments are the system of record for history and reporting and are
// never physically deleted.
type Appointment struct {
	Base
	SlotID           uuid.UUID         `db:"slot_id" json:"slot_id"`
	ProfessionalID   uuid.UUID         `db:"professional_id" json:"professional_id"`
	ProfessionalName string            `db:"professional_name" json:"professional_name"`
	Role             ProfessionalRole  `db:"role" json:"role"`
	ClientName       string            `db:"client_name" json:"client_name,omitempty"`
	ClientPhone      string            `db:"client_phone" json:"client_phone,omitempty"`
	ClientEmail      string            `db:"client_email" json:"client_email,omitempty"`
	Date             time.Time         `db:"date" json:"date"`
	StartTime        time.Time         `db:"start_time" json:"start_time"`
	EndTime          time.Time         `db:"end_time" json:"end_time"`
	Fee              float64           `db:"fee" json:"fee"`
	Status           AppointmentStatus `db:"status" json:"status"`
	CancelReason     *string           `db:"cancel_reason" json:"cancel_reason,omitempty"`
}

type BookAppointmentRequest struct {
	ClientName  string `json:"client_name" binding:"required"`
	ClientPhone string `json:"client_phone" binding:"required"`
	ClientEmail string `json:"client_email" binding:"required,email"`
}

type CancelAppointmentRequest struct {
	Reason        string `json:"reason" binding:"required,max=1000"`
	PaymentMethod string `json:"payment_method" binding:"required"`
}

type AppointmentFilters struct {
	ProfessionalID uuid.UUID
	Status         AppointmentStatus
	Search         string
}
