package model

import (
	"time"

	"github.com/google/uuid"
)

// AvailabilityStatus tracks administrative review of a submitted slot.
type AvailabilityStatus string

const (
	AvailabilityStatusPending  AvailabilityStatus = "pending"
	AvailabilityStatusAccepted AvailabilityStatus = "accepted"
	AvailabilityStatusDenied   AvailabilityStatus = "denied"
)

// availabilityTransitions enumerates every permitted status transition.
// Anything absent from the table is an invalid-state error.
var availabilityTransitions = map[AvailabilityStatus][]AvailabilityStatus{
	AvailabilityStatusPending: {AvailabilityStatusAccepted, AvailabilityStatusDenied},
}

// CanTransitionTo reports whether moving from s to target is permitted.
func (s AvailabilityStatus) CanTransitionTo(target AvailabilityStatus) bool {
	for _, allowed := range availabilityTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// AvailabilitySlot is a professional-submitted time window awaiting review.
// On acceptance the slot transforms into a bookable appointment; on denial
// it is deleted.
type AvailabilitySlot struct {
	Base
	ProfessionalID   uuid.UUID          `db:"professional_id" json:"professional_id"`
	ProfessionalName string             `db:"professional_name" json:"professional_name"`
	Role             ProfessionalRole   `db:"role" json:"role"`
	Date             time.Time          `db:"date" json:"date"`
	StartTime        time.Time          `db:"start_time" json:"start_time"`
	EndTime          time.Time          `db:"end_time" json:"end_time"`
	Charge           float64            `db:"charge" json:"charge"`
	Notes            string             `db:"notes" json:"notes,omitempty"`
	Status           AvailabilityStatus `db:"status" json:"status"`
}

type SubmitAvailabilityRequest struct {
	Date      time.Time `json:"date" binding:"required"`
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
	Charge    float64   `json:"charge"`
	Notes     string    `json:"notes" binding:"max=1000"`
}

type AvailabilityFilters struct {
	Search string
	Status AvailabilityStatus
}
