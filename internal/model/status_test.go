package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAvailabilityTransitions(t *testing.T) {
	assert.True(t, AvailabilityStatusPending.CanTransitionTo(AvailabilityStatusAccepted))
	assert.True(t, AvailabilityStatusPending.CanTransitionTo(AvailabilityStatusDenied))

	// resolved slots never move again
	assert.False(t, AvailabilityStatusAccepted.CanTransitionTo(AvailabilityStatusDenied))
	assert.False(t, AvailabilityStatusAccepted.CanTransitionTo(AvailabilityStatusPending))
	assert.False(t, AvailabilityStatusDenied.CanTransitionTo(AvailabilityStatusAccepted))
}

func TestAppointmentTransitions(t *testing.T) {
	assert.True(t, AppointmentStatusAvailable.CanTransitionTo(AppointmentStatusScheduled))
	assert.True(t, AppointmentStatusScheduled.CanTransitionTo(AppointmentStatusCompleted))
	assert.True(t, AppointmentStatusScheduled.CanTransitionTo(AppointmentStatusCancelled))

	assert.False(t, AppointmentStatusAvailable.CanTransitionTo(AppointmentStatusCompleted))
	assert.False(t, AppointmentStatusCompleted.CanTransitionTo(AppointmentStatusCancelled))
	assert.False(t, AppointmentStatusCancelled.CanTransitionTo(AppointmentStatusScheduled))
}

func TestAppointmentTerminalStates(t *testing.T) {
	assert.True(t, AppointmentStatusCompleted.IsTerminal())
	assert.True(t, AppointmentStatusCancelled.IsTerminal())
	assert.False(t, AppointmentStatusAvailable.IsTerminal())
	assert.False(t, AppointmentStatusScheduled.IsTerminal())
}

func TestRefundTransitions(t *testing.T) {
	assert.True(t, RefundStatusPending.CanTransitionTo(RefundStatusApproved))
	assert.True(t, RefundStatusPending.CanTransitionTo(RefundStatusRejected))

	// exactly-once resolution
	assert.False(t, RefundStatusApproved.CanTransitionTo(RefundStatusRejected))
	assert.False(t, RefundStatusRejected.CanTransitionTo(RefundStatusApproved))
	assert.False(t, RefundStatusApproved.CanTransitionTo(RefundStatusPending))
}

func TestProfessionalRoleIsValid(t *testing.T) {
	assert.True(t, ProfessionalRole("veterinarian").IsValid())
	assert.True(t, ProfessionalRole("groomer").IsValid())
	assert.True(t, ProfessionalRole("pet-trainer").IsValid())
	assert.False(t, ProfessionalRole("plumber").IsValid())
	assert.False(t, ProfessionalRole("").IsValid())
}
