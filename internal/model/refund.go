package model

import (
	"time"

	"github.com/google/uuid"
)

// RefundStatus tracks resolution of a cancellation claim. A resolved
// request is terminal and must reject any further resolution attempt.
type RefundStatus string

const (
	RefundStatusPending  RefundStatus = "pending"
	RefundStatusApproved RefundStatus = "approved"
	RefundStatusRejected RefundStatus = "rejected"
)

var refundTransitions = map[RefundStatus][]RefundStatus{
	RefundStatusPending: {RefundStatusApproved, RefundStatusRejected},
}

// CanTransitionTo reports whether moving from s to target is permitted.
func (s RefundStatus) CanTransitionTo(target RefundStatus) bool {
	for _, allowed := range refundTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// RefundRequest is a client's claim to cancel a confirmed appointment and
// recover a fee-adjusted amount. Invariant: NetAmount = Amount - ProcessingFee.
type RefundRequest struct {
	Base
	AppointmentID uuid.UUID    `db:"appointment_id" json:"appointment_id"`
	ClientName    string       `db:"client_name" json:"client_name"`
	ClientEmail   string       `db:"client_email" json:"client_email"`
	Amount        float64      `db:"amount" json:"amount"`
	ProcessingFee float64      `db:"processing_fee" json:"processing_fee"`
	NetAmount     float64      `db:"net_amount" json:"net_amount"`
	Reason        string       `db:"reason" json:"reason"`
	PaymentMethod string       `db:"payment_method" json:"payment_method"`
	RequestedAt   time.Time    `db:"requested_at" json:"requested_at"`
	ResolvedAt    *time.Time   `db:"resolved_at" json:"resolved_at,omitempty"`
	Status        RefundStatus `db:"status" json:"status"`
}

type ResolveRefundRequest struct {
	Decision string `json:"decision" binding:"required,oneof=approved rejected"`
}

type RefundFilters struct {
	Status RefundStatus
	Search string
}
