package refund

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawhub/petcare-api/internal/model"
	"github.com/pawhub/petcare-api/internal/service/event"
	apperrors "github.com/pawhub/petcare-api/pkg/errors"
	"github.com/pawhub/petcare-api/pkg/logger"
	"github.com/pawhub/petcare-api/pkg/metrics"
)

type fakeAppointmentRepo struct {
	appointments map[uuid.UUID]*model.Appointment
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{appointments: make(map[uuid.UUID]*model.Appointment)}
}

func (r *fakeAppointmentRepo) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, ok := r.appointments[id]
	if !ok {
		return nil, apperrors.NotFound("appointment", nil)
	}
	copied := *apt
	return &copied, nil
}

func (r *fakeAppointmentRepo) Book(_ context.Context, id uuid.UUID, client *model.BookAppointmentRequest) error {
	apt, ok := r.appointments[id]
	if !ok {
		return apperrors.NotFound("appointment", nil)
	}
	if apt.Status != model.AppointmentStatusAvailable {
		return apperrors.InvalidStatef("appointment is %s, not available", apt.Status)
	}
	apt.Status = model.AppointmentStatusScheduled
	apt.ClientName = client.ClientName
	apt.ClientPhone = client.ClientPhone
	apt.ClientEmail = client.ClientEmail
	return nil
}

func (r *fakeAppointmentRepo) Complete(_ context.Context, id uuid.UUID) error {
	apt, ok := r.appointments[id]
	if !ok {
		return apperrors.NotFound("appointment", nil)
	}
	if apt.Status != model.AppointmentStatusScheduled {
		return apperrors.InvalidStatef("appointment is %s, not scheduled", apt.Status)
	}
	apt.Status = model.AppointmentStatusCompleted
	return nil
}

func (r *fakeAppointmentRepo) List(_ context.Context, _ *model.AppointmentFilters) ([]*model.Appointment, error) {
	var all []*model.Appointment
	for _, apt := range r.appointments {
		all = append(all, apt)
	}
	return all, nil
}

// fakeRefundRepo mirrors the transactional coupling of the real repository:
// approving a request cancels the linked appointment.
type fakeRefundRepo struct {
	requests map[uuid.UUID]*model.RefundRequest
	aptRepo  *fakeAppointmentRepo
}

func newFakeRefundRepo(aptRepo *fakeAppointmentRepo) *fakeRefundRepo {
	return &fakeRefundRepo{
		requests: make(map[uuid.UUID]*model.RefundRequest),
		aptRepo:  aptRepo,
	}
}

func (r *fakeRefundRepo) Create(_ context.Context, req *model.RefundRequest) error {
	r.requests[req.ID] = req
	return nil
}

func (r *fakeRefundRepo) Get(_ context.Context, id uuid.UUID) (*model.RefundRequest, error) {
	req, ok := r.requests[id]
	if !ok {
		return nil, apperrors.NotFound("refund request", nil)
	}
	copied := *req
	return &copied, nil
}

func (r *fakeRefundRepo) HasPendingForAppointment(_ context.Context, appointmentID uuid.UUID) (bool, error) {
	for _, req := range r.requests {
		if req.AppointmentID == appointmentID && req.Status == model.RefundStatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRefundRepo) Resolve(_ context.Context, id uuid.UUID, decision model.RefundStatus, cancelReason string) (*model.RefundRequest, error) {
	req, ok := r.requests[id]
	if !ok {
		return nil, apperrors.NotFound("refund request", nil)
	}
	if req.Status != model.RefundStatusPending {
		return nil, apperrors.InvalidStatef("refund request already %s", req.Status)
	}
	req.Status = decision
	now := time.Now()
	req.ResolvedAt = &now

	if decision == model.RefundStatusApproved {
		apt, ok := r.aptRepo.appointments[req.AppointmentID]
		if !ok {
			return nil, apperrors.NotFound("appointment", nil)
		}
		apt.Status = model.AppointmentStatusCancelled
		apt.CancelReason = &cancelReason
	}

	copied := *req
	return &copied, nil
}

func (r *fakeRefundRepo) List(_ context.Context, filters *model.RefundFilters) ([]*model.RefundRequest, error) {
	var out []*model.RefundRequest
	for _, req := range r.requests {
		if filters.Status != "" && req.Status != filters.Status {
			continue
		}
		out = append(out, req)
	}
	return out, nil
}

type fakeOutboxRepo struct {
	events []*model.OutboxEvent
}

func (r *fakeOutboxRepo) Create(_ context.Context, event *model.OutboxEvent) error {
	r.events = append(r.events, event)
	return nil
}

func (r *fakeOutboxRepo) GetPendingEventsWithLock(_ context.Context, _ int) ([]*model.OutboxEvent, error) {
	return nil, nil
}

func (r *fakeOutboxRepo) BeginTx(_ context.Context) (*sqlx.Tx, error) {
	return nil, nil
}

func (r *fakeOutboxRepo) UpdateStatusTx(_ context.Context, _ *sqlx.Tx, _ uuid.UUID, _ model.OutboxStatus, _ *string, _ *time.Time) error {
	return nil
}

func (r *fakeOutboxRepo) DeleteProcessedBefore(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

type fakeNotifier struct {
	sent []string
}

func (n *fakeNotifier) Notify(_ context.Context, recipient, eventType, _, _ string) error {
	n.sent = append(n.sent, eventType+":"+recipient)
	return nil
}

func newTestService(t *testing.T, feePercent float64) (*Service, *fakeRefundRepo, *fakeAppointmentRepo, *fakeOutboxRepo) {
	t.Helper()
	aptRepo := newFakeAppointmentRepo()
	repo := newFakeRefundRepo(aptRepo)
	outbox := &fakeOutboxRepo{}

	svc := NewService(
		repo,
		aptRepo,
		&fakeNotifier{},
		event.NewService(outbox),
		feePercent,
		logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, TimeFormat: time.RFC3339, Output: io.Discard}),
		metrics.NewMetrics(prometheus.NewRegistry(), "petcare", "test"),
	)
	return svc, repo, aptRepo, outbox
}

func seedScheduledAppointment(repo *fakeAppointmentRepo, fee float64) *model.Appointment {
	apt := &model.Appointment{
		ProfessionalName: "Amy",
		ClientName:       "Bruno",
		ClientEmail:      "bruno@example.com",
		Fee:              fee,
		Status:           model.AppointmentStatusScheduled,
	}
	apt.ID = uuid.New()
	repo.appointments[apt.ID] = apt
	return apt
}

func TestFileComputesFeeAndNet(t *testing.T) {
	tests := []struct {
		name       string
		fee        float64
		feePercent float64
		wantFee    float64
		wantNet    float64
	}{
		{"ten percent of 100", 100, 10, 10, 90},
		{"five percent of 80", 80, 5, 4, 76},
		{"zero percent", 50, 0, 0, 50},
		{"full fee", 40, 100, 40, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, aptRepo, _ := newTestService(t, tt.feePercent)
			apt := seedScheduledAppointment(aptRepo, tt.fee)

			req, err := svc.File(context.Background(), apt.ID, "moving away", "card")

			require.NoError(t, err)
			assert.Equal(t, tt.fee, req.Amount)
			assert.Equal(t, tt.wantFee, req.ProcessingFee)
			assert.Equal(t, tt.wantNet, req.NetAmount)
			assert.Equal(t, model.RefundStatusPending, req.Status)
		})
	}
}

func TestFileRequiresScheduledAppointment(t *testing.T) {
	svc, _, aptRepo, _ := newTestService(t, 10)
	apt := seedScheduledAppointment(aptRepo, 100)
	aptRepo.appointments[apt.ID].Status = model.AppointmentStatusCompleted

	_, err := svc.File(context.Background(), apt.ID, "changed my mind", "card")

	assert.True(t, apperrors.IsInvalidState(err))
}

func TestFileRejectsSecondPendingRequest(t *testing.T) {
	svc, _, aptRepo, _ := newTestService(t, 10)
	apt := seedScheduledAppointment(aptRepo, 100)

	_, err := svc.File(context.Background(), apt.ID, "moving away", "card")
	require.NoError(t, err)

	_, err = svc.File(context.Background(), apt.ID, "moving away", "card")
	assert.True(t, apperrors.IsInvalidState(err))
}

func TestFileValidatesInput(t *testing.T) {
	svc, _, aptRepo, _ := newTestService(t, 10)
	apt := seedScheduledAppointment(aptRepo, 100)

	_, err := svc.File(context.Background(), apt.ID, "", "card")
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.File(context.Background(), apt.ID, "moving away", "")
	assert.True(t, apperrors.IsValidation(err))
}

func TestFileUnknownAppointment(t *testing.T) {
	svc, _, _, _ := newTestService(t, 10)

	_, err := svc.File(context.Background(), uuid.New(), "moving away", "card")

	assert.True(t, apperrors.IsNotFound(err))
}

func TestResolveApproveCancelsAppointment(t *testing.T) {
	svc, _, aptRepo, outbox := newTestService(t, 10)
	apt := seedScheduledAppointment(aptRepo, 100)

	filed, err := svc.File(context.Background(), apt.ID, "moving away", "card")
	require.NoError(t, err)

	resolved, err := svc.Resolve(context.Background(), filed.ID, "approved")

	require.NoError(t, err)
	assert.Equal(t, model.RefundStatusApproved, resolved.Status)
	assert.NotNil(t, resolved.ResolvedAt)
	assert.Equal(t, model.AppointmentStatusCancelled, aptRepo.appointments[apt.ID].Status)
	require.NotNil(t, aptRepo.appointments[apt.ID].CancelReason)
	assert.Equal(t, "moving away", *aptRepo.appointments[apt.ID].CancelReason)

	require.Len(t, outbox.events, 2)
	assert.Equal(t, model.EventRefundRequested, outbox.events[0].EventType)
	assert.Equal(t, model.EventRefundApproved, outbox.events[1].EventType)
}

func TestResolveRejectLeavesAppointmentScheduled(t *testing.T) {
	svc, _, aptRepo, outbox := newTestService(t, 10)
	apt := seedScheduledAppointment(aptRepo, 100)

	filed, err := svc.File(context.Background(), apt.ID, "moving away", "card")
	require.NoError(t, err)

	resolved, err := svc.Resolve(context.Background(), filed.ID, "rejected")

	require.NoError(t, err)
	assert.Equal(t, model.RefundStatusRejected, resolved.Status)
	assert.Equal(t, model.AppointmentStatusScheduled, aptRepo.appointments[apt.ID].Status)
	assert.Equal(t, model.EventRefundRejected, outbox.events[1].EventType)
}

func TestResolveTwiceFails(t *testing.T) {
	svc, _, aptRepo, _ := newTestService(t, 10)
	apt := seedScheduledAppointment(aptRepo, 100)

	filed, err := svc.File(context.Background(), apt.ID, "moving away", "card")
	require.NoError(t, err)

	_, err = svc.Resolve(context.Background(), filed.ID, "approved")
	require.NoError(t, err)

	_, err = svc.Resolve(context.Background(), filed.ID, "rejected")
	assert.True(t, apperrors.IsInvalidState(err))
}

func TestResolveUnknownDecision(t *testing.T) {
	svc, _, _, _ := newTestService(t, 10)

	_, err := svc.Resolve(context.Background(), uuid.New(), "maybe")

	assert.True(t, apperrors.IsValidation(err))
}

func TestListDefaultsToPending(t *testing.T) {
	svc, repo, aptRepo, _ := newTestService(t, 10)
	apt := seedScheduledAppointment(aptRepo, 100)

	filed, err := svc.File(context.Background(), apt.ID, "moving away", "card")
	require.NoError(t, err)
	_, err = svc.Resolve(context.Background(), filed.ID, "approved")
	require.NoError(t, err)

	other := seedScheduledAppointment(aptRepo, 60)
	_, err = svc.File(context.Background(), other.ID, "schedule conflict", "card")
	require.NoError(t, err)

	requests, err := svc.List(context.Background(), nil)

	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, model.RefundStatusPending, requests[0].Status)
	assert.Len(t, repo.requests, 2)
}

func TestListRanksByClientName(t *testing.T) {
	svc, repo, _, _ := newTestService(t, 10)

	for _, name := range []string{"Samantha", "Amanda", "Am"} {
		req := &model.RefundRequest{
			ClientName: name,
			Status:     model.RefundStatusPending,
		}
		req.ID = uuid.New()
		repo.requests[req.ID] = req
	}

	requests, err := svc.List(context.Background(), &model.RefundFilters{Search: "am"})

	require.NoError(t, err)
	require.Len(t, requests, 3)
	assert.Equal(t, "Am", requests[0].ClientName)
	assert.Equal(t, "Amanda", requests[1].ClientName)
	assert.Equal(t, "Samantha", requests[2].ClientName)
}
