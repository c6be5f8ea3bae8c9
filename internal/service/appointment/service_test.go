package appointment

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
	order        []uuid.UUID
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{appointments: make(map[uuid.UUID]*model.Appointment)}
}

func (r *fakeAppointmentRepo) add(apt *model.Appointment) {
	r.appointments[apt.ID] = apt
	r.order = append(r.order, apt.ID)
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

func (r *fakeAppointmentRepo) List(_ context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	var out []*model.Appointment
	for _, id := range r.order {
		apt := r.appointments[id]
		if filters.Status != "" && apt.Status != filters.Status {
			continue
		}
		if filters.ProfessionalID != uuid.Nil && apt.ProfessionalID != filters.ProfessionalID {
			continue
		}
		out = append(out, apt)
	}
	return out, nil
}

type fakeRefundFiler struct {
	filed []uuid.UUID
	err   error
}

func (f *fakeRefundFiler) File(_ context.Context, appointmentID uuid.UUID, reason, paymentMethod string) (*model.RefundRequest, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.filed = append(f.filed, appointmentID)
	req := &model.RefundRequest{
		AppointmentID: appointmentID,
		Reason:        reason,
		PaymentMethod: paymentMethod,
		Status:        model.RefundStatusPending,
	}
	req.ID = uuid.New()
	return req, nil
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

func newTestService(t *testing.T) (*Service, *fakeAppointmentRepo, *fakeRefundFiler, *fakeOutboxRepo, *fakeNotifier) {
	t.Helper()
	repo := newFakeAppointmentRepo()
	refunds := &fakeRefundFiler{}
	outbox := &fakeOutboxRepo{}
	notifier := &fakeNotifier{}

	svc := NewService(
		repo,
		refunds,
		notifier,
		event.NewService(outbox),
		logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, TimeFormat: time.RFC3339, Output: io.Discard}),
		metrics.NewMetrics(prometheus.NewRegistry(), "petcare", "test"),
	)
	return svc, repo, refunds, outbox, notifier
}

func seedAvailable(repo *fakeAppointmentRepo, professionalName string) *model.Appointment {
	apt := &model.Appointment{
		ProfessionalID:   uuid.New(),
		ProfessionalName: professionalName,
		Role:             model.RoleGroomer,
		Fee:              75,
		Status:           model.AppointmentStatusAvailable,
	}
	apt.ID = uuid.New()
	repo.add(apt)
	return apt
}

func bookRequest() *model.BookAppointmentRequest {
	return &model.BookAppointmentRequest{
		ClientName:  "Bruno",
		ClientPhone: "+15550123",
		ClientEmail: "bruno@example.com",
	}
}

func TestBookClaimsAvailableAppointment(t *testing.T) {
	svc, repo, _, outbox, notifier := newTestService(t)
	apt := seedAvailable(repo, "Amy")

	booked, err := svc.Book(context.Background(), apt.ID, bookRequest())

	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusScheduled, booked.Status)
	assert.Equal(t, "Bruno", booked.ClientName)
	require.Len(t, outbox.events, 1)
	assert.Equal(t, model.EventAppointmentBooked, outbox.events[0].EventType)
	assert.Len(t, notifier.sent, 1)
}

func TestBookTwiceFails(t *testing.T) {
	svc, repo, _, _, _ := newTestService(t)
	apt := seedAvailable(repo, "Amy")

	_, err := svc.Book(context.Background(), apt.ID, bookRequest())
	require.NoError(t, err)

	_, err = svc.Book(context.Background(), apt.ID, bookRequest())
	assert.True(t, apperrors.IsInvalidState(err))
}

func TestBookValidatesClient(t *testing.T) {
	svc, repo, _, _, _ := newTestService(t)
	apt := seedAvailable(repo, "Amy")

	req := bookRequest()
	req.ClientName = ""
	_, err := svc.Book(context.Background(), apt.ID, req)

	assert.True(t, apperrors.IsValidation(err))
}

func TestBookUnknownAppointment(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)

	_, err := svc.Book(context.Background(), uuid.New(), bookRequest())

	assert.True(t, apperrors.IsNotFound(err))
}

func TestAttendCompletesScheduledAppointment(t *testing.T) {
	svc, repo, _, outbox, _ := newTestService(t)
	apt := seedAvailable(repo, "Amy")

	_, err := svc.Book(context.Background(), apt.ID, bookRequest())
	require.NoError(t, err)

	attended, err := svc.Attend(context.Background(), apt.ID)

	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCompleted, attended.Status)
	require.Len(t, outbox.events, 2)
	assert.Equal(t, model.EventAppointmentAttended, outbox.events[1].EventType)
}

func TestAttendRequiresScheduled(t *testing.T) {
	svc, repo, _, _, _ := newTestService(t)
	apt := seedAvailable(repo, "Amy")

	// still available, never booked
	_, err := svc.Attend(context.Background(), apt.ID)
	assert.True(t, apperrors.IsInvalidState(err))

	_, err = svc.Book(context.Background(), apt.ID, bookRequest())
	require.NoError(t, err)
	_, err = svc.Attend(context.Background(), apt.ID)
	require.NoError(t, err)

	// already completed
	_, err = svc.Attend(context.Background(), apt.ID)
	assert.True(t, apperrors.IsInvalidState(err))
}

func TestCancelDelegatesToRefundFiler(t *testing.T) {
	svc, repo, refunds, _, _ := newTestService(t)
	apt := seedAvailable(repo, "Amy")

	_, err := svc.Book(context.Background(), apt.ID, bookRequest())
	require.NoError(t, err)

	refund, err := svc.Cancel(context.Background(), apt.ID, &model.CancelAppointmentRequest{
		Reason:        "schedule conflict",
		PaymentMethod: "card",
	})

	require.NoError(t, err)
	assert.Equal(t, apt.ID, refund.AppointmentID)
	assert.Equal(t, model.RefundStatusPending, refund.Status)
	assert.Equal(t, []uuid.UUID{apt.ID}, refunds.filed)

	// cancellation is deferred to refund approval
	current, err := svc.Get(context.Background(), apt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusScheduled, current.Status)
}

func TestListAvailableRanksByProfessionalName(t *testing.T) {
	svc, repo, _, _, _ := newTestService(t)
	seedAvailable(repo, "Samantha")
	seedAvailable(repo, "Amanda")
	seedAvailable(repo, "Am")
	seedAvailable(repo, "Bruno")

	appointments, err := svc.ListAvailable(context.Background(), "am")

	require.NoError(t, err)
	require.Len(t, appointments, 3)
	assert.Equal(t, "Am", appointments[0].ProfessionalName)
	assert.Equal(t, "Amanda", appointments[1].ProfessionalName)
	assert.Equal(t, "Samantha", appointments[2].ProfessionalName)
}

func TestListAvailableExcludesBooked(t *testing.T) {
	svc, repo, _, _, _ := newTestService(t)
	booked := seedAvailable(repo, "Amy")
	seedAvailable(repo, "Amber")

	_, err := svc.Book(context.Background(), booked.ID, bookRequest())
	require.NoError(t, err)

	appointments, err := svc.ListAvailable(context.Background(), "")

	require.NoError(t, err)
	require.Len(t, appointments, 1)
	assert.Equal(t, "Amber", appointments[0].ProfessionalName)
}

func TestListHistoryRejectsNonTerminalStatus(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)

	_, err := svc.ListHistory(context.Background(), model.AppointmentStatusScheduled, "")

	assert.True(t, apperrors.IsValidation(err))
}

func TestListHistoryReturnsTerminalRecords(t *testing.T) {
	svc, repo, _, _, _ := newTestService(t)
	apt := seedAvailable(repo, "Amy")

	_, err := svc.Book(context.Background(), apt.ID, bookRequest())
	require.NoError(t, err)
	_, err = svc.Attend(context.Background(), apt.ID)
	require.NoError(t, err)

	completed, err := svc.ListHistory(context.Background(), model.AppointmentStatusCompleted, "")
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, apt.ID, completed[0].ID)

	cancelled, err := svc.ListHistory(context.Background(), model.AppointmentStatusCancelled, "")
	require.NoError(t, err)
	assert.Empty(t, cancelled)
}

func TestListByProfessionalFilters(t *testing.T) {
	svc, repo, _, _, _ := newTestService(t)
	mine := seedAvailable(repo, "Amy")
	seedAvailable(repo, "Amber")

	appointments, err := svc.ListByProfessional(context.Background(), mine.ProfessionalID, "")

	require.NoError(t, err)
	require.Len(t, appointments, 1)
	assert.Equal(t, mine.ID, appointments[0].ID)
}
