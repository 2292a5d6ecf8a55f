package reconciliation

import (
	"context"
	"testing"

	reconciliationRepo "mindease/database/repository/reconciliation"
	"mindease/models"
	"mindease/services/backend/backendmock"
	"mindease/services/tasks"
	"mindease/utils"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Create(incident *models.BookingIncident) error {
	return m.Called(incident).Error(0)
}

func (m *mockRepo) GetByID(id string) (*models.BookingIncident, error) {
	args := m.Called(id)
	inc, _ := args.Get(0).(*models.BookingIncident)
	return inc, args.Error(1)
}

func (m *mockRepo) GetOpenByFlow(flowID string) (*models.BookingIncident, error) {
	args := m.Called(flowID)
	inc, _ := args.Get(0).(*models.BookingIncident)
	return inc, args.Error(1)
}

func (m *mockRepo) ListByStatus(status models.IncidentStatus, limit int64) ([]models.BookingIncident, error) {
	args := m.Called(status, limit)
	return args.Get(0).([]models.BookingIncident), args.Error(1)
}

func (m *mockRepo) ListRetryable(maxAttempts int) ([]models.BookingIncident, error) {
	args := m.Called(maxAttempts)
	return args.Get(0).([]models.BookingIncident), args.Error(1)
}

func (m *mockRepo) RecordAttempt(id, lastError string) error {
	return m.Called(id, lastError).Error(0)
}

func (m *mockRepo) Resolve(id, note string) error {
	return m.Called(id, note).Error(0)
}

type mockQueue struct {
	mock.Mock
}

func (m *mockQueue) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	args := m.Called(task.Type(), string(task.Payload()))
	return &asynq.TaskInfo{}, args.Error(0)
}

type mockSessions struct {
	mock.Mock
}

func (m *mockSessions) Create(ctx context.Context, sess models.SessionContext) (*models.SessionContext, error) {
	args := m.Called(ctx, sess)
	s, _ := args.Get(0).(*models.SessionContext)
	return s, args.Error(1)
}

func (m *mockSessions) Get(ctx context.Context, id string) (*models.SessionContext, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*models.SessionContext)
	return s, args.Error(1)
}

func (m *mockSessions) Save(ctx context.Context, sess *models.SessionContext) error {
	return m.Called(ctx, sess).Error(0)
}

func (m *mockSessions) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type fixture struct {
	repo     *mockRepo
	api      *backendmock.API
	sessions *mockSessions
	queue    *mockQueue
	svc      *Service
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{repo: &mockRepo{}, api: &backendmock.API{}, sessions: &mockSessions{}, queue: &mockQueue{}}
	f.svc = NewService(f.repo, f.api, f.sessions, f.queue, 3, nil)
	t.Cleanup(func() {
		f.repo.AssertExpectations(t)
		f.api.AssertExpectations(t)
		f.sessions.AssertExpectations(t)
		f.queue.AssertExpectations(t)
	})
	return f
}

func openIncident() *models.BookingIncident {
	return &models.BookingIncident{
		ID: "inc-1", FlowID: "f1", SessionID: "s1", PaymentIntentID: "pi_1", IdempotencyKey: "key-1",
		Request: models.NewAppointmentRequest{Therapist: "9", Date: "d1", Time: "t2", Mode: models.ModeVideo, Type: models.TypeNew, Price: 1500},
		Status:  models.IncidentOpen, Attempts: 1,
	}
}

func TestRecordCreatesAndSchedules(t *testing.T) {
	f := newFixture(t)
	f.repo.On("GetOpenByFlow", "f1").Return(nil, reconciliationRepo.ErrIncidentNotFound)
	f.repo.On("Create", mock.AnythingOfType("*models.BookingIncident")).Return(nil)
	f.queue.On("Enqueue", tasks.TypeReconcileBooking, mock.Anything).Return(nil)

	id, err := f.svc.Record(context.Background(), models.BookingIncident{FlowID: "f1", PaymentIntentID: "pi_1"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestRecordReusesOpenIncident(t *testing.T) {
	f := newFixture(t)
	f.repo.On("GetOpenByFlow", "f1").Return(openIncident(), nil)

	id, err := f.svc.Record(context.Background(), models.BookingIncident{FlowID: "f1"})
	require.NoError(t, err)
	assert.Equal(t, "inc-1", id)
}

func TestRecordToleratesQueuedDuplicate(t *testing.T) {
	f := newFixture(t)
	f.repo.On("GetOpenByFlow", "f2").Return(nil, reconciliationRepo.ErrIncidentNotFound)
	f.repo.On("Create", mock.Anything).Return(nil)
	f.queue.On("Enqueue", tasks.TypeReconcileBooking, mock.Anything).Return(asynq.ErrTaskIDConflict)

	_, err := f.svc.Record(context.Background(), models.BookingIncident{FlowID: "f2"})
	assert.NoError(t, err)
}

func TestRetrySettlesIncident(t *testing.T) {
	f := newFixture(t)
	inc := openIncident()
	sess := &models.SessionContext{ID: "s1", UserID: "7", Role: models.RoleUser}
	f.repo.On("GetByID", "inc-1").Return(inc, nil)
	f.sessions.On("Get", mock.Anything, "s1").Return(sess, nil)
	f.api.On("CreateAppointment", mock.Anything, sess, inc.Request, "key-1").Return(backendmock.OK(""))
	f.repo.On("Resolve", "inc-1", mock.Anything).Return(nil)

	assert.NoError(t, f.svc.Retry(context.Background(), "inc-1"))
}

func TestRetryFailureRecordsAttempt(t *testing.T) {
	f := newFixture(t)
	inc := openIncident()
	sess := &models.SessionContext{ID: "s1"}
	f.repo.On("GetByID", "inc-1").Return(inc, nil)
	f.sessions.On("Get", mock.Anything, "s1").Return(sess, nil)
	f.api.On("CreateAppointment", mock.Anything, sess, inc.Request, "key-1").Return(backendmock.Failed("slot taken", 400))
	f.repo.On("RecordAttempt", "inc-1", "slot taken").Return(nil)

	assert.NoError(t, f.svc.Retry(context.Background(), "inc-1"))
}

func TestRetryWithoutSessionLeavesIncidentOpen(t *testing.T) {
	f := newFixture(t)
	f.repo.On("GetByID", "inc-1").Return(openIncident(), nil)
	f.sessions.On("Get", mock.Anything, "s1").Return(nil, utils.ErrNotFound)
	f.repo.On("RecordAttempt", "inc-1", mock.Anything).Return(nil)

	assert.NoError(t, f.svc.Retry(context.Background(), "inc-1"))
	f.repo.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
}

func TestRetrySkipsExhaustedIncident(t *testing.T) {
	f := newFixture(t)
	inc := openIncident()
	inc.Attempts = 3
	f.repo.On("GetByID", "inc-1").Return(inc, nil)

	assert.NoError(t, f.svc.Retry(context.Background(), "inc-1"))
}

func TestSweepEnqueuesRetryable(t *testing.T) {
	f := newFixture(t)
	a, b := openIncident(), openIncident()
	b.ID = "inc-2"
	f.repo.On("ListRetryable", 3).Return([]models.BookingIncident{*a, *b}, nil)
	f.queue.On("Enqueue", tasks.TypeReconcileBooking, `{"incidentId":"inc-1"}`).Return(nil)
	f.queue.On("Enqueue", tasks.TypeReconcileBooking, `{"incidentId":"inc-2"}`).Return(asynq.ErrTaskIDConflict)

	n, err := f.svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n, "an incident whose task is still queued is not counted")
}

type mockLocks struct {
	mock.Mock
}

func (m *mockLocks) AcquireCheckout(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockLocks) ReleaseCheckout(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func TestRetryDefersWhileClientCheckoutRuns(t *testing.T) {
	f := newFixture(t)
	locks := &mockLocks{}
	f.svc.WithFlowLock(locks)
	f.repo.On("GetByID", "inc-1").Return(openIncident(), nil).Once()
	locks.On("AcquireCheckout", mock.Anything, "f1").Return(false, nil).Once()

	assert.NoError(t, f.svc.Retry(context.Background(), "inc-1"))
	locks.AssertExpectations(t)
	f.api.AssertNotCalled(t, "CreateAppointment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.repo.AssertNotCalled(t, "RecordAttempt", mock.Anything, mock.Anything)
}

func TestRetryRereadsIncidentUnderLock(t *testing.T) {
	f := newFixture(t)
	locks := &mockLocks{}
	f.svc.WithFlowLock(locks)
	settled := openIncident()
	settled.Status = models.IncidentResolved
	f.repo.On("GetByID", "inc-1").Return(openIncident(), nil).Once()
	f.repo.On("GetByID", "inc-1").Return(settled, nil).Once()
	locks.On("AcquireCheckout", mock.Anything, "f1").Return(true, nil).Once()
	locks.On("ReleaseCheckout", mock.Anything, "f1").Return(nil).Once()

	assert.NoError(t, f.svc.Retry(context.Background(), "inc-1"))
	locks.AssertExpectations(t)
	f.api.AssertNotCalled(t, "CreateAppointment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSettled(t *testing.T) {
	f := newFixture(t)
	settled := openIncident()
	settled.Status = models.IncidentResolved
	f.repo.On("GetByID", "inc-1").Return(openIncident(), nil).Once()
	f.repo.On("GetByID", "inc-2").Return(settled, nil).Once()
	f.repo.On("GetByID", "inc-3").Return(nil, reconciliationRepo.ErrIncidentNotFound).Once()

	ok, err := f.svc.Settled(context.Background(), "inc-1")
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = f.svc.Settled(context.Background(), "inc-2")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = f.svc.Settled(context.Background(), "inc-3")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResolveRequiresNote(t *testing.T) {
	f := newFixture(t)
	assert.Error(t, f.svc.Resolve(context.Background(), "inc-1", ""))

	f.repo.On("Resolve", "inc-1", "refunded via dashboard").Return(nil)
	assert.NoError(t, f.svc.Resolve(context.Background(), "inc-1", "refunded via dashboard"))
}
