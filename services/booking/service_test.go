package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"mindease/models"
	"mindease/services/backend"
	"mindease/services/backend/backendmock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type memFlowStore struct {
	mu     sync.Mutex
	flows  map[string]models.BookingFlow
	locked map[string]bool
}

func newMemFlowStore() *memFlowStore {
	return &memFlowStore{flows: map[string]models.BookingFlow{}, locked: map[string]bool{}}
}

func (m *memFlowStore) Get(_ context.Context, id string) (*models.BookingFlow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.flows[id]
	if !ok {
		return nil, ErrFlowNotFound
	}
	return &f, nil
}

func (m *memFlowStore) Put(_ context.Context, flow *models.BookingFlow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flows[flow.ID] = *flow
	return nil
}

func (m *memFlowStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.flows, id)
	return nil
}

func (m *memFlowStore) AcquireCheckout(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locked[id] {
		return false, nil
	}
	m.locked[id] = true
	return true, nil
}

func (m *memFlowStore) ReleaseCheckout(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locked, id)
	return nil
}

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) Confirm(ctx context.Context, clientSecret, paymentMethodID string) (*models.PaymentConfirmation, error) {
	args := m.Called(ctx, clientSecret, paymentMethodID)
	conf, _ := args.Get(0).(*models.PaymentConfirmation)
	return conf, args.Error(1)
}

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) Record(ctx context.Context, incident models.BookingIncident) (string, error) {
	args := m.Called(ctx, incident)
	return args.String(0), args.Error(1)
}

func (m *mockRecorder) Settled(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockRecorder) Resolve(ctx context.Context, id, note string) error {
	return m.Called(ctx, id, note).Error(0)
}

type fixture struct {
	api      *backendmock.API
	store    *memFlowStore
	gateway  *mockGateway
	recorder *mockRecorder
	svc      *Service
	sess     *models.SessionContext
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		api:      &backendmock.API{},
		store:    newMemFlowStore(),
		gateway:  &mockGateway{},
		recorder: &mockRecorder{},
		sess:     &models.SessionContext{ID: "s1", UserID: "7", Role: models.RoleUser, AccessToken: "tok"},
	}
	f.svc = NewService(f.api, f.store, NewPricing(f.api, DefaultPrices, nil), f.gateway, f.recorder, nil)
	t.Cleanup(func() {
		f.api.AssertExpectations(t)
		f.gateway.AssertExpectations(t)
		f.recorder.AssertExpectations(t)
	})
	return f
}

// reviewedFlow starts a flow and walks it to review with video selected.
func (f *fixture) reviewedFlow(t *testing.T) *models.BookingFlow {
	t.Helper()
	ctx := context.Background()
	f.api.On("GetTherapistInformation", mock.Anything, f.sess, models.ID("9")).
		Return(models.Ok(testTherapist(), "", 200)).Once()
	f.api.On("GetPrices", mock.Anything, f.sess).
		Return(models.Fail[models.PriceTable]("not found", 404)).Once()

	flow, err := f.svc.Start(ctx, f.sess, "9")
	require.NoError(t, err)
	_, err = f.svc.SelectDate(ctx, f.sess, flow.ID, "d1")
	require.NoError(t, err)
	_, err = f.svc.SelectTime(ctx, f.sess, flow.ID, "t2")
	require.NoError(t, err)
	flow, err = f.svc.SelectMode(ctx, f.sess, flow.ID, models.ModeVideo)
	require.NoError(t, err)
	return flow
}

func expectedRequest() models.NewAppointmentRequest {
	return models.NewAppointmentRequest{Therapist: "9", Date: "d1", Time: "t2", Mode: models.ModeVideo, Type: models.TypeNew, Price: 1500}
}

func TestStartRejectsTherapists(t *testing.T) {
	f := newFixture(t)
	f.sess.Role = models.RoleTherapist
	_, err := f.svc.Start(context.Background(), f.sess, "9")
	assert.ErrorIs(t, err, ErrClientsOnly)
}

func TestStartSurfacesBackendFailure(t *testing.T) {
	f := newFixture(t)
	f.api.On("GetTherapistInformation", mock.Anything, f.sess, models.ID("9")).
		Return(models.Fail[models.TherapistProfile]("Therapist not found", 404))
	_, err := f.svc.Start(context.Background(), f.sess, "9")
	var failure *backend.Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, "Therapist not found", failure.Message)
}

func TestCheckoutBooksAfterSucceededPayment(t *testing.T) {
	f := newFixture(t)
	flow := f.reviewedFlow(t)

	f.api.On("CreatePaymentIntent", mock.Anything, f.sess, int64(1500)).
		Return(models.Ok(models.PaymentIntent{ID: "pi_1", ClientSecret: "pi_1_secret_x"}, "", 200))
	f.gateway.On("Confirm", mock.Anything, "pi_1_secret_x", "pm_card").
		Return(&models.PaymentConfirmation{IntentID: "pi_1", Status: "succeeded", Amount: 1500}, nil)
	f.api.On("CreateAppointment", mock.Anything, f.sess, expectedRequest(), flow.IdempotencyKey).
		Return(backendmock.OK("Appointment created"))

	res, err := f.svc.Checkout(context.Background(), f.sess, flow.ID, "pm_card")
	require.NoError(t, err)
	assert.Equal(t, "pi_1", res.PaymentIntentID)
	assert.Equal(t, "Appointment created", res.Message)

	stored, _ := f.store.Get(context.Background(), flow.ID)
	assert.Equal(t, models.StepSubmitted, stored.Step)
	assert.False(t, stored.Processing)

	_, err = f.svc.Checkout(context.Background(), f.sess, flow.ID, "pm_card")
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
}

func TestCheckoutDeclinedCardCreatesNothing(t *testing.T) {
	f := newFixture(t)
	flow := f.reviewedFlow(t)

	f.api.On("CreatePaymentIntent", mock.Anything, f.sess, int64(1500)).
		Return(models.Ok(models.PaymentIntent{ID: "pi_1", ClientSecret: "pi_1_secret_x"}, "", 200))
	f.gateway.On("Confirm", mock.Anything, "pi_1_secret_x", "pm_bad").
		Return(nil, &PaymentError{Message: "Your card was declined."})

	_, err := f.svc.Checkout(context.Background(), f.sess, flow.ID, "pm_bad")
	var perr *PaymentError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "Your card was declined.", perr.Message)
	f.api.AssertNotCalled(t, "CreateAppointment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	stored, _ := f.store.Get(context.Background(), flow.ID)
	assert.Empty(t, stored.PaymentIntent)
	assert.False(t, stored.Processing)
}

func TestCheckoutUnconfirmedPaymentIsPaymentError(t *testing.T) {
	f := newFixture(t)
	flow := f.reviewedFlow(t)

	f.api.On("CreatePaymentIntent", mock.Anything, f.sess, int64(1500)).
		Return(models.Ok(models.PaymentIntent{ID: "pi_1", ClientSecret: "pi_1_secret_x"}, "", 200))
	f.gateway.On("Confirm", mock.Anything, "pi_1_secret_x", "pm_3ds").
		Return(&models.PaymentConfirmation{IntentID: "pi_1", Status: "requires_action"}, nil)

	_, err := f.svc.Checkout(context.Background(), f.sess, flow.ID, "pm_3ds")
	var perr *PaymentError
	assert.ErrorAs(t, err, &perr)
}

func TestCheckoutIntentFailureUsesServerMessage(t *testing.T) {
	f := newFixture(t)
	flow := f.reviewedFlow(t)

	f.api.On("CreatePaymentIntent", mock.Anything, f.sess, int64(1500)).
		Return(models.Fail[models.PaymentIntent]("Stripe is not configured", 500))

	_, err := f.svc.Checkout(context.Background(), f.sess, flow.ID, "pm_card")
	var perr *PaymentError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "Stripe is not configured", perr.Message)
}

func TestCheckoutBookingFailureAfterPaymentRecordsIncident(t *testing.T) {
	f := newFixture(t)
	flow := f.reviewedFlow(t)

	f.api.On("CreatePaymentIntent", mock.Anything, f.sess, int64(1500)).
		Return(models.Ok(models.PaymentIntent{ID: "pi_1", ClientSecret: "pi_1_secret_x"}, "", 200)).Once()
	f.gateway.On("Confirm", mock.Anything, "pi_1_secret_x", "pm_card").
		Return(&models.PaymentConfirmation{IntentID: "pi_1", Status: "succeeded"}, nil).Once()
	f.api.On("CreateAppointment", mock.Anything, f.sess, expectedRequest(), flow.IdempotencyKey).
		Return(backendmock.Failed("Time slot already booked", 400)).Once()
	f.recorder.On("Record", mock.Anything, mock.MatchedBy(func(inc models.BookingIncident) bool {
		return inc.FlowID == flow.ID && inc.PaymentIntentID == "pi_1" &&
			inc.IdempotencyKey == flow.IdempotencyKey && inc.Status == models.IncidentOpen
	})).Return("inc-1", nil).Once()

	_, err := f.svc.Checkout(context.Background(), f.sess, flow.ID, "pm_card")
	var berr *BookingAfterPaymentError
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, "inc-1", berr.IncidentID)
	assert.Equal(t, "pi_1", berr.PaymentIntentID)
	assert.Equal(t, "Time slot already booked", berr.BackendMessage)

	stored, _ := f.store.Get(context.Background(), flow.ID)
	assert.Equal(t, "pi_1", stored.PaymentIntent)
	assert.Equal(t, "inc-1", stored.IncidentID)

	// Retrying does not charge again, does not open a second incident and
	// closes the open one so the background retry leaves it alone.
	f.recorder.On("Settled", mock.Anything, "inc-1").Return(false, nil).Once()
	f.api.On("CreateAppointment", mock.Anything, f.sess, expectedRequest(), flow.IdempotencyKey).
		Return(backendmock.OK("")).Once()
	f.recorder.On("Resolve", mock.Anything, "inc-1", mock.AnythingOfType("string")).Return(nil).Once()
	res, err := f.svc.Checkout(context.Background(), f.sess, flow.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "pi_1", res.PaymentIntentID)
}

func TestCheckoutAfterBackgroundRetryDoesNotBookAgain(t *testing.T) {
	f := newFixture(t)
	flow := f.reviewedFlow(t)
	flow.PaymentIntent = "pi_1"
	flow.IncidentID = "inc-1"
	require.NoError(t, f.store.Put(context.Background(), flow))

	f.recorder.On("Settled", mock.Anything, "inc-1").Return(true, nil).Once()

	_, err := f.svc.Checkout(context.Background(), f.sess, flow.ID, "")
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
	f.api.AssertNotCalled(t, "CreateAppointment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	stored, _ := f.store.Get(context.Background(), flow.ID)
	assert.Equal(t, models.StepSubmitted, stored.Step)
}

// racingStore runs another checkout to completion right before the first
// AcquireCheckout, after the caller has already read the flow.
type racingStore struct {
	*memFlowStore
	once   sync.Once
	before func()
}

func (r *racingStore) AcquireCheckout(ctx context.Context, id string) (bool, error) {
	r.once.Do(r.before)
	return r.memFlowStore.AcquireCheckout(ctx, id)
}

func TestConcurrentCheckoutsChargeOnce(t *testing.T) {
	f := newFixture(t)
	flow := f.reviewedFlow(t)

	f.api.On("CreatePaymentIntent", mock.Anything, f.sess, int64(1500)).
		Return(models.Ok(models.PaymentIntent{ID: "pi_1", ClientSecret: "pi_1_secret_x"}, "", 200)).Once()
	f.gateway.On("Confirm", mock.Anything, "pi_1_secret_x", "pm_card").
		Return(&models.PaymentConfirmation{IntentID: "pi_1", Status: "succeeded"}, nil).Once()
	f.api.On("CreateAppointment", mock.Anything, f.sess, expectedRequest(), flow.IdempotencyKey).
		Return(backendmock.OK("")).Once()

	var firstErr error
	racing := &racingStore{memFlowStore: f.store}
	racing.before = func() {
		_, firstErr = f.svc.Checkout(context.Background(), f.sess, flow.ID, "pm_card")
	}
	late := NewService(f.api, racing, NewPricing(f.api, DefaultPrices, nil), f.gateway, f.recorder, nil)

	_, err := late.Checkout(context.Background(), f.sess, flow.ID, "pm_card")
	require.NoError(t, firstErr)
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
	f.api.AssertNumberOfCalls(t, "CreatePaymentIntent", 1)
	f.gateway.AssertNumberOfCalls(t, "Confirm", 1)
}

func TestStaleProcessingFlagDoesNotBlockSelections(t *testing.T) {
	f := newFixture(t)
	flow := f.reviewedFlow(t)

	flow.Processing = true
	flow.ProcessingSince = time.Now()
	require.NoError(t, f.store.Put(context.Background(), flow))
	_, err := f.svc.SelectMode(context.Background(), f.sess, flow.ID, models.ModeVoice)
	assert.ErrorIs(t, err, ErrCheckoutInProgress)

	flow.ProcessingSince = time.Now().Add(-2 * checkoutLockTTL)
	require.NoError(t, f.store.Put(context.Background(), flow))
	updated, err := f.svc.SelectMode(context.Background(), f.sess, flow.ID, models.ModeVoice)
	require.NoError(t, err)
	assert.Equal(t, models.ModeVoice, updated.Mode)
	assert.False(t, updated.Processing)
}

func TestCheckoutBlockedWhileProcessing(t *testing.T) {
	f := newFixture(t)
	flow := f.reviewedFlow(t)
	ok, _ := f.store.AcquireCheckout(context.Background(), flow.ID)
	require.True(t, ok)

	_, err := f.svc.Checkout(context.Background(), f.sess, flow.ID, "pm_card")
	assert.ErrorIs(t, err, ErrCheckoutInProgress)
}

func TestCheckoutRequiresReview(t *testing.T) {
	f := newFixture(t)
	f.api.On("GetTherapistInformation", mock.Anything, f.sess, models.ID("9")).
		Return(models.Ok(testTherapist(), "", 200))
	f.api.On("GetPrices", mock.Anything, f.sess).
		Return(models.Ok(models.PriceTable{models.ModeVideo: 2000, models.ModeVoice: 1200, models.ModeMessage: 600}, "", 200))

	flow, err := f.svc.Start(context.Background(), f.sess, "9")
	require.NoError(t, err)
	assert.Equal(t, int64(2000), flow.Prices[models.ModeVideo])

	_, err = f.svc.Checkout(context.Background(), f.sess, flow.ID, "pm_card")
	var ferr *FlowError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, "reviewLocked", ferr.Code)
}

func TestFlowOwnedBySession(t *testing.T) {
	f := newFixture(t)
	flow := f.reviewedFlow(t)
	other := &models.SessionContext{ID: "s2", UserID: "8", Role: models.RoleUser}
	_, err := f.svc.Get(context.Background(), other, flow.ID)
	assert.ErrorIs(t, err, ErrFlowForbidden)
}
