package reconciliation

import (
	"context"
	"sync"
	"testing"
	"time"

	reconciliationRepo "mindease/database/repository/reconciliation"
	"mindease/models"
	"mindease/services/backend/backendmock"
	"mindease/services/booking"
	"mindease/services/tasks"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	mu        sync.Mutex
	incidents map[string]models.BookingIncident
}

func newMemRepo() *memRepo {
	return &memRepo{incidents: map[string]models.BookingIncident{}}
}

func (r *memRepo) Create(incident *models.BookingIncident) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.incidents[incident.ID] = *incident
	return nil
}

func (r *memRepo) GetByID(id string) (*models.BookingIncident, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inc, ok := r.incidents[id]
	if !ok {
		return nil, reconciliationRepo.ErrIncidentNotFound
	}
	return &inc, nil
}

func (r *memRepo) GetOpenByFlow(flowID string) (*models.BookingIncident, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inc := range r.incidents {
		if inc.FlowID == flowID && inc.Status == models.IncidentOpen {
			return &inc, nil
		}
	}
	return nil, reconciliationRepo.ErrIncidentNotFound
}

func (r *memRepo) ListByStatus(status models.IncidentStatus, limit int64) ([]models.BookingIncident, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.BookingIncident
	for _, inc := range r.incidents {
		if inc.Status == status {
			out = append(out, inc)
		}
	}
	return out, nil
}

func (r *memRepo) ListRetryable(maxAttempts int) ([]models.BookingIncident, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.BookingIncident
	for _, inc := range r.incidents {
		if inc.Status == models.IncidentOpen && inc.Attempts < maxAttempts {
			out = append(out, inc)
		}
	}
	return out, nil
}

func (r *memRepo) RecordAttempt(id, lastError string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inc, ok := r.incidents[id]
	if !ok {
		return reconciliationRepo.ErrIncidentNotFound
	}
	inc.Attempts++
	inc.LastError = lastError
	r.incidents[id] = inc
	return nil
}

func (r *memRepo) Resolve(id, note string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inc, ok := r.incidents[id]
	if !ok || inc.Status != models.IncidentOpen {
		return reconciliationRepo.ErrIncidentNotFound
	}
	inc.Status = models.IncidentResolved
	inc.ResolutionNote = note
	r.incidents[id] = inc
	return nil
}

type approvingGateway struct{}

func (approvingGateway) Confirm(ctx context.Context, clientSecret, paymentMethodID string) (*models.PaymentConfirmation, error) {
	return &models.PaymentConfirmation{IntentID: "pi_1", Status: "succeeded", Amount: 1500}, nil
}

// A client retry that books the session closes the incident, so the retry
// task queued when the first attempt failed must not book it a second time.
func TestClientRetryClosesIncidentBeforeQueuedRetry(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	flows := booking.NewRedisFlowStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Hour)

	api := &backendmock.API{}
	queue := &mockQueue{}
	sessions := &mockSessions{}
	repo := newMemRepo()
	reconciler := NewService(repo, api, sessions, queue, 3, nil).WithFlowLock(flows)
	bookings := booking.NewService(api, flows, booking.NewPricing(api, booking.DefaultPrices, nil), approvingGateway{}, reconciler, nil)
	t.Cleanup(func() {
		api.AssertExpectations(t)
		queue.AssertExpectations(t)
		sessions.AssertExpectations(t)
	})

	sess := &models.SessionContext{ID: "s1", UserID: "7", Role: models.RoleUser, AccessToken: "tok"}
	flow := &models.BookingFlow{
		ID:             "f1",
		SessionID:      "s1",
		UserID:         "7",
		Therapist:      models.TherapistProfile{ID: "9"},
		Step:           models.StepReview,
		DateID:         "d1",
		TimeID:         "t2",
		Mode:           models.ModeVideo,
		Type:           models.TypeNew,
		IdempotencyKey: "key-1",
		Prices:         models.PriceTable{models.ModeVideo: 1500},
	}
	require.NoError(t, flows.Put(ctx, flow))
	req := models.NewAppointmentRequest{Therapist: "9", Date: "d1", Time: "t2", Mode: models.ModeVideo, Type: models.TypeNew, Price: 1500}

	api.On("CreatePaymentIntent", mock.Anything, sess, int64(1500)).
		Return(models.Ok(models.PaymentIntent{ID: "pi_1", ClientSecret: "pi_1_secret_x"}, "", 200)).Once()
	api.On("CreateAppointment", mock.Anything, sess, req, "key-1").
		Return(backendmock.Failed("Server error", 500)).Once()
	queue.On("Enqueue", tasks.TypeReconcileBooking, mock.Anything).Return(nil).Once()

	_, err := bookings.Checkout(ctx, sess, "f1", "pm_card")
	var berr *booking.BookingAfterPaymentError
	require.ErrorAs(t, err, &berr)
	incidentID := berr.IncidentID

	api.On("CreateAppointment", mock.Anything, sess, req, "key-1").Return(backendmock.OK("")).Once()
	_, err = bookings.Checkout(ctx, sess, "f1", "")
	require.NoError(t, err)

	inc, err := repo.GetByID(incidentID)
	require.NoError(t, err)
	assert.Equal(t, models.IncidentResolved, inc.Status)

	require.NoError(t, reconciler.Retry(ctx, incidentID))
	api.AssertNumberOfCalls(t, "CreateAppointment", 2)
	api.AssertNumberOfCalls(t, "CreatePaymentIntent", 1)
}
