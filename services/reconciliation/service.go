package reconciliation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	reconciliationRepo "mindease/database/repository/reconciliation"
	"mindease/models"
	"mindease/services/backend"
	"mindease/services/tasks"
	"mindease/utils"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const (
	DefaultMaxAttempts = 5
	// FirstRetryDelay gives the backend a moment before the first retry.
	FirstRetryDelay = time.Minute
)

var (
	ErrNoteRequired  = errors.New("a resolution note is required")
	ErrUnknownStatus = errors.New("unknown incident status")
)

// Enqueuer is the part of *asynq.Client the service needs.
type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// FlowLocker is the booking flow checkout lock. Retries take it so they
// never create an appointment while the client's own checkout is running.
type FlowLocker interface {
	AcquireCheckout(ctx context.Context, id string) (bool, error)
	ReleaseCheckout(ctx context.Context, id string) error
}

// Service records captured payments whose booking failed and retries the
// booking with the original idempotency key. No refund is ever issued here;
// incidents the retries cannot settle wait for an admin.
type Service struct {
	repo        reconciliationRepo.IncidentRepository
	api         backend.API
	sessions    utils.SessionStore
	queue       Enqueuer
	locks       FlowLocker
	maxAttempts int
	logger      *zap.Logger
}

func NewService(repo reconciliationRepo.IncidentRepository, api backend.API, sessions utils.SessionStore, queue Enqueuer, maxAttempts int, logger *zap.Logger) *Service {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, api: api, sessions: sessions, queue: queue, maxAttempts: maxAttempts, logger: logger}
}

// WithFlowLock makes retries take the flow checkout lock.
func (s *Service) WithFlowLock(locks FlowLocker) *Service {
	s.locks = locks
	return s
}

// Record stores the incident and schedules its first retry. A flow that
// already has an open incident reuses it.
func (s *Service) Record(ctx context.Context, incident models.BookingIncident) (string, error) {
	existing, err := s.repo.GetOpenByFlow(incident.FlowID)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, reconciliationRepo.ErrIncidentNotFound) {
		return "", err
	}

	incident.ID = uuid.NewString()
	if incident.Status == "" {
		incident.Status = models.IncidentOpen
	}
	if err := s.repo.Create(&incident); err != nil {
		return "", err
	}
	s.logger.Error("booking incident recorded",
		zap.String("incident", incident.ID),
		zap.String("flow", incident.FlowID),
		zap.String("intent", incident.PaymentIntentID),
		zap.String("error", incident.LastError))

	if _, err := s.enqueue(incident.ID, FirstRetryDelay); err != nil {
		s.logger.Warn("failed to schedule booking retry", zap.String("incident", incident.ID), zap.Error(err))
	}
	return incident.ID, nil
}

// enqueue reports false when a task for the incident is already queued.
func (s *Service) enqueue(id string, delay time.Duration) (bool, error) {
	if s.queue == nil {
		return false, nil
	}
	task, opts, err := tasks.NewReconcileTask(id, delay)
	if err != nil {
		return false, err
	}
	if _, err := s.queue.Enqueue(task, opts...); err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Retry attempts to create the appointment of an open incident once.
// Failures are recorded on the incident rather than returned, so the queue
// does not retry on its own; the sweeper decides when to try again.
func (s *Service) Retry(ctx context.Context, incidentID string) error {
	inc, err := s.retryable(incidentID)
	if err != nil || inc == nil {
		return err
	}

	if s.locks != nil {
		locked, err := s.locks.AcquireCheckout(ctx, inc.FlowID)
		if err != nil {
			return err
		}
		if !locked {
			s.logger.Info("client checkout running, retry deferred to next sweep", zap.String("incident", inc.ID))
			return nil
		}
		defer func() {
			if err := s.locks.ReleaseCheckout(context.WithoutCancel(ctx), inc.FlowID); err != nil {
				s.logger.Warn("failed to release checkout lock", zap.String("flow", inc.FlowID), zap.Error(err))
			}
		}()
		// The client's checkout may have settled it while we waited.
		if inc, err = s.retryable(incidentID); err != nil || inc == nil {
			return err
		}
	}

	sess, err := s.sessions.Get(ctx, inc.SessionID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			s.logger.Warn("session gone, incident left for manual resolution", zap.String("incident", inc.ID))
			return s.repo.RecordAttempt(inc.ID, "session expired; awaiting manual resolution")
		}
		return err
	}

	res := s.api.CreateAppointment(ctx, sess, inc.Request, inc.IdempotencyKey)
	if res.Success {
		s.logger.Info("booking incident settled by retry", zap.String("incident", inc.ID))
		return s.repo.Resolve(inc.ID, "appointment created by automatic retry")
	}
	s.logger.Warn("booking retry failed",
		zap.String("incident", inc.ID), zap.Int("attempt", inc.Attempts+1), zap.String("message", res.Message))
	return s.repo.RecordAttempt(inc.ID, res.Message)
}

// retryable loads an incident that is still open and below the attempt cap,
// or nil when there is nothing left to retry.
func (s *Service) retryable(id string) (*models.BookingIncident, error) {
	inc, err := s.repo.GetByID(id)
	if errors.Is(err, reconciliationRepo.ErrIncidentNotFound) {
		s.logger.Warn("retry for unknown incident", zap.String("incident", id))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if inc.Status != models.IncidentOpen || inc.Attempts >= s.maxAttempts {
		return nil, nil
	}
	return inc, nil
}

// Sweep re-enqueues every open incident below the attempt cap. Incidents
// whose task is still pending are not counted.
func (s *Service) Sweep(ctx context.Context) (int, error) {
	incidents, err := s.repo.ListRetryable(s.maxAttempts)
	if err != nil {
		return 0, err
	}
	queued := 0
	for _, inc := range incidents {
		if ctx.Err() != nil {
			return queued, ctx.Err()
		}
		ok, err := s.enqueue(inc.ID, 0)
		if err != nil {
			s.logger.Warn("failed to enqueue booking retry", zap.String("incident", inc.ID), zap.Error(err))
			continue
		}
		if ok {
			queued++
		}
	}
	return queued, nil
}

// List returns incidents with the given status, newest first.
func (s *Service) List(ctx context.Context, status models.IncidentStatus) ([]models.BookingIncident, error) {
	if status == "" {
		status = models.IncidentOpen
	}
	if status != models.IncidentOpen && status != models.IncidentResolved {
		return nil, fmt.Errorf("%w %q", ErrUnknownStatus, status)
	}
	return s.repo.ListByStatus(status, 200)
}

// Settled reports whether the incident is closed. An unknown incident is
// reported open so the client may retry.
func (s *Service) Settled(ctx context.Context, id string) (bool, error) {
	inc, err := s.repo.GetByID(id)
	if errors.Is(err, reconciliationRepo.ErrIncidentNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return inc.Status == models.IncidentResolved, nil
}

// Resolve closes an incident settled by hand or by the client's own retry.
func (s *Service) Resolve(ctx context.Context, id, note string) error {
	if strings.TrimSpace(note) == "" {
		return ErrNoteRequired
	}
	return s.repo.Resolve(id, note)
}
