package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mindease/models"
	"mindease/services/appointment"
	"mindease/services/backend"
	"mindease/services/listing"

	"go.uber.org/zap"
)

// ValidationError is an input the workflow refused before calling the backend.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var ErrAppointmentNotFound = errors.New("appointment not found")

// Outcome is the result of a successful action plus the refreshed list.
type Outcome struct {
	Message      string                   `json:"message"`
	Appointments []appointment.Projection `json:"appointments"`
}

// Service drives the appointment actions: listing, cancellation, feedback and
// completion.
type Service struct {
	api       backend.API
	projector *appointment.Projector
	now       func() time.Time
	logger    *zap.Logger
}

func NewService(api backend.API, projector *appointment.Projector, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{api: api, projector: projector, now: time.Now, logger: logger}
}

// SetClock replaces the time source.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Service) Projector() *appointment.Projector {
	return s.projector
}

// List returns every appointment of the session projected for its role.
func (s *Service) List(ctx context.Context, sess *models.SessionContext) ([]appointment.Projection, error) {
	res := s.api.GetAppointments(ctx, sess)
	if err := backend.Err(res); err != nil {
		return nil, err
	}
	return s.projector.ProjectAll(res.Data, sess.Role, s.now()), nil
}

// Browse pages the therapist schedule by tab or by an exact date.
func (s *Service) Browse(ctx context.Context, sess *models.SessionContext, q listing.AppointmentQuery) (listing.Page[appointment.Projection], error) {
	list, err := s.List(ctx, sess)
	if err != nil {
		return listing.Page[appointment.Projection]{}, err
	}
	page, err := listing.BrowseAppointments(list, q, s.now(), s.projector.Location())
	if err != nil {
		return page, &ValidationError{Field: "date", Message: "Enter a valid date."}
	}
	return page, nil
}

func (s *Service) find(ctx context.Context, sess *models.SessionContext, id models.ID) (appointment.Projection, error) {
	list, err := s.List(ctx, sess)
	if err != nil {
		return appointment.Projection{}, err
	}
	for _, p := range list {
		if p.Appointment.ID == id {
			return p, nil
		}
	}
	return appointment.Projection{}, ErrAppointmentNotFound
}

func (s *Service) refreshed(ctx context.Context, sess *models.SessionContext, msg string) (*Outcome, error) {
	list, err := s.List(ctx, sess)
	if err != nil {
		// The action went through; an empty list is better than reporting failure.
		s.logger.Warn("failed to refresh appointments", zap.Error(err))
		list = []appointment.Projection{}
	}
	return &Outcome{Message: msg, Appointments: list}, nil
}

// Cancel cancels a scheduled session on behalf of the acting role.
func (s *Service) Cancel(ctx context.Context, sess *models.SessionContext, id models.ID, reason string) (*Outcome, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, &ValidationError{Field: "reason", Message: "Please provide a reason for cancellation."}
	}
	p, err := s.find(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	if !p.Has(appointment.ActionCancel) {
		return nil, &ValidationError{Field: "appointment", Message: "This session can no longer be cancelled."}
	}

	res := s.api.CancelSession(ctx, sess, id, reason)
	if err := backend.Err(res); err != nil {
		return nil, err
	}
	s.logger.Info("session cancelled", zap.String("appointment", id.String()), zap.String("role", string(sess.Role)))
	return s.refreshed(ctx, sess, messageOr(res.Message, "Session cancelled successfully."))
}

// SubmitFeedback rates a completed session once. There is no edit path.
func (s *Service) SubmitFeedback(ctx context.Context, sess *models.SessionContext, id models.ID, rating int, text string) (*Outcome, error) {
	text = strings.TrimSpace(text)
	if rating < 1 || rating > 5 {
		return nil, &ValidationError{Field: "rating", Message: "Please select a rating between 1 and 5."}
	}
	if text == "" {
		return nil, &ValidationError{Field: "feedback", Message: "Please write your feedback."}
	}
	if sess.Role != models.RoleUser {
		return nil, &ValidationError{Field: "role", Message: "Only clients can leave feedback."}
	}
	p, err := s.find(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	if p.Appointment.Status != models.StatusCompleted {
		return nil, &ValidationError{Field: "appointment", Message: "Feedback is only possible for completed sessions."}
	}
	if p.Appointment.HasFeedback() {
		return nil, &ValidationError{Field: "appointment", Message: "Feedback was already submitted for this session."}
	}

	res := s.api.SubmitFeedback(ctx, sess, models.FeedbackRequest{AppointmentID: id, Feedback: text, Rating: rating})
	if err := backend.Err(res); err != nil {
		return nil, err
	}
	return s.refreshed(ctx, sess, messageOr(res.Message, "Thank you for your feedback."))
}

// MarkCompleted lets the therapist close a session while it is live.
func (s *Service) MarkCompleted(ctx context.Context, sess *models.SessionContext, id models.ID) (*Outcome, error) {
	if sess.Role != models.RoleTherapist {
		return nil, &ValidationError{Field: "role", Message: "Only the therapist can complete a session."}
	}
	p, err := s.find(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	if !p.Has(appointment.ActionMarkComplete) {
		return nil, &ValidationError{Field: "appointment", Message: "Only a session in progress can be marked as completed."}
	}
	res := s.api.MakeCompleted(ctx, sess, id)
	if err := backend.Err(res); err != nil {
		return nil, err
	}
	return s.refreshed(ctx, sess, messageOr(res.Message, "Session marked as completed."))
}

func messageOr(msg, fallback string) string {
	if msg == "" {
		return fallback
	}
	return msg
}
