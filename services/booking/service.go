package booking

import (
	"context"
	"errors"
	"time"

	"mindease/models"
	"mindease/services/backend"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// IncidentRecorder persists a captured payment whose booking failed and
// schedules its retry. Record returns the incident reference shown to the user.
type IncidentRecorder interface {
	Record(ctx context.Context, incident models.BookingIncident) (string, error)
	Settled(ctx context.Context, id string) (bool, error)
	Resolve(ctx context.Context, id, note string) error
}

type Service struct {
	api      backend.API
	store    FlowStore
	pricing  *Pricing
	gateway  PaymentGateway
	incident IncidentRecorder
	logger   *zap.Logger
}

func NewService(api backend.API, store FlowStore, pricing *Pricing, gateway PaymentGateway, incident IncidentRecorder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pricing == nil {
		pricing = NewPricing(api, DefaultPrices, logger)
	}
	return &Service{api: api, store: store, pricing: pricing, gateway: gateway, incident: incident, logger: logger}
}

// Start opens a booking flow for a therapist with a fresh availability snapshot.
func (s *Service) Start(ctx context.Context, sess *models.SessionContext, therapistID models.ID) (*models.BookingFlow, error) {
	if sess.Role != models.RoleUser {
		return nil, ErrClientsOnly
	}
	if therapistID.IsZero() {
		return nil, newFlowError("therapistRequired", "Choose a therapist to book with.")
	}
	res := s.api.GetTherapistInformation(ctx, sess, therapistID)
	if err := backend.Err(res); err != nil {
		return nil, err
	}

	now := time.Now()
	flow := &models.BookingFlow{
		ID:             uuid.NewString(),
		SessionID:      sess.ID,
		UserID:         sess.UserID,
		Therapist:      res.Data,
		Step:           models.StepSelectDate,
		Type:           models.TypeNew,
		IdempotencyKey: uuid.NewString(),
		Prices:         s.pricing.Current(ctx, sess),
		CreatedAt:      now,
	}
	if err := s.store.Put(ctx, flow); err != nil {
		return nil, err
	}
	s.logger.Debug("booking flow started", zap.String("flow", flow.ID), zap.String("therapist", therapistID.String()))
	return flow, nil
}

// Get loads a flow owned by the session.
func (s *Service) Get(ctx context.Context, sess *models.SessionContext, flowID string) (*models.BookingFlow, error) {
	flow, err := s.store.Get(ctx, flowID)
	if err != nil {
		return nil, err
	}
	if flow.SessionID != sess.ID && (flow.UserID == "" || flow.UserID != sess.UserID) {
		return nil, ErrFlowForbidden
	}
	return flow, nil
}

func (s *Service) update(ctx context.Context, sess *models.SessionContext, flowID string, step func(*models.BookingFlow) error) (*models.BookingFlow, error) {
	flow, err := s.Get(ctx, sess, flowID)
	if err != nil {
		return nil, err
	}
	if err := step(flow); err != nil {
		return nil, err
	}
	if flow.Processing && !CheckoutActive(flow, time.Now()) {
		flow.Processing = false
		flow.ProcessingSince = time.Time{}
	}
	if err := s.store.Put(ctx, flow); err != nil {
		return nil, err
	}
	return flow, nil
}

func (s *Service) SelectDate(ctx context.Context, sess *models.SessionContext, flowID string, dateID models.ID) (*models.BookingFlow, error) {
	return s.update(ctx, sess, flowID, func(f *models.BookingFlow) error { return SelectDate(f, dateID) })
}

func (s *Service) SelectTime(ctx context.Context, sess *models.SessionContext, flowID string, timeID models.ID) (*models.BookingFlow, error) {
	return s.update(ctx, sess, flowID, func(f *models.BookingFlow) error { return SelectTime(f, timeID) })
}

func (s *Service) SelectMode(ctx context.Context, sess *models.SessionContext, flowID string, mode models.SessionMode) (*models.BookingFlow, error) {
	return s.update(ctx, sess, flowID, func(f *models.BookingFlow) error { return SelectMode(f, mode) })
}

func (s *Service) SelectType(ctx context.Context, sess *models.SessionContext, flowID string, t models.SessionType) (*models.BookingFlow, error) {
	return s.update(ctx, sess, flowID, func(f *models.BookingFlow) error { return SelectType(f, t) })
}

func (s *Service) Summary(ctx context.Context, sess *models.SessionContext, flowID string) (models.BookingSummary, error) {
	flow, err := s.Get(ctx, sess, flowID)
	if err != nil {
		return models.BookingSummary{}, err
	}
	return Summarize(flow)
}

// Checkout charges the card and books the session. The appointment is only
// created after the gateway reports the payment as succeeded. A flow whose
// payment already went through retries creation without charging again.
func (s *Service) Checkout(ctx context.Context, sess *models.SessionContext, flowID, paymentMethodID string) (*models.CheckoutResult, error) {
	flow, err := s.Get(ctx, sess, flowID)
	if err != nil {
		return nil, err
	}
	if err := checkoutReady(flow, paymentMethodID); err != nil {
		return nil, err
	}

	locked, err := s.store.AcquireCheckout(ctx, flow.ID)
	if err != nil {
		return nil, err
	}
	if !locked {
		return nil, ErrCheckoutInProgress
	}
	// The lock and the processing flag outlive a cancelled request.
	bg := context.WithoutCancel(ctx)
	defer func() {
		if err := s.store.ReleaseCheckout(bg, flowID); err != nil {
			s.logger.Warn("failed to release checkout lock", zap.String("flow", flowID), zap.Error(err))
		}
	}()

	// Another checkout may have finished between the first read and the lock.
	flow, err = s.Get(ctx, sess, flowID)
	if err != nil {
		return nil, err
	}
	if err := checkoutReady(flow, paymentMethodID); err != nil {
		return nil, err
	}
	if s.incidentSettled(ctx, flow) {
		flow.Step = models.StepSubmitted
		if err := s.store.Put(bg, flow); err != nil {
			s.logger.Warn("failed to persist booking flow", zap.String("flow", flow.ID), zap.Error(err))
		}
		return nil, ErrAlreadySubmitted
	}

	flow.Processing = true
	flow.ProcessingSince = time.Now()
	if err := s.store.Put(ctx, flow); err != nil {
		return nil, err
	}
	defer func() {
		flow.Processing = false
		flow.ProcessingSince = time.Time{}
		if err := s.store.Put(bg, flow); err != nil {
			s.logger.Warn("failed to persist booking flow", zap.String("flow", flow.ID), zap.Error(err))
		}
	}()

	if flow.PaymentIntent == "" {
		intentID, err := s.charge(ctx, sess, flow, paymentMethodID)
		if err != nil {
			return nil, err
		}
		flow.PaymentIntent = intentID
		if err := s.store.Put(bg, flow); err != nil {
			s.logger.Error("captured payment not persisted on flow", zap.String("flow", flow.ID),
				zap.String("intent", intentID), zap.Error(err))
		}
	}

	req := appointmentRequest(flow)
	res := s.api.CreateAppointment(ctx, sess, req, flow.IdempotencyKey)
	if res.Success {
		flow.Step = models.StepSubmitted
		s.logger.Info("session booked", zap.String("flow", flow.ID), zap.String("intent", flow.PaymentIntent))
		if flow.IncidentID != "" && s.incident != nil {
			if err := s.incident.Resolve(bg, flow.IncidentID, "appointment created by client retry"); err != nil {
				s.logger.Error("failed to resolve booking incident",
					zap.String("incident", flow.IncidentID), zap.String("flow", flow.ID), zap.Error(err))
			}
		}
		msg := res.Message
		if msg == "" {
			msg = "Session booked successfully."
		}
		return &models.CheckoutResult{FlowID: flow.ID, PaymentIntentID: flow.PaymentIntent, Message: msg}, nil
	}

	return nil, s.bookingFailed(bg, sess, flow, req, res.Message)
}

func checkoutReady(flow *models.BookingFlow, paymentMethodID string) error {
	if flow.Step == models.StepSubmitted {
		return ErrAlreadySubmitted
	}
	if !ReviewUnlocked(flow) {
		return newFlowError("reviewLocked", "Choose a date, time and session mode before paying.")
	}
	if flow.PaymentIntent == "" && paymentMethodID == "" {
		return newFlowError("paymentMethodRequired", "Enter your card details to pay.")
	}
	return nil
}

// incidentSettled is true when the flow's incident was closed by the
// background retry or an admin, so the appointment must not be created again.
func (s *Service) incidentSettled(ctx context.Context, flow *models.BookingFlow) bool {
	if flow.IncidentID == "" || s.incident == nil {
		return false
	}
	settled, err := s.incident.Settled(ctx, flow.IncidentID)
	if err != nil {
		s.logger.Warn("failed to read booking incident", zap.String("incident", flow.IncidentID), zap.Error(err))
		return false
	}
	return settled
}

func (s *Service) charge(ctx context.Context, sess *models.SessionContext, flow *models.BookingFlow, paymentMethodID string) (string, error) {
	price := flow.Prices[flow.Mode]
	if price <= 0 {
		return "", newFlowError("priceUnavailable", "This session mode has no price.")
	}
	intent := s.api.CreatePaymentIntent(ctx, sess, price)
	if !intent.Success {
		return "", &PaymentError{Message: intent.Message}
	}
	conf, err := s.gateway.Confirm(ctx, intent.Data.ClientSecret, paymentMethodID)
	if err != nil {
		var perr *PaymentError
		if errors.As(err, &perr) {
			return "", perr
		}
		return "", &PaymentError{Message: "Payment failed. Please try again.", Cause: err}
	}
	if !PaymentSucceeded(conf) {
		s.logger.Warn("payment not completed", zap.String("flow", flow.ID), zap.String("status", conf.Status))
		return "", &PaymentError{Message: "Payment was not completed. You have not been charged for a booking."}
	}
	return conf.IntentID, nil
}

func (s *Service) bookingFailed(ctx context.Context, sess *models.SessionContext, flow *models.BookingFlow, req models.NewAppointmentRequest, backendMsg string) error {
	s.logger.Error("booking failed after payment",
		zap.String("flow", flow.ID), zap.String("intent", flow.PaymentIntent), zap.String("message", backendMsg))

	if flow.IncidentID == "" && s.incident != nil {
		now := time.Now()
		id, err := s.incident.Record(ctx, models.BookingIncident{
			FlowID:          flow.ID,
			SessionID:       sess.ID,
			UserID:          sess.UserID,
			PaymentIntentID: flow.PaymentIntent,
			IdempotencyKey:  flow.IdempotencyKey,
			Request:         req,
			LastError:       backendMsg,
			Attempts:        1,
			Status:          models.IncidentOpen,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
		if err != nil {
			s.logger.Error("failed to record booking incident", zap.String("flow", flow.ID), zap.Error(err))
		}
		flow.IncidentID = id
	}

	ref := flow.IncidentID
	if ref == "" {
		ref = flow.PaymentIntent
	}
	return &BookingAfterPaymentError{IncidentID: ref, PaymentIntentID: flow.PaymentIntent, BackendMessage: backendMsg}
}
