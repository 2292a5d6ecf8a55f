package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mindease/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"go.uber.org/zap"
)

// PaymentGateway confirms a server-issued payment intent with a card payment method.
type PaymentGateway interface {
	Confirm(ctx context.Context, clientSecret, paymentMethodID string) (*models.PaymentConfirmation, error)
}

// StripeGateway confirms intents through the Stripe API.
type StripeGateway struct {
	intents *paymentintent.Client
	logger  *zap.Logger
}

func NewStripeGateway(secretKey string, logger *zap.Logger) *StripeGateway {
	return NewStripeGatewayWithBackend(stripe.GetBackend(stripe.APIBackend), secretKey, logger)
}

// NewStripeGatewayWithBackend talks to Stripe through b, for example one
// built by stripe.GetBackendWithConfig against a local server.
func NewStripeGatewayWithBackend(b stripe.Backend, secretKey string, logger *zap.Logger) *StripeGateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StripeGateway{
		intents: &paymentintent.Client{B: b, Key: secretKey},
		logger:  logger,
	}
}

// IntentIDFromSecret extracts "pi_123" from "pi_123_secret_abc".
func IntentIDFromSecret(clientSecret string) (string, error) {
	idx := strings.Index(clientSecret, "_secret_")
	if idx <= 0 || !strings.HasPrefix(clientSecret, "pi_") {
		return "", fmt.Errorf("malformed client secret")
	}
	return clientSecret[:idx], nil
}

// Confirm confirms the intent unless it already succeeded. Card declines and
// other gateway rejections come back as *PaymentError with Stripe's message.
func (g *StripeGateway) Confirm(ctx context.Context, clientSecret, paymentMethodID string) (*models.PaymentConfirmation, error) {
	intentID, err := IntentIDFromSecret(clientSecret)
	if err != nil {
		return nil, &PaymentError{Message: "Payment could not be started.", Cause: err}
	}

	getParams := &stripe.PaymentIntentParams{}
	getParams.Context = ctx
	pi, err := g.intents.Get(intentID, getParams)
	if err != nil {
		return nil, g.gatewayError(intentID, err)
	}

	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		params := &stripe.PaymentIntentConfirmParams{
			PaymentMethod: stripe.String(paymentMethodID),
		}
		params.Context = ctx
		params.SetIdempotencyKey("confirm-" + intentID + "-" + paymentMethodID)
		pi, err = g.intents.Confirm(intentID, params)
		if err != nil {
			return nil, g.gatewayError(intentID, err)
		}
	}

	conf := &models.PaymentConfirmation{
		IntentID: pi.ID,
		Status:   string(pi.Status),
		Amount:   pi.Amount,
		Currency: string(pi.Currency),
	}
	g.logger.Info("payment intent confirmed", zap.String("intent", pi.ID), zap.String("status", conf.Status))
	return conf, nil
}

func (g *StripeGateway) gatewayError(intentID string, err error) error {
	var serr *stripe.Error
	msg := "Payment failed. Please try another card."
	if errors.As(err, &serr) && serr.Msg != "" {
		msg = serr.Msg
	}
	g.logger.Warn("payment gateway rejected intent", zap.String("intent", intentID), zap.Error(err))
	return &PaymentError{Message: msg, Cause: err}
}

// PaymentSucceeded is the only status that allows appointment creation.
func PaymentSucceeded(c *models.PaymentConfirmation) bool {
	return c != nil && c.Status == string(stripe.PaymentIntentStatusSucceeded)
}
