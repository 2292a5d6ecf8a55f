package booking

import (
	"errors"
	"fmt"
)

// FlowError is a rejected booking step. It never involves a network call.
type FlowError struct {
	Code    string
	Message string
}

func (e *FlowError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newFlowError(code, msg string) error {
	return &FlowError{Code: code, Message: msg}
}

// PaymentError means the payment was not captured; no appointment exists.
type PaymentError struct {
	Message string
	Cause   error
}

func (e *PaymentError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("paymentError: %s: %v", e.Message, e.Cause)
	}
	return "paymentError: " + e.Message
}

func (e *PaymentError) Unwrap() error { return e.Cause }

// BookingAfterPaymentMessage is shown when money was taken but no session was booked.
const BookingAfterPaymentMessage = "Payment succeeded but booking failed. Please contact support with your reference."

// BookingAfterPaymentError is the partial failure where the payment was
// captured and appointment creation failed. It always carries a reference
// the user can quote to support.
type BookingAfterPaymentError struct {
	IncidentID      string
	PaymentIntentID string
	BackendMessage  string
}

func (e *BookingAfterPaymentError) Error() string {
	return fmt.Sprintf("bookingAfterPayment: intent %s incident %s: %s", e.PaymentIntentID, e.IncidentID, e.BackendMessage)
}

var (
	ErrFlowNotFound       = errors.New("booking flow not found or expired")
	ErrFlowForbidden      = errors.New("booking flow belongs to another session")
	ErrSelectionLocked    = newFlowError("selectionLocked", "Payment was already taken for this booking; its details can no longer change.")
	ErrClientsOnly        = newFlowError("clientsOnly", "Only clients can book sessions.")
	ErrCheckoutInProgress = newFlowError("checkoutInProgress", "A payment for this booking is already being processed.")
	ErrAlreadySubmitted   = newFlowError("alreadySubmitted", "This booking has already been completed.")
)
