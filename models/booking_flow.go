package models

import "time"

// BookingStep is the position of a booking flow in its state machine.
type BookingStep string

const (
	StepSelectDate BookingStep = "select_date"
	StepSelectTime BookingStep = "select_time"
	StepSelectMode BookingStep = "select_mode"
	StepSelectType BookingStep = "select_type"
	StepReview     BookingStep = "review"
	StepSubmitted  BookingStep = "submitted"
)

// BookingFlow holds the state of one booking attempt for one therapist.
type BookingFlow struct {
	ID              string           `json:"id"`
	SessionID       string           `json:"sessionId"`
	UserID          string           `json:"userId"`
	Therapist       TherapistProfile `json:"therapist"`
	Step            BookingStep      `json:"step"`
	DateID          ID               `json:"dateId,omitempty"`
	DateValue       string           `json:"dateValue,omitempty"`
	TimeID          ID               `json:"timeId,omitempty"`
	TimeValue       string           `json:"timeValue,omitempty"`
	Mode            SessionMode      `json:"mode,omitempty"`
	Type            SessionType      `json:"type"`
	ShowSummary     bool             `json:"showSummary"`
	Processing      bool             `json:"processing"`
	ProcessingSince time.Time        `json:"processingSince,omitempty"`
	IdempotencyKey  string           `json:"idempotencyKey"`
	PaymentIntent   string           `json:"paymentIntent,omitempty"`
	IncidentID      string           `json:"incidentId,omitempty"`
	Prices          PriceTable       `json:"prices"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// BookingSummary is what the review step shows before payment.
type BookingSummary struct {
	TherapistID   ID          `json:"therapistId"`
	TherapistName string      `json:"therapistName"`
	Date          string      `json:"date"`
	Time          string      `json:"time"`
	Mode          SessionMode `json:"mode"`
	Type          SessionType `json:"type"`
	Price         int64       `json:"price"`
}

// CheckoutResult is returned once the appointment exists on the backend.
type CheckoutResult struct {
	FlowID          string `json:"flowId"`
	PaymentIntentID string `json:"paymentIntentId"`
	Message         string `json:"message"`
}
