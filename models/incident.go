package models

import "time"

type IncidentStatus string

const (
	IncidentOpen     IncidentStatus = "open"
	IncidentResolved IncidentStatus = "resolved"
)

// BookingIncident records a captured payment whose appointment creation failed.
type BookingIncident struct {
	ID              string                `json:"id" bson:"id"`
	FlowID          string                `json:"flowId" bson:"flowId"`
	SessionID       string                `json:"sessionId" bson:"sessionId"`
	UserID          string                `json:"userId" bson:"userId"`
	PaymentIntentID string                `json:"paymentIntentId" bson:"paymentIntentId"`
	IdempotencyKey  string                `json:"idempotencyKey" bson:"idempotencyKey"`
	Request         NewAppointmentRequest `json:"request" bson:"request"`
	LastError       string                `json:"lastError" bson:"lastError"`
	Attempts        int                   `json:"attempts" bson:"attempts"`
	Status          IncidentStatus        `json:"status" bson:"status"`
	ResolutionNote  string                `json:"resolutionNote,omitempty" bson:"resolutionNote,omitempty"`
	CreatedAt       time.Time             `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time             `json:"updatedAt" bson:"updatedAt"`
}

// ReconcilePayload is the asynq payload of a booking retry task.
type ReconcilePayload struct {
	IncidentID string `json:"incidentId"`
}
