package reconciliationRepo

import (
	"errors"

	"mindease/models"
)

var ErrIncidentNotFound = errors.New("incident not found")

// IncidentRepository stores booking incidents: payments captured without a
// matching appointment.
type IncidentRepository interface {
	Create(incident *models.BookingIncident) error
	GetByID(id string) (*models.BookingIncident, error)
	GetOpenByFlow(flowID string) (*models.BookingIncident, error)
	ListByStatus(status models.IncidentStatus, limit int64) ([]models.BookingIncident, error)
	ListRetryable(maxAttempts int) ([]models.BookingIncident, error)
	RecordAttempt(id, lastError string) error
	Resolve(id, note string) error
}
