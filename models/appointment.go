package models

// SessionMode is the communication channel of a therapy session.
type SessionMode string

const (
	ModeVideo   SessionMode = "video"
	ModeVoice   SessionMode = "voice"
	ModeMessage SessionMode = "message"
)

func (m SessionMode) Valid() bool {
	switch m {
	case ModeVideo, ModeVoice, ModeMessage:
		return true
	}
	return false
}

// SessionType distinguishes a first consultation from a follow-up.
type SessionType string

const (
	TypeNew      SessionType = "new"
	TypeFollowUp SessionType = "followup"
)

func (t SessionType) Valid() bool {
	return t == TypeNew || t == TypeFollowUp
}

type AppointmentStatus string

const (
	StatusScheduled       AppointmentStatus = "Scheduled"
	StatusCompleted       AppointmentStatus = "Completed"
	StatusCancelled       AppointmentStatus = "Cancelled"
	StatusAbsentClient    AppointmentStatus = "Absent - Client"
	StatusAbsentTherapist AppointmentStatus = "Absent - Therapist"
	StatusNoShowBoth      AppointmentStatus = "No Show - Both"

	// StatusOngoing is never stored by the backend; the projector derives it
	// for a Scheduled session inside its live window.
	StatusOngoing AppointmentStatus = "Ongoing"
)

// IsAbsence reports whether the status is one of the attendance-settled outcomes.
func (s AppointmentStatus) IsAbsence() bool {
	switch s {
	case StatusAbsentClient, StatusAbsentTherapist, StatusNoShowBoth:
		return true
	}
	return false
}

// Terminal statuses never change again.
func (s AppointmentStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s.IsAbsence()
}

// CancelParty names who cancelled a session.
type CancelParty string

const (
	CancelledByClient    CancelParty = "Client"
	CancelledByTherapist CancelParty = "Therapist"
)

// Appointment mirrors the backend therapy session record.
type Appointment struct {
	ID                 ID                `json:"id"`
	Client             ID                `json:"client"`
	Therapist          ID                `json:"therapist"`
	Date               ID                `json:"date"`
	Time               ID                `json:"time"`
	DateValue          string            `json:"date_value"`
	TimeValue          string            `json:"time_value"`
	Price              int64             `json:"price"`
	Status             AppointmentStatus `json:"status"`
	SessionMode        SessionMode       `json:"session_mode"`
	IsNew              bool              `json:"is_new"`
	Feedback           *string           `json:"feedback,omitempty"`
	Rating             *int              `json:"rating,omitempty"`
	CancelReason       *string           `json:"cancel_reason,omitempty"`
	CanceledPerson     *CancelParty      `json:"canceled_person,omitempty"`
	UserAttended       bool              `json:"user_attended"`
	TherapistAttended  bool              `json:"therapist_attended"`
	ClientName         string            `json:"client_name,omitempty"`
	ClientProfileImage *string           `json:"client_profile_image,omitempty"`
	TherapistDetails   *TherapistProfile `json:"therapist_details,omitempty"`
}

// Sanitize drops fields that cannot coexist with the status: feedback and
// rating exist only on Completed sessions, cancellation details only on
// cancelled or absence-settled ones.
func (a *Appointment) Sanitize() {
	if a.Status != StatusCompleted {
		a.Feedback = nil
		a.Rating = nil
	}
	if a.Status != StatusCancelled && !a.Status.IsAbsence() {
		a.CancelReason = nil
		a.CanceledPerson = nil
	}
	if a.Feedback != nil && *a.Feedback == "" {
		a.Feedback = nil
	}
}

// HasFeedback is true once the client submitted feedback for the session.
func (a *Appointment) HasFeedback() bool {
	return a.Feedback != nil && *a.Feedback != ""
}

// NewAppointmentRequest is the creation payload sent after a captured payment.
type NewAppointmentRequest struct {
	Therapist ID          `json:"therapist"`
	Date      ID          `json:"date"`
	Time      ID          `json:"time"`
	Mode      SessionMode `json:"mode"`
	Type      SessionType `json:"type"`
	Price     int64       `json:"price"`
}

type CancelRequest struct {
	Reason      string `json:"reason"`
	CurrentRole Role   `json:"current_role"`
}

type FeedbackRequest struct {
	AppointmentID ID     `json:"appointment_id"`
	Feedback      string `json:"feedback"`
	Rating        int    `json:"rating"`
}
