package models

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleTherapist Role = "therapist"
	RoleAdmin     Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleTherapist || r == RoleAdmin
}

// CancelParty maps the acting role onto the party recorded on a cancellation.
func (r Role) CancelParty() CancelParty {
	if r == RoleTherapist {
		return CancelledByTherapist
	}
	return CancelledByClient
}

// SessionContext is the explicit per-request identity: who is acting, in
// which role, and with which backend credentials.
type SessionContext struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Username     string    `json:"username,omitempty"`
	Role         Role      `json:"role"`
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// SessionLogin is what the browser posts after authenticating with the backend.
type SessionLogin struct {
	Access  string `json:"access" validate:"required"`
	Refresh string `json:"refresh"`
	Role    Role   `json:"role" validate:"required,oneof=user therapist admin"`
}
