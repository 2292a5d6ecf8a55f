package handlers

import (
	"mindease/utils"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	Sessions utils.SessionStore

	SessionHandler      *SessionHandler
	AppointmentHandler  *AppointmentHandler
	TherapistHandler    *TherapistHandler
	BookingHandler      *BookingHandler
	WalletHandler       *WalletHandler
	ProfileHandler      *ProfileHandler
	NotificationHandler *NotificationHandler
	AdminHandler        *AdminHandler
}
